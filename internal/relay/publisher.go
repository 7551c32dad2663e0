// Package relay mirrors every room event onto NATS JetStream so external
// consumers (leaderboards, audit) can follow games without holding a
// websocket. It is fire-and-forget and never sits on the scoring hot path.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/dev-by-yash/FeudExe/internal/events"
)

// Config holds JetStream connection settings.
type Config struct {
	URL           string
	StreamName    string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns JetStream defaults for the game event stream.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		StreamName:    "FEUD_EVENTS",
		SubjectPrefix: "feud.events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Publisher mirrors game events onto a JetStream stream.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config Config
}

// NewPublisher connects to NATS and ensures the event stream exists.
func NewPublisher(ctx context.Context, config Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     config.StreamName,
		Subjects: []string{config.SubjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   48 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", config.StreamName, err)
	}

	return &Publisher{nc: nc, js: js, config: config}, nil
}

// Publish mirrors one event, keyed by game code. Failures are logged and
// dropped; room delivery has already happened by the time this runs.
func (p *Publisher) Publish(ctx context.Context, ev *events.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(ev.Type)).Msg("marshal event for relay")
		return
	}

	subject := fmt.Sprintf("%s.%s", p.config.SubjectPrefix, ev.GameCode)
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		log.Warn().
			Err(err).
			Str("subject", subject).
			Str("event_type", string(ev.Type)).
			Msg("relay publish failed")
	}
}

// Close flushes pending publishes and drops the connection.
func (p *Publisher) Close() {
	select {
	case <-p.js.PublishAsyncComplete():
	case <-time.After(2 * time.Second):
	}
	p.nc.Close()
}
