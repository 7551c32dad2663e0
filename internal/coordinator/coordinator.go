// Package coordinator is the authoritative real-time core: it owns every
// active GameSession, serializes all mutations of a session through one
// worker, and fans resulting events out to the session's room.
package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/dev-by-yash/FeudExe/internal/events"
	"github.com/dev-by-yash/FeudExe/internal/game"
	"github.com/dev-by-yash/FeudExe/internal/store"
)

// ErrGameCompleted is reported when the host tries to advance past the last
// question of an already finished game.
var ErrGameCompleted = errors.New("game already completed")

// Broadcaster delivers events to room members. The hub implements it.
type Broadcaster interface {
	Broadcast(room game.RoomID, event *events.GameEvent)
	SendTo(room game.RoomID, connectionID string, event *events.GameEvent)
}

// EventRelay mirrors room events to an external stream. Optional.
type EventRelay interface {
	Publish(ctx context.Context, event *events.GameEvent)
}

// Config holds coordinator tuning knobs.
type Config struct {
	// IdleTimeout evicts sessions with no activity for this long.
	IdleTimeout time.Duration
	// SweepInterval is how often the eviction sweep runs.
	SweepInterval time.Duration
	// BootstrapTimeout bounds the store reads at session creation.
	BootstrapTimeout time.Duration
	// CommitRetries and CommitBackoff shape the final-score write retry loop.
	CommitRetries int
	CommitBackoff time.Duration
	// MailboxSize is the per-session command buffer.
	MailboxSize int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:      24 * time.Hour,
		SweepInterval:    time.Hour,
		BootstrapTimeout: 5 * time.Second,
		CommitRetries:    3,
		CommitBackoff:    time.Second,
		MailboxSize:      256,
	}
}

// Coordinator routes inbound commands to per-session workers.
type Coordinator struct {
	registry    *Registry
	broadcaster Broadcaster
	relay       EventRelay
	store       store.Store
	clock       clockwork.Clock
	config      Config

	ctx context.Context
}

// New wires a coordinator. relay may be nil.
func New(broadcaster Broadcaster, st store.Store, relay EventRelay, clock clockwork.Clock, config Config) *Coordinator {
	c := &Coordinator{
		broadcaster: broadcaster,
		relay:       relay,
		store:       st,
		clock:       clock,
		config:      config,
		ctx:         context.Background(),
	}
	c.registry = NewRegistry(c, clock, config.IdleTimeout)
	return c
}

// Start records the lifecycle context and launches the eviction sweep.
// Session workers inherit ctx; call Start before serving traffic.
func (c *Coordinator) Start(ctx context.Context) {
	c.ctx = ctx
	go c.registry.RunSweeper(ctx, c.config.SweepInterval)
}

// HandleInbound enqueues one decoded client command onto its session's
// mailbox. Session resolution never fails: an unseen game code lazily creates
// the session.
func (c *Coordinator) HandleInbound(ctx context.Context, in *events.Inbound) {
	if in.Code.IsZero() {
		log.Warn().Str("command", string(in.Type)).Msg("dropping command without game code")
		return
	}

	s := c.registry.Resolve(in.Code)
	if err := s.enqueue(ctx, in); err != nil {
		// The session was evicted between resolve and enqueue; a fresh
		// resolve recreates it.
		s = c.registry.Resolve(in.Code)
		if err := s.enqueue(ctx, in); err != nil {
			log.Warn().
				Err(err).
				Str("game_code", in.Code.String()).
				Str("command", string(in.Type)).
				Msg("dropping command, session mailbox unavailable")
		}
	}
}

// newEvent stamps an outbound event with the coordinator clock.
func (c *Coordinator) newEvent(code game.RoomID, typ events.EventType, payload any) *events.GameEvent {
	ev, err := events.NewEvent(code, typ, c.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("build event")
		return nil
	}
	return ev
}

// commitFinalScores durably records the standings with retry and backoff.
// It runs off the session worker so a slow store can never stall gameplay;
// final failure surfaces to the host as a non-blocking warning event.
func (c *Coordinator) commitFinalScores(code game.RoomID, scores []game.FinalScore) {
	var lastErr error
	backoff := c.config.CommitBackoff

	for attempt := 1; attempt <= c.config.CommitRetries; attempt++ {
		ctx, cancel := context.WithTimeout(c.ctx, c.config.BootstrapTimeout)
		lastErr = c.store.CommitFinalScores(ctx, code, scores)
		cancel()
		if lastErr == nil {
			log.Info().Str("game_code", code.String()).Msg("final scores committed")
			return
		}

		log.Warn().
			Err(lastErr).
			Str("game_code", code.String()).
			Int("attempt", attempt).
			Msg("final score commit failed")

		if attempt == c.config.CommitRetries {
			break
		}
		select {
		case <-c.clock.After(backoff):
		case <-c.ctx.Done():
			return
		}
		backoff *= 2
	}

	if ev := c.newEvent(code, events.EventScoreCommitFailed, events.ScoreCommitFailedPayload{
		Error: lastErr.Error(),
	}); ev != nil {
		c.broadcaster.Broadcast(code, ev)
	}
}
