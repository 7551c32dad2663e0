package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/dev-by-yash/FeudExe/internal/coordinator"
	"github.com/dev-by-yash/FeudExe/internal/events"
	"github.com/dev-by-yash/FeudExe/internal/game"
	"github.com/dev-by-yash/FeudExe/internal/hub"
	"github.com/dev-by-yash/FeudExe/internal/relay"
	"github.com/dev-by-yash/FeudExe/internal/store"
)

type Services struct {
	Coordinator *coordinator.Coordinator
	Connections *hub.ConnectionManager
	Handler     *hub.Handler
	Relay       *relay.Publisher
	Pool        *pgxpool.Pool
}

func setupServices(ctx context.Context, config *Config) (*Services, error) {
	services := &Services{}

	// Persistence collaborator: Postgres when configured, log-only fallback
	// otherwise. Bootstrap failures inside the coordinator degrade the same
	// way, so the game runs either way.
	var st store.Store = store.NewNoopStore()
	if config.Database.Enabled {
		pool, err := setupDatabase(ctx, config)
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, using fallback store")
		} else {
			services.Pool = pool
			st = store.NewPostgresStore(pool)
		}
	}

	// Optional JetStream relay for external consumers.
	var eventRelay coordinator.EventRelay
	if config.NATS.Enabled {
		relayConfig := relay.DefaultConfig()
		relayConfig.URL = config.NATS.URL
		if config.NATS.Stream != "" {
			relayConfig.StreamName = config.NATS.Stream
		}
		if config.NATS.SubjectPrefix != "" {
			relayConfig.SubjectPrefix = config.NATS.SubjectPrefix
		}

		pub, err := relay.NewPublisher(ctx, relayConfig)
		if err != nil {
			return nil, fmt.Errorf("setup event relay: %w", err)
		}
		services.Relay = pub
		eventRelay = pub
	}

	coordConfig := coordinator.DefaultConfig()
	coordConfig.IdleTimeout = config.idleTimeout()
	coordConfig.SweepInterval = config.sweepInterval()

	connConfig := hub.DefaultConnectionConfig()

	// The hub forwards decoded commands to the coordinator; the coordinator
	// broadcasts results through the hub. Wire the coordinator first, then
	// hand it the connection manager as its broadcaster.
	var cm *hub.ConnectionManager
	broadcaster := &lazyBroadcaster{get: func() *hub.ConnectionManager { return cm }}
	coord := coordinator.New(broadcaster, st, eventRelay, clockwork.NewRealClock(), coordConfig)
	cm = hub.NewConnectionManager(connConfig, coord)

	services.Coordinator = coord
	services.Connections = cm
	services.Handler = hub.NewHandler(cm)
	return services, nil
}

// lazyBroadcaster breaks the two-way construction dependency between the
// coordinator and the connection manager.
type lazyBroadcaster struct {
	get func() *hub.ConnectionManager
}

func (b *lazyBroadcaster) Broadcast(room game.RoomID, event *events.GameEvent) {
	b.get().Broadcast(room, event)
}

func (b *lazyBroadcaster) SendTo(room game.RoomID, connectionID string, event *events.GameEvent) {
	b.get().SendTo(room, connectionID, event)
}
