package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/dev-by-yash/FeudExe/internal/game"
)

// Registry is the process-wide map from game code to live session. Resolution
// never fails: an unseen code lazily constructs an empty session, so there is
// no UnknownSession error anywhere in the system.
type Registry struct {
	mu       sync.RWMutex
	sessions map[game.RoomID]*session

	coord       *Coordinator
	clock       clockwork.Clock
	idleTimeout time.Duration
}

// NewRegistry creates an empty registry.
func NewRegistry(coord *Coordinator, clock clockwork.Clock, idleTimeout time.Duration) *Registry {
	return &Registry{
		sessions:    make(map[game.RoomID]*session),
		coord:       coord,
		clock:       clock,
		idleTimeout: idleTimeout,
	}
}

// Resolve returns the live session for code, creating and starting it if
// needed.
func (r *Registry) Resolve(code game.RoomID) *session {
	r.mu.RLock()
	s, ok := r.sessions[code]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[code]; ok {
		return s
	}

	s = newSession(code, r.coord)
	r.sessions[code] = s
	go s.run(r.coord.ctx)

	log.Info().Str("game_code", code.String()).Msg("session created")
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RunSweeper evicts idle sessions on a fixed cadence until ctx is cancelled.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.sweep()
		}
	}
}

// sweep stops and discards every session whose last activity is older than
// the idle window. Eviction needs no close handshake; in-memory state is
// simply dropped.
func (r *Registry) sweep() {
	cutoff := r.clock.Now().Add(-r.idleTimeout)

	r.mu.Lock()
	var evicted []*session
	for code, s := range r.sessions {
		if s.lastActivity().Before(cutoff) {
			delete(r.sessions, code)
			evicted = append(evicted, s)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.stop()
		log.Info().
			Str("game_code", s.code.String()).
			Time("last_activity", s.lastActivity()).
			Msg("idle session evicted")
	}
}
