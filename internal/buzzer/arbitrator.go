// Package buzzer resolves concurrent buzz attempts into a single winner per
// ready window.
package buzzer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dev-by-yash/FeudExe/internal/game"
)

var (
	// ErrAlreadyReady is returned from Enable when the buzzer is already armed.
	ErrAlreadyReady = errors.New("buzzer already ready")
	// ErrNotReady is returned for attempts while the buzzer is disabled or a
	// previous lock has not been consumed yet.
	ErrNotReady = errors.New("buzzer not ready")
	// ErrStaleAttempt is returned for attempts stamped with the epoch of an
	// earlier ready window.
	ErrStaleAttempt = errors.New("buzz attempt from a previous ready window")
)

// TooLateError reports a lost buzzer race, naming the winner so clients can
// show who beat them rather than a generic failure.
type TooLateError struct {
	Winner *game.BuzzerWinner
}

func (e *TooLateError) Error() string {
	return fmt.Sprintf("too late: %s buzzed first", e.Winner.Team)
}

// Attempt is one client's buzz press. ClientTimestamp is untrusted and used
// for display only; arbitration is by server receipt order. Epoch is the
// ready-window counter the client saw when the buzzer armed; zero means the
// client did not echo one and the attempt is taken at face value.
type Attempt struct {
	Team            game.TeamID
	Player          string
	ConnectionID    string
	Epoch           uint64
	ClientTimestamp time.Time
}

// Arbitrator owns the disabled -> ready -> locked state machine for one
// session's buzzer. The session worker already serializes all mutations, but
// the arbitrator carries its own lock so that every evaluation of an attempt
// is atomic no matter who calls it.
type Arbitrator struct {
	mu    sync.Mutex
	sess  *game.Session
	clock clockwork.Clock
}

// NewArbitrator returns an arbitrator bound to sess.
func NewArbitrator(sess *game.Session, clock clockwork.Clock) *Arbitrator {
	return &Arbitrator{sess: sess, clock: clock}
}

// Enable arms the buzzer, clearing any previous winner, and returns the new
// ready window's epoch for clients to echo in their attempts. Only the host
// should call this; it fails if the buzzer is already armed.
func (a *Arbitrator) Enable() (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sess.BuzzerStatus == game.BuzzerReady {
		return 0, ErrAlreadyReady
	}
	a.sess.BuzzerStatus = game.BuzzerReady
	a.sess.BuzzerWinner = nil
	a.sess.BuzzerEpoch++
	return a.sess.BuzzerEpoch, nil
}

// AttemptBuzz evaluates one buzz press. Exactly one attempt per ready window
// wins and locks the buzzer; every later attempt gets a TooLateError naming
// the winner. Attempts while disabled get ErrNotReady, and attempts stamped
// with an earlier window's epoch get ErrStaleAttempt so a press queued
// before a reset can never lock the window that follows it.
func (a *Arbitrator) AttemptBuzz(att Attempt) (*game.BuzzerWinner, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if att.Epoch != 0 && att.Epoch != a.sess.BuzzerEpoch {
		return nil, ErrStaleAttempt
	}

	switch a.sess.BuzzerStatus {
	case game.BuzzerReady:
		if !att.Team.Valid() {
			return nil, ErrNotReady
		}
		winner := &game.BuzzerWinner{
			Team:            att.Team,
			Player:          att.Player,
			ConnectionID:    att.ConnectionID,
			LockedAt:        a.clock.Now(),
			ClientTimestamp: att.ClientTimestamp,
		}
		a.sess.BuzzerStatus = game.BuzzerLocked
		a.sess.BuzzerWinner = winner
		return winner, nil
	case game.BuzzerLocked:
		return nil, &TooLateError{Winner: a.sess.BuzzerWinner}
	default:
		return nil, ErrNotReady
	}
}

// Reset returns the buzzer to disabled from any state and clears the winner,
// so a stale lock can never leak into the next question.
func (a *Arbitrator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sess.BuzzerStatus = game.BuzzerDisabled
	a.sess.BuzzerWinner = nil
}

// Status returns the current state machine position.
func (a *Arbitrator) Status() game.BuzzerStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sess.BuzzerStatus
}

// Winner returns the recorded winner, or nil when unlocked.
func (a *Arbitrator) Winner() *game.BuzzerWinner {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sess.BuzzerWinner
}
