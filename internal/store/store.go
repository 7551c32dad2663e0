// Package store is the persistence collaborator: team seeds and question
// sequences in, final scores out. It is consulted only at session bootstrap
// and session end, never on the buzz/scoring hot path.
package store

import (
	"context"
	"errors"

	"github.com/dev-by-yash/FeudExe/internal/game"
)

// ErrUnavailable wraps any backend failure. Callers treat every method as
// fallible and retryable; gameplay never blocks on it.
var ErrUnavailable = errors.New("store unavailable")

// TeamSeed names a team slot at bootstrap.
type TeamSeed struct {
	Team game.TeamID
	Name string
}

// Store is what the coordinator needs from persistence.
type Store interface {
	// LoadTeams returns the seeded team names for a game code. An empty
	// result is not an error; the host proceeds with defaults.
	LoadTeams(ctx context.Context, code game.RoomID) ([]TeamSeed, error)

	// LoadQuestionSequence returns the pre-selected ordered questions for a
	// game code.
	LoadQuestionSequence(ctx context.Context, code game.RoomID) ([]game.Question, error)

	// CommitFinalScores durably records the final standings.
	CommitFinalScores(ctx context.Context, code game.RoomID, scores []game.FinalScore) error
}
