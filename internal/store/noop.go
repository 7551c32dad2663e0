package store

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dev-by-yash/FeudExe/internal/game"
)

// NoopStore keeps gameplay alive when no database is configured: empty team
// seeds, a built-in question set, and final scores that go to the log only.
type NoopStore struct{}

// NewNoopStore returns the fallback store.
func NewNoopStore() *NoopStore { return &NoopStore{} }

// LoadTeams returns no seeds; the session falls back to default slot names.
func (NoopStore) LoadTeams(ctx context.Context, code game.RoomID) ([]TeamSeed, error) {
	return nil, nil
}

// LoadQuestionSequence returns the built-in sample set so a host can run a
// full three-round game without any setup.
func (NoopStore) LoadQuestionSequence(ctx context.Context, code game.RoomID) ([]game.Question, error) {
	return sampleQuestions(), nil
}

// CommitFinalScores logs the standings instead of persisting them.
func (NoopStore) CommitFinalScores(ctx context.Context, code game.RoomID, scores []game.FinalScore) error {
	for _, fs := range scores {
		log.Info().
			Str("game_code", code.String()).
			Str("team", string(fs.Team)).
			Str("name", fs.Name).
			Int("score", fs.Score).
			Msg("final score (no store configured)")
	}
	return nil
}

func sampleQuestions() []game.Question {
	return []game.Question{
		{Text: "Name something people do right before bed", Answers: []game.Answer{
			{Text: "Brush teeth", Points: 40}, {Text: "Watch TV", Points: 25},
			{Text: "Scroll their phone", Points: 15}, {Text: "Read", Points: 10},
			{Text: "Set an alarm", Points: 6}, {Text: "Lock the door", Points: 4},
		}},
		{Text: "Name a reason you might be late to work", Answers: []game.Answer{
			{Text: "Traffic", Points: 45}, {Text: "Overslept", Points: 30},
			{Text: "Kids", Points: 12}, {Text: "Car trouble", Points: 8},
			{Text: "Weather", Points: 5},
		}},
		{Text: "Name something you'd find in a junk drawer", Answers: []game.Answer{
			{Text: "Batteries", Points: 35}, {Text: "Pens", Points: 25},
			{Text: "Tape", Points: 15}, {Text: "Keys", Points: 12},
			{Text: "Rubber bands", Points: 8}, {Text: "Takeout menus", Points: 5},
		}},
		{Text: "Name a food people eat with their hands", Answers: []game.Answer{
			{Text: "Pizza", Points: 38}, {Text: "Burgers", Points: 27},
			{Text: "Fries", Points: 18}, {Text: "Tacos", Points: 10},
			{Text: "Wings", Points: 7},
		}},
		{Text: "Name something people lose all the time", Answers: []game.Answer{
			{Text: "Keys", Points: 42}, {Text: "Phone", Points: 28},
			{Text: "Wallet", Points: 14}, {Text: "Glasses", Points: 9},
			{Text: "Remote", Points: 7},
		}},
		{Text: "Name an excuse for not doing homework", Answers: []game.Answer{
			{Text: "Dog ate it", Points: 33}, {Text: "Forgot", Points: 30},
			{Text: "Was sick", Points: 17}, {Text: "Too busy", Points: 12},
			{Text: "Computer crashed", Points: 8},
		}},
		{Text: "Name something you shout at a sports game", Answers: []game.Answer{
			{Text: "Go!", Points: 36}, {Text: "Defense!", Points: 24},
			{Text: "Come on, ref!", Points: 20}, {Text: "Boo!", Points: 12},
			{Text: "We're number one!", Points: 8},
		}},
		{Text: "Name something people collect", Answers: []game.Answer{
			{Text: "Coins", Points: 31}, {Text: "Stamps", Points: 26},
			{Text: "Cards", Points: 21}, {Text: "Shoes", Points: 12},
			{Text: "Records", Points: 10},
		}},
		{Text: "Name a place where you have to be quiet", Answers: []game.Answer{
			{Text: "Library", Points: 48}, {Text: "Church", Points: 22},
			{Text: "Movie theater", Points: 16}, {Text: "Hospital", Points: 9},
			{Text: "Classroom", Points: 5},
		}},
	}
}
