package store

import (
	"context"
	"testing"

	"github.com/dev-by-yash/FeudExe/internal/game"
)

func TestNoopStoreServesFullGame(t *testing.T) {
	st := NewNoopStore()
	ctx := context.Background()

	seeds, err := st.LoadTeams(ctx, "ABC234")
	if err != nil {
		t.Fatalf("LoadTeams: %v", err)
	}
	if len(seeds) != 0 {
		t.Fatalf("noop store seeded teams: %+v", seeds)
	}

	questions, err := st.LoadQuestionSequence(ctx, "ABC234")
	if err != nil {
		t.Fatalf("LoadQuestionSequence: %v", err)
	}
	// Three questions per round, three rounds.
	if len(questions) != 9 {
		t.Fatalf("built-in set has %d questions, want 9", len(questions))
	}
	for i, q := range questions {
		if q.Text == "" || len(q.Answers) == 0 {
			t.Fatalf("question %d is empty", i)
		}
		for j, a := range q.Answers {
			if a.Points <= 0 {
				t.Fatalf("question %d answer %d has no points", i, j)
			}
			if j > 0 && a.Points > q.Answers[j-1].Points {
				t.Fatalf("question %d answers not in descending point order", i)
			}
		}
	}

	if err := st.CommitFinalScores(ctx, "ABC234", []game.FinalScore{
		{Team: game.TeamA, Name: "Team A", Score: 100},
	}); err != nil {
		t.Fatalf("CommitFinalScores: %v", err)
	}
}
