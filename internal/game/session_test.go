package game

import (
	"testing"
	"time"
)

func TestRoundForQuestion(t *testing.T) {
	cases := map[int]int{
		0: 1, 1: 1, 2: 1,
		3: 2, 4: 2, 5: 2,
		6: 3, 7: 3, 8: 3,
		// Indexes past the planned sequence stay in the final round.
		9: 3, 42: 3,
	}
	for index, want := range cases {
		if got := RoundForQuestion(index); got != want {
			t.Fatalf("RoundForQuestion(%d) = %d, want %d", index, got, want)
		}
	}
}

func TestRemainingPoints(t *testing.T) {
	s := NewSession("ABC234", time.Now())
	s.Questions = []Question{{
		Text: "name something you lose",
		Answers: []Answer{
			{Text: "keys", Points: 40},
			{Text: "phone", Points: 35},
			{Text: "patience", Points: 25},
		},
	}}
	s.RevealedAnswers = []bool{false, true, false}

	if got := s.RemainingPoints(); got != 65 {
		t.Fatalf("RemainingPoints = %d, want 65", got)
	}

	s.RevealedAnswers = []bool{true, true, true}
	if got := s.RemainingPoints(); got != 0 {
		t.Fatalf("RemainingPoints on cleared board = %d, want 0", got)
	}
	if !s.AllRevealed() {
		t.Fatal("AllRevealed false on cleared board")
	}
}

func TestAllRevealedEmptyBoard(t *testing.T) {
	s := NewSession("ABC234", time.Now())
	if s.AllRevealed() {
		t.Fatal("empty board reported as fully revealed")
	}
}

func TestFinalScoresSlotOrder(t *testing.T) {
	s := NewSession("ABC234", time.Now())
	s.Team(TeamA).Name = "Sharks"
	s.Team(TeamA).Score = 120
	s.Team(TeamB).Name = "Jets"
	s.Team(TeamB).Score = 340

	scores := s.FinalScores()
	if len(scores) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(scores))
	}
	if scores[0].Team != TeamA || scores[0].Name != "Sharks" || scores[0].Score != 120 {
		t.Fatalf("slot A wrong: %+v", scores[0])
	}
	if scores[1].Team != TeamB || scores[1].Name != "Jets" || scores[1].Score != 340 {
		t.Fatalf("slot B wrong: %+v", scores[1])
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	now := time.Now()
	s := NewSession("ABC234", now)
	s.Questions = []Question{{
		Text:    "q",
		Answers: []Answer{{Text: "a", Points: 50}, {Text: "b", Points: 30}},
	}}
	s.RevealedAnswers = []bool{true, false}
	s.QuestionActive = true
	s.Team(TeamA).Players = []Player{{Name: "amy", ConnectionID: "c1", JoinedAt: now}}
	s.BuzzerStatus = BuzzerLocked
	s.BuzzerWinner = &BuzzerWinner{Team: TeamA, Player: "amy", ConnectionID: "c1", LockedAt: now}

	snap := s.Snapshot(now)

	// Mutating the session must not bleed into an already-taken snapshot.
	s.RevealedAnswers[1] = true
	s.Team(TeamA).Players[0].Name = "mutated"
	s.BuzzerWinner.Player = "mutated"
	s.Questions[0].Answers[0].Points = 0

	if snap.RevealedAnswers[1] {
		t.Fatal("snapshot shares RevealedAnswers backing array")
	}
	if snap.Teams[TeamA].Players[0].Name != "amy" {
		t.Fatal("snapshot shares player roster")
	}
	if snap.Buzzer.Winner.Player != "amy" {
		t.Fatal("snapshot shares buzzer winner")
	}
	if snap.Question.Answers[0].Points != 50 {
		t.Fatal("snapshot shares answer slice")
	}
}

func TestSnapshotFields(t *testing.T) {
	now := time.Now()
	s := NewSession("ABC234", now)
	s.Questions = []Question{
		{Text: "first", Answers: []Answer{{Text: "a", Points: 10}}},
		{Text: "second", Answers: []Answer{{Text: "b", Points: 20}}},
	}
	s.CurrentQuestionIndex = 1
	s.Round = 2
	s.CurrentTeam = TeamB
	s.Completed = false

	snap := s.Snapshot(now)
	if snap.Code != "ABC234" {
		t.Fatalf("code %q", snap.Code)
	}
	if snap.QuestionIndex != 1 || snap.TotalQuestions != 2 {
		t.Fatalf("question position %d/%d", snap.QuestionIndex, snap.TotalQuestions)
	}
	if snap.Question == nil || snap.Question.Text != "second" {
		t.Fatalf("question snapshot %+v", snap.Question)
	}
	if snap.Round != 2 || snap.CurrentTeam != TeamB {
		t.Fatalf("round %d team %s", snap.Round, snap.CurrentTeam)
	}
	if !snap.TakenAt.Equal(now) {
		t.Fatalf("TakenAt %v, want %v", snap.TakenAt, now)
	}
}
