package game

import (
	"time"
)

// TeamID identifies one of the two fixed team slots. The A/B slot assignment
// never changes mid-session; only the display name may change.
type TeamID string

const (
	TeamA    TeamID = "A"
	TeamB    TeamID = "B"
	TeamNone TeamID = ""
)

// Other returns the opposing team slot.
func (t TeamID) Other() TeamID {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// Valid reports whether t names one of the two team slots.
func (t TeamID) Valid() bool { return t == TeamA || t == TeamB }

// BuzzerStatus is the buzzer state machine position.
type BuzzerStatus string

const (
	BuzzerDisabled BuzzerStatus = "disabled"
	BuzzerReady    BuzzerStatus = "ready"
	BuzzerLocked   BuzzerStatus = "locked"
)

// Player is a member of a team's roster, tied to the websocket connection it
// joined on.
type Player struct {
	Name         string    `json:"name"`
	ConnectionID string    `json:"connection_id"`
	JoinedAt     time.Time `json:"joined_at"`
}

// TeamState holds one team slot's mutable state.
type TeamState struct {
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	Strikes int      `json:"strikes"`
	Players []Player `json:"players"`
}

// Streak tracks consecutive correct answers by a single team.
type Streak struct {
	Team  TeamID `json:"team"`
	Count int    `json:"count"`
}

// BuzzerWinner records the winner of one buzzer race. LockedAt is the
// server's receipt time; the client timestamp is display-only.
type BuzzerWinner struct {
	Team            TeamID    `json:"team"`
	Player          string    `json:"player"`
	ConnectionID    string    `json:"connection_id"`
	LockedAt        time.Time `json:"locked_at"`
	ClientTimestamp time.Time `json:"client_timestamp,omitzero"`
}

// MaxStrikes is the strike cap; hitting it hands control to the other team
// for a steal attempt.
const MaxStrikes = 3

// questionsPerRound drives round auto-advance: round = ceil((index+1)/3),
// clamped at MaxRound.
const questionsPerRound = 3

// MaxRound is the last round; the round multiplier table is keyed 1..MaxRound.
const MaxRound = 3

// Session is the in-memory authoritative state of one active game. It is
// exclusively owned by its session worker; see the coordinator package for
// the serialization model.
type Session struct {
	Code  RoomID
	Teams map[TeamID]*TeamState

	Round                int
	CurrentQuestionIndex int
	Questions            []Question

	// RevealedAnswers is sized to the current question's answer count.
	// An entry flips false->true exactly once and never reverts.
	RevealedAnswers []bool
	QuestionActive  bool

	CurrentTeam TeamID
	Streak      Streak

	// BuzzerBonusTeam is the team holding a pending buzzer bonus, consumed
	// by its first correct answer and cleared by any wrong answer.
	BuzzerBonusTeam TeamID

	BuzzerStatus BuzzerStatus
	BuzzerWinner *BuzzerWinner
	// BuzzerEpoch increments every time the buzzer is armed, so attempts
	// from a previous ready window can never lock the current one.
	BuzzerEpoch uint64

	StealUsed bool
	Completed bool

	StartedAt time.Time
}

// NewSession returns an empty session for code with both team slots in place.
func NewSession(code RoomID, now time.Time) *Session {
	return &Session{
		Code: code,
		Teams: map[TeamID]*TeamState{
			TeamA: {Name: "Team A"},
			TeamB: {Name: "Team B"},
		},
		Round:        1,
		CurrentTeam:  TeamA,
		BuzzerStatus: BuzzerDisabled,
		StartedAt:    now,
	}
}

// Team returns the state for a team slot, or nil for an invalid ID.
func (s *Session) Team(id TeamID) *TeamState {
	return s.Teams[id]
}

// CurrentQuestion returns the active question, or nil when the index is out
// of range (no questions loaded, or game completed).
func (s *Session) CurrentQuestion() *Question {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentQuestionIndex]
}

// RemainingPoints sums the point values of all unrevealed answers of the
// current question. Used to price a steal.
func (s *Session) RemainingPoints() int {
	q := s.CurrentQuestion()
	if q == nil {
		return 0
	}
	sum := 0
	for i, a := range q.Answers {
		if i < len(s.RevealedAnswers) && !s.RevealedAnswers[i] {
			sum += a.Points
		}
	}
	return sum
}

// AllRevealed reports whether every answer of the current question has been
// revealed.
func (s *Session) AllRevealed() bool {
	if len(s.RevealedAnswers) == 0 {
		return false
	}
	for _, r := range s.RevealedAnswers {
		if !r {
			return false
		}
	}
	return true
}

// RoundForQuestion maps a question index onto its round number.
func RoundForQuestion(index int) int {
	round := (index / questionsPerRound) + 1
	if round > MaxRound {
		round = MaxRound
	}
	return round
}

// ResetStreak clears the consecutive-correct counter.
func (s *Session) ResetStreak() {
	s.Streak = Streak{Team: TeamNone, Count: 0}
}

// FinalScore is the durable result written at session end.
type FinalScore struct {
	Team  TeamID `json:"team"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// FinalScores captures both teams' standings in slot order.
func (s *Session) FinalScores() []FinalScore {
	out := make([]FinalScore, 0, 2)
	for _, id := range []TeamID{TeamA, TeamB} {
		t := s.Teams[id]
		out = append(out, FinalScore{Team: id, Name: t.Name, Score: t.Score})
	}
	return out
}
