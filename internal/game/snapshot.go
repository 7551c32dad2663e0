package game

import "time"

// TeamSnapshot is the wire form of one team slot.
type TeamSnapshot struct {
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	Strikes int      `json:"strikes"`
	Players []Player `json:"players,omitempty"`
}

// QuestionSnapshot is the current board as clients should render it.
type QuestionSnapshot struct {
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// BuzzerSnapshot is the wire form of the buzzer state machine.
type BuzzerSnapshot struct {
	Status BuzzerStatus  `json:"status"`
	Winner *BuzzerWinner `json:"winner,omitempty"`
}

// Snapshot is the full session state replayed to a client that joins
// mid-game. It is always built inside the session worker, so it reflects a
// single point in the session's mutation order.
type Snapshot struct {
	Code            string                    `json:"code"`
	Round           int                       `json:"round"`
	QuestionIndex   int                       `json:"question_index"`
	TotalQuestions  int                       `json:"total_questions"`
	Question        *QuestionSnapshot         `json:"question,omitempty"`
	RevealedAnswers []bool                    `json:"revealed_answers"`
	QuestionActive  bool                      `json:"question_active"`
	Teams           map[TeamID]TeamSnapshot   `json:"teams"`
	CurrentTeam     TeamID                    `json:"current_team"`
	Streak          Streak                    `json:"streak"`
	Buzzer          BuzzerSnapshot            `json:"buzzer"`
	StealUsed       bool                      `json:"steal_used"`
	Completed       bool                      `json:"completed"`
	TakenAt         time.Time                 `json:"taken_at"`
}

// Snapshot captures the session's current state for late-join replay.
func (s *Session) Snapshot(now time.Time) *Snapshot {
	snap := &Snapshot{
		Code:           s.Code.String(),
		Round:          s.Round,
		QuestionIndex:  s.CurrentQuestionIndex,
		TotalQuestions: len(s.Questions),
		QuestionActive: s.QuestionActive,
		CurrentTeam:    s.CurrentTeam,
		Streak:         s.Streak,
		StealUsed:      s.StealUsed,
		Completed:      s.Completed,
		TakenAt:        now,
		Teams:          make(map[TeamID]TeamSnapshot, len(s.Teams)),
	}

	if len(s.RevealedAnswers) > 0 {
		snap.RevealedAnswers = append([]bool(nil), s.RevealedAnswers...)
	}

	if q := s.CurrentQuestion(); q != nil {
		snap.Question = &QuestionSnapshot{
			Index:   s.CurrentQuestionIndex,
			Text:    q.Text,
			Answers: append([]Answer(nil), q.Answers...),
		}
	}

	for id, t := range s.Teams {
		snap.Teams[id] = TeamSnapshot{
			Name:    t.Name,
			Score:   t.Score,
			Strikes: t.Strikes,
			Players: append([]Player(nil), t.Players...),
		}
	}

	if s.BuzzerWinner != nil {
		w := *s.BuzzerWinner
		snap.Buzzer = BuzzerSnapshot{Status: s.BuzzerStatus, Winner: &w}
	} else {
		snap.Buzzer = BuzzerSnapshot{Status: s.BuzzerStatus}
	}

	return snap
}
