// Package events defines the wire contract between the coordinator and game
// clients: one outbound event envelope with an explicit payload set, and one
// tagged inbound command type decoded at the transport boundary.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dev-by-yash/FeudExe/internal/game"
)

// GameEvent is the envelope for every event delivered to room members.
type GameEvent struct {
	ID        string          `json:"id"`
	GameCode  string          `json:"game_code"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// EventType tags an outbound event.
type EventType string

const (
	EventBuzzerReady       EventType = "buzzer-ready"
	EventBuzzerLocked      EventType = "buzzer-locked"
	EventBuzzerReset       EventType = "buzzer-reset"
	EventBuzzTooLate       EventType = "buzz-too-late"
	EventAnswerRevealed    EventType = "answer-revealed"
	EventStrikeAdded       EventType = "strike-added"
	EventStealResolved     EventType = "steal-resolved"
	EventRoundAdvanced     EventType = "round-advanced"
	EventQuestionAdvanced  EventType = "question-advanced"
	EventPlayerJoined      EventType = "player-joined"
	EventTeamUpdated       EventType = "team-updated"
	EventSnapshot          EventType = "snapshot"
	EventGameCompleted     EventType = "game-completed"
	EventScoreCommitFailed EventType = "score-commit-failed"
	EventCommandRejected   EventType = "command-rejected"
)

// NewEvent wraps a payload in the event envelope with a fresh ID and the
// server-assigned delivery timestamp.
func NewEvent(code game.RoomID, typ EventType, now time.Time, payload any) (*GameEvent, error) {
	ev := &GameEvent{
		ID:        uuid.New().String(),
		GameCode:  code.String(),
		Type:      typ,
		Timestamp: now,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		ev.Data = data
	}
	return ev, nil
}

// BuzzerReadyPayload announces a newly armed buzzer window. Clients echo the
// epoch in their attempts so presses from an earlier window are discarded.
type BuzzerReadyPayload struct {
	Epoch uint64 `json:"epoch"`
}

// BuzzerLockedPayload announces the buzzer race winner to the room.
type BuzzerLockedPayload struct {
	Winner game.BuzzerWinner `json:"winner"`
}

// BuzzTooLatePayload is sent only to a losing buzzer, naming who beat it.
type BuzzTooLatePayload struct {
	Winner game.BuzzerWinner `json:"winner"`
}

// AnswerRevealedPayload carries one reveal and its full score breakdown.
type AnswerRevealedPayload struct {
	Index       int                   `json:"index"`
	Answer      game.Answer           `json:"answer"`
	Team        game.TeamID           `json:"team"`
	Calculation game.ScoreCalculation `json:"calculation"`
	TeamScore   int                   `json:"team_score"`
	Streak      game.Streak           `json:"streak"`
}

// StrikeAddedPayload carries one wrong answer's outcome.
type StrikeAddedPayload struct {
	Team             game.TeamID `json:"team"`
	StrikeCount      int         `json:"strike_count"`
	StealOpportunity bool        `json:"steal_opportunity"`
	ControlTeam      game.TeamID `json:"control_team"`
}

// StealResolvedPayload carries the resolution of the steal window.
type StealResolvedPayload struct {
	Team       game.TeamID `json:"team"`
	Success    bool        `json:"success"`
	ScoreDelta int         `json:"score_delta"`
	TeamScore  int         `json:"team_score"`
}

// RoundAdvancedPayload announces a round change.
type RoundAdvancedPayload struct {
	Round      int `json:"round"`
	Multiplier int `json:"multiplier"`
}

// QuestionAdvancedPayload announces the next board.
type QuestionAdvancedPayload struct {
	Index    int                    `json:"index"`
	Round    int                    `json:"round"`
	Question *game.QuestionSnapshot `json:"question,omitempty"`
}

// PlayerJoinedPayload notifies existing members of a new connection.
type PlayerJoinedPayload struct {
	ConnectionID string      `json:"connection_id"`
	Role         ClientRole  `json:"role"`
	Team         game.TeamID `json:"team,omitempty"`
	Player       string      `json:"player,omitempty"`
}

// TeamUpdatedPayload announces a team name change or roster addition.
type TeamUpdatedPayload struct {
	Team game.TeamID       `json:"team"`
	Name string            `json:"name"`
	Info game.TeamSnapshot `json:"info"`
}

// GameCompletedPayload carries the final standings.
type GameCompletedPayload struct {
	Scores []game.FinalScore `json:"scores"`
}

// ScoreCommitFailedPayload warns the host that the durable final-score write
// gave up after retries. Gameplay is unaffected.
type ScoreCommitFailedPayload struct {
	Error string `json:"error"`
}

// CommandRejectedPayload reports an invalid transition back to the
// originating caller only.
type CommandRejectedPayload struct {
	Command InboundType `json:"command"`
	Reason  string      `json:"reason"`
}
