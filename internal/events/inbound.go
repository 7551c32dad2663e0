package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dev-by-yash/FeudExe/internal/game"
)

// InboundType tags a client command.
type InboundType string

const (
	InboundJoinRoom        InboundType = "join-room"
	InboundLeaveRoom       InboundType = "leave-room"
	InboundBuzzerEnable    InboundType = "buzzer-enable"
	InboundBuzzerReset     InboundType = "buzzer-reset"
	InboundBuzzerAttempt   InboundType = "buzzer-attempt"
	InboundRevealAnswer    InboundType = "reveal-answer"
	InboundStealAttempt    InboundType = "steal-attempt"
	InboundAdvanceQuestion InboundType = "advance-question"
	InboundAdvanceRound    InboundType = "advance-round"
	InboundSetTeamName     InboundType = "set-team-name"
)

// ClientRole is what a connection is for: the host drives the game, buzzer
// clients race, displays mirror state.
type ClientRole string

const (
	RoleHost    ClientRole = "host"
	RoleBuzzer  ClientRole = "buzzer"
	RoleDisplay ClientRole = "display"
)

// ErrUnknownInbound is returned when a client sends an unrecognized command
// type.
var ErrUnknownInbound = errors.New("unknown inbound command type")

// Inbound is the single tagged inbound command variant. Code is the one
// canonical session identifier; Origin is the server-assigned connection ID
// of the sender. Exactly one payload pointer is set, matching Type.
type Inbound struct {
	Type   InboundType
	Code   game.RoomID
	Origin string

	Join    *JoinPayload
	Buzz    *BuzzPayload
	Reveal  *RevealPayload
	Steal   *StealPayload
	Round   *RoundPayload
	Team    *TeamNamePayload
}

// JoinPayload identifies a joining client. Buzzer clients declare a team and
// player name; hosts and displays leave them empty.
type JoinPayload struct {
	Role   ClientRole  `json:"role"`
	Team   game.TeamID `json:"team,omitempty"`
	Player string      `json:"player,omitempty"`
}

// BuzzPayload is a buzz press. Epoch echoes the ready window the client saw
// arm; the timestamp is the client clock, display-only.
type BuzzPayload struct {
	Team            game.TeamID `json:"team"`
	Player          string      `json:"player,omitempty"`
	Epoch           uint64      `json:"epoch,omitempty"`
	ClientTimestamp time.Time   `json:"client_timestamp,omitzero"`
}

// RevealPayload asks the host's judged answer to be applied: a correct guess
// reveals board index Index, a wrong one adds a strike to Team.
type RevealPayload struct {
	Index     int         `json:"index"`
	IsCorrect bool        `json:"is_correct"`
	Team      game.TeamID `json:"team,omitempty"`
}

// StealPayload resolves the steal window.
type StealPayload struct {
	IsCorrect bool `json:"is_correct"`
	Index     int  `json:"index"`
}

// RoundPayload selects the round to advance to.
type RoundPayload struct {
	Round int `json:"round"`
}

// TeamNamePayload renames a team slot.
type TeamNamePayload struct {
	Team game.TeamID `json:"team"`
	Name string      `json:"name"`
}

// wireMessage is the raw client frame: a type tag plus a type-specific body.
type wireMessage struct {
	Type InboundType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeInbound parses one client frame into a tagged Inbound command. This
// is the only place client JSON is interpreted; everything past here works
// with typed commands.
func DecodeInbound(code game.RoomID, origin string, raw []byte) (*Inbound, error) {
	var msg wireMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode client frame: %w", err)
	}

	in := &Inbound{Type: msg.Type, Code: code, Origin: origin}

	switch msg.Type {
	case InboundBuzzerEnable, InboundBuzzerReset, InboundAdvanceQuestion, InboundLeaveRoom:
		// No payload.
	case InboundJoinRoom:
		in.Join = &JoinPayload{}
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, in.Join); err != nil {
				return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
			}
		}
	case InboundBuzzerAttempt:
		in.Buzz = &BuzzPayload{}
		if err := json.Unmarshal(msg.Data, in.Buzz); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}
	case InboundRevealAnswer:
		in.Reveal = &RevealPayload{}
		if err := json.Unmarshal(msg.Data, in.Reveal); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}
	case InboundStealAttempt:
		in.Steal = &StealPayload{}
		if err := json.Unmarshal(msg.Data, in.Steal); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}
	case InboundAdvanceRound:
		in.Round = &RoundPayload{}
		if err := json.Unmarshal(msg.Data, in.Round); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}
	case InboundSetTeamName:
		in.Team = &TeamNamePayload{}
		if err := json.Unmarshal(msg.Data, in.Team); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInbound, msg.Type)
	}

	return in, nil
}
