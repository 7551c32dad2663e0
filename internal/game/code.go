package game

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RoomID is a normalized game code. All addressing of sessions and rooms goes
// through this type so normalization happens in exactly one place.
type RoomID string

// codeAlphabet excludes visually similar characters (0/O, 1/I/L) so codes can
// be read off a projector and typed on a phone.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the length of generated game codes.
const codeLength = 6

// NewRoomID normalizes a raw game code into a RoomID. Codes are
// case-insensitive; the uppercased, trimmed form is canonical.
func NewRoomID(raw string) RoomID {
	return RoomID(strings.ToUpper(strings.TrimSpace(raw)))
}

func (r RoomID) String() string { return string(r) }

// IsZero reports whether the room ID is empty after normalization.
func (r RoomID) IsZero() bool { return r == "" }

// GenerateGameCode returns a new random game code drawn from the operator
// alphabet.
func GenerateGameCode() RoomID {
	max := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// fall back to the first character rather than panic mid-game.
			n = big.NewInt(0)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return RoomID(b.String())
}
