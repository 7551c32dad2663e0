package game

import (
	"strings"
	"testing"
)

func TestNewRoomIDNormalizes(t *testing.T) {
	cases := map[string]RoomID{
		"abc234":     "ABC234",
		"  AbC234  ": "ABC234",
		"XYZ789":     "XYZ789",
		"   ":        "",
	}
	for raw, want := range cases {
		if got := NewRoomID(raw); got != want {
			t.Fatalf("NewRoomID(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestRoomIDIsZero(t *testing.T) {
	if !NewRoomID("  ").IsZero() {
		t.Fatal("expected blank input to normalize to zero room ID")
	}
	if NewRoomID("abc234").IsZero() {
		t.Fatal("non-empty code reported as zero")
	}
}

func TestGenerateGameCodeShape(t *testing.T) {
	seen := make(map[RoomID]bool)
	for i := 0; i < 100; i++ {
		code := GenerateGameCode()
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), codeLength)
		}
		for _, c := range code.String() {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q, not in alphabet", code, c)
			}
		}
		// Generated codes are already canonical.
		if NewRoomID(code.String()) != code {
			t.Fatalf("code %q is not its own canonical form", code)
		}
		seen[code] = true
	}
	if len(seen) < 90 {
		t.Fatalf("only %d distinct codes out of 100; generator looks degenerate", len(seen))
	}
}

func TestCodeAlphabetExcludesAmbiguousCharacters(t *testing.T) {
	for _, c := range "01OIL" {
		if strings.ContainsRune(codeAlphabet, c) {
			t.Fatalf("alphabet contains ambiguous character %q", c)
		}
	}
}
