package models

import (
	"strings"

	"github.com/google/uuid"
)

const (
	GameIDPrefix      = "g"
	PlayerIDPrefix    = "p"
	SpectatorIDPrefix = "s"
)

// idTailLength is the number of hex chars after the type prefix.
const idTailLength = 12

// minIDTailLength accepts shorter ids from older deployments.
const minIDTailLength = 6

// IsGameID reports whether s is a well-formed game id ("g" + lowercase hex).
// Used as the recognizer when scanning the storage root, so it must reject
// temp files, the history directory and anything else living next to
// snapshots.
func IsGameID(s string) bool { return isTypedID(s, GameIDPrefix) }

func IsPlayerID(s string) bool { return isTypedID(s, PlayerIDPrefix) }

func IsSpectatorID(s string) bool { return isTypedID(s, SpectatorIDPrefix) }

func isTypedID(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	tail := s[len(prefix):]
	if len(tail) < minIDTailLength {
		return false
	}
	for _, c := range tail {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func GenerateGameID() string { return GameIDPrefix + randomIDTail() }

func GeneratePlayerID() string { return PlayerIDPrefix + randomIDTail() }

func GenerateSpectatorID() string { return SpectatorIDPrefix + randomIDTail() }

func randomIDTail() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return hex[:idTailLength]
}
