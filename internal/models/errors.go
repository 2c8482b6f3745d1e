package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnsupported   = errors.New("operation not supported by this backend")
	ErrInvalidGameID = errors.New("invalid game ID")
	ErrInvalidSaveID = errors.New("invalid save ID")
)

// GameNotFoundError reports a missing snapshot (SaveID < 0) or a missing
// history entry.
type GameNotFoundError struct {
	GameID string
	SaveID int
}

func (e GameNotFoundError) Error() string {
	if e.SaveID < 0 {
		return fmt.Sprintf("Game %s not found", e.GameID)
	}
	return fmt.Sprintf("Game %s not found at save_id %d", e.GameID, e.SaveID)
}

func (e GameNotFoundError) Is(target error) bool { return target == ErrNotFound }

type ParticipantNotFoundError string

func (e ParticipantNotFoundError) Error() string {
	return fmt.Sprintf("participant id %s not found", string(e))
}

func (e ParticipantNotFoundError) Is(target error) bool { return target == ErrNotFound }

// CorruptGameError wraps a parse failure for a file that exists but does not
// hold a valid serialized game.
type CorruptGameError struct {
	Path string
	Err  error
}

func (e CorruptGameError) Error() string {
	return fmt.Sprintf("corrupt game data at %s: %s", e.Path, e.Err)
}

func (e CorruptGameError) Unwrap() error { return e.Err }
