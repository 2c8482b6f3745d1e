package models

import (
	json "github.com/goccy/go-json"
)

// SerializedGame is the engine-produced snapshot of one game at one save
// point. The store only interprets the fields it needs for indexing and
// versioning; everything under State belongs to the game engine and is
// round-tripped untouched.
type SerializedGame struct {
	ID          string          `json:"id"`
	LastSaveID  int             `json:"lastSaveId"`
	Players     []Player        `json:"players"`
	SpectatorID string          `json:"spectatorId,omitempty"`
	Phase       string          `json:"phase,omitempty"`
	Generation  int             `json:"generation,omitempty"`
	State       json.RawMessage `json:"state,omitempty"`
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ParticipantIDs returns the player ids in seat order, followed by the
// spectator id when one is set.
func (g *SerializedGame) ParticipantIDs() []string {
	ids := make([]string, 0, len(g.Players)+1)
	for _, p := range g.Players {
		ids = append(ids, p.ID)
	}
	if g.SpectatorID != "" {
		ids = append(ids, g.SpectatorID)
	}
	return ids
}

// ParticipantEntry maps one game to its participants. Entries are derived
// from current snapshots and never persisted on their own.
type ParticipantEntry struct {
	GameID         string   `json:"gameId"`
	ParticipantIDs []string `json:"participantIds"`
}
