package store

import (
	"sort"
	"sync"

	"github.com/h-wang94/terraforming-mars/internal/models"
	"github.com/h-wang94/terraforming-mars/internal/providers"
)

// Ledger is the derived participant index: participant id to owning game id.
// It is built once from a full scan of the snapshot store and kept current
// incrementally on every save and restore, so query results always match what
// a fresh rescan would produce.
type Ledger struct {
	mu        sync.RWMutex
	built     bool
	owners    map[string]string   // participant id → game id
	byGame    map[string][]string // game id → participant ids, seat order
	snapshots *SnapshotStore
	history   *HistoryStore
	logger    providers.Logger
}

func NewLedger(snapshots *SnapshotStore, history *HistoryStore, logger providers.Logger) *Ledger {
	return &Ledger{
		owners:    make(map[string]string),
		byGame:    make(map[string][]string),
		snapshots: snapshots,
		history:   history,
		logger:    logger,
	}
}

// Rebuild replaces the index with a full scan of all current snapshots.
// Any unreadable snapshot fails the rebuild; the ledger never serves a
// partial view.
func (l *Ledger) Rebuild() error {
	ids, err := l.snapshots.ListGameIds()
	if err != nil {
		return err
	}

	owners := make(map[string]string)
	byGame := make(map[string][]string, len(ids))
	for _, gameID := range ids {
		game, err := l.snapshots.Get(gameID)
		if err != nil {
			return err
		}
		participants := game.ParticipantIDs()
		byGame[gameID] = participants
		for _, pid := range participants {
			owners[pid] = gameID
		}
	}

	l.mu.Lock()
	l.owners = owners
	l.byGame = byGame
	l.built = true
	l.mu.Unlock()

	l.logger.Debugf(providers.TypeApp, "Participant ledger built: %d games, %d participants", len(byGame), len(owners))
	return nil
}

// Update records the participants of a freshly written snapshot. A no-op
// until the first full build; the build will pick the snapshot up anyway.
func (l *Ledger) Update(game *models.SerializedGame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.built {
		return
	}

	for _, pid := range l.byGame[game.ID] {
		delete(l.owners, pid)
	}
	participants := game.ParticipantIDs()
	l.byGame[game.ID] = participants
	for _, pid := range participants {
		l.owners[pid] = game.ID
	}
}

// Len reports the number of games currently indexed, or -1 before the first
// build.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.built {
		return -1
	}
	return len(l.byGame)
}

// GetParticipants returns one entry per game, ordered by game id.
func (l *Ledger) GetParticipants() ([]models.ParticipantEntry, error) {
	if err := l.ensureBuilt(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]models.ParticipantEntry, 0, len(l.byGame))
	for gameID, participants := range l.byGame {
		entries = append(entries, models.ParticipantEntry{
			GameID:         gameID,
			ParticipantIDs: participants,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].GameID < entries[j].GameID })
	return entries, nil
}

// GetGameId returns the game owning the given player or spectator id.
func (l *Ledger) GetGameId(participantID string) (string, error) {
	if err := l.ensureBuilt(); err != nil {
		return "", err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	gameID, ok := l.owners[participantID]
	if !ok {
		return "", models.ParticipantNotFoundError(participantID)
	}
	return gameID, nil
}

// GetPlayerCount reports the number of seats in the initial (save id 0)
// version of a game. The current snapshot is deliberately not consulted; the
// seat count of the cloneable version is what matters here.
func (l *Ledger) GetPlayerCount(gameID string) (int, error) {
	game, err := l.history.Get(gameID, 0)
	if err != nil {
		return 0, err
	}
	return len(game.Players), nil
}

func (l *Ledger) ensureBuilt() error {
	l.mu.RLock()
	built := l.built
	l.mu.RUnlock()
	if built {
		return nil
	}
	return l.Rebuild()
}
