package store

import (
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/h-wang94/terraforming-mars/internal/models"
	"github.com/h-wang94/terraforming-mars/internal/providers"
)

// SnapshotStore reads and writes the current serialized state of each game,
// one indented JSON file per game id directly under the storage root.
type SnapshotStore struct {
	paths  Paths
	logger providers.Logger
}

func NewSnapshotStore(paths Paths, logger providers.Logger) *SnapshotStore {
	return &SnapshotStore{paths: paths, logger: logger}
}

// Put fully replaces the current-state file for game.ID.
func (s *SnapshotStore) Put(game *models.SerializedGame) error {
	data, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.paths.Snapshot(game.ID), data)
}

func (s *SnapshotStore) Get(gameID string) (*models.SerializedGame, error) {
	path := s.paths.Snapshot(gameID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.GameNotFoundError{GameID: gameID, SaveID: -1}
		}
		return nil, err
	}

	var game models.SerializedGame
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, models.CorruptGameError{Path: path, Err: err}
	}
	return &game, nil
}

func (s *SnapshotStore) Exists(gameID string) bool {
	_, err := os.Stat(s.paths.Snapshot(gameID))
	return err == nil
}

// ListGameIds enumerates the storage root and returns every filename that is
// a recognized game id. The history directory, temp files and anything else
// living next to the snapshots is silently skipped.
func (s *SnapshotStore) ListGameIds() ([]string, error) {
	entries, err := os.ReadDir(s.paths.Root())
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok || !models.IsGameID(name) {
			continue
		}
		ids = append(ids, name)
	}
	return ids, nil
}
