package store

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/h-wang94/terraforming-mars/internal/models"
	"github.com/h-wang94/terraforming-mars/internal/providers"
)

// HistoryStore appends every save as an immutable, independently addressable
// file keyed by (gameID, saveID) under the history directory. Append performs
// a plain overwrite-write; never writing the same (gameID, saveID) twice is
// the caller's contract, since the save id counter lives with the engine.
type HistoryStore struct {
	paths  Paths
	logger providers.Logger
}

func NewHistoryStore(paths Paths, logger providers.Logger) *HistoryStore {
	return &HistoryStore{paths: paths, logger: logger}
}

func (h *HistoryStore) Append(gameID string, saveID int, game *models.SerializedGame) error {
	data, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(h.paths.HistoryDir(), 0755); err != nil {
		return err
	}
	return writeFileAtomic(h.paths.History(gameID, saveID), data)
}

func (h *HistoryStore) Get(gameID string, saveID int) (*models.SerializedGame, error) {
	path := h.paths.History(gameID, saveID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.GameNotFoundError{GameID: gameID, SaveID: saveID}
		}
		return nil, err
	}

	var game models.SerializedGame
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, models.CorruptGameError{Path: path, Err: err}
	}
	return &game, nil
}

// ListSaveIds returns the save ids present for a game, sorted ascending.
// Sorting is deliberate: "delete the last N saves" is only well defined over
// a numeric order, not over raw directory enumeration order.
func (h *HistoryStore) ListSaveIds(gameID string) ([]int, error) {
	files, err := filepath.Glob(filepath.Join(h.paths.HistoryDir(), gameID+"-*.json"))
	if err != nil {
		return nil, err
	}

	prefix := gameID + "-"
	ids := make([]int, 0, len(files))
	for _, file := range files {
		base := strings.TrimSuffix(filepath.Base(file), ".json")
		if !strings.HasPrefix(base, prefix) {
			continue
		}
		id, err := strconv.Atoi(base[len(prefix):])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// DeleteSave removes one history entry. Deleting an entry that does not exist
// is a hard error; callers roll back only ids they just listed.
func (h *HistoryStore) DeleteSave(gameID string, saveID int) error {
	if err := os.Remove(h.paths.History(gameID, saveID)); err != nil {
		if os.IsNotExist(err) {
			return models.GameNotFoundError{GameID: gameID, SaveID: saveID}
		}
		return err
	}
	return nil
}
