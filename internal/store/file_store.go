package store

import (
	"fmt"
	"os"
	"time"

	"github.com/h-wang94/terraforming-mars/internal/models"
	"github.com/h-wang94/terraforming-mars/internal/providers"
)

// Capabilities names the optional operations a backend actually implements,
// so callers can detect meaningful operations instead of relying on silent
// no-ops.
type Capabilities struct {
	SaveResults       bool `json:"saveResults"`
	Clean             bool `json:"clean"`
	Purge             bool `json:"purge"`
	StoreParticipants bool `json:"storeParticipants"`
	RestoreReference  bool `json:"restoreReference"`
}

// GameStoreInterface is the persistence contract the game engine and the
// admin surface program against. Backends other than the local filesystem
// one may implement the optional operations; Capabilities tells them apart.
type GameStoreInterface interface {
	Initialize() error
	SaveGame(game *models.SerializedGame) (int, error)
	GetGame(gameID string) (*models.SerializedGame, error)
	GetGameVersion(gameID string, saveID int) (*models.SerializedGame, error)
	LoadCloneableGame(gameID string) (*models.SerializedGame, error)
	RestoreGame(gameID string, saveID int) (*models.SerializedGame, error)
	DeleteGameNbrSaves(gameID string, rollbackCount int) error
	ListSaveIds(gameID string) ([]int, error)
	GetGameIds() ([]string, error)
	GetParticipants() ([]models.ParticipantEntry, error)
	GetGameId(participantID string) (string, error)
	GetPlayerCount(gameID string) (int, error)
	SaveGameResults(gameID string, players int, generations int) error
	CleanGame(gameID string) error
	PurgeUnfinishedGames() error
	StoreParticipants(entry models.ParticipantEntry) error
	RestoreReferenceGame(gameID string) (*models.SerializedGame, error)
	Capabilities() Capabilities
	Stats() map[string]string
}

// FileStore is the local-disk backend: current snapshots at the storage root,
// the full append-only save history under history/, and the participant
// ledger derived on top. Single writer per game id; callers serialize their
// own writes.
type FileStore struct {
	paths     Paths
	snapshots *SnapshotStore
	history   *HistoryStore
	ledger    *Ledger
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewFileStore(paths Paths, snapshots *SnapshotStore, history *HistoryStore, ledger *Ledger, logger providers.Logger, metrics providers.MetricsProviderInterface) GameStoreInterface {
	return &FileStore{
		paths:     paths,
		snapshots: snapshots,
		history:   history,
		ledger:    ledger,
		logger:    logger,
		metrics:   metrics,
	}
}

// Initialize creates the storage directories and builds the participant
// ledger. Called once at startup before any traffic is served.
func (f *FileStore) Initialize() error {
	if err := os.MkdirAll(f.paths.HistoryDir(), 0755); err != nil {
		return err
	}
	if err := f.ledger.Rebuild(); err != nil {
		return err
	}
	f.metrics.SetGamesTotal(f.ledger.Len())
	return nil
}

// SaveGame writes the current snapshot, appends the same state to history at
// game.LastSaveID and returns the save id the engine should use next. The
// store never invents a save id and never mutates the caller's game; the
// counter belongs to the engine.
//
// The two writes are not atomic together. A crash in between leaves the
// snapshot ahead of history (or behind); that durability gap is accepted.
func (f *FileStore) SaveGame(game *models.SerializedGame) (int, error) {
	start := time.Now()

	if err := f.snapshots.Put(game); err != nil {
		return 0, err
	}
	if err := f.history.Append(game.ID, game.LastSaveID, game); err != nil {
		return 0, err
	}
	f.ledger.Update(game)

	f.metrics.IncSavesTotal()
	f.metrics.ObserveSaveDuration(time.Since(start))
	if n := f.ledger.Len(); n >= 0 {
		f.metrics.SetGamesTotal(n)
	}

	return game.LastSaveID + 1, nil
}

func (f *FileStore) GetGame(gameID string) (*models.SerializedGame, error) {
	return f.snapshots.Get(gameID)
}

func (f *FileStore) GetGameVersion(gameID string, saveID int) (*models.SerializedGame, error) {
	return f.history.Get(gameID, saveID)
}

// LoadCloneableGame returns the initial version of a game. Save id 0 exists
// for every game that has been saved at least once and is the canonical
// reference for cloning.
func (f *FileStore) LoadCloneableGame(gameID string) (*models.SerializedGame, error) {
	return f.history.Get(gameID, 0)
}

// RestoreGame overwrites the current snapshot with a historical version and
// returns the now-current state. No backup of the previously-current state is
// taken beyond what already exists in history.
func (f *FileStore) RestoreGame(gameID string, saveID int) (*models.SerializedGame, error) {
	game, err := f.history.Get(gameID, saveID)
	if err != nil {
		return nil, err
	}
	if err := f.snapshots.Put(game); err != nil {
		return nil, err
	}
	f.ledger.Update(game)
	f.metrics.IncRestoresTotal()

	f.logger.Infof(providers.TypeApp, "Game %s restored to save_id %d", gameID, saveID)
	return f.snapshots.Get(gameID)
}

// DeleteGameNbrSaves removes the last rollbackCount history entries of a
// game, by numeric save id order. The current snapshot is untouched.
// A non-positive count is a logged no-op, not an error.
func (f *FileStore) DeleteGameNbrSaves(gameID string, rollbackCount int) error {
	if rollbackCount <= 0 {
		f.logger.Warnf(providers.TypeApp, "Rollback count %d for game %s is not positive, nothing deleted", rollbackCount, gameID)
		return nil
	}

	ids, err := f.history.ListSaveIds(gameID)
	if err != nil {
		return err
	}
	if rollbackCount > len(ids) {
		rollbackCount = len(ids)
	}

	for _, id := range ids[len(ids)-rollbackCount:] {
		if err := f.history.DeleteSave(gameID, id); err != nil {
			return err
		}
	}
	f.logger.Infof(providers.TypeApp, "Deleted last %d save(s) of game %s", rollbackCount, gameID)
	return nil
}

func (f *FileStore) ListSaveIds(gameID string) ([]int, error) {
	return f.history.ListSaveIds(gameID)
}

func (f *FileStore) GetGameIds() ([]string, error) {
	return f.snapshots.ListGameIds()
}

func (f *FileStore) GetParticipants() ([]models.ParticipantEntry, error) {
	return f.ledger.GetParticipants()
}

func (f *FileStore) GetGameId(participantID string) (string, error) {
	return f.ledger.GetGameId(participantID)
}

func (f *FileStore) GetPlayerCount(gameID string) (int, error) {
	return f.ledger.GetPlayerCount(gameID)
}

// SaveGameResults is a no-op for this backend; finished games stay in the
// regular history like every other save.
func (f *FileStore) SaveGameResults(gameID string, players int, generations int) error {
	return nil
}

// CleanGame is a no-op for this backend; nothing is ever garbage collected
// from local disk automatically.
func (f *FileStore) CleanGame(gameID string) error {
	return nil
}

// PurgeUnfinishedGames is a no-op for this backend.
func (f *FileStore) PurgeUnfinishedGames() error {
	return nil
}

// StoreParticipants is a no-op for this backend; the participant ledger is
// derived from snapshots instead of being stored separately.
func (f *FileStore) StoreParticipants(entry models.ParticipantEntry) error {
	return nil
}

// RestoreReferenceGame is not supported by the filesystem backend and fails
// fast rather than silently degrading.
func (f *FileStore) RestoreReferenceGame(gameID string) (*models.SerializedGame, error) {
	return nil, fmt.Errorf("restoreReferenceGame for %s: %w", gameID, models.ErrUnsupported)
}

func (f *FileStore) Capabilities() Capabilities {
	return Capabilities{}
}

func (f *FileStore) Stats() map[string]string {
	return map[string]string{
		"type":         "Local Filesystem",
		"path":         f.paths.Root(),
		"history_path": f.paths.HistoryDir(),
	}
}
