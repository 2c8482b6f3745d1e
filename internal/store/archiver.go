package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/h-wang94/terraforming-mars/internal/models"
	"github.com/h-wang94/terraforming-mars/internal/providers"
	"github.com/h-wang94/terraforming-mars/internal/store/interfaces"
	"github.com/h-wang94/terraforming-mars/internal/structures"
)

const bundleSuffix = ".bundle.zst"

// GameBundle is the on-disk format of an exported game: the current snapshot
// plus every history entry, as raw file contents. History keys are the
// zero-padded save ids.
type GameBundle struct {
	GameID     string                     `json:"gameId"`
	ExportedAt time.Time                  `json:"exportedAt"`
	Current    json.RawMessage            `json:"current"`
	History    map[string]json.RawMessage `json:"history"`
}

// Archiver exports one game into a single zstd-compressed bundle for offline
// backup. Only exports are compressed; the live snapshot and history files
// stay plain indented JSON.
type Archiver struct {
	dir        string
	paths      Paths
	history    *HistoryStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewArchiver(conf *structures.Config, paths Paths, history *HistoryStore, compressor interfaces.CompressorInterface, logger providers.Logger) *Archiver {
	dir := conf.Archive.Dir
	if dir == "" {
		dir = filepath.Join(conf.Storage.Dir, "archive")
	}
	return &Archiver{
		dir:        dir,
		paths:      paths,
		history:    history,
		compressor: compressor,
		logger:     logger,
	}
}

func (a *Archiver) BundlePath(gameID string) string {
	return filepath.Join(a.dir, gameID+bundleSuffix)
}

// ExportGame bundles the current snapshot and the full history of a game and
// writes it compressed under the archive directory. Returns the bundle path.
func (a *Archiver) ExportGame(gameID string) (string, error) {
	current, err := os.ReadFile(a.paths.Snapshot(gameID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", models.GameNotFoundError{GameID: gameID, SaveID: -1}
		}
		return "", err
	}

	saveIDs, err := a.history.ListSaveIds(gameID)
	if err != nil {
		return "", err
	}

	bundle := GameBundle{
		GameID:     gameID,
		ExportedAt: time.Now().UTC(),
		Current:    current,
		History:    make(map[string]json.RawMessage, len(saveIDs)),
	}
	for _, saveID := range saveIDs {
		data, err := os.ReadFile(a.paths.History(gameID, saveID))
		if err != nil {
			return "", err
		}
		bundle.History[fmt.Sprintf("%05d", saveID)] = data
	}

	jsonData, err := json.Marshal(bundle)
	if err != nil {
		return "", err
	}
	compressed, err := a.compressor.Compress(jsonData)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", err
	}
	path := a.BundlePath(gameID)
	if err := writeFileAtomic(path, compressed); err != nil {
		return "", err
	}

	a.logger.Infof(providers.TypeApp, "Exported game %s (%d history entries) to %s", gameID, len(saveIDs), path)
	return path, nil
}

// ReadBundle loads and decompresses a previously exported bundle.
func (a *Archiver) ReadBundle(gameID string) (*GameBundle, error) {
	data, err := os.ReadFile(a.BundlePath(gameID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.GameNotFoundError{GameID: gameID, SaveID: -1}
		}
		return nil, err
	}

	decompressed, err := a.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}

	var bundle GameBundle
	if err := json.Unmarshal(decompressed, &bundle); err != nil {
		return nil, models.CorruptGameError{Path: a.BundlePath(gameID), Err: err}
	}
	return &bundle, nil
}

func (a *Archiver) Close() {
	a.compressor.Close()
}
