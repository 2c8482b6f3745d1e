package store

import (
	"fmt"
	"path/filepath"

	"github.com/h-wang94/terraforming-mars/internal/structures"
)

const historyDirName = "history"

// Paths derives the on-disk location of every snapshot and history file.
// Pure: no side effects, stable across restarts for the same root, and two
// distinct (gameID, saveID) pairs never collide.
type Paths struct {
	root string
}

func NewPaths(conf *structures.Config) Paths {
	return Paths{root: conf.Storage.Dir}
}

func (p Paths) Root() string { return p.root }

func (p Paths) HistoryDir() string { return filepath.Join(p.root, historyDirName) }

// Snapshot returns the current-state file for a game, one per game id.
func (p Paths) Snapshot(gameID string) string {
	return filepath.Join(p.root, gameID+".json")
}

// History returns the immutable file for one save. The save id is rendered
// zero-padded to five digits so lexicographic directory order equals numeric
// order.
func (p Paths) History(gameID string, saveID int) string {
	return filepath.Join(p.HistoryDir(), fmt.Sprintf("%s-%05d.json", gameID, saveID))
}
