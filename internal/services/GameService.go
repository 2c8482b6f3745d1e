package services

import (
	"fmt"

	"github.com/h-wang94/terraforming-mars/internal/models"
	"github.com/h-wang94/terraforming-mars/internal/providers"
	"github.com/h-wang94/terraforming-mars/internal/store"
)

type GameServiceInterface interface {
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
	Capabilities() store.Capabilities
	Stats() map[string]string
}

// GameService fronts the persistence facade for the admin surface: it
// validates the coordinates of incoming writes before the store, a dumb sink
// by contract, trusts them.
type GameService struct {
	store  store.GameStoreInterface
	logger providers.Logger
}

func NewGameService(gameStore store.GameStoreInterface, logger providers.Logger) GameServiceInterface {
	return &GameService{
		store:  gameStore,
		logger: logger,
	}
}

func (gs *GameService) SaveGame(game *models.SerializedGame) (int, error) {
	if game == nil || !models.IsGameID(game.ID) {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidGameID, gameIDOf(game))
	}
	if game.LastSaveID < 0 {
		return 0, fmt.Errorf("%w: %d", models.ErrInvalidSaveID, game.LastSaveID)
	}
	for _, pid := range game.ParticipantIDs() {
		if !models.IsPlayerID(pid) && !models.IsSpectatorID(pid) {
			gs.logger.Warnf(providers.TypeApp, "Game %s carries unrecognized participant id %q", game.ID, pid)
		}
	}

	nextSaveID, err := gs.store.SaveGame(game)
	if err != nil {
		gs.logger.Errorf(providers.TypeApp, "Failed to save game %s at save_id %d: %s", game.ID, game.LastSaveID, err)
		return 0, err
	}
	gs.logger.Debugf(providers.TypeApp, "Saved game %s at save_id %d", game.ID, game.LastSaveID)
	return nextSaveID, nil
}

func gameIDOf(game *models.SerializedGame) string {
	if game == nil {
		return ""
	}
	return game.ID
}

func (gs *GameService) GetGame(gameID string) (*models.SerializedGame, error) {
	return gs.store.GetGame(gameID)
}

func (gs *GameService) GetGameVersion(gameID string, saveID int) (*models.SerializedGame, error) {
	if saveID < 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidSaveID, saveID)
	}
	return gs.store.GetGameVersion(gameID, saveID)
}

func (gs *GameService) LoadCloneableGame(gameID string) (*models.SerializedGame, error) {
	return gs.store.LoadCloneableGame(gameID)
}

func (gs *GameService) RestoreGame(gameID string, saveID int) (*models.SerializedGame, error) {
	if saveID < 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidSaveID, saveID)
	}
	return gs.store.RestoreGame(gameID, saveID)
}

func (gs *GameService) DeleteGameNbrSaves(gameID string, rollbackCount int) error {
	return gs.store.DeleteGameNbrSaves(gameID, rollbackCount)
}

func (gs *GameService) ListSaveIds(gameID string) ([]int, error) {
	return gs.store.ListSaveIds(gameID)
}

func (gs *GameService) GetGameIds() ([]string, error) {
	return gs.store.GetGameIds()
}

func (gs *GameService) GetParticipants() ([]models.ParticipantEntry, error) {
	return gs.store.GetParticipants()
}

func (gs *GameService) GetGameId(participantID string) (string, error) {
	return gs.store.GetGameId(participantID)
}

func (gs *GameService) GetPlayerCount(gameID string) (int, error) {
	return gs.store.GetPlayerCount(gameID)
}

func (gs *GameService) Capabilities() store.Capabilities {
	return gs.store.Capabilities()
}

func (gs *GameService) Stats() map[string]string {
	return gs.store.Stats()
}
