package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h-wang94/terraforming-mars/internal/models"
	"github.com/h-wang94/terraforming-mars/internal/providers"
	"github.com/h-wang94/terraforming-mars/internal/store"
	"github.com/h-wang94/terraforming-mars/internal/structures"
)

type apiTestLogger struct{}

func (m *apiTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *apiTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *apiTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *apiTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *apiTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *apiTestLogger) Close()                                                  {}

type apiTestCache struct {
	data map[string][]byte
}

func newApiTestCache() *apiTestCache {
	return &apiTestCache{data: make(map[string][]byte)}
}

func (m *apiTestCache) Get(key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *apiTestCache) Set(key string, value []byte) {
	m.data[key] = value
}

func (m *apiTestCache) Del(key string) {
	delete(m.data, key)
}

type mockGameService struct {
	game        *models.SerializedGame
	saveErr     error
	getErr      error
	restoreErr  error
	deleteErr   error
	saveIDs     []int
	gameIDs     []string
	listCalls   int
	participant string
}

func (m *mockGameService) SaveGame(game *models.SerializedGame) (int, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.game = game
	return game.LastSaveID + 1, nil
}

func (m *mockGameService) GetGame(gameID string) (*models.SerializedGame, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.SerializedGame{ID: gameID, LastSaveID: 3}, nil
}

func (m *mockGameService) GetGameVersion(gameID string, saveID int) (*models.SerializedGame, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.SerializedGame{ID: gameID, LastSaveID: saveID}, nil
}

func (m *mockGameService) LoadCloneableGame(gameID string) (*models.SerializedGame, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.SerializedGame{ID: gameID, LastSaveID: 0}, nil
}

func (m *mockGameService) RestoreGame(gameID string, saveID int) (*models.SerializedGame, error) {
	if m.restoreErr != nil {
		return nil, m.restoreErr
	}
	return &models.SerializedGame{ID: gameID, LastSaveID: saveID}, nil
}

func (m *mockGameService) DeleteGameNbrSaves(gameID string, rollbackCount int) error {
	return m.deleteErr
}

func (m *mockGameService) ListSaveIds(gameID string) ([]int, error) {
	return m.saveIDs, nil
}

func (m *mockGameService) GetGameIds() ([]string, error) {
	m.listCalls++
	return m.gameIDs, nil
}

func (m *mockGameService) GetParticipants() ([]models.ParticipantEntry, error) {
	return []models.ParticipantEntry{
		{GameID: "gaaa111222333", ParticipantIDs: []string{"p111111aaaaaa", "s333333cccccc"}},
	}, nil
}

func (m *mockGameService) GetGameId(participantID string) (string, error) {
	m.participant = participantID
	if participantID == "p000000000000" {
		return "", models.ParticipantNotFoundError(participantID)
	}
	return "gaaa111222333", nil
}

func (m *mockGameService) GetPlayerCount(gameID string) (int, error) {
	return 2, nil
}

func (m *mockGameService) Capabilities() store.Capabilities {
	return store.Capabilities{}
}

func (m *mockGameService) Stats() map[string]string {
	return map[string]string{"type": "Local Filesystem"}
}

func newTestController(service *mockGameService) *ApiController {
	return NewApiController(&apiTestLogger{}, service, newApiTestCache(), nil)
}

func TestApiController_SaveGame(t *testing.T) {
	service := &mockGameService{}
	controller := newTestController(service)

	body, _ := json.Marshal(models.SerializedGame{ID: "gaaa111222333", LastSaveID: 2})
	req := httptest.NewRequest(http.MethodPost, "/game", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.SaveGame(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp["nextSaveId"])
}

func TestApiController_SaveGame_MalformedBody(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodPost, "/game", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	controller.SaveGame(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApiController_SaveGame_InvalidGameID(t *testing.T) {
	service := &mockGameService{saveErr: models.ErrInvalidGameID}
	controller := newTestController(service)

	body, _ := json.Marshal(models.SerializedGame{ID: "bad"})
	req := httptest.NewRequest(http.MethodPost, "/game", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.SaveGame(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApiController_GetGame(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodGet, "/game?id=gaaa111222333", nil)
	rr := httptest.NewRecorder()
	controller.GetGame(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var game models.SerializedGame
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.Equal(t, "gaaa111222333", game.ID)
}

func TestApiController_GetGame_NotFound(t *testing.T) {
	service := &mockGameService{getErr: models.GameNotFoundError{GameID: "gdead00000000", SaveID: -1}}
	controller := newTestController(service)

	req := httptest.NewRequest(http.MethodGet, "/game?id=gdead00000000", nil)
	rr := httptest.NewRecorder()
	controller.GetGame(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Game gdead00000000 not found")
}

func TestApiController_GetGameVersion(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodGet, "/game/version?id=gaaa111222333&save_id=2", nil)
	rr := httptest.NewRecorder()
	controller.GetGameVersion(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var game models.SerializedGame
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.Equal(t, 2, game.LastSaveID)
}

func TestApiController_GetGameVersion_MissingSaveID(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodGet, "/game/version?id=gaaa111222333", nil)
	rr := httptest.NewRecorder()
	controller.GetGameVersion(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApiController_GetGameVersion_NegativeSaveID(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodGet, "/game/version?id=gaaa111222333&save_id=-1", nil)
	rr := httptest.NewRecorder()
	controller.GetGameVersion(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApiController_GetCloneableGame(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodGet, "/game/cloneable?id=gaaa111222333", nil)
	rr := httptest.NewRecorder()
	controller.GetCloneableGame(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var game models.SerializedGame
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.Equal(t, 0, game.LastSaveID)
}

func TestApiController_ListSaveIds(t *testing.T) {
	service := &mockGameService{saveIDs: []int{0, 1, 2}}
	controller := newTestController(service)

	req := httptest.NewRequest(http.MethodGet, "/game/saves?id=gaaa111222333", nil)
	rr := httptest.NewRecorder()
	controller.ListSaveIds(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string][]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []int{0, 1, 2}, resp["saveIds"])
}

func TestApiController_RestoreGame(t *testing.T) {
	controller := newTestController(&mockGameService{})

	body := []byte(`{"id":"gaaa111222333","saveId":1}`)
	req := httptest.NewRequest(http.MethodPost, "/game/restore", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.RestoreGame(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var game models.SerializedGame
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.Equal(t, 1, game.LastSaveID)
}

func TestApiController_RestoreGame_NotFound(t *testing.T) {
	service := &mockGameService{restoreErr: models.GameNotFoundError{GameID: "gaaa111222333", SaveID: 9}}
	controller := newTestController(service)

	body := []byte(`{"id":"gaaa111222333","saveId":9}`)
	req := httptest.NewRequest(http.MethodPost, "/game/restore", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.RestoreGame(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "not found at save_id 9")
}

func TestApiController_RollbackSaves(t *testing.T) {
	controller := newTestController(&mockGameService{})

	body := []byte(`{"id":"gaaa111222333","count":2}`)
	req := httptest.NewRequest(http.MethodPost, "/game/rollback", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.RollbackSaves(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestApiController_ListGames_CachesResponse(t *testing.T) {
	service := &mockGameService{gameIDs: []string{"gaaa111222333", "gbbb444555666"}}
	controller := newTestController(service)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/games", nil)
		rr := httptest.NewRecorder()
		controller.ListGames(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp map[string][]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, []string{"gaaa111222333", "gbbb444555666"}, resp["gameIds"])
	}

	// second request must come from the cache
	assert.Equal(t, 1, service.listCalls)
}

func TestApiController_SaveGame_EvictsListingCaches(t *testing.T) {
	service := &mockGameService{gameIDs: []string{"gaaa111222333"}}
	controller := newTestController(service)

	// Prime the listing cache.
	req := httptest.NewRequest(http.MethodGet, "/games", nil)
	rr := httptest.NewRecorder()
	controller.ListGames(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, service.listCalls)

	service.gameIDs = append(service.gameIDs, "gbbb444555666")
	body, _ := json.Marshal(models.SerializedGame{ID: "gbbb444555666", LastSaveID: 0})
	req = httptest.NewRequest(http.MethodPost, "/game", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	controller.SaveGame(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	// The save must drop the cached listing, so the new game is visible now.
	req = httptest.NewRequest(http.MethodGet, "/games", nil)
	rr = httptest.NewRecorder()
	controller.ListGames(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, service.listCalls)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp["gameIds"], "gbbb444555666")
}

func TestApiController_RestoreGame_EvictsListingCaches(t *testing.T) {
	service := &mockGameService{}
	controller := newTestController(service)

	req := httptest.NewRequest(http.MethodGet, "/participants", nil)
	rr := httptest.NewRecorder()
	controller.GetParticipants(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	body := []byte(`{"id":"gaaa111222333","saveId":0}`)
	req = httptest.NewRequest(http.MethodPost, "/game/restore", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	controller.RestoreGame(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	cache := controller.cache.(*apiTestCache)
	_, ok := cache.data["participants"]
	assert.False(t, ok)
	_, ok = cache.data["games"]
	assert.False(t, ok)
}

func TestApiController_GetParticipants(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodGet, "/participants", nil)
	rr := httptest.NewRecorder()
	controller.GetParticipants(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var entries []models.ParticipantEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "gaaa111222333", entries[0].GameID)
}

func TestApiController_GetParticipantGame(t *testing.T) {
	service := &mockGameService{}
	controller := newTestController(service)

	req := httptest.NewRequest(http.MethodGet, "/participant?id=p111111aaaaaa", nil)
	rr := httptest.NewRecorder()
	controller.GetParticipantGame(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "p111111aaaaaa", service.participant)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "gaaa111222333", resp["gameId"])
}

func TestApiController_GetParticipantGame_NotFound(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodGet, "/participant?id=p000000000000", nil)
	rr := httptest.NewRecorder()
	controller.GetParticipantGame(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "participant id p000000000000 not found")
}

func TestApiController_GetPlayerCount(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodGet, "/game/players?id=gaaa111222333", nil)
	rr := httptest.NewRecorder()
	controller.GetPlayerCount(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["playerCount"])
}

func TestApiController_GetStats(t *testing.T) {
	controller := newTestController(&mockGameService{})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rr := httptest.NewRecorder()
	controller.GetStats(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	backend, ok := resp["backend"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Local Filesystem", backend["type"])
	assert.Contains(t, resp, "capabilities")
}

type identityCompressor struct{}

func (m *identityCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (m *identityCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
func (m *identityCompressor) Close()                                 {}

func TestApiController_ExportGame(t *testing.T) {
	root := t.TempDir()
	conf := &structures.Config{
		Storage: structures.StorageConfig{Dir: root},
	}
	paths := store.NewPaths(conf)
	logger := &apiTestLogger{}
	history := store.NewHistoryStore(paths, logger)
	archiver := store.NewArchiver(conf, paths, history, &identityCompressor{}, logger)

	require.NoError(t, os.MkdirAll(paths.HistoryDir(), 0755))
	snapshot := []byte(`{"id": "gaaa111222333", "lastSaveId": 1}`)
	require.NoError(t, os.WriteFile(paths.Snapshot("gaaa111222333"), snapshot, 0644))
	require.NoError(t, os.WriteFile(paths.History("gaaa111222333", 0), snapshot, 0644))

	controller := NewApiController(logger, &mockGameService{}, newApiTestCache(), archiver)

	body := []byte(`{"id":"gaaa111222333"}`)
	req := httptest.NewRequest(http.MethodPost, "/game/export", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.ExportGame(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, filepath.Join(root, "archive", "gaaa111222333.bundle.zst"), resp["bundle"])
	_, err := os.Stat(resp["bundle"])
	assert.NoError(t, err)
}

func TestApiController_ExportGame_UnknownGame(t *testing.T) {
	root := t.TempDir()
	conf := &structures.Config{
		Storage: structures.StorageConfig{Dir: root},
	}
	paths := store.NewPaths(conf)
	logger := &apiTestLogger{}
	history := store.NewHistoryStore(paths, logger)
	archiver := store.NewArchiver(conf, paths, history, &identityCompressor{}, logger)

	controller := NewApiController(logger, &mockGameService{}, newApiTestCache(), archiver)

	body := []byte(`{"id":"gdead00000000"}`)
	req := httptest.NewRequest(http.MethodPost, "/game/export", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.ExportGame(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
