package controllers

import (
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/h-wang94/terraforming-mars/internal/models"
	"github.com/h-wang94/terraforming-mars/internal/providers"
	"github.com/h-wang94/terraforming-mars/internal/services"
	"github.com/h-wang94/terraforming-mars/internal/store"
)

const maxRequestBodySize = 10 << 20 // 10 MB, full game states can be large

type ApiController struct {
	logger   providers.Logger
	service  services.GameServiceInterface
	cache    providers.CacheProviderInterface
	archiver *store.Archiver
}

func NewApiController(logger providers.Logger, service services.GameServiceInterface, cache providers.CacheProviderInterface, archiver *store.Archiver) *ApiController {
	return &ApiController{
		logger:   logger,
		service:  service,
		cache:    cache,
		archiver: archiver,
	}
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logType := providers.GetLogTypeByRequestType(r.Method)
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrUnsupported):
		http.Error(w, err.Error(), http.StatusNotImplemented)
	case errors.Is(err, models.ErrInvalidGameID), errors.Is(err, models.ErrInvalidSaveID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		ac.logger.Errorf(logType, "%s %s failed: %s", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// invalidateListings drops the cached listing responses after a write, so a
// new game or reseated participant shows up on the next read instead of after
// the TTL.
func (ac *ApiController) invalidateListings() {
	ac.cache.Del("games")
	ac.cache.Del("participants")
}

func saveIDParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, models.ErrInvalidSaveID
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, models.ErrInvalidSaveID
	}
	return id, nil
}

// SaveGame stores the posted snapshot and responds with the save id the
// engine should use for its next save.
func (ac *ApiController) SaveGame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var game models.SerializedGame
	if err := json.NewDecoder(r.Body).Decode(&game); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	nextSaveID, err := ac.service.SaveGame(&game)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.invalidateListings()
	ac.writeJSON(w, http.StatusCreated, map[string]int{"nextSaveId": nextSaveID})
}

func (ac *ApiController) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := ac.service.GetGame(r.URL.Query().Get("id"))
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, game)
}

func (ac *ApiController) GetGameVersion(w http.ResponseWriter, r *http.Request) {
	saveID, err := saveIDParam(r, "save_id")
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	game, err := ac.service.GetGameVersion(r.URL.Query().Get("id"), saveID)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, game)
}

func (ac *ApiController) GetCloneableGame(w http.ResponseWriter, r *http.Request) {
	game, err := ac.service.LoadCloneableGame(r.URL.Query().Get("id"))
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, game)
}

func (ac *ApiController) ListSaveIds(w http.ResponseWriter, r *http.Request) {
	ids, err := ac.service.ListSaveIds(r.URL.Query().Get("id"))
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, map[string][]int{"saveIds": ids})
}

type restoreRequest struct {
	ID     string `json:"id"`
	SaveID int    `json:"saveId"`
}

// RestoreGame rolls the current snapshot back to a historical version.
func (ac *ApiController) RestoreGame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	game, err := ac.service.RestoreGame(req.ID, req.SaveID)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.invalidateListings()
	ac.writeJSON(w, http.StatusOK, game)
}

type rollbackRequest struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// RollbackSaves deletes the last N history entries of a game.
func (ac *ApiController) RollbackSaves(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req rollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.service.DeleteGameNbrSaves(req.ID, req.Count); err != nil {
		ac.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type exportRequest struct {
	ID string `json:"id"`
}

// ExportGame writes a compressed offline bundle of one game and responds with
// its location.
func (ac *ApiController) ExportGame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	path, err := ac.archiver.ExportGame(req.ID)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, map[string]string{"bundle": path})
}

func (ac *ApiController) ListGames(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, r, "games", func() (any, error) {
		ids, err := ac.service.GetGameIds()
		if err != nil {
			return nil, err
		}
		return map[string][]string{"gameIds": ids}, nil
	})
}

func (ac *ApiController) GetParticipants(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, r, "participants", func() (any, error) {
		return ac.service.GetParticipants()
	})
}

func (ac *ApiController) GetParticipantGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := ac.service.GetGameId(r.URL.Query().Get("id"))
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, map[string]string{"gameId": gameID})
}

func (ac *ApiController) GetPlayerCount(w http.ResponseWriter, r *http.Request) {
	count, err := ac.service.GetPlayerCount(r.URL.Query().Get("id"))
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, map[string]int{"playerCount": count})
}

func (ac *ApiController) GetStats(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, map[string]any{
		"backend":      ac.service.Stats(),
		"capabilities": ac.service.Capabilities(),
	})
}
