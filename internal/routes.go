package internal

import (
	"net/http"

	"github.com/h-wang94/terraforming-mars/internal/controllers"
	"github.com/h-wang94/terraforming-mars/internal/providers"
	"github.com/h-wang94/terraforming-mars/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/game", http.HandlerFunc(apiController.SaveGame))
	routers.Get("/game", http.HandlerFunc(apiController.GetGame))
	routers.Get("/game/version", http.HandlerFunc(apiController.GetGameVersion))
	routers.Get("/game/cloneable", http.HandlerFunc(apiController.GetCloneableGame))
	routers.Get("/game/saves", http.HandlerFunc(apiController.ListSaveIds))
	routers.Get("/game/players", http.HandlerFunc(apiController.GetPlayerCount))
	routers.Post("/game/restore", http.HandlerFunc(apiController.RestoreGame))
	routers.Post("/game/rollback", http.HandlerFunc(apiController.RollbackSaves))
	routers.Post("/game/export", http.HandlerFunc(apiController.ExportGame))
	routers.Get("/games", http.HandlerFunc(apiController.ListGames))
	routers.Get("/participants", http.HandlerFunc(apiController.GetParticipants))
	routers.Get("/participant", http.HandlerFunc(apiController.GetParticipantGame))
	routers.Get("/stats", http.HandlerFunc(apiController.GetStats))
	return routers
}
