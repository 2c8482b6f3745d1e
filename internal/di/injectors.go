//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"github.com/h-wang94/terraforming-mars/internal"
	"github.com/h-wang94/terraforming-mars/internal/controllers"
	"github.com/h-wang94/terraforming-mars/internal/providers"
	"github.com/h-wang94/terraforming-mars/internal/services"
	"github.com/h-wang94/terraforming-mars/internal/store"
	"github.com/h-wang94/terraforming-mars/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		store.NewPaths,
		store.NewSnapshotStore,
		store.NewHistoryStore,
		store.NewLedger,
		store.NewZstdCompressor,
		store.NewArchiver,
		store.NewFileStore,
		services.NewGameService,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
