//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"photoaudit/internal"
	"photoaudit/internal/commcare"
	"photoaudit/internal/controllers"
	"photoaudit/internal/preview"
	"photoaudit/internal/providers"
	"photoaudit/internal/services"
	"photoaudit/internal/storage"
	"photoaudit/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		services.NewReviewService,
		wire.Bind(new(providers.ProgressSource), new(services.ReviewServiceInterface)),
		providers.NewMetricsProvider,
		providers.NewPreviewCacheProvider,

		storage.NewZstdCompressor,
		storage.NewFileManager,
		preview.NewRenderer,
		services.NewScanService,
		services.NewSessionService,
		commcare.NewFetcher,
		controllers.NewReviewController,
		controllers.NewConsoleController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
