//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"PredTrack/pkg/config"
	"PredTrack/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvidePostgresClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideStore,
		ProvidePublisher,
		ProvideForecastClient,
		ProvideTruthSource,

		// Use cases
		ProvideHorizons,
		ProvideIngestJob,
		ProvideScoreJob,
		ProvideMetricsAggregator,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
