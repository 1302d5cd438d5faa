//go:build wireinject
// +build wireinject

package di

import (
	"AlgoSensei/pkg/config"
	"AlgoSensei/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvidePostgresClient,

		// Repositories and upstream services
		ProvideSessionStores,
		ProvideAuthProvider,
		ProvideProfileDirectory,
		ProvideMarketSource,
		ProvideChatCompleter,
		ProvideLoginLimiter,

		// Use cases
		ProvideSessionManager,
		ProvideSnapshotFanout,
		ProvideSnapshotBoard,
		ProvideMarketPoller,
		ProvideMarketFeed,
		ProvideAdvisor,

		// Transport
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
