//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/vinci-protocol/vinci-deploy/internal/adapters"
	"github.com/vinci-protocol/vinci-deploy/internal/config"
	"github.com/vinci-protocol/vinci-deploy/internal/logging"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, func(), error) {
	wire.Build(
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Domain services
		usecase.NewAddressRegistry,
		usecase.NewDeploymentPipeline,
		usecase.NewLibraryResolver,
		usecase.NewTokenImplementations,
		usecase.NewSpecBuilder,
		usecase.NewBatchInitializer,
		usecase.NewOracleSetup,
		usecase.NewMarketOperations,

		// Use cases
		usecase.NewListMarkets,
		usecase.NewListNetworks,
		usecase.NewDeployMarket,
		usecase.NewDeployContract,
		usecase.NewOracleOperations,
		usecase.NewRegistryOperations,

		// App
		NewApp,
	)
	return nil, nil, nil
}
