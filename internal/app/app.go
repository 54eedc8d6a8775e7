package app

import (
	"log/slog"

	"github.com/vinci-protocol/vinci-deploy/internal/adapters/blockchain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Signers   *blockchain.Factory
	Confirmer usecase.Confirmer
	Selector  usecase.Selector
	Markets   usecase.MarketRepository

	// Use cases
	ListMarkets    *usecase.ListMarkets
	ListNetworks   *usecase.ListNetworks
	DeployMarket   *usecase.DeployMarket
	DeployContract *usecase.DeployContract
	Libraries      *usecase.LibraryResolver
	MarketOps      *usecase.MarketOperations
	Oracles        *usecase.OracleOperations
	Registry       *usecase.RegistryOperations
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	signers *blockchain.Factory,
	confirmer usecase.Confirmer,
	selector usecase.Selector,
	markets usecase.MarketRepository,
	listMarkets *usecase.ListMarkets,
	listNetworks *usecase.ListNetworks,
	deployMarket *usecase.DeployMarket,
	deployContract *usecase.DeployContract,
	libraries *usecase.LibraryResolver,
	marketOps *usecase.MarketOperations,
	oracles *usecase.OracleOperations,
	registry *usecase.RegistryOperations,
) *App {
	return &App{
		Config:         cfg,
		Log:            log,
		Signers:        signers,
		Confirmer:      confirmer,
		Selector:       selector,
		Markets:        markets,
		ListMarkets:    listMarkets,
		ListNetworks:   listNetworks,
		DeployMarket:   deployMarket,
		DeployContract: deployContract,
		Libraries:      libraries,
		MarketOps:      marketOps,
		Oracles:        oracles,
		Registry:       registry,
	}
}
