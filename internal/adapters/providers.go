package adapters

import (
	"context"
	"log/slog"

	"github.com/google/wire"
	"github.com/vinci-protocol/vinci-deploy/internal/adapters/artifacts"
	"github.com/vinci-protocol/vinci-deploy/internal/adapters/blockchain"
	"github.com/vinci-protocol/vinci-deploy/internal/adapters/interactive"
	"github.com/vinci-protocol/vinci-deploy/internal/adapters/registry"
	"github.com/vinci-protocol/vinci-deploy/internal/adapters/verification"
	internalconfig "github.com/vinci-protocol/vinci-deploy/internal/config"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// ProvideAddressStore opens the configured registry backend
func ProvideAddressStore(cfg *config.RuntimeConfig, log *slog.Logger) (usecase.AddressStore, func(), error) {
	return registry.Open(context.Background(), cfg, log)
}

// RegistrySet provides the address store
var RegistrySet = wire.NewSet(
	ProvideAddressStore,
)

// ArtifactSet provides compiled contract artifacts
var ArtifactSet = wire.NewSet(
	artifacts.NewRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*artifacts.Repository)),
)

// VerificationSet provides source verification
var VerificationSet = wire.NewSet(
	verification.NewHardhatVerifier,
	wire.Bind(new(usecase.ContractVerifier), new(*verification.HardhatVerifier)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewPromptAdapter,
	wire.Bind(new(usecase.Confirmer), new(*interactive.PromptAdapter)),
	wire.Bind(new(usecase.Selector), new(*interactive.PromptAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	internalconfig.ProvideNetworkResolver,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolver)),

	internalconfig.NewMarketRepository,
	wire.Bind(new(usecase.MarketRepository), new(*internalconfig.MarketRepository)),
)

// BlockchainSet provides the submitter factory
var BlockchainSet = wire.NewSet(
	blockchain.NewFactory,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	RegistrySet,
	ArtifactSet,
	VerificationSet,
	InteractiveSet,
	ConfigSet,
	BlockchainSet,
)
