package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// Logical ids of the market's core contracts
const (
	ConfiguratorID = "LendingPoolConfigurator"
	DataProviderID = "AaveProtocolDataProvider"
)

// MarketOperations runs the batch operations of one market against its registered contracts
type MarketOperations struct {
	markets  MarketRepository
	registry *AddressRegistry
	builder  *SpecBuilder
	batch    *BatchInitializer
	log      *slog.Logger
}

// NewMarketOperations creates a new MarketOperations
func NewMarketOperations(
	markets MarketRepository,
	registry *AddressRegistry,
	builder *SpecBuilder,
	batch *BatchInitializer,
	log *slog.Logger,
) *MarketOperations {
	return &MarketOperations{
		markets:  markets,
		registry: registry,
		builder:  builder,
		batch:    batch,
		log:      log.With("component", "MarketOperations"),
	}
}

// Target resolves the configurator and data provider of the market.
// A market without a registered data provider runs without on-chain pre-checks.
func (m *MarketOperations) Target(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig) (BatchTarget, error) {
	net := market.Network(dctx.Network)
	override, err := explicit(net, ConfiguratorID)
	if err != nil {
		return BatchTarget{}, err
	}
	configurator, err := m.registry.GetOrFallback(ctx, dctx.MarketKey(ConfiguratorID), override)
	if err != nil {
		return BatchTarget{}, err
	}

	override, err = explicit(net, DataProviderID)
	if err != nil {
		return BatchTarget{}, err
	}
	dataProvider, err := m.registry.GetOrFallback(ctx, dctx.MarketKey(DataProviderID), override)
	if errors.Is(err, domain.ErrMissingAddress) {
		m.log.Warn("no data provider registered, skipping on-chain checks", "network", dctx.Network, "market", dctx.MarketID)
		dataProvider, err = common.Address{}, nil
	}
	if err != nil {
		return BatchTarget{}, err
	}
	return BatchTarget{Configurator: configurator, DataProvider: dataProvider}, nil
}

func (m *MarketOperations) load(ctx context.Context, dctx *DeploymentContext) (*models.MarketConfig, BatchTarget, error) {
	market, err := m.markets.GetMarket(ctx, dctx.MarketID)
	if err != nil {
		return nil, BatchTarget{}, err
	}
	target, err := m.Target(ctx, dctx, market)
	if err != nil {
		return nil, BatchTarget{}, err
	}
	return market, target, nil
}

// InitReserves onboards the market's reserves; chunkSize 0 uses the market default
func (m *MarketOperations) InitReserves(ctx context.Context, dctx *DeploymentContext, chunkSize int) (*models.Report, error) {
	market, target, err := m.load(ctx, dctx)
	if err != nil {
		return nil, err
	}
	return m.initReserves(ctx, dctx, market, target, chunkSize)
}

func (m *MarketOperations) initReserves(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig, target BatchTarget, chunkSize int) (*models.Report, error) {
	specs, err := m.builder.ReserveSpecs(ctx, dctx, market)
	if err != nil {
		return nil, err
	}
	if chunkSize == 0 {
		chunkSize = orDefault(market.ReserveChunkSize, DefaultReserveChunkSize)
	}
	return m.batch.InitReserves(ctx, dctx, target, specs, chunkSize)
}

// InitVaults onboards the market's NFT vaults; chunkSize 0 uses the market default
func (m *MarketOperations) InitVaults(ctx context.Context, dctx *DeploymentContext, chunkSize int) (*models.Report, error) {
	market, target, err := m.load(ctx, dctx)
	if err != nil {
		return nil, err
	}
	return m.initVaults(ctx, dctx, market, target, chunkSize)
}

func (m *MarketOperations) initVaults(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig, target BatchTarget, chunkSize int) (*models.Report, error) {
	specs, err := m.builder.VaultSpecs(ctx, dctx, market)
	if err != nil {
		return nil, err
	}
	if chunkSize == 0 {
		chunkSize = orDefault(market.VaultChunkSize, DefaultVaultChunkSize)
	}
	return m.batch.InitVaults(ctx, dctx, target, specs, chunkSize)
}

// ConfigureReserves applies the reserves' risk parameters
func (m *MarketOperations) ConfigureReserves(ctx context.Context, dctx *DeploymentContext) (*models.Report, error) {
	market, target, err := m.load(ctx, dctx)
	if err != nil {
		return nil, err
	}
	return m.configureReserves(ctx, dctx, market, target)
}

func (m *MarketOperations) configureReserves(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig, target BatchTarget) (*models.Report, error) {
	specs, err := m.builder.ReserveRiskSpecs(dctx, market)
	if err != nil {
		return nil, err
	}
	return m.batch.ConfigureReserves(ctx, dctx, target, specs)
}

// ConfigureVaults enables the NFT vaults as collateral
func (m *MarketOperations) ConfigureVaults(ctx context.Context, dctx *DeploymentContext) (*models.Report, error) {
	market, target, err := m.load(ctx, dctx)
	if err != nil {
		return nil, err
	}
	return m.configureVaults(ctx, dctx, market, target)
}

func (m *MarketOperations) configureVaults(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig, target BatchTarget) (*models.Report, error) {
	specs, err := m.builder.VaultRiskSpecs(dctx, market)
	if err != nil {
		return nil, err
	}
	return m.batch.ConfigureVaults(ctx, dctx, target, specs)
}

// UpdateNTokens moves every vault to the currently registered nToken implementation
func (m *MarketOperations) UpdateNTokens(ctx context.Context, dctx *DeploymentContext) (*models.Report, error) {
	market, target, err := m.load(ctx, dctx)
	if err != nil {
		return nil, err
	}
	specs, err := m.builder.NTokenUpdateSpecs(ctx, dctx, market)
	if err != nil {
		return nil, err
	}
	return m.batch.UpdateNTokens(ctx, dctx, target, specs)
}

// orDefault returns v when positive, else def
func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
