package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/samber/lo"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/bindings"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// DefaultReserveChunkSize bounds the reserves packed into one batchInitReserve call
const DefaultReserveChunkSize = 20

// DefaultVaultChunkSize is the NFT vault batch size; vault init is gas heavy
const DefaultVaultChunkSize = 1

// BatchTarget names the market contracts a batch operation talks to.
// A zero DataProvider disables on-chain pre-checks.
type BatchTarget struct {
	Configurator common.Address
	DataProvider common.Address
}

// BatchInitializer onboards reserves and NFT vaults through the configurator
type BatchInitializer struct {
	pipeline *DeploymentPipeline
	sink     ProgressSink
	log      *slog.Logger
}

// NewBatchInitializer creates a new BatchInitializer
func NewBatchInitializer(pipeline *DeploymentPipeline, sink ProgressSink, log *slog.Logger) *BatchInitializer {
	return &BatchInitializer{
		pipeline: pipeline,
		sink:     sink,
		log:      log.With("component", "BatchInitializer"),
	}
}

type initItem struct {
	symbol   string
	asset    common.Address
	eligible bool
	input    any
}

type initBatch struct {
	operation string
	method    string
	kind      string
	isActive  func(ctx context.Context, asset common.Address) (bool, error)
}

// InitReserves initializes every eligible, not yet active reserve, one transaction per chunk
func (b *BatchInitializer) InitReserves(ctx context.Context, dctx *DeploymentContext, target BatchTarget, specs []models.ReserveInitSpec, chunkSize int) (*models.Report, error) {
	items := lo.Map(specs, func(s models.ReserveInitSpec, _ int) initItem {
		input := bindings.InitReserveInput{
			VTokenImpl:                  s.VTokenImpl,
			StableDebtTokenImpl:         s.StableDebtTokenImpl,
			VariableDebtTokenImpl:       s.VariableDebtTokenImpl,
			UnderlyingAssetDecimals:     s.Decimals,
			InterestRateStrategyAddress: s.InterestRateStrategy,
			UnderlyingAsset:             s.UnderlyingAsset,
			Treasury:                    s.Treasury,
			IncentivesController:        s.IncentivesController,
			UnderlyingAssetName:         s.UnderlyingAssetName,
			VTokenName:                  s.VTokenName,
			VTokenSymbol:                s.VTokenSymbol,
			VariableDebtTokenName:       s.VariableDebtTokenName,
			VariableDebtTokenSymbol:     s.VariableDebtTokenSymbol,
			StableDebtTokenName:         s.StableDebtTokenName,
			StableDebtTokenSymbol:       s.StableDebtTokenSymbol,
			Params:                      s.Params,
		}
		return initItem{symbol: s.Symbol, asset: s.UnderlyingAsset, eligible: s.Eligible(), input: input}
	})
	return b.initInChunks(ctx, dctx, target, initBatch{
		operation: "init-reserves",
		method:    "batchInitReserve",
		kind:      "reserve",
		isActive: func(ctx context.Context, asset common.Address) (bool, error) {
			cfg, err := b.reserveConfiguration(ctx, dctx, target, asset)
			if err != nil {
				return false, err
			}
			return cfg.IsActive, nil
		},
	}, items, chunkSize)
}

// InitVaults initializes every eligible, not yet active NFT vault, one transaction per chunk
func (b *BatchInitializer) InitVaults(ctx context.Context, dctx *DeploymentContext, target BatchTarget, specs []models.NFTVaultInitSpec, chunkSize int) (*models.Report, error) {
	items := lo.Map(specs, func(s models.NFTVaultInitSpec, _ int) initItem {
		input := bindings.InitNFTVaultInput{
			NTokenImpl:          s.NTokenImpl,
			UnderlyingAsset:     s.UnderlyingAsset,
			NftEligibility:      s.Eligibility,
			UnderlyingAssetName: s.UnderlyingAssetName,
			NTokenName:          s.NTokenName,
			NTokenSymbol:        s.NTokenSymbol,
			BaseURI:             s.BaseURI,
			Params:              s.Params,
			EligibilityParams:   s.EligibilityParams,
		}
		return initItem{symbol: s.Symbol, asset: s.UnderlyingAsset, eligible: s.Eligible(), input: input}
	})
	return b.initInChunks(ctx, dctx, target, initBatch{
		operation: "init-vaults",
		method:    "batchInitNFTVault",
		kind:      "nft vault",
		isActive: func(ctx context.Context, asset common.Address) (bool, error) {
			cfg, err := b.vaultConfiguration(ctx, dctx, target, asset)
			if err != nil {
				return false, err
			}
			return cfg.IsActive, nil
		},
	}, items, chunkSize)
}

func (b *BatchInitializer) initInChunks(
	ctx context.Context,
	dctx *DeploymentContext,
	target BatchTarget,
	batch initBatch,
	items []initItem,
	chunkSize int,
) (*models.Report, error) {
	report := models.NewReport(batch.operation, dctx.Network, dctx.MarketID)
	if chunkSize < 1 {
		return report, fmt.Errorf("chunk size must be at least 1, got %d", chunkSize)
	}

	pending := make([]initItem, 0, len(items))
	for _, item := range items {
		log := b.log.With("symbol", item.symbol, "network", dctx.Network, "market", dctx.MarketID)
		if !item.eligible {
			log.Warn("skipping " + batch.kind + ": token address is not set in market config")
			report.Add(models.ItemResult{
				Symbol:  item.symbol,
				Outcome: models.OutcomeSkippedMissingAsset,
				Reason:  "no asset address on " + dctx.Network,
			})
			continue
		}
		if target.DataProvider != (common.Address{}) {
			active, err := batch.isActive(ctx, item.asset)
			if err != nil {
				return report, err
			}
			if active {
				log.Info(batch.kind + " already initialized")
				report.Add(models.ItemResult{
					Symbol:  item.symbol,
					Asset:   item.asset,
					Outcome: models.OutcomeSkippedAlreadyConfigured,
					Reason:  domain.ErrReserveAlreadyInitialized.Error(),
				})
				continue
			}
		}
		pending = append(pending, item)
	}

	chunks := lo.Chunk(pending, chunkSize)
	for i, chunk := range chunks {
		symbols := lo.Map(chunk, func(item initItem, _ int) string { return item.symbol })
		b.sink.OnProgress(ctx, ProgressEvent{
			Stage:   batch.operation,
			Current: i + 1,
			Total:   len(chunks),
			Message: fmt.Sprintf("Initializing %s", strings.Join(symbols, ", ")),
		})

		receipt, err := b.send(ctx, dctx, target, batch.method, i+1, len(chunks), chunk)
		if err != nil {
			b.log.Error("batch init failed", "method", batch.method, "symbols", symbols, "network", dctx.Network, "market", dctx.MarketID, "error", err)
			return report, err
		}
		report.Record(receipt.TxHash, receipt.GasUsed)
		for _, item := range chunk {
			report.Add(models.ItemResult{
				Symbol:  item.symbol,
				Asset:   item.asset,
				Outcome: models.OutcomeInitialized,
				TxHash:  receipt.TxHash,
				Chunk:   i + 1,
			})
		}
		b.log.Info("chunk initialized", "method", batch.method, "symbols", symbols, "gas", receipt.GasUsed, "tx", receipt.TxHash.Hex())
	}
	return report, nil
}

func (b *BatchInitializer) send(ctx context.Context, dctx *DeploymentContext, target BatchTarget, method string, index, total int, chunk []initItem) (*types.Receipt, error) {
	label := fmt.Sprintf("%s %d/%d", method, index, total)
	switch method {
	case "batchInitReserve":
		inputs := lo.Map(chunk, func(item initItem, _ int) bindings.InitReserveInput { return item.input.(bindings.InitReserveInput) })
		return b.pipeline.Send(ctx, dctx, label, bindings.Configurator, target.Configurator, method, inputs)
	case "batchInitNFTVault":
		inputs := lo.Map(chunk, func(item initItem, _ int) bindings.InitNFTVaultInput { return item.input.(bindings.InitNFTVaultInput) })
		return b.pipeline.Send(ctx, dctx, label, bindings.Configurator, target.Configurator, method, inputs)
	}
	return nil, fmt.Errorf("unknown batch method %s", method)
}

// ConfigureReserves applies borrowing flags and reserve factors one reserve at a time
func (b *BatchInitializer) ConfigureReserves(ctx context.Context, dctx *DeploymentContext, target BatchTarget, specs []models.ReserveRiskSpec) (*models.Report, error) {
	report := models.NewReport("configure-reserves", dctx.Network, dctx.MarketID)
	for i, spec := range specs {
		log := b.log.With("symbol", spec.Symbol, "network", dctx.Network, "market", dctx.MarketID)
		if skipped, ok := skipRisk(log, "reserve", spec.Symbol, spec.Asset, spec.BaseLTV); ok {
			report.Add(skipped)
			continue
		}

		if target.DataProvider != (common.Address{}) {
			current, err := b.reserveConfiguration(ctx, dctx, target, spec.Asset)
			if err != nil {
				return report, err
			}
			if !current.IsActive {
				log.Warn("skipping reserve: not initialized")
				report.Add(models.ItemResult{Symbol: spec.Symbol, Asset: spec.Asset, Outcome: models.OutcomeSkippedNotInitialized})
				continue
			}
			if reserveMatches(current, spec) {
				log.Info("reserve already configured")
				report.Add(models.ItemResult{Symbol: spec.Symbol, Asset: spec.Asset, Outcome: models.OutcomeSkippedAlreadyConfigured})
				continue
			}
		}

		b.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "configure-reserves",
			Current: i + 1,
			Total:   len(specs),
			Message: fmt.Sprintf("Configuring %s", spec.Symbol),
		})

		if spec.BorrowingEnabled {
			receipt, err := b.pipeline.Send(ctx, dctx, "enableBorrowingOnReserve "+spec.Symbol,
				bindings.Configurator, target.Configurator, "enableBorrowingOnReserve", spec.Asset, spec.StableBorrowRateEnabled)
			if err != nil {
				return report, err
			}
			report.Record(receipt.TxHash, receipt.GasUsed)
		}
		receipt, err := b.pipeline.Send(ctx, dctx, "setReserveFactor "+spec.Symbol,
			bindings.Configurator, target.Configurator, "setReserveFactor", spec.Asset, spec.ReserveFactor)
		if err != nil {
			return report, err
		}
		report.Record(receipt.TxHash, receipt.GasUsed)
		report.Add(models.ItemResult{Symbol: spec.Symbol, Asset: spec.Asset, Outcome: models.OutcomeConfigured, TxHash: receipt.TxHash})
		log.Info("reserve configured", "tx", receipt.TxHash.Hex())
	}
	return report, nil
}

// ConfigureVaults enables every NFT vault as collateral and sets its lockdrop expiration
func (b *BatchInitializer) ConfigureVaults(ctx context.Context, dctx *DeploymentContext, target BatchTarget, specs []models.VaultRiskSpec) (*models.Report, error) {
	report := models.NewReport("configure-vaults", dctx.Network, dctx.MarketID)
	for i, spec := range specs {
		log := b.log.With("symbol", spec.Symbol, "network", dctx.Network, "market", dctx.MarketID)
		if skipped, ok := skipRisk(log, "nft vault", spec.Symbol, spec.Asset, spec.BaseLTV); ok {
			report.Add(skipped)
			continue
		}
		ltv, err := models.ParseUint(spec.BaseLTV)
		if err != nil {
			return report, fmt.Errorf("vault %s: baseLTVAsCollateral: %w", spec.Symbol, err)
		}

		if target.DataProvider != (common.Address{}) {
			current, err := b.vaultConfiguration(ctx, dctx, target, spec.Asset)
			if err != nil {
				return report, err
			}
			if !current.IsActive {
				log.Warn("skipping nft vault: not initialized")
				report.Add(models.ItemResult{Symbol: spec.Symbol, Asset: spec.Asset, Outcome: models.OutcomeSkippedNotInitialized})
				continue
			}
			if vaultMatches(current, ltv, spec) {
				log.Info("nft vault already configured")
				report.Add(models.ItemResult{Symbol: spec.Symbol, Asset: spec.Asset, Outcome: models.OutcomeSkippedAlreadyConfigured})
				continue
			}
		}

		b.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "configure-vaults",
			Current: i + 1,
			Total:   len(specs),
			Message: fmt.Sprintf("Configuring %s", spec.Symbol),
		})

		receipt, err := b.pipeline.Send(ctx, dctx, "configureNFTVaultAsCollateral "+spec.Symbol,
			bindings.Configurator, target.Configurator, "configureNFTVaultAsCollateral",
			spec.Asset, ltv, spec.LiquidationThreshold, spec.LiquidationBonus)
		if err != nil {
			return report, err
		}
		report.Record(receipt.TxHash, receipt.GasUsed)
		receipt, err = b.pipeline.Send(ctx, dctx, "updateNFTVaultActionExpiration "+spec.Symbol,
			bindings.Configurator, target.Configurator, "updateNFTVaultActionExpiration", spec.Asset, spec.LockdropExpiration)
		if err != nil {
			return report, err
		}
		report.Record(receipt.TxHash, receipt.GasUsed)
		report.Add(models.ItemResult{Symbol: spec.Symbol, Asset: spec.Asset, Outcome: models.OutcomeConfigured, TxHash: receipt.TxHash})
		log.Info("nft vault configured", "tx", receipt.TxHash.Hex())
	}
	return report, nil
}

// UpdateNTokens points every vault at a new nToken implementation
func (b *BatchInitializer) UpdateNTokens(ctx context.Context, dctx *DeploymentContext, target BatchTarget, specs []models.NTokenUpdateSpec) (*models.Report, error) {
	report := models.NewReport("update-ntokens", dctx.Network, dctx.MarketID)
	for i, spec := range specs {
		if spec.Asset == (common.Address{}) {
			b.log.Warn("skipping nToken update: token address is not set in market config",
				"symbol", spec.Symbol, "network", dctx.Network, "market", dctx.MarketID)
			report.Add(models.ItemResult{Symbol: spec.Symbol, Outcome: models.OutcomeSkippedMissingAsset})
			continue
		}
		b.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "update-ntokens",
			Current: i + 1,
			Total:   len(specs),
			Message: fmt.Sprintf("Updating nToken of %s", spec.Symbol),
		})
		receipt, err := b.pipeline.Send(ctx, dctx, "updateNToken "+spec.Symbol, bindings.Configurator, target.Configurator,
			"updateNToken", bindings.UpdateNTokenInput{
				Asset:          spec.Asset,
				Name:           spec.Name,
				Symbol:         spec.TokenSymbol,
				Implementation: spec.Implementation,
				Params:         spec.Params,
				BaseURI:        spec.BaseURI,
			})
		if err != nil {
			return report, err
		}
		report.Record(receipt.TxHash, receipt.GasUsed)
		report.Add(models.ItemResult{Symbol: spec.Symbol, Asset: spec.Asset, Outcome: models.OutcomeUpdated, TxHash: receipt.TxHash})
	}
	return report, nil
}

func skipRisk(log *slog.Logger, kind, symbol string, asset common.Address, baseLTV string) (models.ItemResult, bool) {
	if asset == (common.Address{}) {
		log.Warn("skipping " + kind + ": token address is not set in market config")
		return models.ItemResult{Symbol: symbol, Outcome: models.OutcomeSkippedMissingAsset}, true
	}
	if baseLTV == models.NotCollateral {
		log.Info("skipping " + kind + ": not used as collateral")
		return models.ItemResult{Symbol: symbol, Asset: asset, Outcome: models.OutcomeSkippedNotCollateral}, true
	}
	return models.ItemResult{}, false
}

func reserveMatches(current *bindings.ReserveConfigurationData, spec models.ReserveRiskSpec) bool {
	if !bigEqual(current.ReserveFactor, spec.ReserveFactor) || current.BorrowingEnabled != spec.BorrowingEnabled {
		return false
	}
	return !spec.BorrowingEnabled || current.StableBorrowRateEnabled == spec.StableBorrowRateEnabled
}

func vaultMatches(current *bindings.NFTVaultConfigurationData, ltv *big.Int, spec models.VaultRiskSpec) bool {
	return bigEqual(current.Ltv, ltv) &&
		bigEqual(current.LiquidationThreshold, spec.LiquidationThreshold) &&
		bigEqual(current.LiquidationBonus, spec.LiquidationBonus) &&
		bigEqual(current.LockdropExpiration, spec.LockdropExpiration)
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Cmp(b) == 0
}

func (b *BatchInitializer) reserveConfiguration(ctx context.Context, dctx *DeploymentContext, target BatchTarget, asset common.Address) (*bindings.ReserveConfigurationData, error) {
	var cfg bindings.ReserveConfigurationData
	if err := b.pipeline.CallInto(ctx, dctx, &cfg, bindings.DataProvider, target.DataProvider, "getReserveConfigurationData", asset); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (b *BatchInitializer) vaultConfiguration(ctx context.Context, dctx *DeploymentContext, target BatchTarget, asset common.Address) (*bindings.NFTVaultConfigurationData, error) {
	var cfg bindings.NFTVaultConfigurationData
	if err := b.pipeline.CallInto(ctx, dctx, &cfg, bindings.DataProvider, target.DataProvider, "getNFTVaultConfigurationData", asset); err != nil {
		return nil, err
	}
	return &cfg, nil
}
