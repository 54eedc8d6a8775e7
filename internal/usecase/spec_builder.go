package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/bindings"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// defaultTokenParams is the extra params blob handed to every vToken and nToken initializer
var defaultTokenParams = []byte{0x10}

// Logical ids shared by the spec builder and the market rollout
const (
	AllowAllEligibility = "AllowAllEligibility"
	TreasuryID          = "AaveTreasury"
)

// SpecBuilder derives init and configuration inputs from market config and the registry
type SpecBuilder struct {
	registry *AddressRegistry
	tokens   *TokenImplementations
	log      *slog.Logger
}

// NewSpecBuilder creates a new SpecBuilder
func NewSpecBuilder(registry *AddressRegistry, tokens *TokenImplementations, log *slog.Logger) *SpecBuilder {
	return &SpecBuilder{
		registry: registry,
		tokens:   tokens,
		log:      log.With("component", "SpecBuilder"),
	}
}

// explicit returns the configured override for a logical id, nil when unset
func explicit(net models.MarketNetwork, id string) (*common.Address, error) {
	raw, ok := net.Contracts[id]
	if !ok || raw == "" {
		return nil, nil
	}
	addr, err := models.ParseAddress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: contracts.%s: %v", domain.ErrInvalidAddress, id, err)
	}
	return &addr, nil
}

// assetAddress resolves a symbol from an asset map; zero when unset
func assetAddress(assets map[string]string, symbol string) (common.Address, error) {
	addr, err := models.ParseAddress(assets[symbol])
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: asset %s: %v", domain.ErrInvalidAddress, symbol, err)
	}
	return addr, nil
}

// resolve looks up a market contract, preferring the configured override
func (b *SpecBuilder) resolve(ctx context.Context, net models.MarketNetwork, key models.RegistryKey) (common.Address, error) {
	override, err := explicit(net, key.LogicalID)
	if err != nil {
		return common.Address{}, err
	}
	return b.registry.GetOrFallback(ctx, key, override)
}

// Treasury returns the configured treasury, else the registered one
func (b *SpecBuilder) Treasury(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig) (common.Address, error) {
	configured, err := models.ParseAddress(market.Network(dctx.Network).Treasury)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: treasury: %v", domain.ErrInvalidAddress, err)
	}
	return b.registry.GetOrFallback(ctx, dctx.MarketKey(TreasuryID), &configured)
}

// ReserveSpecs builds one spec per configured reserve, in config order.
// Reserves without an asset address on the network get a symbol-only spec.
func (b *SpecBuilder) ReserveSpecs(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig) ([]models.ReserveInitSpec, error) {
	net := market.Network(dctx.Network)
	symbolPrefix, namePrefix := market.Prefixes()

	var treasury common.Address
	incentives, err := models.ParseAddress(net.IncentivesController)
	if err != nil {
		return nil, fmt.Errorf("%w: incentivesController: %v", domain.ErrInvalidAddress, err)
	}

	specs := make([]models.ReserveInitSpec, 0, len(market.Reserves))
	for _, r := range market.Reserves {
		asset, err := assetAddress(net.ReserveAssets, r.Symbol)
		if err != nil {
			return nil, err
		}
		if asset == (common.Address{}) {
			b.log.Debug("reserve has no asset address", "symbol", r.Symbol, "network", dctx.Network, "market", dctx.MarketID)
			specs = append(specs, models.ReserveInitSpec{Symbol: r.Symbol})
			continue
		}
		if treasury == (common.Address{}) {
			if treasury, err = b.Treasury(ctx, dctx, market); err != nil {
				return nil, err
			}
		}

		variant := r.VTokenImpl.OrDefault(models.VTokenVariant)
		override, err := explicit(net, string(variant))
		if err != nil {
			return nil, err
		}
		vToken, err := b.tokens.Resolve(ctx, dctx, variant, r.Symbol, override)
		if err != nil {
			return nil, err
		}
		override, err = explicit(net, string(models.VariableDebtTokenVariant))
		if err != nil {
			return nil, err
		}
		vDebt, err := b.tokens.Resolve(ctx, dctx, models.VariableDebtTokenVariant, r.Symbol, override)
		if err != nil {
			return nil, err
		}
		strategy, err := b.resolve(ctx, net, dctx.MarketKey(r.Strategy.Name))
		if err != nil {
			return nil, err
		}

		specs = append(specs, models.ReserveInitSpec{
			Symbol:                  r.Symbol,
			UnderlyingAsset:         asset,
			VTokenImpl:              vToken,
			VariableDebtTokenImpl:   vDebt,
			InterestRateStrategy:    strategy,
			Decimals:                r.ReserveDecimals,
			Treasury:                treasury,
			IncentivesController:    incentives,
			UnderlyingAssetName:     r.Symbol,
			VTokenName:              fmt.Sprintf("%s %s%s", market.VTokenNamePrefix, namePrefix, r.Symbol),
			VTokenSymbol:            fmt.Sprintf("v%s%s", symbolPrefix, r.Symbol),
			VariableDebtTokenName:   fmt.Sprintf("%s %s%s", market.VariableDebtTokenNamePrefix, namePrefix, r.Symbol),
			VariableDebtTokenSymbol: fmt.Sprintf("vDebt%s%s", symbolPrefix, r.Symbol),
			Params:                  defaultTokenParams,
		})
	}
	return specs, nil
}

// EligibilityID is the logical id of a vault's range eligibility proxy
func EligibilityID(symbol string) string { return symbol + "Eligibility" }

// EligibilityKey returns where the eligibility module a vault clones is registered.
// RANGE vaults use the implementation behind their eligibility proxy.
func EligibilityKey(dctx *DeploymentContext, vault models.NFTVaultParams) (models.RegistryKey, error) {
	switch vault.Eligibility.Kind() {
	case models.EligibilityAllowAll:
		return dctx.MarketKey(AllowAllEligibility), nil
	case models.EligibilityRange:
		return dctx.MarketKey(EligibilityID(vault.Symbol) + "Impl"), nil
	}
	return models.RegistryKey{}, &domain.UnsupportedVariantError{Kind: "eligibility", Variant: vault.Eligibility.Name}
}

// EligibilityParams encodes the eligibility init data: empty for ALLOWALL, the range for RANGE
func EligibilityParams(vault models.NFTVaultParams) ([]byte, error) {
	switch vault.Eligibility.Kind() {
	case models.EligibilityAllowAll:
		return []byte{}, nil
	case models.EligibilityRange:
		if len(vault.Eligibility.Args) != 2 {
			return nil, fmt.Errorf("vault %s: RANGE eligibility needs start and end", vault.Symbol)
		}
		start, err := models.ParseUint(vault.Eligibility.Args[0])
		if err != nil {
			return nil, fmt.Errorf("vault %s: %w", vault.Symbol, err)
		}
		end, err := models.ParseUint(vault.Eligibility.Args[1])
		if err != nil {
			return nil, fmt.Errorf("vault %s: %w", vault.Symbol, err)
		}
		return bindings.RangeEligibilityParams(start, end)
	}
	return nil, &domain.UnsupportedVariantError{Kind: "eligibility", Variant: vault.Eligibility.Name}
}

// VaultSpecs builds one spec per configured NFT vault, in config order
func (b *SpecBuilder) VaultSpecs(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig) ([]models.NFTVaultInitSpec, error) {
	net := market.Network(dctx.Network)

	specs := make([]models.NFTVaultInitSpec, 0, len(market.NFTVaults))
	for _, v := range market.NFTVaults {
		asset, err := assetAddress(net.NFTVaultAssets, v.Symbol)
		if err != nil {
			return nil, err
		}
		if asset == (common.Address{}) {
			b.log.Debug("nft vault has no asset address", "symbol", v.Symbol, "network", dctx.Network, "market", dctx.MarketID)
			specs = append(specs, models.NFTVaultInitSpec{Symbol: v.Symbol})
			continue
		}

		variant := v.NTokenVariant()
		override, err := explicit(net, string(variant))
		if err != nil {
			return nil, err
		}
		nToken, err := b.tokens.Resolve(ctx, dctx, variant, v.Symbol, override)
		if err != nil {
			return nil, err
		}
		eligibilityKey, err := EligibilityKey(dctx, v)
		if err != nil {
			return nil, err
		}
		eligibility, err := b.resolve(ctx, net, eligibilityKey)
		if errors.Is(err, domain.ErrMissingAddress) && v.Eligibility.Kind() == models.EligibilityAllowAll {
			// no module accepts every token id
			eligibility, err = common.Address{}, nil
		}
		if err != nil {
			return nil, err
		}
		eligibilityParams, err := EligibilityParams(v)
		if err != nil {
			return nil, err
		}

		specs = append(specs, models.NFTVaultInitSpec{
			Symbol:              v.Symbol,
			UnderlyingAsset:     asset,
			NTokenImpl:          nToken,
			Eligibility:         eligibility,
			EligibilityParams:   eligibilityParams,
			UnderlyingAssetName: v.Symbol,
			NTokenName:          fmt.Sprintf("%s %s", market.NTokenNamePrefix, v.Name),
			NTokenSymbol:        "v" + v.Symbol,
			BaseURI:             market.BaseURI,
			Params:              defaultTokenParams,
		})
	}
	return specs, nil
}

// ReserveRiskSpecs returns the per-reserve risk parameters; unknown assets have a zero address
func (b *SpecBuilder) ReserveRiskSpecs(dctx *DeploymentContext, market *models.MarketConfig) ([]models.ReserveRiskSpec, error) {
	net := market.Network(dctx.Network)
	specs := make([]models.ReserveRiskSpec, 0, len(market.Reserves))
	for _, r := range market.Reserves {
		asset, err := assetAddress(net.ReserveAssets, r.Symbol)
		if err != nil {
			return nil, err
		}
		spec := models.ReserveRiskSpec{
			Symbol:                  r.Symbol,
			Asset:                   asset,
			BaseLTV:                 r.BaseLTVAsCollateral,
			BorrowingEnabled:        r.BorrowingEnabled,
			StableBorrowRateEnabled: r.StableBorrowRateEnabled,
		}
		if r.BaseLTVAsCollateral != models.NotCollateral {
			if spec.ReserveFactor, err = models.ParseUint(r.ReserveFactor); err != nil {
				return nil, fmt.Errorf("reserve %s: reserveFactor: %w", r.Symbol, err)
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// VaultRiskSpecs returns the per-vault collateral parameters
func (b *SpecBuilder) VaultRiskSpecs(dctx *DeploymentContext, market *models.MarketConfig) ([]models.VaultRiskSpec, error) {
	net := market.Network(dctx.Network)
	specs := make([]models.VaultRiskSpec, 0, len(market.NFTVaults))
	for _, v := range market.NFTVaults {
		asset, err := assetAddress(net.NFTVaultAssets, v.Symbol)
		if err != nil {
			return nil, err
		}
		spec := models.VaultRiskSpec{Symbol: v.Symbol, Asset: asset, BaseLTV: v.BaseLTVAsCollateral}
		if v.BaseLTVAsCollateral != models.NotCollateral {
			fields := []struct {
				name string
				raw  string
				dst  **big.Int
			}{
				{"liquidationThreshold", v.LiquidationThreshold, &spec.LiquidationThreshold},
				{"liquidationBonus", v.LiquidationBonus, &spec.LiquidationBonus},
				{"lockdropExpiration", v.LockdropExpiration, &spec.LockdropExpiration},
			}
			for _, f := range fields {
				if *f.dst, err = models.ParseUint(f.raw); err != nil {
					return nil, fmt.Errorf("vault %s: %s: %w", v.Symbol, f.name, err)
				}
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// NTokenUpdateSpecs builds the updateNToken inputs for every vault with a known asset
func (b *SpecBuilder) NTokenUpdateSpecs(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig) ([]models.NTokenUpdateSpec, error) {
	net := market.Network(dctx.Network)
	specs := make([]models.NTokenUpdateSpec, 0, len(market.NFTVaults))
	for _, v := range market.NFTVaults {
		asset, err := assetAddress(net.NFTVaultAssets, v.Symbol)
		if err != nil {
			return nil, err
		}
		if asset == (common.Address{}) {
			specs = append(specs, models.NTokenUpdateSpec{Symbol: v.Symbol})
			continue
		}
		variant := v.NTokenVariant()
		override, err := explicit(net, string(variant))
		if err != nil {
			return nil, err
		}
		impl, err := b.tokens.Resolve(ctx, dctx, variant, v.Symbol, override)
		if err != nil {
			return nil, err
		}
		specs = append(specs, models.NTokenUpdateSpec{
			Symbol:         v.Symbol,
			Asset:          asset,
			Name:           fmt.Sprintf("%s %s", market.NTokenNamePrefix, v.Name),
			TokenSymbol:    "v" + v.Symbol,
			Implementation: impl,
			Params:         defaultTokenParams,
			BaseURI:        market.BaseURI,
		})
	}
	return specs, nil
}
