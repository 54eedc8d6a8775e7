package usecase

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// variantHandler describes how one token implementation is deployed and registered
type variantHandler struct {
	contract string
	// perAsset implementations are deployed once per underlying asset
	perAsset bool
	// assetPrefix goes in front of the symbol in per-asset registry keys
	assetPrefix string
}

// TokenImplementations deploys and resolves token implementations through a fixed dispatch table
type TokenImplementations struct {
	registry *AddressRegistry
	pipeline *DeploymentPipeline
	variants map[models.TokenVariant]variantHandler
	log      *slog.Logger
}

// NewTokenImplementations creates a new TokenImplementations
func NewTokenImplementations(registry *AddressRegistry, pipeline *DeploymentPipeline, log *slog.Logger) *TokenImplementations {
	return &TokenImplementations{
		registry: registry,
		pipeline: pipeline,
		variants: map[models.TokenVariant]variantHandler{
			models.VTokenVariant:                {contract: "VToken"},
			models.DelegationAwareVTokenVariant: {contract: "DelegationAwareVToken"},
			models.VariableDebtTokenVariant:     {contract: "VariableDebtToken"},
			models.NTokenVariant:                {contract: "NToken"},
			models.TimeLockableNTokenVariant:    {contract: "TimeLockableNToken", perAsset: true, assetPrefix: "vn"},
		},
		log: log.With("component", "TokenImplementations"),
	}
}

func (t *TokenImplementations) handler(variant models.TokenVariant) (variantHandler, error) {
	h, ok := t.variants[variant]
	if !ok {
		return variantHandler{}, &domain.UnsupportedVariantError{Kind: "token implementation", Variant: string(variant)}
	}
	return h, nil
}

// Key returns the registry key of the variant's implementation for asset
func (t *TokenImplementations) Key(dctx *DeploymentContext, variant models.TokenVariant, asset string) (models.RegistryKey, error) {
	h, err := t.handler(variant)
	if err != nil {
		return models.RegistryKey{}, err
	}
	if h.perAsset {
		return dctx.AssetKey(string(variant), h.assetPrefix+asset), nil
	}
	return dctx.MarketKey(string(variant)), nil
}

// Deploy deploys the implementation unless it is already registered
func (t *TokenImplementations) Deploy(ctx context.Context, dctx *DeploymentContext, variant models.TokenVariant, asset string, verify bool) (*models.DeploymentRecord, error) {
	h, err := t.handler(variant)
	if err != nil {
		return nil, err
	}
	req := DeployRequest{
		LogicalID:    string(variant),
		Contract:     h.contract,
		Verify:       verify,
		SkipExisting: true,
	}
	if h.perAsset {
		req.Asset = h.assetPrefix + asset
	}
	return t.pipeline.Deploy(ctx, dctx, req)
}

// Resolve returns the explicit address if set, else the registered implementation
func (t *TokenImplementations) Resolve(ctx context.Context, dctx *DeploymentContext, variant models.TokenVariant, asset string, explicit *common.Address) (common.Address, error) {
	key, err := t.Key(dctx, variant, asset)
	if err != nil {
		return common.Address{}, err
	}
	return t.registry.GetOrFallback(ctx, key, explicit)
}
