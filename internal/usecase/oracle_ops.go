package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// PricePairsResult is the oracle input of a market on one network
type PricePairsResult struct {
	Sources []models.PriceSource
	Pairs   models.PricePairs
	// Missing is set when some assets have no aggregator
	Missing error
}

// OracleOperations backs the oracle commands
type OracleOperations struct {
	markets  MarketRepository
	registry *AddressRegistry
	oracles  *OracleSetup
	log      *slog.Logger
}

// NewOracleOperations creates a new OracleOperations use case
func NewOracleOperations(markets MarketRepository, registry *AddressRegistry, oracles *OracleSetup, log *slog.Logger) *OracleOperations {
	return &OracleOperations{
		markets:  markets,
		registry: registry,
		oracles:  oracles,
		log:      log.With("component", "OracleOperations"),
	}
}

// PricePairs computes the asset/aggregator pairs without touching the chain
func (uc *OracleOperations) PricePairs(ctx context.Context, dctx *DeploymentContext) (*PricePairsResult, error) {
	market, err := uc.markets.GetMarket(ctx, dctx.MarketID)
	if err != nil {
		return nil, err
	}
	sources, err := PriceSources(market, dctx.Network)
	if err != nil {
		return nil, err
	}
	pairs, err := BuildPricePairs(sources)
	if err != nil && !errors.Is(err, domain.ErrMissingAggregator) {
		return nil, err
	}
	return &PricePairsResult{Sources: sources, Pairs: pairs, Missing: err}, nil
}

// Deploy rolls out the oracles of a market whose addresses provider is already deployed
func (uc *OracleOperations) Deploy(ctx context.Context, dctx *DeploymentContext, verify bool) (*OracleResult, error) {
	market, err := uc.markets.GetMarket(ctx, dctx.MarketID)
	if err != nil {
		return nil, err
	}
	override, err := explicit(market.Network(dctx.Network), ProviderID)
	if err != nil {
		return nil, err
	}
	provider, err := uc.registry.GetOrFallback(ctx, dctx.MarketKey(ProviderID), override)
	if err != nil {
		return nil, err
	}
	return uc.oracles.Deploy(ctx, dctx, market, provider, verify)
}
