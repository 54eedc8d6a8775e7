package usecase

import (
	"context"
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// MarketSummary describes one market file for listings
type MarketSummary struct {
	MarketID  string
	PoolName  string
	Reserves  []string
	NFTVaults []string
	Networks  []string
	Error     error
}

// ListMarkets lists the configured markets
type ListMarkets struct {
	markets MarketRepository
	log     *slog.Logger
}

// NewListMarkets creates a new ListMarkets use case
func NewListMarkets(markets MarketRepository, log *slog.Logger) *ListMarkets {
	return &ListMarkets{markets: markets, log: log.With("component", "ListMarkets")}
}

// Run loads every market; a market that fails to load is reported with its error
func (uc *ListMarkets) Run(ctx context.Context) []MarketSummary {
	ids := uc.markets.ListMarkets(ctx)
	summaries := make([]MarketSummary, 0, len(ids))
	for _, id := range ids {
		market, err := uc.markets.GetMarket(ctx, id)
		if err != nil {
			uc.log.Warn("failed to load market", "market", id, "error", err)
			summaries = append(summaries, MarketSummary{MarketID: id, Error: err})
			continue
		}
		networks := lo.Keys(market.Networks)
		slices.Sort(networks)
		summaries = append(summaries, MarketSummary{
			MarketID:  market.MarketID,
			PoolName:  market.PoolName,
			Reserves:  lo.Map(market.Reserves, func(r models.ReserveParams, _ int) string { return r.Symbol }),
			NFTVaults: lo.Map(market.NFTVaults, func(v models.NFTVaultParams, _ int) string { return v.Symbol }),
			Networks:  networks,
		})
	}
	return summaries
}
