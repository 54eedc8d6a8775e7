package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/bindings"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// USDAddress is the conventional address standing in for USD as oracle base currency
var USDAddress = common.HexToAddress("0x10F7Fc1F91Ba351f9C629c5947AD69bD03C05b96")

// Logical ids of the market oracles
const (
	PriceOracleID       = "AaveOracle"
	LendingRateOracleID = "LendingRateOracle"
)

var quoteSymbols = map[string]bool{"ETH": true, "WETH": true, "USD": true}

// PriceSources lists every reserve then every NFT vault with an address on the network
func PriceSources(market *models.MarketConfig, network string) ([]models.PriceSource, error) {
	net := market.Network(network)
	type entry struct {
		symbol string
		assets map[string]string
	}
	entries := make([]entry, 0, len(market.Reserves)+len(market.NFTVaults))
	for _, r := range market.Reserves {
		entries = append(entries, entry{r.Symbol, net.ReserveAssets})
	}
	for _, v := range market.NFTVaults {
		entries = append(entries, entry{v.Symbol, net.NFTVaultAssets})
	}

	sources := make([]models.PriceSource, 0, len(entries))
	for _, e := range entries {
		symbol := e.symbol
		asset, err := assetAddress(e.assets, symbol)
		if err != nil {
			return nil, err
		}
		if asset == (common.Address{}) {
			continue
		}
		source := models.PriceSource{Symbol: symbol, Asset: asset}
		if raw, ok := net.Aggregators[symbol]; ok && raw != "" {
			aggregator, err := models.ParseAddress(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: aggregator %s: %v", domain.ErrInvalidAddress, symbol, err)
			}
			source.Aggregator = &aggregator
		}
		sources = append(sources, source)
	}
	return sources, nil
}

// BuildPricePairs turns ordered price sources into the oracle's parallel arrays.
// Quote currencies are excluded. Assets without an aggregator are reported
// together in one ErrMissingAggregator error.
func BuildPricePairs(sources []models.PriceSource) (models.PricePairs, error) {
	var pairs models.PricePairs
	var missing []string
	for _, s := range sources {
		if quoteSymbols[strings.ToUpper(s.Symbol)] {
			continue
		}
		if s.Aggregator == nil || *s.Aggregator == (common.Address{}) {
			missing = append(missing, s.Symbol)
			continue
		}
		pairs.Symbols = append(pairs.Symbols, s.Symbol)
		pairs.Assets = append(pairs.Assets, s.Asset)
		pairs.Sources = append(pairs.Sources, *s.Aggregator)
	}
	if len(missing) > 0 {
		return pairs, fmt.Errorf("%w: %s", domain.ErrMissingAggregator, strings.Join(missing, ", "))
	}
	return pairs, nil
}

// OracleResult holds the oracles of one market
type OracleResult struct {
	PriceOracle       *models.DeploymentRecord
	LendingRateOracle *models.DeploymentRecord
	Pairs             models.PricePairs
	RatesSet          []string
}

// OracleSetup deploys the price and lending rate oracles and registers them on the provider
type OracleSetup struct {
	pipeline *DeploymentPipeline
	sink     ProgressSink
	log      *slog.Logger
}

// NewOracleSetup creates a new OracleSetup
func NewOracleSetup(pipeline *DeploymentPipeline, sink ProgressSink, log *slog.Logger) *OracleSetup {
	return &OracleSetup{
		pipeline: pipeline,
		sink:     sink,
		log:      log.With("component", "OracleSetup"),
	}
}

// baseCurrency returns the oracle quote asset and its unit; ETH quotes are priced in WETH
func baseCurrency(market *models.MarketConfig, network string) (common.Address, *big.Int, error) {
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	if market.OracleQuoteUnit != "" {
		v, err := models.ParseUint(market.OracleQuoteUnit)
		if err != nil {
			return common.Address{}, nil, fmt.Errorf("oracleQuoteUnit: %w", err)
		}
		unit = v
	}

	switch strings.ToUpper(market.OracleQuoteCurrency) {
	case "USD":
		return USDAddress, unit, nil
	case "", "ETH", "WETH":
		weth, err := assetAddress(market.Network(network).ReserveAssets, "WETH")
		if err != nil {
			return common.Address{}, nil, err
		}
		return weth, unit, nil
	}
	return common.Address{}, nil, fmt.Errorf("unsupported oracle quote currency %q", market.OracleQuoteCurrency)
}

// Deploy rolls out both oracles, seeds borrow rates and points the provider at them
func (o *OracleSetup) Deploy(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig, provider common.Address, verify bool) (*OracleResult, error) {
	net := market.Network(dctx.Network)
	sources, err := PriceSources(market, dctx.Network)
	if err != nil {
		return nil, err
	}
	pairs, err := BuildPricePairs(sources)
	if err != nil {
		return nil, err
	}
	fallback, err := models.ParseAddress(net.FallbackOracle)
	if err != nil {
		return nil, fmt.Errorf("%w: fallbackOracle: %v", domain.ErrInvalidAddress, err)
	}
	base, unit, err := baseCurrency(market, dctx.Network)
	if err != nil {
		return nil, err
	}

	result := &OracleResult{Pairs: pairs}
	result.PriceOracle, err = o.pipeline.Deploy(ctx, dctx, DeployRequest{
		LogicalID:    PriceOracleID,
		Args:         []any{pairs.Assets, pairs.Sources, fallback, base, unit},
		Verify:       verify,
		SkipExisting: true,
	})
	if err != nil {
		return nil, err
	}
	result.LendingRateOracle, err = o.pipeline.Deploy(ctx, dctx, DeployRequest{
		LogicalID:    LendingRateOracleID,
		Verify:       verify,
		SkipExisting: true,
	})
	if err != nil {
		return nil, err
	}

	if result.RatesSet, err = o.setBorrowRates(ctx, dctx, market, result.LendingRateOracle.Address); err != nil {
		return nil, err
	}

	if err := o.register(ctx, dctx, provider, "getPriceOracle", "setPriceOracle", result.PriceOracle.Address); err != nil {
		return nil, err
	}
	if err := o.register(ctx, dctx, provider, "getLendingRateOracle", "setLendingRateOracle", result.LendingRateOracle.Address); err != nil {
		return nil, err
	}
	return result, nil
}

func (o *OracleSetup) setBorrowRates(ctx context.Context, dctx *DeploymentContext, market *models.MarketConfig, oracle common.Address) ([]string, error) {
	net := market.Network(dctx.Network)
	var set []string
	for _, r := range market.Reserves {
		raw, ok := market.LendingRates[r.Symbol]
		if !ok {
			continue
		}
		asset, err := assetAddress(net.ReserveAssets, r.Symbol)
		if err != nil {
			return nil, err
		}
		if asset == (common.Address{}) {
			continue
		}
		rate, err := models.ParseUint(raw)
		if err != nil {
			return nil, fmt.Errorf("lendingRates.%s: %w", r.Symbol, err)
		}

		out, err := o.pipeline.Call(ctx, dctx, bindings.LendingRateOracle, oracle, "getMarketBorrowRate", asset)
		if err == nil && len(out) == 1 {
			if current, ok := out[0].(*big.Int); ok && current.Cmp(rate) == 0 {
				o.log.Debug("borrow rate already set", "symbol", r.Symbol, "rate", rate.String())
				continue
			}
		}

		if _, err := o.pipeline.Send(ctx, dctx, "setMarketBorrowRate "+r.Symbol, bindings.LendingRateOracle, oracle,
			"setMarketBorrowRate", asset, rate); err != nil {
			return nil, err
		}
		o.log.Info("borrow rate set", "symbol", r.Symbol, "rate", rate.String(), "network", dctx.Network, "market", dctx.MarketID)
		set = append(set, r.Symbol)
	}
	return set, nil
}

func (o *OracleSetup) register(ctx context.Context, dctx *DeploymentContext, provider common.Address, getter, setter string, oracle common.Address) error {
	current, err := o.pipeline.CallAddress(ctx, dctx, bindings.AddressesProvider, provider, getter)
	if err != nil {
		return err
	}
	if current == oracle {
		return nil
	}
	_, err = o.pipeline.Send(ctx, dctx, setter, bindings.AddressesProvider, provider, setter, oracle)
	return err
}
