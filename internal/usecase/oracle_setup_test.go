package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/bindings"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

func aggregator(n int64) *common.Address {
	a := addr(n)
	return &a
}

func TestBuildPricePairs(t *testing.T) {
	t.Run("quote currencies are excluded", func(t *testing.T) {
		pairs, err := usecase.BuildPricePairs([]models.PriceSource{
			{Symbol: "WETH", Asset: wethAddress},
			{Symbol: "DAI", Asset: addr(1), Aggregator: aggregator(101)},
			{Symbol: "BAYC", Asset: addr(2), Aggregator: aggregator(102)},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"DAI", "BAYC"}, pairs.Symbols)
		assert.Equal(t, []common.Address{addr(1), addr(2)}, pairs.Assets)
		assert.Equal(t, []common.Address{addr(101), addr(102)}, pairs.Sources)
	})

	t.Run("missing aggregators are listed together", func(t *testing.T) {
		pairs, err := usecase.BuildPricePairs([]models.PriceSource{
			{Symbol: "DAI", Asset: addr(1)},
			{Symbol: "USDC", Asset: addr(3), Aggregator: aggregator(103)},
			{Symbol: "BAYC", Asset: addr(2)},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrMissingAggregator))
		assert.Contains(t, err.Error(), "DAI, BAYC")
		assert.Equal(t, 1, pairs.Len())
	})
}

func TestPriceSources(t *testing.T) {
	market := vinciMarket()
	market.NFTVaults = []models.NFTVaultParams{{Symbol: "BAYC"}, {Symbol: "MAYC"}}
	net := market.Networks["kovan"]
	net.NFTVaultAssets = map[string]string{"BAYC": addr(2).Hex()}
	net.Aggregators = map[string]string{"BAYC": addr(102).Hex()}
	market.Networks["kovan"] = net

	sources, err := usecase.PriceSources(market, "kovan")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "WETH", sources[0].Symbol)
	assert.Nil(t, sources[0].Aggregator)
	assert.Equal(t, "BAYC", sources[1].Symbol)
	assert.Equal(t, addr(102), *sources[1].Aggregator)
}

func TestOracleOperations_Deploy(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.artifacts[usecase.PriceOracleID] = artifact(usecase.PriceOracleID, `[{"type":"constructor","inputs":[
		{"name":"assets","type":"address[]"},{"name":"sources","type":"address[]"},
		{"name":"fallbackOracle","type":"address"},{"name":"baseCurrency","type":"address"},
		{"name":"baseCurrencyUnit","type":"uint256"}]}]`)
	e.artifacts[usecase.LendingRateOracleID] = artifact(usecase.LendingRateOracleID, "")
	provider := addr(500)
	e.put(t, e.dctx.MarketKey(usecase.ProviderID), provider)

	market := vinciMarket()
	market.LendingRates = map[string]string{"WETH": "30000000000000000000000000", "DAI": "39000000000000000000000000"}
	markets := &MockMarketRepository{}
	markets.On("GetMarket", mock.Anything, "Vinci").Return(market, nil)

	ops := usecase.NewOracleOperations(markets, e.registry, e.oracles, discardLogger())
	result, err := ops.Deploy(ctx, e.dctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"WETH"}, result.RatesSet, "DAI has no address on kovan")
	assert.Equal(t, 0, result.Pairs.Len())
	assert.Len(t, e.signer.sentTo(bindings.LendingRateOracle, "setMarketBorrowRate"), 1)

	priceOracle := e.signer.sentTo(bindings.AddressesProvider, "setPriceOracle")
	require.Len(t, priceOracle, 1)
	assert.Equal(t, provider, priceOracle[0].To)
	assert.Len(t, e.signer.sentTo(bindings.AddressesProvider, "setLendingRateOracle"), 1)
}
