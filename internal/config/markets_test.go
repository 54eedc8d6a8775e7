package config

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

const baycYAML = `
marketId: VinciBAYC
providerId: 2
poolName: VinciBAYC
nTokenNamePrefix: Vinci Interest bearing
reserves:
  - symbol: WETH
    strategy:
      name: rateStrategyWETH
      optimalUtilizationRate: "650000000000000000000000000"
    reserveFactor: "1000"
    reserveDecimals: 18
    borrowingEnabled: true
    vTokenImpl: VToken
nftVaults:
  - symbol: BAYC
    name: BoredApeYachtClub
    baseLTVAsCollateral: "3000"
    lockdropExpiration: "0"
    eligibility:
      name: RANGE
      args: ["0", "9999"]
networks:
  kovan:
    reserveAssets:
      WETH: "0xd0A1E359811322d97991E03f863a0C30C2cF029C"
`

const vinciTOML = `
market_id = "Vinci"
pool_name = "Vinci"

[[reserves]]
symbol = "DAI"
[reserves.strategy]
name = "rateStrategyStable"
`

func TestMarketRepository(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vinci-bayc.yaml"), baycYAML)
	writeFile(t, filepath.Join(dir, "vinci.toml"), vinciTOML)
	writeFile(t, filepath.Join(dir, "README.md"), "# markets")

	repo := NewMarketRepositoryAt(dir)
	assert.Equal(t, []string{"Vinci", "VinciBAYC"}, repo.ListMarkets(ctx))

	bayc, err := repo.GetMarket(ctx, "VinciBAYC")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), bayc.ProviderID)
	require.Len(t, bayc.NFTVaults, 1)
	assert.Equal(t, models.EligibilityRange, bayc.NFTVaults[0].Eligibility.Kind())
	assert.Equal(t, models.NTokenVariant, bayc.NFTVaults[0].NTokenVariant())
	assert.Equal(t, "0xd0A1E359811322d97991E03f863a0C30C2cF029C", bayc.Network("kovan").ReserveAssets["WETH"])

	vinci, err := repo.GetMarket(ctx, "Vinci")
	require.NoError(t, err)
	assert.Equal(t, "rateStrategyStable", vinci.Reserves[0].Strategy.Name)

	_, err = repo.GetMarket(ctx, "VinciBAY")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownMarket))
	var lookup *domain.LookupError
	require.True(t, errors.As(err, &lookup))
	assert.Contains(t, lookup.Suggestions, "VinciBAYC")
}

func TestMarketRepositoryInvalid(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown field", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "m.yaml"), "marketId: X\nbogus: 1\n")
		_, err := NewMarketRepositoryAt(dir).GetMarket(ctx, "X")
		assert.Error(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "m.yaml"), "marketId: X\nreserves:\n  - symbol: WETH\n")
		_, err := NewMarketRepositoryAt(dir).GetMarket(ctx, "X")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no rate strategy name")
	})

	t.Run("missing dir", func(t *testing.T) {
		repo := NewMarketRepositoryAt(filepath.Join(t.TempDir(), "none"))
		assert.Empty(t, repo.ListMarkets(ctx))
		_, err := repo.GetMarket(ctx, "Vinci")
		assert.True(t, errors.Is(err, domain.ErrUnknownMarket))
	})
}

func TestShippedMarkets(t *testing.T) {
	ctx := context.Background()
	repo := NewMarketRepositoryAt(filepath.Join("..", "..", "markets"))
	require.Equal(t, []string{"Vinci", "VinciBAYC", "VinciMAYC"}, repo.ListMarkets(ctx))

	for _, id := range repo.ListMarkets(ctx) {
		market, err := repo.GetMarket(ctx, id)
		require.NoError(t, err, id)
		assert.NotEmpty(t, market.Reserves, id)
		assert.NotEmpty(t, market.NFTVaults, id)
	}

	vinci, err := repo.GetMarket(ctx, "Vinci")
	require.NoError(t, err)
	assert.Equal(t, models.TimeLockableNTokenVariant, vinci.NFTVaults[0].NTokenVariant())

	mayc, err := repo.GetMarket(ctx, "VinciMAYC")
	require.NoError(t, err)
	symbolPrefix, namePrefix := mayc.Prefixes()
	assert.Equal(t, "MAYC", symbolPrefix)
	assert.Equal(t, "MAYC-", namePrefix)
}
