package usecase_test

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/bindings"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

var (
	configurator = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	dataProvider = common.HexToAddress("0x00000000000000000000000000000000000000d0")
	wethAddress  = common.HexToAddress("0xd0A1E359811322d97991E03f863a0C30C2cF029C")
)

// batchAssets decodes the underlying assets of a batchInitReserve call
func batchAssets(t *testing.T, data []byte) []common.Address {
	t.Helper()
	method := bindings.Configurator.ABI().Methods["batchInitReserve"]
	out, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	items := reflect.ValueOf(out[0])
	assets := make([]common.Address, items.Len())
	for i := range assets {
		assets[i] = items.Index(i).FieldByName("UnderlyingAsset").Interface().(common.Address)
	}
	return assets
}

func reserveSpecs(n int) []models.ReserveInitSpec {
	specs := make([]models.ReserveInitSpec, n)
	for i := range specs {
		specs[i] = models.ReserveInitSpec{
			Symbol:          fmt.Sprintf("R%d", i),
			UnderlyingAsset: addr(int64(1000 + i)),
			Params:          []byte{0x10},
		}
	}
	return specs
}

func TestBatchInitializer_InitReserves_Chunking(t *testing.T) {
	ctx := context.Background()
	target := usecase.BatchTarget{Configurator: configurator}

	tests := []struct {
		name      string
		n, k      int
		wantTxs   int
		wantSizes []int
	}{
		{"one per chunk", 5, 1, 5, []int{1, 1, 1, 1, 1}},
		{"uneven tail", 5, 2, 3, []int{2, 2, 1}},
		{"exact", 4, 2, 2, []int{2, 2}},
		{"chunk larger than set", 3, 10, 1, []int{3}},
		{"empty", 0, 4, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			specs := reserveSpecs(tt.n)

			report, err := e.batch.InitReserves(ctx, e.dctx, target, specs, tt.k)
			require.NoError(t, err)
			assert.Len(t, report.Transactions, tt.wantTxs)

			sent := e.signer.sentTo(bindings.Configurator, "batchInitReserve")
			require.Len(t, sent, tt.wantTxs)

			var got []common.Address
			for i, tx := range sent {
				assets := batchAssets(t, tx.Data)
				assert.Len(t, assets, tt.wantSizes[i])
				got = append(got, assets...)
			}
			for i, spec := range specs {
				assert.Equal(t, spec.UnderlyingAsset, got[i], "order of %s", spec.Symbol)
				assert.Equal(t, i/tt.k+1, report.Items[i].Chunk)
			}
		})
	}

	t.Run("chunk size must be positive", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.batch.InitReserves(ctx, e.dctx, target, reserveSpecs(2), 0)
		assert.Error(t, err)
	})
}

func reserveData(active bool, reserveFactor int64, borrowing, stable bool) []byte {
	out, err := bindings.DataProvider.ABI().Methods["getReserveConfigurationData"].Outputs.Pack(
		big.NewInt(18), big.NewInt(8000), big.NewInt(8250), big.NewInt(10500), big.NewInt(reserveFactor),
		true, borrowing, stable, active, false,
	)
	if err != nil {
		panic(err)
	}
	return out
}

func TestBatchInitializer_InitReserves_AlreadyActive(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.signer.CallFn = func(to common.Address, _ []byte) ([]byte, error) {
		require.Equal(t, dataProvider, to)
		return reserveData(true, 1000, true, false), nil
	}

	report, err := e.batch.InitReserves(ctx, e.dctx, usecase.BatchTarget{Configurator: configurator, DataProvider: dataProvider}, reserveSpecs(3), 20)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(models.OutcomeSkippedAlreadyConfigured))
	assert.Empty(t, e.signer.sent)
}

func riskSpecs() []models.ReserveRiskSpec {
	return []models.ReserveRiskSpec{
		{Symbol: "WETH", Asset: wethAddress, BaseLTV: "8000", ReserveFactor: big.NewInt(1000), BorrowingEnabled: true},
		{Symbol: "DAI"},
		{Symbol: "USDT", Asset: addr(77), BaseLTV: models.NotCollateral},
	}
}

func TestBatchInitializer_ConfigureReserves(t *testing.T) {
	ctx := context.Background()

	t.Run("sends borrowing and reserve factor", func(t *testing.T) {
		e := newEnv(t)
		report, err := e.batch.ConfigureReserves(ctx, e.dctx, usecase.BatchTarget{Configurator: configurator}, riskSpecs())
		require.NoError(t, err)

		assert.Len(t, e.signer.sentTo(bindings.Configurator, "enableBorrowingOnReserve"), 1)
		assert.Len(t, e.signer.sentTo(bindings.Configurator, "setReserveFactor"), 1)
		assert.Equal(t, models.OutcomeConfigured, report.Items[0].Outcome)
		assert.Equal(t, models.OutcomeSkippedMissingAsset, report.Items[1].Outcome)
		assert.Equal(t, models.OutcomeSkippedNotCollateral, report.Items[2].Outcome)
	})

	t.Run("rerun against matching state sends nothing", func(t *testing.T) {
		e := newEnv(t)
		e.signer.CallFn = func(common.Address, []byte) ([]byte, error) {
			return reserveData(true, 1000, true, false), nil
		}
		target := usecase.BatchTarget{Configurator: configurator, DataProvider: dataProvider}

		report, err := e.batch.ConfigureReserves(ctx, e.dctx, target, riskSpecs())
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeSkippedAlreadyConfigured, report.Items[0].Outcome)
		assert.Empty(t, e.signer.sent)
	})

	t.Run("inactive reserve is skipped", func(t *testing.T) {
		e := newEnv(t)
		e.signer.CallFn = func(common.Address, []byte) ([]byte, error) {
			return reserveData(false, 0, false, false), nil
		}
		target := usecase.BatchTarget{Configurator: configurator, DataProvider: dataProvider}

		report, err := e.batch.ConfigureReserves(ctx, e.dctx, target, riskSpecs())
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeSkippedNotInitialized, report.Items[0].Outcome)
		assert.Empty(t, e.signer.sent)
	})
}

func TestBatchInitializer_ConfigureVaults(t *testing.T) {
	ctx := context.Background()
	specs := []models.VaultRiskSpec{{
		Symbol: "BAYC", Asset: addr(300), BaseLTV: "3000",
		LiquidationThreshold: big.NewInt(7000), LiquidationBonus: big.NewInt(11500), LockdropExpiration: big.NewInt(0),
	}}

	t.Run("configures collateral and expiration", func(t *testing.T) {
		e := newEnv(t)
		report, err := e.batch.ConfigureVaults(ctx, e.dctx, usecase.BatchTarget{Configurator: configurator}, specs)
		require.NoError(t, err)
		assert.Len(t, report.Transactions, 2)
		assert.Len(t, e.signer.sentTo(bindings.Configurator, "configureNFTVaultAsCollateral"), 1)
		assert.Len(t, e.signer.sentTo(bindings.Configurator, "updateNFTVaultActionExpiration"), 1)
	})

	t.Run("matching state is skipped", func(t *testing.T) {
		e := newEnv(t)
		e.signer.CallFn = func(common.Address, []byte) ([]byte, error) {
			return bindings.DataProvider.ABI().Methods["getNFTVaultConfigurationData"].Outputs.Pack(
				big.NewInt(3000), big.NewInt(7000), big.NewInt(11500), big.NewInt(0), true, false)
		}
		report, err := e.batch.ConfigureVaults(ctx, e.dctx, usecase.BatchTarget{Configurator: configurator, DataProvider: dataProvider}, specs)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Count(models.OutcomeSkippedAlreadyConfigured))
		assert.Empty(t, e.signer.sent)
	})
}

// vinciMarket has one reserve with an address on kovan and one without
func vinciMarket() *models.MarketConfig {
	strategy := models.RateStrategy{Name: "rateStrategyWETH", OptimalUtilizationRate: "650000000000000000000000000"}
	return &models.MarketConfig{
		MarketID:                    "Vinci",
		ProviderID:                  1,
		PoolName:                    "Vinci",
		VTokenNamePrefix:            "Vinci interest bearing",
		VariableDebtTokenNamePrefix: "Vinci variable debt bearing",
		NTokenNamePrefix:            "Vinci NFT",
		Reserves: []models.ReserveParams{
			{Symbol: "WETH", Strategy: strategy, BaseLTVAsCollateral: "8000", LiquidationThreshold: "8250",
				LiquidationBonus: "10500", BorrowingEnabled: true, ReserveDecimals: 18, ReserveFactor: "1000"},
			{Symbol: "DAI", Strategy: strategy, BaseLTVAsCollateral: "7500", ReserveDecimals: 18, ReserveFactor: "1000"},
		},
		Networks: map[string]models.MarketNetwork{
			"kovan": {
				Treasury:      "0x00000000000000000000000000000000000000ee",
				ReserveAssets: map[string]string{"WETH": wethAddress.Hex(), "DAI": ""},
				Aggregators:   map[string]string{},
			},
		},
	}
}

func TestMarketOperations_InitReserves_OneValidOneEmpty(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.put(t, e.dctx.MarketKey(usecase.ConfiguratorID), configurator)
	e.put(t, e.dctx.MarketKey("VToken"), addr(11))
	e.put(t, e.dctx.MarketKey("VariableDebtToken"), addr(12))
	e.put(t, e.dctx.MarketKey("rateStrategyWETH"), addr(13))

	markets := &MockMarketRepository{}
	markets.On("GetMarket", mock.Anything, "Vinci").Return(vinciMarket(), nil)
	ops := usecase.NewMarketOperations(markets, e.registry, e.builder, e.batch, discardLogger())

	report, err := ops.InitReserves(ctx, e.dctx, 10)
	require.NoError(t, err)

	require.Len(t, report.Items, 2)
	assert.Equal(t, "DAI", report.Items[0].Symbol)
	assert.Equal(t, models.OutcomeSkippedMissingAsset, report.Items[0].Outcome)
	assert.Equal(t, "WETH", report.Items[1].Symbol)
	assert.Equal(t, models.OutcomeInitialized, report.Items[1].Outcome)

	sent := e.signer.sentTo(bindings.Configurator, "batchInitReserve")
	require.Len(t, sent, 1)
	assert.Equal(t, configurator, sent[0].To)
	assert.Equal(t, []common.Address{wethAddress}, batchAssets(t, sent[0].Data))
	markets.AssertExpectations(t)
}

func TestMarketOperations_MissingConfigurator(t *testing.T) {
	e := newEnv(t)
	markets := &MockMarketRepository{}
	markets.On("GetMarket", mock.Anything, "Vinci").Return(vinciMarket(), nil)
	ops := usecase.NewMarketOperations(markets, e.registry, e.builder, e.batch, discardLogger())

	_, err := ops.InitReserves(context.Background(), e.dctx, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LendingPoolConfigurator.kovan.Vinci")
	assert.Empty(t, e.signer.sent)
}
