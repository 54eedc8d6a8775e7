package usecase_test

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/bindings"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

func ctorInputs(t *testing.T, inputs string) abi.Arguments {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"constructor","inputs":[` + inputs + `]}]`))
	require.NoError(t, err)
	return parsed.Constructor.Inputs
}

func TestParseArgs(t *testing.T) {
	t.Run("scalar types", func(t *testing.T) {
		inputs := ctorInputs(t, `{"name":"a","type":"address"},{"name":"n","type":"uint256"},{"name":"d","type":"uint8"},
			{"name":"ok","type":"bool"},{"name":"s","type":"string"},{"name":"b","type":"bytes"},{"name":"h","type":"bytes32"}`)

		args, err := usecase.ParseArgs(inputs, []string{
			"0x1111111111111111111111111111111111111111", "1000000000000000000", "18", "true", "Vinci", "0x10", "0x01",
		})
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), args[0])
		assert.Equal(t, 0, args[1].(*big.Int).Cmp(big.NewInt(1e18)))
		assert.Equal(t, uint8(18), args[2])
		assert.Equal(t, true, args[3])
		assert.Equal(t, "Vinci", args[4])
		assert.Equal(t, []byte{0x10}, args[5])
		assert.Equal(t, [32]byte{0x01}, args[6])

		_, err = inputs.Pack(args...)
		assert.NoError(t, err)
	})

	t.Run("arrays", func(t *testing.T) {
		inputs := ctorInputs(t, `{"name":"assets","type":"address[]"},{"name":"rates","type":"uint256[2]"}`)
		args, err := usecase.ParseArgs(inputs, []string{
			"[0x1111111111111111111111111111111111111111,0x2222222222222222222222222222222222222222]", "[1,2]",
		})
		require.NoError(t, err)
		assert.Len(t, args[0], 2)
		_, err = inputs.Pack(args...)
		assert.NoError(t, err)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name   string
			inputs string
			raw    []string
		}{
			{"count", `{"name":"a","type":"address"}`, nil},
			{"bad address", `{"name":"a","type":"address"}`, []string{"0x12"}},
			{"negative uint", `{"name":"n","type":"uint256"}`, []string{"-1"}},
			{"overflow", `{"name":"d","type":"uint8"}`, []string{"256"}},
			{"fixed array size", `{"name":"r","type":"uint256[2]"}`, []string{"[1]"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := usecase.ParseArgs(ctorInputs(t, tt.inputs), tt.raw)
				assert.Error(t, err)
			})
		}
	})
}

func TestDeployContract(t *testing.T) {
	ctx := context.Background()

	t.Run("links required libraries", func(t *testing.T) {
		e := newEnv(t)
		e.artifacts["ReserveLogic"] = linkedLibrary("ReserveLogic")
		e.artifacts["LendingPool"] = linkedLibrary("LendingPool", "ReserveLogic")
		uc := usecase.NewDeployContract(e.artifacts, e.pipeline, e.libraries, discardLogger())

		result, err := uc.Run(ctx, e.dctx, usecase.DeployContractParams{LogicalID: "LendingPoolImpl", Contract: "LendingPool"})
		require.NoError(t, err)
		assert.Nil(t, result.Proxy)
		assert.Equal(t, "LendingPoolImpl.kovan.Vinci", result.Implementation.Key.String())
		assert.Len(t, e.signer.deployed, 2)
	})

	t.Run("proxied with initializer args", func(t *testing.T) {
		e := newEnv(t)
		e.artifacts[usecase.ProxyContract] = artifact(usecase.ProxyContract, "")
		e.artifacts["NFTXRangeEligibility"] = artifact("NFTXRangeEligibility", `[{"type":"function","name":"__NFTXEligibility_init",
			"inputs":[{"name":"rangeStart","type":"uint256"},{"name":"rangeEnd","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"}]`)
		uc := usecase.NewDeployContract(e.artifacts, e.pipeline, e.libraries, discardLogger())

		result, err := uc.Run(ctx, e.dctx, usecase.DeployContractParams{
			LogicalID:  "BAYCEligibility",
			Contract:   "NFTXRangeEligibility",
			Proxy:      true,
			InitMethod: "__NFTXEligibility_init",
			Args:       []string{"0", "9999"},
		})
		require.NoError(t, err)
		require.NotNil(t, result.Proxy)
		assert.Equal(t, "BAYCEligibilityImpl", result.Implementation.Key.LogicalID)
	})

	t.Run("proxied with a separate admin", func(t *testing.T) {
		e := newEnv(t)
		e.artifacts[usecase.ProxyContract] = artifact(usecase.ProxyContract, "")
		e.artifacts["AaveCollector"] = artifact("AaveCollector", initializeABI)
		uc := usecase.NewDeployContract(e.artifacts, e.pipeline, e.libraries, discardLogger())

		_, err := uc.Run(ctx, e.dctx, usecase.DeployContractParams{
			LogicalID:  "AaveTreasury",
			Contract:   "AaveCollector",
			Proxy:      true,
			InitMethod: "initialize",
			Admin:      "0x0000000000000000000000000000000000000077",
		})
		require.NoError(t, err)
		inits := e.signer.sentTo(bindings.Proxy, "initialize")
		require.Len(t, inits, 1)
		args, err := bindings.Proxy.ABI().Methods["initialize"].Inputs.Unpack(inits[0].Data[4:])
		require.NoError(t, err)
		assert.Equal(t, addr(0x77), args[1])

		_, err = uc.Run(ctx, e.dctx, usecase.DeployContractParams{LogicalID: "Other", Contract: "AaveCollector", Proxy: true, Admin: "0x77"})
		assert.ErrorContains(t, err, "invalid admin address")
	})

	t.Run("global registers without market", func(t *testing.T) {
		e := newEnv(t)
		e.artifacts["WalletBalanceProvider"] = artifact("WalletBalanceProvider", "")
		uc := usecase.NewDeployContract(e.artifacts, e.pipeline, e.libraries, discardLogger())

		result, err := uc.Run(ctx, e.dctx, usecase.DeployContractParams{LogicalID: "WalletBalanceProvider", Global: true})
		require.NoError(t, err)
		assert.Equal(t, models.GlobalScope, result.Implementation.Key.Scope())
	})
}
