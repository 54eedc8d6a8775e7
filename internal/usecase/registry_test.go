package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

func TestAddressRegistry_GetOrFallback(t *testing.T) {
	ctx := context.Background()
	key := models.MarketKey("WETH", "kovan", "Vinci")
	registered := common.HexToAddress("0xd0A1E359811322d97991E03f863a0C30C2cF029C")
	configured := common.HexToAddress("0x1111111111111111111111111111111111111111")

	t.Run("explicit address wins", func(t *testing.T) {
		e := newEnv(t)
		e.put(t, key, registered)

		got, err := e.registry.GetOrFallback(ctx, key, &configured)
		require.NoError(t, err)
		assert.Equal(t, configured, got)
	})

	t.Run("zero explicit falls back to registry", func(t *testing.T) {
		e := newEnv(t)
		e.put(t, key, registered)

		zero := common.Address{}
		got, err := e.registry.GetOrFallback(ctx, key, &zero)
		require.NoError(t, err)
		assert.Equal(t, registered, got)

		got, err = e.registry.GetOrFallback(ctx, key, nil)
		require.NoError(t, err)
		assert.Equal(t, registered, got)
	})

	t.Run("neither fails with the key", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.registry.GetOrFallback(ctx, key, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrMissingAddress))

		var missing *domain.MissingAddressError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "WETH.kovan.Vinci", missing.Key)
	})
}

func TestAddressRegistry_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("last write wins", func(t *testing.T) {
		e := newEnv(t)
		key := models.GlobalKey("ReserveLogic", "kovan")
		e.put(t, key, addr(1))
		e.put(t, key, addr(2))

		got, err := e.registry.Address(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, addr(2), got)

		records, err := e.registry.List(ctx, models.RecordFilter{Network: "kovan"})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("invalid key rejected", func(t *testing.T) {
		e := newEnv(t)
		err := e.registry.Put(ctx, &models.DeploymentRecord{Key: models.GlobalKey("a.b", "kovan")})
		assert.ErrorIs(t, err, domain.ErrInvalidKey)
	})
}

func TestRegistryOperations(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ops := usecase.NewRegistryOperations(e.registry, discardLogger())

	_, err := ops.Put(ctx, e.dctx, usecase.RegistryLookup{LogicalID: "LendingPool"}, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	_, err = ops.Put(ctx, e.dctx, usecase.RegistryLookup{LogicalID: "ReserveLogic", Global: true}, "0x2222222222222222222222222222222222222222")
	require.NoError(t, err)

	t.Run("invalid address", func(t *testing.T) {
		_, err := ops.Put(ctx, e.dctx, usecase.RegistryLookup{LogicalID: "X"}, "0x12")
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	})

	t.Run("list puts global first", func(t *testing.T) {
		records, err := ops.List(ctx, models.RecordFilter{Network: "kovan"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "ReserveLogic.kovan", records[0].Key.String())
		assert.Equal(t, "LendingPool.kovan.Vinci", records[1].Key.String())
	})

	t.Run("get", func(t *testing.T) {
		record, err := ops.Get(ctx, e.dctx, usecase.RegistryLookup{LogicalID: "LendingPool"})
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), record.Address)

		_, err = ops.Get(ctx, e.dctx, usecase.RegistryLookup{LogicalID: "Missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
