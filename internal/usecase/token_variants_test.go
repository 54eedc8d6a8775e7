package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

func TestTokenImplementations(t *testing.T) {
	ctx := context.Background()

	t.Run("keys", func(t *testing.T) {
		e := newEnv(t)
		key, err := e.tokens.Key(e.dctx, models.VTokenVariant, "WETH")
		require.NoError(t, err)
		assert.Equal(t, "VToken.kovan.Vinci", key.String())

		key, err = e.tokens.Key(e.dctx, models.TimeLockableNTokenVariant, "BAYC")
		require.NoError(t, err)
		assert.Equal(t, "TimeLockableNToken.kovan.Vinci.vnBAYC", key.String())
	})

	t.Run("per asset deploy registers under the vn slot", func(t *testing.T) {
		e := newEnv(t)
		e.artifacts["TimeLockableNToken"] = artifact("TimeLockableNToken", "")

		record, err := e.tokens.Deploy(ctx, e.dctx, models.TimeLockableNTokenVariant, "BAYC", false)
		require.NoError(t, err)
		assert.Equal(t, "TimeLockableNToken.kovan.Vinci.vnBAYC", record.Key.String())

		got, err := e.tokens.Resolve(ctx, e.dctx, models.TimeLockableNTokenVariant, "BAYC", nil)
		require.NoError(t, err)
		assert.Equal(t, record.Address, got)
	})

	t.Run("unsupported variant", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.tokens.Deploy(ctx, e.dctx, models.TokenVariant("StableDebtToken"), "WETH", false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnsupportedVariant))

		var unsupported *domain.UnsupportedVariantError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "StableDebtToken", unsupported.Variant)
		assert.Empty(t, e.signer.deployed)
	})

	t.Run("deploys once", func(t *testing.T) {
		e := newEnv(t)
		e.artifacts["NToken"] = artifact("NToken", "")

		first, err := e.tokens.Deploy(ctx, e.dctx, models.NTokenVariant, "BAYC", false)
		require.NoError(t, err)
		second, err := e.tokens.Deploy(ctx, e.dctx, models.NTokenVariant, "MAYC", false)
		require.NoError(t, err)
		assert.Equal(t, first.Address, second.Address)
		assert.Len(t, e.signer.deployed, 1)
	})

	t.Run("explicit override wins", func(t *testing.T) {
		e := newEnv(t)
		override := addr(42)
		got, err := e.tokens.Resolve(ctx, e.dctx, models.VTokenVariant, "WETH", &override)
		require.NoError(t, err)
		assert.Equal(t, override, got)
	})
}

func TestNFTVaultParams_NTokenVariant(t *testing.T) {
	tests := []struct {
		name   string
		params models.NFTVaultParams
		want   models.TokenVariant
	}{
		{"default", models.NFTVaultParams{}, models.NTokenVariant},
		{"zero lockdrop keeps configured", models.NFTVaultParams{NTokenImpl: models.NTokenVariant, LockdropExpiration: "0"}, models.NTokenVariant},
		{"lockdrop forces time lock", models.NFTVaultParams{NTokenImpl: models.NTokenVariant, LockdropExpiration: "1650000000"}, models.TimeLockableNTokenVariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.NTokenVariant())
		})
	}
}
