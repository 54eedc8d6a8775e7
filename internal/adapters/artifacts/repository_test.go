package artifacts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	pool := filepath.Join(dir, "contracts", "protocol", "lendingpool", "LendingPool.sol")
	writeFile(t, filepath.Join(pool, "LendingPool.json"), `{
		"contractName": "LendingPool",
		"sourceName": "contracts/protocol/lendingpool/LendingPool.sol",
		"abi": [],
		"bytecode": "0x6080",
		"linkReferences": {"contracts/protocol/libraries/logic/ReserveLogic.sol": {"ReserveLogic": [{"start": 1, "length": 20}]}}
	}`)
	writeFile(t, filepath.Join(pool, "LendingPool.dbg.json"), `{"buildInfo": "../../build-info/x.json"}`)
	writeFile(t, filepath.Join(dir, "build-info", "x.json"), `{"not": "an artifact"}`)
	writeFile(t, filepath.Join(dir, "contracts", "lib", "ReserveLogic.sol", "ReserveLogic.json"),
		`{"contractName": "ReserveLogic", "abi": [], "bytecode": "0x60"}`)

	repo := NewRepositoryAt(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("by short name", func(t *testing.T) {
		a, err := repo.GetArtifact(ctx, "LendingPool")
		require.NoError(t, err)
		assert.Equal(t, "LendingPool", a.ContractName)
		assert.Equal(t, []string{"ReserveLogic"}, a.RequiredLibraries())
	})

	t.Run("by qualified name", func(t *testing.T) {
		a, err := repo.GetArtifact(ctx, "contracts/protocol/lendingpool/LendingPool.sol:LendingPool")
		require.NoError(t, err)
		assert.Equal(t, "0x6080", a.Bytecode)
	})

	t.Run("cached", func(t *testing.T) {
		first, err := repo.GetArtifact(ctx, "ReserveLogic")
		require.NoError(t, err)
		second, err := repo.GetArtifact(ctx, "ReserveLogic")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("list skips debug files", func(t *testing.T) {
		assert.Equal(t, []string{"LendingPool", "ReserveLogic"}, repo.ListArtifacts(ctx))
	})

	t.Run("unknown name suggests", func(t *testing.T) {
		_, err := repo.GetArtifact(ctx, "LendingPol")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrArtifactNotFound))

		var lookup *domain.LookupError
		require.True(t, errors.As(err, &lookup))
		assert.Contains(t, lookup.Suggestions, "LendingPool")
	})
}
