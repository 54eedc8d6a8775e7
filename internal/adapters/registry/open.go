package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// LevelDBDir is the database directory under the data dir
const LevelDBDir = "registry.db"

// Open builds the configured backend. In dry-run mode the records are copied into
// memory so nothing is persisted. The cleanup func closes the backend.
func Open(ctx context.Context, cfg *config.RuntimeConfig, log *slog.Logger) (usecase.AddressStore, func(), error) {
	var (
		store   usecase.AddressStore
		cleanup = func() {}
	)

	switch cfg.RegistryBackend {
	case "", "json":
		s, err := NewJSONStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case "leveldb":
		s, err := NewLevelStore(filepath.Join(cfg.DataDir, LevelDBDir))
		if err != nil {
			return nil, nil, err
		}
		store = s
		cleanup = func() {
			if err := s.Close(); err != nil {
				log.Warn("failed to close registry", "error", err)
			}
		}
	case "memory":
		store = NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("unknown registry backend %q", cfg.RegistryBackend)
	}

	if cfg.DryRun {
		mem, err := NewMemoryStoreFrom(ctx, store)
		cleanup()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to copy registry for dry run: %w", err)
		}
		log.Debug("dry run: registry copied into memory", "backend", cfg.RegistryBackend)
		return mem, func() {}, nil
	}

	return store, cleanup, nil
}
