package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/sahilm/fuzzy"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// Repository serves hardhat artifacts from the artifacts directory.
// The directory is indexed once; decoded artifacts are cached.
type Repository struct {
	dir   string
	cache *cache.Cache
	log   *slog.Logger

	once     sync.Once
	indexErr error
	paths    map[string]string
}

// NewRepository creates a repository over the configured artifacts directory
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	return NewRepositoryAt(cfg.ArtifactsDir, log)
}

// NewRepositoryAt creates a repository over dir
func NewRepositoryAt(dir string, log *slog.Logger) *Repository {
	return &Repository{
		dir:   dir,
		cache: cache.New(cache.NoExpiration, 0),
		log:   log.With("component", "ArtifactRepository"),
	}
}

func (r *Repository) index() error {
	r.once.Do(func() {
		r.paths = make(map[string]string)
		r.indexErr = filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			name := d.Name()
			if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".dbg.json") {
				return nil
			}
			contract := strings.TrimSuffix(name, ".json")
			if source := filepath.Base(filepath.Dir(path)); strings.HasSuffix(source, ".sol") {
				rel, err := filepath.Rel(r.dir, filepath.Dir(path))
				if err == nil {
					r.paths[filepath.ToSlash(rel)+":"+contract] = path
				}
			}
			if existing, ok := r.paths[contract]; ok {
				r.log.Debug("duplicate artifact name, keeping first", "contract", contract, "kept", existing, "ignored", path)
				return nil
			}
			r.paths[contract] = path
			return nil
		})
		if r.indexErr != nil {
			r.indexErr = fmt.Errorf("failed to index artifacts in %s: %w", r.dir, r.indexErr)
		}
	})
	return r.indexErr
}

// GetArtifact returns the artifact for a short or fully qualified contract name
func (r *Repository) GetArtifact(ctx context.Context, name string) (*models.Artifact, error) {
	if cached, ok := r.cache.Get(name); ok {
		return cached.(*models.Artifact), nil
	}
	if err := r.index(); err != nil {
		return nil, err
	}
	path, ok := r.paths[name]
	if !ok {
		return nil, &domain.LookupError{
			Kind:        domain.ErrArtifactNotFound,
			Name:        name,
			Suggestions: suggest(name, r.names()),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	r.cache.SetDefault(name, &artifact)
	return &artifact, nil
}

// ListArtifacts returns the short names of every indexed contract
func (r *Repository) ListArtifacts(ctx context.Context) []string {
	if err := r.index(); err != nil {
		r.log.Warn("artifact index unavailable", "error", err)
		return nil
	}
	return r.names()
}

func (r *Repository) names() []string {
	names := make([]string, 0, len(r.paths))
	for name := range r.paths {
		if !strings.Contains(name, ":") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)
	out := make([]string, 0, 3)
	for i := 0; i < len(matches) && i < 3; i++ {
		out = append(out, matches[i].Str)
	}
	return out
}

var _ usecase.ArtifactRepository = (*Repository)(nil)
