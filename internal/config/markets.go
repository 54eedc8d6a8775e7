package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
	"gopkg.in/yaml.v3"
)

// MarketRepository loads market files (*.yaml, *.yml, *.toml) from one directory,
// keyed by their marketId.
type MarketRepository struct {
	dir string

	once    sync.Once
	markets map[string]*models.MarketConfig
	err     error
}

// NewMarketRepository creates a repository over the configured markets dir
func NewMarketRepository(cfg *config.RuntimeConfig) *MarketRepository {
	return NewMarketRepositoryAt(cfg.MarketsDir)
}

// NewMarketRepositoryAt creates a repository over dir
func NewMarketRepositoryAt(dir string) *MarketRepository {
	return &MarketRepository{dir: dir}
}

// GetMarket returns the market by id, with suggestions when it is unknown
func (r *MarketRepository) GetMarket(ctx context.Context, marketID string) (*models.MarketConfig, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	market, ok := r.markets[marketID]
	if !ok {
		return nil, &domain.LookupError{
			Kind:        domain.ErrUnknownMarket,
			Name:        marketID,
			Suggestions: suggest(marketID, r.ListMarkets(ctx)),
		}
	}
	return market, nil
}

// ListMarkets returns the known market ids, sorted. A broken market file yields none.
func (r *MarketRepository) ListMarkets(ctx context.Context) []string {
	if err := r.load(); err != nil {
		return nil
	}
	ids := lo.Keys(r.markets)
	sort.Strings(ids)
	return ids
}

func (r *MarketRepository) load() error {
	r.once.Do(func() {
		r.markets = make(map[string]*models.MarketConfig)
		entries, err := os.ReadDir(r.dir)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			r.err = fmt.Errorf("failed to read markets dir: %w", err)
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(r.dir, e.Name())
			market, err := decodeMarket(path)
			if err != nil {
				r.err = err
				return
			}
			if market == nil {
				continue
			}
			if prev, dup := r.markets[market.MarketID]; dup {
				r.err = fmt.Errorf("market %s defined twice (%s)", prev.MarketID, e.Name())
				return
			}
			r.markets[market.MarketID] = market
		}
	})
	return r.err
}

// decodeMarket reads one market file; files with other extensions are ignored
func decodeMarket(path string) (*models.MarketConfig, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".toml" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read market file %s: %w", path, err)
	}

	var market models.MarketConfig
	if ext == ".toml" {
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&market)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&market)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse market file %s: %w", filepath.Base(path), err)
	}
	if err := market.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &market, nil
}

var _ usecase.MarketRepository = (*MarketRepository)(nil)
