package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// RegistryLookup names one registry entry from the command line
type RegistryLookup struct {
	LogicalID string
	Global    bool
	Asset     string
}

func (l RegistryLookup) key(dctx *DeploymentContext) models.RegistryKey {
	if l.Asset != "" {
		return dctx.AssetKey(l.LogicalID, l.Asset)
	}
	return dctx.Key(l.LogicalID, l.Global)
}

// RegistryOperations backs the registry list, get and put commands
type RegistryOperations struct {
	registry *AddressRegistry
	log      *slog.Logger
}

// NewRegistryOperations creates a new RegistryOperations use case
func NewRegistryOperations(registry *AddressRegistry, log *slog.Logger) *RegistryOperations {
	return &RegistryOperations{registry: registry, log: log.With("component", "RegistryOperations")}
}

// List returns matching records, global ones first, each group sorted by key
func (uc *RegistryOperations) List(ctx context.Context, filter models.RecordFilter) ([]*models.DeploymentRecord, error) {
	records, err := uc.registry.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Key, records[j].Key
		if a.Scope() != b.Scope() {
			return a.Scope() == models.GlobalScope
		}
		return a.String() < b.String()
	})
	return records, nil
}

// Get returns one record
func (uc *RegistryOperations) Get(ctx context.Context, dctx *DeploymentContext, lookup RegistryLookup) (*models.DeploymentRecord, error) {
	key := lookup.key(dctx)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	record, err := uc.registry.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return record, nil
}

// Put records an address that was deployed outside this tool
func (uc *RegistryOperations) Put(ctx context.Context, dctx *DeploymentContext, lookup RegistryLookup, address string) (*models.DeploymentRecord, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	record := &models.DeploymentRecord{
		Key:     lookup.key(dctx),
		Address: common.HexToAddress(address),
	}
	if err := uc.registry.Put(ctx, record); err != nil {
		return nil, err
	}
	uc.log.Info("registered address", "key", record.Key.String(), "address", record.Address.Hex())
	return record, nil
}
