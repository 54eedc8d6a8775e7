package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// AddressRegistry resolves contract roles to addresses on top of an AddressStore
type AddressRegistry struct {
	store AddressStore
	log   *slog.Logger
}

// NewAddressRegistry creates a new AddressRegistry
func NewAddressRegistry(store AddressStore, log *slog.Logger) *AddressRegistry {
	return &AddressRegistry{
		store: store,
		log:   log.With("component", "AddressRegistry"),
	}
}

// Put upserts a record; the last write for a key wins
func (r *AddressRegistry) Put(ctx context.Context, record *models.DeploymentRecord) error {
	if err := record.Key.Validate(); err != nil {
		return err
	}
	if err := r.store.Put(ctx, record); err != nil {
		return fmt.Errorf("failed to register %s: %w", record.Key, err)
	}
	r.log.Debug("registered contract", "key", record.Key.String(), "address", record.Address.Hex())
	return nil
}

// Get returns the record for key or domain.ErrNotFound
func (r *AddressRegistry) Get(ctx context.Context, key models.RegistryKey) (*models.DeploymentRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return r.store.Get(ctx, key)
}

// Address returns the registered address for key
func (r *AddressRegistry) Address(ctx context.Context, key models.RegistryKey) (common.Address, error) {
	record, err := r.Get(ctx, key)
	if err != nil {
		return common.Address{}, err
	}
	return record.Address, nil
}

// GetOrFallback prefers a non-zero explicit address, then the registry.
// A key with neither fails with a MissingAddressError.
func (r *AddressRegistry) GetOrFallback(ctx context.Context, key models.RegistryKey, explicit *common.Address) (common.Address, error) {
	if explicit != nil && *explicit != (common.Address{}) {
		return *explicit, nil
	}
	record, err := r.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return common.Address{}, &domain.MissingAddressError{Key: key.String()}
	}
	if err != nil {
		return common.Address{}, err
	}
	return record.Address, nil
}

// Exists reports whether key has a record
func (r *AddressRegistry) Exists(ctx context.Context, key models.RegistryKey) (bool, error) {
	_, err := r.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List enumerates records matching filter
func (r *AddressRegistry) List(ctx context.Context, filter models.RecordFilter) ([]*models.DeploymentRecord, error) {
	return r.store.List(ctx, filter)
}
