package registry

import (
	"context"
	"sync"

	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// MemoryStore is an in-process AddressStore used by tests and dry runs
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.DeploymentRecord
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.DeploymentRecord)}
}

// Lister is the part of a store needed to copy it
type Lister interface {
	List(ctx context.Context, filter models.RecordFilter) ([]*models.DeploymentRecord, error)
}

// NewMemoryStoreFrom copies every record of src into a new store
func NewMemoryStoreFrom(ctx context.Context, src Lister) (*MemoryStore, error) {
	records, err := src.List(ctx, models.RecordFilter{})
	if err != nil {
		return nil, err
	}
	s := NewMemoryStore()
	for _, r := range records {
		s.records[r.Key.String()] = *r
	}
	return s, nil
}

func (s *MemoryStore) Get(ctx context.Context, key models.RegistryKey) (*models.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key.String()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) Put(ctx context.Context, record *models.DeploymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Key.String()] = *record
	return nil
}

func (s *MemoryStore) List(ctx context.Context, filter models.RecordFilter) ([]*models.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.DeploymentRecord
	for _, r := range s.records {
		if filter.Matches(&r) {
			cp := r
			out = append(out, &cp)
		}
	}
	sortRecords(out)
	return out, nil
}
