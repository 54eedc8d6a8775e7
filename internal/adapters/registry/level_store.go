package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// LevelStore keeps the registry in an embedded goleveldb database.
// Keys are prefixed with their namespace: "global/" or "market/".
type LevelStore struct {
	db *leveldb.DB
}

// NewLevelStore opens or creates the database at path
func NewLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database %s: %w", path, err)
	}
	return &LevelStore{db: db}, nil
}

// Close releases the database
func (s *LevelStore) Close() error {
	return s.db.Close()
}

func dbKey(key models.RegistryKey) []byte {
	return []byte(string(key.Scope()) + "/" + key.String())
}

func (s *LevelStore) Get(ctx context.Context, key models.RegistryKey) (*models.DeploymentRecord, error) {
	data, err := s.db.Get(dbKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("corrupt record %s: %w", key, err)
	}
	return e.record(key), nil
}

func (s *LevelStore) Put(ctx context.Context, record *models.DeploymentRecord) error {
	e := entry{Address: record.Address, Deployer: record.Deployer}
	if record.TxHash != (common.Hash{}) {
		hash := record.TxHash
		e.TxHash = &hash
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.db.Put(dbKey(record.Key), data, nil)
}

func (s *LevelStore) List(ctx context.Context, filter models.RecordFilter) ([]*models.DeploymentRecord, error) {
	var prefix []byte
	if filter.Scope != "" {
		prefix = []byte(string(filter.Scope) + "/")
	}
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var records []*models.DeploymentRecord
	for iter.Next() {
		scope, raw, ok := strings.Cut(string(iter.Key()), "/")
		if !ok {
			continue
		}
		key, err := models.ParseRegistryKey(models.Scope(scope), raw)
		if err != nil {
			return nil, err
		}
		var e entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, fmt.Errorf("corrupt record %s: %w", raw, err)
		}
		if record := e.record(key); filter.Matches(record) {
			records = append(records, record)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sortRecords(records)
	return records, nil
}
