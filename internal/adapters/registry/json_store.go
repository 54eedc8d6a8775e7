package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

const (
	GlobalFile = "deployed-contracts.json"
	MarketFile = "deployed-market-contracts.json"
)

// entry is the persisted shape of one record
type entry struct {
	Address  common.Address `json:"address"`
	Deployer common.Address `json:"deployer"`
	TxHash   *common.Hash   `json:"transactionHash,omitempty"`
}

// entryFields are the leaf keys of a record object; any other key is a child node
var entryFields = map[string]bool{"address": true, "deployer": true, "transactionHash": true}

// JSONStore keeps the registry in two JSON documents, one per namespace.
// Documents nest one object level per key part, id -> network[ -> market[ -> asset]],
// which is the layout the hardhat tasks write. A market object may carry its own
// record next to its asset children.
// Access is serialised in-process only; two processes writing the same
// directory will overwrite each other.
type JSONStore struct {
	dir     string
	mu      sync.RWMutex
	entries map[models.Scope]map[string]entry
}

// NewJSONStore opens the registry in dir, creating the directory if needed
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	s := &JSONStore{
		dir: dir,
		entries: map[models.Scope]map[string]entry{
			models.GlobalScope: {},
			models.MarketScope: {},
		},
	}
	for scope := range s.entries {
		if err := s.load(scope); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func fileFor(scope models.Scope) string {
	if scope == models.GlobalScope {
		return GlobalFile
	}
	return MarketFile
}

// depths returns the shortest and longest key of a namespace in parts
func depths(scope models.Scope) (int, int) {
	if scope == models.GlobalScope {
		return 2, 2
	}
	return 3, 4
}

func (s *JSONStore) load(scope models.Scope) error {
	path := filepath.Join(s.dir, fileFor(scope))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	entries := make(map[string]entry)
	if err := flatten(scope, data, nil, entries); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	s.entries[scope] = entries
	return nil
}

// flatten walks one object of the nested document and collects its records by key
func flatten(scope models.Scope, data json.RawMessage, path []string, out map[string]entry) error {
	minDepth, maxDepth := depths(scope)

	var node map[string]json.RawMessage
	if err := json.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(path, "."), err)
	}

	if _, ok := node["address"]; ok && len(path) >= minDepth {
		var e entry
		if err := json.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("%s: %w", strings.Join(path, "."), err)
		}
		out[strings.Join(path, ".")] = e
	}

	if len(path) == maxDepth {
		return nil
	}
	for name, child := range node {
		if len(path) >= minDepth && entryFields[name] {
			continue
		}
		if !isObject(child) {
			continue
		}
		if err := flatten(scope, child, append(path[:len(path):len(path)], name), out); err != nil {
			return err
		}
	}
	return nil
}

func isObject(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// nest builds the document for one namespace from its flat records
func nest(entries map[string]entry) map[string]any {
	doc := make(map[string]any)
	for raw, e := range entries {
		node := doc
		for _, part := range strings.Split(raw, ".") {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node["address"] = e.Address.Hex()
		if e.Deployer != (common.Address{}) {
			node["deployer"] = e.Deployer.Hex()
		}
		if e.TxHash != nil {
			node["transactionHash"] = e.TxHash.Hex()
		}
	}
	return doc
}

// save writes one namespace through a temp file and an atomic rename
func (s *JSONStore) save(scope models.Scope) error {
	path := filepath.Join(s.dir, fileFor(scope))
	data, err := json.MarshalIndent(nest(s.entries[scope]), "", "  ")
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Get returns the record for key or domain.ErrNotFound
func (s *JSONStore) Get(ctx context.Context, key models.RegistryKey) (*models.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key.Scope()][key.String()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.record(key), nil
}

// Put upserts the record and persists its namespace. The in-memory view is
// rolled back when the write fails.
func (s *JSONStore) Put(ctx context.Context, record *models.DeploymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scope := record.Key.Scope()
	raw := record.Key.String()
	e := entry{Address: record.Address, Deployer: record.Deployer}
	if record.TxHash != (common.Hash{}) {
		hash := record.TxHash
		e.TxHash = &hash
	}

	prev, existed := s.entries[scope][raw]
	s.entries[scope][raw] = e
	if err := s.save(scope); err != nil {
		if existed {
			s.entries[scope][raw] = prev
		} else {
			delete(s.entries[scope], raw)
		}
		return fmt.Errorf("failed to save %s: %w", fileFor(scope), err)
	}
	return nil
}
// List returns the matching records sorted by key
func (s *JSONStore) List(ctx context.Context, filter models.RecordFilter) ([]*models.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*models.DeploymentRecord
	for scope, entries := range s.entries {
		if filter.Scope != "" && filter.Scope != scope {
			continue
		}
		for raw, e := range entries {
			key, err := models.ParseRegistryKey(scope, raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fileFor(scope), err)
			}
			record := e.record(key)
			if filter.Matches(record) {
				records = append(records, record)
			}
		}
	}
	sortRecords(records)
	return records, nil
}

func (e entry) record(key models.RegistryKey) *models.DeploymentRecord {
	r := &models.DeploymentRecord{Key: key, Address: e.Address, Deployer: e.Deployer}
	if e.TxHash != nil {
		r.TxHash = *e.TxHash
	}
	return r
}

func sortRecords(records []*models.DeploymentRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key.String() < records[j].Key.String()
	})
}
