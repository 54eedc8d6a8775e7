package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sort"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/bindings"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is a map backed AddressStore
type memStore struct {
	mu      sync.RWMutex
	records map[string]*models.DeploymentRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*models.DeploymentRecord)}
}

func (s *memStore) Get(_ context.Context, key models.RegistryKey) (*models.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key.String()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) Put(_ context.Context, record *models.DeploymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *record
	s.records[record.Key.String()] = &cp
	return nil
}

func (s *memStore) List(_ context.Context, filter models.RecordFilter) ([]*models.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.DeploymentRecord
	for _, r := range s.records {
		if filter.Matches(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}

// fakeArtifacts serves artifacts from a map
type fakeArtifacts map[string]*models.Artifact

func (f fakeArtifacts) GetArtifact(_ context.Context, name string) (*models.Artifact, error) {
	a, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	}
	return a, nil
}

func (f fakeArtifacts) ListArtifacts(context.Context) []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// artifact builds a minimal artifact; abiJSON may be empty
func artifact(name, abiJSON string) *models.Artifact {
	a := &models.Artifact{ContractName: name, SourceName: "contracts/" + name + ".sol", Bytecode: "0x6080604052"}
	if abiJSON != "" {
		a.ABI = []byte(abiJSON)
	}
	return a
}

type sentTx struct {
	To   common.Address
	Data []byte
}

// fakeSigner is a TxSubmitter whose behaviour is set per test through function fields.
// By default deployments get CREATE addresses, every receipt succeeds and calls return zeros.
type fakeSigner struct {
	from     common.Address
	nonce    uint64
	deployed [][]byte
	sent     []sentTx

	DeployFn   func(code []byte) (*models.PendingTx, error)
	TransactFn func(to common.Address, data []byte) (*models.PendingTx, error)
	CallFn     func(to common.Address, data []byte) ([]byte, error)
	StorageFn  func(account common.Address, slot common.Hash) (common.Hash, error)
	WaitFn     func(tx *models.PendingTx) (*types.Receipt, error)
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{from: common.HexToAddress("0x00000000000000000000000000000000000000a1")}
}

func (f *fakeSigner) Sender() common.Address { return f.from }

func (f *fakeSigner) next() (uint64, common.Hash) {
	n := f.nonce
	f.nonce++
	return n, common.BigToHash(new(big.Int).SetUint64(n + 1))
}

func (f *fakeSigner) Deploy(_ context.Context, code []byte) (*models.PendingTx, error) {
	f.deployed = append(f.deployed, code)
	if f.DeployFn != nil {
		return f.DeployFn(code)
	}
	nonce, hash := f.next()
	return &models.PendingTx{
		Hash:            hash,
		From:            f.from,
		Nonce:           nonce,
		ContractAddress: crypto.CreateAddress(f.from, nonce),
	}, nil
}

func (f *fakeSigner) Transact(_ context.Context, to common.Address, data []byte) (*models.PendingTx, error) {
	f.sent = append(f.sent, sentTx{To: to, Data: data})
	if f.TransactFn != nil {
		return f.TransactFn(to, data)
	}
	nonce, hash := f.next()
	return &models.PendingTx{Hash: hash, From: f.from, To: &to, Nonce: nonce}, nil
}

func (f *fakeSigner) Call(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	if f.CallFn != nil {
		return f.CallFn(to, data)
	}
	return make([]byte, 512), nil
}

func (f *fakeSigner) StorageAt(_ context.Context, account common.Address, slot common.Hash) (common.Hash, error) {
	if f.StorageFn != nil {
		return f.StorageFn(account, slot)
	}
	return common.Hash{}, nil
}

func (f *fakeSigner) WaitConfirmed(_ context.Context, tx *models.PendingTx) (*types.Receipt, error) {
	if f.WaitFn != nil {
		return f.WaitFn(tx)
	}
	return &types.Receipt{
		Status:          types.ReceiptStatusSuccessful,
		TxHash:          tx.Hash,
		ContractAddress: tx.ContractAddress,
		GasUsed:         100000,
	}, nil
}

// sentTo returns the transactions calling method of contract
func (f *fakeSigner) sentTo(contract *bindings.Contract, method string) []sentTx {
	id := contract.ABI().Methods[method].ID
	var out []sentTx
	for _, tx := range f.sent {
		if len(tx.Data) >= 4 && bytes.Equal(tx.Data[:4], id) {
			out = append(out, tx)
		}
	}
	return out
}

// MockMarketRepository is a mock implementation of MarketRepository
type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) GetMarket(ctx context.Context, marketID string) (*models.MarketConfig, error) {
	args := m.Called(ctx, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarketConfig), args.Error(1)
}

func (m *MockMarketRepository) ListMarkets(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

// MockProgressSink collects progress events
type MockProgressSink struct {
	events []usecase.ProgressEvent
}

func (m *MockProgressSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(string)  {}
func (m *MockProgressSink) Error(string) {}

// env wires the use cases over in-memory collaborators
type env struct {
	store     *memStore
	artifacts fakeArtifacts
	signer    *fakeSigner
	sink      *MockProgressSink
	dctx      *usecase.DeploymentContext
	registry  *usecase.AddressRegistry
	pipeline  *usecase.DeploymentPipeline
	libraries *usecase.LibraryResolver
	tokens    *usecase.TokenImplementations
	builder   *usecase.SpecBuilder
	batch     *usecase.BatchInitializer
	oracles   *usecase.OracleSetup
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := discardLogger()
	e := &env{
		store:     newMemStore(),
		artifacts: fakeArtifacts{},
		signer:    newFakeSigner(),
		sink:      &MockProgressSink{},
	}
	e.dctx = &usecase.DeploymentContext{Network: "kovan", MarketID: "Vinci", Signer: e.signer}
	e.registry = usecase.NewAddressRegistry(e.store, log)
	e.pipeline = usecase.NewDeploymentPipeline(e.registry, e.artifacts, nil, e.sink, log)
	e.libraries = usecase.NewLibraryResolver(e.registry, e.artifacts, e.pipeline, e.sink, log)
	e.tokens = usecase.NewTokenImplementations(e.registry, e.pipeline, log)
	e.builder = usecase.NewSpecBuilder(e.registry, e.tokens, log)
	e.batch = usecase.NewBatchInitializer(e.pipeline, e.sink, log)
	e.oracles = usecase.NewOracleSetup(e.pipeline, e.sink, log)
	return e
}

func (e *env) put(t *testing.T, key models.RegistryKey, addr common.Address) {
	t.Helper()
	if err := e.registry.Put(context.Background(), &models.DeploymentRecord{Key: key, Address: addr}); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func addr(n int64) common.Address {
	return common.BigToAddress(big.NewInt(n))
}
