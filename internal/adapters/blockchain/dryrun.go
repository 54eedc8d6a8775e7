package blockchain

import (
	"context"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// emptyCallResult stands in for calls to contracts that only exist in the simulation
var emptyCallResult = make([]byte, 512)

// PlannedTx is a transaction the dry run would have sent
type PlannedTx struct {
	Nonce    uint64
	To       *common.Address
	Data     []byte
	Contract common.Address
}

// CallBackend is the read-only half of Backend
type CallBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
}

// DryRunSubmitter records transactions instead of sending them. Reads still go to
// the node; calls that return nothing are answered with zeroed words.
type DryRunSubmitter struct {
	backend CallBackend
	from    common.Address
	log     *slog.Logger

	mu          sync.Mutex
	nonce       uint64
	nonceLoaded bool
	planned     []PlannedTx
}

// NewDryRunSubmitter builds a simulating submitter for the given account
func NewDryRunSubmitter(backend CallBackend, from common.Address, log *slog.Logger) *DryRunSubmitter {
	return &DryRunSubmitter{
		backend: backend,
		from:    from,
		log:     log.With("component", "DryRunSubmitter"),
	}
}

func (s *DryRunSubmitter) Sender() common.Address { return s.from }

func (s *DryRunSubmitter) Deploy(ctx context.Context, code []byte) (*models.PendingTx, error) {
	return s.record(ctx, nil, code)
}

func (s *DryRunSubmitter) Transact(ctx context.Context, to common.Address, data []byte) (*models.PendingTx, error) {
	return s.record(ctx, &to, data)
}

func (s *DryRunSubmitter) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := s.backend.CallContract(ctx, ethereum.CallMsg{From: s.from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return emptyCallResult, nil
	}
	return out, nil
}

// StorageAt reads from the node; contracts that only exist in the simulation read as zero
func (s *DryRunSubmitter) StorageAt(ctx context.Context, account common.Address, slot common.Hash) (common.Hash, error) {
	value, err := s.backend.StorageAt(ctx, account, slot, nil)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(value), nil
}

// WaitConfirmed returns a successful receipt immediately
func (s *DryRunSubmitter) WaitConfirmed(_ context.Context, tx *models.PendingTx) (*types.Receipt, error) {
	return &types.Receipt{
		Status:          types.ReceiptStatusSuccessful,
		TxHash:          tx.Hash,
		ContractAddress: tx.ContractAddress,
	}, nil
}

// Planned returns the recorded transactions in submission order
func (s *DryRunSubmitter) Planned() []PlannedTx {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PlannedTx(nil), s.planned...)
}

func (s *DryRunSubmitter) record(ctx context.Context, to *common.Address, data []byte) (*models.PendingTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.nonceLoaded && s.backend != nil {
		nonce, err := s.backend.PendingNonceAt(ctx, s.from)
		if err != nil {
			return nil, err
		}
		s.nonce = nonce
	}
	s.nonceLoaded = true

	planned := PlannedTx{Nonce: s.nonce, To: to, Data: data}
	if to == nil {
		planned.Contract = crypto.CreateAddress(s.from, s.nonce)
	}
	s.planned = append(s.planned, planned)

	hash := crypto.Keccak256Hash(s.from.Bytes(), new(big.Int).SetUint64(s.nonce).Bytes(), data)
	s.nonce++

	s.log.Debug("simulated transaction", "nonce", planned.Nonce, "deploy", to == nil)
	return &models.PendingTx{
		Hash:            hash,
		From:            s.from,
		To:              to,
		Nonce:           planned.Nonce,
		ContractAddress: planned.Contract,
	}, nil
}

var _ usecase.TxSubmitter = (*DryRunSubmitter)(nil)
