package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

const (
	DefaultConfirmationTimeout = 5 * time.Minute
	DefaultPollInterval        = 2 * time.Second
)

// Backend is the part of ethclient.Client the submitter needs
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
}

// Submitter signs transactions with one key and sends them strictly in nonce order
type Submitter struct {
	backend Backend
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	signer  types.Signer
	timeout time.Duration
	poll    time.Duration
	log     *slog.Logger

	mu          sync.Mutex
	nonce       uint64
	nonceLoaded bool
}

// NewSubmitter checks the backend chain id against the network and builds a submitter
func NewSubmitter(ctx context.Context, backend Backend, key *ecdsa.PrivateKey, network *config.Network, log *slog.Logger) (*Submitter, error) {
	if key == nil {
		return nil, errors.New("no deployer key configured, set VINCI_PRIVATE_KEY")
	}
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if network.ChainID != 0 && chainID.Uint64() != network.ChainID {
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", network.ChainID, chainID.Uint64())
	}

	s := &Submitter{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		signer:  types.LatestSignerForChainID(chainID),
		timeout: network.ConfirmationsTimeout,
		poll:    network.PollInterval,
		log:     log.With("component", "Submitter", "network", network.Name),
	}
	if s.timeout <= 0 {
		s.timeout = DefaultConfirmationTimeout
	}
	if s.poll <= 0 {
		s.poll = DefaultPollInterval
	}
	return s, nil
}

// Sender returns the signing account
func (s *Submitter) Sender() common.Address { return s.from }

// Deploy sends a contract creation transaction
func (s *Submitter) Deploy(ctx context.Context, code []byte) (*models.PendingTx, error) {
	return s.send(ctx, nil, code)
}

// Transact sends a call transaction to a contract
func (s *Submitter) Transact(ctx context.Context, to common.Address, data []byte) (*models.PendingTx, error) {
	return s.send(ctx, &to, data)
}

// Call runs a read-only call against the latest block
func (s *Submitter) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return s.backend.CallContract(ctx, ethereum.CallMsg{From: s.from, To: &to, Data: data}, nil)
}

// StorageAt reads one storage slot at the latest block
func (s *Submitter) StorageAt(ctx context.Context, account common.Address, slot common.Hash) (common.Hash, error) {
	value, err := s.backend.StorageAt(ctx, account, slot, nil)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(value), nil
}

func (s *Submitter) send(ctx context.Context, to *common.Address, data []byte) (*models.PendingTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.nonceLoaded {
		nonce, err := s.backend.PendingNonceAt(ctx, s.from)
		if err != nil {
			return nil, fmt.Errorf("failed to get nonce: %w", err)
		}
		s.nonce, s.nonceLoaded = nonce, true
	}

	gas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{From: s.from, To: to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gas = gas * 12 / 10

	txData, err := s.txData(ctx, to, data, gas)
	if err != nil {
		return nil, err
	}
	tx, err := types.SignNewTx(s.key, s.signer, txData)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := s.backend.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	pending := &models.PendingTx{
		Hash:  tx.Hash(),
		From:  s.from,
		To:    to,
		Nonce: s.nonce,
	}
	if to == nil {
		pending.ContractAddress = crypto.CreateAddress(s.from, s.nonce)
	}
	s.nonce++
	s.log.Debug("transaction sent", "tx", pending.Hash.Hex(), "nonce", pending.Nonce, "gas", gas)
	return pending, nil
}

// txData builds a dynamic fee transaction, or a legacy one when the chain has no base fee
func (s *Submitter) txData(ctx context.Context, to *common.Address, data []byte, gas uint64) (types.TxData, error) {
	head, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}
	if head.BaseFee == nil {
		price, err := s.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
		return &types.LegacyTx{Nonce: s.nonce, GasPrice: price, Gas: gas, To: to, Data: data}, nil
	}
	tip, err := s.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip: %w", err)
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)
	return &types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     s.nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        to,
		Data:      data,
	}, nil
}

// WaitConfirmed polls for the receipt until it exists or the confirmation timeout passes
func (s *Submitter) WaitConfirmed(ctx context.Context, tx *models.PendingTx) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		receipt, err := s.backend.TransactionReceipt(ctx, tx.Hash)
		if err == nil {
			return receipt, nil
		}
		// a receipt call cut off by the deadline is a timeout, not an RPC failure
		if ctx.Err() != nil {
			return nil, s.waitErr(ctx, tx)
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt of %s: %w", tx.Hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, s.waitErr(ctx, tx)
		case <-ticker.C:
		}
	}
}

func (s *Submitter) waitErr(ctx context.Context, tx *models.PendingTx) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s not mined after %s", domain.ErrConfirmationTimeout, tx.Hash.Hex(), s.timeout)
	}
	return ctx.Err()
}

var _ usecase.TxSubmitter = (*Submitter)(nil)
