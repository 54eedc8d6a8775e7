package blockchain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

type fakeBackend struct {
	chainID  int64
	nonce    uint64
	baseFee  *big.Int
	gas      uint64
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	call     []byte
	storage  map[common.Hash][]byte
	nonceHit int
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) { return big.NewInt(f.chainID), nil }

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.nonceHit++
	return f.nonce, nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: f.baseFee}, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) { return big.NewInt(7), nil }

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) { return big.NewInt(2), nil }

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) { return f.gas, nil }

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	if r, ok := f.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (f *fakeBackend) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return f.call, nil
}

// stalledBackend never answers receipt queries before the caller gives up
type stalledBackend struct {
	*fakeBackend
}

func (b stalledBackend) TransactionReceipt(ctx context.Context, _ common.Hash) (*types.Receipt, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeBackend) StorageAt(_ context.Context, _ common.Address, key common.Hash, _ *big.Int) ([]byte, error) {
	if v, ok := f.storage[key]; ok {
		return v, nil
	}
	return make([]byte, 32), nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func kovan() *config.Network {
	return &config.Network{Name: "kovan", ChainID: 42, PollInterval: time.Millisecond, ConfirmationsTimeout: 50 * time.Millisecond}
}

func TestNewSubmitter(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	t.Run("chain id mismatch", func(t *testing.T) {
		_, err := NewSubmitter(context.Background(), &fakeBackend{chainID: 1}, key, kovan(), quietLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chain ID mismatch: expected 42, got 1")
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := NewSubmitter(context.Background(), &fakeBackend{chainID: 42}, nil, kovan(), quietLogger())
		assert.Error(t, err)
	})

	t.Run("sender derives from key", func(t *testing.T) {
		s, err := NewSubmitter(context.Background(), &fakeBackend{chainID: 42}, key, kovan(), quietLogger())
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Sender())
	})
}

func TestSubmitterSend(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	t.Run("dynamic fee with local nonces", func(t *testing.T) {
		backend := &fakeBackend{chainID: 42, nonce: 5, baseFee: big.NewInt(10), gas: 100000}
		s, err := NewSubmitter(ctx, backend, key, kovan(), quietLogger())
		require.NoError(t, err)

		deploy, err := s.Deploy(ctx, []byte{0x60, 0x80})
		require.NoError(t, err)
		to := common.HexToAddress("0x00000000000000000000000000000000000000c1")
		call, err := s.Transact(ctx, to, []byte{0x01})
		require.NoError(t, err)

		assert.Equal(t, 1, backend.nonceHit)
		require.Len(t, backend.sent, 2)
		assert.Equal(t, uint64(5), deploy.Nonce)
		assert.Equal(t, uint64(6), call.Nonce)
		assert.Equal(t, crypto.CreateAddress(from, 5), deploy.ContractAddress)
		assert.True(t, deploy.IsDeployment())
		assert.False(t, call.IsDeployment())

		tx := backend.sent[0]
		assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
		assert.Equal(t, uint64(120000), tx.Gas())
		assert.Equal(t, big.NewInt(22), tx.GasFeeCap())
		assert.Equal(t, big.NewInt(2), tx.GasTipCap())

		sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(42)), tx)
		require.NoError(t, err)
		assert.Equal(t, from, sender)
		assert.Equal(t, deploy.Hash, tx.Hash())
	})

	t.Run("legacy without base fee", func(t *testing.T) {
		backend := &fakeBackend{chainID: 42, gas: 50000}
		s, err := NewSubmitter(ctx, backend, key, kovan(), quietLogger())
		require.NoError(t, err)

		_, err = s.Deploy(ctx, []byte{0x60})
		require.NoError(t, err)
		require.Len(t, backend.sent, 1)
		assert.Equal(t, uint8(types.LegacyTxType), backend.sent[0].Type())
		assert.Equal(t, big.NewInt(7), backend.sent[0].GasPrice())
	})
}

func TestSubmitterWaitConfirmed(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	mined := common.HexToHash("0x01")
	backend := &fakeBackend{chainID: 42, receipts: map[common.Hash]*types.Receipt{
		mined: {Status: types.ReceiptStatusSuccessful, TxHash: mined},
	}}
	s, err := NewSubmitter(ctx, backend, key, kovan(), quietLogger())
	require.NoError(t, err)

	t.Run("mined", func(t *testing.T) {
		receipt, err := s.WaitConfirmed(ctx, &models.PendingTx{Hash: mined})
		require.NoError(t, err)
		assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	})

	t.Run("times out", func(t *testing.T) {
		_, err := s.WaitConfirmed(ctx, &models.PendingTx{Hash: common.HexToHash("0x02")})
		assert.True(t, errors.Is(err, domain.ErrConfirmationTimeout))
	})

	t.Run("stalled receipt call times out", func(t *testing.T) {
		stalled, err := NewSubmitter(ctx, stalledBackend{&fakeBackend{chainID: 42}}, key, kovan(), quietLogger())
		require.NoError(t, err)
		_, err = stalled.WaitConfirmed(ctx, &models.PendingTx{Hash: common.HexToHash("0x03")})
		assert.True(t, errors.Is(err, domain.ErrConfirmationTimeout), err)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.WaitConfirmed(cctx, &models.PendingTx{Hash: common.HexToHash("0x02")})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.Is(err, domain.ErrConfirmationTimeout))
	})
}

func TestDryRunSubmitter(t *testing.T) {
	ctx := context.Background()
	from := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	backend := &fakeBackend{nonce: 3}
	s := NewDryRunSubmitter(backend, from, quietLogger())

	deploy, err := s.Deploy(ctx, []byte{0x60})
	require.NoError(t, err)
	assert.Equal(t, crypto.CreateAddress(from, 3), deploy.ContractAddress)

	to := common.HexToAddress("0x00000000000000000000000000000000000000c1")
	_, err = s.Transact(ctx, to, []byte{0x01})
	require.NoError(t, err)

	receipt, err := s.WaitConfirmed(ctx, deploy)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, deploy.ContractAddress, receipt.ContractAddress)

	planned := s.Planned()
	require.Len(t, planned, 2)
	assert.Equal(t, uint64(4), planned[1].Nonce)
	assert.Equal(t, &to, planned[1].To)
	assert.Empty(t, backend.sent)

	out, err := s.Call(ctx, to, nil)
	require.NoError(t, err)
	assert.Len(t, out, 512)

	backend.call = []byte{0x01}
	out, err = s.Call(ctx, to, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, out)
}
