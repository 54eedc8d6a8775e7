package blockchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// Factory opens a submitter for the configured network and key
type Factory struct {
	cfg *config.RuntimeConfig
	log *slog.Logger
}

// NewFactory creates a submitter factory
func NewFactory(cfg *config.RuntimeConfig, log *slog.Logger) *Factory {
	return &Factory{cfg: cfg, log: log}
}

// Open dials the network. A dry run gets a DryRunSubmitter, which also works without a key.
func (f *Factory) Open(ctx context.Context) (usecase.TxSubmitter, func(), error) {
	network := f.cfg.Network
	if network == nil {
		return nil, nil, fmt.Errorf("no network selected, pass --network")
	}

	client, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	if f.cfg.DryRun {
		var from common.Address
		if f.cfg.PrivateKey != nil {
			from = crypto.PubkeyToAddress(f.cfg.PrivateKey.PublicKey)
		}
		return NewDryRunSubmitter(client, from, f.log), client.Close, nil
	}

	s, err := NewSubmitter(ctx, client, f.cfg.PrivateKey, network, f.log)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return s, client.Close, nil
}
