package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// AddressStore persists deployment records in the global and market namespaces
type AddressStore interface {
	Get(ctx context.Context, key models.RegistryKey) (*models.DeploymentRecord, error)
	Put(ctx context.Context, record *models.DeploymentRecord) error
	List(ctx context.Context, filter models.RecordFilter) ([]*models.DeploymentRecord, error)
}

// ArtifactRepository provides compiled hardhat artifacts by contract name
type ArtifactRepository interface {
	GetArtifact(ctx context.Context, name string) (*models.Artifact, error)
	ListArtifacts(ctx context.Context) []string
}

// TxSubmitter signs and sends transactions for one account
type TxSubmitter interface {
	Sender() common.Address
	Deploy(ctx context.Context, code []byte) (*models.PendingTx, error)
	Transact(ctx context.Context, to common.Address, data []byte) (*models.PendingTx, error)
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	StorageAt(ctx context.Context, account common.Address, slot common.Hash) (common.Hash, error)
	WaitConfirmed(ctx context.Context, tx *models.PendingTx) (*types.Receipt, error)
}

// ContractVerifier submits source verification for a deployed contract
type ContractVerifier interface {
	Verify(ctx context.Context, network string, address common.Address, args []any) error
}

// MarketRepository loads static market configuration
type MarketRepository interface {
	GetMarket(ctx context.Context, marketID string) (*models.MarketConfig, error)
	ListMarkets(ctx context.Context) []string
}

// NetworkResolver handles network configuration resolution
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error)
}

// Confirmer asks the operator before broadcasting
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Selector lets the operator pick one of several names
type Selector interface {
	Select(ctx context.Context, label string, options []string) (string, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// DeploymentContext carries the network, market and signer of one run
type DeploymentContext struct {
	Network  string
	MarketID string
	Signer   TxSubmitter
}

// GlobalKey builds a network-global registry key
func (d *DeploymentContext) GlobalKey(id string) models.RegistryKey {
	return models.GlobalKey(id, d.Network)
}

// MarketKey builds a market registry key
func (d *DeploymentContext) MarketKey(id string) models.RegistryKey {
	return models.MarketKey(id, d.Network, d.MarketID)
}

// AssetKey builds a per-asset registry key
func (d *DeploymentContext) AssetKey(id, asset string) models.RegistryKey {
	return models.AssetKey(id, d.Network, d.MarketID, asset)
}

// Key picks the global or market key
func (d *DeploymentContext) Key(id string, global bool) models.RegistryKey {
	if global {
		return d.GlobalKey(id)
	}
	return d.MarketKey(id)
}
