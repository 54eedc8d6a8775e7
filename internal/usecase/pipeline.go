package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/bindings"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// ProxyContract is the upgradeability proxy every proxied contract sits behind
const ProxyContract = "InitializableAdminUpgradeabilityProxy"

// DeployRequest describes one contract deployment
type DeployRequest struct {
	// LogicalID is the registry role; Contract defaults to it
	LogicalID string
	Contract  string
	Args      []any
	Libraries models.LibraryLinkMap
	Global    bool
	Asset     string
	Verify    bool
	// SkipExisting returns the registered record instead of redeploying
	SkipExisting bool
}

func (r DeployRequest) contract() string {
	if r.Contract == "" {
		return r.LogicalID
	}
	return r.Contract
}

func (r DeployRequest) key(dctx *DeploymentContext) models.RegistryKey {
	if r.Asset != "" {
		return dctx.AssetKey(r.LogicalID, r.Asset)
	}
	return dctx.Key(r.LogicalID, r.Global)
}

// ImplementationSlot is the EIP-1967 storage slot holding a proxy's implementation
var ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")

// ProxyRequest deploys an implementation behind an InitializableAdminUpgradeabilityProxy.
// The implementation is registered as {LogicalID}Impl and the proxy as {LogicalID}.
type ProxyRequest struct {
	DeployRequest
	InitMethod string
	InitArgs   []any
	// Admin defaults to the signer
	Admin common.Address
}

// DeploymentPipeline deploys contracts, waits for confirmation and registers them
type DeploymentPipeline struct {
	registry  *AddressRegistry
	artifacts ArtifactRepository
	verifier  ContractVerifier
	sink      ProgressSink
	log       *slog.Logger
}

// NewDeploymentPipeline creates a new DeploymentPipeline
func NewDeploymentPipeline(
	registry *AddressRegistry,
	artifacts ArtifactRepository,
	verifier ContractVerifier,
	sink ProgressSink,
	log *slog.Logger,
) *DeploymentPipeline {
	return &DeploymentPipeline{
		registry:  registry,
		artifacts: artifacts,
		verifier:  verifier,
		sink:      sink,
		log:       log.With("component", "DeploymentPipeline"),
	}
}

// Deploy links, deploys and registers one contract
func (p *DeploymentPipeline) Deploy(ctx context.Context, dctx *DeploymentContext, req DeployRequest) (*models.DeploymentRecord, error) {
	key := req.key(dctx)
	if err := key.Validate(); err != nil {
		return nil, err
	}

	if req.SkipExisting {
		existing, err := p.registry.Get(ctx, key)
		if err == nil {
			p.log.Info("reusing deployed contract", "key", key.String(), "address", existing.Address.Hex())
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	artifact, err := p.artifacts.GetArtifact(ctx, req.contract())
	if err != nil {
		return nil, err
	}
	code, err := creationCode(artifact, req.Libraries, req.Args)
	if err != nil {
		return nil, err
	}

	p.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "deploying",
		Message: fmt.Sprintf("Deploying %s", key),
		Spinner: true,
	})

	tx, err := dctx.Signer.Deploy(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to send deployment of %s: %w", key, err)
	}
	receipt, err := p.confirm(ctx, dctx, key.String(), tx)
	if err != nil {
		return nil, err
	}

	address := receipt.ContractAddress
	if address == (common.Address{}) {
		address = tx.ContractAddress
	}
	record := &models.DeploymentRecord{
		Key:      key,
		Address:  address,
		Deployer: tx.From,
		TxHash:   tx.Hash,
	}
	if err := p.registry.Put(ctx, record); err != nil {
		return nil, err
	}
	p.log.Info("deployed contract",
		"key", key.String(),
		"address", address.Hex(),
		"tx", tx.Hash.Hex(),
		"gas", receipt.GasUsed,
	)

	if req.Verify && p.verifier != nil {
		if err := p.verifier.Verify(ctx, dctx.Network, address, req.Args); err != nil {
			p.log.Warn("verification failed", "key", key.String(), "address", address.Hex(), "error", err)
		}
	}

	return record, nil
}

// DeployProxied deploys an implementation and its proxy, then initializes the proxy.
// A proxy that already reports an implementation is not initialized again.
func (p *DeploymentPipeline) DeployProxied(ctx context.Context, dctx *DeploymentContext, req ProxyRequest) (impl, proxy *models.DeploymentRecord, err error) {
	implReq := req.DeployRequest
	implReq.LogicalID = req.LogicalID + "Impl"
	if implReq.Contract == "" {
		implReq.Contract = req.LogicalID
	}
	impl, err = p.Deploy(ctx, dctx, implReq)
	if err != nil {
		return nil, nil, err
	}

	proxy, err = p.Deploy(ctx, dctx, DeployRequest{
		LogicalID:    req.LogicalID,
		Contract:     ProxyContract,
		Global:       req.Global,
		Asset:        req.Asset,
		Verify:       req.Verify,
		SkipExisting: req.SkipExisting,
	})
	if err != nil {
		return nil, nil, err
	}

	// implementation() is admin-only on the proxy, so the slot is read directly
	slot, err := dctx.Signer.StorageAt(ctx, proxy.Address, ImplementationSlot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read implementation of %s: %w", proxy.Key, err)
	}
	if current := common.BytesToAddress(slot.Bytes()); current != (common.Address{}) {
		p.log.Info("proxy already initialized", "key", proxy.Key.String(), "implementation", current.Hex())
		return impl, proxy, nil
	}

	var initData []byte
	if req.InitMethod != "" {
		artifact, err := p.artifacts.GetArtifact(ctx, implReq.contract())
		if err != nil {
			return nil, nil, err
		}
		parsed, err := artifact.ParseABI()
		if err != nil {
			return nil, nil, err
		}
		initData, err = parsed.Pack(req.InitMethod, req.InitArgs...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to pack %s.%s: %w", artifact.ContractName, req.InitMethod, err)
		}
	}

	admin := req.Admin
	if admin == (common.Address{}) {
		admin = dctx.Signer.Sender()
	}
	if _, err := p.Send(ctx, dctx, proxy.Key.String()+" initialize", bindings.Proxy, proxy.Address,
		"initialize", impl.Address, admin, initData); err != nil {
		return nil, nil, err
	}
	return impl, proxy, nil
}

// Send packs a call, submits it and waits for a successful receipt
func (p *DeploymentPipeline) Send(
	ctx context.Context,
	dctx *DeploymentContext,
	label string,
	contract *bindings.Contract,
	to common.Address,
	method string,
	args ...any,
) (*types.Receipt, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, dctx, label, to, data)
}

// Execute submits raw calldata and waits for a successful receipt
func (p *DeploymentPipeline) Execute(ctx context.Context, dctx *DeploymentContext, label string, to common.Address, data []byte) (*types.Receipt, error) {
	p.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "executing",
		Message: label,
		Spinner: true,
	})
	tx, err := dctx.Signer.Transact(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", label, err)
	}
	return p.confirm(ctx, dctx, label, tx)
}

// Call runs a read-only call and decodes the outputs
func (p *DeploymentPipeline) Call(
	ctx context.Context,
	dctx *DeploymentContext,
	contract *bindings.Contract,
	to common.Address,
	method string,
	args ...any,
) ([]any, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := dctx.Signer.Call(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("call %s.%s on %s: %w", contract.Name(), method, to.Hex(), err)
	}
	return contract.Unpack(method, out)
}

// CallInto runs a read-only call and decodes the outputs into v
func (p *DeploymentPipeline) CallInto(
	ctx context.Context,
	dctx *DeploymentContext,
	v any,
	contract *bindings.Contract,
	to common.Address,
	method string,
	args ...any,
) error {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return err
	}
	out, err := dctx.Signer.Call(ctx, to, data)
	if err != nil {
		return fmt.Errorf("call %s.%s on %s: %w", contract.Name(), method, to.Hex(), err)
	}
	return contract.UnpackInto(v, method, out)
}

// CallAddress runs a call with a single address output
func (p *DeploymentPipeline) CallAddress(
	ctx context.Context,
	dctx *DeploymentContext,
	contract *bindings.Contract,
	to common.Address,
	method string,
	args ...any,
) (common.Address, error) {
	out, err := p.Call(ctx, dctx, contract, to, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("%s.%s returned %d values", contract.Name(), method, len(out))
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s.%s did not return an address", contract.Name(), method)
	}
	return addr, nil
}

func (p *DeploymentPipeline) confirm(ctx context.Context, dctx *DeploymentContext, label string, tx *models.PendingTx) (*types.Receipt, error) {
	receipt, err := dctx.Signer.WaitConfirmed(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		p.log.Error("transaction reverted", "label", label, "tx", tx.Hash.Hex(), "network", dctx.Network, "market", dctx.MarketID)
		return nil, &domain.TxRevertedError{LogicalID: label, TxHash: tx.Hash}
	}
	return receipt, nil
}

// creationCode links the artifact and appends the packed constructor arguments
func creationCode(artifact *models.Artifact, libraries models.LibraryLinkMap, args []any) ([]byte, error) {
	linked, err := models.Link(artifact, libraries)
	if err != nil {
		return nil, err
	}
	if missing := models.Unresolved(artifact, libraries); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s needs %s", domain.ErrUnlinkedBytecode, artifact.ContractName, strings.Join(missing, ", "))
	}
	code, err := hexutil.Decode(linked)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode for %s: %w", artifact.ContractName, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%s has no creation bytecode", artifact.ContractName)
	}

	parsed, err := artifact.ParseABI()
	if err != nil {
		return nil, err
	}
	ctorArgs, err := parsed.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack constructor of %s: %w", artifact.ContractName, err)
	}
	return append(code, ctorArgs...), nil
}
