package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/bindings"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// Logical ids of the contracts the market rollout creates
const (
	ProviderRegistryID  = "LendingPoolAddressesProviderRegistry"
	ProviderID          = "LendingPoolAddressesProvider"
	LendingPoolID       = "LendingPool"
	CollateralManagerID = "LendingPoolCollateralManager"
	WalletBalanceID     = "WalletBalanceProvider"
)

// DeployMarketParams contains parameters for a market rollout
type DeployMarketParams struct {
	Verify bool
	// From skips every stage before the named one
	From string
}

// StageResult records what one rollout stage did
type StageResult struct {
	Name    string
	Records []*models.DeploymentRecord
	Report  *models.Report
}

// DeployMarketResult contains the result of a market rollout
type DeployMarketResult struct {
	Network  string
	MarketID string
	Stages   []StageResult
}

// Reports returns the batch reports of the rollout in stage order
func (r *DeployMarketResult) Reports() []*models.Report {
	return lo.FilterMap(r.Stages, func(s StageResult, _ int) (*models.Report, bool) {
		return s.Report, s.Report != nil
	})
}

type rollout struct {
	dctx         *DeploymentContext
	market       *models.MarketConfig
	net          models.MarketNetwork
	verify       bool
	registry     common.Address
	provider     common.Address
	libraries    models.LibraryLinkMap
	configurator common.Address
	dataProvider common.Address
	current      *StageResult
}

func (r *rollout) keep(records ...*models.DeploymentRecord) {
	r.current.Records = append(r.current.Records, records...)
}

type marketStage struct {
	name string
	run  func(ctx context.Context, r *rollout) error
}

// DeployMarket rolls out a complete market. Every stage reuses what is
// already registered, so a failed run can simply be started again.
type DeployMarket struct {
	markets   MarketRepository
	registry  *AddressRegistry
	pipeline  *DeploymentPipeline
	libraries *LibraryResolver
	tokens    *TokenImplementations
	oracles   *OracleSetup
	ops       *MarketOperations
	sink      ProgressSink
	log       *slog.Logger
	stages    []marketStage
}

// NewDeployMarket creates a new DeployMarket use case
func NewDeployMarket(
	markets MarketRepository,
	registry *AddressRegistry,
	pipeline *DeploymentPipeline,
	libraries *LibraryResolver,
	tokens *TokenImplementations,
	oracles *OracleSetup,
	ops *MarketOperations,
	sink ProgressSink,
	log *slog.Logger,
) *DeployMarket {
	uc := &DeployMarket{
		markets:   markets,
		registry:  registry,
		pipeline:  pipeline,
		libraries: libraries,
		tokens:    tokens,
		oracles:   oracles,
		ops:       ops,
		sink:      sink,
		log:       log.With("component", "DeployMarket"),
	}
	uc.stages = []marketStage{
		{"addresses-provider-registry", uc.deployProviderRegistry},
		{"addresses-provider", uc.deployProvider},
		{"libraries", uc.deployLibraries},
		{"lending-pool", uc.deployLendingPool},
		{"configurator", uc.deployConfigurator},
		{"data-provider", uc.deployDataProvider},
		{"collateral-manager", uc.deployCollateralManager},
		{"treasury", uc.deployTreasury},
		{"oracles", uc.deployOracles},
		{"rate-strategies", uc.deployRateStrategies},
		{"token-implementations", uc.deployTokenImplementations},
		{"eligibilities", uc.deployEligibilities},
		{"wallet-balance-provider", uc.deployWalletBalanceProvider},
		{"init-reserves", uc.initReserves},
		{"init-vaults", uc.initVaults},
		{"configure-reserves", uc.configureReserves},
		{"configure-vaults", uc.configureVaults},
	}
	return uc
}

// Stages returns the stage names in execution order
func (uc *DeployMarket) Stages() []string {
	return lo.Map(uc.stages, func(s marketStage, _ int) string { return s.name })
}

// Run executes the rollout
func (uc *DeployMarket) Run(ctx context.Context, dctx *DeploymentContext, params DeployMarketParams) (*DeployMarketResult, error) {
	market, err := uc.markets.GetMarket(ctx, dctx.MarketID)
	if err != nil {
		return nil, err
	}

	start := 0
	if params.From != "" {
		start = lo.IndexOf(uc.Stages(), params.From)
		if start < 0 {
			return nil, fmt.Errorf("unknown stage %q, expected one of %v", params.From, uc.Stages())
		}
	}

	r := &rollout{
		dctx:   dctx,
		market: market,
		net:    market.Network(dctx.Network),
		verify: params.Verify,
	}
	result := &DeployMarketResult{Network: dctx.Network, MarketID: dctx.MarketID}

	// stages before From still resolve their addresses from the registry
	for i, stage := range uc.stages {
		if i < start {
			if err := uc.restore(ctx, r, stage.name); err != nil {
				return result, fmt.Errorf("stage %s: %w", stage.name, err)
			}
			continue
		}
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   stage.name,
			Current: i + 1,
			Total:   len(uc.stages),
			Message: fmt.Sprintf("Stage %s", stage.name),
		})
		uc.log.Info("running stage", "stage", stage.name, "network", dctx.Network, "market", dctx.MarketID)

		result.Stages = append(result.Stages, StageResult{Name: stage.name})
		r.current = &result.Stages[len(result.Stages)-1]
		if err := stage.run(ctx, r); err != nil {
			return result, fmt.Errorf("stage %s: %w", stage.name, err)
		}
	}
	return result, nil
}

// restore loads the addresses a skipped stage would have produced
func (uc *DeployMarket) restore(ctx context.Context, r *rollout, stage string) error {
	var err error
	switch stage {
	case "addresses-provider-registry":
		r.registry, err = uc.providerRegistryAddress(ctx, r)
	case "addresses-provider":
		r.provider, err = uc.registry.Address(ctx, r.dctx.MarketKey(ProviderID))
	case "libraries":
		r.libraries, err = uc.libraries.ResolveLibraries(ctx, r.dctx, DefaultLibraries)
	case "configurator":
		r.configurator, err = uc.registry.Address(ctx, r.dctx.MarketKey(ConfiguratorID))
	case "data-provider":
		r.dataProvider, err = uc.registry.Address(ctx, r.dctx.MarketKey(DataProviderID))
	}
	return err
}

func (uc *DeployMarket) providerRegistryAddress(ctx context.Context, r *rollout) (common.Address, error) {
	configured, err := models.ParseAddress(r.net.ProviderRegistry)
	if err != nil {
		return common.Address{}, err
	}
	return uc.registry.GetOrFallback(ctx, r.dctx.GlobalKey(ProviderRegistryID), &configured)
}

func (uc *DeployMarket) deployProviderRegistry(ctx context.Context, r *rollout) error {
	configured, err := models.ParseAddress(r.net.ProviderRegistry)
	if err != nil {
		return err
	}
	if configured != (common.Address{}) {
		uc.log.Info("using configured addresses provider registry", "address", configured.Hex())
		r.registry = configured
		return nil
	}
	record, err := uc.pipeline.Deploy(ctx, r.dctx, DeployRequest{
		LogicalID:    ProviderRegistryID,
		Global:       true,
		Verify:       r.verify,
		SkipExisting: true,
	})
	if err != nil {
		return err
	}
	r.keep(record)
	r.registry = record.Address
	return nil
}

func (uc *DeployMarket) deployProvider(ctx context.Context, r *rollout) error {
	record, err := uc.pipeline.Deploy(ctx, r.dctx, DeployRequest{
		LogicalID:    ProviderID,
		Args:         []any{r.market.MarketID},
		Verify:       r.verify,
		SkipExisting: true,
	})
	if err != nil {
		return err
	}
	r.keep(record)
	r.provider = record.Address

	sender := r.dctx.Signer.Sender()
	for _, admin := range []struct {
		configured, getter, setter string
	}{
		{r.net.PoolAdmin, "getPoolAdmin", "setPoolAdmin"},
		{r.net.EmergencyAdmin, "getEmergencyAdmin", "setEmergencyAdmin"},
	} {
		want, err := models.ParseAddress(admin.configured)
		if err != nil {
			return fmt.Errorf("%s: %w", admin.setter, err)
		}
		if want == (common.Address{}) {
			want = sender
		}
		if err := uc.ensureAddress(ctx, r, r.provider, admin.getter, admin.setter, want); err != nil {
			return err
		}
	}

	out, err := uc.pipeline.Call(ctx, r.dctx, bindings.AddressesProviderRegistry, r.registry, "getAddressesProviderIdByAddress", r.provider)
	if err != nil {
		return err
	}
	if id, ok := out[0].(*big.Int); ok && id.Sign() > 0 {
		uc.log.Debug("addresses provider already registered", "id", id.String())
		return nil
	}
	_, err = uc.pipeline.Send(ctx, r.dctx, "registerAddressesProvider", bindings.AddressesProviderRegistry, r.registry,
		"registerAddressesProvider", r.provider, new(big.Int).SetUint64(r.market.ProviderID))
	return err
}

// ensureAddress calls setter on the provider unless getter already returns want
func (uc *DeployMarket) ensureAddress(ctx context.Context, r *rollout, provider common.Address, getter, setter string, want common.Address) error {
	current, err := uc.pipeline.CallAddress(ctx, r.dctx, bindings.AddressesProvider, provider, getter)
	if err != nil {
		return err
	}
	if current == want {
		return nil
	}
	_, err = uc.pipeline.Send(ctx, r.dctx, setter, bindings.AddressesProvider, provider, setter, want)
	return err
}

func (uc *DeployMarket) deployLibraries(ctx context.Context, r *rollout) error {
	links, err := uc.libraries.ResolveLibraries(ctx, r.dctx, DefaultLibraries)
	if err != nil {
		return err
	}
	r.libraries = links
	return nil
}

// deployBehindProvider deploys an implementation and hands it to the provider, which creates the proxy
func (uc *DeployMarket) deployBehindProvider(ctx context.Context, r *rollout, id string, libraries models.LibraryLinkMap, getter, setter string) (common.Address, error) {
	impl, err := uc.pipeline.Deploy(ctx, r.dctx, DeployRequest{
		LogicalID:    id + "Impl",
		Contract:     id,
		Libraries:    libraries,
		Verify:       r.verify,
		SkipExisting: true,
	})
	if err != nil {
		return common.Address{}, err
	}
	r.keep(impl)

	proxy, err := uc.pipeline.CallAddress(ctx, r.dctx, bindings.AddressesProvider, r.provider, getter)
	if err != nil {
		return common.Address{}, err
	}
	txHash := common.Hash{}
	if proxy == (common.Address{}) {
		receipt, err := uc.pipeline.Send(ctx, r.dctx, setter, bindings.AddressesProvider, r.provider, setter, impl.Address)
		if err != nil {
			return common.Address{}, err
		}
		txHash = receipt.TxHash
		if proxy, err = uc.pipeline.CallAddress(ctx, r.dctx, bindings.AddressesProvider, r.provider, getter); err != nil {
			return common.Address{}, err
		}
	}

	key := r.dctx.MarketKey(id)
	if existing, err := uc.registry.Get(ctx, key); err == nil && existing.Address == proxy {
		r.keep(existing)
		return proxy, nil
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return common.Address{}, err
	}

	record := &models.DeploymentRecord{
		Key:      key,
		Address:  proxy,
		Deployer: r.dctx.Signer.Sender(),
		TxHash:   txHash,
	}
	if err := uc.registry.Put(ctx, record); err != nil {
		return common.Address{}, err
	}
	r.keep(record)
	return proxy, nil
}

func (uc *DeployMarket) deployLendingPool(ctx context.Context, r *rollout) error {
	_, err := uc.deployBehindProvider(ctx, r, LendingPoolID, r.libraries, "getLendingPool", "setLendingPoolImpl")
	return err
}

func (uc *DeployMarket) deployConfigurator(ctx context.Context, r *rollout) error {
	proxy, err := uc.deployBehindProvider(ctx, r, ConfiguratorID, nil, "getLendingPoolConfigurator", "setLendingPoolConfiguratorImpl")
	if err != nil {
		return err
	}
	r.configurator = proxy
	return nil
}

func (uc *DeployMarket) deployDataProvider(ctx context.Context, r *rollout) error {
	record, err := uc.pipeline.Deploy(ctx, r.dctx, DeployRequest{
		LogicalID:    DataProviderID,
		Args:         []any{r.provider},
		Verify:       r.verify,
		SkipExisting: true,
	})
	if err != nil {
		return err
	}
	r.keep(record)
	r.dataProvider = record.Address
	return nil
}

func (uc *DeployMarket) deployCollateralManager(ctx context.Context, r *rollout) error {
	record, err := uc.pipeline.Deploy(ctx, r.dctx, DeployRequest{
		LogicalID:    CollateralManagerID + "Impl",
		Contract:     CollateralManagerID,
		Verify:       r.verify,
		SkipExisting: true,
	})
	if err != nil {
		return err
	}
	r.keep(record)
	return uc.ensureAddress(ctx, r, r.provider, "getLendingPoolCollateralManager", "setLendingPoolCollateralManager", record.Address)
}

func (uc *DeployMarket) deployTreasury(ctx context.Context, r *rollout) error {
	if r.net.Treasury != "" {
		uc.log.Info("using configured treasury", "address", r.net.Treasury)
		return nil
	}
	impl, proxy, err := uc.pipeline.DeployProxied(ctx, r.dctx, ProxyRequest{
		DeployRequest: DeployRequest{
			LogicalID:    TreasuryID,
			Contract:     "AaveCollector",
			Verify:       r.verify,
			SkipExisting: true,
		},
		InitMethod: "initialize",
	})
	if err != nil {
		return err
	}
	r.keep(impl, proxy)
	return nil
}

func (uc *DeployMarket) deployOracles(ctx context.Context, r *rollout) error {
	result, err := uc.oracles.Deploy(ctx, r.dctx, r.market, r.provider, r.verify)
	if err != nil {
		return err
	}
	r.keep(result.PriceOracle, result.LendingRateOracle)
	return nil
}

func (uc *DeployMarket) deployRateStrategies(ctx context.Context, r *rollout) error {
	for _, strategy := range r.market.Strategies() {
		args := []any{r.provider}
		for _, raw := range []string{
			strategy.OptimalUtilizationRate,
			strategy.BaseVariableBorrowRate,
			strategy.VariableRateSlope1,
			strategy.VariableRateSlope2,
			strategy.StableRateSlope1,
			strategy.StableRateSlope2,
		} {
			v, err := models.ParseUint(raw)
			if err != nil {
				return fmt.Errorf("strategy %s: %w", strategy.Name, err)
			}
			args = append(args, v)
		}
		record, err := uc.pipeline.Deploy(ctx, r.dctx, DeployRequest{
			LogicalID:    strategy.Name,
			Contract:     "DefaultReserveInterestRateStrategy",
			Args:         args,
			Verify:       r.verify,
			SkipExisting: true,
		})
		if err != nil {
			return err
		}
		r.keep(record)
	}
	return nil
}

type tokenDeployment struct {
	variant models.TokenVariant
	asset   string
}

func (uc *DeployMarket) deployTokenImplementations(ctx context.Context, r *rollout) error {
	var wanted []tokenDeployment
	for _, reserve := range r.market.Reserves {
		if r.net.ReserveAssets[reserve.Symbol] == "" {
			continue
		}
		wanted = append(wanted,
			tokenDeployment{reserve.VTokenImpl.OrDefault(models.VTokenVariant), reserve.Symbol},
			tokenDeployment{models.VariableDebtTokenVariant, reserve.Symbol},
		)
	}
	for _, vault := range r.market.NFTVaults {
		if r.net.NFTVaultAssets[vault.Symbol] == "" {
			continue
		}
		wanted = append(wanted, tokenDeployment{vault.NTokenVariant(), vault.Symbol})
	}

	seen := make(map[string]bool)
	for _, w := range wanted {
		if _, ok := r.net.Contracts[string(w.variant)]; ok {
			continue
		}
		key, err := uc.tokens.Key(r.dctx, w.variant, w.asset)
		if err != nil {
			return err
		}
		if seen[key.String()] {
			continue
		}
		seen[key.String()] = true
		record, err := uc.tokens.Deploy(ctx, r.dctx, w.variant, w.asset, r.verify)
		if err != nil {
			return err
		}
		r.keep(record)
	}
	return nil
}

func (uc *DeployMarket) deployEligibilities(ctx context.Context, r *rollout) error {
	for _, vault := range r.market.NFTVaults {
		if r.net.NFTVaultAssets[vault.Symbol] == "" || vault.Eligibility.Kind() != models.EligibilityRange {
			continue
		}
		if len(vault.Eligibility.Args) != 2 {
			return fmt.Errorf("vault %s: RANGE eligibility needs start and end", vault.Symbol)
		}
		start, err := models.ParseUint(vault.Eligibility.Args[0])
		if err != nil {
			return err
		}
		end, err := models.ParseUint(vault.Eligibility.Args[1])
		if err != nil {
			return err
		}
		impl, proxy, err := uc.pipeline.DeployProxied(ctx, r.dctx, ProxyRequest{
			DeployRequest: DeployRequest{
				LogicalID:    EligibilityID(vault.Symbol),
				Contract:     "NFTXRangeEligibility",
				Verify:       r.verify,
				SkipExisting: true,
			},
			InitMethod: "__NFTXEligibility_init",
			InitArgs:   []any{start, end},
		})
		if err != nil {
			return err
		}
		r.keep(impl, proxy)
	}
	return nil
}

func (uc *DeployMarket) deployWalletBalanceProvider(ctx context.Context, r *rollout) error {
	record, err := uc.pipeline.Deploy(ctx, r.dctx, DeployRequest{
		LogicalID:    WalletBalanceID,
		Global:       true,
		Verify:       r.verify,
		SkipExisting: true,
	})
	if err != nil {
		return err
	}
	r.keep(record)
	return nil
}

func (uc *DeployMarket) target(r *rollout) BatchTarget {
	return BatchTarget{Configurator: r.configurator, DataProvider: r.dataProvider}
}

func (uc *DeployMarket) initReserves(ctx context.Context, r *rollout) error {
	report, err := uc.ops.initReserves(ctx, r.dctx, r.market, uc.target(r), 0)
	r.current.Report = report
	return err
}

func (uc *DeployMarket) initVaults(ctx context.Context, r *rollout) error {
	report, err := uc.ops.initVaults(ctx, r.dctx, r.market, uc.target(r), 0)
	r.current.Report = report
	return err
}

func (uc *DeployMarket) configureReserves(ctx context.Context, r *rollout) error {
	report, err := uc.ops.configureReserves(ctx, r.dctx, r.market, uc.target(r))
	r.current.Report = report
	return err
}

func (uc *DeployMarket) configureVaults(ctx context.Context, r *rollout) error {
	report, err := uc.ops.configureVaults(ctx, r.dctx, r.market, uc.target(r))
	r.current.Report = report
	return err
}
