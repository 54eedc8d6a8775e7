package models

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// NotCollateral marks a reserve or vault that must not be configured as collateral
const NotCollateral = "-1"

// MarketConfig is the static description of one market
type MarketConfig struct {
	MarketID                    string                   `yaml:"marketId" toml:"market_id"`
	ProviderID                  uint64                   `yaml:"providerId" toml:"provider_id"`
	PoolName                    string                   `yaml:"poolName" toml:"pool_name"`
	BaseURI                     string                   `yaml:"baseURI" toml:"base_uri"`
	VTokenNamePrefix            string                   `yaml:"vTokenNamePrefix" toml:"vtoken_name_prefix"`
	VariableDebtTokenNamePrefix string                   `yaml:"variableDebtTokenNamePrefix" toml:"variable_debt_token_name_prefix"`
	NTokenNamePrefix            string                   `yaml:"nTokenNamePrefix" toml:"ntoken_name_prefix"`
	OracleQuoteCurrency         string                   `yaml:"oracleQuoteCurrency" toml:"oracle_quote_currency"`
	OracleQuoteUnit             string                   `yaml:"oracleQuoteUnit" toml:"oracle_quote_unit"`
	ReserveChunkSize            int                      `yaml:"reserveChunkSize" toml:"reserve_chunk_size"`
	VaultChunkSize              int                      `yaml:"vaultChunkSize" toml:"vault_chunk_size"`
	LendingRates                map[string]string        `yaml:"lendingRates" toml:"lending_rates"`
	Reserves                    []ReserveParams          `yaml:"reserves" toml:"reserves"`
	NFTVaults                   []NFTVaultParams         `yaml:"nftVaults" toml:"nft_vaults"`
	Networks                    map[string]MarketNetwork `yaml:"networks" toml:"networks"`
}

// MarketNetwork holds the per-network addresses of a market
type MarketNetwork struct {
	PoolAdmin            string            `yaml:"poolAdmin" toml:"pool_admin"`
	EmergencyAdmin       string            `yaml:"emergencyAdmin" toml:"emergency_admin"`
	Treasury             string            `yaml:"treasury" toml:"treasury"`
	IncentivesController string            `yaml:"incentivesController" toml:"incentives_controller"`
	ProviderRegistry     string            `yaml:"providerRegistry" toml:"provider_registry"`
	FallbackOracle       string            `yaml:"fallbackOracle" toml:"fallback_oracle"`
	ReserveAssets        map[string]string `yaml:"reserveAssets" toml:"reserve_assets"`
	NFTVaultAssets       map[string]string `yaml:"nftVaultAssets" toml:"nft_vault_assets"`
	Aggregators          map[string]string `yaml:"chainlinkAggregators" toml:"chainlink_aggregators"`
	Contracts            map[string]string `yaml:"contracts" toml:"contracts"`
}

// RateStrategy parameterises a DefaultReserveInterestRateStrategy deployment
type RateStrategy struct {
	Name                   string `yaml:"name" toml:"name"`
	OptimalUtilizationRate string `yaml:"optimalUtilizationRate" toml:"optimal_utilization_rate"`
	BaseVariableBorrowRate string `yaml:"baseVariableBorrowRate" toml:"base_variable_borrow_rate"`
	VariableRateSlope1     string `yaml:"variableRateSlope1" toml:"variable_rate_slope1"`
	VariableRateSlope2     string `yaml:"variableRateSlope2" toml:"variable_rate_slope2"`
	StableRateSlope1       string `yaml:"stableRateSlope1" toml:"stable_rate_slope1"`
	StableRateSlope2       string `yaml:"stableRateSlope2" toml:"stable_rate_slope2"`
}

// ReserveParams configures one fungible reserve
type ReserveParams struct {
	Symbol                  string       `yaml:"symbol" toml:"symbol"`
	Name                    string       `yaml:"name" toml:"name"`
	Strategy                RateStrategy `yaml:"strategy" toml:"strategy"`
	BaseLTVAsCollateral     string       `yaml:"baseLTVAsCollateral" toml:"base_ltv_as_collateral"`
	LiquidationThreshold    string       `yaml:"liquidationThreshold" toml:"liquidation_threshold"`
	LiquidationBonus        string       `yaml:"liquidationBonus" toml:"liquidation_bonus"`
	BorrowingEnabled        bool         `yaml:"borrowingEnabled" toml:"borrowing_enabled"`
	StableBorrowRateEnabled bool         `yaml:"stableBorrowRateEnabled" toml:"stable_borrow_rate_enabled"`
	ReserveDecimals         uint8        `yaml:"reserveDecimals" toml:"reserve_decimals"`
	ReserveFactor           string       `yaml:"reserveFactor" toml:"reserve_factor"`
	VTokenImpl              TokenVariant `yaml:"vTokenImpl" toml:"vtoken_impl"`
}

// Eligibility selects which NFTs of a collection a vault accepts
type Eligibility struct {
	Name string   `yaml:"name" toml:"name"`
	Args []string `yaml:"args" toml:"args"`
}

// Eligibility kinds understood by the vault initializer
const (
	EligibilityAllowAll = "ALLOWALL"
	EligibilityRange    = "RANGE"
)

// Kind returns the upper-cased eligibility name, defaulting to ALLOWALL
func (e Eligibility) Kind() string {
	if e.Name == "" {
		return EligibilityAllowAll
	}
	return strings.ToUpper(e.Name)
}

// NFTVaultParams configures one NFT collateral vault
type NFTVaultParams struct {
	Symbol               string       `yaml:"symbol" toml:"symbol"`
	Name                 string       `yaml:"name" toml:"name"`
	BaseLTVAsCollateral  string       `yaml:"baseLTVAsCollateral" toml:"base_ltv_as_collateral"`
	LiquidationThreshold string       `yaml:"liquidationThreshold" toml:"liquidation_threshold"`
	LiquidationBonus     string       `yaml:"liquidationBonus" toml:"liquidation_bonus"`
	NTokenImpl           TokenVariant `yaml:"nTokenImpl" toml:"ntoken_impl"`
	LockdropExpiration   string       `yaml:"lockdropExpiration" toml:"lockdrop_expiration"`
	Eligibility          Eligibility  `yaml:"eligibility" toml:"eligibility"`
}

// NTokenVariant applies the lockdrop rule: a non-zero expiration needs the time-locked token
func (p NFTVaultParams) NTokenVariant() TokenVariant {
	if exp, ok := new(big.Int).SetString(p.LockdropExpiration, 10); ok && exp.Sign() > 0 {
		return TimeLockableNTokenVariant
	}
	if p.NTokenImpl == "" {
		return NTokenVariant
	}
	return p.NTokenImpl
}

// Prefixes derives the token symbol and name prefixes from the pool name.
// "VinciBAYC" yields "BAYC" and "BAYC-"; "Vinci" yields empty prefixes.
func (m *MarketConfig) Prefixes() (symbolPrefix, namePrefix string) {
	if len(m.PoolName) > 5 {
		symbolPrefix = m.PoolName[5:]
		namePrefix = symbolPrefix + "-"
	}
	return symbolPrefix, namePrefix
}

// Network returns the per-network section, empty if absent
func (m *MarketConfig) Network(name string) MarketNetwork {
	return m.Networks[name]
}

// Strategies returns the distinct rate strategies in reserve order
func (m *MarketConfig) Strategies() []RateStrategy {
	return lo.UniqBy(lo.Map(m.Reserves, func(r ReserveParams, _ int) RateStrategy {
		return r.Strategy
	}), func(s RateStrategy) string {
		return s.Name
	})
}

// Validate checks the structural invariants of a market file
func (m *MarketConfig) Validate() error {
	if m.MarketID == "" {
		return fmt.Errorf("marketId is required")
	}
	if dup := lo.FindDuplicates(lo.Map(m.Reserves, func(r ReserveParams, _ int) string { return r.Symbol })); len(dup) > 0 {
		return fmt.Errorf("market %s: duplicate reserves %v", m.MarketID, dup)
	}
	if dup := lo.FindDuplicates(lo.Map(m.NFTVaults, func(v NFTVaultParams, _ int) string { return v.Symbol })); len(dup) > 0 {
		return fmt.Errorf("market %s: duplicate nft vaults %v", m.MarketID, dup)
	}
	for _, r := range m.Reserves {
		if r.Symbol == "" {
			return fmt.Errorf("market %s: reserve without symbol", m.MarketID)
		}
		if r.Strategy.Name == "" {
			return fmt.Errorf("market %s: reserve %s has no rate strategy name", m.MarketID, r.Symbol)
		}
	}
	for _, v := range m.NFTVaults {
		if v.Symbol == "" {
			return fmt.Errorf("market %s: nft vault without symbol", m.MarketID)
		}
		if kind := v.Eligibility.Kind(); kind == EligibilityRange && len(v.Eligibility.Args) != 2 {
			return fmt.Errorf("market %s: vault %s RANGE eligibility needs two args", m.MarketID, v.Symbol)
		}
	}
	for name, net := range m.Networks {
		for _, addrs := range []map[string]string{net.ReserveAssets, net.NFTVaultAssets, net.Aggregators, net.Contracts} {
			for symbol, addr := range addrs {
				if addr != "" && !common.IsHexAddress(addr) {
					return fmt.Errorf("market %s: network %s: %s has invalid address %q", m.MarketID, name, symbol, addr)
				}
			}
		}
	}
	return nil
}

// ParseAddress turns an optional config string into an address; empty means zero
func ParseAddress(s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseUint parses a decimal config number; empty means zero
func ParseUint(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid unsigned number %q", s)
	}
	return v, nil
}
