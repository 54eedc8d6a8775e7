package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ReserveInitSpec is everything batchInitReserve needs for one asset.
// A zero UnderlyingAsset means the asset isn't known on the network.
type ReserveInitSpec struct {
	Symbol                  string
	UnderlyingAsset         common.Address
	VTokenImpl              common.Address
	StableDebtTokenImpl     common.Address
	VariableDebtTokenImpl   common.Address
	InterestRateStrategy    common.Address
	Decimals                uint8
	Treasury                common.Address
	IncentivesController    common.Address
	UnderlyingAssetName     string
	VTokenName              string
	VTokenSymbol            string
	VariableDebtTokenName   string
	VariableDebtTokenSymbol string
	StableDebtTokenName     string
	StableDebtTokenSymbol   string
	Params                  []byte
}

// Eligible reports whether the spec can be submitted
func (s ReserveInitSpec) Eligible() bool {
	return s.UnderlyingAsset != (common.Address{})
}

// NFTVaultInitSpec is everything batchInitNFTVault needs for one collection
type NFTVaultInitSpec struct {
	Symbol              string
	UnderlyingAsset     common.Address
	NTokenImpl          common.Address
	Eligibility         common.Address
	EligibilityParams   []byte
	UnderlyingAssetName string
	NTokenName          string
	NTokenSymbol        string
	BaseURI             string
	Params              []byte
}

// Eligible reports whether the spec can be submitted
func (s NFTVaultInitSpec) Eligible() bool {
	return s.UnderlyingAsset != (common.Address{})
}

// ReserveRiskSpec carries the per-reserve parameters applied after init
type ReserveRiskSpec struct {
	Symbol                  string
	Asset                   common.Address
	BaseLTV                 string
	ReserveFactor           *big.Int
	BorrowingEnabled        bool
	StableBorrowRateEnabled bool
}

// VaultRiskSpec carries the per-vault collateral parameters applied after init
type VaultRiskSpec struct {
	Symbol               string
	Asset                common.Address
	BaseLTV              string
	LiquidationThreshold *big.Int
	LiquidationBonus     *big.Int
	LockdropExpiration   *big.Int
}

// NTokenUpdateSpec is the updateNToken input for one vault
type NTokenUpdateSpec struct {
	Symbol         string
	Asset          common.Address
	Name           string
	TokenSymbol    string
	Implementation common.Address
	Params         []byte
	BaseURI        string
}
