package bindings

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
)

// ReserveConfigurationData is the getReserveConfigurationData result
type ReserveConfigurationData struct {
	Decimals                 *big.Int
	Ltv                      *big.Int
	LiquidationThreshold     *big.Int
	LiquidationBonus         *big.Int
	ReserveFactor            *big.Int
	UsageAsCollateralEnabled bool
	BorrowingEnabled         bool
	StableBorrowRateEnabled  bool
	IsActive                 bool
	IsFrozen                 bool
}

// NFTVaultConfigurationData is the getNFTVaultConfigurationData result
type NFTVaultConfigurationData struct {
	Ltv                  *big.Int
	LiquidationThreshold *big.Int
	LiquidationBonus     *big.Int
	LockdropExpiration   *big.Int
	IsActive             bool
	IsFrozen             bool
}

var DataProviderMetaData = bind.MetaData{
	ABI: `[
{"type":"function","name":"getReserveConfigurationData","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[
	{"name":"decimals","type":"uint256"},
	{"name":"ltv","type":"uint256"},
	{"name":"liquidationThreshold","type":"uint256"},
	{"name":"liquidationBonus","type":"uint256"},
	{"name":"reserveFactor","type":"uint256"},
	{"name":"usageAsCollateralEnabled","type":"bool"},
	{"name":"borrowingEnabled","type":"bool"},
	{"name":"stableBorrowRateEnabled","type":"bool"},
	{"name":"isActive","type":"bool"},
	{"name":"isFrozen","type":"bool"}]},
{"type":"function","name":"getNFTVaultConfigurationData","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[
	{"name":"ltv","type":"uint256"},
	{"name":"liquidationThreshold","type":"uint256"},
	{"name":"liquidationBonus","type":"uint256"},
	{"name":"lockdropExpiration","type":"uint256"},
	{"name":"isActive","type":"bool"},
	{"name":"isFrozen","type":"bool"}]}
]`,
	ID: "AaveProtocolDataProvider",
}
