package bindings

import (
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
)

// InitReserveInput is the batchInitReserve tuple
type InitReserveInput struct {
	VTokenImpl                  common.Address
	StableDebtTokenImpl         common.Address
	VariableDebtTokenImpl       common.Address
	UnderlyingAssetDecimals     uint8
	InterestRateStrategyAddress common.Address
	UnderlyingAsset             common.Address
	Treasury                    common.Address
	IncentivesController        common.Address
	UnderlyingAssetName         string
	VTokenName                  string
	VTokenSymbol                string
	VariableDebtTokenName       string
	VariableDebtTokenSymbol     string
	StableDebtTokenName         string
	StableDebtTokenSymbol       string
	Params                      []byte
}

// InitNFTVaultInput is the batchInitNFTVault tuple
type InitNFTVaultInput struct {
	NTokenImpl          common.Address
	UnderlyingAsset     common.Address
	NftEligibility      common.Address
	UnderlyingAssetName string
	NTokenName          string
	NTokenSymbol        string
	BaseURI             string
	Params              []byte
	EligibilityParams   []byte
}

// UpdateNTokenInput is the updateNToken tuple
type UpdateNTokenInput struct {
	Asset          common.Address
	Name           string
	Symbol         string
	Implementation common.Address
	Params         []byte
	BaseURI        string
}

// ConfiguratorMetaData contains the LendingPoolConfigurator methods used by the deployer.
var ConfiguratorMetaData = bind.MetaData{
	ABI: `[
{"type":"function","name":"batchInitReserve","stateMutability":"nonpayable","inputs":[{"name":"input","type":"tuple[]","components":[
	{"name":"vTokenImpl","type":"address"},
	{"name":"stableDebtTokenImpl","type":"address"},
	{"name":"variableDebtTokenImpl","type":"address"},
	{"name":"underlyingAssetDecimals","type":"uint8"},
	{"name":"interestRateStrategyAddress","type":"address"},
	{"name":"underlyingAsset","type":"address"},
	{"name":"treasury","type":"address"},
	{"name":"incentivesController","type":"address"},
	{"name":"underlyingAssetName","type":"string"},
	{"name":"vTokenName","type":"string"},
	{"name":"vTokenSymbol","type":"string"},
	{"name":"variableDebtTokenName","type":"string"},
	{"name":"variableDebtTokenSymbol","type":"string"},
	{"name":"stableDebtTokenName","type":"string"},
	{"name":"stableDebtTokenSymbol","type":"string"},
	{"name":"params","type":"bytes"}]}],"outputs":[]},
{"type":"function","name":"batchInitNFTVault","stateMutability":"nonpayable","inputs":[{"name":"input","type":"tuple[]","components":[
	{"name":"nTokenImpl","type":"address"},
	{"name":"underlyingAsset","type":"address"},
	{"name":"nftEligibility","type":"address"},
	{"name":"underlyingAssetName","type":"string"},
	{"name":"nTokenName","type":"string"},
	{"name":"nTokenSymbol","type":"string"},
	{"name":"baseURI","type":"string"},
	{"name":"params","type":"bytes"},
	{"name":"eligibilityParams","type":"bytes"}]}],"outputs":[]},
{"type":"function","name":"enableBorrowingOnReserve","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"stableBorrowRateEnabled","type":"bool"}],"outputs":[]},
{"type":"function","name":"setReserveFactor","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"reserveFactor","type":"uint256"}],"outputs":[]},
{"type":"function","name":"configureNFTVaultAsCollateral","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"ltv","type":"uint256"},{"name":"liquidationThreshold","type":"uint256"},{"name":"liquidationBonus","type":"uint256"}],"outputs":[]},
{"type":"function","name":"updateNFTVaultActionExpiration","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"expiration","type":"uint256"}],"outputs":[]},
{"type":"function","name":"updateNToken","stateMutability":"nonpayable","inputs":[{"name":"input","type":"tuple","components":[
	{"name":"asset","type":"address"},
	{"name":"name","type":"string"},
	{"name":"symbol","type":"string"},
	{"name":"implementation","type":"address"},
	{"name":"params","type":"bytes"},
	{"name":"baseURI","type":"string"}]}],"outputs":[]}
]`,
	ID: "LendingPoolConfigurator",
}
