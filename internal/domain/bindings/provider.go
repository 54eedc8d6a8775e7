package bindings

import "github.com/ethereum/go-ethereum/accounts/abi/bind/v2"

var AddressesProviderMetaData = bind.MetaData{
	ABI: `[
{"type":"function","name":"setPoolAdmin","stateMutability":"nonpayable","inputs":[{"name":"admin","type":"address"}],"outputs":[]},
{"type":"function","name":"setEmergencyAdmin","stateMutability":"nonpayable","inputs":[{"name":"admin","type":"address"}],"outputs":[]},
{"type":"function","name":"getPoolAdmin","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"getEmergencyAdmin","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"setLendingPoolImpl","stateMutability":"nonpayable","inputs":[{"name":"pool","type":"address"}],"outputs":[]},
{"type":"function","name":"setLendingPoolConfiguratorImpl","stateMutability":"nonpayable","inputs":[{"name":"configurator","type":"address"}],"outputs":[]},
{"type":"function","name":"getLendingPool","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"getLendingPoolConfigurator","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"setLendingPoolCollateralManager","stateMutability":"nonpayable","inputs":[{"name":"manager","type":"address"}],"outputs":[]},
{"type":"function","name":"getLendingPoolCollateralManager","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"setPriceOracle","stateMutability":"nonpayable","inputs":[{"name":"priceOracle","type":"address"}],"outputs":[]},
{"type":"function","name":"getPriceOracle","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"setLendingRateOracle","stateMutability":"nonpayable","inputs":[{"name":"lendingRateOracle","type":"address"}],"outputs":[]},
{"type":"function","name":"getLendingRateOracle","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`,
	ID: "LendingPoolAddressesProvider",
}

var AddressesProviderRegistryMetaData = bind.MetaData{
	ABI: `[
{"type":"function","name":"registerAddressesProvider","stateMutability":"nonpayable","inputs":[{"name":"provider","type":"address"},{"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","name":"getAddressesProviderIdByAddress","stateMutability":"view","inputs":[{"name":"addressesProvider","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`,
	ID: "LendingPoolAddressesProviderRegistry",
}

var ProxyMetaData = bind.MetaData{
	ABI: `[
{"type":"function","name":"initialize","stateMutability":"payable","inputs":[{"name":"logic","type":"address"},{"name":"admin","type":"address"},{"name":"data","type":"bytes"}],"outputs":[]},
{"type":"function","name":"implementation","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`,
	ID: "InitializableAdminUpgradeabilityProxy",
}

var LendingRateOracleMetaData = bind.MetaData{
	ABI: `[
{"type":"function","name":"setMarketBorrowRate","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"rate","type":"uint256"}],"outputs":[]},
{"type":"function","name":"getMarketBorrowRate","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`,
	ID: "LendingRateOracle",
}

var ERC20MetaData = bind.MetaData{
	ABI: `[
{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`,
	ID: "ERC20",
}

var RangeEligibilityMetaData = bind.MetaData{
	ABI: `[
{"type":"function","name":"__NFTXEligibility_init","stateMutability":"nonpayable","inputs":[{"name":"rangeStart","type":"uint256"},{"name":"rangeEnd","type":"uint256"}],"outputs":[]}
]`,
	ID: "NFTXRangeEligibility",
}
