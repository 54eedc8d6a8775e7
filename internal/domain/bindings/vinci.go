package bindings

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
)

// Contract wraps the parsed ABI of one protocol contract
type Contract struct {
	name string
	abi  abi.ABI
}

func mustParse(name string, md *bind.MetaData) *Contract {
	parsed, err := md.ParseABI()
	if err != nil {
		panic(errors.New("invalid ABI: " + err.Error()))
	}
	return &Contract{name: name, abi: *parsed}
}

// Name returns the contract name the ABI belongs to
func (c *Contract) Name() string { return c.name }

// ABI exposes the parsed ABI
func (c *Contract) ABI() abi.ABI { return c.abi }

// Pack encodes a call to method
func (c *Contract) Pack(method string, args ...any) ([]byte, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s.%s: %w", c.name, method, err)
	}
	return data, nil
}

// Unpack decodes the return values of method
func (c *Contract) Unpack(method string, data []byte) ([]any, error) {
	out, err := c.abi.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s.%s: %w", c.name, method, err)
	}
	return out, nil
}

// UnpackInto decodes the return values of method into a struct
func (c *Contract) UnpackInto(v any, method string, data []byte) error {
	if err := c.abi.UnpackIntoInterface(v, method, data); err != nil {
		return fmt.Errorf("failed to unpack %s.%s: %w", c.name, method, err)
	}
	return nil
}

var (
	Configurator              = mustParse("LendingPoolConfigurator", &ConfiguratorMetaData)
	DataProvider              = mustParse("AaveProtocolDataProvider", &DataProviderMetaData)
	AddressesProvider         = mustParse("LendingPoolAddressesProvider", &AddressesProviderMetaData)
	AddressesProviderRegistry = mustParse("LendingPoolAddressesProviderRegistry", &AddressesProviderRegistryMetaData)
	Proxy                     = mustParse("InitializableAdminUpgradeabilityProxy", &ProxyMetaData)
	LendingRateOracle         = mustParse("LendingRateOracle", &LendingRateOracleMetaData)
	ERC20                     = mustParse("ERC20", &ERC20MetaData)
	RangeEligibility          = mustParse("NFTXRangeEligibility", &RangeEligibilityMetaData)
)
