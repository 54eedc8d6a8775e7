package bindings

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatures(t *testing.T) {
	tests := []struct {
		contract *Contract
		method   string
		sig      string
	}{
		{Configurator, "batchInitReserve", "batchInitReserve((address,address,address,uint8,address,address,address,address,string,string,string,string,string,string,string,bytes)[])"},
		{Configurator, "batchInitNFTVault", "batchInitNFTVault((address,address,address,string,string,string,string,bytes,bytes)[])"},
		{Configurator, "updateNToken", "updateNToken((address,string,string,address,bytes,string))"},
		{Configurator, "configureNFTVaultAsCollateral", "configureNFTVaultAsCollateral(address,uint256,uint256,uint256)"},
		{Proxy, "initialize", "initialize(address,address,bytes)"},
		{AddressesProviderRegistry, "registerAddressesProvider", "registerAddressesProvider(address,uint256)"},
		{RangeEligibility, "__NFTXEligibility_init", "__NFTXEligibility_init(uint256,uint256)"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			method, ok := tt.contract.ABI().Methods[tt.method]
			require.True(t, ok)
			assert.Equal(t, tt.sig, method.Sig)
			assert.Equal(t, crypto.Keccak256([]byte(tt.sig))[:4], method.ID)
		})
	}
}

func TestConfigurator_PackBatchInitReserve(t *testing.T) {
	input := []InitReserveInput{{
		VTokenImpl:              common.HexToAddress("0x01"),
		VariableDebtTokenImpl:   common.HexToAddress("0x02"),
		UnderlyingAssetDecimals: 18,
		UnderlyingAsset:         common.HexToAddress("0xd0a1e359811322d97991e03f863a0c30c2cf029c"),
		UnderlyingAssetName:     "WETH",
		VTokenName:              "Vinci interest bearing WETH",
		VTokenSymbol:            "vWETH",
		Params:                  []byte{0x10},
	}}

	data, err := Configurator.Pack("batchInitReserve", input)
	require.NoError(t, err)
	assert.Equal(t, Configurator.ABI().Methods["batchInitReserve"].ID, data[:4])

	args, err := Configurator.ABI().Methods["batchInitReserve"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Len(t, args, 1)
}

func TestConfigurator_PackRejectsBadArgs(t *testing.T) {
	_, err := Configurator.Pack("setReserveFactor", common.Address{})
	assert.Error(t, err)

	_, err = Configurator.Pack("noSuchMethod")
	assert.Error(t, err)
}

func TestDataProvider_UnpackReserveConfiguration(t *testing.T) {
	outputs := DataProvider.ABI().Methods["getReserveConfigurationData"].Outputs
	data, err := outputs.Pack(
		big.NewInt(18), big.NewInt(8000), big.NewInt(8250), big.NewInt(10500), big.NewInt(1000),
		true, true, false, true, false,
	)
	require.NoError(t, err)

	var cfg ReserveConfigurationData
	require.NoError(t, DataProvider.UnpackInto(&cfg, "getReserveConfigurationData", data))
	assert.Equal(t, int64(1000), cfg.ReserveFactor.Int64())
	assert.True(t, cfg.BorrowingEnabled)
	assert.False(t, cfg.StableBorrowRateEnabled)
	assert.True(t, cfg.IsActive)
}

func TestRangeEligibilityParams(t *testing.T) {
	data, err := RangeEligibilityParams(big.NewInt(0), big.NewInt(9999))
	require.NoError(t, err)
	require.Len(t, data, 64)
	assert.Equal(t, int64(0), new(big.Int).SetBytes(data[:32]).Int64())
	assert.Equal(t, int64(9999), new(big.Int).SetBytes(data[32:]).Int64())

	_, err = RangeEligibilityParams(big.NewInt(10), big.NewInt(1))
	assert.Error(t, err)
}
