package bindings

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var uint256Pair = func() abi.Arguments {
	uint256, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: uint256}, {Type: uint256}}
}()

// RangeEligibilityParams encodes abi.encode(uint256 start, uint256 end)
func RangeEligibilityParams(start, end *big.Int) ([]byte, error) {
	if start.Cmp(end) > 0 {
		return nil, fmt.Errorf("eligibility range start %s is after end %s", start, end)
	}
	return uint256Pair.Pack(start, end)
}
