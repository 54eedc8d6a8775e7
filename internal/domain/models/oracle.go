package models

import "github.com/ethereum/go-ethereum/common"

// PriceSource is one priced asset and its aggregator, nil when unknown
type PriceSource struct {
	Symbol     string
	Asset      common.Address
	Aggregator *common.Address
}

// PricePairs are the parallel arrays the oracle constructor takes
type PricePairs struct {
	Symbols []string
	Assets  []common.Address
	Sources []common.Address
}

// Len returns the number of pairs
func (p PricePairs) Len() int { return len(p.Assets) }
