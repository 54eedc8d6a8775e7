package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Outcome is what happened to one reserve or vault during a batch operation
type Outcome string

const (
	OutcomeInitialized              Outcome = "initialized"
	OutcomeConfigured               Outcome = "configured"
	OutcomeUpdated                  Outcome = "updated"
	OutcomeSkippedMissingAsset      Outcome = "skipped-missing-asset"
	OutcomeSkippedAlreadyConfigured Outcome = "skipped-already-configured"
	OutcomeSkippedNotCollateral     Outcome = "skipped-not-collateral"
	OutcomeSkippedNotInitialized    Outcome = "skipped-not-initialized"
)

// Skipped reports whether no transaction was sent for the item
func (o Outcome) Skipped() bool {
	switch o {
	case OutcomeSkippedMissingAsset, OutcomeSkippedAlreadyConfigured, OutcomeSkippedNotCollateral, OutcomeSkippedNotInitialized:
		return true
	}
	return false
}

// ItemResult records the outcome for a single symbol.
// Chunk is the 1-based chunk index for batch init and 0 otherwise.
type ItemResult struct {
	Symbol  string
	Asset   common.Address
	Outcome Outcome
	TxHash  common.Hash
	Chunk   int
	Reason  string
}

// Report summarises one batch operation
type Report struct {
	Operation    string
	Network      string
	MarketID     string
	Items        []ItemResult
	Transactions []common.Hash
	GasUsed      *big.Int
}

// NewReport starts an empty report
func NewReport(operation, network, marketID string) *Report {
	return &Report{Operation: operation, Network: network, MarketID: marketID, GasUsed: new(big.Int)}
}

// Add appends an item result
func (r *Report) Add(item ItemResult) {
	r.Items = append(r.Items, item)
}

// Record notes a confirmed transaction
func (r *Report) Record(hash common.Hash, gasUsed uint64) {
	r.Transactions = append(r.Transactions, hash)
	r.GasUsed.Add(r.GasUsed, new(big.Int).SetUint64(gasUsed))
}

// Count returns how many items ended with the outcome
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == o {
			n++
		}
	}
	return n
}
