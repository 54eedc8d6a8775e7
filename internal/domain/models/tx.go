package models

import "github.com/ethereum/go-ethereum/common"

// PendingTx is a submitted transaction awaiting confirmation.
// ContractAddress is the CREATE address when To is nil.
type PendingTx struct {
	Hash            common.Hash
	From            common.Address
	To              *common.Address
	Nonce           uint64
	ContractAddress common.Address
}

// IsDeployment reports whether the transaction creates a contract
func (t *PendingTx) IsDeployment() bool { return t.To == nil }
