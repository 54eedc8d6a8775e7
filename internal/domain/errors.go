package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a registry key has no record
	ErrNotFound = errors.New("not found")

	// ErrMissingAddress is returned when neither an explicit address nor a registry record exists
	ErrMissingAddress = errors.New("missing contract address")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidKey is returned when a registry key cannot be built or parsed
	ErrInvalidKey = errors.New("invalid registry key")

	// ErrLibraryDeployFailed is returned when a library in the required set cannot be deployed
	ErrLibraryDeployFailed = errors.New("library deployment failed")

	// ErrLibraryCycle is returned when library link references form a cycle
	ErrLibraryCycle = errors.New("library dependency cycle")

	// ErrUnlinkedBytecode is returned when bytecode still carries library placeholders
	ErrUnlinkedBytecode = errors.New("bytecode has unresolved library placeholders")

	// ErrDeploymentReverted is returned when a deployment or configuration transaction reverts
	ErrDeploymentReverted = errors.New("transaction reverted")

	// ErrConfirmationTimeout is returned when a transaction is not confirmed in time
	ErrConfirmationTimeout = errors.New("confirmation timeout")

	// ErrReserveAlreadyInitialized marks a reserve or vault that is already active on-chain
	ErrReserveAlreadyInitialized = errors.New("reserve already initialized")

	// ErrUnsupportedVariant is returned for unknown token implementation variants
	ErrUnsupportedVariant = errors.New("unsupported variant")

	// ErrMissingAggregator is returned when a priced asset has no aggregator
	ErrMissingAggregator = errors.New("missing price aggregator")

	// ErrArtifactNotFound is returned when no compiled artifact matches a contract name
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrUnknownMarket is returned when a market configuration doesn't exist
	ErrUnknownMarket = errors.New("unknown market")

	// ErrUnknownNetwork is returned when a network isn't configured
	ErrUnknownNetwork = errors.New("unknown network")
)

// MissingAddressError names the registry key that could not be resolved
type MissingAddressError struct {
	Key string
}

func (e *MissingAddressError) Error() string {
	return fmt.Sprintf("missing contract address for %s: no explicit address and no registry record", e.Key)
}

func (e *MissingAddressError) Unwrap() error { return ErrMissingAddress }

// LibraryDeployFailedError wraps the failure of one library in a set
type LibraryDeployFailedError struct {
	Library string
	Err     error
}

func (e *LibraryDeployFailedError) Error() string {
	return fmt.Sprintf("library %s: %v", e.Library, e.Err)
}

func (e *LibraryDeployFailedError) Unwrap() []error { return []error{ErrLibraryDeployFailed, e.Err} }

// TxRevertedError carries the transaction that reverted
type TxRevertedError struct {
	LogicalID string
	TxHash    common.Hash
}

func (e *TxRevertedError) Error() string {
	return fmt.Sprintf("%s: transaction %s reverted", e.LogicalID, e.TxHash.Hex())
}

func (e *TxRevertedError) Unwrap() error { return ErrDeploymentReverted }

// UnsupportedVariantError names a variant tag that has no handler
type UnsupportedVariantError struct {
	Kind    string
	Variant string
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("unsupported %s variant %q", e.Kind, e.Variant)
}

func (e *UnsupportedVariantError) Unwrap() error { return ErrUnsupportedVariant }

// LookupError reports an unknown name together with close matches
type LookupError struct {
	Kind        error
	Name        string
	Suggestions []string
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *LookupError) Unwrap() error { return e.Kind }
