package models

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
)

// Scope separates network-global contracts from market-scoped ones
type Scope string

const (
	GlobalScope Scope = "global"
	MarketScope Scope = "market"
)

// RegistryKey identifies a contract role on a network, optionally inside a market
// and optionally for a single asset of that market.
type RegistryKey struct {
	LogicalID string
	Network   string
	MarketID  string
	Asset     string
}

// GlobalKey builds a key for a network-global contract
func GlobalKey(logicalID, network string) RegistryKey {
	return RegistryKey{LogicalID: logicalID, Network: network}
}

// MarketKey builds a key for a market-scoped contract
func MarketKey(logicalID, network, marketID string) RegistryKey {
	return RegistryKey{LogicalID: logicalID, Network: network, MarketID: marketID}
}

// AssetKey builds a key for a per-asset contract of a market
func AssetKey(logicalID, network, marketID, asset string) RegistryKey {
	return RegistryKey{LogicalID: logicalID, Network: network, MarketID: marketID, Asset: asset}
}

// Scope returns which registry namespace the key lives in
func (k RegistryKey) Scope() Scope {
	if k.MarketID == "" {
		return GlobalScope
	}
	return MarketScope
}

// String renders the persisted key: id.network[.market[.asset]]
func (k RegistryKey) String() string {
	parts := []string{k.LogicalID, k.Network}
	if k.MarketID != "" {
		parts = append(parts, k.MarketID)
		if k.Asset != "" {
			parts = append(parts, k.Asset)
		}
	}
	return strings.Join(parts, ".")
}

// Validate checks that every component is present and dot-free
func (k RegistryKey) Validate() error {
	if k.LogicalID == "" || k.Network == "" {
		return fmt.Errorf("%w: logical id and network are required", domain.ErrInvalidKey)
	}
	if k.Asset != "" && k.MarketID == "" {
		return fmt.Errorf("%w: asset %s requires a market", domain.ErrInvalidKey, k.Asset)
	}
	for _, part := range []string{k.LogicalID, k.Network, k.MarketID, k.Asset} {
		if strings.Contains(part, ".") {
			return fmt.Errorf("%w: %q contains a dot", domain.ErrInvalidKey, part)
		}
	}
	return nil
}

// ParseRegistryKey reverses String for the given namespace
func ParseRegistryKey(scope Scope, s string) (RegistryKey, error) {
	parts := strings.Split(s, ".")
	switch {
	case scope == GlobalScope && len(parts) == 2:
		return GlobalKey(parts[0], parts[1]), nil
	case scope == MarketScope && len(parts) == 3:
		return MarketKey(parts[0], parts[1], parts[2]), nil
	case scope == MarketScope && len(parts) == 4:
		return AssetKey(parts[0], parts[1], parts[2], parts[3]), nil
	}
	return RegistryKey{}, fmt.Errorf("%w: %q is not a %s key", domain.ErrInvalidKey, s, scope)
}

// DeploymentRecord is what the registry knows about one deployed contract
type DeploymentRecord struct {
	Key      RegistryKey
	Address  common.Address
	Deployer common.Address
	TxHash   common.Hash
}

// RecordFilter narrows registry listings; empty fields match everything
type RecordFilter struct {
	Network  string
	MarketID string
	Scope    Scope
}

// Matches reports whether a record passes the filter
func (f RecordFilter) Matches(r *DeploymentRecord) bool {
	if f.Network != "" && r.Key.Network != f.Network {
		return false
	}
	if f.MarketID != "" && r.Key.MarketID != f.MarketID {
		return false
	}
	if f.Scope != "" && r.Key.Scope() != f.Scope {
		return false
	}
	return true
}
