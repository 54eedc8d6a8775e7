package config

import (
	"crypto/ecdsa"
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	DataDir      string
	ArtifactsDir string
	MarketsDir   string

	// Context settings
	Network  *Network // nil if not specified
	MarketID string

	// Registry backend: json, leveldb or memory
	RegistryBackend string

	// Execution settings
	Debug          bool
	NonInteractive bool
	AssumeYes      bool
	DryRun         bool
	Timeout        time.Duration

	// Signer key, nil for read-only commands
	PrivateKey *ecdsa.PrivateKey

	// Config source tracking
	ConfigSource string // "vinci.toml" or "defaults"

	Project *ProjectConfig
}

// Network represents network configuration
type Network struct {
	Name                 string        `json:"name"`
	ChainID              uint64        `json:"chainId"`
	RPCURL               string        `json:"rpcUrl"`
	ExplorerURL          string        `json:"explorerUrl,omitempty"`
	ConfirmationsTimeout time.Duration `json:"confirmationsTimeout"`
	PollInterval         time.Duration `json:"pollInterval"`
	Verify               bool          `json:"verify"`
}

// IsLocal reports whether the network is a development chain
func (n *Network) IsLocal() bool {
	switch n.ChainID {
	case 31337, 1337:
		return true
	}
	return n.Name == "hardhat" || n.Name == "localhost"
}
