package config

// ProjectConfig mirrors vinci.toml
type ProjectConfig struct {
	Networks  map[string]NetworkEntry `toml:"networks"`
	Registry  RegistryEntry           `toml:"registry"`
	Artifacts ArtifactsEntry          `toml:"artifacts"`
	Markets   MarketsEntry            `toml:"markets"`
}

// NetworkEntry is one [networks.<name>] table
type NetworkEntry struct {
	RPCURL               string `toml:"rpc_url"`
	ChainID              uint64 `toml:"chain_id"`
	ExplorerURL          string `toml:"explorer_url"`
	ConfirmationsTimeout string `toml:"confirmations_timeout"`
	PollInterval         string `toml:"poll_interval"`
	Verify               bool   `toml:"verify"`
}

type RegistryEntry struct {
	Backend string `toml:"backend"`
	DataDir string `toml:"data_dir"`
}

type ArtifactsEntry struct {
	Dir string `toml:"dir"`
}

type MarketsEntry struct {
	Dir string `toml:"dir"`
}
