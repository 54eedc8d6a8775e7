package config

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
)

// Registry backends
const (
	BackendJSON    = "json"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if projectRoot, err = FindProjectRoot(wd); err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	if err := loadDotEnv(projectRoot); err != nil {
		return nil, err
	}

	project, found, err := loadProjectConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:     projectRoot,
		DataDir:         resolveDir(projectRoot, project.Registry.DataDir, "."),
		ArtifactsDir:    resolveDir(projectRoot, project.Artifacts.Dir, "artifacts"),
		MarketsDir:      resolveDir(projectRoot, project.Markets.Dir, "markets"),
		MarketID:        v.GetString("market"),
		RegistryBackend: project.Registry.Backend,
		Debug:           v.GetBool("debug"),
		NonInteractive:  v.GetBool("non_interactive"),
		AssumeYes:       v.GetBool("yes"),
		DryRun:          v.GetBool("dry_run"),
		Timeout:         v.GetDuration("timeout"),
		ConfigSource:    "defaults",
		Project:         project,
	}
	if found {
		cfg.ConfigSource = ProjectFile
	}
	if backend := v.GetString("registry_backend"); backend != "" {
		cfg.RegistryBackend = backend
	}
	switch cfg.RegistryBackend {
	case "":
		cfg.RegistryBackend = BackendJSON
	case BackendJSON, BackendLevelDB, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown registry backend %q (want json, leveldb or memory)", cfg.RegistryBackend)
	}

	if name := v.GetString("network"); name != "" {
		network, err := NewNetworkResolver(project).ResolveNetwork(context.Background(), name)
		if err != nil {
			return nil, err
		}
		cfg.Network = network
	}

	if cfg.PrivateKey, err = parsePrivateKey(v.GetString("private_key")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parsePrivateKey decodes a hex key, with or without 0x; empty means no signer
func parsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if raw == "" {
		return nil, nil
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid VINCI_PRIVATE_KEY: %w", err)
	}
	return key, nil
}

// SetupViper creates a viper instance reading VINCI_* variables and the command flags
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("VINCI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// no overall deadline: each transaction is bounded by its network's confirmations_timeout
	v.SetDefault("timeout", "0")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)
	_ = v.BindEnv("private_key")
	_ = v.BindEnv("registry_backend")

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			panic(err)
		}
	})

	return v
}
