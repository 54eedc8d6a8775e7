package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
)

// ProjectFile is the project configuration file name
const ProjectFile = "vinci.toml"

// loadProjectConfig parses vinci.toml with ${VAR} references expanded.
// Returns an empty config and false when the file does not exist.
func loadProjectConfig(projectRoot string) (*config.ProjectConfig, bool, error) {
	path := filepath.Join(projectRoot, ProjectFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &config.ProjectConfig{}, false, nil
	}

	var cfg config.ProjectConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}

	for name, net := range cfg.Networks {
		net.RPCURL = os.ExpandEnv(net.RPCURL)
		net.ExplorerURL = os.ExpandEnv(net.ExplorerURL)
		net.ConfirmationsTimeout = os.ExpandEnv(net.ConfirmationsTimeout)
		net.PollInterval = os.ExpandEnv(net.PollInterval)
		cfg.Networks[name] = net
	}
	cfg.Registry.Backend = os.ExpandEnv(cfg.Registry.Backend)
	cfg.Registry.DataDir = os.ExpandEnv(cfg.Registry.DataDir)
	cfg.Artifacts.Dir = os.ExpandEnv(cfg.Artifacts.Dir)
	cfg.Markets.Dir = os.ExpandEnv(cfg.Markets.Dir)

	return &cfg, true, nil
}

// loadDotEnv reads .env from the project root without overriding the environment
func loadDotEnv(projectRoot string) error {
	path := filepath.Join(projectRoot, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// FindProjectRoot walks up from start looking for vinci.toml. When none is found
// start itself is the root and defaults apply.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, ProjectFile)); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir, nil
		}
		cur = parent
	}
}

func resolveDir(root, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
