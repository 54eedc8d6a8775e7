package config

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

const (
	defaultConfirmationsTimeout = 10 * time.Minute
	defaultPollInterval         = 2 * time.Second
)

// NetworkResolver resolves [networks.<name>] tables of vinci.toml
type NetworkResolver struct {
	networks map[string]config.NetworkEntry
}

// NewNetworkResolver creates a resolver over the project networks
func NewNetworkResolver(project *config.ProjectConfig) *NetworkResolver {
	networks := map[string]config.NetworkEntry{}
	if project != nil && project.Networks != nil {
		networks = project.Networks
	}
	return &NetworkResolver{networks: networks}
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) *NetworkResolver {
	return NewNetworkResolver(cfg.Project)
}

// GetNetworks returns the configured network names, sorted
func (r *NetworkResolver) GetNetworks(ctx context.Context) []string {
	names := lo.Keys(r.networks)
	sort.Strings(names)
	return names
}

// ResolveNetwork turns a network table into a Network with defaults applied
func (r *NetworkResolver) ResolveNetwork(ctx context.Context, name string) (*config.Network, error) {
	entry, ok := r.networks[name]
	if !ok {
		return nil, &domain.LookupError{
			Kind:        domain.ErrUnknownNetwork,
			Name:        name,
			Suggestions: suggest(name, r.GetNetworks(ctx)),
		}
	}
	if entry.RPCURL == "" {
		return nil, fmt.Errorf("network %s: rpc_url is empty", name)
	}

	timeout, err := parseDuration(entry.ConfirmationsTimeout, defaultConfirmationsTimeout)
	if err != nil {
		return nil, fmt.Errorf("network %s: confirmations_timeout: %w", name, err)
	}
	poll, err := parseDuration(entry.PollInterval, defaultPollInterval)
	if err != nil {
		return nil, fmt.Errorf("network %s: poll_interval: %w", name, err)
	}

	explorer := entry.ExplorerURL
	if explorer == "" {
		explorer = explorerURL(entry.ChainID)
	}

	return &config.Network{
		Name:                 name,
		ChainID:              entry.ChainID,
		RPCURL:               entry.RPCURL,
		ExplorerURL:          explorer,
		ConfirmationsTimeout: timeout,
		PollInterval:         poll,
		Verify:               entry.Verify,
	}, nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

// explorerURL returns the default block explorer of well known chains
func explorerURL(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 42:
		return "https://kovan.etherscan.io"
	case 4:
		return "https://rinkeby.etherscan.io"
	case 5:
		return "https://goerli.etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 137:
		return "https://polygonscan.com"
	case 42161:
		return "https://arbiscan.io"
	default:
		return ""
	}
}

// suggest returns up to three fuzzy matches of name
func suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)
	out := make([]string, 0, 3)
	for i := 0; i < len(matches) && i < 3; i++ {
		out = append(out, matches[i].Str)
	}
	return out
}

var _ usecase.NetworkResolver = (*NetworkResolver)(nil)
