package render

import (
	"fmt"
	"io"

	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// Render prints the configured networks
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in vinci.toml [networks]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	for _, network := range result.Networks {
		if network.Error != nil {
			fmt.Fprintf(r.out, "  ❌ %s - Error: %v\n", network.Name, network.Error)
			continue
		}
		flags := ""
		if network.Local {
			flags += " (local)"
		}
		if network.Verify {
			flags += " (verify)"
		}
		fmt.Fprintf(r.out, "  ✅ %s - Chain ID: %d%s\n", network.Name, network.ChainID, faintStyle.Sprint(flags))
	}
	return nil
}

var _ Renderer[*usecase.ListNetworksResult] = (*NetworksRenderer)(nil)
