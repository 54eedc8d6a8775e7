package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// MarketsRenderer lists market files
type MarketsRenderer struct {
	out io.Writer
}

// NewMarketsRenderer creates a new markets renderer
func NewMarketsRenderer(out io.Writer) *MarketsRenderer {
	return &MarketsRenderer{out: out}
}

func (r *MarketsRenderer) Render(markets []usecase.MarketSummary) error {
	if len(markets) == 0 {
		fmt.Fprintln(r.out, "No markets configured")
		return nil
	}
	t := newTable(r.out, "Market", "Pool", "Reserves", "NFT vaults", "Networks")
	for _, m := range markets {
		if m.Error != nil {
			t.AppendRow([]any{m.MarketID, errStyle.Sprint(m.Error.Error()), "", "", ""})
			continue
		}
		t.AppendRow([]any{
			headerStyle.Sprint(m.MarketID),
			m.PoolName,
			strings.Join(m.Reserves, ", "),
			strings.Join(m.NFTVaults, ", "),
			strings.Join(m.Networks, ", "),
		})
	}
	t.Render()
	return nil
}

var _ Renderer[[]usecase.MarketSummary] = (*MarketsRenderer)(nil)
