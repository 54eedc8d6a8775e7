package render

import (
	"fmt"
	"io"

	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// OracleRenderer prints price pairs and oracle deployments
type OracleRenderer struct {
	out io.Writer
}

// NewOracleRenderer creates a new oracle renderer
func NewOracleRenderer(out io.Writer) *OracleRenderer {
	return &OracleRenderer{out: out}
}

// Render prints the asset/aggregator pairs of a market
func (r *OracleRenderer) Render(result *usecase.PricePairsResult) error {
	t := newTable(r.out, "Symbol", "Asset", "Aggregator")
	for _, s := range result.Sources {
		aggregator := errStyle.Sprint("missing")
		if s.Aggregator != nil {
			aggregator = s.Aggregator.Hex()
		}
		t.AppendRow([]any{s.Symbol, s.Asset.Hex(), aggregator})
	}
	t.Render()
	fmt.Fprintf(r.out, "%d priced asset(s)\n", len(result.Pairs.Assets))
	if result.Missing != nil {
		fmt.Fprintln(r.out, FormatWarning(result.Missing.Error()))
	}
	return nil
}

// RenderDeployment prints the deployed oracles
func (r *OracleRenderer) RenderDeployment(result *usecase.OracleResult) {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s at %s", result.PriceOracle.Key, result.PriceOracle.Address.Hex())))
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s at %s", result.LendingRateOracle.Key, result.LendingRateOracle.Address.Hex())))
	if len(result.RatesSet) > 0 {
		fmt.Fprintf(r.out, "  borrow rates set for %v\n", result.RatesSet)
	}
}

var _ Renderer[*usecase.PricePairsResult] = (*OracleRenderer)(nil)
