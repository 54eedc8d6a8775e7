package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// RegistryRenderer prints registry records as a table
type RegistryRenderer struct {
	out io.Writer
}

// NewRegistryRenderer creates a new registry renderer
func NewRegistryRenderer(out io.Writer) *RegistryRenderer {
	return &RegistryRenderer{out: out}
}

// Render prints one row per record
func (r *RegistryRenderer) Render(records []*models.DeploymentRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(r.out, "No contracts registered")
		return nil
	}

	t := newTable(r.out, "Scope", "Contract", "Network", "Market", "Asset", "Address", "Deployer")
	for _, rec := range records {
		scope := globalStyle.Sprint(rec.Key.Scope())
		if rec.Key.Scope() == models.MarketScope {
			scope = marketStyle.Sprint(rec.Key.Scope())
		}
		t.AppendRow([]any{
			scope,
			rec.Key.LogicalID,
			rec.Key.Network,
			rec.Key.MarketID,
			rec.Key.Asset,
			addressStyle.Sprint(rec.Address.Hex()),
			faintStyle.Sprint(shortAddress(rec.Deployer)),
		})
	}
	t.Render()
	return nil
}

// RenderRecord prints a single record with its key
func (r *RegistryRenderer) RenderRecord(rec *models.DeploymentRecord) {
	fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint(rec.Key.String()), addressStyle.Sprint(rec.Address.Hex()))
	if rec.Deployer != (common.Address{}) {
		fmt.Fprintf(r.out, "  deployer %s\n", rec.Deployer.Hex())
	}
	if rec.TxHash != (common.Hash{}) {
		fmt.Fprintf(r.out, "  tx       %s\n", rec.TxHash.Hex())
	}
}

func shortAddress(a common.Address) string {
	if a == (common.Address{}) {
		return "-"
	}
	hex := a.Hex()
	return hex[:6] + "…" + hex[len(hex)-4:]
}

var _ Renderer[[]*models.DeploymentRecord] = (*RegistryRenderer)(nil)
