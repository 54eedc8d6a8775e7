package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/adapters/blockchain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// ReportRenderer prints batch reports and rollout summaries
type ReportRenderer struct {
	out io.Writer
}

// NewReportRenderer creates a new report renderer
func NewReportRenderer(out io.Writer) *ReportRenderer {
	return &ReportRenderer{out: out}
}

// Render prints one batch report
func (r *ReportRenderer) Render(report *models.Report) error {
	fmt.Fprintf(r.out, "%s %s\n", sectionHeaderStyle.Sprint(StageTitle(report.Operation)),
		faintStyle.Sprintf("(%s/%s)", report.Network, report.MarketID))

	if len(report.Items) == 0 {
		fmt.Fprintln(r.out, "  nothing to do")
		return nil
	}

	t := newTable(r.out, "Symbol", "Asset", "Outcome", "Chunk", "Tx")
	for _, item := range report.Items {
		chunk := ""
		if item.Chunk > 0 {
			chunk = fmt.Sprint(item.Chunk)
		}
		tx := ""
		if item.TxHash != (common.Hash{}) {
			tx = faintStyle.Sprint(item.TxHash.Hex())
		}
		outcome := okStyle.Sprint(item.Outcome)
		if item.Outcome.Skipped() {
			outcome = skipStyle.Sprint(item.Outcome)
			if item.Reason != "" {
				outcome += faintStyle.Sprintf(" %s", item.Reason)
			}
		}
		asset := "-"
		if item.Asset != (common.Address{}) {
			asset = item.Asset.Hex()
		}
		t.AppendRow([]any{item.Symbol, asset, outcome, chunk, tx})
	}
	t.Render()

	fmt.Fprintf(r.out, "  %d transaction(s), %s gas\n", len(report.Transactions), report.GasUsed.String())
	return nil
}

// RenderRollout prints the records and reports of a market rollout stage by stage
func (r *ReportRenderer) RenderRollout(result *usecase.DeployMarketResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Market %s on %s", result.MarketID, result.Network)))
	for _, stage := range result.Stages {
		if stage.Report != nil {
			if err := r.Render(stage.Report); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprint(StageTitle(stage.Name)))
		if len(stage.Records) == 0 {
			fmt.Fprintln(r.out, faintStyle.Sprint("  already deployed"))
			continue
		}
		for _, rec := range stage.Records {
			fmt.Fprintf(r.out, "  %-40s %s\n", rec.Key.String(), addressStyle.Sprint(rec.Address.Hex()))
		}
	}
	return nil
}

// RenderDeployment prints the records of a single contract deployment
func (r *ReportRenderer) RenderDeployment(result *usecase.DeployContractResult) {
	if result.Proxy != nil {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s deployed at %s", result.Proxy.Key, result.Proxy.Address.Hex())))
		fmt.Fprintf(r.out, "  implementation %s %s\n", result.Implementation.Key, result.Implementation.Address.Hex())
		return
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s deployed at %s", result.Implementation.Key, result.Implementation.Address.Hex())))
}

// RenderLibraries prints the resolved library addresses
func (r *ReportRenderer) RenderLibraries(order []string, links models.LibraryLinkMap) {
	t := newTable(r.out, "Library", "Address")
	for _, name := range order {
		t.AppendRow([]any{name, addressStyle.Sprint(links[name].Hex())})
	}
	t.Render()
}

// RenderPlanned prints the transactions a dry run would have sent
func (r *ReportRenderer) RenderPlanned(planned []blockchain.PlannedTx) {
	fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Dry run: %d transaction(s) not broadcast", len(planned))))
	if len(planned) == 0 {
		return
	}
	t := newTable(r.out, "Nonce", "Kind", "Target", "Calldata")
	for _, tx := range planned {
		kind, target := "call", ""
		if tx.To == nil {
			kind, target = "create", tx.Contract.Hex()
		} else {
			target = tx.To.Hex()
		}
		selector := fmt.Sprintf("%d bytes", len(tx.Data))
		if tx.To != nil && len(tx.Data) >= 4 {
			selector = fmt.Sprintf("0x%x… %d bytes", tx.Data[:4], len(tx.Data))
		}
		t.AppendRow([]any{tx.Nonce, kind, target, faintStyle.Sprint(selector)})
	}
	t.Render()
}

var _ Renderer[*models.Report] = (*ReportRenderer)(nil)
