package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vinci-protocol/vinci-deploy/internal/adapters/blockchain"
	"github.com/vinci-protocol/vinci-deploy/internal/app"
	"github.com/vinci-protocol/vinci-deploy/internal/cli/render"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// resolveMarket returns --market, or lets the operator pick one
func resolveMarket(cmd *cobra.Command, a *app.App) (string, error) {
	if a.Config.MarketID != "" {
		return a.Config.MarketID, nil
	}
	markets := a.Markets.ListMarkets(cmd.Context())
	if len(markets) == 0 {
		return "", fmt.Errorf("no markets configured in %s", a.Config.MarketsDir)
	}
	market, err := a.Selector.Select(cmd.Context(), "Select market", markets)
	if err != nil {
		return "", fmt.Errorf("no market selected, pass --market: %w", err)
	}
	return market, nil
}

// readContext builds a deployment context without a signer
func readContext(cmd *cobra.Command, a *app.App, needMarket bool) (*usecase.DeploymentContext, error) {
	if a.Config.Network == nil {
		return nil, fmt.Errorf("no network selected, pass --network")
	}
	dctx := &usecase.DeploymentContext{Network: a.Config.Network.Name}
	if needMarket {
		market, err := resolveMarket(cmd, a)
		if err != nil {
			return nil, err
		}
		dctx.MarketID = market
	}
	return dctx, nil
}

// sendContext builds a deployment context with a signer. Live broadcasts to
// non-local networks are confirmed first. The returned func closes the connection
// and prints the planned transactions after a dry run.
func sendContext(cmd *cobra.Command, a *app.App, needMarket bool) (*usecase.DeploymentContext, func(), error) {
	dctx, err := readContext(cmd, a, needMarket)
	if err != nil {
		return nil, nil, err
	}

	network := a.Config.Network
	if !a.Config.DryRun && !network.IsLocal() {
		prompt := fmt.Sprintf("Broadcast to %s (chain %d)", network.Name, network.ChainID)
		if dctx.MarketID != "" {
			prompt += " for market " + dctx.MarketID
		}
		ok, err := a.Confirmer.Confirm(cmd.Context(), prompt)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, fmt.Errorf("aborted")
		}
	}

	signer, closeSigner, err := a.Signers.Open(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	dctx.Signer = signer

	done := func() {
		if dry, ok := signer.(*blockchain.DryRunSubmitter); ok {
			render.NewReportRenderer(cmd.OutOrStdout()).RenderPlanned(dry.Planned())
		}
		closeSigner()
	}
	return dctx, done, nil
}
