package cli

import (
	"github.com/spf13/cobra"
	"github.com/vinci-protocol/vinci-deploy/internal/cli/render"
)

// NewOracleCmd creates the oracle command
func NewOracleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Inspect and deploy market price oracles",
	}

	cmd.AddCommand(newOraclePairsCmd())
	cmd.AddCommand(newOracleDeployCmd())

	return cmd
}

func newOraclePairsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "Show the asset and aggregator pairs of a market",
		Long: `Show which Chainlink aggregator prices each reserve and vault asset of the
market on the selected network. Nothing is sent to the chain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			dctx, err := readContext(cmd, a, true)
			if err != nil {
				return err
			}
			result, err := a.Oracles.PricePairs(cmd.Context(), dctx)
			if err != nil {
				return err
			}
			return render.NewOracleRenderer(cmd.OutOrStdout()).Render(result)
		},
	}
}

func newOracleDeployCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the price and lending rate oracles of a market",
		Long: `Deploy the AaveOracle and LendingRateOracle for a market whose addresses provider
is already in the registry, register both on the provider and set the market
borrow rates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			dctx, done, err := sendContext(cmd, a, true)
			if err != nil {
				return err
			}
			defer done()

			result, err := a.Oracles.Deploy(cmd.Context(), dctx, shouldVerify(cmd, a, verify))
			if err != nil {
				return err
			}
			render.NewOracleRenderer(cmd.OutOrStdout()).RenderDeployment(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the oracles on the block explorer")

	return cmd
}
