package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vinci-protocol/vinci-deploy/internal/app"
	"github.com/vinci-protocol/vinci-deploy/internal/cli/render"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// batchFunc is one of the market batch operations
type batchFunc func(ctx context.Context, dctx *usecase.DeploymentContext) (*models.Report, error)

// batchOp picks the batch operation from the app
type batchOp func(a *app.App) batchFunc

// runBatch sends one batch operation against the selected market and prints its report.
// A partial report is printed even when the batch fails.
func runBatch(cmd *cobra.Command, op batchOp) error {
	a, err := getApp(cmd)
	if err != nil {
		return err
	}
	dctx, done, err := sendContext(cmd, a, true)
	if err != nil {
		return err
	}
	defer done()

	report, err := op(a)(cmd.Context(), dctx)
	if report != nil {
		if rerr := render.NewReportRenderer(cmd.OutOrStdout()).Render(report); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

func batchCmd(use, short, long string, op batchOp) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, op)
		},
	}
}

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialise reserves and vaults on the configurator",
		Long: `Initialise the reserves or NFT vaults of a market in chunks. Items that are
already active on-chain are skipped. Without --chunk-size the market file decides.`,
	}

	reserves := batchCmd("reserves", "Initialise the fungible reserves of a market", "",
		func(a *app.App) batchFunc {
			return func(ctx context.Context, dctx *usecase.DeploymentContext) (*models.Report, error) {
				return a.MarketOps.InitReserves(ctx, dctx, chunkSize)
			}
		})
	vaults := batchCmd("vaults", "Initialise the NFT vaults of a market", "",
		func(a *app.App) batchFunc {
			return func(ctx context.Context, dctx *usecase.DeploymentContext) (*models.Report, error) {
				return a.MarketOps.InitVaults(ctx, dctx, chunkSize)
			}
		})

	cmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 0, "Items per initialisation transaction")
	cmd.AddCommand(reserves, vaults)

	return cmd
}

// NewConfigureCmd creates the configure command
func NewConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Apply risk parameters to reserves and vaults",
		Long: `Configure collateral parameters, borrowing and reserve factors through the
ATokensAndRatesHelper (reserves) or the configurator (vaults).`,
	}

	cmd.AddCommand(
		batchCmd("reserves", "Configure the fungible reserves of a market", "",
			func(a *app.App) batchFunc { return a.MarketOps.ConfigureReserves }),
		batchCmd("vaults", "Configure the NFT vaults of a market", "",
			func(a *app.App) batchFunc { return a.MarketOps.ConfigureVaults }),
	)

	return cmd
}

// NewUpdateCmd creates the update command
func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Upgrade token implementations of a live market",
	}

	cmd.AddCommand(batchCmd("ntokens", "Point every vault nToken proxy at the current implementation",
		`Resolve the nToken implementation selected by each vault's variant, deploying it
when the registry has none, and upgrade the vault's nToken proxy through the
configurator. Vaults without an asset address on the network are skipped.`,
		func(a *app.App) batchFunc { return a.MarketOps.UpdateNTokens }))

	return cmd
}
