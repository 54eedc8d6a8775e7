package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vinci-protocol/vinci-deploy/internal/app"
	"github.com/vinci-protocol/vinci-deploy/internal/cli/render"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy markets, libraries and single contracts",
	}

	cmd.AddCommand(newDeployMarketCmd())
	cmd.AddCommand(newDeployLibrariesCmd())
	cmd.AddCommand(newDeployContractCmd())

	return cmd
}

// shouldVerify lets --verify override the network default
func shouldVerify(cmd *cobra.Command, a *app.App, flag bool) bool {
	if cmd.Flags().Changed("verify") {
		return flag
	}
	return a.Config.Network != nil && a.Config.Network.Verify
}

type deployMarketFlags struct {
	verify     bool
	from       string
	listStages bool
}

func newDeployMarketCmd() *cobra.Command {
	flags := &deployMarketFlags{}

	cmd := &cobra.Command{
		Use:   "market",
		Short: "Roll out a complete market",
		Long: `Roll out a complete lending market stage by stage, from the addresses
provider registry to the vault configuration. --list-stages prints the stages.

Contracts already in the registry are reused, so a failed rollout can simply be
run again. --from restores the earlier stages from the registry and starts at
the named stage.

Examples:
  vinci-deploy deploy market -n kovan -m Vinci
  vinci-deploy deploy market -n kovan -m VinciBAYC --from init-vaults
  vinci-deploy deploy market -n hardhat -m Vinci --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if flags.listStages {
				for i, stage := range a.DeployMarket.Stages() {
					fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, stage)
				}
				return nil
			}
			dctx, done, err := sendContext(cmd, a, true)
			if err != nil {
				return err
			}
			defer done()

			result, err := a.DeployMarket.Run(cmd.Context(), dctx, usecase.DeployMarketParams{
				Verify: shouldVerify(cmd, a, flags.verify),
				From:   flags.from,
			})
			if result != nil {
				if rerr := render.NewReportRenderer(cmd.OutOrStdout()).RenderRollout(result); rerr != nil && err == nil {
					err = rerr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&flags.verify, "verify", false, "Verify contracts on the block explorer")
	cmd.Flags().StringVar(&flags.from, "from", "", "Start the rollout at this stage")
	cmd.Flags().BoolVar(&flags.listStages, "list-stages", false, "Print the rollout stages and exit")

	return cmd
}

func newDeployLibrariesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "libraries",
		Short: "Deploy the shared logic libraries of the network",
		Long: `Deploy every library the pool links against, in dependency order.
Libraries are network-global: all markets on a network share them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			order, err := a.Libraries.Order(cmd.Context(), usecase.DefaultLibraries)
			if err != nil {
				return err
			}
			dctx, done, err := sendContext(cmd, a, false)
			if err != nil {
				return err
			}
			defer done()

			links, err := a.Libraries.ResolveLibraries(cmd.Context(), dctx, usecase.DefaultLibraries)
			if err != nil {
				return err
			}
			render.NewReportRenderer(cmd.OutOrStdout()).RenderLibraries(order, links)
			return nil
		},
	}
}

type deployContractFlags struct {
	contract   string
	args       []string
	global     bool
	asset      string
	proxy      bool
	initMethod string
	admin      string
	verify     bool
	redeploy   bool
}

func newDeployContractCmd() *cobra.Command {
	flags := &deployContractFlags{}

	cmd := &cobra.Command{
		Use:   "contract <logical-id>",
		Short: "Deploy one contract and record it in the registry",
		Long: `Deploy a single artifact under a logical id. Required libraries are
resolved from the registry or deployed first. With --proxy the contract is
deployed as implementation behind an InitializableAdminUpgradeabilityProxy
and --arg values go to --init-method instead of the constructor. --admin hands
the proxy to another account.

Examples:
  vinci-deploy deploy contract WETHGateway -n kovan -m Vinci --arg 0xd0A1...
  vinci-deploy deploy contract UiPoolDataProvider -n kovan --global
  vinci-deploy deploy contract Treasury -n kovan -m Vinci --contract VinciTreasury --proxy --init-method initialize`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if flags.asset != "" && flags.global {
				return fmt.Errorf("cannot use --asset and --global together")
			}
			if flags.initMethod != "" && !flags.proxy {
				return fmt.Errorf("--init-method requires --proxy")
			}
			if flags.admin != "" && !flags.proxy {
				return fmt.Errorf("--admin requires --proxy")
			}
			dctx, done, err := sendContext(cmd, a, !flags.global)
			if err != nil {
				return err
			}
			defer done()

			result, err := a.DeployContract.Run(cmd.Context(), dctx, usecase.DeployContractParams{
				LogicalID:  args[0],
				Contract:   flags.contract,
				Args:       flags.args,
				Global:     flags.global,
				Asset:      flags.asset,
				Proxy:      flags.proxy,
				InitMethod: flags.initMethod,
				Admin:      flags.admin,
				Verify:     shouldVerify(cmd, a, flags.verify),
				Redeploy:   flags.redeploy,
			})
			if err != nil {
				return err
			}
			render.NewReportRenderer(cmd.OutOrStdout()).RenderDeployment(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.contract, "contract", "", "Artifact name, defaults to the logical id")
	cmd.Flags().StringArrayVar(&flags.args, "arg", nil, "Constructor or initializer argument (repeatable)")
	cmd.Flags().BoolVar(&flags.global, "global", false, "Record the contract for the whole network")
	cmd.Flags().StringVar(&flags.asset, "asset", "", "Record the contract for one asset of the market")
	cmd.Flags().BoolVar(&flags.proxy, "proxy", false, "Deploy behind an upgradeability proxy")
	cmd.Flags().StringVar(&flags.initMethod, "init-method", "", "Method called on the proxy after deployment")
	cmd.Flags().StringVar(&flags.admin, "admin", "", "Proxy admin, defaults to the deployer")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "Verify the contract on the block explorer")
	cmd.Flags().BoolVar(&flags.redeploy, "redeploy", false, "Deploy even if the registry has a record")

	return cmd
}
