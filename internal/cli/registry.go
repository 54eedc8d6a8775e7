package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vinci-protocol/vinci-deploy/internal/cli/render"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// NewRegistryCmd creates the registry command
func NewRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and edit the address registry",
		Long: `The registry maps logical contract ids to deployed addresses, per network
and optionally per market and asset. Keys have the form id.network[.market[.asset]].`,
	}

	cmd.AddCommand(newRegistryListCmd())
	cmd.AddCommand(newRegistryGetCmd())
	cmd.AddCommand(newRegistryPutCmd())

	return cmd
}

func newRegistryListCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded contracts",
		Long: `List recorded contracts. --network and --market narrow the listing; without
them every record is shown. --scope selects global or market records only.`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			filter := models.RecordFilter{MarketID: a.Config.MarketID}
			if a.Config.Network != nil {
				filter.Network = a.Config.Network.Name
			}
			switch models.Scope(scope) {
			case "", models.GlobalScope, models.MarketScope:
				filter.Scope = models.Scope(scope)
			default:
				return fmt.Errorf("unknown scope %q (want global or market)", scope)
			}

			records, err := a.Registry.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return render.NewRegistryRenderer(cmd.OutOrStdout()).Render(records)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Only global or market records")

	return cmd
}

type lookupFlags struct {
	global bool
	asset  string
}

func (f *lookupFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.global, "global", false, "Look up a network-global contract")
	cmd.Flags().StringVar(&f.asset, "asset", "", "Look up the contract of one market asset")
}

func (f *lookupFlags) lookup(id string) (usecase.RegistryLookup, error) {
	if f.global && f.asset != "" {
		return usecase.RegistryLookup{}, fmt.Errorf("cannot use --asset and --global together")
	}
	return usecase.RegistryLookup{LogicalID: id, Global: f.global, Asset: f.asset}, nil
}

func newRegistryGetCmd() *cobra.Command {
	flags := &lookupFlags{}

	cmd := &cobra.Command{
		Use:   "get <logical-id>",
		Short: "Show the recorded address of a contract",
		Example: `  vinci-deploy registry get LendingPool -n kovan -m Vinci
  vinci-deploy registry get ReserveLogic -n kovan --global
  vinci-deploy registry get NToken -n kovan -m VinciBAYC --asset BAYC`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			lookup, err := flags.lookup(args[0])
			if err != nil {
				return err
			}
			dctx, err := readContext(cmd, a, !flags.global)
			if err != nil {
				return err
			}
			record, err := a.Registry.Get(cmd.Context(), dctx, lookup)
			if err != nil {
				return err
			}
			render.NewRegistryRenderer(cmd.OutOrStdout()).RenderRecord(record)
			return nil
		},
	}
	flags.bind(cmd)

	return cmd
}

func newRegistryPutCmd() *cobra.Command {
	flags := &lookupFlags{}

	cmd := &cobra.Command{
		Use:   "put <logical-id> <address>",
		Short: "Record a contract deployed outside vinci-deploy",
		Long: `Record an existing address under a logical id, for example a reserve asset
or a token implementation deployed by hand. Later rollouts reuse it instead of
deploying.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			lookup, err := flags.lookup(args[0])
			if err != nil {
				return err
			}
			dctx, err := readContext(cmd, a, !flags.global)
			if err != nil {
				return err
			}
			record, err := a.Registry.Put(cmd.Context(), dctx, lookup, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess("Recorded "+record.Key.String()))
			render.NewRegistryRenderer(cmd.OutOrStdout()).RenderRecord(record)
			return nil
		},
	}
	flags.bind(cmd)

	return cmd
}
