package cli

import (
	"github.com/spf13/cobra"
	"github.com/vinci-protocol/vinci-deploy/internal/cli/render"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List networks configured in vinci.toml",
		Long:  `List all networks configured in the [networks] section of vinci.toml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{})
			if err != nil {
				return err
			}
			return render.NewNetworksRenderer(cmd.OutOrStdout()).Render(result)
		},
	}
}

// NewMarketsCmd creates the markets command
func NewMarketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markets",
		Short: "List market configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			return render.NewMarketsRenderer(cmd.OutOrStdout()).Render(app.ListMarkets.Run(cmd.Context()))
		},
	}
}
