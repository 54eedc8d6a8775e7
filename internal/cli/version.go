package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vinci-protocol/vinci-deploy/internal/config"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of vinci-deploy",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vinci-deploy %s (commit %s, built %s)\n", config.Version, config.Commit, config.Date)
		},
	}
}
