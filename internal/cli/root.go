package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vinci-protocol/vinci-deploy/internal/adapters/progress"
	"github.com/vinci-protocol/vinci-deploy/internal/app"
	"github.com/vinci-protocol/vinci-deploy/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// session holds what the root command opened for one invocation
type session struct {
	cleanup func()
	sink    *progress.SpinnerSink
}

func (s *session) close() {
	if s.sink != nil {
		s.sink.Stop()
		s.sink = nil
	}
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// Execute runs the command line and releases the app afterwards, also on failure
func Execute(ctx context.Context) error {
	s := &session{}
	defer s.close()
	return newRootCmd(s).ExecuteContext(ctx)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&session{})
}

func newRootCmd(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vinci-deploy",
		Short: "Deployment orchestrator for Vinci lending markets",
		Long: `vinci-deploy rolls out Vinci lending markets: the addresses provider, pool,
configurator, oracles, token implementations and NFT vaults, then initialises and
configures every reserve and vault. Every step is recorded in the address registry,
so an interrupted rollout resumes where it stopped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot(".")
			if err != nil {
				return err
			}
			v := config.SetupViper(projectRoot, cmd)

			s.sink = progress.NewSpinnerSinkTo(cmd.OutOrStdout())
			appInstance, done, err := app.InitApp(v, s.sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			s.cleanup = done

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				release := s.cleanup
				s.cleanup = func() {
					cancel()
					release()
				}
			}
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			s.close()
		},
	}

	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from vinci.toml (e.g. kovan, hardhat)")
	rootCmd.PersistentFlags().StringP("market", "m", "", "Market id (e.g. Vinci, VinciBAYC)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Broadcast without asking for confirmation")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Simulate transactions without broadcasting or persisting")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "deployment",
		Title: "Deployment Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, cmd := range []*cobra.Command{
		NewDeployCmd(),
		NewInitCmd(),
		NewConfigureCmd(),
		NewUpdateCmd(),
		NewOracleCmd(),
	} {
		cmd.GroupID = "deployment"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewMarketsCmd(),
		NewNetworksCmd(),
		NewRegistryCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
