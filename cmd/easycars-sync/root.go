package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Apurer/dealership-sync/internal/app/api"
	platformobservability "github.com/Apurer/dealership-sync/internal/platform/observability"
)

var (
	// Global flags
	logLevel  string
	logFormat string
	logger    *slog.Logger

	globalCfg        api.Config
	globalComponents *api.Components
	closeComponents  func()
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "easycars-sync",
		Short: "Run EasyCars synchronisation jobs for a dealership",
		Long: `easycars-sync runs the EasyCars stock and lead synchronisation use cases directly,
without going through the HTTP API. Configuration is read from the environment
(and an optional .env file) exactly like the API and worker processes.`,
		Example: `  easycars-sync stock --dealership 12
  easycars-sync lead-statuses --dealership 12
  easycars-sync push-lead --lead 991
  easycars-sync conflicts list --dealership 12
  easycars-sync credentials set --dealership 12 --client-id ... --environment Production`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			cfg, err := api.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			globalCfg = cfg
			components, cleanup, err := api.BuildComponents(cmd.Context(), cfg, &platformobservability.Instruments{Logger: logger})
			if err != nil {
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			globalComponents = components
			closeComponents = cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeComponents != nil {
				closeComponents()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")

	cmd.AddCommand(
		newStockCmd(),
		newLeadStatusesCmd(),
		newDealershipCmd(),
		newPushLeadCmd(),
		newImportLeadCmd(),
		newLogsCmd(),
		newConflictsCmd(),
		newCredentialsCmd(),
	)
	return cmd
}

// setupLogging initializes the slog logger based on flags
func setupLogging() {
	logger = platformobservability.NewLogger(os.Stderr, platformobservability.ParseLevel(logLevel), logFormat)
	slog.SetDefault(logger)
}
