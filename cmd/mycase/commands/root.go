package commands

import (
	"context"
	"fmt"
	"log/slog"
	"mycase-search/lib/serviceutil"
	"mycase-search/lib/telemetry"

	"github.com/spf13/cobra"
)

var configPath *string
var verbose *bool

var tel telemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:   "mycase",
	Short: "mycase searches the Indiana MyCase public case index and records the result.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "mycase")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file, a .local variant is merged over it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging and request dumps.")
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)

	telemetry.RecordProcessStats(ctx)
	shutdownErr := tel.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to shutdown telemetry", "err", shutdownErr)
	}

	if err != nil {
		serviceutil.Fatal("mycase failed", err)
	}
}
