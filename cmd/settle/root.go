package main

import (
	"fmt"
	"os"

	"github.com/aretw0/settle/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "settle",
	Short: "settle runs state-update scenarios and reports what changed",
	Long: `settle loads a scenario (initial state, subscribers and steps), applies every
step as one atomic update and reports the notifications, reactions and errors
produced while the state settles.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		if _, err := logging.ParseLevel(level); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "settle:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}
