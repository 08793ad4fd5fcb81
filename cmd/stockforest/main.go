package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "stockforest",
		Short: "stockforest predicts monthly stock returns with a random forest",
		Long:  `A tool to train random forests on stock price histories, predict next month returns and allocate a portfolio from the predictions`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.setupLogger(cmd)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log debug messages")
	rootCmd.AddCommand(
		versionCmd(),
		trainCmd(config),
		predictCmd(config),
		allocateCmd(config),
		inspectCmd(config),
		simulateCmd(config),
		holidaysCmd(config),
	)
	return rootCmd
}

// setupLogger sends structured logs to stderr so stdout only carries command output.
func (rc *rootCmdConfig) setupLogger(cmd *cobra.Command) {
	level := slog.LevelInfo
	if rc.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
