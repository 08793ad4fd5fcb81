package main

import (
	"fmt"

	"github.com/aouyang1/go-stockforest"

	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	storeConfig
	historyInput string
	monthly      bool
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict next month returns",
		Long:  `Predict the return into the next bar of every price history with a trained model and write the predictions to STDOUT as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.historyInput == "" {
				return fmt.Errorf("required history flag was not set")
			}
			bundle, err := config.loadBundle(cmd.Context())
			if err != nil {
				return err
			}
			p, err := stockforest.NewPredictor(bundle)
			if err != nil {
				return err
			}

			instruments, err := stockforest.LoadHistory(config.historyInput)
			if err != nil {
				return fmt.Errorf("reading history from %s: %w", config.historyInput, err)
			}
			if config.monthly {
				instruments = stockforest.Monthly(instruments)
			}
			return writeJSON(cmd.OutOrStdout(), p.PredictInstruments(instruments))
		},
	}
	config.addFlags(cmd)
	config.addModelFlag(cmd)
	cmd.Flags().StringVarP(&(config.historyInput), "history", "i", "", "path to a JSON price history file or a directory of them (required)")
	cmd.Flags().BoolVar(&(config.monthly), "monthly", false, "resample the histories to one bar per month before predicting")
	return cmd
}
