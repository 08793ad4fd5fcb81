package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aouyang1/go-stockforest"
	"github.com/aouyang1/go-stockforest/models"
	"github.com/aouyang1/go-stockforest/modelstore"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type trainCmdConfig struct {
	*rootCmdConfig
	storeConfig
	historyInput string
	configInput  string
	name         string
	reportOutput string
	profileDir   string
	monthly      bool

	numTrees        int
	maxDepth        int
	seed            uint64
	parallelization int
	holdout         float64
}

func trainCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &trainCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a forest from price histories",
		Long:  `Train a random forest predicting next month returns from the price histories and save it to the model store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			if config.profileDir != "" {
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(config.profileDir), profile.Quiet).Stop()
			}
			opt, err := config.trainerOptions(cmd)
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
			slog.Info("training", "instruments", len(instruments), "trees", opt.Forest.NumTrees, "max_depth", opt.Forest.MaxDepth)

			bundle, report, err := stockforest.Train(cmd.Context(), stockforest.Series(instruments), opt)
			if err != nil {
				return fmt.Errorf("training: %w", err)
			}

			store, closeStore, err := config.open()
			if err != nil {
				return err
			}
			defer closeStore()

			name := config.name
			if name == "" {
				name = modelstore.ModelName(bundle.TrainedAt)
			}
			if err := store.Save(cmd.Context(), name, bundle); err != nil {
				return fmt.Errorf("saving model %s: %w", name, err)
			}
			slog.Info("saved model", "name", name, "train_rows", report.TrainRows, "holdout_rows", report.HoldoutRows, "oob_score", report.OOBScore)

			if config.reportOutput != "" {
				if err := stockforest.PlotReportFile(config.reportOutput, report); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	config.addFlags(cmd)
	cmd.Flags().StringVarP(&(config.historyInput), "history", "i", "", "path to a JSON price history file or a directory of them (required)")
	cmd.Flags().StringVarP(&(config.configInput), "config", "c", "", "path to a YAML file with trainer options, overridden by any flag set")
	cmd.Flags().StringVarP(&(config.name), "name", "n", "", "name to save the model under (defaults to trained_model_YYYYMMDD)")
	cmd.Flags().StringVar(&(config.reportOutput), "report", "", "path to write an html report of the holdout fit and feature importances")
	cmd.Flags().StringVar(&(config.profileDir), "profile", "", "directory to write a CPU profile of the run")
	cmd.Flags().BoolVar(&(config.monthly), "monthly", false, "resample the histories to one bar per month before training")
	cmd.Flags().IntVar(&(config.numTrees), "trees", 100, "number of trees in the forest")
	cmd.Flags().IntVar(&(config.maxDepth), "depth", 10, "maximum depth of every tree")
	cmd.Flags().Uint64Var(&(config.seed), "seed", 0, "seed of the bootstrap and feature sampling")
	cmd.Flags().IntVar(&(config.parallelization), "parallel", 1, "number of trees grown concurrently, 0 grows all at once")
	cmd.Flags().Float64Var(&(config.holdout), "holdout", 0.2, "fraction of the most recent rows of every history held out for scoring")
	return cmd
}

func (tcc *trainCmdConfig) Validate() error {
	if tcc.historyInput == "" {
		return fmt.Errorf("required history flag was not set")
	}
	return nil
}

// trainerOptions reads the config file if any and applies the flags that were explicitly set
// on top of it.
func (tcc *trainCmdConfig) trainerOptions(cmd *cobra.Command) (*stockforest.TrainerOptions, error) {
	opt := stockforest.NewDefaultTrainerOptions()
	if tcc.configInput != "" {
		data, err := os.ReadFile(tcc.configInput)
		if err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", tcc.configInput, err)
		}
		if err := yaml.Unmarshal(data, opt); err != nil {
			return nil, fmt.Errorf("parsing config from %s: %w", tcc.configInput, err)
		}
	}

	if opt.Forest == nil {
		opt.Forest = models.NewDefaultForestOptions()
	}
	flags := cmd.Flags()
	if flags.Changed("trees") {
		opt.Forest.NumTrees = tcc.numTrees
	}
	if flags.Changed("depth") {
		opt.Forest.MaxDepth = tcc.maxDepth
	}
	if flags.Changed("seed") {
		opt.Forest.Seed = tcc.seed
	}
	if flags.Changed("parallel") {
		opt.Forest.Parallelization = tcc.parallelization
	}
	if flags.Changed("holdout") {
		opt.HoldoutFraction = tcc.holdout
	}
	return opt.Validate()
}
