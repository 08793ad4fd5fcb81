package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aouyang1/go-stockforest/modelstore"

	"github.com/spf13/cobra"
)

type inspectCmdConfig struct {
	*rootCmdConfig
	storeConfig
	list bool
}

func inspectCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &inspectCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a trained model",
		Long:  `Print the training date, features, holdout scores and forest configuration of a trained model, or list the stored models.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.list {
				return config.listModels(cmd)
			}
			bundle, err := config.loadBundle(cmd.Context())
			if err != nil {
				return err
			}
			return printBundle(cmd.OutOrStdout(), bundle)
		},
	}
	config.addFlags(cmd)
	config.addModelFlag(cmd)
	cmd.Flags().BoolVarP(&(config.list), "list", "l", false, "list the stored model names")
	return cmd
}

func (icc *inspectCmdConfig) listModels(cmd *cobra.Command) error {
	store, closeStore, err := icc.open()
	if err != nil {
		return err
	}
	defer closeStore()

	names, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func printBundle(w io.Writer, b *modelstore.Bundle) error {
	fmt.Fprintf(w, "Trained At: %s\n", b.TrainedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Version: %d\n", b.Version)
	fmt.Fprintf(w, "Features: %s\n", strings.Join(b.FeatureNames, ", "))
	if b.Scores != nil {
		fmt.Fprintf(w, "Holdout:\n  Samples: %d    MSE: %.6f    MAE: %.6f    R2: %.4f    Direction: %.4f\n",
			b.Scores.Samples, b.Scores.MSE, b.Scores.MAE, b.Scores.R2, b.Scores.DirectionalAccuracy)
	}
	return b.Forest.TablePrint(w, "", "  ")
}
