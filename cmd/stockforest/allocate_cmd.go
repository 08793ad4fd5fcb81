package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aouyang1/go-stockforest"
	"github.com/aouyang1/go-stockforest/event"
	"github.com/aouyang1/go-stockforest/portfolio"

	"github.com/spf13/cobra"
)

type allocateCmdConfig struct {
	*rootCmdConfig
	storeConfig
	historyInput string
	monthly      bool
}

func allocateCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &allocateCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Recommend a portfolio",
		Long: `Read an allocation request as JSON from STDIN, predict the companies of the requested industry and
write the recommended portfolio to STDOUT as JSON. Failures are reported in the output with success set to false.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.allocate(cmd)
			if err != nil {
				slog.Error("unable to allocate portfolio", "error", err)
			}
			return writeJSON(cmd.OutOrStdout(), portfolio.NewResponse(p, err))
		},
	}
	config.addFlags(cmd)
	config.addModelFlag(cmd)
	cmd.Flags().StringVarP(&(config.historyInput), "history", "i", "", "path to a JSON price history file or a directory of them (required)")
	cmd.Flags().BoolVar(&(config.monthly), "monthly", false, "resample the histories to one bar per month before predicting")
	return cmd
}

func (acc *allocateCmdConfig) allocate(cmd *cobra.Command) (*portfolio.Portfolio, error) {
	if acc.historyInput == "" {
		return nil, fmt.Errorf("required history flag was not set")
	}
	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading request: %w", err)
	}
	req, err := portfolio.ParseRequest(input)
	if err != nil {
		return nil, err
	}
	slog.Info("processing request", "amount", req.InvestmentAmount, "risk", req.RiskTolerance, "industry", req.Industry)

	instruments, err := stockforest.LoadHistory(acc.historyInput)
	if err != nil {
		return nil, fmt.Errorf("reading history from %s: %w", acc.historyInput, err)
	}
	if acc.monthly {
		instruments = stockforest.Monthly(instruments)
	}
	matched := matchInstruments(instruments, req.Industry)
	if len(matched) == 0 {
		return nil, fmt.Errorf("no companies found in %s industry: %w", req.Industry, portfolio.ErrNoMatchingCompanies)
	}

	bundle, err := acc.loadBundle(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("model not available: %w", err)
	}
	predictor, err := stockforest.NewPredictor(bundle)
	if err != nil {
		return nil, fmt.Errorf("model not available: %w", err)
	}

	predictions := predictor.PredictInstruments(matched)
	candidates := make([]portfolio.Candidate, 0, len(predictions))
	for _, p := range predictions {
		candidates = append(candidates, portfolio.Candidate{
			Company:         p.Company,
			Ticker:          p.Ticker,
			Industry:        p.Industry,
			CurrentPrice:    p.CurrentPrice,
			PredictedPrice:  p.PredictedPrice,
			PredictedReturn: p.PredictedReturn,
		})
	}
	return portfolio.Allocate(req, candidates, time.Now(), event.NewLSECalendar())
}

// matchInstruments keeps the instruments whose company matches the industry, in order.
func matchInstruments(instruments []stockforest.Instrument, industry string) []stockforest.Instrument {
	var res []stockforest.Instrument
	for _, inst := range instruments {
		c := portfolio.Company{Company: inst.Company, Ticker: inst.Ticker, Industry: inst.Industry}
		if len(portfolio.MatchIndustry([]portfolio.Company{c}, industry)) > 0 {
			res = append(res, inst)
		}
	}
	return res
}
