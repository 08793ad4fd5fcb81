package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/aouyang1/go-stockforest"
	"github.com/aouyang1/go-stockforest/timedataset"

	"github.com/spf13/cobra"
)

var simulatedIndustries = []string{
	"Software & Computer Services",
	"Banks",
	"Pharmaceuticals & Biotechnology",
	"Industrial Engineering",
	"Real Estate Investment Trusts",
}

type simulateCmdConfig struct {
	*rootCmdConfig
	output      string
	instruments int
	bars        int
	seed        uint64
	end         string
}

func simulateCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &simulateCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate synthetic price histories",
		Long:  `Generate monthly random walk price histories in the format read by train, predict and allocate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			end := time.Now().UTC()
			if config.end != "" {
				var err error
				end, err = time.Parse("2006-01-02", config.end)
				if err != nil {
					return fmt.Errorf("parsing end date %s: %w", config.end, err)
				}
			}
			instruments, err := config.simulate(end)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if config.output != "" {
				f, err := os.Create(config.output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return stockforest.WriteHistory(w, instruments)
		},
	}
	cmd.Flags().StringVarP(&(config.output), "output", "o", "", "path to write the history to (defaults to STDOUT)")
	cmd.Flags().IntVar(&(config.instruments), "instruments", 10, "number of instruments")
	cmd.Flags().IntVar(&(config.bars), "bars", 60, "number of monthly bars per instrument")
	cmd.Flags().Uint64Var(&(config.seed), "seed", 0, "seed of the random walks")
	cmd.Flags().StringVar(&(config.end), "end", "", "date of the last bar as YYYY-MM-DD (defaults to today)")
	return cmd
}

func (scc *simulateCmdConfig) simulate(end time.Time) ([]stockforest.Instrument, error) {
	if scc.instruments <= 0 || scc.bars <= 0 {
		return nil, fmt.Errorf("instruments and bars must be positive")
	}
	r := rand.New(rand.NewPCG(scc.seed, scc.seed^0x5eed))
	res := make([]stockforest.Instrument, 0, scc.instruments)
	for i := 0; i < scc.instruments; i++ {
		start := 5 + 95*r.Float64()
		drift := 0.01 * r.NormFloat64()
		vol := 0.03 + 0.07*r.Float64()
		series, err := timedataset.GenerateSeries(r, scc.bars, end, start, drift, vol)
		if err != nil {
			return nil, err
		}
		res = append(res, stockforest.Instrument{
			Company:  fmt.Sprintf("Simulated %d", i),
			Ticker:   fmt.Sprintf("SIM%d.L", i),
			Industry: simulatedIndustries[i%len(simulatedIndustries)],
			Series:   series,
		})
	}
	return res, nil
}
