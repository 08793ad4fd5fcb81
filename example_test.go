package stockforest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/aouyang1/go-stockforest/models"
	"github.com/aouyang1/go-stockforest/timedataset"
)

func ExampleTrain() {
	r := rand.New(rand.NewPCG(7, 8))
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	var series []*timedataset.PriceSeries
	for i := 0; i < 4; i++ {
		s, err := timedataset.GenerateSeries(r, 48, end, 100, 0.005, 0.05)
		if err != nil {
			panic(err)
		}
		series = append(series, s)
	}

	opt := &TrainerOptions{
		Forest:          &models.ForestOptions{NumTrees: 25, MaxDepth: 5, Seed: 42},
		HoldoutFraction: 0.25,
	}
	bundle, report, err := Train(context.Background(), series, opt)
	if err != nil {
		panic(err)
	}
	if err := bundle.Forest.TablePrint(os.Stderr, "", "  "); err != nil {
		panic(err)
	}

	p, err := NewPredictor(bundle)
	if err != nil {
		panic(err)
	}
	pred, err := p.PredictSeries(series[0])
	if err != nil {
		panic(err)
	}

	fmt.Printf("train rows: %d, holdout rows: %d\n", report.TrainRows, report.HoldoutRows)
	fmt.Printf("as of: %s\n", pred.AsOf.Format("2006-01-02"))
	// Output:
	// train rows: 144, holdout rows: 44
	// as of: 2024-12-31
}
