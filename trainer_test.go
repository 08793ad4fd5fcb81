package stockforest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aouyang1/go-stockforest/feature"
	"github.com/aouyang1/go-stockforest/models"
	"github.com/aouyang1/go-stockforest/timedataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

var testEnd = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

func generateInstruments(t testing.TB, num, bars int, seed uint64) []Instrument {
	r := rand.New(rand.NewPCG(seed, seed+1))
	industries := []string{"Software", "Banks", "Pharmaceuticals"}
	res := make([]Instrument, 0, num)
	for i := 0; i < num; i++ {
		drift := 0.002 * float64(i%5-2)
		series, err := timedataset.GenerateSeries(r, bars, testEnd, 50+10*float64(i), drift, 0.06)
		require.Nil(t, err)
		res = append(res, Instrument{
			Company:  fmt.Sprintf("Company %d", i),
			Ticker:   fmt.Sprintf("C%02d.L", i),
			Industry: industries[i%len(industries)],
			Series:   series,
		})
	}
	return res
}

func testTrainerOptions() *TrainerOptions {
	return &TrainerOptions{
		Forest:          &models.ForestOptions{NumTrees: 20, MaxDepth: 4, Seed: 1},
		Baseline:        models.NewDefaultOLSOptions(),
		HoldoutFraction: 0.2,
		TrainedAt:       time.Date(2025, 1, 3, 18, 0, 0, 0, time.UTC),
	}
}

func TestTrain(t *testing.T) {
	instruments := generateInstruments(t, 5, 60, 9)
	opt := testTrainerOptions()

	bundle, report, err := Train(context.Background(), Series(instruments), opt)
	require.Nil(t, err)

	// 59 rows per series with the last 11 held out
	assert.Equal(t, 5, report.NumSeries)
	assert.Equal(t, 0, report.SkippedSeries)
	assert.Equal(t, 5*48, report.TrainRows)
	assert.Equal(t, 5*11, report.HoldoutRows)
	assert.Len(t, report.HoldoutActual, 55)
	assert.Len(t, report.HoldoutPredicted, 55)
	require.NotNil(t, report.Holdout)
	assert.Equal(t, 55, report.Holdout.Samples)
	assert.Greater(t, report.OOBRows, 0)
	require.NotNil(t, report.Baseline)
	assert.Equal(t, 55, report.Baseline.Samples)
	assert.Len(t, report.HoldoutBaseline, 55)

	assert.Equal(t, feature.Names(), report.FeatureNames)
	require.Len(t, report.FeatureImportances, feature.NumFeatures())
	assert.InDelta(t, 1.0, floats.Sum(report.FeatureImportances), 1e-9)

	assert.Equal(t, feature.Names(), bundle.FeatureNames)
	assert.Equal(t, opt.TrainedAt, bundle.TrainedAt)
	assert.Equal(t, opt.TrainedAt, report.TrainedAt)
	assert.Equal(t, report.Holdout, bundle.Scores)
	assert.Equal(t, 20, len(bundle.Forest.Members))
	assert.Equal(t, 0, opt.Forest.Parallelization)

	// the holdout is the most recent returns of each series in order
	closes := instruments[0].Series.Close
	n := len(closes)
	for i := 0; i < 11; i++ {
		expected := closes[n-11+i]/closes[n-12+i] - 1
		assert.InDelta(t, expected, report.HoldoutActual[i], 1e-12)
	}
}

func TestTrainDeterministic(t *testing.T) {
	instruments := generateInstruments(t, 3, 40, 4)

	b1, r1, err := Train(context.Background(), Series(instruments), testTrainerOptions())
	require.Nil(t, err)

	opt := testTrainerOptions()
	opt.Forest.Parallelization = 4
	b2, r2, err := Train(context.Background(), Series(instruments), opt)
	require.Nil(t, err)

	assert.Equal(t, b1.Forest.Members, b2.Forest.Members)
	assert.Equal(t, b1.Scaler, b2.Scaler)
	assert.Equal(t, r1.HoldoutPredicted, r2.HoldoutPredicted)
}

func TestTrainSkipsShortSeries(t *testing.T) {
	instruments := generateInstruments(t, 2, 30, 5)
	short, err := timedataset.NewPriceSeries([]time.Time{testEnd}, []float64{10}, []float64{100})
	require.Nil(t, err)

	_, report, err := Train(context.Background(), append(Series(instruments), short), testTrainerOptions())
	require.Nil(t, err)
	assert.Equal(t, 3, report.NumSeries)
	assert.Equal(t, 1, report.SkippedSeries)
	assert.Equal(t, 2*(29-5), report.TrainRows)
}

func TestTrainNoHoldout(t *testing.T) {
	instruments := generateInstruments(t, 2, 30, 6)
	opt := testTrainerOptions()
	opt.HoldoutFraction = 0

	bundle, report, err := Train(context.Background(), Series(instruments), opt)
	require.Nil(t, err)
	assert.Equal(t, 58, report.TrainRows)
	assert.Equal(t, 0, report.HoldoutRows)
	assert.Nil(t, report.Holdout)
	assert.Nil(t, report.Baseline)
	assert.Nil(t, bundle.Scores)
}

func TestTrainOutliers(t *testing.T) {
	instruments := generateInstruments(t, 4, 61, 7)
	opt := testTrainerOptions()
	opt.HoldoutFraction = 0
	opt.OutlierOptions = &OutlierOptions{
		NumPasses:       2,
		LowerPercentile: 0.1,
		UpperPercentile: 0.9,
		TukeyFactor:     0.0,
	}

	_, report, err := Train(context.Background(), Series(instruments), opt)
	require.Nil(t, err)
	assert.Greater(t, report.OutliersRemoved, 0)
	assert.Equal(t, 4*60, report.TrainRows+report.OutliersRemoved)
}

func TestTrainErrors(t *testing.T) {
	instruments := generateInstruments(t, 2, 30, 8)
	short, err := timedataset.NewPriceSeries([]time.Time{testEnd}, []float64{10}, []float64{100})
	require.Nil(t, err)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	testData := map[string]struct {
		ctx    context.Context
		series []*timedataset.PriceSeries
		opt    func(o *TrainerOptions)
		err    error
	}{
		"no series": {
			ctx: context.Background(),
			err: feature.ErrNoSeries,
		},
		"no samples": {
			ctx:    context.Background(),
			series: []*timedataset.PriceSeries{short},
			err:    feature.ErrNoSamples,
		},
		"holdout of one": {
			ctx:    context.Background(),
			series: Series(instruments),
			opt:    func(o *TrainerOptions) { o.HoldoutFraction = 1 },
			err:    ErrInvalidHoldoutFraction,
		},
		"negative holdout": {
			ctx:    context.Background(),
			series: Series(instruments),
			opt:    func(o *TrainerOptions) { o.HoldoutFraction = -0.1 },
			err:    ErrInvalidHoldoutFraction,
		},
		"no trees": {
			ctx:    context.Background(),
			series: Series(instruments),
			opt:    func(o *TrainerOptions) { o.Forest.NumTrees = 0 },
			err:    models.ErrNonPositiveNumTrees,
		},
		"bad outliers": {
			ctx:    context.Background(),
			series: Series(instruments),
			opt: func(o *TrainerOptions) {
				o.OutlierOptions = &OutlierOptions{LowerPercentile: 0.9, UpperPercentile: 0.1}
			},
			err: ErrInvalidOutlierOptions,
		},
		"canceled": {
			ctx:    canceled,
			series: Series(instruments),
			err:    context.Canceled,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := testTrainerOptions()
			if td.opt != nil {
				td.opt(opt)
			}
			_, _, err := Train(td.ctx, td.series, opt)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestHoldoutSize(t *testing.T) {
	testData := map[string]struct {
		n        int
		fraction float64
		expected int
	}{
		"fifth":       {10, 0.2, 2},
		"rounds down": {9, 0.2, 1},
		"none":        {5, 0, 0},
		"single row":  {1, 0.5, 0},
		"keeps one":   {2, 0.9, 1},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, holdoutSize(td.n, td.fraction))
		})
	}
}

func TestTrainerOptionsValidate(t *testing.T) {
	var nilOpt *TrainerOptions
	opt, err := nilOpt.Validate()
	require.Nil(t, err)
	assert.Equal(t, 0.2, opt.HoldoutFraction)
	assert.Equal(t, models.DefaultNumTrees, opt.Forest.NumTrees)
	assert.Equal(t, models.DefaultParallelization, opt.Forest.Parallelization)
	assert.Equal(t, models.NewDefaultOLSOptions(), opt.Baseline)

	opt, err = (&TrainerOptions{HoldoutFraction: 0.1}).Validate()
	require.Nil(t, err)
	assert.Equal(t, models.DefaultForestMaxDepth, opt.Forest.MaxDepth)

	assert.Nil(t, NewOutlierOptions().Validate())
	assert.ErrorIs(t, (&OutlierOptions{NumPasses: -1, UpperPercentile: 1}).Validate(), ErrInvalidOutlierOptions)
	assert.ErrorIs(t, (&OutlierOptions{UpperPercentile: 1, TukeyFactor: -1}).Validate(), ErrInvalidOutlierOptions)
}
