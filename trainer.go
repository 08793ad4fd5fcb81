// Package stockforest trains random forests that predict the next monthly return of a stock
// from technical indicators and serves predictions from the persisted model.
package stockforest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aouyang1/go-stockforest/feature"
	mat_ "github.com/aouyang1/go-stockforest/mat"
	"github.com/aouyang1/go-stockforest/models"
	"github.com/aouyang1/go-stockforest/modelstore"
	"github.com/aouyang1/go-stockforest/score"
	"github.com/aouyang1/go-stockforest/stats"
	"github.com/aouyang1/go-stockforest/timedataset"

	"gonum.org/v1/gonum/mat"
)

// Train builds the dataset from every series, holds out the most recent rows of each series,
// fits the scaler and forest on the rest and scores the holdout against the linear baseline.
// Series too short to produce a single row are skipped.
func Train(ctx context.Context, series []*timedataset.PriceSeries, opt *TrainerOptions) (*modelstore.Bundle, *TrainReport, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to validate trainer options, %w", err)
	}
	if len(series) == 0 {
		return nil, nil, feature.ErrNoSeries
	}

	report := &TrainReport{
		NumSeries:    len(series),
		FeatureNames: feature.Names(),
	}

	var trainX, holdX [][]float64
	var trainY, holdY []float64
	for i, s := range series {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		x, y, err := feature.BuildDataset(s)
		if err != nil {
			if errors.Is(err, feature.ErrNoSamples) {
				slog.Warn("skipping series without samples", "series", i, "bars", s.Len())
				report.SkippedSeries++
				continue
			}
			return nil, nil, fmt.Errorf("unable to build dataset for series %d, %w", i, err)
		}
		split := len(x) - holdoutSize(len(x), opt.HoldoutFraction)
		trainX = append(trainX, x[:split]...)
		trainY = append(trainY, y[:split]...)
		holdX = append(holdX, x[split:]...)
		holdY = append(holdY, y[split:]...)
	}
	if len(trainX) == 0 {
		return nil, nil, feature.ErrNoSamples
	}

	if opt.OutlierOptions != nil {
		var removed int
		trainX, trainY, removed = removeOutliers(trainX, trainY, opt.OutlierOptions)
		report.OutliersRemoved = removed
	}
	report.TrainRows = len(trainX)
	report.HoldoutRows = len(holdX)

	x, err := mat_.NewDenseFromArray(trainX)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create training matrix, %w", err)
	}
	scaler, err := stats.FitScaler(x)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to fit scaler, %w", err)
	}
	xs, err := scaler.Transform(x)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to scale training matrix, %w", err)
	}
	y := mat_.NewColumn(trainY)

	forest, err := models.NewForest(opt.Forest)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to initialize forest, %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	start := time.Now()
	if err := forest.Fit(xs, y); err != nil {
		return nil, nil, fmt.Errorf("unable to fit forest, %w", err)
	}
	slog.Info("fit forest",
		"rows", report.TrainRows,
		"trees", opt.Forest.NumTrees,
		"max_depth", opt.Forest.MaxDepth,
		"duration", time.Since(start),
	)

	if err := oobScore(forest, xs, y, report); err != nil {
		return nil, nil, err
	}

	var scores *score.Scores
	if len(holdX) > 0 {
		predicted, err := predictRows(forest, scaler, holdX)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to predict holdout, %w", err)
		}
		scores, err = score.NewScores(predicted, holdY)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to score holdout, %w", err)
		}
		report.Holdout = scores
		report.HoldoutActual = holdY
		report.HoldoutPredicted = predicted
		slog.Info("scored holdout",
			"rows", scores.Samples,
			"mse", scores.MSE,
			"r2", scores.R2,
			"directional_accuracy", scores.DirectionalAccuracy,
		)

		if opt.Baseline != nil {
			if err := baselineScore(opt.Baseline, xs, y, scaler, holdX, holdY, report); err != nil {
				return nil, nil, err
			}
		}
	}

	report.FeatureImportances, err = forest.FeatureImportances()
	if err != nil {
		return nil, nil, err
	}

	trainedAt := opt.TrainedAt
	if trainedAt.IsZero() {
		trainedAt = time.Now()
	}
	bundle, err := modelstore.NewBundle(forest, scaler, report.FeatureNames, trainedAt, scores)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to bundle model, %w", err)
	}
	report.TrainedAt = bundle.TrainedAt
	return bundle, report, nil
}

// holdoutSize is the number of trailing rows of an n row series to hold out. At least one row
// always stays in training.
func holdoutSize(n int, fraction float64) int {
	h := int(math.Floor(float64(n) * fraction))
	if h >= n {
		h = n - 1
	}
	return h
}

// removeOutliers drops rows whose target is an outlier, repeating until a pass finds none or
// the passes run out.
func removeOutliers(x [][]float64, y []float64, opt *OutlierOptions) ([][]float64, []float64, int) {
	var removed int
	for pass := 0; pass < opt.NumPasses; pass++ {
		outlierIdxs := stats.DetectOutliers(y, opt.LowerPercentile, opt.UpperPercentile, opt.TukeyFactor)
		if len(outlierIdxs) == 0 || len(outlierIdxs) == len(y) {
			break
		}
		outlierSet := make(map[int]struct{}, len(outlierIdxs))
		for _, idx := range outlierIdxs {
			outlierSet[idx] = struct{}{}
		}

		keptX := make([][]float64, 0, len(x)-len(outlierIdxs))
		keptY := make([]float64, 0, len(y)-len(outlierIdxs))
		for i := range y {
			if _, exists := outlierSet[i]; exists {
				continue
			}
			keptX = append(keptX, x[i])
			keptY = append(keptY, y[i])
		}
		slog.Debug("removed outliers", "pass", pass, "count", len(outlierIdxs))
		removed += len(outlierIdxs)
		x, y = keptX, keptY
	}
	return x, y, removed
}

func oobScore(forest *models.Forest, x, y *mat.Dense, report *TrainReport) error {
	oob, err := forest.OOBPredictions(x)
	if err != nil {
		return fmt.Errorf("unable to compute out of bag predictions, %w", err)
	}
	for _, p := range oob {
		if !math.IsNaN(p) {
			report.OOBRows++
		}
	}
	if report.OOBRows == 0 {
		return nil
	}
	report.OOBScore, err = forest.OOBScore(x, y)
	if err != nil {
		return fmt.Errorf("unable to compute out of bag score, %w", err)
	}
	return nil
}

// baselineScore fits ordinary least squares on the scaled training rows and scores it on the
// holdout. Too few training rows to determine the coefficients leaves the baseline unscored.
func baselineScore(opt *models.OLSOptions, x, y *mat.Dense, scaler *stats.Scaler, holdX [][]float64, holdY []float64, report *TrainReport) error {
	ols := models.NewOLSRegression(opt)
	if err := ols.Fit(x, y); err != nil {
		if errors.Is(err, models.ErrUnderdetermined) {
			slog.Warn("skipping linear baseline", "error", err)
			return nil
		}
		return fmt.Errorf("unable to fit linear baseline, %w", err)
	}
	predicted, err := predictRows(ols, scaler, holdX)
	if err != nil {
		return fmt.Errorf("unable to predict holdout with linear baseline, %w", err)
	}
	scores, err := score.NewScores(predicted, holdY)
	if err != nil {
		return fmt.Errorf("unable to score linear baseline, %w", err)
	}
	report.Baseline = scores
	report.HoldoutBaseline = predicted
	slog.Info("scored linear baseline",
		"mse", scores.MSE,
		"r2", scores.R2,
		"directional_accuracy", scores.DirectionalAccuracy,
	)
	return nil
}

// predictRows scales raw feature rows and predicts them.
func predictRows(model models.Model, scaler *stats.Scaler, rows [][]float64) ([]float64, error) {
	x, err := mat_.NewDenseFromArray(rows)
	if err != nil {
		return nil, err
	}
	xs, err := scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	return model.Predict(xs)
}
