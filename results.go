package stockforest

import (
	"time"

	"github.com/aouyang1/go-stockforest/score"
)

// TrainReport describes a training run. The holdout slices are in dataset order, series by
// series.
type TrainReport struct {
	TrainedAt       time.Time `json:"trained_at"`
	NumSeries       int       `json:"num_series"`
	SkippedSeries   int       `json:"skipped_series"`
	TrainRows       int       `json:"train_rows"`
	HoldoutRows     int       `json:"holdout_rows"`
	OutliersRemoved int       `json:"outliers_removed"`

	// OOBRows is the number of training rows left out by at least one member and OOBScore is the
	// r-squared over those rows.
	OOBRows  int     `json:"oob_rows"`
	OOBScore float64 `json:"oob_score"`

	Holdout          *score.Scores `json:"holdout_scores,omitempty"`
	HoldoutActual    []float64     `json:"holdout_actual,omitempty"`
	HoldoutPredicted []float64     `json:"holdout_predicted,omitempty"`

	// Baseline scores the ordinary least squares fit of the same rows on the holdout.
	Baseline        *score.Scores `json:"baseline_scores,omitempty"`
	HoldoutBaseline []float64     `json:"holdout_baseline,omitempty"`

	FeatureNames       []string  `json:"feature_names"`
	FeatureImportances []float64 `json:"feature_importances"`
}

// Prediction is the forecast for the bar following the last bar of a series.
type Prediction struct {
	AsOf            time.Time `json:"as_of"`
	CurrentPrice    float64   `json:"current_price"`
	PredictedReturn float64   `json:"predicted_return"`
	PredictedPrice  float64   `json:"predicted_price"`

	// Spread is the standard deviation of the member predictions of the return.
	Spread float64 `json:"spread"`
}
