package stockforest

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-stockforest/models"
)

var (
	ErrInvalidHoldoutFraction = errors.New("holdout fraction must be in [0, 1)")
	ErrInvalidOutlierOptions  = errors.New("invalid outlier options")
)

// OutlierOptions configures removal of extreme training targets before the forest is fit.
// Targets beyond the percentiles widened by TukeyFactor times the inter percentile range are
// dropped. Holdout rows are never removed.
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes" yaml:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile" yaml:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile" yaml:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor" yaml:"tukey_factor"`
}

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       1,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     3.0,
	}
}

func (o *OutlierOptions) Validate() error {
	if o.NumPasses < 0 {
		return fmt.Errorf("negative number of passes %d, %w", o.NumPasses, ErrInvalidOutlierOptions)
	}
	if o.LowerPercentile < 0 || o.UpperPercentile > 1 || o.LowerPercentile >= o.UpperPercentile {
		return fmt.Errorf("percentiles [%.3f, %.3f], %w", o.LowerPercentile, o.UpperPercentile, ErrInvalidOutlierOptions)
	}
	if o.TukeyFactor < 0 {
		return fmt.Errorf("negative tukey factor %.3f, %w", o.TukeyFactor, ErrInvalidOutlierOptions)
	}
	return nil
}

// TrainerOptions configures a training run. A nil OutlierOptions keeps every training row and a
// nil Baseline skips the linear baseline.
type TrainerOptions struct {
	Forest          *models.ForestOptions `json:"forest" yaml:"forest"`
	Baseline        *models.OLSOptions    `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	HoldoutFraction float64               `json:"holdout_fraction" yaml:"holdout_fraction"`
	OutlierOptions  *OutlierOptions       `json:"outlier_options,omitempty" yaml:"outlier_options,omitempty"`

	// TrainedAt stamps the resulting bundle. The current time is used when zero.
	TrainedAt time.Time `json:"-" yaml:"-"`
}

// NewDefaultTrainerOptions holds out the last fifth of every series for scoring.
func NewDefaultTrainerOptions() *TrainerOptions {
	return &TrainerOptions{
		Forest:          models.NewDefaultForestOptions(),
		Baseline:        models.NewDefaultOLSOptions(),
		HoldoutFraction: 0.2,
	}
}

// Validate fills in defaults for unset sections and checks the remaining values. The returned
// options are a copy.
func (o *TrainerOptions) Validate() (*TrainerOptions, error) {
	if o == nil {
		o = NewDefaultTrainerOptions()
	}
	res := *o
	forest, err := res.Forest.Validate()
	if err != nil {
		return nil, err
	}
	res.Forest = forest

	if res.HoldoutFraction < 0 || res.HoldoutFraction >= 1 {
		return nil, fmt.Errorf("got %.3f, %w", res.HoldoutFraction, ErrInvalidHoldoutFraction)
	}
	if res.OutlierOptions != nil {
		if err := res.OutlierOptions.Validate(); err != nil {
			return nil, err
		}
	}
	return &res, nil
}
