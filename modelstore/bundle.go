// Package modelstore persists trained forests together with everything needed to serve them.
package modelstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-stockforest/models"
	"github.com/aouyang1/go-stockforest/score"
	"github.com/aouyang1/go-stockforest/stats"
)

// BundleVersion is the version written by this package. Bundles of any other version are
// rejected on restore.
const BundleVersion = 1

var ErrInvalidBundle = errors.New("invalid model bundle")

// Bundle is a trained forest along with the feature names and scaler its inputs must go
// through and the scores it achieved on held out data.
type Bundle struct {
	Version      int                `json:"version"`
	TrainedAt    time.Time          `json:"trained_at"`
	FeatureNames []string           `json:"feature_names"`
	Scaler       *stats.Scaler      `json:"scaler"`
	Forest       models.ForestModel `json:"forest"`
	Scores       *score.Scores      `json:"scores,omitempty"`
}

// NewBundle snapshots a fitted forest and its scaler.
func NewBundle(forest *models.Forest, scaler *stats.Scaler, featureNames []string, trainedAt time.Time, scores *score.Scores) (*Bundle, error) {
	fm, err := forest.Model()
	if err != nil {
		return nil, fmt.Errorf("unable to snapshot forest, %w", err)
	}
	names := make([]string, len(featureNames))
	copy(names, featureNames)

	b := &Bundle{
		Version:      BundleVersion,
		TrainedAt:    trainedAt.UTC(),
		FeatureNames: names,
		Scaler:       scaler,
		Forest:       fm,
		Scores:       scores,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks that the pieces of the bundle agree on the number of features.
func (b *Bundle) Validate() error {
	if b.Version != BundleVersion {
		return fmt.Errorf("version %d, expected %d, %w", b.Version, BundleVersion, ErrInvalidBundle)
	}
	if b.Scaler == nil {
		return fmt.Errorf("no scaler, %w", ErrInvalidBundle)
	}
	if err := b.Scaler.Validate(); err != nil {
		return fmt.Errorf("%w, %w", ErrInvalidBundle, err)
	}
	n := b.Forest.NumFeatures
	if len(b.FeatureNames) != n {
		return fmt.Errorf("%d feature names for %d features, %w", len(b.FeatureNames), n, ErrInvalidBundle)
	}
	if b.Scaler.NumFeatures() != n {
		return fmt.Errorf("scaler has %d features but forest has %d, %w", b.Scaler.NumFeatures(), n, ErrInvalidBundle)
	}
	return nil
}

// Restore rebuilds the forest and scaler ready for inference.
func (b *Bundle) Restore() (*models.Forest, *stats.Scaler, error) {
	if err := b.Validate(); err != nil {
		return nil, nil, err
	}
	forest, err := models.NewForestFromModel(b.Forest)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to restore forest, %w", err)
	}
	return forest, b.Scaler, nil
}
