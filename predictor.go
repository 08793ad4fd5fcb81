package stockforest

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-stockforest/feature"
	"github.com/aouyang1/go-stockforest/models"
	"github.com/aouyang1/go-stockforest/modelstore"
	"github.com/aouyang1/go-stockforest/stats"
	"github.com/aouyang1/go-stockforest/timedataset"

	"gonum.org/v1/gonum/mat"
)

var ErrNoBundle = errors.New("no model bundle")

// Predictor serves predictions from a restored model bundle. It is safe for concurrent use.
type Predictor struct {
	forest *models.Forest
	scaler *stats.Scaler
	labels *feature.Labels
}

// NewPredictor restores the bundle and checks that it was trained on the indicators this build
// computes.
func NewPredictor(b *modelstore.Bundle) (*Predictor, error) {
	if b == nil {
		return nil, ErrNoBundle
	}
	labels := feature.NewLabels(b.FeatureNames)
	if err := labels.Compatible(feature.Names()); err != nil {
		return nil, fmt.Errorf("model features differ from computed features, %w", err)
	}
	forest, scaler, err := b.Restore()
	if err != nil {
		return nil, err
	}
	return &Predictor{
		forest: forest,
		scaler: scaler,
		labels: labels,
	}, nil
}

// FeatureNames returns the feature columns the model expects.
func (p *Predictor) FeatureNames() []string {
	return p.labels.Labels()
}

// PredictSeries predicts the return into the bar after the last bar of the series.
func (p *Predictor) PredictSeries(series *timedataset.PriceSeries) (*Prediction, error) {
	row, err := feature.Latest(series)
	if err != nil {
		return nil, fmt.Errorf("unable to compute latest features, %w", err)
	}
	scaled, err := p.scaler.TransformRow(row)
	if err != nil {
		return nil, fmt.Errorf("unable to scale features, %w", err)
	}
	x := mat.NewDense(1, len(scaled), scaled)
	means, spreads, err := p.forest.PredictSpread(x)
	if err != nil {
		return nil, fmt.Errorf("unable to predict, %w", err)
	}

	current := series.LastClose()
	return &Prediction{
		AsOf:            series.EndTime(),
		CurrentPrice:    current,
		PredictedReturn: means[0],
		PredictedPrice:  current * (1 + means[0]),
		Spread:          spreads[0],
	}, nil
}

// PredictInstruments predicts every instrument in order. Instruments that cannot be predicted
// are logged and left out.
func (p *Predictor) PredictInstruments(instruments []Instrument) []InstrumentPrediction {
	res := make([]InstrumentPrediction, 0, len(instruments))
	for _, inst := range instruments {
		pred, err := p.PredictSeries(inst.Series)
		if err != nil {
			slog.Warn("unable to predict instrument", "ticker", inst.Ticker, "error", err)
			continue
		}
		res = append(res, InstrumentPrediction{
			Company:    inst.Company,
			Ticker:     inst.Ticker,
			Industry:   inst.Industry,
			Prediction: *pred,
		})
	}
	return res
}
