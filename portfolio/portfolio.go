// Package portfolio turns return predictions into an equal weight portfolio sized by the
// investor's risk tolerance.
package portfolio

import (
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/aouyang1/go-stockforest/event"
)

const (
	DefaultRebalanceDays = 30
	dateLayout           = "2006-01-02"
)

var ErrNoPositivePredictions = errors.New("no positive predictions available for this industry")

// RiskLevel names a risk tier.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// Tier maps a risk tolerance to its level and the most stocks held at that level. Riskier
// portfolios concentrate in fewer stocks.
func Tier(riskTolerance float64) (RiskLevel, int) {
	switch {
	case riskTolerance > 7:
		return RiskHigh, 4
	case riskTolerance > 4:
		return RiskMedium, 6
	default:
		return RiskLow, 8
	}
}

// Candidate is a stock with a predicted return over the next period.
type Candidate struct {
	Company         string
	Ticker          string
	Industry        string
	CurrentPrice    float64
	PredictedPrice  float64
	PredictedReturn float64
}

// Holding is one position of the portfolio. Monetary values are rounded to two decimals and
// PredictedReturn is a percentage.
type Holding struct {
	Company         string  `json:"company"`
	Ticker          string  `json:"ticker"`
	Industry        string  `json:"industry"`
	Allocation      float64 `json:"allocation"`
	Shares          float64 `json:"shares"`
	CurrentPrice    float64 `json:"current_price"`
	PredictedPrice  float64 `json:"predicted_price"`
	PredictedReturn float64 `json:"predicted_return"`
	PredictedGain   float64 `json:"predicted_gain"`
}

type Summary struct {
	InitialInvestment       float64 `json:"initial_investment"`
	NumberOfStocks          int     `json:"number_of_stocks"`
	AllocationPerStock      float64 `json:"allocation_per_stock"`
	TotalPredictedGain      float64 `json:"total_predicted_gain"`
	PredictedPortfolioValue float64 `json:"predicted_portfolio_value"`
	TotalReturnPercentage   float64 `json:"total_return_percentage"`
	RebalanceDate           string  `json:"rebalance_date"`
}

type Portfolio struct {
	RiskLevel RiskLevel `json:"risk_level"`
	Holdings  []Holding `json:"portfolio"`
	Summary   Summary   `json:"summary"`
}

// Allocate splits the investment equally across the candidates with the highest positive
// predicted returns, holding as many as the risk tier allows. Totals are computed from the
// unrounded values. The rebalance date falls DefaultRebalanceDays after now, rolled forward to a
// trading day when a calendar is given.
func Allocate(req *Request, candidates []Candidate, now time.Time, cal *event.Calendar) (*Portfolio, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	positive := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.PredictedReturn > 0 && c.CurrentPrice > 0 {
			positive = append(positive, c)
		}
	}
	if len(positive) == 0 {
		return nil, ErrNoPositivePredictions
	}
	sort.SliceStable(positive, func(i, j int) bool {
		return positive[i].PredictedReturn > positive[j].PredictedReturn
	})

	level, maxStocks := Tier(req.RiskTolerance)
	selected := positive[:min(maxStocks, len(positive))]

	amount := req.InvestmentAmount
	perStock := amount / float64(len(selected))

	var totalGain, totalValue float64
	holdings := make([]Holding, 0, len(selected))
	for _, c := range selected {
		shares := perStock / c.CurrentPrice
		gain := (c.PredictedPrice - c.CurrentPrice) * shares
		totalGain += gain
		totalValue += shares * c.PredictedPrice

		holdings = append(holdings, Holding{
			Company:         c.Company,
			Ticker:          c.Ticker,
			Industry:        c.Industry,
			Allocation:      round2(perStock),
			Shares:          round2(shares),
			CurrentPrice:    round2(c.CurrentPrice),
			PredictedPrice:  round2(c.PredictedPrice),
			PredictedReturn: round2(c.PredictedReturn * 100),
			PredictedGain:   round2(gain),
		})
	}

	rebalance := now.AddDate(0, 0, DefaultRebalanceDays)
	if cal != nil {
		rebalance = cal.RebalanceDate(now, DefaultRebalanceDays)
	}

	slog.Info("allocated portfolio",
		"risk_level", level,
		"candidates", len(candidates),
		"positive", len(positive),
		"stocks", len(holdings),
	)
	return &Portfolio{
		RiskLevel: level,
		Holdings:  holdings,
		Summary: Summary{
			InitialInvestment:       round2(amount),
			NumberOfStocks:          len(holdings),
			AllocationPerStock:      round2(perStock),
			TotalPredictedGain:      round2(totalGain),
			PredictedPortfolioValue: round2(totalValue),
			TotalReturnPercentage:   round2((totalValue - amount) / amount * 100),
			RebalanceDate:           rebalance.Format(dateLayout),
		},
	}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Response is the outcome of an allocation request as written by the CLI.
type Response struct {
	Success   bool      `json:"success"`
	RiskLevel RiskLevel `json:"risk_level,omitempty"`
	Holdings  []Holding `json:"portfolio,omitempty"`
	Summary   *Summary  `json:"summary,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// NewResponse wraps a portfolio or the error that prevented one.
func NewResponse(p *Portfolio, err error) Response {
	if err != nil {
		return Response{Error: err.Error()}
	}
	if p == nil {
		return Response{Error: ErrNoPositivePredictions.Error()}
	}
	summary := p.Summary
	return Response{
		Success:   true,
		RiskLevel: p.RiskLevel,
		Holdings:  p.Holdings,
		Summary:   &summary,
	}
}
