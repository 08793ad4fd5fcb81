package portfolio

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

const (
	MaxInvestmentAmount = 1e9
	MinRiskTolerance    = 1
	MaxRiskTolerance    = 10
	DefaultIndustry     = "General"
)

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrMissingField         = fmt.Errorf("missing required field, %w", ErrInvalidRequest)
	ErrInvalidAmount        = fmt.Errorf("investment amount must be greater than 0 and at most 1e9, %w", ErrInvalidRequest)
	ErrInvalidRiskTolerance = fmt.Errorf("risk tolerance must be between 1 and 10, %w", ErrInvalidRequest)
)

// Request is an investor's allocation request.
type Request struct {
	InvestmentAmount float64 `json:"investment_amount"`
	CurrentSavings   float64 `json:"current_savings"`
	RiskTolerance    float64 `json:"risk_tolerance"`
	Industry         string  `json:"industry"`
}

// Validate checks the amount and risk tolerance bounds.
func (r *Request) Validate() error {
	if !(r.InvestmentAmount > 0) || r.InvestmentAmount > MaxInvestmentAmount {
		return fmt.Errorf("got %g, %w", r.InvestmentAmount, ErrInvalidAmount)
	}
	if !(r.RiskTolerance >= MinRiskTolerance && r.RiskTolerance <= MaxRiskTolerance) {
		return fmt.Errorf("got %g, %w", r.RiskTolerance, ErrInvalidRiskTolerance)
	}
	return nil
}

// number accepts a JSON number or a string holding one.
type number struct {
	set bool
	v   float64
}

func (n *number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %s, %w", data, ErrInvalidRequest)
	}
	n.set, n.v = true, v
	return nil
}

type rawRequest struct {
	InvestmentAmount number `json:"investment_amount"`
	CurrentSavings   number `json:"current_savings"`
	RiskTolerance    number `json:"risk_tolerance"`
	Industry         string `json:"industry"`
}

// ParseRequest decodes and validates a request. Numeric fields may be given as numbers or
// numeric strings. The investment amount and risk tolerance are required and the industry
// defaults to DefaultIndustry.
func ParseRequest(data []byte) (*Request, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("no input data provided, %w", ErrInvalidRequest)
	}
	var raw rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %v, %w", err, ErrInvalidRequest)
	}
	if !raw.InvestmentAmount.set {
		return nil, fmt.Errorf("investment_amount, %w", ErrMissingField)
	}
	if !raw.RiskTolerance.set {
		return nil, fmt.Errorf("risk_tolerance, %w", ErrMissingField)
	}

	r := &Request{
		InvestmentAmount: raw.InvestmentAmount.v,
		CurrentSavings:   raw.CurrentSavings.v,
		RiskTolerance:    raw.RiskTolerance.v,
		Industry:         raw.Industry,
	}
	if r.Industry == "" {
		r.Industry = DefaultIndustry
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
