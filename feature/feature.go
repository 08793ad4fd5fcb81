// Package feature derives the technical indicators a return model is trained on from a monthly
// price history.
package feature

// Indicator names one column of the feature matrix.
type Indicator string

const (
	Return1M    Indicator = "return_1m"
	Return3M    Indicator = "return_3m"
	Return6M    Indicator = "return_6m"
	SMA3Cross   Indicator = "sma3_cross"
	SMA6Cross   Indicator = "sma6_cross"
	RSI         Indicator = "rsi"
	MACDSignal  Indicator = "macd_signal"
	Volatility  Indicator = "volatility"
	VolumeRatio Indicator = "volume_ratio"
)

// indicators is the column order of every feature row.
var indicators = []Indicator{
	Return1M, Return3M, Return6M,
	SMA3Cross, SMA6Cross, RSI,
	MACDSignal, Volatility, VolumeRatio,
}

func (i Indicator) String() string {
	return string(i)
}

// Names returns the indicator names in column order.
func Names() []string {
	names := make([]string, len(indicators))
	for i, ind := range indicators {
		names[i] = ind.String()
	}
	return names
}

// NumFeatures is the width of a feature row.
func NumFeatures() int {
	return len(indicators)
}
