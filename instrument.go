package stockforest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aouyang1/go-stockforest/timedataset"

	"github.com/goccy/go-json"
)

var (
	ErrNoInstruments  = errors.New("no instruments in history")
	ErrInvalidBarTime = errors.New("invalid bar time")
)

var barTimeLayouts = []string{time.RFC3339, "2006-01-02"}

// Instrument is a listed company along with its price history.
type Instrument struct {
	Company  string
	Ticker   string
	Industry string
	Series   *timedataset.PriceSeries
}

// InstrumentPrediction is a prediction labeled with the instrument it was made for.
type InstrumentPrediction struct {
	Company  string `json:"company"`
	Ticker   string `json:"ticker"`
	Industry string `json:"industry"`
	Prediction
}

type historyBar struct {
	Time   string  `json:"time"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type historyRecord struct {
	Company  string       `json:"company"`
	Ticker   string       `json:"ticker"`
	Industry string       `json:"industry"`
	Bars     []historyBar `json:"bars"`
}

// ReadHistory decodes a JSON array of instruments with their bars. Bar times are RFC 3339
// timestamps or plain dates.
func ReadHistory(r io.Reader) ([]Instrument, error) {
	var records []historyRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("unable to decode history, %w", err)
	}
	res := make([]Instrument, 0, len(records))
	for _, rec := range records {
		t := make([]time.Time, len(rec.Bars))
		closes := make([]float64, len(rec.Bars))
		volume := make([]float64, len(rec.Bars))
		for i, bar := range rec.Bars {
			bt, err := parseBarTime(bar.Time)
			if err != nil {
				return nil, fmt.Errorf("ticker %s bar %d, %w", rec.Ticker, i, err)
			}
			t[i] = bt
			closes[i] = bar.Close
			volume[i] = bar.Volume
		}
		series, err := timedataset.NewPriceSeries(t, closes, volume)
		if err != nil {
			return nil, fmt.Errorf("invalid history for ticker %s, %w", rec.Ticker, err)
		}
		res = append(res, Instrument{
			Company:  rec.Company,
			Ticker:   rec.Ticker,
			Industry: rec.Industry,
			Series:   series,
		})
	}
	return res, nil
}

func parseBarTime(s string) (time.Time, error) {
	for _, layout := range barTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrInvalidBarTime)
}

// WriteHistory encodes instruments in the format read by ReadHistory.
func WriteHistory(w io.Writer, instruments []Instrument) error {
	records := make([]historyRecord, 0, len(instruments))
	for _, inst := range instruments {
		bars := make([]historyBar, inst.Series.Len())
		for i := range bars {
			bars[i] = historyBar{
				Time:   inst.Series.T[i].Format(time.RFC3339),
				Close:  inst.Series.Close[i],
				Volume: inst.Series.Volume[i],
			}
		}
		records = append(records, historyRecord{
			Company:  inst.Company,
			Ticker:   inst.Ticker,
			Industry: inst.Industry,
			Bars:     bars,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// LoadHistory reads a history file, or every .json file of a directory in name order.
func LoadHistory(path string) ([]Instrument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	paths := []string{path}
	if info.IsDir() {
		paths, err = filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(paths)
	}

	var res []Instrument
	for _, p := range paths {
		instruments, err := readHistoryFile(p)
		if err != nil {
			return nil, err
		}
		res = append(res, instruments...)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%s, %w", path, ErrNoInstruments)
	}
	return res, nil
}

func readHistoryFile(path string) ([]Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	instruments, err := ReadHistory(f)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", path, err)
	}
	return instruments, nil
}

// Monthly returns the instruments with their series resampled to one bar per month.
func Monthly(instruments []Instrument) []Instrument {
	res := make([]Instrument, len(instruments))
	for i, inst := range instruments {
		res[i] = inst
		res[i].Series = inst.Series.ResampleMonthly()
	}
	return res
}

// Series returns the price series of every instrument in order.
func Series(instruments []Instrument) []*timedataset.PriceSeries {
	res := make([]*timedataset.PriceSeries, len(instruments))
	for i, inst := range instruments {
		res[i] = inst.Series
	}
	return res
}
