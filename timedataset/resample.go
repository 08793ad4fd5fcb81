package timedataset

import (
	"time"
)

// ResampleMonthly collapses the bars into one bar per calendar month. Each monthly bar takes
// the time and close of the last bar in the month and the total volume of the month. Months are
// taken in the location of each bar's timestamp.
func (ps *PriceSeries) ResampleMonthly() *PriceSeries {
	res := &PriceSeries{}
	var lastYear int
	var lastMonth time.Month
	for i, t := range ps.T {
		year, month, _ := t.Date()
		n := len(res.T)
		if n > 0 && year == lastYear && month == lastMonth {
			res.T[n-1] = t
			res.Close[n-1] = ps.Close[i]
			res.Volume[n-1] += ps.Volume[i]
			continue
		}
		res.T = append(res.T, t)
		res.Close = append(res.Close, ps.Close[i])
		res.Volume = append(res.Volume, ps.Volume[i])
		lastYear, lastMonth = year, month
	}
	return res
}
