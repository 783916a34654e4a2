// Package stats derives the numeric series shown on the dashboard from the
// uploaded session records. Every function is pure and never fails: a value
// that could not be parsed is NaN and stays NaN through every sum.
package stats

import (
	"math"
	"strconv"

	"github.com/fitstreak/models"
)

// DefaultWindow is the moving average period used by the calories chart
const DefaultWindow = 3

// Totals are the calories summed over all records, per category
type Totals struct {
	Running float64
	Cycling float64
}

// Shares are the category percentages of the combined calories
type Shares struct {
	Running float64
	Cycling float64
}

// Cumulative returns the running sum of the total calories
func Cumulative(records []models.SessionRecord) []float64 {
	result := make([]float64, len(records))
	var acc float64
	for i, rec := range records {
		acc += rec.TotalCalories
		result[i] = acc
	}
	return result
}

// MovingAverage returns the mean total calories over the last window records.
// Points without enough history are nil, which renders as a gap.
func MovingAverage(records []models.SessionRecord, window int) []*float64 {
	if window < 1 {
		window = 1
	}
	result := make([]*float64, len(records))
	for i := window - 1; i < len(records); i++ {
		var sum float64
		for _, rec := range records[i-window+1 : i+1] {
			sum += rec.TotalCalories
		}
		avg := sum / float64(window)
		result[i] = &avg
	}
	return result
}

// TotalDistance sums running and cycling distance of each record
func TotalDistance(records []models.SessionRecord) []float64 {
	result := make([]float64, len(records))
	for i, rec := range records {
		result[i] = rec.RunningDistance + rec.CyclingDistance
	}
	return result
}

func CategoryTotals(records []models.SessionRecord) Totals {
	var totals Totals
	for _, rec := range records {
		totals.Running += rec.RunningCalories
		totals.Cycling += rec.CyclingCalories
	}
	return totals
}

// Percentages returns each category share in [0, 100] rounded to two decimals.
// When the combined total is zero there is nothing to split: both shares are
// zero and ok is false.
func Percentages(totals Totals) (_ Shares, ok bool) {
	sum := totals.Running + totals.Cycling
	if sum == 0 {
		return Shares{}, false
	}
	return Shares{
		Running: round2(totals.Running * 100 / sum),
		Cycling: round2(totals.Cycling * 100 / sum),
	}, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatPercent renders a share the way the pie chart labels it, e.g. "30.00%"
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return "NaN%"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
