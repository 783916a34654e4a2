package stats

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/fitstreak/models"
)

// Series bundles everything the charts need, index aligned with the records.
// Labels are the day indexes "1".."N".
type Series struct {
	Labels          []string
	Calories        []float64
	MovingAverage   []*float64
	Cumulative      []float64
	RunningDistance []float64
	CyclingDistance []float64
	TotalDistance   []float64
	Totals          Totals
	Shares          Shares
	SharesDefined   bool
}

func Derive(records []models.SessionRecord) Series {
	s := Series{
		Labels:          make([]string, len(records)),
		Calories:        make([]float64, len(records)),
		RunningDistance: make([]float64, len(records)),
		CyclingDistance: make([]float64, len(records)),
		MovingAverage:   MovingAverage(records, DefaultWindow),
		Cumulative:      Cumulative(records),
		TotalDistance:   TotalDistance(records),
		Totals:          CategoryTotals(records),
	}
	for i, rec := range records {
		s.Labels[i] = strconv.Itoa(i + 1)
		s.Calories[i] = rec.TotalCalories
		s.RunningDistance[i] = rec.RunningDistance
		s.CyclingDistance[i] = rec.CyclingDistance
	}
	s.Shares, s.SharesDefined = Percentages(s.Totals)
	return s
}

// JSON cannot carry NaN, so NaN values are written as the string "NaN"
// and undefined points as null.
func jsonValue(v float64) interface{} {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return v
}

func jsonValues(values []float64) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = jsonValue(v)
	}
	return out
}

func jsonOptionalValues(values []*float64) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if v != nil {
			out[i] = jsonValue(*v)
		}
	}
	return out
}

func (s Series) MarshalJSON() ([]byte, error) {
	type categories struct {
		Running interface{} `json:"running"`
		Cycling interface{} `json:"cycling"`
	}

	var shares *categories
	if s.SharesDefined {
		shares = &categories{
			Running: jsonValue(s.Shares.Running),
			Cycling: jsonValue(s.Shares.Cycling),
		}
	}

	return json.Marshal(struct {
		Labels          []string      `json:"labels"`
		Calories        []interface{} `json:"calories"`
		MovingAverage   []interface{} `json:"movingAverage"`
		Cumulative      []interface{} `json:"cumulative"`
		RunningDistance []interface{} `json:"runningDistance"`
		CyclingDistance []interface{} `json:"cyclingDistance"`
		TotalDistance   []interface{} `json:"totalDistance"`
		Totals          categories    `json:"totals"`
		Shares          *categories   `json:"shares"`
	}{
		Labels:          s.Labels,
		Calories:        jsonValues(s.Calories),
		MovingAverage:   jsonOptionalValues(s.MovingAverage),
		Cumulative:      jsonValues(s.Cumulative),
		RunningDistance: jsonValues(s.RunningDistance),
		CyclingDistance: jsonValues(s.CyclingDistance),
		TotalDistance:   jsonValues(s.TotalDistance),
		Totals: categories{
			Running: jsonValue(s.Totals.Running),
			Cycling: jsonValue(s.Totals.Cycling),
		},
		Shares: shares,
	})
}
