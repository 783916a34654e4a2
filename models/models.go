package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Column names expected in the first row of the uploaded spreadsheet
const (
	ColTotalCalories   = "Kcal_Total"
	ColRunningCalories = "Kcal_Corrida"
	ColCyclingCalories = "Kcal_Bike"
	ColRunningDistance = "Distancia_Corrida"
	ColCyclingDistance = "Distancia_Bike"
)

// Columns lists the recognized columns in a stable order
var Columns = []string{
	ColTotalCalories,
	ColRunningCalories,
	ColCyclingCalories,
	ColRunningDistance,
	ColCyclingDistance,
}

// Row is one raw spreadsheet row, column name to cell text
type Row map[string]string

// Table is the raw result of ingesting a spreadsheet
type Table struct {
	Headers []string
	Rows    []Row
}

// SessionRecord is one parsed workout session. Values that could not be
// parsed are NaN so they stay visible in every derived series.
type SessionRecord struct {
	TotalCalories   float64 `json:"totalCalories"`
	RunningCalories float64 `json:"runningCalories"`
	CyclingCalories float64 `json:"cyclingCalories"`
	RunningDistance float64 `json:"runningDistance"`
	CyclingDistance float64 `json:"cyclingDistance"`
}

// ParseRecord converts a raw row into the fixed SessionRecord shape.
// A missing column or a cell that is not a finite number becomes NaN.
func ParseRecord(row Row) SessionRecord {
	return SessionRecord{
		TotalCalories:   parseNumber(row, ColTotalCalories),
		RunningCalories: parseNumber(row, ColRunningCalories),
		CyclingCalories: parseNumber(row, ColCyclingCalories),
		RunningDistance: parseNumber(row, ColRunningDistance),
		CyclingDistance: parseNumber(row, ColCyclingDistance),
	}
}

// ParseRecords parses all rows keeping the upload order
func ParseRecords(rows []Row) []SessionRecord {
	records := make([]SessionRecord, len(rows))
	for i, row := range rows {
		records[i] = ParseRecord(row)
	}
	return records
}

func parseNumber(row Row, column string) float64 {
	raw, ok := row[column]
	if !ok {
		return math.NaN()
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	// "Inf" and "Infinity" parse, but are no workout value
	if err != nil || math.IsInf(val, 0) {
		return math.NaN()
	}
	return val
}

// InvalidFields returns the column names whose value is NaN
func (r SessionRecord) InvalidFields() []string {
	var invalid []string
	values := []float64{
		r.TotalCalories,
		r.RunningCalories,
		r.CyclingCalories,
		r.RunningDistance,
		r.CyclingDistance,
	}
	for i, v := range values {
		if math.IsNaN(v) {
			invalid = append(invalid, Columns[i])
		}
	}
	return invalid
}

// Dataset is everything derived from one successful upload
type Dataset struct {
	ID       uint64
	FileName string
	LoadedAt time.Time
	Table    Table
	Records  []SessionRecord
}

// InvalidRows returns the 1-based day indexes of records with NaN fields
func (d *Dataset) InvalidRows() []int {
	var rows []int
	for i, rec := range d.Records {
		if len(rec.InvalidFields()) > 0 {
			rows = append(rows, i+1)
		}
	}
	return rows
}
