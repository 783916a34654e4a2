package server

import (
	"bytes"
	"math"
	"testing"

	"github.com/fitstreak/models"
	"github.com/fitstreak/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSeries() stats.Series {
	return stats.Derive([]models.SessionRecord{
		{TotalCalories: 300, RunningCalories: 90, CyclingCalories: 210, RunningDistance: 5, CyclingDistance: 10},
		{TotalCalories: 400, RunningCalories: 120, CyclingCalories: 280, RunningDistance: 6, CyclingDistance: 12},
		{TotalCalories: math.NaN(), RunningCalories: 90, CyclingCalories: 210, RunningDistance: 4, CyclingDistance: math.NaN()},
	})
}

func TestChartValue(t *testing.T) {
	assert.Equal(t, 12.5, chartValue(12.5))
	assert.Equal(t, missingValue, chartValue(math.NaN()))
	assert.Equal(t, missingValue, chartValue(math.Inf(1)))
}

func TestGenerateOptionalLineItems(t *testing.T) {
	series := sampleSeries()
	items := generateOptionalLineItems(series.MovingAverage)
	require.Len(t, items, 3)
	assert.Equal(t, missingValue, items[0].Value)
	assert.Equal(t, missingValue, items[1].Value)
	// the NaN day makes the average NaN, rendered as a gap as well
	assert.Equal(t, missingValue, items[2].Value)

	bars := generateBarItems(series.TotalDistance)
	require.Len(t, bars, 3)
	assert.Equal(t, float64(15), bars[0].Value)
	assert.Equal(t, missingValue, bars[2].Value)
}

func TestGenerateCaloriesChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, generateCaloriesChart(sampleSeries()).Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "Calorias Totais")
	assert.Contains(t, out, "Kcal Acumuladas")
	assert.Contains(t, out, "dashed")
}

func TestGenerateSharesChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, generateSharesChart(sampleSeries()).Render(&buf))
	assert.Contains(t, buf.String(), "Corrida (30.00%)")
	assert.Contains(t, buf.String(), "Bike (70.00%)")

	// no calories at all: no percentages
	empty := stats.Derive([]models.SessionRecord{{}})
	buf.Reset()
	require.NoError(t, generateSharesChart(empty).Render(&buf))
	assert.NotContains(t, buf.String(), "Corrida (")
}

func TestRenderCharts_UsesCache(t *testing.T) {
	cache := models.NewRenderCache(models.DefaultRenderCacheMB)
	ds := &models.Dataset{ID: 7}
	cache.Set(7, chartDistances, []byte("<div>cached</div>"))

	rendered, err := renderCharts(ds, sampleSeries(), cache)
	require.NoError(t, err)
	require.Len(t, rendered, 3)
	assert.Equal(t, "<div>cached</div>", string(rendered[1]))

	markup, ok := cache.Get(7, chartCalories)
	require.True(t, ok)
	assert.Equal(t, string(rendered[0]), string(markup))
}

func TestRenderCharts_CachesYearOfRows(t *testing.T) {
	records := make([]models.SessionRecord, 365)
	for i := range records {
		records[i] = models.SessionRecord{
			TotalCalories:   float64(400 + i%90),
			RunningCalories: float64(150 + i%40),
			CyclingCalories: float64(250 + i%50),
			RunningDistance: 5.25,
			CyclingDistance: 12.75,
		}
	}

	cache := models.NewRenderCache(models.DefaultRenderCacheMB)
	ds := &models.Dataset{ID: 1}
	rendered, err := renderCharts(ds, stats.Derive(records), cache)
	require.NoError(t, err)

	for i, name := range chartNames {
		markup, ok := cache.Get(ds.ID, name)
		require.True(t, ok, name)
		assert.Equal(t, string(rendered[i]), string(markup))
	}
}
