package models

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	rec := ParseRecord(Row{
		ColTotalCalories:   "520.5",
		ColRunningCalories: " 300 ",
		ColCyclingCalories: "220.5",
		ColRunningDistance: "5",
		ColCyclingDistance: "12.25",
		"Observacao":       "easy day",
	})

	assert.Equal(t, 520.5, rec.TotalCalories)
	assert.Equal(t, 300.0, rec.RunningCalories)
	assert.Equal(t, 220.5, rec.CyclingCalories)
	assert.Equal(t, 5.0, rec.RunningDistance)
	assert.Equal(t, 12.25, rec.CyclingDistance)
	assert.Empty(t, rec.InvalidFields())
}

func TestParseRecord_MalformedAndMissing(t *testing.T) {
	rec := ParseRecord(Row{
		ColTotalCalories:   "abc",
		ColRunningCalories: "",
		ColCyclingCalories: "10",
	})

	assert.True(t, math.IsNaN(rec.TotalCalories))
	assert.True(t, math.IsNaN(rec.RunningCalories))
	assert.Equal(t, 10.0, rec.CyclingCalories)
	// missing columns are NaN, not zero
	assert.True(t, math.IsNaN(rec.RunningDistance))
	assert.True(t, math.IsNaN(rec.CyclingDistance))

	assert.Equal(t, []string{
		ColTotalCalories,
		ColRunningCalories,
		ColRunningDistance,
		ColCyclingDistance,
	}, rec.InvalidFields())
}

func TestParseRecords_KeepsOrder(t *testing.T) {
	records := ParseRecords([]Row{
		{ColTotalCalories: "1"},
		{ColTotalCalories: "2"},
		{ColTotalCalories: "3"},
	})
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, float64(i+1), rec.TotalCalories)
	}
}

func TestDataStore_Replace(t *testing.T) {
	store := NewDataStore()
	assert.Nil(t, store.Current())

	loadedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	first := store.Replace("a.xlsx", Table{
		Headers: []string{ColTotalCalories},
		Rows:    []Row{{ColTotalCalories: "100"}, {ColTotalCalories: "x"}},
	}, loadedAt)

	require.NotNil(t, first)
	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, "a.xlsx", first.FileName)
	assert.Len(t, first.Records, 2)
	assert.Equal(t, []int{1, 2}, first.InvalidRows()) // every row misses distance columns
	assert.Same(t, first, store.Current())

	second := store.Replace("b.xlsx", Table{}, loadedAt.Add(time.Minute))
	assert.Equal(t, uint64(2), second.ID)
	assert.Empty(t, second.Records)
	assert.Same(t, second, store.Current())
}

func TestRenderCache(t *testing.T) {
	cache := NewRenderCache(1)

	_, ok := cache.Get(1, "calories")
	assert.False(t, ok)

	cache.Set(1, "calories", []byte("<div>chart</div>"))
	markup, ok := cache.Get(1, "calories")
	require.True(t, ok)
	assert.Equal(t, "<div>chart</div>", string(markup))

	_, ok = cache.Get(2, "calories")
	assert.False(t, ok)

	cache.Clear()
	_, ok = cache.Get(1, "calories")
	assert.False(t, ok)
}

func TestRenderCache_LargeChart(t *testing.T) {
	// a rendered chart page for a year of daily rows is about 20 KB
	markup := bytes.Repeat([]byte("x"), 20*1024)

	cache := NewRenderCache(0)
	cache.Set(1, "calories", markup)
	cached, ok := cache.Get(1, "calories")
	require.True(t, ok)
	assert.Len(t, cached, len(markup))

	// 1 MB only takes entries up to 1 KB, larger markup is skipped
	small := NewRenderCache(1)
	small.Set(1, "calories", markup)
	_, ok = small.Get(1, "calories")
	assert.False(t, ok)
}

func TestParseRecord_InfinityIsMalformed(t *testing.T) {
	rec := ParseRecord(Row{
		ColTotalCalories:   "Inf",
		ColRunningCalories: "-Infinity",
		ColCyclingCalories: "+inf",
		ColRunningDistance: "1e400",
		ColCyclingDistance: "4.5",
	})

	assert.True(t, math.IsNaN(rec.TotalCalories))
	assert.True(t, math.IsNaN(rec.RunningCalories))
	assert.True(t, math.IsNaN(rec.CyclingCalories))
	assert.True(t, math.IsNaN(rec.RunningDistance))
	assert.Equal(t, 4.5, rec.CyclingDistance)
	assert.Equal(t, []string{ColTotalCalories, ColRunningCalories, ColCyclingCalories, ColRunningDistance}, rec.InvalidFields())

	ds := &Dataset{Records: []SessionRecord{{}, rec}}
	assert.Equal(t, []int{2}, ds.InvalidRows())
}
