package streak_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/fitstreak/streak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysSince(t *testing.T) {
	base := time.Date(2025, 3, 10, 23, 59, 0, 0, testLoc)

	for caseName, tc := range map[string]struct {
		to   time.Time
		want int
	}{
		"same instant":        {to: base, want: 0},
		"two minutes later":   {to: base.Add(2 * time.Minute), want: 1},
		"earlier same day":    {to: time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc), want: 0},
		"almost two days":     {to: time.Date(2025, 3, 12, 23, 58, 0, 0, testLoc), want: 2},
		"four midnights":      {to: time.Date(2025, 3, 14, 0, 0, 0, 0, testLoc), want: 4},
		"across month":        {to: time.Date(2025, 4, 1, 12, 0, 0, 0, testLoc), want: 22},
		"clock went backward": {to: base.Add(-48 * time.Hour), want: 0},
	} {
		t.Run(caseName, func(t *testing.T) {
			assert.Equal(t, tc.want, streak.DaysSince(base, tc.to, testLoc))
		})
	}
}

func TestDaysSince_UsesLocalDates(t *testing.T) {
	// 02:00 UTC is still the previous evening in BRT
	a := time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 11, 4, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, streak.DaysSince(a, b, testLoc))
	assert.Equal(t, 0, streak.DaysSince(a, b, time.UTC))
}

func TestDaysSince_DST(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// the night of 2025-03-09 has only 23 hours
	a := time.Date(2025, 3, 8, 23, 30, 0, 0, newYork)
	b := time.Date(2025, 3, 10, 0, 10, 0, 0, newYork)
	assert.Equal(t, 2, streak.DaysSince(a, b, newYork))

	// and the night of 2025-11-02 has 25
	a = time.Date(2025, 11, 2, 0, 10, 0, 0, newYork)
	b = time.Date(2025, 11, 2, 23, 50, 0, 0, newYork)
	assert.Equal(t, 0, streak.DaysSince(a, b, newYork))
}

func TestUntilMidnight(t *testing.T) {
	midnight := time.Date(2025, 3, 11, 0, 0, 0, 0, testLoc)

	assert.Equal(t, time.Duration(0), streak.UntilMidnight(midnight, testLoc))
	assert.Equal(t, "00:00:00", streak.FormatCountdown(streak.UntilMidnight(midnight, testLoc)))

	oneSecondLater := midnight.Add(time.Second)
	assert.Equal(t, 24*time.Hour-time.Second, streak.UntilMidnight(oneSecondLater, testLoc))
	assert.Equal(t, "23:59:59", streak.FormatCountdown(streak.UntilMidnight(oneSecondLater, testLoc)))

	justBefore := midnight.Add(-time.Second)
	assert.Equal(t, "00:00:01", streak.FormatCountdown(streak.UntilMidnight(justBefore, testLoc)))

	halfSecondBefore := midnight.Add(-500 * time.Millisecond)
	assert.Equal(t, "00:00:00", streak.FormatCountdown(streak.UntilMidnight(halfSecondBefore, testLoc)))

	afternoon := time.Date(2025, 3, 11, 13, 45, 30, 0, testLoc)
	assert.Equal(t, "10:14:30", streak.FormatCountdown(streak.UntilMidnight(afternoon, testLoc)))
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "00:00:00", streak.FormatCountdown(-time.Minute))
	assert.Equal(t, "01:02:03", streak.FormatCountdown(time.Hour+2*time.Minute+3*time.Second+900*time.Millisecond))
}

func TestTicker_StopEndsTask(t *testing.T) {
	var calls atomic.Int32
	ticker := streak.StartTicker(testContext(t), 5*time.Millisecond, func(time.Time) error {
		calls.Add(1)
		return nil
	})

	require.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, time.Millisecond)

	ticker.Stop()
	stoppedAt := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stoppedAt, calls.Load())

	// stopping twice is fine
	ticker.Stop()
}

func TestTicker_TaskErrorEndsTask(t *testing.T) {
	var calls atomic.Int32
	ticker := streak.StartTicker(testContext(t), time.Millisecond, func(time.Time) error {
		if calls.Add(1) == 2 {
			return errors.New("client went away")
		}
		return nil
	})

	select {
	case <-ticker.Done():
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop after task error")
	}
	assert.Equal(t, int32(2), calls.Load())
	ticker.Stop()
}

func TestTicker_RunsImmediately(t *testing.T) {
	called := make(chan struct{}, 1)
	ticker := streak.StartTicker(testContext(t), time.Hour, func(time.Time) error {
		called <- struct{}{}
		return nil
	})
	defer ticker.Stop()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("task did not run right away")
	}
}

// testContext stands in for testing.T.Context (Go 1.24+): the context is
// cancelled when the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
