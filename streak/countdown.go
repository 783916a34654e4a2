package streak

import (
	"context"
	"fmt"
	"time"
)

// UntilMidnight returns the time left until the next local midnight.
// Exactly at midnight it is zero; a moment later it counts down from 24h again.
func UntilMidnight(now time.Time, loc *time.Location) time.Duration {
	start := StartOfDay(now, loc)
	if now.Equal(start) {
		return 0
	}
	y, m, d := start.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, start.Location())
	return next.Sub(now)
}

// FormatCountdown renders whole seconds as HH:MM:SS
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total / 60) % 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Ticker is a handle on a periodic task. The task stops when Stop is called,
// when its context is done, or when the task itself returns an error.
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartTicker runs fn right away and then on every interval.
func StartTicker(ctx context.Context, interval time.Duration, fn func(now time.Time) error) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()

		if err := fn(time.Now()); err != nil {
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if err := fn(now); err != nil {
					return
				}
			}
		}
	}()

	return t
}

// Stop cancels the task and waits until it has exited. It is safe to call
// more than once, but not from inside the task.
func (t *Ticker) Stop() {
	t.cancel()
	<-t.done
}

// Done is closed once the task has exited
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}
