package streak

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultResetAfterDays is the number of calendar days without an
// increment after which the streak starts over
const DefaultResetAfterDays = 4

var ErrAlreadyDone = errors.New("streak already increased today")

// Observer is told about every transition, e.g. to export metrics
type Observer interface {
	StreakIncremented(count int)
	StreakRejected()
	StreakReset(previousCount int)
}

// Status is the evaluated state at a given moment
type Status struct {
	State
	DaysSince    int           `json:"daysSinceLastAction"`
	CanIncrement bool          `json:"canIncrement"`
	Remaining    time.Duration `json:"-"`
	Countdown    string        `json:"nextDayIn"`
}

type Machine struct {
	mu         sync.Mutex
	store      Store
	clock      Clock
	loc        *time.Location
	resetAfter int
	observer   Observer
}

type Option func(*Machine)

// WithLocation sets the time zone whose midnights delimit the days
func WithLocation(loc *time.Location) Option {
	return func(m *Machine) {
		if loc != nil {
			m.loc = loc
		}
	}
}

func WithResetAfterDays(days int) Option {
	return func(m *Machine) {
		if days > 0 {
			m.resetAfter = days
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(m *Machine) {
		m.observer = observer
	}
}

func NewMachine(store Store, clock Clock, opts ...Option) *Machine {
	m := &Machine{
		store:      store,
		clock:      clock,
		loc:        time.Local,
		resetAfter: DefaultResetAfterDays,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Location returns the time zone used for day boundaries
func (m *Machine) Location() *time.Location {
	return m.loc
}

// Evaluate loads the persisted state, applies the automatic reset rule and
// returns the resulting status. Evaluating again at the same moment does not
// change or write anything.
func (m *Machine) Evaluate(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.evaluate(ctx, m.clock.Now())
}

// Increment adds one day to the streak. It is a no-op returning
// ErrAlreadyDone when the streak was already increased today.
func (m *Machine) Increment(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	status, err := m.evaluate(ctx, now)
	if err != nil {
		return Status{}, err
	}

	if !status.CanIncrement {
		if m.observer != nil {
			m.observer.StreakRejected()
		}
		return status, ErrAlreadyDone
	}

	actionAt := now
	next := State{
		Count:      status.Count + 1,
		LastAction: &actionAt,
	}
	if err := m.store.Save(ctx, next); err != nil {
		return Status{}, fmt.Errorf("save incremented streak: %w", err)
	}

	log.Debugf("streak increased to %d", next.Count)
	if m.observer != nil {
		m.observer.StreakIncremented(next.Count)
	}

	return m.status(next, now), nil
}

func (m *Machine) evaluate(ctx context.Context, now time.Time) (Status, error) {
	state, err := m.store.Load(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("load streak: %w", err)
	}

	next, reset := m.transition(state, now)
	if !next.equal(state) {
		if err := m.store.Save(ctx, next); err != nil {
			return Status{}, fmt.Errorf("save evaluated streak: %w", err)
		}
	}

	// reported only once the reset is persisted
	if reset && m.observer != nil {
		m.observer.StreakReset(state.Count)
	}

	return m.status(next, now), nil
}

// transition applies the automatic rules. reset is true when an active
// streak expired.
func (m *Machine) transition(state State, now time.Time) (next State, reset bool) {
	if !state.Valid() {
		log.Warnf("invalid persisted streak [count %d, last action set: %t], starting over", state.Count, state.LastAction != nil)
		return Fresh(), false
	}
	if state.LastAction == nil {
		return state, false
	}

	if days := DaysSince(*state.LastAction, now, m.loc); days >= m.resetAfter {
		log.Infof("no streak increase for %d days, resetting streak of %d", days, state.Count)
		return Fresh(), true
	}

	return state, false
}

func (m *Machine) status(state State, now time.Time) Status {
	remaining := UntilMidnight(now, m.loc)
	status := Status{
		State:        state,
		CanIncrement: true,
		Remaining:    remaining,
		Countdown:    FormatCountdown(remaining),
	}
	if state.LastAction != nil {
		status.DaysSince = DaysSince(*state.LastAction, now, m.loc)
		status.CanIncrement = status.DaysSince >= 1
	}
	return status
}
