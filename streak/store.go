package streak

import (
	"context"
	"sync"
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=streak_test

// Store persists the streak state. Save must write both fields together.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the state in process memory only
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

func NewMemoryStore(initial State) *MemoryStore {
	return &MemoryStore{state: copyState(initial)}
}

func (s *MemoryStore) Load(_ context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state), nil
}

func (s *MemoryStore) Save(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = copyState(state)
	return nil
}

func copyState(state State) State {
	if state.LastAction != nil {
		t := *state.LastAction
		state.LastAction = &t
	}
	return state
}
