package streak

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	redisFieldCount      = "count"
	redisFieldLastAction = "last_action"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps the state in one redis hash. Both fields are set by a
// single HSET and a reset deletes the whole key.
type RedisStore struct {
	redisClient *redis.Client
	key         string
}

func NewRedisStore(redisClient *redis.Client, key string) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		key:         key,
	}
}

func (s *RedisStore) Load(ctx context.Context) (State, error) {
	values, err := s.redisClient.HGetAll(ctx, s.key).Result()
	if err != nil {
		return State{}, fmt.Errorf("redis hgetall %s: %w", s.key, err)
	}
	if len(values) == 0 {
		return Fresh(), nil
	}

	var state State
	if countStr, ok := values[redisFieldCount]; ok {
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return State{}, fmt.Errorf("parse streak count [%s]: %w", countStr, err)
		}
		state.Count = count
	}
	if lastActionStr, ok := values[redisFieldLastAction]; ok && lastActionStr != "" {
		lastAction, err := time.Parse(time.RFC3339Nano, lastActionStr)
		if err != nil {
			return State{}, fmt.Errorf("parse streak last action [%s]: %w", lastActionStr, err)
		}
		state.LastAction = &lastAction
	}

	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state State) error {
	if state.IsFresh() {
		if err := s.redisClient.Del(ctx, s.key).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", s.key, err)
		}
		return nil
	}

	lastAction := ""
	if state.LastAction != nil {
		lastAction = state.LastAction.Format(time.RFC3339Nano)
	}

	err := s.redisClient.HSet(
		ctx,
		s.key,
		redisFieldCount, strconv.Itoa(state.Count),
		redisFieldLastAction, lastAction,
	).Err()
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", s.key, err)
	}
	return nil
}
