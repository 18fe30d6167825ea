package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"zara/catalog/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RunStateManager remembers the summary of the last finished run
type RunStateManager interface {
	LastRun(ctx context.Context) (*domain.RunSummary, error)
	SaveRun(ctx context.Context, summary domain.RunSummary) error
}

type redisRunStateManager struct {
	redisClient *redis.Client
	key         string
}

func NewRedisRunStateManager(redisClient *redis.Client, keyPrefix string) RunStateManager {
	return &redisRunStateManager{
		redisClient: redisClient,
		key:         keyPrefix + "run:last",
	}
}

// LastRun returns domain.ErrNoRunRecorded when no run was saved yet
func (s *redisRunStateManager) LastRun(ctx context.Context) (*domain.RunSummary, error) {
	val, err := s.redisClient.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoRunRecorded
		}
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}

	var summary domain.RunSummary
	if err := json.Unmarshal(val, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode last run: %w", err)
	}

	return &summary, nil
}

func (s *redisRunStateManager) SaveRun(ctx context.Context, summary domain.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", summary.RunID, err)
	}

	if err := s.redisClient.Set(ctx, s.key, data, 0).Err(); err != nil { // No expiration
		return fmt.Errorf("failed to save run %s: %w", summary.RunID, err)
	}
	return nil
}
