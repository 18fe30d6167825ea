package state

import (
	"context"
	"os"
	"testing"
	"time"

	"zara/catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisRunStateManager(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	prefix := "zara-test:" + uuid.NewString() + ":"
	t.Cleanup(func() { client.Del(ctx, prefix+"run:last") })

	manager := NewRedisRunStateManager(client, prefix)

	_, err := manager.LastRun(ctx)
	assert.ErrorIs(t, err, domain.ErrNoRunRecorded)

	started := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	summary := domain.RunSummary{
		RunID:            "run-1",
		StartedAt:        started,
		FinishedAt:       started.Add(90 * time.Second),
		Categories:       120,
		FailedCategories: 2,
		Products:         4800,
		DuplicateKeys:    []string{"sale"},
	}
	require.NoError(t, manager.SaveRun(ctx, summary))

	last, err := manager.LastRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary, *last)
	assert.Equal(t, 90*time.Second, last.Duration())
}

func TestRedisRunStateManager_Key(t *testing.T) {
	manager := NewRedisRunStateManager(nil, "zara:").(*redisRunStateManager)
	assert.Equal(t, "zara:run:last", manager.key)
}
