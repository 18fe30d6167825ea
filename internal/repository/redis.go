package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"zara/catalog/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type redisAggregateStore struct {
	redisClient *redis.Client
	keyPrefix   string
}

// NewRedisAggregateStore keeps the aggregate in the hash <prefix>products,
// one field per category key holding its JSON product list.
func NewRedisAggregateStore(redisClient *redis.Client, keyPrefix string) AggregateRepository {
	return &redisAggregateStore{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

func (s *redisAggregateStore) productsKey() string {
	return s.keyPrefix + "products"
}

func (s *redisAggregateStore) runIDKey() string {
	return s.keyPrefix + "products:run_id"
}

// SaveAggregate swaps the previous hash for the new one in a MULTI/EXEC block
func (s *redisAggregateStore) SaveAggregate(ctx context.Context, runID string, aggregate *domain.Aggregate) error {
	fields, err := hashFields(aggregate)
	if err != nil {
		return err
	}

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.productsKey())
		if len(fields) > 0 {
			pipe.HSet(ctx, s.productsKey(), fields)
		}
		pipe.Set(ctx, s.runIDKey(), runID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save aggregate to redis: %w", err)
	}

	log.Infof("🟥 Saved %d categories to Redis hash %s", len(fields), s.productsKey())
	return nil
}

func hashFields(aggregate *domain.Aggregate) (map[string]any, error) {
	fields := make(map[string]any, aggregate.Len())
	for _, key := range aggregate.Keys() {
		products, _ := aggregate.Get(key)
		data, err := json.Marshal(products)
		if err != nil {
			return nil, fmt.Errorf("failed to encode products of %s: %w", key, err)
		}
		fields[key] = string(data)
	}
	return fields, nil
}
