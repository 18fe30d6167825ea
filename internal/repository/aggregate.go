package repository

import (
	"context"
	"fmt"

	"zara/catalog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// AggregateRepository mirrors a finished aggregate into a store
type AggregateRepository interface {
	SaveAggregate(ctx context.Context, runID string, aggregate *domain.Aggregate) error
}

// txBeginner is satisfied by *pgxpool.Pool
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type aggregateRepository struct {
	db txBeginner
}

func NewAggregateRepository(db *pgxpool.Pool) AggregateRepository {
	return &aggregateRepository{
		db: db,
	}
}

const createCategoryProductsTable = `
	CREATE TABLE IF NOT EXISTS category_products (
		key        TEXT PRIMARY KEY,
		run_id     TEXT NOT NULL,
		products   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

const upsertCategoryProducts = `
	INSERT INTO category_products (key, run_id, products, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (key)
	DO UPDATE SET run_id = $2, products = $3, updated_at = NOW()`

const deleteStaleCategoryProducts = `DELETE FROM category_products WHERE run_id <> $1`

// SaveAggregate replaces the table contents with the aggregate in a single transaction.
// Keys missing from this run are removed.
func (r *aggregateRepository) SaveAggregate(ctx context.Context, runID string, aggregate *domain.Aggregate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createCategoryProductsTable); err != nil {
		return fmt.Errorf("failed to create category_products table: %w", err)
	}

	batch := &pgx.Batch{}
	for _, key := range aggregate.Keys() {
		products, _ := aggregate.Get(key)
		batch.Queue(upsertCategoryProducts, key, runID, products)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to save category products: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to save category products: %w", err)
	}

	tag, err := tx.Exec(ctx, deleteStaleCategoryProducts, runID)
	if err != nil {
		return fmt.Errorf("failed to delete stale category products: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit category products: %w", err)
	}

	log.Infof("🐘 Saved %d categories to Postgres, removed %d stale ones", batch.Len(), tag.RowsAffected())
	return nil
}
