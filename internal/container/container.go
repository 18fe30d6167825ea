package container

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"zara/catalog/internal/client"
	"zara/catalog/internal/config"
	"zara/catalog/internal/domain"
	"zara/catalog/internal/metrics"
	"zara/catalog/internal/proxy"
	"zara/catalog/internal/repository"
	"zara/catalog/internal/service"
	"zara/catalog/internal/state"
	"zara/catalog/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const metricsNamespace = "zara_catalog"

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Client       client.CatalogClient
	Metrics      *metrics.Recorder
	Writers      []storage.Writer                 // The aggregate file always comes first
	Repositories []repository.AggregateRepository // Optional Postgres and Redis mirrors
	StateManager state.RunStateManager            // nil unless Redis is enabled

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized.
// Postgres, Redis and S3 are only connected when enabled.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	proxySupplier, err := proxy.NewProxySupplier(ctx, cfg.Catalog.Proxies, cfg.Catalog.BaseURL+"/categories", cfg.Catalog.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
	}

	container.Client = client.NewZaraClient(cfg.Catalog, proxySupplier)
	container.Metrics = metrics.New(metricsNamespace)
	container.Service = service.NewService(container.Client, container.Metrics, cfg.Aggregator)

	container.Writers = append(container.Writers, storage.NewFileWriter(cfg.Output.File))

	if cfg.S3.Enabled {
		s3Writer, err := storage.NewS3Writer(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 output: %w", err)
		}
		container.Writers = append(container.Writers, s3Writer)
	}

	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres pool: %w", err)
		}
		container.db = db

		if err := db.Ping(ctx); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		log.Info("✅ Connected to Postgres successfully")

		container.Repositories = append(container.Repositories, repository.NewAggregateRepository(db))
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		container.redis = rdb

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		container.Repositories = append(container.Repositories, repository.NewRedisAggregateStore(rdb, cfg.Redis.KeyPrefix))
		container.StateManager = state.NewRedisRunStateManager(rdb, cfg.Redis.KeyPrefix)
	}

	return container, nil
}

// Run builds the catalog once and writes it to every configured output
func (c *Container) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := log.WithField("run_id", runID)
	startedAt := time.Now().UTC()

	c.logLastRun(ctx, logger)

	catalog := c.Service.BuildCatalog(ctx)

	data, err := encodeAggregate(catalog.Aggregate, c.Config.Output.Pretty)
	if err != nil {
		return err
	}

	for _, writer := range c.Writers {
		if err := writer.Write(ctx, data); err != nil {
			return fmt.Errorf("failed to write aggregate to %s: %w", writer.Name(), err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, repo := range c.Repositories {
		g.Go(func() error {
			return repo.SaveAggregate(gctx, runID, catalog.Aggregate)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	summary := domain.RunSummary{
		RunID:            runID,
		StartedAt:        startedAt,
		FinishedAt:       time.Now().UTC(),
		Categories:       catalog.Categories,
		FailedCategories: catalog.FailedCategories,
		Products:         catalog.Aggregate.ProductCount(),
		DuplicateKeys:    catalog.DuplicateKeys,
	}

	c.Metrics.ObserveRun(summary)
	if path := c.Config.Metrics.Textfile; path != "" {
		if err := c.Metrics.WriteTextfile(path); err != nil {
			return err
		}
	}

	if c.StateManager != nil {
		if err := c.StateManager.SaveRun(ctx, summary); err != nil {
			logger.Warnf("⚠️ Could not save run state: %v", err)
		}
	}

	logger.Infof("🎉 Saved %d categories with %d products (%d failed) in %s",
		catalog.Aggregate.Len(), summary.Products, summary.FailedCategories, summary.Duration().Round(time.Millisecond))
	return nil
}

func (c *Container) logLastRun(ctx context.Context, logger *log.Entry) {
	if c.StateManager == nil {
		return
	}

	last, err := c.StateManager.LastRun(ctx)
	switch {
	case errors.Is(err, domain.ErrNoRunRecorded):
		logger.Info("No previous run recorded")
	case err != nil:
		logger.Warnf("⚠️ Could not read previous run: %v", err)
	default:
		logger.Infof("Previous run %s finished at %s with %d categories and %d products",
			last.RunID, last.FinishedAt.Format(time.RFC3339), last.Categories, last.Products)
	}
}

func encodeAggregate(aggregate *domain.Aggregate, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(aggregate, "", "  ")
	} else {
		data, err = json.Marshal(aggregate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode aggregate: %w", err)
	}
	return data, nil
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	var errs []error
	if c.Client != nil {
		if err := c.Client.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis client: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Info("Container shut down successfully")
	return nil
}
