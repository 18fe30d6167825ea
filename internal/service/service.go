package service

import (
	"context"
	"runtime"
	"time"

	"zara/catalog/internal/client"
	"zara/catalog/internal/config"
	"zara/catalog/internal/domain"
	"zara/catalog/internal/metrics"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	client        client.CatalogClient
	metrics       *metrics.Recorder
	concurrent    bool
	maxWorkers    int
	progressEvery int
}

func NewService(client client.CatalogClient, recorder *metrics.Recorder, cfg config.AggregatorConfig) *Service {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	return &Service{
		client:        client,
		metrics:       recorder,
		concurrent:    cfg.Concurrent,
		maxWorkers:    maxWorkers,
		progressEvery: cfg.ProgressEvery,
	}
}

// categoryResult is one finished fetch on its way to the collector
type categoryResult struct {
	category domain.Category
	products []domain.Product
	failed   bool
}

// BuildCatalog resolves the leaf categories and fetches the products of each one
func (s *Service) BuildCatalog(ctx context.Context) *domain.Catalog {
	categories, err := s.client.GetCategories(ctx)
	if err != nil {
		log.Errorf("❌ When fetching categories: %v", err)
		categories = []domain.Category{}
	}

	s.metrics.CategoriesDiscovered(len(categories))
	log.Infof("🏗️ Building Zara database with %d categories.", len(categories))

	return s.Aggregate(ctx, categories)
}

// Aggregate fetches products for every category and installs them under the category key.
// A category whose fetch fails still gets an entry with no products. When keys repeat,
// the last installed category wins.
func (s *Service) Aggregate(ctx context.Context, categories []domain.Category) *domain.Catalog {
	keys := lo.Map(categories, func(c domain.Category, _ int) string { return c.Key })
	duplicates := lo.FindDuplicates(keys)
	if len(duplicates) > 0 {
		log.Warnf("⚠️ %d category keys are shared by several categories, later ones overwrite earlier ones: %v",
			len(duplicates), duplicates)
	}

	catalog := &domain.Catalog{
		Aggregate:     domain.NewAggregate(),
		Categories:    len(categories),
		DuplicateKeys: duplicates,
	}

	if s.concurrent {
		s.aggregateConcurrently(ctx, categories, catalog)
	} else {
		s.aggregateSequentially(ctx, categories, catalog)
	}

	return catalog
}

func (s *Service) aggregateSequentially(ctx context.Context, categories []domain.Category, catalog *domain.Catalog) {
	for i, category := range categories {
		s.install(catalog, s.fetchProducts(ctx, category))
		s.logProgress(i+1, len(categories))
	}
}

// aggregateConcurrently runs one job per category on a bounded pool. Only the
// collector goroutine writes to the catalog.
func (s *Service) aggregateConcurrently(ctx context.Context, categories []domain.Category, catalog *domain.Catalog) {
	log.Infof("🚀 Fetching products with %d workers", s.maxWorkers)

	results := make(chan categoryResult, s.maxWorkers)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		installed := 0
		for result := range results {
			s.install(catalog, result)
			installed++
			s.logProgress(installed, len(categories))
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(s.maxWorkers)

	for _, category := range categories {
		g.Go(func() error {
			results <- s.fetchProducts(ctx, category)
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	<-collected
}

func (s *Service) fetchProducts(ctx context.Context, category domain.Category) categoryResult {
	start := time.Now()
	products, err := s.client.GetProducts(ctx, category)
	duration := time.Since(start)

	if err != nil {
		log.Errorf("❌ When fetching products for %s: %v", category, err)
		s.metrics.ObserveFetch(duration, 0, true)
		return categoryResult{category: category, products: []domain.Product{}, failed: true}
	}

	s.metrics.ObserveFetch(duration, len(products), false)
	return categoryResult{category: category, products: products}
}

func (s *Service) install(catalog *domain.Catalog, result categoryResult) {
	if result.failed {
		catalog.FailedCategories++
	}
	if catalog.Aggregate.Set(result.category.Key, result.products) {
		log.Debugf("Category key %q installed again by %s", result.category.Key, result.category)
	}
}

func (s *Service) logProgress(done, total int) {
	if s.progressEvery <= 0 {
		return
	}
	if done%s.progressEvery == 0 || done == total {
		log.Infof("Fetched products for %d categories out of %d", done, total)
	}
}
