// Package metrics records per-run Prometheus metrics for the catalog puller.
// The puller is a batch job, so metrics live in a private registry that is
// written to a node_exporter textfile at the end of a run instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"zara/catalog/internal/domain"
)

// Recorder tracks fetch outcomes and run totals. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	// categoriesTotal counts leaf categories discovered in the category tree
	categoriesTotal prometheus.Counter
	// categoryFailuresTotal counts categories whose product fetch degraded to an empty list
	categoryFailuresTotal prometheus.Counter
	// productsTotal counts flattened products across all categories
	productsTotal prometheus.Counter
	// fetchDuration tracks products endpoint latency per category
	fetchDuration prometheus.Histogram
	// runDuration and lastSuccess describe the most recent finished run
	runDuration prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New creates a Recorder whose metric names are prefixed with namespace
func New(namespace string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
	}

	r.categoriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "categories_total",
		Help:      "Leaf categories discovered in the category tree.",
	})
	r.categoryFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "category_failures_total",
		Help:      "Categories whose product listing could not be fetched.",
	})
	r.productsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_total",
		Help:      "Products flattened from all product listings.",
	})
	r.fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of product listing requests.",
		Buckets:   prometheus.DefBuckets,
	})
	r.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the last completed run.",
	})
	r.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time at which the last run completed.",
	})

	r.registry.MustRegister(
		r.categoriesTotal,
		r.categoryFailuresTotal,
		r.productsTotal,
		r.fetchDuration,
		r.runDuration,
		r.lastSuccess,
	)

	return r
}

func (r *Recorder) CategoriesDiscovered(n int) {
	if r == nil {
		return
	}
	r.categoriesTotal.Add(float64(n))
}

// ObserveFetch records one products request. failed marks a category that
// degraded to an empty product list.
func (r *Recorder) ObserveFetch(duration time.Duration, products int, failed bool) {
	if r == nil {
		return
	}
	r.fetchDuration.Observe(duration.Seconds())
	if failed {
		r.categoryFailuresTotal.Inc()
		return
	}
	r.productsTotal.Add(float64(products))
}

// ObserveRun records the summary of a completed run
func (r *Recorder) ObserveRun(summary domain.RunSummary) {
	if r == nil {
		return
	}
	r.runDuration.Set(summary.Duration().Seconds())
	r.lastSuccess.Set(float64(summary.FinishedAt.Unix()))
}

// WriteTextfile writes all metrics in the text exposition format to path
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
