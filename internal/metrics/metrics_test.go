package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zara/catalog/internal/domain"
)

func TestRecorder_ObserveFetch(t *testing.T) {
	recorder := New("test")

	recorder.CategoriesDiscovered(3)
	recorder.ObserveFetch(120*time.Millisecond, 10, false)
	recorder.ObserveFetch(80*time.Millisecond, 5, false)
	recorder.ObserveFetch(2*time.Second, 0, true)

	assert.Equal(t, 3.0, testutil.ToFloat64(recorder.categoriesTotal))
	assert.Equal(t, 15.0, testutil.ToFloat64(recorder.productsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.categoryFailuresTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(recorder.fetchDuration))
}

func TestRecorder_ObserveRun(t *testing.T) {
	recorder := New("test")
	started := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	recorder.ObserveRun(domain.RunSummary{StartedAt: started, FinishedAt: started.Add(90 * time.Second)})

	assert.Equal(t, 90.0, testutil.ToFloat64(recorder.runDuration))
	assert.Equal(t, float64(started.Add(90*time.Second).Unix()), testutil.ToFloat64(recorder.lastSuccess))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var recorder *Recorder

	assert.NotPanics(t, func() {
		recorder.CategoriesDiscovered(1)
		recorder.ObserveFetch(time.Second, 1, false)
		recorder.ObserveRun(domain.RunSummary{})
	})
	assert.NoError(t, recorder.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	recorder := New("zara_catalog")
	recorder.CategoriesDiscovered(2)
	recorder.ObserveFetch(time.Second, 7, false)

	path := filepath.Join(t.TempDir(), "zara_catalog.prom")
	require.NoError(t, recorder.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "zara_catalog_categories_total 2")
	assert.Contains(t, string(data), "zara_catalog_products_total 7")
	assert.Contains(t, string(data), "zara_catalog_fetch_duration_seconds_count 1")
}

func TestRecorder_WriteTextfileError(t *testing.T) {
	recorder := New("test")
	err := recorder.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "file.prom"))
	assert.Error(t, err)
}
