package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://www.zara.com/mx/es", cfg.Catalog.BaseURL)
		assert.Contains(t, cfg.Catalog.UserAgent, "Firefox/33.0")
		assert.Equal(t, 60, cfg.Catalog.Timeout)
		assert.Empty(t, cfg.Catalog.Proxies)
		assert.True(t, cfg.Aggregator.Concurrent)
		assert.Equal(t, 0, cfg.Aggregator.MaxWorkers)
		assert.Equal(t, 25, cfg.Aggregator.ProgressEvery)
		assert.Equal(t, "db.txt", cfg.Output.File)
		assert.False(t, cfg.Output.Pretty)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.False(t, cfg.Database.Enabled)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "zara:", cfg.Redis.KeyPrefix)
		assert.False(t, cfg.S3.Enabled)
		assert.Equal(t, "db.json", cfg.S3.Key)
		assert.Empty(t, cfg.Metrics.Textfile)
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ZARA_CATALOG_BASE_URL", " https://www.zara.com/es/en/ ")
		t.Setenv("ZARA_CATALOG_TIMEOUT", "15")
		t.Setenv("ZARA_CATALOG_PROXIES", "http://p1:8080,http://p2:8080")
		t.Setenv("ZARA_AGGREGATOR_CONCURRENT", "false")
		t.Setenv("ZARA_AGGREGATOR_MAX_WORKERS", "4")
		t.Setenv("ZARA_OUTPUT_FILE", "out/catalog.json")
		t.Setenv("ZARA_OUTPUT_PRETTY", "true")
		t.Setenv("ZARA_LOG_LEVEL", "debug")
		t.Setenv("ZARA_REDIS_ENABLED", "true")
		t.Setenv("ZARA_REDIS_PORT", "6380")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://www.zara.com/es/en", cfg.Catalog.BaseURL)
		assert.Equal(t, 15, cfg.Catalog.Timeout)
		assert.Equal(t, []string{"http://p1:8080", "http://p2:8080"}, cfg.Catalog.Proxies)
		assert.False(t, cfg.Aggregator.Concurrent)
		assert.Equal(t, 4, cfg.Aggregator.MaxWorkers)
		assert.Equal(t, "out/catalog.json", cfg.Output.File)
		assert.True(t, cfg.Output.Pretty)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
	})

	t.Run("reads config.yaml", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		yaml := "catalog:\n  base_url: https://www.zara.com/us/en\naggregator:\n  max_workers: 2\n"
		require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://www.zara.com/us/en", cfg.Catalog.BaseURL)
		assert.Equal(t, 2, cfg.Aggregator.MaxWorkers)
	})

	t.Run("env overrides config.yaml", func(t *testing.T) {
		t.Chdir(t.TempDir())
		require.NoError(t, os.WriteFile("config.yaml", []byte("output:\n  file: from-file.txt\n"), 0644))
		t.Setenv("ZARA_OUTPUT_FILE", "from-env.txt")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-env.txt", cfg.Output.File)
	})

	t.Run("fails validation for negative workers", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ZARA_AGGREGATOR_MAX_WORKERS", "-1")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails validation for unknown log level", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ZARA_LOG_LEVEL", "chatty")

		_, err := Load()
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("fails validation when S3 bucket is missing", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ZARA_S3_ENABLED", "true")

		_, err := Load()
		assert.ErrorContains(t, err, "S3 bucket is required")
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		t.Chdir(t.TempDir())
		assert.NoError(t, loadEnvFile())
	})

	t.Run("loads variables without overriding existing ones", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ZARA_OUTPUT_FILE", "existing.txt")
		t.Setenv("ZARA_LOG_FORMAT", "")
		os.Unsetenv("ZARA_LOG_FORMAT")

		content := "# comment\nZARA_OUTPUT_FILE=from-dotenv.txt\nZARA_LOG_FORMAT=json\n"
		require.NoError(t, os.WriteFile(".env", []byte(content), 0644))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "existing.txt", cfg.Output.File)
		assert.Equal(t, "json", cfg.Log.Format)
	})
}
