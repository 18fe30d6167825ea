package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "ZARA"

// Config holds all configuration for the application
type Config struct {
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Output     OutputConfig     `mapstructure:"output"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	S3         S3Config         `mapstructure:"s3"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// CatalogConfig holds storefront API configuration
type CatalogConfig struct {
	BaseURL   string   `mapstructure:"base_url"`
	UserAgent string   `mapstructure:"user_agent"`
	Timeout   int      `mapstructure:"timeout"` // Seconds per request
	Proxies   []string `mapstructure:"proxies"`
}

// AggregatorConfig controls how product listings are fetched
type AggregatorConfig struct {
	Concurrent    bool `mapstructure:"concurrent"`
	MaxWorkers    int  `mapstructure:"max_workers"` // 0 means one worker per CPU
	ProgressEvery int  `mapstructure:"progress_every"`
}

// OutputConfig describes the aggregate file
type OutputConfig struct {
	File   string `mapstructure:"file"`
	Pretty bool   `mapstructure:"pretty"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// DatabaseConfig holds the optional Postgres mirror configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN returns the pgx connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig holds the optional Redis mirror and run state configuration
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// S3Config holds the optional S3 mirror configuration
type S3Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Bucket   string `mapstructure:"bucket"`
	Key      string `mapstructure:"key"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"` // Custom endpoint for S3-compatible stores
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // node_exporter textfile path, empty disables
}

// Load loads configuration from an optional config.yaml, an optional .env file
// and ZARA_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config.yaml found, using defaults and environment")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env into the process environment without overriding existing variables
func loadEnvFile() error {
	if err := godotenv.Load(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", "https://www.zara.com/mx/es")
	v.SetDefault("catalog.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_10; rv:33.0) Gecko/20100101 Firefox/33.0")
	v.SetDefault("catalog.timeout", 60)
	v.SetDefault("catalog.proxies", []string{})

	v.SetDefault("aggregator.concurrent", true)
	v.SetDefault("aggregator.max_workers", 0)
	v.SetDefault("aggregator.progress_every", 25)

	v.SetDefault("output.file", "db.txt")
	v.SetDefault("output.pretty", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "zara")
	v.SetDefault("database.user", "zara_user")
	v.SetDefault("database.password", "zara_pass")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "zara:")

	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.key", "db.json")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")

	v.SetDefault("metrics.textfile", "")
}

func validate(config *Config) error {
	config.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(config.Catalog.BaseURL), "/")
	if config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required (set %s_CATALOG_BASE_URL)", envPrefix)
	}

	if config.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog timeout must be positive, got: %d", config.Catalog.Timeout)
	}

	if config.Aggregator.MaxWorkers < 0 {
		return fmt.Errorf("aggregator max workers must not be negative, got: %d", config.Aggregator.MaxWorkers)
	}

	if strings.TrimSpace(config.Output.File) == "" {
		return fmt.Errorf("output file is required (set %s_OUTPUT_FILE)", envPrefix)
	}

	if _, err := log.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json', got: %s", config.Log.Format)
	}

	if config.S3.Enabled && config.S3.Bucket == "" {
		return fmt.Errorf("S3 bucket is required when S3 output is enabled")
	}

	return nil
}
