package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr     string
	ContactPhone string
	Log          LogConfig
	Catalog      CatalogConfig
	S3           S3Config
	Scheduler    SchedulerConfig
	Latency      LatencyConfig
	Assistant    *AssistantConfig
}

type LogConfig struct {
	Path     string
	Level    string
	MaxBytes int64
}

// Catalog sources
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceS3       = "s3"
)

type CatalogConfig struct {
	Source           string
	Path             string
	DBPath           string
	DatabaseURL      string
	ExternalHTMLPath string
	ExternalProvider string
	FetchProxy       string
}

type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

// LatencyConfig controls the simulated response delays
type LatencyConfig struct {
	Enabled   bool
	Search    time.Duration
	Assistant time.Duration
	External  time.Duration
}

// AssistantConfig overrides what the canned assistant says about the business
type AssistantConfig struct {
	Company       string   `yaml:"company"`
	Country       string   `yaml:"country"`
	Services      []string `yaml:"services"`
	Locations     []string `yaml:"locations"`
	PropertyTypes []string `yaml:"property_types"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		ContactPhone: os.Getenv("CONTACT_PHONE"),
		Log: LogConfig{
			Path:     getEnv("LOG_PATH", "raks.log"),
			Level:    getEnv("LOG_LEVEL", "info"),
			MaxBytes: int64(getEnvInt("LOG_MAX_BYTES", 2*1024*1024)),
		},
		Catalog: CatalogConfig{
			Source:           getEnv("CATALOG_SOURCE", SourceEmbedded),
			Path:             getEnv("CATALOG_PATH", "catalog.yaml"),
			DBPath:           getEnv("CATALOG_DB", "catalog.db"),
			DatabaseURL:      os.Getenv("DATABASE_URL"),
			ExternalHTMLPath: os.Getenv("EXTERNAL_HTML_PATH"),
			ExternalProvider: getEnv("EXTERNAL_PROVIDER", "Imported Listings"),
			FetchProxy:       os.Getenv("FETCH_PROXY_URL"),
		},
		S3: S3Config{
			Bucket:          os.Getenv("CATALOG_S3_BUCKET"),
			Key:             getEnv("CATALOG_S3_KEY", "catalog.yaml"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("RELOAD_CRON"),
		},
		Latency: LatencyConfig{
			Enabled:   getEnv("SIMULATE_LATENCY", "true") == "true",
			Search:    getEnvMillis("SEARCH_DELAY_MS", 1200),
			Assistant: getEnvMillis("ASSISTANT_DELAY_MS", 1000),
			External:  getEnvMillis("EXTERNAL_DELAY_MS", 800),
		},
	}

	if interval := os.Getenv("RELOAD_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	assistant, err := loadAssistantConfig(getEnv("ASSISTANT_CONFIG", "config/assistant.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Assistant = assistant

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case SourceEmbedded, SourceFile, SourceSQLite:
	case SourcePostgres:
		if c.Catalog.DatabaseURL == "" {
			return fmt.Errorf("CATALOG_SOURCE=postgres requires DATABASE_URL")
		}
	case SourceS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("CATALOG_SOURCE=s3 requires CATALOG_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}
	return nil
}

// A missing file is not an error; the built-in assistant context is used.
func loadAssistantConfig(path string) (*AssistantConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ac AssistantConfig
	if err := yaml.Unmarshal(data, &ac); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &ac, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvMillis(key string, defaultVal int) time.Duration {
	return time.Duration(getEnvInt(key, defaultVal)) * time.Millisecond
}
