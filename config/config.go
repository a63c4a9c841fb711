// Package config loads service settings from defaults, an optional .env
// style file and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
)

type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Env         string `mapstructure:"APP_ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	MetricsAddr string `mapstructure:"METRICS_ADDR"`

	SessionSecret   string        `mapstructure:"SESSION_SECRET"`
	TokenTTL        time.Duration `mapstructure:"TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	// OrderStore picks the order log adapter: memory, mongo or redis.
	OrderStore string `mapstructure:"ORDER_STORE"`
	// CatalogStore picks where restaurants, menus and users live: memory or mongo.
	CatalogStore string `mapstructure:"CATALOG_STORE"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDB       string `mapstructure:"MONGO_DB"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	KafkaBrokers    []string `mapstructure:"KAFKA_BROKERS"`
	KafkaLogTopic   string   `mapstructure:"KAFKA_LOG_TOPIC"`
	KafkaOrderTopic string   `mapstructure:"KAFKA_ORDER_TOPIC"`
	ElasticURL      string   `mapstructure:"ELASTICSEARCH_URL"`
	ElasticIndex    string   `mapstructure:"ELASTICSEARCH_INDEX"`
	OTLPEndpoint    string   `mapstructure:"OTLP_ENDPOINT"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"SERVICE_NAME":        "cravewave",
	"APP_ENV":             "development",
	"LOG_LEVEL":           "info",
	"HTTP_ADDR":           "127.0.0.1:8080",
	"METRICS_ADDR":        ":9100",
	"SESSION_SECRET":      "",
	"TOKEN_TTL":           time.Hour,
	"REFRESH_TOKEN_TTL":   24 * time.Hour,
	"ORDER_STORE":         StoreMemory,
	"CATALOG_STORE":       StoreMemory,
	"MONGO_URI":           "mongodb://localhost:27017",
	"MONGO_DB":            "apiDB",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"REDIS_PREFIX":        "crave_orders",
	"KAFKA_BROKERS":       []string{},
	"KAFKA_LOG_TOPIC":     "logs",
	"KAFKA_ORDER_TOPIC":   "orders",
	"ELASTICSEARCH_URL":   "",
	"ELASTICSEARCH_INDEX": "logs",
	"OTLP_ENDPOINT":       "",
	"GEMINI_API_KEY":      "",
	"GEMINI_MODEL":        "gemini-2.0-flash",
	"RATE_LIMIT_RPS":      20.0,
	"RATE_LIMIT_BURST":    40,
	"SHUTDOWN_TIMEOUT":    10 * time.Second,
}

// Load reads configuration. file may be empty; a named file that does not
// exist is ignored so the same binary runs with or without one.
func Load(file string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if strings.HasSuffix(file, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", file, err)
			}
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cf.KafkaBrokers = splitList(cf.KafkaBrokers)
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

func (c *Config) Validate() error {
	switch c.OrderStore {
	case StoreMemory, StoreMongo, StoreRedis:
	default:
		return fmt.Errorf("ORDER_STORE must be memory, mongo or redis, got %q", c.OrderStore)
	}
	switch c.CatalogStore {
	case StoreMemory, StoreMongo:
	default:
		return fmt.Errorf("CATALOG_STORE must be memory or mongo, got %q", c.CatalogStore)
	}
	if c.SessionSecret == "" && c.Env != "development" && c.Env != "test" {
		return errors.New("SESSION_SECRET is required outside development")
	}
	if c.TokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("TOKEN_TTL and REFRESH_TOKEN_TTL must be positive")
	}
	return nil
}

// KafkaEnabled reports whether any broker is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// splitList accepts both a proper list and a single comma separated entry.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
