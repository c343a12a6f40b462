package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// HorizonConfig describes one forecast horizon the pipeline tracks.
type HorizonConfig struct {
	Class    string        `yaml:"class" validate:"required,oneof=short long"`
	Duration time.Duration `yaml:"duration" validate:"required,gt=0"`
	TopicID  string        `yaml:"topic_id" validate:"required"`
}

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Trigger struct {
		Token string `yaml:"token" validate:"required"`
	} `yaml:"trigger"`
	Postgres struct {
		Host            string        `yaml:"host" validate:"required"`
		Port            int           `yaml:"port" default:"5432" validate:"gt=0,lte=65535"`
		Database        string        `yaml:"database" default:"predtrack"`
		User            string        `yaml:"user" default:"postgres"`
		Password        string        `yaml:"password"`
		SSLMode         string        `yaml:"ssl_mode" default:"disable" validate:"oneof=disable require verify-ca verify-full"`
		MaxOpenConns    int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"30m"`
	} `yaml:"postgres"`
	Forecast struct {
		BaseURL       string          `yaml:"base_url" validate:"required,url"`
		APIKey        string          `yaml:"api_key" validate:"required"`
		ChainID       string          `yaml:"chain_id" validate:"required"`
		Asset         string          `yaml:"asset" validate:"required"`
		ScaleDecimals int             `yaml:"scale_decimals" default:"18" validate:"gte=0,lte=38"`
		Timeout       time.Duration   `yaml:"timeout" default:"10s"`
		RetryDelay    time.Duration   `yaml:"retry_delay" default:"1s"`
		MaxRetries    int             `yaml:"max_retries" default:"3"`
		Horizons      []HorizonConfig `yaml:"horizons" validate:"required,min=1,dive"`
	} `yaml:"forecast"`
	PriceFeed struct {
		BaseURL    string        `yaml:"base_url" validate:"required,url"`
		APIKey     string        `yaml:"api_key"`
		Asset      string        `yaml:"asset" validate:"required"`
		Quote      string        `yaml:"quote" default:"usd"`
		Timeout    time.Duration `yaml:"timeout" default:"10s"`
		NearWindow time.Duration `yaml:"near_window" default:"60s"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"1s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
	} `yaml:"pricefeed"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"predtrack.scored"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Cache struct {
		Backend    string        `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		MetricsTTL time.Duration `yaml:"metrics_ttl" default:"60s"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
}

// Load reads and parses a YAML configuration file, applies struct defaults
// and validates required fields.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Env overrides are applied before validation so secrets can come from the
// environment alone.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if v := os.Getenv("PRED_TRIGGER_TOKEN"); v != "" {
		c.Trigger.Token = v
	}
	if v := os.Getenv("PRED_FORECAST_API_KEY"); v != "" {
		c.Forecast.APIKey = v
	}
	if v := os.Getenv("PRED_PRICEFEED_API_KEY"); v != "" {
		c.PriceFeed.APIKey = v
	}
	if v := os.Getenv("PRED_POSTGRES_HOST"); v != "" {
		c.Postgres.Host = v
	}
	if v := os.Getenv("PRED_POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("PRED_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("PRED_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("PRED_ENVIRONMENT"); v != "" {
		c.Environment = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis backend")
	}

	seen := map[string]bool{}
	for _, h := range c.Forecast.Horizons {
		if seen[h.Class] {
			return fmt.Errorf("forecast.horizons: duplicate class '%s'", h.Class)
		}
		seen[h.Class] = true
	}
	return nil
}

// Development reports whether the process runs in the development environment.
func (c *Config) Development() bool {
	return c.Environment == "development"
}
