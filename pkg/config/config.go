package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Store struct {
		Type     string `yaml:"type"` // memory or postgres
		Postgres struct {
			DSN          string        `yaml:"dsn"`
			MaxConns     int           `yaml:"max_conns"`
			ConnLifetime time.Duration `yaml:"conn_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"store"`
	Redis struct {
		Enabled      bool   `yaml:"enabled"`
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		Password     string `yaml:"password"`
		DB           int    `yaml:"db"`
		Prefix       string `yaml:"prefix"`
		PoolSize     int    `yaml:"pool_size"`
		MinIdleConns int    `yaml:"min_idle_conns"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		EventsTopic  string   `yaml:"events_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Providers struct {
		Timeout time.Duration `yaml:"timeout"` // per-provider search/quote budget
		Binance struct {
			BaseURL      string        `yaml:"base_url"`
			MetadataTTL  time.Duration `yaml:"metadata_ttl"`
			QuoteTTL     time.Duration `yaml:"quote_ttl"`
			RateCapacity float64       `yaml:"rate_capacity"`
			RatePerSec   float64       `yaml:"rate_per_sec"`
		} `yaml:"binance"`
		Yahoo struct {
			BaseURL      string        `yaml:"base_url"`
			SearchTTL    time.Duration `yaml:"search_ttl"`
			RateCapacity float64       `yaml:"rate_capacity"`
			RatePerSec   float64       `yaml:"rate_per_sec"`
		} `yaml:"yahoo"`
	} `yaml:"providers"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Push struct {
		GatewayURL string        `yaml:"gateway_url"`
		APIKey     string        `yaml:"api_key"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"push"`
	Dispatch struct {
		Workers    int           `yaml:"workers"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"dispatch"`
	Operators []string `yaml:"operators"` // principals allowed to publish; empty = allow all
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Store.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("PUSH_API_KEY"); v != "" {
		c.Push.APIKey = v
	}
	if v := os.Getenv("OPERATORS"); v != "" {
		c.Operators = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 5 * time.Second
	}
	if c.Providers.Binance.RateCapacity == 0 {
		c.Providers.Binance.RateCapacity = 10
	}
	if c.Providers.Binance.RatePerSec == 0 {
		c.Providers.Binance.RatePerSec = 2
	}
	if c.Providers.Yahoo.RateCapacity == 0 {
		c.Providers.Yahoo.RateCapacity = 5
	}
	if c.Providers.Yahoo.RatePerSec == 0 {
		c.Providers.Yahoo.RatePerSec = 1
	}
	if c.Providers.Binance.BaseURL == "" {
		c.Providers.Binance.BaseURL = "https://api.binance.com"
	}
	if c.Providers.Binance.MetadataTTL == 0 {
		c.Providers.Binance.MetadataTTL = 60 * time.Second
	}
	if c.Providers.Binance.QuoteTTL == 0 {
		c.Providers.Binance.QuoteTTL = 10 * time.Second
	}
	if c.Providers.Yahoo.BaseURL == "" {
		c.Providers.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Providers.Yahoo.SearchTTL == 0 {
		c.Providers.Yahoo.SearchTTL = 60 * time.Second
	}
	if c.Dispatch.Workers == 0 {
		c.Dispatch.Workers = 2
	}
	if c.Dispatch.RetryLimit == 0 {
		c.Dispatch.RetryLimit = 3
	}
	if c.Dispatch.RetryDelay == 0 {
		c.Dispatch.RetryDelay = 2 * time.Second
	}
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Store.Type != "memory" && c.Store.Type != "postgres" {
		return fmt.Errorf("store.type must be 'memory' or 'postgres', got '%s'", c.Store.Type)
	}
	if c.Store.Type == "postgres" && c.Store.Postgres.DSN == "" {
		return fmt.Errorf("store.postgres.dsn is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.EventsTopic == "" {
		return fmt.Errorf("kafka.events_topic is required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Stream.Enabled && c.Stream.WebSocketURL == "" {
		return fmt.Errorf("stream.websocket_url is required when the stream is enabled")
	}
	return nil
}
