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
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Realtime struct {
		BroadcastInterval time.Duration `yaml:"broadcast_interval"`
		SendBuffer        int           `yaml:"send_buffer"`
		WriteWait         time.Duration `yaml:"write_wait"`
		PongWait          time.Duration `yaml:"pong_wait"`
		MaxMessageSize    int64         `yaml:"max_message_size"`
		MessageRateLimit  float64       `yaml:"message_rate_limit"`
	} `yaml:"realtime"`
	Pricing struct {
		HistoryBackend string        `yaml:"history_backend"` // http or clickhouse
		DashboardTTL   time.Duration `yaml:"dashboard_ttl"`
		ReportTTL      time.Duration `yaml:"report_ttl"`
	} `yaml:"pricing"`
	Backoffice struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"backoffice"`
	Auth struct {
		VerifyURL string        `yaml:"verify_url"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"auth"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers       []string `yaml:"brokers"`
		ActivityTopic string   `yaml:"activity_topic"`
		Consumer      struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
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

	// Validate required fields
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

	if v := os.Getenv("BACKOFFICE_URL"); v != "" {
		c.Backoffice.BaseURL = v
	}
	if v := os.Getenv("AUTH_VERIFY_URL"); v != "" {
		c.Auth.VerifyURL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_ACTIVITY_TOPIC"); v != "" {
		c.Kafka.ActivityTopic = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Realtime.BroadcastInterval <= 0 {
		c.Realtime.BroadcastInterval = 8 * time.Second
	}
	if c.Realtime.SendBuffer <= 0 {
		c.Realtime.SendBuffer = 256
	}
	if c.Realtime.WriteWait <= 0 {
		c.Realtime.WriteWait = 2 * time.Second
	}
	if c.Realtime.PongWait <= 0 {
		c.Realtime.PongWait = 60 * time.Second
	}
	if c.Realtime.MaxMessageSize <= 0 {
		c.Realtime.MaxMessageSize = 64 * 1024
	}
	if c.Realtime.MessageRateLimit <= 0 {
		c.Realtime.MessageRateLimit = 10 // messages per second per connection
	}
	if c.Pricing.DashboardTTL <= 0 {
		c.Pricing.DashboardTTL = 2 * time.Minute
	}
	if c.Pricing.ReportTTL <= 0 {
		c.Pricing.ReportTTL = 30 * time.Minute
	}
	if c.Pricing.HistoryBackend == "" {
		c.Pricing.HistoryBackend = "http"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backoffice.BaseURL == "" {
		return fmt.Errorf("backoffice.base_url is required")
	}
	if c.Auth.VerifyURL == "" {
		return fmt.Errorf("auth.verify_url is required")
	}
	if c.Pricing.HistoryBackend != "http" && c.Pricing.HistoryBackend != "clickhouse" {
		return fmt.Errorf("pricing.history_backend must be 'http' or 'clickhouse', got '%s'", c.Pricing.HistoryBackend)
	}
	if c.Pricing.HistoryBackend == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when pricing.history_backend is 'clickhouse'")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.ActivityTopic == "" {
		return fmt.Errorf("kafka.activity_topic is required when brokers are set")
	}
	return nil
}
