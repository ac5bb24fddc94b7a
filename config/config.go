package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Portal   PortalConfig   `yaml:"portal"`
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	App      AppConfig      `yaml:"app"`
}

// PortalConfig points at the tenant's backend. TenantID is sent as X-TENANT-ID on every call.
type PortalConfig struct {
	BaseURL               string `yaml:"base_url"`
	TenantID              string `yaml:"tenant_id"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

func (c DatabaseConfig) DSN() string {
	ssl := c.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", c.Username, c.Password, c.Host, c.Port, c.DBName, ssl)
}

type KafkaConfig struct {
	Host                    string `yaml:"host"`
	Port                    int    `yaml:"port"`
	CheckoutEventsTopicName string `yaml:"checkout_events_topic_name"`
	PublishRetries          int    `yaml:"publish_retries"`
}

func (c KafkaConfig) Brokers() []string {
	return []string{fmt.Sprintf("%s:%d", c.Host, c.Port)}
}

type RedisConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Prefix string `yaml:"prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AppConfig struct {
	HTTPAddr       string `yaml:"http_addr"`
	LedgerHTTPAddr string `yaml:"ledger_http_addr"`
	SwaggerPath    string `yaml:"swagger_path"`

	// Store selects the key-value backend for theme cache and auth state: "memory" | "redis".
	Store string `yaml:"store"`

	ThemeFreshnessMinutes  int `yaml:"theme_freshness_minutes"`
	CheckoutWarningMinutes int `yaml:"checkout_warning_minutes"`

	ValidatePollIntervalSeconds int `yaml:"validate_poll_interval_seconds"`
	ValidatePendingSeconds      int `yaml:"validate_pending_seconds"`
	ValidateConcurrency         int `yaml:"validate_concurrency"`
	ValidateRateLimitPerMinute  int `yaml:"validate_rate_limit_per_minute"`

	LedgerConsumerGroup string `yaml:"ledger_consumer_group"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
