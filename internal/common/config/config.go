// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the onboarding service configuration.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Storage       StorageConfig           `mapstructure:"storage"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Security      SecurityConfig          `mapstructure:"security"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Handoff       HandoffConfig           `mapstructure:"handoff"`
	Uploads       UploadsConfig           `mapstructure:"uploads"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name            string `mapstructure:"name"`
	Version         string `mapstructure:"version"`
	Environment     string `mapstructure:"environment"`
	HTTPPort        int    `mapstructure:"http_port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// Addr returns the listen address for the HTTP server.
func (a AppConfig) Addr() string {
	return fmt.Sprintf(":%d", a.HTTPPort)
}

// StorageConfig selects the Draft Store backend.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // "redis" or "memory"
	KeyPrefix string `mapstructure:"key_prefix"`
	DraftTTL  int    `mapstructure:"draft_ttl"` // seconds, 0 keeps drafts forever
}

// UsesRedis reports whether drafts live in Redis.
func (s StorageConfig) UsesRedis() bool {
	return strings.EqualFold(s.Backend, "redis")
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	Registry       string `mapstructure:"registry"`        // activity registry path
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	Migrate        bool   `mapstructure:"migrate"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the settings applicable to every job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// --- Security Configuration ---

type SecurityConfig struct {
	Recaptcha RecaptchaConfig `mapstructure:"recaptcha"`
}

type RecaptchaConfig struct {
	SecretKey string  `mapstructure:"secret_key"`
	VerifyURL string  `mapstructure:"verify_url"`
	MinScore  float64 `mapstructure:"min_score"`
	Timeout   int     `mapstructure:"timeout"` // milliseconds
}

// NotificationConfig configures the join-page team email.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Email struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		To        []string `mapstructure:"to"`
	} `mapstructure:"email"`
}

// HandoffConfig toggles the optional consumers of handoff events.
type HandoffConfig struct {
	Fragment     string `mapstructure:"fragment"`
	BufferSize   int    `mapstructure:"buffer_size"`
	SearchIndex  bool   `mapstructure:"search_index"`
	Archive      bool   `mapstructure:"archive"`
	TopicARN     string `mapstructure:"topic_arn"`
	WorkflowSink bool   `mapstructure:"workflow_message"`
}

// UploadsConfig bounds attachment sizes.
type UploadsConfig struct {
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
