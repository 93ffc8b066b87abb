package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Kafka configuration
	Kafka KafkaConfig `json:"kafka"`

	// Metrics configuration
	Metrics MetricsConfig `json:"metrics"`

	// Job service configuration
	JobService JobServiceConfig `json:"job_service"`

	// SMTP configuration
	SMTP SMTPConfig `json:"smtp"`

	// Monitor configuration
	Monitor MonitorConfig `json:"monitor"`

	// NotifierImpl selects the notification transport (smtp, kafka, null)
	NotifierImpl string
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Port is the main HTTP server port
	Port int `json:"port"`

	// Host is the server bind address
	Host string `json:"host"`

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration `json:"read_timeout"`

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration `json:"write_timeout"`

	// ShutdownTimeout for graceful shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	// Type of database (sqlite, postgres, memory)
	Type string `json:"type"`

	// Path to SQLite database file
	Path string `json:"path"`

	// Host for Postgres
	Host string `json:"host"`

	// Port for Postgres
	Port int `json:"port"`

	// Name of the database
	Name string `json:"name"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication
	Password string `json:"password"`

	// SSLMode for database connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// MigrationsPath holds the file migrations applied on startup (postgres only)
	MigrationsPath string `json:"migrations_path"`
}

// ConnectionString returns a PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Name, d.SSLMode)
}

// KafkaConfig contains Kafka connection settings
type KafkaConfig struct {
	// Enabled indicates if Kafka integration is active
	Enabled bool `json:"enabled"`

	// Brokers is a list of Kafka broker addresses
	Brokers []string `json:"brokers"`

	// Topic for status events
	Topic string `json:"topic"`

	// ClientID for Kafka producer identification
	ClientID string `json:"client_id"`

	// Timeout for Kafka operations
	Timeout time.Duration `json:"timeout"`

	// Retries for failed message sends
	Retries int `json:"retries"`

	// CompressionType (none, gzip, snappy, lz4, zstd)
	CompressionType string `json:"compression_type"`
}

// MetricsConfig contains metrics and monitoring settings
type MetricsConfig struct {
	// Port for metrics endpoint
	Port int `json:"port"`

	// Path for metrics endpoint
	Path string `json:"path"`

	// Enabled indicates if metrics are active
	Enabled bool `json:"enabled"`
}

// JobServiceConfig contains job service client settings
type JobServiceConfig struct {
	// BaseURL for the job service API
	BaseURL string `json:"base_url"`

	// APIToken for job service authentication
	APIToken string `json:"api_token"`

	// Timeout for job service requests
	Timeout time.Duration `json:"timeout"`
}

// SMTPConfig contains email transport settings
type SMTPConfig struct {
	// Host of the SMTP server
	Host string `json:"host"`

	// Port of the SMTP server
	Port int `json:"port"`

	// Sender address, also used as the AUTH username
	Sender string `json:"sender"`

	// Password for SMTP authentication; empty skips AUTH
	Password string `json:"password"`

	// UseStartTLS dials in plaintext and upgrades with STARTTLS.
	// When false the connection is opened over implicit TLS.
	UseStartTLS bool `json:"use_starttls"`

	// CertFile path to client certificate
	CertFile string `json:"cert_file"`

	// KeyFile path to client private key
	KeyFile string `json:"key_file"`

	// InsecureSkipVerify skips certificate verification
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// MonitorConfig contains defaults for monitoring sessions
type MonitorConfig struct {
	// PollInterval between state fetches
	PollInterval time.Duration `json:"poll_interval"`

	// Timeout is the wall-clock budget per session; zero disables it
	Timeout time.Duration `json:"timeout"`

	// Sender address placed on outgoing notifications
	Sender string `json:"sender"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Server:     loadServerConfig(),
		Database:   loadDatabaseConfig(),
		Kafka:      loadKafkaConfig(),
		Metrics:    loadMetricsConfig(),
		JobService: loadJobServiceConfig(),
		SMTP:       loadSMTPConfig(),
		Monitor:    loadMonitorConfig(),
	}

	config.NotifierImpl = getEnv("NOTIFIER_IMPL", "smtp")

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvAsInt("PORT", 5000),
		Host:            getEnv("HOST", "0.0.0.0"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Type:           getEnv("DB_TYPE", "sqlite"),
		Path:           getEnv("DB_PATH", "./watches.db"),
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnvAsInt("DB_PORT", 5432),
		Name:           getEnv("DB_NAME", "jobwatch"),
		Username:       getEnv("DB_USERNAME", ""),
		Password:       getEnv("DB_PASSWORD", ""),
		SSLMode:        getEnv("DB_SSL_MODE", "disable"),
		MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "db/migrations"),
	}
}

func loadKafkaConfig() KafkaConfig {
	brokers := getEnvAsStringSlice("KAFKA_BROKERS", []string{})

	return KafkaConfig{
		Enabled:         len(brokers) > 0,
		Brokers:         brokers,
		Topic:           getEnv("KAFKA_TOPIC", "jobwatch.status"),
		ClientID:        getEnv("KAFKA_CLIENT_ID", "jobwatch"),
		Timeout:         getEnvAsDuration("KAFKA_TIMEOUT", 30*time.Second),
		Retries:         getEnvAsInt("KAFKA_RETRIES", 5),
		CompressionType: getEnv("KAFKA_COMPRESSION", "snappy"),
	}
}

func loadMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Port:    getEnvAsInt("METRICS_PORT", 8080),
		Path:    getEnv("METRICS_PATH", "/metrics"),
		Enabled: getEnvAsBool("METRICS_ENABLED", true),
	}
}

func loadJobServiceConfig() JobServiceConfig {
	return JobServiceConfig{
		BaseURL:  getEnv("JOB_SERVICE_URL", "http://localhost:9100"),
		APIToken: getEnv("JOB_SERVICE_API_TOKEN", ""),
		Timeout:  getEnvAsDuration("JOB_SERVICE_TIMEOUT", 5*time.Second),
	}
}

func loadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:               getEnv("SMTP_HOST", "localhost"),
		Port:               getEnvAsInt("SMTP_PORT", 587),
		Sender:             getEnv("SMTP_SENDER", "jobwatch@localhost"),
		Password:           getEnv("SMTP_PASSWORD", ""),
		UseStartTLS:        getEnvAsBool("SMTP_USE_STARTTLS", true),
		CertFile:           getEnv("SMTP_CERT_FILE", ""),
		KeyFile:            getEnv("SMTP_KEY_FILE", ""),
		InsecureSkipVerify: getEnvAsBool("SMTP_INSECURE_SKIP_VERIFY", false),
	}
}

func loadMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PollInterval: getEnvAsDuration("MONITOR_POLL_INTERVAL", time.Second),
		Timeout:      getEnvAsDuration("MONITOR_TIMEOUT", 30*time.Minute),
		Sender:       getEnv("MONITOR_SENDER", getEnv("SMTP_SENDER", "jobwatch@localhost")),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}

	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for SQLite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when kafka is enabled")
		}
	}

	if c.JobService.BaseURL == "" {
		return fmt.Errorf("job service base URL is required")
	}

	switch c.NotifierImpl {
	case "smtp":
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required for the smtp notifier")
		}
		if c.SMTP.Sender == "" {
			return fmt.Errorf("SMTP sender is required for the smtp notifier")
		}
	case "kafka":
		if !c.Kafka.Enabled {
			return fmt.Errorf("kafka brokers are required for the kafka notifier")
		}
	case "null":
	default:
		return fmt.Errorf("unsupported notifier implementation: %s", c.NotifierImpl)
	}

	if c.Monitor.PollInterval <= 0 {
		return fmt.Errorf("monitor poll interval must be positive")
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
