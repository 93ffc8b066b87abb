package config

import (
	"os"
	"testing"
	"time"
)

var configEnvVars = []string{
	"PORT", "HOST", "METRICS_PORT", "METRICS_ENABLED",
	"DB_TYPE", "DB_PATH", "DB_HOST", "DB_PORT", "DB_NAME", "DB_MIGRATIONS_PATH",
	"KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_RETRIES", "KAFKA_COMPRESSION",
	"JOB_SERVICE_URL", "JOB_SERVICE_API_TOKEN", "JOB_SERVICE_TIMEOUT",
	"SMTP_HOST", "SMTP_PORT", "SMTP_SENDER", "SMTP_PASSWORD", "SMTP_USE_STARTTLS",
	"MONITOR_POLL_INTERVAL", "MONITOR_TIMEOUT", "MONITOR_SENDER",
	"NOTIFIER_IMPL",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()

	original := make(map[string]string)
	for _, key := range configEnvVars {
		original[key] = os.Getenv(key)
		os.Unsetenv(key)
	}

	t.Cleanup(func() {
		for key, value := range original {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Server.Port != 5000 {
		t.Errorf("Expected default port 5000, got %d", config.Server.Port)
	}

	if config.Metrics.Port != 8080 {
		t.Errorf("Expected default metrics port 8080, got %d", config.Metrics.Port)
	}

	if config.Database.Type != "sqlite" {
		t.Errorf("Expected default database type 'sqlite', got %s", config.Database.Type)
	}

	if config.Database.Path != "./watches.db" {
		t.Errorf("Expected default database path './watches.db', got %s", config.Database.Path)
	}

	if config.Kafka.Enabled {
		t.Error("Expected Kafka to be disabled by default")
	}

	if config.NotifierImpl != "smtp" {
		t.Errorf("Expected default notifier 'smtp', got %s", config.NotifierImpl)
	}

	if !config.SMTP.UseStartTLS {
		t.Error("Expected STARTTLS by default")
	}

	if config.Monitor.PollInterval != time.Second {
		t.Errorf("Expected default poll interval 1s, got %v", config.Monitor.PollInterval)
	}
}

func TestLoadConfigWithEnvironmentVariables(t *testing.T) {
	clearConfigEnv(t)

	os.Setenv("PORT", "8000")
	os.Setenv("DB_TYPE", "postgres")
	os.Setenv("DB_HOST", "db.example.com")
	os.Setenv("DB_NAME", "jobwatch_test")
	os.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	os.Setenv("KAFKA_TOPIC", "jobwatch.status.test")
	os.Setenv("JOB_SERVICE_URL", "https://tamr.example.com")
	os.Setenv("MONITOR_POLL_INTERVAL", "250ms")
	os.Setenv("NOTIFIER_IMPL", "kafka")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Server.Port != 8000 {
		t.Errorf("Expected port 8000, got %d", config.Server.Port)
	}

	if config.Database.Type != "postgres" {
		t.Errorf("Expected database type 'postgres', got %s", config.Database.Type)
	}

	expectedConnStr := "host=db.example.com port=5432 user= password= dbname=jobwatch_test sslmode=disable"
	if config.Database.ConnectionString() != expectedConnStr {
		t.Errorf("Unexpected connection string: %s", config.Database.ConnectionString())
	}

	if !config.Kafka.Enabled {
		t.Error("Expected Kafka to be enabled when brokers are set")
	}
	if len(config.Kafka.Brokers) != 2 || config.Kafka.Brokers[1] != "broker2:9092" {
		t.Errorf("Expected 2 trimmed brokers, got %v", config.Kafka.Brokers)
	}

	if config.JobService.BaseURL != "https://tamr.example.com" {
		t.Errorf("Expected job service URL to be overridden, got %s", config.JobService.BaseURL)
	}

	if config.Monitor.PollInterval != 250*time.Millisecond {
		t.Errorf("Expected poll interval 250ms, got %v", config.Monitor.PollInterval)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	clearConfigEnv(t)

	cases := []struct {
		name string
		env  map[string]string
	}{
		{"bad database type", map[string]string{"DB_TYPE": "oracle"}},
		{"kafka notifier without brokers", map[string]string{"NOTIFIER_IMPL": "kafka"}},
		{"unknown notifier", map[string]string{"NOTIFIER_IMPL": "pigeon"}},
		{"bad port", map[string]string{"PORT": "99999"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for key, value := range tc.env {
				os.Setenv(key, value)
			}
			defer func() {
				for key := range tc.env {
					os.Unsetenv(key)
				}
			}()

			if _, err := LoadConfig(); err == nil {
				t.Error("Expected LoadConfig to fail")
			}
		})
	}
}
