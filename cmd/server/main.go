package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobwatch/internal/clients/jobs"
	"jobwatch/internal/config"
	"jobwatch/internal/core/usecases"
	httpShell "jobwatch/internal/shell/http"
	"jobwatch/internal/shell/messaging"
	"jobwatch/internal/shell/notify"
	"jobwatch/internal/shell/scheduler"
	"jobwatch/internal/shell/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting jobwatch with configuration:")
	log.Printf("  Server: %s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("  Database Type: %s", cfg.Database.Type)
	log.Printf("  Job Service: %s", cfg.JobService.BaseURL)
	log.Printf("  Notifier: %s", cfg.NotifierImpl)
	log.Printf("  Kafka: enabled=%t, brokers=%v", cfg.Kafka.Enabled, cfg.Kafka.Brokers)
	log.Printf("  Metrics: enabled=%t, port=%d", cfg.Metrics.Enabled, cfg.Metrics.Port)

	// Create imperative shell components
	var repo usecases.WatchRepository

	switch cfg.Database.Type {
	case "sqlite":
		sqliteRepo, err := storage.NewSQLiteWatchRepository(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite database: %v", err)
		}
		repo = sqliteRepo
		defer func() {
			if closeErr := sqliteRepo.Close(); closeErr != nil {
				log.Printf("Error closing database: %v", closeErr)
			}
		}()
		log.Printf("SQLite storage initialized successfully")

	case "postgres":
		postgresRepo, err := storage.NewPostgresWatchRepository(cfg.Database.ConnectionString(), cfg.Database.MigrationsPath)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
		}
		repo = postgresRepo
		defer func() {
			if closeErr := postgresRepo.Close(); closeErr != nil {
				log.Printf("Error closing database: %v", closeErr)
			}
		}()
		log.Printf("PostgreSQL storage initialized successfully")

	case "memory":
		repo = storage.NewMemoryWatchRepository()
		log.Printf("In-memory storage initialized (watches are lost on restart)")

	default:
		log.Fatalf("Unsupported database type: %s (must be sqlite, postgres or memory)", cfg.Database.Type)
	}

	// Initialize notification transport based on configuration
	var notifier usecases.StatusNotifier

	switch cfg.NotifierImpl {
	case "smtp":
		log.Printf("Initializing SMTP notifier (%s:%d)", cfg.SMTP.Host, cfg.SMTP.Port)
		notifier = notify.NewEmailNotifier(notify.SMTPOptions{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Sender:             cfg.SMTP.Sender,
			Password:           cfg.SMTP.Password,
			UseStartTLS:        cfg.SMTP.UseStartTLS,
			CertFile:           cfg.SMTP.CertFile,
			KeyFile:            cfg.SMTP.KeyFile,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		})

	case "kafka":
		log.Printf("Initializing Kafka notifier - brokers: %v, topic: %s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
		producer, err := messaging.NewKafkaProducer(messaging.ProducerConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ClientID:    cfg.Kafka.ClientID,
			Timeout:     cfg.Kafka.Timeout,
			Retries:     cfg.Kafka.Retries,
			Compression: cfg.Kafka.CompressionType,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Kafka producer: %v", err)
		}
		defer func() {
			if closeErr := producer.Close(); closeErr != nil {
				log.Printf("Error closing Kafka producer: %v", closeErr)
			}
		}()
		notifier = notify.NewKafkaNotifier(producer)

	case "null":
		notifier = notify.NewNullNotifier()
		log.Printf("Using null notifier (no notifications will be sent)")

	default:
		log.Fatalf("Unsupported NOTIFIER_IMPL type: %s", cfg.NotifierImpl)
	}

	// Job service client doubles as operation source and project source
	client := jobs.NewClient(cfg.JobService.BaseURL, cfg.JobService.APIToken)
	client.SetHTTPClient(&http.Client{Timeout: cfg.JobService.Timeout})

	// Create functional core services
	dispatcher := usecases.NewDispatcher(notifier, cfg.Monitor.Sender)
	monitor := usecases.NewMonitor(client, dispatcher)
	registry := usecases.NewSessionRegistry(monitor)

	defaults := usecases.MonitorOptions{
		PollInterval: cfg.Monitor.PollInterval,
		Timeout:      cfg.Monitor.Timeout,
	}
	watchService := usecases.NewWatchService(repo, monitor, defaults)

	// Connect watch service to the cron scheduler
	watchScheduler := scheduler.NewCronScheduler(watchService)
	watchService.SetScheduler(watchScheduler)

	// Setup HTTP routes
	router := httpShell.SetupRoutes(watchService, registry, defaults)

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Create metrics server
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port)
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())

		metricsServer = &http.Server{
			Addr:    metricsAddr,
			Handler: metricsMux,
		}

		go func() {
			log.Printf("Starting metrics server on %s%s", metricsAddr, cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start scheduler
	go watchScheduler.Start(ctx)

	// Start HTTP server
	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop scheduler
	watchScheduler.Stop()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Metrics server forced to shutdown: %v", err)
		}
	}

	log.Println("Server exited")
}
