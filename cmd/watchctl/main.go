package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jobwatch/internal/clients/jobs"
	"jobwatch/internal/config"
	"jobwatch/internal/core/domain"
	"jobwatch/internal/core/usecases"
	"jobwatch/internal/shell/messaging"
	"jobwatch/internal/shell/notify"
)

var (
	flagBaseURL  string
	flagAPIToken string

	flagRecipients   []string
	flagNotifyStates []string
	flagPollInterval time.Duration
	flagTimeout      time.Duration
	flagSender       string

	flagApplyFeedback bool
	flagAsynchronous  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "watchctl",
		Short: "Monitor remote jobs and send status notifications",
	}

	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "url", "", "Job service base URL (defaults to JOB_SERVICE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagAPIToken, "token", "", "Job service API token (defaults to JOB_SERVICE_API_TOKEN)")

	statusCmd := &cobra.Command{
		Use:   "status <operation-id>",
		Short: "Fetch the current state of an operation",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}

	monitorCmd := &cobra.Command{
		Use:   "monitor <operation-id>",
		Short: "Poll an operation until it finishes, notifying on state changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonitor,
	}
	monitorCmd.Flags().StringSliceVar(&flagRecipients, "to", nil, "Notification recipients (required)")
	monitorCmd.Flags().StringSliceVar(&flagNotifyStates, "states", nil, "States that trigger a notification (default: all)")
	monitorCmd.Flags().DurationVar(&flagPollInterval, "interval", time.Second, "Poll interval")
	monitorCmd.Flags().DurationVar(&flagTimeout, "timeout", 30*time.Minute, "Wall-clock budget; 0 disables")
	monitorCmd.Flags().StringVar(&flagSender, "from", "", "Sender address (defaults to MONITOR_SENDER)")
	monitorCmd.MarkFlagRequired("to")

	workflowCmd := &cobra.Command{
		Use:   "workflow <project-id>",
		Short: "Run the categorization pipeline for a project",
		Args:  cobra.ExactArgs(1),
		RunE:  runWorkflow,
	}
	workflowCmd.Flags().BoolVar(&flagApplyFeedback, "apply-feedback", true, "Train the model on verified labels")
	workflowCmd.Flags().BoolVar(&flagAsynchronous, "async", false, "Submit each step without waiting for completion")

	sendTestCmd := &cobra.Command{
		Use:   "send-test",
		Short: "Send a test notification through the configured transport",
		RunE:  runSendTest,
	}
	sendTestCmd.Flags().StringSliceVar(&flagRecipients, "to", nil, "Notification recipients (required)")
	sendTestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(statusCmd, monitorCmd, workflowCmd, sendTestCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newJobsClient() (*jobs.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	baseURL := cfg.JobService.BaseURL
	if flagBaseURL != "" {
		baseURL = flagBaseURL
	}
	apiToken := cfg.JobService.APIToken
	if flagAPIToken != "" {
		apiToken = flagAPIToken
	}

	return jobs.NewClient(baseURL, apiToken), nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newJobsClient()
	if err != nil {
		return err
	}

	op, err := client.Operation(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch operation: %w", err)
	}

	fmt.Printf("Operation: %s\n", op.ResourceID)
	fmt.Printf("State:     %s\n", op.State)
	if op.State.Terminal() {
		fmt.Println("The operation has finished.")
	}
	fmt.Println()
	fmt.Println(op.Details)
	return nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	client, err := newJobsClient()
	if err != nil {
		return err
	}

	states, err := domain.ParseStateSet(flagNotifyStates)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	sender := cfg.Monitor.Sender
	if flagSender != "" {
		sender = flagSender
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	monitor := usecases.NewMonitor(client, usecases.NewDispatcher(notifier, sender))
	monitorLog, err := monitor.Run(context.Background(), args[0], usecases.MonitorOptions{
		PollInterval: flagPollInterval,
		Timeout:      flagTimeout,
		NotifyStates: states,
		Recipients:   flagRecipients,
	})

	for _, entry := range monitorLog {
		fmt.Printf("Notified %v: %s\n", entry.Message.Recipients, entry.Message.Subject)
		for addr, refusal := range entry.Delivery.Refusals {
			fmt.Printf("  refused %s: %d %s\n", addr, refusal.Code, refusal.Text)
		}
	}

	if err != nil {
		return fmt.Errorf("monitoring ended with an error: %w", err)
	}
	fmt.Printf("Monitoring finished, %d notifications sent\n", len(monitorLog))
	return nil
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	client, err := newJobsClient()
	if err != nil {
		return err
	}

	runner := usecases.NewWorkflowRunner(client, client)
	operations, err := runner.RunAll(context.Background(), args[0], flagApplyFeedback, flagAsynchronous)
	for _, op := range operations {
		fmt.Printf("%s: %s (%s)\n", op.ID, op.ResourceID, op.State)
	}
	if err != nil {
		return fmt.Errorf("workflow failed: %w", err)
	}
	return nil
}

func runSendTest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	msg := domain.Message{
		Subject:    "jobwatch test notification",
		Body:       fmt.Sprintf("Test notification sent at %s", time.Now().Format(time.RFC1123Z)),
		Sender:     cfg.Monitor.Sender,
		Recipients: flagRecipients,
	}

	result, err := notifier.Send(context.Background(), msg)
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	for addr, refusal := range result.Refusals {
		log.Printf("Recipient refused %s: %d %s", addr, refusal.Code, refusal.Text)
	}
	fmt.Println("Notification sent")
	return nil
}

// buildNotifier mirrors the transport selection the server does at startup
func buildNotifier(cfg *config.Config) (usecases.StatusNotifier, error) {
	switch cfg.NotifierImpl {
	case "smtp":
		return notify.NewEmailNotifier(notify.SMTPOptions{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Sender:             cfg.SMTP.Sender,
			Password:           cfg.SMTP.Password,
			UseStartTLS:        cfg.SMTP.UseStartTLS,
			CertFile:           cfg.SMTP.CertFile,
			KeyFile:            cfg.SMTP.KeyFile,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		}), nil
	case "kafka":
		producer, err := messaging.NewKafkaProducer(messaging.ProducerConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ClientID:    cfg.Kafka.ClientID,
			Timeout:     cfg.Kafka.Timeout,
			Retries:     cfg.Kafka.Retries,
			Compression: cfg.Kafka.CompressionType,
		})
		if err != nil {
			return nil, err
		}
		return notify.NewKafkaNotifier(producer), nil
	case "null":
		return notify.NewNullNotifier(), nil
	default:
		return nil, fmt.Errorf("unsupported notifier: %s", cfg.NotifierImpl)
	}
}
