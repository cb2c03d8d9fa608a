// Command audit-tail prints the run lifecycle audit trail published on NATS.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"riff-be/internal/constant"
	"riff-be/pkg/events"
	pktNats "riff-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	natsURL   string
	durable   string
	eventType string
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	defaultURL := os.Getenv("NATS_URL")
	if defaultURL == "" {
		defaultURL = "nats://localhost:4222"
	}

	rootCmd := &cobra.Command{
		Use:   "audit-tail",
		Short: "Tail run lifecycle audit events",
		Long: `audit-tail subscribes to the riff.* JetStream subjects and prints
RUN_STARTED, RUN_DONE, RUN_FAILED and RUN_ABORTED events as they arrive.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tail(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&natsURL, "url", defaultURL, "NATS server URL")
	rootCmd.Flags().StringVar(&durable, "durable", "", "durable consumer name (empty: new events only)")
	rootCmd.Flags().StringVarP(&eventType, "type", "t", ">", "event type to follow, e.g. RUN_FAILED")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func tail(ctx context.Context) error {
	sub, err := pktNats.NewSubscriber(natsURL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer sub.Close()

	if err := sub.Subscribe(ctx, pktNats.Subject(eventType), durable, printEvent); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	color.Cyan("Tailing run audit events on %s (Ctrl+C to stop)\n", natsURL)
	<-ctx.Done()
	return nil
}

func printEvent(_ context.Context, event events.Event) error {
	line := fmt.Sprintf("%s %-12s %s", event.Timestamp().Format("15:04:05.000"), event.EventType(), formatData(event.Payload()))

	switch event.EventType() {
	case constant.AuditRunStarted:
		color.Cyan("%s", line)
	case constant.AuditRunDone:
		color.Green("%s", line)
	case constant.AuditRunFailed:
		color.Red("%s", line)
	case constant.AuditRunAborted:
		color.Yellow("%s", line)
	default:
		fmt.Println(line)
	}
	return nil
}

func formatData(data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k == "occurred_at" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for _, k := range keys {
		out += fmt.Sprintf("%s=%v ", k, data[k])
	}
	return out
}
