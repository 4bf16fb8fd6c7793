package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	appapi "github.com/moneta-site/go-calculators-api/internal/app/api"
	entnotify "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/notify"
	platformobservability "github.com/moneta-site/go-calculators-api/internal/platform/observability"
	notifyactivities "github.com/moneta-site/go-calculators-api/internal/platform/temporal/activities/notifications"
	notifyworkflows "github.com/moneta-site/go-calculators-api/internal/platform/temporal/workflows/notifications"
)

func main() {
	ctx := context.Background()
	const serviceName = "calculators-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := appapi.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	notifier := entnotify.NewLogNotifier(logger, cfg.BasePublicURL)
	activities := notifyactivities.NewActivities(notifier)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, notifyworkflows.GrantNotificationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(notifyworkflows.GrantNotificationWorkflow, workflow.RegisterOptions{Name: notifyworkflows.GrantNotificationWorkflowName})
	w.RegisterActivityWithOptions(activities.SendGrantConfirmation, activity.RegisterOptions{Name: notifyactivities.SendGrantConfirmationActivityName})

	logger.Info("worker listening", slog.String("taskQueue", notifyworkflows.GrantNotificationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
