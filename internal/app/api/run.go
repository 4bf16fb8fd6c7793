package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	calcmemory "github.com/moneta-site/go-calculators-api/internal/domains/calculators/adapters/memory"
	calcpostgres "github.com/moneta-site/go-calculators-api/internal/domains/calculators/adapters/persistence/postgres"
	calcapp "github.com/moneta-site/go-calculators-api/internal/domains/calculators/application"
	calcports "github.com/moneta-site/go-calculators-api/internal/domains/calculators/ports"
	entmemory "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/memory"
	entnotify "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/notify"
	entobs "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/observability"
	entpostgres "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/persistence/postgres"
	entworkflows "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/workflows"
	entapp "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/application"
	entports "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
	webhookapp "github.com/moneta-site/go-calculators-api/internal/domains/webhooks/application"
	platformmigrations "github.com/moneta-site/go-calculators-api/internal/platform/migrations"
	platformobservability "github.com/moneta-site/go-calculators-api/internal/platform/observability"
	platformpostgres "github.com/moneta-site/go-calculators-api/internal/platform/postgres"
)

// Run boots the calculators HTTP API with observability, stores, and the
// notification dispatcher wired.
func Run(ctx context.Context) error {
	const serviceName = "calculators-api"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if cfg.WebhookSecret == "" {
		logger.Warn("PAYMENT_WEBHOOK_SECRET not set, webhook deliveries will be refused")
	}

	store, seriesProvider, cleanupStore := buildStores(ctx, cfg, logger)
	defer cleanupStore()

	notifier := entnotify.NewLogNotifier(logger, cfg.BasePublicURL)
	var dispatcher entports.NotificationDispatcher = entworkflows.NewInlineDispatcher(notifier)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, dispatching notifications inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		dispatcher = entworkflows.NewTemporalDispatcher(temporalClient)
		logger.Info("Temporal notification dispatch enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	coreEntitlements := entapp.NewService(store,
		entapp.WithNotificationDispatcher(dispatcher),
		entapp.WithLogger(logger),
	)
	entitlements := entobs.New(
		coreEntitlements,
		entobs.WithLogger(logger),
		entobs.WithTracer(instruments.Tracer("internal.entitlements.application")),
		entobs.WithMeter(instruments.Meter("internal.entitlements.application")),
	)

	calculators := calcapp.NewService(
		seriesProvider,
		calcmemory.NewSeriesProvider(),
		cfg.DefaultCountry,
		cfg.DefaultProjectedInflation,
		calcapp.WithLogger(logger),
	)

	processor := webhookapp.NewProcessor(webhookapp.NewVerifier(cfg.WebhookSecret), entitlements, logger)

	router := NewRouter(serviceName, RouterDeps{
		Calculators:  calculators,
		Entitlements: entitlements,
		Processor:    processor,
		AccessURL:    cfg.AccessExplanationURL(),
	})
	addr := ":" + cfg.Port
	logger.Info("calculators API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("calculators API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// buildStores selects the durable PostgreSQL adapters when a DSN is
// configured and falls back to in-memory implementations otherwise.
func buildStores(ctx context.Context, cfg Config, logger *slog.Logger) (entports.Store, calcports.SeriesProvider, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, using in-memory entitlement store and static inflation series")
		return entmemory.NewStore(), calcmemory.NewSeriesProvider(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory stores", slog.String("error", err.Error()))
		return entmemory.NewStore(), calcmemory.NewSeriesProvider(), func() {}
	}
	if err := platformmigrations.Run(db); err != nil {
		logger.Error("failed to apply schema migrations", slog.String("error", err.Error()))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory stores", slog.String("error", err.Error()))
		return entmemory.NewStore(), calcmemory.NewSeriesProvider(), func() {}
	}
	logger.Info("entitlement store and macro data configured with postgres")
	return entpostgres.NewStore(db), calcpostgres.NewMacroRepository(db), func() { _ = sqlDB.Close() }
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}
