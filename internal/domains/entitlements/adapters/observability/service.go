package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
)

const tracerName = "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/observability/service"

// Service decorates the entitlements application port with tracing, logging,
// and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// Grant applies one successful payment with instrumentation. The raw identity
// never reaches the span attributes; only the source reference does.
func (s *Service) Grant(ctx context.Context, cmd ports.GrantCommand) (*domain.AccessGrant, error) {
	ctx, span := s.startSpan(ctx, "Service.Grant",
		attribute.String("grant.source_reference", cmd.SourceReference))
	defer span.End()

	s.logInfo(ctx, "applying payment grant", slog.String("sourceReference", cmd.SourceReference))
	grant, err := s.inner.Grant(ctx, cmd)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to apply payment grant",
			slog.String("sourceReference", cmd.SourceReference))
	}
	if grant != nil {
		s.metrics.recordGranted(ctx)
		s.logInfo(ctx, "payment grant applied",
			slog.String("identity", grant.Identity),
			slog.Time("validUntil", grant.ValidUntil))
	}
	return grant, nil
}

// IsEntitled answers the read path with instrumentation.
func (s *Service) IsEntitled(ctx context.Context, rawIdentity string) (bool, error) {
	ctx, span := s.startSpan(ctx, "Service.IsEntitled")
	defer span.End()

	entitled, err := s.inner.IsEntitled(ctx, rawIdentity)
	if err != nil {
		return false, s.handleError(ctx, span, err, "entitlement lookup failed")
	}
	span.SetAttributes(attribute.Bool("grant.entitled", entitled))
	s.metrics.recordLookup(ctx, entitled)
	return entitled, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	granted metric.Int64Counter
	lookups metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	granted, _ := m.Int64Counter("entitlements.service.granted", metric.WithDescription("Number of payment grants applied"))
	lookups, _ := m.Int64Counter("entitlements.service.lookups", metric.WithDescription("Number of entitlement lookups"))
	return serviceMetrics{granted: granted, lookups: lookups}
}

func (m serviceMetrics) recordGranted(ctx context.Context) {
	addCounter(ctx, m.granted, 1)
}

func (m serviceMetrics) recordLookup(ctx context.Context, entitled bool) {
	addCounter(ctx, m.lookups, 1, attribute.Bool("grant.entitled", entitled))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
