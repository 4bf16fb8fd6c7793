package application

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/moneta-site/go-calculators-api/internal/domains/calculators/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/calculators/ports"
)

// PurchasingPowerInput carries the parameters for a lump-sum decay projection.
type PurchasingPowerInput struct {
	Amount             float64
	StartYear          int
	EndYear            int
	AnnualYieldPercent float64
	Country            string
}

// RetirementInput carries the parameters for a do-nothing retirement
// projection. ProjectedInflationPercent is optional; the configured default
// applies when nil.
type RetirementInput struct {
	CurrentAge                int
	CurrentSavings            float64
	MonthlyContribution       float64
	ProjectedInflationPercent *float64
}

// Service orchestrates the calculator use cases. It owns the single decision
// point between the durable series source and the static fallback.
type Service struct {
	primary          ports.SeriesProvider
	fallback         ports.SeriesProvider
	defaultCountry   string
	defaultInflation float64
	logger           *slog.Logger
	now              func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the calculators service. The fallback provider may be nil
// when no static data ships for the deployment; defaultInflation is the
// projected annual rate applied when the caller supplies none.
func NewService(primary, fallback ports.SeriesProvider, defaultCountry string, defaultInflation float64, opts ...Option) *Service {
	s := &Service{
		primary:          primary,
		fallback:         fallback,
		defaultCountry:   defaultCountry,
		defaultInflation: defaultInflation,
		logger:           slog.Default(),
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PurchasingPower projects nominal versus real value of a lump sum across the
// historical inflation series. Out-of-range requests degrade to an empty
// projection; an unreachable series source propagates as a retryable error
// only when the fallback cannot serve either.
func (s *Service) PurchasingPower(ctx context.Context, input PurchasingPowerInput) ([]domain.PurchasingPowerPoint, error) {
	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount <= 0 {
		return nil, mapError(domain.ErrNegativeAmount)
	}
	if math.IsNaN(input.AnnualYieldPercent) || math.IsInf(input.AnnualYieldPercent, 0) || input.AnnualYieldPercent < 0 {
		return nil, mapError(domain.ErrInvalidRate)
	}
	series, err := s.resolveSeries(ctx, s.normalizeCountry(input.Country))
	if err != nil {
		if errors.Is(err, ports.ErrSeriesNotFound) {
			return []domain.PurchasingPowerPoint{}, nil
		}
		return nil, err
	}
	return domain.ProjectPurchasingPower(input.Amount, input.StartYear, input.EndYear, input.AnnualYieldPercent, series), nil
}

// Retirement projects a do-nothing savings outcome to the fixed retirement
// age using a constant projected inflation rate.
func (s *Service) Retirement(_ context.Context, input RetirementInput) (domain.RetirementProjection, error) {
	rate := s.defaultInflation
	if input.ProjectedInflationPercent != nil {
		rate = *input.ProjectedInflationPercent
	}
	projection, err := domain.ProjectRetirement(
		input.CurrentAge,
		input.CurrentSavings,
		input.MonthlyContribution,
		rate,
		s.now().Year(),
	)
	if err != nil {
		return domain.RetirementProjection{}, mapError(err)
	}
	return projection, nil
}

// resolveSeries is the only place the fallback decision is made: the primary
// provider is tried first and the static fallback substitutes when the
// primary cannot serve, never silently at call sites. When the fallback
// cannot serve either, the primary's error propagates.
func (s *Service) resolveSeries(ctx context.Context, country string) (domain.Series, error) {
	series, err := s.primary.SeriesForCountry(ctx, country)
	if err == nil {
		return series, nil
	}
	if s.fallback == nil {
		return domain.Series{}, err
	}
	s.logger.Warn("falling back to static inflation series",
		slog.String("country", country), slog.String("error", err.Error()))
	fallbackSeries, fallbackErr := s.fallback.SeriesForCountry(ctx, country)
	if fallbackErr != nil {
		return domain.Series{}, err
	}
	return fallbackSeries, nil
}

func (s *Service) normalizeCountry(country string) string {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return s.defaultCountry
	}
	return country
}
