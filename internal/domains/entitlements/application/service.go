package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
)

// Service orchestrates the entitlements bounded context use cases.
type Service struct {
	store      ports.Store
	dispatcher ports.NotificationDispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithNotificationDispatcher injects the best-effort confirmation dispatch.
func WithNotificationDispatcher(d ports.NotificationDispatcher) Option {
	return func(s *Service) { s.dispatcher = d }
}

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

// NewService wires the entitlements service with its dependencies.
func NewService(store ports.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Grant applies one successful payment. The identity is normalized and
// rejected before any store access; the store performs the atomic
// insert-or-extend including the replayed-reference no-op. A notification
// failure is logged and swallowed: access is already durably granted and must
// not be rolled back for a side effect.
func (s *Service) Grant(ctx context.Context, cmd ports.GrantCommand) (*domain.AccessGrant, error) {
	identity, err := domain.NormalizeIdentity(cmd.RawIdentity)
	if err != nil {
		return nil, mapError(err)
	}
	if strings.TrimSpace(cmd.SourceReference) == "" {
		return nil, mapError(domain.ErrMissingReference)
	}
	grant, err := s.store.Grant(ctx, ports.GrantRequest{
		Identity:          identity,
		SourceReference:   cmd.SourceReference,
		CustomerReference: cmd.CustomerReference,
	})
	if err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.DispatchGrantNotification(ctx, *grant); err != nil {
			s.logger.Warn("grant confirmation notification failed",
				slog.String("identity", grant.Identity),
				slog.String("error", err.Error()))
		}
	}
	return grant, nil
}

// IsEntitled answers whether the identity currently holds a live grant. A
// malformed identity short-circuits to false without touching the store; a
// missing row is false; a store failure propagates so callers can tell an
// outage apart from a genuine absence.
func (s *Service) IsEntitled(ctx context.Context, rawIdentity string) (bool, error) {
	identity, err := domain.NormalizeIdentity(rawIdentity)
	if err != nil {
		return false, nil
	}
	grant, err := s.store.Lookup(ctx, identity)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return grant.IsActive(s.now()), nil
}

var _ ports.Service = (*Service)(nil)
