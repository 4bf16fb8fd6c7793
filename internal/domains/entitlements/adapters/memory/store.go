package memory

import (
	"context"
	"sync"
	"time"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
)

var _ ports.Store = (*Store)(nil)

// Store is an in-memory entitlement store for development and tests. The
// mutex makes the grant read-decide-write atomic per process, matching the
// single-statement semantics of the PostgreSQL adapter.
type Store struct {
	mu     sync.Mutex
	grants map[string]domain.AccessGrant
	now    func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		grants: map[string]domain.AccessGrant{},
		now:    time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Grant inserts or extends the single grant row for the identity. A replayed
// SourceReference returns the stored grant unchanged.
func (s *Store) Grant(_ context.Context, req ports.GrantRequest) (*domain.AccessGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.grants[req.Identity]; ok {
		if existing.SourceReference == req.SourceReference {
			copied := existing
			return &copied, nil
		}
		existing.ValidUntil = domain.NextExpiry(&existing, now)
		existing.SourceReference = req.SourceReference
		existing.CustomerReference = req.CustomerReference
		existing.UpdatedAt = now
		s.grants[req.Identity] = existing
		copied := existing
		return &copied, nil
	}

	grant := domain.AccessGrant{
		Identity:          req.Identity,
		ValidUntil:        domain.NextExpiry(nil, now),
		SourceReference:   req.SourceReference,
		CustomerReference: req.CustomerReference,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.grants[req.Identity] = grant
	copied := grant
	return &copied, nil
}

// Lookup returns the grant for the identity, or ErrNotFound.
func (s *Store) Lookup(_ context.Context, identity string) (*domain.AccessGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[identity]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copied := grant
	return &copied, nil
}
