package ports

import (
	"context"
	"errors"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
)

var (
	// ErrNotFound signals no grant row exists for the identity. Absence is a
	// distinct condition from the store being unreachable.
	ErrNotFound = errors.New("access grant not found")
	// ErrStoreUnavailable signals a retryable infrastructure failure. It must
	// never be collapsed into a "no access" answer.
	ErrStoreUnavailable = errors.New("entitlement store unavailable")
)

// GrantRequest identifies one successful payment to apply.
type GrantRequest struct {
	Identity          string
	SourceReference   string
	CustomerReference string
}

// Store persists per-identity access windows. Grant must be atomic per
// identity: two concurrent calls may not lose an extension or apply one
// twice, and a replayed SourceReference must return the stored grant
// unchanged.
type Store interface {
	Grant(ctx context.Context, req GrantRequest) (*domain.AccessGrant, error)
	Lookup(ctx context.Context, identity string) (*domain.AccessGrant, error)
}
