package ports

import (
	"context"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
)

// GrantCommand carries the raw payment facts before identity normalization.
type GrantCommand struct {
	RawIdentity       string
	SourceReference   string
	CustomerReference string
}

// Service exposes the entitlements use cases consumed by transport adapters
// and decorators.
type Service interface {
	// Grant applies one successful payment: normalize, persist atomically,
	// then dispatch the best-effort confirmation.
	Grant(ctx context.Context, cmd GrantCommand) (*domain.AccessGrant, error)
	// IsEntitled answers the read path. A malformed identity is simply not
	// entitled; a store outage is an error, never a false.
	IsEntitled(ctx context.Context, rawIdentity string) (bool, error)
}
