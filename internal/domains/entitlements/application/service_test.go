package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entmemory "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/memory"
	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
)

type failingStore struct {
	err error
}

func (s failingStore) Grant(context.Context, ports.GrantRequest) (*domain.AccessGrant, error) {
	return nil, s.err
}

func (s failingStore) Lookup(context.Context, string) (*domain.AccessGrant, error) {
	return nil, s.err
}

type recordingDispatcher struct {
	grants []domain.AccessGrant
	err    error
}

func (d *recordingDispatcher) DispatchGrantNotification(_ context.Context, grant domain.AccessGrant) error {
	d.grants = append(d.grants, grant)
	return d.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGrant_RoundTrip(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := entmemory.NewStore()
	store.WithClock(fixedClock(now))
	svc := NewService(store, WithClock(fixedClock(now)))

	grant, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     " Ada@Example.COM ",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", grant.Identity)
	assert.Equal(t, now.AddDate(1, 0, 0), grant.ValidUntil)

	entitled, err := svc.IsEntitled(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, entitled)
}

func TestGrant_ReplayedReferenceIsNoOp(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := entmemory.NewStore()
	store.WithClock(fixedClock(now))
	svc := NewService(store, WithClock(fixedClock(now)))

	first, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)

	replayed, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ValidUntil, replayed.ValidUntil)
}

func TestGrant_NewReferenceStacksOneYear(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := entmemory.NewStore()
	store.WithClock(fixedClock(now))
	svc := NewService(store, WithClock(fixedClock(now)))

	first, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)

	second, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-002",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ValidUntil.AddDate(1, 0, 0), second.ValidUntil)
}

func TestGrant_LapsedGrantRestartsFromNow(t *testing.T) {
	past := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := entmemory.NewStore()
	store.WithClock(fixedClock(past))
	svc := NewService(store, WithClock(fixedClock(past)))

	_, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store.WithClock(fixedClock(now))
	renewed, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-002",
	})
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(1, 0, 0), renewed.ValidUntil)
}

func TestGrant_RejectsMalformedIdentityBeforeStore(t *testing.T) {
	svc := NewService(failingStore{err: ports.ErrStoreUnavailable})

	_, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "not-an-email",
		SourceReference: "txn-001",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ports.ErrStoreUnavailable)
}

func TestGrant_RequiresSourceReference(t *testing.T) {
	svc := NewService(entmemory.NewStore())

	_, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "   ",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrMissingReference)
}

func TestGrant_PropagatesStoreOutage(t *testing.T) {
	svc := NewService(failingStore{err: ports.ErrStoreUnavailable})

	_, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-001",
	})
	assert.ErrorIs(t, err, ports.ErrStoreUnavailable)
}

func TestGrant_DispatchesNotification(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc := NewService(entmemory.NewStore(), WithNotificationDispatcher(dispatcher))

	_, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)
	require.Len(t, dispatcher.grants, 1)
	assert.Equal(t, "ada@example.com", dispatcher.grants[0].Identity)
}

func TestGrant_NotificationFailureDoesNotFailGrant(t *testing.T) {
	dispatcher := &recordingDispatcher{err: errors.New("queue down")}
	svc := NewService(entmemory.NewStore(), WithNotificationDispatcher(dispatcher))

	grant, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)
	require.NotNil(t, grant)

	entitled, err := svc.IsEntitled(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, entitled)
}

func TestIsEntitled_MalformedIdentityIsFalseWithoutStoreAccess(t *testing.T) {
	svc := NewService(failingStore{err: ports.ErrStoreUnavailable})

	entitled, err := svc.IsEntitled(context.Background(), "not-an-email")
	require.NoError(t, err)
	assert.False(t, entitled)
}

func TestIsEntitled_UnknownIdentityIsFalse(t *testing.T) {
	svc := NewService(entmemory.NewStore())

	entitled, err := svc.IsEntitled(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, entitled)
}

func TestIsEntitled_LapsedGrantIsFalse(t *testing.T) {
	past := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := entmemory.NewStore()
	store.WithClock(fixedClock(past))
	svc := NewService(store, WithClock(fixedClock(now)))

	_, err := svc.Grant(context.Background(), ports.GrantCommand{
		RawIdentity:     "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)

	entitled, err := svc.IsEntitled(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, entitled)
}

func TestIsEntitled_StoreOutagePropagates(t *testing.T) {
	svc := NewService(failingStore{err: ports.ErrStoreUnavailable})

	_, err := svc.IsEntitled(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, ports.ErrStoreUnavailable)
}
