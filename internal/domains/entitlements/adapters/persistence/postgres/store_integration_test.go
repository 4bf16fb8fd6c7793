//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
	"github.com/moneta-site/go-calculators-api/internal/platform/migrations"
)

func setupEntitlementsPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("calculators_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestStore_GrantAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupEntitlementsPostgresContainer(t)
	defer cleanup()

	store := NewStore(db)
	ctx := context.Background()

	before := time.Now()
	grant, err := store.Grant(ctx, ports.GrantRequest{
		Identity:          "ada@example.com",
		SourceReference:   "txn-001",
		CustomerReference: "cus-42",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", grant.Identity)
	assert.Equal(t, "txn-001", grant.SourceReference)
	assert.True(t, grant.ValidUntil.After(before.AddDate(0, 11, 0)))

	fetched, err := store.Lookup(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, grant.SourceReference, fetched.SourceReference)
	assert.WithinDuration(t, grant.ValidUntil, fetched.ValidUntil, time.Second)
}

func TestStore_LookupUnknownIdentity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupEntitlementsPostgresContainer(t)
	defer cleanup()

	store := NewStore(db)

	_, err := store.Lookup(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStore_ReplayedReferenceLeavesRowUntouched(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupEntitlementsPostgresContainer(t)
	defer cleanup()

	store := NewStore(db)
	ctx := context.Background()

	first, err := store.Grant(ctx, ports.GrantRequest{
		Identity:        "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)

	replayed, err := store.Grant(ctx, ports.GrantRequest{
		Identity:        "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, first.ValidUntil, replayed.ValidUntil, time.Millisecond)
	assert.WithinDuration(t, first.UpdatedAt, replayed.UpdatedAt, time.Millisecond)
}

func TestStore_NewReferenceStacksOneYearOnLiveGrant(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupEntitlementsPostgresContainer(t)
	defer cleanup()

	store := NewStore(db)
	ctx := context.Background()

	first, err := store.Grant(ctx, ports.GrantRequest{
		Identity:        "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)

	second, err := store.Grant(ctx, ports.GrantRequest{
		Identity:        "ada@example.com",
		SourceReference: "txn-002",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, first.ValidUntil.AddDate(1, 0, 0), second.ValidUntil, time.Second)
	assert.Equal(t, "txn-002", second.SourceReference)
}

func TestStore_LapsedGrantRestartsFromNow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupEntitlementsPostgresContainer(t)
	defer cleanup()

	store := NewStore(db)
	ctx := context.Background()

	past := time.Now().AddDate(-2, 0, 0)
	store.WithClock(func() time.Time { return past })
	_, err := store.Grant(ctx, ports.GrantRequest{
		Identity:        "ada@example.com",
		SourceReference: "txn-001",
	})
	require.NoError(t, err)

	store.WithClock(time.Now)
	renewed, err := store.Grant(ctx, ports.GrantRequest{
		Identity:        "ada@example.com",
		SourceReference: "txn-002",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(1, 0, 0), renewed.ValidUntil, time.Minute)
}

func TestStore_ConcurrentGrantsNeverLoseAnExtension(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupEntitlementsPostgresContainer(t)
	defer cleanup()

	store := NewStore(db)
	ctx := context.Background()

	const writers = 8
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			_, err := store.Grant(ctx, ports.GrantRequest{
				Identity:        "ada@example.com",
				SourceReference: "txn-00" + string(rune('1'+n)),
			})
			errs <- err
		}(i)
	}
	for i := 0; i < writers; i++ {
		require.NoError(t, <-errs)
	}

	grant, err := store.Lookup(ctx, "ada@example.com")
	require.NoError(t, err)
	// Eight distinct references land one base year plus seven extensions.
	assert.WithinDuration(t, time.Now().AddDate(writers, 0, 0), grant.ValidUntil, time.Minute)
}
