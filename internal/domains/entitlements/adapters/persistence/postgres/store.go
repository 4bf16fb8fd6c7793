package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
)

var _ ports.Store = (*Store)(nil)

// Store persists access grants in PostgreSQL using GORM.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore wires a PostgreSQL-backed entitlement store. Caller manages DB
// lifecycle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

type accessGrantRecord struct {
	ID                int64          `gorm:"primaryKey;column:id"`
	Identity          string         `gorm:"column:identity;size:320;uniqueIndex"`
	ValidUntil        time.Time      `gorm:"column:valid_until;index"`
	SourceReference   string         `gorm:"column:source_reference;size:255"`
	CustomerReference string         `gorm:"column:customer_reference;size:255"`
	ReferenceHistory  pq.StringArray `gorm:"column:reference_history;type:text[]"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
}

func (accessGrantRecord) TableName() string { return "access_grants" }

// Grant applies one payment in a single upsert statement so concurrent
// deliveries for the same identity cannot lose an extension. The CASE
// branches encode the lifecycle: a replayed source reference leaves the row
// untouched, a live grant stacks one calendar year onto its current expiry,
// and a lapsed grant restarts a year from now.
func (s *Store) Grant(ctx context.Context, req ports.GrantRequest) (*domain.AccessGrant, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	now := s.now()
	record := accessGrantRecord{
		Identity:          req.Identity,
		ValidUntil:        domain.NextExpiry(nil, now),
		SourceReference:   req.SourceReference,
		CustomerReference: req.CustomerReference,
		ReferenceHistory:  pq.StringArray{req.SourceReference},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "identity"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"valid_until": gorm.Expr(`CASE
					WHEN access_grants.source_reference = excluded.source_reference THEN access_grants.valid_until
					WHEN access_grants.valid_until > excluded.created_at THEN access_grants.valid_until + INTERVAL '1 year'
					ELSE excluded.valid_until
				END`),
				"source_reference": gorm.Expr("excluded.source_reference"),
				"customer_reference": gorm.Expr(`CASE
					WHEN access_grants.source_reference = excluded.source_reference THEN access_grants.customer_reference
					ELSE excluded.customer_reference
				END`),
				"reference_history": gorm.Expr(`CASE
					WHEN access_grants.source_reference = excluded.source_reference THEN access_grants.reference_history
					ELSE array_append(access_grants.reference_history, excluded.source_reference)
				END`),
				"updated_at": gorm.Expr(`CASE
					WHEN access_grants.source_reference = excluded.source_reference THEN access_grants.updated_at
					ELSE excluded.updated_at
				END`),
			}),
		}).
		Create(&record).Error
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return s.Lookup(ctx, req.Identity)
}

// Lookup fetches the grant row for an identity.
func (s *Store) Lookup(ctx context.Context, identity string) (*domain.AccessGrant, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record accessGrantRecord
	if err := s.db.WithContext(ctx).First(&record, "identity = ?", identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, s.mapStoreError(err)
	}
	return record.toDomain(), nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: postgres entitlement store not configured", ports.ErrStoreUnavailable)
	}
	return nil
}

// mapStoreError keeps constraint violations distinguishable from outages: a
// unique violation is a data bug to surface loudly, anything else on this
// path is retryable infrastructure failure.
func (s *Store) mapStoreError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("access grant uniqueness violated: %w", err)
	}
	return fmt.Errorf("%w: %w", ports.ErrStoreUnavailable, err)
}

func (r accessGrantRecord) toDomain() *domain.AccessGrant {
	return &domain.AccessGrant{
		Identity:          r.Identity,
		ValidUntil:        r.ValidUntil,
		SourceReference:   r.SourceReference,
		CustomerReference: r.CustomerReference,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
