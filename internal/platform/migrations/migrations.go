package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace
// adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&accessGrantRecord{},
		&macroDataRecord{},
	)
}

// Access grant schema mirrors the entitlements Postgres adapter.
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

// Macro data schema mirrors the calculators Postgres adapter.
type macroDataRecord struct {
	ID            int64     `gorm:"primaryKey;column:id"`
	Country       string    `gorm:"column:country;size:8;uniqueIndex:idx_macro_country_year"`
	Year          int       `gorm:"column:year;uniqueIndex:idx_macro_country_year"`
	InflationRate float64   `gorm:"column:inflation_rate"`
	InterestRate  *float64  `gorm:"column:interest_rate"`
	M2Growth      *float64  `gorm:"column:m2_growth"`
	Source        string    `gorm:"column:source;size:64"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (macroDataRecord) TableName() string { return "macro_data" }
