package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moneta-site/go-calculators-api/internal/domains/calculators/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/calculators/ports"
)

var _ ports.SeriesProvider = (*MacroRepository)(nil)

// MacroRepository reads country macro data (inflation, interest, M2 growth)
// from PostgreSQL using GORM.
type MacroRepository struct {
	db *gorm.DB
}

// NewMacroRepository wires a PostgreSQL-backed macro-data repository. Caller
// manages DB lifecycle.
func NewMacroRepository(db *gorm.DB) *MacroRepository {
	return &MacroRepository{db: db}
}

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

// SeriesForCountry loads the full inflation series for a country ordered by
// year. Connection failures surface as ErrSeriesUnavailable so the caller can
// choose fallback over a silent empty result.
func (r *MacroRepository) SeriesForCountry(ctx context.Context, country string) (domain.Series, error) {
	if err := r.ensureDB(); err != nil {
		return domain.Series{}, fmt.Errorf("%w: %w", ports.ErrSeriesUnavailable, err)
	}
	var records []macroDataRecord
	if err := r.db.WithContext(ctx).
		Where("country = ?", country).
		Order("year ASC").
		Find(&records).Error; err != nil {
		return domain.Series{}, fmt.Errorf("%w: %w", ports.ErrSeriesUnavailable, err)
	}
	if len(records) == 0 {
		return domain.Series{}, ports.ErrSeriesNotFound
	}
	points := make([]domain.InflationDataPoint, 0, len(records))
	for _, rec := range records {
		points = append(points, domain.InflationDataPoint{Year: rec.Year, Rate: rec.InflationRate})
	}
	return domain.NewSeries(country, points)
}

// MacroDataPoint is one year of source macro data to persist.
type MacroDataPoint struct {
	Country       string
	Year          int
	InflationRate float64
	InterestRate  *float64
	M2Growth      *float64
	Source        string
}

// UpsertPoints inserts or refreshes macro rows keyed by (country, year).
func (r *MacroRepository) UpsertPoints(ctx context.Context, points []MacroDataPoint) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	records := make([]macroDataRecord, 0, len(points))
	for _, p := range points {
		records = append(records, macroDataRecord{
			Country:       p.Country,
			Year:          p.Year,
			InflationRate: p.InflationRate,
			InterestRate:  p.InterestRate,
			M2Growth:      p.M2Growth,
			Source:        p.Source,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "country"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"inflation_rate", "interest_rate", "m2_growth", "source", "updated_at"}),
		}).
		Create(&records).Error
}

func (r *MacroRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres macro repository not configured")
	}
	return nil
}
