package ports

import (
	"context"
	"errors"

	"github.com/moneta-site/go-calculators-api/internal/domains/calculators/domain"
)

// ErrSeriesUnavailable signals the backing macro-data source could not be
// reached. Callers decide between fallback and propagation; providers never
// silently substitute data.
var ErrSeriesUnavailable = errors.New("inflation series unavailable")

// ErrSeriesNotFound signals no data exists for the requested country.
var ErrSeriesNotFound = errors.New("inflation series not found")

// SeriesProvider supplies an ordered, gap-checked inflation series for a
// country. Implementations must return series validated by domain.NewSeries
// and must be safe for concurrent use.
type SeriesProvider interface {
	SeriesForCountry(ctx context.Context, country string) (domain.Series, error)
}
