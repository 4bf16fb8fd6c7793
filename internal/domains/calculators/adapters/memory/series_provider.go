package memory

import (
	"context"
	"fmt"

	"github.com/moneta-site/go-calculators-api/internal/domains/calculators/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/calculators/ports"
)

var _ ports.SeriesProvider = (*SeriesProvider)(nil)

// DefaultCountry is the country the compiled-in series covers.
const DefaultCountry = "NG"

// Annual consumer price inflation, percent. Shipped as the static fallback so
// the calculators keep working when the macro-data store is unreachable.
var defaultSeriesPoints = []domain.InflationDataPoint{
	{Year: 2010, Rate: 13.7},
	{Year: 2011, Rate: 10.8},
	{Year: 2012, Rate: 12.2},
	{Year: 2013, Rate: 8.5},
	{Year: 2014, Rate: 8.0},
	{Year: 2015, Rate: 9.0},
	{Year: 2016, Rate: 15.7},
	{Year: 2017, Rate: 16.5},
	{Year: 2018, Rate: 12.1},
	{Year: 2019, Rate: 11.4},
	{Year: 2020, Rate: 13.2},
	{Year: 2021, Rate: 17.0},
	{Year: 2022, Rate: 18.8},
	{Year: 2023, Rate: 24.7},
	{Year: 2024, Rate: 33.2},
}

// SeriesProvider serves compiled-in inflation series. It backs development
// setups and acts as the static fallback behind the durable provider.
type SeriesProvider struct {
	series map[string]domain.Series
}

// NewSeriesProvider builds a provider preloaded with the default series.
func NewSeriesProvider() *SeriesProvider {
	defaults, err := domain.NewSeries(DefaultCountry, defaultSeriesPoints)
	if err != nil {
		// The compiled-in data violating series invariants is a programming
		// error, not a runtime condition.
		panic(fmt.Sprintf("static inflation series invalid: %v", err))
	}
	return &SeriesProvider{series: map[string]domain.Series{DefaultCountry: defaults}}
}

// NewSeriesProviderWith builds a provider serving exactly the given series,
// used as a test double.
func NewSeriesProviderWith(series ...domain.Series) *SeriesProvider {
	m := make(map[string]domain.Series, len(series))
	for _, s := range series {
		m[s.Country()] = s
	}
	return &SeriesProvider{series: m}
}

// SeriesForCountry returns the compiled-in series for the country. The map is
// never mutated after construction, so concurrent reads are safe.
func (p *SeriesProvider) SeriesForCountry(_ context.Context, country string) (domain.Series, error) {
	s, ok := p.series[country]
	if !ok {
		return domain.Series{}, ports.ErrSeriesNotFound
	}
	return s, nil
}
