package domain

import "errors"

// InflationDataPoint is a single year's inflation rate, expressed as a
// percentage (17.6 means 17.6%).
type InflationDataPoint struct {
	Year int
	Rate float64
}

var (
	ErrEmptySeries     = errors.New("inflation series is empty")
	ErrDuplicateYear   = errors.New("inflation series contains a duplicate year")
	ErrUnorderedSeries = errors.New("inflation series years must be strictly increasing")
)

// Series is an ordered, gap-checked inflation series for one country.
type Series struct {
	country string
	points  []InflationDataPoint
}

// NewSeries validates ordering invariants and builds a Series. Years must be
// unique and strictly increasing.
func NewSeries(country string, points []InflationDataPoint) (Series, error) {
	if len(points) == 0 {
		return Series{}, ErrEmptySeries
	}
	for i := 1; i < len(points); i++ {
		switch {
		case points[i].Year == points[i-1].Year:
			return Series{}, ErrDuplicateYear
		case points[i].Year < points[i-1].Year:
			return Series{}, ErrUnorderedSeries
		}
	}
	copied := append([]InflationDataPoint{}, points...)
	return Series{country: country, points: copied}, nil
}

// Country returns the country code the series was loaded for.
func (s Series) Country() string { return s.country }

// Len returns the number of data points.
func (s Series) Len() int { return len(s.points) }

// Points returns a defensive copy of the underlying data points.
func (s Series) Points() []InflationDataPoint {
	return append([]InflationDataPoint{}, s.points...)
}

// At returns the i-th data point.
func (s Series) At(i int) InflationDataPoint { return s.points[i] }

// IndexOf returns the position of the given year, or -1 when the year is not
// covered by the series.
func (s Series) IndexOf(year int) int {
	for i, p := range s.points {
		if p.Year == year {
			return i
		}
	}
	return -1
}

// FirstYear returns the earliest covered year. Zero for an empty series.
func (s Series) FirstYear() int {
	if len(s.points) == 0 {
		return 0
	}
	return s.points[0].Year
}

// LastYear returns the latest covered year. Zero for an empty series.
func (s Series) LastYear() int {
	if len(s.points) == 0 {
		return 0
	}
	return s.points[len(s.points)-1].Year
}
