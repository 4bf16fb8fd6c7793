package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeries_Valid(t *testing.T) {
	series, err := NewSeries("NG", []InflationDataPoint{
		{Year: 2020, Rate: 13.2},
		{Year: 2021, Rate: 16.9},
		{Year: 2022, Rate: 18.8},
	})
	require.NoError(t, err)

	assert.Equal(t, "NG", series.Country())
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, 2020, series.FirstYear())
	assert.Equal(t, 2022, series.LastYear())
	assert.Equal(t, 1, series.IndexOf(2021))
	assert.Equal(t, -1, series.IndexOf(1999))
}

func TestNewSeries_RejectsEmpty(t *testing.T) {
	_, err := NewSeries("NG", nil)
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestNewSeries_RejectsDuplicateYear(t *testing.T) {
	_, err := NewSeries("NG", []InflationDataPoint{
		{Year: 2020, Rate: 13.2},
		{Year: 2020, Rate: 14.0},
	})
	assert.ErrorIs(t, err, ErrDuplicateYear)
}

func TestNewSeries_RejectsUnorderedYears(t *testing.T) {
	_, err := NewSeries("NG", []InflationDataPoint{
		{Year: 2021, Rate: 16.9},
		{Year: 2020, Rate: 13.2},
	})
	assert.ErrorIs(t, err, ErrUnorderedSeries)
}

func TestSeries_PointsReturnsCopy(t *testing.T) {
	series, err := NewSeries("NG", []InflationDataPoint{
		{Year: 2020, Rate: 13.2},
		{Year: 2021, Rate: 16.9},
	})
	require.NoError(t, err)

	points := series.Points()
	points[0].Rate = 99.9
	assert.Equal(t, 13.2, series.At(0).Rate)
}
