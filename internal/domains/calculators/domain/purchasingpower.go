package domain

import "math"

// PurchasingPowerPoint is one simulated year of a lump-sum projection. Nominal
// is the unadjusted balance, Real the balance divided by cumulative inflation
// since the start year. Both are rounded to whole currency units.
type PurchasingPowerPoint struct {
	Year    int     `json:"year"`
	Nominal float64 `json:"nominal"`
	Real    float64 `json:"real"`
}

// ProjectPurchasingPower walks an inflation series from startYear to endYear
// and reports, per year, the nominal balance of the amount (compounded by the
// annual yield percentage) next to its inflation-adjusted real value.
//
// At the start year real equals nominal equals amount: no inflation has been
// applied yet. Each later year compounds nominal by the yield and the
// cumulative inflation factor by (1 + rate/100), so real(y) =
// nominal(y) / cumulativeInflation(startYear..y).
//
// Invalid input degrades to an empty slice rather than an error: a start year
// absent from the series, endYear before startYear, a non-positive or
// non-finite amount, or a negative or non-finite yield. Rounding happens once
// per emitted point; the internal accumulators are never rounded, so rounding
// error does not compound.
func ProjectPurchasingPower(amount float64, startYear, endYear int, annualYieldPercent float64, series Series) []PurchasingPowerPoint {
	if !isFinitePositive(amount) {
		return nil
	}
	if math.IsNaN(annualYieldPercent) || math.IsInf(annualYieldPercent, 0) || annualYieldPercent < 0 {
		return nil
	}
	if endYear < startYear {
		return nil
	}
	start := series.IndexOf(startYear)
	if start < 0 {
		return nil
	}

	points := []PurchasingPowerPoint{{
		Year:    startYear,
		Nominal: math.Round(amount),
		Real:    math.Round(amount),
	}}

	nominal := amount
	cumulativeInflation := 1.0
	yieldFactor := 1 + annualYieldPercent/100

	for i := start + 1; i < series.Len(); i++ {
		p := series.At(i)
		if p.Year > endYear {
			break
		}
		nominal *= yieldFactor
		cumulativeInflation *= 1 + p.Rate/100
		points = append(points, PurchasingPowerPoint{
			Year:    p.Year,
			Nominal: math.Round(nominal),
			Real:    math.Round(nominal / cumulativeInflation),
		})
	}
	return points
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
