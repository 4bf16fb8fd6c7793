package domain

import (
	"errors"
	"math"
)

// RetirementAge is the fixed target age for the do-nothing projection.
const RetirementAge = 65

// Age bounds accepted by the retirement projector.
const (
	MinProjectionAge = 18
	MaxProjectionAge = 100
)

var (
	ErrAgeOutOfRange  = errors.New("current age is outside the supported range")
	ErrNegativeAmount = errors.New("savings and contributions must not be negative")
	ErrInvalidRate    = errors.New("projected inflation rate must be a finite number")
)

// RetirementProjectionPoint is one simulated year between now and retirement.
type RetirementProjectionPoint struct {
	Year    int     `json:"year"`
	Age     int     `json:"age"`
	Nominal float64 `json:"nominal"`
	Real    float64 `json:"real"`
}

// RetirementProjection is the outcome of leaving savings as idle cash while
// contributing monthly until the fixed retirement age.
type RetirementProjection struct {
	YearsToRetirement   int                         `json:"yearsToRetirement"`
	NominalAtRetirement float64                     `json:"nominalAtRetirement"`
	RealAtRetirement    float64                     `json:"realAtRetirement"`
	ChangePercent       float64                     `json:"changePercent"`
	YearlyBreakdown     []RetirementProjectionPoint `json:"yearlyBreakdown"`
}

// ProjectRetirement simulates a "do nothing" savings outcome: contributions
// accumulate as idle cash (monthlyContribution * 12 per year, no interest) and
// each year's real value discounts the nominal balance by a single constant
// inflation rate compounded per elapsed year, real = nominal/(1+rate/100)^n.
//
// This deliberately uses a flat projected rate rather than a historical
// per-year series; ProjectPurchasingPower is the series-driven counterpart and
// the two are not interchangeable.
//
// ChangePercent compares the final real value against the initial savings
// balance, i.e. true purchasing-power change net of the new contributions.
// A currentAge at or past retirement yields a single-point projection of the
// current savings with zero change.
func ProjectRetirement(currentAge int, currentSavings, monthlyContribution, annualInflationPercent float64, currentYear int) (RetirementProjection, error) {
	if currentAge < MinProjectionAge || currentAge > MaxProjectionAge {
		return RetirementProjection{}, ErrAgeOutOfRange
	}
	if currentSavings < 0 || monthlyContribution < 0 ||
		math.IsNaN(currentSavings) || math.IsNaN(monthlyContribution) ||
		math.IsInf(currentSavings, 0) || math.IsInf(monthlyContribution, 0) {
		return RetirementProjection{}, ErrNegativeAmount
	}
	if math.IsNaN(annualInflationPercent) || math.IsInf(annualInflationPercent, 0) {
		return RetirementProjection{}, ErrInvalidRate
	}

	if currentAge >= RetirementAge {
		rounded := math.Round(currentSavings)
		return RetirementProjection{
			YearsToRetirement:   0,
			NominalAtRetirement: rounded,
			RealAtRetirement:    rounded,
			ChangePercent:       0,
			YearlyBreakdown: []RetirementProjectionPoint{{
				Year:    currentYear,
				Age:     currentAge,
				Nominal: rounded,
				Real:    rounded,
			}},
		}, nil
	}

	years := RetirementAge - currentAge
	discountFactor := 1 + annualInflationPercent/100

	breakdown := make([]RetirementProjectionPoint, 0, years+1)
	breakdown = append(breakdown, RetirementProjectionPoint{
		Year:    currentYear,
		Age:     currentAge,
		Nominal: math.Round(currentSavings),
		Real:    math.Round(currentSavings),
	})

	nominal := currentSavings
	real := currentSavings
	for elapsed := 1; elapsed <= years; elapsed++ {
		nominal += monthlyContribution * 12
		real = nominal / math.Pow(discountFactor, float64(elapsed))
		breakdown = append(breakdown, RetirementProjectionPoint{
			Year:    currentYear + elapsed,
			Age:     currentAge + elapsed,
			Nominal: math.Round(nominal),
			Real:    math.Round(real),
		})
	}

	changePercent := 0.0
	if currentSavings > 0 {
		changePercent = (real - currentSavings) / currentSavings * 100
	}

	return RetirementProjection{
		YearsToRetirement:   years,
		NominalAtRetirement: math.Round(nominal),
		RealAtRetirement:    math.Round(real),
		ChangePercent:       changePercent,
		YearlyBreakdown:     breakdown,
	}, nil
}
