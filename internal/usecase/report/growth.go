package report

import (
	"math"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// GrowthLabel names a growth assumption
type GrowthLabel string

const (
	GrowthPessimistic GrowthLabel = "PESSIMISTIC"
	GrowthModerate    GrowthLabel = "MODERATE"
	GrowthOptimistic  GrowthLabel = "OPTIMISTIC"
)

var growthRates = map[GrowthLabel]float64{
	GrowthPessimistic: 0.02,
	GrowthModerate:    0.05,
	GrowthOptimistic:  0.08,
}

// RateOf returns the annual growth rate of a label
func RateOf(label GrowthLabel) (float64, error) {
	r, ok := growthRates[label]
	if !ok {
		return 0, invalidInput("unknown growth label %q", label)
	}
	return r, nil
}

// GrowthPoint is the projected net value after Year years
type GrowthPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// GrowthProjection compounds the current net value at a labelled rate
type GrowthProjection struct {
	Label      GrowthLabel   `json:"label"`
	AnnualRate float64       `json:"annualRate"`
	Years      int           `json:"years"`
	Points     []GrowthPoint `json:"points"`
}

// CalculateGrowth projects net value (assets minus their debts) yearly for 0..years
func CalculateGrowth(assets []*domain.Asset, filters Filters, label GrowthLabel, years int) (*GrowthProjection, error) {
	rate, err := RateOf(label)
	if err != nil {
		return nil, err
	}
	if years < 1 {
		return nil, invalidInput("years must be at least 1")
	}

	net := 0.0
	for _, a := range filters.Apply(assets) {
		net += a.CurrentValue.Sub(assetDebt(a)).InexactFloat64()
	}

	out := &GrowthProjection{Label: label, AnnualRate: rate, Years: years, Points: make([]GrowthPoint, 0, years+1)}
	for y := 0; y <= years; y++ {
		out.Points = append(out.Points, GrowthPoint{Year: y, Value: net * math.Pow(1+rate, float64(y))})
	}
	return out, nil
}
