package report

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// StressScenario names a predefined market shock
type StressScenario string

const (
	StressMarketCrash          StressScenario = "MARKET_CRASH"
	StressRealEstateCorrection StressScenario = "REAL_ESTATE_CORRECTION"
	StressRateHike             StressScenario = "RATE_HIKE"
)

// Shock is a set of value changes per asset type, as fractions (-0.40 = -40%)
type Shock struct {
	Scenario    StressScenario
	Description string
	Changes     map[string]float64
}

// Shocks are applied in this order
var Shocks = []Shock{
	{
		Scenario:    StressMarketCrash,
		Description: "Equity market crash comparable to 2008",
		Changes: map[string]float64{
			domain.AssetTypeStocks:     -0.40,
			domain.AssetTypeFunds:      -0.30,
			domain.AssetTypeCrypto:     -0.60,
			domain.AssetTypeBonds:      -0.10,
			domain.AssetTypeRetirement: -0.20,
			domain.AssetTypeBusiness:   -0.25,
		},
	},
	{
		Scenario:    StressRealEstateCorrection,
		Description: "Real estate prices fall by a fifth",
		Changes: map[string]float64{
			domain.AssetTypeRealEstate: -0.20,
			domain.AssetTypeBusiness:   -0.10,
		},
	},
	{
		Scenario:    StressRateHike,
		Description: "Interest rates rise by 3 points",
		Changes: map[string]float64{
			domain.AssetTypeBonds:      -0.15,
			domain.AssetTypeRealEstate: -0.10,
			domain.AssetTypeStocks:     -0.10,
			domain.AssetTypeFunds:      -0.08,
		},
	},
}

// StressResult is the patrimony after one shock
type StressResult struct {
	Scenario       StressScenario  `json:"scenario"`
	Description    string          `json:"description"`
	ValueBefore    decimal.Decimal `json:"valueBefore"`
	ValueAfter     decimal.Decimal `json:"valueAfter"`
	Loss           decimal.Decimal `json:"loss"`
	LossPercentage float64         `json:"lossPercentage"`
	Debt           decimal.Decimal `json:"debt"`
	NetValueAfter  decimal.Decimal `json:"netValueAfter"`
}

// CalculateStressTests applies every shock to the filtered assets.
// Debts are unaffected by the shocks, so net value after a shock can turn negative.
func CalculateStressTests(assets []*domain.Asset, filters Filters) []StressResult {
	filtered := filters.Apply(assets)

	before, debt := decimal.Zero, decimal.Zero
	for _, a := range filtered {
		before = before.Add(a.CurrentValue)
		debt = debt.Add(assetDebt(a))
	}

	results := make([]StressResult, 0, len(Shocks))
	for _, shock := range Shocks {
		after := decimal.Zero
		for _, a := range filtered {
			change := decimal.NewFromFloat(shock.Changes[domain.TypeLabel(a.Type)])
			after = after.Add(a.CurrentValue.Mul(decimal.NewFromInt(1).Add(change)))
		}

		loss := before.Sub(after)
		results = append(results, StressResult{
			Scenario:       shock.Scenario,
			Description:    shock.Description,
			ValueBefore:    before,
			ValueAfter:     after,
			Loss:           loss,
			LossPercentage: percentage(loss, before),
			Debt:           debt,
			NetValueAfter:  after.Sub(debt),
		})
	}
	return results
}
