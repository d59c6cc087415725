package simulation

// Assumptions are the market and tax constants the simulation runs with.
// They are injected so that tests can pin edge cases (zero growth, zero volatility).
type Assumptions struct {
	AnnualGrowthRate    float64 `toml:"annual_growth_rate"`     // fraction, applied monthly as (1+r)^(1/12)
	DebtInflationRate   float64 `toml:"debt_inflation_rate"`    // fraction, baseline path only
	CapitalGainsTaxRate float64 `toml:"capital_gains_tax_rate"` // fraction of a realized gain
	TaxImpactRate       float64 `toml:"tax_impact_rate"`        // flat fraction of total return
	RiskFreeRate        float64 `toml:"risk_free_rate"`         // fraction
	LiquidShare         float64 `toml:"liquid_share"`           // fraction of total value assumed liquid
	DefaultLoanRate     float64 `toml:"default_loan_rate"`      // fraction
	DefaultLoanMonths   int     `toml:"default_loan_months"`
	Currency            string  `toml:"currency"` // ISO 4217, used to format insights
}

// DefaultAssumptions returns the stock assumptions
func DefaultAssumptions() Assumptions {
	return Assumptions{
		AnnualGrowthRate:    0.05,
		DebtInflationRate:   0.02,
		CapitalGainsTaxRate: 0.30,
		TaxImpactRate:       0.30,
		RiskFreeRate:        0.02,
		LiquidShare:         0.20,
		DefaultLoanRate:     0.03,
		DefaultLoanMonths:   240,
		Currency:            "EUR",
	}
}
