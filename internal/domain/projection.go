package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectionPoint is one simulated month.
// Values are float64: projections are estimates compounded with fractional
// exponents, unlike the record store's exact decimal amounts.
type ProjectionPoint struct {
	Date            time.Time          `json:"date"`
	TotalValue      float64            `json:"totalValue"`
	LiquidValue     float64            `json:"liquidValue"`
	NetValue        float64            `json:"netValue"`
	Breakdown       map[string]float64 `json:"breakdown"`
	Cashflow        float64            `json:"cashflow"` // monthly income - monthly expenses
	Debt            float64            `json:"debt"`
	MonthlyIncome   float64            `json:"monthlyIncome,omitempty"`
	MonthlyExpenses float64            `json:"monthlyExpenses,omitempty"`
}

// ProjectionMetrics are derived from a point series and never stored on their own
type ProjectionMetrics struct {
	InitialValue          float64   `json:"initialValue"`
	FinalValue            float64   `json:"finalValue"`
	TotalReturn           float64   `json:"totalReturn"`
	TotalReturnPercentage float64   `json:"totalReturnPercentage"`
	AnnualizedReturn      float64   `json:"annualizedReturn"` // fraction
	MaxDrawdown           float64   `json:"maxDrawdown"`      // fraction of the running peak
	MaxDrawdownDate       time.Time `json:"maxDrawdownDate"`
	Volatility            float64   `json:"volatility"` // annualized, percent
	// SharpeRatio is nil when volatility is zero and the ratio is undefined
	SharpeRatio    *float64 `json:"sharpeRatio"`
	LiquidityRatio float64  `json:"liquidityRatio"` // percent
	DebtRatio      float64  `json:"debtRatio"`      // percent
	TaxImpact      float64  `json:"taxImpact"`
}

// ProjectionResult is a time-ascending series of points with its metrics.
// ScenarioID is nil for baseline projections, which carry no insights.
type ProjectionResult struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"userId"`
	ScenarioID  *uuid.UUID        `json:"scenarioId,omitempty"`
	Points      []ProjectionPoint `json:"points"`
	Metrics     ProjectionMetrics `json:"metrics"`
	Insights    []string          `json:"insights,omitempty"`
	GeneratedAt time.Time         `json:"generatedAt"`
}
