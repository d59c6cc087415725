package simulation

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

const monthsPerYear = 12

// CalculateMetrics derives return, drawdown, volatility and ratio statistics
// from a time-ascending point series.
// An empty series is a precondition violation and returns ErrInvalidState.
func CalculateMetrics(points []domain.ProjectionPoint, assumptions Assumptions) (domain.ProjectionMetrics, error) {
	if len(points) == 0 {
		return domain.ProjectionMetrics{}, fmt.Errorf("%w: metrics require at least one projection point", domain.ErrInvalidState)
	}

	initial := points[0]
	final := points[len(points)-1]

	m := domain.ProjectionMetrics{
		InitialValue: initial.TotalValue,
		FinalValue:   final.TotalValue,
		TotalReturn:  final.TotalValue - initial.TotalValue,
	}
	if initial.TotalValue != 0 {
		m.TotalReturnPercentage = m.TotalReturn / initial.TotalValue * 100
	}

	m.MaxDrawdown, m.MaxDrawdownDate = maxDrawdown(points)

	returns := MonthlyReturns(points)
	volatility := AnnualizedVolatility(returns)
	m.Volatility = volatility * 100

	years := float64(len(points)) / monthsPerYear
	m.AnnualizedReturn = annualizedReturn(initial.TotalValue, final.TotalValue, years)

	// Undefined for a flat series: reported as absent rather than ±Inf/NaN
	if volatility != 0 {
		sharpe := (m.AnnualizedReturn - assumptions.RiskFreeRate) / volatility
		m.SharpeRatio = &sharpe
	}

	if final.TotalValue != 0 {
		m.LiquidityRatio = final.LiquidValue / final.TotalValue * 100
		m.DebtRatio = final.Debt / final.TotalValue * 100
	}

	m.TaxImpact = m.TotalReturn * assumptions.TaxImpactRate
	return m, nil
}

// MonthlyReturns converts the total values of a series to period returns.
// Returns[i] = (Value[i+1] - Value[i]) / Value[i]; a zero base yields a zero return.
func MonthlyReturns(points []domain.ProjectionPoint) []float64 {
	if len(points) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].TotalValue
		if prev != 0 {
			returns[i-1] = (points[i].TotalValue - prev) / prev
		}
	}
	return returns
}

// AnnualizedVolatility returns the standard deviation of monthly returns scaled by sqrt(12).
// Fewer than two returns carry no dispersion and yield zero.
func AnnualizedVolatility(monthlyReturns []float64) float64 {
	if len(monthlyReturns) < 2 {
		return 0
	}
	return stat.StdDev(monthlyReturns, nil) * math.Sqrt(monthsPerYear)
}

// maxDrawdown tracks the running peak and returns the largest decline from it
// together with the date at which that decline first occurs
func maxDrawdown(points []domain.ProjectionPoint) (float64, time.Time) {
	peak := points[0].TotalValue
	worst := 0.0
	worstDate := points[0].Date

	for _, p := range points {
		if p.TotalValue > peak {
			peak = p.TotalValue
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - p.TotalValue) / peak; dd > worst {
			worst = dd
			worstDate = p.Date
		}
	}
	return worst, worstDate
}

func annualizedReturn(initial, final, years float64) float64 {
	if initial <= 0 || years <= 0 {
		return 0
	}
	ratio := final / initial
	if ratio <= 0 {
		return -1
	}
	return math.Pow(ratio, 1/years) - 1
}
