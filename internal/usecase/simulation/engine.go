package simulation

import (
	"math"
	"time"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// Horizon describes the span of a projection run
type Horizon struct {
	// Months is the number of monthly steps after the start month; points are
	// produced for month 0..Months inclusive
	Months int `validate:"min=0,max=1200"`
	// StartDate is truncated to its calendar month
	StartDate time.Time `validate:"required"`
	// AnnualGrowthRate overrides the assumption for this run (fraction)
	AnnualGrowthRate *float64 `validate:"omitempty,gt=-1"`
}

// Run is the outcome of a simulation before it is attached to a user or scenario
type Run struct {
	Points   []domain.ProjectionPoint
	Metrics  domain.ProjectionMetrics
	Insights []string
	Final    State
}

// Engine projects a patrimony forward in monthly steps
type Engine struct {
	assumptions Assumptions
	applicator  *Applicator
}

// NewEngine creates a new Engine instance
func NewEngine(assumptions Assumptions) *Engine {
	return &Engine{
		assumptions: assumptions,
		applicator:  NewApplicator(assumptions),
	}
}

// Assumptions returns the assumptions the engine runs with
func (e *Engine) Assumptions() Assumptions {
	return e.assumptions
}

// ProjectScenario runs the scenario path
// Logic:
//  1. Start from a structural copy of the baseline snapshot
//  2. For each month 0..Months, apply the actions dated in that month in ascending Order
//  3. Apply one month of growth and the net monthly cashflow
//  4. Record a point; after the last month compute metrics over the series
//
// Actions dated before the start month are never applied.
func (e *Engine) ProjectScenario(baseline domain.PatrimonySnapshot, actions []domain.ScenarioAction, h Horizon) (*Run, error) {
	scenario := domain.Scenario{Actions: actions}
	return e.project(baseline, scenario.OrderedActions(), h, false)
}

// ProjectBaseline runs the no-scenario path: no actions, and debt is inflated
// by the debt inflation rate instead of being driven by financing actions
func (e *Engine) ProjectBaseline(snapshot domain.PatrimonySnapshot, h Horizon) (*Run, error) {
	return e.project(snapshot, nil, h, true)
}

func (e *Engine) project(snap domain.PatrimonySnapshot, ordered []domain.ScenarioAction, h Horizon, baseline bool) (*Run, error) {
	growth := e.assumptions.AnnualGrowthRate
	if h.AnnualGrowthRate != nil {
		growth = *h.AnnualGrowthRate
	}

	start := domain.MonthOf(h.StartDate)
	state := NewState(snap.Clone())
	run := &Run{
		Points:   make([]domain.ProjectionPoint, 0, max(h.Months+1, 0)),
		Insights: []string{},
	}

	next := 0
	for month := 0; month <= h.Months; month++ {
		date := start.AddDate(0, month, 0)

		// Ordered actions are consumed in sequence; skip the ones already in the past
		var due []domain.ScenarioAction
		for next < len(ordered) && !domain.MonthOf(ordered[next].Date).After(date) {
			if domain.SameMonth(ordered[next].Date, date) {
				due = append(due, ordered[next])
			}
			next++
		}

		var insights []string
		var err error
		state, insights, err = e.Step(state, due, growth, baseline)
		if err != nil {
			return nil, err
		}
		run.Insights = append(run.Insights, insights...)
		run.Points = append(run.Points, e.Point(state, date))
	}

	metrics, err := CalculateMetrics(run.Points, e.assumptions)
	if err != nil {
		return nil, err
	}
	run.Metrics = metrics
	run.Final = state
	return run, nil
}

// Step advances the state by one month: due actions in the given order, then growth.
// On the baseline path debt is inflated; on the scenario path it only changes through actions.
func (e *Engine) Step(s State, due []domain.ScenarioAction, annualGrowthRate float64, baseline bool) (State, []string, error) {
	insights := make([]string, 0, len(due))
	for _, action := range due {
		var insight string
		var err error
		s, insight, err = e.applicator.Apply(s, action)
		if err != nil {
			return s, nil, err
		}
		insights = append(insights, insight)
	}

	s.TotalValue *= math.Pow(1+annualGrowthRate, 1.0/monthsPerYear)
	s.TotalValue += s.Cashflow() * monthsPerYear * (1.0 / monthsPerYear)

	if baseline {
		s.TotalDebt *= math.Pow(1+e.assumptions.DebtInflationRate, 1.0/monthsPerYear)
	}
	return s, insights, nil
}

// Point records the state as a projection point at the given date
func (e *Engine) Point(s State, date time.Time) domain.ProjectionPoint {
	return domain.ProjectionPoint{
		Date:            date,
		TotalValue:      s.TotalValue,
		LiquidValue:     s.TotalValue * e.assumptions.LiquidShare,
		NetValue:        s.TotalValue - s.TotalDebt,
		Breakdown:       s.Breakdown(),
		Cashflow:        s.Cashflow(),
		Debt:            s.TotalDebt,
		MonthlyIncome:   s.MonthlyIncome,
		MonthlyExpenses: s.MonthlyExpenses,
	}
}
