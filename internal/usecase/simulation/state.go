package simulation

import (
	"slices"

	"github.com/google/uuid"
	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// Holding is an asset as tracked during a simulation
type Holding struct {
	ID    uuid.UUID
	Type  string
	Name  string
	Value float64
}

// State is the simulation state between two steps.
// A State is treated as a value: Apply and Step return a new State and never
// modify the Holdings slice of the one they received.
type State struct {
	Holdings        []Holding
	TotalValue      float64
	TotalDebt       float64
	MonthlyIncome   float64
	MonthlyExpenses float64
}

// NewState starts a simulation from a structural copy of the snapshot
func NewState(snap domain.PatrimonySnapshot) State {
	holdings := make([]Holding, 0, len(snap.Assets))
	for _, a := range snap.Assets {
		holdings = append(holdings, Holding{
			ID:    a.ID,
			Type:  domain.TypeLabel(a.Type),
			Name:  a.Name,
			Value: a.Value.InexactFloat64(),
		})
	}

	return State{
		Holdings:   holdings,
		TotalValue: snap.TotalValue.InexactFloat64(),
		TotalDebt:  snap.TotalDebt.InexactFloat64(),
	}
}

// Holding returns the holding with the given id
func (s State) Holding(id uuid.UUID) (Holding, bool) {
	i := slices.IndexFunc(s.Holdings, func(h Holding) bool { return h.ID == id })
	if i < 0 {
		return Holding{}, false
	}
	return s.Holdings[i], true
}

// Cashflow returns monthly income minus monthly expenses
func (s State) Cashflow() float64 {
	return s.MonthlyIncome - s.MonthlyExpenses
}

// Breakdown sums holding values per type label, in holding order
func (s State) Breakdown() map[string]float64 {
	out := make(map[string]float64)
	for _, h := range s.Holdings {
		out[h.Type] += h.Value
	}
	return out
}

func (s State) withoutHolding(id uuid.UUID) State {
	s.Holdings = slices.DeleteFunc(slices.Clone(s.Holdings), func(h Holding) bool { return h.ID == id })
	return s
}

func (s State) withHolding(h Holding) State {
	s.Holdings = append(slices.Clone(s.Holdings), h)
	return s
}
