package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ScenarioType represents the authoring mode of a scenario
type ScenarioType string

const (
	ScenarioTypeSimple  ScenarioType = "SIMPLE"
	ScenarioTypeComplex ScenarioType = "COMPLEX"
)

// Scenario is a named what-if case applied to a baseline snapshot
type Scenario struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	Type        ScenarioType
	Baseline    PatrimonySnapshot
	Actions     []ScenarioAction
	// AnnualGrowthRate overrides the default growth assumption for this scenario (fraction, 0.05 = 5%)
	AnnualGrowthRate *float64
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ScenarioAction is a single scheduled financial event.
// Actions are immutable once created: editing a scenario replaces the whole set.
type ScenarioAction struct {
	ID         uuid.UUID
	ScenarioID uuid.UUID
	Name       string
	Date       time.Time // month granularity, see MonthOf
	Order      int       // tie-break within the same month
	Kind       ActionKind
}

// Type returns the action type of the action's kind
func (a ScenarioAction) Type() ActionType {
	if a.Kind == nil {
		return ""
	}
	return a.Kind.Type()
}

// Validate ensures the scenario adheres to domain rules
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario name cannot be empty")
	}
	if s.Type != ScenarioTypeSimple && s.Type != ScenarioTypeComplex {
		return errors.New("scenario type must be SIMPLE or COMPLEX")
	}
	for i := range s.Actions {
		if err := s.Actions[i].Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

// Validate ensures the action adheres to domain rules
func (a *ScenarioAction) Validate() error {
	if a.Kind == nil {
		return fmt.Errorf("%w: missing action kind", ErrInvalidAction)
	}
	if a.Date.IsZero() {
		return fmt.Errorf("%w: execution date is required", ErrInvalidAction)
	}
	if a.Order < 0 {
		return fmt.Errorf("%w: order must not be negative", ErrInvalidAction)
	}
	return a.Kind.Validate()
}

// OrderedActions returns the actions sorted by execution month, then by Order.
// The receiver's slice is left untouched.
func (s *Scenario) OrderedActions() []ScenarioAction {
	out := slices.Clone(s.Actions)
	slices.SortStableFunc(out, func(a, b ScenarioAction) int {
		if c := MonthOf(a.Date).Compare(MonthOf(b.Date)); c != 0 {
			return c
		}
		return a.Order - b.Order
	})
	return out
}

// MonthOf truncates t to the first instant of its calendar month in UTC
func MonthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// SameMonth reports whether a and b fall in the same calendar month and year
func SameMonth(a, b time.Time) bool {
	return MonthOf(a).Equal(MonthOf(b))
}
