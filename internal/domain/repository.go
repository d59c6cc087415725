package domain

import (
	"context"

	"github.com/google/uuid"
)

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	// ListByUser retrieves every asset owned by any entity of the user,
	// with its most recent valuation and its attached debts
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Asset, error)
}

// EntityRepository defines the interface for entity persistence operations
type EntityRepository interface {
	// ListByUser retrieves all entities belonging to the user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Entity, error)
}

// ScenarioRepository defines the interface for scenario persistence operations
type ScenarioRepository interface {
	// Create persists a scenario with its baseline snapshot and actions
	Create(ctx context.Context, scenario *Scenario) error

	// GetByID retrieves a scenario with its actions.
	// Returns an error wrapping ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Scenario, error)

	// ListByUser retrieves the user's scenarios without their actions
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Scenario, error)

	// Update replaces name, description, type, growth rate and active flag.
	// If replaceActions is true the whole action set is replaced by scenario.Actions.
	Update(ctx context.Context, scenario *Scenario, replaceActions bool) error

	// Delete removes a scenario and its actions
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectionRepository defines the interface for projection result persistence
type ProjectionRepository interface {
	// Save persists a projection result
	Save(ctx context.Context, result *ProjectionResult) error

	// GetLatestByScenario retrieves the most recent result for a scenario.
	// Returns an error wrapping ErrNotFound if none exists.
	GetLatestByScenario(ctx context.Context, scenarioID uuid.UUID) (*ProjectionResult, error)
}
