package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// projectionRepository implements domain.ProjectionRepository
type projectionRepository struct {
	db *DB
}

// NewProjectionRepository creates a new projection result repository
func NewProjectionRepository(db *DB) domain.ProjectionRepository {
	return &projectionRepository{db: db}
}

// Save persists a projection result; points, metrics and insights are stored as JSONB
func (r *projectionRepository) Save(ctx context.Context, result *domain.ProjectionResult) error {
	points, err := json.Marshal(result.Points)
	if err != nil {
		return fmt.Errorf("failed to encode projection points: %w", err)
	}
	metrics, err := json.Marshal(result.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode projection metrics: %w", err)
	}
	insights, err := json.Marshal(result.Insights)
	if err != nil {
		return fmt.Errorf("failed to encode projection insights: %w", err)
	}

	query := `
		INSERT INTO projection_results (id, user_id, scenario_id, points, metrics, insights, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var scenarioID any
	if result.ScenarioID != nil {
		scenarioID = *result.ScenarioID
	}

	_, err = r.db.ExecContext(ctx, query,
		result.ID,
		result.UserID,
		scenarioID,
		points,
		metrics,
		insights,
		result.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert projection result: %w", err)
	}

	return nil
}

// GetLatestByScenario retrieves the most recent result for a scenario
func (r *projectionRepository) GetLatestByScenario(ctx context.Context, scenarioID uuid.UUID) (*domain.ProjectionResult, error) {
	query := `
		SELECT id, user_id, scenario_id, points, metrics, insights, generated_at
		FROM projection_results
		WHERE scenario_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var result domain.ProjectionResult
	var storedScenarioID uuid.NullUUID
	var points, metrics, insights []byte

	err := r.db.QueryRowContext(ctx, query, scenarioID).Scan(
		&result.ID,
		&result.UserID,
		&storedScenarioID,
		&points,
		&metrics,
		&insights,
		&result.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("projection for scenario %s: %w", scenarioID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest projection: %w", err)
	}

	if storedScenarioID.Valid {
		id := storedScenarioID.UUID
		result.ScenarioID = &id
	}
	if err := json.Unmarshal(points, &result.Points); err != nil {
		return nil, fmt.Errorf("failed to decode projection points: %w", err)
	}
	if err := json.Unmarshal(metrics, &result.Metrics); err != nil {
		return nil, fmt.Errorf("failed to decode projection metrics: %w", err)
	}
	if err := json.Unmarshal(insights, &result.Insights); err != nil {
		return nil, fmt.Errorf("failed to decode projection insights: %w", err)
	}

	return &result, nil
}
