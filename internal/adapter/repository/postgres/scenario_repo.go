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

// scenarioRepository implements domain.ScenarioRepository
type scenarioRepository struct {
	db *DB
}

// NewScenarioRepository creates a new scenario repository
func NewScenarioRepository(db *DB) domain.ScenarioRepository {
	return &scenarioRepository{db: db}
}

// Create persists a scenario with its baseline snapshot and actions in a database transaction
func (r *scenarioRepository) Create(ctx context.Context, scenario *domain.Scenario) error {
	baseline, err := json.Marshal(scenario.Baseline)
	if err != nil {
		return fmt.Errorf("failed to encode baseline snapshot: %w", err)
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO scenarios (id, user_id, name, description, scenario_type, baseline,
			annual_growth_rate, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = dbTx.ExecContext(ctx, query,
		scenario.ID,
		scenario.UserID,
		scenario.Name,
		scenario.Description,
		string(scenario.Type),
		baseline,
		nullFloat(scenario.AnnualGrowthRate),
		scenario.IsActive,
		scenario.CreatedAt,
		scenario.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scenario: %w", err)
	}

	if err := insertActions(ctx, dbTx, scenario.ID, scenario.Actions); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a scenario with its actions
func (r *scenarioRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scenario, error) {
	query := `
		SELECT id, user_id, name, description, scenario_type, baseline,
			annual_growth_rate, is_active, created_at, updated_at
		FROM scenarios
		WHERE id = $1
	`

	scenario, err := scanScenario(r.db.QueryRowContext(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scenario %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get scenario by ID: %w", err)
	}

	actions, err := r.listActions(ctx, id)
	if err != nil {
		return nil, err
	}
	scenario.Actions = actions

	return scenario, nil
}

// ListByUser retrieves the user's scenarios without their actions or baseline
func (r *scenarioRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Scenario, error) {
	query := `
		SELECT id, user_id, name, description, scenario_type, NULL::jsonb,
			annual_growth_rate, is_active, created_at, updated_at
		FROM scenarios
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := []*domain.Scenario{}
	for rows.Next() {
		scenario, err := scanScenario(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scenarios: %w", err)
	}

	return scenarios, nil
}

// Update replaces the scenario's fields and, when replaceActions is set, its whole action set
func (r *scenarioRepository) Update(ctx context.Context, scenario *domain.Scenario, replaceActions bool) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE scenarios
		SET name = $2, description = $3, scenario_type = $4, annual_growth_rate = $5,
			is_active = $6, updated_at = $7
		WHERE id = $1
	`

	res, err := dbTx.ExecContext(ctx, query,
		scenario.ID,
		scenario.Name,
		scenario.Description,
		string(scenario.Type),
		nullFloat(scenario.AnnualGrowthRate),
		scenario.IsActive,
		scenario.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update scenario: %w", err)
	}
	if err := requireRow(res, scenario.ID); err != nil {
		return err
	}

	if replaceActions {
		if _, err := dbTx.ExecContext(ctx, `DELETE FROM scenario_actions WHERE scenario_id = $1`, scenario.ID); err != nil {
			return fmt.Errorf("failed to delete scenario actions: %w", err)
		}
		if err := insertActions(ctx, dbTx, scenario.ID, scenario.Actions); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a scenario; its actions and results are removed by cascade
func (r *scenarioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return requireRow(res, id)
}

func (r *scenarioRepository) listActions(ctx context.Context, scenarioID uuid.UUID) ([]domain.ScenarioAction, error) {
	query := `
		SELECT id, scenario_id, name, action_type, execution_date, sort_order, params
		FROM scenario_actions
		WHERE scenario_id = $1
		ORDER BY execution_date, sort_order, list_position
	`

	rows, err := r.db.QueryContext(ctx, query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario actions: %w", err)
	}
	defer rows.Close()

	actions := []domain.ScenarioAction{}
	for rows.Next() {
		var a domain.ScenarioAction
		var actionType string
		var params []byte

		if err := rows.Scan(&a.ID, &a.ScenarioID, &a.Name, &actionType, &a.Date, &a.Order, &params); err != nil {
			return nil, fmt.Errorf("failed to scan scenario action: %w", err)
		}

		// Stored actions go through the same decoder as client input
		kind, err := domain.DecodeActionKind(domain.ActionType(actionType), params)
		if err != nil {
			return nil, fmt.Errorf("stored action %s: %w", a.ID, err)
		}
		a.Kind = kind
		a.Date = domain.MonthOf(a.Date)

		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scenario actions: %w", err)
	}

	return actions, nil
}

func insertActions(ctx context.Context, dbTx *sql.Tx, scenarioID uuid.UUID, actions []domain.ScenarioAction) error {
	query := `
		INSERT INTO scenario_actions (id, scenario_id, name, action_type, execution_date, sort_order, list_position, params)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// list_position keeps list order for actions sharing a month and order
	for i, a := range actions {
		actionType, params, err := domain.EncodeActionKind(a.Kind)
		if err != nil {
			return err
		}

		_, err = dbTx.ExecContext(ctx, query,
			a.ID,
			scenarioID,
			a.Name,
			string(actionType),
			domain.MonthOf(a.Date),
			a.Order,
			i,
			params,
		)
		if err != nil {
			return fmt.Errorf("failed to insert scenario action: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner, withBaseline bool) (*domain.Scenario, error) {
	var s domain.Scenario
	var scenarioType string
	var baseline []byte
	var growth sql.NullFloat64

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Name,
		&s.Description,
		&scenarioType,
		&baseline,
		&growth,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Type = domain.ScenarioType(scenarioType)
	if growth.Valid {
		g := growth.Float64
		s.AnnualGrowthRate = &g
	}
	if withBaseline && len(baseline) > 0 {
		if err := json.Unmarshal(baseline, &s.Baseline); err != nil {
			return nil, fmt.Errorf("failed to decode baseline snapshot: %w", err)
		}
	}

	return &s, nil
}

func requireRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("scenario %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
