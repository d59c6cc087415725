package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-projection/internal/domain"
	"github.com/simaogato/wealthflow-projection/internal/usecase/simulation"
)

// SnapshotBuilder captures a user's current patrimony
type SnapshotBuilder interface {
	Build(ctx context.Context, userID uuid.UUID) (domain.PatrimonySnapshot, error)
}

// ScenarioReader loads a scenario owned by the user
type ScenarioReader interface {
	Get(ctx context.Context, userID, scenarioID uuid.UUID) (*domain.Scenario, error)
}

// RunInput represents the horizon of a projection request
type RunInput struct {
	Months int `json:"months" validate:"min=1,max=1200"`
	// StartDate defaults to the current month
	StartDate *time.Time `json:"startDate"`
	// AnnualGrowthRate overrides the scenario and default growth (fraction)
	AnnualGrowthRate *float64 `json:"annualGrowthRate" validate:"omitempty,gt=-1,lt=1"`
}

// ProjectionService runs and stores projections
type ProjectionService struct {
	ProjectionRepo domain.ProjectionRepository
	Scenarios      ScenarioReader
	Snapshots      SnapshotBuilder
	Engine         *simulation.Engine
	Now            func() time.Time
	validate       *validator.Validate
	log            zerolog.Logger
}

// NewProjectionService creates a new ProjectionService instance
func NewProjectionService(
	projectionRepo domain.ProjectionRepository,
	scenarios ScenarioReader,
	snapshots SnapshotBuilder,
	engine *simulation.Engine,
	log zerolog.Logger,
) *ProjectionService {
	return &ProjectionService{
		ProjectionRepo: projectionRepo,
		Scenarios:      scenarios,
		Snapshots:      snapshots,
		Engine:         engine,
		Now:            time.Now,
		validate:       validator.New(),
		log:            log.With().Str("service", "projection").Logger(),
	}
}

// RunBaseline projects the user's current patrimony with no actions.
// Baseline results carry no insights and are not persisted.
func (s *ProjectionService) RunBaseline(ctx context.Context, userID uuid.UUID, input RunInput) (*domain.ProjectionResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	horizon, err := s.horizon(input, nil)
	if err != nil {
		return nil, err
	}

	snap, err := s.Snapshots.Build(ctx, userID)
	if err != nil {
		return nil, err
	}

	run, err := s.Engine.ProjectBaseline(snap, horizon)
	if err != nil {
		return nil, err
	}

	return &domain.ProjectionResult{
		ID:          uuid.New(),
		UserID:      userID,
		Points:      run.Points,
		Metrics:     run.Metrics,
		GeneratedAt: s.Now().UTC(),
	}, nil
}

// RunScenario projects a scenario from its stored baseline
// Logic:
//  1. Load the scenario (ownership checked, see ScenarioReader)
//  2. Resolve the growth rate: request override, then scenario rate, then default
//  3. Run the simulation over the scenario's baseline and actions
//  4. Persist the result through ProjectionRepo.Save
func (s *ProjectionService) RunScenario(ctx context.Context, userID, scenarioID uuid.UUID, input RunInput) (*domain.ProjectionResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	scenario, err := s.Scenarios.Get(ctx, userID, scenarioID)
	if err != nil {
		return nil, err
	}

	horizon, err := s.horizon(input, scenario.AnnualGrowthRate)
	if err != nil {
		return nil, err
	}

	run, err := s.Engine.ProjectScenario(scenario.Baseline, scenario.Actions, horizon)
	if err != nil {
		return nil, err
	}

	result := &domain.ProjectionResult{
		ID:          uuid.New(),
		UserID:      userID,
		ScenarioID:  &scenario.ID,
		Points:      run.Points,
		Metrics:     run.Metrics,
		Insights:    run.Insights,
		GeneratedAt: s.Now().UTC(),
	}
	if err := s.ProjectionRepo.Save(ctx, result); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("scenario_id", scenarioID.String()).
		Int("months", horizon.Months).
		Float64("final_value", run.Metrics.FinalValue).
		Int("insights", len(run.Insights)).
		Msg("scenario projected")
	return result, nil
}

// GetLatest returns the most recent stored result of the user's scenario
func (s *ProjectionService) GetLatest(ctx context.Context, userID, scenarioID uuid.UUID) (*domain.ProjectionResult, error) {
	if _, err := s.Scenarios.Get(ctx, userID, scenarioID); err != nil {
		return nil, err
	}
	return s.ProjectionRepo.GetLatestByScenario(ctx, scenarioID)
}

func (s *ProjectionService) horizon(input RunInput, scenarioGrowth *float64) (simulation.Horizon, error) {
	start := s.Now().UTC()
	if input.StartDate != nil {
		start = *input.StartDate
	}

	h := simulation.Horizon{
		Months:           input.Months,
		StartDate:        domain.MonthOf(start),
		AnnualGrowthRate: scenarioGrowth,
	}
	if input.AnnualGrowthRate != nil {
		h.AnnualGrowthRate = input.AnnualGrowthRate
	}

	if err := s.validate.Struct(h); err != nil {
		return simulation.Horizon{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return h, nil
}
