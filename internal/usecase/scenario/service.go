package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// SnapshotBuilder captures a user's current patrimony
type SnapshotBuilder interface {
	Build(ctx context.Context, userID uuid.UUID) (domain.PatrimonySnapshot, error)
}

// ActionInput represents one action as submitted by a client.
// Params is the JSON payload of the action type, see domain.DecodeActionKind.
type ActionInput struct {
	Name   string            `json:"name" validate:"required,max=200"`
	Type   domain.ActionType `json:"type" validate:"required"`
	Date   time.Time         `json:"date" validate:"required"`
	Order  int               `json:"order" validate:"gte=0"`
	Params json.RawMessage   `json:"params"`
}

// CreateScenarioInput represents the input for creating a scenario
type CreateScenarioInput struct {
	Name             string              `json:"name" validate:"required,max=200"`
	Description      string              `json:"description" validate:"max=2000"`
	Type             domain.ScenarioType `json:"type" validate:"required,oneof=SIMPLE COMPLEX"`
	AnnualGrowthRate *float64            `json:"annualGrowthRate" validate:"omitempty,gt=-1,lt=1"`
	Actions          []ActionInput       `json:"actions" validate:"dive"`
}

// UpdateScenarioInput represents the input for updating a scenario.
// Actions replace the whole action set only when ReplaceActions is set.
type UpdateScenarioInput struct {
	Name             string              `json:"name" validate:"required,max=200"`
	Description      string              `json:"description" validate:"max=2000"`
	Type             domain.ScenarioType `json:"type" validate:"omitempty,oneof=SIMPLE COMPLEX"`
	AnnualGrowthRate *float64            `json:"annualGrowthRate" validate:"omitempty,gt=-1,lt=1"`
	IsActive         bool                `json:"isActive"`
	ReplaceActions   bool                `json:"replaceActions"`
	Actions          []ActionInput       `json:"actions" validate:"dive"`
}

// ScenarioService manages user scenarios on top of the record store
type ScenarioService struct {
	ScenarioRepo domain.ScenarioRepository
	Snapshots    SnapshotBuilder
	Now          func() time.Time
	validate     *validator.Validate
	log          zerolog.Logger
}

// NewScenarioService creates a new ScenarioService instance
func NewScenarioService(scenarioRepo domain.ScenarioRepository, snapshots SnapshotBuilder, log zerolog.Logger) *ScenarioService {
	return &ScenarioService{
		ScenarioRepo: scenarioRepo,
		Snapshots:    snapshots,
		Now:          time.Now,
		validate:     validator.New(),
		log:          log.With().Str("service", "scenario").Logger(),
	}
}

// Create persists a new scenario for the user
// Logic:
//  1. Validate the input and decode every action payload
//  2. Snapshot the user's current patrimony as the scenario baseline
//  3. Assign ids and ordering, then save through ScenarioRepo.Create
func (s *ScenarioService) Create(ctx context.Context, userID uuid.UUID, input CreateScenarioInput) (*domain.Scenario, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	scenarioID := uuid.New()
	actions, err := buildActions(scenarioID, input.Actions)
	if err != nil {
		return nil, err
	}

	baseline, err := s.Snapshots.Build(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	scenario := &domain.Scenario{
		ID:               scenarioID,
		UserID:           userID,
		Name:             input.Name,
		Description:      input.Description,
		Type:             input.Type,
		Baseline:         baseline,
		Actions:          actions,
		AnnualGrowthRate: input.AnnualGrowthRate,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	if err := s.ScenarioRepo.Create(ctx, scenario); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("scenario_id", scenario.ID.String()).
		Int("actions", len(actions)).
		Msg("scenario created")
	return scenario, nil
}

// Get returns the user's scenario with its actions.
// A scenario owned by another user is reported as domain.ErrNotFound.
func (s *ScenarioService) Get(ctx context.Context, userID, scenarioID uuid.UUID) (*domain.Scenario, error) {
	scenario, err := s.ScenarioRepo.GetByID(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	if scenario.UserID != userID {
		return nil, fmt.Errorf("scenario %s: %w", scenarioID, domain.ErrNotFound)
	}
	return scenario, nil
}

// List returns the user's scenarios without their actions
func (s *ScenarioService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Scenario, error) {
	return s.ScenarioRepo.ListByUser(ctx, userID)
}

// Update replaces the scenario's descriptive fields and, optionally, its whole action set.
// The baseline snapshot is never retaken.
func (s *ScenarioService) Update(ctx context.Context, userID, scenarioID uuid.UUID, input UpdateScenarioInput) (*domain.Scenario, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	scenario, err := s.Get(ctx, userID, scenarioID)
	if err != nil {
		return nil, err
	}

	scenario.Name = input.Name
	scenario.Description = input.Description
	if input.Type != "" {
		scenario.Type = input.Type
	}
	scenario.AnnualGrowthRate = input.AnnualGrowthRate
	scenario.IsActive = input.IsActive
	scenario.UpdatedAt = s.Now().UTC()

	if input.ReplaceActions {
		actions, err := buildActions(scenario.ID, input.Actions)
		if err != nil {
			return nil, err
		}
		scenario.Actions = actions
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if err := s.ScenarioRepo.Update(ctx, scenario, input.ReplaceActions); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("scenario_id", scenario.ID.String()).
		Bool("actions_replaced", input.ReplaceActions).
		Msg("scenario updated")
	return scenario, nil
}

// Delete removes the user's scenario and its actions
func (s *ScenarioService) Delete(ctx context.Context, userID, scenarioID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, scenarioID); err != nil {
		return err
	}
	if err := s.ScenarioRepo.Delete(ctx, scenarioID); err != nil {
		return err
	}

	s.log.Info().Str("scenario_id", scenarioID.String()).Msg("scenario deleted")
	return nil
}

// buildActions decodes client actions into typed domain actions.
// Actions sharing a month and order keep their list position, in memory and in the store.
func buildActions(scenarioID uuid.UUID, inputs []ActionInput) ([]domain.ScenarioAction, error) {
	actions := make([]domain.ScenarioAction, 0, len(inputs))
	for i, in := range inputs {
		kind, err := domain.DecodeActionKind(in.Type, in.Params)
		if err != nil {
			return nil, fmt.Errorf("action %d (%s): %w", i, in.Name, err)
		}

		actions = append(actions, domain.ScenarioAction{
			ID:         uuid.New(),
			ScenarioID: scenarioID,
			Name:       in.Name,
			Date:       domain.MonthOf(in.Date),
			Order:      in.Order,
			Kind:       kind,
		})
	}
	return actions, nil
}
