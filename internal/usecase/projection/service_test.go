package projection

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-projection/internal/domain"
	"github.com/simaogato/wealthflow-projection/internal/usecase/simulation"
)

// MockProjectionRepository is a mock implementation of ProjectionRepository for testing
type MockProjectionRepository struct {
	mock.Mock
}

func (m *MockProjectionRepository) Save(ctx context.Context, result *domain.ProjectionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockProjectionRepository) GetLatestByScenario(ctx context.Context, scenarioID uuid.UUID) (*domain.ProjectionResult, error) {
	args := m.Called(ctx, scenarioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectionResult), args.Error(1)
}

// MockScenarioReader is a mock implementation of ScenarioReader for testing
type MockScenarioReader struct {
	mock.Mock
}

func (m *MockScenarioReader) Get(ctx context.Context, userID, scenarioID uuid.UUID) (*domain.Scenario, error) {
	args := m.Called(ctx, userID, scenarioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scenario), args.Error(1)
}

// MockSnapshotBuilder is a mock implementation of SnapshotBuilder for testing
type MockSnapshotBuilder struct {
	mock.Mock
}

func (m *MockSnapshotBuilder) Build(ctx context.Context, userID uuid.UUID) (domain.PatrimonySnapshot, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.PatrimonySnapshot), args.Error(1)
}

var fixedNow = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *MockProjectionRepository
	scenarios *MockScenarioReader
	snapshots *MockSnapshotBuilder
	service   *ProjectionService
}

func newFixture() fixture {
	f := fixture{
		repo:      new(MockProjectionRepository),
		scenarios: new(MockScenarioReader),
		snapshots: new(MockSnapshotBuilder),
	}
	f.service = NewProjectionService(f.repo, f.scenarios, f.snapshots, simulation.NewEngine(simulation.DefaultAssumptions()), zerolog.Nop())
	f.service.Now = func() time.Time { return fixedNow }
	return f
}

func snapshotOf(value int64) domain.PatrimonySnapshot {
	return domain.NewPatrimonySnapshot([]*domain.Asset{
		{ID: uuid.New(), Name: "Deposit", Type: domain.AssetTypeSavings, CurrentValue: decimal.NewFromInt(value)},
	}, nil, fixedNow)
}

func TestRunBaseline(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newFixture()
	f.snapshots.On("Build", ctx, userID).Return(snapshotOf(100000), nil)

	result, err := f.service.RunBaseline(ctx, userID, RunInput{Months: 12})

	require.NoError(t, err)
	assert.Nil(t, result.ScenarioID)
	assert.Empty(t, result.Insights)
	require.Len(t, result.Points, 13)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), result.Points[0].Date)
	assert.InEpsilon(t, 105000.0, result.Metrics.FinalValue, 0.01)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRunBaseline_RejectsInvalidHorizon(t *testing.T) {
	tests := []struct {
		name  string
		input RunInput
	}{
		{name: "Zero months", input: RunInput{Months: 0}},
		{name: "Too many months", input: RunInput{Months: 5000}},
		{name: "Growth at -100%", input: RunInput{Months: 12, AnnualGrowthRate: ptr(-1.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.service.RunBaseline(context.Background(), uuid.New(), tt.input)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			f.snapshots.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
		})
	}
}

func TestRunScenario_PersistsResult(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scenarioID := uuid.New()
	f := newFixture()

	month := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	scenario := &domain.Scenario{
		ID:       scenarioID,
		UserID:   userID,
		Name:     "Spend",
		Type:     domain.ScenarioTypeSimple,
		Baseline: snapshotOf(10000),
		Actions: []domain.ScenarioAction{
			{ID: uuid.New(), Name: "Trip", Date: month, Kind: domain.ExpenseAction{Amount: decimal.NewFromInt(1000)}},
		},
		AnnualGrowthRate: ptr(0.0),
	}
	f.scenarios.On("Get", ctx, userID, scenarioID).Return(scenario, nil)
	f.repo.On("Save", ctx, mock.MatchedBy(func(r *domain.ProjectionResult) bool {
		return r.ScenarioID != nil && *r.ScenarioID == scenarioID && r.UserID == userID
	})).Return(nil)

	result, err := f.service.RunScenario(ctx, userID, scenarioID, RunInput{Months: 3})

	require.NoError(t, err)
	require.Len(t, result.Points, 4)
	// Scenario growth of zero applies: only the expense moves the value
	assert.InDelta(t, 9000.0, result.Metrics.FinalValue, 1e-9)
	require.Len(t, result.Insights, 1)
	assert.Contains(t, result.Insights[0], "Trip")
	assert.Equal(t, fixedNow, result.GeneratedAt)
	f.repo.AssertExpectations(t)
}

func TestRunScenario_RequestGrowthOverridesScenario(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scenarioID := uuid.New()
	f := newFixture()

	scenario := &domain.Scenario{ID: scenarioID, UserID: userID, Baseline: snapshotOf(10000), AnnualGrowthRate: ptr(0.5)}
	f.scenarios.On("Get", ctx, userID, scenarioID).Return(scenario, nil)
	f.repo.On("Save", ctx, mock.Anything).Return(nil)

	result, err := f.service.RunScenario(ctx, userID, scenarioID, RunInput{Months: 12, AnnualGrowthRate: ptr(0.0)})

	require.NoError(t, err)
	assert.InDelta(t, 10000.0, result.Metrics.FinalValue, 1e-9)
}

func TestRunScenario_NotFound(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scenarioID := uuid.New()
	f := newFixture()
	f.scenarios.On("Get", ctx, userID, scenarioID).Return(nil, fmt.Errorf("scenario %s: %w", scenarioID, domain.ErrNotFound))

	_, err := f.service.RunScenario(ctx, userID, scenarioID, RunInput{Months: 12})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRunScenario_SaveFailurePropagates(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scenarioID := uuid.New()
	f := newFixture()
	saveErr := errors.New("disk full")

	f.scenarios.On("Get", ctx, userID, scenarioID).Return(&domain.Scenario{ID: scenarioID, UserID: userID, Baseline: snapshotOf(1)}, nil)
	f.repo.On("Save", ctx, mock.Anything).Return(saveErr)

	_, err := f.service.RunScenario(ctx, userID, scenarioID, RunInput{Months: 1})

	assert.Equal(t, saveErr, err)
}

func TestGetLatest(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scenarioID := uuid.New()

	t.Run("Returns stored result", func(t *testing.T) {
		f := newFixture()
		stored := &domain.ProjectionResult{ID: uuid.New(), ScenarioID: &scenarioID}
		f.scenarios.On("Get", ctx, userID, scenarioID).Return(&domain.Scenario{ID: scenarioID, UserID: userID}, nil)
		f.repo.On("GetLatestByScenario", ctx, scenarioID).Return(stored, nil)

		result, err := f.service.GetLatest(ctx, userID, scenarioID)

		require.NoError(t, err)
		assert.Equal(t, stored.ID, result.ID)
	})

	t.Run("Ownership is checked first", func(t *testing.T) {
		f := newFixture()
		f.scenarios.On("Get", ctx, userID, scenarioID).Return(nil, domain.ErrNotFound)

		_, err := f.service.GetLatest(ctx, userID, scenarioID)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.repo.AssertNotCalled(t, "GetLatestByScenario", mock.Anything, mock.Anything)
	})
}

func ptr[T any](v T) *T {
	return &v
}
