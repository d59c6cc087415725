package scenario

import (
	"context"
	"encoding/json"
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
)

// MockScenarioRepository is a mock implementation of ScenarioRepository for testing
type MockScenarioRepository struct {
	mock.Mock
}

func (m *MockScenarioRepository) Create(ctx context.Context, scenario *domain.Scenario) error {
	args := m.Called(ctx, scenario)
	return args.Error(0)
}

func (m *MockScenarioRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scenario, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scenario), args.Error(1)
}

func (m *MockScenarioRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Scenario, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Scenario), args.Error(1)
}

func (m *MockScenarioRepository) Update(ctx context.Context, scenario *domain.Scenario, replaceActions bool) error {
	args := m.Called(ctx, scenario, replaceActions)
	return args.Error(0)
}

func (m *MockScenarioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

func newService(repo *MockScenarioRepository, snapshots *MockSnapshotBuilder) *ScenarioService {
	service := NewScenarioService(repo, snapshots, zerolog.Nop())
	service.Now = func() time.Time { return fixedNow }
	return service
}

func baselineSnapshot() domain.PatrimonySnapshot {
	return domain.NewPatrimonySnapshot([]*domain.Asset{
		{ID: uuid.New(), Name: "Deposit", Type: domain.AssetTypeSavings, CurrentValue: decimal.NewFromInt(100000)},
	}, nil, fixedNow)
}

func actionInput(name string, t domain.ActionType, date time.Time, order int, params string) ActionInput {
	return ActionInput{Name: name, Type: t, Date: date, Order: order, Params: json.RawMessage(params)}
}

func TestCreate_SnapshotsBaselineAndDecodesActions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	mockRepo := new(MockScenarioRepository)
	mockSnapshots := new(MockSnapshotBuilder)
	baseline := baselineSnapshot()

	mockSnapshots.On("Build", ctx, userID).Return(baseline, nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(s *domain.Scenario) bool {
		return s.UserID == userID && len(s.Actions) == 2 && s.Baseline.TotalValue.Equal(baseline.TotalValue)
	})).Return(nil)

	growth := 0.04
	input := CreateScenarioInput{
		Name:             "Buy a flat",
		Type:             domain.ScenarioTypeComplex,
		AnnualGrowthRate: &growth,
		Actions: []ActionInput{
			actionInput("Deposit", domain.ActionTypeExpense, time.Date(2027, 3, 17, 0, 0, 0, 0, time.UTC), 0, `{"amount":"500"}`),
			actionInput("Flat", domain.ActionTypeBuy, time.Date(2027, 3, 2, 0, 0, 0, 0, time.UTC), 1,
				`{"assetType":"REAL_ESTATE","amount":"250000","financing":{"type":"MIXED","loanAmount":"200000"}}`),
		},
	}

	scenario, err := newService(mockRepo, mockSnapshots).Create(ctx, userID, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, scenario.ID)
	assert.True(t, scenario.IsActive)
	assert.Equal(t, fixedNow, scenario.CreatedAt)
	assert.Equal(t, &growth, scenario.AnnualGrowthRate)

	require.Len(t, scenario.Actions, 2)
	for _, a := range scenario.Actions {
		assert.Equal(t, scenario.ID, a.ScenarioID)
		assert.Equal(t, time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC), a.Date)
	}
	assert.IsType(t, domain.ExpenseAction{}, scenario.Actions[0].Kind)
	buy, ok := scenario.Actions[1].Kind.(domain.BuyAction)
	require.True(t, ok)
	assert.True(t, buy.Financing.Financed())

	mockRepo.AssertExpectations(t)
	mockSnapshots.AssertExpectations(t)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	month := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input CreateScenarioInput
		errIs error
	}{
		{
			name:  "Missing name",
			input: CreateScenarioInput{Type: domain.ScenarioTypeSimple},
			errIs: domain.ErrInvalidInput,
		},
		{
			name:  "Unknown scenario type",
			input: CreateScenarioInput{Name: "x", Type: "WILD"},
			errIs: domain.ErrInvalidInput,
		},
		{
			name: "Action without date",
			input: CreateScenarioInput{Name: "x", Type: domain.ScenarioTypeSimple, Actions: []ActionInput{
				{Name: "Tax", Type: domain.ActionTypeTax, Params: json.RawMessage(`{"amount":"10"}`)},
			}},
			errIs: domain.ErrInvalidInput,
		},
		{
			name: "Unknown action type",
			input: CreateScenarioInput{Name: "x", Type: domain.ScenarioTypeSimple, Actions: []ActionInput{
				actionInput("Gift", "DONATE", month, 0, `{"amount":"10"}`),
			}},
			errIs: domain.ErrInvalidAction,
		},
		{
			name: "Unknown action parameter",
			input: CreateScenarioInput{Name: "x", Type: domain.ScenarioTypeSimple, Actions: []ActionInput{
				actionInput("Tax", domain.ActionTypeTax, month, 0, `{"amount":"10","targetAssets":"ALL"}`),
			}},
			errIs: domain.ErrInvalidAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockScenarioRepository)
			mockSnapshots := new(MockSnapshotBuilder)

			_, err := newService(mockRepo, mockSnapshots).Create(context.Background(), uuid.New(), tt.input)

			assert.ErrorIs(t, err, tt.errIs)
			mockSnapshots.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_SnapshotFailurePropagates(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	mockRepo := new(MockScenarioRepository)
	mockSnapshots := new(MockSnapshotBuilder)
	storeErr := errors.New("store unavailable")

	mockSnapshots.On("Build", ctx, userID).Return(domain.PatrimonySnapshot{}, storeErr)

	_, err := newService(mockRepo, mockSnapshots).Create(ctx, userID, CreateScenarioInput{Name: "x", Type: domain.ScenarioTypeSimple})

	assert.Equal(t, storeErr, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGet_OtherUsersScenarioIsNotFound(t *testing.T) {
	ctx := context.Background()
	owner, intruder := uuid.New(), uuid.New()
	scenarioID := uuid.New()
	mockRepo := new(MockScenarioRepository)

	mockRepo.On("GetByID", ctx, scenarioID).Return(&domain.Scenario{ID: scenarioID, UserID: owner, Name: "x"}, nil)
	service := newService(mockRepo, new(MockSnapshotBuilder))

	_, err := service.Get(ctx, intruder, scenarioID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s, err := service.Get(ctx, owner, scenarioID)
	require.NoError(t, err)
	assert.Equal(t, scenarioID, s.ID)
}

func TestGet_MissingScenarioIsNotFound(t *testing.T) {
	ctx := context.Background()
	scenarioID := uuid.New()
	mockRepo := new(MockScenarioRepository)

	mockRepo.On("GetByID", ctx, scenarioID).Return(nil, fmt.Errorf("scenario %s: %w", scenarioID, domain.ErrNotFound))

	_, err := newService(mockRepo, new(MockSnapshotBuilder)).Get(ctx, uuid.New(), scenarioID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scenarioID := uuid.New()
	month := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	existing := func() *domain.Scenario {
		return &domain.Scenario{
			ID:       scenarioID,
			UserID:   userID,
			Name:     "Old",
			Type:     domain.ScenarioTypeSimple,
			Baseline: baselineSnapshot(),
			Actions: []domain.ScenarioAction{
				{ID: uuid.New(), ScenarioID: scenarioID, Name: "Tax", Date: month, Kind: domain.TaxAction{Amount: decimal.NewFromInt(10)}},
			},
			IsActive: true,
		}
	}

	t.Run("Keeps actions unless replaced", func(t *testing.T) {
		mockRepo := new(MockScenarioRepository)
		mockRepo.On("GetByID", ctx, scenarioID).Return(existing(), nil)
		mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.Scenario"), false).Return(nil)

		s, err := newService(mockRepo, new(MockSnapshotBuilder)).Update(ctx, userID, scenarioID, UpdateScenarioInput{Name: "New", IsActive: false})

		require.NoError(t, err)
		assert.Equal(t, "New", s.Name)
		assert.False(t, s.IsActive)
		assert.Equal(t, domain.ScenarioTypeSimple, s.Type)
		assert.Len(t, s.Actions, 1)
		assert.Equal(t, fixedNow, s.UpdatedAt)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Replaces the whole action set", func(t *testing.T) {
		mockRepo := new(MockScenarioRepository)
		mockRepo.On("GetByID", ctx, scenarioID).Return(existing(), nil)
		mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.Scenario"), true).Return(nil)

		s, err := newService(mockRepo, new(MockSnapshotBuilder)).Update(ctx, userID, scenarioID, UpdateScenarioInput{
			Name:           "New",
			ReplaceActions: true,
			Actions: []ActionInput{
				actionInput("Plan", domain.ActionTypeInvest, month, 0, `{"monthlyAmount":"200"}`),
				actionInput("Yield", domain.ActionTypeYield, month, 1, `{"yieldPercentage":4}`),
			},
		})

		require.NoError(t, err)
		require.Len(t, s.Actions, 2)
		assert.Equal(t, domain.ActionTypeInvest, s.Actions[0].Type())
		assert.Equal(t, domain.ActionTypeYield, s.Actions[1].Type())
	})

	t.Run("Other user's scenario", func(t *testing.T) {
		mockRepo := new(MockScenarioRepository)
		mockRepo.On("GetByID", ctx, scenarioID).Return(existing(), nil)

		_, err := newService(mockRepo, new(MockSnapshotBuilder)).Update(ctx, uuid.New(), scenarioID, UpdateScenarioInput{Name: "New"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scenarioID := uuid.New()

	t.Run("Owner deletes", func(t *testing.T) {
		mockRepo := new(MockScenarioRepository)
		mockRepo.On("GetByID", ctx, scenarioID).Return(&domain.Scenario{ID: scenarioID, UserID: userID}, nil)
		mockRepo.On("Delete", ctx, scenarioID).Return(nil)

		err := newService(mockRepo, new(MockSnapshotBuilder)).Delete(ctx, userID, scenarioID)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Other user cannot delete", func(t *testing.T) {
		mockRepo := new(MockScenarioRepository)
		mockRepo.On("GetByID", ctx, scenarioID).Return(&domain.Scenario{ID: scenarioID, UserID: userID}, nil)

		err := newService(mockRepo, new(MockSnapshotBuilder)).Delete(ctx, uuid.New(), scenarioID)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	mockRepo := new(MockScenarioRepository)
	mockRepo.On("ListByUser", ctx, userID).Return([]*domain.Scenario{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	list, err := newService(mockRepo, new(MockSnapshotBuilder)).List(ctx, userID)

	require.NoError(t, err)
	assert.Len(t, list, 2)
}
