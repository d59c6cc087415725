package simulation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

var (
	apartmentID = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	etfID       = uuid.MustParse("10000000-0000-0000-0000-000000000002")
)

// testSnapshot returns a patrimony of 300k: a 200k apartment with a 50k mortgage and a 100k ETF portfolio
func testSnapshot() domain.PatrimonySnapshot {
	assets := []*domain.Asset{
		{
			ID:           apartmentID,
			Name:         "Apartment",
			Type:         domain.AssetTypeRealEstate,
			CurrentValue: decimal.NewFromInt(200000),
			Debts: []domain.Debt{
				{ID: uuid.New(), Name: "Mortgage", RemainingAmount: decimal.NewFromInt(50000), InterestRate: decimal.NewFromFloat(2.5)},
			},
		},
		{
			ID:           etfID,
			Name:         "ETF Portfolio",
			Type:         domain.AssetTypeStocks,
			CurrentValue: decimal.NewFromInt(100000),
		},
	}
	return domain.NewPatrimonySnapshot(assets, nil, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
}

func action(name string, kind domain.ActionKind) domain.ScenarioAction {
	return domain.ScenarioAction{
		ID:   uuid.New(),
		Name: name,
		Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Kind: kind,
	}
}

func TestApply_SellAtCurrentValue_NoPhantomGain(t *testing.T) {
	applicator := NewApplicator(DefaultAssumptions())
	state := NewState(testSnapshot())

	next, insight, err := applicator.Apply(state, action("Sell ETF", domain.SellAction{AssetID: etfID}))

	require.NoError(t, err)
	assert.InDelta(t, 300000.0, next.TotalValue, 1e-9, "selling at current value must not change total value")
	assert.InDelta(t, 50000.0, next.TotalDebt, 1e-9)

	_, held := next.Holding(etfID)
	assert.False(t, held, "sold asset must be removed")
	assert.NotContains(t, next.Breakdown(), domain.AssetTypeStocks)
	assert.InDelta(t, 200000.0, next.Breakdown()[domain.AssetTypeRealEstate], 1e-9)

	assert.Contains(t, insight, "ETF Portfolio")
	assert.NotContains(t, insight, "gain")

	// The input state is untouched
	assert.Len(t, state.Holdings, 2)
	_, stillHeld := state.Holding(etfID)
	assert.True(t, stillHeld)
}

func TestApply_SellWithCapitalGainsTax(t *testing.T) {
	applicator := NewApplicator(DefaultAssumptions())
	state := NewState(testSnapshot())

	sell := domain.SellAction{
		AssetID:         apartmentID,
		PriceMode:       domain.SellPriceFixed,
		FixedPrice:      decimal.NewFromInt(250000),
		CapitalGainsTax: true,
	}
	next, insight, err := applicator.Apply(state, action("Sell apartment", sell))

	require.NoError(t, err)
	// gain 50000, tax 15000 -> +35000
	assert.InDelta(t, 335000.0, next.TotalValue, 1e-9)
	assert.Contains(t, insight, "gain of "+applicator.format(50000))
	assert.Contains(t, insight, "capital gains tax "+applicator.format(15000))
}

func TestApply_SellAdjustedBelowValue_NoTaxOnLoss(t *testing.T) {
	applicator := NewApplicator(DefaultAssumptions())
	state := NewState(testSnapshot())

	sell := domain.SellAction{
		AssetID:         etfID,
		PriceMode:       domain.SellPriceAdjusted,
		AdjustmentPct:   -10,
		CapitalGainsTax: true,
	}
	next, insight, err := applicator.Apply(state, action("Sell ETF at a discount", sell))

	require.NoError(t, err)
	assert.InDelta(t, 290000.0, next.TotalValue, 1e-9)
	assert.Contains(t, insight, "loss of "+applicator.format(10000))
	assert.NotContains(t, insight, "capital gains tax")
}

func TestApply_SellUnknownAsset(t *testing.T) {
	applicator := NewApplicator(DefaultAssumptions())
	state := NewState(testSnapshot())

	next, insight, err := applicator.Apply(state, action("Sell ghost", domain.SellAction{AssetID: uuid.New()}))

	require.NoError(t, err)
	assert.Equal(t, state, next)
	assert.Contains(t, insight, "skipped")
}

func TestApply_Buy(t *testing.T) {
	assumptions := DefaultAssumptions()
	applicator := NewApplicator(assumptions)

	tests := []struct {
		name            string
		financing       *domain.Financing
		expectedDebt    float64
		expectedExpense float64
	}{
		{
			name:            "Cash",
			financing:       &domain.Financing{Type: domain.FinancingCash},
			expectedDebt:    50000,
			expectedExpense: 0,
		},
		{
			name:            "No Financing",
			financing:       nil,
			expectedDebt:    50000,
			expectedExpense: 0,
		},
		{
			name:            "Loan With Defaults",
			financing:       &domain.Financing{Type: domain.FinancingLoan, LoanAmount: decimal.NewFromInt(100000)},
			expectedDebt:    150000,
			expectedExpense: MonthlyPayment(100000, 0.03, 240),
		},
		{
			name: "Mixed With Explicit Terms",
			financing: &domain.Financing{
				Type:           domain.FinancingMixed,
				LoanAmount:     decimal.NewFromInt(60000),
				AnnualRatePct:  ptr(4.0),
				DurationMonths: 120,
			},
			expectedDebt:    110000,
			expectedExpense: MonthlyPayment(60000, 0.04, 120),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buy := domain.BuyAction{
				AssetType: domain.AssetTypeRealEstate,
				Amount:    decimal.NewFromInt(150000),
				Financing: tt.financing,
			}
			act := action("Buy house", buy)

			next, insight, err := applicator.Apply(NewState(testSnapshot()), act)

			require.NoError(t, err)
			// The asset is added at full value regardless of financing
			assert.InDelta(t, 450000.0, next.TotalValue, 1e-9)
			assert.InDelta(t, tt.expectedDebt, next.TotalDebt, 1e-9)
			assert.InDelta(t, tt.expectedExpense, next.MonthlyExpenses, 1e-9)

			bought, held := next.Holding(act.ID)
			require.True(t, held)
			assert.Equal(t, domain.AssetTypeRealEstate, bought.Type)
			assert.InDelta(t, 350000.0, next.Breakdown()[domain.AssetTypeRealEstate], 1e-9)
			assert.Contains(t, insight, applicator.format(150000))
		})
	}
}

func TestApply_RecurringAccumulators(t *testing.T) {
	applicator := NewApplicator(DefaultAssumptions())

	tests := []struct {
		name            string
		kind            domain.ActionKind
		expectedTotal   float64
		expectedIncome  float64
		expectedExpense float64
		insightContains string
	}{
		{
			name:            "Invest",
			kind:            domain.InvestAction{MonthlyAmount: decimal.NewFromInt(500)},
			expectedTotal:   300000,
			expectedExpense: 500,
			insightContains: "automatic investment plan",
		},
		{
			name:            "Yield On Everything",
			kind:            domain.YieldAction{YieldPercentage: 4},
			expectedTotal:   300000,
			expectedIncome:  1000, // 300000 * 4% / 12
			insightContains: "whole patrimony",
		},
		{
			name:            "Yield On One Asset",
			kind:            domain.YieldAction{TargetAssetID: &apartmentID, YieldPercentage: 6},
			expectedTotal:   300000,
			expectedIncome:  1000, // 200000 * 6% / 12
			insightContains: "Apartment",
		},
		{
			name:            "Recurring Expense",
			kind:            domain.ExpenseAction{Amount: decimal.NewFromInt(800), Recurring: true},
			expectedTotal:   300000,
			expectedExpense: 800,
			insightContains: "recurring expense",
		},
		{
			name:            "One-off Expense",
			kind:            domain.ExpenseAction{Amount: decimal.NewFromInt(5000)},
			expectedTotal:   295000,
			insightContains: "one-off expense",
		},
		{
			name:            "Tax",
			kind:            domain.TaxAction{Amount: decimal.NewFromInt(2500)},
			expectedTotal:   297500,
			insightContains: "tax payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, insight, err := applicator.Apply(NewState(testSnapshot()), action(tt.name, tt.kind))

			require.NoError(t, err)
			assert.InDelta(t, tt.expectedTotal, next.TotalValue, 1e-9)
			assert.InDelta(t, tt.expectedIncome, next.MonthlyIncome, 1e-9)
			assert.InDelta(t, tt.expectedExpense, next.MonthlyExpenses, 1e-9)
			assert.Contains(t, insight, tt.insightContains)
		})
	}
}

func TestApply_Deterministic(t *testing.T) {
	applicator := NewApplicator(DefaultAssumptions())
	actions := []domain.ScenarioAction{
		action("Sell ETF", domain.SellAction{AssetID: etfID, PriceMode: domain.SellPriceAdjusted, AdjustmentPct: 12.5, CapitalGainsTax: true}),
		action("Buy flat", domain.BuyAction{AssetType: domain.AssetTypeRealEstate, Amount: decimal.NewFromInt(90000), Financing: &domain.Financing{Type: domain.FinancingLoan, LoanAmount: decimal.NewFromInt(45000)}}),
		action("Rent", domain.YieldAction{YieldPercentage: 3.5}),
		action("Car", domain.ExpenseAction{Amount: decimal.NewFromInt(20000)}),
	}

	run := func() (State, []string) {
		state := NewState(testSnapshot())
		var insights []string
		for _, a := range actions {
			var insight string
			var err error
			state, insight, err = applicator.Apply(state, a)
			require.NoError(t, err)
			insights = append(insights, insight)
		}
		return state, insights
	}

	firstState, firstInsights := run()
	secondState, secondInsights := run()

	assert.Equal(t, firstState, secondState)
	assert.Equal(t, firstInsights, secondInsights)
}

func TestApply_RejectsUnsupportedKind(t *testing.T) {
	applicator := NewApplicator(DefaultAssumptions())
	state := NewState(testSnapshot())

	_, _, err := applicator.Apply(state, action("Pointer kind", &domain.TaxAction{Amount: decimal.NewFromInt(1)}))

	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestMonthlyPayment(t *testing.T) {
	assert.InDelta(t, 554.60, MonthlyPayment(100000, 0.03, 240), 0.01)
	assert.InDelta(t, 500.0, MonthlyPayment(120000, 0, 240), 1e-9)
	assert.Equal(t, 0.0, MonthlyPayment(100000, 0.03, 0))
	assert.Equal(t, 0.0, MonthlyPayment(0, 0.03, 240))
}

func ptr[T any](v T) *T {
	return &v
}
