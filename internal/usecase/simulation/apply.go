package simulation

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// Applicator applies one scheduled action to a simulation state
type Applicator struct {
	assumptions Assumptions
}

// NewApplicator creates a new Applicator instance
func NewApplicator(assumptions Assumptions) *Applicator {
	return &Applicator{assumptions: assumptions}
}

// Apply returns the state after the action and a human-readable insight.
// The input state is not modified. Apply is deterministic: the same state and
// action always produce the same result and the same insight text.
func (a *Applicator) Apply(s State, action domain.ScenarioAction) (State, string, error) {
	switch k := action.Kind.(type) {
	case domain.SellAction:
		return a.applySell(s, action, k)
	case domain.BuyAction:
		return a.applyBuy(s, action, k)
	case domain.InvestAction:
		monthly := k.MonthlyAmount.InexactFloat64()
		s.MonthlyExpenses += monthly
		return s, fmt.Sprintf("%s: automatic investment plan of %s/month started", action.Name, a.format(monthly)), nil
	case domain.YieldAction:
		return a.applyYield(s, action, k)
	case domain.ExpenseAction:
		amount := k.Amount.InexactFloat64()
		if k.Recurring {
			s.MonthlyExpenses += amount
			return s, fmt.Sprintf("%s: recurring expense of %s/month added", action.Name, a.format(amount)), nil
		}
		s.TotalValue -= amount
		return s, fmt.Sprintf("%s: one-off expense of %s paid", action.Name, a.format(amount)), nil
	case domain.TaxAction:
		amount := k.Amount.InexactFloat64()
		s.TotalValue -= amount
		return s, fmt.Sprintf("%s: tax payment of %s", action.Name, a.format(amount)), nil
	default:
		return s, "", fmt.Errorf("%w: unsupported action kind %T", domain.ErrInvalidAction, action.Kind)
	}
}

// applySell removes the target holding and books the difference between sale
// price and current value, minus capital gains tax when requested
func (a *Applicator) applySell(s State, action domain.ScenarioAction, k domain.SellAction) (State, string, error) {
	h, ok := s.Holding(k.AssetID)
	if !ok {
		return s, fmt.Sprintf("%s: sale skipped, asset %s is no longer held", action.Name, k.AssetID), nil
	}

	current := h.Value
	price := a.sellPrice(k, current)
	gain := price - current

	tax := 0.0
	if k.CapitalGainsTax {
		tax = math.Max(0, gain) * a.assumptions.CapitalGainsTaxRate
	}

	next := s.withoutHolding(h.ID)
	next.TotalValue += price - current - tax

	insight := fmt.Sprintf("%s: sold %s for %s", action.Name, h.Name, a.format(price))
	if gain > 0 {
		insight += fmt.Sprintf(", realizing a gain of %s", a.format(gain))
	} else if gain < 0 {
		insight += fmt.Sprintf(", realizing a loss of %s", a.format(-gain))
	}
	if tax > 0 {
		insight += fmt.Sprintf(" (capital gains tax %s)", a.format(tax))
	}
	return next, insight, nil
}

func (a *Applicator) sellPrice(k domain.SellAction, current float64) float64 {
	switch k.PriceMode {
	case domain.SellPriceFixed:
		return k.FixedPrice.InexactFloat64()
	case domain.SellPriceAdjusted:
		return current * (1 + k.AdjustmentPct/100)
	default:
		return current
	}
}

// applyBuy adds the purchased holding at full value. Financed purchases also
// add the loan to the debt and the amortized payment to monthly expenses.
func (a *Applicator) applyBuy(s State, action domain.ScenarioAction, k domain.BuyAction) (State, string, error) {
	amount := k.Amount.InexactFloat64()

	next := s.withHolding(Holding{
		ID:    action.ID,
		Type:  domain.TypeLabel(k.AssetType),
		Name:  action.Name,
		Value: amount,
	})
	next.TotalValue += amount

	insight := fmt.Sprintf("%s: purchase of %s", action.Name, a.format(amount))
	if !k.Financing.Financed() {
		return next, insight, nil
	}

	loan := k.Financing.LoanAmount.InexactFloat64()
	rate := a.assumptions.DefaultLoanRate
	if k.Financing.AnnualRatePct != nil {
		rate = *k.Financing.AnnualRatePct / 100
	}
	months := a.assumptions.DefaultLoanMonths
	if k.Financing.DurationMonths > 0 {
		months = k.Financing.DurationMonths
	}

	payment := MonthlyPayment(loan, rate, months)
	next.TotalDebt += loan
	next.MonthlyExpenses += payment

	insight += fmt.Sprintf(", financed with a %s loan at %.2f%% over %d months (%s/month)",
		a.format(loan), rate*100, months, a.format(payment))
	return next, insight, nil
}

// applyYield adds recurring income. Targeting the whole patrimony uses the
// current total value, targeting one asset uses that holding's value.
func (a *Applicator) applyYield(s State, action domain.ScenarioAction, k domain.YieldAction) (State, string, error) {
	monthlyRate := k.YieldPercentage / 100 / 12

	if k.TargetAssetID == nil {
		income := s.TotalValue * monthlyRate
		s.MonthlyIncome += income
		return s, fmt.Sprintf("%s: %.2f%% yield on the whole patrimony adds %s/month",
			action.Name, k.YieldPercentage, a.format(income)), nil
	}

	h, ok := s.Holding(*k.TargetAssetID)
	if !ok {
		return s, fmt.Sprintf("%s: yield skipped, asset %s is no longer held", action.Name, *k.TargetAssetID), nil
	}
	income := h.Value * monthlyRate
	s.MonthlyIncome += income
	return s, fmt.Sprintf("%s: %.2f%% yield on %s adds %s/month",
		action.Name, k.YieldPercentage, h.Name, a.format(income)), nil
}

func (a *Applicator) format(amount float64) string {
	return money.NewFromFloat(amount, a.assumptions.Currency).Display()
}

// MonthlyPayment returns the constant monthly payment amortizing a loan.
// A zero rate spreads the principal evenly.
func MonthlyPayment(principal, annualRate float64, months int) float64 {
	if months <= 0 || principal <= 0 {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return principal / float64(months)
	}
	return principal * r / (1 - math.Pow(1+r, -float64(months)))
}
