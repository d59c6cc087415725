package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActionType represents the kind of a scenario action
type ActionType string

const (
	ActionTypeSell    ActionType = "SELL"
	ActionTypeBuy     ActionType = "BUY"
	ActionTypeInvest  ActionType = "INVEST"
	ActionTypeYield   ActionType = "YIELD"
	ActionTypeExpense ActionType = "EXPENSE"
	ActionTypeTax     ActionType = "TAX"
)

// ActionKind is the closed set of action payloads.
// Only the kinds declared in this file implement it.
type ActionKind interface {
	Type() ActionType
	Validate() error
	isActionKind()
}

// SellPriceMode selects how the sale price of an asset is derived
type SellPriceMode string

const (
	SellPriceCurrent  SellPriceMode = "CURRENT"  // current value (default)
	SellPriceFixed    SellPriceMode = "FIXED"    // FixedPrice
	SellPriceAdjusted SellPriceMode = "ADJUSTED" // current value * (1 + AdjustmentPct/100)
)

// SellAction removes an asset from the patrimony at a sale price
type SellAction struct {
	AssetID         uuid.UUID       `json:"assetId"`
	PriceMode       SellPriceMode   `json:"priceMode,omitempty"`
	FixedPrice      decimal.Decimal `json:"fixedPrice"`
	AdjustmentPct   float64         `json:"adjustmentPct,omitempty"` // signed
	CapitalGainsTax bool            `json:"capitalGainsTax,omitempty"`
}

// FinancingType represents how a purchase is paid for
type FinancingType string

const (
	FinancingCash  FinancingType = "CASH"
	FinancingLoan  FinancingType = "LOAN"
	FinancingMixed FinancingType = "MIXED"
)

// Financing describes the loan part of a purchase
type Financing struct {
	Type       FinancingType   `json:"type"`
	LoanAmount decimal.Decimal `json:"loanAmount"`
	// AnnualRatePct is the loan's annual rate in percent. Nil means the configured default.
	AnnualRatePct *float64 `json:"annualRatePct,omitempty"`
	// DurationMonths of zero means the configured default
	DurationMonths int `json:"durationMonths,omitempty"`
}

// Financed reports whether the purchase takes on debt
func (f *Financing) Financed() bool {
	return f != nil && (f.Type == FinancingLoan || f.Type == FinancingMixed)
}

// BuyAction adds an asset at its full purchase amount
type BuyAction struct {
	AssetType string          `json:"assetType"`
	Amount    decimal.Decimal `json:"amount"`
	Financing *Financing      `json:"financing,omitempty"`
}

// InvestAction starts a standing monthly investment plan
type InvestAction struct {
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
}

// YieldAction adds recurring income proportional to a value.
// A nil TargetAssetID targets the whole patrimony.
type YieldAction struct {
	TargetAssetID   *uuid.UUID `json:"targetAssetId,omitempty"`
	YieldPercentage float64    `json:"yieldPercentage"`
}

// ExpenseAction is a one-off or recurring expense
type ExpenseAction struct {
	Amount    decimal.Decimal `json:"amount"`
	Recurring bool            `json:"isRecurring,omitempty"`
}

// TaxAction is a one-off tax payment
type TaxAction struct {
	Amount decimal.Decimal `json:"amount"`
}

func (SellAction) Type() ActionType    { return ActionTypeSell }
func (BuyAction) Type() ActionType     { return ActionTypeBuy }
func (InvestAction) Type() ActionType  { return ActionTypeInvest }
func (YieldAction) Type() ActionType   { return ActionTypeYield }
func (ExpenseAction) Type() ActionType { return ActionTypeExpense }
func (TaxAction) Type() ActionType     { return ActionTypeTax }

func (SellAction) isActionKind()    {}
func (BuyAction) isActionKind()     {}
func (InvestAction) isActionKind()  {}
func (YieldAction) isActionKind()   {}
func (ExpenseAction) isActionKind() {}
func (TaxAction) isActionKind()     {}

// Validate ensures the sell action adheres to domain rules
func (a SellAction) Validate() error {
	if a.AssetID == uuid.Nil {
		return fmt.Errorf("%w: sell requires a target asset", ErrInvalidAction)
	}
	switch a.PriceMode {
	case "", SellPriceCurrent, SellPriceAdjusted:
	case SellPriceFixed:
		if a.FixedPrice.IsNegative() {
			return fmt.Errorf("%w: fixed sell price must not be negative", ErrInvalidAction)
		}
	default:
		return fmt.Errorf("%w: unknown sell price mode %q", ErrInvalidAction, a.PriceMode)
	}
	return nil
}

// Validate ensures the buy action adheres to domain rules
func (a BuyAction) Validate() error {
	if !a.Amount.IsPositive() {
		return fmt.Errorf("%w: buy amount must be positive", ErrInvalidAction)
	}
	if a.Financing == nil {
		return nil
	}
	switch a.Financing.Type {
	case FinancingCash:
	case FinancingLoan, FinancingMixed:
		if !a.Financing.LoanAmount.IsPositive() {
			return fmt.Errorf("%w: financed buy requires a positive loan amount", ErrInvalidAction)
		}
		if a.Financing.LoanAmount.GreaterThan(a.Amount) {
			return fmt.Errorf("%w: loan amount exceeds purchase amount", ErrInvalidAction)
		}
		if a.Financing.DurationMonths < 0 {
			return fmt.Errorf("%w: loan duration must not be negative", ErrInvalidAction)
		}
	default:
		return fmt.Errorf("%w: unknown financing type %q", ErrInvalidAction, a.Financing.Type)
	}
	return nil
}

// Validate ensures the invest action adheres to domain rules
func (a InvestAction) Validate() error {
	if !a.MonthlyAmount.IsPositive() {
		return fmt.Errorf("%w: monthly investment must be positive", ErrInvalidAction)
	}
	return nil
}

// Validate ensures the yield action adheres to domain rules
func (a YieldAction) Validate() error {
	if a.YieldPercentage < 0 {
		return fmt.Errorf("%w: yield percentage must not be negative", ErrInvalidAction)
	}
	return nil
}

// Validate ensures the expense action adheres to domain rules
func (a ExpenseAction) Validate() error {
	if !a.Amount.IsPositive() {
		return fmt.Errorf("%w: expense amount must be positive", ErrInvalidAction)
	}
	return nil
}

// Validate ensures the tax action adheres to domain rules
func (a TaxAction) Validate() error {
	if !a.Amount.IsPositive() {
		return fmt.Errorf("%w: tax amount must be positive", ErrInvalidAction)
	}
	return nil
}

// DecodeActionKind parses the parameters of an action of the given type.
// It is the only place where an action type tag is turned into a payload:
// unknown types and unknown parameter fields are rejected with ErrInvalidAction.
func DecodeActionKind(t ActionType, params []byte) (ActionKind, error) {
	if len(params) == 0 {
		params = []byte("{}")
	}

	var kind ActionKind
	var err error
	switch t {
	case ActionTypeSell:
		kind, err = decodeKind[SellAction](params)
	case ActionTypeBuy:
		kind, err = decodeKind[BuyAction](params)
	case ActionTypeInvest:
		kind, err = decodeKind[InvestAction](params)
	case ActionTypeYield:
		kind, err = decodeKind[YieldAction](params)
	case ActionTypeExpense:
		kind, err = decodeKind[ExpenseAction](params)
	case ActionTypeTax:
		kind, err = decodeKind[TaxAction](params)
	default:
		return nil, fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s parameters: %v", ErrInvalidAction, t, err)
	}

	if err := kind.Validate(); err != nil {
		return nil, err
	}
	return kind, nil
}

// EncodeActionKind serializes the payload of an action kind
func EncodeActionKind(kind ActionKind) (ActionType, []byte, error) {
	if kind == nil {
		return "", nil, errors.New("cannot encode nil action kind")
	}
	params, err := json.Marshal(kind)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s parameters: %w", kind.Type(), err)
	}
	return kind.Type(), params, nil
}

func decodeKind[K ActionKind](params []byte) (ActionKind, error) {
	var k K
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&k); err != nil {
		return nil, err
	}
	return k, nil
}
