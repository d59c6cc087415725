package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common asset type labels. The label is free-form in the record store,
// these are the ones the reports know how to classify.
const (
	AssetTypeCash        = "CASH"
	AssetTypeSavings     = "SAVINGS"
	AssetTypeStocks      = "STOCKS"
	AssetTypeBonds       = "BONDS"
	AssetTypeFunds       = "FUNDS"
	AssetTypeCrypto      = "CRYPTO"
	AssetTypeLifeInsur   = "LIFE_INSURANCE"
	AssetTypeRetirement  = "RETIREMENT"
	AssetTypeRealEstate  = "REAL_ESTATE"
	AssetTypeBusiness    = "BUSINESS"
	AssetTypeOther       = "OTHER"
	AssetTypeUnspecified = "UNSPECIFIED"
)

// Entity represents an owner of assets (a person, a household, a company)
type Entity struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Type   string
}

// Debt represents a liability attached to an asset
type Debt struct {
	ID              uuid.UUID
	AssetID         uuid.UUID
	Name            string
	RemainingAmount decimal.Decimal
	InterestRate    decimal.Decimal // annual, in percent
}

// Valuation is a dated market value of an asset
type Valuation struct {
	ID      uuid.UUID
	AssetID uuid.UUID
	Date    time.Time
	Value   decimal.Decimal
}

// Asset represents a holding as read from the record store.
// CurrentValue is the most recent valuation, zero when the asset was never valued.
type Asset struct {
	ID           uuid.UUID
	Name         string
	Type         string
	OwnerIDs     []uuid.UUID // owning entities
	CurrentValue decimal.Decimal
	ValuedAt     *time.Time
	Debts        []Debt
	Metadata     map[string]string
}

// Validate ensures the asset adheres to domain rules
func (a *Asset) Validate() error {
	if a.Name == "" {
		return errors.New("asset name cannot be empty")
	}
	if a.CurrentValue.IsNegative() {
		return errors.New("asset value must not be negative")
	}
	for _, d := range a.Debts {
		if d.RemainingAmount.IsNegative() {
			return errors.New("debt remaining amount must not be negative")
		}
	}
	return nil
}
