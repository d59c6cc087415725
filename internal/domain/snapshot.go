package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtSummary is the part of a debt the simulation needs
type DebtSummary struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	InterestRate    decimal.Decimal `json:"interestRate"`
}

// AssetSummary is an asset as captured in a snapshot
type AssetSummary struct {
	ID       uuid.UUID         `json:"id"`
	Type     string            `json:"type"`
	Name     string            `json:"name"`
	Value    decimal.Decimal   `json:"value"`
	Debts    []DebtSummary     `json:"debts,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// EntitySummary is an owner as captured in a snapshot
type EntitySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Type string    `json:"type"`
}

// PatrimonySnapshot is an immutable capture of a user's holdings.
// It must not be mutated after creation: callers that need a working copy use Clone.
type PatrimonySnapshot struct {
	Assets     []AssetSummary             `json:"assets"`
	Entities   []EntitySummary            `json:"entities"`
	TotalValue decimal.Decimal            `json:"totalValue"`
	TotalDebt  decimal.Decimal            `json:"totalDebt"`
	NetValue   decimal.Decimal            `json:"netValue"`
	Breakdown  map[string]decimal.Decimal `json:"breakdown"`
	CreatedAt  time.Time                  `json:"createdAt"`
}

// NewPatrimonySnapshot reduces assets and entities into a snapshot
// Logic:
//   - TotalValue: sum of asset current values
//   - TotalDebt: sum of remaining amounts of every debt attached to any asset
//   - NetValue: TotalValue - TotalDebt
//   - Breakdown: asset type label -> summed value
func NewPatrimonySnapshot(assets []*Asset, entities []*Entity, createdAt time.Time) PatrimonySnapshot {
	snap := PatrimonySnapshot{
		Assets:     make([]AssetSummary, 0, len(assets)),
		Entities:   make([]EntitySummary, 0, len(entities)),
		TotalValue: decimal.Zero,
		TotalDebt:  decimal.Zero,
		Breakdown:  make(map[string]decimal.Decimal),
		CreatedAt:  createdAt,
	}

	for _, a := range assets {
		summary := AssetSummary{
			ID:       a.ID,
			Type:     TypeLabel(a.Type),
			Name:     a.Name,
			Value:    a.CurrentValue,
			Metadata: maps.Clone(a.Metadata),
		}
		for _, d := range a.Debts {
			summary.Debts = append(summary.Debts, DebtSummary{
				ID:              d.ID,
				Name:            d.Name,
				RemainingAmount: d.RemainingAmount,
				InterestRate:    d.InterestRate,
			})
			snap.TotalDebt = snap.TotalDebt.Add(d.RemainingAmount)
		}

		snap.Assets = append(snap.Assets, summary)
		snap.TotalValue = snap.TotalValue.Add(a.CurrentValue)
		snap.Breakdown[summary.Type] = snap.Breakdown[summary.Type].Add(a.CurrentValue)
	}

	for _, e := range entities {
		snap.Entities = append(snap.Entities, EntitySummary{ID: e.ID, Name: e.Name, Type: e.Type})
	}

	snap.NetValue = snap.TotalValue.Sub(snap.TotalDebt)
	return snap
}

// Clone returns a deep copy of the snapshot
func (s PatrimonySnapshot) Clone() PatrimonySnapshot {
	out := s
	out.Assets = make([]AssetSummary, len(s.Assets))
	for i, a := range s.Assets {
		out.Assets[i] = a.Clone()
	}
	out.Entities = append([]EntitySummary(nil), s.Entities...)
	out.Breakdown = maps.Clone(s.Breakdown)
	if out.Breakdown == nil {
		out.Breakdown = make(map[string]decimal.Decimal)
	}
	return out
}

// Clone returns a deep copy of the asset summary
func (a AssetSummary) Clone() AssetSummary {
	out := a
	out.Debts = append([]DebtSummary(nil), a.Debts...)
	out.Metadata = maps.Clone(a.Metadata)
	return out
}

// TypeLabel normalizes an empty asset type to AssetTypeUnspecified
func TypeLabel(t string) string {
	if t == "" {
		return AssetTypeUnspecified
	}
	return t
}
