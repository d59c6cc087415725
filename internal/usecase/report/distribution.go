package report

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// GroupBy selects the dimension of a distribution
type GroupBy string

const (
	GroupByType   GroupBy = "TYPE"
	GroupByEntity GroupBy = "ENTITY"
)

// Unassigned labels the share of assets without a (matching) owner
const Unassigned = "UNASSIGNED"

// DistributionSlice is the value held in one category
type DistributionSlice struct {
	Key        string          `json:"key"`
	Label      string          `json:"label"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
	AssetCount int             `json:"assetCount"`
}

// Distribution is the patrimony split by asset type or by owning entity
type Distribution struct {
	GroupBy GroupBy             `json:"groupBy"`
	Total   decimal.Decimal     `json:"total"`
	Slices  []DistributionSlice `json:"slices"`
}

// CalculateDistribution groups asset values by type or by entity
// Logic:
//   - Assets failing the filters are ignored
//   - By TYPE: each asset counts fully in its type label
//   - By ENTITY: an asset's value is split evenly between its matching owners;
//     assets without owners fall into UNASSIGNED
//   - Total is the sum of the slices, so an entity filter only counts the
//     filtered owners' shares
//   - Slices are ordered by value descending, then key
func CalculateDistribution(assets []*domain.Asset, entities []*domain.Entity, groupBy GroupBy, filters Filters) *Distribution {
	names := make(map[uuid.UUID]string, len(entities))
	for _, e := range entities {
		names[e.ID] = e.Name
	}

	slicesByKey := make(map[string]*DistributionSlice)
	add := func(key, label string, v decimal.Decimal) {
		s, ok := slicesByKey[key]
		if !ok {
			s = &DistributionSlice{Key: key, Label: label, Value: decimal.Zero}
			slicesByKey[key] = s
		}
		s.Value = s.Value.Add(v)
		s.AssetCount++
	}

	for _, a := range filters.Apply(assets) {
		if groupBy != GroupByEntity {
			label := domain.TypeLabel(a.Type)
			add(label, label, a.CurrentValue)
			continue
		}

		owners := filters.owners(a)
		if len(owners) == 0 {
			add(Unassigned, Unassigned, a.CurrentValue)
			continue
		}
		share := a.CurrentValue.Div(decimal.NewFromInt(int64(len(owners))))
		for _, id := range owners {
			label, ok := names[id]
			if !ok {
				label = id.String()
			}
			add(id.String(), label, share)
		}
	}

	total := decimal.Zero
	for _, s := range slicesByKey {
		total = total.Add(s.Value)
	}

	out := &Distribution{GroupBy: groupBy, Total: total, Slices: make([]DistributionSlice, 0, len(slicesByKey))}
	if out.GroupBy == "" {
		out.GroupBy = GroupByType
	}
	for _, s := range slicesByKey {
		s.Percentage = percentage(s.Value, total)
		out.Slices = append(out.Slices, *s)
	}
	slices.SortFunc(out.Slices, func(a, b DistributionSlice) int {
		if c := b.Value.Cmp(a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

func percentage(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

func assetDebt(a *domain.Asset) decimal.Decimal {
	debt := decimal.Zero
	for _, d := range a.Debts {
		debt = debt.Add(d.RemainingAmount)
	}
	return debt
}
