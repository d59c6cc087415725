package report

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// LiquidityBucket classifies how quickly an asset can be turned into cash
type LiquidityBucket string

const (
	LiquidityImmediate  LiquidityBucket = "IMMEDIATE"   // days
	LiquidityShortTerm  LiquidityBucket = "SHORT_TERM"  // weeks
	LiquidityMediumTerm LiquidityBucket = "MEDIUM_TERM" // months
	LiquidityLongTerm   LiquidityBucket = "LONG_TERM"   // years
)

var liquidityOrder = []LiquidityBucket{LiquidityImmediate, LiquidityShortTerm, LiquidityMediumTerm, LiquidityLongTerm}

var liquidityByType = map[string]LiquidityBucket{
	domain.AssetTypeCash:       LiquidityImmediate,
	domain.AssetTypeSavings:    LiquidityImmediate,
	domain.AssetTypeStocks:     LiquidityShortTerm,
	domain.AssetTypeBonds:      LiquidityShortTerm,
	domain.AssetTypeFunds:      LiquidityShortTerm,
	domain.AssetTypeCrypto:     LiquidityShortTerm,
	domain.AssetTypeLifeInsur:  LiquidityMediumTerm,
	domain.AssetTypeRetirement: LiquidityLongTerm,
	domain.AssetTypeRealEstate: LiquidityLongTerm,
	domain.AssetTypeBusiness:   LiquidityLongTerm,
}

// BucketOf returns the liquidity bucket of an asset type.
// Types without a known horizon are MEDIUM_TERM.
func BucketOf(assetType string) LiquidityBucket {
	if b, ok := liquidityByType[domain.TypeLabel(assetType)]; ok {
		return b
	}
	return LiquidityMediumTerm
}

// LiquidityGroup is the value held in one liquidity bucket
type LiquidityGroup struct {
	Bucket     LiquidityBucket `json:"bucket"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
	AssetCount int             `json:"assetCount"`
}

// Liquidity is the patrimony split by liquidity bucket, always in bucket order
type Liquidity struct {
	Total            decimal.Decimal  `json:"total"`
	Groups           []LiquidityGroup `json:"groups"`
	Liquid           decimal.Decimal  `json:"liquid"` // IMMEDIATE + SHORT_TERM
	LiquidPercentage float64          `json:"liquidPercentage"`
}

// CalculateLiquidity groups the filtered assets into the four liquidity buckets
func CalculateLiquidity(assets []*domain.Asset, filters Filters) *Liquidity {
	groups := make(map[LiquidityBucket]*LiquidityGroup, len(liquidityOrder))
	for _, b := range liquidityOrder {
		groups[b] = &LiquidityGroup{Bucket: b, Value: decimal.Zero}
	}

	out := &Liquidity{Total: decimal.Zero, Liquid: decimal.Zero}
	for _, a := range filters.Apply(assets) {
		g := groups[BucketOf(a.Type)]
		g.Value = g.Value.Add(a.CurrentValue)
		g.AssetCount++
		out.Total = out.Total.Add(a.CurrentValue)
	}

	for _, b := range liquidityOrder {
		g := groups[b]
		g.Percentage = percentage(g.Value, out.Total)
		out.Groups = append(out.Groups, *g)
		if b == LiquidityImmediate || b == LiquidityShortTerm {
			out.Liquid = out.Liquid.Add(g.Value)
		}
	}
	out.LiquidPercentage = percentage(out.Liquid, out.Total)
	return out
}
