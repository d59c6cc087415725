package report

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/simaogato/wealthflow-projection/internal/cache"
	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// Filters narrows the assets a report is computed over.
// Empty slices mean no restriction.
type Filters struct {
	EntityIDs  []uuid.UUID `json:"entityIds" msgpack:"entityIds"`
	AssetTypes []string    `json:"assetTypes" msgpack:"assetTypes"`
}

// normalized returns the filters with sorted, deduplicated values so that
// equivalent filters hash identically
func (f Filters) normalized() Filters {
	out := Filters{
		EntityIDs:  slices.Clone(f.EntityIDs),
		AssetTypes: slices.Clone(f.AssetTypes),
	}
	slices.SortFunc(out.EntityIDs, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	out.EntityIDs = slices.Compact(out.EntityIDs)
	slices.Sort(out.AssetTypes)
	out.AssetTypes = slices.Compact(out.AssetTypes)
	return out
}

// matchesType reports whether the asset type passes the type filter
func (f Filters) matchesType(t string) bool {
	return len(f.AssetTypes) == 0 || slices.Contains(f.AssetTypes, domain.TypeLabel(t))
}

// owners returns the asset owners passing the entity filter
func (f Filters) owners(a *domain.Asset) []uuid.UUID {
	if len(f.EntityIDs) == 0 {
		return a.OwnerIDs
	}
	var out []uuid.UUID
	for _, id := range a.OwnerIDs {
		if slices.Contains(f.EntityIDs, id) {
			out = append(out, id)
		}
	}
	return out
}

// Apply returns the assets passing both filters
func (f Filters) Apply(assets []*domain.Asset) []*domain.Asset {
	out := make([]*domain.Asset, 0, len(assets))
	for _, a := range assets {
		if !f.matchesType(a.Type) {
			continue
		}
		if len(f.EntityIDs) > 0 && len(f.owners(a)) == 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}

// assetKey is the part of an asset that affects any report
type assetKey struct {
	ID     string   `msgpack:"id"`
	Type   string   `msgpack:"type"`
	Value  string   `msgpack:"value"`
	Debt   string   `msgpack:"debt"`
	Owners []string `msgpack:"owners"`
}

func assetKeys(assets []*domain.Asset) []assetKey {
	keys := make([]assetKey, len(assets))
	for i, a := range assets {
		owners := make([]string, len(a.OwnerIDs))
		for j, id := range a.OwnerIDs {
			owners[j] = id.String()
		}
		slices.Sort(owners)
		keys[i] = assetKey{
			ID:     a.ID.String(),
			Type:   domain.TypeLabel(a.Type),
			Value:  a.CurrentValue.String(),
			Debt:   assetDebt(a).String(),
			Owners: owners,
		}
	}
	slices.SortFunc(keys, func(a, b assetKey) int { return cmp.Compare(a.ID, b.ID) })
	return keys
}

// entityKey is the part of an entity that affects any report
type entityKey struct {
	ID   string `msgpack:"id"`
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
}

func entityKeys(entities []*domain.Entity) []entityKey {
	keys := make([]entityKey, len(entities))
	for i, e := range entities {
		keys[i] = entityKey{ID: e.ID.String(), Name: e.Name, Type: e.Type}
	}
	slices.SortFunc(keys, func(a, b entityKey) int { return cmp.Compare(a.ID, b.ID) })
	return keys
}

// request is the cache input of a report: everything the computation reads.
// The dependency fingerprints cover the asset collection, the entity set and
// the filters; Params only takes part in the key.
type request struct {
	Assets   []assetKey        `msgpack:"assets"`
	Entities []entityKey       `msgpack:"entities"`
	Filters  Filters           `msgpack:"filters"`
	Params   map[string]string `msgpack:"params"`
}

func newRequest(assets []*domain.Asset, entities []*domain.Entity, filters Filters, params map[string]string) request {
	return request{
		Assets:   assetKeys(assets),
		Entities: entityKeys(entities),
		Filters:  filters.normalized(),
		Params:   params,
	}
}

// Dependencies implements cache.Input
func (r request) Dependencies() ([]string, error) {
	assets, err := cache.CountAndHash("assets", len(r.Assets), r.Assets)
	if err != nil {
		return nil, err
	}
	entities, err := cache.CountAndHash("entities", len(r.Entities), r.Entities)
	if err != nil {
		return nil, err
	}
	filters, err := cache.Hash(r.Filters)
	if err != nil {
		return nil, err
	}
	return []string{
		assets,
		entities,
		"filters:" + filters,
	}, nil
}
