package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// ListByUser retrieves every asset owned by any of the user's entities
// Logic:
//  1. Read the assets with their latest valuation (zero when never valued)
//  2. Attach the owning entities of the user
//  3. Attach the debts of every asset
func (r *assetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Asset, error) {
	query := `
		SELECT DISTINCT a.id, a.name, a.asset_type, a.metadata, lv.value, lv.valued_at
		FROM assets a
		JOIN asset_owners ao ON ao.asset_id = a.id
		JOIN entities e ON e.id = ao.entity_id
		LEFT JOIN LATERAL (
			SELECT value, valued_at
			FROM valuations
			WHERE asset_id = a.id
			ORDER BY valued_at DESC
			LIMIT 1
		) lv ON TRUE
		WHERE e.user_id = $1
		ORDER BY a.name, a.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	assets := []*domain.Asset{}
	byID := make(map[uuid.UUID]*domain.Asset)
	for rows.Next() {
		var a domain.Asset
		var metadata []byte
		var valueStr sql.NullString
		var valuedAt sql.NullTime

		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &metadata, &valueStr, &valuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
				return nil, fmt.Errorf("failed to parse asset metadata: %w", err)
			}
		}

		a.CurrentValue = decimal.Zero
		if valueStr.Valid {
			value, err := decimal.NewFromString(valueStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse valuation: %w", err)
			}
			a.CurrentValue = value
		}
		if valuedAt.Valid {
			t := valuedAt.Time
			a.ValuedAt = &t
		}

		assets = append(assets, &a)
		byID[a.ID] = &a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}
	if len(assets) == 0 {
		return assets, nil
	}

	if err := r.attachOwners(ctx, userID, byID); err != nil {
		return nil, err
	}
	if err := r.attachDebts(ctx, byID); err != nil {
		return nil, err
	}

	return assets, nil
}

func (r *assetRepository) attachOwners(ctx context.Context, userID uuid.UUID, byID map[uuid.UUID]*domain.Asset) error {
	query := `
		SELECT ao.asset_id, ao.entity_id
		FROM asset_owners ao
		JOIN entities e ON e.id = ao.entity_id
		WHERE e.user_id = $1
		ORDER BY ao.asset_id, ao.entity_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query asset owners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var assetID, entityID uuid.UUID
		if err := rows.Scan(&assetID, &entityID); err != nil {
			return fmt.Errorf("failed to scan asset owner: %w", err)
		}
		if a, ok := byID[assetID]; ok {
			a.OwnerIDs = append(a.OwnerIDs, entityID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate asset owners: %w", err)
	}
	return nil
}

func (r *assetRepository) attachDebts(ctx context.Context, byID map[uuid.UUID]*domain.Asset) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id.String())
	}

	query := `
		SELECT id, asset_id, name, remaining_amount, interest_rate
		FROM debts
		WHERE asset_id = ANY($1::uuid[])
		ORDER BY asset_id, name, id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query debts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.Debt
		var remainingStr, rateStr string
		if err := rows.Scan(&d.ID, &d.AssetID, &d.Name, &remainingStr, &rateStr); err != nil {
			return fmt.Errorf("failed to scan debt: %w", err)
		}

		remaining, err := decimal.NewFromString(remainingStr)
		if err != nil {
			return fmt.Errorf("failed to parse remaining_amount: %w", err)
		}
		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			return fmt.Errorf("failed to parse interest_rate: %w", err)
		}
		d.RemainingAmount = remaining
		d.InterestRate = rate

		if a, ok := byID[d.AssetID]; ok {
			a.Debts = append(a.Debts, d)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate debts: %w", err)
	}
	return nil
}
