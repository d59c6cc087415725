package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// entityRepository implements domain.EntityRepository
type entityRepository struct {
	db *DB
}

// NewEntityRepository creates a new entity repository
func NewEntityRepository(db *DB) domain.EntityRepository {
	return &entityRepository{db: db}
}

// ListByUser retrieves all entities belonging to the user
func (r *entityRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Entity, error) {
	query := `
		SELECT id, user_id, name, entity_type
		FROM entities
		WHERE user_id = $1
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	entities := []*domain.Entity{}
	for rows.Next() {
		var e domain.Entity
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Type); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}

	return entities, nil
}
