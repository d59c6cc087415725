package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// SnapshotService builds patrimony snapshots from the record store
type SnapshotService struct {
	AssetRepo  domain.AssetRepository
	EntityRepo domain.EntityRepository
	Now        func() time.Time
	log        zerolog.Logger
}

// NewSnapshotService creates a new SnapshotService instance
func NewSnapshotService(assetRepo domain.AssetRepository, entityRepo domain.EntityRepository, log zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		AssetRepo:  assetRepo,
		EntityRepo: entityRepo,
		Now:        time.Now,
		log:        log.With().Str("service", "snapshot").Logger(),
	}
}

// Build captures the user's current patrimony
// Logic:
//  1. Read every asset owned through any of the user's entities (latest valuation, debts)
//  2. Read the user's entities
//  3. Reduce both into an immutable snapshot stamped with the current time
//
// Record store errors are returned unchanged and no partial snapshot is produced.
func (s *SnapshotService) Build(ctx context.Context, userID uuid.UUID) (domain.PatrimonySnapshot, error) {
	assets, err := s.AssetRepo.ListByUser(ctx, userID)
	if err != nil {
		return domain.PatrimonySnapshot{}, err
	}

	entities, err := s.EntityRepo.ListByUser(ctx, userID)
	if err != nil {
		return domain.PatrimonySnapshot{}, err
	}

	snap := domain.NewPatrimonySnapshot(assets, entities, s.Now().UTC())
	s.log.Debug().
		Str("user_id", userID.String()).
		Int("assets", len(snap.Assets)).
		Str("total_value", snap.TotalValue.String()).
		Msg("snapshot built")
	return snap, nil
}
