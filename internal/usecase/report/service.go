// Package report computes patrimony reports over the user's current records.
// Every report is a pure function of the assets, entities and request
// parameters, memoized through the computation cache.
package report

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-projection/internal/cache"
	"github.com/simaogato/wealthflow-projection/internal/domain"
)

// ReportService serves cached reports
type ReportService struct {
	AssetRepo  domain.AssetRepository
	EntityRepo domain.EntityRepository
	Cache      *cache.Cache
	log        zerolog.Logger
}

// NewReportService creates a new ReportService instance
func NewReportService(assetRepo domain.AssetRepository, entityRepo domain.EntityRepository, c *cache.Cache, log zerolog.Logger) *ReportService {
	return &ReportService{
		AssetRepo:  assetRepo,
		EntityRepo: entityRepo,
		Cache:      c,
		log:        log.With().Str("service", "report").Logger(),
	}
}

// load reads the records every report is computed over
func (s *ReportService) load(ctx context.Context, userID uuid.UUID) ([]*domain.Asset, []*domain.Entity, error) {
	assets, err := s.AssetRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	entities, err := s.EntityRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	s.log.Debug().Str("user_id", userID.String()).Int("assets", len(assets)).Msg("report records loaded")
	return assets, entities, nil
}

// Distribution returns the patrimony split by asset type or entity
func (s *ReportService) Distribution(ctx context.Context, userID uuid.UUID, groupBy GroupBy, filters Filters) (*Distribution, error) {
	if groupBy == "" {
		groupBy = GroupByType
	}
	if groupBy != GroupByType && groupBy != GroupByEntity {
		return nil, invalidInput("unknown grouping %q", groupBy)
	}

	assets, entities, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	input := newRequest(assets, entities, filters, map[string]string{"groupBy": string(groupBy)})
	return cache.GetOrCompute(s.Cache, cache.KindDistribution, input, func() (*Distribution, error) {
		return CalculateDistribution(assets, entities, groupBy, filters), nil
	})
}

// Liquidity returns the patrimony split by liquidity bucket
func (s *ReportService) Liquidity(ctx context.Context, userID uuid.UUID, filters Filters) (*Liquidity, error) {
	assets, entities, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	input := newRequest(assets, entities, filters, nil)
	return cache.GetOrCompute(s.Cache, cache.KindLiquidity, input, func() (*Liquidity, error) {
		return CalculateLiquidity(assets, filters), nil
	})
}

// StressTest applies every predefined shock to the patrimony
func (s *ReportService) StressTest(ctx context.Context, userID uuid.UUID, filters Filters) ([]StressResult, error) {
	assets, entities, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	input := newRequest(assets, entities, filters, nil)
	return cache.GetOrCompute(s.Cache, cache.KindStressTest, input, func() ([]StressResult, error) {
		return CalculateStressTests(assets, filters), nil
	})
}

// GrowthProjection compounds the net value at the rate of a growth label
func (s *ReportService) GrowthProjection(ctx context.Context, userID uuid.UUID, label GrowthLabel, years int, filters Filters) (*GrowthProjection, error) {
	if _, err := RateOf(label); err != nil {
		return nil, err
	}
	if years < 1 || years > 100 {
		return nil, invalidInput("years must be between 1 and 100, got %d", years)
	}

	assets, entities, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	input := newRequest(assets, entities, filters, map[string]string{
		"label": string(label),
		"years": strconv.Itoa(years),
	})
	return cache.GetOrCompute(s.Cache, cache.KindProjection, input, func() (*GrowthProjection, error) {
		return CalculateGrowth(assets, filters, label, years)
	})
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}
