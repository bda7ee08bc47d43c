package compliance

import (
	"context"

	"github.com/complyhq/compliance-engine/internal/domain/health"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// EntityHealth computes (or serves from cache) the health report for one
// entity.  Urgency bands are recomputed against the current clock on every
// cache miss, so a cached report is at most one TTL stale.
func (s *Service) EntityHealth(ctx context.Context, entityID common.ID) (*health.EntityReport, error) {
	if cached, ok := s.cache.GetEntityReport(ctx, entityID); ok {
		return cached, nil
	}

	// Entity existence is checked so a typo'd ID reads as not-found rather
	// than as a perfectly healthy entity with no obligations.
	if _, err := s.entities.GetByID(ctx, entityID); err != nil {
		return nil, err
	}

	obs, err := s.obligations.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	report := health.Score(entityID, obs, s.now())
	s.metrics.ObserveHealthScore(report.Score)
	s.cache.SetEntityReport(ctx, &report)
	return &report, nil
}

// PortfolioHealth aggregates health across a set of entities.  The portfolio
// score is the worst member score; issues and deadlines are unioned and keep
// their entity attribution.
func (s *Service) PortfolioHealth(ctx context.Context, entityIDs []common.ID) (*health.PortfolioReport, error) {
	reports := make([]health.EntityReport, 0, len(entityIDs))
	for _, id := range entityIDs {
		r, err := s.EntityHealth(ctx, id)
		if err != nil {
			s.logger.Error("portfolio aggregation failed for entity",
				logging.String("entity_id", id.String()),
				logging.Err(err))
			return nil, err
		}
		reports = append(reports, *r)
	}

	portfolio := health.Portfolio(reports, s.now())
	return &portfolio, nil
}
