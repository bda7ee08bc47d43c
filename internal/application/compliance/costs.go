package compliance

import (
	"context"
	"math"

	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// CostReport sums the estimated fees of an entity's pending obligations.
// Obligations without an estimate are counted separately rather than
// treated as zero, so the total is a floor, not a forecast.
type CostReport struct {
	EntityID       common.ID `json:"entityId"`
	TotalEstimated float64   `json:"totalEstimated"`
	Estimated      int       `json:"estimated"`
	Unestimated    int       `json:"unestimated"`
}

// EstimatedCosts rolls up the pending fee exposure for one entity.
func (s *Service) EstimatedCosts(ctx context.Context, entityID common.ID) (*CostReport, error) {
	if _, err := s.entities.GetByID(ctx, entityID); err != nil {
		return nil, err
	}
	obs, err := s.obligations.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	report := &CostReport{EntityID: entityID}
	for _, o := range obs {
		if o.Status != obligation.StatusPending {
			continue
		}
		if o.EstimatedFee == nil {
			report.Unestimated++
			continue
		}
		report.Estimated++
		report.TotalEstimated += *o.EstimatedFee
	}
	report.TotalEstimated = math.Round(report.TotalEstimated*100) / 100
	return report, nil
}
