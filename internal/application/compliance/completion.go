package compliance

import (
	"context"
	"time"

	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// CompleteObligation marks an obligation fulfilled.  The transition happens
// atomically in the repository, so concurrent completions of the same
// obligation resolve to exactly one winner.
func (s *Service) CompleteObligation(ctx context.Context, id common.ID) (*obligation.Obligation, error) {
	o, err := s.obligations.CompleteByID(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	s.metrics.RecordObligationCompleted()
	s.cache.Invalidate(ctx, o.EntityID)
	s.publisher.PublishObligationCompleted(ctx, o)

	s.logger.Info("obligation completed",
		logging.String("obligation_id", o.ID.String()),
		logging.String("entity_id", o.EntityID.String()),
		logging.String("template_ref", o.TemplateRef))

	return o, nil
}

// ObligationsForEntity returns an entity's obligations with their urgency
// classified against the current clock.
func (s *Service) ObligationsForEntity(ctx context.Context, entityID common.ID) ([]ClassifiedObligation, error) {
	if _, err := s.entities.GetByID(ctx, entityID); err != nil {
		return nil, err
	}
	obs, err := s.obligations.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return s.classify(obs), nil
}

// ClassifiedObligation pairs an obligation with its current urgency band.
type ClassifiedObligation struct {
	*obligation.Obligation
	Priority obligation.Priority `json:"priority"`
}

func (s *Service) classify(obs []*obligation.Obligation) []ClassifiedObligation {
	now := s.now()
	out := make([]ClassifiedObligation, 0, len(obs))
	for _, o := range obs {
		out = append(out, ClassifiedObligation{
			Obligation: o,
			Priority:   obligation.Classify(o.DueDate, now),
		})
	}
	return out
}

// UpcomingDeadlines returns pending obligations due within the next
// windowDays, soonest first.
func (s *Service) UpcomingDeadlines(ctx context.Context, windowDays, limit int) ([]ClassifiedObligation, error) {
	now := s.now().UTC()
	from := now.Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, windowDays)

	obs, err := s.obligations.ListUpcoming(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	return s.classify(obs), nil
}
