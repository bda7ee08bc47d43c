package compliance

import (
	"context"
	"time"

	"github.com/complyhq/compliance-engine/internal/domain/catalog"
	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// SkippedTemplate records one template the generator could not produce an
// obligation for, with the reason.
type SkippedTemplate struct {
	TemplateRef string           `json:"template_ref"`
	Code        errors.ErrorCode `json:"code"`
	Reason      string           `json:"reason"`
}

// TemplateWarning records a template whose obligation was created despite a
// defect, e.g. a contradictory fee range.
type TemplateWarning struct {
	TemplateRef string           `json:"template_ref"`
	Code        errors.ErrorCode `json:"code"`
	Reason      string           `json:"reason"`
}

// GenerationReport summarizes one generation run for one entity.
type GenerationReport struct {
	EntityID     common.ID `json:"entity_id"`
	Jurisdiction string    `json:"jurisdiction"`
	AsOfYear     int       `json:"as_of_year"`
	RunAt        time.Time `json:"run_at"`
	// Generated counts newly created obligations; Existing counts triples
	// that were already present from an earlier run.
	Generated     int               `json:"generated"`
	Existing      int               `json:"existing"`
	NotApplicable int               `json:"not_applicable"`
	Skipped       []SkippedTemplate `json:"skipped"`
	Warnings      []TemplateWarning `json:"warnings"`
	// Obligations are the newly created records, in catalog order.
	Obligations []*obligation.Obligation `json:"obligations"`
}

// GenerateForEntity derives the entity's obligations from its jurisdiction
// catalog as of the given year; asOfYear <= 0 means the current year, and a
// future year pre-generates that year's obligations.  The run is idempotent:
// re-running never duplicates an obligation.  Template-local faults (missing
// formation date, unresolvable rule) are skipped and reported; an unknown
// jurisdiction aborts the whole run since every template would be affected.
func (s *Service) GenerateForEntity(ctx context.Context, entityID common.ID, asOfYear int) (*GenerationReport, error) {
	start := s.now()

	ent, err := s.entities.GetByID(ctx, entityID)
	if err != nil {
		return nil, err
	}

	templates, err := s.registry.TemplatesFor(ent.Jurisdiction)
	if err != nil {
		s.logger.Error("generation aborted: jurisdiction catalog unavailable",
			logging.String("entity_id", entityID.String()),
			logging.String("jurisdiction", ent.Jurisdiction),
			logging.Err(err))
		return nil, err
	}

	now := start.UTC()
	if asOfYear <= 0 {
		asOfYear = now.Year()
	}
	report := &GenerationReport{
		EntityID:     entityID,
		Jurisdiction: ent.Jurisdiction,
		AsOfYear:     asOfYear,
		RunAt:        now,
		Skipped:      []SkippedTemplate{},
		Warnings:     []TemplateWarning{},
	}

	formationYear, hasFormation := ent.FormationYear()

	for _, tmpl := range templates {
		if !tmpl.AppliesTo(ent.IndustryTags) {
			report.NotApplicable++
			continue
		}

		targetYear := report.AsOfYear
		if biennial, ok := tmpl.Recurrence.(catalog.BiennialAnniversary); ok {
			if !hasFormation {
				s.skip(report, tmpl.Ref, errors.MissingAnchor(
					"biennial rule requires a formation date"))
				continue
			}
			targetYear = biennial.QualifyingYear(formationYear, report.AsOfYear)
		}

		dueDate, err := tmpl.Recurrence.Resolve(catalog.Anchor{
			FormationDate: ent.FormationDate,
			TargetYear:    targetYear,
		})
		if err != nil {
			s.skip(report, tmpl.Ref, err)
			continue
		}

		fee, feeNote := s.normalizeFee(report, tmpl)

		periodKey := obligation.PeriodKeyFor(tmpl.Recurrence, formationYear, report.AsOfYear)
		o := obligation.New(entityID, tmpl.Ref, periodKey, dueDate, fee, feeNote)
		o.LateFee = tmpl.LateFee
		o.GracePeriodDays = tmpl.GracePeriodDays

		created, err := s.obligations.CreateIfAbsent(ctx, o)
		if err != nil {
			return nil, err
		}
		if created {
			report.Generated++
			report.Obligations = append(report.Obligations, o)
			s.publisher.PublishObligationGenerated(ctx, o)
		} else {
			report.Existing++
		}
	}

	if report.Generated > 0 {
		s.cache.Invalidate(ctx, entityID)
	}

	s.metrics.RecordGenerationRun(s.now().Sub(start), report.Generated, report.Existing, len(report.Skipped))
	s.publisher.PublishGenerationRun(ctx, report)

	s.logger.Info("generation run finished",
		logging.String("entity_id", entityID.String()),
		logging.String("jurisdiction", report.Jurisdiction),
		logging.Int("generated", report.Generated),
		logging.Int("existing", report.Existing),
		logging.Int("skipped", len(report.Skipped)))

	return report, nil
}

func (s *Service) skip(report *GenerationReport, templateRef string, err error) {
	code := errors.GetCode(err)
	report.Skipped = append(report.Skipped, SkippedTemplate{
		TemplateRef: templateRef,
		Code:        code,
		Reason:      err.Error(),
	})
	s.metrics.RecordSkip(string(code))
	s.logger.Warn("template skipped",
		logging.String("template_ref", templateRef),
		logging.Err(err))
}

// normalizeFee reduces the template fee to an estimate.  A contradictory
// range still yields an obligation, just without an estimate.
func (s *Service) normalizeFee(report *GenerationReport, tmpl catalog.RequirementTemplate) (*float64, string) {
	fee, err := tmpl.Fee.Normalize()
	if err == nil {
		return fee, ""
	}
	report.Warnings = append(report.Warnings, TemplateWarning{
		TemplateRef: tmpl.Ref,
		Code:        errors.GetCode(err),
		Reason:      err.Error(),
	})
	s.logger.Warn("fee definition invalid, obligation created without estimate",
		logging.String("template_ref", tmpl.Ref),
		logging.Err(err))
	return nil, "fee definition invalid; no estimate available"
}

// SweepResult is the outcome of a portfolio-wide generation sweep.
type SweepResult struct {
	Entities int                 `json:"entities"`
	Reports  []*GenerationReport `json:"reports"`
	// Failed maps entity IDs to the error that aborted their run.
	Failed map[common.ID]string `json:"failed,omitempty"`
}

// GenerateForAll runs generation for every known entity as of the given year
// (<= 0 for the current year).  One entity's failure (typically a
// misconfigured jurisdiction) does not stop the sweep.
func (s *Service) GenerateForAll(ctx context.Context, asOfYear int) (*SweepResult, error) {
	ents, err := s.entities.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Entities: len(ents), Failed: map[common.ID]string{}}
	for _, ent := range ents {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		report, err := s.GenerateForEntity(ctx, ent.ID, asOfYear)
		if err != nil {
			result.Failed[ent.ID] = err.Error()
			continue
		}
		result.Reports = append(result.Reports, report)
	}
	return result, nil
}
