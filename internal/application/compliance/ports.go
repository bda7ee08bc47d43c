// Package compliance orchestrates the domain: it generates obligations from
// the catalog, computes health scores and drives the completion lifecycle.
// Infrastructure enters only through the interfaces defined here.
package compliance

import (
	"context"
	"time"

	"github.com/complyhq/compliance-engine/internal/domain/health"
	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// EventPublisher emits obligation lifecycle events to the message bus.
// Publish failures must not fail the originating operation; implementations
// log and drop.
type EventPublisher interface {
	PublishObligationGenerated(ctx context.Context, o *obligation.Obligation)
	PublishObligationCompleted(ctx context.Context, o *obligation.Obligation)
	PublishGenerationRun(ctx context.Context, report *GenerationReport)
}

// ScoreCache is a short-lived cache of computed entity health reports.
type ScoreCache interface {
	GetEntityReport(ctx context.Context, entityID common.ID) (*health.EntityReport, bool)
	SetEntityReport(ctx context.Context, report *health.EntityReport)
	Invalidate(ctx context.Context, entityID common.ID)
}

// MetricsRecorder receives engine-level measurements.
type MetricsRecorder interface {
	RecordGenerationRun(duration time.Duration, generated, existing, skipped int)
	RecordSkip(code string)
	RecordObligationCompleted()
	ObserveHealthScore(score int)
}

// nopPublisher, nopCache and nopMetrics let the service run without the
// corresponding infrastructure wired, e.g. in the CLI.

type nopPublisher struct{}

func (nopPublisher) PublishObligationGenerated(context.Context, *obligation.Obligation) {}
func (nopPublisher) PublishObligationCompleted(context.Context, *obligation.Obligation) {}
func (nopPublisher) PublishGenerationRun(context.Context, *GenerationReport)            {}

type nopCache struct{}

func (nopCache) GetEntityReport(context.Context, common.ID) (*health.EntityReport, bool) {
	return nil, false
}
func (nopCache) SetEntityReport(context.Context, *health.EntityReport) {}
func (nopCache) Invalidate(context.Context, common.ID)                 {}

type nopMetrics struct{}

func (nopMetrics) RecordGenerationRun(time.Duration, int, int, int) {}
func (nopMetrics) RecordSkip(string)                                {}
func (nopMetrics) RecordObligationCompleted()                       {}
func (nopMetrics) ObserveHealthScore(int)                           {}
