package compliance

import (
	"time"

	"github.com/complyhq/compliance-engine/internal/domain/catalog"
	"github.com/complyhq/compliance-engine/internal/domain/entity"
	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
)

// Service is the compliance engine facade: obligation generation, health
// scoring and completion.
type Service struct {
	registry    *catalog.Registry
	entities    entity.Repository
	obligations obligation.Repository

	publisher EventPublisher
	cache     ScoreCache
	metrics   MetricsRecorder
	logger    logging.Logger

	// now is injected for deterministic tests.
	now func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher wires an event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithCache wires a health score cache.
func WithCache(c ScoreCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithMetrics wires a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the compliance service.  Publisher, cache and
// metrics default to no-ops when not provided.
func NewService(
	registry *catalog.Registry,
	entities entity.Repository,
	obligations obligation.Repository,
	logger logging.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{
		registry:    registry,
		entities:    entities,
		obligations: obligations,
		publisher:   nopPublisher{},
		cache:       nopCache{},
		metrics:     nopMetrics{},
		logger:      logger.Named("compliance"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
