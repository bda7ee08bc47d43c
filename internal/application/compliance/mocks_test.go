package compliance

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/complyhq/compliance-engine/internal/domain/entity"
	"github.com/complyhq/compliance-engine/internal/domain/health"
	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

type mockEntityRepo struct {
	mock.Mock
}

func (m *mockEntityRepo) Create(ctx context.Context, e *entity.Entity) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEntityRepo) GetByID(ctx context.Context, id common.ID) (*entity.Entity, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*entity.Entity); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEntityRepo) List(ctx context.Context, p common.Pagination) ([]*entity.Entity, error) {
	args := m.Called(ctx, p)
	if es, ok := args.Get(0).([]*entity.Entity); ok {
		return es, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEntityRepo) ListAll(ctx context.Context) ([]*entity.Entity, error) {
	args := m.Called(ctx)
	if es, ok := args.Get(0).([]*entity.Entity); ok {
		return es, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockObligationRepo struct {
	mock.Mock
}

func (m *mockObligationRepo) CreateIfAbsent(ctx context.Context, o *obligation.Obligation) (bool, error) {
	args := m.Called(ctx, o)
	return args.Bool(0), args.Error(1)
}

func (m *mockObligationRepo) GetByID(ctx context.Context, id common.ID) (*obligation.Obligation, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*obligation.Obligation); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObligationRepo) ListByEntity(ctx context.Context, entityID common.ID) ([]*obligation.Obligation, error) {
	args := m.Called(ctx, entityID)
	if os, ok := args.Get(0).([]*obligation.Obligation); ok {
		return os, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObligationRepo) CompleteByID(ctx context.Context, id common.ID, at time.Time) (*obligation.Obligation, error) {
	args := m.Called(ctx, id, at)
	if o, ok := args.Get(0).(*obligation.Obligation); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObligationRepo) ListUpcoming(ctx context.Context, from, to time.Time, limit int) ([]*obligation.Obligation, error) {
	args := m.Called(ctx, from, to, limit)
	if os, ok := args.Get(0).([]*obligation.Obligation); ok {
		return os, args.Error(1)
	}
	return nil, args.Error(1)
}

// memCache is an in-memory ScoreCache for tests.
type memCache struct {
	reports map[common.ID]*health.EntityReport
	sets    int
	hits    int
}

func newMemCache() *memCache {
	return &memCache{reports: map[common.ID]*health.EntityReport{}}
}

func (c *memCache) GetEntityReport(_ context.Context, id common.ID) (*health.EntityReport, bool) {
	r, ok := c.reports[id]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *memCache) SetEntityReport(_ context.Context, r *health.EntityReport) {
	c.sets++
	c.reports[r.EntityID] = r
}

func (c *memCache) Invalidate(_ context.Context, id common.ID) {
	delete(c.reports, id)
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	generated []*obligation.Obligation
	completed []*obligation.Obligation
	runs      []*GenerationReport
}

func (p *capturingPublisher) PublishObligationGenerated(_ context.Context, o *obligation.Obligation) {
	p.generated = append(p.generated, o)
}

func (p *capturingPublisher) PublishObligationCompleted(_ context.Context, o *obligation.Obligation) {
	p.completed = append(p.completed, o)
}

func (p *capturingPublisher) PublishGenerationRun(_ context.Context, r *GenerationReport) {
	p.runs = append(p.runs, r)
}
