package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/complyhq/compliance-engine/internal/domain/catalog"
	"github.com/complyhq/compliance-engine/internal/domain/entity"
	"github.com/complyhq/compliance-engine/internal/domain/health"
	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/internal/testutil"
	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

var (
	testLateFee   = 75.0
	testGraceDays = 14
)

func fixedClock() time.Time { return fixedNow }

func testRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	r := catalog.NewRegistry()
	templates := []catalog.RequirementTemplate{
		{
			Ref: "TZ-ANNUAL", Name: "Annual Report", Jurisdiction: "TZ",
			Category:        catalog.CategoryStateFiling,
			Recurrence:      catalog.AnnualFixedDate{Month: time.March, Day: 1},
			Fee:             catalog.FixedFee{Amount: 100},
			LateFee:         &testLateFee,
			GracePeriodDays: &testGraceDays,
		},
		{
			Ref: "TZ-ANNIV", Name: "Anniversary Statement", Jurisdiction: "TZ",
			Category:   catalog.CategoryStateFiling,
			Recurrence: catalog.AnnualAnniversary{},
			Fee:        catalog.RangeFee{Min: 100, Max: 200},
		},
		{
			Ref: "TZ-BIENNIAL", Name: "Biennial Statement", Jurisdiction: "TZ",
			Category:   catalog.CategoryStateFiling,
			Recurrence: catalog.BiennialAnniversary{},
			Fee:        catalog.FixedFee{Amount: 9},
		},
		{
			Ref: "TZ-ONGOING", Name: "Registered Agent", Jurisdiction: "TZ",
			Category:   catalog.CategoryIndustry,
			Recurrence: catalog.NoRecurrence{},
			Fee:        catalog.UnknownFee{},
		},
		{
			Ref: "TZ-BADFEE", Name: "Filing With Broken Fee", Jurisdiction: "TZ",
			Category:   catalog.CategoryStateFiling,
			Recurrence: catalog.AnnualFixedDate{Month: time.June, Day: 30},
			Fee:        catalog.RangeFee{Min: 500, Max: 100},
		},
		{
			Ref: "TZ-FOOD", Name: "Food Service License", Jurisdiction: "TZ",
			Category:     catalog.CategoryIndustry,
			Recurrence:   catalog.AnnualFixedDate{Month: time.January, Day: 31},
			Fee:          catalog.FixedFee{Amount: 50},
			IndustryTags: []string{"food-service"},
		},
	}
	for _, tmpl := range templates {
		require.NoError(t, r.Register(tmpl))
	}
	return r
}

func testEntity() *entity.Entity {
	formed := time.Date(2021, time.May, 3, 0, 0, 0, 0, time.UTC)
	return &entity.Entity{
		ID:            common.NewID(),
		Name:          "Acme LLC",
		Jurisdiction:  "TZ",
		FormationDate: &formed,
		IndustryTags:  []string{"fintech"},
	}
}

func newTestService(t *testing.T, entities *mockEntityRepo, obligations *mockObligationRepo, opts ...Option) *Service {
	t.Helper()
	base := []Option{WithClock(fixedClock)}
	return NewService(testRegistry(t), entities, obligations, logging.NewNopLogger(), append(base, opts...)...)
}

func TestGenerateForEntity(t *testing.T) {
	ent := testEntity()
	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	publisher := &capturingPublisher{}

	entities.On("GetByID", mock.Anything, ent.ID).Return(ent, nil)
	obligations.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)

	svc := newTestService(t, entities, obligations, WithPublisher(publisher))
	report, err := svc.GenerateForEntity(context.Background(), ent.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Generated)
	assert.Equal(t, 0, report.Existing)
	assert.Equal(t, 1, report.NotApplicable, "untagged entity skips the food-service license")
	assert.Empty(t, report.Skipped)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "TZ-BADFEE", report.Warnings[0].TemplateRef)
	assert.Equal(t, errors.ErrCodeInvalidFeeRange, report.Warnings[0].Code)

	byRef := map[string]*obligation.Obligation{}
	for _, o := range report.Obligations {
		byRef[o.TemplateRef] = o
	}

	annual := byRef["TZ-ANNUAL"]
	require.NotNil(t, annual)
	assert.Equal(t, "2025", annual.PeriodKey)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), *annual.DueDate)
	assert.Equal(t, 100.0, *annual.EstimatedFee)
	require.NotNil(t, annual.LateFee, "penalty terms carry over from the template")
	assert.Equal(t, testLateFee, *annual.LateFee)
	require.NotNil(t, annual.GracePeriodDays)
	assert.Equal(t, testGraceDays, *annual.GracePeriodDays)

	anniv := byRef["TZ-ANNIV"]
	require.NotNil(t, anniv)
	assert.Equal(t, time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC), *anniv.DueDate)
	assert.Equal(t, 150.0, *anniv.EstimatedFee, "range fee normalizes to midpoint")

	// Formed 2021, as of 2025: same parity, so the biennial falls due in 2025.
	biennial := byRef["TZ-BIENNIAL"]
	require.NotNil(t, biennial)
	assert.Equal(t, "2025", biennial.PeriodKey)

	ongoing := byRef["TZ-ONGOING"]
	require.NotNil(t, ongoing)
	assert.Equal(t, obligation.PeriodKeyOngoing, ongoing.PeriodKey)
	assert.Nil(t, ongoing.DueDate)
	assert.Nil(t, ongoing.EstimatedFee)

	badFee := byRef["TZ-BADFEE"]
	require.NotNil(t, badFee)
	assert.Nil(t, badFee.EstimatedFee, "contradictory range yields no estimate")
	assert.NotEmpty(t, badFee.FeeNote)

	assert.Len(t, publisher.generated, 5)
	require.Len(t, publisher.runs, 1)
	obligations.AssertNumberOfCalls(t, "CreateIfAbsent", 5)
}

func TestGenerateForEntityBiennialParity(t *testing.T) {
	ent := testEntity()
	formed := time.Date(2020, time.May, 3, 0, 0, 0, 0, time.UTC) // even year, off parity with 2025
	ent.FormationDate = &formed

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, ent.ID).Return(ent, nil)
	obligations.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)

	svc := newTestService(t, entities, obligations)
	report, err := svc.GenerateForEntity(context.Background(), ent.ID, 0)
	require.NoError(t, err)

	var biennial *obligation.Obligation
	for _, o := range report.Obligations {
		if o.TemplateRef == "TZ-BIENNIAL" {
			biennial = o
		}
	}
	require.NotNil(t, biennial)
	assert.Equal(t, "2026", biennial.PeriodKey, "next qualifying year")
	assert.Equal(t, time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC), *biennial.DueDate)
}

func TestGenerateForEntityExplicitYear(t *testing.T) {
	ent := testEntity() // formed 2021

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, ent.ID).Return(ent, nil)
	obligations.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)

	// Pre-generate next year's obligations while the clock still reads 2025.
	svc := newTestService(t, entities, obligations)
	report, err := svc.GenerateForEntity(context.Background(), ent.ID, 2026)
	require.NoError(t, err)

	assert.Equal(t, 2026, report.AsOfYear)

	byRef := map[string]*obligation.Obligation{}
	for _, o := range report.Obligations {
		byRef[o.TemplateRef] = o
	}

	annual := byRef["TZ-ANNUAL"]
	require.NotNil(t, annual)
	assert.Equal(t, "2026", annual.PeriodKey)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), *annual.DueDate)

	// Formed 2021, as of 2026: parity differs, so the biennial shifts to 2027.
	biennial := byRef["TZ-BIENNIAL"]
	require.NotNil(t, biennial)
	assert.Equal(t, "2027", biennial.PeriodKey)
	assert.Equal(t, time.Date(2027, time.May, 3, 0, 0, 0, 0, time.UTC), *biennial.DueDate)
}

func TestGenerateForEntityMissingFormationDate(t *testing.T) {
	ent := testEntity()
	ent.FormationDate = nil

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, ent.ID).Return(ent, nil)
	obligations.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)

	capture := testutil.NewCapturingLogger()
	svc := NewService(testRegistry(t), entities, obligations, capture, WithClock(fixedClock))
	report, err := svc.GenerateForEntity(context.Background(), ent.ID, 0)
	require.NoError(t, err)

	// Anniversary and biennial rules cannot resolve; fixed-date, ongoing and
	// bad-fee templates still generate.
	assert.Equal(t, 3, report.Generated)
	require.Len(t, report.Skipped, 2)
	for _, s := range report.Skipped {
		assert.Equal(t, errors.ErrCodeMissingAnchor, s.Code)
	}
	assert.Contains(t, capture.MessagesAt("warn"), "template skipped")
}

func TestGenerateForEntityIdempotent(t *testing.T) {
	ent := testEntity()
	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	publisher := &capturingPublisher{}
	cache := newMemCache()

	entities.On("GetByID", mock.Anything, ent.ID).Return(ent, nil)
	obligations.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil)

	svc := newTestService(t, entities, obligations, WithPublisher(publisher), WithCache(cache))
	report, err := svc.GenerateForEntity(context.Background(), ent.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Generated)
	assert.Equal(t, 5, report.Existing)
	assert.Empty(t, publisher.generated, "no events for already-existing obligations")
}

func TestGenerateForEntityUnknownJurisdiction(t *testing.T) {
	ent := testEntity()
	ent.Jurisdiction = "ZZ"

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, ent.ID).Return(ent, nil)

	svc := newTestService(t, entities, obligations)
	report, err := svc.GenerateForEntity(context.Background(), ent.ID, 0)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))
	obligations.AssertNotCalled(t, "CreateIfAbsent")
}

func TestGenerateForEntityNotFound(t *testing.T) {
	id := common.NewID()
	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, id).Return(nil, errors.NotFound("entity not found"))

	svc := newTestService(t, entities, obligations)
	_, err := svc.GenerateForEntity(context.Background(), id, 0)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGenerateForAllContinuesPastFailures(t *testing.T) {
	good := testEntity()
	bad := testEntity()
	bad.Jurisdiction = "ZZ"

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("ListAll", mock.Anything).Return([]*entity.Entity{good, bad}, nil)
	entities.On("GetByID", mock.Anything, good.ID).Return(good, nil)
	entities.On("GetByID", mock.Anything, bad.ID).Return(bad, nil)
	obligations.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)

	svc := newTestService(t, entities, obligations)
	result, err := svc.GenerateForAll(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Entities)
	assert.Len(t, result.Reports, 1)
	assert.Contains(t, result.Failed, bad.ID)
}

func TestEntityHealthCaches(t *testing.T) {
	ent := testEntity()
	due := fixedNow.AddDate(0, 0, -5)
	obs := []*obligation.Obligation{
		obligation.New(ent.ID, "TZ-ANNUAL", "2025", &due, nil, ""),
	}

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	cache := newMemCache()
	entities.On("GetByID", mock.Anything, ent.ID).Return(ent, nil).Once()
	obligations.On("ListByEntity", mock.Anything, ent.ID).Return(obs, nil).Once()

	svc := newTestService(t, entities, obligations, WithCache(cache))

	first, err := svc.EntityHealth(context.Background(), ent.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, first.Score)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.EntityHealth(context.Background(), ent.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, 1, cache.hits)
	obligations.AssertNumberOfCalls(t, "ListByEntity", 1)
}

func TestEntityHealthUnknownEntity(t *testing.T) {
	id := common.NewID()
	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, id).Return(nil, errors.NotFound("entity not found"))

	svc := newTestService(t, entities, obligations)
	_, err := svc.EntityHealth(context.Background(), id)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestPortfolioHealthWorstOf(t *testing.T) {
	healthy := testEntity()
	troubled := testEntity()

	overdue := fixedNow.AddDate(0, 0, -3)
	farOut := fixedNow.AddDate(0, 0, 200)

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, healthy.ID).Return(healthy, nil)
	entities.On("GetByID", mock.Anything, troubled.ID).Return(troubled, nil)
	obligations.On("ListByEntity", mock.Anything, healthy.ID).Return([]*obligation.Obligation{
		obligation.New(healthy.ID, "TZ-ANNUAL", "2025", &farOut, nil, ""),
	}, nil)
	obligations.On("ListByEntity", mock.Anything, troubled.ID).Return([]*obligation.Obligation{
		obligation.New(troubled.ID, "TZ-ANNUAL", "2025", &overdue, nil, ""),
	}, nil)

	svc := newTestService(t, entities, obligations)
	portfolio, err := svc.PortfolioHealth(context.Background(), []common.ID{healthy.ID, troubled.ID})
	require.NoError(t, err)

	assert.Equal(t, 75, portfolio.Score)
	require.Len(t, portfolio.Issues, 1)
	assert.Equal(t, troubled.ID, portfolio.Issues[0].EntityID)
}

func TestCompleteObligation(t *testing.T) {
	ent := testEntity()
	due := fixedNow.AddDate(0, 0, 10)
	o := obligation.New(ent.ID, "TZ-ANNUAL", "2025", &due, nil, "")
	require.NoError(t, o.Complete(fixedNow))

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	publisher := &capturingPublisher{}
	cache := newMemCache()
	cache.reports[ent.ID] = &health.EntityReport{EntityID: ent.ID, Score: 50}

	obligations.On("CompleteByID", mock.Anything, o.ID, fixedNow).Return(o, nil)

	svc := newTestService(t, entities, obligations, WithPublisher(publisher), WithCache(cache))
	got, err := svc.CompleteObligation(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, obligation.StatusCompleted, got.Status)
	assert.Len(t, publisher.completed, 1)
	_, stillCached := cache.reports[ent.ID]
	assert.False(t, stillCached, "completion invalidates the entity's cached score")
}

func TestCompleteObligationAlreadyCompleted(t *testing.T) {
	id := common.NewID()
	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	obligations.On("CompleteByID", mock.Anything, id, fixedNow).
		Return(nil, errors.New(errors.ErrCodeAlreadyCompleted, "obligation is already completed"))

	svc := newTestService(t, entities, obligations)
	_, err := svc.CompleteObligation(context.Background(), id)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAlreadyCompleted))
}

func TestUpcomingDeadlines(t *testing.T) {
	ent := testEntity()
	soon := fixedNow.AddDate(0, 0, 7)
	later := fixedNow.AddDate(0, 0, 60)

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	obligations.On("ListUpcoming", mock.Anything, mock.Anything, mock.Anything, 50).
		Return([]*obligation.Obligation{
			obligation.New(ent.ID, "TZ-ANNUAL", "2025", &soon, nil, ""),
			obligation.New(ent.ID, "TZ-ANNIV", "2025", &later, nil, ""),
		}, nil)

	svc := newTestService(t, entities, obligations)
	got, err := svc.UpcomingDeadlines(context.Background(), 90, 50)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, obligation.PriorityHigh, got[0].Priority)
	assert.Equal(t, obligation.PriorityMedium, got[1].Priority)
}

func TestObligationsForEntityClassified(t *testing.T) {
	ent := testEntity()
	overdue := fixedNow.AddDate(0, 0, -1)

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, ent.ID).Return(ent, nil)
	obligations.On("ListByEntity", mock.Anything, ent.ID).Return([]*obligation.Obligation{
		obligation.New(ent.ID, "TZ-ANNUAL", "2025", &overdue, nil, ""),
		obligation.New(ent.ID, "TZ-ONGOING", obligation.PeriodKeyOngoing, nil, nil, ""),
	}, nil)

	svc := newTestService(t, entities, obligations)
	got, err := svc.ObligationsForEntity(context.Background(), ent.ID)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, obligation.PriorityCritical, got[0].Priority)
	assert.Equal(t, obligation.PriorityLow, got[1].Priority, "ongoing duties stay low")
}

func TestEstimatedCosts(t *testing.T) {
	ent := testEntity()
	due := fixedNow.AddDate(0, 0, 10)
	franchise := 175.5
	agent := 24.49
	permit := 800.0

	completed := obligation.New(ent.ID, "TZ-ANNUAL", "2024", &due, &permit, "")
	require.NoError(t, completed.Complete(fixedNow))

	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, ent.ID).Return(ent, nil)
	obligations.On("ListByEntity", mock.Anything, ent.ID).Return([]*obligation.Obligation{
		obligation.New(ent.ID, "TZ-ANNUAL", "2025", &due, &franchise, ""),
		obligation.New(ent.ID, "TZ-ONGOING", obligation.PeriodKeyOngoing, nil, &agent, ""),
		obligation.New(ent.ID, "TZ-BADFEE", "2025", &due, nil, "fee definition invalid; no estimate available"),
		completed,
	}, nil)

	svc := newTestService(t, entities, obligations)
	report, err := svc.EstimatedCosts(context.Background(), ent.ID)
	require.NoError(t, err)

	assert.Equal(t, ent.ID, report.EntityID)
	assert.Equal(t, 199.99, report.TotalEstimated, "completed fees are excluded")
	assert.Equal(t, 2, report.Estimated)
	assert.Equal(t, 1, report.Unestimated)
}

func TestEstimatedCostsUnknownEntity(t *testing.T) {
	id := common.NewID()
	entities := &mockEntityRepo{}
	obligations := &mockObligationRepo{}
	entities.On("GetByID", mock.Anything, id).Return(nil, errors.NotFound("entity not found"))

	svc := newTestService(t, entities, obligations)
	_, err := svc.EstimatedCosts(context.Background(), id)
	assert.True(t, errors.IsNotFound(err))
}
