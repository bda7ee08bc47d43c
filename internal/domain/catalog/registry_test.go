package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhq/compliance-engine/pkg/errors"
)

func testTemplate(ref, jurisdiction string) RequirementTemplate {
	return RequirementTemplate{
		Ref:          ref,
		Name:         "Test Filing " + ref,
		Jurisdiction: jurisdiction,
		Category:     CategoryStateFiling,
		Recurrence:   AnnualFixedDate{Month: time.March, Day: 1},
		Fee:          FixedFee{Amount: 100},
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testTemplate("WA-ANNUAL", "WA")))

	got, err := r.Lookup("WA", "WA-ANNUAL")
	require.NoError(t, err)
	assert.Equal(t, "WA-ANNUAL", got.Ref)

	_, err = r.Lookup("WA", "WA-MISSING")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTemplateNotFound))
}

func TestRegistryRegisterReplacesSameRef(t *testing.T) {
	r := NewRegistry()
	first := testTemplate("WA-ANNUAL", "WA")
	require.NoError(t, r.Register(first))

	updated := first
	updated.Fee = FixedFee{Amount: 250}
	require.NoError(t, r.Register(updated))

	ts, err := r.TemplatesFor("WA")
	require.NoError(t, err)
	require.Len(t, ts, 1)
	fee, err := ts[0].Fee.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 250.0, *fee)
}

func TestRegistryRegisterInvalid(t *testing.T) {
	r := NewRegistry()
	bad := testTemplate("", "WA")
	err := r.Register(bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTemplateInvalid))
}

func TestRegistryRejectsDeadlineFreeStateFiling(t *testing.T) {
	r := NewRegistry()
	bad := testTemplate("WA-AGENT", "WA")
	bad.Recurrence = NoRecurrence{}

	err := r.Register(bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTemplateInvalid))

	bad.Category = CategoryTax
	err = r.Register(bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTemplateInvalid))
}

func TestTemplatesForUnknownJurisdiction(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testTemplate("WA-ANNUAL", "WA")))

	_, err := r.TemplatesFor("ZZ")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))

	_, err = r.TemplatesFor("")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))
}

func TestTemplatesForCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testTemplate("WA-ANNUAL", "wa")))

	ts, err := r.TemplatesFor("Wa")
	require.NoError(t, err)
	assert.Len(t, ts, 1)
}

func TestTemplatesForReturnsCopy(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testTemplate("WA-ANNUAL", "WA")))

	ts, err := r.TemplatesFor("WA")
	require.NoError(t, err)
	ts[0].Ref = "MUTATED"

	again, err := r.TemplatesFor("WA")
	require.NoError(t, err)
	assert.Equal(t, "WA-ANNUAL", again[0].Ref)
}

func TestDefaultRegistrySeedData(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, []string{"CA", "DE", "NY"}, r.Jurisdictions())

	de, err := r.TemplatesFor("DE")
	require.NoError(t, err)
	assert.Len(t, de, 2)

	franchise, err := r.Lookup("DE", "DE-FRANCHISE-TAX")
	require.NoError(t, err)
	assert.Equal(t, CategoryStateFiling, franchise.Category)
	assert.Equal(t, "ANNUAL_FIXED_DATE", franchise.Recurrence.Kind())
	require.NotNil(t, franchise.LateFee)
	assert.Equal(t, 200.0, *franchise.LateFee)

	// The deadline-free agent duty may not be a state filing; it rides in the
	// industry category with no tag restriction.
	agent, err := r.Lookup("DE", "DE-REGISTERED-AGENT")
	require.NoError(t, err)
	assert.Equal(t, CategoryIndustry, agent.Category)
	assert.Empty(t, agent.IndustryTags)
	assert.Equal(t, "NONE", agent.Recurrence.Kind())

	biennial, err := r.Lookup("NY", "NY-BIENNIAL-STATEMENT")
	require.NoError(t, err)
	assert.Equal(t, "BIENNIAL_ANNIVERSARY", biennial.Recurrence.Kind())

	permit, err := r.Lookup("CA", "CA-FOOD-PERMIT")
	require.NoError(t, err)
	assert.Equal(t, CategoryIndustry, permit.Category)
	assert.NotEmpty(t, permit.IndustryTags)

	// Every seeded template is structurally valid.
	for _, code := range r.Jurisdictions() {
		ts, err := r.TemplatesFor(code)
		require.NoError(t, err)
		for _, tmpl := range ts {
			assert.NoError(t, tmpl.Validate(), "template %s", tmpl.Ref)
		}
	}
}
