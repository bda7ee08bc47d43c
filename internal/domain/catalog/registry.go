package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/complyhq/compliance-engine/pkg/errors"
)

// Registry is an in-memory, concurrency-safe catalog of requirement
// templates keyed by jurisdiction code.  Jurisdiction codes are
// case-insensitive and stored upper-cased.
type Registry struct {
	mu        sync.RWMutex
	templates map[string][]RequirementTemplate
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string][]RequirementTemplate)}
}

func normalizeJurisdiction(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Register validates and adds a template to its jurisdiction's catalog.
// Registering a template whose Ref already exists in the jurisdiction
// replaces the previous definition.
func (r *Registry) Register(t RequirementTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	key := normalizeJurisdiction(t.Jurisdiction)

	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.templates[key]
	for i, e := range existing {
		if e.Ref == t.Ref {
			existing[i] = t
			return nil
		}
	}
	r.templates[key] = append(existing, t)
	return nil
}

// MustRegister is Register that panics on error.  Intended only for seeding
// compiled-in catalogs, where a bad definition is a programming error.
func (r *Registry) MustRegister(t RequirementTemplate) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// TemplatesFor returns the templates applicable in a jurisdiction.  A
// jurisdiction with no registered templates is a configuration fault: the
// engine cannot tell "nothing required" from "catalog never loaded", so it
// refuses to generate.
func (r *Registry) TemplatesFor(jurisdiction string) ([]RequirementTemplate, error) {
	key := normalizeJurisdiction(jurisdiction)
	if key == "" {
		return nil, errors.Configuration("jurisdiction code is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	ts, ok := r.templates[key]
	if !ok || len(ts) == 0 {
		return nil, errors.Configuration("no requirement templates registered for jurisdiction " + key)
	}
	out := make([]RequirementTemplate, len(ts))
	copy(out, ts)
	return out, nil
}

// Lookup returns the template with the given ref in a jurisdiction.
func (r *Registry) Lookup(jurisdiction, ref string) (RequirementTemplate, error) {
	ts, err := r.TemplatesFor(jurisdiction)
	if err != nil {
		return RequirementTemplate{}, err
	}
	for _, t := range ts {
		if t.Ref == ref {
			return t, nil
		}
	}
	return RequirementTemplate{}, errors.Newf(errors.ErrCodeTemplateNotFound,
		"template %s not found in jurisdiction %s", ref, normalizeJurisdiction(jurisdiction))
}

// Jurisdictions returns the sorted list of jurisdiction codes with at least
// one registered template.
func (r *Registry) Jurisdictions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.templates))
	for code, ts := range r.templates {
		if len(ts) > 0 {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// NewDefaultRegistry returns a Registry seeded with the built-in US state
// catalogs.  Fee figures follow the published state schedules current at
// build time.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	deLateFee := 200.0
	caLateFee := 250.0

	// Delaware
	r.MustRegister(RequirementTemplate{
		Ref:          "DE-FRANCHISE-TAX",
		Name:         "Delaware Annual Franchise Tax",
		Jurisdiction: "DE",
		Category:     CategoryStateFiling,
		Recurrence:   AnnualFixedDate{Month: time.March, Day: 1},
		Fee:          RangeFee{Min: 175, Max: 200000},
		LateFee:      &deLateFee,
		Description:  "Annual franchise tax and report for Delaware corporations.",
	})
	// The agent duty is ongoing rather than deadline driven, so it is an
	// industry-category template with no tag restriction: it applies to every
	// Delaware entity without claiming to be a dated state filing.
	r.MustRegister(RequirementTemplate{
		Ref:          "DE-REGISTERED-AGENT",
		Name:         "Delaware Registered Agent",
		Jurisdiction: "DE",
		Category:     CategoryIndustry,
		Recurrence:   NoRecurrence{},
		Fee:          RangeFee{Min: 50, Max: 300},
		Description:  "A registered agent must be maintained continuously.",
	})

	// California
	r.MustRegister(RequirementTemplate{
		Ref:          "CA-STATEMENT-OF-INFO",
		Name:         "California Statement of Information",
		Jurisdiction: "CA",
		Category:     CategoryStateFiling,
		Recurrence:   AnnualAnniversary{},
		Fee:          FixedFee{Amount: 25},
		LateFee:      &caLateFee,
		Description:  "Due annually by the end of the registration anniversary month.",
	})
	r.MustRegister(RequirementTemplate{
		Ref:          "CA-FRANCHISE-TAX",
		Name:         "California Minimum Franchise Tax",
		Jurisdiction: "CA",
		Category:     CategoryTax,
		Recurrence:   TaxCalendarDate{Month: time.April, Day: 15},
		Fee:          FixedFee{Amount: 800},
		Description:  "Minimum annual franchise tax payable to the FTB.",
	})
	r.MustRegister(RequirementTemplate{
		Ref:          "CA-FOOD-PERMIT",
		Name:         "California Health Permit Renewal",
		Jurisdiction: "CA",
		Category:     CategoryIndustry,
		Recurrence:   AnnualAnniversary{},
		Fee:          UnknownFee{},
		IndustryTags: []string{"food-service", "hospitality"},
		Description:  "County health permit renewal; fee set by the issuing county.",
	})

	// New York
	r.MustRegister(RequirementTemplate{
		Ref:          "NY-BIENNIAL-STATEMENT",
		Name:         "New York Biennial Statement",
		Jurisdiction: "NY",
		Category:     CategoryStateFiling,
		Recurrence:   BiennialAnniversary{},
		Fee:          FixedFee{Amount: 9},
		Description:  "Due every second year in the formation anniversary month.",
	})
	r.MustRegister(RequirementTemplate{
		Ref:          "NY-STATE-TAX-RETURN",
		Name:         "New York CT-3 Franchise Tax Return",
		Jurisdiction: "NY",
		Category:     CategoryTax,
		Recurrence:   TaxCalendarDate{Month: time.April, Day: 15},
		Fee:          UnknownFee{},
		Description:  "Corporate franchise tax return; liability computed per return.",
	})

	return r
}
