// Package catalog defines the requirement template model: what filings a
// jurisdiction imposes, how their deadlines recur and what they cost.  The
// package is pure domain logic with no infrastructure dependencies.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/complyhq/compliance-engine/pkg/errors"
)

// Category classifies a requirement template by its regulatory origin.
type Category string

const (
	// CategoryStateFiling covers filings owed to the formation or
	// registration state (annual reports, franchise statements).
	CategoryStateFiling Category = "STATE_FILING"
	// CategoryTax covers tax calendar obligations.
	CategoryTax Category = "TAX"
	// CategoryIndustry covers sector-specific licenses and renewals, matched
	// against an entity's industry tags.
	CategoryIndustry Category = "INDUSTRY"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryStateFiling, CategoryTax, CategoryIndustry:
		return true
	}
	return false
}

// Anchor carries the entity-specific dates a recurrence rule may need to
// resolve a concrete deadline.
type Anchor struct {
	// FormationDate is the entity's formation or registration date.  Nil when
	// unknown; anniversary-based rules cannot resolve without it.
	FormationDate *time.Time
	// TargetYear is the calendar year the deadline is being resolved for.
	TargetYear int
}

// RecurrenceRule describes when a requirement falls due.  The set of
// implementations is closed: AnnualFixedDate, AnnualAnniversary,
// BiennialAnniversary, TaxCalendarDate and NoRecurrence.
type RecurrenceRule interface {
	// Resolve computes the concrete due date for the anchor's target year.
	// Rules that carry no deadline return (nil, nil).  A rule that needs a
	// formation date returns a MISSING_ANCHOR error when the anchor lacks
	// one; a rule with invalid calendar parameters returns a RULE_EVALUATION
	// error.
	Resolve(anchor Anchor) (*time.Time, error)

	// Kind returns a stable identifier for the rule shape, used in logs and
	// serialized template definitions.
	Kind() string

	// sealed prevents implementations outside this package.
	sealed()
}

// dateIn builds a UTC date from year/month/day, validating the calendar
// combination.  time.Date normalizes overflow (Feb 30 → Mar 2), which would
// silently shift deadlines, so the round-trip is checked explicitly.
func dateIn(year int, month time.Month, day int) (time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, errors.RuleEvaluation(fmt.Sprintf("month %d is out of range", month))
	}
	if day < 1 || day > 31 {
		return time.Time{}, errors.RuleEvaluation(fmt.Sprintf("day %d is out of range", day))
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, errors.RuleEvaluation(
			fmt.Sprintf("%d-%02d-%02d is not a valid calendar date", year, month, day))
	}
	return d, nil
}

// anniversaryIn returns the anniversary of formation in the given year.
// A Feb 29 formation date lands on Feb 28 in non-leap years rather than
// rolling into March.
func anniversaryIn(formation time.Time, year int) time.Time {
	month, day := formation.Month(), formation.Day()
	if month == time.February && day == 29 {
		d := time.Date(year, time.February, 29, 0, 0, 0, 0, time.UTC)
		if d.Month() != time.February {
			return time.Date(year, time.February, 28, 0, 0, 0, 0, time.UTC)
		}
		return d
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AnnualFixedDate recurs every year on the same calendar date, e.g. a state
// annual report due March 1.
type AnnualFixedDate struct {
	Month time.Month
	Day   int
}

func (r AnnualFixedDate) Resolve(anchor Anchor) (*time.Time, error) {
	d, err := dateIn(anchor.TargetYear, r.Month, r.Day)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r AnnualFixedDate) Kind() string { return "ANNUAL_FIXED_DATE" }
func (AnnualFixedDate) sealed()        {}

// AnnualAnniversary recurs every year on the anniversary of the entity's
// formation date.
type AnnualAnniversary struct{}

func (AnnualAnniversary) Resolve(anchor Anchor) (*time.Time, error) {
	if anchor.FormationDate == nil {
		return nil, errors.MissingAnchor("annual anniversary rule requires a formation date")
	}
	d := anniversaryIn(*anchor.FormationDate, anchor.TargetYear)
	return &d, nil
}

func (AnnualAnniversary) Kind() string { return "ANNUAL_ANNIVERSARY" }
func (AnnualAnniversary) sealed()      {}

// BiennialAnniversary recurs every second year on the formation anniversary,
// in years sharing the parity of the formation year.
type BiennialAnniversary struct{}

func (BiennialAnniversary) Resolve(anchor Anchor) (*time.Time, error) {
	if anchor.FormationDate == nil {
		return nil, errors.MissingAnchor("biennial anniversary rule requires a formation date")
	}
	d := anniversaryIn(*anchor.FormationDate, anchor.TargetYear)
	return &d, nil
}

// QualifyingYear returns the nearest year >= asOfYear whose parity matches the
// formation year.  Biennial deadlines only fall due in qualifying years.
func (BiennialAnniversary) QualifyingYear(formationYear, asOfYear int) int {
	if (asOfYear-formationYear)%2 == 0 {
		return asOfYear
	}
	return asOfYear + 1
}

func (BiennialAnniversary) Kind() string { return "BIENNIAL_ANNIVERSARY" }
func (BiennialAnniversary) sealed()      {}

// TaxCalendarDate recurs every year on a fixed tax calendar date, e.g. the
// April 15 federal filing deadline.  It resolves identically to
// AnnualFixedDate but is kept distinct so templates preserve their regulatory
// meaning.
type TaxCalendarDate struct {
	Month time.Month
	Day   int
}

func (r TaxCalendarDate) Resolve(anchor Anchor) (*time.Time, error) {
	d, err := dateIn(anchor.TargetYear, r.Month, r.Day)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r TaxCalendarDate) Kind() string { return "TAX_CALENDAR_DATE" }
func (TaxCalendarDate) sealed()        {}

// NoRecurrence marks an obligation that is ongoing rather than deadline
// driven, e.g. maintaining a registered agent.  It resolves to no due date.
type NoRecurrence struct{}

func (NoRecurrence) Resolve(Anchor) (*time.Time, error) { return nil, nil }
func (NoRecurrence) Kind() string                       { return "NONE" }
func (NoRecurrence) sealed()                            {}

// RequirementTemplate is one compliance requirement as defined by a
// jurisdiction's catalog.
type RequirementTemplate struct {
	// Ref is the stable template identifier, e.g. "DE-ANNUAL-FRANCHISE".
	// Generated obligations carry it as their TemplateRef.
	Ref          string
	Name         string
	Jurisdiction string
	Category     Category
	Recurrence   RecurrenceRule
	Fee          Fee
	// IndustryTags restricts CategoryIndustry templates to entities sharing
	// at least one tag.  An empty list applies to every entity in the
	// jurisdiction.
	IndustryTags []string
	// LateFee is the published penalty for filing after the deadline.  Nil
	// when the jurisdiction publishes none.
	LateFee *float64
	// GracePeriodDays is the number of days past the due date before the
	// late fee applies.  Nil means no published grace period.
	GracePeriodDays *int
	Description     string
}

// Validate checks structural invariants of the template definition.
func (t RequirementTemplate) Validate() error {
	if strings.TrimSpace(t.Ref) == "" {
		return errors.New(errors.ErrCodeTemplateInvalid, "template ref is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.Newf(errors.ErrCodeTemplateInvalid, "template %s: name is required", t.Ref)
	}
	if strings.TrimSpace(t.Jurisdiction) == "" {
		return errors.Newf(errors.ErrCodeTemplateInvalid, "template %s: jurisdiction is required", t.Ref)
	}
	if !t.Category.Valid() {
		return errors.Newf(errors.ErrCodeTemplateInvalid, "template %s: unknown category %q", t.Ref, t.Category)
	}
	if t.Recurrence == nil {
		return errors.Newf(errors.ErrCodeTemplateInvalid, "template %s: recurrence rule is required", t.Ref)
	}
	// State filings and tax obligations are deadline driven: a template in
	// those categories without a real recurrence can never fall due.
	if _, none := t.Recurrence.(NoRecurrence); none &&
		(t.Category == CategoryStateFiling || t.Category == CategoryTax) {
		return errors.Newf(errors.ErrCodeTemplateInvalid,
			"template %s: %s templates require a recurrence other than NONE", t.Ref, t.Category)
	}
	if t.Fee == nil {
		return errors.Newf(errors.ErrCodeTemplateInvalid, "template %s: fee is required", t.Ref)
	}
	if len(t.IndustryTags) > 0 && t.Category != CategoryIndustry {
		return errors.Newf(errors.ErrCodeTemplateInvalid,
			"template %s: industry tags are only valid on INDUSTRY templates", t.Ref)
	}
	if t.LateFee != nil && *t.LateFee < 0 {
		return errors.Newf(errors.ErrCodeTemplateInvalid,
			"template %s: late fee must not be negative", t.Ref)
	}
	if t.GracePeriodDays != nil && *t.GracePeriodDays < 0 {
		return errors.Newf(errors.ErrCodeTemplateInvalid,
			"template %s: grace period must not be negative", t.Ref)
	}
	return nil
}

// AppliesTo reports whether the template applies to an entity with the given
// industry tags.  Non-industry templates apply unconditionally within their
// jurisdiction; industry templates with tags require at least one match.
func (t RequirementTemplate) AppliesTo(entityTags []string) bool {
	if t.Category != CategoryIndustry || len(t.IndustryTags) == 0 {
		return true
	}
	for _, want := range t.IndustryTags {
		for _, have := range entityTags {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}
