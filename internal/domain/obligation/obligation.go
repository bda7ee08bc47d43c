// Package obligation defines the compliance obligation aggregate: one
// concrete instance of a requirement template owed by one entity for one
// period, together with its status lifecycle and urgency classification.
package obligation

import (
	"strconv"
	"time"

	"github.com/complyhq/compliance-engine/internal/domain/catalog"
	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// Status is the obligation lifecycle state.
type Status string

const (
	// StatusPending means the obligation has been generated but not yet
	// fulfilled.
	StatusPending Status = "PENDING"
	// StatusCompleted means the obligation was marked fulfilled.  The
	// transition is one-way.
	StatusCompleted Status = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// PeriodKeyOngoing is the period key used for obligations without a
// recurrence, which exist once per entity rather than once per period.
const PeriodKeyOngoing = "ongoing"

// Obligation is one entity's duty to satisfy one requirement template in one
// period.  The triple (EntityID, TemplateRef, PeriodKey) is unique: the
// generator may run any number of times without producing duplicates.
type Obligation struct {
	ID          common.ID `json:"id"`
	EntityID    common.ID `json:"entity_id"`
	TemplateRef string    `json:"template_ref"`
	// PeriodKey identifies the recurrence period: a calendar year ("2025")
	// for recurring rules, PeriodKeyOngoing for non-recurring ones.
	PeriodKey string `json:"period_key"`
	// DueDate is nil for ongoing obligations.
	DueDate *time.Time `json:"due_date,omitempty"`
	Status  Status     `json:"status"`
	// EstimatedFee is nil when the fee is unknown or its definition was
	// contradictory.  FeeNote explains a nil estimate where one exists.
	EstimatedFee *float64 `json:"estimated_fee,omitempty"`
	FeeNote      string   `json:"fee_note,omitempty"`
	// LateFee and GracePeriodDays carry the template's published penalty
	// terms, when any, for downstream reporting.
	LateFee         *float64   `json:"late_fee,omitempty"`
	GracePeriodDays *int       `json:"grace_period_days,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// New constructs a pending obligation for an entity, template and period.
func New(entityID common.ID, templateRef, periodKey string, dueDate *time.Time, fee *float64, feeNote string) *Obligation {
	now := time.Now().UTC()
	return &Obligation{
		ID:           common.NewID(),
		EntityID:     entityID,
		TemplateRef:  templateRef,
		PeriodKey:    periodKey,
		DueDate:      dueDate,
		Status:       StatusPending,
		EstimatedFee: fee,
		FeeNote:      feeNote,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Complete transitions the obligation from pending to completed at the given
// time.  Completing an already-completed obligation is rejected so the
// original completion timestamp is never overwritten.
func (o *Obligation) Complete(at time.Time) error {
	if o.Status == StatusCompleted {
		return errors.Newf(errors.ErrCodeAlreadyCompleted,
			"obligation %s is already completed", o.ID)
	}
	at = at.UTC()
	o.Status = StatusCompleted
	o.CompletedAt = &at
	o.UpdatedAt = at
	return nil
}

// IsOverdue reports whether the obligation is pending with a due date
// strictly before now, by date-only comparison.
func (o *Obligation) IsOverdue(now time.Time) bool {
	if o.Status != StatusPending || o.DueDate == nil {
		return false
	}
	days, ok := DaysUntil(o.DueDate, now)
	return ok && days < 0
}

// PeriodKeyFor computes the period key a template's recurrence occupies as of
// asOfYear.  Annual rules key on the as-of year itself; biennial rules key on
// the nearest qualifying year at or after asOfYear; non-recurring rules use
// the ongoing sentinel.
func PeriodKeyFor(rule catalog.RecurrenceRule, formationYear, asOfYear int) string {
	switch r := rule.(type) {
	case catalog.NoRecurrence:
		return PeriodKeyOngoing
	case catalog.BiennialAnniversary:
		return strconv.Itoa(r.QualifyingYear(formationYear, asOfYear))
	default:
		return strconv.Itoa(asOfYear)
	}
}
