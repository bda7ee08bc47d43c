// Package entity defines the legal entity whose compliance posture the
// engine tracks.
package entity

import (
	"strings"
	"time"

	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// Entity is a registered business whose obligations are generated from its
// jurisdiction's requirement catalog.
type Entity struct {
	ID           common.ID `json:"id"`
	Name         string    `json:"name"`
	Jurisdiction string    `json:"jurisdiction"`
	// FormationDate anchors anniversary-based deadlines.  Nil when the
	// formation record has not been captured yet; anniversary rules are then
	// skipped for this entity.
	FormationDate *time.Time `json:"formation_date,omitempty"`
	// IndustryTags drive applicability of INDUSTRY category templates.
	IndustryTags []string         `json:"industry_tags,omitempty"`
	CreatedAt    common.Timestamp `json:"created_at"`
	UpdatedAt    common.Timestamp `json:"updated_at"`
}

// Validate checks the structural invariants of an entity record.
func (e *Entity) Validate() error {
	if err := e.ID.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeEntityInvalid, "invalid entity id")
	}
	if strings.TrimSpace(e.Name) == "" {
		return errors.New(errors.ErrCodeEntityInvalid, "entity name is required")
	}
	if strings.TrimSpace(e.Jurisdiction) == "" {
		return errors.New(errors.ErrCodeEntityInvalid, "entity jurisdiction is required")
	}
	if e.FormationDate != nil && e.FormationDate.After(time.Now().UTC()) {
		return errors.New(errors.ErrCodeEntityInvalid, "formation date cannot be in the future")
	}
	for _, tag := range e.IndustryTags {
		if strings.TrimSpace(tag) == "" {
			return errors.New(errors.ErrCodeEntityInvalid, "industry tags cannot be blank")
		}
	}
	return nil
}

// FormationYear returns the formation year and true, or zero and false when
// the formation date is unknown.
func (e *Entity) FormationYear() (int, bool) {
	if e.FormationDate == nil {
		return 0, false
	}
	return e.FormationDate.Year(), true
}
