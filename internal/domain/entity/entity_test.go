package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

func validEntity() *Entity {
	formed := time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC)
	return &Entity{
		ID:            common.NewID(),
		Name:          "Acme Holdings LLC",
		Jurisdiction:  "DE",
		FormationDate: &formed,
		IndustryTags:  []string{"fintech"},
	}
}

func TestEntityValidate(t *testing.T) {
	assert.NoError(t, validEntity().Validate())

	tests := []struct {
		name   string
		mutate func(*Entity)
	}{
		{"zero id", func(e *Entity) { e.ID = "" }},
		{"blank name", func(e *Entity) { e.Name = "  " }},
		{"blank jurisdiction", func(e *Entity) { e.Jurisdiction = "" }},
		{"future formation date", func(e *Entity) {
			future := time.Now().UTC().AddDate(1, 0, 0)
			e.FormationDate = &future
		}},
		{"blank industry tag", func(e *Entity) { e.IndustryTags = []string{"fintech", " "} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntity()
			tt.mutate(e)
			err := e.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeEntityInvalid))
		})
	}
}

func TestEntityValidateNilFormationDate(t *testing.T) {
	e := validEntity()
	e.FormationDate = nil
	assert.NoError(t, e.Validate(), "unknown formation date is allowed")
}

func TestFormationYear(t *testing.T) {
	e := validEntity()
	year, ok := e.FormationYear()
	assert.True(t, ok)
	assert.Equal(t, 2020, year)

	e.FormationDate = nil
	_, ok = e.FormationYear()
	assert.False(t, ok)
}
