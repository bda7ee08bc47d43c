package entity

import (
	"context"

	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// Repository is the persistence contract for entities.
type Repository interface {
	Create(ctx context.Context, e *Entity) error
	GetByID(ctx context.Context, id common.ID) (*Entity, error)
	// List returns entities ordered by creation time, newest first.
	List(ctx context.Context, p common.Pagination) ([]*Entity, error)
	// ListAll returns every entity; used by the worker's regeneration sweep.
	ListAll(ctx context.Context) ([]*Entity, error)
}
