package obligation

import (
	"context"
	"time"

	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// Repository is the persistence contract for obligations.  Implementations
// live under internal/infrastructure.
type Repository interface {
	// CreateIfAbsent inserts the obligation unless one already exists for the
	// same (entity, template, period) triple.  It reports whether a row was
	// actually created; an existing row is left untouched and is not an
	// error.  This is the primitive that makes generation idempotent.
	CreateIfAbsent(ctx context.Context, o *Obligation) (created bool, err error)

	// GetByID returns the obligation or a not-found error.
	GetByID(ctx context.Context, id common.ID) (*Obligation, error)

	// ListByEntity returns all obligations of one entity, due date ascending
	// with nil due dates last.
	ListByEntity(ctx context.Context, entityID common.ID) ([]*Obligation, error)

	// CompleteByID atomically transitions a pending obligation to completed.
	// It returns an already-completed error when the obligation exists but is
	// not pending, and a not-found error when it does not exist.  Concurrent
	// callers race on the pending state: exactly one wins.
	CompleteByID(ctx context.Context, id common.ID, at time.Time) (*Obligation, error)

	// ListUpcoming returns pending obligations with a due date inside
	// [from, to], due date ascending, capped at limit.
	ListUpcoming(ctx context.Context, from, to time.Time, limit int) ([]*Obligation, error)
}
