package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// ObligationRepository is the PostgreSQL implementation of
// obligation.Repository.
type ObligationRepository struct {
	db executor
}

// NewObligationRepository wires the repository to a database handle.
func NewObligationRepository(db *sql.DB) *ObligationRepository {
	return &ObligationRepository{db: db}
}

const obligationColumns = `id, entity_id, template_ref, period_key, due_date,
	status, estimated_fee, fee_note, late_fee, grace_period_days,
	completed_at, created_at, updated_at`

func scanObligation(s scanner) (*obligation.Obligation, error) {
	var (
		o           obligation.Obligation
		due         sql.NullTime
		fee         sql.NullFloat64
		feeNote     sql.NullString
		lateFee     sql.NullFloat64
		graceDays   sql.NullInt64
		completedAt sql.NullTime
	)
	err := s.Scan(&o.ID, &o.EntityID, &o.TemplateRef, &o.PeriodKey, &due,
		&o.Status, &fee, &feeNote, &lateFee, &graceDays,
		&completedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.DueDate = timePtr(due)
	o.EstimatedFee = floatPtr(fee)
	o.LateFee = floatPtr(lateFee)
	o.GracePeriodDays = intPtr(graceDays)
	o.CompletedAt = timePtr(completedAt)
	if feeNote.Valid {
		o.FeeNote = feeNote.String
	}
	return &o, nil
}

// CreateIfAbsent inserts the obligation unless the (entity, template, period)
// triple already exists.  The uniqueness is enforced by the
// obligations_entity_template_period_key index; a conflict leaves the
// existing row untouched.
func (r *ObligationRepository) CreateIfAbsent(ctx context.Context, o *obligation.Obligation) (bool, error) {
	const query = `
		INSERT INTO obligations (` + obligationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (entity_id, template_ref, period_key) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		o.ID, o.EntityID, o.TemplateRef, o.PeriodKey, toNullTime(o.DueDate),
		o.Status, toNullFloat(o.EstimatedFee), o.FeeNote,
		toNullFloat(o.LateFee), toNullInt(o.GracePeriodDays),
		toNullTime(o.CompletedAt), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert obligation")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read insert result")
	}
	return affected == 1, nil
}

// GetByID returns the obligation or an OBL_001 not-found error.
func (r *ObligationRepository) GetByID(ctx context.Context, id common.ID) (*obligation.Obligation, error) {
	const query = `SELECT ` + obligationColumns + ` FROM obligations WHERE id = $1`

	o, err := scanObligation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeObligationNotFound, "obligation %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load obligation")
	}
	return o, nil
}

// ListByEntity returns an entity's obligations with dated ones first, soonest
// due leading, and ongoing ones trailing.
func (r *ObligationRepository) ListByEntity(ctx context.Context, entityID common.ID) ([]*obligation.Obligation, error) {
	const query = `
		SELECT ` + obligationColumns + `
		FROM obligations
		WHERE entity_id = $1
		ORDER BY due_date ASC NULLS LAST, template_ref ASC`

	return r.queryMany(ctx, query, entityID)
}

// CompleteByID flips a pending obligation to completed in a single guarded
// update.  The status predicate makes the transition atomic: of any number of
// concurrent completions, exactly one update matches.
func (r *ObligationRepository) CompleteByID(ctx context.Context, id common.ID, at time.Time) (*obligation.Obligation, error) {
	const query = `
		UPDATE obligations
		SET status = $2, completed_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING ` + obligationColumns

	at = at.UTC()
	o, err := scanObligation(r.db.QueryRowContext(ctx, query,
		id, obligation.StatusCompleted, at, obligation.StatusPending))
	if err == nil {
		return o, nil
	}
	if err != sql.ErrNoRows {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to complete obligation")
	}

	// No pending row matched: distinguish missing from already completed.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, errors.Newf(errors.ErrCodeAlreadyCompleted,
		"obligation %s is already completed", existing.ID)
}

// ListUpcoming returns pending obligations due in [from, to], soonest first.
func (r *ObligationRepository) ListUpcoming(ctx context.Context, from, to time.Time, limit int) ([]*obligation.Obligation, error) {
	const query = `
		SELECT ` + obligationColumns + `
		FROM obligations
		WHERE status = $1 AND due_date BETWEEN $2 AND $3
		ORDER BY due_date ASC, template_ref ASC
		LIMIT $4`

	return r.queryMany(ctx, query, obligation.StatusPending, from.UTC(), to.UTC(), limit)
}

func (r *ObligationRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*obligation.Obligation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query obligations")
	}
	defer rows.Close()

	var out []*obligation.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan obligation")
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "obligation rows iteration failed")
	}
	return out, nil
}
