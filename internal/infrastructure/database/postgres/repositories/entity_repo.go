package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/complyhq/compliance-engine/internal/domain/entity"
	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// EntityRepository is the PostgreSQL implementation of entity.Repository.
type EntityRepository struct {
	db executor
}

// NewEntityRepository wires the repository to a database handle.
func NewEntityRepository(db *sql.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

const entityColumns = `id, name, jurisdiction, formation_date, industry_tags,
	created_at, updated_at`

func scanEntity(s scanner) (*entity.Entity, error) {
	var (
		e         entity.Entity
		formation sql.NullTime
		tags      pq.StringArray
		createdAt time.Time
		updatedAt time.Time
	)
	err := s.Scan(&e.ID, &e.Name, &e.Jurisdiction, &formation, &tags, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.FormationDate = timePtr(formation)
	e.IndustryTags = []string(tags)
	e.CreatedAt = common.Timestamp(createdAt.UTC())
	e.UpdatedAt = common.Timestamp(updatedAt.UTC())
	return &e, nil
}

// Create inserts a new entity.  A duplicate ID maps to a conflict error.
func (r *EntityRepository) Create(ctx context.Context, e *entity.Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}
	const query = `
		INSERT INTO entities (` + entityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now().UTC()
	e.CreatedAt = common.Timestamp(now)
	e.UpdatedAt = common.Timestamp(now)

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Jurisdiction, toNullTime(e.FormationDate),
		pq.Array(e.IndustryTags), now, now)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return errors.Conflict("entity " + e.ID.String() + " already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert entity")
	}
	return nil
}

// GetByID returns the entity or a not-found error.
func (r *EntityRepository) GetByID(ctx context.Context, id common.ID) (*entity.Entity, error) {
	const query = `SELECT ` + entityColumns + ` FROM entities WHERE id = $1`

	e, err := scanEntity(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("entity " + id.String() + " not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load entity")
	}
	return e, nil
}

// List returns a page of entities, newest first.
func (r *EntityRepository) List(ctx context.Context, p common.Pagination) ([]*entity.Entity, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	const query = `
		SELECT ` + entityColumns + `
		FROM entities
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	return r.queryMany(ctx, query, p.PageSize, p.Offset())
}

// ListAll returns every entity, oldest first.  Used by the worker sweep.
func (r *EntityRepository) ListAll(ctx context.Context) ([]*entity.Entity, error) {
	const query = `SELECT ` + entityColumns + ` FROM entities ORDER BY created_at ASC`
	return r.queryMany(ctx, query)
}

func (r *EntityRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Entity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query entities")
	}
	defer rows.Close()

	var out []*entity.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan entity")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "entity rows iteration failed")
	}
	return out, nil
}
