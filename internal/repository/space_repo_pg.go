package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SpaceFilter is the attribute filter applied before the availability stages
// of a search. Empty strings mean "any".
type SpaceFilter struct {
	PostalCode string
	Category   string
	Active     bool
}

type SpaceRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Space, error)
	FilterIDs(ctx context.Context, filter SpaceFilter) ([]int64, error)
	PromotedUntil(ctx context.Context, ids []int64) (map[int64]time.Time, error)
}

type PGSpaceRepository struct {
	db *pgxpool.Pool
}

func NewSpaceRepository(db *pgxpool.Pool) SpaceRepository {
	return &PGSpaceRepository{db: db}
}

func (r *PGSpaceRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM spaces WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, asStoreError(err)
	}
	return exists, nil
}

func (r *PGSpaceRepository) GetByID(ctx context.Context, id int64) (*domain.Space, error) {
	row := r.db.QueryRow(ctx, `SELECT id, postal_code, category, active, promoted_until, created_at, updated_at FROM spaces WHERE id=$1`, id)
	var s domain.Space
	if err := row.Scan(&s.ID, &s.PostalCode, &s.Category, &s.Active, &s.PromotedUntil, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSpaceNotFound
		}
		return nil, asStoreError(err)
	}
	return &s, nil
}

func (r *PGSpaceRepository) FilterIDs(ctx context.Context, filter SpaceFilter) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM spaces
		WHERE active = $1
		  AND ($2 = '' OR postal_code = $2)
		  AND ($3 = '' OR category = $3)
		ORDER BY id`, filter.Active, filter.PostalCode, filter.Category)
	if err != nil {
		return nil, asStoreError(err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, asStoreError(err)
		}
		ids = append(ids, id)
	}
	return ids, asStoreError(rows.Err())
}

func (r *PGSpaceRepository) PromotedUntil(ctx context.Context, ids []int64) (map[int64]time.Time, error) {
	promoted := make(map[int64]time.Time, len(ids))
	if len(ids) == 0 {
		return promoted, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, promoted_until FROM spaces WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, asStoreError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var until time.Time
		if err := rows.Scan(&id, &until); err != nil {
			return nil, asStoreError(err)
		}
		promoted[id] = until
	}
	return promoted, asStoreError(rows.Err())
}

var _ SpaceRepository = (*PGSpaceRepository)(nil)
