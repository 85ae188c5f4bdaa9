package repository

import (
	"context"
	"time"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AvailabilityRepository interface {
	FindClashing(ctx context.Context, spaceID int64, date time.Time, iv domain.Interval) ([]domain.AvailabilityWindow, error)
	Insert(ctx context.Context, w *domain.AvailabilityWindow) error
	Replace(ctx context.Context, w *domain.AvailabilityWindow, removeIDs []int64) error
	FindCovering(ctx context.Context, spaceID int64, date *time.Time, iv domain.Interval) ([]domain.AvailabilityWindow, error)
	SearchCovering(ctx context.Context, spaceIDs []int64, date *time.Time, iv *domain.Interval, priceMin, priceMax *float64) ([]domain.AvailabilityWindow, error)
	ListForSpace(ctx context.Context, spaceID int64, date *time.Time) ([]domain.AvailabilityWindow, error)
	Delete(ctx context.Context, id int64) error
}

type PGAvailabilityRepository struct {
	db *pgxpool.Pool
}

func NewAvailabilityRepository(db *pgxpool.Pool) AvailabilityRepository {
	return &PGAvailabilityRepository{db: db}
}

const windowColumns = `id, space_id, date, start_time, end_time, is_available, special_price, created_at, updated_at`

func scanWindows(rows pgx.Rows) ([]domain.AvailabilityWindow, error) {
	defer rows.Close()
	windows := make([]domain.AvailabilityWindow, 0)
	for rows.Next() {
		var w domain.AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.SpaceID, &w.Date, &w.StartTime, &w.EndTime, &w.IsAvailable, &w.SpecialPrice, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, asStoreError(err)
		}
		windows = append(windows, w)
	}
	return windows, asStoreError(rows.Err())
}

// FindClashing returns stored windows for (space, date) that could clash with
// the incoming interval. Touching endpoints count.
func (r *PGAvailabilityRepository) FindClashing(ctx context.Context, spaceID int64, date time.Time, iv domain.Interval) ([]domain.AvailabilityWindow, error) {
	rows, err := r.db.Query(ctx, `SELECT `+windowColumns+` FROM availability_windows
		WHERE space_id=$1 AND date=$2 AND start_time <= $3 AND end_time >= $4
		ORDER BY start_time`, spaceID, date, iv.End, iv.Start)
	if err != nil {
		return nil, asStoreError(err)
	}
	return scanWindows(rows)
}

func (r *PGAvailabilityRepository) Insert(ctx context.Context, w *domain.AvailabilityWindow) error {
	err := r.db.QueryRow(ctx, `INSERT INTO availability_windows (space_id, date, start_time, end_time, is_available, special_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		w.SpaceID, w.Date, w.StartTime, w.EndTime, w.IsAvailable, w.SpecialPrice).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	return asStoreError(err)
}

// Replace deletes the clashing windows and inserts the folded replacement in
// one transaction, so a merge is all-or-nothing.
func (r *PGAvailabilityRepository) Replace(ctx context.Context, w *domain.AvailabilityWindow, removeIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return asStoreError(err)
	}
	defer tx.Rollback(ctx)

	if len(removeIDs) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM availability_windows WHERE id = ANY($1)`, removeIDs); err != nil {
			return asStoreError(err)
		}
	}

	if err := tx.QueryRow(ctx, `INSERT INTO availability_windows (space_id, date, start_time, end_time, is_available, special_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		w.SpaceID, w.Date, w.StartTime, w.EndTime, w.IsAvailable, w.SpecialPrice).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return asStoreError(err)
	}

	return asStoreError(tx.Commit(ctx))
}

// FindCovering returns available windows that fully contain the requested
// interval. A nil date skips the calendar-day filter.
func (r *PGAvailabilityRepository) FindCovering(ctx context.Context, spaceID int64, date *time.Time, iv domain.Interval) ([]domain.AvailabilityWindow, error) {
	rows, err := r.db.Query(ctx, `SELECT `+windowColumns+` FROM availability_windows
		WHERE space_id=$1 AND is_available
		  AND ($2::date IS NULL OR date = $2)
		  AND start_time <= $3 AND end_time >= $4
		ORDER BY start_time`, spaceID, date, iv.Start, iv.End)
	if err != nil {
		return nil, asStoreError(err)
	}
	return scanWindows(rows)
}

// SearchCovering is the bulk form used by the search pipeline. Nil interval
// means no time restriction, nil bounds mean no price restriction.
func (r *PGAvailabilityRepository) SearchCovering(ctx context.Context, spaceIDs []int64, date *time.Time, iv *domain.Interval, priceMin, priceMax *float64) ([]domain.AvailabilityWindow, error) {
	if len(spaceIDs) == 0 {
		return []domain.AvailabilityWindow{}, nil
	}

	var from, to *time.Time
	if iv != nil {
		from, to = &iv.Start, &iv.End
	}

	rows, err := r.db.Query(ctx, `SELECT `+windowColumns+` FROM availability_windows
		WHERE space_id = ANY($1) AND is_available
		  AND ($2::date IS NULL OR date = $2)
		  AND ($3::timestamptz IS NULL OR (start_time <= $3 AND end_time >= $4))
		  AND ($5::numeric IS NULL OR special_price >= $5)
		  AND ($6::numeric IS NULL OR special_price <= $6)
		ORDER BY space_id, start_time`, spaceIDs, date, from, to, priceMin, priceMax)
	if err != nil {
		return nil, asStoreError(err)
	}
	return scanWindows(rows)
}

func (r *PGAvailabilityRepository) ListForSpace(ctx context.Context, spaceID int64, date *time.Time) ([]domain.AvailabilityWindow, error) {
	rows, err := r.db.Query(ctx, `SELECT `+windowColumns+` FROM availability_windows
		WHERE space_id=$1 AND ($2::date IS NULL OR date = $2)
		ORDER BY date, start_time`, spaceID, date)
	if err != nil {
		return nil, asStoreError(err)
	}
	return scanWindows(rows)
}

func (r *PGAvailabilityRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM availability_windows WHERE id=$1`, id)
	if err != nil {
		return asStoreError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrWindowNotFound
	}
	return nil
}

var _ AvailabilityRepository = (*PGAvailabilityRepository)(nil)
