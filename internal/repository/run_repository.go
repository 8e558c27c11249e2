package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/andariego/trip-reservation/internal/model"
	"github.com/andariego/trip-reservation/internal/trip"
)

// RunRepo manages persistence for published runs. The segment array and
// the point-list snapshot are stored as JSON columns; the version
// column is an optimistic-concurrency token bumped on every write of
// the segment array. RunRepo satisfies trip.RunStore.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo constructs a RunRepo given a DB handle.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories.
func (r *RunRepo) DB() *sql.DB {
	return r.db
}

// CreateTx inserts a freshly built run with version 1, within the scope
// of an existing transaction. Publishing a date range inserts every run
// through one transaction so the range exists in full or not at all. On
// success the generated ID is populated on the given run.
func (r *RunRepo) CreateTx(ctx context.Context, tx *sql.Tx, run *model.Run) error {
	points, err := json.Marshal(run.Points)
	if err != nil {
		return err
	}
	segments, err := json.Marshal(run.Segments)
	if err != nil {
		return err
	}
	const q = `INSERT INTO runs (route_id, company_id, service_date, capacity, points, segments, version)
               VALUES (?, ?, ?, ?, ?, ?, 1)`
	res, err := tx.ExecContext(ctx, q, run.RouteID, run.CompanyID, run.ServiceDate, run.Capacity, points, segments)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = uint64(id)
	run.Version = 1
	return nil
}

// GetRun loads one run including its segment array, failing with
// trip.ErrRunNotFound when the id does not resolve.
func (r *RunRepo) GetRun(ctx context.Context, id uint64) (*model.Run, error) {
	const q = `SELECT id, route_id, company_id, service_date, capacity, points, segments, version, created_at, updated_at
               FROM runs WHERE id = ?`
	var run model.Run
	var points, segments []byte
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&run.ID, &run.RouteID, &run.CompanyID, &run.ServiceDate, &run.Capacity,
		&points, &segments, &run.Version, &run.CreatedAt, &run.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, trip.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(points, &run.Points); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(segments, &run.Segments); err != nil {
		return nil, err
	}
	return &run, nil
}

// UpdateSegments writes run.Segments back under the optimistic version
// check: the UPDATE matches the version the run was loaded with, and
// zero affected rows means another writer got there first
// (trip.ErrVersionConflict). When then is non-nil it executes inside
// the same transaction before commit, so the caller's reservation
// outcome becomes visible together with the seat delta or not at all.
// On success run.Version is advanced to the stored value.
func (r *RunRepo) UpdateSegments(ctx context.Context, run *model.Run, then func(tx *sql.Tx) error) error {
	segments, err := json.Marshal(run.Segments)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `UPDATE runs SET segments = ?, version = version + 1 WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, segments, run.ID, run.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return trip.ErrVersionConflict
	}
	if then != nil {
		if err := then(tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	run.Version++
	return nil
}

// ReplaceSegments overwrites the capacity, point snapshot and segment
// array of a run during republish, under the same version check as
// UpdateSegments.
func (r *RunRepo) ReplaceSegments(ctx context.Context, run *model.Run) error {
	points, err := json.Marshal(run.Points)
	if err != nil {
		return err
	}
	segments, err := json.Marshal(run.Segments)
	if err != nil {
		return err
	}
	const q = `UPDATE runs SET capacity = ?, points = ?, segments = ?, version = version + 1
               WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q, run.Capacity, points, segments, run.ID, run.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return trip.ErrVersionConflict
	}
	run.Version++
	return nil
}

// ListByRoute returns every run published from a route, newest service
// date first.
func (r *RunRepo) ListByRoute(ctx context.Context, routeID uint64) ([]model.Run, error) {
	const q = `SELECT id, route_id, company_id, service_date, capacity, points, segments, version, created_at, updated_at
               FROM runs WHERE route_id = ? ORDER BY service_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var points, segments []byte
		if err := rows.Scan(&run.ID, &run.RouteID, &run.CompanyID, &run.ServiceDate, &run.Capacity,
			&points, &segments, &run.Version, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(points, &run.Points); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(segments, &run.Segments); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a run. A run is only deletable while no confirmed
// reservation references any of its segments; otherwise ErrConflict is
// returned and nothing changes.
func (r *RunRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const cnt = `SELECT COUNT(*) FROM reservations WHERE run_id = ? AND status = 'CONFIRMED'`
	var active int
	if err := tx.QueryRowContext(ctx, cnt, id).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}
	const del = `DELETE FROM runs WHERE id = ?`
	res, err := tx.ExecContext(ctx, del, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return trip.ErrRunNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
