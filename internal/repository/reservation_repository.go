package repository

import (
	"context"
	"database/sql"

	"github.com/andariego/trip-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations. A
// reservation references one segment of one run by synthetic id and
// origin/destination key; its seat delta is applied by the capacity
// coordinator in the same transaction that makes the row visible, so
// every method that mutates state comes in a Tx variant.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateTx inserts a new reservation within the scope of an existing
// transaction. It populates the generated ID on the provided record.
// The caller must commit or rollback the transaction. Status should be
// CONFIRMED or CANCELLED.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (run_id, segment_id, segment_key, passenger_count, passenger_name, passenger_phone, status)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.RunID, res.SegmentID, res.SegmentKey,
		res.PassengerCount, res.PassengerName, res.PassengerPhone, res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID loads one reservation, failing with ErrReservationNotFound
// when the id does not resolve.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, run_id, segment_id, segment_key, passenger_count, passenger_name, passenger_phone, status, created_at, updated_at
               FROM reservations WHERE id = ?`
	var res model.Reservation
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.RunID, &res.SegmentID, &res.SegmentKey, &res.PassengerCount,
		&res.PassengerName, &phone, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		p := phone.String
		res.PassengerPhone = &p
	}
	return &res, nil
}

// CancelTx marks a reservation CANCELLED within the provided
// transaction. Cancelling an already cancelled reservation is reported
// as ErrConflict so the seat release cannot be applied twice.
func (r *ReservationRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE reservations SET status = 'CANCELLED' WHERE id = ? AND status = 'CONFIRMED'`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// RetargetTx points a reservation at a different run and segment during
// a transfer, within the provided transaction.
func (r *ReservationRepo) RetargetTx(ctx context.Context, tx *sql.Tx, id, runID uint64, segmentID, segmentKey string) error {
	const q = `UPDATE reservations SET run_id = ?, segment_id = ?, segment_key = ? WHERE id = ? AND status = 'CONFIRMED'`
	res, err := tx.ExecContext(ctx, q, runID, segmentID, segmentKey, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByRun returns every reservation on a run, newest first.
func (r *ReservationRepo) ListByRun(ctx context.Context, runID uint64) ([]model.Reservation, error) {
	const q = `SELECT id, run_id, segment_id, segment_key, passenger_count, passenger_name, passenger_phone, status, created_at, updated_at
               FROM reservations WHERE run_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		var phone sql.NullString
		if err := rows.Scan(&res.ID, &res.RunID, &res.SegmentID, &res.SegmentKey, &res.PassengerCount,
			&res.PassengerName, &phone, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		if phone.Valid {
			p := phone.String
			res.PassengerPhone = &p
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
