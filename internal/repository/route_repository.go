// Package repository contains data access logic for the booking engine.
// This file manages routes. A route is the immutable stop sequence a
// company publishes runs against; edits only affect runs published
// afterwards, never existing ones, because every run snapshots the
// point list at publish time.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"encoding/json"

	"github.com/andariego/trip-reservation/internal/model"
)

// RouteRepo manages persistence for routes.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo constructs a RouteRepo given a DB handle.
func NewRouteRepo(db *sql.DB) *RouteRepo {
	return &RouteRepo{db: db}
}

// Create inserts a new route. The intermediate stop list is stored as a
// JSON column. On success the generated ID is populated on the given
// route.
func (r *RouteRepo) Create(ctx context.Context, route *model.RoutePlan) error {
	stops, err := json.Marshal(route.Stops)
	if err != nil {
		return err
	}
	const q = `INSERT INTO routes (company_id, origin, destination, stops) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, route.CompanyID, route.Origin, route.Destination, stops)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	route.ID = uint64(id)
	return nil
}

// GetByID loads one route, failing with ErrRouteNotFound when the id
// does not resolve.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (*model.RoutePlan, error) {
	const q = `SELECT id, company_id, origin, destination, stops, created_at, updated_at FROM routes WHERE id = ?`
	var route model.RoutePlan
	var stops []byte
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&route.ID, &route.CompanyID, &route.Origin, &route.Destination,
		&stops, &route.CreatedAt, &route.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stops, &route.Stops); err != nil {
		return nil, err
	}
	return &route, nil
}

// ListByCompany returns every route owned by a company, newest first.
func (r *RouteRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.RoutePlan, error) {
	const q = `SELECT id, company_id, origin, destination, stops, created_at, updated_at
               FROM routes WHERE company_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var routes []model.RoutePlan
	for rows.Next() {
		var route model.RoutePlan
		var stops []byte
		if err := rows.Scan(&route.ID, &route.CompanyID, &route.Origin, &route.Destination,
			&stops, &route.CreatedAt, &route.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(stops, &route.Stops); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}
