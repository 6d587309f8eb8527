package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/openrides/openrides/internal/domain/request"
)

type requestRepo struct{ q querier }

const requestColumns = `id, passenger_id, service_type, vehicle_type, pickup_address, dropoff_address, bid_amount, bid_too_low_warning, status, matched_rider_id, expires_at, created_at, updated_at`

func (r requestRepo) Create(ctx context.Context, sr *request.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.q.ExecContext(ctx, query,
		sr.ID, sr.PassengerID, string(sr.ServiceType), string(sr.VehicleType),
		sr.PickupAddress, sr.DropoffAddress, sr.BidAmount, sr.BidTooLowWarning,
		string(sr.Status), nullUUID(sr.MatchedRiderID), sr.ExpiresAt,
		sr.CreatedAt, sr.UpdatedAt,
	)
	return err
}

func (r requestRepo) Get(ctx context.Context, id uuid.UUID) (*request.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id = $1`
	return scanRequest(r.q.QueryRowContext(ctx, query, id))
}

func (r requestRepo) Update(ctx context.Context, sr *request.ServiceRequest) error {
	query := `
		UPDATE service_requests
		SET bid_amount = $2, bid_too_low_warning = $3, status = $4, matched_rider_id = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		sr.ID, sr.BidAmount, sr.BidTooLowWarning, string(sr.Status),
		nullUUID(sr.MatchedRiderID), sr.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r requestRepo) ListByStatus(ctx context.Context, status request.Status) ([]*request.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE status = $1 ORDER BY created_at`
	return r.list(ctx, query, string(status))
}

func (r requestRepo) ListByPassengerAndStatus(ctx context.Context, passengerID uuid.UUID, status request.Status) ([]*request.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE passenger_id = $1 AND status = $2 ORDER BY created_at DESC`
	return r.list(ctx, query, passengerID, string(status))
}

func (r requestRepo) list(ctx context.Context, query string, args ...interface{}) ([]*request.ServiceRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*request.ServiceRequest
	for rows.Next() {
		sr, err := scanRequestRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequestFrom(s rowScanner) (*request.ServiceRequest, error) {
	var sr request.ServiceRequest
	var matched uuid.NullUUID
	err := s.Scan(
		&sr.ID, &sr.PassengerID, &sr.ServiceType, &sr.VehicleType,
		&sr.PickupAddress, &sr.DropoffAddress, &sr.BidAmount, &sr.BidTooLowWarning,
		&sr.Status, &matched, &sr.ExpiresAt, &sr.CreatedAt, &sr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if matched.Valid {
		id := matched.UUID
		sr.MatchedRiderID = &id
	}
	return &sr, nil
}

func scanRequest(s rowScanner) (*request.ServiceRequest, error) {
	sr, err := scanRequestFrom(s)
	if err != nil {
		return nil, notFound(err)
	}
	return sr, nil
}

func scanRequestRows(s rowScanner) (*request.ServiceRequest, error) {
	return scanRequestFrom(s)
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
