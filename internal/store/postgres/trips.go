package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/openrides/openrides/internal/domain/trip"
)

type tripRepo struct{ q querier }

const tripColumns = `id, request_id, passenger_id, rider_id, agreed_amount, status, compensation_flag, started_at, completed_at, created_at, updated_at`

func (r tripRepo) Create(ctx context.Context, t *trip.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.q.ExecContext(ctx, query,
		t.ID, t.RequestID, t.PassengerID, t.RiderID, t.AgreedAmount,
		string(t.Status), t.CompensationFlag, t.StartedAt, t.CompletedAt,
		t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (r tripRepo) Get(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	t, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r tripRepo) GetByRequest(ctx context.Context, requestID uuid.UUID) (*trip.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE request_id = $1`
	t, err := scanTrip(r.q.QueryRowContext(ctx, query, requestID))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r tripRepo) Update(ctx context.Context, t *trip.Trip) error {
	query := `
		UPDATE trips
		SET status = $2, compensation_flag = $3, completed_at = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		t.ID, string(t.Status), t.CompensationFlag, t.CompletedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r tripRepo) ListByRiderAndStatus(ctx context.Context, riderID uuid.UUID, status trip.Status) ([]*trip.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE rider_id = $1 AND status = $2 ORDER BY created_at DESC`
	return r.list(ctx, query, riderID, string(status))
}

func (r tripRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*trip.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE (rider_id = $1 OR passenger_id = $1)
		  AND status NOT IN ('completed', 'cancelled')
	`
	return r.list(ctx, query, userID)
}

func (r tripRepo) List(ctx context.Context) ([]*trip.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at`
	return r.list(ctx, query)
}

func (r tripRepo) list(ctx context.Context, query string, args ...interface{}) ([]*trip.Trip, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*trip.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r tripRepo) CreateLocation(ctx context.Context, p *trip.LocationPing) error {
	query := `
		INSERT INTO trip_locations (id, trip_id, actor_id, latitude, longitude, heading, speed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.ExecContext(ctx, query,
		p.ID, p.TripID, p.ActorID, p.Latitude, p.Longitude,
		p.Heading, p.Speed, p.CreatedAt,
	)
	return err
}

func scanTrip(s rowScanner) (*trip.Trip, error) {
	var t trip.Trip
	var completedAt sql.NullTime
	err := s.Scan(
		&t.ID, &t.RequestID, &t.PassengerID, &t.RiderID, &t.AgreedAmount,
		&t.Status, &t.CompensationFlag, &t.StartedAt, &completedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	return &t, nil
}
