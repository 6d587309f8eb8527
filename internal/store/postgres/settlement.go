package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/openrides/openrides/internal/domain/settlement"
)

type settlementRepo struct{ q querier }

func (r settlementRepo) CreateEarning(ctx context.Context, e *settlement.Earning) error {
	query := `
		INSERT INTO earnings (id, rider_id, trip_id, amount, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		e.ID, e.RiderID, e.TripID, e.Amount, string(e.Kind), e.CreatedAt,
	)
	return err
}

func (r settlementRepo) ListEarningsByRider(ctx context.Context, riderID uuid.UUID) ([]*settlement.Earning, error) {
	query := `
		SELECT id, rider_id, trip_id, amount, kind, created_at
		FROM earnings
		WHERE rider_id = $1
		ORDER BY created_at DESC
	`
	return r.listEarnings(ctx, query, riderID)
}

func (r settlementRepo) ListEarnings(ctx context.Context) ([]*settlement.Earning, error) {
	query := `
		SELECT id, rider_id, trip_id, amount, kind, created_at
		FROM earnings
		ORDER BY created_at
	`
	return r.listEarnings(ctx, query)
}

func (r settlementRepo) listEarnings(ctx context.Context, query string, args ...interface{}) ([]*settlement.Earning, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*settlement.Earning
	for rows.Next() {
		var e settlement.Earning
		if err := rows.Scan(&e.ID, &e.RiderID, &e.TripID, &e.Amount, &e.Kind, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r settlementRepo) CreateDonation(ctx context.Context, d *settlement.Donation) error {
	query := `
		INSERT INTO donations (id, trip_id, passenger_id, rider_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		d.ID, d.TripID, d.PassengerID, d.RiderID, d.Amount, d.CreatedAt,
	)
	return err
}

func (r settlementRepo) ListDonations(ctx context.Context) ([]*settlement.Donation, error) {
	query := `
		SELECT id, trip_id, passenger_id, rider_id, amount, created_at
		FROM donations
		ORDER BY created_at
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*settlement.Donation
	for rows.Next() {
		var d settlement.Donation
		if err := rows.Scan(&d.ID, &d.TripID, &d.PassengerID, &d.RiderID, &d.Amount, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r settlementRepo) CreateFeedback(ctx context.Context, f *settlement.Feedback) error {
	query := `
		INSERT INTO feedback (id, trip_id, passenger_id, rider_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		f.ID, f.TripID, f.PassengerID, f.RiderID, f.Rating, f.Comment, f.CreatedAt,
	)
	return err
}
