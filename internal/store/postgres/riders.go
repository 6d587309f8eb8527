package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/openrides/openrides/internal/domain/rider"
)

type riderRepo struct{ q querier }

func (r riderRepo) CreateProfile(ctx context.Context, p *rider.Profile) error {
	docs, err := json.Marshal(p.Documents)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO rider_profiles (id, user_id, verification_status, service_mode, vehicle_types, availability, documents, rejection_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.q.ExecContext(ctx, query,
		p.ID, p.UserID, string(p.VerificationStatus), string(p.ServiceMode),
		pq.Array(vehiclesToStrings(p.VehicleTypes)), p.Availability,
		docs, p.RejectionReason, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r riderRepo) GetProfile(ctx context.Context, id uuid.UUID) (*rider.Profile, error) {
	return r.getProfile(ctx, `WHERE id = $1`, id)
}

func (r riderRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*rider.Profile, error) {
	return r.getProfile(ctx, `WHERE user_id = $1`, userID)
}

func (r riderRepo) getProfile(ctx context.Context, where string, arg interface{}) (*rider.Profile, error) {
	query := `
		SELECT id, user_id, verification_status, service_mode, vehicle_types, availability, documents, rejection_reason, created_at, updated_at
		FROM rider_profiles ` + where
	var p rider.Profile
	var vehicles []string
	var docs []byte
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.UserID, &p.VerificationStatus, &p.ServiceMode,
		pq.Array(&vehicles), &p.Availability, &docs, &p.RejectionReason,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	p.VehicleTypes = stringsToVehicles(vehicles)
	if err := json.Unmarshal(docs, &p.Documents); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r riderRepo) UpdateProfile(ctx context.Context, p *rider.Profile) error {
	docs, err := json.Marshal(p.Documents)
	if err != nil {
		return err
	}
	query := `
		UPDATE rider_profiles
		SET verification_status = $2, service_mode = $3, vehicle_types = $4, availability = $5, documents = $6, rejection_reason = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		p.ID, string(p.VerificationStatus), string(p.ServiceMode),
		pq.Array(vehiclesToStrings(p.VehicleTypes)), p.Availability,
		docs, p.RejectionReason, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r riderRepo) ListProfilesByVerification(ctx context.Context, status rider.VerificationStatus) ([]*rider.Profile, error) {
	query := `
		SELECT id, user_id, verification_status, service_mode, vehicle_types, availability, documents, rejection_reason, created_at, updated_at
		FROM rider_profiles
		WHERE verification_status = $1
		ORDER BY created_at
	`
	rows, err := r.q.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*rider.Profile
	for rows.Next() {
		var p rider.Profile
		var vehicles []string
		var docs []byte
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.VerificationStatus, &p.ServiceMode,
			pq.Array(&vehicles), &p.Availability, &docs, &p.RejectionReason,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.VehicleTypes = stringsToVehicles(vehicles)
		if err := json.Unmarshal(docs, &p.Documents); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func vehiclesToStrings(vehicles []rider.VehicleType) []string {
	out := make([]string, len(vehicles))
	for i, v := range vehicles {
		out[i] = string(v)
	}
	return out
}

func stringsToVehicles(values []string) []rider.VehicleType {
	out := make([]rider.VehicleType, len(values))
	for i, v := range values {
		out[i] = rider.VehicleType(v)
	}
	return out
}
