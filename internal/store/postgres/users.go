package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/openrides/openrides/internal/domain/user"
)

type userRepo struct{ q querier }

func (r userRepo) CreateProfile(ctx context.Context, p *user.Profile) error {
	query := `
		INSERT INTO user_profiles (id, user_id, name, email, phone, roles, active_role, is_admin, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.q.ExecContext(ctx, query,
		p.ID, p.UserID, p.Name, p.Email, p.Phone,
		pq.Array(rolesToStrings(p.Roles)), string(p.ActiveRole),
		p.IsAdmin, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r userRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	query := `
		SELECT id, user_id, name, email, phone, roles, active_role, is_admin, status, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	var p user.Profile
	var roles []string
	err := r.q.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone,
		pq.Array(&roles), &p.ActiveRole, &p.IsAdmin, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	p.Roles = stringsToRoles(roles)
	return &p, nil
}

func (r userRepo) UpdateProfile(ctx context.Context, p *user.Profile) error {
	query := `
		UPDATE user_profiles
		SET name = $2, email = $3, phone = $4, roles = $5, active_role = $6, is_admin = $7, status = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		p.ID, p.Name, p.Email, p.Phone,
		pq.Array(rolesToStrings(p.Roles)), string(p.ActiveRole),
		p.IsAdmin, string(p.Status), p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r userRepo) CountProfiles(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_profiles`).Scan(&count)
	return count, err
}

func rolesToStrings(roles []user.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func stringsToRoles(values []string) []user.Role {
	out := make([]user.Role, len(values))
	for i, v := range values {
		out[i] = user.Role(v)
	}
	return out
}
