package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/openrides/openrides/internal/domain/governance"
)

type governanceRepo struct{ q querier }

const disputeColumns = `id, trip_id, opened_by_id, target_user_id, reason, status, resolution, created_at, updated_at`

func (r governanceRepo) CreateDispute(ctx context.Context, d *governance.Dispute) error {
	query := `
		INSERT INTO disputes (` + disputeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.ExecContext(ctx, query,
		d.ID, nullUUID(d.TripID), d.OpenedByID, nullUUID(d.TargetUserID),
		d.Reason, string(d.Status), d.Resolution, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r governanceRepo) GetDispute(ctx context.Context, id uuid.UUID) (*governance.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`
	d, err := scanDispute(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (r governanceRepo) UpdateDispute(ctx context.Context, d *governance.Dispute) error {
	query := `
		UPDATE disputes
		SET status = $2, resolution = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query, d.ID, string(d.Status), d.Resolution, d.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r governanceRepo) ListDisputesByStatus(ctx context.Context, status governance.DisputeStatus) ([]*governance.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE status = $1 ORDER BY created_at`
	rows, err := r.q.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*governance.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r governanceRepo) CreateModerationAction(ctx context.Context, a *governance.ModerationAction) error {
	query := `
		INSERT INTO moderation_actions (id, admin_id, target_user_id, action, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		a.ID, a.AdminID, a.TargetUserID, string(a.Action), a.Note, a.CreatedAt,
	)
	return err
}

func (r governanceRepo) CreateAuditLog(ctx context.Context, l *governance.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		l.ID, nullUUID(l.ActorID), l.Action, l.EntityType, l.EntityID, l.Metadata, l.CreatedAt,
	)
	return err
}

func scanDispute(s rowScanner) (*governance.Dispute, error) {
	var d governance.Dispute
	var tripID, targetID uuid.NullUUID
	err := s.Scan(
		&d.ID, &tripID, &d.OpenedByID, &targetID,
		&d.Reason, &d.Status, &d.Resolution, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tripID.Valid {
		id := tripID.UUID
		d.TripID = &id
	}
	if targetID.Valid {
		id := targetID.UUID
		d.TargetUserID = &id
	}
	return &d, nil
}
