package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/openrides/openrides/internal/domain/bid"
)

type bidRepo struct{ q querier }

const bidColumns = `id, request_id, rider_id, amount, status, counter_of, created_at, updated_at`

func (r bidRepo) Create(ctx context.Context, b *bid.Bid) error {
	query := `
		INSERT INTO request_bids (` + bidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.ExecContext(ctx, query,
		b.ID, b.RequestID, b.RiderID, b.Amount, string(b.Status),
		nullUUID(b.CounterOf), b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (r bidRepo) Get(ctx context.Context, id uuid.UUID) (*bid.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM request_bids WHERE id = $1`
	b, err := scanBid(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (r bidRepo) Update(ctx context.Context, b *bid.Bid) error {
	query := `
		UPDATE request_bids
		SET status = $2, updated_at = $3
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query, b.ID, string(b.Status), b.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r bidRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM request_bids WHERE request_id = $1 ORDER BY created_at`
	rows, err := r.q.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*bid.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBid(s rowScanner) (*bid.Bid, error) {
	var b bid.Bid
	var counterOf uuid.NullUUID
	err := s.Scan(
		&b.ID, &b.RequestID, &b.RiderID, &b.Amount, &b.Status,
		&counterOf, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if counterOf.Valid {
		id := counterOf.UUID
		b.CounterOf = &id
	}
	return &b, nil
}
