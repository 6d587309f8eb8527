// Package postgres implements the store contract over PostgreSQL using
// database/sql and lib/pq. Transactions run at serializable isolation;
// serialization failures are retried a bounded number of times, which
// gives the accept path its exactly-one-trip guarantee.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/openrides/openrides/internal/store"
)

const txRetries = 3

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Postgres implements store.Store
type Postgres struct {
	db *sql.DB
	q  querier
}

// New creates a Postgres store over an open connection pool
func New(db *sql.DB) *Postgres {
	return &Postgres{db: db, q: db}
}

func (p *Postgres) Users() store.UserStore            { return userRepo{p.q} }
func (p *Postgres) Riders() store.RiderStore          { return riderRepo{p.q} }
func (p *Postgres) Requests() store.RequestStore      { return requestRepo{p.q} }
func (p *Postgres) Bids() store.BidStore              { return bidRepo{p.q} }
func (p *Postgres) Trips() store.TripStore            { return tripRepo{p.q} }
func (p *Postgres) Settlement() store.SettlementStore { return settlementRepo{p.q} }
func (p *Postgres) Governance() store.GovernanceStore { return governanceRepo{p.q} }

// RunInTx executes fn inside a serializable transaction, retrying on
// serialization failures. Nested calls join the enclosing transaction.
func (p *Postgres) RunInTx(ctx context.Context, fn func(tx store.Store) error) error {
	if _, nested := p.q.(*sql.Tx); nested {
		return fn(p)
	}

	var lastErr error
	for attempt := 0; attempt < txRetries; attempt++ {
		tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		err = fn(&Postgres{db: p.db, q: tx})
		if err != nil {
			_ = tx.Rollback()
			if isSerializationFailure(err) {
				lastErr = err
				continue
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if isSerializationFailure(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}
	return fmt.Errorf("transaction retries exhausted: %w", lastErr)
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure or deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// notFound maps sql.ErrNoRows to the store sentinel
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// requireRowAffected turns a zero-row UPDATE into store.ErrNotFound
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
