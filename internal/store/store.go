package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openrides/openrides/internal/domain/bid"
	"github.com/openrides/openrides/internal/domain/governance"
	"github.com/openrides/openrides/internal/domain/request"
	"github.com/openrides/openrides/internal/domain/rider"
	"github.com/openrides/openrides/internal/domain/settlement"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
)

// ErrNotFound is returned for lookups of records that do not exist.
// Services translate it into their domain sentinels.
var ErrNotFound = errors.New("record not found")

// UserStore persists user profiles
type UserStore interface {
	CreateProfile(ctx context.Context, p *user.Profile) error
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*user.Profile, error)
	UpdateProfile(ctx context.Context, p *user.Profile) error
	CountProfiles(ctx context.Context) (int, error)
}

// RiderStore persists rider-side profiles
type RiderStore interface {
	CreateProfile(ctx context.Context, p *rider.Profile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*rider.Profile, error)
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*rider.Profile, error)
	UpdateProfile(ctx context.Context, p *rider.Profile) error
	ListProfilesByVerification(ctx context.Context, status rider.VerificationStatus) ([]*rider.Profile, error)
}

// RequestStore persists service requests
type RequestStore interface {
	Create(ctx context.Context, r *request.ServiceRequest) error
	Get(ctx context.Context, id uuid.UUID) (*request.ServiceRequest, error)
	Update(ctx context.Context, r *request.ServiceRequest) error
	ListByStatus(ctx context.Context, status request.Status) ([]*request.ServiceRequest, error)
	ListByPassengerAndStatus(ctx context.Context, passengerID uuid.UUID, status request.Status) ([]*request.ServiceRequest, error)
}

// BidStore persists negotiation bids, append-only apart from terminal
// status marking
type BidStore interface {
	Create(ctx context.Context, b *bid.Bid) error
	Get(ctx context.Context, id uuid.UUID) (*bid.Bid, error)
	Update(ctx context.Context, b *bid.Bid) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error)
}

// TripStore persists trips and their location telemetry
type TripStore interface {
	Create(ctx context.Context, t *trip.Trip) error
	Get(ctx context.Context, id uuid.UUID) (*trip.Trip, error)
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*trip.Trip, error)
	Update(ctx context.Context, t *trip.Trip) error
	ListByRiderAndStatus(ctx context.Context, riderID uuid.UUID, status trip.Status) ([]*trip.Trip, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*trip.Trip, error)
	List(ctx context.Context) ([]*trip.Trip, error)
	CreateLocation(ctx context.Context, p *trip.LocationPing) error
}

// SettlementStore persists append-only settlement records
type SettlementStore interface {
	CreateEarning(ctx context.Context, e *settlement.Earning) error
	ListEarningsByRider(ctx context.Context, riderID uuid.UUID) ([]*settlement.Earning, error)
	ListEarnings(ctx context.Context) ([]*settlement.Earning, error)
	CreateDonation(ctx context.Context, d *settlement.Donation) error
	ListDonations(ctx context.Context) ([]*settlement.Donation, error)
	CreateFeedback(ctx context.Context, f *settlement.Feedback) error
}

// GovernanceStore persists disputes, moderation actions and audit entries
type GovernanceStore interface {
	CreateDispute(ctx context.Context, d *governance.Dispute) error
	GetDispute(ctx context.Context, id uuid.UUID) (*governance.Dispute, error)
	UpdateDispute(ctx context.Context, d *governance.Dispute) error
	ListDisputesByStatus(ctx context.Context, status governance.DisputeStatus) ([]*governance.Dispute, error)
	CreateModerationAction(ctx context.Context, a *governance.ModerationAction) error
	CreateAuditLog(ctx context.Context, l *governance.AuditLog) error
}

// Store aggregates the per-entity stores. RunInTx executes fn against a
// transactional view; read-modify-write sequences inside fn serialize with
// respect to every other transaction. Mutating service operations always go
// through RunInTx so that no multi-entity write can interleave or partially
// apply.
type Store interface {
	Users() UserStore
	Riders() RiderStore
	Requests() RequestStore
	Bids() BidStore
	Trips() TripStore
	Settlement() SettlementStore
	Governance() GovernanceStore
	RunInTx(ctx context.Context, fn func(tx Store) error) error
}
