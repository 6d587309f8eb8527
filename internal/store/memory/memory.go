// Package memory provides an in-process store implementation. Transactions
// serialize behind a single mutex, which is the simplest model satisfying
// the store contract; it doubles as the test fixture for every service.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/openrides/openrides/internal/domain/bid"
	"github.com/openrides/openrides/internal/domain/governance"
	"github.com/openrides/openrides/internal/domain/request"
	"github.com/openrides/openrides/internal/domain/rider"
	"github.com/openrides/openrides/internal/domain/settlement"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/store"
)

type data struct {
	userProfiles  []*user.Profile
	riderProfiles []*rider.Profile
	requests      []*request.ServiceRequest
	bids          []*bid.Bid
	trips         []*trip.Trip
	locations     []*trip.LocationPing
	earnings      []*settlement.Earning
	donations     []*settlement.Donation
	feedback      []*settlement.Feedback
	disputes      []*governance.Dispute
	moderation    []*governance.ModerationAction
	audit         []*governance.AuditLog
}

// Memory implements store.Store over in-process slices
type Memory struct {
	mu   *sync.Mutex
	inTx bool
	d    *data
}

// New creates an empty in-memory store
func New() *Memory {
	return &Memory{mu: &sync.Mutex{}, d: &data{}}
}

// lock acquires the store mutex unless already held by an enclosing
// transaction
func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// RunInTx serializes fn against all other store access
func (m *Memory) RunInTx(ctx context.Context, fn func(tx store.Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&Memory{mu: m.mu, inTx: true, d: m.d})
}

func (m *Memory) Users() store.UserStore             { return users{m} }
func (m *Memory) Riders() store.RiderStore           { return riders{m} }
func (m *Memory) Requests() store.RequestStore       { return requests{m} }
func (m *Memory) Bids() store.BidStore               { return bids{m} }
func (m *Memory) Trips() store.TripStore             { return trips{m} }
func (m *Memory) Settlement() store.SettlementStore  { return settlements{m} }
func (m *Memory) Governance() store.GovernanceStore  { return governanceStore{m} }

// users

type users struct{ m *Memory }

func (s users) CreateProfile(ctx context.Context, p *user.Profile) error {
	defer s.m.lock()()
	s.m.d.userProfiles = append(s.m.d.userProfiles, cloneUserProfile(p))
	return nil
}

func (s users) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	defer s.m.lock()()
	for _, p := range s.m.d.userProfiles {
		if p.UserID == userID {
			return cloneUserProfile(p), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s users) UpdateProfile(ctx context.Context, p *user.Profile) error {
	defer s.m.lock()()
	for i, existing := range s.m.d.userProfiles {
		if existing.ID == p.ID {
			s.m.d.userProfiles[i] = cloneUserProfile(p)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s users) CountProfiles(ctx context.Context) (int, error) {
	defer s.m.lock()()
	return len(s.m.d.userProfiles), nil
}

// riders

type riders struct{ m *Memory }

func (s riders) CreateProfile(ctx context.Context, p *rider.Profile) error {
	defer s.m.lock()()
	s.m.d.riderProfiles = append(s.m.d.riderProfiles, cloneRiderProfile(p))
	return nil
}

func (s riders) GetProfile(ctx context.Context, id uuid.UUID) (*rider.Profile, error) {
	defer s.m.lock()()
	for _, p := range s.m.d.riderProfiles {
		if p.ID == id {
			return cloneRiderProfile(p), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s riders) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*rider.Profile, error) {
	defer s.m.lock()()
	for _, p := range s.m.d.riderProfiles {
		if p.UserID == userID {
			return cloneRiderProfile(p), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s riders) UpdateProfile(ctx context.Context, p *rider.Profile) error {
	defer s.m.lock()()
	for i, existing := range s.m.d.riderProfiles {
		if existing.ID == p.ID {
			s.m.d.riderProfiles[i] = cloneRiderProfile(p)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s riders) ListProfilesByVerification(ctx context.Context, status rider.VerificationStatus) ([]*rider.Profile, error) {
	defer s.m.lock()()
	var out []*rider.Profile
	for _, p := range s.m.d.riderProfiles {
		if p.VerificationStatus == status {
			out = append(out, cloneRiderProfile(p))
		}
	}
	return out, nil
}

// requests

type requests struct{ m *Memory }

func (s requests) Create(ctx context.Context, r *request.ServiceRequest) error {
	defer s.m.lock()()
	s.m.d.requests = append(s.m.d.requests, cloneRequest(r))
	return nil
}

func (s requests) Get(ctx context.Context, id uuid.UUID) (*request.ServiceRequest, error) {
	defer s.m.lock()()
	for _, r := range s.m.d.requests {
		if r.ID == id {
			return cloneRequest(r), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s requests) Update(ctx context.Context, r *request.ServiceRequest) error {
	defer s.m.lock()()
	for i, existing := range s.m.d.requests {
		if existing.ID == r.ID {
			s.m.d.requests[i] = cloneRequest(r)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s requests) ListByStatus(ctx context.Context, status request.Status) ([]*request.ServiceRequest, error) {
	defer s.m.lock()()
	var out []*request.ServiceRequest
	for _, r := range s.m.d.requests {
		if r.Status == status {
			out = append(out, cloneRequest(r))
		}
	}
	return out, nil
}

func (s requests) ListByPassengerAndStatus(ctx context.Context, passengerID uuid.UUID, status request.Status) ([]*request.ServiceRequest, error) {
	defer s.m.lock()()
	var out []*request.ServiceRequest
	for _, r := range s.m.d.requests {
		if r.PassengerID == passengerID && r.Status == status {
			out = append(out, cloneRequest(r))
		}
	}
	return out, nil
}

// bids

type bids struct{ m *Memory }

func (s bids) Create(ctx context.Context, b *bid.Bid) error {
	defer s.m.lock()()
	s.m.d.bids = append(s.m.d.bids, cloneBid(b))
	return nil
}

func (s bids) Get(ctx context.Context, id uuid.UUID) (*bid.Bid, error) {
	defer s.m.lock()()
	for _, b := range s.m.d.bids {
		if b.ID == id {
			return cloneBid(b), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s bids) Update(ctx context.Context, b *bid.Bid) error {
	defer s.m.lock()()
	for i, existing := range s.m.d.bids {
		if existing.ID == b.ID {
			s.m.d.bids[i] = cloneBid(b)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s bids) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error) {
	defer s.m.lock()()
	var out []*bid.Bid
	for _, b := range s.m.d.bids {
		if b.RequestID == requestID {
			out = append(out, cloneBid(b))
		}
	}
	return out, nil
}

// trips

type trips struct{ m *Memory }

func (s trips) Create(ctx context.Context, t *trip.Trip) error {
	defer s.m.lock()()
	s.m.d.trips = append(s.m.d.trips, cloneTrip(t))
	return nil
}

func (s trips) Get(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	defer s.m.lock()()
	for _, t := range s.m.d.trips {
		if t.ID == id {
			return cloneTrip(t), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s trips) GetByRequest(ctx context.Context, requestID uuid.UUID) (*trip.Trip, error) {
	defer s.m.lock()()
	for _, t := range s.m.d.trips {
		if t.RequestID == requestID {
			return cloneTrip(t), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s trips) Update(ctx context.Context, t *trip.Trip) error {
	defer s.m.lock()()
	for i, existing := range s.m.d.trips {
		if existing.ID == t.ID {
			s.m.d.trips[i] = cloneTrip(t)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s trips) ListByRiderAndStatus(ctx context.Context, riderID uuid.UUID, status trip.Status) ([]*trip.Trip, error) {
	defer s.m.lock()()
	var out []*trip.Trip
	for _, t := range s.m.d.trips {
		if t.RiderID == riderID && t.Status == status {
			out = append(out, cloneTrip(t))
		}
	}
	return out, nil
}

func (s trips) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*trip.Trip, error) {
	defer s.m.lock()()
	var out []*trip.Trip
	for _, t := range s.m.d.trips {
		if !t.Status.IsTerminal() && (t.RiderID == userID || t.PassengerID == userID) {
			out = append(out, cloneTrip(t))
		}
	}
	return out, nil
}

func (s trips) List(ctx context.Context) ([]*trip.Trip, error) {
	defer s.m.lock()()
	out := make([]*trip.Trip, 0, len(s.m.d.trips))
	for _, t := range s.m.d.trips {
		out = append(out, cloneTrip(t))
	}
	return out, nil
}

func (s trips) CreateLocation(ctx context.Context, p *trip.LocationPing) error {
	defer s.m.lock()()
	cp := *p
	s.m.d.locations = append(s.m.d.locations, &cp)
	return nil
}

// settlement

type settlements struct{ m *Memory }

func (s settlements) CreateEarning(ctx context.Context, e *settlement.Earning) error {
	defer s.m.lock()()
	cp := *e
	s.m.d.earnings = append(s.m.d.earnings, &cp)
	return nil
}

func (s settlements) ListEarningsByRider(ctx context.Context, riderID uuid.UUID) ([]*settlement.Earning, error) {
	defer s.m.lock()()
	var out []*settlement.Earning
	for _, e := range s.m.d.earnings {
		if e.RiderID == riderID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s settlements) ListEarnings(ctx context.Context) ([]*settlement.Earning, error) {
	defer s.m.lock()()
	out := make([]*settlement.Earning, 0, len(s.m.d.earnings))
	for _, e := range s.m.d.earnings {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s settlements) CreateDonation(ctx context.Context, d *settlement.Donation) error {
	defer s.m.lock()()
	cp := *d
	s.m.d.donations = append(s.m.d.donations, &cp)
	return nil
}

func (s settlements) ListDonations(ctx context.Context) ([]*settlement.Donation, error) {
	defer s.m.lock()()
	out := make([]*settlement.Donation, 0, len(s.m.d.donations))
	for _, d := range s.m.d.donations {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (s settlements) CreateFeedback(ctx context.Context, f *settlement.Feedback) error {
	defer s.m.lock()()
	cp := *f
	s.m.d.feedback = append(s.m.d.feedback, &cp)
	return nil
}

// governance

type governanceStore struct{ m *Memory }

func (s governanceStore) CreateDispute(ctx context.Context, d *governance.Dispute) error {
	defer s.m.lock()()
	s.m.d.disputes = append(s.m.d.disputes, cloneDispute(d))
	return nil
}

func (s governanceStore) GetDispute(ctx context.Context, id uuid.UUID) (*governance.Dispute, error) {
	defer s.m.lock()()
	for _, d := range s.m.d.disputes {
		if d.ID == id {
			return cloneDispute(d), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s governanceStore) UpdateDispute(ctx context.Context, d *governance.Dispute) error {
	defer s.m.lock()()
	for i, existing := range s.m.d.disputes {
		if existing.ID == d.ID {
			s.m.d.disputes[i] = cloneDispute(d)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s governanceStore) ListDisputesByStatus(ctx context.Context, status governance.DisputeStatus) ([]*governance.Dispute, error) {
	defer s.m.lock()()
	var out []*governance.Dispute
	for _, d := range s.m.d.disputes {
		if d.Status == status {
			out = append(out, cloneDispute(d))
		}
	}
	return out, nil
}

func (s governanceStore) CreateModerationAction(ctx context.Context, a *governance.ModerationAction) error {
	defer s.m.lock()()
	cp := *a
	s.m.d.moderation = append(s.m.d.moderation, &cp)
	return nil
}

func (s governanceStore) CreateAuditLog(ctx context.Context, l *governance.AuditLog) error {
	defer s.m.lock()()
	cp := *l
	s.m.d.audit = append(s.m.d.audit, &cp)
	return nil
}

// clone helpers keep callers from sharing mutable state with the store

func cloneUserProfile(p *user.Profile) *user.Profile {
	cp := *p
	cp.Roles = append([]user.Role(nil), p.Roles...)
	return &cp
}

func cloneRiderProfile(p *rider.Profile) *rider.Profile {
	cp := *p
	cp.VehicleTypes = append([]rider.VehicleType(nil), p.VehicleTypes...)
	cp.Documents = append([]rider.Document(nil), p.Documents...)
	return &cp
}

func cloneRequest(r *request.ServiceRequest) *request.ServiceRequest {
	cp := *r
	if r.MatchedRiderID != nil {
		id := *r.MatchedRiderID
		cp.MatchedRiderID = &id
	}
	return &cp
}

func cloneBid(b *bid.Bid) *bid.Bid {
	cp := *b
	if b.CounterOf != nil {
		id := *b.CounterOf
		cp.CounterOf = &id
	}
	return &cp
}

func cloneTrip(t *trip.Trip) *trip.Trip {
	cp := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

func cloneDispute(d *governance.Dispute) *governance.Dispute {
	cp := *d
	if d.TripID != nil {
		id := *d.TripID
		cp.TripID = &id
	}
	if d.TargetUserID != nil {
		id := *d.TargetUserID
		cp.TargetUserID = &id
	}
	return &cp
}
