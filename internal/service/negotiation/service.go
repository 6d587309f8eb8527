package negotiation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/openrides/openrides/internal/domain/bid"
	"github.com/openrides/openrides/internal/domain/request"
	"github.com/openrides/openrides/internal/domain/rider"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/store"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/monitoring"
)

// Service runs the bid negotiation between passengers and riders
type Service struct {
	store      store.Store
	logger     *logger.Logger
	monitoring *monitoring.App
	now        func() time.Time
}

// NewService creates a new negotiation service
func NewService(st store.Store, log *logger.Logger, mon *monitoring.App) *Service {
	return &Service{
		store:      st,
		logger:     log,
		monitoring: mon,
		now:        time.Now,
	}
}

// ListEligibleForRider returns open requests the caller may respond to:
// within the rider's service mode and vehicle types. Unverified or
// unavailable riders see nothing.
func (s *Service) ListEligibleForRider(ctx context.Context, caller *user.Profile) ([]*request.ServiceRequest, error) {
	if err := user.RequireRole(caller, user.RoleRider); err != nil {
		return nil, err
	}

	rp, err := s.store.Riders().GetProfileByUserID(ctx, caller.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, rider.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if !rp.IsApproved() || !rp.Availability {
		return []*request.ServiceRequest{}, nil
	}

	open, err := s.store.Requests().ListByStatus(ctx, request.StatusOpen)
	if err != nil {
		return nil, err
	}

	eligible := make([]*request.ServiceRequest, 0, len(open))
	now := s.now()
	for _, req := range open {
		if req.IsExpired(now) {
			continue
		}
		if !rp.ServiceMode.CanServe(string(req.ServiceType)) {
			continue
		}
		if !rp.HasVehicleType(rider.VehicleType(req.VehicleType)) {
			continue
		}
		eligible = append(eligible, req)
	}
	return eligible, nil
}

// ListBids returns the bid chain for a request, visible to the request's
// owner and to riders.
func (s *Service) ListBids(ctx context.Context, caller *user.Profile, requestID uuid.UUID) ([]*bid.Bid, error) {
	req, err := s.store.Requests().Get(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, request.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.PassengerID != caller.ID && !caller.HasRole(user.RoleRider) {
		return nil, request.ErrNotOwner
	}
	return s.store.Bids().ListByRequest(ctx, requestID)
}

// RiderRespond records a rider's negotiation move against an open or
// negotiating request. Accept and counter move the request to negotiating;
// reject returns it to open. Amount defaults to the passenger's bid when the
// move carries no price.
func (s *Service) RiderRespond(ctx context.Context, caller *user.Profile, requestID uuid.UUID, action bid.Action, amount *float64) (*bid.Bid, error) {
	if err := user.RequireRole(caller, user.RoleRider); err != nil {
		return nil, err
	}
	if !action.IsValid() {
		return nil, bid.ErrInvalidAction
	}
	if amount != nil && *amount <= 0 {
		return nil, request.ErrInvalidAmount
	}

	var created *bid.Bid
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		req, err := tx.Requests().Get(ctx, requestID)
		if errors.Is(err, store.ErrNotFound) {
			return request.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !req.AcceptsBids() {
			return request.ErrNotOpen
		}

		rp, err := tx.Riders().GetProfileByUserID(ctx, caller.ID)
		if errors.Is(err, store.ErrNotFound) {
			return rider.ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		if !rp.IsApproved() {
			return rider.ErrNotVerified
		}
		if !rp.ServiceMode.CanServe(string(req.ServiceType)) {
			return rider.ErrServiceModeMismatch
		}
		if !rp.HasVehicleType(rider.VehicleType(req.VehicleType)) {
			return rider.ErrVehicleTypeMismatch
		}

		bidAmount := req.BidAmount
		if amount != nil {
			bidAmount = *amount
		}

		now := s.now()
		created = &bid.Bid{
			ID:        uuid.New(),
			RequestID: req.ID,
			RiderID:   caller.ID,
			Amount:    bidAmount,
			Status:    bid.StatusForRiderAction(action),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Bids().Create(ctx, created); err != nil {
			return err
		}

		if action == bid.ActionReject {
			req.Status = request.StatusOpen
		} else {
			req.Status = request.StatusNegotiating
		}
		req.UpdatedAt = now
		return tx.Requests().Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rider responded to request",
		logger.String("request_id", requestID.String()),
		logger.String("bid_id", created.ID.String()),
		logger.String("action", string(action)),
		logger.Float64("amount", created.Amount))
	return created, nil
}

// RespondResult carries the outcome of a passenger's move. Trip is non-nil
// only when the move was an accept.
type RespondResult struct {
	Bid  *bid.Bid   `json:"bid"`
	Trip *trip.Trip `json:"trip,omitempty"`
}

// PassengerRespondToBid records the passenger's move against a rider bid.
// A counter appends a new countered bid linked to the one it answers, leaving
// the chain's earlier entries untouched; its amount defaults to the request's
// asking price. Accept settles the negotiation: the bid is marked accepted,
// the request matched, and exactly one trip is created at the agreed amount.
// The whole decision runs in one transaction, so two concurrent accepts on
// the same request can never both produce a trip.
func (s *Service) PassengerRespondToBid(ctx context.Context, caller *user.Profile, bidID uuid.UUID, action bid.Action, amount *float64) (*RespondResult, error) {
	if !action.IsValid() {
		return nil, bid.ErrInvalidAction
	}
	if amount != nil && *amount <= 0 {
		return nil, request.ErrInvalidAmount
	}

	result := &RespondResult{}
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		b, err := tx.Bids().Get(ctx, bidID)
		if errors.Is(err, store.ErrNotFound) {
			return bid.ErrNotFound
		}
		if err != nil {
			return err
		}
		req, err := tx.Requests().Get(ctx, b.RequestID)
		if errors.Is(err, store.ErrNotFound) {
			return request.ErrNotFound
		}
		if err != nil {
			return err
		}
		if req.PassengerID != caller.ID {
			return request.ErrNotOwner
		}
		if !req.AcceptsBids() {
			return request.ErrNotOpen
		}
		if b.Status.IsDeclined() {
			return bid.ErrResolved
		}

		now := s.now()
		switch action {
		case bid.ActionReject:
			b.Status = bid.StatusRejected
			b.UpdatedAt = now
			if err := tx.Bids().Update(ctx, b); err != nil {
				return err
			}
			result.Bid = b

		case bid.ActionCounter:
			counterAmount := req.BidAmount
			if amount != nil {
				counterAmount = *amount
			}
			counter := &bid.Bid{
				ID:        uuid.New(),
				RequestID: req.ID,
				RiderID:   b.RiderID,
				Amount:    counterAmount,
				Status:    bid.StatusCountered,
				CounterOf: &b.ID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Bids().Create(ctx, counter); err != nil {
				return err
			}
			req.Status = request.StatusNegotiating
			req.UpdatedAt = now
			if err := tx.Requests().Update(ctx, req); err != nil {
				return err
			}
			result.Bid = counter

		case bid.ActionAccept:
			b.Status = bid.StatusAccepted
			b.UpdatedAt = now
			if err := tx.Bids().Update(ctx, b); err != nil {
				return err
			}
			req.Status = request.StatusMatched
			req.MatchedRiderID = &b.RiderID
			req.BidAmount = b.Amount
			req.UpdatedAt = now
			if err := tx.Requests().Update(ctx, req); err != nil {
				return err
			}
			t := &trip.Trip{
				ID:           uuid.New(),
				RequestID:    req.ID,
				PassengerID:  req.PassengerID,
				RiderID:      b.RiderID,
				AgreedAmount: b.Amount,
				Status:       trip.StatusEnRoutePickup,
				StartedAt:    now,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Trips().Create(ctx, t); err != nil {
				return err
			}
			result.Bid = b
			result.Trip = t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Trip != nil {
		s.monitoring.RecordBidAccepted(result.Bid.RequestID.String(), result.Bid.Amount)
		s.logger.Info("bid accepted, trip created",
			logger.String("request_id", result.Bid.RequestID.String()),
			logger.String("trip_id", result.Trip.ID.String()),
			logger.Float64("agreed_amount", result.Trip.AgreedAmount))
	} else {
		s.logger.Info("passenger responded to bid",
			logger.String("bid_id", bidID.String()),
			logger.String("action", string(action)))
	}
	return result, nil
}
