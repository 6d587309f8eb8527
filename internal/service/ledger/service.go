package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openrides/openrides/internal/domain/request"
	"github.com/openrides/openrides/internal/domain/settlement"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/service/pricing"
	"github.com/openrides/openrides/internal/store"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/monitoring"
)

// ErrMissingAddress is returned when a request omits an address
var ErrMissingAddress = errors.New("pickup and dropoff addresses are required")

// Service manages the service request lifecycle from posting to expiry
type Service struct {
	store      store.Store
	pricing    *pricing.Service
	logger     *logger.Logger
	monitoring *monitoring.App
	ttl        time.Duration
	now        func() time.Time
}

// NewService creates a new ledger service. ttl is how long a request stays
// open before the sweeper expires it.
func NewService(st store.Store, pr *pricing.Service, log *logger.Logger, mon *monitoring.App, ttl time.Duration) *Service {
	return &Service{
		store:      st,
		pricing:    pr,
		logger:     log,
		monitoring: mon,
		ttl:        ttl,
		now:        time.Now,
	}
}

// CreateInput carries a new service request submission
type CreateInput struct {
	ServiceType    request.ServiceType
	VehicleType    request.VehicleType
	PickupAddress  string
	DropoffAddress string
	BidAmount      float64
}

// CreateResult is the created request plus pricing advice
type CreateResult struct {
	Request          *request.ServiceRequest `json:"request"`
	BidTooLowWarning bool                    `json:"bid_too_low_warning"`
	SuggestedMinimum float64                 `json:"suggested_minimum"`
}

// Create posts a new open service request. A bid below the floor is flagged
// with a warning but never rejected.
func (s *Service) Create(ctx context.Context, caller *user.Profile, in CreateInput) (*CreateResult, error) {
	if err := user.RequireRole(caller, user.RolePassenger); err != nil {
		return nil, err
	}
	if !in.ServiceType.IsValid() {
		return nil, request.ErrInvalidService
	}
	if !in.VehicleType.IsValid() {
		return nil, request.ErrInvalidVehicle
	}
	if in.BidAmount <= 0 {
		return nil, request.ErrInvalidAmount
	}
	if strings.TrimSpace(in.PickupAddress) == "" || strings.TrimSpace(in.DropoffAddress) == "" {
		return nil, ErrMissingAddress
	}

	tooLow, minimum := s.pricing.CheckBid(in.ServiceType, in.VehicleType, in.BidAmount)

	now := s.now()
	req := &request.ServiceRequest{
		ID:               uuid.New(),
		PassengerID:      caller.ID,
		ServiceType:      in.ServiceType,
		VehicleType:      in.VehicleType,
		PickupAddress:    in.PickupAddress,
		DropoffAddress:   in.DropoffAddress,
		BidAmount:        in.BidAmount,
		BidTooLowWarning: tooLow,
		Status:           request.StatusOpen,
		ExpiresAt:        now.Add(s.ttl),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		return tx.Requests().Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service request created",
		logger.String("request_id", req.ID.String()),
		logger.String("service_type", string(req.ServiceType)),
		logger.String("vehicle_type", string(req.VehicleType)),
		logger.Float64("bid_amount", req.BidAmount),
		logger.Bool("bid_too_low", tooLow))
	s.monitoring.RecordRequestCreated(string(req.ServiceType), string(req.VehicleType), tooLow)

	return &CreateResult{Request: req, BidTooLowWarning: tooLow, SuggestedMinimum: minimum}, nil
}

// Cancel cancels the caller's own request. Cancelling a matched request also
// cancels its trip and flags the rider for cancellation compensation.
func (s *Service) Cancel(ctx context.Context, caller *user.Profile, requestID uuid.UUID) (*request.ServiceRequest, error) {
	var cancelled *request.ServiceRequest

	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		req, err := tx.Requests().Get(ctx, requestID)
		if errors.Is(err, store.ErrNotFound) {
			return request.ErrNotFound
		}
		if err != nil {
			return err
		}
		if req.PassengerID != caller.ID {
			return request.ErrNotOwner
		}
		if req.Status.IsTerminal() || req.Status == request.StatusInProgress {
			return request.ErrNotOpen
		}

		wasMatched := req.Status == request.StatusMatched
		req.Status = request.StatusCancelled
		req.UpdatedAt = s.now()
		if err := tx.Requests().Update(ctx, req); err != nil {
			return err
		}

		if wasMatched {
			if err := s.cancelMatchedTrip(ctx, tx, req); err != nil {
				return err
			}
		}
		cancelled = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service request cancelled",
		logger.String("request_id", cancelled.ID.String()))
	return cancelled, nil
}

// cancelMatchedTrip cancels the trip attached to a matched request and
// records a zero-amount compensation marker for the rider.
func (s *Service) cancelMatchedTrip(ctx context.Context, tx store.Store, req *request.ServiceRequest) error {
	t, err := tx.Trips().GetByRequest(ctx, req.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if t.Status.IsTerminal() {
		return nil
	}

	now := s.now()
	t.Status = trip.StatusCancelled
	t.CompensationFlag = true
	t.UpdatedAt = now
	if err := tx.Trips().Update(ctx, t); err != nil {
		return err
	}

	return tx.Settlement().CreateEarning(ctx, &settlement.Earning{
		ID:        uuid.New(),
		RiderID:   t.RiderID,
		TripID:    t.ID,
		Amount:    0,
		Kind:      settlement.EarningCancellationFlag,
		CreatedAt: now,
	})
}

// ListActiveForPassenger returns the caller's open, negotiating and matched
// requests, newest first.
func (s *Service) ListActiveForPassenger(ctx context.Context, caller *user.Profile) ([]*request.ServiceRequest, error) {
	var out []*request.ServiceRequest
	for _, status := range []request.Status{request.StatusOpen, request.StatusNegotiating, request.StatusMatched} {
		reqs, err := s.store.Requests().ListByPassengerAndStatus(ctx, caller.ID, status)
		if err != nil {
			return nil, err
		}
		out = append(out, reqs...)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns a request visible to its owner or to a rider. Riders see every
// request so bid listings can resolve context.
func (s *Service) Get(ctx context.Context, requestID uuid.UUID) (*request.ServiceRequest, error) {
	req, err := s.store.Requests().Get(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, request.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ExpireStale moves every open request past its TTL to expired and returns
// the number moved. Requests in any other status are left alone, so the sweep
// is safe to run repeatedly.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	expired := 0
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		expired = 0
		open, err := tx.Requests().ListByStatus(ctx, request.StatusOpen)
		if err != nil {
			return err
		}
		now := s.now()
		for _, req := range open {
			if !req.IsExpired(now) {
				continue
			}
			req.Status = request.StatusExpired
			req.UpdatedAt = now
			if err := tx.Requests().Update(ctx, req); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
