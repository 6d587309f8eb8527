package tripflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/openrides/openrides/internal/domain/request"
	"github.com/openrides/openrides/internal/domain/settlement"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/store"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/monitoring"
)

// ErrInvalidCoordinates is returned for a location ping outside valid ranges
var ErrInvalidCoordinates = errors.New("latitude must be in [-90,90] and longitude in [-180,180]")

// Service drives trip execution from match to completion
type Service struct {
	store      store.Store
	logger     *logger.Logger
	monitoring *monitoring.App
	now        func() time.Time
}

// NewService creates a new tripflow service
func NewService(st store.Store, log *logger.Logger, mon *monitoring.App) *Service {
	return &Service{
		store:      st,
		logger:     log,
		monitoring: mon,
		now:        time.Now,
	}
}

// Get returns a trip visible to its participants
func (s *Service) Get(ctx context.Context, caller *user.Profile, tripID uuid.UUID) (*trip.Trip, error) {
	t, err := s.store.Trips().Get(ctx, tripID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, trip.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !t.IsParticipant(caller.ID) && !caller.IsAdmin {
		return nil, trip.ErrNotParticipant
	}
	return t, nil
}

// UpdateStatus advances a trip along its progression, or cancels it.
// Only the trip's rider or passenger may transition it. Completion stamps
// the completion time, records the rider's earning at the agreed amount and
// settles the originating request.
func (s *Service) UpdateStatus(ctx context.Context, caller *user.Profile, tripID uuid.UUID, target trip.Status) (*trip.Trip, error) {
	if !target.IsValid() {
		return nil, trip.ErrInvalidStatus
	}

	var updated *trip.Trip
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		t, err := tx.Trips().Get(ctx, tripID)
		if errors.Is(err, store.ErrNotFound) {
			return trip.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !t.IsParticipant(caller.ID) {
			return trip.ErrNotParticipant
		}
		if t.Status.IsTerminal() {
			return trip.ErrTerminal
		}
		if !t.CanTransition(target) {
			return trip.ErrInvalidTransition
		}

		now := s.now()
		t.Status = target
		t.UpdatedAt = now

		switch target {
		case trip.StatusCompleted:
			t.CompletedAt = &now
			if err := tx.Trips().Update(ctx, t); err != nil {
				return err
			}
			if err := tx.Settlement().CreateEarning(ctx, &settlement.Earning{
				ID:        uuid.New(),
				RiderID:   t.RiderID,
				TripID:    t.ID,
				Amount:    t.AgreedAmount,
				Kind:      settlement.EarningTrip,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			if err := s.settleRequest(ctx, tx, t.RequestID, request.StatusCompleted, now); err != nil {
				return err
			}

		case trip.StatusCancelled:
			if err := tx.Trips().Update(ctx, t); err != nil {
				return err
			}
			if err := s.settleRequest(ctx, tx, t.RequestID, request.StatusCancelled, now); err != nil {
				return err
			}

		case trip.StatusInTransit:
			if err := tx.Trips().Update(ctx, t); err != nil {
				return err
			}
			if err := s.settleRequest(ctx, tx, t.RequestID, request.StatusInProgress, now); err != nil {
				return err
			}

		default:
			if err := tx.Trips().Update(ctx, t); err != nil {
				return err
			}
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.Status == trip.StatusCompleted {
		s.monitoring.RecordTripCompleted(updated.ID.String(), updated.AgreedAmount)
	}
	s.logger.Info("trip status updated",
		logger.String("trip_id", updated.ID.String()),
		logger.String("status", string(updated.Status)))
	return updated, nil
}

// settleRequest moves the originating request to the given status unless it
// already reached a terminal one.
func (s *Service) settleRequest(ctx context.Context, tx store.Store, requestID uuid.UUID, status request.Status, now time.Time) error {
	req, err := tx.Requests().Get(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if req.Status.IsTerminal() {
		return nil
	}
	req.Status = status
	req.UpdatedAt = now
	return tx.Requests().Update(ctx, req)
}

// LocationInput is a single telemetry ping from the rider's device
type LocationInput struct {
	Latitude  float64
	Longitude float64
	Heading   *float64
	Speed     *float64
}

// PublishLocation appends a location ping to a live trip. Only the trip's
// rider may publish.
func (s *Service) PublishLocation(ctx context.Context, caller *user.Profile, tripID uuid.UUID, in LocationInput) (*trip.LocationPing, error) {
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return nil, ErrInvalidCoordinates
	}

	t, err := s.store.Trips().Get(ctx, tripID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, trip.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.RiderID != caller.ID {
		return nil, trip.ErrNotParticipant
	}
	if t.Status.IsTerminal() {
		return nil, trip.ErrTerminal
	}

	ping := &trip.LocationPing{
		ID:        uuid.New(),
		TripID:    t.ID,
		ActorID:   caller.ID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Heading:   in.Heading,
		Speed:     in.Speed,
		CreatedAt: s.now(),
	}
	if err := s.store.Trips().CreateLocation(ctx, ping); err != nil {
		return nil, err
	}
	return ping, nil
}

// RiderHistory is a rider's completed trips with their settlement entries
type RiderHistory struct {
	Trips    []*trip.Trip          `json:"trips"`
	Earnings []*settlement.Earning `json:"earnings"`
}

// ListRiderHistory returns the caller's completed trips and earnings
func (s *Service) ListRiderHistory(ctx context.Context, caller *user.Profile) (*RiderHistory, error) {
	if err := user.RequireRole(caller, user.RoleRider); err != nil {
		return nil, err
	}
	trips, err := s.store.Trips().ListByRiderAndStatus(ctx, caller.ID, trip.StatusCompleted)
	if err != nil {
		return nil, err
	}
	earnings, err := s.store.Settlement().ListEarningsByRider(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return &RiderHistory{Trips: trips, Earnings: earnings}, nil
}
