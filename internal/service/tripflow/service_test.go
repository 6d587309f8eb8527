package tripflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrides/openrides/internal/domain/request"
	"github.com/openrides/openrides/internal/domain/settlement"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/store/memory"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/monitoring"
)

func newTestService() (*Service, *memory.Memory) {
	st := memory.New()
	mon, _ := monitoring.New(monitoring.Config{})
	return NewService(st, logger.NewNop(), mon), st
}

type fixture struct {
	passenger *user.Profile
	rider     *user.Profile
	req       *request.ServiceRequest
	trip      *trip.Trip
}

func seedMatchedTrip(t *testing.T, st *memory.Memory) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		passenger: &user.Profile{ID: uuid.New(), Roles: []user.Role{user.RolePassenger}},
		rider:     &user.Profile{ID: uuid.New(), Roles: []user.Role{user.RoleRider}},
	}
	f.req = &request.ServiceRequest{
		ID:          uuid.New(),
		PassengerID: f.passenger.ID,
		ServiceType: request.ServiceRide,
		VehicleType: request.VehicleCar,
		BidAmount:   120,
		Status:      request.StatusMatched,
		ExpiresAt:   time.Now().Add(3 * time.Minute),
	}
	require.NoError(t, st.Requests().Create(ctx, f.req))

	f.trip = &trip.Trip{
		ID:           uuid.New(),
		RequestID:    f.req.ID,
		PassengerID:  f.passenger.ID,
		RiderID:      f.rider.ID,
		AgreedAmount: 120,
		Status:       trip.StatusEnRoutePickup,
		StartedAt:    time.Now(),
	}
	require.NoError(t, st.Trips().Create(ctx, f.trip))
	return f
}

func TestUpdateStatusProgression(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	f := seedMatchedTrip(t, st)

	steps := []trip.Status{
		trip.StatusArrivedPickup,
		trip.StatusInTransit,
		trip.StatusArrivedDropoff,
		trip.StatusCompleted,
	}
	for _, target := range steps {
		updated, err := svc.UpdateStatus(ctx, f.rider, f.trip.ID, target)
		require.NoError(t, err)
		assert.Equal(t, target, updated.Status)
	}
}

func TestUpdateStatusRejectsSkips(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	f := seedMatchedTrip(t, st)

	_, err := svc.UpdateStatus(ctx, f.rider, f.trip.ID, trip.StatusInTransit)
	assert.ErrorIs(t, err, trip.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, f.rider, f.trip.ID, trip.StatusCompleted)
	assert.ErrorIs(t, err, trip.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, f.rider, f.trip.ID, "teleported")
	assert.ErrorIs(t, err, trip.ErrInvalidStatus)
}

func TestUpdateStatusParticipantsOnly(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	f := seedMatchedTrip(t, st)

	stranger := &user.Profile{ID: uuid.New(), Roles: []user.Role{user.RolePassenger}}
	_, err := svc.UpdateStatus(ctx, stranger, f.trip.ID, trip.StatusArrivedPickup)
	assert.ErrorIs(t, err, trip.ErrNotParticipant)

	// the passenger is a participant too
	_, err = svc.UpdateStatus(ctx, f.passenger, f.trip.ID, trip.StatusArrivedPickup)
	assert.NoError(t, err)
}

func TestCompletionSettlesEarningAndRequest(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	f := seedMatchedTrip(t, st)

	for _, target := range []trip.Status{trip.StatusArrivedPickup, trip.StatusInTransit, trip.StatusArrivedDropoff} {
		_, err := svc.UpdateStatus(ctx, f.rider, f.trip.ID, target)
		require.NoError(t, err)
	}

	// in transit marks the request in progress
	req, err := st.Requests().Get(ctx, f.req.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusInProgress, req.Status)

	completed, err := svc.UpdateStatus(ctx, f.rider, f.trip.ID, trip.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)

	earnings, err := st.Settlement().ListEarningsByRider(ctx, f.rider.ID)
	require.NoError(t, err)
	require.Len(t, earnings, 1)
	assert.Equal(t, settlement.EarningTrip, earnings[0].Kind)
	assert.Equal(t, 120.0, earnings[0].Amount)

	req, err = st.Requests().Get(ctx, f.req.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusCompleted, req.Status)

	// terminal trips admit nothing further
	_, err = svc.UpdateStatus(ctx, f.rider, f.trip.ID, trip.StatusCancelled)
	assert.ErrorIs(t, err, trip.ErrTerminal)
}

func TestCancelFromAnyLiveStatus(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	f := seedMatchedTrip(t, st)

	_, err := svc.UpdateStatus(ctx, f.rider, f.trip.ID, trip.StatusArrivedPickup)
	require.NoError(t, err)

	cancelled, err := svc.UpdateStatus(ctx, f.passenger, f.trip.ID, trip.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusCancelled, cancelled.Status)
	assert.False(t, cancelled.CompensationFlag)

	req, err := st.Requests().Get(ctx, f.req.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusCancelled, req.Status)
}

func TestPublishLocation(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	f := seedMatchedTrip(t, st)

	heading := 180.0
	ping, err := svc.PublishLocation(ctx, f.rider, f.trip.ID, LocationInput{
		Latitude:  6.5244,
		Longitude: 3.3792,
		Heading:   &heading,
	})
	require.NoError(t, err)
	assert.Equal(t, f.trip.ID, ping.TripID)
	assert.Equal(t, f.rider.ID, ping.ActorID)

	// only the rider publishes telemetry
	_, err = svc.PublishLocation(ctx, f.passenger, f.trip.ID, LocationInput{Latitude: 1, Longitude: 1})
	assert.ErrorIs(t, err, trip.ErrNotParticipant)

	_, err = svc.PublishLocation(ctx, f.rider, f.trip.ID, LocationInput{Latitude: 91, Longitude: 0})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = svc.PublishLocation(ctx, f.rider, f.trip.ID, LocationInput{Latitude: 0, Longitude: -181})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestPublishLocationTerminalTrip(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	f := seedMatchedTrip(t, st)

	_, err := svc.UpdateStatus(ctx, f.rider, f.trip.ID, trip.StatusCancelled)
	require.NoError(t, err)

	_, err = svc.PublishLocation(ctx, f.rider, f.trip.ID, LocationInput{Latitude: 1, Longitude: 1})
	assert.ErrorIs(t, err, trip.ErrTerminal)
}

func TestListRiderHistory(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	f := seedMatchedTrip(t, st)

	for _, target := range []trip.Status{
		trip.StatusArrivedPickup, trip.StatusInTransit,
		trip.StatusArrivedDropoff, trip.StatusCompleted,
	} {
		_, err := svc.UpdateStatus(ctx, f.rider, f.trip.ID, target)
		require.NoError(t, err)
	}

	history, err := svc.ListRiderHistory(ctx, f.rider)
	require.NoError(t, err)
	require.Len(t, history.Trips, 1)
	require.Len(t, history.Earnings, 1)
	assert.Equal(t, 120.0, history.Earnings[0].Amount)

	_, err = svc.ListRiderHistory(ctx, f.passenger)
	assert.ErrorIs(t, err, user.ErrMissingRole)
}
