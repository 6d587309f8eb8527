package ledger

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
	"github.com/openrides/openrides/internal/service/pricing"
	"github.com/openrides/openrides/internal/store/memory"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/monitoring"
)

func newTestService() (*Service, *memory.Memory) {
	st := memory.New()
	mon, _ := monitoring.New(monitoring.Config{})
	svc := NewService(st, pricing.NewService(pricing.DefaultConfig()), logger.NewNop(), mon, 180*time.Second)
	return svc, st
}

func passenger() *user.Profile {
	return &user.Profile{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Roles:      []user.Role{user.RolePassenger},
		ActiveRole: user.RolePassenger,
		Status:     user.StatusActive,
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService()
	p := passenger()

	res, err := svc.Create(context.Background(), p, CreateInput{
		ServiceType:    request.ServiceRide,
		VehicleType:    request.VehicleMotorcycle,
		PickupAddress:  "12 Adeola Odeku St",
		DropoffAddress: "1 Marina Rd",
		BidAmount:      120,
	})
	require.NoError(t, err)
	assert.Equal(t, request.StatusOpen, res.Request.Status)
	assert.Equal(t, p.ID, res.Request.PassengerID)
	assert.False(t, res.BidTooLowWarning)
	assert.Equal(t, float64(90), res.SuggestedMinimum)
	assert.Equal(t, res.Request.CreatedAt.Add(180*time.Second), res.Request.ExpiresAt)
}

func TestCreateLowBidWarnsButSucceeds(t *testing.T) {
	svc, _ := newTestService()

	res, err := svc.Create(context.Background(), passenger(), CreateInput{
		ServiceType:    request.ServiceDelivery,
		VehicleType:    request.VehicleCar,
		PickupAddress:  "a",
		DropoffAddress: "b",
		BidAmount:      50,
	})
	require.NoError(t, err)
	assert.True(t, res.BidTooLowWarning)
	assert.True(t, res.Request.BidTooLowWarning)
	assert.Equal(t, float64(135), res.SuggestedMinimum)
	assert.Equal(t, request.StatusOpen, res.Request.Status)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	p := passenger()

	valid := CreateInput{
		ServiceType:    request.ServiceRide,
		VehicleType:    request.VehicleCar,
		PickupAddress:  "a",
		DropoffAddress: "b",
		BidAmount:      100,
	}

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		caller  *user.Profile
		wantErr error
	}{
		{"bad service type", func(in *CreateInput) { in.ServiceType = "flight" }, p, request.ErrInvalidService},
		{"bad vehicle type", func(in *CreateInput) { in.VehicleType = "boat" }, p, request.ErrInvalidVehicle},
		{"zero amount", func(in *CreateInput) { in.BidAmount = 0 }, p, request.ErrInvalidAmount},
		{"negative amount", func(in *CreateInput) { in.BidAmount = -5 }, p, request.ErrInvalidAmount},
		{"missing pickup", func(in *CreateInput) { in.PickupAddress = "  " }, p, ErrMissingAddress},
		{"missing dropoff", func(in *CreateInput) { in.DropoffAddress = "" }, p, ErrMissingAddress},
		{"rider-only caller", func(in *CreateInput) {}, &user.Profile{ID: uuid.New(), Roles: []user.Role{user.RoleRider}}, user.ErrMissingRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), tt.caller, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCancelOpenRequest(t *testing.T) {
	svc, _ := newTestService()
	p := passenger()

	res, err := svc.Create(context.Background(), p, CreateInput{
		ServiceType:    request.ServiceRide,
		VehicleType:    request.VehicleTricycle,
		PickupAddress:  "a",
		DropoffAddress: "b",
		BidAmount:      80,
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), p, res.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), p, res.Request.ID)
	assert.ErrorIs(t, err, request.ErrNotOpen)
}

func TestCancelOnlyByOwner(t *testing.T) {
	svc, _ := newTestService()
	p := passenger()

	res, err := svc.Create(context.Background(), p, CreateInput{
		ServiceType:    request.ServiceRide,
		VehicleType:    request.VehicleTricycle,
		PickupAddress:  "a",
		DropoffAddress: "b",
		BidAmount:      80,
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), passenger(), res.Request.ID)
	assert.ErrorIs(t, err, request.ErrNotOwner)

	_, err = svc.Cancel(context.Background(), p, uuid.New())
	assert.ErrorIs(t, err, request.ErrNotFound)
}

func TestCancelMatchedFlagsCompensation(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	p := passenger()
	riderID := uuid.New()

	res, err := svc.Create(ctx, p, CreateInput{
		ServiceType:    request.ServiceRide,
		VehicleType:    request.VehicleCar,
		PickupAddress:  "a",
		DropoffAddress: "b",
		BidAmount:      150,
	})
	require.NoError(t, err)

	req := res.Request
	req.Status = request.StatusMatched
	req.MatchedRiderID = &riderID
	require.NoError(t, st.Requests().Update(ctx, req))

	tr := &trip.Trip{
		ID:           uuid.New(),
		RequestID:    req.ID,
		PassengerID:  p.ID,
		RiderID:      riderID,
		AgreedAmount: 150,
		Status:       trip.StatusEnRoutePickup,
	}
	require.NoError(t, st.Trips().Create(ctx, tr))

	cancelled, err := svc.Cancel(ctx, p, req.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusCancelled, cancelled.Status)

	got, err := st.Trips().Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusCancelled, got.Status)
	assert.True(t, got.CompensationFlag)

	earnings, err := st.Settlement().ListEarningsByRider(ctx, riderID)
	require.NoError(t, err)
	require.Len(t, earnings, 1)
	assert.Equal(t, settlement.EarningCancellationFlag, earnings[0].Kind)
	assert.Equal(t, float64(0), earnings[0].Amount)
}

func TestListActiveForPassenger(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	p := passenger()

	base := time.Now()
	statuses := []request.Status{
		request.StatusOpen, request.StatusNegotiating, request.StatusMatched,
		request.StatusCompleted, request.StatusCancelled, request.StatusExpired,
	}
	for i, status := range statuses {
		require.NoError(t, st.Requests().Create(ctx, &request.ServiceRequest{
			ID:          uuid.New(),
			PassengerID: p.ID,
			ServiceType: request.ServiceRide,
			VehicleType: request.VehicleCar,
			BidAmount:   100,
			Status:      status,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	active, err := svc.ListActiveForPassenger(ctx, p)
	require.NoError(t, err)
	require.Len(t, active, 3)
	// newest first
	assert.Equal(t, request.StatusMatched, active[0].Status)
	assert.Equal(t, request.StatusNegotiating, active[1].Status)
	assert.Equal(t, request.StatusOpen, active[2].Status)
}

func TestExpireStale(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	now := time.Now()
	svc.now = func() time.Time { return now }

	stale := &request.ServiceRequest{
		ID:          uuid.New(),
		PassengerID: uuid.New(),
		Status:      request.StatusOpen,
		ExpiresAt:   now.Add(-time.Minute),
	}
	fresh := &request.ServiceRequest{
		ID:          uuid.New(),
		PassengerID: uuid.New(),
		Status:      request.StatusOpen,
		ExpiresAt:   now.Add(time.Minute),
	}
	negotiating := &request.ServiceRequest{
		ID:          uuid.New(),
		PassengerID: uuid.New(),
		Status:      request.StatusNegotiating,
		ExpiresAt:   now.Add(-time.Minute),
	}
	for _, r := range []*request.ServiceRequest{stale, fresh, negotiating} {
		require.NoError(t, st.Requests().Create(ctx, r))
	}

	count, err := svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := st.Requests().Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusExpired, got.Status)

	got, err = st.Requests().Get(ctx, negotiating.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusNegotiating, got.Status)

	// a second sweep finds nothing new
	count, err = svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
