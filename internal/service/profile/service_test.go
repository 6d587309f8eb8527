package profile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrides/openrides/internal/domain/rider"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/store/memory"
	"github.com/openrides/openrides/pkg/logger"
)

func newTestService() (*Service, *memory.Memory) {
	st := memory.New()
	return NewService(st, logger.NewNop()), st
}

func TestEnsureProfileBootstrapAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.EnsureProfile(ctx, uuid.New(), "Ada", "ada@example.com")
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)
	assert.Equal(t, user.RolePassenger, first.ActiveRole)
	assert.Equal(t, user.StatusActive, first.Status)

	second, err := svc.EnsureProfile(ctx, uuid.New(), "Bola", "bola@example.com")
	require.NoError(t, err)
	assert.False(t, second.IsAdmin)
}

func TestEnsureProfileIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.EnsureProfile(ctx, userID, "Ada", "ada@example.com")
	require.NoError(t, err)

	again, err := svc.EnsureProfile(ctx, userID, "Renamed", "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Ada", again.Name)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.EnsureProfile(ctx, uuid.New(), "Ada", "ada@example.com")
	require.NoError(t, err)

	phone := "+2348012345678"
	updated, err := svc.UpdateProfile(ctx, p, nil, &phone)
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, phone, updated.Phone)

	name := "Ada L."
	updated, err = svc.UpdateProfile(ctx, p, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, phone, updated.Phone)
}

func TestFinalizeSignupRoleRiderCreatesPendingProfile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.EnsureProfile(ctx, uuid.New(), "Ada", "ada@example.com")
	require.NoError(t, err)

	updated, err := svc.FinalizeSignupRole(ctx, p, user.RoleRider)
	require.NoError(t, err)
	assert.Equal(t, user.RoleRider, updated.ActiveRole)
	assert.True(t, updated.HasRole(user.RoleRider))
	assert.True(t, updated.HasRole(user.RolePassenger))

	rp, err := svc.GetRiderProfile(ctx, updated)
	require.NoError(t, err)
	require.NotNil(t, rp)
	assert.Equal(t, rider.VerificationPending, rp.VerificationStatus)
	assert.False(t, rp.Availability)
	// rider profiles key off the profile's primary id, not the auth subject
	assert.Equal(t, updated.ID, rp.UserID)

	_, err = svc.FinalizeSignupRole(ctx, p, "dispatcher")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestCompleteRiderOnboarding(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.EnsureProfile(ctx, uuid.New(), "Ada", "ada@example.com")
	require.NoError(t, err)

	rp, err := svc.CompleteRiderOnboarding(ctx, p, OnboardingInput{
		ServiceMode:  rider.ModeRideOnly,
		VehicleTypes: []rider.VehicleType{rider.VehicleMotorcycle, rider.VehicleCar},
		Phone:        "+2348012345678",
		Documents:    []rider.Document{{Label: "licence", URI: "https://cdn.example.com/doc1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, rider.ModeRideOnly, rp.ServiceMode)
	assert.Len(t, rp.VehicleTypes, 2)
	assert.Equal(t, rider.VerificationPending, rp.VerificationStatus)

	got, err := svc.GetProfile(ctx, p.UserID)
	require.NoError(t, err)
	assert.True(t, got.HasRole(user.RoleRider))
	assert.Equal(t, "+2348012345678", got.Phone)
}

func TestCompleteRiderOnboardingValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p, err := svc.EnsureProfile(ctx, uuid.New(), "Ada", "ada@example.com")
	require.NoError(t, err)

	_, err = svc.CompleteRiderOnboarding(ctx, p, OnboardingInput{
		ServiceMode:  "walking",
		VehicleTypes: []rider.VehicleType{rider.VehicleCar},
	})
	assert.ErrorIs(t, err, rider.ErrInvalidServiceMode)

	_, err = svc.CompleteRiderOnboarding(ctx, p, OnboardingInput{
		ServiceMode: rider.ModeBoth,
	})
	assert.ErrorIs(t, err, rider.ErrInvalidVehicleType)

	_, err = svc.CompleteRiderOnboarding(ctx, p, OnboardingInput{
		ServiceMode:  rider.ModeBoth,
		VehicleTypes: []rider.VehicleType{"skateboard"},
	})
	assert.ErrorIs(t, err, rider.ErrInvalidVehicleType)
}

func TestSwitchActiveRole(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.EnsureProfile(ctx, uuid.New(), "Ada", "ada@example.com")
	require.NoError(t, err)
	p, err = svc.FinalizeSignupRole(ctx, p, user.RoleRider)
	require.NoError(t, err)

	updated, err := svc.SwitchActiveRole(ctx, p, user.RolePassenger)
	require.NoError(t, err)
	assert.Equal(t, user.RolePassenger, updated.ActiveRole)

	// a role the profile never held
	other, err := svc.EnsureProfile(ctx, uuid.New(), "Bola", "bola@example.com")
	require.NoError(t, err)
	_, err = svc.SwitchActiveRole(ctx, other, user.RoleRider)
	assert.ErrorIs(t, err, user.ErrMissingRole)
}

func TestSwitchActiveRoleBlockedDuringTrip(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	p, err := svc.EnsureProfile(ctx, uuid.New(), "Ada", "ada@example.com")
	require.NoError(t, err)
	p, err = svc.FinalizeSignupRole(ctx, p, user.RoleRider)
	require.NoError(t, err)

	tr := &trip.Trip{
		ID:          uuid.New(),
		RequestID:   uuid.New(),
		PassengerID: uuid.New(),
		RiderID:     p.ID,
		Status:      trip.StatusInTransit,
		StartedAt:   time.Now(),
	}
	require.NoError(t, st.Trips().Create(ctx, tr))

	_, err = svc.SwitchActiveRole(ctx, p, user.RolePassenger)
	assert.ErrorIs(t, err, user.ErrActiveTrip)

	// terminal trips do not block
	tr.Status = trip.StatusCompleted
	require.NoError(t, st.Trips().Update(ctx, tr))
	_, err = svc.SwitchActiveRole(ctx, p, user.RolePassenger)
	assert.NoError(t, err)
}

func TestSetRiderAvailability(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.EnsureProfile(ctx, uuid.New(), "Ada", "ada@example.com")
	require.NoError(t, err)
	p, err = svc.FinalizeSignupRole(ctx, p, user.RoleRider)
	require.NoError(t, err)

	mode := rider.ModeDeliveryOnly
	rp, err := svc.SetRiderAvailability(ctx, p, true, &mode)
	require.NoError(t, err)
	assert.True(t, rp.Availability)
	assert.Equal(t, rider.ModeDeliveryOnly, rp.ServiceMode)

	rp, err = svc.SetRiderAvailability(ctx, p, false, nil)
	require.NoError(t, err)
	assert.False(t, rp.Availability)
	assert.Equal(t, rider.ModeDeliveryOnly, rp.ServiceMode)

	passengerOnly, err := svc.EnsureProfile(ctx, uuid.New(), "Bola", "bola@example.com")
	require.NoError(t, err)
	_, err = svc.SetRiderAvailability(ctx, passengerOnly, true, nil)
	assert.ErrorIs(t, err, user.ErrMissingRole)
}
