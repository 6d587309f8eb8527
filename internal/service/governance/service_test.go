package governance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrides/openrides/internal/domain/governance"
	"github.com/openrides/openrides/internal/domain/rider"
	"github.com/openrides/openrides/internal/domain/settlement"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/store/memory"
	"github.com/openrides/openrides/pkg/logger"
)

func newTestService() (*Service, *memory.Memory) {
	st := memory.New()
	return NewService(st, logger.NewNop()), st
}

func admin() *user.Profile {
	return &user.Profile{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Roles:   []user.Role{user.RolePassenger},
		IsAdmin: true,
		Status:  user.StatusActive,
	}
}

func member() *user.Profile {
	return &user.Profile{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Roles:  []user.Role{user.RolePassenger},
		Status: user.StatusActive,
	}
}

func seedRiderProfile(t *testing.T, st *memory.Memory, status rider.VerificationStatus) *rider.Profile {
	t.Helper()
	rp := &rider.Profile{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		VerificationStatus: status,
		ServiceMode:        rider.ModeBoth,
		VehicleTypes:       []rider.VehicleType{rider.VehicleMotorcycle},
		Availability:       true,
	}
	require.NoError(t, st.Riders().CreateProfile(context.Background(), rp))
	return rp
}

func TestAdminOnlySurface(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	caller := member()

	_, err := svc.GetDashboard(ctx, caller)
	assert.ErrorIs(t, err, user.ErrNotAdmin)
	_, err = svc.ListPendingVerifications(ctx, caller)
	assert.ErrorIs(t, err, user.ErrNotAdmin)
	_, err = svc.ReviewVerification(ctx, caller, uuid.New(), "approve", "")
	assert.ErrorIs(t, err, user.ErrNotAdmin)
	_, err = svc.ListOpenDisputes(ctx, caller)
	assert.ErrorIs(t, err, user.ErrNotAdmin)
	_, err = svc.ResolveDispute(ctx, caller, uuid.New(), "done")
	assert.ErrorIs(t, err, user.ErrNotAdmin)
	err = svc.ModerateUser(ctx, caller, uuid.New(), governance.ModerationWarn, "")
	assert.ErrorIs(t, err, user.ErrNotAdmin)
}

func TestReviewVerificationApprove(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	rp := seedRiderProfile(t, st, rider.VerificationPending)

	updated, err := svc.ReviewVerification(ctx, admin(), rp.ID, "approve", "")
	require.NoError(t, err)
	assert.Equal(t, rider.VerificationApproved, updated.VerificationStatus)
	assert.Empty(t, updated.RejectionReason)

	pending, err := svc.ListPendingVerifications(ctx, admin())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReviewVerificationRejectDefaultsReason(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	rp := seedRiderProfile(t, st, rider.VerificationPending)

	updated, err := svc.ReviewVerification(ctx, admin(), rp.ID, "reject", "  ")
	require.NoError(t, err)
	assert.Equal(t, rider.VerificationRejected, updated.VerificationStatus)
	assert.Equal(t, DefaultRejectionReason, updated.RejectionReason)
	assert.False(t, updated.Availability)

	_, err = svc.ReviewVerification(ctx, admin(), rp.ID, "maybe", "")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = svc.ReviewVerification(ctx, admin(), uuid.New(), "approve", "")
	assert.ErrorIs(t, err, rider.ErrProfileNotFound)
}

func TestDisputeLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	opener := member()

	tripID := uuid.New()
	d, err := svc.OpenDispute(ctx, opener, OpenDisputeInput{
		TripID: &tripID,
		Reason: "rider took a different route",
	})
	require.NoError(t, err)
	assert.Equal(t, governance.DisputeOpen, d.Status)
	assert.Equal(t, opener.ID, d.OpenedByID)

	open, err := svc.ListOpenDisputes(ctx, admin())
	require.NoError(t, err)
	require.Len(t, open, 1)

	resolved, err := svc.ResolveDispute(ctx, admin(), d.ID, "refund issued")
	require.NoError(t, err)
	assert.Equal(t, governance.DisputeResolved, resolved.Status)
	assert.Equal(t, "refund issued", resolved.Resolution)

	_, err = svc.ResolveDispute(ctx, admin(), d.ID, "again")
	assert.ErrorIs(t, err, governance.ErrDisputeResolved)

	_, err = svc.OpenDispute(ctx, opener, OpenDisputeInput{Reason: "  "})
	assert.ErrorIs(t, err, governance.ErrEmptyReason)

	_, err = svc.ResolveDispute(ctx, admin(), d.ID, "")
	assert.ErrorIs(t, err, governance.ErrEmptyReason)
}

func TestModerateUser(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	target := member()
	require.NoError(t, st.Users().CreateProfile(ctx, target))

	err := svc.ModerateUser(ctx, admin(), target.UserID, governance.ModerationWarn, "first strike")
	require.NoError(t, err)
	got, err := st.Users().GetProfileByUserID(ctx, target.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.StatusActive, got.Status)

	err = svc.ModerateUser(ctx, admin(), target.UserID, governance.ModerationSuspend, "second strike")
	require.NoError(t, err)
	got, err = st.Users().GetProfileByUserID(ctx, target.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.StatusSuspended, got.Status)

	err = svc.ModerateUser(ctx, admin(), target.UserID, "scold", "")
	assert.ErrorIs(t, err, governance.ErrInvalidModeration)

	err = svc.ModerateUser(ctx, admin(), uuid.New(), governance.ModerationBan, "")
	assert.ErrorIs(t, err, user.ErrProfileNotFound)
}

func TestGetDashboard(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	seedRiderProfile(t, st, rider.VerificationPending)
	seedRiderProfile(t, st, rider.VerificationPending)
	seedRiderProfile(t, st, rider.VerificationApproved)

	_, err := svc.OpenDispute(ctx, member(), OpenDisputeInput{Reason: "lost parcel"})
	require.NoError(t, err)

	riderID := uuid.New()
	for _, status := range []trip.Status{trip.StatusInTransit, trip.StatusCompleted, trip.StatusCancelled} {
		tr := &trip.Trip{
			ID:           uuid.New(),
			RequestID:    uuid.New(),
			PassengerID:  uuid.New(),
			RiderID:      riderID,
			AgreedAmount: 100,
			Status:       status,
			StartedAt:    time.Now(),
		}
		require.NoError(t, st.Trips().Create(ctx, tr))
	}
	require.NoError(t, st.Settlement().CreateEarning(ctx, &settlement.Earning{
		ID: uuid.New(), RiderID: riderID, TripID: uuid.New(), Amount: 100, Kind: settlement.EarningTrip,
	}))
	require.NoError(t, st.Settlement().CreateDonation(ctx, &settlement.Donation{
		ID: uuid.New(), TripID: uuid.New(), PassengerID: uuid.New(), RiderID: riderID, Amount: 20,
	}))

	d, err := svc.GetDashboard(ctx, admin())
	require.NoError(t, err)
	assert.Equal(t, 2, d.PendingVerifications)
	assert.Equal(t, 1, d.OpenDisputes)
	assert.Equal(t, 1, d.TripsInTransit)
	assert.Equal(t, 3, d.TotalTrips)
	assert.Equal(t, 1, d.CompletedTrips)
	assert.Equal(t, 100.0, d.TotalEarnings)
	assert.Equal(t, 20.0, d.TotalDonations)
}
