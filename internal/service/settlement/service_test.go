package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func seedTrip(t *testing.T, st *memory.Memory, status trip.Status) (*trip.Trip, *user.Profile) {
	t.Helper()
	passenger := &user.Profile{ID: uuid.New(), Roles: []user.Role{user.RolePassenger}}
	tr := &trip.Trip{
		ID:           uuid.New(),
		RequestID:    uuid.New(),
		PassengerID:  passenger.ID,
		RiderID:      uuid.New(),
		AgreedAmount: 100,
		Status:       status,
		StartedAt:    time.Now(),
	}
	require.NoError(t, st.Trips().Create(context.Background(), tr))
	return tr, passenger
}

func TestSubmitDonationAndFeedback(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	tr, passenger := seedTrip(t, st, trip.StatusCompleted)

	err := svc.SubmitDonationAndFeedback(ctx, passenger, tr.ID, SubmitInput{
		Donation: 25,
		Rating:   5,
		Comment:  "smooth ride",
	})
	require.NoError(t, err)

	donations, err := st.Settlement().ListDonations(ctx)
	require.NoError(t, err)
	require.Len(t, donations, 1)
	assert.Equal(t, 25.0, donations[0].Amount)
	assert.Equal(t, tr.RiderID, donations[0].RiderID)
}

func TestSubmitFeedbackOnlyWhenDonationZero(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	tr, passenger := seedTrip(t, st, trip.StatusCompleted)

	err := svc.SubmitDonationAndFeedback(ctx, passenger, tr.ID, SubmitInput{Rating: 3})
	require.NoError(t, err)

	donations, err := st.Settlement().ListDonations(ctx)
	require.NoError(t, err)
	assert.Empty(t, donations)
}

func TestSubmitValidation(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	tr, passenger := seedTrip(t, st, trip.StatusCompleted)

	err := svc.SubmitDonationAndFeedback(ctx, passenger, tr.ID, SubmitInput{Rating: 0})
	assert.ErrorIs(t, err, settlement.ErrInvalidRating)

	err = svc.SubmitDonationAndFeedback(ctx, passenger, tr.ID, SubmitInput{Rating: 6})
	assert.ErrorIs(t, err, settlement.ErrInvalidRating)

	err = svc.SubmitDonationAndFeedback(ctx, passenger, tr.ID, SubmitInput{Rating: 4, Donation: -1})
	assert.ErrorIs(t, err, settlement.ErrInvalidDonation)
}

func TestSubmitGuards(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	live, passenger := seedTrip(t, st, trip.StatusInTransit)
	err := svc.SubmitDonationAndFeedback(ctx, passenger, live.ID, SubmitInput{Rating: 4})
	assert.ErrorIs(t, err, ErrTripNotCompleted)

	done, _ := seedTrip(t, st, trip.StatusCompleted)
	stranger := &user.Profile{ID: uuid.New(), Roles: []user.Role{user.RolePassenger}}
	err = svc.SubmitDonationAndFeedback(ctx, stranger, done.ID, SubmitInput{Rating: 4})
	assert.ErrorIs(t, err, trip.ErrNotParticipant)

	err = svc.SubmitDonationAndFeedback(ctx, passenger, uuid.New(), SubmitInput{Rating: 4})
	assert.ErrorIs(t, err, trip.ErrNotFound)
}
