package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/openrides/openrides/internal/domain/settlement"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/store"
	"github.com/openrides/openrides/pkg/logger"
)

// ErrTripNotCompleted is returned when settlement is attempted before the
// trip reaches completed.
var ErrTripNotCompleted = errors.New("trip is not completed")

// Service records post-trip donations and feedback
type Service struct {
	store  store.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new settlement service
func NewService(st store.Store, log *logger.Logger) *Service {
	return &Service{
		store:  st,
		logger: log,
		now:    time.Now,
	}
}

// SubmitInput is the passenger's post-trip submission. A zero donation
// records feedback only.
type SubmitInput struct {
	Donation float64
	Rating   int
	Comment  string
}

// SubmitDonationAndFeedback records the passenger's rating, optional comment
// and optional donation for a completed trip. Entries are append-only.
func (s *Service) SubmitDonationAndFeedback(ctx context.Context, caller *user.Profile, tripID uuid.UUID, in SubmitInput) error {
	if in.Rating < 1 || in.Rating > 5 {
		return settlement.ErrInvalidRating
	}
	if in.Donation < 0 {
		return settlement.ErrInvalidDonation
	}

	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		t, err := tx.Trips().Get(ctx, tripID)
		if errors.Is(err, store.ErrNotFound) {
			return trip.ErrNotFound
		}
		if err != nil {
			return err
		}
		if t.PassengerID != caller.ID {
			return trip.ErrNotParticipant
		}
		if t.Status != trip.StatusCompleted {
			return ErrTripNotCompleted
		}

		now := s.now()
		if err := tx.Settlement().CreateFeedback(ctx, &settlement.Feedback{
			ID:          uuid.New(),
			TripID:      t.ID,
			PassengerID: t.PassengerID,
			RiderID:     t.RiderID,
			Rating:      in.Rating,
			Comment:     in.Comment,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		if in.Donation > 0 {
			if err := tx.Settlement().CreateDonation(ctx, &settlement.Donation{
				ID:          uuid.New(),
				TripID:      t.ID,
				PassengerID: t.PassengerID,
				RiderID:     t.RiderID,
				Amount:      in.Donation,
				CreatedAt:   now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("trip feedback recorded",
		logger.String("trip_id", tripID.String()),
		logger.Int("rating", in.Rating),
		logger.Float64("donation", in.Donation))
	return nil
}
