package governance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openrides/openrides/internal/domain/governance"
	"github.com/openrides/openrides/internal/domain/rider"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/store"
	"github.com/openrides/openrides/pkg/logger"
)

// DefaultRejectionReason is recorded when an admin rejects a verification
// without giving one.
const DefaultRejectionReason = "Verification rejected"

// ErrInvalidDecision is returned for verification decisions other than
// approve or reject.
var ErrInvalidDecision = errors.New("decision must be approve or reject")

// Service covers the admin surface: verifications, disputes, moderation and
// the operations dashboard.
type Service struct {
	store  store.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new governance service
func NewService(st store.Store, log *logger.Logger) *Service {
	return &Service{
		store:  st,
		logger: log,
		now:    time.Now,
	}
}

// Dashboard is the admin operations snapshot
type Dashboard struct {
	PendingVerifications int     `json:"pending_verifications"`
	OpenDisputes         int     `json:"open_disputes"`
	TripsInTransit       int     `json:"trips_in_transit"`
	TotalTrips           int     `json:"total_trips"`
	CompletedTrips       int     `json:"completed_trips"`
	TotalEarnings        float64 `json:"total_earnings"`
	TotalDonations       float64 `json:"total_donations"`
}

// GetDashboard aggregates platform counters for the admin overview
func (s *Service) GetDashboard(ctx context.Context, caller *user.Profile) (*Dashboard, error) {
	if err := user.RequireAdmin(caller); err != nil {
		return nil, err
	}

	pending, err := s.store.Riders().ListProfilesByVerification(ctx, rider.VerificationPending)
	if err != nil {
		return nil, err
	}
	open, err := s.store.Governance().ListDisputesByStatus(ctx, governance.DisputeOpen)
	if err != nil {
		return nil, err
	}
	trips, err := s.store.Trips().List(ctx)
	if err != nil {
		return nil, err
	}
	earnings, err := s.store.Settlement().ListEarnings(ctx)
	if err != nil {
		return nil, err
	}
	donations, err := s.store.Settlement().ListDonations(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		PendingVerifications: len(pending),
		OpenDisputes:         len(open),
		TotalTrips:           len(trips),
	}
	for _, t := range trips {
		switch t.Status {
		case trip.StatusInTransit:
			d.TripsInTransit++
		case trip.StatusCompleted:
			d.CompletedTrips++
		}
	}
	for _, e := range earnings {
		d.TotalEarnings += e.Amount
	}
	for _, dn := range donations {
		d.TotalDonations += dn.Amount
	}
	return d, nil
}

// ListPendingVerifications returns rider profiles awaiting review
func (s *Service) ListPendingVerifications(ctx context.Context, caller *user.Profile) ([]*rider.Profile, error) {
	if err := user.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.store.Riders().ListProfilesByVerification(ctx, rider.VerificationPending)
}

// ReviewVerification applies an admin's approve or reject decision to a
// rider profile. Rejection records a reason, defaulted when empty; rejection
// also forces availability off.
func (s *Service) ReviewVerification(ctx context.Context, caller *user.Profile, riderProfileID uuid.UUID, decision, reason string) (*rider.Profile, error) {
	if err := user.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if decision != "approve" && decision != "reject" {
		return nil, ErrInvalidDecision
	}

	var updated *rider.Profile
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		rp, err := tx.Riders().GetProfile(ctx, riderProfileID)
		if errors.Is(err, store.ErrNotFound) {
			return rider.ErrProfileNotFound
		}
		if err != nil {
			return err
		}

		now := s.now()
		if decision == "approve" {
			rp.VerificationStatus = rider.VerificationApproved
			rp.RejectionReason = ""
		} else {
			rp.VerificationStatus = rider.VerificationRejected
			rp.Availability = false
			if strings.TrimSpace(reason) == "" {
				reason = DefaultRejectionReason
			}
			rp.RejectionReason = reason
		}
		rp.UpdatedAt = now
		if err := tx.Riders().UpdateProfile(ctx, rp); err != nil {
			return err
		}

		if err := tx.Governance().CreateAuditLog(ctx, &governance.AuditLog{
			ID:         uuid.New(),
			ActorID:    &caller.ID,
			Action:     "rider.verification." + decision,
			EntityType: "rider_profile",
			EntityID:   rp.ID.String(),
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		updated = rp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rider verification reviewed",
		logger.String("rider_profile_id", riderProfileID.String()),
		logger.String("decision", decision))
	return updated, nil
}

// OpenDisputeInput carries a new grievance
type OpenDisputeInput struct {
	TripID       *uuid.UUID
	TargetUserID *uuid.UUID
	Reason       string
}

// OpenDispute files a grievance on behalf of any authenticated user
func (s *Service) OpenDispute(ctx context.Context, caller *user.Profile, in OpenDisputeInput) (*governance.Dispute, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, governance.ErrEmptyReason
	}

	now := s.now()
	d := &governance.Dispute{
		ID:           uuid.New(),
		TripID:       in.TripID,
		OpenedByID:   caller.ID,
		TargetUserID: in.TargetUserID,
		Reason:       in.Reason,
		Status:       governance.DisputeOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		return tx.Governance().CreateDispute(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("dispute opened",
		logger.String("dispute_id", d.ID.String()),
		logger.String("opened_by", caller.ID.String()))
	return d, nil
}

// ListOpenDisputes returns disputes awaiting resolution
func (s *Service) ListOpenDisputes(ctx context.Context, caller *user.Profile) ([]*governance.Dispute, error) {
	if err := user.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.store.Governance().ListDisputesByStatus(ctx, governance.DisputeOpen)
}

// ResolveDispute closes a dispute with a resolution note
func (s *Service) ResolveDispute(ctx context.Context, caller *user.Profile, disputeID uuid.UUID, resolution string) (*governance.Dispute, error) {
	if err := user.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resolution) == "" {
		return nil, governance.ErrEmptyReason
	}

	var updated *governance.Dispute
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		d, err := tx.Governance().GetDispute(ctx, disputeID)
		if errors.Is(err, store.ErrNotFound) {
			return governance.ErrDisputeNotFound
		}
		if err != nil {
			return err
		}
		if d.Status == governance.DisputeResolved {
			return governance.ErrDisputeResolved
		}

		now := s.now()
		d.Status = governance.DisputeResolved
		d.Resolution = resolution
		d.UpdatedAt = now
		if err := tx.Governance().UpdateDispute(ctx, d); err != nil {
			return err
		}

		if err := tx.Governance().CreateAuditLog(ctx, &governance.AuditLog{
			ID:         uuid.New(),
			ActorID:    &caller.ID,
			Action:     "dispute.resolve",
			EntityType: "dispute",
			EntityID:   d.ID.String(),
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("dispute resolved",
		logger.String("dispute_id", disputeID.String()))
	return updated, nil
}

// ModerateUser records an admin action against a user. Suspend and ban flip
// the target's account status to suspended; warn leaves it unchanged.
func (s *Service) ModerateUser(ctx context.Context, caller *user.Profile, targetUserID uuid.UUID, verb governance.ModerationVerb, note string) error {
	if err := user.RequireAdmin(caller); err != nil {
		return err
	}
	if !verb.IsValid() {
		return governance.ErrInvalidModeration
	}

	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		target, err := tx.Users().GetProfileByUserID(ctx, targetUserID)
		if errors.Is(err, store.ErrNotFound) {
			return user.ErrProfileNotFound
		}
		if err != nil {
			return err
		}

		now := s.now()
		if verb.Suspends() {
			target.Status = user.StatusSuspended
			target.UpdatedAt = now
			if err := tx.Users().UpdateProfile(ctx, target); err != nil {
				return err
			}
		}

		return tx.Governance().CreateModerationAction(ctx, &governance.ModerationAction{
			ID:           uuid.New(),
			AdminID:      caller.ID,
			TargetUserID: target.ID,
			Action:       verb,
			Note:         note,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("moderation action recorded",
		logger.String("target_user_id", targetUserID.String()),
		logger.String("action", string(verb)))
	return nil
}
