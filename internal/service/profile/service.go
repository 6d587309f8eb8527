package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openrides/openrides/internal/domain/governance"
	"github.com/openrides/openrides/internal/domain/rider"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/store"
	"github.com/openrides/openrides/pkg/logger"
)

// Service manages user and rider profiles
type Service struct {
	store  store.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new profile service
func NewService(st store.Store, log *logger.Logger) *Service {
	return &Service{
		store:  st,
		logger: log,
		now:    time.Now,
	}
}

// EnsureProfile returns the caller's profile, creating it on first contact.
// The very first profile created system-wide is granted the admin flag so a
// fresh deployment always has exactly one bootstrap administrator.
func (s *Service) EnsureProfile(ctx context.Context, userID uuid.UUID, name, email string) (*user.Profile, error) {
	var profile *user.Profile

	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		existing, err := tx.Users().GetProfileByUserID(ctx, userID)
		if err == nil {
			profile = existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		count, err := tx.Users().CountProfiles(ctx)
		if err != nil {
			return err
		}
		isAdmin := count == 0

		now := s.now()
		profile = &user.Profile{
			ID:         uuid.New(),
			UserID:     userID,
			Name:       name,
			Email:      email,
			Roles:      []user.Role{user.RolePassenger},
			ActiveRole: user.RolePassenger,
			IsAdmin:    isAdmin,
			Status:     user.StatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Users().CreateProfile(ctx, profile); err != nil {
			return err
		}

		if isAdmin {
			return tx.Governance().CreateAuditLog(ctx, &governance.AuditLog{
				ID:         uuid.New(),
				ActorID:    &profile.ID,
				Action:     "system.bootstrap_admin_assigned",
				EntityType: "user_profile",
				EntityID:   profile.ID.String(),
				CreatedAt:  now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring profile: %w", err)
	}
	return profile, nil
}

// GetProfile looks up the caller's profile by its external user id
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	p, err := s.store.Users().GetProfileByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, user.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetRiderProfile returns the caller's rider-side profile, or nil when the
// caller never onboarded as a rider.
func (s *Service) GetRiderProfile(ctx context.Context, caller *user.Profile) (*rider.Profile, error) {
	rp, err := s.store.Riders().GetProfileByUserID(ctx, caller.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rp, nil
}

// UpdateProfile updates the mutable contact fields. Nil fields keep their
// current value.
func (s *Service) UpdateProfile(ctx context.Context, caller *user.Profile, name, phone *string) (*user.Profile, error) {
	var updated *user.Profile
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		p, err := tx.Users().GetProfileByUserID(ctx, caller.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return user.ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		if name != nil {
			p.Name = *name
		}
		if phone != nil {
			p.Phone = *phone
		}
		p.UpdatedAt = s.now()
		if err := tx.Users().UpdateProfile(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FinalizeSignupRole records the role chosen during signup. Choosing rider
// grants the role and creates a pending rider profile when none exists.
func (s *Service) FinalizeSignupRole(ctx context.Context, caller *user.Profile, role user.Role) (*user.Profile, error) {
	if !role.IsValid() {
		return nil, user.ErrInvalidRole
	}

	var updated *user.Profile
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		p, err := tx.Users().GetProfileByUserID(ctx, caller.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return user.ErrProfileNotFound
		}
		if err != nil {
			return err
		}

		p.GrantRole(role)
		p.ActiveRole = role
		p.UpdatedAt = s.now()
		if err := tx.Users().UpdateProfile(ctx, p); err != nil {
			return err
		}

		if role == user.RoleRider {
			if err := s.ensureRiderProfile(ctx, tx, p); err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SwitchActiveRole changes the role the caller is currently acting under.
// Blocked while the caller participates in any trip that has not reached a
// terminal status.
func (s *Service) SwitchActiveRole(ctx context.Context, caller *user.Profile, role user.Role) (*user.Profile, error) {
	if !role.IsValid() {
		return nil, user.ErrInvalidRole
	}
	if err := user.RequireRole(caller, role); err != nil {
		return nil, err
	}

	var updated *user.Profile
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		active, err := tx.Trips().ListActiveByUser(ctx, caller.ID)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return user.ErrActiveTrip
		}

		p, err := tx.Users().GetProfileByUserID(ctx, caller.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return user.ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		previous := p.ActiveRole
		p.ActiveRole = role
		p.UpdatedAt = s.now()
		if err := tx.Users().UpdateProfile(ctx, p); err != nil {
			return err
		}

		if err := tx.Governance().CreateAuditLog(ctx, &governance.AuditLog{
			ID:         uuid.New(),
			ActorID:    &p.ID,
			Action:     "role.switch",
			EntityType: "user_profile",
			EntityID:   p.ID.String(),
			Metadata:   fmt.Sprintf(`{"from":%q,"to":%q}`, previous, role),
			CreatedAt:  s.now(),
		}); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("active role switched",
		logger.String("profile_id", updated.ID.String()),
		logger.String("role", string(role)))
	return updated, nil
}

// OnboardingInput carries the rider onboarding submission
type OnboardingInput struct {
	ServiceMode  rider.ServiceMode
	VehicleTypes []rider.VehicleType
	Phone        string
	Documents    []rider.Document
}

// CompleteRiderOnboarding grants the rider role and records service mode,
// vehicles and documents on the rider profile. Verification stays pending
// until an admin reviews it.
func (s *Service) CompleteRiderOnboarding(ctx context.Context, caller *user.Profile, in OnboardingInput) (*rider.Profile, error) {
	if !in.ServiceMode.IsValid() {
		return nil, rider.ErrInvalidServiceMode
	}
	if len(in.VehicleTypes) == 0 {
		return nil, rider.ErrInvalidVehicleType
	}
	for _, v := range in.VehicleTypes {
		if !v.IsValid() {
			return nil, rider.ErrInvalidVehicleType
		}
	}

	var result *rider.Profile
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		p, err := tx.Users().GetProfileByUserID(ctx, caller.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return user.ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		p.GrantRole(user.RoleRider)
		if in.Phone != "" {
			p.Phone = in.Phone
		}
		p.UpdatedAt = s.now()
		if err := tx.Users().UpdateProfile(ctx, p); err != nil {
			return err
		}

		if err := s.ensureRiderProfile(ctx, tx, p); err != nil {
			return err
		}
		rp, err := tx.Riders().GetProfileByUserID(ctx, p.ID)
		if err != nil {
			return err
		}
		rp.ServiceMode = in.ServiceMode
		rp.VehicleTypes = in.VehicleTypes
		if len(in.Documents) > 0 {
			rp.Documents = in.Documents
		}
		rp.UpdatedAt = s.now()
		if err := tx.Riders().UpdateProfile(ctx, rp); err != nil {
			return err
		}
		result = rp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rider onboarding submitted",
		logger.String("profile_id", caller.ID.String()),
		logger.String("service_mode", string(in.ServiceMode)))
	return result, nil
}

// SetRiderAvailability toggles the rider's availability flag and optionally
// updates the service mode in the same call.
func (s *Service) SetRiderAvailability(ctx context.Context, caller *user.Profile, available bool, mode *rider.ServiceMode) (*rider.Profile, error) {
	if err := user.RequireRole(caller, user.RoleRider); err != nil {
		return nil, err
	}
	if mode != nil && !mode.IsValid() {
		return nil, rider.ErrInvalidServiceMode
	}

	var result *rider.Profile
	err := s.store.RunInTx(ctx, func(tx store.Store) error {
		rp, err := tx.Riders().GetProfileByUserID(ctx, caller.ID)
		if errors.Is(err, store.ErrNotFound) {
			return rider.ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		rp.Availability = available
		if mode != nil {
			rp.ServiceMode = *mode
		}
		rp.UpdatedAt = s.now()
		if err := tx.Riders().UpdateProfile(ctx, rp); err != nil {
			return err
		}
		result = rp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ensureRiderProfile creates a pending rider profile when the user has none
func (s *Service) ensureRiderProfile(ctx context.Context, tx store.Store, p *user.Profile) error {
	_, err := tx.Riders().GetProfileByUserID(ctx, p.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	now := s.now()
	return tx.Riders().CreateProfile(ctx, &rider.Profile{
		ID:                 uuid.New(),
		UserID:             p.ID,
		VerificationStatus: rider.VerificationPending,
		ServiceMode:        rider.ModeBoth,
		Availability:       false,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}
