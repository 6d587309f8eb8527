package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role represents a capability a user can act under
type Role string

const (
	RolePassenger Role = "passenger"
	RoleRider     Role = "rider"
)

// Status represents account standing
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Profile represents a user profile. Created on first authentication,
// never deleted.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Roles      []Role    `json:"roles"`
	ActiveRole Role      `json:"active_role"`
	IsAdmin    bool      `json:"is_admin"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var (
	ErrProfileNotFound = errors.New("user profile not found")
	ErrMissingRole     = errors.New("caller lacks required role")
	ErrNotAdmin        = errors.New("admin privileges required")
	ErrSuspended       = errors.New("account suspended")
	ErrActiveTrip      = errors.New("cannot switch roles during an active trip")
	ErrInvalidRole     = errors.New("invalid role")
)

// IsValid validates the role
func (r Role) IsValid() bool {
	switch r {
	case RolePassenger, RoleRider:
		return true
	}
	return false
}

// HasRole reports whether the profile holds the given role
func (p *Profile) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GrantRole adds a role to the profile's role set if absent
func (p *Profile) GrantRole(role Role) {
	if !p.HasRole(role) {
		p.Roles = append(p.Roles, role)
	}
}

// RequireRole returns ErrMissingRole unless the profile holds the role
func RequireRole(p *Profile, role Role) error {
	if !p.HasRole(role) {
		return ErrMissingRole
	}
	return nil
}

// RequireAdmin returns ErrNotAdmin unless the profile carries the admin flag
func RequireAdmin(p *Profile) error {
	if !p.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}
