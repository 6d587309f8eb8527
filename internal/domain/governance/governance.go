package governance

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DisputeStatus represents dispute progression
type DisputeStatus string

const (
	DisputeOpen          DisputeStatus = "open"
	DisputeInvestigating DisputeStatus = "investigating"
	DisputeResolved      DisputeStatus = "resolved"
)

// Dispute is a grievance opened by a user, optionally tied to a trip
type Dispute struct {
	ID           uuid.UUID     `json:"id"`
	TripID       *uuid.UUID    `json:"trip_id,omitempty"`
	OpenedByID   uuid.UUID     `json:"opened_by_id"`
	TargetUserID *uuid.UUID    `json:"target_user_id,omitempty"`
	Reason       string        `json:"reason"`
	Status       DisputeStatus `json:"status"`
	Resolution   string        `json:"resolution,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ModerationVerb is an admin action against a user
type ModerationVerb string

const (
	ModerationWarn    ModerationVerb = "warn"
	ModerationSuspend ModerationVerb = "suspend"
	ModerationBan     ModerationVerb = "ban"
)

// ModerationAction is an append-only record of an admin moderation decision
type ModerationAction struct {
	ID           uuid.UUID      `json:"id"`
	AdminID      uuid.UUID      `json:"admin_id"`
	TargetUserID uuid.UUID      `json:"target_user_id"`
	Action       ModerationVerb `json:"action"`
	Note         string         `json:"note,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLog records authorized write paths for later review
type AuditLog struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	Action     string     `json:"action"`
	EntityType string     `json:"entity_type"`
	EntityID   string     `json:"entity_id,omitempty"`
	Metadata   string     `json:"metadata,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

var (
	ErrDisputeNotFound   = errors.New("dispute not found")
	ErrDisputeResolved   = errors.New("dispute already resolved")
	ErrInvalidModeration = errors.New("invalid moderation action")
	ErrEmptyReason       = errors.New("reason must not be empty")
)

// IsValid validates the moderation verb
func (v ModerationVerb) IsValid() bool {
	switch v {
	case ModerationWarn, ModerationSuspend, ModerationBan:
		return true
	}
	return false
}

// Suspends reports whether the verb flips the target account to suspended
func (v ModerationVerb) Suspends() bool {
	return v == ModerationSuspend || v == ModerationBan
}
