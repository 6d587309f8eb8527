package bid

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the state of a single bid in the negotiation chain
type Status string

const (
	StatusActive    Status = "active"
	StatusCountered Status = "countered"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// Action is a negotiation move by a rider or a passenger
type Action string

const (
	ActionAccept  Action = "accept"
	ActionCounter Action = "counter"
	ActionReject  Action = "reject"
)

// Bid is an append-only price offer against a service request. Counter
// offers link backward to the bid they answer, forming an acyclic chain.
type Bid struct {
	ID        uuid.UUID  `json:"id"`
	RequestID uuid.UUID  `json:"request_id"`
	RiderID   uuid.UUID  `json:"rider_id"`
	Amount    float64    `json:"amount"`
	Status    Status     `json:"status"`
	CounterOf *uuid.UUID `json:"counter_of,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

var (
	ErrNotFound      = errors.New("bid not found")
	ErrResolved      = errors.New("bid already resolved")
	ErrInvalidAction = errors.New("invalid negotiation action")
)

// IsValid validates the action
func (a Action) IsValid() bool {
	switch a {
	case ActionAccept, ActionCounter, ActionReject:
		return true
	}
	return false
}

// IsDeclined reports whether the bid was turned down and can no longer be
// matched. An accepted bid stays actionable so the other side can confirm it.
func (s Status) IsDeclined() bool {
	switch s {
	case StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// StatusForRiderAction maps a rider's negotiation move to the status of the
// bid row it inserts.
func StatusForRiderAction(a Action) Status {
	switch a {
	case ActionAccept:
		return StatusAccepted
	case ActionReject:
		return StatusRejected
	default:
		return StatusCountered
	}
}
