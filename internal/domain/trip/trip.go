package trip

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents trip progression from match to drop-off
type Status string

const (
	StatusEnRoutePickup  Status = "en_route_pickup"
	StatusArrivedPickup  Status = "arrived_pickup"
	StatusInTransit      Status = "in_transit"
	StatusArrivedDropoff Status = "arrived_dropoff"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// Trip is the executable unit of work created once a bid is accepted.
// Its request linkage is immutable.
type Trip struct {
	ID               uuid.UUID  `json:"id"`
	RequestID        uuid.UUID  `json:"request_id"`
	PassengerID      uuid.UUID  `json:"passenger_id"`
	RiderID          uuid.UUID  `json:"rider_id"`
	AgreedAmount     float64    `json:"agreed_amount"`
	Status           Status     `json:"status"`
	CompensationFlag bool       `json:"compensation_flag"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// LocationPing is write-only telemetry appended by the rider while the trip
// is live. The core never reads it back; a map UI consumes it.
type LocationPing struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   *float64  `json:"heading,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrNotFound          = errors.New("trip not found")
	ErrNotParticipant    = errors.New("caller is not a participant of the trip")
	ErrTerminal          = errors.New("trip already reached a terminal status")
	ErrInvalidStatus     = errors.New("invalid trip status")
	ErrInvalidTransition = errors.New("invalid trip status transition")
)

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusEnRoutePickup, StatusArrivedPickup, StatusInTransit,
		StatusArrivedDropoff, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// next holds the linear progression of a live trip
var next = map[Status]Status{
	StatusEnRoutePickup:  StatusArrivedPickup,
	StatusArrivedPickup:  StatusInTransit,
	StatusInTransit:      StatusArrivedDropoff,
	StatusArrivedDropoff: StatusCompleted,
}

// CanTransition reports whether a trip may move from its current status to
// the target. Cancellation is reachable from any non-terminal status.
func (t *Trip) CanTransition(target Status) bool {
	if t.Status.IsTerminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return next[t.Status] == target
}

// IsParticipant reports whether the user is the trip's rider or passenger
func (t *Trip) IsParticipant(userID uuid.UUID) bool {
	return t.RiderID == userID || t.PassengerID == userID
}
