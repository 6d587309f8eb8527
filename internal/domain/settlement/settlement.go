package settlement

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EarningKind distinguishes real trip earnings from cancellation markers
type EarningKind string

const (
	EarningTrip EarningKind = "trip"
	// EarningCancellationFlag is a zero-amount marker recording that a rider
	// is owed consideration for a passenger cancelling a matched trip.
	EarningCancellationFlag EarningKind = "cancellation_flag"
)

// Earning is an append-only ledger entry for a rider
type Earning struct {
	ID        uuid.UUID   `json:"id"`
	RiderID   uuid.UUID   `json:"rider_id"`
	TripID    uuid.UUID   `json:"trip_id"`
	Amount    float64     `json:"amount"`
	Kind      EarningKind `json:"kind"`
	CreatedAt time.Time   `json:"created_at"`
}

// Donation is an optional passenger gratuity recorded after trip completion
type Donation struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	RiderID     uuid.UUID `json:"rider_id"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// Feedback is a passenger rating for a completed trip
type Feedback struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	RiderID     uuid.UUID `json:"rider_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidDonation = errors.New("donation amount must not be negative")
)
