package request

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the service request lifecycle
type Status string

const (
	StatusOpen        Status = "open"
	StatusNegotiating Status = "negotiating"
	StatusMatched     Status = "matched"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusExpired     Status = "expired"
)

// ServiceType distinguishes rides from deliveries
type ServiceType string

const (
	ServiceRide     ServiceType = "ride"
	ServiceDelivery ServiceType = "delivery"
)

// VehicleType matches rider vehicle types
type VehicleType string

const (
	VehicleTricycle   VehicleType = "tricycle"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleCar        VehicleType = "car"
	VehicleTaxi       VehicleType = "taxi"
)

// ServiceRequest is a passenger's posted need with a bid price
type ServiceRequest struct {
	ID               uuid.UUID   `json:"id"`
	PassengerID      uuid.UUID   `json:"passenger_id"`
	ServiceType      ServiceType `json:"service_type"`
	VehicleType      VehicleType `json:"vehicle_type"`
	PickupAddress    string      `json:"pickup_address"`
	DropoffAddress   string      `json:"dropoff_address"`
	BidAmount        float64     `json:"bid_amount"`
	BidTooLowWarning bool        `json:"bid_too_low_warning"`
	Status           Status      `json:"status"`
	MatchedRiderID   *uuid.UUID  `json:"matched_rider_id,omitempty"`
	ExpiresAt        time.Time   `json:"expires_at"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

var (
	ErrNotFound       = errors.New("request not found")
	ErrNotOpen        = errors.New("request is not open for responses")
	ErrNotOwner       = errors.New("request belongs to another passenger")
	ErrInvalidService = errors.New("invalid service type")
	ErrInvalidVehicle = errors.New("invalid vehicle type")
	ErrInvalidAmount  = errors.New("bid amount must be positive")
)

// IsValid validates the service type
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceRide, ServiceDelivery:
		return true
	}
	return false
}

// IsValid validates the vehicle type
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleTricycle, VehicleMotorcycle, VehicleCar, VehicleTaxi:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// AcceptsBids reports whether riders may still respond to the request
func (r *ServiceRequest) AcceptsBids() bool {
	return r.Status == StatusOpen || r.Status == StatusNegotiating
}

// IsExpired reports whether the request's TTL has passed at the given instant
func (r *ServiceRequest) IsExpired(at time.Time) bool {
	return !r.ExpiresAt.After(at)
}
