package rider

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the admin-controlled gate for matching eligibility
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// ServiceMode restricts which service types a rider serves
type ServiceMode string

const (
	ModeRideOnly     ServiceMode = "ride_only"
	ModeDeliveryOnly ServiceMode = "delivery_only"
	ModeBoth         ServiceMode = "both"
)

// VehicleType represents vehicles a rider may operate
type VehicleType string

const (
	VehicleTricycle   VehicleType = "tricycle"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleCar        VehicleType = "car"
	VehicleTaxi       VehicleType = "taxi"
)

// Document is a submitted verification document reference
type Document struct {
	Label string `json:"label"`
	URI   string `json:"uri"`
}

// Profile is the rider-side profile, one-to-one with a user
type Profile struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"user_id"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	ServiceMode        ServiceMode        `json:"service_mode"`
	VehicleTypes       []VehicleType      `json:"vehicle_types"`
	Availability       bool               `json:"availability"`
	Documents          []Document         `json:"documents"`
	RejectionReason    string             `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

var (
	ErrProfileNotFound     = errors.New("rider profile not found")
	ErrNotVerified         = errors.New("rider verification required")
	ErrServiceModeMismatch = errors.New("request outside selected service mode")
	ErrVehicleTypeMismatch = errors.New("request outside rider vehicle types")
	ErrInvalidServiceMode  = errors.New("invalid service mode")
	ErrInvalidVehicleType  = errors.New("invalid vehicle type")
)

// IsValid validates the service mode
func (m ServiceMode) IsValid() bool {
	switch m {
	case ModeRideOnly, ModeDeliveryOnly, ModeBoth:
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

// IsApproved reports whether the rider passed verification
func (p *Profile) IsApproved() bool {
	return p.VerificationStatus == VerificationApproved
}

// HasVehicleType reports whether the rider operates the given vehicle type
func (p *Profile) HasVehicleType(v VehicleType) bool {
	for _, vt := range p.VehicleTypes {
		if vt == v {
			return true
		}
	}
	return false
}

// CanServe reports whether the service mode covers a service type. Service
// types are the request-side strings "ride" and "delivery".
func (m ServiceMode) CanServe(serviceType string) bool {
	switch m {
	case ModeBoth:
		return true
	case ModeRideOnly:
		return serviceType == "ride"
	case ModeDeliveryOnly:
		return serviceType == "delivery"
	}
	return false
}
