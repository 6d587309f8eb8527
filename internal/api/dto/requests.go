package dto

// UpdateProfileRequest is the body for PATCH /v1/me
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// SwitchRoleRequest is the body for POST /v1/me/role
type SwitchRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// FinalizeRoleRequest is the body for POST /v1/me/role/finalize
type FinalizeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// RiderOnboardingRequest is the body for POST /v1/rider/onboarding
type RiderOnboardingRequest struct {
	ServiceMode  string            `json:"service_mode" binding:"required"`
	VehicleTypes []string          `json:"vehicle_types" binding:"required"`
	Phone        string            `json:"phone"`
	Documents    []DocumentRequest `json:"documents"`
}

// DocumentRequest is one verification document reference
type DocumentRequest struct {
	Label string `json:"label" binding:"required"`
	URI   string `json:"uri" binding:"required"`
}

// AvailabilityRequest is the body for POST /v1/rider/availability
type AvailabilityRequest struct {
	Available   bool    `json:"available"`
	ServiceMode *string `json:"service_mode"`
}

// CreateRequestRequest is the body for POST /v1/requests
type CreateRequestRequest struct {
	ServiceType    string  `json:"service_type" binding:"required"`
	VehicleType    string  `json:"vehicle_type" binding:"required"`
	PickupAddress  string  `json:"pickup_address" binding:"required"`
	DropoffAddress string  `json:"dropoff_address" binding:"required"`
	BidAmount      float64 `json:"bid_amount" binding:"required"`
}

// NegotiationActionRequest is the body for rider and passenger negotiation
// moves
type NegotiationActionRequest struct {
	Action string   `json:"action" binding:"required"`
	Amount *float64 `json:"amount"`
}

// TripStatusRequest is the body for POST /v1/trips/:id/status
type TripStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TripLocationRequest is the body for POST /v1/trips/:id/location
type TripLocationRequest struct {
	Latitude  float64  `json:"latitude" binding:"required"`
	Longitude float64  `json:"longitude" binding:"required"`
	Heading   *float64 `json:"heading"`
	Speed     *float64 `json:"speed"`
}

// TripFeedbackRequest is the body for POST /v1/trips/:id/feedback
type TripFeedbackRequest struct {
	Donation float64 `json:"donation"`
	Rating   int     `json:"rating" binding:"required"`
	Comment  string  `json:"comment"`
}

// VerificationReviewRequest is the body for POST /v1/admin/verifications/:id
type VerificationReviewRequest struct {
	Decision string `json:"decision" binding:"required"`
	Reason   string `json:"reason"`
}

// OpenDisputeRequest is the body for POST /v1/disputes
type OpenDisputeRequest struct {
	TripID       *string `json:"trip_id"`
	TargetUserID *string `json:"target_user_id"`
	Reason       string  `json:"reason" binding:"required"`
}

// ResolveDisputeRequest is the body for POST /v1/admin/disputes/:id/resolve
type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

// ModerationRequest is the body for POST /v1/admin/users/:id/moderate
type ModerationRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}
