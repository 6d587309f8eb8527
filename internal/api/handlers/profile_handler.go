package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openrides/openrides/internal/api/dto"
	"github.com/openrides/openrides/internal/api/middleware"
	"github.com/openrides/openrides/internal/domain/rider"
	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/service/profile"
)

func toOnboardingInput(req dto.RiderOnboardingRequest) profile.OnboardingInput {
	in := profile.OnboardingInput{
		ServiceMode: rider.ServiceMode(req.ServiceMode),
		Phone:       req.Phone,
	}
	for _, v := range req.VehicleTypes {
		in.VehicleTypes = append(in.VehicleTypes, rider.VehicleType(v))
	}
	for _, d := range req.Documents {
		in.Documents = append(in.Documents, rider.Document{Label: d.Label, URI: d.URI})
	}
	return in
}

// GetMe handles GET /v1/me
func (h *Handlers) GetMe(c *gin.Context) {
	caller := middleware.CallerProfile(c)

	riderProfile, err := h.Profiles.GetRiderProfile(c.Request.Context(), caller)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{"profile": caller}
	if riderProfile != nil {
		resp["rider_profile"] = riderProfile
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateMe handles PATCH /v1/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.Profiles.UpdateProfile(c.Request.Context(), middleware.CallerProfile(c), req.Name, req.Phone)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": updated})
}

// SwitchRole handles POST /v1/me/role
func (h *Handlers) SwitchRole(c *gin.Context) {
	var req dto.SwitchRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.Profiles.SwitchActiveRole(c.Request.Context(), middleware.CallerProfile(c), user.Role(req.Role))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": updated})
}

// FinalizeRole handles POST /v1/me/role/finalize
func (h *Handlers) FinalizeRole(c *gin.Context) {
	var req dto.FinalizeRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.Profiles.FinalizeSignupRole(c.Request.Context(), middleware.CallerProfile(c), user.Role(req.Role))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": updated})
}

// RiderOnboarding handles POST /v1/rider/onboarding
func (h *Handlers) RiderOnboarding(c *gin.Context) {
	var req dto.RiderOnboardingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	in := toOnboardingInput(req)
	riderProfile, err := h.Profiles.CompleteRiderOnboarding(c.Request.Context(), middleware.CallerProfile(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rider_profile": riderProfile})
}

// SetAvailability handles POST /v1/rider/availability
func (h *Handlers) SetAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	var mode *rider.ServiceMode
	if req.ServiceMode != nil {
		m := rider.ServiceMode(*req.ServiceMode)
		mode = &m
	}
	riderProfile, err := h.Profiles.SetRiderAvailability(c.Request.Context(), middleware.CallerProfile(c), req.Available, mode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rider_profile": riderProfile})
}
