package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openrides/openrides/internal/api/dto"
	"github.com/openrides/openrides/internal/api/middleware"
	"github.com/openrides/openrides/internal/domain/governance"
	govsvc "github.com/openrides/openrides/internal/service/governance"
	"github.com/openrides/openrides/pkg/cache"
	"github.com/openrides/openrides/pkg/logger"
)

const dashboardCacheKey = "admin:dashboard"

// GetDashboard handles GET /v1/admin/dashboard
func (h *Handlers) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := cache.Get(ctx, h.Redis, dashboardCacheKey); err == nil {
		var d govsvc.Dashboard
		if json.Unmarshal([]byte(cached), &d) == nil {
			c.JSON(http.StatusOK, gin.H{"dashboard": d, "cached": true})
			return
		}
	}

	d, err := h.Governance.GetDashboard(ctx, middleware.CallerProfile(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if data, err := json.Marshal(d); err == nil {
		if err := cache.SetWithExpiry(ctx, h.Redis, dashboardCacheKey, data, h.CacheTTL.TTLDashboard); err != nil {
			h.Logger.Warn("failed to cache dashboard", logger.Err(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": d, "cached": false})
}

// ListPendingVerifications handles GET /v1/admin/verifications
func (h *Handlers) ListPendingVerifications(c *gin.Context) {
	pending, err := h.Governance.ListPendingVerifications(c.Request.Context(), middleware.CallerProfile(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verifications": pending})
}

// ReviewVerification handles POST /v1/admin/verifications/:id/review
func (h *Handlers) ReviewVerification(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req dto.VerificationReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.Governance.ReviewVerification(c.Request.Context(), middleware.CallerProfile(c), id, req.Decision, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rider_profile": updated})
}

// OpenDispute handles POST /v1/disputes
func (h *Handlers) OpenDispute(c *gin.Context) {
	var req dto.OpenDisputeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	in := govsvc.OpenDisputeInput{Reason: req.Reason}
	if req.TripID != nil {
		id, err := uuid.Parse(*req.TripID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip_id"})
			return
		}
		in.TripID = &id
	}
	if req.TargetUserID != nil {
		id, err := uuid.Parse(*req.TargetUserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target_user_id"})
			return
		}
		in.TargetUserID = &id
	}

	d, err := h.Governance.OpenDispute(c.Request.Context(), middleware.CallerProfile(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dispute": d})
}

// ListDisputes handles GET /v1/admin/disputes
func (h *Handlers) ListDisputes(c *gin.Context) {
	disputes, err := h.Governance.ListOpenDisputes(c.Request.Context(), middleware.CallerProfile(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disputes": disputes})
}

// ResolveDispute handles POST /v1/admin/disputes/:id/resolve
func (h *Handlers) ResolveDispute(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req dto.ResolveDisputeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resolved, err := h.Governance.ResolveDispute(c.Request.Context(), middleware.CallerProfile(c), id, req.Resolution)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dispute": resolved})
}

// ModerateUser handles POST /v1/admin/users/:id/moderate
func (h *Handlers) ModerateUser(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req dto.ModerationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err := h.Governance.ModerateUser(c.Request.Context(), middleware.CallerProfile(c), id, governance.ModerationVerb(req.Action), req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
