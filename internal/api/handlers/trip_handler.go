package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openrides/openrides/internal/api/dto"
	"github.com/openrides/openrides/internal/api/middleware"
	"github.com/openrides/openrides/internal/domain/trip"
	setsvc "github.com/openrides/openrides/internal/service/settlement"
	"github.com/openrides/openrides/internal/service/tripflow"
	"github.com/openrides/openrides/pkg/websocket"
)

// GetTrip handles GET /v1/trips/:id
func (h *Handlers) GetTrip(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	t, err := h.Trips.Get(c.Request.Context(), middleware.CallerProfile(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": t})
}

// UpdateTripStatus handles POST /v1/trips/:id/status
func (h *Handlers) UpdateTripStatus(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req dto.TripStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.Trips.UpdateStatus(c.Request.Context(), middleware.CallerProfile(c), id, trip.Status(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Hub.BroadcastToTrip(updated.ID.String(), websocket.Message{
		Type: "trip_status",
		Data: updated,
	})
	c.JSON(http.StatusOK, gin.H{"trip": updated})
}

// PublishTripLocation handles POST /v1/trips/:id/location
func (h *Handlers) PublishTripLocation(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req dto.TripLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ping, err := h.Trips.PublishLocation(c.Request.Context(), middleware.CallerProfile(c), id, tripflow.LocationInput{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Heading:   req.Heading,
		Speed:     req.Speed,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Hub.BroadcastToTrip(id.String(), websocket.Message{
		Type: "trip_location",
		Data: ping,
	})
	c.JSON(http.StatusAccepted, gin.H{"location": ping})
}

// SubmitTripFeedback handles POST /v1/trips/:id/feedback
func (h *Handlers) SubmitTripFeedback(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req dto.TripFeedbackRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err := h.Settlement.SubmitDonationAndFeedback(c.Request.Context(), middleware.CallerProfile(c), id, setsvc.SubmitInput{
		Donation: req.Donation,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// ListRiderTrips handles GET /v1/rider/trips
func (h *Handlers) ListRiderTrips(c *gin.Context) {
	history, err := h.Trips.ListRiderHistory(c.Request.Context(), middleware.CallerProfile(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
