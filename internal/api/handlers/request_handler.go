package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openrides/openrides/internal/api/dto"
	"github.com/openrides/openrides/internal/api/middleware"
	"github.com/openrides/openrides/internal/domain/bid"
	"github.com/openrides/openrides/internal/domain/request"
	"github.com/openrides/openrides/internal/service/ledger"
	"github.com/openrides/openrides/pkg/cache"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/websocket"
)

// CreateRequest handles POST /v1/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	var req dto.CreateRequestRequest
	if !h.bindJSON(c, &req) {
		return
	}
	caller := middleware.CallerProfile(c)

	// duplicate submits with the same Idempotency-Key are dropped
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		ok, err := cache.SetNX(c.Request.Context(), h.Redis,
			"idempotency:request:"+caller.ID.String()+":"+key, "1", h.CacheTTL.TTLIdempotency)
		if err != nil {
			h.Logger.Warn("idempotency check failed", logger.Err(err))
		} else if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "Duplicate request", "code": "CONFLICT"})
			return
		}
	}

	result, err := h.Ledger.Create(c.Request.Context(), caller, ledger.CreateInput{
		ServiceType:    request.ServiceType(req.ServiceType),
		VehicleType:    request.VehicleType(req.VehicleType),
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		BidAmount:      req.BidAmount,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListMyRequests handles GET /v1/requests
func (h *Handlers) ListMyRequests(c *gin.Context) {
	requests, err := h.Ledger.ListActiveForPassenger(c.Request.Context(), middleware.CallerProfile(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// CancelRequest handles POST /v1/requests/:id/cancel
func (h *Handlers) CancelRequest(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	cancelled, err := h.Ledger.Cancel(c.Request.Context(), middleware.CallerProfile(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": cancelled})
}

// ListEligibleRequests handles GET /v1/rider/requests
func (h *Handlers) ListEligibleRequests(c *gin.Context) {
	requests, err := h.Negotiation.ListEligibleForRider(c.Request.Context(), middleware.CallerProfile(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ListRequestBids handles GET /v1/requests/:id/bids
func (h *Handlers) ListRequestBids(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	bids, err := h.Negotiation.ListBids(c.Request.Context(), middleware.CallerProfile(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bids": bids})
}

// RiderRespond handles POST /v1/requests/:id/respond
func (h *Handlers) RiderRespond(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req dto.NegotiationActionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	created, err := h.Negotiation.RiderRespond(c.Request.Context(), middleware.CallerProfile(c), id, bid.Action(req.Action), req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bid": created})
}

// PassengerRespondToBid handles POST /v1/bids/:id/respond
func (h *Handlers) PassengerRespondToBid(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req dto.NegotiationActionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.Negotiation.PassengerRespondToBid(c.Request.Context(), middleware.CallerProfile(c), id, bid.Action(req.Action), req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if result.Trip != nil {
		h.Hub.BroadcastToTrip(result.Trip.ID.String(), websocket.Message{
			Type: "trip_created",
			Data: result.Trip,
		})
		h.Hub.SendToUser(result.Trip.RiderID.String(), websocket.Message{
			Type: "bid_accepted",
			Data: result,
		})
	}
	c.JSON(http.StatusOK, result)
}
