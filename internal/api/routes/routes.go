package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/openrides/openrides/internal/api/handlers"
	"github.com/openrides/openrides/internal/api/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, auth gin.HandlerFunc, nrApp *newrelic.Application) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Operator endpoints
	internal := r.Group("/internal")
	{
		internal.POST("/expire-stale", h.ExpireStaleRequests)
	}

	// API v1 routes, all authenticated
	v1 := r.Group("/v1")
	v1.Use(auth)
	{
		// Live event feed
		v1.GET("/ws", h.HandleWebSocket)

		// Profile endpoints
		me := v1.Group("/me")
		{
			me.GET("", h.GetMe)
			me.PATCH("", h.UpdateMe)
			me.POST("/role", h.SwitchRole)
			me.POST("/role/finalize", h.FinalizeRole)
		}

		// Rider-side endpoints
		rider := v1.Group("/rider")
		{
			rider.POST("/onboarding", h.RiderOnboarding)
			rider.POST("/availability", h.SetAvailability)
			rider.GET("/requests", h.ListEligibleRequests)
			rider.GET("/trips", h.ListRiderTrips)
		}

		// Service request endpoints
		requests := v1.Group("/requests")
		{
			requests.POST("", h.CreateRequest)
			requests.GET("", h.ListMyRequests)
			requests.POST("/:id/cancel", h.CancelRequest)
			requests.GET("/:id/bids", h.ListRequestBids)
			requests.POST("/:id/respond", h.RiderRespond)
		}

		// Bid endpoints
		v1.POST("/bids/:id/respond", h.PassengerRespondToBid)

		// Trip endpoints
		trips := v1.Group("/trips")
		{
			trips.GET("/:id", h.GetTrip)
			trips.POST("/:id/status", h.UpdateTripStatus)
			trips.POST("/:id/location", h.PublishTripLocation)
			trips.POST("/:id/feedback", h.SubmitTripFeedback)
		}

		// Disputes can be opened by anyone
		v1.POST("/disputes", h.OpenDispute)

		// Admin endpoints
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/dashboard", h.GetDashboard)
			admin.GET("/verifications", h.ListPendingVerifications)
			admin.POST("/verifications/:id/review", h.ReviewVerification)
			admin.GET("/disputes", h.ListDisputes)
			admin.POST("/disputes/:id/resolve", h.ResolveDispute)
			admin.POST("/users/:id/moderate", h.ModerateUser)
		}
	}
}
