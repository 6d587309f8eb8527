package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/openrides/openrides/internal/config"
	"github.com/openrides/openrides/internal/domain/bid"
	"github.com/openrides/openrides/internal/domain/governance"
	"github.com/openrides/openrides/internal/domain/request"
	"github.com/openrides/openrides/internal/domain/rider"
	"github.com/openrides/openrides/internal/domain/settlement"
	"github.com/openrides/openrides/internal/domain/trip"
	"github.com/openrides/openrides/internal/domain/user"
	govsvc "github.com/openrides/openrides/internal/service/governance"
	"github.com/openrides/openrides/internal/service/ledger"
	"github.com/openrides/openrides/internal/service/negotiation"
	"github.com/openrides/openrides/internal/service/profile"
	setsvc "github.com/openrides/openrides/internal/service/settlement"
	"github.com/openrides/openrides/internal/service/tripflow"
	apperrors "github.com/openrides/openrides/pkg/errors"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Profiles    *profile.Service
	Ledger      *ledger.Service
	Negotiation *negotiation.Service
	Trips       *tripflow.Service
	Settlement  *setsvc.Service
	Governance  *govsvc.Service
	Redis       *redis.Client
	Hub         *websocket.Hub
	Logger      *logger.Logger
	WSConfig    config.WebSocketConfig
	CacheTTL    config.CacheConfig
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	profiles *profile.Service,
	ledgerSvc *ledger.Service,
	negotiationSvc *negotiation.Service,
	trips *tripflow.Service,
	settlementSvc *setsvc.Service,
	governanceSvc *govsvc.Service,
	redisClient *redis.Client,
	hub *websocket.Hub,
	log *logger.Logger,
	wsCfg config.WebSocketConfig,
	cacheCfg config.CacheConfig,
) *Handlers {
	return &Handlers{
		Profiles:    profiles,
		Ledger:      ledgerSvc,
		Negotiation: negotiationSvc,
		Trips:       trips,
		Settlement:  settlementSvc,
		Governance:  governanceSvc,
		Redis:       redisClient,
		Hub:         hub,
		Logger:      log,
		WSConfig:    wsCfg,
		CacheTTL:    cacheCfg,
	}
}

var validationErrs = []error{
	request.ErrInvalidService,
	request.ErrInvalidVehicle,
	request.ErrInvalidAmount,
	ledger.ErrMissingAddress,
	bid.ErrInvalidAction,
	trip.ErrInvalidStatus,
	tripflow.ErrInvalidCoordinates,
	settlement.ErrInvalidRating,
	settlement.ErrInvalidDonation,
	user.ErrInvalidRole,
	rider.ErrInvalidServiceMode,
	rider.ErrInvalidVehicleType,
	governance.ErrEmptyReason,
	governance.ErrInvalidModeration,
	govsvc.ErrInvalidDecision,
}

var unauthorizedErrs = []error{
	user.ErrMissingRole,
	user.ErrNotAdmin,
	user.ErrSuspended,
	request.ErrNotOwner,
	trip.ErrNotParticipant,
	rider.ErrNotVerified,
	rider.ErrServiceModeMismatch,
	rider.ErrVehicleTypeMismatch,
}

var notFoundErrs = []error{
	user.ErrProfileNotFound,
	rider.ErrProfileNotFound,
	request.ErrNotFound,
	bid.ErrNotFound,
	trip.ErrNotFound,
	governance.ErrDisputeNotFound,
}

var conflictErrs = []error{
	request.ErrNotOpen,
	bid.ErrResolved,
	trip.ErrTerminal,
	trip.ErrInvalidTransition,
	user.ErrActiveTrip,
	governance.ErrDisputeResolved,
	setsvc.ErrTripNotCompleted,
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps a service error to its HTTP response
func (h *Handlers) respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	switch {
	case matchesAny(err, validationErrs):
		appErr = apperrors.Validation(err.Error(), err)
	case matchesAny(err, unauthorizedErrs):
		appErr = apperrors.Unauthorized(err.Error(), err)
	case matchesAny(err, notFoundErrs):
		appErr = apperrors.NotFound(err.Error(), err)
	case matchesAny(err, conflictErrs):
		appErr = apperrors.Conflict(err.Error(), err)
	default:
		h.Logger.Error("request failed", logger.Err(err))
		appErr = apperrors.GetAppError(err)
	}
	c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
}

func (h *Handlers) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return false
	}
	return true
}

func (h *Handlers) idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id parameter"})
		return uuid.Nil, false
	}
	return id, true
}
