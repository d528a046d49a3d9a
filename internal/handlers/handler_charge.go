package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/strataops/strataledger/internal/apperrors"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/dto"
	"github.com/strataops/strataledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// chargeHandler handles HTTP requests related to charges.
type chargeHandler struct {
	chargeService portssvc.ChargeSvcFacade
	idempotency   portssvc.IdempotencySvcFacade
}

// newChargeHandler creates a new chargeHandler.
func newChargeHandler(cs portssvc.ChargeSvcFacade, idem portssvc.IdempotencySvcFacade) *chargeHandler {
	return &chargeHandler{
		chargeService: cs,
		idempotency:   idem,
	}
}

// registerChargeRoutes registers routes related to charges.
func registerChargeRoutes(rg *gin.RouterGroup, chargeService portssvc.ChargeSvcFacade, idempotency portssvc.IdempotencySvcFacade) {
	h := newChargeHandler(chargeService, idempotency)

	charges := rg.Group("/charges")
	{
		charges.POST("", h.createCharge)
		charges.GET("/:id", h.getCharge)
		charges.POST("/:id/writeoff", h.writeOffCharge)
		charges.POST("/:id/credit", h.creditCharge)
	}
}

// createCharge godoc
// @Summary Bill a charge to a unit
// @Description Creates a BILLED charge against a unit and queues its receivable GL posting
// @Tags charges
// @Accept  json
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   Idempotency-Key header string true "Idempotency key (UUID)"
// @Param   charge body dto.CreateChargeRequest true "Charge details"
// @Success 201 {object} dto.ChargeResponse
// @Failure 400 {object} ErrorResponse "Invalid input or non-positive amount"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Unit or assessment type not found"
// @Failure 409 {object} ErrorResponse "Idempotency key in flight"
// @Failure 500 {object} ErrorResponse "Failed to create charge"
// @Security BearerAuth
// @Router /charges [post]
func (h *chargeHandler) createCharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCharge", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}
	key, ok := idempotencyKeyFromHeader(c)
	if !ok {
		return
	}

	result, replayed, err := h.idempotency.Execute(c.Request.Context(), associationID, "charge.create", key, func(ctx context.Context) (interface{}, error) {
		charge, err := h.chargeService.CreateCharge(ctx, associationID, req, userID)
		if err != nil {
			return nil, err
		}
		return dto.ToChargeResponse(charge), nil
	})
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create charge")
		return
	}

	writeIdempotentJSON(c, http.StatusCreated, replayed, result)
}

// getCharge godoc
// @Summary Get a charge
// @Description Retrieves a specific charge by its ID
// @Tags charges
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   id path string true "Charge ID"
// @Success 200 {object} dto.ChargeResponse
// @Failure 404 {object} ErrorResponse "Charge not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve charge"
// @Security BearerAuth
// @Router /charges/{id} [get]
func (h *chargeHandler) getCharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	chargeID := c.Param("id")

	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	charge, err := h.chargeService.GetChargeByID(c.Request.Context(), associationID, chargeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Charge not found"})
			return
		}
		logger.Error("Failed to get charge", slog.String("charge_id", chargeID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve charge"})
		return
	}

	c.JSON(http.StatusOK, dto.ToChargeResponse(charge))
}

// writeOffCharge godoc
// @Summary Write off a charge
// @Description Marks the remaining balance uncollectible and queues the bad-debt GL posting
// @Tags charges
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   Idempotency-Key header string true "Idempotency key (UUID)"
// @Param   id path string true "Charge ID"
// @Success 200 {object} dto.ChargeResponse
// @Failure 404 {object} ErrorResponse "Charge not found"
// @Failure 409 {object} ErrorResponse "Charge already written off or credited"
// @Failure 500 {object} ErrorResponse "Failed to write off charge"
// @Security BearerAuth
// @Router /charges/{id}/writeoff [post]
func (h *chargeHandler) writeOffCharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	chargeID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}
	key, ok := idempotencyKeyFromHeader(c)
	if !ok {
		return
	}

	result, replayed, err := h.idempotency.Execute(c.Request.Context(), associationID, "charge.writeoff", key, func(ctx context.Context) (interface{}, error) {
		charge, err := h.chargeService.WriteOffCharge(ctx, associationID, chargeID, userID)
		if err != nil {
			return nil, err
		}
		return dto.ToChargeResponse(charge), nil
	})
	if err != nil {
		respondServiceError(c, logger, err, "Failed to write off charge")
		return
	}

	logger.Info("Charge written off", slog.String("charge_id", chargeID))
	writeIdempotentJSON(c, http.StatusOK, replayed, result)
}

// creditCharge godoc
// @Summary Credit a charge
// @Description Cancels a charge with an offsetting credit
// @Tags charges
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   Idempotency-Key header string true "Idempotency key (UUID)"
// @Param   id path string true "Charge ID"
// @Success 200 {object} dto.ChargeResponse
// @Failure 404 {object} ErrorResponse "Charge not found"
// @Failure 409 {object} ErrorResponse "Charge already written off or credited"
// @Failure 500 {object} ErrorResponse "Failed to credit charge"
// @Security BearerAuth
// @Router /charges/{id}/credit [post]
func (h *chargeHandler) creditCharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	chargeID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}
	key, ok := idempotencyKeyFromHeader(c)
	if !ok {
		return
	}

	result, replayed, err := h.idempotency.Execute(c.Request.Context(), associationID, "charge.credit", key, func(ctx context.Context) (interface{}, error) {
		charge, err := h.chargeService.CreditCharge(ctx, associationID, chargeID, userID)
		if err != nil {
			return nil, err
		}
		return dto.ToChargeResponse(charge), nil
	})
	if err != nil {
		respondServiceError(c, logger, err, "Failed to credit charge")
		return
	}

	logger.Info("Charge credited", slog.String("charge_id", chargeID))
	writeIdempotentJSON(c, http.StatusOK, replayed, result)
}
