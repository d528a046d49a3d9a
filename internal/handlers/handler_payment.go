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

// paymentHandler handles HTTP requests related to payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
	idempotency    portssvc.IdempotencySvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(ps portssvc.PaymentSvcFacade, idem portssvc.IdempotencySvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
		idempotency:    idem,
	}
}

// registerPaymentRoutes registers routes related to payments.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade, idempotency portssvc.IdempotencySvcFacade) {
	h := newPaymentHandler(paymentService, idempotency)

	payments := rg.Group("/payments")
	{
		payments.POST("", h.recordPayment)
		payments.GET("/:id", h.getPayment)
		payments.POST("/:id/apply", h.applyPayment)
		payments.POST("/:id/void", h.voidPayment)
	}
}

// recordPayment godoc
// @Summary Record a payment
// @Description Records a received payment, applies it to the unit's open charges oldest-first unless autoApply=false, and queues its GL posting
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   Idempotency-Key header string true "Idempotency key (UUID)"
// @Param   payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} ErrorResponse "Invalid input or non-positive amount"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Unit not found"
// @Failure 409 {object} ErrorResponse "Idempotency key in flight"
// @Failure 500 {object} ErrorResponse "Failed to record payment"
// @Security BearerAuth
// @Router /payments [post]
func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordPayment", slog.String("error", err.Error()))
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

	result, replayed, err := h.idempotency.Execute(c.Request.Context(), associationID, "payment.record", key, func(ctx context.Context) (interface{}, error) {
		payment, err := h.paymentService.RecordPayment(ctx, associationID, req, userID)
		if err != nil {
			return nil, err
		}
		return dto.ToPaymentResponse(payment), nil
	})
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record payment")
		return
	}

	writeIdempotentJSON(c, http.StatusCreated, replayed, result)
}

// getPayment godoc
// @Summary Get a payment
// @Description Retrieves a payment with its charge applications
// @Tags payments
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} ErrorResponse "Payment not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve payment"
// @Security BearerAuth
// @Router /payments/{id} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), associationID, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		logger.Error("Failed to get payment", slog.String("payment_id", paymentID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payment"})
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// applyPayment godoc
// @Summary Apply a payment's unapplied remainder
// @Description Allocates the payment's unapplied amount to the unit's open charges oldest-first
// @Tags payments
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   Idempotency-Key header string true "Idempotency key (UUID)"
// @Param   id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} ErrorResponse "Payment not found"
// @Failure 409 {object} ErrorResponse "Payment not applicable or nothing unapplied"
// @Failure 500 {object} ErrorResponse "Failed to apply payment"
// @Security BearerAuth
// @Router /payments/{id}/apply [post]
func (h *paymentHandler) applyPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

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

	result, replayed, err := h.idempotency.Execute(c.Request.Context(), associationID, "payment.apply", key, func(ctx context.Context) (interface{}, error) {
		payment, err := h.paymentService.ApplyPayment(ctx, associationID, paymentID, userID)
		if err != nil {
			return nil, err
		}
		return dto.ToPaymentResponse(payment), nil
	})
	if err != nil {
		respondServiceError(c, logger, err, "Failed to apply payment")
		return
	}

	logger.Info("Payment applied", slog.String("payment_id", paymentID))
	writeIdempotentJSON(c, http.StatusOK, replayed, result)
}

// voidPayment godoc
// @Summary Void a payment
// @Description Unwinds the payment's applications, restores the affected charges, and queues the GL reversal
// @Tags payments
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   Idempotency-Key header string true "Idempotency key (UUID)"
// @Param   id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} ErrorResponse "Payment not found"
// @Failure 409 {object} ErrorResponse "Payment already voided"
// @Failure 500 {object} ErrorResponse "Failed to void payment"
// @Security BearerAuth
// @Router /payments/{id}/void [post]
func (h *paymentHandler) voidPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

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

	result, replayed, err := h.idempotency.Execute(c.Request.Context(), associationID, "payment.void", key, func(ctx context.Context) (interface{}, error) {
		payment, err := h.paymentService.VoidPayment(ctx, associationID, paymentID, userID)
		if err != nil {
			return nil, err
		}
		return dto.ToPaymentResponse(payment), nil
	})
	if err != nil {
		respondServiceError(c, logger, err, "Failed to void payment")
		return
	}

	logger.Info("Payment voided", slog.String("payment_id", paymentID))
	writeIdempotentJSON(c, http.StatusOK, replayed, result)
}
