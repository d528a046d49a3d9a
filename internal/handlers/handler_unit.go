package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/strataops/strataledger/internal/apperrors"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/dto"
	"github.com/strataops/strataledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// unitHandler handles HTTP requests for units and the sub-ledger views hanging
// off them (balances, charge history, payment history).
type unitHandler struct {
	associationService portssvc.AssociationSvcFacade
	chargeService      portssvc.ChargeSvcFacade
	paymentService     portssvc.PaymentSvcFacade
}

// newUnitHandler creates a new unitHandler.
func newUnitHandler(as portssvc.AssociationSvcFacade, cs portssvc.ChargeSvcFacade, ps portssvc.PaymentSvcFacade) *unitHandler {
	return &unitHandler{
		associationService: as,
		chargeService:      cs,
		paymentService:     ps,
	}
}

// registerUnitRoutes registers the association-scoped unit routes, plus the
// assessment-type listing used when billing charges.
func registerUnitRoutes(rg *gin.RouterGroup, associationService portssvc.AssociationSvcFacade, chargeService portssvc.ChargeSvcFacade, paymentService portssvc.PaymentSvcFacade) {
	h := newUnitHandler(associationService, chargeService, paymentService)

	units := rg.Group("/units")
	{
		units.POST("", h.createUnit)
		units.GET("", h.listUnits)
		units.GET("/:unitID", h.getUnit)
		units.GET("/:unitID/balance", h.getUnitBalance)
		units.GET("/:unitID/charges", h.listUnitCharges)
		units.GET("/:unitID/payments", h.listUnitPayments)
	}

	rg.GET("/assessment-types", h.listAssessmentTypes)
}

// createUnit godoc
// @Summary Add a unit to the association
// @Description Creates a billable unit (apartment, lot, parking space) in the scoped association.
// @Tags units
// @Accept  json
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   unit body dto.CreateUnitRequest true "Unit details"
// @Success 201 {object} dto.UnitResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Unit number already exists"
// @Failure 500 {object} ErrorResponse "Failed to create unit"
// @Security BearerAuth
// @Router /units [post]
func (h *unitHandler) createUnit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateUnit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	unit, err := h.associationService.CreateUnit(c.Request.Context(), associationID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create unit")
		return
	}

	logger.Info("Unit created successfully", slog.String("unit_id", unit.UnitID))
	c.JSON(http.StatusCreated, dto.ToUnitResponse(unit))
}

// listUnits godoc
// @Summary List units
// @Description Retrieves all units of the scoped association.
// @Tags units
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Success 200 {object} dto.ListUnitsResponse
// @Failure 500 {object} ErrorResponse "Failed to list units"
// @Security BearerAuth
// @Router /units [get]
func (h *unitHandler) listUnits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	units, err := h.associationService.ListUnits(c.Request.Context(), associationID)
	if err != nil {
		logger.Error("Failed to list units", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list units"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListUnitsResponse(units))
}

// getUnit godoc
// @Summary Get a unit
// @Description Retrieves a unit scoped to the association.
// @Tags units
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   unitID path string true "Unit ID"
// @Success 200 {object} dto.UnitResponse
// @Failure 404 {object} ErrorResponse "Unit not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve unit"
// @Security BearerAuth
// @Router /units/{unitID} [get]
func (h *unitHandler) getUnit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	unitID := c.Param("unitID")

	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	unit, err := h.associationService.GetUnitByID(c.Request.Context(), associationID, unitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
			return
		}
		logger.Error("Failed to get unit", slog.String("unit_id", unitID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve unit"})
		return
	}

	c.JSON(http.StatusOK, dto.ToUnitResponse(unit))
}

// getUnitBalance godoc
// @Summary Get a unit's balance summary
// @Description Aggregates the unit's billed charges and recorded payments into a balance, including the past-due portion.
// @Tags units
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   unitID path string true "Unit ID"
// @Success 200 {object} dto.UnitBalanceResponse
// @Failure 404 {object} ErrorResponse "Unit not found"
// @Failure 500 {object} ErrorResponse "Failed to compute unit balance"
// @Security BearerAuth
// @Router /units/{unitID}/balance [get]
func (h *unitHandler) getUnitBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	unitID := c.Param("unitID")

	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	balance, err := h.chargeService.GetUnitBalance(c.Request.Context(), associationID, unitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
			return
		}
		logger.Error("Failed to compute unit balance", slog.String("unit_id", unitID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute unit balance"})
		return
	}

	c.JSON(http.StatusOK, dto.ToUnitBalanceResponse(balance))
}

// listUnitCharges godoc
// @Summary List a unit's charges
// @Description Retrieves a paginated list of the unit's charges, oldest due first. Terminal charges are excluded unless includeTerminal=true.
// @Tags units
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   unitID path string true "Unit ID"
// @Param   includeTerminal query bool false "Include written-off, credited and paid charges"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListChargesResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 404 {object} ErrorResponse "Unit not found"
// @Failure 500 {object} ErrorResponse "Failed to list charges"
// @Security BearerAuth
// @Router /units/{unitID}/charges [get]
func (h *unitHandler) listUnitCharges(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	unitID := c.Param("unitID")

	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	var params dto.ListChargesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListUnitCharges", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.chargeService.ListChargesByUnit(c.Request.Context(), associationID, unitID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list charges")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listUnitPayments godoc
// @Summary List a unit's payments
// @Description Retrieves a paginated list of the unit's payments, most recent first.
// @Tags units
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   unitID path string true "Unit ID"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 404 {object} ErrorResponse "Unit not found"
// @Failure 500 {object} ErrorResponse "Failed to list payments"
// @Security BearerAuth
// @Router /units/{unitID}/payments [get]
func (h *unitHandler) listUnitPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	unitID := c.Param("unitID")

	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListUnitPayments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.paymentService.ListPaymentsByUnit(c.Request.Context(), associationID, unitID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list payments")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listAssessmentTypes godoc
// @Summary List assessment types
// @Description Retrieves the association's assessment types and the income accounts they post to.
// @Tags associations
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Success 200 {object} dto.ListAssessmentTypesResponse
// @Failure 500 {object} ErrorResponse "Failed to list assessment types"
// @Security BearerAuth
// @Router /assessment-types [get]
func (h *unitHandler) listAssessmentTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	types, err := h.associationService.ListAssessmentTypes(c.Request.Context(), associationID)
	if err != nil {
		logger.Error("Failed to list assessment types", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list assessment types"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListAssessmentTypesResponse(types))
}
