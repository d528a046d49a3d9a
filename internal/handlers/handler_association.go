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

// associationHandler handles HTTP requests related to associations.
type associationHandler struct {
	associationService portssvc.AssociationSvcFacade
}

// newAssociationHandler creates a new associationHandler.
func newAssociationHandler(as portssvc.AssociationSvcFacade) *associationHandler {
	return &associationHandler{
		associationService: as,
	}
}

// registerAssociationRoutes registers the association bootstrap routes. These
// sit outside the association-scoped group: creating an association is the one
// write that cannot carry an X-Association-ID yet, and reading one by path
// param is how clients discover the scope to send.
func registerAssociationRoutes(rg *gin.RouterGroup, associationService portssvc.AssociationSvcFacade) {
	h := newAssociationHandler(associationService)

	associations := rg.Group("/associations")
	{
		associations.POST("", h.createAssociation)
		associations.GET("/:associationID", h.getAssociation)
	}
}

// createAssociation godoc
// @Summary Create a new association
// @Description Creates an association and seeds its default chart of accounts and assessment types.
// @Tags associations
// @Accept  json
// @Produce  json
// @Param   association body dto.CreateAssociationRequest true "Association details"
// @Success 201 {object} dto.AssociationResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to create association"
// @Security BearerAuth
// @Router /associations [post]
func (h *associationHandler) createAssociation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAssociationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAssociation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	newAssociation, err := h.associationService.CreateAssociation(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create association")
		return
	}

	logger.Info("Association created successfully", slog.String("association_id", newAssociation.AssociationID))
	c.JSON(http.StatusCreated, dto.ToAssociationResponse(newAssociation))
}

// getAssociation godoc
// @Summary Get an association
// @Description Retrieves an association by its ID.
// @Tags associations
// @Produce  json
// @Param   associationID path string true "Association ID"
// @Success 200 {object} dto.AssociationResponse
// @Failure 404 {object} ErrorResponse "Association not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve association"
// @Security BearerAuth
// @Router /associations/{associationID} [get]
func (h *associationHandler) getAssociation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	associationID := c.Param("associationID")

	association, err := h.associationService.GetAssociationByID(c.Request.Context(), associationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Association not found"})
			return
		}
		logger.Error("Failed to get association", slog.String("association_id", associationID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve association"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAssociationResponse(association))
}
