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

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
	idempotency    portssvc.IdempotencySvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade, idem portssvc.IdempotencySvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
		idempotency:    idem,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, idempotency portssvc.IdempotencySvcFacade) {
	h := newJournalHandler(journalService, idempotency)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:id", h.getEntry)
		entries.POST("/:id/submit", h.submitEntry)
		entries.POST("/:id/post", h.postEntry)
		entries.POST("/:id/reverse", h.reverseEntry)
	}
}

// createEntry godoc
// @Summary Create a journal entry
// @Description Creates a balanced DRAFT journal entry with at least two lines
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   Idempotency-Key header string true "Idempotency key (UUID)"
// @Param   entry body dto.CreateEntryRequest true "Entry details"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} ErrorResponse "Invalid input, unbalanced lines or inactive account"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 409 {object} ErrorResponse "Idempotency key in flight"
// @Failure 500 {object} ErrorResponse "Failed to create entry"
// @Security BearerAuth
// @Router /entries [post]
func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntry", slog.String("error", err.Error()))
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

	result, replayed, err := h.idempotency.Execute(c.Request.Context(), associationID, "entry.create", key, func(ctx context.Context) (interface{}, error) {
		entry, err := h.journalService.CreateEntry(ctx, associationID, req, userID)
		if err != nil {
			return nil, err
		}
		return dto.ToJournalEntryResponse(entry), nil
	})
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create entry")
		return
	}

	writeIdempotentJSON(c, http.StatusCreated, replayed, result)
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves a journal entry with its lines
// @Tags entries
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve entry"
// @Security BearerAuth
// @Router /entries/{id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	entry, err := h.journalService.GetEntryByID(c.Request.Context(), associationID, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		logger.Error("Failed to get entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a paginated list of the association's entries, newest first
// @Tags entries
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   status query string false "Filter by status (DRAFT, PENDING_APPROVAL, POSTED, REVERSED)"
// @Param   excludeReversals query bool false "Exclude reversal entries"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} ErrorResponse "Invalid status filter"
// @Failure 500 {object} ErrorResponse "Failed to list entries"
// @Security BearerAuth
// @Router /entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListEntries(c.Request.Context(), associationID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// submitEntry godoc
// @Summary Submit a draft entry for approval
// @Description Moves a DRAFT entry to PENDING_APPROVAL
// @Tags entries
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "Entry is not a draft"
// @Failure 500 {object} ErrorResponse "Failed to submit entry"
// @Security BearerAuth
// @Router /entries/{id}/submit [post]
func (h *journalHandler) submitEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

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

	entry, err := h.journalService.SubmitEntry(c.Request.Context(), associationID, entryID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to submit entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Posts an entry, applying its balance deltas to the affected accounts atomically
// @Tags entries
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   Idempotency-Key header string true "Idempotency key (UUID)"
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} ErrorResponse "Inactive account on a line"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "Entry is not postable"
// @Failure 500 {object} ErrorResponse "Failed to post entry"
// @Security BearerAuth
// @Router /entries/{id}/post [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

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

	result, replayed, err := h.idempotency.Execute(c.Request.Context(), associationID, "entry.post", key, func(ctx context.Context) (interface{}, error) {
		entry, err := h.journalService.PostEntry(ctx, associationID, entryID, userID)
		if err != nil {
			return nil, err
		}
		return dto.ToJournalEntryResponse(entry), nil
	})
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post entry")
		return
	}

	logger.Info("Entry posted successfully", slog.String("entry_id", entryID))
	writeIdempotentJSON(c, http.StatusOK, replayed, result)
}

// reverseEntry godoc
// @Summary Reverse a posted entry
// @Description Creates and posts a reversal entry with swapped sides and marks the original REVERSED
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   Idempotency-Key header string true "Idempotency key (UUID)"
// @Param   id path string true "Entry ID"
// @Param   reversal body dto.ReverseEntryRequest false "Reversal details"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "Entry is not POSTED or is itself a reversal"
// @Failure 500 {object} ErrorResponse "Failed to reverse entry"
// @Security BearerAuth
// @Router /entries/{id}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	// The reversal body is optional; an absent body means "reverse today, no reason".
	var req dto.ReverseEntryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
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

	result, replayed, err := h.idempotency.Execute(c.Request.Context(), associationID, "entry.reverse", key, func(ctx context.Context) (interface{}, error) {
		reversal, err := h.journalService.ReverseEntry(ctx, associationID, entryID, req, userID)
		if err != nil {
			return nil, err
		}
		return dto.ToJournalEntryResponse(reversal), nil
	})
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reverse entry")
		return
	}

	logger.Info("Entry reversed successfully", slog.String("entry_id", entryID))
	writeIdempotentJSON(c, http.StatusCreated, replayed, result)
}
