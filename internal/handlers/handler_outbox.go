package handlers

import (
	"log/slog"
	"net/http"

	"github.com/strataops/strataledger/internal/core/domain"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/dto"
	"github.com/strataops/strataledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// outboxHandler exposes the admin surface over GL posting tasks.
type outboxHandler struct {
	outboxService portssvc.OutboxSvcFacade
}

// newOutboxHandler creates a new outboxHandler.
func newOutboxHandler(os portssvc.OutboxSvcFacade) *outboxHandler {
	return &outboxHandler{
		outboxService: os,
	}
}

// registerOutboxRoutes registers the admin routes for inspecting and retrying
// posting tasks.
func registerOutboxRoutes(rg *gin.RouterGroup, outboxService portssvc.OutboxSvcFacade) {
	h := newOutboxHandler(outboxService)

	admin := rg.Group("/admin/outbox")
	{
		admin.GET("", h.listTasks)
		admin.POST("/:taskID/retry", h.retryTask)
	}
}

// listTasks godoc
// @Summary List GL posting tasks
// @Description Retrieves the association's posting tasks, most recent first, optionally filtered by status.
// @Tags outbox
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   status query string false "Filter by status (PENDING, SENT, FAILED)"
// @Param   limit query int false "Page size (default 50, max 200)"
// @Success 200 {object} dto.ListOutboxTasksResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 500 {object} ErrorResponse "Failed to list tasks"
// @Security BearerAuth
// @Router /admin/outbox [get]
func (h *outboxHandler) listTasks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	var params dto.ListOutboxTasksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListOutboxTasks", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var status *domain.OutboxStatus
	if params.Status != nil {
		s := domain.OutboxStatus(*params.Status)
		switch s {
		case domain.OutboxPending, domain.OutboxSent, domain.OutboxFailed:
			status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter: " + *params.Status})
			return
		}
	}

	tasks, err := h.outboxService.ListTasks(c.Request.Context(), associationID, status, params.Limit)
	if err != nil {
		logger.Error("Failed to list outbox tasks", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListOutboxTasksResponse(tasks))
}

// retryTask godoc
// @Summary Retry a failed GL posting task
// @Description Re-queues a FAILED task so the dispatcher picks it up again.
// @Tags outbox
// @Produce  json
// @Param   X-Association-ID header string true "Association ID"
// @Param   taskID path string true "Task ID"
// @Success 200 {object} dto.OutboxTaskResponse
// @Failure 404 {object} ErrorResponse "Task not found"
// @Failure 409 {object} ErrorResponse "Task is not in FAILED state"
// @Failure 500 {object} ErrorResponse "Failed to retry task"
// @Security BearerAuth
// @Router /admin/outbox/{taskID}/retry [post]
func (h *outboxHandler) retryTask(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	taskID := c.Param("taskID")

	associationID, ok := middleware.GetAssociationIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Association scope required"})
		return
	}

	task, err := h.outboxService.RetryTask(c.Request.Context(), associationID, taskID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retry task")
		return
	}

	logger.Info("Outbox task re-queued", slog.String("task_id", taskID))
	c.JSON(http.StatusOK, dto.ToOutboxTaskResponse(task))
}
