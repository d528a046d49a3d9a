package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps a service error onto an HTTP response. AppError
// values carry their own status code; bare sentinels fall back to the usual
// mapping. Anything unrecognized is logged and reported as a 500 with
// fallbackMsg so internal detail stays out of the response body.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error(fallbackMsg, slog.String("error", err.Error()))
		}
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}

// idempotencyKeyFromHeader extracts the Idempotency-Key header. Mutating
// ledger operations refuse to run without one; the handler should return
// immediately when ok is false since the response has already been written.
func idempotencyKeyFromHeader(c *gin.Context) (string, bool) {
	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return "", false
	}
	return key, true
}

// writeIdempotentJSON writes the stored execution result. A replayed
// execution answers 200 regardless of the status the first run used, so
// clients can tell a replay from a fresh creation.
func writeIdempotentJSON(c *gin.Context, successStatus int, replayed bool, body json.RawMessage) {
	status := successStatus
	if replayed {
		status = http.StatusOK
	}
	c.Data(status, "application/json; charset=utf-8", body)
}
