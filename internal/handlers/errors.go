package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/storefront/internal/domain"
	"go.uber.org/zap"
)

// statusClientClosedRequest is the nginx convention for a request the
// client abandoned before the response was written.
const statusClientClosedRequest = 499

func (h *Handlers) handleError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("request timed out",
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request timed out, please retry"})
	case errors.Is(err, context.Canceled):
		h.logger.Warn("request cancelled by client",
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(err))
		c.JSON(statusClientClosedRequest, gin.H{"error": "request cancelled"})
	default:
		h.logger.Error("request failed",
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": field + ": " + message,
		"field": field,
	})
}
