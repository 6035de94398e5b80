package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	serviceName    = "desire-hunter"
	serviceVersion = "1.0.0"

	msgInternalError = "Internal server error"
	msgTimeout       = "hunt timed out"
)

// HuntRunner runs one hunt for a desire
type HuntRunner interface {
	RunHunt(ctx context.Context, desire string) (*domain.HuntResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	hunter HuntRunner
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(hunter HuntRunner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hunter: hunter, logger: logger}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Hunt handles POST /api/hunt
func (h *Handler) Hunt(c *gin.Context) {
	var req domain.HuntRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Desire) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidDesire.Error()})
		return
	}

	if h.hunter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "hunt service not configured"})
		return
	}

	result, err := h.hunter.RunHunt(c.Request.Context(), req.Desire)
	if err != nil {
		h.logger.Error("hunt failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("desire", req.Desire),
			zap.Error(err),
		)

		switch {
		case errors.Is(err, domain.ErrInvalidDesire):
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidDesire.Error()})
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": msgTimeout})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
