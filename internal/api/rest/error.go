package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/logger"
)

// errorResponse is the JSON error envelope the front returns. The
// message is a human-readable summary; upstream bodies and secrets are
// never echoed through it.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// respondError maps a classified error onto its HTTP status and writes
// the error envelope. Client cancellations get no body, the connection
// is already gone.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	if kind == domain.ErrClientCancelled {
		c.Abort()
		return
	}

	status := kind.HTTPStatus()
	if status >= 500 {
		logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
	} else {
		logger.WarnCtx(c.Request.Context(), "request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.JSON(status, errorResponse{
		Error:   string(kind),
		Message: errorMessage(kind, err),
	})
}

// respondBadRequest writes an invalid_request envelope with the given
// message.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Error:   string(domain.ErrInvalidRequest),
		Message: message,
	})
}

// respondConfigError answers routes whose upstream secret is absent.
func respondConfigError(c *gin.Context, missingKey string) {
	c.JSON(http.StatusInternalServerError, errorResponse{
		Error:   string(domain.ErrConfig),
		Message: "server is missing required configuration: " + missingKey,
	})
}

// errorMessage prefers the classified error's own message but keeps
// internal failures opaque.
func errorMessage(kind domain.ErrorKind, err error) string {
	if kind == domain.ErrInternal {
		return "internal server error"
	}
	var e *domain.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
