package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-agent-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-agent-registry/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondError maps an executor error onto its HTTP status.
// Errors that are not APIErrors become a generic 500 so internals never leak.
func respondError(c *gin.Context, err error, message string) {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierrors.NewInternalError(message)
	}

	if apiErr.ServerSide() {
		logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
	}
	c.JSON(apiErr.StatusCode(), apiErr)
}
