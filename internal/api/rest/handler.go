package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-agent-registry/internal/api/shared/dto"
	"github.com/feral-file/ff-agent-registry/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// QueryEntries returns live registry entries matching a filter, paged by cursor
	// POST /api/v1/registry-entries/query
	QueryEntries(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{
		executor: exec,
	}
}

// QueryEntries decodes the query body and delegates to the executor
func (h *handler) QueryEntries(c *gin.Context) {
	var req dto.QueryEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	resp, err := h.executor.QueryEntries(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to query registry entries")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	if err := h.executor.CheckHealth(c.Request.Context()); err != nil {
		respondError(c, err, "Health check failed")
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}
