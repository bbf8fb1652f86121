package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoiceguard/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	invoiceRepo port.InvoiceRepository
	storage     port.ObjectStorage
	bucket      string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(invoiceRepo port.InvoiceRepository, storage port.ObjectStorage, bucket string) *HealthHandler {
	return &HealthHandler{invoiceRepo: invoiceRepo, storage: storage, bucket: bucket}
}

// Liveness handles GET /healthz
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness handles GET /readyz
// @Summary Readiness probe
// @Description Checks the database and the upload bucket
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.invoiceRepo.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "database not reachable"})
		return
	}
	if err := h.storage.Ping(ctx, h.bucket); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "object storage not reachable"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
