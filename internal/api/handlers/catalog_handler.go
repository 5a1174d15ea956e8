package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybershield/intel/internal/dashboard"
	"github.com/cybershield/intel/internal/services"
)

// CatalogHandler serves the read-only tables and the composed dashboard view.
type CatalogHandler struct {
	threats *services.ThreatService
	actors  *services.ThreatActorService
	metrics *services.MetricService
}

func NewCatalogHandler(threats *services.ThreatService, actors *services.ThreatActorService, metrics *services.MetricService) *CatalogHandler {
	return &CatalogHandler{threats: threats, actors: actors, metrics: metrics}
}

func (h *CatalogHandler) ThreatActors(c *gin.Context) {
	actors, err := h.actors.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threat actors"})
		return
	}
	c.JSON(http.StatusOK, actors)
}

func (h *CatalogHandler) SecurityMetrics(c *gin.Context) {
	metrics, err := h.metrics.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch security metrics"})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// Dashboard returns the summary tiles, threat cards and top actors in one
// payload.
func (h *CatalogHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	threats, err := h.threats.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threats"})
		return
	}
	metrics, err := h.metrics.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch security metrics"})
		return
	}
	actors, err := h.actors.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threat actors"})
		return
	}

	c.JSON(http.StatusOK, dashboard.BuildView(threats, metrics, actors))
}
