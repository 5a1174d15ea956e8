package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/services"
	"github.com/cybershield/intel/internal/util"
)

// defaultIngestSource is used when /api/threats/ingest has no source param.
const defaultIngestSource = "circl"

// IntelHandler serves the intelligence REST API consumed by the feed
// dashboard: prioritized threats, stats, ingest, clustering and the
// engagement endpoints.
type IntelHandler struct {
	intel       *services.IntelService
	ingest      *services.IngestService
	patterns    *services.PatternService
	subscribers *services.SubscriptionService
}

func NewIntelHandler(intel *services.IntelService, ingest *services.IngestService, patterns *services.PatternService, subscribers *services.SubscriptionService) *IntelHandler {
	return &IntelHandler{intel: intel, ingest: ingest, patterns: patterns, subscribers: subscribers}
}

func (h *IntelHandler) Threats(c *gin.Context) {
	threats, err := h.intel.FeedThreats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threats"})
		return
	}
	c.JSON(http.StatusOK, threats)
}

func (h *IntelHandler) Stats(c *gin.Context) {
	stats, err := h.intel.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Ingest pulls the named source. Unknown sources and upstream failures
// report zero added rather than an error status.
func (h *IntelHandler) Ingest(c *gin.Context) {
	source := c.DefaultQuery("source", defaultIngestSource)

	added, err := h.ingest.Ingest(c.Request.Context(), source)
	if err != nil {
		if !errors.Is(err, services.ErrUnknownSource) {
			logger.Log().WithError(err).
				WithField("source", util.SanitizeForLog(source)).
				Warn("Ingest failed")
		}
		c.JSON(http.StatusOK, gin.H{"added": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

func (h *IntelHandler) Feeds(c *gin.Context) {
	feeds, err := h.ingest.Feeds(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feeds"})
		return
	}
	c.JSON(http.StatusOK, feeds)
}

func (h *IntelHandler) Patterns(c *gin.Context) {
	clusters, err := h.patterns.Clusters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cluster threats"})
		return
	}
	if len(clusters) == 0 {
		c.JSON(http.StatusOK, gin.H{"clusters": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clusters": clusters})
}

func (h *IntelHandler) Subscribe(c *gin.Context) {
	created, err := h.subscribers.Subscribe(c.Request.Context(), c.Query("email"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "already subscribed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type assessmentRequest struct {
	Analysis string `json:"analysis"`
}

func (h *IntelHandler) SubmitAssessment(c *gin.Context) {
	var req assessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.GradeAnalysis(req.Analysis))
}
