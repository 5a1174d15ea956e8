package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/version"
)

const healthTimeout = 2 * time.Second

// FeedLister reports the registered intel feeds and their last sync.
type FeedLister interface {
	Feeds(ctx context.Context) ([]models.IntelFeed, error)
}

// HealthHandler reports whether the table store answers and when each
// feed last synced.
type HealthHandler struct {
	db    *gorm.DB
	feeds FeedLister
}

func NewHealthHandler(db *gorm.DB, feeds FeedLister) *HealthHandler {
	return &HealthHandler{db: db, feeds: feeds}
}

type feedHealth struct {
	Name        string     `json:"name"`
	Active      bool       `json:"active"`
	LastUpdated *time.Time `json:"last_updated"`
}

// Check answers 200 with status "ok", or 503 "degraded" when the database
// cannot be reached.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	code, status, database := http.StatusOK, "ok", "ok"
	if err := h.ping(ctx); err != nil {
		logger.Log().WithError(err).Warn("health check: database unreachable")
		code, status, database = http.StatusServiceUnavailable, "degraded", "unreachable"
	}

	feeds := []feedHealth{}
	if h.feeds != nil && database == "ok" {
		list, err := h.feeds.Feeds(ctx)
		if err != nil {
			logger.Log().WithError(err).Warn("health check: list feeds")
		}
		for _, f := range list {
			feeds = append(feeds, feedHealth{Name: f.FeedName, Active: f.IsActive, LastUpdated: f.LastUpdated})
		}
	}

	c.JSON(code, gin.H{
		"status":     status,
		"service":    version.Name,
		"version":    version.Version,
		"git_commit": version.GitCommit,
		"database":   database,
		"feeds":      feeds,
	})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
