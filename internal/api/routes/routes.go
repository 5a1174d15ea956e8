package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/api/handlers"
	"github.com/cybershield/intel/internal/api/middleware"
	"github.com/cybershield/intel/internal/config"
	"github.com/cybershield/intel/internal/database"
	"github.com/cybershield/intel/internal/feeds"
	"github.com/cybershield/intel/internal/metrics"
	"github.com/cybershield/intel/internal/services"
)

// CIRCLSource is the feed name the CIRCL adapter is registered under.
const CIRCLSource = "circl"

// Services is the service layer shared by the HTTP routes and the ingest
// scheduler.
type Services struct {
	Notifications *services.NotificationService
	Threats       *services.ThreatService
	Actors        *services.ThreatActorService
	Metrics       *services.MetricService
	Intel         *services.IntelService
	Ingest        *services.IngestService
	Patterns      *services.PatternService
	Subscribers   *services.SubscriptionService
}

// NewServices builds the service layer and registers the feed adapters.
func NewServices(db *gorm.DB, cfg config.Config) *Services {
	ns := services.NewNotificationService(db)
	threats := services.NewThreatService(db, ns)
	intel := services.NewIntelService(threats)

	ingest := services.NewIngestService(db, threats, ns, cfg.IngestLimit)
	ingest.RegisterSource(CIRCLSource, feeds.NewCIRCLClient(cfg.CIRCLURL))

	return &Services{
		Notifications: ns,
		Threats:       threats,
		Actors:        services.NewThreatActorService(db),
		Metrics:       services.NewMetricService(db),
		Intel:         intel,
		Ingest:        ingest,
		Patterns:      services.NewPatternService(intel),
		Subscribers:   services.NewSubscriptionService(db),
	}
}

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) (*Services, error) {
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	svc := NewServices(db, cfg)

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(cfg.Debug),
		middleware.SecurityHeaders(cfg.IsDevelopment()),
		middleware.CORS(cfg.CORSOrigins),
	)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	router.GET("/api/v1/health", handlers.NewHealthHandler(db, svc.Ingest).Check)

	// Reads are open. Writes need an analyst or admin token once a JWT
	// secret is configured.
	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	writer := middleware.RequireRole(middleware.RoleAnalyst, middleware.RoleAdmin)

	threatHandler := handlers.NewThreatHandler(svc.Threats, svc.Notifications)
	catalogHandler := handlers.NewCatalogHandler(svc.Threats, svc.Actors, svc.Metrics)
	intelHandler := handlers.NewIntelHandler(svc.Intel, svc.Ingest, svc.Patterns, svc.Subscribers)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	providerHandler := handlers.NewNotificationProviderHandler(svc.Notifications)

	api := router.Group("/api/v1")
	{
		api.GET("/threats", threatHandler.List)
		api.GET("/threats/:id", threatHandler.Get)
		api.GET("/threat-actors", catalogHandler.ThreatActors)
		api.GET("/security-metrics", catalogHandler.SecurityMetrics)
		api.GET("/dashboard", catalogHandler.Dashboard)
		api.GET("/feeds", intelHandler.Feeds)
		api.GET("/notifications", notificationHandler.List)
		api.GET("/notifications/providers", providerHandler.List)

		protected := api.Group("/")
		protected.Use(auth, writer)
		protected.POST("/threats", threatHandler.Create)
		protected.PATCH("/threats/:id", threatHandler.Update)
		protected.PUT("/threats/:id", threatHandler.Replace)
		protected.DELETE("/threats/:id", threatHandler.Delete)

		protected.POST("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)

		protected.POST("/notifications/providers", providerHandler.Create)
		protected.DELETE("/notifications/providers/:id", providerHandler.Delete)
		protected.POST("/notifications/providers/test", providerHandler.Test)
	}

	// Intelligence API served to the feed dashboard.
	intel := router.Group("/api")
	{
		intel.GET("/threats", intelHandler.Threats)
		intel.GET("/threats/stats", intelHandler.Stats)
		intel.GET("/patterns", intelHandler.Patterns)
		intel.POST("/subscribe", intelHandler.Subscribe)
		intel.POST("/assessments/submit", intelHandler.SubmitAssessment)
		intel.POST("/threats/ingest", auth, writer, intelHandler.Ingest)
	}

	return svc, nil
}
