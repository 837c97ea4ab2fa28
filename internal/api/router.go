// Package api wires together all HTTP routes for the back office.
//
// Route grouping philosophy:
//   - /health and /version are unauthenticated so load balancers and probes
//     can reach them without credentials.
//   - Everything under /api/v1/ requires authentication and the appropriate
//     RBAC scope. Moderation writes additionally sit behind a tighter rate
//     limit than reads, because a single bulk call can touch a thousand rows.
package api

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/pawtrails/backoffice/internal/api/admin"
	"github.com/pawtrails/backoffice/internal/audit"
	"github.com/pawtrails/backoffice/internal/auth"
	"github.com/pawtrails/backoffice/internal/config"
	"github.com/pawtrails/backoffice/internal/db/repositories"
	"github.com/pawtrails/backoffice/internal/jobs"
	"github.com/pawtrails/backoffice/internal/middleware"
	"github.com/pawtrails/backoffice/internal/moderation"
	"github.com/pawtrails/backoffice/internal/notify"
)

// BackgroundServices holds references to background jobs and resources that must
// be stopped during graceful shutdown. The caller (cmd/server) is responsible for
// calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	drainer      *jobs.AuditQueueDrainer
	notifier     *notify.Notifier
	shipper      *audit.MultiShipper
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the HTTP
// server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.drainer != nil {
		bg.drainer.Stop()
	}
	if bg.notifier != nil {
		if err := bg.notifier.Close(); err != nil {
			slog.Warn("notifier close failed", "error", err)
		}
	}
	if bg.shipper != nil {
		if err := bg.shipper.Close(); err != nil {
			slog.Warn("audit shipper close failed", "error", err)
		}
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	queueRepo := repositories.NewAuditQueueRepository(db)
	editRepo := repositories.NewEditRequestRepository(db)
	actionRepo := repositories.NewModerationActionRepository(db)
	contentRepo := repositories.NewContentRepository(db)
	softDeleteRepo := repositories.NewSoftDeleteRepository(db)

	// Wrap *sql.DB with sqlx for the stats aggregations
	sqlxDB := sqlx.NewDb(db, "postgres")

	// Audit pipeline: direct writes with queue fallback, plus optional
	// external shipping
	shipper, err := audit.NewMultiShipper(cfg.Audit.Shippers)
	if err != nil {
		log.Fatalf("Failed to initialize audit shippers: %v", err)
	}
	var writerShipper audit.Shipper
	if shipper != nil {
		writerShipper = shipper
	}
	writer := audit.NewWriter(auditRepo, queueRepo, writerShipper)

	processor := audit.NewProcessor(db, auditRepo, queueRepo, cfg.Audit.MaxAttempts, cfg.Audit.RetryBackoff, cfg.Audit.DrainBatchSize)
	drainer := jobs.NewAuditQueueDrainer(processor, cfg.Audit.DrainSchedule)
	if err := drainer.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start audit queue drainer: %v", err)
	}
	log.Printf("Audit queue drainer started (schedule %q)", cfg.Audit.DrainSchedule)

	// Owner notifications over Redis, no-op unless enabled
	notifier := notify.NewNotifier(cfg)

	// Moderation services
	registry := moderation.NewRegistry(contentRepo)
	bulkExecutor := moderation.NewBulkExecutor(db, editRepo, userRepo, actionRepo, writer,
		cfg.Moderation.BatchSize, cfg.Moderation.MaxBulkItems, cfg.Moderation.MaxBlockDays)
	softDeleteManager := moderation.NewSoftDeleteManager(db, registry, softDeleteRepo, actionRepo, writer)
	statsService := moderation.NewStatsService(sqlxDB)

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.AccessLogMiddleware())
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API version
	router.GET("/version", versionHandler())

	bg := &BackgroundServices{
		drainer:  drainer,
		notifier: notifier,
		shipper:  shipper,
	}

	// Authenticated API
	apiV1 := router.Group("/api/v1")
	if cfg.Security.RateLimiting.Enabled {
		apiLimiter := middleware.NewRateLimiter(middleware.RateLimitConfigFromSettings(cfg.Security.RateLimiting))
		bg.rateLimiters = append(bg.rateLimiters, apiLimiter)
		apiV1.Use(middleware.RateLimitMiddleware(apiLimiter))
	}
	apiV1.Use(middleware.AuthMiddleware(userRepo, apiKeyRepo))

	moderationHandlers := admin.NewModerationHandlers(bulkExecutor, softDeleteManager, statsService, notifier)
	auditHandlers := admin.NewAuditHandlers(auditRepo, queueRepo, drainer)

	adminGroup := apiV1.Group("/admin")
	{
		mod := adminGroup.Group("/moderation")
		{
			bulkLimiter := middleware.NewRateLimiter(middleware.BulkRateLimitConfig())
			bg.rateLimiters = append(bg.rateLimiters, bulkLimiter)
			mod.POST("/bulk",
				middleware.RequireScope(auth.ScopeModerationWrite),
				middleware.RateLimitMiddleware(bulkLimiter),
				moderationHandlers.BulkHandler())

			mod.POST("/content/:type/:id/delete",
				middleware.RequireScope(auth.ScopeModerationWrite),
				moderationHandlers.SoftDeleteHandler())
			mod.POST("/content/:type/:id/restore",
				middleware.RequireScope(auth.ScopeModerationWrite),
				moderationHandlers.RestoreHandler())
			mod.GET("/content/:type/:id",
				middleware.RequireScope(auth.ScopeModerationRead),
				moderationHandlers.ContentStatusHandler())
			mod.GET("/stats",
				middleware.RequireScope(auth.ScopeModerationRead),
				moderationHandlers.StatsHandler())
		}

		auditGroup := adminGroup.Group("")
		auditGroup.Use(middleware.RequireScope(auth.ScopeAuditRead))
		{
			auditGroup.GET("/audit-logs", auditHandlers.ListAuditLogsHandler())
			auditGroup.GET("/audit-logs/:id", auditHandlers.GetAuditLogHandler())
			auditGroup.GET("/audit-queue", auditHandlers.ListQueueHandler())
			auditGroup.POST("/audit-queue/process", auditHandlers.ProcessQueueHandler())
		}
	}

	return router, bg
}

// @Summary      Health check
// @Description  Returns the health status of the service. Checks database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check database connection
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Description  Returns the service version and API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /version [get]
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// CORSMiddleware handles CORS for the admin frontend
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
