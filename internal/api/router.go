// Package api wires together all HTTP routes for the QForma backend.
//
// Route grouping philosophy:
//   - /api/v1/auth/register, /login and the health endpoints are public.
//     Everything else requires a session token.
//   - Routes that operate inside a workspace additionally require a current
//     company (RequireCompany) and the permission named on each route. The
//     permission check consults the live role catalog, so a role edit takes
//     effect on the very next request without reissuing tokens.
//   - Login, registration, and invitation acceptance share a stricter rate
//     limit bucket than the general API: all three are credential or token
//     guessing surfaces.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/api/handlers"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/audit"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/cache"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/jobs"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/middleware"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/notifications"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/safego"
)

// BackgroundServices holds references to background jobs and resources that must
// be stopped during graceful shutdown. The caller (cmd/server) is responsible for
// calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	expiryJob    *jobs.InvitationExpiryJob
	auditShipper audit.Shipper
	roleCache    *cache.RoleCache
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the HTTP
// server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.expiryJob != nil {
		bg.expiryJob.Stop()
	}
	if bg.auditShipper != nil {
		if err := bg.auditShipper.Close(); err != nil {
			slog.Warn("audit shipper close", "error", err)
		}
	}
	if bg.roleCache != nil {
		if err := bg.roleCache.Close(); err != nil {
			slog.Warn("role cache close", "error", err)
		}
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sqlx.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	companyRepo := repositories.NewCompanyRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	invitationRepo := repositories.NewInvitationRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	requirementRepo := repositories.NewRequirementRepository(db)
	testCaseRepo := repositories.NewTestCaseRepository(db)
	defectRepo := repositories.NewDefectRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	statsRepo := repositories.NewStatsRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Build the permission catalog: compiled-in defaults overlaid with any
	// definitions persisted through the role editor.
	catalog := auth.NewCatalog()
	hydrateCatalog(catalog, roleRepo)

	// Optional Redis cache for the per-request role lookup
	var roleCache *cache.RoleCache
	if cfg.Cache.Enabled {
		rc, err := cache.New(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL)
		if err != nil {
			slog.Warn("role cache disabled: redis unreachable", "addr", cfg.Cache.Addr, "error", err)
		} else {
			roleCache = rc
			slog.Info("role cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
		}
	}

	mailer := notifications.NewMailer(&cfg.Notifications)

	// Background invitation expiry sweep
	expiryJob := jobs.NewInvitationExpiryJob(invitationRepo, &cfg.Invitations)
	safego.Go(func() { expiryJob.Start(context.Background()) })

	auditShipper := buildAuditShipper(cfg)

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Readiness check endpoint (database plus optional cache probe)
	router.GET("/ready", readinessHandler(db, roleCache))

	// API version
	router.GET("/version", versionHandler())

	// Rate limiters. The auth bucket also covers invitation acceptance.
	authRateLimiter := middleware.NewRateLimiter(authRateLimitConfig(cfg))
	generalRateLimiter := middleware.NewRateLimiter(generalRateLimitConfig(cfg))
	chatRateLimiter := middleware.NewRateLimiter(middleware.ChatRateLimitConfig())

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(userRepo, roleRepo, cfg)
	companyHandlers := handlers.NewCompanyHandlers(companyRepo, roleRepo, userRepo, roleCache, cfg)
	roleHandlers := handlers.NewRoleHandlers(catalog, roleRepo)
	memberHandlers := handlers.NewMemberHandlers(roleRepo, roleCache)
	invitationHandlers := handlers.NewInvitationHandlers(invitationRepo, roleRepo, userRepo, companyRepo, catalog, mailer, cfg)
	projectHandlers := handlers.NewProjectHandlers(projectRepo)
	taskHandlers := handlers.NewTaskHandlers(taskRepo, projectRepo)
	requirementHandlers := handlers.NewRequirementHandlers(requirementRepo, projectRepo)
	testCaseHandlers := handlers.NewTestCaseHandlers(testCaseRepo, requirementRepo, projectRepo)
	defectHandlers := handlers.NewDefectHandlers(defectRepo, testCaseRepo, projectRepo)
	chatHandlers := handlers.NewChatHandlers(chatRepo)
	statsHandlers := handlers.NewStatsHandlers(statsRepo, projectRepo)
	auditHandlers := handlers.NewAuditHandlers(auditRepo)

	// Permission gates, one per catalog key that guards a route
	requireManageCompany := middleware.RequirePermission(catalog, auth.PermManageCompany)
	requireManageUsers := middleware.RequirePermission(catalog, auth.PermManageUsers)
	requireManageRoles := middleware.RequirePermission(catalog, auth.PermManageRoles)
	requireViewProjects := middleware.RequirePermission(catalog, auth.PermViewProjects)
	requireManageProjects := middleware.RequirePermission(catalog, auth.PermManageProjects)
	requireViewRequirements := middleware.RequirePermission(catalog, auth.PermViewRequirements)
	requireManageRequirements := middleware.RequirePermission(catalog, auth.PermManageRequirements)
	requireViewTestCases := middleware.RequirePermission(catalog, auth.PermViewTestCases)
	requireManageTestCases := middleware.RequirePermission(catalog, auth.PermManageTestCases)
	requireExecuteTests := middleware.RequirePermission(catalog, auth.PermExecuteTests)
	requireViewDefects := middleware.RequirePermission(catalog, auth.PermViewDefects)
	requireManageDefects := middleware.RequirePermission(catalog, auth.PermManageDefects)
	requireViewTasks := middleware.RequirePermission(catalog, auth.PermViewTasks)
	requireManageTasks := middleware.RequirePermission(catalog, auth.PermManageTasks)
	requireUseChat := middleware.RequirePermission(catalog, auth.PermUseChat)
	requireViewReports := middleware.RequirePermission(catalog, auth.PermViewReports)

	authMW := middleware.AuthMiddleware(userRepo, roleRepo, roleCache)

	apiV1 := router.Group("/api/v1")
	{
		// Public auth endpoints with the stricter rate limit
		authGroup := apiV1.Group("/auth")
		authGroup.Use(middleware.RateLimitMiddleware(authRateLimiter))
		{
			authGroup.POST("/register", authHandlers.Register)
			authGroup.POST("/login", authHandlers.Login)
		}

		// Session endpoints: authenticated, no company required
		sessionGroup := apiV1.Group("/auth")
		sessionGroup.Use(middleware.RateLimitMiddleware(generalRateLimiter))
		sessionGroup.Use(authMW)
		{
			sessionGroup.GET("/me", authHandlers.Me)
			sessionGroup.POST("/switch-company", authHandlers.SwitchCompany)
		}

		// Everything below requires a session token
		authenticatedGroup := apiV1.Group("")
		authenticatedGroup.Use(middleware.RateLimitMiddleware(generalRateLimiter))
		authenticatedGroup.Use(authMW)
		authenticatedGroup.Use(middleware.AuditMiddlewareWithShipper(auditRepo, auditShipper, &cfg.Audit))
		{
			// Company bootstrap and selection work without a current company
			authenticatedGroup.POST("/companies", companyHandlers.CreateCompany)
			authenticatedGroup.GET("/companies", companyHandlers.ListCompanies)

			// Accepting an invitation shares the auth bucket: the raw token is
			// a guessable credential until verified against its bcrypt hash.
			authenticatedGroup.POST("/invitations/:id/accept",
				middleware.RateLimitMiddleware(authRateLimiter), invitationHandlers.AcceptInvitation)

			// Workspace routes: a current company is mandatory
			companyGroup := authenticatedGroup.Group("")
			companyGroup.Use(middleware.RequireCompany())
			{
				companyGroup.GET("/companies/current", companyHandlers.GetCurrentCompany)
				companyGroup.PUT("/companies/current", requireManageCompany, companyHandlers.UpdateCurrentCompany)
				companyGroup.DELETE("/companies/current", middleware.RequireOwner(), companyHandlers.DeleteCurrentCompany)

				// Role catalog
				companyGroup.GET("/roles", roleHandlers.ListRoles)
				companyGroup.GET("/permissions", roleHandlers.ListPermissions)
				companyGroup.PUT("/roles/:role", requireManageRoles, roleHandlers.UpdateRole)

				// Membership
				companyGroup.GET("/members", memberHandlers.ListMembers)
				companyGroup.PUT("/members/:userId", requireManageUsers, memberHandlers.UpdateMemberRole)
				companyGroup.DELETE("/members/:userId", requireManageUsers, memberHandlers.RemoveMember)

				// Invitations
				companyGroup.POST("/invitations", requireManageUsers, invitationHandlers.CreateInvitation)
				companyGroup.GET("/invitations", requireManageUsers, invitationHandlers.ListInvitations)
				companyGroup.DELETE("/invitations/:id", requireManageUsers, invitationHandlers.DeleteInvitation)

				// Projects
				companyGroup.POST("/projects", requireManageProjects, projectHandlers.CreateProject)
				companyGroup.GET("/projects", requireViewProjects, projectHandlers.ListProjects)
				companyGroup.GET("/projects/:projectId", requireViewProjects, projectHandlers.GetProject)
				companyGroup.PUT("/projects/:projectId", requireManageProjects, projectHandlers.UpdateProject)
				companyGroup.DELETE("/projects/:projectId", requireManageProjects, projectHandlers.DeleteProject)

				// Kanban tasks
				companyGroup.POST("/projects/:projectId/tasks", requireManageTasks, taskHandlers.CreateTask)
				companyGroup.GET("/projects/:projectId/tasks", requireViewTasks, taskHandlers.ListTasks)
				companyGroup.GET("/projects/:projectId/tasks/:taskId", requireViewTasks, taskHandlers.GetTask)
				companyGroup.PUT("/projects/:projectId/tasks/:taskId", requireManageTasks, taskHandlers.UpdateTask)
				companyGroup.POST("/projects/:projectId/tasks/:taskId/move", requireManageTasks, taskHandlers.MoveTask)
				companyGroup.DELETE("/projects/:projectId/tasks/:taskId", requireManageTasks, taskHandlers.DeleteTask)

				// Requirements
				companyGroup.POST("/projects/:projectId/requirements", requireManageRequirements, requirementHandlers.CreateRequirement)
				companyGroup.GET("/projects/:projectId/requirements", requireViewRequirements, requirementHandlers.ListRequirements)
				companyGroup.GET("/projects/:projectId/requirements/:requirementId", requireViewRequirements, requirementHandlers.GetRequirement)
				companyGroup.PUT("/projects/:projectId/requirements/:requirementId", requireManageRequirements, requirementHandlers.UpdateRequirement)
				companyGroup.DELETE("/projects/:projectId/requirements/:requirementId", requireManageRequirements, requirementHandlers.DeleteRequirement)

				// Test cases and executions
				companyGroup.POST("/projects/:projectId/test-cases", requireManageTestCases, testCaseHandlers.CreateTestCase)
				companyGroup.GET("/projects/:projectId/test-cases", requireViewTestCases, testCaseHandlers.ListTestCases)
				companyGroup.GET("/projects/:projectId/test-cases/:testCaseId", requireViewTestCases, testCaseHandlers.GetTestCase)
				companyGroup.PUT("/projects/:projectId/test-cases/:testCaseId", requireManageTestCases, testCaseHandlers.UpdateTestCase)
				companyGroup.DELETE("/projects/:projectId/test-cases/:testCaseId", requireManageTestCases, testCaseHandlers.DeleteTestCase)
				companyGroup.POST("/projects/:projectId/test-cases/:testCaseId/executions", requireExecuteTests, testCaseHandlers.RecordExecution)
				companyGroup.GET("/projects/:projectId/test-cases/:testCaseId/executions", requireViewTestCases, testCaseHandlers.ListExecutions)

				// Defects
				companyGroup.POST("/projects/:projectId/defects", requireManageDefects, defectHandlers.CreateDefect)
				companyGroup.GET("/projects/:projectId/defects", requireViewDefects, defectHandlers.ListDefects)
				companyGroup.GET("/projects/:projectId/defects/:defectId", requireViewDefects, defectHandlers.GetDefect)
				companyGroup.PUT("/projects/:projectId/defects/:defectId", requireManageDefects, defectHandlers.UpdateDefect)
				companyGroup.DELETE("/projects/:projectId/defects/:defectId", requireManageDefects, defectHandlers.DeleteDefect)

				// Chat, with its own burst-friendly limiter
				chatGroup := companyGroup.Group("/chat")
				chatGroup.Use(middleware.RateLimitMiddleware(chatRateLimiter))
				chatGroup.Use(requireUseChat)
				{
					chatGroup.GET("/channels", chatHandlers.ListChannels)
					chatGroup.GET("/channels/:channel/messages", chatHandlers.ListMessages)
					chatGroup.POST("/channels/:channel/messages", chatHandlers.PostMessage)
				}

				// Reporting
				companyGroup.GET("/stats", requireViewReports, statsHandlers.GetOverview)
				companyGroup.GET("/projects/:projectId/stats/tasks", requireViewReports, statsHandlers.GetProjectTaskStats)

				// Audit trail
				companyGroup.GET("/audit-logs", requireManageCompany, auditHandlers.ListAuditLogs)
				companyGroup.GET("/audit-logs/:id", requireManageCompany, auditHandlers.GetAuditLog)
			}
		}
	}

	bg := &BackgroundServices{
		expiryJob:    expiryJob,
		auditShipper: auditShipper,
		roleCache:    roleCache,
		rateLimiters: []*middleware.RateLimiter{authRateLimiter, generalRateLimiter, chatRateLimiter},
	}

	return router, bg
}

// hydrateCatalog overlays persisted role definitions onto the compiled-in
// defaults. A row that fails validation (stale permission key, unknown role)
// is skipped with a warning rather than aborting startup: the compiled-in
// default for that role still applies.
func hydrateCatalog(catalog *auth.Catalog, roleRepo *repositories.RoleRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := roleRepo.ListRoleDefinitions(ctx)
	if err != nil {
		slog.Warn("failed to load stored role definitions; using defaults", "error", err)
		return
	}

	for _, rec := range records {
		keys := make([]auth.PermissionKey, len(rec.Permissions))
		for i, p := range rec.Permissions {
			keys[i] = auth.PermissionKey(p)
		}
		if err := catalog.ApplyStored(auth.Role(rec.Role), rec.Label, rec.Description, keys); err != nil {
			slog.Warn("skipping invalid stored role definition", "role", rec.Role, "error", err)
		}
	}
	if len(records) > 0 {
		slog.Info("role catalog hydrated from database", "overrides", len(records))
	}
}

// buildAuditShipper assembles the external audit destinations from config.
// Returns nil when no shipper is enabled; the audit middleware treats nil as
// database-only logging.
func buildAuditShipper(cfg *config.Config) audit.Shipper {
	var shipperConfigs []audit.ShipperConfig
	for _, sc := range cfg.Audit.Shippers {
		if !sc.Enabled {
			continue
		}
		out := audit.ShipperConfig{Enabled: true, Type: sc.Type}
		if sc.Webhook != nil {
			out.Webhook = &audit.WebhookConfig{
				URL:           sc.Webhook.URL,
				Headers:       sc.Webhook.Headers,
				Timeout:       time.Duration(sc.Webhook.TimeoutSecs) * time.Second,
				BatchSize:     sc.Webhook.BatchSize,
				FlushInterval: time.Duration(sc.Webhook.FlushInterval) * time.Second,
			}
		}
		if sc.File != nil {
			out.File = &audit.FileConfig{Path: sc.File.Path}
		}
		shipperConfigs = append(shipperConfigs, out)
	}
	if len(shipperConfigs) == 0 {
		return nil
	}

	shipper, err := audit.NewMultiShipper(shipperConfigs)
	if err != nil {
		slog.Warn("audit shipping disabled: failed to build shippers", "error", err)
		return nil
	}
	slog.Info("audit shipping enabled", "destinations", len(shipperConfigs))
	return shipper
}

// authRateLimitConfig applies the configured auth bucket size over the default.
func authRateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rlc := middleware.AuthRateLimitConfig()
	if cfg.Security.RateLimiting.AuthRequestsPerMinute > 0 {
		rlc.RequestsPerMinute = cfg.Security.RateLimiting.AuthRequestsPerMinute
	}
	return rlc
}

// generalRateLimitConfig applies the configured general bucket over the default.
func generalRateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rlc := middleware.DefaultRateLimitConfig()
	if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
		rlc.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
	}
	if cfg.Security.RateLimiting.Burst > 0 {
		rlc.BurstSize = cfg.Security.RateLimiting.Burst
	}
	return rlc
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
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

// @Summary      Readiness check
// @Description  Returns whether the service is ready to accept traffic. Checks database connectivity; the optional role cache is reported but never fails readiness because every cached lookup falls through to the database.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "ready: false, error: database not ready"
// @Router       /ready [get]
// readinessHandler returns the readiness status of the service.
func readinessHandler(db *sqlx.DB, roleCache *cache.RoleCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		// Check database connection
		if err := db.Ping(); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		if roleCache != nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "disabled"
		}

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Description  Returns the current API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS
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
