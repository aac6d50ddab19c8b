package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/docuflow/docuflow/internal/app/config"
	"github.com/docuflow/docuflow/internal/app/handlers"
	"github.com/docuflow/docuflow/internal/app/middleware"
	appservices "github.com/docuflow/docuflow/internal/app/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/docuflow/docuflow/pkg/logger"
)

type Server struct {
	config   *config.Config
	logger   *logger.Logger
	router   *gin.Engine
	server   *http.Server
	services *appservices.ServiceManager
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger, sm *appservices.ServiceManager) (*Server, error) {
	// Configure Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg))
	router.Use(loggingMiddleware(log))

	server := &Server{
		config:   cfg,
		logger:   log,
		router:   router,
		services: sm,
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.services.Close(); err != nil {
		s.logger.Error("Error closing services", "error", err)
	}

	return s.server.Shutdown(ctx)
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	authHandler := handlers.NewAuthHandler(s.services.IdentityService)
	tenantHandler := handlers.NewTenantHandler(s.services.TenantService, s.services.UsageService)
	userHandler := handlers.NewUserHandler(s.services.UserService)
	tagHandler := handlers.NewTagHandler(s.services.TagService)
	documentHandler := handlers.NewDocumentHandler(s.services.DocumentService)
	invoiceHandler := handlers.NewInvoiceHandler(s.services.InvoiceService)
	disputeHandler := handlers.NewDisputeHandler(s.services.DisputeService)
	shareHandler := handlers.NewShareHandler(s.services.SharingService)

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		// Public routes
		v1.GET("/status", s.systemStatus)
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/signup", tenantHandler.Signup)
		v1.POST("/shared/:token", shareHandler.Access)

		// Authenticated routes
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(s.services.IdentityService))
		{
			protected.GET("/auth/me", authHandler.Me)

			protected.GET("/company", tenantHandler.GetCompany)
			protected.GET("/dashboard", tenantHandler.Dashboard)

			protected.GET("/plans", tenantHandler.ListPlans)
			protected.GET("/client-plans", tenantHandler.ListClientPlans)

			// Platform plan management
			admin := protected.Group("")
			admin.Use(middleware.RequireRoles(models.RoleAdmin))
			{
				admin.POST("/plans", tenantHandler.CreatePlan)
				admin.DELETE("/plans/:id", tenantHandler.DeletePlan)
				admin.POST("/invoices/generate", invoiceHandler.GenerateCompanyInvoices)
				admin.POST("/invoices/remind", invoiceHandler.Remind)
			}

			// Tenant administration
			management := protected.Group("")
			management.Use(middleware.RequireRoles(models.RoleOwner, models.RoleManager))
			{
				management.POST("/client-plans", tenantHandler.CreateClientPlan)
				management.DELETE("/client-plans/:id", tenantHandler.DeleteClientPlan)

				management.POST("/users", userHandler.CreateUser)
				management.GET("/users", userHandler.ListUsers)
				management.GET("/users/:id", userHandler.GetUser)
				management.PUT("/users/:id", userHandler.UpdateUser)
				management.DELETE("/users/:id", userHandler.DeactivateUser)

				management.POST("/clients", userHandler.CreateClient)
				management.GET("/clients", userHandler.ListClients)
				management.GET("/clients/:id", userHandler.GetClient)
				management.PUT("/clients/:id", userHandler.UpdateClient)
				management.DELETE("/clients/:id", userHandler.DeactivateClient)

				management.POST("/tags", tagHandler.CreateTag)
				management.PUT("/tags/:id", tagHandler.UpdateTag)
				management.DELETE("/tags/:id", tagHandler.DeleteTag)

				management.POST("/invoices/generate-clients", invoiceHandler.GenerateClientInvoices)
				management.POST("/invoices/custom", invoiceHandler.CreateCustomInvoice)
				management.PUT("/invoices/:id/other-invoices", invoiceHandler.ApplyOtherInvoices)
			}

			protected.GET("/tags", tagHandler.ListTags)
			protected.GET("/tags/:id", tagHandler.GetTag)

			protected.POST("/documents", documentHandler.CreateDocument)
			protected.GET("/documents", documentHandler.ListDocuments)
			protected.GET("/documents/assignees", documentHandler.Assignees)
			protected.POST("/documents/post-assignee", documentHandler.Assign)
			protected.POST("/documents/save-draft", documentHandler.SaveDraft)
			protected.POST("/documents/publish", documentHandler.Publish)
			protected.GET("/documents/:id", documentHandler.GetDocument)
			protected.PUT("/documents/:id/add-comment", documentHandler.AddComment)
			protected.GET("/documents/:id/history", documentHandler.History)

			protected.GET("/invoices", invoiceHandler.ListCompanyInvoices)
			protected.GET("/invoices/clients", invoiceHandler.ListClientInvoices)
			protected.GET("/invoices/custom", invoiceHandler.ListCustomInvoices)
			protected.PUT("/invoices/:id/submit", invoiceHandler.Submit)

			protected.POST("/disputes", disputeHandler.Raise)
			protected.GET("/disputes", disputeHandler.List)
			protected.PUT("/disputes/:id/resolve", disputeHandler.Resolve)

			protected.POST("/shares", shareHandler.CreateLink)
			protected.GET("/shares", shareHandler.ListLinks)
			protected.DELETE("/shares/:id", shareHandler.RevokeLink)
		}
	}
}

// Health check handler
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": s.config.Environment,
	})
}

// System status handler
func (s *Server) systemStatus(c *gin.Context) {
	status := "healthy"
	if err := s.services.HealthCheck(); err != nil {
		status = "unhealthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}

// corsMiddleware configures CORS
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(corsConfig)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}
