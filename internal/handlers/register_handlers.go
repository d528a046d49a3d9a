package handlers

import (
	"github.com/strataops/strataledger/cmd/docs"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/middleware"
	"github.com/strataops/strataledger/internal/obsmetrics"
	"github.com/strataops/strataledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	r.GET("/", getHome)

	// Add health check route
	healthCheck := func(c *gin.Context) {
		c.String(200, "OK")
	}
	r.GET("/health", healthCheck)
	r.GET("/healthz", healthCheck)

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(obsmetrics.Handler()))

	// Register public authentication routes
	registerAuthRoutes(r, cfg, services)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Routes that only need authentication: user profile plus the association
	// bootstrap endpoints that run before any X-Association-ID exists.
	registerUserRoutes(v1, services.User)
	registerAssociationRoutes(v1, services.Association)

	// Everything else runs inside an association scope resolved from the
	// X-Association-ID header.
	scoped := v1.Group("", middleware.AssociationScopeMiddleware(services.Association))

	registerAccountRoutes(scoped, services.Account)
	registerJournalRoutes(scoped, services.Journal, services.Idempotency)
	registerChargeRoutes(scoped, services.Charge, services.Idempotency)
	registerPaymentRoutes(scoped, services.Payment, services.Idempotency)
	registerUnitRoutes(scoped, services.Association, services.Charge, services.Payment)
	registerReportingRoutes(scoped, services.Reporting)
	registerOutboxRoutes(scoped, services.Outbox)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
