package handlers

import (
	"fmt"

	"github.com/SscSPs/ledger_mapping_app/cmd/docs"
	portssvc "github.com/SscSPs/ledger_mapping_app/internal/core/ports/services"
	"github.com/SscSPs/ledger_mapping_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	if err := registerValidators(); err != nil {
		return fmt.Errorf("registering validators: %w", err)
	}

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupSwaggerRoutes(r, cfg)
	setupAPIV1Routes(r, cfg, services)
	return nil
}

// setupSwaggerRoutes serves the API docs outside production
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	_ *config.Config,
	service *portssvc.ServiceContainer,
) {
	workplace := r.Group("/api/v1/workplaces/:workplace_id")

	registerMappingRoutes(workplace, service.Workspaces)
	registerAllocationRoutes(workplace, service.Workspaces)
}
