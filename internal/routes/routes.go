// internal/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"device-configurator/internal/config"
	"device-configurator/internal/discovery"
	"device-configurator/internal/handler"
	"device-configurator/internal/middleware"
	"device-configurator/internal/repository"
	"device-configurator/internal/service"
	"device-configurator/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config   *config.Config
	logger   *zap.Logger
	db       handler.DatabaseChecker
	sessions *service.SessionManager
	scanner  *discovery.ScannerManager
	history  repository.SnapshotRepository
	eventBus *handler.EventBus
}

// NewRouter creates a new router instance. db may be nil.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	db handler.DatabaseChecker,
	sessions *service.SessionManager,
	scanner *discovery.ScannerManager,
	history repository.SnapshotRepository,
	eventBus *handler.EventBus,
) *Router {
	return &Router{
		config:   config,
		logger:   logger,
		db:       db,
		sessions: sessions,
		scanner:  scanner,
		history:  history,
		eventBus: eventBus,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if r.config.App.Environment == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Server))
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.db, r.sessions, r.config, r.logger)
	configHandler := handler.NewConfigHandler(r.sessions, r.scanner, r.history, r.logger)
	wsHandler := handler.NewWebSocketHandler(r.sessions, r.eventBus, r.logger)

	healthHandler.RegisterRoutes(router.Group(""))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	configHandler.RegisterRoutes(router.Group("/api/v1"))
	wsHandler.RegisterRoutes(router.Group("/ws"))

	r.logger.Debug("All routes configured")
}
