// internal/handler/health_handler.go
package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"device-configurator/internal/config"
	"device-configurator/internal/service"
	"device-configurator/internal/utils"
)

// DatabaseChecker reports database connectivity and pool usage
type DatabaseChecker interface {
	HealthCheck() error
	GetStats() sql.DBStats
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db        DatabaseChecker
	sessions  *service.SessionManager
	config    *config.Config
	startedAt time.Time
	logger    *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler. db is nil when history is
// kept in memory.
func NewHealthHandler(db DatabaseChecker, sessions *service.SessionManager, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		sessions:  sessions,
		config:    config,
		startedAt: time.Now(),
		logger:    utils.NewServiceLogger(logger, "health-handler"),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Get service health including database and device attachment
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).String(),
		Checks:    make(map[string]CheckResult),
	}

	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			h.logger.Error("Database health check failed", zap.Error(err))
			health.Status = "unhealthy"
			health.Checks["database"] = CheckResult{Status: "unhealthy", Message: err.Error()}
		} else {
			health.Checks["database"] = CheckResult{Status: "healthy", Message: "Database connection OK"}
		}
		health.Checks["database_stats"] = CheckResult{Status: "healthy", Data: poolStats(h.db.GetStats())}
	}

	device := CheckResult{Status: "healthy", Message: "No device attached"}
	if info, err := h.sessions.Info(); err == nil {
		device.Message = "Device attached"
		device.Data = map[string]interface{}{
			"port":      info.Port,
			"signature": info.Identity.String(),
			"title":     info.Title,
		}
		if stats, ok := h.sessions.TransportStats(); ok {
			device.Data["transport"] = stats
		}
	}
	health.Checks["device"] = device

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// ReadinessCheck reports whether the service can take requests
// @Summary Readiness check
// @Description Check if service is ready to accept traffic
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "database not available",
			})
			return
		}
	}

	response := gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	}
	if h.db != nil {
		response["database"] = poolStats(h.db.GetStats())
	}
	c.JSON(http.StatusOK, response)
}

// LivenessCheck reports that the process answers
// @Summary Liveness check
// @Description Check if service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

func poolStats(stats sql.DBStats) map[string]interface{} {
	return map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
