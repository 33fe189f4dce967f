// internal/handler/config_handler.go
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"device-configurator/internal/discovery"
	"device-configurator/internal/model"
	"device-configurator/internal/repository"
	"device-configurator/internal/service"
	"device-configurator/internal/utils"
)

// ConfigHandler exposes the configuration session over HTTP
type ConfigHandler struct {
	sessions *service.SessionManager
	scanner  *discovery.ScannerManager
	history  repository.SnapshotRepository
	logger   *utils.ServiceLogger
}

// NewConfigHandler creates a new configuration handler
func NewConfigHandler(sessions *service.SessionManager, scanner *discovery.ScannerManager, history repository.SnapshotRepository, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		sessions: sessions,
		scanner:  scanner,
		history:  history,
		logger:   utils.NewServiceLogger(logger, "config-handler"),
	}
}

// RegisterRoutes registers configuration routes
func (h *ConfigHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ports", h.ListPorts)
	router.GET("/snapshots", h.ListSnapshots)

	session := router.Group("/session")
	{
		session.POST("/connect", h.Connect)
		session.GET("", h.GetSession)
		session.POST("/read", h.Read)
		session.PUT("/values", h.SetValues)
		session.POST("/write", h.Write)
		session.POST("/factory-reset", h.FactoryReset)
	}
}

// ConnectRequest selects the port to attach
type ConnectRequest struct {
	Port string `json:"port"`
}

// ListPorts lists the serial ports of the host
// @Summary List ports
// @Description List serial ports with their USB vendor and product ids
// @Tags Ports
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]discovery.DiscoveredPort} "Ports listed"
// @Failure 500 {object} utils.APIResponse "Enumeration failed"
// @Router /ports [get]
func (h *ConfigHandler) ListPorts(c *gin.Context) {
	ports, err := h.scanner.ScanAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list ports", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list ports", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Ports listed", ports)
}

// Connect attaches the device on a port and reads its configuration
// @Summary Connect device
// @Description Reset the device, identify it and read its configuration
// @Tags Session
// @Accept json
// @Produce json
// @Param request body ConnectRequest false "Port to open; the configured port when empty"
// @Success 200 {object} utils.APIResponse{data=service.SessionInfo} "Device connected"
// @Failure 404 {object} utils.APIResponse "Unknown device"
// @Failure 409 {object} utils.APIResponse "Device did not answer"
// @Failure 502 {object} utils.APIResponse "Transport or protocol failure"
// @Router /session/connect [post]
func (h *ConfigHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	info, err := h.sessions.Connect(c.Request.Context(), req.Port)
	if err != nil && info == nil {
		h.logger.Warn("Failed to connect device", zap.String("port", req.Port), zap.Error(err))
		utils.ErrorResponse(c, utils.StatusForError(err), "Failed to connect device", err)
		return
	}
	if err != nil {
		utils.ErrorResponse(c, utils.StatusForError(err), "Device connected but configuration read failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device connected", info)
}

// GetSession returns the attached device with its current values
// @Summary Get session
// @Description Get the attached device, its specification and current values
// @Tags Session
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.SessionInfo} "Session retrieved"
// @Failure 409 {object} utils.APIResponse "No device attached"
// @Router /session [get]
func (h *ConfigHandler) GetSession(c *gin.Context) {
	info, err := h.sessions.Info()
	if err != nil {
		utils.ErrorResponse(c, utils.StatusForError(err), "No device attached", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Session retrieved", info)
}

// Read reads the configuration from the device again
// @Summary Read configuration
// @Description Query every configuration value from the device
// @Tags Session
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.SessionInfo} "Config read from device"
// @Failure 409 {object} utils.APIResponse "No device attached"
// @Failure 502 {object} utils.APIResponse "Transport failure"
// @Router /session/read [post]
func (h *ConfigHandler) Read(c *gin.Context) {
	h.run(c, service.StatusReadDone, func(ctx context.Context, s *service.ConfigSession) error {
		return s.ReadAll(ctx)
	})
}

// SetValues applies edited values to the session
// @Summary Set values
// @Description Apply edited values keyed by item id; choice items take the option index
// @Tags Session
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Values by item id"
// @Success 200 {object} utils.APIResponse{data=service.SessionInfo} "Values applied"
// @Failure 422 {object} utils.APIResponse "Invalid value"
// @Router /session/values [put]
func (h *ConfigHandler) SetValues(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.run(c, "Values applied", func(_ context.Context, s *service.ConfigSession) error {
		return s.SetValues(values)
	})
}

// Write writes every value to the device
// @Summary Write configuration
// @Description Validate and send every value; stops at the first failing field
// @Tags Session
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.SessionInfo} "Config written to device"
// @Failure 422 {object} utils.APIResponse "Invalid field"
// @Failure 502 {object} utils.APIResponse "Field could not be written"
// @Router /session/write [post]
func (h *ConfigHandler) Write(c *gin.Context) {
	h.run(c, service.StatusWriteDone, func(ctx context.Context, s *service.ConfigSession) error {
		return s.WriteAll(ctx)
	})
}

// FactoryReset restores the factory settings
// @Summary Factory reset
// @Description Restore the device defaults and read them back
// @Tags Session
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.SessionInfo} "Factory settings done"
// @Failure 502 {object} utils.APIResponse "Factory settings failed"
// @Router /session/factory-reset [post]
func (h *ConfigHandler) FactoryReset(c *gin.Context) {
	h.run(c, service.StatusFactoryDone, func(ctx context.Context, s *service.ConfigSession) error {
		return s.FactoryReset(ctx)
	})
}

// ListSnapshots lists recorded configurations
// @Summary List snapshots
// @Description List configurations read from or written to devices, newest first
// @Tags History
// @Produce json
// @Param product query string false "Filter by product"
// @Param model query string false "Filter by model"
// @Param kind query string false "Filter by kind" Enums(READ, WRITE, FACTORY_RESET)
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} utils.APIResponse{data=[]model.ConfigSnapshot} "Snapshots retrieved"
// @Failure 503 {object} utils.APIResponse "History disabled"
// @Router /snapshots [get]
func (h *ConfigHandler) ListSnapshots(c *gin.Context) {
	if h.history == nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "History disabled", nil)
		return
	}

	filter := &repository.SnapshotFilter{
		Product: c.Query("product"),
		Model:   c.Query("model"),
		Kind:    model.SnapshotKind(c.Query("kind")),
	}
	if limit := c.Query("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil || l <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		filter.Limit = l
	}

	snapshots, err := h.history.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list snapshots", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list snapshots", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Snapshots retrieved", snapshots)
}

// run executes fn on the attached session and answers with the session
// state
func (h *ConfigHandler) run(c *gin.Context, message string, fn func(context.Context, *service.ConfigSession) error) {
	ctx := c.Request.Context()
	err := h.sessions.Do(func(s *service.ConfigSession) error {
		return fn(ctx, s)
	})
	if err != nil {
		h.logger.Warn("Session operation failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.ErrorResponse(c, utils.StatusForError(err), err.Error(), err)
		return
	}

	info, err := h.sessions.Info()
	if err != nil {
		utils.ErrorResponse(c, utils.StatusForError(err), "No device attached", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, info)
}
