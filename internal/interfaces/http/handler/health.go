package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pohub/backend/internal/interfaces/http/dto"
)

// Pinger is satisfied by the database wrapper
type Pinger interface {
	Ping() error
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	BaseHandler
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthData is the body of a health response
type HealthData struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Check godoc
// @ID           healthCheck
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthData]
// @Failure      503 {object} APIResponse[HealthData]
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	if h.db == nil {
		h.Success(c, HealthData{Status: "ok", Database: "unconfigured"})
		return
	}
	if err := h.db.Ping(); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    HealthData{Status: "degraded", Database: "down"},
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeInternal, Message: "database unreachable", RequestID: getRequestID(c)},
		})
		return
	}
	h.Success(c, HealthData{Status: "ok", Database: "up"})
}
