package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pohub/backend/internal/infrastructure/logger"
	"github.com/pohub/backend/internal/interfaces/http/dto"
	"github.com/pohub/backend/internal/interfaces/http/handler"
	"github.com/pohub/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// MultipartSlack is added to the upload limit to leave room for form boundaries and fields
const MultipartSlack int64 = 64 << 10

// EngineConfig collects what the HTTP engine needs from the application config
type EngineConfig struct {
	Logger         *zap.Logger
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Tracing        middleware.TracingConfig
	MaxBodyBytes   int64
	TrustedProxies []string
}

// NewEngine builds a gin engine with the middleware chain in its fixed order:
// request id, recovery, tracing, access log, security headers, CORS, body limit.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(cfg.Logger))
	if cfg.Tracing.Enabled {
		engine.Use(
			middleware.TracingWithConfig(cfg.Tracing),
			middleware.TracingAttributeInjector(),
			middleware.SpanErrorMarker(),
		)
	}
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}

	middleware.SetupValidator()

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "route not found", c.GetString("request_id")))
	})

	return engine, nil
}

// PurchaseOrderRoutes lays out the /po endpoints
func PurchaseOrderRoutes(h *handler.PurchaseOrderHandler) *DomainGroup {
	return NewDomainGroup("purchase-orders", "/po").
		GET("", h.List).
		GET("/vendors", h.Vendors).
		POST("/preview", h.Preview).
		POST("/import/:vendor", h.Import).
		GET("/by-number/:vendor/:number", h.GetByNumber).
		POST("/:vendor", h.Create).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		PATCH("/:id/status", h.UpdateStatus).
		DELETE("/:id", h.Delete)
}

// RegisterHealth mounts the health check outside the API prefix
func RegisterHealth(engine *gin.Engine, h *handler.HealthHandler) {
	engine.GET("/health", h.Check)
}
