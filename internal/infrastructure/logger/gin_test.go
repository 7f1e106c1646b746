package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findHTTPLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, e := range recorded.All() {
		if e.Message == "HTTP Request" {
			return e
		}
	}
	t.Fatal("HTTP Request log not found")
	return observer.LoggedEntry{}
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"ok is info", http.StatusOK, zapcore.InfoLevel},
		{"conflict is warn", http.StatusConflict, zapcore.WarnLevel},
		{"server error is error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)
			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/api/po", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/po?vendor=zepto", nil)
			router.ServeHTTP(w, req)

			entry := findHTTPLog(t, recorded)
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, "vendor=zepto", entry.ContextMap()["query"])
		})
	}
}

func TestGinMiddleware_PropagatesContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-9")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))

	var uploader, requestID string
	router.POST("/api/po/preview", func(c *gin.Context) {
		ctx := c.Request.Context()
		uploader = GetUploader(ctx)
		requestID = GetRequestID(ctx)
		L(ctx).Info("previewed")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/po/preview", nil)
	req.Header.Set(UploaderHeader, "ops")
	router.ServeHTTP(w, req)

	assert.Equal(t, "ops", uploader)
	assert.Equal(t, "req-9", requestID)

	var previewed *observer.LoggedEntry
	for _, e := range recorded.All() {
		if e.Message == "previewed" {
			e := e
			previewed = &e
		}
	}
	require.NotNil(t, previewed)
	assert.Equal(t, "req-9", previewed.ContextMap()["request_id"])
	assert.Equal(t, "ops", previewed.ContextMap()["uploaded_by"])

	entry := findHTTPLog(t, recorded)
	assert.Equal(t, "ops", entry.ContextMap()["uploaded_by"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"ERR_INTERNAL"`)
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "Panic recovered", recorded.All()[0].Message)
}
