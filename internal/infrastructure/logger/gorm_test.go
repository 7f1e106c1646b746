package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func traceOnce(gl *GormLogger, ctx context.Context, elapsed time.Duration, err error) {
	gl.Trace(ctx, time.Now().Add(-elapsed), func() (string, int64) {
		return `SELECT * FROM "po_headers" WHERE vendor = 'zepto'`, 3
	}, err)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("error is logged with request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)
		ctx := context.WithValue(context.Background(), RequestIDKey, "req-7")

		traceOnce(gl, ctx, time.Millisecond, errors.New("connection reset"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Error", logs[0].Message)
		assert.Equal(t, "req-7", logs[0].ContextMap()["request_id"])
	})

	t.Run("record not found is ignored by default", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		traceOnce(gl, context.Background(), time.Millisecond, gormlogger.ErrRecordNotFound)
		assert.Empty(t, recorded.All())
	})

	t.Run("slow query warns", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))

		traceOnce(gl, context.Background(), time.Second, nil)
		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SLOW SQL")
	})

	t.Run("statement text can be suppressed", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info, WithSQLLimit(-1))

		traceOnce(gl, context.Background(), time.Millisecond, nil)
		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Query", logs[0].Message)
		assert.NotContains(t, logs[0].ContextMap(), "sql")
	})

	t.Run("long statements are truncated", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info, WithSQLLimit(10))

		traceOnce(gl, context.Background(), time.Millisecond, nil)
		logs := recorded.All()
		require.Len(t, logs, 1)
		fields := logs[0].ContextMap()
		assert.Equal(t, `SELECT * F...`, fields["sql"])
		assert.EqualValues(t, 49, fields["sql_bytes"])
	})

	t.Run("duplicate key is not an sql error", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)

		traceOnce(gl, context.Background(), time.Millisecond, gorm.ErrDuplicatedKey)
		assert.Empty(t, recorded.All())

		gl = NewGormLogger(zap.New(core), gormlogger.Info)
		traceOnce(gl, context.Background(), time.Millisecond, gorm.ErrDuplicatedKey)
		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL duplicate key", logs[0].Message)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Silent)

		traceOnce(gl, context.Background(), time.Second, errors.New("x"))
		assert.Empty(t, recorded.All())
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)
	changed := gl.LogMode(gormlogger.Info).(*GormLogger)

	assert.Equal(t, gormlogger.Info, changed.logLevel)
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("ERROR"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}

var _ gormlogger.Interface = (*GormLogger)(nil)
