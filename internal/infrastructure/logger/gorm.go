package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSQLLimit caps logged statement text. Line inserts for a large
// PO carry hundreds of value tuples.
const DefaultSQLLimit = 2048

// GormLogger routes GORM statement logs through zap
type GormLogger struct {
	logger        *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
	skipNotFound  bool
	sqlLimit      int
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is logged as slow
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowThreshold = threshold
	}
}

// WithIgnoreRecordNotFoundError drops ErrRecordNotFound from the error log
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.skipNotFound = ignore
	}
}

// WithSQLLimit caps logged statement text at n bytes. n < 0 omits the
// statement, n == 0 logs it whole.
func WithSQLLimit(n int) GormLoggerOption {
	return func(l *GormLogger) {
		l.sqlLimit = n
	}
}

// NewGormLogger creates a GORM logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:        zapLogger.Named("gorm"),
		logLevel:      level,
		slowThreshold: 200 * time.Millisecond,
		skipNotFound:  true,
		sqlLimit:      DefaultSQLLimit,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface.
// A duplicate key is an expected outcome of importing a known PO and is
// logged at debug instead of as an SQL error.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}
	if err != nil && l.skipNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold
	duplicate := err != nil && errors.Is(err, gorm.ErrDuplicatedKey)

	logErr := err != nil && !duplicate && l.logLevel >= gormlogger.Error
	logSlow := slow && l.logLevel >= gormlogger.Warn
	logInfo := l.logLevel >= gormlogger.Info
	if !logErr && !logSlow && !logInfo {
		return
	}

	sql, rows := fc()
	fields := append(l.statementFields(sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	)
	fields = append(fields, contextFields(ctx)...)

	switch {
	case logErr:
		l.logger.Error("SQL Error", append(fields, zap.Error(err))...)
	case logSlow:
		l.logger.Warn(fmt.Sprintf("SLOW SQL >= %v", l.slowThreshold), fields...)
	case duplicate:
		l.logger.Debug("SQL duplicate key", append(fields, zap.Error(err))...)
	default:
		l.logger.Debug("SQL Query", fields...)
	}
}

func (l *GormLogger) statementFields(sql string) []zap.Field {
	switch {
	case l.sqlLimit < 0:
		return nil
	case l.sqlLimit > 0 && len(sql) > l.sqlLimit:
		return []zap.Field{
			zap.String("sql", sql[:l.sqlLimit]+"..."),
			zap.Int("sql_bytes", len(sql)),
		}
	}
	return []zap.Field{zap.String("sql", sql)}
}

func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	return fields
}

// MapGormLogLevel maps an application log level to the GORM level.
// GORM's info level logs every statement, so it is only used for debug.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
