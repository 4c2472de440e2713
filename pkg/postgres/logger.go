package postgres

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	pgx "github.com/jackc/pgx/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger forwards pgx driver logs to the zap logger carried by the context.
type Logger struct{}

var _ pgx.Logger = (*Logger)(nil)

// PgxLevel picks the driver verbosity for a zap level. Info is lowered to
// warn so query logs only appear in debug runs.
func PgxLevel(level zapcore.Level) pgx.LogLevel {
	switch level {
	case zapcore.DebugLevel:
		return pgx.LogLevelDebug
	case zapcore.InfoLevel, zapcore.WarnLevel:
		return pgx.LogLevelWarn
	default:
		return pgx.LogLevelError
	}
}

// ZapLevel maps a driver level back onto zap.
func ZapLevel(level pgx.LogLevel) zapcore.Level {
	switch level {
	case pgx.LogLevelTrace, pgx.LogLevelDebug:
		return zapcore.DebugLevel
	case pgx.LogLevelInfo:
		return zapcore.InfoLevel
	case pgx.LogLevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Log implements pgx.Logger.
func (l *Logger) Log(ctx context.Context, level pgx.LogLevel, msg string, data map[string]interface{}) {
	ctxzap.Extract(ctx).Log(ZapLevel(level), msg, zap.Any("data", redact(data)))
}

// redact hides connection secrets pgx includes in connect logs.
func redact(data map[string]interface{}) map[string]interface{} {
	if _, ok := data["password"]; !ok {
		return data
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	out["password"] = "******"
	return out
}
