package logger

import (
	"context"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the gin context key the request-id middleware stores under.
const RequestIDKey = "request_id"

// New builds the service logger. In production it emits JSON with ISO8601
// timestamps; anywhere else it uses the colored development encoder. A non-nil
// extra writer (CloudWatch Logs) receives a JSON copy of every entry.
func New(env, service string, extra io.Writer) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var log *zap.Logger
	if extra == nil {
		var err error
		log, err = cfg.Build()
		if err != nil {
			return nil, err
		}
	} else {
		level := zap.NewAtomicLevelAt(cfg.Level.Level())
		console := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg.EncoderConfig), zapcore.Lock(zapcore.AddSync(os.Stdout)), level)

		jsonCfg := cfg.EncoderConfig
		jsonCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		shipped := zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.AddSync(extra), level)

		log = zap.New(zapcore.NewTee(console, shipped), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return log.With(zap.String("service", service)), nil
}

// FromContext returns logger enriched with the request id when ctx is a gin
// context carrying one.
func FromContext(ctx context.Context, log *zap.Logger) *zap.Logger {
	if rid := RequestID(ctx); rid != "" {
		return log.With(zap.String(RequestIDKey, rid))
	}
	return log
}

// RequestID extracts the request id from a gin context or a context produced by WithRequestID.
func RequestID(ctx context.Context) string {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.GetString(RequestIDKey)
	}
	if v, ok := ctx.Value(requestIDCtxKey{}).(string); ok {
		return v
	}
	return ""
}

type requestIDCtxKey struct{}

// WithRequestID stores id on a plain context so it survives past the gin handler
// (for example into a detached notification goroutine).
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, id)
}
