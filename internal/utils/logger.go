package utils

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out of the service
const RequestIDHeader = "X-Request-ID"

const loggerContextKey = "logger"

// Logger is the logging surface of the HTTP layer. Services take *slog.Logger directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger

	LogRequest(method, path string, statusCode int, latency time.Duration, args ...any)
	LogError(err error, msg string, args ...any)
}

type slogLogger struct {
	*slog.Logger
}

// NewSlogLogger adapts a slog.Logger to Logger
func NewSlogLogger(logger *slog.Logger) Logger {
	return slogLogger{Logger: logger}
}

// NewLogger builds the process logger: JSON in production, text otherwise
func NewLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (l slogLogger) With(args ...any) Logger {
	return slogLogger{Logger: l.Logger.With(args...)}
}

// LogRequest writes one line per finished request. 4xx is a warning, 5xx an error.
func (l slogLogger) LogRequest(method, path string, statusCode int, latency time.Duration, args ...any) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	attrs := append([]any{
		"method", method,
		"path", path,
		"status_code", statusCode,
		"latency", latency.String(),
	}, args...)
	l.Log(context.Background(), level, "HTTP request", attrs...)
}

func (l slogLogger) LogError(err error, msg string, args ...any) {
	l.Error(msg, append([]any{"error", err}, args...)...)
}

// RequestLogger tags every request with an id, echoed back in the response,
// stores a logger carrying that id in the gin context and logs the outcome
// after the handler chain ran.
func RequestLogger(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		scoped := logger.With("request_id", requestID)
		c.Set(loggerContextKey, scoped)
		c.Next()

		scoped.LogRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(started),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent())
	}
}

// FromContext returns the request logger stored by RequestLogger, or fallback
// when the middleware did not run.
func FromContext(c *gin.Context, fallback Logger) Logger {
	if value, ok := c.Get(loggerContextKey); ok {
		if logger, ok := value.(Logger); ok {
			return logger
		}
	}
	return fallback
}
