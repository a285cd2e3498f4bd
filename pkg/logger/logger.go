package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance writing to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w at the given level
func NewWithWriter(w io.Writer, levelStr string) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text for development, JSON for everything else
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Discard returns a logger that drops every record
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Booking lifecycle logging methods

// LogBookingCreated logs when a booking is created
func (l *Logger) LogBookingCreated(ctx context.Context, reference, eventID, userID string, attendees int) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.String("booking_reference", reference),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
		slog.Int("attendees", attendees),
	)
}

// LogBookingStatusChanged logs a status transition
func (l *Logger) LogBookingStatusChanged(ctx context.Context, reference, from, to string) {
	l.Logger.InfoContext(ctx,
		"Booking Status Changed",
		slog.String("booking_reference", reference),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogBookingDeleted logs an administrative hard delete
func (l *Logger) LogBookingDeleted(ctx context.Context, reference, adminID string) {
	l.Logger.WarnContext(ctx,
		"Booking Deleted",
		slog.String("booking_reference", reference),
		slog.String("admin_id", adminID),
	)
}

// Security logging methods

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
