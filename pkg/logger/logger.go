// Package logger provides structured logging for the compliance service.
// It supports multiple log levels, JSON formatting, and OpenTelemetry trace correlation.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/compliance/pkg/constants"
)

// ================================================================================
// Logger Interface
// ================================================================================

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, message string, fields ...Field)

	// Info logs an informational message
	Info(ctx context.Context, message string, fields ...Field)

	// Warn logs a warning message
	Warn(ctx context.Context, message string, fields ...Field)

	// Error logs an error message
	Error(ctx context.Context, message string, err error, fields ...Field)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, message string, err error, fields ...Field)

	// WithFields creates a new logger with additional fields
	WithFields(fields ...Field) Logger

	// WithComponent creates a new logger for a specific component
	WithComponent(component string) Logger

	// SetLevel sets the logging level
	SetLevel(level constants.LogLevel)

	// GetLevel returns the current logging level
	GetLevel() constants.LogLevel
}

// ================================================================================
// Field Type for Structured Logging
// ================================================================================

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key string, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Duration creates a duration field
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time creates a time field
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

// Any creates a field with any type
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// ================================================================================
// JSON fallback logger
// ================================================================================

// contextFields lists the context values copied onto every entry.
var contextFields = []constants.ContextKey{
	constants.ContextKeyRequestID,
	constants.ContextKeyTenantID,
	constants.ContextKeyActorID,
}

// jsonLogger writes one flat JSON object per line. It is used before zap is configured
// and by tools that only need stderr diagnostics.
type jsonLogger struct {
	mu        *sync.Mutex
	level     *atomic.Int32
	out       io.Writer
	component string
	fields    []Field
}

// NewLogger creates a JSON logger writing to output (stdout when nil).
func NewLogger(level constants.LogLevel, output io.Writer) Logger {
	if output == nil {
		output = os.Stdout
	}
	lv := &atomic.Int32{}
	lv.Store(int32(level))
	return &jsonLogger{mu: &sync.Mutex{}, level: lv, out: output}
}

func (l *jsonLogger) enabled(level constants.LogLevel) bool {
	return level >= constants.LogLevel(l.level.Load())
}

func (l *jsonLogger) Debug(ctx context.Context, message string, fields ...Field) {
	l.write(ctx, constants.LogLevelDebug, message, nil, fields)
}

func (l *jsonLogger) Info(ctx context.Context, message string, fields ...Field) {
	l.write(ctx, constants.LogLevelInfo, message, nil, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, message string, fields ...Field) {
	l.write(ctx, constants.LogLevelWarn, message, nil, fields)
}

func (l *jsonLogger) Error(ctx context.Context, message string, err error, fields ...Field) {
	l.write(ctx, constants.LogLevelError, message, err, fields)
}

// Fatal is written regardless of level, then the process exits.
func (l *jsonLogger) Fatal(ctx context.Context, message string, err error, fields ...Field) {
	l.write(ctx, constants.LogLevelFatal, message, err, fields)
	os.Exit(1)
}

func (l *jsonLogger) WithFields(fields ...Field) Logger {
	n := *l
	n.fields = append(append([]Field(nil), l.fields...), fields...)
	return &n
}

func (l *jsonLogger) WithComponent(component string) Logger {
	n := *l
	n.component = component
	return &n
}

// SetLevel changes the level of this logger and of every logger derived from it.
func (l *jsonLogger) SetLevel(level constants.LogLevel) {
	l.level.Store(int32(level))
}

func (l *jsonLogger) GetLevel() constants.LogLevel {
	return constants.LogLevel(l.level.Load())
}

func (l *jsonLogger) write(ctx context.Context, level constants.LogLevel, message string, err error, fields []Field) {
	if level != constants.LogLevelFatal && !l.enabled(level) {
		return
	}

	entry := make(map[string]interface{}, 8+len(l.fields)+len(fields))
	for _, f := range l.fields {
		entry[f.Key] = redact(f.Key, f.Value)
	}
	for _, f := range fields {
		entry[f.Key] = redact(f.Key, f.Value)
	}
	if ctx != nil {
		for _, key := range contextFields {
			if v := ctx.Value(key); v != nil {
				entry[string(key)] = v
			}
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			entry["trace_id"] = sc.TraceID().String()
			entry["span_id"] = sc.SpanID().String()
		}
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	if level >= constants.LogLevelError {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry["caller"] = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		}
	}
	if l.component != "" {
		entry["component"] = l.component
	}
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = strings.ToUpper(level.String())
	entry["message"] = message

	data, marshalErr := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	if marshalErr != nil {
		fmt.Fprintf(l.out, "%s %s (unencodable fields: %v)\n", entry["level"], message, marshalErr)
		return
	}
	_, _ = l.out.Write(append(data, '\n'))
}

// redact hides credentials that reach the logs through config or connection strings.
func redact(key string, value interface{}) interface{} {
	str, isString := value.(string)
	if isString && strings.Contains(str, "://") {
		if u, err := url.Parse(str); err == nil && u.User != nil {
			return u.Redacted()
		}
	}
	k := strings.ToLower(key)
	if strings.Contains(k, "password") || strings.Contains(k, "secret") || strings.HasSuffix(k, "dsn") {
		return "***"
	}
	return value
}

// ================================================================================
// Audit Trail Logging
// ================================================================================

// AuditTrail writes compliance-relevant state changes as structured info entries
type AuditTrail struct {
	logger Logger
}

// NewAuditTrail creates an audit trail writer on top of logger
func NewAuditTrail(logger Logger) *AuditTrail {
	return &AuditTrail{logger: logger.WithComponent("audit_trail")}
}

// Record logs a single audit trail event
func (a *AuditTrail) Record(ctx context.Context, event constants.EventType, fields ...Field) {
	all := append([]Field{
		String("event_type", string(event)),
		Time("event_timestamp", time.Now().UTC()),
	}, fields...)
	a.logger.Info(ctx, "Audit trail event", all...)
}

// ================================================================================
// Performance Logging
// ================================================================================

// PerformanceLogger tracks operation performance
type PerformanceLogger struct {
	logger        Logger
	slowThreshold time.Duration
}

// NewPerformanceLogger creates a new performance logger
func NewPerformanceLogger(logger Logger) *PerformanceLogger {
	return &PerformanceLogger{
		logger:        logger.WithComponent("performance"),
		slowThreshold: time.Second,
	}
}

// StartOperation returns a function that logs the elapsed time when called
func (p *PerformanceLogger) StartOperation(ctx context.Context, operation string) func(...Field) {
	start := time.Now()
	return func(fields ...Field) {
		d := time.Since(start)
		all := append([]Field{
			String("operation", operation),
			Duration("duration", d),
			Int64("duration_ms", d.Milliseconds()),
		}, fields...)
		if d > p.slowThreshold {
			p.logger.Warn(ctx, "Slow operation detected", all...)
			return
		}
		p.logger.Debug(ctx, "Operation completed", all...)
	}
}
