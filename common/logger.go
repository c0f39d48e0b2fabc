// Context-aware logging helpers layered over the package Logger: immutable
// field-carrying loggers, service-scoped construction, correlation ids for
// grouping the log lines of one call, and operation timing.
package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LoggerConfig names the knobs NewLogger accepts.
type LoggerConfig struct {
	Level      logrus.Level
	JSONFormat bool
	TimeFormat string
}

// NewLogger builds a dedicated logrus instance with the stdout/stderr output
// split applied. Callers that don't need their own instance use the package
// Logger directly.
func NewLogger(cfg LoggerConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(cfg.Level)

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	if cfg.JSONFormat {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timeFormat})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: timeFormat, FullTimestamp: true})
	}

	logger.SetOutput(&OutputSplitter{})
	return logger
}

// ContextLogger carries a fixed field set applied to every line it emits.
// All With* methods return a copy; a ContextLogger handed to a callee is
// never mutated by it.
type ContextLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// NewContextLogger wraps logger (nil uses the package Logger) with base
// fields.
func NewContextLogger(logger *logrus.Logger, fields map[string]interface{}) *ContextLogger {
	if logger == nil {
		logger = Logger
	}
	base := make(logrus.Fields, len(fields))
	for k, v := range fields {
		base[k] = v
	}
	return &ContextLogger{logger: logger, fields: base}
}

func (cl *ContextLogger) clone(extra int) logrus.Fields {
	fields := make(logrus.Fields, len(cl.fields)+extra)
	for k, v := range cl.fields {
		fields[k] = v
	}
	return fields
}

// WithField returns a copy of cl carrying one additional field.
func (cl *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	fields := cl.clone(1)
	fields[key] = value
	return &ContextLogger{logger: cl.logger, fields: fields}
}

// WithFields returns a copy of cl carrying the additional fields.
func (cl *ContextLogger) WithFields(extra map[string]interface{}) *ContextLogger {
	fields := cl.clone(len(extra))
	for k, v := range extra {
		fields[k] = v
	}
	return &ContextLogger{logger: cl.logger, fields: fields}
}

// WithError returns a copy of cl carrying the error's message.
func (cl *ContextLogger) WithError(err error) *ContextLogger {
	return cl.WithField("error", err.Error())
}

func (cl *ContextLogger) Debug(msg string) { cl.logger.WithFields(cl.fields).Debug(msg) }
func (cl *ContextLogger) Info(msg string)  { cl.logger.WithFields(cl.fields).Info(msg) }
func (cl *ContextLogger) Warn(msg string)  { cl.logger.WithFields(cl.fields).Warn(msg) }
func (cl *ContextLogger) Error(msg string) { cl.logger.WithFields(cl.fields).Error(msg) }

func (cl *ContextLogger) Debugf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Debugf(format, args...)
}

func (cl *ContextLogger) Infof(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Infof(format, args...)
}

func (cl *ContextLogger) Warnf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Warnf(format, args...)
}

func (cl *ContextLogger) Errorf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Errorf(format, args...)
}

// ServiceLogger builds a ContextLogger stamped with a service name and
// version, the base logger an outer-layer process hands to its components.
func ServiceLogger(serviceName, serviceVersion string) *ContextLogger {
	return NewContextLogger(Logger, map[string]interface{}{
		"service": serviceName,
		"version": serviceVersion,
	})
}

// NewCorrelationID generates a short, prefixed correlation id for tagging the
// log lines belonging to a single call, e.g. "op-a1b2c3d4". A stream of log
// lines from one cooperative send() can be grepped back together by it.
func NewCorrelationID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String()[:8])
}

// WithCorrelationID attaches a fresh correlation id under the given field
// name, for callers that want every log line from one operation tagged
// without threading an id through by hand.
func (cl *ContextLogger) WithCorrelationID(field, prefix string) *ContextLogger {
	return cl.WithField(field, NewCorrelationID(prefix))
}

// LogOperation runs fn bracketed by start/end log lines carrying the elapsed
// time, returning fn's error unchanged.
func LogOperation(logger *ContextLogger, operation string, fn func() error) error {
	start := time.Now()
	logger.WithField("operation", operation).Info("operation started")

	err := fn()

	elapsed := time.Since(start)
	entry := logger.WithFields(map[string]interface{}{
		"operation":   operation,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("operation failed")
		return err
	}
	entry.Info("operation completed")
	return nil
}

// LogDuration returns a func that, when called, logs the time elapsed since
// LogDuration itself was called. Meant for defer.
func LogDuration(logger *ContextLogger, operation string) func() {
	start := time.Now()
	return func() {
		logger.WithFields(map[string]interface{}{
			"operation":   operation,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("operation completed")
	}
}
