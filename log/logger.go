package log

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-press/inkwell/utils"
)

const (
	LogModuleKey       = "module"
	LogComponentKey    = "component"
	LogTraceIDKey      = "trace_id"
	LogTimestampFormat = time.RFC3339Nano

	ErrInvalidLogLevel = utils.Error("invalid log level")
)

// Logger wraps zerolog.Logger to provide consistent logging patterns
// across the application.
type Logger struct {
	logger     zerolog.Logger
	moduleInfo string
	traceID    string
}

// Config contains configuration for the global logger.
type Config struct {
	Level            string `json:"level"`
	Format           string `json:"format"` // "console" or "json"
	IncludeTimestamp bool   `json:"includeTimestamp"`
	IncludeCaller    bool   `json:"includeCaller"`
}

// NewDefaultConfig returns a default logging configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Level:            "info",
		Format:           "json",
		IncludeTimestamp: true,
		IncludeCaller:    false,
	}
}

// Validate checks config values.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return ErrInvalidLogLevel
	}
	return nil
}

// Configure configures the global logger based on the provided configuration.
func Configure(cfg *Config) error {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, cfg.Level)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = LogTimestampFormat

	var baseLogger zerolog.Logger
	if cfg.Format == "console" {
		output := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.TimeFormat = LogTimestampFormat
		})
		baseLogger = zerolog.New(output).Level(level)
	} else {
		baseLogger = zerolog.New(os.Stderr).Level(level)
	}

	if cfg.IncludeTimestamp {
		baseLogger = baseLogger.With().Timestamp().Logger()
	}
	if cfg.IncludeCaller {
		baseLogger = baseLogger.With().Caller().Logger()
	}

	log.Logger = baseLogger
	return nil
}

// New creates a new logger with module information.
func New(module string) *Logger {
	return &Logger{
		logger:     log.With().Str(LogModuleKey, module).Logger(),
		moduleInfo: module,
	}
}

// NewWithComponent creates a new logger with module and component information.
func NewWithComponent(module, component string) *Logger {
	return &Logger{
		logger: log.With().
			Str(LogModuleKey, module).
			Str(LogComponentKey, component).
			Logger(),
		moduleInfo: fmt.Sprintf("%s.%s", module, component),
	}
}

// WithTraceID creates a new logger with the specified trace ID.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{
		logger:     l.logger.With().Str(LogTraceIDKey, traceID).Logger(),
		moduleInfo: l.moduleInfo,
		traceID:    traceID,
	}
}

// WithField adds a field to the logger.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		logger:     l.logger.With().Interface(key, value).Logger(),
		moduleInfo: l.moduleInfo,
		traceID:    l.traceID,
	}
}

// GetTraceID returns the trace ID associated with this logger.
func (l *Logger) GetTraceID() string {
	return l.traceID
}

// Debug logs a debug message with the given fields.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	event := l.logger.Debug()
	if len(fields) > 0 {
		for k, v := range fields[0] {
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

// Info logs an info message with the given fields.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	event := l.logger.Info()
	if len(fields) > 0 {
		for k, v := range fields[0] {
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

// Warn logs a warning message with the given fields.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	event := l.logger.Warn()
	if len(fields) > 0 {
		for k, v := range fields[0] {
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

// Error logs an error message with the given fields.
func (l *Logger) Error(err error, msg string, fields ...map[string]interface{}) {
	event := l.logger.Error()
	if err != nil {
		event = event.Err(err)
	}
	if len(fields) > 0 {
		for k, v := range fields[0] {
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

// Fatal logs a fatal message with the given fields and exits the application.
func (l *Logger) Fatal(err error, msg string, fields ...map[string]interface{}) {
	event := l.logger.Fatal()
	if err != nil {
		event = event.Err(err)
	}
	if len(fields) > 0 {
		for k, v := range fields[0] {
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

// GetZerolog returns the underlying zerolog.Logger.
func (l *Logger) GetZerolog() zerolog.Logger {
	return l.logger
}
