package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const formatPretty = "pretty"

// Logger wraps zerolog.Logger with redaction and an optional audit sink.
// All emission paths run message and fields through the redactor before
// zerolog sees them, so sensitive content never reaches any output.
type Logger struct {
	logger   zerolog.Logger
	service  string
	redactor *Redactor
	audit    *AuditSink
}

// Init initializes the global logger from config.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	globalLogger = New(&cfg, cfg.ServiceName)

	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
}

// New creates a new logger instance with configuration.
func New(cfg *Config, serviceName string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := outputWriter(cfg)

	var zl zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || strings.ToLower(cfg.Format) == formatPretty {
		zl = newConsoleLogger(cfg, output)
	} else {
		zl = zerolog.New(output)
	}

	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}

	l := &Logger{
		logger:   zl,
		service:  serviceName,
		redactor: NewRedactor(),
	}

	if cfg.AuditFile != "" {
		sink, err := OpenAuditFile(cfg.AuditFile)
		if err != nil {
			// Logging infrastructure must not take down the host
			// application: degrade to normal logging only.
			l.logger.Warn().Err(err).Msg("audit sink unavailable")
		} else {
			l.audit = sink
		}
	}

	return l
}

// NewDefault creates a logger with default configuration.
func NewDefault(serviceName string) *Logger {
	cfg := &Config{
		Level:     "info",
		Format:    "console",
		Output:    "stdout",
		Timestamp: true,
	}
	return New(cfg, serviceName)
}

// NewFromEnv creates a logger configured from environment variables.
func NewFromEnv(serviceName string) *Logger {
	cfg := &Config{
		Level:     getEnvOrDefault("LOG_LEVEL", "info"),
		Format:    getEnvOrDefault("LOG_FORMAT", "console"),
		Output:    getEnvOrDefault("LOG_OUTPUT", "stdout"),
		NoColor:   getEnvOrDefault("LOG_NO_COLOR", "false") == "true",
		Timestamp: getEnvOrDefault("LOG_TIMESTAMP", "true") == "true",
		AuditFile: os.Getenv("AUDIT_LOG_FILE"),
	}
	return New(cfg, serviceName)
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger:   l.logger.With().Str(FieldComponent, name).Logger(),
		service:  l.service,
		redactor: l.redactor,
		audit:    l.audit,
	}
}

// WithFields returns a logger with additional fields. The fields are
// redacted at attach time.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	zc := l.logger.With()
	for k, v := range l.redactor.SanitizeFields(fields) {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger(), service: l.service, redactor: l.redactor, audit: l.audit}
}

// WithError returns a logger with a redacted error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		logger:   l.logger.With().Str(FieldError, l.redactor.SanitizeText(err.Error())).Logger(),
		service:  l.service,
		redactor: l.redactor,
		audit:    l.audit,
	}
}

// Redactor returns the redaction filter backing this logger.
func (l *Logger) Redactor() *Redactor { return l.redactor }

// GetLogger returns the underlying zerolog.Logger. Records emitted through
// it directly bypass redaction.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]any) {
	l.emit(l.logger.Debug(), msg, fields)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]any) {
	l.emit(l.logger.Info(), msg, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]any) {
	l.emit(l.logger.Warn(), msg, fields)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]any) {
	l.emit(l.logger.Error(), msg, fields)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(msg string, fields ...map[string]any) {
	l.emit(l.logger.Fatal(), msg, fields)
}

// LogSecurityEvent records a security-relevant event. The details are
// redacted, emitted through the normal logging path, and appended to the
// audit sink when one is configured. An audit write failure degrades to a
// single warning; it is never surfaced to the caller.
func (l *Logger) LogSecurityEvent(eventType string, details map[string]any) {
	sanitized := l.redactor.SanitizeFields(details)
	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Service:   l.service,
		Details:   sanitized,
	}

	ev := l.logger.Info().
		Str(FieldEventType, eventType).
		Str(FieldEventID, event.ID)
	if len(sanitized) > 0 {
		ev = ev.Fields(sanitized)
	}
	ev.Msg("security event")

	if l.audit == nil {
		return
	}
	if err := l.audit.Write(event); err != nil {
		l.logger.Warn().Err(err).Str(FieldEventType, eventType).Msg("audit sink write failed")
	}
}

func (l *Logger) emit(event *zerolog.Event, msg string, fields []map[string]any) {
	for _, fm := range fields {
		event.Fields(l.redactor.SanitizeFields(fm))
	}
	event.Msg(l.redactor.SanitizeText(msg))
}

// --- Global logger ---

var globalLogger *Logger

// SetGlobalLogger sets the global logger instance. Pass nil to reset so
// the next access constructs a fresh default; intended for tests.
func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("default")
	}
	return globalLogger
}

// Package-level convenience functions delegate to the global logger.

func Debug(msg string, fields ...map[string]any) {
	GetGlobalLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...map[string]any) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...map[string]any) {
	GetGlobalLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...map[string]any) {
	GetGlobalLogger().Error(msg, fields...)
}

// LogSecurityEvent records a security event through the global logger.
func LogSecurityEvent(eventType string, details map[string]any) {
	GetGlobalLogger().LogSecurityEvent(eventType, details)
}

// WithComponent returns a component-tagged logger from the global logger.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

// --- internal helpers ---

func outputWriter(cfg *Config) io.Writer {
	if cfg.FilePath != "" {
		if dir := filepath.Dir(cfg.FilePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "[logger] cannot create log directory %s: %v\n", dir, err)
				return os.Stderr
			}
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[logger] cannot open log file %s: %v\n", cfg.FilePath, err)
			return os.Stderr
		}
		return f
	}
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		return os.Stderr
	default:
		return os.Stdout
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func newConsoleLogger(cfg *Config, output io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i any) string {
			lvl := strings.ToUpper(fmt.Sprintf("%s", i))
			tag := map[string]string{
				"DEBUG": "[DBG]", "INFO": "[INF]", "WARN": "[WRN]",
				"ERROR": "[ERR]", "FATAL": "[FTL]",
			}[lvl]
			if tag == "" {
				tag = fmt.Sprintf("[%s]", lvl)
			}
			if !cfg.NoColor {
				color := map[string]string{
					"DEBUG": "\033[36m", "INFO": "\033[32m", "WARN": "\033[33m",
					"ERROR": "\033[31m", "FATAL": "\033[35m",
				}[lvl]
				if color != "" {
					tag = color + tag + "\033[0m"
				}
			}
			return tag
		},
		FormatFieldName: func(i any) string {
			return fmt.Sprintf("%s:", i)
		},
	}).With().Timestamp().Logger()
}
