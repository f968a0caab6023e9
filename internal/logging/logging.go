// Package logging builds the service's structured logger.
package logging

import (
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/todo-api/internal/config"
)

// New returns a logger writing to stderr configured from cfg.
func New(cfg config.LogConfig) *log.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, cfg config.LogConfig) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(cfg.Level),
		Formatter:       ParseFormatter(cfg.Format),
		ReportTimestamp: true,
		ReportCaller:    cfg.Caller,
		Prefix:          "todo-api",
	})
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a formatter name, falling back to text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// StandardLog adapts logger for APIs that want a *log.Logger, such as
// http.Server.ErrorLog and gorm's logger writer.
func StandardLog(logger *log.Logger, level log.Level) *stdlog.Logger {
	return logger.StandardLog(log.StandardLogOptions{ForceLevel: level})
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
