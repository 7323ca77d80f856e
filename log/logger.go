package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/flowdeck-app/flowdeck/config"
	"github.com/rs/zerolog"
)

var (
	logger     zerolog.Logger
	loggerOnce sync.Once
	loggerLock sync.RWMutex
)

// Initialization is lazy, on first use, so the configuration (and with it
// the environment) is only read once something actually logs.
func initLogger() {
	cfg := config.Get()

	// Configure output based on environment
	var output io.Writer
	if cfg.IsDevelopment() {
		// Pretty console output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.Kitchen,
		}
	} else {
		// JSON output for production
		output = os.Stdout
	}

	// Set default log level (will be overridden by settings later)
	level := zerolog.InfoLevel

	logger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func getLogger() zerolog.Logger {
	loggerOnce.Do(initLogger)
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

// SetLevel sets the global log level at runtime
func SetLevel(levelStr string) {
	loggerOnce.Do(initLogger)
	level := parseLogLevel(levelStr)
	loggerLock.Lock()
	logger = logger.Level(level)
	loggerLock.Unlock()
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message
func Debug() *zerolog.Event {
	l := getLogger()
	return l.Debug()
}

// Info logs an info message
func Info() *zerolog.Event {
	l := getLogger()
	return l.Info()
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	l := getLogger()
	return l.Warn()
}

// Error logs an error message
func Error() *zerolog.Event {
	l := getLogger()
	return l.Error()
}

// Fatal logs a fatal message and exits
func Fatal() *zerolog.Event {
	l := getLogger()
	return l.Fatal()
}

// Logger returns the underlying zerolog.Logger for integrations
func Logger() zerolog.Logger {
	return getLogger()
}

// StdLogger returns a standard library *log.Logger that writes to zerolog at the specified level.
// Useful for passing to http.Server.ErrorLog and other stdlib integrations.
func StdLogger(level zerolog.Level) *stdlog.Logger {
	return stdlog.New(getLogger().Level(level), "", 0)
}
