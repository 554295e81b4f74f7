// Package blzlog holds the process-wide leveled logger used across BLZ.
package blzlog

import (
	"os"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

var (
	mu      sync.RWMutex
	logger  kitlog.Logger = newDefault()
)

func newDefault() kitlog.Logger {
	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	l = kitlog.With(l, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller)
	return level.NewFilter(l, level.AllowInfo())
}

// Logger returns the current package-wide logger.
func Logger() kitlog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the package-wide logger, e.g. to raise verbosity or
// redirect output in an embedding application.
func SetLogger(l kitlog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Debug returns a leveled logger for debug-level messages.
func Debug() kitlog.Logger { return level.Debug(Logger()) }

// Info returns a leveled logger for info-level messages.
func Info() kitlog.Logger { return level.Info(Logger()) }

// Warn returns a leveled logger for warn-level messages.
func Warn() kitlog.Logger { return level.Warn(Logger()) }

// Error returns a leveled logger for error-level messages.
func Error() kitlog.Logger { return level.Error(Logger()) }
