package arbor

import (
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// loggerPtr stores the active logger. Accessed atomically so that SetLogger
// may race with logging from the layout worker goroutines.
var loggerPtr atomic.Pointer[log.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// newNopLogger creates a logger that discards all output.
func newNopLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// SetLogger configures the logger used by arbor. By default arbor produces
// no log output. Pass nil to restore the silent default.
//
// Log levels used by arbor:
//   - debug: per-frame stats, shader switches, buffer generations
//   - info: lifecycle events (renderer initialized, scene installed)
//   - warn: non-fatal problems (stale layout results, layout errors)
//   - error: fatal initialization failures
func SetLogger(l *log.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *log.Logger {
	return loggerPtr.Load()
}
