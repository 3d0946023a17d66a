// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"log"
	"sync/atomic"
)

// LogFunc has the shape of log.Printf.
type LogFunc func(format string, v ...any)

var (
	logger atomic.Pointer[LogFunc]
	debug  atomic.Bool
)

func init() { SetLogger(log.Printf) }

// Logf writes through the current logger, log.Printf unless replaced with
// SetLogger. It is safe to call while another goroutine swaps the logger;
// the monitor UI mutes it while the terminal is in alternate-screen mode.
func Logf(format string, v ...any) {
	(*logger.Load())(format, v...)
}

// Debugf is for per-block chatter and is muted unless debug logging is on.
func Debugf(format string, v ...any) {
	if debug.Load() {
		Logf(format, v...)
	}
}

// Logger returns the current logger, e.g. to restore it later.
func Logger() LogFunc { return *logger.Load() }

// SetLogger replaces the logger. Passing nil mutes it.
func SetLogger(f LogFunc) {
	if f == nil {
		f = func(string, ...any) {}
	}
	logger.Store(&f)
}

// SetDebug routes Debugf to Logf when on.
func SetDebug(on bool) { debug.Store(on) }
