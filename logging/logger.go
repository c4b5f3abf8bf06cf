// Package logging displays the progress and diagnostics of a compilation to
// the console.  The compiler core never prints: it reports diagnostics which
// the logger receives through Listen.
package logging

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/redgush/flycatcher/report"
)

// Enumeration of the different log levels.
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and closing compilation notification (success/fail)
	LogLevelWarning        // errors, warnings, and closing message
	LogLevelVerbose        // errors, warnings, compiler version and progress summary, closing message (DEFAULT)
)

// Logger is responsible for displaying output from the compiler as
// necessary.
type Logger struct {
	LogLevel int

	// warnings are displayed at the end of compilation.
	warnings []*report.Diagnostic

	errorCount int

	// out is where everything is displayed.
	out io.Writer

	// interactive indicates that out is a terminal: colours and spinners are
	// only used when it is.
	interactive bool

	// m is the mutex used to synchonize the display of messages.
	m *sync.Mutex
}

// logger is the global logger.
var logger = newLogger(os.Stdout, LogLevelVerbose)

// Initialize initializes the global logger with the named log level.
func Initialize(loglevelname string) {
	logger = newLogger(os.Stdout, ParseLogLevel(loglevelname))
}

// ParseLogLevel converts the name of a log level to its value.
func ParseLogLevel(name string) int {
	switch name {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarning
	// everything else (including invalid log levels) should default to verbose
	default:
		return LogLevelVerbose
	}
}

func newLogger(out io.Writer, loglevel int) *Logger {
	l := &Logger{
		LogLevel: loglevel,
		out:      out,
		m:        &sync.Mutex{},
	}

	if f, ok := out.(*os.File); ok {
		l.interactive = term.IsTerminal(int(f.Fd()))
	}

	if !l.interactive {
		disableColor()
	}

	return l
}

// handleDiagnostic displays errors immediately and holds warnings until the
// end of compilation.
func (l *Logger) handleDiagnostic(d *report.Diagnostic) {
	l.m.Lock()
	defer l.m.Unlock()

	if d.Severity == report.SevError {
		l.errorCount++

		if l.LogLevel > LogLevelSilent {
			l.endPhase(false)
			l.displayDiagnostic(d)
		}
	} else {
		l.warnings = append(l.warnings, d)
	}
}

// flushWarnings displays all pending warnings.
func (l *Logger) flushWarnings() {
	l.m.Lock()
	defer l.m.Unlock()

	if l.LogLevel >= LogLevelWarning {
		for _, w := range l.warnings {
			l.displayDiagnostic(w)
		}
	}

	l.warnings = nil
}
