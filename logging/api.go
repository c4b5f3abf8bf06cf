package logging

import (
	"github.com/redgush/flycatcher/report"
)

// Listen receives diagnostics from a reporter.  It is passed to
// report.NewReporter.
func Listen(d *report.Diagnostic) {
	logger.handleDiagnostic(d)
}

// ShouldProceed indicates whether or not the logger has displayed any errors.
func ShouldProceed() bool {
	logger.m.Lock()
	defer logger.m.Unlock()

	return logger.errorCount == 0
}

// -----------------------------------------------------------------------------
// NOTE: All log functions will only display if the appropriate log level is
// set.  Most log functions will simply fail silently if below their
// appropriate log level.

// LogCompileHeader displays the compiler version and target.
func LogCompileHeader(version, target string) {
	if logger.LogLevel == LogLevelVerbose {
		logger.displayCompileHeader(version, target)
	}
}

// LogBeginPhase displays the start of a compilation phase.
func LogBeginPhase(phase string) {
	logger.m.Lock()
	defer logger.m.Unlock()

	if logger.LogLevel == LogLevelVerbose {
		logger.beginPhase(phase)
	}
}

// LogEndPhase displays the end of the current compilation phase.
func LogEndPhase(success bool) {
	logger.m.Lock()
	defer logger.m.Unlock()

	logger.endPhase(success)
}

// LogConfigError logs an error related to project or compiler configuration.
func LogConfigError(kind string, err error) {
	logger.m.Lock()
	defer logger.m.Unlock()

	logger.errorCount++
	if logger.LogLevel > LogLevelSilent {
		logger.endPhase(false)
		PrintErrorMessage(kind+" Error", err)
	}
}

// LogBuildWarning logs a warning in the build process that is not tied to
// any source text.
func LogBuildWarning(kind, warning string) {
	if logger.LogLevel >= LogLevelWarning {
		PrintWarningMessage(kind+" Warning", warning)
	}
}

// LogFatal logs an internal compiler error.
func LogFatal(ice *report.InternalError) {
	logger.m.Lock()
	defer logger.m.Unlock()

	logger.endPhase(false)
	logger.displayFatalError(ice)
}

// LogCompilationFinished displays any held warnings followed by the closing
// summary of a compilation.
func LogCompilationFinished(r *report.Reporter) {
	logger.flushWarnings()

	if logger.LogLevel > LogLevelSilent {
		errorCount, warningCount := r.Counts()
		logger.displayCompilationFinished(errorCount == 0, errorCount, warningCount)
	}
}
