package cmd

import (
	"fmt"

	"github.com/redgush/flycatcher/build"
	"github.com/redgush/flycatcher/logging"
	"github.com/redgush/flycatcher/mods"
	"github.com/redgush/flycatcher/report"
)

// buildOptions converts a project manifest into compiler options.
func buildOptions(mod *mods.FlycModule) build.Options {
	return build.Options{
		Roots:     mod.Roots(),
		Entry:     mod.Entry,
		WordSize:  mod.WordSize / 8,
		Workers:   mod.Workers,
		Emit:      mod.Emit,
		OutputDir: mod.OutputDir,
	}
}

// runCompiler compiles a project displaying progress and diagnostics as it
// goes.  It returns whether compilation succeeded.
func runCompiler(mod *mods.FlycModule, checkOnly bool) bool {
	logging.LogCompileHeader(mods.FlycVersion, fmt.Sprintf("%s/%d-bit", mod.Emit, mod.WordSize))

	reporter := report.NewReporter(logging.Listen)
	c := build.NewCompiler(buildOptions(mod), reporter)

	logging.LogBeginPhase("Analyzing")
	if err := c.Analyze(); err != nil {
		return handleFailure(reporter, err)
	}

	logging.LogEndPhase(!reporter.AnyErrors())

	if !checkOnly && !reporter.AnyErrors() {
		logging.LogBeginPhase("Emitting")
		if err := c.Emit(); err != nil {
			return handleFailure(reporter, err)
		}

		logging.LogEndPhase(true)
	}

	logging.LogCompilationFinished(reporter)
	return !reporter.AnyErrors()
}

// handleFailure displays an error that stopped compilation.
func handleFailure(reporter *report.Reporter, err error) bool {
	if ice, ok := err.(*report.InternalError); ok {
		logging.LogFatal(ice)
		return false
	}

	logging.LogConfigError("Build", err)
	logging.LogCompilationFinished(reporter)
	return false
}
