package report

import (
	"fmt"
	"sort"
	"sync"
)

// Reporter is responsible for collecting errors, warnings, and other kinds of
// diagnostics during compilation.  The reporter is synchronized: its methods
// can be safely called from multiple goroutines and records are appended
// whole.
type Reporter struct {
	// The mutex used to synchonize different error method calls.
	m *sync.Mutex

	diags []*Diagnostic

	errorCount   int
	warningCount int

	// errorsByFile counts errors per absolute source path.
	errorsByFile map[string]int

	// listener is called with each diagnostic as it arrives.  It is called
	// with the reporter lock held so output is never interleaved.
	listener func(*Diagnostic)
}

// NewReporter creates a new reporter.  The listener may be nil.
func NewReporter(listener func(*Diagnostic)) *Reporter {
	return &Reporter{
		m:            &sync.Mutex{},
		errorsByFile: make(map[string]int),
		listener:     listener,
	}
}

// Report adds a diagnostic to the collection.
func (r *Reporter) Report(d *Diagnostic) {
	r.m.Lock()
	defer r.m.Unlock()

	r.diags = append(r.diags, d)

	if d.Severity == SevError {
		r.errorCount++
		r.errorsByFile[d.AbsPath]++
	} else {
		r.warningCount++
	}

	if r.listener != nil {
		r.listener(d)
	}
}

// ReportCompileError reports a compilation error: ie. erroneous input code.
// The span may be nil in which case no position information is recorded.
func (r *Reporter) ReportCompileError(ctx *CompilationContext, span *TextSpan, code, msg string, args ...interface{}) {
	r.Report(newDiagnostic(ctx, SevError, span, code, fmt.Sprintf(msg, args...)))
}

// ReportCompileWarning reports a compilation warning.  The arguments are of
// the same form as those to ReportCompileError.
func (r *Reporter) ReportCompileWarning(ctx *CompilationContext, span *TextSpan, code, msg string, args ...interface{}) {
	r.Report(newDiagnostic(ctx, SevWarning, span, code, fmt.Sprintf(msg, args...)))
}

func newDiagnostic(ctx *CompilationContext, sev Severity, span *TextSpan, code, msg string) *Diagnostic {
	d := &Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Span:     span,
	}

	if ctx != nil {
		d.Module = ctx.ModName
		d.AbsPath = ctx.AbsPath
		d.ReprPath = ctx.ReprPath
		d.Stage = ctx.Stage
	}

	return d
}

// -----------------------------------------------------------------------------

// AnyErrors returns whether or not any errors were detected.
func (r *Reporter) AnyErrors() bool {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount > 0
}

// ShouldProceed indicates whether or not there have been any errors that
// should cause compilation to stop at the current phase.
func (r *Reporter) ShouldProceed() bool {
	return !r.AnyErrors()
}

// ErrorsIn returns the number of errors reported against the source unit at
// absPath.
func (r *Reporter) ErrorsIn(absPath string) int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorsByFile[absPath]
}

// Counts returns the total number of errors and warnings.
func (r *Reporter) Counts() (int, int) {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount, r.warningCount
}

// Diagnostics returns a snapshot of all diagnostics ordered by module, then
// position.  Diagnostics at the same position keep their arrival order.
func (r *Reporter) Diagnostics() []*Diagnostic {
	r.m.Lock()
	diags := make([]*Diagnostic, len(r.diags))
	copy(diags, r.diags)
	r.m.Unlock()

	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Module != diags[j].Module {
			return diags[i].Module < diags[j].Module
		}

		return diags[i].Span.Before(diags[j].Span)
	})

	return diags
}
