package suite

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/redgush/flycatcher/build"
	"github.com/redgush/flycatcher/depm"
	"github.com/redgush/flycatcher/report"
)

// SourceRoot is the directory test modules are placed in.  Diagnostics refer
// to them as `src/<path>.fst`.
const SourceRoot = "/src"

// Result is the outcome of compiling a test case.
type Result struct {
	compiler *build.Compiler
	reporter *report.Reporter
}

// Run compiles the modules of a test case.  The entry module is `main`.  An
// error is returned if the project could not be loaded or the compiler
// raised an internal error.
func Run(tc *TestCase) (*Result, error) {
	loader := depm.MemLoader{}
	for path, src := range tc.Modules {
		loader[SourceRoot+"/"+path+".fst"] = src + "\n"
	}

	reporter := report.NewReporter(nil)
	c := build.NewCompiler(build.Options{
		Roots:   []depm.Root{{Name: "src", AbsPath: SourceRoot}},
		Entry:   "main",
		Loader:  loader,
		Workers: 4,
		Emit:    build.EmitMIR,
	}, reporter)

	if err := c.Analyze(); err != nil {
		return nil, err
	}

	return &Result{compiler: c, reporter: reporter}, nil
}

// Actual returns the text an assertion is compared against.
func (r *Result) Actual(a Assertion) (string, error) {
	switch a.Type {
	case AssertionMIR:
		return r.mir(a.Target)
	case AssertionDiagnostics:
		var lines []string
		for _, d := range r.reporter.Diagnostics() {
			lines = append(lines, d.String())
		}

		return strings.Join(lines, "\n"), nil
	}

	return "", errors.Errorf("unknown assertion type `%s`", a.Type)
}

// mir returns the MIR of a whole module or of a single function named by its
// link name.
func (r *Result) mir(target string) (string, error) {
	if target == "" {
		target = "main"
	}

	if bundle, ok := r.compiler.Bundle(target); ok {
		return strings.TrimRight(bundle.Repr(), "\n"), nil
	}

	if dot := strings.IndexByte(target, '.'); dot > 0 {
		if bundle, ok := r.compiler.Bundle(target[:dot]); ok {
			for _, fn := range bundle.Funcs {
				if fn.Name == target {
					return strings.TrimRight(fn.Repr(), "\n"), nil
				}
			}
		}
	}

	return "", errors.Errorf("no module or function named `%s` was lowered", target)
}
