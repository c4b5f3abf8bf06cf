package report

import (
	"sync"
	"testing"

	"github.com/nalgeon/be"
)

var testCtx = &CompilationContext{
	ModName:  "main",
	AbsPath:  "/src/main.fst",
	ReprPath: "src/main.fst",
	Stage:    StageCheck,
}

func TestCatchErrors(t *testing.T) {
	r := NewReporter(nil)

	func() {
		defer r.CatchErrors(testCtx)
		panic(Raise(&TextSpan{StartLine: 2, StartCol: 4, EndLine: 2, EndCol: 9}, CodeUndefined, "undefined symbol: `%s`", "x"))
	}()

	func() {
		defer r.CatchErrors(testCtx)
		Abort()
	}()

	diags := r.Diagnostics()
	be.Equal(t, len(diags), 1)
	be.Equal(t, diags[0].String(), "src/main.fst:3:5: error[FC0017]: undefined symbol: `x`")
	be.Equal(t, diags[0].Stage, StageCheck)
	be.Equal(t, r.ErrorsIn("/src/main.fst"), 1)
	be.Equal(t, r.ErrorsIn("/src/other.fst"), 0)
}

func TestCatchErrorsPropagatesICE(t *testing.T) {
	r := NewReporter(nil)

	var recovered interface{}
	func() {
		defer func() { recovered = recover() }()
		defer r.CatchErrors(testCtx)
		ICE("bad block %d", 3)
	}()

	ice, ok := recovered.(*InternalError)
	be.True(t, ok)
	be.Equal(t, ice.Error(), "internal compiler error: bad block 3")
	be.True(t, len(ice.Stack) > 0)
	be.True(t, r.ShouldProceed())
}

func TestAsICE(t *testing.T) {
	be.Equal(t, AsICE(Raise(nil, CodeBadTree, "oops")).Message, "uncaught compile error: oops")
	be.Equal(t, AsICE(abortError{}).Message, "uncaught definition abort")
	be.Equal(t, AsICE(42).Message, "42")

	var err error = &InternalError{Message: "kept"}
	be.Equal(t, AsICE(err).Message, "kept")
}

func TestDiagnosticOrder(t *testing.T) {
	r := NewReporter(nil)
	other := &CompilationContext{ModName: "a", ReprPath: "src/a.fst"}

	r.ReportCompileWarning(testCtx, &TextSpan{StartLine: 5}, CodeUnreachableCode, "unreachable code")
	r.ReportCompileError(testCtx, &TextSpan{StartLine: 1, StartCol: 3}, CodeTypeMismatch, "second")
	r.ReportCompileError(testCtx, &TextSpan{StartLine: 1, StartCol: 3}, CodeArity, "third")
	r.ReportCompileError(other, nil, CodeNotPublic, "first")

	var msgs []string
	for _, d := range r.Diagnostics() {
		msgs = append(msgs, d.Message)
	}

	be.Equal(t, msgs, []string{"first", "second", "third", "unreachable code"})

	errs, warns := r.Counts()
	be.Equal(t, errs, 3)
	be.Equal(t, warns, 1)
	be.Equal(t, r.Diagnostics()[0].String(), "src/a.fst: error[FC0018]: first")
}

func TestConcurrentReports(t *testing.T) {
	var seen []string
	r := NewReporter(func(d *Diagnostic) {
		seen = append(seen, d.Message)
	})

	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.ReportCompileError(testCtx, nil, CodeBadDecl, "error")
			}
		}()
	}
	wg.Wait()

	errs, _ := r.Counts()
	be.Equal(t, errs, 800)
	be.Equal(t, len(seen), 800)
	be.Equal(t, len(r.Diagnostics()), 800)
	be.True(t, !r.ShouldProceed())
}

func TestSpanString(t *testing.T) {
	var span *TextSpan
	be.Equal(t, span.String(), "?")

	span = NewSpanOver(&TextSpan{StartLine: 0, StartCol: 1}, &TextSpan{EndLine: 2, EndCol: 4})
	be.Equal(t, span.String(), "1:2-3:5")
	be.Equal(t, StageLower.String(), "lower")
}
