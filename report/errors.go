package report

import (
	"fmt"
	"runtime/debug"
)

// LocalCompileError is a compilation error that occurs in a context in which
// the file is known by the error handler and thus doesn't need to be passed
// along with the error.
type LocalCompileError struct {
	// The diagnostic code.
	Code string

	// The error message.
	Message string

	// The span over which the error occurs.
	Span *TextSpan
}

func (lce *LocalCompileError) Error() string {
	return lce.Message
}

// Raise creates a new local compile error.
func Raise(span *TextSpan, code, msg string, args ...interface{}) *LocalCompileError {
	return &LocalCompileError{Code: code, Message: fmt.Sprintf(msg, args...), Span: span}
}

// CatchErrors catches any local compile errors thrown by a `panic` during a
// stage of compilation and records them.  In effect, this handler determines
// when errors "unrecoverable" within a given subsection of the compiler should
// stop bubbling.  Any other panic, including internal compiler errors, keeps
// propagating.
// NB: This function must ALWAYS be deferred.
func (r *Reporter) CatchErrors(ctx *CompilationContext) {
	if x := recover(); x != nil {
		switch v := x.(type) {
		case *LocalCompileError:
			r.ReportCompileError(ctx, v.Span, v.Code, "%s", v.Message)
		case abortError:
			// already reported
		default:
			panic(x)
		}
	}
}

// abortError stops processing of a definition that depends on something
// whose errors have already been reported.
type abortError struct{}

// Abort aborts the current definition without reporting anything.  It is
// caught by CatchErrors.
func Abort() {
	panic(abortError{})
}

// -----------------------------------------------------------------------------

// InternalError is an internal compiler error: an error that results from a
// bug or unexpected condition in the compiler itself.  They are not intended
// to ever happen and always abort the pipeline.
type InternalError struct {
	Message string

	// Stack is the goroutine stack at the point of failure.
	Stack []byte
}

func (ie *InternalError) Error() string {
	return "internal compiler error: " + ie.Message
}

// ICE raises an internal compiler error.
func ICE(msg string, args ...interface{}) {
	panic(&InternalError{Message: fmt.Sprintf(msg, args...), Stack: debug.Stack()})
}

// AsICE converts a recovered panic value into an internal error.  Runtime
// panics are wrapped since they are compiler bugs as well.
func AsICE(x interface{}) *InternalError {
	switch v := x.(type) {
	case *InternalError:
		return v
	case *LocalCompileError:
		return &InternalError{Message: "uncaught compile error: " + v.Message, Stack: debug.Stack()}
	case abortError:
		return &InternalError{Message: "uncaught definition abort", Stack: debug.Stack()}
	case error:
		return &InternalError{Message: v.Error(), Stack: debug.Stack()}
	default:
		return &InternalError{Message: fmt.Sprint(v), Stack: debug.Stack()}
	}
}
