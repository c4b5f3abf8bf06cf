package report

import "fmt"

// Severity is the severity of a diagnostic.
type Severity int

// Enumeration of diagnostic severities.
const (
	SevError Severity = iota
	SevWarning
)

func (s Severity) String() string {
	if s == SevError {
		return "error"
	}

	return "warning"
}

// Stage identifies the compilation stage that produced a diagnostic.
type Stage int

// Enumeration of stages.
const (
	StageLoad Stage = iota
	StageResolve
	StageCheck
	StageLower
	StageEmit
)

var stageNames = [...]string{
	"load",
	"resolve",
	"check",
	"lower",
	"emit",
}

func (s Stage) String() string {
	return stageNames[s]
}

// Diagnostic codes.  The numbering follows the FCxxxx scheme: 00xx are
// structural errors, 002x are type errors and 003x are lowering notices.
const (
	CodeImportCycle     = "FC0001"
	CodeModuleNotFound  = "FC0002"
	CodeBadTree         = "FC0003"
	CodeDuplicateModule = "FC0004"
	CodeMultipleDef     = "FC0010"
	CodeImportConflict  = "FC0011"
	CodeUndefined       = "FC0017"
	CodeNotPublic       = "FC0018"
	CodeBadDecl         = "FC0019"
	CodeTypeMismatch    = "FC0020"
	CodeBadOperands     = "FC0021"
	CodeArity           = "FC0022"
	CodeBadAccess       = "FC0023"
	CodeControlFlow     = "FC0024"
	CodeUnreachableCode = "FC0030"
)

// Diagnostic is a single compiler message.  Diagnostics are immutable once
// they are handed to a reporter.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string

	// Span may be nil if the diagnostic has no position.
	Span *TextSpan

	// Module is the name of the module the diagnostic was produced in.  It is
	// empty for project-level diagnostics.
	Module string

	// AbsPath and ReprPath locate the source unit the span refers to.
	AbsPath, ReprPath string

	Stage Stage
}

func (d *Diagnostic) String() string {
	if d.Span == nil {
		return fmt.Sprintf("%s: %s[%s]: %s", d.ReprPath, d.Severity, d.Code, d.Message)
	}

	return fmt.Sprintf(
		"%s:%d:%d: %s[%s]: %s",
		d.ReprPath,
		d.Span.StartLine+1,
		d.Span.StartCol+1,
		d.Severity,
		d.Code,
		d.Message,
	)
}

// CompilationContext is the context a pass reports diagnostics in: which
// module and file is being processed and by which stage.
type CompilationContext struct {
	ModName  string
	AbsPath  string
	ReprPath string
	Stage    Stage
}

// WithStage returns a copy of the context for a different stage.
func (ctx *CompilationContext) WithStage(stage Stage) *CompilationContext {
	return &CompilationContext{
		ModName:  ctx.ModName,
		AbsPath:  ctx.AbsPath,
		ReprPath: ctx.ReprPath,
		Stage:    stage,
	}
}
