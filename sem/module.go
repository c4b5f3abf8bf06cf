package sem

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/types"
)

// Module is a resolved (or typed) module.  Once published to dependents a
// module is never modified.
type Module struct {
	ID       uint64
	Name     string
	AbsPath  string
	ReprPath string

	// Globals maps every global name declared in the module to its symbol.
	// Expanded construct members are included under `Type.member`.
	Globals map[string]*Symbol

	// Funcs are the function definitions in declaration order.  Construct
	// expansions appear at the position of the construct.
	Funcs []*Func

	// Statics are the static variables in declaration order.
	Statics []*Static

	// Coercions are the coercions declared by this module.
	Coercions []*types.Coercion

	// Visible is the set of coercions visible within the module: its own and
	// those of all modules it imports transitively.
	Visible *types.CoercionSet

	// Deps are the modules this module imports.
	Deps []*Module

	// Typed indicates that the module is the output of the checker.
	Typed bool
}

// Context returns the compilation context for the module at the given stage.
func (m *Module) Context(stage report.Stage) *report.CompilationContext {
	return &report.CompilationContext{
		ModName:  m.Name,
		AbsPath:  m.AbsPath,
		ReprPath: m.ReprPath,
		Stage:    stage,
	}
}

// Exported returns the public global with the given name.
func (m *Module) Exported(name string) (*Symbol, bool) {
	sym, ok := m.Globals[name]
	if ok && sym.Public {
		return sym, true
	}

	return nil, false
}

// Func is a resolved function definition.
type Func struct {
	Symbol *Symbol
	Params []*Symbol

	// Signature is the function's descriptor.
	Signature *types.FuncType

	// Body is nil for extern functions.
	Body *Block

	Span *report.TextSpan
}

// Static is a resolved static variable.
type Static struct {
	Symbol *Symbol

	// Init may be nil in which case the static is zero initialized.
	Init Expr

	Span *report.TextSpan
}
