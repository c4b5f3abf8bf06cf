// Package resolve builds the resolved tree of a module: it expands constructs,
// binds imports, declares globals, seals signatures and resolves every name in
// function bodies and initializers.
package resolve

import (
	"github.com/redgush/flycatcher/depm"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/syntax"
	"github.com/redgush/flycatcher/types"
)

// Resolver is responsible for resolving a single module.  The dependencies of
// the module must already be resolved.
type Resolver struct {
	src      *depm.Module
	deps     map[uint64]*sem.Module
	table    *types.Table
	reporter *report.Reporter
	ctx      *report.CompilationContext

	// mod is the module being built.
	mod *sem.Module

	// imports maps names bound by imports to their symbols.  Whole-module
	// imports bind module symbols.
	imports map[string]*sem.Symbol

	// The stack of local scopes used to lookup symbols.
	localScopes []map[string]*sem.Symbol

	// typeDefs holds the type expressions of named types until they are
	// resolved.  colors is used to detect recursive type definitions.
	typeDefs map[*sem.Symbol]syntax.TypeExpr
	colors   map[*sem.Symbol]int

	// expanded maps the type definitions produced by construct expansion to
	// their constructs.
	expanded map[*syntax.TypeDef]*expandedConstruct

	// decls are the declared globals in declaration order.
	decls []*decl

	coerceDefs []*syntax.CoerceDef
}

// ResolveModule resolves a loaded module.  deps must contain the resolved
// module of every module src imports.  The resolved module is returned only
// if no errors were reported while resolving it.
func ResolveModule(
	src *depm.Module,
	deps map[uint64]*sem.Module,
	table *types.Table,
	reporter *report.Reporter,
) (*sem.Module, bool) {
	r := &Resolver{
		src:      src,
		deps:     deps,
		table:    table,
		reporter: reporter,
		ctx:      src.Context(report.StageResolve),
		imports:  make(map[string]*sem.Symbol),
		typeDefs: make(map[*sem.Symbol]syntax.TypeExpr),
		colors:   make(map[*sem.Symbol]int),
		mod: &sem.Module{
			ID:       src.ID,
			Name:     src.Name,
			AbsPath:  src.AbsPath,
			ReprPath: src.ReprPath,
			Globals:  make(map[string]*sem.Symbol),
		},
	}

	errorsBefore := reporter.ErrorsIn(src.AbsPath)

	defs, expanded := expandConstructs(src.Tree.Defs)
	r.expanded = expanded

	r.declareGlobals(defs)
	r.bindImports()

	r.resolveTypeDefs()
	r.resolveSignatures()
	r.resolveStaticTypes()
	r.resolveConstructs()
	r.resolveCoercions()
	r.buildVisibleCoercions()

	r.resolveBodies()

	if reporter.ErrorsIn(src.AbsPath) > errorsBefore {
		return nil, false
	}

	return r.mod, true
}

// -----------------------------------------------------------------------------

// lookup looks up a symbol by name in all visible scopes.  If no symbol by the
// given name can be found, then an error is raised.
func (r *Resolver) lookup(name string, span *report.TextSpan) *sem.Symbol {
	// Traverse local scopes in reverse order to implement shadowing.
	for i := len(r.localScopes) - 1; i > -1; i-- {
		if sym, ok := r.localScopes[i][name]; ok {
			return sym
		}
	}

	if sym, ok := r.mod.Globals[name]; ok {
		return sym
	}

	if sym, ok := r.imports[name]; ok {
		return sym
	}

	r.error(span, report.CodeUndefined, "undefined symbol: `%s`", name)
	return nil
}

// defineLocal defines a local symbol in the current local scope.  If the symbol
// is already defined, then an error is reported and the new symbol is not
// defined.
func (r *Resolver) defineLocal(sym *sem.Symbol) {
	currScope := r.localScopes[len(r.localScopes)-1]

	if _, ok := currScope[sym.Name]; ok {
		r.recError(sym.DefSpan, report.CodeMultipleDef, "multiple symbols named `%s` defined in immediate local scope", sym.Name)
		return
	}

	currScope[sym.Name] = sym
}

// pushScope pushes a new local scope onto the scope stack.
func (r *Resolver) pushScope() {
	r.localScopes = append(r.localScopes, make(map[string]*sem.Symbol))
}

// popScope removes the top local scope from the scope stack.
func (r *Resolver) popScope() {
	r.localScopes = r.localScopes[:len(r.localScopes)-1]
}

// newLocal creates a new local variable symbol.
func (r *Resolver) newLocal(name *syntax.Identifier, typ types.Type) *sem.Symbol {
	return &sem.Symbol{
		Name:    name.Name,
		ModName: r.mod.Name,
		ModID:   r.mod.ID,
		Kind:    sem.SymLocal,
		DefSpan: name.Span(),
		Type:    typ,
	}
}

// -----------------------------------------------------------------------------

// error reports an error on the given span that should abort resolution of
// the current definition.
func (r *Resolver) error(span *report.TextSpan, code, msg string, args ...interface{}) {
	panic(report.Raise(span, code, msg, args...))
}

// recError reports a recoverable error on the given span.
func (r *Resolver) recError(span *report.TextSpan, code, msg string, args ...interface{}) {
	r.reporter.ReportCompileError(r.ctx, span, code, msg, args...)
}
