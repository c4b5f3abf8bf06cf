// Package walk implements the structural type checker.  It walks a resolved
// module and produces a typed copy of it in which every expression carries a
// descriptor and every implicit conversion is an explicit coercion node.
package walk

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/types"
)

// Walker is responsible for checking a single resolved module.
type Walker struct {
	src      *sem.Module
	table    *types.Table
	reporter *report.Reporter
	ctx      *report.CompilationContext

	// visible is the set of coercions visible within the module.
	visible *types.CoercionSet

	// locals maps the local symbols of the resolved tree to their typed
	// copies.  The resolved tree is never modified.
	locals map[*sem.Symbol]*sem.Symbol

	// The return type of the enclosing function.
	returnType types.Type

	// loops is the stack of labels of the enclosing loops.  Unlabeled loops
	// push an empty label.
	loops []string
}

// CheckModule type checks a resolved module and returns its typed copy.  The
// typed module is returned only if no errors were reported while checking.
// Checking a typed module again yields an equivalent module with the same
// descriptors.
func CheckModule(mod *sem.Module, table *types.Table, reporter *report.Reporter) (*sem.Module, bool) {
	w := &Walker{
		src:      mod,
		table:    table,
		reporter: reporter,
		ctx:      mod.Context(report.StageCheck),
		visible:  mod.Visible,
	}

	if w.visible == nil {
		w.visible = types.NewCoercionSet(table, mod.Coercions)
	}

	errorsBefore := reporter.ErrorsIn(mod.AbsPath)

	typed := &sem.Module{
		ID:        mod.ID,
		Name:      mod.Name,
		AbsPath:   mod.AbsPath,
		ReprPath:  mod.ReprPath,
		Globals:   mod.Globals,
		Coercions: mod.Coercions,
		Visible:   w.visible,
		Deps:      mod.Deps,
		Typed:     true,
	}

	w.checkConstructDefaults()

	for _, static := range mod.Statics {
		if tstatic := w.checkStatic(static); tstatic != nil {
			typed.Statics = append(typed.Statics, tstatic)
		}
	}

	for _, fn := range mod.Funcs {
		if tfn := w.checkFunc(fn); tfn != nil {
			typed.Funcs = append(typed.Funcs, tfn)
		}
	}

	if reporter.ErrorsIn(mod.AbsPath) > errorsBefore {
		return nil, false
	}

	return typed, true
}

// checkFunc checks a function definition.
func (w *Walker) checkFunc(fn *sem.Func) (tfn *sem.Func) {
	defer w.reporter.CatchErrors(w.ctx)

	// Ensure that the walker is reset.
	defer func() {
		w.locals = nil
		w.returnType = nil
		w.loops = nil
	}()

	w.locals = make(map[*sem.Symbol]*sem.Symbol)
	w.returnType = fn.Signature.ReturnType

	tfn = &sem.Func{Symbol: fn.Symbol, Signature: fn.Signature, Span: fn.Span}
	for _, param := range fn.Params {
		tfn.Params = append(tfn.Params, w.declareLocal(param, param.Type))
	}

	if fn.Body == nil {
		return tfn
	}

	tfn.Body = w.checkBlock(fn.Body)

	// erroneous statements are missing from the typed body
	if !types.IsVoid(w.returnType) && !terminates(fn.Body.Stmts) {
		w.recError(fn.Symbol.DefSpan, report.CodeControlFlow, "missing return statement")
	}

	return tfn
}

// checkStatic checks the initializer of a static variable.
func (w *Walker) checkStatic(static *sem.Static) (tstatic *sem.Static) {
	defer w.reporter.CatchErrors(w.ctx)

	tstatic = &sem.Static{Symbol: static.Symbol, Span: static.Span}
	if static.Init == nil {
		return tstatic
	}

	init := w.coerceTo(w.checkExpr(static.Init, static.Symbol.Type), static.Symbol.Type, static.Init.Span())
	if !IsConstant(init) {
		w.error(static.Init.Span(), report.CodeBadDecl, "initializer of static variable `%s` must be a constant", static.Symbol.Name)
	}

	tstatic.Init = init
	return tstatic
}

// checkConstructDefaults checks the property defaults of the constructs
// declared by the module against their property types.
func (w *Walker) checkConstructDefaults() {
	for _, sym := range w.src.Globals {
		if sym.Kind != sem.SymType || sym.Construct == nil || sym.ModID != w.src.ID {
			continue
		}

		func() {
			defer w.reporter.CatchErrors(w.ctx)

			defaults := sym.Construct.Defaults
			w.coerceTo(w.checkExpr(defaults, sym.Construct.Type), sym.Construct.Type, defaults.Span())
		}()
	}
}

// -----------------------------------------------------------------------------

// declareLocal creates the typed copy of a local symbol.
func (w *Walker) declareLocal(sym *sem.Symbol, typ types.Type) *sem.Symbol {
	tsym := *sym
	tsym.Type = typ
	w.locals[sym] = &tsym
	return &tsym
}

// localOf returns the typed copy of a local symbol.  A local with no copy was
// declared by a statement which failed to check.
func (w *Walker) localOf(sym *sem.Symbol) *sem.Symbol {
	if tsym, ok := w.locals[sym]; ok {
		return tsym
	}

	report.Abort()
	return nil
}

// -----------------------------------------------------------------------------

// error reports an error on the given span that should abort checking of the
// current statement.
func (w *Walker) error(span *report.TextSpan, code, msg string, args ...interface{}) {
	panic(report.Raise(span, code, msg, args...))
}

// recError reports a recoverable error on the given span.
func (w *Walker) recError(span *report.TextSpan, code, msg string, args ...interface{}) {
	w.reporter.ReportCompileError(w.ctx, span, code, msg, args...)
}
