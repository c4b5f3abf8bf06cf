// Package lower converts typed modules into MIR bundles.  Structured control
// flow is flattened into basic blocks and every implicit conversion becomes an
// explicit instruction.
package lower

import (
	"github.com/redgush/flycatcher/mir"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/types"
)

// Lowerer is responsible for lowering a single typed module.
type Lowerer struct {
	mod      *sem.Module
	table    *types.Table
	reporter *report.Reporter
	ctx      *report.CompilationContext

	bundle *mir.Bundle
}

// LowerModule lowers a typed module into a MIR bundle.  Every lowered function
// is validated: blocks unreachable from the function's entry are marked dead
// and reported as unreachable code warnings.  Lowering never reports errors:
// any structural problem is an internal compiler error and panics.
func LowerModule(mod *sem.Module, table *types.Table, reporter *report.Reporter) *mir.Bundle {
	if !mod.Typed {
		report.ICE("module `%s` lowered before it was type checked", mod.Name)
	}

	l := &Lowerer{
		mod:      mod,
		table:    table,
		reporter: reporter,
		ctx:      mod.Context(report.StageLower),
		bundle:   mir.NewBundle(mod.ID, mod.Name),
	}

	for _, static := range mod.Statics {
		l.lowerStatic(static)
	}

	for _, fn := range mod.Funcs {
		l.bundle.Funcs = append(l.bundle.Funcs, l.lowerFunc(fn))
	}

	return l.bundle
}

func (l *Lowerer) lowerStatic(static *sem.Static) {
	gv := &mir.GlobalVar{
		Name:   static.Symbol.LinkName,
		Type:   static.Symbol.Type,
		Public: static.Symbol.Public,
	}

	if static.Init != nil {
		gv.Init = l.lowerConst(static.Init)
	}

	l.bundle.Globals = append(l.bundle.Globals, gv)

	if gv.Public {
		l.bundle.Exports = append(l.bundle.Exports, &mir.Decl{Name: gv.Name, Type: gv.Type})
	}
}

func (l *Lowerer) lowerFunc(sfn *sem.Func) *mir.Function {
	fn := mir.NewFunction(sfn.Symbol.LinkName, sfn.Signature, sfn.Span)
	fn.Public = sfn.Symbol.Public

	if fn.Public {
		l.bundle.Exports = append(l.bundle.Exports, &mir.Decl{Name: fn.Name, Type: fn.Signature, Func: true})
	}

	b := &funcBuilder{
		l:      l,
		fn:     fn,
		locals: make(map[*sem.Symbol]*mir.Local),
	}

	for _, param := range sfn.Params {
		b.locals[param] = fn.NewParam(param.Name, param.Type)
	}

	if sfn.Body == nil {
		fn.Extern = true
		fn.Seal()
		return fn
	}

	b.setBlock(fn.NewBlock("entry"))
	b.lowerBlock(sfn.Body)
	b.finalizeCurrent()

	for _, head := range mir.Validate(fn) {
		if head.Span != nil {
			l.reporter.ReportCompileWarning(l.ctx, head.Span, report.CodeUnreachableCode, "unreachable code")
		}
	}

	fn.Seal()
	return fn
}

// -----------------------------------------------------------------------------

// funcRef returns a reference to a global function.
func (l *Lowerer) funcRef(sym *sem.Symbol) *mir.Global {
	if sym.ModID != l.mod.ID {
		l.bundle.AddExternal(sym.LinkName, sym.Type, true)
	}

	return mir.NewGlobal(sym.LinkName, sym.Type, true)
}

// staticRef returns a reference to a static variable.
func (l *Lowerer) staticRef(sym *sem.Symbol) *mir.Global {
	if sym.ModID != l.mod.ID {
		l.bundle.AddExternal(sym.LinkName, sym.Type, false)
	}

	return mir.NewGlobal(sym.LinkName, sym.Type, false)
}

// viaRef returns a reference to the conversion function of a declared
// coercion.
func (l *Lowerer) viaRef(c *types.Coercion) *mir.Global {
	if c.Module != l.mod.Name {
		l.bundle.AddExternal(c.Via, c.ViaType, true)
	}

	return mir.NewGlobal(c.Via, c.ViaType, true)
}
