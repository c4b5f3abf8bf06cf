package resolve

import (
	"strings"

	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/syntax"
	"github.com/redgush/flycatcher/types"
)

// decl is a declared global and the definition that declared it.
type decl struct {
	def syntax.Def
	sym *sem.Symbol
}

// declareGlobals creates a symbol for every named definition.  Coercion
// declarations are set aside to be resolved once signatures are known.
func (r *Resolver) declareGlobals(defs []syntax.Def) {
	for _, def := range defs {
		sym := &sem.Symbol{
			Name:    def.DefName(),
			ModName: r.mod.Name,
			ModID:   r.mod.ID,
			Public:  def.IsPublic(),
		}

		switch v := def.(type) {
		case *syntax.CoerceDef:
			r.coerceDefs = append(r.coerceDefs, v)
			continue
		case *syntax.FuncDef:
			sym.Kind = sem.SymFunc
			sym.DefSpan = v.Name.Span()
			sym.LinkName = sem.LinkName(r.mod.Name, sym.Name)
			sym.Extern = v.Extern

			// extern functions are linked by their bare name
			if v.Extern {
				sym.LinkName = sym.Name
			}
		case *syntax.TypeDef:
			sym.Kind = sem.SymType
			sym.DefSpan = v.Name.Span()

			if _, ok := types.PrimitiveByName(sym.Name); ok || sym.Name == "dyn" {
				r.recError(sym.DefSpan, report.CodeBadDecl, "cannot redefine builtin type `%s`", sym.Name)
				continue
			}

			r.typeDefs[sym] = v.Type
		case *syntax.StaticDef:
			sym.Kind = sem.SymStatic
			sym.DefSpan = v.Name.Span()
			sym.LinkName = sem.LinkName(r.mod.Name, sym.Name)
		default:
			report.ICE("unknown definition type: %T", def)
		}

		if _, ok := r.mod.Globals[sym.Name]; ok {
			r.recError(sym.DefSpan, report.CodeMultipleDef, "symbol defined multiple times: `%s`", sym.Name)
			continue
		}

		r.mod.Globals[sym.Name] = sym
		r.decls = append(r.decls, &decl{def: def, sym: sym})
	}
}

// -----------------------------------------------------------------------------

// bindImports binds the names introduced by the module's imports.  Imports
// that could not be located were reported when the module graph was built.
func (r *Resolver) bindImports() {
	for _, imp := range r.src.Tree.Imports {
		target, ok := r.src.Targets[imp]
		if !ok {
			continue
		}

		dep, ok := r.deps[target.ID]
		if !ok {
			report.ICE("dependency `%s` of module `%s` is not resolved", target.Name, r.mod.Name)
		}

		r.addDep(dep)

		if len(imp.Names) == 0 {
			name := imp.BoundName()
			r.bindImport(name, &sem.Symbol{
				Name:     name,
				ModName:  r.mod.Name,
				ModID:    r.mod.ID,
				Kind:     sem.SymModule,
				DefSpan:  imp.Span(),
				Imported: dep,
			}, imp.Span())

			continue
		}

		for _, name := range imp.Names {
			sym, ok := dep.Globals[name.Name]
			if !ok {
				r.recError(name.Span(), report.CodeUndefined, "no symbol named `%s` defined in module `%s`", name.Name, dep.Name)
				continue
			}

			if !sym.Public {
				r.recError(name.Span(), report.CodeNotPublic, "symbol `%s` is not public in module `%s`", name.Name, dep.Name)
				continue
			}

			r.bindImport(name.Name, sym, name.Span())
		}
	}
}

// bindImport binds a single imported name checking for conflicts.
func (r *Resolver) bindImport(name string, sym *sem.Symbol, span *report.TextSpan) {
	if _, ok := r.mod.Globals[name]; ok {
		r.recError(span, report.CodeImportConflict, "imported name `%s` conflicts with globally defined symbol", name)
		return
	}

	if existing, ok := r.imports[name]; ok {
		// importing the same thing twice is harmless
		if existing == sym || (existing.Kind == sem.SymModule && existing.Imported == sym.Imported) {
			return
		}

		r.recError(span, report.CodeMultipleDef, "multiple symbols imported with name `%s`", name)
		return
	}

	r.imports[name] = sym
}

func (r *Resolver) addDep(dep *sem.Module) {
	for _, existing := range r.mod.Deps {
		if existing == dep {
			return
		}
	}

	r.mod.Deps = append(r.mod.Deps, dep)
}

// -----------------------------------------------------------------------------

// resolveSignatures computes the signature of every function.
func (r *Resolver) resolveSignatures() {
	for _, d := range r.decls {
		if fd, ok := d.def.(*syntax.FuncDef); ok {
			r.resolveSignature(d.sym, fd)
		}
	}
}

func (r *Resolver) resolveSignature(sym *sem.Symbol, fd *syntax.FuncDef) {
	defer r.reporter.CatchErrors(r.ctx)

	var params []types.Type
	for _, param := range fd.Params {
		if param.Type == nil {
			// parameters with no declared shape are dynamic
			params = append(params, r.table.Dyn())
		} else {
			params = append(params, r.resolveValueType(param.Type))
		}
	}

	var ret types.Type = r.table.Void()
	if fd.ReturnType != nil {
		ret = r.resolveValueType(fd.ReturnType)
	}

	sym.Type = r.table.Func(params, ret)
}

// resolveStaticTypes determines the type of every static variable.  Statics
// without a type annotation take the default type of their literal
// initializer.
func (r *Resolver) resolveStaticTypes() {
	for _, d := range r.decls {
		if sd, ok := d.def.(*syntax.StaticDef); ok {
			r.resolveStaticType(d.sym, sd)
		}
	}
}

func (r *Resolver) resolveStaticType(sym *sem.Symbol, sd *syntax.StaticDef) {
	defer r.reporter.CatchErrors(r.ctx)

	if sd.Type != nil {
		sym.Type = r.resolveValueType(sd.Type)
		return
	}

	if typ, ok := r.literalType(sd.Init); ok {
		sym.Type = typ
		return
	}

	r.error(sym.DefSpan, report.CodeBadDecl, "static variable `%s` requires a type annotation", sym.Name)
}

// literalType returns the default type of a literal expression.
func (r *Resolver) literalType(expr syntax.Expr) (types.Type, bool) {
	switch v := expr.(type) {
	case *syntax.IntLit:
		return r.table.Prim(types.PrimI64), true
	case *syntax.FloatLit:
		return r.table.Prim(types.PrimF64), true
	case *syntax.BoolLit:
		return r.table.Bool(), true
	case *syntax.StringLit:
		return r.table.Prim(types.PrimString), true
	case *syntax.Unary:
		if v.Op == syntax.OpNeg {
			return r.literalType(v.Operand)
		}
	}

	return nil, false
}

// -----------------------------------------------------------------------------

// resolveCoercions resolves the coercions declared by the module.
func (r *Resolver) resolveCoercions() {
	builtins := types.NewCoercionSet(r.table)

	for _, cd := range r.coerceDefs {
		r.resolveCoercion(cd, builtins)
	}
}

func (r *Resolver) resolveCoercion(cd *syntax.CoerceDef, builtins *types.CoercionSet) {
	defer r.reporter.CatchErrors(r.ctx)

	from := r.resolveValueType(cd.From)
	to := r.resolveValueType(cd.To)

	switch {
	case from == to:
		r.error(cd.Span(), report.CodeBadDecl, "coercion from `%s` to itself", from.Repr())
	case types.IsDyn(from) || types.IsDyn(to):
		r.error(cd.Span(), report.CodeBadDecl, "coercions involving `dyn` are built in")
	}

	if _, ok := builtins.Lookup(from, to); ok {
		r.error(cd.Span(), report.CodeBadDecl, "coercion from `%s` to `%s` is built in", from.Repr(), to.Repr())
	}

	via := r.lookupQualified(cd.Via.Name, cd.Via.Span())
	if via.Kind != sem.SymFunc {
		r.error(cd.Via.Span(), report.CodeBadDecl, "`%s` is not a function", cd.Via.Name)
	} else if via.Type == nil {
		// the function's signature is erroneous
		report.Abort()
	}

	want := r.table.Func([]types.Type{from}, to)
	if via.Type != types.Type(want) {
		r.error(
			cd.Via.Span(),
			report.CodeBadDecl,
			"coercion function `%s` must have signature `%s` but has `%s`",
			cd.Via.Name,
			want.Repr(),
			via.Type.Repr(),
		)
	}

	for _, c := range r.mod.Coercions {
		if c.From == from && c.To == to {
			r.error(cd.Span(), report.CodeMultipleDef, "coercion from `%s` to `%s` declared multiple times", from.Repr(), to.Repr())
		}
	}

	r.mod.Coercions = append(r.mod.Coercions, &types.Coercion{
		From:    from,
		To:      to,
		Kind:    types.CoerceCall,
		Via:     via.LinkName,
		ViaType: want,
		Module:  r.mod.Name,
	})
}

// buildVisibleCoercions builds the set of coercions visible in the module:
// its own followed by those of its transitive imports.
func (r *Resolver) buildVisibleCoercions() {
	lists := [][]*types.Coercion{r.mod.Coercions}
	visited := map[*sem.Module]bool{r.mod: true}

	var visit func(mod *sem.Module)
	visit = func(mod *sem.Module) {
		for _, dep := range mod.Deps {
			if !visited[dep] {
				visited[dep] = true
				lists = append(lists, dep.Coercions)
				visit(dep)
			}
		}
	}

	visit(r.mod)
	r.mod.Visible = types.NewCoercionSet(r.table, lists...)
}

// -----------------------------------------------------------------------------

// lookupGlobal looks up a name among the module's globals and imports.
func (r *Resolver) lookupGlobal(name string, span *report.TextSpan) *sem.Symbol {
	if sym, ok := r.mod.Globals[name]; ok {
		return sym
	}

	if sym, ok := r.imports[name]; ok {
		return sym
	}

	r.error(span, report.CodeUndefined, "undefined symbol: `%s`", name)
	return nil
}

// lookupQualified looks up a global name that may be qualified by a module
// name or a construct: eg. `geo.origin` or `Point.toX`.  Constructs must be
// resolved first.
func (r *Resolver) lookupQualified(name string, span *report.TextSpan) *sem.Symbol {
	dot := strings.IndexByte(name, '.')
	if dot < 0 {
		return r.lookupGlobal(name, span)
	}

	root, rest := name[:dot], name[dot+1:]
	rootSym := r.lookupGlobal(root, span)
	switch rootSym.Kind {
	case sem.SymModule:
		return r.lookupMember(rootSym.Imported, rest, span)
	case sem.SymType:
		if rootSym.Construct != nil {
			if method, ok := rootSym.Construct.Methods[rest]; ok {
				return method
			}
		}

		r.error(span, report.CodeBadAccess, "type `%s` has no method named `%s`", root, rest)
	}

	r.error(span, report.CodeBadAccess, "`%s` is not a module or a construct", root)
	return nil
}

// lookupMember looks up a public member of an imported module.
func (r *Resolver) lookupMember(mod *sem.Module, name string, span *report.TextSpan) *sem.Symbol {
	sym, ok := mod.Globals[name]
	if !ok {
		r.error(span, report.CodeUndefined, "no symbol named `%s` defined in module `%s`", name, mod.Name)
	}

	if !sym.Public {
		r.error(span, report.CodeNotPublic, "symbol `%s` is not public in module `%s`", name, mod.Name)
	}

	return sym
}
