package resolve

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/syntax"
	"github.com/redgush/flycatcher/types"
)

/*
Named types are resolved lazily with a three-colour search so that types may be
used before they are defined.  A type is white until its definition is
entered, grey while its definition is being resolved and black afterwards.
Referencing a grey type means the type contains itself.  Since types are
structural, such a type would be infinite and is rejected.
*/

// Enumeration of search colors.
const (
	colorWhite = iota
	colorGrey
	colorBlack
)

// resolveTypeDefs resolves every type defined by the module.
func (r *Resolver) resolveTypeDefs() {
	for _, d := range r.decls {
		if d.sym.Kind == sem.SymType {
			r.resolveTypeDef(d.sym)
		}
	}
}

// resolveTypeDef resolves a named type declared in the module.  It returns
// whether the type was resolved successfully.
func (r *Resolver) resolveTypeDef(sym *sem.Symbol) bool {
	if sym.Type != nil {
		return true
	}

	switch r.colors[sym] {
	case colorBlack:
		return false
	case colorGrey:
		r.recError(sym.DefSpan, report.CodeBadDecl, "recursive type definition: `%s`", sym.Name)
		return false
	}

	expr, ok := r.typeDefs[sym]
	if !ok {
		report.ICE("type `%s` has no definition in module `%s`", sym.Name, r.mod.Name)
	}

	r.colors[sym] = colorGrey
	func() {
		defer r.reporter.CatchErrors(r.ctx)

		sym.Type = r.resolveType(expr)
	}()
	r.colors[sym] = colorBlack

	return sym.Type != nil
}

// -----------------------------------------------------------------------------

// resolveValueType resolves a type annotation that must denote a value type.
func (r *Resolver) resolveValueType(expr syntax.TypeExpr) types.Type {
	typ := r.resolveType(expr)
	if types.IsVoid(typ) {
		r.error(expr.Span(), report.CodeBadDecl, "`void` cannot be used as a value type")
	}

	return typ
}

// resolveType converts a type annotation into a descriptor.
func (r *Resolver) resolveType(expr syntax.TypeExpr) types.Type {
	switch v := expr.(type) {
	case *syntax.TypeName:
		return r.resolveTypeName(v)
	case *syntax.DynTypeExpr:
		return r.table.Dyn()
	case *syntax.StructTypeExpr:
		fields := make([]types.StructField, len(v.Fields))
		seen := make(map[string]struct{})

		for i, field := range v.Fields {
			if _, ok := seen[field.Name.Name]; ok {
				r.error(field.Name.Span(), report.CodeBadDecl, "multiple fields named `%s`", field.Name.Name)
			}

			seen[field.Name.Name] = struct{}{}
			fields[i] = types.StructField{Name: field.Name.Name, Type: r.resolveValueType(field.Type)}
		}

		return r.table.Struct(fields)
	case *syntax.FuncTypeExpr:
		params := make([]types.Type, len(v.Params))
		for i, param := range v.Params {
			params[i] = r.resolveValueType(param)
		}

		var ret types.Type = r.table.Void()
		if v.ReturnType != nil {
			ret = r.resolveValueType(v.ReturnType)
		}

		return r.table.Func(params, ret)
	}

	report.ICE("unknown type expression: %T", expr)
	return nil
}

// resolveTypeName resolves a primitive or defined type name.
func (r *Resolver) resolveTypeName(tn *syntax.TypeName) types.Type {
	var sym *sem.Symbol

	if tn.Module != "" {
		modSym := r.lookupGlobal(tn.Module, tn.Span())
		if modSym.Kind != sem.SymModule {
			r.error(tn.Span(), report.CodeBadAccess, "`%s` is not a module", tn.Module)
		}

		sym = r.lookupMember(modSym.Imported, tn.Name, tn.Span())
	} else {
		if kind, ok := types.PrimitiveByName(tn.Name); ok {
			return r.table.Prim(kind)
		}

		sym = r.lookupGlobal(tn.Name, tn.Span())
	}

	if sym.Kind != sem.SymType {
		r.error(tn.Span(), report.CodeBadAccess, "%s `%s` is not a type", sym.Kind, tn.Name)
	}

	if sym.ModID == r.mod.ID && !r.resolveTypeDef(sym) {
		// the error has already been reported
		report.Abort()
	}

	return sym.Type
}
