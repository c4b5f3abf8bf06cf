package resolve

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/syntax"
	"github.com/redgush/flycatcher/types"
)

// selfName is the name of the receiver parameter of construct members.
const selfName = "self"

// memberName returns the global name of a construct member.
func memberName(construct, member string) string {
	return construct + "." + member
}

// expandedConstruct records the definitions a construct expanded to.
type expandedConstruct struct {
	def     *syntax.ConstructDef
	typeDef *syntax.TypeDef
	init    *syntax.FuncDef
	methods []*syntax.FuncDef
}

// expandConstructs replaces every construct in defs with a type definition of
// its properties, an initializer and one function per method.  The input
// definitions are not modified.
func expandConstructs(defs []syntax.Def) ([]syntax.Def, map[*syntax.TypeDef]*expandedConstruct) {
	var expanded []syntax.Def
	constructs := make(map[*syntax.TypeDef]*expandedConstruct)

	for _, def := range defs {
		cd, ok := def.(*syntax.ConstructDef)
		if !ok {
			expanded = append(expanded, def)
			continue
		}

		ec := expandConstruct(cd)
		constructs[ec.typeDef] = ec

		expanded = append(expanded, ec.typeDef, ec.init)
		for _, method := range ec.methods {
			expanded = append(expanded, method)
		}
	}

	return expanded, constructs
}

func expandConstruct(cd *syntax.ConstructDef) *expandedConstruct {
	span := cd.Span()
	selfType := &syntax.TypeName{TypeExprBase: syntax.TypeExprBase{NodeBase: syntax.NewNodeBase(cd.Name.Span())}, Name: cd.Name.Name}

	st := &syntax.StructTypeExpr{TypeExprBase: syntax.TypeExprBase{NodeBase: syntax.NewNodeBase(span)}}
	for _, prop := range cd.Props {
		st.Fields = append(st.Fields, &syntax.FieldType{
			NodeBase: syntax.NewNodeBase(prop.Span()),
			Name:     prop.Name,
			Type:     prop.Type,
		})
	}

	ec := &expandedConstruct{
		def: cd,
		typeDef: &syntax.TypeDef{
			DefBase: syntax.DefBase{NodeBase: syntax.NewNodeBase(span), Name: cd.Name, Public: cd.Public},
			Type:    st,
		},
	}

	// the initializer runs the declared body and then yields self
	initSpan := span
	var initParams []*syntax.Param
	var initStmts []syntax.Stmt
	if cd.Init != nil {
		initSpan = cd.Init.Span()
		initParams = cd.Init.Params
		initStmts = append(initStmts, cd.Init.Body.Stmts...)
	}

	initStmts = append(initStmts, &syntax.ReturnStmt{
		StmtBase: syntax.StmtBase{NodeBase: syntax.NewNodeBase(initSpan)},
		Value:    selfIdent(initSpan),
	})

	ec.init = &syntax.FuncDef{
		DefBase:    memberDefBase(cd, "init", initSpan),
		Params:     withSelf(selfType, initParams, initSpan),
		ReturnType: selfType,
		Body: &syntax.Block{
			StmtBase: syntax.StmtBase{NodeBase: syntax.NewNodeBase(initSpan)},
			Stmts:    initStmts,
		},
	}

	for _, method := range cd.Methods {
		ec.methods = append(ec.methods, &syntax.FuncDef{
			DefBase:    memberDefBase(cd, method.DefName(), method.Span()),
			Params:     withSelf(selfType, method.Params, method.Span()),
			ReturnType: method.ReturnType,
			Body:       method.Body,
		})
	}

	return ec
}

func memberDefBase(cd *syntax.ConstructDef, member string, span *report.TextSpan) syntax.DefBase {
	return syntax.DefBase{
		NodeBase: syntax.NewNodeBase(span),
		Name: &syntax.Identifier{
			ExprBase: syntax.ExprBase{NodeBase: syntax.NewNodeBase(span)},
			Name:     memberName(cd.Name.Name, member),
		},
		Public: cd.Public,
	}
}

func selfIdent(span *report.TextSpan) *syntax.Identifier {
	return &syntax.Identifier{ExprBase: syntax.ExprBase{NodeBase: syntax.NewNodeBase(span)}, Name: selfName}
}

func withSelf(selfType syntax.TypeExpr, params []*syntax.Param, span *report.TextSpan) []*syntax.Param {
	return append([]*syntax.Param{{
		NodeBase: syntax.NewNodeBase(span),
		Name:     selfIdent(span),
		Type:     selfType,
	}}, params...)
}

// -----------------------------------------------------------------------------

// resolveConstructs attaches construct information to the type symbols of
// constructs.  It must run after named types and signatures are resolved.
func (r *Resolver) resolveConstructs() {
	for _, d := range r.decls {
		td, ok := d.def.(*syntax.TypeDef)
		if !ok {
			continue
		}

		ec, ok := r.expanded[td]
		if !ok || d.sym.Type == nil {
			continue
		}

		st, ok := d.sym.Type.(*types.StructType)
		if !ok {
			report.ICE("construct `%s` resolved to a non-struct type", d.sym.Name)
		}

		construct := &sem.Construct{
			Kind:    ec.def.Kind,
			Type:    st,
			Init:    r.mod.Globals[ec.init.DefName()],
			Methods: make(map[string]*sem.Symbol),
		}

		for i, method := range ec.methods {
			if sym, ok := r.mod.Globals[method.DefName()]; ok && sym.Kind == sem.SymFunc {
				construct.Methods[ec.def.Methods[i].DefName()] = sym
			}
		}

		construct.Defaults = r.resolveDefaults(ec.def, st)
		d.sym.Construct = construct
	}
}

// resolveDefaults builds the struct literal of property defaults.
func (r *Resolver) resolveDefaults(cd *syntax.ConstructDef, st *types.StructType) (defaults *sem.StructLit) {
	defer r.reporter.CatchErrors(r.ctx)

	lit := &sem.StructLit{ExprBase: sem.NewExprBase(cd.Span())}
	for _, prop := range cd.Props {
		field, _, _ := st.GetFieldByName(prop.Name.Name)

		var value sem.Expr
		if prop.Default != nil {
			if !isConstant(prop.Default) {
				r.error(prop.Default.Span(), report.CodeBadDecl, "default value of property `%s` must be a constant", prop.Name.Name)
			}

			value = r.resolveExpr(prop.Default)
		} else if zero, ok := r.zeroValue(field.Type, prop.Span()); ok {
			value = zero
		} else {
			r.error(
				prop.Span(),
				report.CodeBadDecl,
				"property `%s` of `%s` has no default value and its type `%s` has no zero value",
				prop.Name.Name,
				cd.Name.Name,
				field.Type.Repr(),
			)
		}

		lit.Fields = append(lit.Fields, &sem.FieldInit{Name: prop.Name.Name, Value: value, Span: prop.Span()})
	}

	return lit
}

// zeroValue returns a literal holding the zero value of typ if it has one.
func (r *Resolver) zeroValue(typ types.Type, span *report.TextSpan) (sem.Expr, bool) {
	base := sem.NewExprBase(span)

	switch v := typ.(type) {
	case *types.PrimitiveType:
		switch {
		case v.IsIntegral():
			return &sem.IntLit{ExprBase: base}, true
		case v.IsFloating():
			return &sem.FloatLit{ExprBase: base}, true
		case v.Kind == types.PrimBool:
			return &sem.BoolLit{ExprBase: base}, true
		case v.Kind == types.PrimString:
			return &sem.StringLit{ExprBase: base}, true
		}
	case *types.StructType:
		lit := &sem.StructLit{ExprBase: base}
		for _, field := range v.Fields {
			value, ok := r.zeroValue(field.Type, span)
			if !ok {
				return nil, false
			}

			lit.Fields = append(lit.Fields, &sem.FieldInit{Name: field.Name, Value: value, Span: span})
		}

		return lit, true
	}

	return nil, false
}

// isConstant returns whether expr is built only from literals.
func isConstant(expr syntax.Expr) bool {
	switch v := expr.(type) {
	case *syntax.IntLit, *syntax.FloatLit, *syntax.BoolLit, *syntax.StringLit:
		return true
	case *syntax.Unary:
		return v.Op == syntax.OpNeg && isConstant(v.Operand)
	case *syntax.StructLit:
		for _, field := range v.Fields {
			if !isConstant(field.Value) {
				return false
			}
		}

		return true
	}

	return false
}
