package walk

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/types"
)

// checkExpr checks an expression and returns its typed copy.  expected is the
// descriptor the context would like the expression to have or nil.  It only
// guides the typing of literals: callers which require a descriptor must
// still call coerceTo.
func (w *Walker) checkExpr(expr sem.Expr, expected types.Type) sem.Expr {
	base := sem.NewExprBase(expr.Span())

	switch v := expr.(type) {
	case *sem.Ident:
		sym := v.Symbol
		if sym.Kind == sem.SymLocal {
			sym = w.localOf(sym)
		}

		if sym.Type == nil {
			report.ICE("symbol `%s` has no type", sym.Name)
		}

		ident := &sem.Ident{ExprBase: base, Symbol: sym}
		ident.SetType(sym.Type)
		return ident
	case *sem.IntLit:
		return w.checkIntLit(v, expected, false)
	case *sem.FloatLit:
		return w.checkFloatLit(v, expected)
	case *sem.BoolLit:
		lit := &sem.BoolLit{ExprBase: base, Value: v.Value}
		lit.SetType(w.table.Bool())
		return lit
	case *sem.StringLit:
		lit := &sem.StringLit{ExprBase: base, Value: v.Value}
		lit.SetType(w.table.Prim(types.PrimString))
		return lit
	case *sem.StructLit:
		return w.checkStructLit(v, expected)
	case *sem.Call:
		return w.checkCall(v)
	case *sem.FieldAccess:
		root := w.checkExpr(v.Root, nil)

		st, ok := root.Type().(*types.StructType)
		if !ok {
			w.error(v.Span(), report.CodeBadAccess, "type `%s` has no field named `%s`", root.Type().Repr(), v.Field)
		}

		field, _, ok := st.GetFieldByName(v.Field)
		if !ok {
			w.error(v.Span(), report.CodeBadAccess, "type `%s` has no field named `%s`", st.Repr(), v.Field)
		}

		fa := &sem.FieldAccess{ExprBase: base, Root: root, Field: v.Field}
		fa.SetType(field.Type)
		return fa
	case *sem.Binary:
		return w.checkBinary(v, expected)
	case *sem.Unary:
		return w.checkUnary(v, expected)
	case *sem.Coerce:
		// coercions inserted by a previous check are kept as they are
		inner := w.coerceTo(w.checkExpr(v.Expr, v.Coercion.From), v.Coercion.From, v.Expr.Span())

		coerce := &sem.Coerce{ExprBase: base, Expr: inner, Coercion: v.Coercion}
		coerce.SetType(v.Coercion.To)
		return coerce
	}

	report.ICE("unknown expression type: %T", expr)
	return nil
}

// checkStructLit checks a struct literal.  If a struct descriptor is
// expected, the fields it declares are typed against it.
func (w *Walker) checkStructLit(sl *sem.StructLit, expected types.Type) sem.Expr {
	expectedStruct, _ := expected.(*types.StructType)

	lit := &sem.StructLit{ExprBase: sem.NewExprBase(sl.Span())}
	fields := make([]types.StructField, len(sl.Fields))

	for i, field := range sl.Fields {
		var hint types.Type
		if expectedStruct != nil {
			if efield, _, ok := expectedStruct.GetFieldByName(field.Name); ok {
				hint = efield.Type
			}
		}

		value := w.checkValue(field.Value, hint)
		if hint != nil && value.Type() != hint {
			// the field is coerced if it can be, otherwise the mismatch is
			// reported against the whole literal
			if c, ok := w.visible.Match(hint, value.Type()); ok {
				value = wrapCoerce(value, c)
			}
		}

		lit.Fields = append(lit.Fields, &sem.FieldInit{Name: field.Name, Value: value, Span: field.Span})
		fields[i] = types.StructField{Name: field.Name, Type: value.Type()}
	}

	lit.SetType(w.table.Struct(fields))
	return lit
}

// checkCall checks a function call.  Argument mismatches are reported on the
// span of the call.
func (w *Walker) checkCall(call *sem.Call) sem.Expr {
	fn := w.checkExpr(call.Func, nil)

	ft, ok := fn.Type().(*types.FuncType)
	if !ok {
		w.error(call.Func.Span(), report.CodeBadAccess, "cannot call a value of type `%s`", fn.Type().Repr())
	}

	if len(call.Args) != len(ft.ParamTypes) {
		w.error(call.Span(), report.CodeArity, "expected %d arguments but got %d", len(ft.ParamTypes), len(call.Args))
	}

	tcall := &sem.Call{ExprBase: sem.NewExprBase(call.Span()), Func: fn}
	for i, arg := range call.Args {
		targ := w.checkExpr(arg, ft.ParamTypes[i])
		tcall.Args = append(tcall.Args, w.coerceTo(targ, ft.ParamTypes[i], call.Span()))
	}

	tcall.SetType(ft.ReturnType)
	return tcall
}

// -----------------------------------------------------------------------------

// checkValue checks an expression that must produce a value.
func (w *Walker) checkValue(expr sem.Expr, expected types.Type) sem.Expr {
	texpr := w.checkExpr(expr, expected)
	if types.IsVoid(texpr.Type()) {
		w.error(expr.Span(), report.CodeTypeMismatch, "expression of type `void` cannot be used as a value")
	}

	return texpr
}

// coerceTo matches a typed expression against a required descriptor.  It
// returns the expression itself if the descriptors are equal or the
// expression wrapped in the coercion that converts it.  Mismatches are
// reported on span and the expression is returned unchanged.
func (w *Walker) coerceTo(expr sem.Expr, required types.Type, span *report.TextSpan) sem.Expr {
	c, ok := w.visible.Match(required, expr.Type())
	if !ok {
		w.recError(
			span,
			report.CodeTypeMismatch,
			"type mismatch: expected `%s` but got `%s`",
			required.Repr(),
			expr.Type().Repr(),
		)

		return expr
	}

	if c == nil {
		return expr
	}

	return wrapCoerce(expr, c)
}

func wrapCoerce(expr sem.Expr, c *types.Coercion) sem.Expr {
	coerce := &sem.Coerce{ExprBase: sem.NewExprBase(expr.Span()), Expr: expr, Coercion: c}
	coerce.SetType(c.To)
	return coerce
}
