package walk

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/syntax"
	"github.com/redgush/flycatcher/types"
)

// checkBinary checks a binary operator application.  Both operands must have
// the same type, possibly after a built-in widening of one of them.
func (w *Walker) checkBinary(bin *sem.Binary, expected types.Type) sem.Expr {
	tbin := &sem.Binary{ExprBase: sem.NewExprBase(bin.Span()), Op: bin.Op}

	if bin.Op == syntax.OpLAnd || bin.Op == syntax.OpLOr {
		boolType := w.table.Bool()
		tbin.Lhs = w.coerceTo(w.checkExpr(bin.Lhs, boolType), boolType, bin.Lhs.Span())
		tbin.Rhs = w.coerceTo(w.checkExpr(bin.Rhs, boolType), boolType, bin.Rhs.Span())
		tbin.SetType(boolType)
		return tbin
	}

	// comparisons don't pass the expected type on to their operands
	var hint types.Type
	if isArithmetic(bin.Op) {
		hint = expected
	}

	// a literal operand takes the type of the other operand
	if isNumLiteral(bin.Lhs) && !isNumLiteral(bin.Rhs) {
		tbin.Rhs = w.checkExpr(bin.Rhs, hint)
		tbin.Lhs = w.checkExpr(bin.Lhs, tbin.Rhs.Type())
	} else {
		tbin.Lhs = w.checkExpr(bin.Lhs, hint)
		tbin.Rhs = w.checkExpr(bin.Rhs, tbin.Lhs.Type())
	}

	w.unifyOperands(tbin)

	operand, ok := tbin.Lhs.Type().(*types.PrimitiveType)
	if ok && tbin.Lhs.Type() == tbin.Rhs.Type() {
		if result, ok := w.intrinsicBinaryResult(bin.Op, operand); ok {
			tbin.SetType(result)
			return tbin
		}
	}

	w.error(
		bin.Span(),
		report.CodeBadOperands,
		"operator `%s` is not defined for `%s` and `%s`",
		syntax.OpNames[bin.Op],
		tbin.Lhs.Type().Repr(),
		tbin.Rhs.Type().Repr(),
	)
	return nil
}

// unifyOperands widens one of the operands of a binary operator so that both
// have the same type if a built-in cast allows it.
func (w *Walker) unifyOperands(bin *sem.Binary) {
	lt, rt := bin.Lhs.Type(), bin.Rhs.Type()
	if lt == rt {
		return
	}

	if c, ok := w.visible.Lookup(rt, lt); ok && c.Kind == types.CoerceCast {
		bin.Rhs = wrapCoerce(bin.Rhs, c)
	} else if c, ok := w.visible.Lookup(lt, rt); ok && c.Kind == types.CoerceCast {
		bin.Lhs = wrapCoerce(bin.Lhs, c)
	}
}

// intrinsicBinaryResult returns the result type of an intrinsic binary
// operator applied to two operands of the given primitive type.
func (w *Walker) intrinsicBinaryResult(op int, operand *types.PrimitiveType) (types.Type, bool) {
	switch op {
	case syntax.OpAdd:
		if operand.IsNumeric() || operand.Kind == types.PrimString {
			return operand, true
		}
	case syntax.OpSub, syntax.OpMul, syntax.OpDiv:
		if operand.IsNumeric() {
			return operand, true
		}
	case syntax.OpMod:
		if operand.IsIntegral() {
			return operand, true
		}
	case syntax.OpEq, syntax.OpNeq:
		if operand.Kind != types.PrimVoid {
			return w.table.Bool(), true
		}
	case syntax.OpLt, syntax.OpGt, syntax.OpLtEq, syntax.OpGtEq:
		if operand.IsNumeric() {
			return w.table.Bool(), true
		}
	}

	return nil, false
}

// checkUnary checks a unary operator application.
func (w *Walker) checkUnary(un *sem.Unary, expected types.Type) sem.Expr {
	tun := &sem.Unary{ExprBase: sem.NewExprBase(un.Span()), Op: un.Op}

	switch un.Op {
	case syntax.OpNot:
		boolType := w.table.Bool()
		tun.Operand = w.checkExpr(un.Operand, boolType)
		if tun.Operand.Type() == types.Type(boolType) {
			tun.SetType(boolType)
			return tun
		}
	case syntax.OpNeg:
		if lit, ok := un.Operand.(*sem.IntLit); ok {
			tun.Operand = w.checkIntLit(lit, expected, true)
		} else {
			tun.Operand = w.checkExpr(un.Operand, expected)
		}

		if pt, ok := tun.Operand.Type().(*types.PrimitiveType); ok && (pt.IsSigned() || pt.IsFloating()) {
			tun.SetType(pt)
			return tun
		}
	default:
		report.ICE("unknown unary operator: %d", un.Op)
	}

	w.error(
		un.Span(),
		report.CodeBadOperands,
		"operator `%s` is not defined for `%s`",
		syntax.OpNames[un.Op],
		tun.Operand.Type().Repr(),
	)
	return nil
}

// -----------------------------------------------------------------------------

func isArithmetic(op int) bool {
	return op == syntax.OpAdd || op == syntax.OpSub || op == syntax.OpMul || op == syntax.OpDiv || op == syntax.OpMod
}

// isNumLiteral returns whether expr is a possibly negated numeric literal.
func isNumLiteral(expr sem.Expr) bool {
	switch v := expr.(type) {
	case *sem.IntLit, *sem.FloatLit:
		return true
	case *sem.Unary:
		return v.Op == syntax.OpNeg && isNumLiteral(v.Operand)
	}

	return false
}
