package walk

import (
	"fortio.org/safecast"

	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/syntax"
	"github.com/redgush/flycatcher/types"
)

// checkIntLit types an integer literal.  A literal takes the expected
// integral type if there is one and becomes a float literal if a floating
// type is expected.  Otherwise, it is an `int64`.  negated indicates that
// the literal is the operand of a negation.
func (w *Walker) checkIntLit(lit *sem.IntLit, expected types.Type, negated bool) sem.Expr {
	base := sem.NewExprBase(lit.Span())

	if pt, ok := expected.(*types.PrimitiveType); ok && pt.IsFloating() {
		flit := &sem.FloatLit{ExprBase: base, Value: float64(lit.Value)}
		flit.SetType(pt)
		return flit
	}

	typ := w.intLitType(expected)
	if !fitsInt(lit.Value, typ, negated) {
		if negated {
			w.error(lit.Span(), report.CodeTypeMismatch, "integer literal -%d overflows %s", lit.Value, typ.Repr())
		}

		w.error(lit.Span(), report.CodeTypeMismatch, "integer literal %d overflows %s", lit.Value, typ.Repr())
	}

	tlit := &sem.IntLit{ExprBase: base, Value: lit.Value}
	tlit.SetType(typ)
	return tlit
}

// intLitType returns the type an integer literal takes given an expected
// descriptor.
func (w *Walker) intLitType(expected types.Type) *types.PrimitiveType {
	if pt, ok := expected.(*types.PrimitiveType); ok && pt.IsIntegral() {
		return pt
	}

	return w.table.Prim(types.PrimI64)
}

func (w *Walker) checkFloatLit(lit *sem.FloatLit, expected types.Type) sem.Expr {
	tlit := &sem.FloatLit{ExprBase: sem.NewExprBase(lit.Span()), Value: lit.Value}

	if pt, ok := expected.(*types.PrimitiveType); ok && pt.IsFloating() {
		tlit.SetType(pt)
	} else {
		tlit.SetType(w.table.Prim(types.PrimF64))
	}

	return tlit
}

// fitsInt reports whether a literal magnitude fits in an integral type.
// Word-sized types are checked at 64 bits: the target word size is not known
// until code generation.
func fitsInt(value uint64, typ *types.PrimitiveType, negated bool) bool {
	if negated && value > 0 && !typ.IsSigned() {
		return false
	}

	var err error
	switch typ.Kind {
	case types.PrimU8:
		_, err = safecast.Conv[uint8](value)
	case types.PrimU16:
		_, err = safecast.Conv[uint16](value)
	case types.PrimU32:
		_, err = safecast.Conv[uint32](value)
	case types.PrimU64, types.PrimUsize:
		return true
	case types.PrimI8:
		err = convSigned[int8](value, negated)
	case types.PrimI16:
		err = convSigned[int16](value, negated)
	case types.PrimI32:
		err = convSigned[int32](value, negated)
	case types.PrimI64, types.PrimSize:
		err = convSigned[int64](value, negated)
	default:
		report.ICE("integer literal of non-integral type `%s`", typ.Repr())
	}

	return err == nil
}

// convSigned checks that a literal magnitude fits in a signed type.  The most
// negative value has a magnitude one greater than the maximum value.
func convSigned[T int8 | int16 | int32 | int64](value uint64, negated bool) error {
	if negated && value > 0 {
		value--
	}

	_, err := safecast.Conv[T](value)
	return err
}

// -----------------------------------------------------------------------------

// IsConstant returns whether a typed expression is built only from literals.
func IsConstant(expr sem.Expr) bool {
	switch v := expr.(type) {
	case *sem.IntLit, *sem.FloatLit, *sem.BoolLit, *sem.StringLit:
		return true
	case *sem.Unary:
		_, isInt := v.Operand.(*sem.IntLit)
		_, isFloat := v.Operand.(*sem.FloatLit)
		return v.Op == syntax.OpNeg && (isInt || isFloat)
	case *sem.StructLit:
		for _, field := range v.Fields {
			if !IsConstant(field.Value) {
				return false
			}
		}

		return true
	}

	return false
}
