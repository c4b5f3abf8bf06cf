package sem

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/types"
)

// Node is the parent interface for all resolved tree nodes.
type Node interface {
	Span() *report.TextSpan
}

// Expr is a resolved expression.  Type returns nil until the expression has
// been checked.
type Expr interface {
	Node

	Type() types.Type
	SetType(types.Type)
}

// ExprBase is the base struct for all expressions.
type ExprBase struct {
	span *report.TextSpan
	typ  types.Type
}

// NewExprBase creates a new expression base with the given span.
func NewExprBase(span *report.TextSpan) ExprBase {
	return ExprBase{span: span}
}

func (eb *ExprBase) Span() *report.TextSpan {
	return eb.span
}

func (eb *ExprBase) Type() types.Type {
	return eb.typ
}

func (eb *ExprBase) SetType(typ types.Type) {
	eb.typ = typ
}

// -----------------------------------------------------------------------------

// Ident is a reference to a symbol.
type Ident struct {
	ExprBase

	Symbol *Symbol
}

// IntLit is an integer literal.
type IntLit struct {
	ExprBase

	Value uint64
}

// FloatLit is a floating point literal.
type FloatLit struct {
	ExprBase

	Value float64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	ExprBase

	Value bool
}

// StringLit is a string literal.
type StringLit struct {
	ExprBase

	Value string
}

// FieldInit is a single field of a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
	Span  *report.TextSpan
}

// StructLit is a struct literal.  Fields are kept in source order which is
// also their evaluation order.
type StructLit struct {
	ExprBase

	Fields []*FieldInit
}

// Call is a function call.
type Call struct {
	ExprBase

	Func Expr
	Args []Expr
}

// FieldAccess reads a field of a struct value.
type FieldAccess struct {
	ExprBase

	Root  Expr
	Field string
}

// Binary is a binary operator application.  Op is one of the syntax operator
// kinds.
type Binary struct {
	ExprBase

	Op       int
	Lhs, Rhs Expr
}

// Unary is a unary operator application.
type Unary struct {
	ExprBase

	Op      int
	Operand Expr
}

// Coerce is an implicit conversion inserted by the checker.
type Coerce struct {
	ExprBase

	Expr     Expr
	Coercion *types.Coercion
}
