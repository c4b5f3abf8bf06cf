package syntax

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// ExprBase is the base struct for all expressions.
type ExprBase struct {
	NodeBase
}

func (*ExprBase) exprNode() {}

// Identifier is a named reference.
type Identifier struct {
	ExprBase

	Name string
}

// IntLit is an integer literal.  Literals are never negative: negation is a
// unary operator.
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

// StringLit is a string literal.  Value is the decoded contents.
type StringLit struct {
	ExprBase

	Value string
}

// FieldInit is a single field of a struct literal.
type FieldInit struct {
	NodeBase

	Name  *Identifier
	Value Expr
}

// StructLit is an anonymous struct literal: eg. `{value: 42}`.
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

// Dot is a field access or a qualified name: eg. `p.x` or `io.println`.
type Dot struct {
	ExprBase

	Root  Expr
	Field *Identifier
}

// Enumeration of operator kinds.
const (
	OpAdd = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLtEq
	OpGtEq
	OpLAnd
	OpLOr
	OpNot
	OpNeg
)

// OpNames maps operator kinds to their source spelling.
var OpNames = map[int]string{
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpDiv:  "/",
	OpMod:  "%",
	OpEq:   "==",
	OpNeq:  "!=",
	OpLt:   "<",
	OpGt:   ">",
	OpLtEq: "<=",
	OpGtEq: ">=",
	OpLAnd: "&&",
	OpLOr:  "||",
	OpNot:  "!",
	OpNeg:  "-",
}

// Binary is a binary operator application.
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
