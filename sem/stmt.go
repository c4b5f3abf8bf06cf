package sem

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/types"
)

// Stmt is a resolved statement.
type Stmt interface {
	Node
	stmtNode()
}

// StmtBase is the base struct for all statements.
type StmtBase struct {
	span *report.TextSpan
}

// NewStmtBase creates a new statement base with the given span.
func NewStmtBase(span *report.TextSpan) StmtBase {
	return StmtBase{span: span}
}

func (sb *StmtBase) Span() *report.TextSpan {
	return sb.span
}

func (*StmtBase) stmtNode() {}

// Block is a sequence of statements.
type Block struct {
	StmtBase

	Stmts []Stmt
}

// VarDecl declares a local variable.  Declared is the annotated type and may
// be nil.  Init may be nil if Declared is not.
type VarDecl struct {
	StmtBase

	Symbol   *Symbol
	Declared types.Type
	Init     Expr
}

// Assign stores a value into a variable or field.
type Assign struct {
	StmtBase

	Target Expr
	Value  Expr
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	StmtBase

	Expr Expr
}

// CondBranch is a single conditional branch of an if statement.
type CondBranch struct {
	Cond Expr
	Body *Block
}

// IfStmt is an if statement.  Else may be nil.
type IfStmt struct {
	StmtBase

	CondBranches []*CondBranch
	Else         *Block
}

// WhileStmt is a while loop.
type WhileStmt struct {
	StmtBase

	Label string
	Cond  Expr
	Body  *Block
}

// ReturnStmt returns from the enclosing function.  Value may be nil.
type ReturnStmt struct {
	StmtBase

	Value Expr
}

// BreakStmt exits the loop named by Label or the innermost loop.
type BreakStmt struct {
	StmtBase

	Label string
}

// ContinueStmt continues the loop named by Label or the innermost loop.
type ContinueStmt struct {
	StmtBase

	Label string
}

// MatchArm is a runtime shape test.  Binding is a local of type Type that
// holds the unboxed subject inside Body.
type MatchArm struct {
	Binding *Symbol
	Type    types.Type
	Body    *Block
	Span    *report.TextSpan
}

// MatchStmt selects a branch by the runtime shape of a dynamic value.
type MatchStmt struct {
	StmtBase

	Subject Expr
	Arms    []*MatchArm
	Else    *Block
}
