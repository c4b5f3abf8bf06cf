package syntax

// Stmt is a statement.
type Stmt interface {
	Node
	stmtNode()
}

// StmtBase is the base struct for all statements.
type StmtBase struct {
	NodeBase
}

func (*StmtBase) stmtNode() {}

// Block is a braced sequence of statements with its own scope.
type Block struct {
	StmtBase

	Stmts []Stmt
}

// VarDecl declares a local variable.  Either Type or Init may be nil but not
// both.
type VarDecl struct {
	StmtBase

	Name *Identifier
	Type TypeExpr
	Init Expr
}

// Assign assigns to a local variable, static or field.
type Assign struct {
	StmtBase

	Target Expr
	Value  Expr
}

// ExprStmt is an expression evaluated for its effects.
type ExprStmt struct {
	StmtBase

	Expr Expr
}

// CondBranch is a single conditional branch of an if statement.
type CondBranch struct {
	NodeBase

	Cond Expr
	Body *Block
}

// IfStmt is an if statement with any number of `elif` branches.  The first
// branch is the `if` branch.
type IfStmt struct {
	StmtBase

	CondBranches []*CondBranch
	ElseBranch   *Block
}

// WhileStmt is a while loop.  Label may be empty.
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

// BreakStmt exits a loop.  Label may be empty.
type BreakStmt struct {
	StmtBase

	Label string
}

// ContinueStmt jumps to the next iteration of a loop.  Label may be empty.
type ContinueStmt struct {
	StmtBase

	Label string
}

// MatchArm is a single arm of a match statement: it runs if the subject has
// the shape Type and binds the subject to Name inside the body.
type MatchArm struct {
	NodeBase

	Name *Identifier
	Type TypeExpr
	Body *Block
}

// MatchStmt tests the runtime shape of a dynamic value.
type MatchStmt struct {
	StmtBase

	Subject    Expr
	Arms       []*MatchArm
	ElseBranch *Block
}
