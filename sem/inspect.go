package sem

// Inspect traverses a function body in depth-first source order calling fn
// for every expression.
func Inspect(block *Block, fn func(Expr)) {
	if block == nil {
		return
	}

	for _, stmt := range block.Stmts {
		inspectStmt(stmt, fn)
	}
}

func inspectStmt(stmt Stmt, fn func(Expr)) {
	switch v := stmt.(type) {
	case *Block:
		Inspect(v, fn)
	case *VarDecl:
		InspectExpr(v.Init, fn)
	case *Assign:
		InspectExpr(v.Target, fn)
		InspectExpr(v.Value, fn)
	case *ExprStmt:
		InspectExpr(v.Expr, fn)
	case *IfStmt:
		for _, cb := range v.CondBranches {
			InspectExpr(cb.Cond, fn)
			Inspect(cb.Body, fn)
		}

		Inspect(v.Else, fn)
	case *WhileStmt:
		InspectExpr(v.Cond, fn)
		Inspect(v.Body, fn)
	case *ReturnStmt:
		InspectExpr(v.Value, fn)
	case *MatchStmt:
		InspectExpr(v.Subject, fn)
		for _, arm := range v.Arms {
			Inspect(arm.Body, fn)
		}

		Inspect(v.Else, fn)
	}
}

// InspectExpr calls fn for expr and each of its subexpressions.  Nil
// expressions are skipped.
func InspectExpr(expr Expr, fn func(Expr)) {
	if expr == nil {
		return
	}

	fn(expr)

	switch v := expr.(type) {
	case *StructLit:
		for _, field := range v.Fields {
			InspectExpr(field.Value, fn)
		}
	case *Call:
		InspectExpr(v.Func, fn)
		for _, arg := range v.Args {
			InspectExpr(arg, fn)
		}
	case *FieldAccess:
		InspectExpr(v.Root, fn)
	case *Binary:
		InspectExpr(v.Lhs, fn)
		InspectExpr(v.Rhs, fn)
	case *Unary:
		InspectExpr(v.Operand, fn)
	case *Coerce:
		InspectExpr(v.Expr, fn)
	}
}
