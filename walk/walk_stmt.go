package walk

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/types"
)

// checkBlock checks a block.  An error in one statement does not prevent the
// others from being checked.
func (w *Walker) checkBlock(block *sem.Block) *sem.Block {
	if block == nil {
		return nil
	}

	tblock := &sem.Block{StmtBase: sem.NewStmtBase(block.Span())}
	for _, stmt := range block.Stmts {
		if tstmt := w.checkStmtSafe(stmt); tstmt != nil {
			tblock.Stmts = append(tblock.Stmts, tstmt)
		}
	}

	return tblock
}

// checkStmtSafe checks a statement catching any errors that occur in it.
func (w *Walker) checkStmtSafe(stmt sem.Stmt) sem.Stmt {
	depth := len(w.loops)
	defer func() {
		w.loops = w.loops[:depth]
	}()
	defer w.reporter.CatchErrors(w.ctx)

	return w.checkStmt(stmt)
}

func (w *Walker) checkStmt(stmt sem.Stmt) sem.Stmt {
	base := sem.NewStmtBase(stmt.Span())

	switch v := stmt.(type) {
	case *sem.Block:
		return w.checkBlock(v)
	case *sem.VarDecl:
		return w.checkVarDecl(v)
	case *sem.Assign:
		target := w.checkExpr(v.Target, nil)
		w.checkAssignable(target)

		value := w.checkExpr(v.Value, target.Type())
		return &sem.Assign{
			StmtBase: base,
			Target:   target,
			Value:    w.coerceTo(value, target.Type(), v.Value.Span()),
		}
	case *sem.ExprStmt:
		return &sem.ExprStmt{StmtBase: base, Expr: w.checkExpr(v.Expr, nil)}
	case *sem.IfStmt:
		tif := &sem.IfStmt{StmtBase: base}
		for _, cb := range v.CondBranches {
			tif.CondBranches = append(tif.CondBranches, &sem.CondBranch{
				Cond: w.checkCond(cb.Cond),
				Body: w.checkBlock(cb.Body),
			})
		}

		tif.Else = w.checkBlock(v.Else)
		return tif
	case *sem.WhileStmt:
		for _, label := range w.loops {
			if v.Label != "" && label == v.Label {
				w.recError(v.Span(), report.CodeControlFlow, "loop label `%s` shadows an enclosing loop", v.Label)
			}
		}

		tw := &sem.WhileStmt{StmtBase: base, Label: v.Label, Cond: w.checkCond(v.Cond)}

		w.loops = append(w.loops, v.Label)
		tw.Body = w.checkBlock(v.Body)
		w.loops = w.loops[:len(w.loops)-1]

		return tw
	case *sem.ReturnStmt:
		return w.checkReturn(v)
	case *sem.BreakStmt:
		w.checkLoopControl("break", v.Label, v.Span())
		return &sem.BreakStmt{StmtBase: base, Label: v.Label}
	case *sem.ContinueStmt:
		w.checkLoopControl("continue", v.Label, v.Span())
		return &sem.ContinueStmt{StmtBase: base, Label: v.Label}
	case *sem.MatchStmt:
		return w.checkMatch(v)
	}

	report.ICE("unknown statement type: %T", stmt)
	return nil
}

func (w *Walker) checkVarDecl(vd *sem.VarDecl) sem.Stmt {
	tvd := &sem.VarDecl{StmtBase: sem.NewStmtBase(vd.Span()), Declared: vd.Declared}

	typ := vd.Declared
	if vd.Init != nil {
		init := w.checkValue(vd.Init, vd.Declared)
		if typ == nil {
			typ = init.Type()
		} else {
			init = w.coerceTo(init, typ, vd.Init.Span())
		}

		tvd.Init = init
	}

	if typ == nil {
		report.ICE("local variable `%s` has neither a type nor an initializer", vd.Symbol.Name)
	}

	tvd.Symbol = w.declareLocal(vd.Symbol, typ)
	return tvd
}

// checkAssignable checks that a typed expression denotes a mutable location:
// a local or static variable or a field of one.
func (w *Walker) checkAssignable(target sem.Expr) {
	switch v := target.(type) {
	case *sem.Ident:
		if v.Symbol.IsMutable() {
			return
		}

		w.error(target.Span(), report.CodeBadAccess, "cannot assign to %s `%s`", v.Symbol.Kind, v.Symbol.Name)
	case *sem.FieldAccess:
		w.checkAssignable(v.Root)
	default:
		w.error(target.Span(), report.CodeBadAccess, "cannot assign to a temporary value")
	}
}

// checkCond checks a condition which must be a `bool`.
func (w *Walker) checkCond(cond sem.Expr) sem.Expr {
	boolType := w.table.Bool()
	return w.coerceTo(w.checkExpr(cond, boolType), boolType, cond.Span())
}

func (w *Walker) checkReturn(rs *sem.ReturnStmt) sem.Stmt {
	trs := &sem.ReturnStmt{StmtBase: sem.NewStmtBase(rs.Span())}

	if rs.Value == nil {
		if !types.IsVoid(w.returnType) {
			w.error(rs.Span(), report.CodeTypeMismatch, "expected a return value of type `%s`", w.returnType.Repr())
		}

		return trs
	}

	if types.IsVoid(w.returnType) {
		w.error(rs.Value.Span(), report.CodeTypeMismatch, "cannot return a value from a function returning `void`")
	}

	trs.Value = w.coerceTo(w.checkValue(rs.Value, w.returnType), w.returnType, rs.Value.Span())
	return trs
}

// checkLoopControl checks that a break or continue statement has a loop to
// apply to.
func (w *Walker) checkLoopControl(keyword, label string, span *report.TextSpan) {
	if len(w.loops) == 0 {
		w.error(span, report.CodeControlFlow, "cannot use %s outside a loop", keyword)
	}

	if label == "" {
		return
	}

	for _, loopLabel := range w.loops {
		if loopLabel == label {
			return
		}
	}

	w.error(span, report.CodeControlFlow, "no enclosing loop labeled `%s`", label)
}

// checkMatch checks a match statement.  The subject must be dynamic: each arm
// tests its runtime shape.
func (w *Walker) checkMatch(ms *sem.MatchStmt) sem.Stmt {
	subject := w.checkExpr(ms.Subject, nil)
	if !types.IsDyn(subject.Type()) {
		w.error(ms.Subject.Span(), report.CodeTypeMismatch, "cannot match on a value of type `%s`: expected `dyn`", subject.Type().Repr())
	}

	tms := &sem.MatchStmt{StmtBase: sem.NewStmtBase(ms.Span()), Subject: subject}
	seen := make(map[types.Type]struct{})

	for _, arm := range ms.Arms {
		if types.IsDyn(arm.Type) {
			w.recError(arm.Span, report.CodeTypeMismatch, "match arm cannot test for `dyn`")
		} else if _, ok := seen[arm.Type]; ok {
			w.recError(arm.Span, report.CodeTypeMismatch, "multiple match arms test for `%s`", arm.Type.Repr())
		}

		seen[arm.Type] = struct{}{}

		// the binding must be declared before the body is checked
		binding := w.declareLocal(arm.Binding, arm.Type)
		tms.Arms = append(tms.Arms, &sem.MatchArm{
			Binding: binding,
			Type:    arm.Type,
			Body:    w.checkBlock(arm.Body),
			Span:    arm.Span,
		})
	}

	tms.Else = w.checkBlock(ms.Else)
	return tms
}

// -----------------------------------------------------------------------------

// terminates returns whether control can never fall off the end of a
// statement list.  Statements following one that terminates are dead and do
// not matter.
func terminates(stmts []sem.Stmt) bool {
	for _, stmt := range stmts {
		switch stmt.(type) {
		case *sem.BreakStmt, *sem.ContinueStmt:
			// the rest of the list is dead and the loop decides
			return false
		}

		if stmtTerminates(stmt) {
			return true
		}
	}

	return false
}

func stmtTerminates(stmt sem.Stmt) bool {
	switch v := stmt.(type) {
	case *sem.ReturnStmt:
		return true
	case *sem.Block:
		return terminates(v.Stmts)
	case *sem.IfStmt:
		if v.Else == nil || !terminates(v.Else.Stmts) {
			return false
		}

		for _, cb := range v.CondBranches {
			if !terminates(cb.Body.Stmts) {
				return false
			}
		}

		return true
	case *sem.MatchStmt:
		if v.Else == nil || !terminates(v.Else.Stmts) {
			return false
		}

		for _, arm := range v.Arms {
			if !terminates(arm.Body.Stmts) {
				return false
			}
		}

		return true
	case *sem.WhileStmt:
		// only an infinite loop that is never broken out of terminates
		lit, ok := v.Cond.(*sem.BoolLit)
		return ok && lit.Value && !breaksOut(v.Body.Stmts, v.Label, 0)
	}

	return false
}

// breaksOut returns whether a loop body contains a break which exits the loop
// with the given label.  depth is the number of loops nested inside it.
func breaksOut(stmts []sem.Stmt, label string, depth int) bool {
	for _, stmt := range stmts {
		switch v := stmt.(type) {
		case *sem.BreakStmt:
			if (v.Label == "" && depth == 0) || (v.Label != "" && v.Label == label) {
				return true
			}
		case *sem.Block:
			if breaksOut(v.Stmts, label, depth) {
				return true
			}
		case *sem.IfStmt:
			for _, cb := range v.CondBranches {
				if breaksOut(cb.Body.Stmts, label, depth) {
					return true
				}
			}

			if v.Else != nil && breaksOut(v.Else.Stmts, label, depth) {
				return true
			}
		case *sem.MatchStmt:
			for _, arm := range v.Arms {
				if breaksOut(arm.Body.Stmts, label, depth) {
					return true
				}
			}

			if v.Else != nil && breaksOut(v.Else.Stmts, label, depth) {
				return true
			}
		case *sem.WhileStmt:
			if breaksOut(v.Body.Stmts, label, depth+1) {
				return true
			}
		}
	}

	return false
}
