package lower

import (
	"github.com/redgush/flycatcher/mir"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
)

func (b *funcBuilder) lowerBlock(block *sem.Block) {
	for _, stmt := range block.Stmts {
		b.lowerStmt(stmt)
	}
}

func (b *funcBuilder) lowerStmt(stmt sem.Stmt) {
	// Statements following a terminator start a fresh block that nothing
	// branches to.
	if b.current.Terminated() {
		b.setBlock(b.fn.NewBlock("unreachable"))
	}

	if b.current.Span == nil {
		b.current.Span = stmt.Span()
	}

	switch v := stmt.(type) {
	case *sem.Block:
		b.lowerBlock(v)
	case *sem.VarDecl:
		var init mir.Value
		if v.Init != nil {
			init = b.lowerExpr(v.Init)
		} else {
			init = mir.NewZero(v.Symbol.Type)
		}

		local := b.fn.NewLocal(v.Symbol.Name, v.Symbol.Type)
		b.locals[v.Symbol] = local
		b.emit(&mir.Store{InstrBase: base(v.Span()), Dst: &mir.Place{Var: local}, Value: init})
	case *sem.Assign:
		place := b.placeOf(v.Target)
		if place == nil {
			report.ICE("assignment to a value that is not a place")
		}

		b.emit(&mir.Store{InstrBase: base(v.Span()), Dst: place, Value: b.lowerExpr(v.Value)})
	case *sem.ExprStmt:
		b.lowerExpr(v.Expr)
	case *sem.IfStmt:
		b.lowerIf(v)
	case *sem.WhileStmt:
		b.lowerWhile(v)
	case *sem.ReturnStmt:
		if v.Value == nil {
			b.terminate(&mir.Return{})
		} else {
			b.terminate(&mir.Return{Value: b.lowerExpr(v.Value)})
		}
	case *sem.BreakStmt:
		b.terminate(&mir.Br{Target: b.findLoop(v.Label).breakTarget.Index})
	case *sem.ContinueStmt:
		b.terminate(&mir.Br{Target: b.findLoop(v.Label).continueTarget.Index})
	case *sem.MatchStmt:
		b.lowerMatch(v)
	default:
		report.ICE("unknown statement type: %T", stmt)
	}
}

// lowerIf lowers an if tree.  The blocks of the first branch are created in
// the order then, else, after.  Each elif is lowered as an if nested in the
// else block of the previous branch sharing its after block.
func (b *funcBuilder) lowerIf(ifs *sem.IfStmt) {
	var after *mir.Block

	for i, cb := range ifs.CondBranches {
		then := b.fn.NewBlock("if.then")

		var els *mir.Block
		if i < len(ifs.CondBranches)-1 || ifs.Else != nil {
			els = b.fn.NewBlock("if.else")
		}

		if after == nil {
			after = b.fn.NewBlock("if.after")
		}

		next := els
		if next == nil {
			next = after
		}

		b.lowerCond(cb.Cond, then, next)

		b.setBlock(then)
		b.lowerBlock(cb.Body)
		b.branchIfNoTerm(after)

		b.setBlock(next)
	}

	if ifs.Else != nil {
		b.lowerBlock(ifs.Else)
		b.branchIfNoTerm(after)
		b.setBlock(after)
	}
}

// lowerWhile lowers a while loop into a header block evaluating the
// condition, a body block and an after block.
func (b *funcBuilder) lowerWhile(ws *sem.WhileStmt) {
	header := b.fn.NewBlock("while.header")
	body := b.fn.NewBlock("while.body")
	after := b.fn.NewBlock("while.after")

	b.branchIfNoTerm(header)

	b.setBlock(header)
	b.lowerCond(ws.Cond, body, after)

	b.pushLoop(ws.Label, after, header)
	b.setBlock(body)
	b.lowerBlock(ws.Body)
	b.branchIfNoTerm(header)
	b.popLoop()

	b.setBlock(after)
}

// lowerMatch lowers a match statement into a chain of type tests.  Each arm
// unboxes the subject into its binding.
func (b *funcBuilder) lowerMatch(ms *sem.MatchStmt) {
	subject := b.lowerExpr(ms.Subject)
	boolType := b.l.table.Bool()

	after := b.fn.NewBlock("match.after")

	for i, arm := range ms.Arms {
		test := b.temp(boolType)
		b.emit(&mir.TypeTest{InstrBase: base(arm.Span), Dest: test, Value: subject, Tested: arm.Type})

		armBlock := b.fn.NewBlock("match.arm")

		var next *mir.Block
		switch {
		case i < len(ms.Arms)-1:
			next = b.fn.NewBlock("match.test")
		case ms.Else != nil:
			next = b.fn.NewBlock("match.else")
		default:
			next = after
		}

		b.terminate(&mir.CondBr{Cond: test, Then: armBlock.Index, Else: next.Index})

		b.setBlock(armBlock)
		b.current.Span = arm.Span

		local := b.fn.NewLocal(arm.Binding.Name, arm.Type)
		b.locals[arm.Binding] = local

		value := b.temp(arm.Type)
		b.emit(&mir.Unbox{InstrBase: base(arm.Span), Dest: value, Value: subject})
		b.emit(&mir.Store{InstrBase: base(arm.Span), Dst: &mir.Place{Var: local}, Value: value})

		b.lowerBlock(arm.Body)
		b.branchIfNoTerm(after)

		b.setBlock(next)
	}

	if ms.Else != nil {
		b.lowerBlock(ms.Else)
		b.branchIfNoTerm(after)
	} else if len(ms.Arms) == 0 {
		b.branchIfNoTerm(after)
	}

	b.setBlock(after)
}
