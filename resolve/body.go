package resolve

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/syntax"
	"github.com/redgush/flycatcher/types"
)

// resolveBodies resolves function bodies and static initializers in
// declaration order.
func (r *Resolver) resolveBodies() {
	for _, d := range r.decls {
		if d.sym.Type == nil {
			continue
		}

		switch v := d.def.(type) {
		case *syntax.FuncDef:
			r.resolveFunc(d.sym, v)
		case *syntax.StaticDef:
			r.resolveStatic(d.sym, v)
		}
	}
}

func (r *Resolver) resolveFunc(sym *sem.Symbol, fd *syntax.FuncDef) {
	defer r.reporter.CatchErrors(r.ctx)
	defer func() {
		r.localScopes = nil
	}()

	sig := sym.Type.(*types.FuncType)
	fn := &sem.Func{Symbol: sym, Signature: sig, Span: fd.Span()}

	// parameters share the scope of the function's top-level statements
	r.pushScope()
	for i, param := range fd.Params {
		psym := r.newLocal(param.Name, sig.ParamTypes[i])
		r.defineLocal(psym)
		fn.Params = append(fn.Params, psym)
	}

	if !fd.Extern {
		fn.Body = &sem.Block{StmtBase: sem.NewStmtBase(fd.Body.Span())}
		fn.Body.Stmts = r.resolveStmts(fd.Body.Stmts)
	}

	r.popScope()

	r.mod.Funcs = append(r.mod.Funcs, fn)
}

func (r *Resolver) resolveStatic(sym *sem.Symbol, sd *syntax.StaticDef) {
	defer r.reporter.CatchErrors(r.ctx)

	static := &sem.Static{Symbol: sym, Span: sd.Span()}
	if sd.Init != nil {
		static.Init = r.resolveExpr(sd.Init)
	}

	r.mod.Statics = append(r.mod.Statics, static)
}

// -----------------------------------------------------------------------------

// resolveStmts resolves a list of statements in the current scope.  An error
// in one statement does not prevent the others from being resolved.
func (r *Resolver) resolveStmts(stmts []syntax.Stmt) []sem.Stmt {
	var resolved []sem.Stmt
	for _, stmt := range stmts {
		if rstmt := r.resolveStmtSafe(stmt); rstmt != nil {
			resolved = append(resolved, rstmt)
		}
	}

	return resolved
}

// resolveStmtSafe resolves a statement catching any errors that occur in it.
func (r *Resolver) resolveStmtSafe(stmt syntax.Stmt) sem.Stmt {
	depth := len(r.localScopes)
	defer func() {
		r.localScopes = r.localScopes[:depth]
	}()
	defer r.reporter.CatchErrors(r.ctx)

	return r.resolveStmt(stmt)
}

// resolveBlock resolves a block in a new scope.
func (r *Resolver) resolveBlock(block *syntax.Block) *sem.Block {
	if block == nil {
		return nil
	}

	r.pushScope()
	defer r.popScope()

	return &sem.Block{
		StmtBase: sem.NewStmtBase(block.Span()),
		Stmts:    r.resolveStmts(block.Stmts),
	}
}

func (r *Resolver) resolveStmt(stmt syntax.Stmt) sem.Stmt {
	base := sem.NewStmtBase(stmt.Span())

	switch v := stmt.(type) {
	case *syntax.Block:
		return r.resolveBlock(v)
	case *syntax.VarDecl:
		vd := &sem.VarDecl{StmtBase: base}
		if v.Type != nil {
			vd.Declared = r.resolveValueType(v.Type)
		}

		// the initializer cannot see the variable it initializes
		if v.Init != nil {
			vd.Init = r.resolveExpr(v.Init)
		}

		vd.Symbol = r.newLocal(v.Name, vd.Declared)
		r.defineLocal(vd.Symbol)
		return vd
	case *syntax.Assign:
		return &sem.Assign{
			StmtBase: base,
			Target:   r.resolveExpr(v.Target),
			Value:    r.resolveExpr(v.Value),
		}
	case *syntax.ExprStmt:
		return &sem.ExprStmt{StmtBase: base, Expr: r.resolveExpr(v.Expr)}
	case *syntax.IfStmt:
		is := &sem.IfStmt{StmtBase: base}
		for _, cb := range v.CondBranches {
			is.CondBranches = append(is.CondBranches, &sem.CondBranch{
				Cond: r.resolveExpr(cb.Cond),
				Body: r.resolveBlock(cb.Body),
			})
		}

		is.Else = r.resolveBlock(v.ElseBranch)
		return is
	case *syntax.WhileStmt:
		return &sem.WhileStmt{
			StmtBase: base,
			Label:    v.Label,
			Cond:     r.resolveExpr(v.Cond),
			Body:     r.resolveBlock(v.Body),
		}
	case *syntax.ReturnStmt:
		rs := &sem.ReturnStmt{StmtBase: base}
		if v.Value != nil {
			rs.Value = r.resolveExpr(v.Value)
		}

		return rs
	case *syntax.BreakStmt:
		return &sem.BreakStmt{StmtBase: base, Label: v.Label}
	case *syntax.ContinueStmt:
		return &sem.ContinueStmt{StmtBase: base, Label: v.Label}
	case *syntax.MatchStmt:
		ms := &sem.MatchStmt{StmtBase: base, Subject: r.resolveExpr(v.Subject)}
		for _, arm := range v.Arms {
			ms.Arms = append(ms.Arms, r.resolveMatchArm(arm))
		}

		ms.Else = r.resolveBlock(v.ElseBranch)
		return ms
	}

	report.ICE("unknown statement type: %T", stmt)
	return nil
}

func (r *Resolver) resolveMatchArm(arm *syntax.MatchArm) *sem.MatchArm {
	typ := r.resolveValueType(arm.Type)

	r.pushScope()
	defer r.popScope()

	binding := r.newLocal(arm.Name, typ)
	r.defineLocal(binding)

	return &sem.MatchArm{
		Binding: binding,
		Type:    typ,
		Body:    r.resolveBlock(arm.Body),
		Span:    arm.Span(),
	}
}

// -----------------------------------------------------------------------------

// resolveExpr resolves an expression that must produce a value.
func (r *Resolver) resolveExpr(expr syntax.Expr) sem.Expr {
	rexpr, sym := r.resolveOperand(expr)
	if sym != nil {
		r.error(expr.Span(), report.CodeBadAccess, "cannot use %s `%s` as a value", sym.Kind, sym.Name)
	}

	return rexpr
}

// resolveOperand resolves an expression that may name a module or a type
// instead of producing a value.  In that case, the named symbol is returned
// instead of an expression.
func (r *Resolver) resolveOperand(expr syntax.Expr) (sem.Expr, *sem.Symbol) {
	base := sem.NewExprBase(expr.Span())

	switch v := expr.(type) {
	case *syntax.Identifier:
		return r.symbolOperand(r.lookup(v.Name, v.Span()), v.Span())
	case *syntax.Dot:
		root, rsym := r.resolveOperand(v.Root)
		if rsym == nil {
			return &sem.FieldAccess{ExprBase: base, Root: root, Field: v.Field.Name}, nil
		}

		switch rsym.Kind {
		case sem.SymModule:
			return r.symbolOperand(r.lookupMember(rsym.Imported, v.Field.Name, v.Field.Span()), v.Span())
		case sem.SymType:
			if rsym.Construct != nil {
				if method, ok := rsym.Construct.Methods[v.Field.Name]; ok {
					return &sem.Ident{ExprBase: base, Symbol: method}, nil
				}
			}

			r.error(v.Field.Span(), report.CodeBadAccess, "type `%s` has no method named `%s`", rsym.Name, v.Field.Name)
		}
	case *syntax.Call:
		return r.resolveCall(v), nil
	case *syntax.IntLit:
		return &sem.IntLit{ExprBase: base, Value: v.Value}, nil
	case *syntax.FloatLit:
		return &sem.FloatLit{ExprBase: base, Value: v.Value}, nil
	case *syntax.BoolLit:
		return &sem.BoolLit{ExprBase: base, Value: v.Value}, nil
	case *syntax.StringLit:
		return &sem.StringLit{ExprBase: base, Value: v.Value}, nil
	case *syntax.StructLit:
		sl := &sem.StructLit{ExprBase: base}
		seen := make(map[string]struct{})

		for _, field := range v.Fields {
			if _, ok := seen[field.Name.Name]; ok {
				r.error(field.Name.Span(), report.CodeBadDecl, "multiple fields named `%s`", field.Name.Name)
			}

			seen[field.Name.Name] = struct{}{}
			sl.Fields = append(sl.Fields, &sem.FieldInit{
				Name:  field.Name.Name,
				Value: r.resolveExpr(field.Value),
				Span:  field.Span(),
			})
		}

		return sl, nil
	case *syntax.Binary:
		return &sem.Binary{
			ExprBase: base,
			Op:       v.Op,
			Lhs:      r.resolveExpr(v.Lhs),
			Rhs:      r.resolveExpr(v.Rhs),
		}, nil
	case *syntax.Unary:
		return &sem.Unary{ExprBase: base, Op: v.Op, Operand: r.resolveExpr(v.Operand)}, nil
	default:
		report.ICE("unknown expression type: %T", expr)
	}

	return nil, nil
}

// symbolOperand converts a symbol reference into an operand.
func (r *Resolver) symbolOperand(sym *sem.Symbol, span *report.TextSpan) (sem.Expr, *sem.Symbol) {
	if sym.IsValue() {
		return &sem.Ident{ExprBase: sem.NewExprBase(span), Symbol: sym}, nil
	}

	return nil, sym
}

// resolveCall resolves a call.  Calling a construct's type calls its
// initializer with the construct's defaults as `self`.
func (r *Resolver) resolveCall(call *syntax.Call) sem.Expr {
	fn, fsym := r.resolveOperand(call.Func)

	args := make([]sem.Expr, 0, len(call.Args)+1)
	if fsym != nil {
		if fsym.Kind != sem.SymType || fsym.Construct == nil {
			r.error(call.Func.Span(), report.CodeBadAccess, "cannot call %s `%s`", fsym.Kind, fsym.Name)
		}

		if fsym.Construct.Defaults == nil {
			// the construct's defaults are erroneous
			report.Abort()
		}

		fn = &sem.Ident{ExprBase: sem.NewExprBase(call.Func.Span()), Symbol: fsym.Construct.Init}
		args = append(args, fsym.Construct.Defaults)
	}

	for _, arg := range call.Args {
		args = append(args, r.resolveExpr(arg))
	}

	return &sem.Call{ExprBase: sem.NewExprBase(call.Span()), Func: fn, Args: args}
}
