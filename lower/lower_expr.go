package lower

import (
	"github.com/redgush/flycatcher/mir"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/syntax"
	"github.com/redgush/flycatcher/types"
)

var binaryOps = map[int]mir.Op{
	syntax.OpAdd:  mir.OpAdd,
	syntax.OpSub:  mir.OpSub,
	syntax.OpMul:  mir.OpMul,
	syntax.OpDiv:  mir.OpDiv,
	syntax.OpMod:  mir.OpMod,
	syntax.OpEq:   mir.OpEq,
	syntax.OpNeq:  mir.OpNe,
	syntax.OpLt:   mir.OpLt,
	syntax.OpGt:   mir.OpGt,
	syntax.OpLtEq: mir.OpLe,
	syntax.OpGtEq: mir.OpGe,
}

// lowerExpr lowers an expression and returns the value it produces.  Calls
// to `void` functions produce no value and return nil.
func (b *funcBuilder) lowerExpr(expr sem.Expr) mir.Value {
	if value, ok := b.l.lowerLiteral(expr); ok {
		return value
	}

	switch v := expr.(type) {
	case *sem.Ident:
		switch v.Symbol.Kind {
		case sem.SymLocal:
			return b.load(&mir.Place{Var: b.localOf(v.Symbol)}, v.Span())
		case sem.SymStatic:
			return b.load(&mir.Place{Var: b.l.staticRef(v.Symbol)}, v.Span())
		case sem.SymFunc:
			return b.l.funcRef(v.Symbol)
		}

		report.ICE("%s `%s` used as a value", v.Symbol.Kind, v.Symbol.Name)
	case *sem.StructLit:
		return b.lowerStructLit(v)
	case *sem.Call:
		return b.lowerCall(v)
	case *sem.FieldAccess:
		if place := b.placeOf(v); place != nil {
			return b.load(place, v.Span())
		}

		agg := b.lowerExpr(v.Root)
		dest := b.temp(v.Type())
		b.emit(&mir.Extract{InstrBase: base(v.Span()), Dest: dest, Agg: agg, Index: fieldIndex(agg.Type(), v.Field)})
		return dest
	case *sem.Binary:
		if v.Op == syntax.OpLAnd || v.Op == syntax.OpLOr {
			return b.lowerShortCircuit(v)
		}

		op, ok := binaryOps[v.Op]
		if !ok {
			report.ICE("unknown binary operator: %d", v.Op)
		}

		lhs := b.lowerExpr(v.Lhs)
		rhs := b.lowerExpr(v.Rhs)

		dest := b.temp(v.Type())
		b.emit(&mir.BinOp{InstrBase: base(v.Span()), Dest: dest, Op: op, Lhs: lhs, Rhs: rhs})
		return dest
	case *sem.Unary:
		op := mir.OpNeg
		if v.Op == syntax.OpNot {
			op = mir.OpNot
		}

		operand := b.lowerExpr(v.Operand)

		dest := b.temp(v.Type())
		b.emit(&mir.UnOp{InstrBase: base(v.Span()), Dest: dest, Op: op, Operand: operand})
		return dest
	case *sem.Coerce:
		return b.lowerCoerce(v)
	default:
		report.ICE("unknown expression type: %T", expr)
	}

	return nil
}

func (b *funcBuilder) load(place *mir.Place, span *report.TextSpan) *mir.Temp {
	dest := b.temp(place.Type())
	b.emit(&mir.Load{InstrBase: base(span), Dest: dest, Src: place})
	return dest
}

// placeOf returns the place an expression denotes or nil if it does not
// denote one.  Places are variables and field paths into them.
func (b *funcBuilder) placeOf(expr sem.Expr) *mir.Place {
	switch v := expr.(type) {
	case *sem.Ident:
		switch v.Symbol.Kind {
		case sem.SymLocal:
			return &mir.Place{Var: b.localOf(v.Symbol)}
		case sem.SymStatic:
			return &mir.Place{Var: b.l.staticRef(v.Symbol)}
		}
	case *sem.FieldAccess:
		root := b.placeOf(v.Root)
		if root == nil {
			return nil
		}

		fields := make([]int, len(root.Fields), len(root.Fields)+1)
		copy(fields, root.Fields)
		return &mir.Place{Var: root.Var, Fields: append(fields, fieldIndex(root.Type(), v.Field))}
	}

	return nil
}

func (b *funcBuilder) lowerStructLit(lit *sem.StructLit) mir.Value {
	st := structOf(lit.Type())

	// fields are evaluated in source order and stored in type order
	fields := make([]mir.Value, len(st.Fields))
	for _, field := range lit.Fields {
		fields[fieldIndex(st, field.Name)] = b.lowerExpr(field.Value)
	}

	dest := b.temp(st)
	b.emit(&mir.MakeStruct{InstrBase: base(lit.Span()), Dest: dest, Fields: fields})
	return dest
}

func (b *funcBuilder) lowerCall(call *sem.Call) mir.Value {
	fn := b.lowerExpr(call.Func)

	ft, ok := call.Func.Type().(*types.FuncType)
	if !ok {
		report.ICE("call of a value of type `%s`", call.Func.Type().Repr())
	}

	args := make([]mir.Value, len(call.Args))
	for i, arg := range call.Args {
		args[i] = b.lowerExpr(arg)
	}

	var dest *mir.Temp
	if !types.IsVoid(ft.ReturnType) {
		dest = b.temp(ft.ReturnType)
	}

	b.emit(&mir.Call{InstrBase: base(call.Span()), Dest: dest, Func: fn, Args: args})

	if dest == nil {
		return nil
	}

	return dest
}

func (b *funcBuilder) lowerCoerce(c *sem.Coerce) mir.Value {
	value := b.lowerExpr(c.Expr)
	dest := b.temp(c.Coercion.To)

	switch c.Coercion.Kind {
	case types.CoerceCast:
		b.emit(&mir.Cast{InstrBase: base(c.Span()), Dest: dest, Value: value})
	case types.CoerceBox:
		b.emit(&mir.Box{InstrBase: base(c.Span()), Dest: dest, Value: value})
	case types.CoerceCall:
		b.emit(&mir.Call{
			InstrBase: base(c.Span()),
			Dest:      dest,
			Func:      b.l.viaRef(c.Coercion),
			Args:      []mir.Value{value},
		})
	default:
		report.ICE("unknown coercion kind: %d", c.Coercion.Kind)
	}

	return dest
}

// -----------------------------------------------------------------------------

// lowerCond lowers a condition as a branch to onTrue or onFalse.  Logical
// operators short-circuit: their right operand is evaluated in its own block.
func (b *funcBuilder) lowerCond(cond sem.Expr, onTrue, onFalse *mir.Block) {
	switch v := cond.(type) {
	case *sem.Binary:
		switch v.Op {
		case syntax.OpLAnd:
			rhs := b.fn.NewBlock("and.rhs")
			b.lowerCond(v.Lhs, rhs, onFalse)
			b.setBlock(rhs)
			b.lowerCond(v.Rhs, onTrue, onFalse)
			return
		case syntax.OpLOr:
			rhs := b.fn.NewBlock("or.rhs")
			b.lowerCond(v.Lhs, onTrue, rhs)
			b.setBlock(rhs)
			b.lowerCond(v.Rhs, onTrue, onFalse)
			return
		}
	case *sem.Unary:
		if v.Op == syntax.OpNot {
			b.lowerCond(v.Operand, onFalse, onTrue)
			return
		}
	}

	value := b.lowerExpr(cond)
	b.terminate(&mir.CondBr{Cond: value, Then: onTrue.Index, Else: onFalse.Index})
}

// lowerShortCircuit lowers a logical operator used as a value.  The result is
// stored into a temporary local along each branch.
func (b *funcBuilder) lowerShortCircuit(bin *sem.Binary) mir.Value {
	boolType := b.l.table.Bool()
	result := b.fn.NewLocal("cond", boolType)

	onTrue := b.fn.NewBlock("cond.true")
	onFalse := b.fn.NewBlock("cond.false")
	end := b.fn.NewBlock("cond.end")

	b.lowerCond(bin, onTrue, onFalse)

	b.setBlock(onTrue)
	b.emit(&mir.Store{InstrBase: base(bin.Span()), Dst: &mir.Place{Var: result}, Value: mir.NewConstBool(true, boolType)})
	b.terminate(&mir.Br{Target: end.Index})

	b.setBlock(onFalse)
	b.emit(&mir.Store{InstrBase: base(bin.Span()), Dst: &mir.Place{Var: result}, Value: mir.NewConstBool(false, boolType)})
	b.terminate(&mir.Br{Target: end.Index})

	b.setBlock(end)
	return b.load(&mir.Place{Var: result}, bin.Span())
}

// -----------------------------------------------------------------------------

// lowerLiteral lowers a literal or a negated numeric literal to a constant.
func (l *Lowerer) lowerLiteral(expr sem.Expr) (mir.Value, bool) {
	switch v := expr.(type) {
	case *sem.IntLit:
		return mir.NewConstInt(v.Value, primOf(v.Type())), true
	case *sem.FloatLit:
		return mir.NewConstFloat(v.Value, primOf(v.Type())), true
	case *sem.BoolLit:
		return mir.NewConstBool(v.Value, v.Type()), true
	case *sem.StringLit:
		return mir.NewConstString(v.Value, v.Type()), true
	case *sem.Unary:
		if v.Op != syntax.OpNeg {
			break
		}

		switch operand := v.Operand.(type) {
		case *sem.IntLit:
			return mir.NewConstInt(-operand.Value, primOf(v.Type())), true
		case *sem.FloatLit:
			return mir.NewConstFloat(-operand.Value, primOf(v.Type())), true
		}
	}

	return nil, false
}

// lowerConst lowers the constant initializer of a static variable.
func (l *Lowerer) lowerConst(expr sem.Expr) mir.Value {
	if value, ok := l.lowerLiteral(expr); ok {
		return value
	}

	if lit, ok := expr.(*sem.StructLit); ok {
		st := structOf(lit.Type())

		fields := make([]mir.Value, len(st.Fields))
		for _, field := range lit.Fields {
			fields[fieldIndex(st, field.Name)] = l.lowerConst(field.Value)
		}

		return mir.NewConstStruct(fields, st)
	}

	report.ICE("static initializer is not a constant: %T", expr)
	return nil
}

func primOf(typ types.Type) *types.PrimitiveType {
	pt, ok := typ.(*types.PrimitiveType)
	if !ok {
		report.ICE("expected a primitive type but got `%s`", typ.Repr())
	}

	return pt
}

func structOf(typ types.Type) *types.StructType {
	st, ok := typ.(*types.StructType)
	if !ok {
		report.ICE("expected a struct type but got `%s`", typ.Repr())
	}

	return st
}

func fieldIndex(typ types.Type, name string) int {
	_, index, ok := structOf(typ).GetFieldByName(name)
	if !ok {
		report.ICE("type `%s` has no field named `%s`", typ.Repr(), name)
	}

	return index
}
