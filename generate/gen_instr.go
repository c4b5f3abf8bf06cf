package generate

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/redgush/flycatcher/mir"
	ftypes "github.com/redgush/flycatcher/types"
)

func (g *Generator) genInstr(instr mir.Instr) {
	switch v := instr.(type) {
	case *mir.Load:
		g.temps[v.Dest] = g.block.NewLoad(g.convType(v.Dest.Type()), g.placePtr(v.Src))
	case *mir.Store:
		g.block.NewStore(g.genValue(v.Value), g.placePtr(v.Dst))
	case *mir.BinOp:
		g.temps[v.Dest] = g.genBinOp(v)
	case *mir.UnOp:
		operand := g.genValue(v.Operand)

		var result value.Value
		switch {
		case v.Op == mir.OpNot:
			result = g.block.NewXor(operand, constant.True)
		case isFloat(v.Operand.Type()):
			result = g.block.NewFNeg(operand)
		default:
			result = g.block.NewSub(constant.NewInt(operand.Type().(*types.IntType), 0), operand)
		}

		g.temps[v.Dest] = result
	case *mir.Call:
		args := make([]value.Value, len(v.Args))
		for i, arg := range v.Args {
			args[i] = g.genValue(arg)
		}

		call := g.block.NewCall(g.genValue(v.Func), args...)
		if v.Dest != nil {
			g.temps[v.Dest] = call
		}
	case *mir.Extract:
		g.temps[v.Dest] = g.block.NewExtractValue(g.genValue(v.Agg), uint64(v.Index))
	case *mir.MakeStruct:
		var agg value.Value = constant.NewUndef(g.llStruct(v.Dest.Type()))
		for i, field := range v.Fields {
			agg = g.block.NewInsertValue(agg, g.genValue(field), uint64(i))
		}

		g.temps[v.Dest] = agg
	case *mir.Cast:
		g.temps[v.Dest] = g.genCast(g.genValue(v.Value), v.Value.Type(), v.Dest.Type())
	case *mir.Box:
		g.temps[v.Dest] = g.genBox(v.Value)
	case *mir.Unbox:
		data := g.block.NewExtractValue(g.genValue(v.Value), 1)
		elemType := g.convType(v.Dest.Type())
		ptr := g.block.NewBitCast(data, types.NewPointer(elemType))
		g.temps[v.Dest] = g.block.NewLoad(elemType, ptr)
	case *mir.TypeTest:
		tag := g.block.NewExtractValue(g.genValue(v.Value), 0)
		g.temps[v.Dest] = g.block.NewICmp(enum.IPredEQ, tag, typeTag(v.Tested))
	default:
		g.ice("unknown instruction type: %T", instr)
	}
}

func (g *Generator) genTerm(term mir.Terminator) {
	switch v := term.(type) {
	case *mir.Br:
		g.block.NewBr(g.blocks[v.Target])
	case *mir.CondBr:
		g.block.NewCondBr(g.genValue(v.Cond), g.blocks[v.Then], g.blocks[v.Else])
	case *mir.Return:
		if v.Value == nil {
			g.block.NewRet(nil)
		} else {
			g.block.NewRet(g.genValue(v.Value))
		}
	case *mir.Unreachable:
		g.block.NewUnreachable()
	default:
		g.ice("unknown terminator type: %T", term)
	}
}

// -----------------------------------------------------------------------------

// genValue converts an operand into an LLVM value.
func (g *Generator) genValue(v mir.Value) value.Value {
	switch val := v.(type) {
	case *mir.Temp:
		if llVal, ok := g.temps[val]; ok {
			return llVal
		}

		g.ice("temporary %s used before it was defined", val.Repr())
	case *mir.Global:
		if fn, ok := g.funcs[val.Name]; ok {
			return fn
		}

		g.ice("undeclared function %s", val.Repr())
	default:
		if mir.IsConst(v) {
			return g.genConst(v)
		}

		g.ice("%s cannot be used as an operand", v.Repr())
	}

	return nil
}

// genConst converts a constant value into an LLVM constant.
func (g *Generator) genConst(v mir.Value) constant.Constant {
	switch c := v.(type) {
	case *mir.ConstInt:
		return constant.NewInt(g.convType(c.Type()).(*types.IntType), int64(c.Value))
	case *mir.ConstFloat:
		return constant.NewFloat(g.convType(c.Type()).(*types.FloatType), c.Value)
	case *mir.ConstBool:
		return constant.NewBool(c.Value)
	case *mir.ConstString:
		return constant.NewStruct(
			g.stringType,
			g.internString(c.Value),
			constant.NewInt(g.wordType, int64(len(c.Value))),
		)
	case *mir.ConstStruct:
		fields := make([]constant.Constant, len(c.Fields))
		for i, field := range c.Fields {
			fields[i] = g.genConst(field)
		}

		return constant.NewStruct(g.llStruct(c.Type()), fields...)
	case *mir.Zero:
		return constant.NewZeroInitializer(g.convType(c.Type()))
	}

	g.ice("%s is not a constant", v.Repr())
	return nil
}

// placePtr computes the address of a place.
func (g *Generator) placePtr(place *mir.Place) value.Value {
	var ptr value.Value
	switch v := place.Var.(type) {
	case *mir.Local:
		ptr = g.locals[v]
	case *mir.Global:
		if global, ok := g.globals[v.Name]; ok {
			ptr = global
		}
	}

	if ptr == nil {
		g.ice("place %s has no storage", place.Repr())
	}

	if len(place.Fields) == 0 {
		return ptr
	}

	indices := []value.Value{constant.NewInt(types.I32, 0)}
	for _, index := range place.Fields {
		indices = append(indices, constant.NewInt(types.I32, int64(index)))
	}

	return g.block.NewGetElementPtr(g.convType(place.Var.Type()), ptr, indices...)
}

// -----------------------------------------------------------------------------

func (g *Generator) genBinOp(bin *mir.BinOp) value.Value {
	lhs, rhs := g.genValue(bin.Lhs), g.genValue(bin.Rhs)
	typ := bin.Lhs.Type()

	if pt, ok := typ.(*ftypes.PrimitiveType); ok && pt.Kind == ftypes.PrimString {
		return g.genStringOp(bin.Op, lhs, rhs)
	}

	if isFloat(typ) {
		switch bin.Op {
		case mir.OpAdd:
			return g.block.NewFAdd(lhs, rhs)
		case mir.OpSub:
			return g.block.NewFSub(lhs, rhs)
		case mir.OpMul:
			return g.block.NewFMul(lhs, rhs)
		case mir.OpDiv:
			return g.block.NewFDiv(lhs, rhs)
		case mir.OpMod:
			return g.block.NewFRem(lhs, rhs)
		}

		return g.block.NewFCmp(floatPreds[bin.Op], lhs, rhs)
	}

	signed := isSigned(typ)
	switch bin.Op {
	case mir.OpAdd:
		return g.block.NewAdd(lhs, rhs)
	case mir.OpSub:
		return g.block.NewSub(lhs, rhs)
	case mir.OpMul:
		return g.block.NewMul(lhs, rhs)
	case mir.OpDiv:
		if signed {
			return g.block.NewSDiv(lhs, rhs)
		}

		return g.block.NewUDiv(lhs, rhs)
	case mir.OpMod:
		if signed {
			return g.block.NewSRem(lhs, rhs)
		}

		return g.block.NewURem(lhs, rhs)
	}

	if signed {
		return g.block.NewICmp(signedPreds[bin.Op], lhs, rhs)
	}

	return g.block.NewICmp(unsignedPreds[bin.Op], lhs, rhs)
}

func (g *Generator) genStringOp(op mir.Op, lhs, rhs value.Value) value.Value {
	switch op {
	case mir.OpAdd:
		strcat := g.runtimeFunc("flyc_strcat", g.stringType, g.stringType, g.stringType)
		return g.block.NewCall(strcat, lhs, rhs)
	case mir.OpEq, mir.OpNe:
		streq := g.runtimeFunc("flyc_streq", types.I1, g.stringType, g.stringType)
		eq := g.block.NewCall(streq, lhs, rhs)
		if op == mir.OpNe {
			return g.block.NewXor(eq, constant.True)
		}

		return eq
	}

	g.ice("operation %s is not defined on strings", op)
	return nil
}

// genCast converts a primitive value between numeric types.
func (g *Generator) genCast(val value.Value, from, to ftypes.Type) value.Value {
	if from == to {
		return val
	}

	dstType := g.convType(to)

	switch {
	case isFloat(from) && isFloat(to):
		if g.floatBits(from) < g.floatBits(to) {
			return g.block.NewFPExt(val, dstType)
		}

		return g.block.NewFPTrunc(val, dstType)
	case isFloat(to):
		if isSigned(from) {
			return g.block.NewSIToFP(val, dstType)
		}

		return g.block.NewUIToFP(val, dstType)
	case isFloat(from):
		if isSigned(to) {
			return g.block.NewFPToSI(val, dstType)
		}

		return g.block.NewFPToUI(val, dstType)
	}

	fromBits := val.Type().(*types.IntType).BitSize
	toBits := dstType.(*types.IntType).BitSize

	switch {
	case fromBits == toBits:
		return val
	case fromBits > toBits:
		return g.block.NewTrunc(val, dstType)
	case isSigned(from):
		return g.block.NewSExt(val, dstType)
	default:
		return g.block.NewZExt(val, dstType)
	}
}

// genBox packs a value into a heap cell tagged with its descriptor.
func (g *Generator) genBox(v mir.Value) value.Value {
	val := g.genValue(v)

	size, _ := ftypes.Layout(v.Type(), g.opts.WordSize)
	malloc := g.runtimeFunc("malloc", types.I8Ptr, g.wordType)
	data := g.block.NewCall(malloc, constant.NewInt(g.wordType, int64(size)))

	cell := g.block.NewBitCast(data, types.NewPointer(val.Type()))
	g.block.NewStore(val, cell)

	var dyn value.Value = constant.NewUndef(g.dynType)
	dyn = g.block.NewInsertValue(dyn, typeTag(v.Type()), 0)
	return g.block.NewInsertValue(dyn, data, 1)
}

// typeTag returns the runtime tag of a descriptor: its identity hash.
func typeTag(typ ftypes.Type) constant.Constant {
	return constant.NewInt(types.I64, int64(typ.ID()))
}

// -----------------------------------------------------------------------------

var signedPreds = map[mir.Op]enum.IPred{
	mir.OpEq: enum.IPredEQ,
	mir.OpNe: enum.IPredNE,
	mir.OpLt: enum.IPredSLT,
	mir.OpGt: enum.IPredSGT,
	mir.OpLe: enum.IPredSLE,
	mir.OpGe: enum.IPredSGE,
}

var unsignedPreds = map[mir.Op]enum.IPred{
	mir.OpEq: enum.IPredEQ,
	mir.OpNe: enum.IPredNE,
	mir.OpLt: enum.IPredULT,
	mir.OpGt: enum.IPredUGT,
	mir.OpLe: enum.IPredULE,
	mir.OpGe: enum.IPredUGE,
}

var floatPreds = map[mir.Op]enum.FPred{
	mir.OpEq: enum.FPredOEQ,
	mir.OpNe: enum.FPredONE,
	mir.OpLt: enum.FPredOLT,
	mir.OpGt: enum.FPredOGT,
	mir.OpLe: enum.FPredOLE,
	mir.OpGe: enum.FPredOGE,
}

func isFloat(typ ftypes.Type) bool {
	pt, ok := typ.(*ftypes.PrimitiveType)
	return ok && pt.IsFloating()
}

func isSigned(typ ftypes.Type) bool {
	pt, ok := typ.(*ftypes.PrimitiveType)
	return ok && pt.IsSigned()
}

func (g *Generator) floatBits(typ ftypes.Type) int {
	return typ.(*ftypes.PrimitiveType).BitWidth(g.opts.WordSize)
}
