package generate

import (
	"fortio.org/safecast"
	"github.com/llir/llvm/ir/types"

	ftypes "github.com/redgush/flycatcher/types"
)

// convType converts a descriptor into its LLVM type.
func (g *Generator) convType(typ ftypes.Type) types.Type {
	if llTyp, ok := g.typeCache[typ]; ok {
		return llTyp
	}

	var llTyp types.Type
	switch v := typ.(type) {
	case *ftypes.PrimitiveType:
		llTyp = g.convPrimType(v)
	case *ftypes.StructType:
		fields := make([]types.Type, len(v.Fields))
		for i, field := range v.Fields {
			fields[i] = g.convType(field.Type)
		}

		llTyp = types.NewStruct(fields...)
	case *ftypes.FuncType:
		params := make([]types.Type, len(v.ParamTypes))
		for i, param := range v.ParamTypes {
			params[i] = g.convType(param)
		}

		llTyp = types.NewPointer(types.NewFunc(g.convType(v.ReturnType), params...))
	case *ftypes.DynType:
		llTyp = g.dynType
	default:
		g.ice("unknown type: %T", typ)
	}

	g.typeCache[typ] = llTyp
	return llTyp
}

func (g *Generator) convPrimType(pt *ftypes.PrimitiveType) types.Type {
	switch {
	case pt.Kind == ftypes.PrimVoid:
		return types.Void
	case pt.Kind == ftypes.PrimBool:
		return types.I1
	case pt.Kind == ftypes.PrimString:
		return g.stringType
	case pt.Kind == ftypes.PrimF32:
		return types.Float
	case pt.Kind == ftypes.PrimF64:
		return types.Double
	case pt.IsIntegral():
		return types.NewInt(g.intBits(pt.BitWidth(g.opts.WordSize)))
	}

	g.ice("unknown primitive type: %s", pt.Repr())
	return nil
}

// intBits converts a bit width to the width of an LLVM integer type.
func (g *Generator) intBits(bits int) uint64 {
	n, err := safecast.Conv[uint64](bits)
	if err != nil || n == 0 {
		g.ice("invalid integer width: %d", bits)
	}

	return n
}

// llStruct converts a struct descriptor into its LLVM struct type.
func (g *Generator) llStruct(typ ftypes.Type) *types.StructType {
	st, ok := g.convType(typ).(*types.StructType)
	if !ok {
		g.ice("expected a struct type but got `%s`", typ.Repr())
	}

	return st
}
