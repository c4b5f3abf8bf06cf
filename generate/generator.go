// Package generate converts MIR bundles into LLVM IR modules.  Generation is
// assumed to always succeed: any problem here is an internal compiler error.
package generate

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/redgush/flycatcher/mir"
	"github.com/redgush/flycatcher/report"
	ftypes "github.com/redgush/flycatcher/types"
)

// Options configures generation.
type Options struct {
	// WordSize is the size of a machine word in bytes.
	WordSize int

	// Entry indicates that the bundle is the entry module.  The entry module
	// defines the native `main` function calling the module's own `main`.
	Entry bool
}

// Generator is responsible for converting a single MIR bundle into an LLVM
// module.
type Generator struct {
	bundle *mir.Bundle
	opts   Options

	// mod is the LLVM module being generated.
	mod *ir.Module

	// funcs and globals map link names to their LLVM definitions or
	// declarations.
	funcs   map[string]*ir.Func
	globals map[string]*ir.Global

	// typeCache maps descriptors to their LLVM types.
	typeCache map[ftypes.Type]types.Type

	// wordType is the integer type of a machine word.
	wordType *types.IntType

	// stringType is the type used for `string`: {*i8, word}.
	stringType *types.StructType

	// dynType is the type used for `dyn`: {i64 tag, *i8 data}.
	dynType *types.StructType

	// globalCounter is a counter used to generate anonymous globals such as
	// those for interned strings.
	globalCounter int

	// The state of the function being generated.
	enclosingFunc *ir.Func
	blocks        []*ir.Block
	block         *ir.Block
	locals        map[*mir.Local]value.Value
	temps         map[*mir.Temp]value.Value
}

// Generate converts a bundle into an LLVM module.
func Generate(bundle *mir.Bundle, opts Options) *ir.Module {
	g := newGenerator(bundle, opts)

	// declare all imported symbols
	for _, decl := range bundle.Externals {
		if decl.Func {
			g.declareFunc(decl.Name, decl.Type.(*ftypes.FuncType), nil)
		} else {
			global := g.mod.NewGlobal(decl.Name, g.convType(decl.Type))
			global.Linkage = enum.LinkageExternal
			g.globals[decl.Name] = global
		}
	}

	for _, gv := range bundle.Globals {
		g.genGlobal(gv)
	}

	// declare every function before generating any body so that bodies can
	// reference functions defined later in the bundle
	for _, fn := range bundle.Funcs {
		g.declareFunc(fn.Name, fn.Signature, fn.Params)
	}

	for _, fn := range bundle.Funcs {
		if !fn.Extern {
			g.genFuncBody(fn)
		}
	}

	if opts.Entry {
		g.genEntryPoint()
	}

	return g.mod
}

func newGenerator(bundle *mir.Bundle, opts Options) *Generator {
	g := &Generator{
		bundle:    bundle,
		opts:      opts,
		mod:       ir.NewModule(),
		funcs:     make(map[string]*ir.Func),
		globals:   make(map[string]*ir.Global),
		typeCache: make(map[ftypes.Type]types.Type),
	}

	g.mod.SourceFilename = bundle.Name

	g.wordType = types.NewInt(g.intBits(opts.WordSize * 8))
	g.stringType = g.mod.NewTypeDef("string", types.NewStruct(types.I8Ptr, g.wordType)).(*types.StructType)
	g.dynType = g.mod.NewTypeDef("dyn", types.NewStruct(types.I64, types.I8Ptr)).(*types.StructType)

	return g
}

// -----------------------------------------------------------------------------

func (g *Generator) declareFunc(name string, sig *ftypes.FuncType, params []*mir.Local) *ir.Func {
	if fn, ok := g.funcs[name]; ok {
		return fn
	}

	llParams := make([]*ir.Param, len(sig.ParamTypes))
	for i, paramType := range sig.ParamTypes {
		paramName := ""
		if i < len(params) {
			paramName = params[i].Name
		}

		llParams[i] = ir.NewParam(paramName, g.convType(paramType))
	}

	fn := g.mod.NewFunc(name, g.convType(sig.ReturnType), llParams...)
	g.funcs[name] = fn
	return fn
}

func (g *Generator) genGlobal(gv *mir.GlobalVar) {
	var init constant.Constant
	if gv.Init != nil {
		init = g.genConst(gv.Init)
	} else {
		init = constant.NewZeroInitializer(g.convType(gv.Type))
	}

	g.globals[gv.Name] = g.mod.NewGlobalDef(gv.Name, init)
}

func (g *Generator) genFuncBody(fn *mir.Function) {
	llFunc := g.funcs[fn.Name]

	g.enclosingFunc = llFunc
	g.locals = make(map[*mir.Local]value.Value)
	g.temps = make(map[*mir.Temp]value.Value)
	g.blocks = make([]*ir.Block, len(fn.Blocks))

	defer func() {
		g.enclosingFunc = nil
		g.locals = nil
		g.temps = nil
		g.blocks = nil
		g.block = nil
	}()

	for i, block := range fn.Blocks {
		g.blocks[i] = llFunc.NewBlock(fmt.Sprintf("b%d", block.Index))
	}

	// all locals live in stack slots allocated in the entry block
	entry := g.blocks[0]
	for _, local := range fn.Locals {
		slot := entry.NewAlloca(g.convType(local.Type()))
		slot.SetName(local.Name + ".addr")
		g.locals[local] = slot
	}

	for i, param := range fn.Params {
		entry.NewStore(llFunc.Params[i], g.locals[param])
	}

	for i, block := range fn.Blocks {
		g.block = g.blocks[i]

		for _, instr := range block.Instrs {
			g.genInstr(instr)
		}

		g.genTerm(block.Term)
	}
}

// genEntryPoint generates the native `main` function of the program.
func (g *Generator) genEntryPoint() {
	userMain, ok := g.funcs[g.bundle.Name+".main"]
	if !ok || len(userMain.Params) > 0 {
		return
	}

	main := g.mod.NewFunc("main", types.I32)
	block := main.NewBlock("entry")
	block.NewCall(userMain)
	block.NewRet(constant.NewInt(types.I32, 0))
}

// -----------------------------------------------------------------------------

// runtimeFunc returns the declaration of a runtime support function.
func (g *Generator) runtimeFunc(name string, ret types.Type, params ...types.Type) *ir.Func {
	if fn, ok := g.funcs[name]; ok {
		return fn
	}

	llParams := make([]*ir.Param, len(params))
	for i, param := range params {
		llParams[i] = ir.NewParam("", param)
	}

	fn := g.mod.NewFunc(name, ret, llParams...)
	g.funcs[name] = fn
	return fn
}

// internString creates a global holding the bytes of a string constant and
// returns a pointer to its first byte.
func (g *Generator) internString(s string) constant.Constant {
	strBytes := g.mod.NewGlobalDef(fmt.Sprintf("__strlit.%d", g.globalCounter), constant.NewCharArrayFromString(s))
	strBytes.Immutable = true
	g.globalCounter++

	return constant.NewBitCast(strBytes, types.I8Ptr)
}

func (g *Generator) ice(msg string, args ...interface{}) {
	report.ICE("%s: %s", g.bundle.Name, fmt.Sprintf(msg, args...))
}
