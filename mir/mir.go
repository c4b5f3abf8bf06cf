// Package mir defines the mid-level intermediate representation: functions
// lowered into basic blocks of straight-line instructions, each block ending
// in exactly one terminator.
package mir

import (
	"fmt"

	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/types"
)

// Bundle represents a single module once lowered into MIR.
type Bundle struct {
	// ID is the unique identifier for the bundle.  This is the same as the ID
	// of the module that generated this bundle.
	ID uint64

	// Name is the name of the module.
	Name string

	// Funcs is the list of functions defined in the bundle including extern
	// functions.
	Funcs []*Function

	// Globals is the list of static variables defined in the bundle.
	Globals []*GlobalVar

	// Externals is the list of functions and statics defined in other
	// bundles that this bundle references.
	Externals []*Decl

	// Exports is the list of functions and statics this bundle makes
	// available to other bundles.
	Exports []*Decl

	externIndex map[string]struct{}
}

// NewBundle creates a new bundle.
func NewBundle(id uint64, name string) *Bundle {
	return &Bundle{ID: id, Name: name, externIndex: make(map[string]struct{})}
}

// AddExternal records a reference to a symbol defined in another bundle.
// Repeated references are only recorded once.
func (b *Bundle) AddExternal(name string, typ types.Type, isFunc bool) {
	if _, ok := b.externIndex[name]; ok {
		return
	}

	b.externIndex[name] = struct{}{}
	b.Externals = append(b.Externals, &Decl{Name: name, Type: typ, Func: isFunc})
}

// Decl is the declaration of a global symbol by link name.
type Decl struct {
	Name string
	Type types.Type
	Func bool
}

// GlobalVar is a static variable definition.
type GlobalVar struct {
	Name   string
	Type   types.Type
	Public bool

	// Init is a constant or nil if the variable is zero initialized.
	Init Value
}

// -----------------------------------------------------------------------------

// Function is a function definition in MIR.  Block 0 is the entry block.
type Function struct {
	Name      string
	Signature *types.FuncType
	Public    bool

	// Extern functions have no blocks.
	Extern bool

	// Params are the locals holding the function's arguments.
	Params []*Local

	// Locals is the list of all local variables including parameters.
	Locals []*Local

	Blocks []*Block

	Span *report.TextSpan

	nextTemp int
	names    map[string]int
	sealed   bool
}

// NewFunction creates a new function.
func NewFunction(name string, sig *types.FuncType, span *report.TextSpan) *Function {
	return &Function{
		Name:      name,
		Signature: sig,
		Span:      span,
		names:     make(map[string]int),
	}
}

// Block is a basic block.
type Block struct {
	// Index is the position of the block in its function.
	Index int

	// Label describes the construct that created the block.
	Label string

	Instrs []Instr

	// Term is the terminator of the block.  It is nil only while the block
	// is still being built.
	Term Terminator

	// Span is the span of the first statement lowered into the block.
	Span *report.TextSpan

	// Dead indicates the block is unreachable from the entry block.  It is
	// set by validation.
	Dead bool
}

// Terminated returns whether the block has its terminator.
func (b *Block) Terminated() bool {
	return b.Term != nil
}

// NewBlock appends a new block to the function.
func (fn *Function) NewBlock(label string) *Block {
	if fn.sealed {
		report.ICE("new block `%s` added to sealed function `%s`", label, fn.Name)
	}

	block := &Block{Index: len(fn.Blocks), Label: label}
	fn.Blocks = append(fn.Blocks, block)
	return block
}

// NewTemp creates a new temporary of the given type.
func (fn *Function) NewTemp(typ types.Type) *Temp {
	temp := &Temp{ID: fn.nextTemp, typ: typ}
	fn.nextTemp++
	return temp
}

// NewLocal creates a new local variable.  Names are made unique by appending
// a numeric suffix to repeated names.
func (fn *Function) NewLocal(name string, typ types.Type) *Local {
	uniqueName := name
	if n, ok := fn.names[name]; ok {
		uniqueName = fmt.Sprintf("%s.%d", name, n)
		fn.names[name] = n + 1
	} else {
		fn.names[name] = 1
	}

	local := &Local{ID: len(fn.Locals), Name: uniqueName, typ: typ}
	fn.Locals = append(fn.Locals, local)
	return local
}

// NewParam creates a new local holding a parameter.
func (fn *Function) NewParam(name string, typ types.Type) *Local {
	local := fn.NewLocal(name, typ)
	fn.Params = append(fn.Params, local)
	return local
}

// Seal marks the function as complete.  No blocks may be added after it is
// sealed.
func (fn *Function) Seal() {
	fn.sealed = true
}

// Sealed returns whether the function is complete.
func (fn *Function) Sealed() bool {
	return fn.sealed
}

// Predecessors returns the indices of the predecessors of every block in
// ascending order.  A block branching twice to the same target is counted
// once.
func (fn *Function) Predecessors() [][]int {
	preds := make([][]int, len(fn.Blocks))
	for _, block := range fn.Blocks {
		if block.Term == nil {
			continue
		}

		for _, target := range block.Term.Targets() {
			if target < 0 || target >= len(fn.Blocks) {
				continue
			}

			if n := len(preds[target]); n > 0 && preds[target][n-1] == block.Index {
				continue
			}

			preds[target] = append(preds[target], block.Index)
		}
	}

	return preds
}
