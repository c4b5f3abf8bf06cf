package lower

import (
	"github.com/redgush/flycatcher/mir"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/types"
)

// funcBuilder lowers the body of a single function.
type funcBuilder struct {
	l  *Lowerer
	fn *mir.Function

	// current is the block instructions are appended to.
	current *mir.Block

	locals map[*sem.Symbol]*mir.Local

	// loops is the stack of enclosing loops.
	loops []loopTargets
}

// loopTargets are the blocks a break or continue jumps to.
type loopTargets struct {
	label          string
	breakTarget    *mir.Block
	continueTarget *mir.Block
}

func (b *funcBuilder) setBlock(block *mir.Block) {
	b.current = block
}

// emit appends an instruction to the current block.
func (b *funcBuilder) emit(instr mir.Instr) {
	if b.current.Terminated() {
		report.ICE("instruction emitted into terminated block b%d of `%s`", b.current.Index, b.fn.Name)
	}

	b.current.Instrs = append(b.current.Instrs, instr)
}

// terminate sets the terminator of the current block.
func (b *funcBuilder) terminate(term mir.Terminator) {
	if b.current.Terminated() {
		report.ICE("block b%d of `%s` terminated twice", b.current.Index, b.fn.Name)
	}

	b.current.Term = term
}

// branchIfNoTerm jumps from the current block to target unless the current
// block already ends in a terminator.
func (b *funcBuilder) branchIfNoTerm(target *mir.Block) {
	if !b.current.Terminated() {
		b.current.Term = &mir.Br{Target: target.Index}
	}
}

// finalizeCurrent terminates the last open block of the function.  Falling off
// the end of a `void` function returns.  For any other function the checker
// guarantees that the end is never reached.
func (b *funcBuilder) finalizeCurrent() {
	if b.current.Terminated() {
		return
	}

	if types.IsVoid(b.fn.Signature.ReturnType) {
		b.current.Term = &mir.Return{}
	} else {
		b.current.Term = &mir.Unreachable{}
	}
}

func (b *funcBuilder) pushLoop(label string, breakTarget, continueTarget *mir.Block) {
	b.loops = append(b.loops, loopTargets{label: label, breakTarget: breakTarget, continueTarget: continueTarget})
}

func (b *funcBuilder) popLoop() {
	b.loops = b.loops[:len(b.loops)-1]
}

// findLoop returns the innermost loop with the given label.  An empty label
// matches the innermost loop.
func (b *funcBuilder) findLoop(label string) loopTargets {
	for i := len(b.loops) - 1; i >= 0; i-- {
		if label == "" || b.loops[i].label == label {
			return b.loops[i]
		}
	}

	if label == "" {
		report.ICE("loop control outside a loop in `%s`", b.fn.Name)
	} else {
		report.ICE("no enclosing loop labeled `%s` in `%s`", label, b.fn.Name)
	}

	return loopTargets{}
}

// localOf returns the MIR local of a local symbol.
func (b *funcBuilder) localOf(sym *sem.Symbol) *mir.Local {
	local, ok := b.locals[sym]
	if !ok {
		report.ICE("local `%s` used before it was declared", sym.Name)
	}

	return local
}

func (b *funcBuilder) temp(typ types.Type) *mir.Temp {
	return b.fn.NewTemp(typ)
}

func base(span *report.TextSpan) mir.InstrBase {
	return mir.NewInstrBase(span)
}
