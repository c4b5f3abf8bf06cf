package mir

import "github.com/redgush/flycatcher/report"

// Validate checks the structural invariants of a lowered function and marks
// every block that is unreachable from the entry block as dead.  A block
// without a terminator or a branch to a block that does not exist is an
// internal compiler error.  It returns the dead blocks that begin a region of
// dead code: dead blocks with no predecessors at all.
func Validate(fn *Function) []*Block {
	if fn.Extern {
		return nil
	}

	if len(fn.Blocks) == 0 {
		report.ICE("function `%s` has no entry block", fn.Name)
	}

	for _, block := range fn.Blocks {
		if block.Term == nil {
			report.ICE("block b%d (%s) of `%s` has no terminator", block.Index, block.Label, fn.Name)
		}

		for _, target := range block.Term.Targets() {
			if target < 0 || target >= len(fn.Blocks) {
				report.ICE("block b%d of `%s` branches to nonexistent block b%d", block.Index, fn.Name, target)
			}
		}
	}

	reachable := make([]bool, len(fn.Blocks))
	stack := []int{0}
	reachable[0] = true
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, target := range fn.Blocks[index].Term.Targets() {
			if !reachable[target] {
				reachable[target] = true
				stack = append(stack, target)
			}
		}
	}

	preds := fn.Predecessors()

	var heads []*Block
	for _, block := range fn.Blocks {
		block.Dead = !reachable[block.Index]
		if block.Dead && len(preds[block.Index]) == 0 {
			heads = append(heads, block)
		}
	}

	return heads
}
