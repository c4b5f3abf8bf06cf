package mir

import (
	"fmt"
	"strconv"
)

// Terminator ends a basic block.
type Terminator interface {
	// Targets returns the indices of the blocks control may pass to.
	Targets() []int

	// Repr returns the textual representation of the terminator.
	Repr() string
}

// Br jumps unconditionally to another block.
type Br struct {
	Target int
}

func (b *Br) Targets() []int { return []int{b.Target} }
func (b *Br) Repr() string   { return "br " + blockName(b.Target) }

// CondBr branches on a boolean value.
type CondBr struct {
	Cond       Value
	Then, Else int
}

func (c *CondBr) Targets() []int { return []int{c.Then, c.Else} }

func (c *CondBr) Repr() string {
	return fmt.Sprintf("condbr %s, %s, %s", c.Cond.Repr(), blockName(c.Then), blockName(c.Else))
}

// Return exits the function.  Value is nil for `void` functions.
type Return struct {
	Value Value
}

func (r *Return) Targets() []int { return nil }

func (r *Return) Repr() string {
	if r.Value == nil {
		return "ret"
	}

	return "ret " + r.Value.Repr()
}

// Unreachable marks the end of a block control never reaches.
type Unreachable struct{}

func (*Unreachable) Targets() []int { return nil }
func (*Unreachable) Repr() string   { return "unreachable" }

func blockName(index int) string {
	return "b" + strconv.Itoa(index)
}
