package mir

import (
	"fmt"
	"strings"

	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/types"
)

// Instr is a straight-line instruction of a basic block.
type Instr interface {
	// Span returns the span of the source construct the instruction was
	// lowered from.
	Span() *report.TextSpan

	// Repr returns the textual representation of the instruction.
	Repr() string
}

// InstrBase is the base struct for all instructions.
type InstrBase struct {
	span *report.TextSpan
}

// NewInstrBase creates a new instruction base with the given span.
func NewInstrBase(span *report.TextSpan) InstrBase {
	return InstrBase{span: span}
}

func (ib *InstrBase) Span() *report.TextSpan {
	return ib.span
}

// Op is an arithmetic, comparison or logical operation.
type Op int

// Enumeration of operations.
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpNot
	OpNeg
)

var opNames = [...]string{
	"add",
	"sub",
	"mul",
	"div",
	"mod",
	"eq",
	"ne",
	"lt",
	"gt",
	"le",
	"ge",
	"not",
	"neg",
}

func (op Op) String() string {
	return opNames[op]
}

// IsComparison returns whether the operation compares its operands.
func (op Op) IsComparison() bool {
	return OpEq <= op && op <= OpGe
}

// -----------------------------------------------------------------------------

// Load reads the value stored at a place.
type Load struct {
	InstrBase

	Dest *Temp
	Src  *Place
}

func (l *Load) Repr() string {
	return fmt.Sprintf("%s = load %s", l.Dest.Repr(), l.Src.Repr())
}

// Store writes a value to a place.
type Store struct {
	InstrBase

	Dst   *Place
	Value Value
}

func (s *Store) Repr() string {
	return fmt.Sprintf("store %s, %s", s.Dst.Repr(), s.Value.Repr())
}

// BinOp applies a binary operation to two operands of the same type.
type BinOp struct {
	InstrBase

	Dest     *Temp
	Op       Op
	Lhs, Rhs Value
}

func (b *BinOp) Repr() string {
	return fmt.Sprintf("%s = %s %s, %s", b.Dest.Repr(), b.Op, b.Lhs.Repr(), b.Rhs.Repr())
}

// UnOp applies a unary operation.
type UnOp struct {
	InstrBase

	Dest    *Temp
	Op      Op
	Operand Value
}

func (u *UnOp) Repr() string {
	return fmt.Sprintf("%s = %s %s", u.Dest.Repr(), u.Op, u.Operand.Repr())
}

// Call calls a function.  Dest is nil if the function returns `void`.
type Call struct {
	InstrBase

	Dest *Temp
	Func Value
	Args []Value
}

func (c *Call) Repr() string {
	sb := strings.Builder{}
	if c.Dest != nil {
		sb.WriteString(c.Dest.Repr())
		sb.WriteString(" = ")
	}

	sb.WriteString("call ")
	sb.WriteString(c.Func.Repr())
	sb.WriteRune('(')
	writeValues(&sb, c.Args)
	sb.WriteRune(')')

	return sb.String()
}

// Extract reads a field of a struct value.
type Extract struct {
	InstrBase

	Dest  *Temp
	Agg   Value
	Index int
}

func (e *Extract) Repr() string {
	st := e.Agg.Type().(*types.StructType)
	return fmt.Sprintf("%s = extract %s, %s", e.Dest.Repr(), e.Agg.Repr(), st.Fields[e.Index].Name)
}

// MakeStruct builds a struct value.  Fields are in the field order of the
// struct type.
type MakeStruct struct {
	InstrBase

	Dest   *Temp
	Fields []Value
}

func (m *MakeStruct) Repr() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%s = struct %s (", m.Dest.Repr(), m.Dest.Type().Repr())
	writeValues(&sb, m.Fields)
	sb.WriteRune(')')

	return sb.String()
}

// Cast converts a primitive value to the type of Dest.
type Cast struct {
	InstrBase

	Dest  *Temp
	Value Value
}

func (c *Cast) Repr() string {
	return fmt.Sprintf("%s = cast %s to %s", c.Dest.Repr(), c.Value.Repr(), c.Dest.Type().Repr())
}

// Box packs a value into a `dyn` value tagged with its descriptor.
type Box struct {
	InstrBase

	Dest  *Temp
	Value Value
}

func (b *Box) Repr() string {
	return fmt.Sprintf("%s = box %s", b.Dest.Repr(), b.Value.Repr())
}

// Unbox unpacks a `dyn` value whose tag is known to be the type of Dest.
type Unbox struct {
	InstrBase

	Dest  *Temp
	Value Value
}

func (u *Unbox) Repr() string {
	return fmt.Sprintf("%s = unbox %s to %s", u.Dest.Repr(), u.Value.Repr(), u.Dest.Type().Repr())
}

// TypeTest tests whether a `dyn` value holds a value of type Tested.
type TypeTest struct {
	InstrBase

	Dest   *Temp
	Value  Value
	Tested types.Type
}

func (t *TypeTest) Repr() string {
	return fmt.Sprintf("%s = typetest %s, %s", t.Dest.Repr(), t.Value.Repr(), t.Tested.Repr())
}

func writeValues(sb *strings.Builder, values []Value) {
	for i, value := range values {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(value.Repr())
	}
}
