package mir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/types"
)

// Value is an operand of an instruction or terminator.
type Value interface {
	// Type returns the descriptor of the value.
	Type() types.Type

	// Repr returns the textual representation of the value.
	Repr() string
}

// Temp is an immutable temporary produced by an instruction.  Temporaries are
// assigned exactly once.
type Temp struct {
	ID  int
	typ types.Type
}

func (t *Temp) Type() types.Type { return t.typ }
func (t *Temp) Repr() string     { return "%" + strconv.Itoa(t.ID) }

// Local is a mutable stack variable of a function.  Locals are only accessed
// through loads and stores.
type Local struct {
	ID int

	// Name is unique within the function.
	Name string

	typ types.Type
}

func (l *Local) Type() types.Type { return l.typ }
func (l *Local) Repr() string     { return "$" + l.Name }

// Global is a reference to a function or static variable by link name.  A
// global function used as a value is a function pointer.  Static variables
// are only accessed through loads and stores.
type Global struct {
	Name string
	Func bool

	typ types.Type
}

// NewGlobal creates a new global reference.
func NewGlobal(name string, typ types.Type, isFunc bool) *Global {
	return &Global{Name: name, Func: isFunc, typ: typ}
}

func (g *Global) Type() types.Type { return g.typ }
func (g *Global) Repr() string     { return "@" + g.Name }

// -----------------------------------------------------------------------------

// ConstInt is an integer constant.  Value holds the two's complement bit
// pattern of the constant so negative constants of signed types wrap.
type ConstInt struct {
	Value uint64
	typ   *types.PrimitiveType
}

// NewConstInt creates a new integer constant.
func NewConstInt(value uint64, typ *types.PrimitiveType) *ConstInt {
	return &ConstInt{Value: value, typ: typ}
}

func (c *ConstInt) Type() types.Type { return c.typ }

func (c *ConstInt) Repr() string {
	if c.typ.IsSigned() {
		return strconv.FormatInt(int64(c.Value), 10)
	}

	return strconv.FormatUint(c.Value, 10)
}

// ConstFloat is a floating point constant.
type ConstFloat struct {
	Value float64
	typ   *types.PrimitiveType
}

// NewConstFloat creates a new floating point constant.
func NewConstFloat(value float64, typ *types.PrimitiveType) *ConstFloat {
	return &ConstFloat{Value: value, typ: typ}
}

func (c *ConstFloat) Type() types.Type { return c.typ }
func (c *ConstFloat) Repr() string     { return strconv.FormatFloat(c.Value, 'g', -1, 64) }

// ConstBool is a boolean constant.
type ConstBool struct {
	Value bool
	typ   types.Type
}

// NewConstBool creates a new boolean constant.
func NewConstBool(value bool, typ types.Type) *ConstBool {
	return &ConstBool{Value: value, typ: typ}
}

func (c *ConstBool) Type() types.Type { return c.typ }
func (c *ConstBool) Repr() string     { return strconv.FormatBool(c.Value) }

// ConstString is a string constant.
type ConstString struct {
	Value string
	typ   types.Type
}

// NewConstString creates a new string constant.
func NewConstString(value string, typ types.Type) *ConstString {
	return &ConstString{Value: value, typ: typ}
}

func (c *ConstString) Type() types.Type { return c.typ }
func (c *ConstString) Repr() string     { return strconv.Quote(c.Value) }

// ConstStruct is a struct constant.  Fields are in the field order of the
// struct type.
type ConstStruct struct {
	Fields []Value
	typ    *types.StructType
}

// NewConstStruct creates a new struct constant.
func NewConstStruct(fields []Value, typ *types.StructType) *ConstStruct {
	return &ConstStruct{Fields: fields, typ: typ}
}

func (c *ConstStruct) Type() types.Type { return c.typ }

func (c *ConstStruct) Repr() string {
	sb := strings.Builder{}
	sb.WriteRune('{')

	for i, field := range c.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(c.typ.Fields[i].Name)
		sb.WriteString(": ")
		sb.WriteString(field.Repr())
	}

	sb.WriteRune('}')
	return sb.String()
}

// Zero is the zero value of a type.
type Zero struct {
	typ types.Type
}

// NewZero creates the zero value of typ.
func NewZero(typ types.Type) *Zero {
	return &Zero{typ: typ}
}

func (z *Zero) Type() types.Type { return z.typ }
func (z *Zero) Repr() string     { return "zero " + z.typ.Repr() }

// IsConst returns whether a value is a constant.
func IsConst(v Value) bool {
	switch v.(type) {
	case *ConstInt, *ConstFloat, *ConstBool, *ConstString, *ConstStruct, *Zero:
		return true
	}

	return false
}

// -----------------------------------------------------------------------------

// Place is a storage location: a local or static variable and a path of field
// indices into it.
type Place struct {
	// Var is a *Local or a non-function *Global.
	Var Value

	Fields []int
}

// Type returns the descriptor of the value stored at the place.
func (p *Place) Type() types.Type {
	typ := p.Var.Type()
	for _, index := range p.Fields {
		st, ok := typ.(*types.StructType)
		if !ok || index >= len(st.Fields) {
			report.ICE("invalid field path into `%s`", p.Var.Type().Repr())
		}

		typ = st.Fields[index].Type
	}

	return typ
}

func (p *Place) Repr() string {
	sb := strings.Builder{}
	sb.WriteString(p.Var.Repr())

	typ := p.Var.Type()
	for _, index := range p.Fields {
		st := typ.(*types.StructType)
		fmt.Fprintf(&sb, ".%s", st.Fields[index].Name)
		typ = st.Fields[index].Type
	}

	return sb.String()
}
