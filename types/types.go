// Package types defines structural type descriptors.  Descriptors are only
// created through a Table which interns them so that structurally equal
// descriptors are the same pointer.
package types

import (
	"strings"
)

// Type is the parent interface for all type descriptors.
type Type interface {
	// Repr returns the canonical representation of the type.  Two descriptors
	// are structurally equal if and only if their representations are equal.
	Repr() string

	// ID returns a hash of the descriptor's structure.  It is stable across
	// runs and used as the runtime tag of the shape.
	ID() uint64
}

// typeBase is the base struct for all interned descriptors.
type typeBase struct {
	repr string
	id   uint64
}

func (tb *typeBase) Repr() string {
	return tb.repr
}

func (tb *typeBase) ID() uint64 {
	return tb.id
}

// -----------------------------------------------------------------------------

// PrimitiveType represents a primitive type.
type PrimitiveType struct {
	typeBase

	Kind PrimKind
}

// PrimKind is the kind of a primitive type.
type PrimKind int

// Enumeration of primitive kinds.
const (
	PrimVoid PrimKind = iota
	PrimBool
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimUsize
	PrimI8
	PrimI16
	PrimI32
	PrimI64
	PrimSize
	PrimF32
	PrimF64
	PrimString
)

// primNames is the table of primitive names indexed by kind.
var primNames = [...]string{
	"void",
	"bool",
	"uint8",
	"uint16",
	"uint32",
	"uint64",
	"usize",
	"int8",
	"int16",
	"int32",
	"int64",
	"size",
	"float32",
	"float64",
	"string",
}

// PrimitiveByName looks up a primitive kind by its source name.
func PrimitiveByName(name string) (PrimKind, bool) {
	for i, pname := range primNames {
		if pname == name {
			return PrimKind(i), true
		}
	}

	return 0, false
}

// IsIntegral returns whether the primitive is an integer type.
func (pt *PrimitiveType) IsIntegral() bool {
	return PrimU8 <= pt.Kind && pt.Kind <= PrimSize
}

// IsSigned returns whether the primitive is a signed integer type.
func (pt *PrimitiveType) IsSigned() bool {
	return PrimI8 <= pt.Kind && pt.Kind <= PrimSize
}

// IsFloating returns whether the primitive is a floating point type.
func (pt *PrimitiveType) IsFloating() bool {
	return pt.Kind == PrimF32 || pt.Kind == PrimF64
}

// IsNumeric returns whether the primitive is an integer or floating type.
func (pt *PrimitiveType) IsNumeric() bool {
	return pt.IsIntegral() || pt.IsFloating()
}

// BitWidth returns the bit width of a numeric primitive.  Word-sized kinds
// take their width from wordSize (in bytes).
func (pt *PrimitiveType) BitWidth(wordSize int) int {
	switch pt.Kind {
	case PrimBool:
		return 1
	case PrimU8, PrimI8:
		return 8
	case PrimU16, PrimI16:
		return 16
	case PrimU32, PrimI32, PrimF32:
		return 32
	case PrimU64, PrimI64, PrimF64:
		return 64
	case PrimUsize, PrimSize:
		return wordSize * 8
	}

	return 0
}

// -----------------------------------------------------------------------------

// StructField is a field of a struct descriptor.
type StructField struct {
	Name string
	Type Type
}

// StructType is a composite of named fields.  Fields are stored in canonical
// order (sorted by name) so that declaration order never affects identity.
type StructType struct {
	typeBase

	Fields []StructField

	// Indices maps field names to their positions in Fields.
	Indices map[string]int
}

// GetFieldByName returns the field with the given name if it exists.
func (st *StructType) GetFieldByName(name string) (StructField, int, bool) {
	if ndx, ok := st.Indices[name]; ok {
		return st.Fields[ndx], ndx, true
	}

	return StructField{}, -1, false
}

func structRepr(fields []StructField) string {
	sb := strings.Builder{}
	sb.WriteRune('{')

	for i, field := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(field.Name)
		sb.WriteString(": ")
		sb.WriteString(field.Type.Repr())
	}

	sb.WriteRune('}')
	return sb.String()
}

// -----------------------------------------------------------------------------

// FuncType is a function signature.
type FuncType struct {
	typeBase

	ParamTypes []Type
	ReturnType Type
}

func funcRepr(params []Type, ret Type) string {
	sb := strings.Builder{}
	sb.WriteString("fn(")

	for i, param := range params {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(param.Repr())
	}

	sb.WriteRune(')')

	if !IsVoid(ret) {
		sb.WriteString(" -> ")
		sb.WriteString(ret.Repr())
	}

	return sb.String()
}

// -----------------------------------------------------------------------------

// DynType is the dynamic top type: a value of any shape whose shape is only
// known at runtime.
type DynType struct {
	typeBase
}

// -----------------------------------------------------------------------------

// IsVoid returns whether typ is the void type.
func IsVoid(typ Type) bool {
	if pt, ok := typ.(*PrimitiveType); ok {
		return pt.Kind == PrimVoid
	}

	return false
}

// IsBool returns whether typ is the bool type.
func IsBool(typ Type) bool {
	if pt, ok := typ.(*PrimitiveType); ok {
		return pt.Kind == PrimBool
	}

	return false
}

// IsDyn returns whether typ is the dynamic type.
func IsDyn(typ Type) bool {
	_, ok := typ.(*DynType)
	return ok
}

// IsNumeric returns whether typ is a numeric primitive.
func IsNumeric(typ Type) bool {
	if pt, ok := typ.(*PrimitiveType); ok {
		return pt.IsNumeric()
	}

	return false
}
