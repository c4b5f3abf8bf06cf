// Package sem defines the resolved tree: the syntax tree with every name bound
// to a symbol and every type annotation replaced by a descriptor.  The typed
// tree produced by the checker uses the same nodes with descriptors attached to
// every expression.
package sem

import (
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/types"
)

// Symbol is the unique identity of a declared name.
type Symbol struct {
	// Name is the name the symbol is declared with.
	Name string

	// ModName is the name of the module that declares the symbol.
	ModName string

	// ModID is the ID of the module that declares the symbol.
	ModID uint64

	Kind SymbolKind

	// Public indicates that the symbol is visible to importing modules.
	Public bool

	// DefSpan is the span of the symbol's declaration.
	DefSpan *report.TextSpan

	// Type is the descriptor of the symbol: the value type for variables and
	// functions, the declared type for type symbols.  It may be nil for local
	// variables whose type is inferred by the checker.
	Type types.Type

	// LinkName is the program-wide unique name of a global function or static.
	LinkName string

	// Extern indicates a function defined outside the program.
	Extern bool

	// Construct is the expansion information of a construct type.
	Construct *Construct

	// Imported is the module referenced by a module symbol.
	Imported *Module
}

// SymbolKind is the kind of a symbol.
type SymbolKind int

// Enumeration of symbol kinds.
const (
	SymLocal SymbolKind = iota
	SymStatic
	SymFunc
	SymType
	SymModule
)

var symbolKindNames = [...]string{
	"local variable",
	"static variable",
	"function",
	"type",
	"module",
}

func (k SymbolKind) String() string {
	return symbolKindNames[k]
}

// IsValue returns whether the symbol can be used as a value.
func (s *Symbol) IsValue() bool {
	return s.Kind == SymLocal || s.Kind == SymStatic || s.Kind == SymFunc
}

// IsMutable returns whether the symbol can be assigned to.
func (s *Symbol) IsMutable() bool {
	return s.Kind == SymLocal || s.Kind == SymStatic
}

// Construct is the expansion of a construct declaration.
type Construct struct {
	// Kind is the keyword the construct was declared with.
	Kind string

	// Type is the composite type of the construct's properties.
	Type *types.StructType

	// Init is the symbol of the expanded initializer.
	Init *Symbol

	// Defaults is the struct literal of property defaults passed as `self` to
	// the initializer.  It is resolved in the declaring module.
	Defaults *StructLit

	// Methods maps method names to their expanded functions.
	Methods map[string]*Symbol
}

// LinkName returns the linkage name of a global in a module.
func LinkName(modName, name string) string {
	return modName + "." + name
}
