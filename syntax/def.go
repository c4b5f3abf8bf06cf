package syntax

// Def is a top-level definition.
type Def interface {
	Node

	// DefName returns the name defined.  Coercion declarations have no name
	// and return "".
	DefName() string

	// IsPublic returns whether the definition is visible to importers.
	IsPublic() bool
}

// DefBase is the base struct for all definitions.
type DefBase struct {
	NodeBase

	Name   *Identifier
	Public bool
}

func (db *DefBase) DefName() string {
	if db.Name == nil {
		return ""
	}

	return db.Name.Name
}

func (db *DefBase) IsPublic() bool {
	return db.Public
}

// Param is a function parameter.  A nil type means the parameter has no
// declared shape and is dynamic.
type Param struct {
	NodeBase

	Name *Identifier
	Type TypeExpr
}

// FuncDef is a function definition.
type FuncDef struct {
	DefBase

	Params []*Param

	// ReturnType is nil if the function returns nothing.
	ReturnType TypeExpr

	// Body is nil for extern functions.
	Body *Block

	// Extern indicates that the function is declared but defined outside the
	// program: eg. in a C library.
	Extern bool
}

// TypeDef defines a name for a structural type.
type TypeDef struct {
	DefBase

	Type TypeExpr
}

// StaticDef is a module-level variable.  Either Type or Init may be nil but
// not both.
type StaticDef struct {
	DefBase

	Type TypeExpr
	Init Expr
}

// CoerceDef declares a one-hop implicit conversion from one shape to another
// performed by calling a conversion function.
type CoerceDef struct {
	DefBase

	From, To TypeExpr
	Via      *Identifier
}

// Property is a property of a construct.
type Property struct {
	NodeBase

	Name    *Identifier
	Type    TypeExpr
	Default Expr
}

// ConstructDef is a construct declaration: a type with its own construction
// behavior.  Kind is the keyword the construct was declared with: eg.
// `class`.
type ConstructDef struct {
	DefBase

	Kind  string
	Props []*Property

	// Init is the initializer.  Its name and return type are ignored.  It may
	// be nil in which case the construct has an empty initializer.
	Init *FuncDef

	Methods []*FuncDef
}
