package syntax

// TypeExpr is a type annotation.
type TypeExpr interface {
	Node
	typeNode()
}

// TypeExprBase is the base struct for all type annotations.
type TypeExprBase struct {
	NodeBase
}

func (*TypeExprBase) typeNode() {}

// TypeName names a primitive or a defined type.  Module is set for qualified
// names: eg. `geo.Point`.
type TypeName struct {
	TypeExprBase

	Module string
	Name   string
}

// FieldType is a single field of a struct type annotation.
type FieldType struct {
	NodeBase

	Name *Identifier
	Type TypeExpr
}

// StructTypeExpr is a structural composite type: eg. `{value: uint64}`.
type StructTypeExpr struct {
	TypeExprBase

	Fields []*FieldType
}

// FuncTypeExpr is a function signature type.  ReturnType may be nil.
type FuncTypeExpr struct {
	TypeExprBase

	Params     []TypeExpr
	ReturnType TypeExpr
}

// DynTypeExpr is the explicit dynamic type `dyn`.
type DynTypeExpr struct {
	TypeExprBase
}
