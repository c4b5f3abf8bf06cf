// Package syntax defines the syntax tree handed to the middle end by the
// parser.  Trees are immutable once built: no pass writes to them.
package syntax

import "github.com/redgush/flycatcher/report"

// Node is the parent interface for all syntax tree nodes.
type Node interface {
	// Span returns the span over which the node occurs in source text.
	Span() *report.TextSpan
}

// NodeBase is the base struct for all syntax tree nodes.
type NodeBase struct {
	span *report.TextSpan
}

// NewNodeBase creates a new node base with the given span.
func NewNodeBase(span *report.TextSpan) NodeBase {
	return NodeBase{span: span}
}

func (nb *NodeBase) Span() *report.TextSpan {
	return nb.span
}

// File is the syntax tree of a single source unit.  Each file is one module.
type File struct {
	NodeBase

	// Name is the module name declared by the file.
	Name string

	// AbsPath is the absolute path to the file the tree was read from.
	AbsPath string

	// ReprPath is the path used to refer to the file in diagnostics.
	ReprPath string

	Imports []*Import
	Defs    []Def
}

// Import is an import of another module.
type Import struct {
	NodeBase

	// Path is the import path: eg. `std/io` or `geometry`.
	Path string

	// Alias is the name the module is bound to.  If it is empty, the last
	// segment of the path is used.  It is unused for selective imports.
	Alias string

	// Names is the list of names imported directly from the module.  If it is
	// empty, the module itself is imported.
	Names []*Identifier
}

// BoundName returns the name a whole-module import binds.
func (imp *Import) BoundName() string {
	if imp.Alias != "" {
		return imp.Alias
	}

	for i := len(imp.Path) - 1; i >= 0; i-- {
		if imp.Path[i] == '/' {
			return imp.Path[i+1:]
		}
	}

	return imp.Path
}
