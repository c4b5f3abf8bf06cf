// Package depm locates modules, builds the import graph and orders modules for
// compilation.
package depm

import (
	"github.com/cespare/xxhash/v2"

	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/syntax"
)

// Module is a single loaded source module: one syntax tree plus its position
// in the import graph.
type Module struct {
	// ID is the unique ID of the module.  It is generated from the absolute
	// path of its tree file.
	ID uint64

	// Name is the module name declared by its tree.
	Name string

	// ImportPath is the path the module was first located by: eg. `std/io`.
	ImportPath string

	// AbsPath is the absolute path to the tree file.
	AbsPath string

	// ReprPath is the path used to refer to the module in diagnostics.
	ReprPath string

	// Tree is the module's syntax tree.  It is never modified.
	Tree *syntax.File

	// Deps are the modules imported by this module in order of first import.
	Deps []*Module

	// Dependents are the modules that import this module.
	Dependents []*Module

	// Targets maps each import of the tree to the module it resolved to.
	// Imports that could not be located are absent.
	Targets map[*syntax.Import]*Module

	// InCycle indicates that the module lies on an import cycle.
	InCycle bool

	// Poisoned indicates that the module cannot be compiled: it is on an
	// import cycle or depends on a module that is.
	Poisoned bool
}

// GenerateIDFromPath generates a module ID from an absolute path.
func GenerateIDFromPath(absPath string) uint64 {
	return xxhash.Sum64String(absPath)
}

// Context returns the compilation context for the module at the given stage.
func (m *Module) Context(stage report.Stage) *report.CompilationContext {
	return &report.CompilationContext{
		ModName:  m.Name,
		AbsPath:  m.AbsPath,
		ReprPath: m.ReprPath,
		Stage:    stage,
	}
}

// addDep records an import edge from m to dep.
func (m *Module) addDep(dep *Module) {
	for _, existing := range m.Deps {
		if existing == dep {
			return
		}
	}

	m.Deps = append(m.Deps, dep)
	dep.Dependents = append(dep.Dependents, m)
}
