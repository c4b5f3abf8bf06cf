package depm

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/syntax"
)

// Graph is the import graph of a project.
type Graph struct {
	// Entry is the module compilation starts from.
	Entry *Module

	// Modules maps module IDs to modules.
	Modules map[uint64]*Module

	// byName maps declared module names to modules.  Link and output names
	// are derived from module names so they must be unique.
	byName map[string]*Module

	loader   SourceLoader
	roots    []Root
	reporter *report.Reporter
}

// BuildGraph loads the entry module and every module it transitively imports.
// Unlocatable imports and malformed trees are reported as diagnostics.  An
// error is returned only if the entry module cannot be loaded at all or if
// reading a located tree fails.
func BuildGraph(loader SourceLoader, roots []Root, entryPath string, reporter *report.Reporter) (*Graph, error) {
	g := &Graph{
		Modules:  make(map[uint64]*Module),
		byName:   make(map[string]*Module),
		loader:   loader,
		roots:    roots,
		reporter: reporter,
	}

	absPath, reprPath, ok := locate(loader, roots, entryPath)
	if !ok {
		return nil, errors.Errorf("unable to locate entry module `%s`", entryPath)
	}

	entry, err := g.load(entryPath, absPath, reprPath, nil)
	if err != nil {
		return nil, err
	} else if entry == nil {
		return nil, errors.Errorf("entry module `%s` is malformed", entryPath)
	}

	g.Entry = entry
	g.byName[entry.Name] = entry

	// breadth-first walk of the imports
	queue := []*Module{entry}
	for len(queue) > 0 {
		mod := queue[0]
		queue = queue[1:]

		for _, imp := range mod.Tree.Imports {
			dep, isNew, err := g.importModule(mod, imp)
			if err != nil {
				return nil, err
			}

			if dep == nil {
				continue
			}

			mod.Targets[imp] = dep
			mod.addDep(dep)

			if isNew {
				queue = append(queue, dep)
			}
		}
	}

	g.detectCycles()
	return g, nil
}

// importModule locates and loads the module imported by imp.  It returns nil
// if the module could not be located or loaded.
func (g *Graph) importModule(parent *Module, imp *syntax.Import) (*Module, bool, error) {
	absPath, reprPath, ok := locate(g.loader, g.roots, imp.Path)
	if !ok {
		g.reporter.ReportCompileError(
			parent.Context(report.StageResolve),
			imp.Span(),
			report.CodeModuleNotFound,
			"unable to locate module `%s`",
			imp.Path,
		)

		return nil, false, nil
	}

	if mod, ok := g.Modules[GenerateIDFromPath(absPath)]; ok {
		return mod, false, nil
	}

	mod, err := g.load(imp.Path, absPath, reprPath, parent)
	if mod == nil || err != nil {
		return nil, false, err
	}

	if other, ok := g.byName[mod.Name]; ok && other != mod {
		g.reporter.ReportCompileError(
			parent.Context(report.StageResolve),
			imp.Span(),
			report.CodeDuplicateModule,
			"module `%s` declares the name `%s` which is already used by `%s`",
			imp.Path,
			mod.Name,
			other.ReprPath,
		)

		delete(g.Modules, mod.ID)
		return nil, false, nil
	}

	g.byName[mod.Name] = mod
	return mod, true, nil
}

// load reads a tree file and adds its module to the graph.  Malformed trees
// are reported against the tree itself and nil is returned.
func (g *Graph) load(importPath, absPath, reprPath string, parent *Module) (*Module, error) {
	tree, err := g.loader.Load(absPath, reprPath)
	if err != nil {
		if cerr, ok := err.(*report.LocalCompileError); ok {
			g.reporter.ReportCompileError(
				&report.CompilationContext{
					ModName:  importPath,
					AbsPath:  absPath,
					ReprPath: reprPath,
					Stage:    report.StageLoad,
				},
				cerr.Span,
				cerr.Code,
				"%s",
				cerr.Message,
			)

			return nil, nil
		}

		return nil, errors.Wrapf(err, "failed to load module `%s`", importPath)
	}

	mod := &Module{
		ID:         GenerateIDFromPath(absPath),
		Name:       tree.Name,
		ImportPath: importPath,
		AbsPath:    absPath,
		ReprPath:   reprPath,
		Tree:       tree,
		Targets:    make(map[*syntax.Import]*Module),
	}

	g.Modules[mod.ID] = mod
	return mod, nil
}

// -----------------------------------------------------------------------------

// Enumeration of search colors.  See detectCycles.
const (
	colorWhite = iota
	colorGrey
	colorBlack
)

/*
Import cycles are found with a three-colour depth first search.  Every module
starts white.  A module is coloured grey when it is entered and black once all
of its imports have been searched.  Meeting a grey module means the current
search path, from that module to the current module, is a cycle.  Each cycle is
reported once on the import that closes it.

Once all cycles are known, every module on a cycle and every module that
(transitively) depends on one is poisoned so that none of them is resolved.
*/

// detectCycles finds and reports all import cycles in the graph.
func (g *Graph) detectCycles() {
	colors := make(map[*Module]int)
	var path []*Module

	var search func(mod *Module)
	search = func(mod *Module) {
		colors[mod] = colorGrey
		path = append(path, mod)

		for _, imp := range mod.Tree.Imports {
			dep, ok := mod.Targets[imp]
			if !ok {
				continue
			}

			switch colors[dep] {
			case colorWhite:
				search(dep)
			case colorGrey:
				g.reportCycle(mod, imp, path, dep)
			}
		}

		path = path[:len(path)-1]
		colors[mod] = colorBlack
	}

	search(g.Entry)
	for _, mod := range g.Order() {
		if colors[mod] == colorWhite {
			search(mod)
		}
	}

	for _, mod := range g.Modules {
		if mod.InCycle {
			g.poison(mod)
		}
	}
}

// reportCycle reports the cycle that ends with closer importing start.
func (g *Graph) reportCycle(closer *Module, imp *syntax.Import, path []*Module, start *Module) {
	var names []string
	inCycle := false

	for _, mod := range path {
		if mod == start {
			inCycle = true
		}

		if inCycle {
			names = append(names, mod.Name)
			mod.InCycle = true
		}
	}

	names = append(names, start.Name)

	g.reporter.ReportCompileError(
		closer.Context(report.StageResolve),
		imp.Span(),
		report.CodeImportCycle,
		"import cycle detected: %s",
		strings.Join(names, " -> "),
	)
}

// poison marks a module and all of its dependents as uncompilable.
func (g *Graph) poison(mod *Module) {
	if mod.Poisoned {
		return
	}

	mod.Poisoned = true
	for _, dependent := range mod.Dependents {
		g.poison(dependent)
	}
}

// -----------------------------------------------------------------------------

// Order returns the modules of the graph in reverse topological order:
// every module appears after all of the modules it imports.  The order is
// deterministic for a given set of trees.  Modules on cycles are still
// included; their relative order is arbitrary but stable.
func (g *Graph) Order() []*Module {
	if g.Entry == nil {
		return nil
	}

	visited := make(map[*Module]bool)
	var order []*Module

	var visit func(mod *Module)
	visit = func(mod *Module) {
		visited[mod] = true

		for _, dep := range mod.Deps {
			if !visited[dep] {
				visit(dep)
			}
		}

		order = append(order, mod)
	}

	visit(g.Entry)
	return order
}

// Compilable returns the modules that are not poisoned in reverse topological
// order.
func (g *Graph) Compilable() []*Module {
	var mods []*Module
	for _, mod := range g.Order() {
		if !mod.Poisoned {
			mods = append(mods, mod)
		}
	}

	return mods
}
