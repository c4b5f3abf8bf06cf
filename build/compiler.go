// Package build drives compilation of a whole project: it builds the import
// graph, schedules each module through resolution, checking and lowering and
// finally emits the output of every module.
package build

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/redgush/flycatcher/depm"
	"github.com/redgush/flycatcher/generate"
	"github.com/redgush/flycatcher/lower"
	"github.com/redgush/flycatcher/mir"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/resolve"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/types"
	"github.com/redgush/flycatcher/walk"
)

// Enumeration of output formats.
const (
	EmitMIR  = "mir"
	EmitLLVM = "llvm"
)

// ErrWithheld is returned by Emit when the project has errors.
var ErrWithheld = errors.New("output withheld: compilation produced errors")

// Options configures a compilation.
type Options struct {
	// Roots are the directories searched for modules in order of priority.
	Roots []depm.Root

	// Entry is the import path of the entry module.
	Entry string

	// Loader provides the tree files.  It defaults to the file system.
	Loader depm.SourceLoader

	// WordSize is the size of a machine word in bytes: 4 or 8.
	WordSize int

	// Workers bounds the number of modules processed at once.  Zero selects
	// GOMAXPROCS.
	Workers int

	// Emit is the output format: EmitMIR or EmitLLVM.
	Emit string

	// OutputDir is the directory output files are written to.
	OutputDir string
}

// Compiler is the data structure responsible for maintaining all high-level
// state of a compilation.
type Compiler struct {
	opts     Options
	reporter *report.Reporter

	// table is the shared descriptor table.
	table *types.Table

	graph *depm.Graph

	// m guards the per-module results below which are written concurrently
	// by the scheduler's workers.
	m        *sync.Mutex
	resolved map[uint64]*sem.Module
	bundles  map[uint64]*mir.Bundle
}

// NewCompiler creates a new compiler reporting to the given reporter.
func NewCompiler(opts Options, reporter *report.Reporter) *Compiler {
	if opts.Loader == nil {
		opts.Loader = depm.FileLoader{}
	}

	if opts.WordSize == 0 {
		opts.WordSize = 8
	}

	if opts.Emit == "" {
		opts.Emit = EmitLLVM
	}

	return &Compiler{
		opts:     opts,
		reporter: reporter,
		table:    types.NewTable(),
		m:        &sync.Mutex{},
		resolved: make(map[uint64]*sem.Module),
		bundles:  make(map[uint64]*mir.Bundle),
	}
}

// Compile runs analysis followed by emission.
func (c *Compiler) Compile() error {
	if err := c.Analyze(); err != nil {
		return err
	}

	return c.Emit()
}

// Analyze builds the import graph and runs every compilable module through
// resolution, checking and lowering.  User errors are reported to the
// reporter; the returned error is either a failure to load the project or an
// internal compiler error.
func (c *Compiler) Analyze() error {
	g, err := depm.BuildGraph(c.opts.Loader, c.opts.Roots, c.opts.Entry, c.reporter)
	if err != nil {
		return err
	}

	c.graph = g

	return NewScheduler(c.opts.Workers).Run(g.Compilable(), c.compileModule)
}

// compileModule runs the pipeline of a single module.  The module's
// dependents are released as soon as it is resolved.
func (c *Compiler) compileModule(mod *depm.Module, resolved func(bool)) {
	deps := make(map[uint64]*sem.Module, len(mod.Deps))

	c.m.Lock()
	for _, dep := range mod.Deps {
		if smod, ok := c.resolved[dep.ID]; ok {
			deps[dep.ID] = smod
		}
	}
	c.m.Unlock()

	smod, ok := resolve.ResolveModule(mod, deps, c.table, c.reporter)
	if ok {
		c.m.Lock()
		c.resolved[mod.ID] = smod
		c.m.Unlock()
	}

	resolved(ok)
	if !ok {
		return
	}

	tmod, ok := walk.CheckModule(smod, c.table, c.reporter)
	if !ok {
		return
	}

	bundle := lower.LowerModule(tmod, c.table, c.reporter)

	c.m.Lock()
	c.bundles[mod.ID] = bundle
	c.m.Unlock()
}

// Emit writes the output of every module to the output directory.  Nothing
// is written if any errors were reported.
func (c *Compiler) Emit() error {
	if c.graph == nil {
		return errors.New("emit called before analysis")
	}

	if c.reporter.AnyErrors() {
		return ErrWithheld
	}

	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	for _, mod := range c.graph.Compilable() {
		bundle, ok := c.Bundle(mod.Name)
		if !ok {
			continue
		}

		text, ext, err := c.render(bundle, mod == c.graph.Entry)
		if err != nil {
			return err
		}

		outPath := filepath.Join(c.opts.OutputDir, mod.Name+ext)
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write output for module `%s`", mod.Name)
		}
	}

	return nil
}

// render converts a bundle to text in the configured output format.
func (c *Compiler) render(bundle *mir.Bundle, entry bool) (text, ext string, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = report.AsICE(x)
		}
	}()

	switch c.opts.Emit {
	case EmitMIR:
		return bundle.Repr(), ".mir", nil
	case EmitLLVM:
		llMod := generate.Generate(bundle, generate.Options{WordSize: c.opts.WordSize, Entry: entry})
		return llMod.String(), ".ll", nil
	}

	return "", "", errors.Errorf("unknown output format `%s`", c.opts.Emit)
}

// -----------------------------------------------------------------------------

// Resolved returns the resolved module with the given name.
func (c *Compiler) Resolved(name string) (*sem.Module, bool) {
	c.m.Lock()
	defer c.m.Unlock()

	for _, smod := range c.resolved {
		if smod.Name == name {
			return smod, true
		}
	}

	return nil, false
}

// Bundle returns the lowered bundle of the module with the given name.
func (c *Compiler) Bundle(name string) (*mir.Bundle, bool) {
	c.m.Lock()
	defer c.m.Unlock()

	for _, bundle := range c.bundles {
		if bundle.Name == name {
			return bundle, true
		}
	}

	return nil, false
}

// Graph returns the import graph built by Analyze.
func (c *Compiler) Graph() *depm.Graph {
	return c.graph
}
