package lower

import (
	"sort"
	"testing"

	"github.com/nalgeon/be"

	"github.com/redgush/flycatcher/depm"
	"github.com/redgush/flycatcher/mir"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/resolve"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/types"
	"github.com/redgush/flycatcher/walk"
)

type lowered struct {
	bundles  map[string]*mir.Bundle
	resolved map[string]*sem.Module
	table    *types.Table
	reporter *report.Reporter
}

// lowerSources resolves, checks and lowers a project made of the given
// modules.  The entry module is `main`.  Every module must check.
func lowerSources(t *testing.T, files map[string]string) *lowered {
	t.Helper()

	loader := depm.MemLoader{}
	for path, src := range files {
		loader["/src/"+path+".fst"] = src
	}

	lw := &lowered{
		bundles:  make(map[string]*mir.Bundle),
		resolved: make(map[string]*sem.Module),
		table:    types.NewTable(),
		reporter: report.NewReporter(nil),
	}

	g, err := depm.BuildGraph(loader, []depm.Root{{Name: "src", AbsPath: "/src"}}, "main", lw.reporter)
	be.Err(t, err, nil)

	deps := make(map[uint64]*sem.Module)
	for _, mod := range g.Compilable() {
		smod, ok := resolve.ResolveModule(mod, deps, lw.table, lw.reporter)
		if !ok {
			t.Fatalf("module `%s` failed to resolve: %v", mod.Name, messages(lw.reporter))
		}

		deps[mod.ID] = smod
		lw.resolved[mod.Name] = smod

		tmod, ok := walk.CheckModule(smod, lw.table, lw.reporter)
		if !ok {
			t.Fatalf("module `%s` failed to check: %v", mod.Name, messages(lw.reporter))
		}

		lw.bundles[mod.Name] = LowerModule(tmod, lw.table, lw.reporter)
	}

	return lw
}

func messages(r *report.Reporter) []string {
	var msgs []string
	for _, d := range r.Diagnostics() {
		msgs = append(msgs, d.Message)
	}

	sort.Strings(msgs)
	return msgs
}

func funcNamed(bundle *mir.Bundle, name string) *mir.Function {
	for _, fn := range bundle.Funcs {
		if fn.Name == name {
			return fn
		}
	}

	return nil
}

func labels(fn *mir.Function) []string {
	var ls []string
	for _, block := range fn.Blocks {
		ls = append(ls, block.Label)
	}

	return ls
}

func TestIfElse(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `
(module main
  (func a () void (block))
  (func b () void (block))
  (func f ((c bool)) void
    (block (if c (block (a)) (else (block (b)))))))`,
	})
	be.Equal(t, messages(lw.reporter), []string(nil))

	fn := funcNamed(lw.bundles["main"], "main.f")
	be.Equal(t, labels(fn), []string{"entry", "if.then", "if.else", "if.after"})

	term, ok := fn.Blocks[0].Term.(*mir.CondBr)
	be.True(t, ok)
	be.Equal(t, term.Targets(), []int{1, 2})

	want := `func @main.f($c: bool) void {
b0 (entry):
  %0 = load $c
  condbr %0, b1, b2
b1 (if.then):
  call @main.a()
  br b3
b2 (if.else):
  call @main.b()
  br b3
b3 (if.after):
  ret
}
`
	be.Equal(t, fn.Repr(), want)
}

func TestElifChain(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `
(module main
  (func f ((n int64)) int64
    (block
      (if (< n 0) (block (return 0))
        (elif (== n 0) (block (return 1)))
        (else (block (return 2)))))))`,
	})
	be.Equal(t, messages(lw.reporter), []string(nil))

	fn := funcNamed(lw.bundles["main"], "main.f")
	be.Equal(t, labels(fn), []string{"entry", "if.then", "if.else", "if.after", "if.then", "if.else"})

	// the elif condition is evaluated in the else block of the first branch
	term := fn.Blocks[2].Term.(*mir.CondBr)
	be.Equal(t, term.Targets(), []int{4, 5})

	// every branch returns so the shared after block is dead
	be.True(t, fn.Blocks[3].Dead)
	_, ok := fn.Blocks[3].Term.(*mir.Unreachable)
	be.True(t, ok)
}

func TestWhileHeaderPredecessors(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `
(module main
  (func g ((n int64)) void
    (block
      (let i int64 0)
      (while (< i n) (block (set i (+ i 1)))))))`,
	})
	be.Equal(t, messages(lw.reporter), []string(nil))

	fn := funcNamed(lw.bundles["main"], "main.g")
	be.Equal(t, labels(fn), []string{"entry", "while.header", "while.body", "while.after"})

	preds := fn.Predecessors()
	be.Equal(t, preds[1], []int{0, 2})

	term := fn.Blocks[1].Term.(*mir.CondBr)
	be.Equal(t, term.Targets(), []int{2, 3})

	for _, block := range fn.Blocks {
		be.True(t, block.Term != nil)
		be.True(t, !block.Dead)
	}
}

func TestLoopControl(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `
(module main
  (func loops () void
    (block
      (while :outer true
        (block
          (while true (block (continue :outer)))
          (break))))))`,
	})
	be.Equal(t, messages(lw.reporter), []string(nil))

	fn := funcNamed(lw.bundles["main"], "main.loops")
	be.Equal(t, labels(fn), []string{
		"entry",
		"while.header", "while.body", "while.after",
		"while.header", "while.body", "while.after",
	})

	// continue :outer jumps to the outer header
	be.Equal(t, fn.Blocks[5].Term.Targets(), []int{1})

	// break exits the outer loop
	be.Equal(t, fn.Blocks[6].Term.Targets(), []int{3})
}

func TestUnreachableCode(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `
(module main
  (func a () void (block))
  (func h () void
    (block
      (return)
      (a)
      (a))))`,
	})

	diags := lw.reporter.Diagnostics()
	be.Equal(t, len(diags), 1)
	be.Equal(t, diags[0].Severity, report.SevWarning)
	be.Equal(t, diags[0].Code, report.CodeUnreachableCode)
	be.Equal(t, diags[0].Message, "unreachable code")
	be.True(t, !lw.reporter.AnyErrors())

	fn := funcNamed(lw.bundles["main"], "main.h")
	be.Equal(t, len(fn.Blocks), 2)
	be.True(t, fn.Blocks[1].Dead)
	be.Equal(t, len(fn.Blocks[1].Instrs), 2)
	be.Equal(t, diags[0].Span, fn.Blocks[1].Span)
}

func TestDeadAfterBlockIsSilent(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `
(module main
  (func k ((c bool)) int64
    (block (if c (block (return 1)) (else (block (return 2)))))))`,
	})
	be.Equal(t, messages(lw.reporter), []string(nil))

	fn := funcNamed(lw.bundles["main"], "main.k")
	be.Equal(t, len(fn.Blocks), 4)
	be.True(t, fn.Blocks[3].Dead)
}

func TestShortCircuit(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `
(module main
  (func a () void (block))
  (func f ((x bool) (y bool)) void
    (block (if (&& x (! y)) (block (a)))))
  (func g ((x bool) (y bool)) bool
    (block (return (|| x y)))))`,
	})
	be.Equal(t, messages(lw.reporter), []string(nil))

	f := funcNamed(lw.bundles["main"], "main.f")
	be.Equal(t, labels(f), []string{"entry", "if.then", "if.after", "and.rhs"})

	// the right operand is only evaluated when the left one holds
	be.Equal(t, f.Blocks[0].Term.Targets(), []int{3, 2})

	// negation swaps the branch targets
	be.Equal(t, f.Blocks[3].Term.Targets(), []int{2, 1})

	g := funcNamed(lw.bundles["main"], "main.g")
	be.Equal(t, labels(g), []string{"entry", "cond.true", "cond.false", "cond.end", "or.rhs"})
	be.Equal(t, g.Blocks[0].Term.Targets(), []int{1, 4})

	ret, ok := g.Blocks[3].Term.(*mir.Return)
	be.True(t, ok)
	be.Equal(t, ret.Value.Type(), types.Type(lw.table.Bool()))
}

func TestMatch(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `
(module main
  (func describe (v) int64
    (block
      (match v
        (arm n int64 (block (return n)))
        (arm s string (block (return 1)))
        (else (block (return 0)))))))`,
	})
	be.Equal(t, messages(lw.reporter), []string(nil))

	fn := funcNamed(lw.bundles["main"], "main.describe")
	be.Equal(t, labels(fn), []string{"entry", "match.after", "match.arm", "match.test", "match.arm", "match.else"})

	test, ok := fn.Blocks[0].Instrs[1].(*mir.TypeTest)
	be.True(t, ok)
	be.Equal(t, test.Tested.Repr(), "int64")
	be.Equal(t, fn.Blocks[0].Term.Targets(), []int{2, 3})
	be.Equal(t, fn.Blocks[3].Term.Targets(), []int{4, 5})

	unbox, ok := fn.Blocks[2].Instrs[0].(*mir.Unbox)
	be.True(t, ok)
	be.Equal(t, unbox.Dest.Type().Repr(), "int64")

	be.True(t, fn.Blocks[1].Dead)
}

func TestCoercions(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"geo": `
(module geo
  (pub (type Point (struct (x int64) (y int64))))
  (pub (func show ((p Point)) string (block (return "point"))))
  (coerce Point string show))`,
		"main": `
(module main
  (import "geo")
  (func wide ((n uint64)) void (block))
  (func any ((v dyn)) void (block))
  (func text ((s string)) void (block))
  (func f ((b uint8) (p geo.Point)) void
    (block
      (wide b)
      (any b)
      (text p))))`,
	})
	be.Equal(t, messages(lw.reporter), []string(nil))

	main := lw.bundles["main"]
	fn := funcNamed(main, "main.f")

	var kinds []string
	for _, instr := range fn.Blocks[0].Instrs {
		switch v := instr.(type) {
		case *mir.Cast:
			kinds = append(kinds, "cast")
		case *mir.Box:
			kinds = append(kinds, "box")
		case *mir.Call:
			if v.Func.Repr() == "@geo.show" {
				kinds = append(kinds, "via")
			}
		}
	}

	be.Equal(t, kinds, []string{"cast", "box", "via"})

	be.Equal(t, len(main.Externals), 1)
	be.Equal(t, main.Externals[0].Name, "geo.show")
	be.True(t, main.Externals[0].Func)

	geo := lw.bundles["geo"]
	be.Equal(t, len(geo.Exports), 1)
	be.Equal(t, geo.Exports[0].Name, "geo.show")
}

func TestStaticInitializers(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `
(module main
  (static limit uint64 10)
  (pub (static origin (struct (x int32) (y int32)) (struct (y 2) (x (- 1)))))
  (static counter int64)
  (func bump () void (block (set origin.x (+ origin.x 1)))))`,
	})
	be.Equal(t, messages(lw.reporter), []string(nil))

	main := lw.bundles["main"]
	be.Equal(t, len(main.Globals), 3)
	be.Equal(t, main.Globals[0].Init.Repr(), "10")
	be.Equal(t, main.Globals[1].Init.Repr(), "{x: -1, y: 2}")
	be.True(t, main.Globals[2].Init == nil)

	be.Equal(t, len(main.Exports), 1)
	be.Equal(t, main.Exports[0].Name, "main.origin")

	want := `func @main.bump() void {
b0 (entry):
  %0 = load @main.origin.x
  %1 = add %0, 1
  store @main.origin.x, %1
  ret
}
`
	be.Equal(t, funcNamed(main, "main.bump").Repr(), want)
}

func TestLowerUntypedModule(t *testing.T) {
	lw := lowerSources(t, map[string]string{
		"main": `(module main (func f () void (block)))`,
	})

	var ice *report.InternalError
	func() {
		defer func() {
			if x := recover(); x != nil {
				ice = report.AsICE(x)
			}
		}()

		LowerModule(lw.resolved["main"], lw.table, lw.reporter)
	}()

	be.True(t, ice != nil)
}
