package walk

import (
	"sort"
	"testing"

	"github.com/nalgeon/be"

	"github.com/redgush/flycatcher/depm"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/resolve"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/types"
)

type checked struct {
	resolved map[string]*sem.Module
	typed    map[string]*sem.Module
	table    *types.Table
	reporter *report.Reporter
}

// checkSources resolves and checks a project made of the given modules.  The
// entry module is `main`.  Resolution must succeed.
func checkSources(t *testing.T, files map[string]string) *checked {
	t.Helper()

	loader := depm.MemLoader{}
	for path, src := range files {
		loader["/src/"+path+".fst"] = src
	}

	c := &checked{
		resolved: make(map[string]*sem.Module),
		typed:    make(map[string]*sem.Module),
		table:    types.NewTable(),
		reporter: report.NewReporter(nil),
	}

	g, err := depm.BuildGraph(loader, []depm.Root{{Name: "src", AbsPath: "/src"}}, "main", c.reporter)
	be.Err(t, err, nil)

	deps := make(map[uint64]*sem.Module)
	for _, mod := range g.Compilable() {
		smod, ok := resolve.ResolveModule(mod, deps, c.table, c.reporter)
		if !ok {
			t.Fatalf("module `%s` failed to resolve: %v", mod.Name, messages(c.reporter))
		}

		deps[mod.ID] = smod
		c.resolved[mod.Name] = smod

		if tmod, ok := CheckModule(smod, c.table, c.reporter); ok {
			c.typed[mod.Name] = tmod
		}
	}

	return c
}

func messages(r *report.Reporter) []string {
	var msgs []string
	for _, d := range r.Diagnostics() {
		msgs = append(msgs, d.Message)
	}

	sort.Strings(msgs)
	return msgs
}

func funcNamed(mod *sem.Module, name string) *sem.Func {
	for _, fn := range mod.Funcs {
		if fn.Symbol.Name == name {
			return fn
		}
	}

	return nil
}

// exprTypes collects the descriptors of every expression of a module in
// source order.
func exprTypes(mod *sem.Module) []types.Type {
	var typs []types.Type
	for _, fn := range mod.Funcs {
		sem.Inspect(fn.Body, func(expr sem.Expr) {
			typs = append(typs, expr.Type())
		})
	}

	for _, static := range mod.Statics {
		sem.InspectExpr(static.Init, func(expr sem.Expr) {
			typs = append(typs, expr.Type())
		})
	}

	return typs
}

func TestStructuralCall(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func f ((x (struct (value uint64)))) void (block))
  (func g () void (block (f (struct (value 42))))))`,
	})
	be.Equal(t, messages(c.reporter), []string(nil))

	main := c.typed["main"]
	param := funcNamed(main, "f").Signature.ParamTypes[0]
	be.Equal(t, param.Repr(), "{value: uint64}")

	call := funcNamed(main, "g").Body.Stmts[0].(*sem.ExprStmt).Expr.(*sem.Call)
	lit, ok := call.Args[0].(*sem.StructLit)
	be.True(t, ok)
	be.True(t, lit.Type() == param)
	be.True(t, lit.Fields[0].Value.Type() == types.Type(c.table.Prim(types.PrimU64)))
	be.True(t, types.IsVoid(call.Type()))
}

func TestFieldOrderIndependence(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (type A (struct (a int64) (b bool)))
  (func f ((x A)) bool (block (return x.b)))
  (func g () bool (block (return (f (struct (b true) (a 1)))))))`,
	})
	be.Equal(t, messages(c.reporter), []string(nil))
}

func TestMismatchOnCallSpan(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func f ((s string)) void (block))
  (func g () void (block (f 42))))`,
	})

	diags := c.reporter.Diagnostics()
	be.Equal(t, len(diags), 1)
	be.Equal(t, diags[0].Message, "type mismatch: expected `string` but got `int64`")
	be.Equal(t, diags[0].Code, report.CodeTypeMismatch)
	be.Equal(t, diags[0].Stage, report.StageCheck)
	be.Equal(t, diags[0].Module, "main")

	call := funcNamed(c.resolved["main"], "g").Body.Stmts[0].(*sem.ExprStmt).Expr
	be.Equal(t, *diags[0].Span, *call.Span())

	// the erroneous module is not forwarded
	_, ok := c.typed["main"]
	be.True(t, !ok)
}

func TestCheckingIsIdempotent(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (construct class Counter
    (prop n uint32)
    (method bump ((by uint8)) uint32 (block (return (+ self.n by)))))
  (type Point (struct (x int64) (y int64)))
  (func show ((p Point)) string (block (return "point")))
  (coerce Point string show)
  (static limit uint64 10)
  (func print ((s string) (v dyn)) void (block))
  (func f ((a uint8)) float64
    (block
      (let c _ (Counter))
      (let total uint64 (Counter.bump c a))
      (let p _ (struct (y 2) (x (- 1))))
      (print p 3)
      (while (< total limit)
        (block (set total (+ total 1))))
      (return (* 2 1.5)))))`,
	})
	be.Equal(t, messages(c.reporter), []string(nil))

	typed := c.typed["main"]
	first := exprTypes(typed)

	// every expression of the typed tree has a descriptor
	be.True(t, len(first) > 0)
	for _, typ := range first {
		be.True(t, typ != nil)
	}

	// the resolved tree is left untouched
	for _, typ := range exprTypes(c.resolved["main"]) {
		be.True(t, typ == nil)
	}

	again, ok := CheckModule(typed, c.table, c.reporter)
	be.True(t, ok)
	be.Equal(t, messages(c.reporter), []string(nil))

	second := exprTypes(again)
	be.Equal(t, len(second), len(first))
	for i := range first {
		be.True(t, first[i] == second[i])
	}
}

func TestCoercions(t *testing.T) {
	c := checkSources(t, map[string]string{
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
	be.Equal(t, messages(c.reporter), []string(nil))

	body := funcNamed(c.typed["main"], "f").Body.Stmts
	kinds := make([]types.CoercionKind, len(body))
	for i, stmt := range body {
		arg := stmt.(*sem.ExprStmt).Expr.(*sem.Call).Args[0]
		coerce, ok := arg.(*sem.Coerce)
		be.True(t, ok)
		kinds[i] = coerce.Coercion.Kind
	}

	be.Equal(t, kinds, []types.CoercionKind{types.CoerceCast, types.CoerceBox, types.CoerceCall})

	call := body[2].(*sem.ExprStmt).Expr.(*sem.Call)
	be.Equal(t, call.Args[0].(*sem.Coerce).Coercion.Via, "geo.show")
}

func TestCoercionsAreOneHop(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (type A (struct (a int64)))
  (type B (struct (b int64)))
  (func ab ((x A)) B (block (return (struct (b x.a)))))
  (func bstr ((x B)) string (block (return "b")))
  (coerce A B ab)
  (coerce B string bstr)
  (func text ((s string)) void (block))
  (func f ((x A)) void (block (text x))))`,
	})

	be.Equal(t, messages(c.reporter), []string{"type mismatch: expected `string` but got `{a: int64}`"})
}

func TestLiterals(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func f () void
    (block
      (let a uint8 300)
      (let b int8 (- 128))
      (let c int8 (- 129))
      (let d float32 1)
      (let e uint8 (- 1))
      (let g uint64 18446744073709551615)
      (let h _ 9223372036854775808))))`,
	})

	be.Equal(t, messages(c.reporter), []string{
		"integer literal -1 overflows uint8",
		"integer literal -129 overflows int8",
		"integer literal 300 overflows uint8",
		"integer literal 9223372036854775808 overflows int64",
	})
}

func TestLiteralTyping(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func f () void
    (block
      (let a _ 1)
      (let b float32 1)
      (let c _ 1.5)
      (let d int16 (- 7)))))`,
	})
	be.Equal(t, messages(c.reporter), []string(nil))

	stmts := funcNamed(c.typed["main"], "f").Body.Stmts
	reprs := make([]string, len(stmts))
	for i, stmt := range stmts {
		reprs[i] = stmt.(*sem.VarDecl).Symbol.Type.Repr()
	}

	be.Equal(t, reprs, []string{"int64", "float32", "float64", "int16"})

	// an integer literal expected as a float becomes a float literal
	_, ok := stmts[1].(*sem.VarDecl).Init.(*sem.FloatLit)
	be.True(t, ok)
}

func TestOperators(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func f ((a uint8) (b uint16) (s string)) bool
    (block
      (let sum _ (+ a b))
      (let cat _ (+ s "!"))
      (let neg _ (- 2.5))
      (return (&& (< a b) (! (== s cat)))))))`,
	})
	be.Equal(t, messages(c.reporter), []string(nil))

	stmts := funcNamed(c.typed["main"], "f").Body.Stmts
	sum := stmts[0].(*sem.VarDecl)
	be.Equal(t, sum.Symbol.Type.Repr(), "uint16")

	// the narrower operand is widened
	coerce, ok := sum.Init.(*sem.Binary).Lhs.(*sem.Coerce)
	be.True(t, ok)
	be.Equal(t, coerce.Coercion.Kind, types.CoerceCast)

	be.Equal(t, stmts[1].(*sem.VarDecl).Symbol.Type.Repr(), "string")
	be.Equal(t, stmts[2].(*sem.VarDecl).Symbol.Type.Repr(), "float64")
}

func TestOperatorErrors(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func f ((u uint32) (i int32)) void
    (block
      (+ true 1)
      (! 1)
      (- u)
      (% 1.5 2.5)
      (< "a" "b")
      (+ u i)
      (&& true 1))))`,
	})

	be.Equal(t, messages(c.reporter), []string{
		"operator `!` is not defined for `int64`",
		"operator `%` is not defined for `float64` and `float64`",
		"operator `+` is not defined for `bool` and `int64`",
		"operator `+` is not defined for `uint32` and `int32`",
		"operator `-` is not defined for `uint32`",
		"operator `<` is not defined for `string` and `string`",
		"type mismatch: expected `bool` but got `int64`",
	})
}

func TestMixedOperands(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func f ((s string) (n int64) (u uint32) (i int32)) void
    (block
      (let a _ (+ s n))
      (let b _ (== n s))
      (let c _ (+ u i)))))`,
	})

	be.Equal(t, messages(c.reporter), []string{
		"operator `+` is not defined for `string` and `int64`",
		"operator `+` is not defined for `uint32` and `int32`",
		"operator `==` is not defined for `int64` and `string`",
	})
	_, typed := c.typed["main"]
	be.True(t, !typed)
}

func TestCallErrors(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (type P (struct (x int64)))
  (func two ((a int64) (b int64)) void (block))
  (func f ((n int64) (p P)) void
    (block
      (two 1)
      (n 1)
      (two "a" true)
      p.y)))`,
	})

	be.Equal(t, messages(c.reporter), []string{
		"cannot call a value of type `int64`",
		"expected 2 arguments but got 1",
		"type `{x: int64}` has no field named `y`",
		"type mismatch: expected `int64` but got `bool`",
		"type mismatch: expected `int64` but got `string`",
	})
}

func TestControlFlowErrors(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func a () int64 (block (if true (block (return 1)))))
  (func b () void (block (break)))
  (func c () void
    (block
      (while :outer true
        (block (while true (block (continue :inner) (break :outer)))))))
  (func d () void (block (return 1)))
  (func e () int64 (block (return)))
  (func g () void (block (if 1 (block))))
  (func h () void (block (set h 1)))
  (func k () int64 (block (while true (block))))
  (func m ((x bool)) int64
    (block
      (if x (block (return 1)) (else (block (return 2))))))
  (func n () int64 (block (while true (block (break))))))`,
	})

	be.Equal(t, messages(c.reporter), []string{
		"cannot assign to function `h`",
		"cannot return a value from a function returning `void`",
		"cannot use break outside a loop",
		"expected a return value of type `int64`",
		"missing return statement",
		"missing return statement",
		"no enclosing loop labeled `inner`",
		"type mismatch: expected `bool` but got `int64`",
	})
}

func TestDeadCodeAfterReturn(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func g () void (block))
  (func f () int64 (block (return 1) (g)))
  (func k ((x bool)) int64
    (block
      (while x (block (break) (return 1))))))`,
	})

	be.Equal(t, messages(c.reporter), []string{"missing return statement"})
	be.Equal(t, c.reporter.Diagnostics()[0].Span.StartLine, 4)
}

func TestMatch(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func describe (v) int64
    (block
      (match v
        (arm n int64 (block (return n)))
        (arm s string (block (return 0)))
        (else (block (return (- 1)))))))
  (func f () int64 (block (return (describe 42)))))`,
	})
	be.Equal(t, messages(c.reporter), []string(nil))

	main := c.typed["main"]
	describe := funcNamed(main, "describe")
	be.True(t, types.IsDyn(describe.Params[0].Type))

	ms := describe.Body.Stmts[0].(*sem.MatchStmt)
	be.Equal(t, ms.Arms[0].Binding.Type.Repr(), "int64")
	be.Equal(t, ms.Arms[1].Binding.Type.Repr(), "string")

	// the returned binding refers to the typed arm binding
	ret := ms.Arms[0].Body.Stmts[0].(*sem.ReturnStmt)
	be.True(t, ret.Value.(*sem.Ident).Symbol == ms.Arms[0].Binding)

	call := funcNamed(main, "f").Body.Stmts[0].(*sem.ReturnStmt).Value.(*sem.Call)
	be.Equal(t, call.Args[0].(*sem.Coerce).Coercion.Kind, types.CoerceBox)
}

func TestMatchErrors(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func f ((x int64) (v dyn)) void
    (block
      (match x (arm n int64 (block)))
      (match v
        (arm a int64 (block))
        (arm b int64 (block))
        (arm c dyn (block))))))`,
	})

	be.Equal(t, messages(c.reporter), []string{
		"cannot match on a value of type `int64`: expected `dyn`",
		"match arm cannot test for `dyn`",
		"multiple match arms test for `int64`",
	})
}

func TestStatics(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (func one () int64 (block (return 1)))
  (static a uint8 300)
  (static b int64 (one))
  (static c (struct (x uint16)) (struct (x 7))))`,
	})

	be.Equal(t, messages(c.reporter), []string{
		"initializer of static variable `b` must be a constant",
		"integer literal 300 overflows uint8",
	})
}

func TestConstructDefaults(t *testing.T) {
	c := checkSources(t, map[string]string{
		"main": `
(module main
  (construct class Box
    (prop w uint8 "wide")))`,
	})

	be.Equal(t, messages(c.reporter), []string{
		"type mismatch: expected `{w: uint8}` but got `{w: string}`",
	})
}
