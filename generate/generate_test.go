package generate

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/redgush/flycatcher/depm"
	"github.com/redgush/flycatcher/lower"
	"github.com/redgush/flycatcher/mir"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/resolve"
	"github.com/redgush/flycatcher/sem"
	"github.com/redgush/flycatcher/types"
	"github.com/redgush/flycatcher/walk"
)

// generateSources compiles a project made of the given modules and returns
// the LLVM IR of each module.  The entry module is `main`.
func generateSources(t *testing.T, files map[string]string) map[string]string {
	t.Helper()

	loader := depm.MemLoader{}
	for path, src := range files {
		loader["/src/"+path+".fst"] = src
	}

	table := types.NewTable()
	reporter := report.NewReporter(nil)

	g, err := depm.BuildGraph(loader, []depm.Root{{Name: "src", AbsPath: "/src"}}, "main", reporter)
	be.Err(t, err, nil)

	out := make(map[string]string)
	deps := make(map[uint64]*sem.Module)
	for _, mod := range g.Compilable() {
		smod, ok := resolve.ResolveModule(mod, deps, table, reporter)
		if !ok {
			t.Fatalf("module `%s` failed to resolve", mod.Name)
		}

		deps[mod.ID] = smod

		tmod, ok := walk.CheckModule(smod, table, reporter)
		if !ok {
			t.Fatalf("module `%s` failed to check", mod.Name)
		}

		bundle := lower.LowerModule(tmod, table, reporter)
		llMod := Generate(bundle, Options{WordSize: 8, Entry: mod.Name == "main"})
		out[mod.Name] = llMod.String()
	}

	return out
}

func assertContains(t *testing.T, ir string, fragments ...string) {
	t.Helper()

	for _, fragment := range fragments {
		if !strings.Contains(ir, fragment) {
			t.Errorf("missing %q in:\n%s", fragment, ir)
		}
	}
}

func TestGenerateControlFlow(t *testing.T) {
	out := generateSources(t, map[string]string{
		"main": `
(module main
  (extern puts ((s string)) void)
  (func count ((n int64)) int64
    (block
      (let i int64 0)
      (while (< i n) (block (set i (+ i 1))))
      (return i)))
  (func main () void
    (block
      (if (> (count 3) 2) (block (puts "big")) (else (block (puts "small")))))))`,
	})

	ir := out["main"]
	assertContains(t, ir,
		"%string = type { i8*, i64 }",
		"declare void @puts(%string",
		"define i64 @main.count(i64 %n)",
		"icmp slt i64",
		"br i1",
		"call void @puts(",
		"define i32 @main()",
		"call void @main.main()",
	)

	// one global per string literal
	be.Equal(t, strings.Count(ir, "@__strlit."), 4)
}

func TestGenerateImports(t *testing.T) {
	out := generateSources(t, map[string]string{
		"geo": `
(module geo
  (pub (type Point (struct (x int64) (y int64))))
  (pub (static origin Point (struct (x 0) (y 0))))
  (pub (func show ((p Point)) string (block (return "point"))))
  (coerce Point string show))`,
		"main": `
(module main
  (import "geo")
  (func text ((s string)) void (block))
  (func main () void (block (text geo.origin))))`,
	})

	assertContains(t, out["geo"],
		"@geo.origin = global { i64, i64 } { i64 0, i64 0 }",
		"define %string @geo.show({ i64, i64 } %p)",
	)

	assertContains(t, out["main"],
		"@geo.origin = external global { i64, i64 }",
		"declare %string @geo.show({ i64, i64 }",
		"call %string @geo.show(",
	)
}

func TestGenerateDynamic(t *testing.T) {
	out := generateSources(t, map[string]string{
		"main": `
(module main
  (func describe (v) int64
    (block
      (match v
        (arm n int64 (block (return n)))
        (else (block (return 0))))))
  (func main () void (block (describe 42))))`,
	})

	assertContains(t, out["main"],
		"%dyn = type { i64, i8* }",
		"call i8* @malloc(i64 8)",
		"extractvalue %dyn",
		"icmp eq i64",
		"unreachable",
	)
}

func TestConvType(t *testing.T) {
	tt := types.NewTable()

	for _, wordSize := range []int{4, 8} {
		g := newGenerator(mir.NewBundle(1, "main"), Options{WordSize: wordSize})

		be.Equal(t, g.convType(tt.Prim(types.PrimUsize)).String(), map[int]string{4: "i32", 8: "i64"}[wordSize])
		be.Equal(t, g.convType(tt.Prim(types.PrimU8)).String(), "i8")
		be.Equal(t, g.convType(tt.Bool()).String(), "i1")
		be.Equal(t, g.convType(tt.Void()).String(), "void")

		st := tt.Struct([]types.StructField{
			{Name: "b", Type: tt.Prim(types.PrimF32)},
			{Name: "a", Type: tt.Prim(types.PrimI16)},
		})
		be.Equal(t, g.convType(st).String(), "{ i16, float }")

		fn := tt.Func([]types.Type{tt.Prim(types.PrimF64)}, tt.Void())
		be.Equal(t, g.convType(fn).String(), "void (double)*")
	}
}
