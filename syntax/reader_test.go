package syntax

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/redgush/flycatcher/report"
)

const geoSrc = `(module geo
  (import "std/io")
  (import "util" (as u))
  (import "shapes" (names Point area))

  (pub (func origin () int64 (block (return 0))))
  (extern puts ((s string)) void)
  (static limit _ 10)
  (type Pair (struct (a int64) (b dyn)))
  (func apply (x (f (fn (int64) bool))) void
    (block
      (if (f x) (block (io.println "yes"))
        (else (block)))
      (while :outer (< x 10) (block (break :outer))))))
`

func TestReadFile(t *testing.T) {
	f, err := ReadString(geoSrc, "/src/geo.fst", "src/geo.fst")
	be.Err(t, err, nil)

	be.Equal(t, f.Name, "geo")
	be.Equal(t, f.AbsPath, "/src/geo.fst")
	be.Equal(t, f.ReprPath, "src/geo.fst")

	be.Equal(t, len(f.Imports), 3)
	be.Equal(t, f.Imports[0].BoundName(), "io")
	be.Equal(t, f.Imports[1].BoundName(), "u")
	be.Equal(t, len(f.Imports[2].Names), 2)
	be.Equal(t, f.Imports[2].Names[1].Name, "area")

	be.Equal(t, len(f.Defs), 5)

	origin := f.Defs[0].(*FuncDef)
	be.Equal(t, origin.DefName(), "origin")
	be.True(t, origin.IsPublic())
	be.Equal(t, origin.ReturnType.(*TypeName).Name, "int64")
	be.Equal(t, len(origin.Body.Stmts), 1)

	puts := f.Defs[1].(*FuncDef)
	be.True(t, puts.Extern)
	be.True(t, !puts.IsPublic())
	be.True(t, puts.Body == nil)
	be.True(t, puts.ReturnType == nil)

	limit := f.Defs[2].(*StaticDef)
	be.True(t, limit.Type == nil)
	be.Equal(t, limit.Init.(*IntLit).Value, uint64(10))

	pair := f.Defs[3].(*TypeDef).Type.(*StructTypeExpr)
	be.Equal(t, len(pair.Fields), 2)
	_, isDyn := pair.Fields[1].Type.(*DynTypeExpr)
	be.True(t, isDyn)

	apply := f.Defs[4].(*FuncDef)
	be.Equal(t, len(apply.Params), 2)
	be.True(t, apply.Params[0].Type == nil)
	_, isFn := apply.Params[1].Type.(*FuncTypeExpr)
	be.True(t, isFn)

	ifStmt := apply.Body.Stmts[0].(*IfStmt)
	be.Equal(t, len(ifStmt.CondBranches), 1)
	be.True(t, ifStmt.ElseBranch != nil)

	call := ifStmt.CondBranches[0].Body.Stmts[0].(*ExprStmt).Expr.(*Call)
	dot := call.Func.(*Dot)
	be.Equal(t, dot.Root.(*Identifier).Name, "io")
	be.Equal(t, dot.Field.Name, "println")

	loop := apply.Body.Stmts[1].(*WhileStmt)
	be.Equal(t, loop.Label, "outer")
	be.Equal(t, loop.Cond.(*Binary).Op, OpLt)
	be.Equal(t, loop.Body.Stmts[0].(*BreakStmt).Label, "outer")
}

func TestSpansFollowSource(t *testing.T) {
	f, err := ReadString("(module main\n  (func f () void (block)))", "/src/main.fst", "src/main.fst")
	be.Err(t, err, nil)

	fn := f.Defs[0].(*FuncDef)
	be.Equal(t, *fn.Span(), report.TextSpan{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 25})
	be.Equal(t, *fn.Name.Span(), report.TextSpan{StartLine: 1, StartCol: 8, EndLine: 1, EndCol: 8})
}

func TestMalformedTrees(t *testing.T) {
	cases := map[string]struct {
		src  string
		line int
	}{
		"not a module":    {"(func f () void (block))", 0},
		"unclosed":        {"(module main\n  (func f () void (block))", 0},
		"bad definition":  {"(module main\n  (frob x))", 1},
		"untyped static":  {"(module main\n  (static x _))", 1},
		"import path":     {"(module main\n  (import geo))", 1},
		"bad import form": {"(module main\n  (import \"geo\" (only x)))", 1},
		"bad param":       {"(module main\n  (func f ((a b c)) void (block)))", 1},
		"huge integer":    {"(module main\n  (static x uint64 99999999999999999999999))", 1},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := ReadString(c.src, "/src/main.fst", "src/main.fst")
			be.True(t, f == nil)

			cerr, ok := err.(*report.LocalCompileError)
			be.True(t, ok)
			be.Equal(t, cerr.Code, report.CodeBadTree)
			be.Equal(t, cerr.Span.StartLine, c.line)
		})
	}
}
