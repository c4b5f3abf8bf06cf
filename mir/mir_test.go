package mir

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/types"
)

// catchICE runs f and returns the internal error it raised, if any.
func catchICE(f func()) (ice *report.InternalError) {
	defer func() {
		if x := recover(); x != nil {
			ice = report.AsICE(x)
		}
	}()

	f()
	return nil
}

func diamond(tt *types.Table) *Function {
	fn := NewFunction("main.f", tt.Func([]types.Type{tt.Bool()}, tt.Void()), nil)
	c := fn.NewParam("c", tt.Bool())

	entry := fn.NewBlock("entry")
	then := fn.NewBlock("if.then")
	els := fn.NewBlock("if.else")
	after := fn.NewBlock("if.after")

	cond := fn.NewTemp(tt.Bool())
	entry.Instrs = append(entry.Instrs, &Load{Dest: cond, Src: &Place{Var: c}})
	entry.Term = &CondBr{Cond: cond, Then: then.Index, Else: els.Index}
	then.Term = &Br{Target: after.Index}
	els.Term = &Br{Target: after.Index}
	after.Term = &Return{}

	return fn
}

func TestPredecessors(t *testing.T) {
	fn := diamond(types.NewTable())

	preds := fn.Predecessors()
	be.Equal(t, preds, [][]int{nil, {0}, {0}, {1, 2}})
}

func TestPredecessorsCountEdgesOnce(t *testing.T) {
	tt := types.NewTable()
	fn := NewFunction("main.g", tt.Func(nil, tt.Void()), nil)

	entry := fn.NewBlock("entry")
	next := fn.NewBlock("next")
	entry.Term = &CondBr{Cond: NewConstBool(true, tt.Bool()), Then: next.Index, Else: next.Index}
	next.Term = &Return{}

	be.Equal(t, fn.Predecessors()[1], []int{0})
}

func TestValidateMarksDeadBlocks(t *testing.T) {
	tt := types.NewTable()
	fn := NewFunction("main.h", tt.Func(nil, tt.Void()), nil)

	entry := fn.NewBlock("entry")
	dead := fn.NewBlock("unreachable")
	deadLoop := fn.NewBlock("while.cond")
	entry.Term = &Return{}
	dead.Term = &Br{Target: deadLoop.Index}
	deadLoop.Term = &Br{Target: deadLoop.Index}

	heads := Validate(fn)
	be.Equal(t, len(heads), 1)
	be.Equal(t, heads[0], dead)

	be.True(t, !entry.Dead)
	be.True(t, dead.Dead)
	be.True(t, deadLoop.Dead)
}

func TestValidateDiamond(t *testing.T) {
	fn := diamond(types.NewTable())

	be.Equal(t, len(Validate(fn)), 0)
	for _, block := range fn.Blocks {
		be.True(t, !block.Dead)
	}
}

func TestValidateICE(t *testing.T) {
	tt := types.NewTable()

	fn := NewFunction("main.open", tt.Func(nil, tt.Void()), nil)
	fn.NewBlock("entry")

	ice := catchICE(func() { Validate(fn) })
	be.True(t, ice != nil)
	be.True(t, strings.Contains(ice.Message, "no terminator"))

	fn = NewFunction("main.dangling", tt.Func(nil, tt.Void()), nil)
	fn.NewBlock("entry").Term = &Br{Target: 4}

	ice = catchICE(func() { Validate(fn) })
	be.True(t, ice != nil)
	be.True(t, strings.Contains(ice.Message, "nonexistent block b4"))
}

func TestSealedFunction(t *testing.T) {
	fn := diamond(types.NewTable())
	fn.Seal()

	ice := catchICE(func() { fn.NewBlock("late") })
	be.True(t, ice != nil)
	be.Equal(t, len(fn.Blocks), 4)
}

func TestUniqueLocalNames(t *testing.T) {
	tt := types.NewTable()
	fn := NewFunction("main.f", tt.Func(nil, tt.Void()), nil)

	a := fn.NewLocal("x", tt.Bool())
	b := fn.NewLocal("x", tt.Bool())
	c := fn.NewLocal("x", tt.Bool())

	be.Equal(t, a.Repr(), "$x")
	be.Equal(t, b.Repr(), "$x.1")
	be.Equal(t, c.Repr(), "$x.2")
}

func TestRepr(t *testing.T) {
	tt := types.NewTable()
	fn := diamond(tt)
	Validate(fn)

	bundle := NewBundle(1, "main")
	bundle.Funcs = append(bundle.Funcs, fn)
	bundle.AddExternal("geo.area", tt.Func(nil, tt.Prim(types.PrimF64)), true)
	bundle.AddExternal("geo.area", tt.Func(nil, tt.Prim(types.PrimF64)), true)

	want := `bundle main

extern @geo.area: fn() -> float64

func @main.f($c: bool) void {
b0 (entry):
  %0 = load $c
  condbr %0, b1, b2
b1 (if.then):
  br b3
b2 (if.else):
  br b3
b3 (if.after):
  ret
}
`
	be.Equal(t, bundle.Repr(), want)
}

func TestConstRepr(t *testing.T) {
	tt := types.NewTable()

	be.Equal(t, NewConstInt(^uint64(0), tt.Prim(types.PrimI32)).Repr(), "-1")
	be.Equal(t, NewConstInt(^uint64(0), tt.Prim(types.PrimU64)).Repr(), "18446744073709551615")

	st := tt.Struct([]types.StructField{
		{Name: "y", Type: tt.Prim(types.PrimF64)},
		{Name: "x", Type: tt.Prim(types.PrimF64)},
	})
	c := NewConstStruct([]Value{
		NewConstFloat(1.5, tt.Prim(types.PrimF64)),
		NewConstFloat(2, tt.Prim(types.PrimF64)),
	}, st)
	be.Equal(t, c.Repr(), "{x: 1.5, y: 2}")

	p := &Place{Var: &Local{Name: "p", typ: st}, Fields: []int{1}}
	be.Equal(t, p.Repr(), "$p.y")
	be.Equal(t, p.Type(), types.Type(tt.Prim(types.PrimF64)))
}
