package types

import (
	"sync"
	"testing"

	"github.com/nalgeon/be"
)

func point(t *Table, xName, yName string) *StructType {
	return t.Struct([]StructField{
		{Name: xName, Type: t.Prim(PrimI64)},
		{Name: yName, Type: t.Prim(PrimF64)},
	})
}

func TestStructFieldOrder(t *testing.T) {
	tt := NewTable()

	a := tt.Struct([]StructField{
		{Name: "x", Type: tt.Prim(PrimI64)},
		{Name: "y", Type: tt.Prim(PrimF64)},
	})
	b := tt.Struct([]StructField{
		{Name: "y", Type: tt.Prim(PrimF64)},
		{Name: "x", Type: tt.Prim(PrimI64)},
	})

	be.True(t, a == b)
	be.Equal(t, a.Repr(), "{x: int64, y: float64}")

	_, ndx, ok := a.GetFieldByName("y")
	be.True(t, ok)
	be.Equal(t, ndx, 1)
}

func TestEqualityLaws(t *testing.T) {
	tt := NewTable()

	a := point(tt, "x", "y")
	b := point(tt, "x", "y")
	c := point(tt, "x", "y")
	d := point(tt, "u", "v")

	// reflexive, symmetric, transitive
	be.True(t, a == a)
	be.True(t, a == b && b == a)
	be.True(t, a == b && b == c && a == c)
	be.True(t, Type(a) != Type(d))
}

func TestNestedStructs(t *testing.T) {
	tt := NewTable()

	inner := tt.Struct([]StructField{{Name: "value", Type: tt.Prim(PrimU64)}})
	outer := tt.Struct([]StructField{
		{Name: "b", Type: inner},
		{Name: "a", Type: tt.Bool()},
	})

	be.Equal(t, outer.Repr(), "{a: bool, b: {value: uint64}}")

	again := tt.Struct([]StructField{
		{Name: "a", Type: tt.Bool()},
		{Name: "b", Type: tt.Struct([]StructField{{Name: "value", Type: tt.Prim(PrimU64)}})},
	})
	be.True(t, outer == again)
}

func TestFuncRepr(t *testing.T) {
	tt := NewTable()

	f := tt.Func([]Type{tt.Prim(PrimString), tt.Dyn()}, tt.Void())
	be.Equal(t, f.Repr(), "fn(string, dyn)")

	g := tt.Func(nil, tt.Prim(PrimI32))
	be.Equal(t, g.Repr(), "fn() -> int32")
	be.True(t, g == tt.Func([]Type{}, tt.Prim(PrimI32)))
}

func TestConcurrentInterning(t *testing.T) {
	tt := NewTable()
	before := tt.Len()

	const n = 32
	results := make([]*StructType, n)

	wg := sync.WaitGroup{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			if i%2 == 0 {
				results[i] = point(tt, "x", "y")
			} else {
				results[i] = tt.Struct([]StructField{
					{Name: "y", Type: tt.Prim(PrimF64)},
					{Name: "x", Type: tt.Prim(PrimI64)},
				})
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		be.True(t, r == results[0])
	}

	be.Equal(t, tt.Len(), before+1)
}

func TestBuiltinCoercions(t *testing.T) {
	tt := NewTable()
	cs := NewCoercionSet(tt)

	tests := []struct {
		from, to PrimKind
		ok       bool
	}{
		{PrimU8, PrimU64, true},
		{PrimI16, PrimI32, true},
		{PrimU32, PrimUsize, true},
		{PrimI32, PrimSize, true},
		{PrimF32, PrimF64, true},
		{PrimU64, PrimUsize, false},
		{PrimU64, PrimU8, false},
		{PrimU8, PrimI16, false},
		{PrimI64, PrimF64, false},
		{PrimF64, PrimF32, false},
		{PrimString, PrimBool, false},
	}

	for _, test := range tests {
		c, ok := cs.Lookup(tt.Prim(test.from), tt.Prim(test.to))
		be.Equal(t, ok, test.ok)
		if ok {
			be.Equal(t, c.Kind, CoerceCast)
		}
	}
}

func TestMatch(t *testing.T) {
	tt := NewTable()
	p := point(tt, "x", "y")
	str := tt.Prim(PrimString)

	decl := &Coercion{
		From:    p,
		To:      str,
		Kind:    CoerceCall,
		Via:     "geo.show",
		ViaType: tt.Func([]Type{p}, str),
		Module:  "geo",
	}
	cs := NewCoercionSet(tt, []*Coercion{decl})

	c, ok := cs.Match(p, point(tt, "x", "y"))
	be.True(t, ok)
	be.True(t, c == nil)

	c, ok = cs.Match(str, p)
	be.True(t, ok)
	be.True(t, c == decl)

	// coercions are not symmetric
	_, ok = cs.Match(p, str)
	be.True(t, !ok)

	c, ok = cs.Match(tt.Dyn(), p)
	be.True(t, ok)
	be.Equal(t, c.Kind, CoerceBox)

	_, ok = cs.Match(p, tt.Dyn())
	be.True(t, !ok)
}

func TestCoercionsAreOneHop(t *testing.T) {
	tt := NewTable()
	a := tt.Struct([]StructField{{Name: "a", Type: tt.Bool()}})
	b := tt.Struct([]StructField{{Name: "b", Type: tt.Bool()}})
	c := tt.Struct([]StructField{{Name: "c", Type: tt.Bool()}})

	cs := NewCoercionSet(tt, []*Coercion{
		{From: a, To: b, Kind: CoerceCall, Via: "m.ab"},
		{From: b, To: c, Kind: CoerceCall, Via: "m.bc"},
	})

	_, ok := cs.Match(c, a)
	be.True(t, !ok)
}

func TestLayout(t *testing.T) {
	tt := NewTable()

	st := tt.Struct([]StructField{
		{Name: "a", Type: tt.Prim(PrimU8)},
		{Name: "b", Type: tt.Prim(PrimI64)},
		{Name: "c", Type: tt.Prim(PrimU16)},
	})

	size, align := Layout(st, 8)
	be.Equal(t, size, 24)
	be.Equal(t, align, 8)
	be.Equal(t, FieldOffsets(st, 8), []int{0, 8, 16})

	size, align = Layout(tt.Prim(PrimString), 4)
	be.Equal(t, size, 8)
	be.Equal(t, align, 4)

	size, _ = Layout(tt.Prim(PrimUsize), 4)
	be.Equal(t, size, 4)

	size, align = Layout(tt.Struct(nil), 8)
	be.Equal(t, size, 0)
	be.Equal(t, align, 1)
}
