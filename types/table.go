package types

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/redgush/flycatcher/report"
)

// numShards is the number of independently locked shards in a table.
const numShards = 16

// Table is the interned descriptor table.  It is safe for concurrent use:
// insertion is insert-if-absent and always returns the canonical descriptor.
type Table struct {
	shards [numShards]tableShard

	prims [PrimString + 1]*PrimitiveType
	dyn   *DynType
}

type tableShard struct {
	m       sync.Mutex
	entries map[string]Type
}

// NewTable creates a new descriptor table with all primitives interned.
func NewTable() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i].entries = make(map[string]Type)
	}

	for i, name := range primNames {
		pt := &PrimitiveType{typeBase: newTypeBase(name), Kind: PrimKind(i)}
		t.prims[i] = t.intern(pt).(*PrimitiveType)
	}

	t.dyn = t.intern(&DynType{typeBase: newTypeBase("dyn")}).(*DynType)
	return t
}

func newTypeBase(repr string) typeBase {
	return typeBase{repr: repr, id: xxhash.Sum64String(repr)}
}

// intern inserts typ if no structurally equal descriptor exists and returns
// the canonical descriptor.
func (t *Table) intern(typ Type) Type {
	shard := &t.shards[typ.ID()%numShards]

	shard.m.Lock()
	defer shard.m.Unlock()

	if existing, ok := shard.entries[typ.Repr()]; ok {
		return existing
	}

	shard.entries[typ.Repr()] = typ
	return typ
}

// Len returns the number of interned descriptors.
func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		t.shards[i].m.Lock()
		n += len(t.shards[i].entries)
		t.shards[i].m.Unlock()
	}

	return n
}

// -----------------------------------------------------------------------------

// Prim returns the primitive descriptor of the given kind.
func (t *Table) Prim(kind PrimKind) *PrimitiveType {
	return t.prims[kind]
}

// Void returns the void descriptor.
func (t *Table) Void() *PrimitiveType {
	return t.prims[PrimVoid]
}

// Bool returns the bool descriptor.
func (t *Table) Bool() *PrimitiveType {
	return t.prims[PrimBool]
}

// Dyn returns the dynamic descriptor.
func (t *Table) Dyn() *DynType {
	return t.dyn
}

// Struct returns the struct descriptor with the given fields.  The fields may
// be in any order but their names must be unique.
func (t *Table) Struct(fields []StructField) *StructType {
	sorted := make([]StructField, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	indices := make(map[string]int, len(sorted))
	for i, field := range sorted {
		if _, ok := indices[field.Name]; ok {
			report.ICE("struct descriptor with duplicate field `%s`", field.Name)
		}

		indices[field.Name] = i
	}

	st := &StructType{
		typeBase: newTypeBase(structRepr(sorted)),
		Fields:   sorted,
		Indices:  indices,
	}

	return t.intern(st).(*StructType)
}

// Func returns the function descriptor with the given signature.
func (t *Table) Func(params []Type, ret Type) *FuncType {
	ps := make([]Type, len(params))
	copy(ps, params)

	ft := &FuncType{
		typeBase:   newTypeBase(funcRepr(ps, ret)),
		ParamTypes: ps,
		ReturnType: ret,
	}

	return t.intern(ft).(*FuncType)
}
