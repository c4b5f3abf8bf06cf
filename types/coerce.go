package types

// CoercionKind indicates how a coercion is performed.
type CoercionKind int

// Enumeration of coercion kinds.
const (
	// CoerceCast is a built-in primitive conversion: eg. integer widening.
	CoerceCast CoercionKind = iota

	// CoerceBox packs a value of a known shape into a `dyn` value.
	CoerceBox

	// CoerceCall calls a declared conversion function.
	CoerceCall
)

// Coercion is a directed one-hop conversion from one descriptor to another.
// Coercions are never composed.
type Coercion struct {
	From, To Type
	Kind     CoercionKind

	// Via is the linkage name of the conversion function for declared
	// coercions.  ViaType is its signature.
	Via     string
	ViaType *FuncType

	// Module is the name of the module that declared the coercion.  It is
	// empty for built-in coercions.
	Module string
}

type coercionKey struct {
	from, to Type
}

// CoercionSet is the set of coercions visible within a module.  It is built
// once and read-only thereafter so it may be shared between goroutines.
type CoercionSet struct {
	declared map[coercionKey]*Coercion

	// builtins caches built-in coercions so that the same edge is always the
	// same pointer.
	builtins map[coercionKey]*Coercion

	table *Table
}

// NewCoercionSet creates a coercion set from lists of declared coercions.  If
// two lists declare the same edge, the one appearing first wins.
func NewCoercionSet(table *Table, declared ...[]*Coercion) *CoercionSet {
	cs := &CoercionSet{
		declared: make(map[coercionKey]*Coercion),
		builtins: make(map[coercionKey]*Coercion),
		table:    table,
	}

	for _, list := range declared {
		for _, c := range list {
			key := coercionKey{c.From, c.To}
			if _, ok := cs.declared[key]; !ok {
				cs.declared[key] = c
			}
		}
	}

	// Precompute the built-in numeric edges so lookup never writes.
	for _, from := range table.prims {
		for _, to := range table.prims {
			if from != to && numericWidens(from, to) {
				cs.builtins[coercionKey{from, to}] = &Coercion{From: from, To: to, Kind: CoerceCast}
			}
		}
	}

	return cs
}

// Lookup returns the coercion from -> to if one is visible.
func (cs *CoercionSet) Lookup(from, to Type) (*Coercion, bool) {
	key := coercionKey{from, to}

	if c, ok := cs.builtins[key]; ok {
		return c, true
	}

	if IsDyn(to) && !IsDyn(from) && !IsVoid(from) {
		return &Coercion{From: from, To: to, Kind: CoerceBox}, true
	}

	c, ok := cs.declared[key]
	return c, ok
}

// Declared returns whether a declared coercion exists for the given edge.
func (cs *CoercionSet) Declared(from, to Type) bool {
	_, ok := cs.declared[coercionKey{from, to}]
	return ok
}

// Match determines whether a value of type given can be used where a value of
// type required is expected.  If the descriptors are equal, the returned
// coercion is nil.  Otherwise, it is the one-hop coercion to apply.
func (cs *CoercionSet) Match(required, given Type) (*Coercion, bool) {
	// Interning makes this a structural comparison.
	if required == given {
		return nil, true
	}

	return cs.Lookup(given, required)
}

// numericWidens reports whether from can be widened to to without loss: same
// signedness and no narrower, or float32 to float64.  Word-sized integers are
// only reachable from types of at most 32 bits so that the relation holds on
// both 32 and 64 bit targets.
func numericWidens(from, to *PrimitiveType) bool {
	if from.IsFloating() && to.IsFloating() {
		return from.Kind == PrimF32 && to.Kind == PrimF64
	}

	if !from.IsIntegral() || !to.IsIntegral() || from.IsSigned() != to.IsSigned() {
		return false
	}

	switch {
	case from.Kind == PrimUsize || from.Kind == PrimSize:
		return false
	case to.Kind == PrimUsize || to.Kind == PrimSize:
		return from.BitWidth(4) <= 32
	default:
		return from.BitWidth(8) < to.BitWidth(8)
	}
}
