package infer

import "keel/internal/types"

// CopySet answers whether values of a type are implicitly duplicated on
// use. Primitive scalars always copy; a shared reference is trivially
// re-shareable as a reference (the referent is not); an aggregate
// copies iff every component currently copies. Nominal results are
// memoized, and negative answers are invalidated whenever a new nominal
// type becomes known copy-eligible, since a struct declared before its
// field types may classify only on a re-check.
type CopySet struct {
	in   *types.Interner
	memo map[types.TypeID]copyEntry
	gen  int
}

type copyEntry struct {
	copy bool
	gen  int
}

// NewCopySet builds an oracle over the program's type interner.
func NewCopySet(in *types.Interner) *CopySet {
	return &CopySet{
		in:   in,
		memo: make(map[types.TypeID]copyEntry, 32),
	}
}

// IsCopy reports whether the type is copy-eligible.
func (c *CopySet) IsCopy(id types.TypeID) bool {
	if c == nil || id == types.NoTypeID {
		return false
	}
	if e, ok := c.memo[id]; ok {
		// Positive answers are final; negatives may flip once more
		// nominal types classify, so they expire with the generation.
		if e.copy || e.gen == c.gen {
			return e.copy
		}
	}
	visiting := make(map[types.TypeID]bool, 4)
	result := c.eval(id, visiting)
	c.store(id, result)
	return result
}

func (c *CopySet) store(id types.TypeID, copyable bool) {
	prev, had := c.memo[id]
	c.memo[id] = copyEntry{copy: copyable, gen: c.gen}
	if copyable && (!had || !prev.copy) {
		if t, ok := c.in.Lookup(id); ok && (t.Kind == types.KindStruct || t.Kind == types.KindEnum) {
			c.gen++
		}
	}
}

func (c *CopySet) eval(id types.TypeID, visiting map[types.TypeID]bool) bool {
	if id == types.NoTypeID || visiting[id] {
		// A cycle through a nominal type cannot be copy-eligible:
		// well-formed definitions break cycles with a heap container,
		// and those never copy.
		return false
	}
	if e, ok := c.memo[id]; ok && (e.copy || e.gen == c.gen) {
		return e.copy
	}
	t, ok := c.in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindUnit, types.KindBool, types.KindInt, types.KindUint,
		types.KindFloat, types.KindChar:
		return true
	case types.KindStrView:
		// A borrowed string view re-shares like any shared reference.
		return true
	case types.KindRef:
		return true
	case types.KindRefMut:
		// Exclusive references move; duplicating one would alias
		// mutable state.
		return false
	case types.KindString, types.KindList, types.KindMap:
		return false
	case types.KindOption:
		visiting[id] = true
		defer delete(visiting, id)
		return c.eval(t.Elem, visiting)
	case types.KindTuple:
		elems, ok := c.in.Tuple(id)
		if !ok {
			return false
		}
		visiting[id] = true
		defer delete(visiting, id)
		for _, e := range elems {
			if !c.eval(e, visiting) {
				return false
			}
		}
		return true
	case types.KindStruct:
		info, ok := c.in.Struct(id)
		if !ok {
			return false
		}
		visiting[id] = true
		defer delete(visiting, id)
		for _, f := range info.Fields {
			if !c.eval(f.Type, visiting) {
				return false
			}
		}
		return true
	case types.KindEnum:
		info, ok := c.in.Enum(id)
		if !ok {
			return false
		}
		visiting[id] = true
		defer delete(visiting, id)
		for _, v := range info.Variants {
			for _, p := range v.Payload {
				if !c.eval(p, visiting) {
					return false
				}
			}
		}
		return true
	}
	return false
}

// Classify walks every declared nominal type in definition discovery
// order, repeating while the answer set still grows. Definitions form a
// DAG under well-formedness, so the loop is bounded by the longest
// nesting chain.
func (c *CopySet) Classify() {
	for {
		before := c.gen
		for _, id := range c.in.NominalTypes() {
			c.IsCopy(id)
		}
		if c.gen == before {
			return
		}
	}
}
