package infer

// Hint is the inferred passing convention for a binding. The three
// resolved values form a total order of strictness: a hint only ever
// moves up the order across solver passes, which is what bounds the
// fixpoint iteration.
type Hint uint8

const (
	// HintUnresolved is the transient pre-solve state. No hint is
	// HintUnresolved after the solver terminates.
	HintUnresolved Hint = iota
	// HintOwned passes the value itself; ownership moves to the callee.
	HintOwned
	// HintSharedRef passes a shared (read-only) reference.
	HintSharedRef
	// HintExclusiveRef passes an exclusive (mutable) reference.
	HintExclusiveRef
)

func (h Hint) String() string {
	switch h {
	case HintUnresolved:
		return "unresolved"
	case HintOwned:
		return "owned"
	case HintSharedRef:
		return "&"
	case HintExclusiveRef:
		return "&mut"
	default:
		return "unknown"
	}
}

// Join returns the stricter of the two hints.
func (h Hint) Join(other Hint) Hint {
	if other > h {
		return other
	}
	return h
}

// IsRef reports whether the hint passes by reference.
func (h Hint) IsRef() bool {
	return h == HintSharedRef || h == HintExclusiveRef
}

// Resolved reports whether the hint has left the transient state.
func (h Hint) Resolved() bool {
	return h != HintUnresolved
}
