package plan

// Transform is the single corrective operation applied at one access
// site. A site moves from Unclassified to exactly one resolved variant
// and never changes again; assigning twice is an internal bug and
// panics, which structurally rules out the stacked borrow+clone and
// double-dereference class of output errors.
type Transform uint8

const (
	// Unclassified is the pre-decision state; no planned site keeps it.
	Unclassified Transform = iota
	// OwnedMove emits the expression as-is.
	OwnedMove
	// SharedBorrow prefixes the expression with the shared-borrow
	// operator.
	SharedBorrow
	// ExclusiveBorrow prefixes the expression with the exclusive-borrow
	// operator.
	ExclusiveBorrow
	// Duplicate appends an explicit clone of the value.
	Duplicate
	// Dereference prefixes the expression with the dereference
	// operator.
	Dereference
	// HoistBorrow binds the ephemeral value to a fresh named local
	// before the enclosing statement and borrows that local.
	HoistBorrow
	// OwnedConv wraps a literal in the owned-string conversion before
	// any reference is taken.
	OwnedConv
)

func (t Transform) String() string {
	switch t {
	case Unclassified:
		return "unclassified"
	case OwnedMove:
		return "move"
	case SharedBorrow:
		return "borrow"
	case ExclusiveBorrow:
		return "borrow-mut"
	case Duplicate:
		return "clone"
	case Dereference:
		return "deref"
	case HoistBorrow:
		return "hoist-borrow"
	case OwnedConv:
		return "owned-conv"
	default:
		return "unknown"
	}
}

// Reason explains why a Duplicate was planned; surfaced by the
// plan --explain listing.
type Reason uint8

const (
	ReasonNone Reason = iota
	// ReasonMovedButUsedLater: the binding is moved here but read again
	// afterwards.
	ReasonMovedButUsedLater
	// ReasonStoredInCollection: the value moves into a container or
	// aggregate while the binding stays live.
	ReasonStoredInCollection
	// ReasonReturnedButUsedAgain: the binding is returned inside a loop
	// or before later uses.
	ReasonReturnedButUsedAgain
	// ReasonCloneThroughRef: the callee wants ownership but the binding
	// is only a reference.
	ReasonCloneThroughRef
	// ReasonConsumingThroughRef: a consuming accessor is applied to a
	// field reached through a shared reference.
	ReasonConsumingThroughRef
	// ReasonElementExtract: a non-copy element is taken out of an
	// indexed collection.
	ReasonElementExtract
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonMovedButUsedLater:
		return "moved but used later"
	case ReasonStoredInCollection:
		return "stored in collection"
	case ReasonReturnedButUsedAgain:
		return "returned but used again"
	case ReasonCloneThroughRef:
		return "owned value needed through reference"
	case ReasonConsumingThroughRef:
		return "consuming accessor through shared reference"
	case ReasonElementExtract:
		return "non-copy element extracted from collection"
	default:
		return "unknown"
	}
}
