package infer

import (
	"strings"

	"keel/internal/ast"
)

// Heuristic is the conservative name-based fallback for method calls
// whose signature is not registered yet. It is an approximation, not a
// proof: a registered signature always overrides it.
type Heuristic struct {
	Prefixes []string
	Suffixes []string
}

// DefaultHeuristic matches the conventional mutating vocabulary of the
// target runtime's containers.
func DefaultHeuristic() Heuristic {
	return Heuristic{
		Prefixes: []string{"push", "pop", "append", "insert", "remove", "clear", "set"},
		Suffixes: []string{"_mut"},
	}
}

// Matches reports whether the method name sounds mutating.
func (h Heuristic) Matches(name string) bool {
	for _, p := range h.Prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, s := range h.Suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// MutationDetector decides whether a method call mutates its receiver.
// Direct field/index assignments are decided structurally by the usage
// analyzer and never reach the detector.
type MutationDetector struct {
	reg       *Registry
	heuristic Heuristic
}

// NewMutationDetector binds a detector to the registry snapshot it
// consults.
func NewMutationDetector(reg *Registry, h Heuristic) *MutationDetector {
	return &MutationDetector{reg: reg, heuristic: h}
}

// MethodMutates reports whether invoking the callee mutates the
// receiver. A registered receiver hint decides outright; the name
// heuristic only applies while the signature is unknown, and resolves
// ambiguity toward the stricter answer (an unnecessary exclusive
// borrow still compiles, an under-borrow does not).
func (d *MutationDetector) MethodMutates(c ast.Callee) bool {
	switch c.Kind {
	case ast.CalleeFunc:
		sig := d.reg.Sig(c.Func)
		if sig != nil && sig.HasReceiver {
			return sig.Receiver.Hint == HintExclusiveRef
		}
	case ast.CalleeTraitMethod:
		if h, ok := d.reg.TraitHint(c.Trait, c.Method, ast.ReceiverPos); ok {
			return h == HintExclusiveRef
		}
	}
	return d.heuristic.Matches(c.Name)
}

// ConsumesReceiver reports whether the callee takes its receiver by
// value. Known signatures answer from the registry; unknown callees
// fall back to the consuming accessors of the target runtime's option
// type.
func (d *MutationDetector) ConsumesReceiver(c ast.Callee) bool {
	switch c.Kind {
	case ast.CalleeFunc:
		sig := d.reg.Sig(c.Func)
		if sig != nil && sig.HasReceiver {
			return sig.Receiver.Hint == HintOwned
		}
	case ast.CalleeTraitMethod:
		if h, ok := d.reg.TraitHint(c.Trait, c.Method, ast.ReceiverPos); ok {
			return h == HintOwned
		}
	}
	return c.Name == "unwrap" || c.Name == "expect"
}
