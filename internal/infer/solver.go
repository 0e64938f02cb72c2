package infer

import (
	"fmt"
	"strings"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/source"
	"keel/internal/types"
)

// DefaultMaxPasses bounds the fixpoint loop. Four times the height of
// the three-level hint lattice leaves generous room for delegation
// chains; well-formed programs converge far earlier.
const DefaultMaxPasses = 12

// Options tunes one solver run.
type Options struct {
	// MaxPasses is the pass ceiling; DefaultMaxPasses when zero.
	MaxPasses int
	// Heuristic overrides the name-based mutation fallback.
	Heuristic *Heuristic
	// Seed raises registry hints from a previous run before the first
	// pass. Never a correctness input: the solver re-verifies.
	Seed []SigExport
	// OnPass is called after every completed pass with the number of
	// hints that changed. The registry is live solver state; callbacks
	// observe it and must not raise it.
	OnPass func(pass, changed int, reg *Registry)
}

// Result is the converged analysis state the planner consumes.
type Result struct {
	Registry *Registry
	Copies   *CopySet
	Topo     *Topo
	// Hints has the final hint for every binding in the program.
	Hints map[ast.BindingID]Hint
	// Facts are the final-pass usage facts per function.
	Facts map[ast.FuncID]*FuncFacts
	// Detector answers receiver-mode queries against the converged
	// registry for the planner.
	Detector *MutationDetector
	Passes   int
}

// HintFor returns the resolved hint for a binding, HintOwned for
// bindings the program never declared.
func (res *Result) HintFor(b ast.BindingID) Hint {
	if h, ok := res.Hints[b]; ok {
		return h
	}
	return HintOwned
}

// IsCopy answers the copy-type oracle query for the emission layer.
func (res *Result) IsCopy(id types.TypeID) bool {
	return res.Copies.IsCopy(id)
}

// Solve drives whole-program passes over every function body until no
// hint changes or the pass ceiling is hit. Hints only ever get
// stricter, so the finite lattice guarantees termination for
// well-formed programs; the ceiling turns pathological inputs into a
// reported failure instead of a long spin.
func Solve(prog *ast.Program, opts Options, reporter diag.Reporter) (*Result, error) {
	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	heuristic := DefaultHeuristic()
	if opts.Heuristic != nil {
		heuristic = *opts.Heuristic
	}

	copies := NewCopySet(prog.Types)
	copies.Classify()

	reg := NewRegistry(prog)
	reg.Seed(opts.Seed)

	graph := BuildCallGraph(prog)
	topo := ToposortKahn(graph)

	res := &Result{
		Registry: reg,
		Copies:   copies,
		Topo:     topo,
		Hints:    make(map[ast.BindingID]Hint, prog.Bindings.Len()),
		Facts:    make(map[ast.FuncID]*FuncFacts, prog.Funcs.Len()),
	}

	det := NewMutationDetector(reg, heuristic)
	converged := false
	var lastChanged []string

	for pass := 1; pass <= maxPasses; pass++ {
		res.Passes = pass
		changed := 0
		lastChanged = lastChanged[:0]

		for _, fnID := range topo.Order {
			f := prog.Func(fnID)
			if f == nil || f.Body == nil {
				continue
			}
			ff := AnalyzeFunc(prog, f, det)
			res.Facts[fnID] = ff
			if ff.ReturnsReceiver {
				reg.SetReturnsReceiver(fnID)
			}
			sig := reg.Sig(fnID)
			if sig.HasReceiver {
				if raiseSlot(reg, copies, fnID, ast.ReceiverPos, &sig.Receiver, ff) {
					changed++
					lastChanged = append(lastChanged, sig.Qual+"."+sig.Receiver.Name)
				}
			}
			for i := range sig.Params {
				if raiseSlot(reg, copies, fnID, i, &sig.Params[i], ff) {
					changed++
					lastChanged = append(lastChanged, sig.Qual+"."+sig.Params[i].Name)
				}
			}
		}

		if opts.OnPass != nil {
			opts.OnPass(pass, changed, reg)
		}
		if changed == 0 {
			converged = true
			break
		}
	}

	if !converged {
		b := diag.ReportError(reporter, diag.InferNoConvergence, source.Span{},
			fmt.Sprintf("ownership inference still changing after %d passes: %s",
				maxPasses, strings.Join(lastChanged, " -> ")))
		if cycles := CycleSummary(prog, topo); cycles != "" {
			b.WithNote(source.Span{}, "recursive group: "+cycles)
		}
		b.Emit()
		return nil, fmt.Errorf("ownership inference did not converge after %d passes", maxPasses)
	}

	res.Detector = det
	finalize(prog, res, reporter)
	return res, nil
}

// raiseSlot computes the pass proposal for one parameter slot and
// raises the registry. Reports whether the stored hint moved.
func raiseSlot(reg *Registry, copies *CopySet, fn ast.FuncID, pos int, ps *ParamSig, ff *FuncFacts) bool {
	facts := ff.Get(ps.Binding)
	if facts == nil {
		return false
	}
	return reg.Raise(fn, pos, proposeHint(reg, copies, ps, facts))
}

// proposeHint combines direct facts with the strictest requirement of
// every delegated callee position, as currently known.
func proposeHint(reg *Registry, copies *CopySet, ps *ParamSig, facts *Facts) Hint {
	copyType := copies.IsCopy(ps.Type)

	direct := HintOwned
	switch {
	case facts.Returned, facts.Stored:
		// Moving the value out requires owning it, even when it is also
		// mutated first (builder chains mutate and then return the
		// receiver).
		direct = HintOwned
	case facts.Mutated:
		direct = HintExclusiveRef
	case copyType:
		direct = HintOwned
	case facts.BinaryOperand:
		// Operator impls take owned values; borrowing here would force
		// dereferences at every use.
		direct = HintOwned
	case facts.Reads > 0:
		direct = HintSharedRef
	}

	if copyType {
		// Copy-eligible types never pick up reference-ness from
		// delegation; call sites borrow in place when a callee wants a
		// reference.
		return direct
	}
	for _, d := range facts.Delegations {
		if h, ok := reg.CalleeHint(d.Callee, d.Pos); ok {
			direct = direct.Join(h)
		}
	}
	return direct
}

// finalize freezes per-binding hints and reports the delegations that
// never resolved. An unresolved callee degrades to HintOwned, which is
// structurally valid at any call site.
func finalize(prog *ast.Program, res *Result, reporter diag.Reporter) {
	prog.Bindings.Each(func(idx uint32, b *ast.Binding) bool {
		id := ast.BindingID(idx)
		switch b.Kind {
		case ast.BindParam:
			if h, ok := res.Registry.ParamHint(b.Func, b.ParamPos); ok && h.Resolved() {
				res.Hints[id] = h
				return true
			}
			res.Hints[id] = HintOwned
		case ast.BindReceiver:
			if h, ok := res.Registry.ParamHint(b.Func, ast.ReceiverPos); ok && h.Resolved() {
				res.Hints[id] = h
				return true
			}
			res.Hints[id] = HintOwned
		default:
			res.Hints[id] = typeHint(prog.Types, b.Type)
		}
		return true
	})

	warned := make(map[string]bool, 4)
	for _, ff := range res.Facts {
		for _, facts := range ff.ByBinding {
			for _, d := range facts.Delegations {
				if d.Callee.Kind != ast.CalleeUnknown || builtinMethods[d.Callee.Name] {
					continue
				}
				if warned[d.Callee.Name] {
					continue
				}
				warned[d.Callee.Name] = true
				diag.ReportWarning(reporter, diag.InferUnknownCallee, d.Span,
					fmt.Sprintf("signature of %q never resolved; passing owned values", d.Callee.Name)).Emit()
			}
		}
	}
}

// typeHint derives the hint a local binding carries from its declared
// type alone.
func typeHint(in *types.Interner, id types.TypeID) Hint {
	if t, ok := in.Lookup(id); ok {
		switch t.Kind {
		case types.KindRef:
			return HintSharedRef
		case types.KindRefMut:
			return HintExclusiveRef
		}
	}
	return HintOwned
}

// builtinMethods are container and option operations the target
// runtime provides; calls to them are resolved by convention, not
// through the registry.
var builtinMethods = map[string]bool{
	"unwrap": true, "expect": true, "clone": true, "len": true,
	"is_empty": true, "is_some": true, "is_none": true,
	"contains": true, "contains_key": true, "pop": true,
	"push": true, "insert": true, "clear": true, "remove": true,
	"to_string": true,
}
