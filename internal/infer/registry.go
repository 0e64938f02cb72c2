package infer

import (
	"sort"

	"keel/internal/ast"
	"keel/internal/types"
)

// ParamSig is one parameter slot of a registered signature.
type ParamSig struct {
	Name    string
	Binding ast.BindingID
	Type    types.TypeID
	Hint    Hint
	// Pinned marks a user-authored reference type in the input. Pinned
	// hints are fixed before the first pass and never change.
	Pinned bool
}

// Signature is the Registry entry for one function or method. Receiver
// occupies the reserved position ast.ReceiverPos; declared parameters
// are addressed by their 0-based position. Trait-method calls are
// bridged by position, never by parameter name.
type Signature struct {
	Func            ast.FuncID
	Qual            string
	HasReceiver     bool
	Receiver        ParamSig
	Params          []ParamSig
	Result          types.TypeID
	ReturnsReceiver bool
}

// At returns the parameter slot at a delegation position, nil when out
// of range.
func (s *Signature) At(pos int) *ParamSig {
	if pos == ast.ReceiverPos {
		if !s.HasReceiver {
			return nil
		}
		return &s.Receiver
	}
	if pos < 0 || pos >= len(s.Params) {
		return nil
	}
	return &s.Params[pos]
}

// Registry is the process-lifetime table of best-known signatures. It
// starts with every unpinned hint at HintOwned and is raised
// monotonically by the solver until no pass changes it.
type Registry struct {
	prog *ast.Program
	sigs []Signature // indexed by FuncID, slot 0 is the sentinel
}

// NewRegistry seeds a registry from the program's declared signatures.
// Parameters with a declared reference type start pinned at the
// matching reference hint; everything else starts at HintOwned.
func NewRegistry(prog *ast.Program) *Registry {
	r := &Registry{
		prog: prog,
		sigs: make([]Signature, prog.Funcs.Len()+1),
	}
	prog.Funcs.Each(func(idx uint32, f *ast.Func) bool {
		sig := Signature{
			Func:   f.ID,
			Qual:   prog.QualName(f.ID),
			Result: f.Result,
		}
		if f.Receiver != nil {
			sig.HasReceiver = true
			sig.Receiver = seedParam(prog.Types, f.Receiver)
		}
		sig.Params = make([]ParamSig, len(f.Params))
		for i := range f.Params {
			sig.Params[i] = seedParam(prog.Types, &f.Params[i])
		}
		r.sigs[idx] = sig
		return true
	})
	return r
}

func seedParam(in *types.Interner, p *ast.Param) ParamSig {
	sig := ParamSig{
		Name:    p.Name,
		Binding: p.Binding,
		Type:    p.Type,
		Hint:    HintOwned,
	}
	if t, ok := in.Lookup(p.Type); ok {
		switch t.Kind {
		case types.KindRef:
			sig.Hint = HintSharedRef
			sig.Pinned = true
		case types.KindRefMut:
			sig.Hint = HintExclusiveRef
			sig.Pinned = true
		}
	}
	return sig
}

// Sig returns the signature for a function, nil for the sentinel.
func (r *Registry) Sig(id ast.FuncID) *Signature {
	if !id.IsValid() || int(id) >= len(r.sigs) {
		return nil
	}
	return &r.sigs[id]
}

// ParamHint returns the current hint at a delegation position.
func (r *Registry) ParamHint(id ast.FuncID, pos int) (Hint, bool) {
	sig := r.Sig(id)
	if sig == nil {
		return HintUnresolved, false
	}
	p := sig.At(pos)
	if p == nil {
		return HintUnresolved, false
	}
	return p.Hint, true
}

// Raise proposes a stricter hint for a parameter position. The stored
// hint becomes the join of old and proposed; pinned slots never move.
// Reports whether the stored hint changed.
func (r *Registry) Raise(id ast.FuncID, pos int, h Hint) bool {
	sig := r.Sig(id)
	if sig == nil {
		return false
	}
	p := sig.At(pos)
	if p == nil || p.Pinned {
		return false
	}
	joined := p.Hint.Join(h)
	if joined == p.Hint {
		return false
	}
	p.Hint = joined
	return true
}

// SetReturnsReceiver records that the method returns its receiver
// (builder chains keep the receiver owned).
func (r *Registry) SetReturnsReceiver(id ast.FuncID) {
	if sig := r.Sig(id); sig != nil {
		sig.ReturnsReceiver = true
	}
}

// TraitHint joins the known implementation hints for a trait method
// position. The strictest implementation wins, so a call through the
// trait identity is always passed strictly enough for every impl.
func (r *Registry) TraitHint(trait ast.TraitID, method, pos int) (Hint, bool) {
	impls := r.prog.TraitImpls(trait)
	td := r.prog.Trait(trait)
	if td == nil || method < 0 || method >= len(td.Methods) {
		return HintUnresolved, false
	}
	joined := HintUnresolved
	for _, implID := range impls {
		f := r.prog.Func(implID)
		if f == nil || f.TraitMethod != method {
			continue
		}
		if h, ok := r.ParamHint(implID, pos); ok {
			joined = joined.Join(h)
		}
	}
	if joined == HintUnresolved {
		return HintUnresolved, false
	}
	return joined, true
}

// CalleeHint resolves the current hint of one callee parameter
// position, consulting impl joins for trait-dispatched calls. The
// second result is false when the callee is unknown to the registry.
func (r *Registry) CalleeHint(c ast.Callee, pos int) (Hint, bool) {
	switch c.Kind {
	case ast.CalleeFunc:
		return r.ParamHint(c.Func, pos)
	case ast.CalleeTraitMethod:
		return r.TraitHint(c.Trait, c.Method, pos)
	}
	return HintUnresolved, false
}

// SigExport is the cacheable shape of one converged signature.
type SigExport struct {
	Qual     string
	Receiver Hint
	Params   []Hint
}

// Export snapshots every signature's hints in qualified-name order for
// the signature disk cache.
func (r *Registry) Export() []SigExport {
	out := make([]SigExport, 0, len(r.sigs)-1)
	for i := 1; i < len(r.sigs); i++ {
		sig := &r.sigs[i]
		exp := SigExport{Qual: sig.Qual, Params: make([]Hint, len(sig.Params))}
		if sig.HasReceiver {
			exp.Receiver = sig.Receiver.Hint
		}
		for j := range sig.Params {
			exp.Params[j] = sig.Params[j].Hint
		}
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Qual < out[j].Qual })
	return out
}

// Seed raises hints from a previous run's export. Arity mismatches and
// unknown names are ignored: the solver re-verifies everything, so a
// stale seed can only cost passes, never correctness.
func (r *Registry) Seed(exports []SigExport) {
	for _, exp := range exports {
		id, ok := r.prog.FuncByQual(exp.Qual)
		if !ok {
			continue
		}
		sig := r.Sig(id)
		if sig == nil {
			continue
		}
		if sig.HasReceiver && exp.Receiver.Resolved() {
			r.Raise(id, ast.ReceiverPos, exp.Receiver)
		}
		if len(exp.Params) != len(sig.Params) {
			continue
		}
		for i, h := range exp.Params {
			if h.Resolved() {
				r.Raise(id, i, h)
			}
		}
	}
}
