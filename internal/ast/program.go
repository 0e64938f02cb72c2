package ast

import (
	"fmt"

	"keel/internal/source"
	"keel/internal/types"
)

// Program is the decoded, type-resolved input the ownership passes
// operate on. All state is per-run; nothing here survives a run.
type Program struct {
	Package  string
	Files    *source.FileSet
	Types    *types.Interner
	Funcs    *Arena[Func]
	Bindings *Arena[Binding]
	Traits   *Arena[TraitDef]

	funcsByQual  map[string]FuncID
	traitsByName map[string]TraitID
	implsByTrait map[TraitID][]FuncID
}

// NewProgram creates an empty program with fresh arenas.
func NewProgram() *Program {
	return &Program{
		Files:        source.NewFileSet(),
		Types:        types.NewInterner(),
		Funcs:        NewArena[Func](16),
		Bindings:     NewArena[Binding](64),
		Traits:       NewArena[TraitDef](4),
		funcsByQual:  make(map[string]FuncID),
		traitsByName: make(map[string]TraitID),
		implsByTrait: make(map[TraitID][]FuncID),
	}
}

// Func returns the function for an ID, nil for the sentinel.
func (p *Program) Func(id FuncID) *Func {
	return p.Funcs.Get(uint32(id))
}

// Binding returns the binding record for an ID, nil for the sentinel.
func (p *Program) Binding(id BindingID) *Binding {
	return p.Bindings.Get(uint32(id))
}

// Trait returns the trait for an ID, nil for the sentinel.
func (p *Program) Trait(id TraitID) *TraitDef {
	return p.Traits.Get(uint32(id))
}

// AddFunc stores a function, indexing it by qualified name. The ID is
// written back into the stored record.
func (p *Program) AddFunc(f Func) (FuncID, error) {
	qual := qualName(p.Types, f.Owner, f.Name)
	if _, exists := p.funcsByQual[qual]; exists {
		return NoFuncID, fmt.Errorf("function %q defined twice", qual)
	}
	id := FuncID(p.Funcs.Allocate(f))
	stored := p.Funcs.Get(uint32(id))
	stored.ID = id
	p.funcsByQual[qual] = id
	if f.Trait.IsValid() {
		p.implsByTrait[f.Trait] = append(p.implsByTrait[f.Trait], id)
	}
	return id, nil
}

// AddBinding stores a binding record.
func (p *Program) AddBinding(b Binding) BindingID {
	return BindingID(p.Bindings.Allocate(b))
}

// AddTrait stores a trait definition, indexing it by name.
func (p *Program) AddTrait(t TraitDef) (TraitID, error) {
	if _, exists := p.traitsByName[t.Name]; exists {
		return NoTraitID, fmt.Errorf("trait %q defined twice", t.Name)
	}
	id := TraitID(p.Traits.Allocate(t))
	stored := p.Traits.Get(uint32(id))
	stored.ID = id
	p.traitsByName[t.Name] = id
	return id, nil
}

// FuncByQual resolves a function by its qualified name ("name" or
// "Owner::name").
func (p *Program) FuncByQual(qual string) (FuncID, bool) {
	id, ok := p.funcsByQual[qual]
	return id, ok
}

// TraitByName resolves a trait by name.
func (p *Program) TraitByName(name string) (TraitID, bool) {
	id, ok := p.traitsByName[name]
	return id, ok
}

// TraitImpls returns the functions implementing methods of the trait,
// in definition order.
func (p *Program) TraitImpls(trait TraitID) []FuncID {
	return p.implsByTrait[trait]
}

// QualName renders the qualified name of a function.
func (p *Program) QualName(id FuncID) string {
	f := p.Func(id)
	if f == nil {
		return "<invalid>"
	}
	return qualName(p.Types, f.Owner, f.Name)
}

func qualName(in *types.Interner, owner types.TypeID, name string) string {
	if owner == types.NoTypeID {
		return name
	}
	return in.TypeString(owner) + "::" + name
}
