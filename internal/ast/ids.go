package ast

type (
	// FuncID identifies a function or method in the program arena.
	FuncID uint32
	// BindingID identifies a parameter, receiver or local binding.
	BindingID uint32
	// TraitID identifies a trait (shared interface) declaration.
	TraitID uint32
)

const (
	NoFuncID    FuncID    = 0
	NoBindingID BindingID = 0
	NoTraitID   TraitID   = 0
)

func (id FuncID) IsValid() bool    { return id != NoFuncID }
func (id BindingID) IsValid() bool { return id != NoBindingID }
func (id TraitID) IsValid() bool   { return id != NoTraitID }
