package ast

import (
	"keel/internal/source"
	"keel/internal/types"
)

// FuncFlags is a bitmask of function properties.
type FuncFlags uint16

const (
	// FuncHasBody is set when a body was provided.
	FuncHasBody FuncFlags = 1 << iota
	// FuncTraitImpl is set when the function implements a trait method.
	FuncTraitImpl
)

// Param describes one declared parameter.
type Param struct {
	Name    string
	Binding BindingID
	Type    types.TypeID
	Span    source.Span
}

// Func is one function or method of the input program.
type Func struct {
	ID          FuncID
	Name        string
	Owner       types.TypeID // enclosing type for methods, NoTypeID for free functions
	Trait       TraitID      // trait whose method this implements
	TraitMethod int          // index into the trait's method list
	Receiver    *Param       // nil for free functions
	Params      []Param
	Result      types.TypeID
	Flags       FuncFlags
	Body        *Block
	Span        source.Span
}

// IsMethod reports whether the function has a receiver.
func (f *Func) IsMethod() bool {
	return f.Receiver != nil
}

// HasBody reports whether a body was provided.
func (f *Func) HasBody() bool {
	return f.Flags&FuncHasBody != 0
}

// ImplementsTrait reports whether this function implements a trait
// method.
func (f *Func) ImplementsTrait() bool {
	return f.Flags&FuncTraitImpl != 0
}

// ParamAt returns the parameter at the delegation position: -1 is the
// receiver, 0.. are declared parameters. Nil when out of range.
func (f *Func) ParamAt(pos int) *Param {
	if pos == ReceiverPos {
		return f.Receiver
	}
	if pos < 0 || pos >= len(f.Params) {
		return nil
	}
	return &f.Params[pos]
}

// Arity returns the number of declared parameters, receiver excluded.
func (f *Func) Arity() int {
	return len(f.Params)
}

// ReceiverPos is the delegation position reserved for method receivers.
const ReceiverPos = -1

// BindingKind classifies where a binding was introduced.
type BindingKind uint8

const (
	BindLocal BindingKind = iota
	BindParam
	BindReceiver
	BindLoop
	BindMatchArm
)

func (k BindingKind) String() string {
	switch k {
	case BindLocal:
		return "local"
	case BindParam:
		return "param"
	case BindReceiver:
		return "receiver"
	case BindLoop:
		return "loop"
	case BindMatchArm:
		return "match-arm"
	default:
		return "unknown"
	}
}

// Binding is the program-wide record for one named value slot.
type Binding struct {
	Name     string
	Type     types.TypeID
	Func     FuncID
	Kind     BindingKind
	ParamPos int // 0-based for params, ReceiverPos for receivers, unused otherwise
	Mutable  bool
	Span     source.Span
}

// TraitParam is a formal parameter of a trait method declaration.
type TraitParam struct {
	Name string
	Type types.TypeID
}

// TraitMethod declares one method of a trait. Implementations match it
// by position, never by parameter name.
type TraitMethod struct {
	Name   string
	Params []TraitParam
	Result types.TypeID
	Span   source.Span
}

// TraitDef is a shared interface declaration.
type TraitDef struct {
	ID      TraitID
	Name    string
	Methods []TraitMethod
	Span    source.Span
}

// MethodIndex returns the index of the named method, or -1.
func (t *TraitDef) MethodIndex(name string) int {
	for i, m := range t.Methods {
		if m.Name == name {
			return i
		}
	}
	return -1
}
