package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindUint
	KindFloat
	KindChar
	// KindStrView is a borrowed fixed-size string view (str).
	KindStrView
	// KindString is the owned growable heap string.
	KindString
	KindList
	KindMap
	KindOption
	KindTuple
	KindStruct
	KindEnum
	// KindRef is a shared reference (&T).
	KindRef
	// KindRefMut is an exclusive reference (&mut T).
	KindRefMut
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindStrView:
		return "str"
	case KindString:
		return "String"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindOption:
		return "option"
	case KindTuple:
		return "tuple"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindRef:
		return "ref"
	case KindRefMut:
		return "ref mut"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is a compact descriptor for any supported type. Nominal and
// tuple types carry an index into the interner's side tables in Decl.
type Type struct {
	Kind  Kind
	Elem  TypeID // list element, option inner, map value, ref target
	Key   TypeID // map key
	Width Width  // numeric primitives
	Decl  uint32 // struct/enum/tuple side-table index
}

// IsScalar reports whether the descriptor is a primitive scalar.
func (t Type) IsScalar() bool {
	switch t.Kind {
	case KindUnit, KindBool, KindInt, KindUint, KindFloat, KindChar:
		return true
	}
	return false
}

// IsRef reports whether the descriptor is a reference of either kind.
func (t Type) IsRef() bool {
	return t.Kind == KindRef || t.Kind == KindRefMut
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width (WidthAny for "int").
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeList describes a growable sequence of elem.
func MakeList(elem TypeID) Type {
	return Type{Kind: KindList, Elem: elem}
}

// MakeMap describes a key-value map.
func MakeMap(key, value TypeID) Type {
	return Type{Kind: KindMap, Key: key, Elem: value}
}

// MakeOption describes an optional value.
func MakeOption(inner TypeID) Type {
	return Type{Kind: KindOption, Elem: inner}
}

// MakeRef describes &T or &mut T depending on the mutable flag.
func MakeRef(elem TypeID, mutable bool) Type {
	if mutable {
		return Type{Kind: KindRefMut, Elem: elem}
	}
	return Type{Kind: KindRef, Elem: elem}
}
