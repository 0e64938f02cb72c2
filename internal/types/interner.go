package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"keel/internal/source"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Int     TypeID
	Uint    TypeID
	Float   TypeID
	Char    TypeID
	StrView TypeID
	String  TypeID
}

// Field is one struct field.
type Field struct {
	Name string
	Type TypeID
	Span source.Span
}

// StructInfo is the side-table entry for a nominal struct.
type StructInfo struct {
	Name   string
	Fields []Field
	Span   source.Span
}

// FieldByName returns the field with the given name.
func (s *StructInfo) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Variant is one enum variant; Payload is empty for fieldless variants.
type Variant struct {
	Name    string
	Payload []TypeID
	Span    source.Span
}

// EnumInfo is the side-table entry for a nominal enum.
type EnumInfo struct {
	Name     string
	Variants []Variant
	Span     source.Span
}

// VariantByName returns the named variant and its index.
func (e *EnumInfo) VariantByName(name string) (Variant, int, bool) {
	for i, v := range e.Variants {
		if v.Name == name {
			return v, i, true
		}
	}
	return Variant{}, -1, false
}

// Fieldless reports whether no variant carries a payload.
func (e *EnumInfo) Fieldless() bool {
	for _, v := range e.Variants {
		if len(v.Payload) > 0 {
			return false
		}
	}
	return true
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal types (structs, enums) are declared once by name and then
// referenced through the same TypeID everywhere.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	named    map[string]TypeID
	builtins Builtins
	structs  []StructInfo
	enums    []EnumInfo
	tuples   [][]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
		named: make(map[string]TypeID, 16),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.enums = append(in.enums, EnumInfo{})
	in.tuples = append(in.tuples, nil)
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(MakeInt(WidthAny))
	in.builtins.Uint = in.Intern(MakeUint(WidthAny))
	in.builtins.Float = in.Intern(MakeFloat(WidthAny))
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.StrView = in.Intern(Type{Kind: KindStrView})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := makeTypeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[makeTypeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// DeclareStruct registers a nominal struct by name with empty fields.
// Fields are filled later via SetStructFields so that mutually
// referential definitions decode cleanly.
func (in *Interner) DeclareStruct(name string, span source.Span) (TypeID, error) {
	if _, exists := in.named[name]; exists {
		return NoTypeID, fmt.Errorf("type %q declared twice", name)
	}
	declIdx, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		return NoTypeID, fmt.Errorf("struct table overflow: %w", err)
	}
	in.structs = append(in.structs, StructInfo{Name: name, Span: span})
	id := in.internRaw(Type{Kind: KindStruct, Decl: declIdx})
	in.named[name] = id
	return id, nil
}

// SetStructFields fills in a declared struct's fields.
func (in *Interner) SetStructFields(id TypeID, fields []Field) {
	t := in.MustLookup(id)
	if t.Kind != KindStruct {
		panic("types: SetStructFields on non-struct")
	}
	in.structs[t.Decl].Fields = fields
}

// Struct returns the side-table entry for a struct TypeID.
func (in *Interner) Struct(id TypeID) (*StructInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindStruct {
		return nil, false
	}
	return &in.structs[t.Decl], true
}

// DeclareEnum registers a nominal enum by name.
func (in *Interner) DeclareEnum(name string, span source.Span) (TypeID, error) {
	if _, exists := in.named[name]; exists {
		return NoTypeID, fmt.Errorf("type %q declared twice", name)
	}
	declIdx, err := safecast.Conv[uint32](len(in.enums))
	if err != nil {
		return NoTypeID, fmt.Errorf("enum table overflow: %w", err)
	}
	in.enums = append(in.enums, EnumInfo{Name: name, Span: span})
	id := in.internRaw(Type{Kind: KindEnum, Decl: declIdx})
	in.named[name] = id
	return id, nil
}

// SetEnumVariants fills in a declared enum's variants.
func (in *Interner) SetEnumVariants(id TypeID, variants []Variant) {
	t := in.MustLookup(id)
	if t.Kind != KindEnum {
		panic("types: SetEnumVariants on non-enum")
	}
	in.enums[t.Decl].Variants = variants
}

// Enum returns the side-table entry for an enum TypeID.
func (in *Interner) Enum(id TypeID) (*EnumInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindEnum {
		return nil, false
	}
	return &in.enums[t.Decl], true
}

// Named resolves a nominal type by its declared name.
func (in *Interner) Named(name string) (TypeID, bool) {
	id, ok := in.named[name]
	return id, ok
}

// NominalTypes returns all declared struct and enum TypeIDs in
// declaration order.
func (in *Interner) NominalTypes() []TypeID {
	out := make([]TypeID, 0, len(in.named))
	for id, t := range in.types {
		if t.Kind == KindStruct || t.Kind == KindEnum {
			out = append(out, TypeID(uint32(id))) //nolint:gosec // id bounded by intern count
		}
	}
	return out
}

// InternTuple interns a tuple of element types.
func (in *Interner) InternTuple(elems []TypeID) TypeID {
	// Linear scan; tuple arity and count stay tiny in practice.
	for i, existing := range in.tuples {
		if i == 0 || len(existing) != len(elems) {
			continue
		}
		same := true
		for j := range existing {
			if existing[j] != elems[j] {
				same = false
				break
			}
		}
		if same {
			declIdx, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("tuple table overflow: %w", err))
			}
			return in.Intern(Type{Kind: KindTuple, Decl: declIdx})
		}
	}
	declIdx, err := safecast.Conv[uint32](len(in.tuples))
	if err != nil {
		panic(fmt.Errorf("tuple table overflow: %w", err))
	}
	own := make([]TypeID, len(elems))
	copy(own, elems)
	in.tuples = append(in.tuples, own)
	return in.internRaw(Type{Kind: KindTuple, Decl: declIdx})
}

// Tuple returns the element types for a tuple TypeID.
func (in *Interner) Tuple(id TypeID) ([]TypeID, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindTuple {
		return nil, false
	}
	return in.tuples[t.Decl], true
}

// Deref strips one level of reference, returning the target and whether
// id was a reference at all.
func (in *Interner) Deref(id TypeID) (TypeID, bool) {
	t, ok := in.Lookup(id)
	if !ok || !t.IsRef() {
		return id, false
	}
	return t.Elem, true
}

// TypeString renders a human-readable name for diagnostics and plan
// listings.
func (in *Interner) TypeString(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		if t.Width == WidthAny {
			return "int"
		}
		return fmt.Sprintf("i%d", t.Width)
	case KindUint:
		if t.Width == WidthAny {
			return "uint"
		}
		return fmt.Sprintf("u%d", t.Width)
	case KindFloat:
		if t.Width == WidthAny {
			return "float"
		}
		return fmt.Sprintf("f%d", t.Width)
	case KindChar:
		return "char"
	case KindStrView:
		return "str"
	case KindString:
		return "String"
	case KindList:
		return "List<" + in.TypeString(t.Elem) + ">"
	case KindMap:
		return "Map<" + in.TypeString(t.Key) + ", " + in.TypeString(t.Elem) + ">"
	case KindOption:
		return "Option<" + in.TypeString(t.Elem) + ">"
	case KindTuple:
		elems := in.tuples[t.Decl]
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = in.TypeString(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindStruct:
		return in.structs[t.Decl].Name
	case KindEnum:
		return in.enums[t.Decl].Name
	case KindRef:
		return "&" + in.TypeString(t.Elem)
	case KindRefMut:
		return "&mut " + in.TypeString(t.Elem)
	}
	return "<invalid>"
}

type typeKey struct {
	Kind  Kind
	Elem  TypeID
	Key   TypeID
	Width Width
	Decl  uint32
}

func makeTypeKey(t Type) typeKey {
	return typeKey{
		Kind:  t.Kind,
		Elem:  t.Elem,
		Key:   t.Key,
		Width: t.Width,
		Decl:  t.Decl,
	}
}
