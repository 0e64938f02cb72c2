package ast

import (
	"keel/internal/source"
	"keel/internal/types"
)

// ExprKind enumerates input expression kinds. The input arrives parsed
// and type-resolved; the kinds map one-to-one onto what the surface
// grammar can produce.
type ExprKind uint8

const (
	// ExprLiteral represents literals (int, float, bool, string, char, unit).
	ExprLiteral ExprKind = iota
	// ExprVarRef represents a reference to a named binding.
	ExprVarRef
	// ExprUnary represents unary operators (-, !).
	ExprUnary
	// ExprBinary represents binary operators (+, -, ==, &&, ...).
	ExprBinary
	// ExprCall represents a free-function call.
	ExprCall
	// ExprMethodCall represents a method call with an explicit receiver.
	ExprMethodCall
	// ExprFieldAccess represents field access (expr.field).
	ExprFieldAccess
	// ExprIndex represents indexing (expr[index]).
	ExprIndex
	// ExprStructLit represents struct literals (Type { field: value, ... }).
	ExprStructLit
	// ExprVariantCtor represents enum variant construction (Enum::Variant(args)).
	ExprVariantCtor
	// ExprListLit represents list literals ([a, b, c]).
	ExprListLit
	// ExprInterp represents string interpolation; it always produces a
	// fresh owned string with no stable address.
	ExprInterp
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprVarRef:
		return "VarRef"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprCall:
		return "Call"
	case ExprMethodCall:
		return "MethodCall"
	case ExprFieldAccess:
		return "FieldAccess"
	case ExprIndex:
		return "Index"
	case ExprStructLit:
		return "StructLit"
	case ExprVariantCtor:
		return "VariantCtor"
	case ExprListLit:
		return "ListLit"
	case ExprInterp:
		return "Interp"
	default:
		return "Unknown"
	}
}

// Expr is one input expression node. Type is filled during decode for
// every node; the ownership passes never re-derive it.
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Data ExprData
}

// ExprData is the payload interface implemented by all expression
// payload structs.
type ExprData interface {
	exprData()
}

// LitKind enumerates literal categories.
type LitKind uint8

const (
	LitUnit LitKind = iota
	LitBool
	LitInt
	LitFloat
	LitStr
	LitChar
)

func (k LitKind) String() string {
	switch k {
	case LitUnit:
		return "unit"
	case LitBool:
		return "bool"
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitStr:
		return "str"
	case LitChar:
		return "char"
	default:
		return "unknown"
	}
}

// LiteralData is the payload for ExprLiteral.
type LiteralData struct {
	Lit   LitKind
	Bool  bool
	Int   int64
	Float float64
	Str   string // NFC-normalized during decode
	Char  rune
}

// VarRefData is the payload for ExprVarRef.
type VarRefData struct {
	Name    string
	Binding BindingID
}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	default:
		return "?"
	}
}

// UnaryData is the payload for ExprUnary.
type UnaryData struct {
	Op      UnaryOp
	Operand *Expr
}

// BinOp enumerates binary operators.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinRem:
		return "%"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	case BinAnd:
		return "&&"
	case BinOr:
		return "||"
	default:
		return "?"
	}
}

// IsComparison reports whether the operator compares its operands
// rather than combining them.
func (op BinOp) IsComparison() bool {
	switch op {
	case BinEq, BinNe, BinLt, BinLe, BinGt, BinGe:
		return true
	}
	return false
}

// IsEquality reports whether the operator is == or !=.
func (op BinOp) IsEquality() bool {
	return op == BinEq || op == BinNe
}

// BinaryData is the payload for ExprBinary.
type BinaryData struct {
	Op    BinOp
	Left  *Expr
	Right *Expr
}

// CalleeKind distinguishes how a call target was resolved.
type CalleeKind uint8

const (
	// CalleeUnknown is a call into code outside the analyzed program.
	CalleeUnknown CalleeKind = iota
	// CalleeFunc is a call resolved to a function or inherent method.
	CalleeFunc
	// CalleeTraitMethod is a call dispatched through a trait identity.
	CalleeTraitMethod
)

// Callee captures the resolved identity of a call target. Name is
// always present for diagnostics and heuristics.
type Callee struct {
	Kind   CalleeKind
	Name   string
	Func   FuncID  // valid when Kind == CalleeFunc
	Trait  TraitID // valid when Kind == CalleeTraitMethod
	Method int     // trait method index when Kind == CalleeTraitMethod
}

// CallData is the payload for ExprCall.
type CallData struct {
	Callee Callee
	Args   []*Expr
}

// MethodCallData is the payload for ExprMethodCall. Builtin container
// and option methods stay CalleeUnknown with a recognizable name.
type MethodCallData struct {
	Recv   *Expr
	Callee Callee
	Args   []*Expr
}

// FieldAccessData is the payload for ExprFieldAccess.
type FieldAccessData struct {
	Object   *Expr
	Field    string
	FieldIdx int
}

// IndexData is the payload for ExprIndex.
type IndexData struct {
	Seq   *Expr
	Index *Expr
}

// FieldInit is one field initializer inside a struct literal.
type FieldInit struct {
	Name     string
	FieldIdx int
	Value    *Expr
	Span     source.Span
}

// StructLitData is the payload for ExprStructLit.
type StructLitData struct {
	Type   types.TypeID
	Fields []FieldInit
}

// VariantCtorData is the payload for ExprVariantCtor.
type VariantCtorData struct {
	Enum       types.TypeID
	Variant    string
	VariantIdx int
	Args       []*Expr
}

// ListLitData is the payload for ExprListLit.
type ListLitData struct {
	Elems []*Expr
}

// InterpPart is one segment of an interpolated string: either a literal
// chunk or an embedded expression.
type InterpPart struct {
	Lit  string
	Expr *Expr // nil for literal chunks
}

// InterpData is the payload for ExprInterp.
type InterpData struct {
	Parts []InterpPart
}

func (*LiteralData) exprData()     {}
func (*VarRefData) exprData()      {}
func (*UnaryData) exprData()       {}
func (*BinaryData) exprData()      {}
func (*CallData) exprData()        {}
func (*MethodCallData) exprData()  {}
func (*FieldAccessData) exprData() {}
func (*IndexData) exprData()       {}
func (*StructLitData) exprData()   {}
func (*VariantCtorData) exprData() {}
func (*ListLitData) exprData()     {}
func (*InterpData) exprData()      {}
