package ast

import (
	"keel/internal/source"
	"keel/internal/types"
)

// StmtKind enumerates input statement kinds.
type StmtKind uint8

const (
	// StmtLet represents a local binding (let x = ..., let mut x = ...).
	StmtLet StmtKind = iota
	// StmtAssign represents plain and compound assignment.
	StmtAssign
	// StmtExpr represents an expression evaluated for effect.
	StmtExpr
	// StmtReturn represents return with an optional value.
	StmtReturn
	// StmtIf represents a conditional with optional else branch.
	StmtIf
	// StmtWhile represents a while loop.
	StmtWhile
	// StmtFor represents iteration over a sequence.
	StmtFor
	// StmtMatch represents matching an enum value against its variants.
	StmtMatch
	// StmtBlock represents a nested block scope.
	StmtBlock
)

// String returns a human-readable name for the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "Let"
	case StmtAssign:
		return "Assign"
	case StmtExpr:
		return "Expr"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtFor:
		return "For"
	case StmtMatch:
		return "Match"
	case StmtBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// Stmt is one input statement node.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the payload interface implemented by all statement
// payload structs.
type StmtData interface {
	stmtData()
}

// Block is a statement sequence.
type Block struct {
	Stmts []Stmt
	Span  source.Span
}

// LetData is the payload for StmtLet.
type LetData struct {
	Name    string
	Binding BindingID
	Type    types.TypeID
	Value   *Expr
	Mutable bool
}

// AssignOp enumerates assignment operators.
type AssignOp uint8

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
)

func (op AssignOp) String() string {
	switch op {
	case AssignSet:
		return "="
	case AssignAdd:
		return "+="
	case AssignSub:
		return "-="
	case AssignMul:
		return "*="
	case AssignDiv:
		return "/="
	default:
		return "?"
	}
}

// AssignData is the payload for StmtAssign. Target is a place
// expression: a var ref, field access or index.
type AssignData struct {
	Op     AssignOp
	Target *Expr
	Value  *Expr
}

// ExprStmtData is the payload for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

// ReturnData is the payload for StmtReturn.
type ReturnData struct {
	Value *Expr // nil for bare return
}

// IfData is the payload for StmtIf.
type IfData struct {
	Cond *Expr
	Then Block
	Else *Block // nil when absent
}

// WhileData is the payload for StmtWhile.
type WhileData struct {
	Cond *Expr
	Body Block
}

// ForData is the payload for StmtFor. The loop variable is a fresh
// binding scoped to the body.
type ForData struct {
	Name    string
	Binding BindingID
	Iter    *Expr
	Body    Block
}

// MatchArm is one arm of a match statement. Bindings are fresh locals
// carrying the variant payload components in order.
type MatchArm struct {
	Variant    string
	VariantIdx int
	Bindings   []BindingID
	Body       Block
	Span       source.Span
}

// MatchData is the payload for StmtMatch.
type MatchData struct {
	Scrutinee *Expr
	Arms      []MatchArm
}

// BlockData is the payload for StmtBlock.
type BlockData struct {
	Body Block
}

func (*LetData) stmtData()      {}
func (*AssignData) stmtData()   {}
func (*ExprStmtData) stmtData() {}
func (*ReturnData) stmtData()   {}
func (*IfData) stmtData()       {}
func (*WhileData) stmtData()    {}
func (*ForData) stmtData()      {}
func (*MatchData) stmtData()    {}
func (*BlockData) stmtData()    {}
