package infer

import (
	"keel/internal/ast"
	"keel/internal/source"
)

// Delegation records one binding flowing unchanged into a callee
// argument position. Pos is ast.ReceiverPos when the binding is the
// receiver of a method call.
type Delegation struct {
	Callee ast.Callee
	Pos    int
	Span   source.Span
	Seq    int
}

// Facts are the per-binding usage observations from one walk of one
// function body. They carry no cross-function knowledge; the solver
// combines them with Registry lookups per delegation.
type Facts struct {
	Binding ast.BindingID
	Reads   int
	Mutated bool
	MutSpan source.Span
	// Delegations lists every argument position the binding is passed
	// into, receiver positions included.
	Delegations []Delegation
	// Stored is set when the binding moves into a struct literal field,
	// an enum variant constructor, a list literal, or a storing
	// container method.
	Stored bool
	// Returned is set when the binding itself is the returned value.
	Returned bool
	// BinaryOperand is set when the binding feeds an arithmetic or
	// comparison operator directly. Operator implementations take owned
	// values, so this biases copy-eligible bindings toward HintOwned.
	BinaryOperand bool
	// LastUseSeq is the sequence number of the last observed use, for
	// move-then-used-again planning.
	LastUseSeq int
}

// FuncFacts bundles the facts of every tracked binding in one body.
type FuncFacts struct {
	Func ast.FuncID
	// ByBinding has an entry for every parameter and receiver, plus
	// every local that is used at all.
	ByBinding map[ast.BindingID]*Facts
	// ReturnsReceiver is set for methods whose return value is the
	// receiver itself (builder chains).
	ReturnsReceiver bool
}

// Get returns the facts for a binding, nil when it was never seen.
func (ff *FuncFacts) Get(b ast.BindingID) *Facts {
	return ff.ByBinding[b]
}

// storingMethods are builtin container methods that take ownership of
// their value argument.
var storingMethods = map[string]bool{
	"push":   true,
	"insert": true,
}

type analyzer struct {
	prog *ast.Program
	det  *MutationDetector
	out  *FuncFacts
	recv ast.BindingID
	seq  int
}

// AnalyzeFunc walks one function body against the current registry
// state and produces usage facts. It never writes the registry.
func AnalyzeFunc(prog *ast.Program, f *ast.Func, det *MutationDetector) *FuncFacts {
	a := &analyzer{
		prog: prog,
		det:  det,
		out: &FuncFacts{
			Func:      f.ID,
			ByBinding: make(map[ast.BindingID]*Facts, len(f.Params)+4),
		},
	}
	if f.Receiver != nil {
		a.recv = f.Receiver.Binding
		a.facts(f.Receiver.Binding)
	}
	for i := range f.Params {
		a.facts(f.Params[i].Binding)
	}
	if f.Body != nil {
		a.block(f.Body)
	}
	return a.out
}

func (a *analyzer) facts(b ast.BindingID) *Facts {
	f, ok := a.out.ByBinding[b]
	if !ok {
		f = &Facts{Binding: b}
		a.out.ByBinding[b] = f
	}
	return f
}

func (a *analyzer) next() int {
	a.seq++
	return a.seq
}

func (a *analyzer) touch(b ast.BindingID, seq int) *Facts {
	f := a.facts(b)
	if seq > f.LastUseSeq {
		f.LastUseSeq = seq
	}
	return f
}

func (a *analyzer) block(blk *ast.Block) {
	for i := range blk.Stmts {
		a.stmt(&blk.Stmts[i])
	}
}

func (a *analyzer) stmt(st *ast.Stmt) {
	switch d := st.Data.(type) {
	case *ast.LetData:
		a.expr(d.Value)
	case *ast.AssignData:
		if root, ok := placeRoot(d.Target); ok {
			f := a.touch(root, a.next())
			if !f.Mutated {
				f.Mutated = true
				f.MutSpan = st.Span
			}
		}
		a.placeReads(d.Target)
		a.expr(d.Value)
	case *ast.ExprStmtData:
		a.expr(d.Expr)
	case *ast.ReturnData:
		if d.Value == nil {
			return
		}
		if v, ok := d.Value.Data.(*ast.VarRefData); ok && d.Value.Kind == ast.ExprVarRef {
			f := a.touch(v.Binding, a.next())
			f.Reads++
			f.Returned = true
			if v.Binding == a.recv && a.recv.IsValid() {
				a.out.ReturnsReceiver = true
			}
			return
		}
		a.expr(d.Value)
	case *ast.IfData:
		a.expr(d.Cond)
		a.block(&d.Then)
		if d.Else != nil {
			a.block(d.Else)
		}
	case *ast.WhileData:
		a.expr(d.Cond)
		a.block(&d.Body)
	case *ast.ForData:
		a.expr(d.Iter)
		a.block(&d.Body)
	case *ast.MatchData:
		a.expr(d.Scrutinee)
		for i := range d.Arms {
			a.block(&d.Arms[i].Body)
		}
	case *ast.BlockData:
		a.block(&d.Body)
	}
}

// placeRoot walks a place expression (var, field chain, index chain)
// down to its root binding.
func placeRoot(e *ast.Expr) (ast.BindingID, bool) {
	for e != nil {
		switch d := e.Data.(type) {
		case *ast.VarRefData:
			return d.Binding, true
		case *ast.FieldAccessData:
			e = d.Object
		case *ast.IndexData:
			e = d.Seq
		default:
			return ast.NoBindingID, false
		}
	}
	return ast.NoBindingID, false
}

// placeReads records reads for the non-root parts of a place
// expression (index expressions and the like).
func (a *analyzer) placeReads(e *ast.Expr) {
	for e != nil {
		switch d := e.Data.(type) {
		case *ast.VarRefData:
			return
		case *ast.FieldAccessData:
			e = d.Object
		case *ast.IndexData:
			a.expr(d.Index)
			e = d.Seq
		default:
			a.expr(e)
			return
		}
	}
}

func (a *analyzer) expr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch d := e.Data.(type) {
	case *ast.LiteralData:
	case *ast.VarRefData:
		f := a.touch(d.Binding, a.next())
		f.Reads++
	case *ast.UnaryData:
		a.expr(d.Operand)
	case *ast.BinaryData:
		a.binaryOperand(d.Left)
		a.binaryOperand(d.Right)
	case *ast.CallData:
		for pos, arg := range d.Args {
			a.argument(d.Callee, pos, arg)
		}
	case *ast.MethodCallData:
		a.receiver(d, e)
		for pos, arg := range d.Args {
			a.argument(d.Callee, pos, arg)
		}
	case *ast.FieldAccessData:
		a.expr(d.Object)
	case *ast.IndexData:
		a.expr(d.Seq)
		a.expr(d.Index)
	case *ast.StructLitData:
		for i := range d.Fields {
			a.stored(d.Fields[i].Value)
		}
	case *ast.VariantCtorData:
		for _, arg := range d.Args {
			a.stored(arg)
		}
	case *ast.ListLitData:
		for _, el := range d.Elems {
			a.stored(el)
		}
	case *ast.InterpData:
		for i := range d.Parts {
			a.expr(d.Parts[i].Expr)
		}
	}
}

func (a *analyzer) binaryOperand(e *ast.Expr) {
	if v, ok := varRef(e); ok {
		f := a.touch(v.Binding, a.next())
		f.Reads++
		f.BinaryOperand = true
		return
	}
	a.expr(e)
}

// argument records a delegation fact when the argument is a plain
// binding reference, otherwise walks it as an ordinary expression.
func (a *analyzer) argument(callee ast.Callee, pos int, arg *ast.Expr) {
	if v, ok := varRef(arg); ok {
		seq := a.next()
		f := a.touch(v.Binding, seq)
		f.Reads++
		f.Delegations = append(f.Delegations, Delegation{
			Callee: callee,
			Pos:    pos,
			Span:   arg.Span,
			Seq:    seq,
		})
		if callee.Kind == ast.CalleeUnknown && storingMethods[callee.Name] {
			f.Stored = true
		}
		return
	}
	a.expr(arg)
}

// stored records a binding moving into an aggregate or container
// literal.
func (a *analyzer) stored(e *ast.Expr) {
	if v, ok := varRef(e); ok {
		f := a.touch(v.Binding, a.next())
		f.Reads++
		f.Stored = true
		return
	}
	a.expr(e)
}

// receiver records delegation plus mutation facts for a method call's
// receiver chain.
func (a *analyzer) receiver(d *ast.MethodCallData, call *ast.Expr) {
	if v, ok := varRef(d.Recv); ok {
		seq := a.next()
		f := a.touch(v.Binding, seq)
		f.Reads++
		f.Delegations = append(f.Delegations, Delegation{
			Callee: d.Callee,
			Pos:    ast.ReceiverPos,
			Span:   d.Recv.Span,
			Seq:    seq,
		})
		if a.det.MethodMutates(d.Callee) && !f.Mutated {
			f.Mutated = true
			f.MutSpan = call.Span
		}
		return
	}
	// A mutating method on a field still mutates the root binding.
	if root, ok := placeRoot(d.Recv); ok && a.det.MethodMutates(d.Callee) {
		f := a.touch(root, a.next())
		if !f.Mutated {
			f.Mutated = true
			f.MutSpan = call.Span
		}
	}
	a.expr(d.Recv)
}

func varRef(e *ast.Expr) (*ast.VarRefData, bool) {
	if e == nil || e.Kind != ast.ExprVarRef {
		return nil, false
	}
	v, ok := e.Data.(*ast.VarRefData)
	return v, ok
}
