package infer

import (
	"testing"

	"keel/internal/ast"
	"keel/internal/testkit"
)

func analyze(t *testing.T, b *testkit.B, fn ast.FuncID) *FuncFacts {
	t.Helper()
	reg := NewRegistry(b.Prog)
	det := NewMutationDetector(reg, DefaultHeuristic())
	f := b.Prog.Func(fn)
	if f == nil {
		t.Fatalf("unknown func %d", fn)
	}
	return AnalyzeFunc(b.Prog, f, det)
}

func TestAssignmentMarksRootMutated(t *testing.T) {
	b := testkit.New()
	box := b.Struct("Box", field("vals", b.List(b.T.Int)))
	f := b.Func("poke")
	p := f.Param("box", box)
	i := f.Param("i", b.T.Int)
	fn := f.Body(
		b.Assign(b.IndexOf(b.FieldOf(b.Var(p), "vals"), b.Var(i)), b.IntLit(0)),
	)

	ff := analyze(t, b, fn)
	if !ff.Get(p).Mutated {
		t.Error("assignment through field+index did not mutate the root")
	}
	facts := ff.Get(i)
	if facts.Mutated {
		t.Error("index operand marked mutated")
	}
	if facts.Reads == 0 {
		t.Error("index operand not counted as read")
	}
}

func TestDelegationRecordsCalleePosition(t *testing.T) {
	b := testkit.New()
	callee := b.Func("take")
	callee.Param("a", b.T.String)
	cp := callee.Param("b", b.T.String)
	callee.Body(b.Ret(b.Var(cp)))

	caller := b.Func("give")
	x := caller.Param("x", b.T.String)
	fn := caller.Body(
		b.ExprStmt(b.Call(callee.ID(), b.T.Unit, b.StrLit("lead"), b.Var(x))),
	)

	ff := analyze(t, b, fn)
	dels := ff.Get(x).Delegations
	if len(dels) != 1 {
		t.Fatalf("got %d delegations, want 1", len(dels))
	}
	if dels[0].Pos != 1 {
		t.Errorf("delegation position = %d, want 1", dels[0].Pos)
	}
	if dels[0].Callee.Func != callee.ID() {
		t.Errorf("delegation callee = %d, want %d", dels[0].Callee.Func, callee.ID())
	}
}

func TestReceiverDelegationUsesReservedPosition(t *testing.T) {
	b := testkit.New()
	f := b.Func("grow")
	xs := f.Param("xs", b.List(b.T.Int))
	fn := f.Body(
		b.ExprStmt(b.Builtin(b.Var(xs), "push", b.T.Unit, b.IntLit(1))),
	)

	ff := analyze(t, b, fn)
	facts := ff.Get(xs)
	if len(facts.Delegations) != 1 || facts.Delegations[0].Pos != ast.ReceiverPos {
		t.Fatalf("receiver delegation = %+v, want one at position %d", facts.Delegations, ast.ReceiverPos)
	}
	if !facts.Mutated {
		t.Error("push receiver not marked mutated by the heuristic")
	}
}

func TestBinaryOperandAndReturnFacts(t *testing.T) {
	b := testkit.New()
	f := b.Func("calc").Returns(b.T.Int)
	n := f.Param("n", b.T.Int)
	m := f.Param("m", b.T.Int)
	fn := f.Body(
		b.If(b.Bin(ast.BinLt, b.T.Bool, b.Var(n), b.Var(m)),
			b.Ret(b.Var(m)),
		),
		b.Ret(b.Var(n)),
	)

	ff := analyze(t, b, fn)
	if !ff.Get(n).BinaryOperand || !ff.Get(m).BinaryOperand {
		t.Error("comparison operands not flagged")
	}
	if !ff.Get(n).Returned || !ff.Get(m).Returned {
		t.Error("returned bindings not flagged")
	}
}

func TestStoredFacts(t *testing.T) {
	b := testkit.New()
	pair := b.Struct("Pair", field("name", b.T.String), field("tag", b.T.String))
	f := b.Func("make").Returns(pair)
	name := f.Param("name", b.T.String)
	tag := f.Param("tag", b.T.String)
	out := f.Local("out", pair)
	fn := f.Body(
		b.Let(out, b.StructLit(pair,
			testkit.Init("name", b.Var(name)),
			testkit.Init("tag", b.Var(tag)),
		)),
		b.Ret(b.Var(out)),
	)

	ff := analyze(t, b, fn)
	if !ff.Get(name).Stored || !ff.Get(tag).Stored {
		t.Error("struct literal initializers not flagged as stored")
	}
	if ff.Get(name).Returned {
		t.Error("stored binding wrongly flagged as returned")
	}
}
