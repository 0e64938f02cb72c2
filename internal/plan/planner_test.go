package plan

import (
	"testing"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/infer"
	"keel/internal/testkit"
	"keel/internal/types"
)

func plan(t *testing.T, b *testkit.B) (*Plan, *infer.Result) {
	t.Helper()
	bag := diag.NewBag(64)
	res, err := infer.Solve(b.Prog, infer.Options{}, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	return Build(b.Prog, res), res
}

func TestMutatingCalleeGetsExclusiveBorrow(t *testing.T) {
	b := testkit.New()
	inc := b.Func("increment")
	x := inc.Param("x", b.T.Int)
	inc.Body(
		b.Assign(b.Var(x), b.Bin(ast.BinAdd, b.T.Int, b.Var(x), b.IntLit(1))),
	)

	caller := b.Func("main")
	counter := caller.Local("counter", b.T.Int)
	arg := b.Var(counter)
	caller.Body(
		b.Let(counter, b.IntLit(0)),
		b.ExprStmt(b.Call(inc.ID(), b.T.Unit, arg)),
	)

	p, res := plan(t, b)
	if got := res.HintFor(x); got != infer.HintExclusiveRef {
		t.Fatalf("callee param hint = %v, want %v", got, infer.HintExclusiveRef)
	}
	if got := p.TransformFor(arg); got != ExclusiveBorrow {
		t.Fatalf("call arg transform = %v, want %v", got, ExclusiveBorrow)
	}
}

func TestConsumingAccessorThroughSharedReceiverDuplicates(t *testing.T) {
	b := testkit.New()
	listT := b.List(b.T.Int)
	optT := b.Option(listT)
	node := b.Struct("Node", field("items", optT))

	m := b.Method(node, "take_items").Returns(listT)
	recv := m.Recv("self", node)
	fieldExpr := b.FieldOf(b.Var(recv), "items")
	xs := m.Local("xs", listT)
	m.Body(
		b.Let(xs, b.Builtin(fieldExpr, "unwrap", listT)),
		b.Ret(b.Var(xs)),
	)

	p, res := plan(t, b)
	if got := res.HintFor(recv); got != infer.HintSharedRef {
		t.Fatalf("receiver hint = %v, want %v", got, infer.HintSharedRef)
	}
	if got := p.TransformFor(fieldExpr); got != Duplicate {
		t.Fatalf("field transform = %v, want %v", got, Duplicate)
	}
	if got := p.ReasonFor(fieldExpr); got != ReasonConsumingThroughRef {
		t.Fatalf("duplicate reason = %v, want %v", got, ReasonConsumingThroughRef)
	}
}

func TestEqualityDereferencesExactlyOneSide(t *testing.T) {
	b := testkit.New()
	refStr := b.Ref(b.T.String)

	f := b.Func("same")
	pa := f.Param("a", refStr)
	pb := f.Param("b", b.T.String)
	left, right := b.Var(pa), b.Var(pb)
	f.Body(
		b.If(b.Eq(left, right), b.Ret(nil)),
	)

	g := b.Func("both_refs")
	ga := g.Param("a", refStr)
	gb := g.Param("b", refStr)
	gleft, gright := b.Var(ga), b.Var(gb)
	g.Body(
		b.If(b.Eq(gleft, gright), b.Ret(nil)),
	)

	p, _ := plan(t, b)
	if got := p.TransformFor(left); got != Dereference {
		t.Errorf("referenced side transform = %v, want %v", got, Dereference)
	}
	if got := p.TransformFor(right); got != OwnedMove {
		t.Errorf("owned side transform = %v, want %v", got, OwnedMove)
	}
	// When the sides agree, nothing is dereferenced.
	if got := p.TransformFor(gleft); got != OwnedMove {
		t.Errorf("matched left transform = %v, want %v", got, OwnedMove)
	}
	if got := p.TransformFor(gright); got != OwnedMove {
		t.Errorf("matched right transform = %v, want %v", got, OwnedMove)
	}
}

func TestComputedTempIntoRefPositionBorrows(t *testing.T) {
	b := testkit.New()

	peek := b.Func("peek")
	px := peek.Param("x", b.Ref(b.T.Int))
	tmp := peek.Local("t", b.T.String)
	peek.Body(b.Let(tmp, b.Interp("x = ", b.Var(px))))

	bump := b.Func("bump")
	bx := bump.Param("x", b.RefMut(b.T.Int))
	bump.Body(b.Assign(b.Var(bx), b.IntLit(0)))

	f := b.Func("main")
	sum := b.Bin(ast.BinAdd, b.T.Int, b.IntLit(1), b.IntLit(2))
	neg := b.Un(ast.UnaryNeg, b.T.Int, b.IntLit(3))
	mutArg := b.Bin(ast.BinMul, b.T.Int, b.IntLit(2), b.IntLit(2))
	f.Body(
		b.ExprStmt(b.Call(peek.ID(), b.T.Unit, sum)),
		b.ExprStmt(b.Call(peek.ID(), b.T.Unit, neg)),
		b.ExprStmt(b.Call(bump.ID(), b.T.Unit, mutArg)),
	)

	p, _ := plan(t, b)
	if got := p.TransformFor(sum); got != SharedBorrow {
		t.Errorf("binary temp transform = %v, want %v", got, SharedBorrow)
	}
	if got := p.TransformFor(neg); got != SharedBorrow {
		t.Errorf("unary temp transform = %v, want %v", got, SharedBorrow)
	}
	if got := p.TransformFor(mutArg); got != ExclusiveBorrow {
		t.Errorf("binary temp into &mut transform = %v, want %v", got, ExclusiveBorrow)
	}
}

func TestIndexedAccessDecisions(t *testing.T) {
	b := testkit.New()
	strList := b.List(b.T.String)
	intList := b.List(b.T.Int)
	box := b.Struct("Box", field("name", b.T.String))
	boxList := b.List(box)

	f := b.Func("pick").Returns(b.T.String)
	ss := f.Param("ss", strList)
	ns := f.Param("ns", intList)
	bs := f.Param("bs", boxList)
	out := f.Local("out", b.T.String)
	n := f.Local("n", b.T.Int)
	nameOf := f.Local("label", b.T.String)

	extract := b.IndexOf(b.Var(ss), b.IntLit(0))
	copyElem := b.IndexOf(b.Var(ns), b.IntLit(0))
	fieldRead := b.IndexOf(b.Var(bs), b.IntLit(0))
	f.Body(
		b.Let(out, extract),
		b.Let(n, copyElem),
		b.Let(nameOf, b.Interp("name: ", b.FieldOf(fieldRead, "name"))),
		b.Ret(b.Var(out)),
	)

	p, _ := plan(t, b)
	if got := p.TransformFor(extract); got != Duplicate {
		t.Errorf("non-copy extract transform = %v, want %v", got, Duplicate)
	}
	if got := p.ReasonFor(extract); got != ReasonElementExtract {
		t.Errorf("extract reason = %v, want %v", got, ReasonElementExtract)
	}
	if got := p.TransformFor(copyElem); got != OwnedMove {
		t.Errorf("copy element transform = %v, want %v", got, OwnedMove)
	}
	// Read-only field use borrows the element; the single-assignment
	// plan map makes a stacked borrow+clone structurally impossible.
	if got := p.TransformFor(fieldRead); got != SharedBorrow {
		t.Errorf("field-read element transform = %v, want %v", got, SharedBorrow)
	}
}

func TestEphemeralHoistsAtAnyDepth(t *testing.T) {
	b := testkit.New()
	refStr := b.Ref(b.T.String)

	g := b.Func("shout")
	gs := g.Param("s", refStr)
	tmp := g.Local("t", b.T.String)
	g.Body(b.Let(tmp, b.Interp("msg: ", b.Var(gs))))

	f := b.Func("main")
	name := f.Local("name", b.T.String)
	greeting := b.Interp("hello, ", b.Var(name))
	callStmt := b.ExprStmt(b.Call(g.ID(), b.T.Unit, greeting))
	f.Body(
		b.Let(name, b.Interp("world")),
		callStmt,
	)

	p, _ := plan(t, b)
	if got := p.TransformFor(greeting); got != HoistBorrow {
		t.Fatalf("ephemeral arg transform = %v, want %v", got, HoistBorrow)
	}
	hoists := p.Hoists(stmtPtr(b, f.ID(), 1))
	if len(hoists) != 1 {
		t.Fatalf("got %d hoists on the call statement, want 1", len(hoists))
	}
	if hoists[0].Value != greeting {
		t.Error("hoist bound to the wrong expression")
	}
	if p.HoistName(greeting) == "" {
		t.Error("hoisted expression has no fresh name")
	}
}

func TestStringLiteralIntoOwnedStringRefConverts(t *testing.T) {
	b := testkit.New()
	refStr := b.Ref(b.T.String)

	g := b.Func("store")
	gs := g.Param("s", refStr)
	tmp := g.Local("t", b.T.String)
	g.Body(b.Let(tmp, b.Interp("got ", b.Var(gs))))

	f := b.Func("main")
	lit := b.StrLit("fixed")
	f.Body(
		b.ExprStmt(b.Call(g.ID(), b.T.Unit, lit)),
	)

	p, _ := plan(t, b)
	if got := p.TransformFor(lit); got != OwnedConv {
		t.Fatalf("literal transform = %v, want %v", got, OwnedConv)
	}
}

func TestMovedBindingUsedLaterDuplicates(t *testing.T) {
	b := testkit.New()
	strList := b.List(b.T.String)

	take := b.Func("take")
	ts := take.Param("s", b.T.String)
	sink := take.Local("sink", strList)
	take.Body(
		b.Let(sink, b.ListOf(b.T.String, b.Var(ts))),
	)

	f := b.Func("main")
	a := f.Local("a", b.T.String)
	first := b.Var(a)
	second := b.Var(a)
	f.Body(
		b.Let(a, b.Interp("payload")),
		b.ExprStmt(b.Call(take.ID(), b.T.Unit, first)),
		b.ExprStmt(b.Call(take.ID(), b.T.Unit, second)),
	)

	p, _ := plan(t, b)
	if got := p.TransformFor(first); got != Duplicate {
		t.Fatalf("first move transform = %v, want %v", got, Duplicate)
	}
	if got := p.ReasonFor(first); got != ReasonMovedButUsedLater {
		t.Fatalf("first move reason = %v, want %v", got, ReasonMovedButUsedLater)
	}
	if got := p.TransformFor(second); got != OwnedMove {
		t.Fatalf("last move transform = %v, want %v", got, OwnedMove)
	}
}

func TestMoveInsideLoopAlwaysDuplicates(t *testing.T) {
	b := testkit.New()
	strList := b.List(b.T.String)

	take := b.Func("take")
	ts := take.Param("s", b.T.String)
	sink := take.Local("sink", strList)
	take.Body(
		b.Let(sink, b.ListOf(b.T.String, b.Var(ts))),
	)

	f := b.Func("main")
	a := f.Local("a", b.T.String)
	moved := b.Var(a)
	f.Body(
		b.Let(a, b.Interp("payload")),
		b.While(b.BoolLit(true),
			b.ExprStmt(b.Call(take.ID(), b.T.Unit, moved)),
		),
	)

	p, _ := plan(t, b)
	if got := p.TransformFor(moved); got != Duplicate {
		t.Fatalf("loop move transform = %v, want %v", got, Duplicate)
	}
}

func TestSharedBindingIntoOwnedCalleeClones(t *testing.T) {
	b := testkit.New()
	strList := b.List(b.T.String)

	keep := b.Func("keep")
	ks := keep.Param("s", b.T.String)
	sink := keep.Local("sink", strList)
	keep.Body(
		b.Let(sink, b.ListOf(b.T.String, b.Var(ks))),
	)

	// forward only reads its parameter, so its own convention converges
	// to a shared reference; satisfying keep demands a clone.
	forward := b.Func("forward")
	fs := forward.Param("s", b.T.String)
	arg := b.Var(fs)
	forward.Body(
		b.ExprStmt(b.Call(keep.ID(), b.T.Unit, arg)),
	)

	p, res := plan(t, b)
	if got := res.HintFor(fs); got != infer.HintSharedRef {
		t.Fatalf("forwarding param hint = %v, want %v", got, infer.HintSharedRef)
	}
	if got := p.TransformFor(arg); got != Duplicate {
		t.Fatalf("forwarded arg transform = %v, want %v", got, Duplicate)
	}
	if got := p.ReasonFor(arg); got != ReasonCloneThroughRef {
		t.Fatalf("forwarded arg reason = %v, want %v", got, ReasonCloneThroughRef)
	}
}

func TestIterableBorrowsNonCopySequences(t *testing.T) {
	b := testkit.New()
	strList := b.List(b.T.String)

	f := b.Func("scan")
	xs := f.Local("xs", strList)
	item := f.LoopVar("item", b.T.String)
	iter := b.Var(xs)
	f.Body(
		b.Let(xs, b.ListOf(b.T.String)),
		b.For(item, iter),
	)

	p, _ := plan(t, b)
	if got := p.TransformFor(iter); got != SharedBorrow {
		t.Fatalf("iterable transform = %v, want %v", got, SharedBorrow)
	}
}

func TestDoubleAssignmentPanics(t *testing.T) {
	b := testkit.New()
	f := b.Func("noop")
	fid := f.Body()

	p, _ := plan(t, b)
	fp := newFuncPlanner(p, b.Prog.Func(fid))
	e := b.IntLit(1)
	fp.assign(e, OwnedMove)

	defer func() {
		if recover() == nil {
			t.Fatal("second transform assignment did not panic")
		}
	}()
	fp.assign(e, SharedBorrow)
}

// stmtPtr digs out the address of the idx-th top-level statement, the
// key hoists are recorded under.
func stmtPtr(b *testkit.B, fn ast.FuncID, idx int) *ast.Stmt {
	return &b.Prog.Func(fn).Body.Stmts[idx]
}

func field(name string, t types.TypeID) types.Field {
	return types.Field{Name: name, Type: t}
}
