package infer

import (
	"slices"
	"testing"

	"keel/internal/ast"
	"keel/internal/testkit"
)

func orderIndex(order []ast.FuncID, id ast.FuncID) int {
	for i, f := range order {
		if f == id {
			return i
		}
	}
	return -1
}

func TestToposortSchedulesCalleesFirst(t *testing.T) {
	b := testkit.New()
	listT := b.List(b.T.Int)

	// Declared caller-first on purpose; the schedule must still put the
	// leaf ahead of both callers.
	outer := b.Func("outer")
	op := outer.Param("xs", listT)
	mid := b.Func("mid")
	mp := mid.Param("xs", listT)
	leaf := b.Func("leaf")
	lp := leaf.Param("xs", listT)

	outer.Body(b.ExprStmt(b.Call(mid.ID(), b.T.Unit, b.Var(op))))
	mid.Body(b.ExprStmt(b.Call(leaf.ID(), b.T.Unit, b.Var(mp))))
	leaf.Body(b.ExprStmt(b.Builtin(b.Var(lp), "push", b.T.Unit, b.IntLit(1))))

	topo := ToposortKahn(BuildCallGraph(b.Prog))
	if topo.Cyclic {
		t.Fatal("acyclic chain reported cyclic")
	}
	li, mi, oi := orderIndex(topo.Order, leaf.ID()), orderIndex(topo.Order, mid.ID()), orderIndex(topo.Order, outer.ID())
	if li < 0 || mi < 0 || oi < 0 {
		t.Fatalf("order %v is missing functions", topo.Order)
	}
	if !(li < mi && mi < oi) {
		t.Fatalf("order %v does not schedule callees first", topo.Order)
	}
}

func TestCallGraphIgnoresBodilessFunctions(t *testing.T) {
	b := testkit.New()
	decl := b.Func("external")
	decl.Param("x", b.T.Int)
	decl.Declared()

	caller := b.Func("caller")
	p := caller.Param("x", b.T.Int)
	caller.Body(b.ExprStmt(b.Call(decl.ID(), b.T.Unit, b.Var(p))))

	g := BuildCallGraph(b.Prog)
	if g.Present[int(decl.ID())] {
		t.Error("bodiless declaration marked present")
	}
	topo := ToposortKahn(g)
	if slices.Contains(topo.Order, decl.ID()) {
		t.Errorf("order %v contains bodiless declaration", topo.Order)
	}
	if !slices.Contains(topo.Order, caller.ID()) {
		t.Errorf("order %v is missing the caller", topo.Order)
	}
}

func TestTraitCallsFanOutToImpls(t *testing.T) {
	b := testkit.New()
	aT := b.Struct("A")
	bT := b.Struct("Bee")
	tr := b.Trait("Run", ast.TraitMethod{Name: "run"})

	implA := b.Impl(aT, "run", tr, 0)
	implA.Recv("self", aT)
	implA.Body()
	implB := b.Impl(bT, "run", tr, 0)
	implB.Recv("self", bT)
	implB.Body()

	caller := b.Func("drive")
	p := caller.Param("a", aT)
	caller.Body(b.ExprStmt(b.TraitCall(b.Var(p), tr, 0, b.T.Unit)))

	topo := ToposortKahn(BuildCallGraph(b.Prog))
	ci := orderIndex(topo.Order, caller.ID())
	for _, impl := range []ast.FuncID{implA.ID(), implB.ID()} {
		ii := orderIndex(topo.Order, impl)
		if ii < 0 || ii > ci {
			t.Fatalf("order %v does not schedule impl %d before the trait caller", topo.Order, impl)
		}
	}
}

func TestCycleSummaryNamesMembers(t *testing.T) {
	b := testkit.New()
	f := b.Func("ping")
	fp := f.Param("n", b.T.Int)
	g := b.Func("pong")
	gp := g.Param("n", b.T.Int)
	f.Body(b.ExprStmt(b.Call(g.ID(), b.T.Unit, b.Var(fp))))
	g.Body(b.ExprStmt(b.Call(f.ID(), b.T.Unit, b.Var(gp))))

	topo := ToposortKahn(BuildCallGraph(b.Prog))
	if !topo.Cyclic {
		t.Fatal("mutual recursion not flagged cyclic")
	}
	got := CycleSummary(b.Prog, topo)
	if got != "ping -> pong" {
		t.Fatalf("cycle summary = %q, want %q", got, "ping -> pong")
	}
}
