package infer

import (
	"testing"

	"keel/internal/ast"
	"keel/internal/testkit"
)

func TestHeuristicMatchesMutatingNames(t *testing.T) {
	h := DefaultHeuristic()
	cases := []struct {
		name string
		want bool
	}{
		{"push", true},
		{"push_back", true},
		{"push_str", true},
		{"pop", true},
		{"append", true},
		{"insert", true},
		{"remove_at", true},
		{"clear", true},
		{"set_name", true},
		{"sort_mut", true},
		{"len", false},
		{"get", false},
		{"contains", false},
		{"reset", false},
	}
	for _, tc := range cases {
		if got := h.Matches(tc.name); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPopOnUnknownReceiverMutates(t *testing.T) {
	b := testkit.New()
	listT := b.List(b.T.Int)
	f := b.Func("drain")
	xs := f.Param("xs", listT)
	f.Body(
		b.ExprStmt(b.Builtin(b.Var(xs), "pop", b.Option(b.T.Int))),
	)

	res, _ := solve(t, b, Options{})
	if got := res.HintFor(xs); got != HintExclusiveRef {
		t.Fatalf("popped receiver hint = %v, want %v", got, HintExclusiveRef)
	}
}

func TestRegistryOverridesHeuristic(t *testing.T) {
	b := testkit.New()
	box := b.Struct("Box", field("vals", b.List(b.T.Int)))

	// The name sounds mutating, the body only reads.
	setish := b.Method(box, "set_probe").Returns(b.T.Int)
	recv := setish.Recv("self", box)
	setish.Body(
		b.Ret(b.FieldOf(b.Var(recv), "vals")),
	)

	res, _ := solve(t, b, Options{})
	det := res.Detector
	callee := ast.Callee{Kind: ast.CalleeFunc, Name: "set_probe", Func: setish.ID()}
	if det.MethodMutates(callee) {
		t.Error("registered non-mutating receiver overridden by name heuristic")
	}

	unknown := ast.Callee{Kind: ast.CalleeUnknown, Name: "set_probe"}
	if !det.MethodMutates(unknown) {
		t.Error("unknown callee with mutating name should fall back to the heuristic")
	}
}

func TestConsumesReceiver(t *testing.T) {
	b := testkit.New()
	box := b.Struct("Box", field("vals", b.List(b.T.Int)))

	into := b.Method(box, "into_inner").Returns(box)
	intoRecv := into.Recv("self", box)
	into.Body(b.Ret(b.Var(intoRecv)))

	peek := b.Method(box, "peek").Returns(b.T.Int)
	peekRecv := peek.Recv("self", box)
	peek.Body(b.Ret(b.IndexOf(b.FieldOf(b.Var(peekRecv), "vals"), b.IntLit(0))))

	res, _ := solve(t, b, Options{})
	det := res.Detector

	if !det.ConsumesReceiver(ast.Callee{Kind: ast.CalleeFunc, Name: "into_inner", Func: into.ID()}) {
		t.Error("owned-receiver method not reported as consuming")
	}
	if det.ConsumesReceiver(ast.Callee{Kind: ast.CalleeFunc, Name: "peek", Func: peek.ID()}) {
		t.Error("shared-receiver method reported as consuming")
	}
	if !det.ConsumesReceiver(ast.Callee{Kind: ast.CalleeUnknown, Name: "unwrap"}) {
		t.Error("unwrap should consume by convention")
	}
	if det.ConsumesReceiver(ast.Callee{Kind: ast.CalleeUnknown, Name: "len"}) {
		t.Error("len should not consume")
	}
}
