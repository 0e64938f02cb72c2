package infer

import (
	"testing"

	"keel/internal/testkit"
	"keel/internal/types"
)

func field(name string, t types.TypeID) types.Field {
	return types.Field{Name: name, Type: t}
}

func variant(name string, payload ...types.TypeID) types.Variant {
	return types.Variant{Name: name, Payload: payload}
}

func TestCopyScalarsAndViews(t *testing.T) {
	b := testkit.New()
	c := NewCopySet(b.Prog.Types)

	cases := []struct {
		name string
		id   types.TypeID
		want bool
	}{
		{"unit", b.T.Unit, true},
		{"bool", b.T.Bool, true},
		{"int", b.T.Int, true},
		{"float", b.T.Float, true},
		{"char", b.T.Char, true},
		{"str view", b.T.StrView, true},
		{"owned string", b.T.String, false},
		{"shared ref", b.Ref(b.T.String), true},
		{"exclusive ref", b.RefMut(b.T.Int), false},
		{"list", b.List(b.T.Int), false},
		{"map", b.MapOf(b.T.Int, b.T.Int), false},
		{"option of int", b.Option(b.T.Int), true},
		{"option of string", b.Option(b.T.String), false},
	}
	for _, tc := range cases {
		if got := c.IsCopy(tc.id); got != tc.want {
			t.Errorf("%s: IsCopy = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCopyAggregatesFollowComponents(t *testing.T) {
	b := testkit.New()
	point := b.Struct("Point", field("x", b.T.Int), field("y", b.T.Int))
	named := b.Struct("Named", field("pos", point), field("name", b.T.String))
	color := b.Enum("Color", variant("Red"), variant("Rgb", b.T.Int, b.T.Int, b.T.Int))
	shape := b.Enum("Shape", variant("Dot", point), variant("Label", b.T.String))

	c := NewCopySet(b.Prog.Types)
	c.Classify()

	if !c.IsCopy(point) {
		t.Error("all-scalar struct should copy")
	}
	if c.IsCopy(named) {
		t.Error("struct with an owned string field should not copy")
	}
	if !c.IsCopy(color) {
		t.Error("enum with scalar payloads should copy")
	}
	if c.IsCopy(shape) {
		t.Error("enum with an owned string payload should not copy")
	}
}

func TestCopyNegativeMemoExpiresOnGrowth(t *testing.T) {
	b := testkit.New()
	in := b.Prog.Types

	inner := b.Struct("Inner", field("s", b.T.String))
	wrapper := b.Struct("Wrapper", field("inner", inner))

	c := NewCopySet(in)
	if c.IsCopy(wrapper) || c.IsCopy(inner) {
		t.Fatal("string-holding structs should not copy")
	}

	// A new nominal type classifying copy advances the generation, so
	// the memoized negatives above are due for a re-check.
	flat := b.Struct("Flat", field("n", b.T.Int))
	if !c.IsCopy(flat) {
		t.Fatal("flat struct of one int should copy")
	}
	in.SetStructFields(inner, []types.Field{field("n", b.T.Int)})

	if !c.IsCopy(wrapper) {
		t.Fatal("stale negative for wrapper survived a generation change")
	}
	if !c.IsCopy(inner) {
		t.Fatal("stale negative for inner survived a generation change")
	}
}

func TestClassifyReachesFixpoint(t *testing.T) {
	b := testkit.New()
	// A chain a -> b -> c of nominal structs; classification must not
	// depend on declaration order.
	cT := b.Struct("C", field("n", b.T.Int))
	bT := b.Struct("B", field("c", cT))
	aT := b.Struct("A", field("b", bT))

	c := NewCopySet(b.Prog.Types)
	c.Classify()
	for name, id := range map[string]types.TypeID{"A": aT, "B": bT, "C": cT} {
		if !c.IsCopy(id) {
			t.Errorf("%s should classify copy", name)
		}
	}
}
