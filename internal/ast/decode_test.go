package ast

import (
	"strings"
	"testing"

	"keel/internal/diag"
	"keel/internal/types"
)

const sumPayload = `{
  "schema": 1,
  "package": "demo",
  "files": [{"path": "src/app.kl", "source": "struct Node { children: Option<List<int>> }\n"}],
  "types": [
    {"kind": "struct", "name": "Node", "span": {"file": 0, "start": 0, "end": 11},
     "fields": [{"name": "children", "type": {"k": "option", "elem": {"k": "list", "elem": {"k": "int"}}}}]}
  ],
  "funcs": [
    {"name": "total", "params": [{"name": "items", "binding": 1, "type": {"k": "list", "elem": {"k": "int"}}}],
     "result": {"k": "int"},
     "body": {"stmts": [
       {"kind": "let", "name": "acc", "binding": 2, "mut": true,
        "value": {"kind": "lit", "lit": "int", "int": 0}},
       {"kind": "for", "name": "item", "binding": 3,
        "iter": {"kind": "var", "name": "items", "binding": 1},
        "body": {"stmts": [
          {"kind": "assign", "op": "+=",
           "target": {"kind": "var", "name": "acc", "binding": 2},
           "value": {"kind": "var", "name": "item", "binding": 3}}
        ]}},
       {"kind": "return", "value": {"kind": "var", "name": "acc", "binding": 2}}
     ]}},
    {"name": "sum", "params": [{"name": "node", "binding": 1, "type": {"k": "named", "name": "Node"}}],
     "result": {"k": "int"},
     "body": {"stmts": [
       {"kind": "return", "value": {"kind": "call", "callee": "total", "args": [
         {"kind": "method", "callee": "unwrap", "recv":
           {"kind": "field", "object": {"kind": "var", "name": "node", "binding": 1}, "field": "children"}}
       ]}}
     ]}}
  ]
}`

func decodeOne(t *testing.T, payload string) (*Program, *diag.Bag) {
	t.Helper()
	p, err := ParsePayload([]byte(payload), "test.json")
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	bag := diag.NewBag(32)
	prog := BuildProgram([]*Payload{p}, diag.BagReporter{Bag: bag})
	return prog, bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestDecodeSumProgram(t *testing.T) {
	prog, bag := decodeOne(t, sumPayload)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}

	nodeID, ok := prog.Types.Named("Node")
	if !ok {
		t.Fatal("Node was not declared")
	}
	info, _ := prog.Types.Struct(nodeID)
	if got := prog.Types.TypeString(info.Fields[0].Type); got != "Option<List<int>>" {
		t.Fatalf("children type = %q", got)
	}

	sumID, ok := prog.FuncByQual("sum")
	if !ok {
		t.Fatal("sum was not declared")
	}
	sum := prog.Func(sumID)
	if !sum.HasBody() || sum.Arity() != 1 {
		t.Fatalf("sum = %+v", sum)
	}

	ret := sum.Body.Stmts[0].Data.(*ReturnData)
	call := ret.Value.Data.(*CallData)
	if call.Callee.Kind != CalleeFunc {
		t.Fatalf("total call resolved as %v", call.Callee.Kind)
	}
	if prog.QualName(call.Callee.Func) != "total" {
		t.Fatalf("callee = %q", prog.QualName(call.Callee.Func))
	}

	unwrap := call.Args[0].Data.(*MethodCallData)
	if unwrap.Callee.Kind != CalleeUnknown || unwrap.Callee.Name != "unwrap" {
		t.Fatalf("unwrap callee = %+v", unwrap.Callee)
	}
	if got := prog.Types.TypeString(call.Args[0].Type); got != "List<int>" {
		t.Fatalf("unwrap result type = %q, want List<int>", got)
	}

	field := unwrap.Recv.Data.(*FieldAccessData)
	if field.FieldIdx != 0 {
		t.Fatalf("children field index = %d", field.FieldIdx)
	}
}

func TestDecodeRejectsWrongSchema(t *testing.T) {
	_, err := ParsePayload([]byte(`{"schema": 99}`), "bad.json")
	if err == nil || !strings.Contains(err.Error(), "schema 99") {
		t.Fatalf("err = %v, want schema complaint", err)
	}
}

func TestDecodeReportsUnknownBinding(t *testing.T) {
	payload := `{
	  "schema": 1,
	  "funcs": [{"name": "f", "body": {"stmts": [
	    {"kind": "expr", "expr": {"kind": "var", "name": "ghost", "binding": 7}}
	  ]}}]
	}`
	_, bag := decodeOne(t, payload)
	if !hasCode(bag, diag.InputUnknownBinding) {
		t.Fatalf("expected %v diagnostic, got %v", diag.InputUnknownBinding, bag.Items())
	}
}

func TestDecodeReportsUnknownField(t *testing.T) {
	payload := `{
	  "schema": 1,
	  "types": [{"kind": "struct", "name": "P", "fields": [{"name": "x", "type": {"k": "int"}}]}],
	  "funcs": [{"name": "f",
	    "params": [{"name": "p", "binding": 1, "type": {"k": "named", "name": "P"}}],
	    "body": {"stmts": [
	      {"kind": "expr", "expr": {"kind": "field",
	        "object": {"kind": "var", "name": "p", "binding": 1}, "field": "y"}}
	    ]}}]
	}`
	_, bag := decodeOne(t, payload)
	if !hasCode(bag, diag.InputUnknownField) {
		t.Fatalf("expected %v diagnostic, got %v", diag.InputUnknownField, bag.Items())
	}
}

func TestDecodeStringLiteralIsView(t *testing.T) {
	payload := `{
	  "schema": 1,
	  "funcs": [{"name": "f", "body": {"stmts": [
	    {"kind": "let", "name": "s", "binding": 1,
	     "value": {"kind": "lit", "lit": "str", "str": "hi"}}
	  ]}}]
	}`
	prog, bag := decodeOne(t, payload)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	f := prog.Func(mustFunc(t, prog, "f"))
	let := f.Body.Stmts[0].Data.(*LetData)
	if tt, _ := prog.Types.Lookup(let.Value.Type); tt.Kind != types.KindStrView {
		t.Fatalf("string literal type kind = %v, want str view", tt.Kind)
	}
}

func TestDecodeDuplicateFunc(t *testing.T) {
	payload := `{
	  "schema": 1,
	  "funcs": [{"name": "f"}, {"name": "f"}]
	}`
	_, bag := decodeOne(t, payload)
	if !hasCode(bag, diag.InputDuplicateFunc) {
		t.Fatalf("expected %v diagnostic, got %v", diag.InputDuplicateFunc, bag.Items())
	}
}

func mustFunc(t *testing.T, prog *Program, qual string) FuncID {
	t.Helper()
	id, ok := prog.FuncByQual(qual)
	if !ok {
		t.Fatalf("function %q not found", qual)
	}
	return id
}
