package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"keel/internal/infer"
	"keel/internal/pipeline"
)

// fillPayload mutates a list parameter in one function and calls it
// from another, so inference has both a direct fact and a delegation
// to chew on.
const fillPayload = `{
  "schema": 1,
  "package": "demo",
  "funcs": [
    {"name": "fill", "params": [{"name": "items", "binding": 1, "type": {"k": "list", "elem": {"k": "int"}}}],
     "body": {"stmts": [
       {"kind": "expr", "expr": {"kind": "method", "callee": "push",
         "recv": {"kind": "var", "name": "items", "binding": 1},
         "args": [{"kind": "lit", "lit": "int", "int": 1}]}}
     ]}},
    {"name": "main",
     "body": {"stmts": [
       {"kind": "let", "name": "xs", "binding": 1, "mut": true,
        "value": {"kind": "list", "type": {"k": "list", "elem": {"k": "int"}}}},
       {"kind": "expr", "expr": {"kind": "call", "callee": "fill",
         "args": [{"kind": "var", "name": "xs", "binding": 1}]}}
     ]}}
  ]
}`

// recordSink collects events; decode events arrive concurrently.
type recordSink struct {
	mu     sync.Mutex
	events []pipeline.Event
}

func (s *recordSink) OnEvent(evt pipeline.Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *recordSink) has(stage pipeline.Stage, status pipeline.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range s.events {
		if evt.Stage == stage && evt.Status == status {
			return true
		}
	}
	return false
}

func TestAnalyzeEndToEnd(t *testing.T) {
	sink := &recordSink{}
	out, err := Analyze(context.Background(), Options{
		Inputs: []Input{{Name: "demo.json", Data: []byte(fillPayload)}},
		Sink:   sink,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Program == nil || out.Result == nil || out.Plan == nil {
		t.Fatal("outcome missing program, result, or plan")
	}
	if out.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", out.Bag.Items())
	}

	fillID, ok := out.Program.FuncByQual("fill")
	if !ok {
		t.Fatal("fill was not declared")
	}
	items := out.Program.Func(fillID).Params[0].Binding
	if got := out.Result.HintFor(items); got != infer.HintExclusiveRef {
		t.Errorf("fill.items hint = %v, want %v", got, infer.HintExclusiveRef)
	}

	for _, stage := range []pipeline.Stage{pipeline.StageDecode, pipeline.StageSeed, pipeline.StageSolve, pipeline.StagePlan} {
		if !sink.has(stage, pipeline.StatusDone) {
			t.Errorf("no done event for stage %q", stage)
		}
	}
	for _, stage := range []pipeline.Stage{pipeline.StageDecode, pipeline.StageSeed, pipeline.StageSolve, pipeline.StagePlan} {
		if !out.Timings.Has(stage) {
			t.Errorf("no timing recorded for stage %q", stage)
		}
	}
}

func TestAnalyzeSeedsFromCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("keel-test")
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{
		Inputs: []Input{{Name: "demo.json", Data: []byte(fillPayload)}},
		Cache:  cache,
	}
	first, err := Analyze(context.Background(), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CacheHit {
		t.Error("first run hit a cold cache")
	}

	second, err := Analyze(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second run missed the cache")
	}
	if second.Result.Passes != 1 {
		t.Errorf("seeded run took %d passes, want 1", second.Result.Passes)
	}
	if second.Digest != first.Digest {
		t.Error("digest changed between identical runs")
	}
}

func TestAnalyzeNoCacheSkipsProbe(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("keel-test")
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{
		Inputs:  []Input{{Name: "demo.json", Data: []byte(fillPayload)}},
		Cache:   cache,
		NoCache: true,
	}
	if _, err := Analyze(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	opts.NoCache = false
	out, err := Analyze(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if out.CacheHit {
		t.Error("no-cache run still wrote an entry")
	}
}

func TestAnalyzeRejectsBadSchema(t *testing.T) {
	sink := &recordSink{}
	_, err := Analyze(context.Background(), Options{
		Inputs: []Input{{Name: "bad.json", Data: []byte(`{"schema": 99}`)}},
		Sink:   sink,
	})
	if err == nil || !strings.Contains(err.Error(), "schema 99") {
		t.Fatalf("err = %v, want schema complaint", err)
	}
	if !sink.has(pipeline.StageDecode, pipeline.StatusError) {
		t.Error("no decode error event emitted")
	}
}

func TestInputDigest(t *testing.T) {
	a := Input{Name: "a.json", Data: []byte("one")}
	b := Input{Name: "b.json", Data: []byte("two")}

	fwd := InputDigest([]Input{a, b})
	rev := InputDigest([]Input{b, a})
	if fwd != rev {
		t.Error("digest depends on input order")
	}
	changed := InputDigest([]Input{a, {Name: "b.json", Data: []byte("three")}})
	if changed == fwd {
		t.Error("digest ignored a content change")
	}
	if fwd.IsZero() {
		t.Error("digest of real inputs is zero")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("keel-test")
	if err != nil {
		t.Fatal(err)
	}
	key := InputDigest([]Input{{Name: "x", Data: []byte("y")}})
	in := &CachePayload{
		Schema:  cacheSchemaVersion,
		Package: "demo",
		Passes:  3,
		Exports: []infer.SigExport{{Qual: "fill", Params: []infer.Hint{infer.HintExclusiveRef}}},
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatal(err)
	}

	var got CachePayload
	hit, err := cache.Get(key, &got)
	if err != nil || !hit {
		t.Fatalf("get: hit=%v err=%v", hit, err)
	}
	if got.Package != "demo" || got.Passes != 3 {
		t.Errorf("payload = %+v", got)
	}
	if len(got.Exports) != 1 || got.Exports[0].Params[0] != infer.HintExclusiveRef {
		t.Errorf("exports = %+v", got.Exports)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	hit, err = cache.Get(key, &got)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("entry survived DropAll")
	}
}

func TestDiskCacheMissOnSchemaBump(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("keel-test")
	if err != nil {
		t.Fatal(err)
	}
	key := InputDigest([]Input{{Name: "x", Data: []byte("y")}})
	if err := cache.Put(key, &CachePayload{Schema: cacheSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}
	var got CachePayload
	hit, err := cache.Get(key, &got)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("foreign-schema payload read as a hit")
	}
}

func TestLoadInputs(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.json"), []byte("aa"), 0o600); err != nil {
		t.Fatal(err)
	}
	inputs, err := LoadInputs(root, []string{"a.json"})
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 1 || inputs[0].Name != "a.json" || string(inputs[0].Data) != "aa" {
		t.Errorf("inputs = %+v", inputs)
	}

	if _, err := LoadInputs(root, []string{"missing.json"}); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestExtendHeuristic(t *testing.T) {
	h := ExtendHeuristic([]string{"grow"}, []string{"_bang"})
	if !h.Matches("grow_list") {
		t.Error("added prefix not matched")
	}
	if !h.Matches("do_bang") {
		t.Error("added suffix not matched")
	}
	if !h.Matches("push_front") {
		t.Error("default prefix lost")
	}
}
