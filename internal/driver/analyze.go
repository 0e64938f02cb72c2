// Package driver wires decoding, inference, and planning into one
// staged run with progress events and a signature cache.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/infer"
	"keel/internal/observ"
	"keel/internal/pipeline"
	"keel/internal/plan"
)

// DefaultMaxDiagnostics bounds the diagnostic bag per run.
const DefaultMaxDiagnostics = 100

// Input is one named payload to analyze.
type Input struct {
	Name string
	Data []byte
}

// Options configures one driver run. The zero value analyzes with
// defaults, no cache, and no progress sink.
type Options struct {
	Inputs []Input
	// MaxPasses overrides the solver pass ceiling when positive.
	MaxPasses int
	// Heuristic overrides the mutation name heuristic.
	Heuristic *infer.Heuristic
	// Cache is the signature cache; nil disables caching.
	Cache *DiskCache
	// NoCache skips the cache probe and the write-back.
	NoCache bool
	// Sink receives progress events; nil discards them.
	Sink pipeline.Sink
	// MaxDiagnostics bounds the bag; DefaultMaxDiagnostics when zero.
	MaxDiagnostics int
	// Workers bounds payload decoding concurrency; GOMAXPROCS when
	// zero.
	Workers int
}

// Outcome carries everything one run produced, including partial
// state when the run failed.
type Outcome struct {
	Program  *ast.Program
	Result   *infer.Result
	Plan     *plan.Plan
	Bag      *diag.Bag
	Timer    *observ.Timer
	Timings  pipeline.Timings
	Digest   Digest
	CacheHit bool
}

// LoadInputs reads the manifest's input payloads relative to root.
func LoadInputs(root string, names []string) ([]Input, error) {
	inputs := make([]Input, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read input %q: %w", name, err)
		}
		inputs = append(inputs, Input{Name: name, Data: data})
	}
	return inputs, nil
}

// ExtendHeuristic returns the default mutation heuristic with the
// manifest's additions appended.
func ExtendHeuristic(prefixes, suffixes []string) infer.Heuristic {
	h := infer.DefaultHeuristic()
	h.Prefixes = append(h.Prefixes, prefixes...)
	h.Suffixes = append(h.Suffixes, suffixes...)
	return h
}

// Analyze runs the full pipeline: decode payloads, seed from the
// cache, solve hints to fixpoint, plan access sites. The Outcome is
// returned even on failure so callers can print the diagnostics.
func Analyze(ctx context.Context, opts Options) (*Outcome, error) {
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = DefaultMaxDiagnostics
	}
	sink := opts.Sink
	if sink == nil {
		sink = pipeline.NopSink{}
	}

	out := &Outcome{
		Bag:   diag.NewBag(maxDiag),
		Timer: observ.NewTimer(),
	}
	reporter := &diag.BagReporter{Bag: out.Bag}

	if err := decodeStage(ctx, opts, sink, out, reporter); err != nil {
		return out, err
	}
	seed := seedStage(opts, sink, out)

	solveOpts := infer.Options{
		MaxPasses: opts.MaxPasses,
		Heuristic: opts.Heuristic,
		Seed:      seed,
		OnPass: func(pass, changed int, _ *infer.Registry) {
			sink.OnEvent(pipeline.Event{
				Stage:   pipeline.StageSolve,
				Status:  pipeline.StatusWorking,
				Pass:    pass,
				Changed: changed,
			})
		},
	}

	phase := out.Timer.Begin("solve")
	start := time.Now()
	res, err := infer.Solve(out.Program, solveOpts, reporter)
	elapsed := time.Since(start)
	out.Timings.Set(pipeline.StageSolve, elapsed)
	if err != nil {
		out.Timer.End(phase, "did not converge")
		sink.OnEvent(pipeline.Event{Stage: pipeline.StageSolve, Status: pipeline.StatusError, Err: err, Elapsed: elapsed})
		return out, err
	}
	out.Result = res
	out.Timer.End(phase, fmt.Sprintf("%d passes", res.Passes))
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageSolve, Status: pipeline.StatusDone, Pass: res.Passes, Elapsed: elapsed})

	writeBack(opts, out)

	phase = out.Timer.Begin("plan")
	start = time.Now()
	sink.OnEvent(pipeline.Event{Stage: pipeline.StagePlan, Status: pipeline.StatusWorking})
	out.Plan = plan.Build(out.Program, res)
	elapsed = time.Since(start)
	out.Timings.Set(pipeline.StagePlan, elapsed)
	out.Timer.End(phase, fmt.Sprintf("%d sites", len(out.Plan.Sites())))
	sink.OnEvent(pipeline.Event{Stage: pipeline.StagePlan, Status: pipeline.StatusDone, Elapsed: elapsed})

	return out, nil
}

// decodeStage parses payloads concurrently and builds the program.
// Payload parsing is pure per file; program building is sequential so
// arena IDs stay deterministic.
func decodeStage(ctx context.Context, opts Options, sink pipeline.Sink, out *Outcome, reporter diag.Reporter) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	phase := out.Timer.Begin("decode")
	start := time.Now()
	for _, in := range opts.Inputs {
		sink.OnEvent(pipeline.Event{File: in.Name, Stage: pipeline.StageDecode, Status: pipeline.StatusQueued})
	}

	payloads := make([]*ast.Payload, len(opts.Inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range opts.Inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fileStart := time.Now()
			sink.OnEvent(pipeline.Event{File: in.Name, Stage: pipeline.StageDecode, Status: pipeline.StatusWorking})
			p, err := ast.ParsePayload(in.Data, in.Name)
			if err != nil {
				sink.OnEvent(pipeline.Event{File: in.Name, Stage: pipeline.StageDecode, Status: pipeline.StatusError, Err: err, Elapsed: time.Since(fileStart)})
				return err
			}
			payloads[i] = p
			sink.OnEvent(pipeline.Event{File: in.Name, Stage: pipeline.StageDecode, Status: pipeline.StatusDone, Elapsed: time.Since(fileStart)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		out.Timer.End(phase, "failed")
		out.Timings.Set(pipeline.StageDecode, time.Since(start))
		return err
	}

	out.Program = ast.BuildProgram(payloads, reporter)
	elapsed := time.Since(start)
	out.Timings.Set(pipeline.StageDecode, elapsed)
	out.Timer.End(phase, fmt.Sprintf("%d files", len(opts.Inputs)))

	if out.Bag.HasErrors() {
		err := fmt.Errorf("input decoding produced %d diagnostics", out.Bag.Len())
		sink.OnEvent(pipeline.Event{Stage: pipeline.StageDecode, Status: pipeline.StatusError, Err: err, Elapsed: elapsed})
		return err
	}
	return nil
}

// seedStage hashes the input set and probes the cache for exports to
// seed the solver with.
func seedStage(opts Options, sink pipeline.Sink, out *Outcome) []infer.SigExport {
	phase := out.Timer.Begin("seed")
	start := time.Now()
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageSeed, Status: pipeline.StatusWorking})

	out.Digest = InputDigest(opts.Inputs)
	var seed []infer.SigExport
	note := "cache disabled"
	if opts.Cache != nil && !opts.NoCache {
		var payload CachePayload
		hit, err := opts.Cache.Get(out.Digest, &payload)
		switch {
		case err != nil:
			// Unreadable cache entries read as misses.
			note = "cache unreadable"
		case hit:
			out.CacheHit = true
			seed = payload.Exports
			note = "cache hit"
		default:
			note = "cache miss"
		}
	}

	elapsed := time.Since(start)
	out.Timings.Set(pipeline.StageSeed, elapsed)
	out.Timer.End(phase, note)
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageSeed, Status: pipeline.StatusDone, Elapsed: elapsed})
	return seed
}

// writeBack stores the converged signatures. Cache writes are best
// effort; a failed write never fails the run.
func writeBack(opts Options, out *Outcome) {
	if opts.Cache == nil || opts.NoCache || out.CacheHit {
		return
	}
	_ = opts.Cache.Put(out.Digest, &CachePayload{
		Schema:  cacheSchemaVersion,
		Package: out.Program.Package,
		Passes:  out.Result.Passes,
		Exports: out.Result.Registry.Export(),
	})
}
