package infer

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"keel/internal/ast"
)

// CallGraph holds the per-run call structure of the program. Edges
// point from callee to caller so that a Kahn walk yields leaves first:
// analyzing callees before their callers collapses delegation chains
// in as few passes as possible.
type CallGraph struct {
	Edges   [][]ast.FuncID // Edges[callee] = callers
	Indeg   []int
	Present []bool // function has a body and participates in analysis
}

// Topo is the analysis schedule produced from a CallGraph.
type Topo struct {
	Order   []ast.FuncID   // callee-first linear order
	Batches [][]ast.FuncID // waves of mutually independent functions
	Cyclic  bool
	Cycles  []ast.FuncID // members of recursive groups, appended last
}

// BuildCallGraph collects call edges from every function body.
func BuildCallGraph(prog *ast.Program) CallGraph {
	n := prog.Funcs.Len() + 1
	g := CallGraph{
		Edges:   make([][]ast.FuncID, n),
		Indeg:   make([]int, n),
		Present: make([]bool, n),
	}
	prog.Funcs.Each(func(idx uint32, f *ast.Func) bool {
		if f.HasBody() {
			g.Present[idx] = true
		}
		return true
	})
	prog.Funcs.Each(func(idx uint32, f *ast.Func) bool {
		if f.Body == nil {
			return true
		}
		caller := ast.FuncID(idx)
		seen := make(map[ast.FuncID]struct{}, 4)
		collectCallees(prog, f.Body, func(callee ast.FuncID) {
			if callee == caller || !g.Present[callee] {
				return
			}
			if _, dup := seen[callee]; dup {
				return
			}
			seen[callee] = struct{}{}
			g.Edges[callee] = append(g.Edges[callee], caller)
			g.Indeg[caller]++
		})
		return true
	})
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}
	return g
}

func collectCallees(prog *ast.Program, blk *ast.Block, visit func(ast.FuncID)) {
	var walkExpr func(e *ast.Expr)
	var walkBlock func(b *ast.Block)

	callee := func(c ast.Callee) {
		switch c.Kind {
		case ast.CalleeFunc:
			visit(c.Func)
		case ast.CalleeTraitMethod:
			for _, impl := range prog.TraitImpls(c.Trait) {
				if f := prog.Func(impl); f != nil && f.TraitMethod == c.Method {
					visit(impl)
				}
			}
		}
	}

	walkExpr = func(e *ast.Expr) {
		if e == nil {
			return
		}
		switch d := e.Data.(type) {
		case *ast.UnaryData:
			walkExpr(d.Operand)
		case *ast.BinaryData:
			walkExpr(d.Left)
			walkExpr(d.Right)
		case *ast.CallData:
			callee(d.Callee)
			for _, arg := range d.Args {
				walkExpr(arg)
			}
		case *ast.MethodCallData:
			callee(d.Callee)
			walkExpr(d.Recv)
			for _, arg := range d.Args {
				walkExpr(arg)
			}
		case *ast.FieldAccessData:
			walkExpr(d.Object)
		case *ast.IndexData:
			walkExpr(d.Seq)
			walkExpr(d.Index)
		case *ast.StructLitData:
			for i := range d.Fields {
				walkExpr(d.Fields[i].Value)
			}
		case *ast.VariantCtorData:
			for _, arg := range d.Args {
				walkExpr(arg)
			}
		case *ast.ListLitData:
			for _, el := range d.Elems {
				walkExpr(el)
			}
		case *ast.InterpData:
			for i := range d.Parts {
				walkExpr(d.Parts[i].Expr)
			}
		}
	}

	walkBlock = func(b *ast.Block) {
		for i := range b.Stmts {
			switch d := b.Stmts[i].Data.(type) {
			case *ast.LetData:
				walkExpr(d.Value)
			case *ast.AssignData:
				walkExpr(d.Target)
				walkExpr(d.Value)
			case *ast.ExprStmtData:
				walkExpr(d.Expr)
			case *ast.ReturnData:
				walkExpr(d.Value)
			case *ast.IfData:
				walkExpr(d.Cond)
				walkBlock(&d.Then)
				if d.Else != nil {
					walkBlock(d.Else)
				}
			case *ast.WhileData:
				walkExpr(d.Cond)
				walkBlock(&d.Body)
			case *ast.ForData:
				walkExpr(d.Iter)
				walkBlock(&d.Body)
			case *ast.MatchData:
				walkExpr(d.Scrutinee)
				for ai := range d.Arms {
					walkBlock(&d.Arms[ai].Body)
				}
			case *ast.BlockData:
				walkBlock(&d.Body)
			}
		}
	}

	walkBlock(blk)
}

// ToposortKahn schedules functions callee-first. Recursive groups end
// up in Cycles and are appended to the order after everything else;
// the monotone solver handles them by iterating, they just cost extra
// passes.
func ToposortKahn(g CallGraph) *Topo {
	n := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]ast.FuncID, 0, n),
		Batches: make([][]ast.FuncID, 0),
	}

	active := 0
	for i := 0; i < n; i++ {
		if g.Present[i] {
			active++
		}
	}

	current := make([]ast.FuncID, 0, n)
	for i := 0; i < n; i++ {
		if !g.Present[i] {
			continue
		}
		if indeg[i] == 0 {
			fID, err := safecast.Conv[uint32, int](i)
			if err != nil {
				panic(fmt.Errorf("func id overflow: %w", err))
			}
			current = append(current, ast.FuncID(fID))
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]ast.FuncID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]ast.FuncID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := 0; i < n; i++ {
			if !g.Present[i] {
				continue
			}
			if indeg[i] > 0 {
				fID, err := safecast.Conv[uint32, int](i)
				if err != nil {
					panic(fmt.Errorf("func id overflow: %w", err))
				}
				topo.Cycles = append(topo.Cycles, ast.FuncID(fID))
			}
		}
		slices.Sort(topo.Cycles)
		topo.Order = append(topo.Order, topo.Cycles...)
	}

	return topo
}

// CycleSummary renders the members of recursive groups as one chain
// for the non-convergence report.
func CycleSummary(prog *ast.Program, topo *Topo) string {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return ""
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, prog.QualName(id))
	}
	return strings.Join(names, " -> ")
}
