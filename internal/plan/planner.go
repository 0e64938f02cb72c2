package plan

import (
	"fmt"

	"keel/internal/ast"
	"keel/internal/infer"
	"keel/internal/types"
)

// Hoist binds an ephemeral value to a fresh named local immediately
// before the statement it was planned for, so that references target
// stable storage.
type Hoist struct {
	Name  string
	Value *ast.Expr
}

// Site is one planned access site in deterministic planning order.
type Site struct {
	Func ast.FuncID
	Expr *ast.Expr
}

// Plan is the code-generation ownership contract: the per-site
// decisions the text emitter queries instead of re-deriving. All state
// is per-run and discarded after emission.
type Plan struct {
	prog       *ast.Program
	res        *infer.Result
	transforms map[*ast.Expr]Transform
	reasons    map[*ast.Expr]Reason
	hoists     map[*ast.Stmt][]Hoist
	hoistNames map[*ast.Expr]string
	sites      []Site
}

// Build plans every function body against the converged inference
// result.
func Build(prog *ast.Program, res *infer.Result) *Plan {
	p := &Plan{
		prog:       prog,
		res:        res,
		transforms: make(map[*ast.Expr]Transform, 64),
		reasons:    make(map[*ast.Expr]Reason, 16),
		hoists:     make(map[*ast.Stmt][]Hoist, 8),
		hoistNames: make(map[*ast.Expr]string, 8),
	}
	prog.Funcs.Each(func(idx uint32, f *ast.Func) bool {
		if f.Body != nil {
			newFuncPlanner(p, f).run()
		}
		return true
	})
	return p
}

// TransformFor returns the decision for an access site. Sites the
// planner never needed to correct emit as-is.
func (p *Plan) TransformFor(e *ast.Expr) Transform {
	if t, ok := p.transforms[e]; ok {
		return t
	}
	return OwnedMove
}

// HintFor forwards the converged hint query for the emitter.
func (p *Plan) HintFor(b ast.BindingID) infer.Hint {
	return p.res.HintFor(b)
}

// IsCopy forwards the copy-type oracle query for the emitter.
func (p *Plan) IsCopy(id types.TypeID) bool {
	return p.res.IsCopy(id)
}

// ReasonFor returns the recorded duplication reason, ReasonNone when
// the site is not a planned duplicate.
func (p *Plan) ReasonFor(e *ast.Expr) Reason {
	return p.reasons[e]
}

// Hoists returns the hoisted bindings to emit immediately before the
// statement, in planning order.
func (p *Plan) Hoists(st *ast.Stmt) []Hoist {
	return p.hoists[st]
}

// HoistName returns the fresh local name a hoisted expression was
// bound to.
func (p *Plan) HoistName(e *ast.Expr) string {
	return p.hoistNames[e]
}

// Sites lists every planned access site in planning order.
func (p *Plan) Sites() []Site {
	return p.sites
}

// funcPlanner walks one body. The pre-pass numbers every binding use in
// walk order so move sites can ask "is this binding read again later";
// the main pass then assigns exactly one transform per corrected site.
type funcPlanner struct {
	p    *Plan
	prog *ast.Program
	res  *infer.Result
	f    *ast.Func

	curStmt   *ast.Stmt
	loopDepth int
	tmpCount  int
	useOrd    map[*ast.Expr]int
	useCount  map[ast.BindingID]int
}

func newFuncPlanner(p *Plan, f *ast.Func) *funcPlanner {
	return &funcPlanner{
		p:        p,
		prog:     p.prog,
		res:      p.res,
		f:        f,
		useOrd:   make(map[*ast.Expr]int, 16),
		useCount: make(map[ast.BindingID]int, 8),
	}
}

func (fp *funcPlanner) run() {
	fp.collectUses(fp.f.Body)
	fp.block(fp.f.Body)
}

func (fp *funcPlanner) assign(e *ast.Expr, t Transform) {
	if t == Unclassified {
		panic("plan: refusing to classify a site as Unclassified")
	}
	if old, ok := fp.p.transforms[e]; ok {
		panic(fmt.Sprintf("plan: site at %s already classified %s, refusing %s",
			e.Span.String(), old, t))
	}
	fp.p.transforms[e] = t
	fp.p.sites = append(fp.p.sites, Site{Func: fp.f.ID, Expr: e})
}

func (fp *funcPlanner) duplicate(e *ast.Expr, why Reason) {
	fp.assign(e, Duplicate)
	fp.p.reasons[e] = why
}

func (fp *funcPlanner) hoist(e *ast.Expr) {
	name := fmt.Sprintf("__keel%d", fp.tmpCount)
	fp.tmpCount++
	fp.assign(e, HoistBorrow)
	fp.p.hoistNames[e] = name
	fp.p.hoists[fp.curStmt] = append(fp.p.hoists[fp.curStmt], Hoist{Name: name, Value: e})
}

// Use ordering pre-pass -------------------------------------------------------

func (fp *funcPlanner) collectUses(blk *ast.Block) {
	var walkExpr func(e *ast.Expr)
	var walkBlock func(b *ast.Block)

	walkExpr = func(e *ast.Expr) {
		if e == nil {
			return
		}
		switch d := e.Data.(type) {
		case *ast.VarRefData:
			fp.useOrd[e] = fp.useCount[d.Binding]
			fp.useCount[d.Binding]++
		case *ast.UnaryData:
			walkExpr(d.Operand)
		case *ast.BinaryData:
			walkExpr(d.Left)
			walkExpr(d.Right)
		case *ast.CallData:
			for _, a := range d.Args {
				walkExpr(a)
			}
		case *ast.MethodCallData:
			walkExpr(d.Recv)
			for _, a := range d.Args {
				walkExpr(a)
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
			for _, a := range d.Args {
				walkExpr(a)
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

// usedLater reports whether the binding referenced by e is read again
// after this use. Inside loops any move is conservatively "used later"
// because the statement runs again.
func (fp *funcPlanner) usedLater(b ast.BindingID, e *ast.Expr) bool {
	if fp.loopDepth > 0 {
		return true
	}
	ord, ok := fp.useOrd[e]
	if !ok {
		return false
	}
	return ord < fp.useCount[b]-1
}

// Statement walk --------------------------------------------------------------

func (fp *funcPlanner) block(blk *ast.Block) {
	for i := range blk.Stmts {
		fp.stmt(&blk.Stmts[i])
	}
}

func (fp *funcPlanner) stmt(st *ast.Stmt) {
	prev := fp.curStmt
	fp.curStmt = st
	defer func() { fp.curStmt = prev }()

	switch d := st.Data.(type) {
	case *ast.LetData:
		if d.Value != nil {
			fp.value(d.Value, fp.typeRequired(d.Type), d.Type, ReasonMovedButUsedLater)
		}
	case *ast.AssignData:
		fp.placeReads(d.Target)
		fp.value(d.Value, fp.typeRequired(d.Target.Type), d.Target.Type, ReasonMovedButUsedLater)
	case *ast.ExprStmtData:
		fp.value(d.Expr, infer.HintOwned, types.NoTypeID, ReasonNone)
	case *ast.ReturnData:
		if d.Value == nil {
			return
		}
		if v, ok := varRef(d.Value); ok {
			h := fp.res.HintFor(v.Binding)
			if !h.IsRef() && !fp.copyBinding(v.Binding) && fp.usedLater(v.Binding, d.Value) {
				fp.duplicate(d.Value, ReasonReturnedButUsedAgain)
				return
			}
			fp.assign(d.Value, OwnedMove)
			return
		}
		fp.value(d.Value, fp.typeRequired(fp.f.Result), fp.f.Result, ReasonMovedButUsedLater)
	case *ast.IfData:
		fp.value(d.Cond, infer.HintOwned, types.NoTypeID, ReasonNone)
		fp.block(&d.Then)
		if d.Else != nil {
			fp.block(d.Else)
		}
	case *ast.WhileData:
		fp.value(d.Cond, infer.HintOwned, types.NoTypeID, ReasonNone)
		fp.loopDepth++
		fp.block(&d.Body)
		fp.loopDepth--
	case *ast.ForData:
		fp.iterable(d.Iter)
		fp.loopDepth++
		fp.block(&d.Body)
		fp.loopDepth--
	case *ast.MatchData:
		fp.scrutinee(d.Scrutinee)
		for ai := range d.Arms {
			fp.block(&d.Arms[ai].Body)
		}
	case *ast.BlockData:
		fp.block(&d.Body)
	}
}

// iterable borrows non-copy owned sequences so iteration does not
// consume them.
func (fp *funcPlanner) iterable(e *ast.Expr) {
	if v, ok := varRef(e); ok {
		if fp.res.HintFor(v.Binding).IsRef() || fp.copyBinding(v.Binding) {
			fp.assign(e, OwnedMove)
			return
		}
		fp.assign(e, SharedBorrow)
		return
	}
	fp.value(e, infer.HintOwned, types.NoTypeID, ReasonNone)
}

// scrutinee borrows matched values for the same reason.
func (fp *funcPlanner) scrutinee(e *ast.Expr) {
	if v, ok := varRef(e); ok {
		if fp.res.HintFor(v.Binding).IsRef() || fp.copyBinding(v.Binding) {
			fp.assign(e, OwnedMove)
			return
		}
		fp.assign(e, SharedBorrow)
		return
	}
	fp.value(e, infer.HintOwned, types.NoTypeID, ReasonNone)
}

// placeReads walks an assignment target, planning only the value-like
// sub-expressions (index expressions); the place path itself needs no
// correction.
func (fp *funcPlanner) placeReads(e *ast.Expr) {
	for e != nil {
		switch d := e.Data.(type) {
		case *ast.VarRefData:
			return
		case *ast.FieldAccessData:
			e = d.Object
		case *ast.IndexData:
			fp.value(d.Index, infer.HintOwned, types.NoTypeID, ReasonNone)
			e = d.Seq
		default:
			fp.value(e, infer.HintOwned, types.NoTypeID, ReasonNone)
			return
		}
	}
}

// Expression planning ---------------------------------------------------------

// value plans one expression flowing into a position that requires the
// given hint. moveReason is the reason recorded if the flow turns into
// a planned duplicate of a live binding.
func (fp *funcPlanner) value(e *ast.Expr, required infer.Hint, wantType types.TypeID, moveReason Reason) {
	if e == nil {
		return
	}
	switch d := e.Data.(type) {
	case *ast.LiteralData:
		fp.literal(e, d, required, wantType)
	case *ast.VarRefData:
		fp.varUse(e, d, required, moveReason)
	case *ast.UnaryData:
		fp.value(d.Operand, infer.HintOwned, types.NoTypeID, ReasonNone)
		fp.resultUse(e, required)
	case *ast.BinaryData:
		fp.binary(e, d, required)
	case *ast.CallData:
		for pos, arg := range d.Args {
			reqHint, reqType := fp.argRequired(d.Callee, pos)
			fp.value(arg, reqHint, reqType, ReasonMovedButUsedLater)
		}
		fp.resultUse(e, required)
	case *ast.MethodCallData:
		fp.receiver(d)
		for pos, arg := range d.Args {
			reqHint, reqType := fp.argRequired(d.Callee, pos)
			reason := ReasonMovedButUsedLater
			if d.Callee.Kind == ast.CalleeUnknown && storingBuiltins[d.Callee.Name] {
				reason = ReasonStoredInCollection
			}
			fp.value(arg, reqHint, reqType, reason)
		}
		fp.resultUse(e, required)
	case *ast.FieldAccessData:
		fp.fieldAccess(e, d, required, moveReason)
	case *ast.IndexData:
		fp.indexAccess(e, d, required, false)
	case *ast.StructLitData:
		fp.structLit(d)
		fp.resultUse(e, required)
	case *ast.VariantCtorData:
		fp.variantCtor(d)
		fp.resultUse(e, required)
	case *ast.ListLitData:
		elemType := types.NoTypeID
		if t, ok := fp.prog.Types.Lookup(e.Type); ok && t.Kind == types.KindList {
			elemType = t.Elem
		}
		for _, el := range d.Elems {
			fp.value(el, infer.HintOwned, elemType, ReasonStoredInCollection)
		}
		fp.resultUse(e, required)
	case *ast.InterpData:
		for i := range d.Parts {
			if d.Parts[i].Expr != nil {
				// Formatting reads through references; embedded
				// bindings are never moved.
				fp.operand(d.Parts[i].Expr)
			}
		}
		if required.IsRef() {
			// No stable address until bound; hoist at any depth.
			fp.hoist(e)
			return
		}
		fp.assign(e, OwnedMove)
	}
}

// resultUse classifies how a freshly produced temporary flows into its
// position. Ephemeral strings are hoisted; everything else borrows or
// moves in place.
func (fp *funcPlanner) resultUse(e *ast.Expr, required infer.Hint) {
	if !required.IsRef() {
		fp.assign(e, OwnedMove)
		return
	}
	if fp.isEphemeralString(e) {
		fp.hoist(e)
		return
	}
	if required == infer.HintExclusiveRef {
		fp.assign(e, ExclusiveBorrow)
		return
	}
	fp.assign(e, SharedBorrow)
}

// literal handles the owned-conversion rule: a fixed string literal
// flowing into a reference-to-owned-growable-string position is
// wrapped in the owned conversion before the reference is taken.
func (fp *funcPlanner) literal(e *ast.Expr, d *ast.LiteralData, required infer.Hint, wantType types.TypeID) {
	if required.IsRef() {
		if d.Lit == ast.LitStr && fp.refTargetKind(wantType) == types.KindString {
			fp.assign(e, OwnedConv)
			return
		}
		if required == infer.HintExclusiveRef {
			fp.assign(e, ExclusiveBorrow)
			return
		}
		fp.assign(e, SharedBorrow)
		return
	}
	fp.assign(e, OwnedMove)
}

func (fp *funcPlanner) varUse(e *ast.Expr, d *ast.VarRefData, required infer.Hint, moveReason Reason) {
	h := fp.res.HintFor(d.Binding)
	if required.IsRef() {
		if h.IsRef() {
			// The binding is already a reference of sufficient
			// strictness by solver convergence; pass it unchanged.
			fp.assign(e, OwnedMove)
			return
		}
		if required == infer.HintExclusiveRef {
			fp.assign(e, ExclusiveBorrow)
			return
		}
		fp.assign(e, SharedBorrow)
		return
	}
	if fp.copyBinding(d.Binding) {
		fp.assign(e, OwnedMove)
		return
	}
	if h.IsRef() {
		fp.duplicate(e, ReasonCloneThroughRef)
		return
	}
	if moveReason != ReasonNone && fp.usedLater(d.Binding, e) {
		fp.duplicate(e, moveReason)
		return
	}
	fp.assign(e, OwnedMove)
}

// binary plans operands and then the result temporary itself. Equality
// between two bindings follows the exclusive-or dereference rule: only
// a lone referenced side is dereferenced, never both, never when the
// sides agree.
func (fp *funcPlanner) binary(e *ast.Expr, d *ast.BinaryData, required infer.Hint) {
	if d.Op.IsEquality() {
		lv, lok := varRef(d.Left)
		rv, rok := varRef(d.Right)
		if lok && rok {
			lref := fp.res.HintFor(lv.Binding).IsRef()
			rref := fp.res.HintFor(rv.Binding).IsRef()
			switch {
			case lref && !rref:
				fp.assign(d.Left, Dereference)
				fp.assign(d.Right, OwnedMove)
			case rref && !lref:
				fp.assign(d.Left, OwnedMove)
				fp.assign(d.Right, Dereference)
			default:
				fp.assign(d.Left, OwnedMove)
				fp.assign(d.Right, OwnedMove)
			}
			fp.resultUse(e, required)
			return
		}
	}
	fp.operand(d.Left)
	fp.operand(d.Right)
	fp.resultUse(e, required)
}

// operand plans a binary operand as a pure read: operators never move
// their inputs.
func (fp *funcPlanner) operand(e *ast.Expr) {
	if _, ok := varRef(e); ok {
		fp.assign(e, OwnedMove)
		return
	}
	fp.value(e, infer.HintOwned, types.NoTypeID, ReasonNone)
}

// fieldAccess plans reading a field as a value. Moving a non-copy
// field out of a reference-held aggregate needs a duplication first.
func (fp *funcPlanner) fieldAccess(e *ast.Expr, d *ast.FieldAccessData, required infer.Hint, moveReason Reason) {
	fp.fieldObject(d.Object)
	if required.IsRef() {
		if required == infer.HintExclusiveRef {
			fp.assign(e, ExclusiveBorrow)
			return
		}
		fp.assign(e, SharedBorrow)
		return
	}
	if fp.res.IsCopy(e.Type) {
		fp.assign(e, OwnedMove)
		return
	}
	if root, ok := placeRoot(d.Object); ok && fp.res.HintFor(root).IsRef() {
		why := ReasonCloneThroughRef
		if moveReason == ReasonConsumingThroughRef {
			why = ReasonConsumingThroughRef
		}
		fp.duplicate(e, why)
		return
	}
	fp.assign(e, OwnedMove)
}

// fieldObject walks the place path under a field access, tagging only
// indexed steps: a non-copy element read whose surrounding use is a
// field access borrows, it never clones.
func (fp *funcPlanner) fieldObject(e *ast.Expr) {
	switch d := e.Data.(type) {
	case *ast.VarRefData:
		// Plain place path; field access reads through it unchanged.
	case *ast.FieldAccessData:
		fp.fieldObject(d.Object)
	case *ast.IndexData:
		fp.indexAccess(e, d, infer.HintOwned, true)
	default:
		fp.value(e, infer.HintOwned, types.NoTypeID, ReasonNone)
	}
}

// indexAccess implements the indexed-collection rule: copy elements
// pass as-is, read-only field use borrows, everything else duplicates.
// The decision is a single assignment, so borrow and clone can never
// stack on the same indexed access.
func (fp *funcPlanner) indexAccess(e *ast.Expr, d *ast.IndexData, required infer.Hint, underField bool) {
	fp.indexBase(d.Seq)
	fp.value(d.Index, infer.HintOwned, types.NoTypeID, ReasonNone)

	if fp.res.IsCopy(e.Type) {
		fp.assign(e, OwnedMove)
		return
	}
	if underField {
		fp.assign(e, SharedBorrow)
		return
	}
	if required.IsRef() {
		if required == infer.HintExclusiveRef {
			fp.assign(e, ExclusiveBorrow)
			return
		}
		fp.assign(e, SharedBorrow)
		return
	}
	fp.duplicate(e, ReasonElementExtract)
}

// indexBase plans the collection expression under an index.
func (fp *funcPlanner) indexBase(e *ast.Expr) {
	switch d := e.Data.(type) {
	case *ast.VarRefData:
	case *ast.FieldAccessData:
		fp.fieldObject(d.Object)
	case *ast.IndexData:
		fp.indexAccess(e, d, infer.HintOwned, true)
	default:
		fp.value(e, infer.HintOwned, types.NoTypeID, ReasonNone)
	}
}

// receiver plans a method call receiver. Receivers auto-borrow in the
// target language, so only consuming accessors need correction; the
// duplicate-before-consuming-unwrap rule for shared aggregates lives
// in the field-access path.
func (fp *funcPlanner) receiver(d *ast.MethodCallData) {
	if fp.res.Detector != nil && fp.res.Detector.ConsumesReceiver(d.Callee) {
		fp.value(d.Recv, infer.HintOwned, types.NoTypeID, ReasonConsumingThroughRef)
		return
	}
	switch rd := d.Recv.Data.(type) {
	case *ast.VarRefData:
		fp.assign(d.Recv, OwnedMove)
	case *ast.FieldAccessData:
		fp.fieldObject(rd.Object)
	case *ast.IndexData:
		fp.indexAccess(d.Recv, rd, infer.HintOwned, true)
	default:
		fp.value(d.Recv, infer.HintOwned, types.NoTypeID, ReasonNone)
	}
}

func (fp *funcPlanner) structLit(d *ast.StructLitData) {
	info, ok := fp.prog.Types.Struct(d.Type)
	for i := range d.Fields {
		f := &d.Fields[i]
		fieldType := types.NoTypeID
		if ok && f.FieldIdx >= 0 && f.FieldIdx < len(info.Fields) {
			fieldType = info.Fields[f.FieldIdx].Type
		}
		fp.value(f.Value, fp.typeRequired(fieldType), fieldType, ReasonStoredInCollection)
	}
}

func (fp *funcPlanner) variantCtor(d *ast.VariantCtorData) {
	info, ok := fp.prog.Types.Enum(d.Enum)
	var payload []types.TypeID
	if ok && d.VariantIdx >= 0 && d.VariantIdx < len(info.Variants) {
		payload = info.Variants[d.VariantIdx].Payload
	}
	for i, arg := range d.Args {
		argType := types.NoTypeID
		if i < len(payload) {
			argType = payload[i]
		}
		fp.value(arg, fp.typeRequired(argType), argType, ReasonStoredInCollection)
	}
}

// Requirement helpers ---------------------------------------------------------

// argRequired resolves the hint and declared type a callee expects at
// an argument position. Unknown callees degrade to owned, the always
// structurally valid choice.
func (fp *funcPlanner) argRequired(c ast.Callee, pos int) (infer.Hint, types.TypeID) {
	switch c.Kind {
	case ast.CalleeFunc:
		sig := fp.res.Registry.Sig(c.Func)
		if sig != nil {
			if ps := sig.At(pos); ps != nil {
				return ps.Hint, ps.Type
			}
		}
	case ast.CalleeTraitMethod:
		td := fp.prog.Trait(c.Trait)
		declared := types.NoTypeID
		if td != nil && c.Method >= 0 && c.Method < len(td.Methods) {
			m := &td.Methods[c.Method]
			if pos >= 0 && pos < len(m.Params) {
				declared = m.Params[pos].Type
			}
		}
		if h, ok := fp.res.Registry.TraitHint(c.Trait, c.Method, pos); ok {
			return h, declared
		}
		return infer.HintOwned, declared
	}
	return infer.HintOwned, types.NoTypeID
}

// typeRequired maps a declared type onto the hint the position forces.
func (fp *funcPlanner) typeRequired(id types.TypeID) infer.Hint {
	if t, ok := fp.prog.Types.Lookup(id); ok {
		switch t.Kind {
		case types.KindRef:
			return infer.HintSharedRef
		case types.KindRefMut:
			return infer.HintExclusiveRef
		}
	}
	return infer.HintOwned
}

// refTargetKind returns the kind behind one level of reference.
func (fp *funcPlanner) refTargetKind(id types.TypeID) types.Kind {
	t, ok := fp.prog.Types.Lookup(id)
	if !ok || !t.IsRef() {
		return types.KindInvalid
	}
	inner, ok := fp.prog.Types.Lookup(t.Elem)
	if !ok {
		return types.KindInvalid
	}
	return inner.Kind
}

func (fp *funcPlanner) copyBinding(b ast.BindingID) bool {
	bind := fp.prog.Binding(b)
	if bind == nil {
		return false
	}
	return fp.res.IsCopy(bind.Type)
}

// isEphemeralString reports whether the expression builds a fresh
// string with no stable address: interpolation or string
// concatenation.
func (fp *funcPlanner) isEphemeralString(e *ast.Expr) bool {
	switch d := e.Data.(type) {
	case *ast.InterpData:
		return true
	case *ast.BinaryData:
		if d.Op != ast.BinAdd {
			return false
		}
		if t, ok := fp.prog.Types.Lookup(e.Type); ok {
			return t.Kind == types.KindString
		}
	}
	return false
}

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

func varRef(e *ast.Expr) (*ast.VarRefData, bool) {
	if e == nil || e.Kind != ast.ExprVarRef {
		return nil, false
	}
	v, ok := e.Data.(*ast.VarRefData)
	return v, ok
}

// storingBuiltins are the container methods that take ownership of
// their value argument.
var storingBuiltins = map[string]bool{
	"push":   true,
	"insert": true,
}
