package ast

import (
	"encoding/json"
	"fmt"

	"keel/internal/diag"
	"keel/internal/source"
	"keel/internal/types"
)

// CurrentSchema is the payload schema version this decoder accepts.
const CurrentSchema = 1

// Payload is one parsed-but-unbuilt program AST payload, as produced by
// the external parser. Parsing is cheap and side-effect free so the
// driver can run it concurrently; building is sequential.
type Payload struct {
	Name string
	wire wireProgram
}

// ParsePayload unmarshals a payload without touching any program state.
func ParsePayload(data []byte, name string) (*Payload, error) {
	var w wireProgram
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if w.Schema != CurrentSchema {
		return nil, fmt.Errorf("parse %s: schema %d unsupported (want %d)", name, w.Schema, CurrentSchema)
	}
	return &Payload{Name: name, wire: w}, nil
}

// BuildProgram assembles payloads into one Program, reporting every
// inconsistency it can recover from and returning the program in
// whatever shape it reached. Callers must treat reporter errors as
// fatal for the run.
func BuildProgram(payloads []*Payload, reporter diag.Reporter) *Program {
	b := &builder{
		prog:     NewProgram(),
		reporter: reporter,
	}
	if len(payloads) > 0 {
		b.prog.Package = payloads[0].wire.Package
	}
	for _, p := range payloads {
		b.registerFiles(p)
	}
	for i, p := range payloads {
		b.declareTypes(i, p)
	}
	for i, p := range payloads {
		b.fillTypes(i, p)
	}
	for i, p := range payloads {
		b.declareTraits(i, p)
	}
	for i, p := range payloads {
		b.declareFuncs(i, p)
	}
	for i, p := range payloads {
		b.buildBodies(i, p)
	}
	return b.prog
}

// Wire structures -------------------------------------------------------------

type wireProgram struct {
	Schema  int           `json:"schema"`
	Package string        `json:"package,omitempty"`
	Files   []wireFile    `json:"files,omitempty"`
	Types   []wireTypeDef `json:"types,omitempty"`
	Traits  []wireTrait   `json:"traits,omitempty"`
	Funcs   []wireFunc    `json:"funcs,omitempty"`
}

type wireFile struct {
	Path   string `json:"path"`
	Source string `json:"source,omitempty"`
}

type wireSpan struct {
	File  int    `json:"file"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type wireType struct {
	K     string     `json:"k"`
	Width uint8      `json:"width,omitempty"`
	Elem  *wireType  `json:"elem,omitempty"`
	Key   *wireType  `json:"key,omitempty"`
	Value *wireType  `json:"value,omitempty"`
	Elems []wireType `json:"elems,omitempty"`
	Name  string     `json:"name,omitempty"`
	Mut   bool       `json:"mut,omitempty"`
}

type wireTypeDef struct {
	Kind     string        `json:"kind"`
	Name     string        `json:"name"`
	Span     *wireSpan     `json:"span,omitempty"`
	Fields   []wireField   `json:"fields,omitempty"`
	Variants []wireVariant `json:"variants,omitempty"`
}

type wireField struct {
	Name string    `json:"name"`
	Type wireType  `json:"type"`
	Span *wireSpan `json:"span,omitempty"`
}

type wireVariant struct {
	Name    string     `json:"name"`
	Payload []wireType `json:"payload,omitempty"`
	Span    *wireSpan  `json:"span,omitempty"`
}

type wireTrait struct {
	Name    string            `json:"name"`
	Span    *wireSpan         `json:"span,omitempty"`
	Methods []wireTraitMethod `json:"methods"`
}

type wireTraitMethod struct {
	Name   string           `json:"name"`
	Params []wireTraitParam `json:"params,omitempty"`
	Result *wireType        `json:"result,omitempty"`
	Span   *wireSpan        `json:"span,omitempty"`
}

type wireTraitParam struct {
	Name string   `json:"name"`
	Type wireType `json:"type"`
}

type wireFunc struct {
	Name     string      `json:"name"`
	Owner    string      `json:"owner,omitempty"`
	Trait    string      `json:"trait,omitempty"`
	Receiver *wireParam  `json:"receiver,omitempty"`
	Params   []wireParam `json:"params,omitempty"`
	Result   *wireType   `json:"result,omitempty"`
	Body     *wireBlock  `json:"body,omitempty"`
	Span     *wireSpan   `json:"span,omitempty"`
}

type wireParam struct {
	Name    string    `json:"name"`
	Binding int       `json:"binding"`
	Type    wireType  `json:"type"`
	Span    *wireSpan `json:"span,omitempty"`
}

type wireBlock struct {
	Stmts []wireStmt `json:"stmts"`
	Span  *wireSpan  `json:"span,omitempty"`
}

type wireStmt struct {
	Kind string    `json:"kind"`
	Span *wireSpan `json:"span,omitempty"`

	Name    string    `json:"name,omitempty"`
	Binding int       `json:"binding,omitempty"`
	Mut     bool      `json:"mut,omitempty"`
	Type    *wireType `json:"type,omitempty"`
	Value   *wireExpr `json:"value,omitempty"`

	Op     string    `json:"op,omitempty"`
	Target *wireExpr `json:"target,omitempty"`

	Expr *wireExpr `json:"expr,omitempty"`

	Cond *wireExpr  `json:"cond,omitempty"`
	Then *wireBlock `json:"then,omitempty"`
	Else *wireBlock `json:"else,omitempty"`
	Body *wireBlock `json:"body,omitempty"`
	Iter *wireExpr  `json:"iter,omitempty"`

	Scrutinee *wireExpr `json:"scrutinee,omitempty"`
	Arms      []wireArm `json:"arms,omitempty"`
}

type wireArm struct {
	Variant  string           `json:"variant"`
	Bindings []wireArmBinding `json:"bindings,omitempty"`
	Body     wireBlock        `json:"body"`
	Span     *wireSpan        `json:"span,omitempty"`
}

type wireArmBinding struct {
	Name    string `json:"name"`
	Binding int    `json:"binding"`
}

type wireExpr struct {
	Kind string    `json:"kind"`
	Span *wireSpan `json:"span,omitempty"`
	Type *wireType `json:"type,omitempty"`

	Lit   string  `json:"lit,omitempty"`
	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Bool  bool    `json:"bool,omitempty"`
	Str   string  `json:"str,omitempty"`

	Name    string `json:"name,omitempty"`
	Binding int    `json:"binding,omitempty"`

	Op      string    `json:"op,omitempty"`
	Operand *wireExpr `json:"operand,omitempty"`
	Left    *wireExpr `json:"left,omitempty"`
	Right   *wireExpr `json:"right,omitempty"`

	Callee string     `json:"callee,omitempty"`
	Trait  string     `json:"trait,omitempty"`
	Recv   *wireExpr  `json:"recv,omitempty"`
	Args   []wireExpr `json:"args,omitempty"`

	Object *wireExpr `json:"object,omitempty"`
	Field  string    `json:"field,omitempty"`

	Seq   *wireExpr `json:"seq,omitempty"`
	Index *wireExpr `json:"index,omitempty"`

	Fields []wireFieldInit `json:"fields,omitempty"`

	Enum    string `json:"enum,omitempty"`
	Variant string `json:"variant,omitempty"`

	Elems []wireExpr `json:"elems,omitempty"`

	Parts []wirePart `json:"parts,omitempty"`
}

type wireFieldInit struct {
	Name  string    `json:"name"`
	Value wireExpr  `json:"value"`
	Span  *wireSpan `json:"span,omitempty"`
}

type wirePart struct {
	Lit  string    `json:"lit,omitempty"`
	Expr *wireExpr `json:"expr,omitempty"`
}

// Builder ---------------------------------------------------------------------

type builder struct {
	prog     *Program
	reporter diag.Reporter
	fileMaps [][]source.FileID // per payload: wire file index -> FileID

	// Per-function decode state.
	curFunc  FuncID
	bindings map[int]BindingID
}

func (b *builder) errorf(sp source.Span, code diag.Code, format string, args ...any) {
	diag.ReportError(b.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (b *builder) warnf(sp source.Span, code diag.Code, format string, args ...any) {
	diag.ReportWarning(b.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (b *builder) registerFiles(p *Payload) {
	ids := make([]source.FileID, len(p.wire.Files))
	for i, f := range p.wire.Files {
		if f.Source != "" {
			ids[i] = b.prog.Files.AddVirtual(f.Path, []byte(f.Source))
		} else {
			ids[i] = b.prog.Files.AddPathOnly(f.Path)
		}
	}
	b.fileMaps = append(b.fileMaps, ids)
}

func (b *builder) span(payload int, sp *wireSpan) source.Span {
	if sp == nil {
		return source.Span{}
	}
	files := b.fileMaps[payload]
	if sp.File < 0 || sp.File >= len(files) {
		b.warnf(source.Span{}, diag.InputBadFileRef, "span refers to file #%d but payload lists %d files", sp.File, len(files))
		return source.Span{}
	}
	return source.Span{File: files[sp.File], Start: sp.Start, End: sp.End}
}

func (b *builder) declareTypes(payload int, p *Payload) {
	for _, td := range p.wire.Types {
		sp := b.span(payload, td.Span)
		switch td.Kind {
		case "struct":
			if _, err := b.prog.Types.DeclareStruct(td.Name, sp); err != nil {
				b.errorf(sp, diag.InputDuplicateType, "%v", err)
			}
		case "enum":
			if _, err := b.prog.Types.DeclareEnum(td.Name, sp); err != nil {
				b.errorf(sp, diag.InputDuplicateType, "%v", err)
			}
		default:
			b.errorf(sp, diag.InputBadJSON, "type definition %q has unknown kind %q", td.Name, td.Kind)
		}
	}
}

func (b *builder) fillTypes(payload int, p *Payload) {
	for _, td := range p.wire.Types {
		id, ok := b.prog.Types.Named(td.Name)
		if !ok {
			continue // declaration already failed
		}
		switch td.Kind {
		case "struct":
			fields := make([]types.Field, 0, len(td.Fields))
			seen := make(map[string]bool, len(td.Fields))
			for _, wf := range td.Fields {
				fsp := b.span(payload, wf.Span)
				if seen[wf.Name] {
					b.errorf(fsp, diag.InputDuplicateField, "struct %q field %q listed twice", td.Name, wf.Name)
					continue
				}
				seen[wf.Name] = true
				fields = append(fields, types.Field{
					Name: wf.Name,
					Type: b.resolveType(payload, &wf.Type, fsp),
					Span: fsp,
				})
			}
			b.prog.Types.SetStructFields(id, fields)
		case "enum":
			variants := make([]types.Variant, 0, len(td.Variants))
			for _, wv := range td.Variants {
				vsp := b.span(payload, wv.Span)
				payloadTypes := make([]types.TypeID, len(wv.Payload))
				for i := range wv.Payload {
					payloadTypes[i] = b.resolveType(payload, &wv.Payload[i], vsp)
				}
				variants = append(variants, types.Variant{
					Name:    wv.Name,
					Payload: payloadTypes,
					Span:    vsp,
				})
			}
			b.prog.Types.SetEnumVariants(id, variants)
		}
	}
}

func (b *builder) resolveType(payload int, w *wireType, at source.Span) types.TypeID {
	if w == nil {
		return b.prog.Types.Builtins().Unit
	}
	in := b.prog.Types
	bt := in.Builtins()
	switch w.K {
	case "unit":
		return bt.Unit
	case "bool":
		return bt.Bool
	case "int":
		if w.Width == 0 {
			return bt.Int
		}
		return in.Intern(types.MakeInt(types.Width(w.Width)))
	case "uint":
		if w.Width == 0 {
			return bt.Uint
		}
		return in.Intern(types.MakeUint(types.Width(w.Width)))
	case "float":
		if w.Width == 0 {
			return bt.Float
		}
		return in.Intern(types.MakeFloat(types.Width(w.Width)))
	case "char":
		return bt.Char
	case "str":
		return bt.StrView
	case "string":
		return bt.String
	case "list":
		return in.Intern(types.MakeList(b.resolveType(payload, w.Elem, at)))
	case "map":
		key := b.resolveType(payload, w.Key, at)
		val := w.Value
		if val == nil {
			val = w.Elem
		}
		return in.Intern(types.MakeMap(key, b.resolveType(payload, val, at)))
	case "option":
		return in.Intern(types.MakeOption(b.resolveType(payload, w.Elem, at)))
	case "tuple":
		elems := make([]types.TypeID, len(w.Elems))
		for i := range w.Elems {
			elems[i] = b.resolveType(payload, &w.Elems[i], at)
		}
		return in.InternTuple(elems)
	case "ref":
		return in.Intern(types.MakeRef(b.resolveType(payload, w.Elem, at), w.Mut))
	case "named":
		if id, ok := in.Named(w.Name); ok {
			return id
		}
		b.errorf(at, diag.InputUnknownType, "unknown type %q", w.Name)
		return types.NoTypeID
	}
	b.errorf(at, diag.InputUnknownType, "unknown type kind %q", w.K)
	return types.NoTypeID
}

func (b *builder) declareTraits(payload int, p *Payload) {
	for _, wt := range p.wire.Traits {
		sp := b.span(payload, wt.Span)
		methods := make([]TraitMethod, 0, len(wt.Methods))
		for _, wm := range wt.Methods {
			msp := b.span(payload, wm.Span)
			params := make([]TraitParam, len(wm.Params))
			for i, wp := range wm.Params {
				params[i] = TraitParam{
					Name: wp.Name,
					Type: b.resolveType(payload, &wp.Type, msp),
				}
			}
			methods = append(methods, TraitMethod{
				Name:   wm.Name,
				Params: params,
				Result: b.resolveType(payload, wm.Result, msp),
				Span:   msp,
			})
		}
		if _, err := b.prog.AddTrait(TraitDef{Name: wt.Name, Methods: methods, Span: sp}); err != nil {
			b.errorf(sp, diag.InputDuplicateType, "%v", err)
		}
	}
}

func (b *builder) declareFuncs(payload int, p *Payload) {
	for fi := range p.wire.Funcs {
		wf := &p.wire.Funcs[fi]
		sp := b.span(payload, wf.Span)

		f := Func{
			Name:        wf.Name,
			Result:      b.resolveType(payload, wf.Result, sp),
			Span:        sp,
			TraitMethod: -1,
		}
		if wf.Owner != "" {
			owner, ok := b.prog.Types.Named(wf.Owner)
			if !ok {
				b.errorf(sp, diag.InputUnknownType, "method %q names unknown owner type %q", wf.Name, wf.Owner)
				continue
			}
			f.Owner = owner
		}
		if wf.Trait != "" {
			traitID, ok := b.prog.TraitByName(wf.Trait)
			if !ok {
				b.errorf(sp, diag.InputUnknownTrait, "function %q implements unknown trait %q", wf.Name, wf.Trait)
			} else {
				trait := b.prog.Trait(traitID)
				idx := trait.MethodIndex(wf.Name)
				if idx < 0 {
					b.errorf(sp, diag.InputTraitMethodMiss, "trait %q has no method %q", wf.Trait, wf.Name)
				} else {
					if len(trait.Methods[idx].Params) != len(wf.Params) {
						b.errorf(sp, diag.InputTraitMethodMiss,
							"method %q takes %d parameters but trait %q declares %d",
							wf.Name, len(wf.Params), wf.Trait, len(trait.Methods[idx].Params))
					}
					f.Trait = traitID
					f.TraitMethod = idx
					f.Flags |= FuncTraitImpl
				}
			}
		}
		if wf.Body != nil {
			f.Flags |= FuncHasBody
		}

		id, err := b.prog.AddFunc(f)
		if err != nil {
			b.errorf(sp, diag.InputDuplicateFunc, "%v", err)
			continue
		}
		stored := b.prog.Func(id)

		if wf.Receiver != nil {
			if stored.Owner == types.NoTypeID {
				b.errorf(sp, diag.InputBadJSON, "function %q has a receiver but no owner type", wf.Name)
			} else {
				recv := b.declareParam(payload, id, wf.Receiver, BindReceiver, ReceiverPos)
				stored.Receiver = &recv
			}
		}
		stored.Params = make([]Param, 0, len(wf.Params))
		for pi := range wf.Params {
			stored.Params = append(stored.Params, b.declareParam(payload, id, &wf.Params[pi], BindParam, pi))
		}
	}
}

func (b *builder) declareParam(payload int, fn FuncID, wp *wireParam, kind BindingKind, pos int) Param {
	sp := b.span(payload, wp.Span)
	ty := b.resolveType(payload, &wp.Type, sp)
	binding := b.prog.AddBinding(Binding{
		Name:     wp.Name,
		Type:     ty,
		Func:     fn,
		Kind:     kind,
		ParamPos: pos,
		Span:     sp,
	})
	return Param{Name: wp.Name, Binding: binding, Type: ty, Span: sp}
}

// paramWireBindings re-walks a wire function's parameter list to seed
// the per-function wire-to-program binding map for body decoding.
func (b *builder) paramWireBindings(wf *wireFunc, f *Func) {
	if wf.Receiver != nil && f.Receiver != nil {
		b.bindings[wf.Receiver.Binding] = f.Receiver.Binding
	}
	for i := range wf.Params {
		if i < len(f.Params) {
			b.bindings[wf.Params[i].Binding] = f.Params[i].Binding
		}
	}
}

func (b *builder) buildBodies(payload int, p *Payload) {
	for fi := range p.wire.Funcs {
		wf := &p.wire.Funcs[fi]
		qual := wf.Name
		if wf.Owner != "" {
			if owner, ok := b.prog.Types.Named(wf.Owner); ok {
				qual = b.prog.Types.TypeString(owner) + "::" + wf.Name
			}
		}
		id, ok := b.prog.FuncByQual(qual)
		if !ok {
			continue // declaration failed earlier
		}
		f := b.prog.Func(id)
		if wf.Body == nil {
			continue
		}

		b.curFunc = id
		b.bindings = make(map[int]BindingID, 8)
		b.paramWireBindings(wf, f)

		body := b.buildBlock(payload, wf.Body)
		f.Body = &body
	}
}

func (b *builder) buildBlock(payload int, wb *wireBlock) Block {
	out := Block{
		Stmts: make([]Stmt, 0, len(wb.Stmts)),
		Span:  b.span(payload, wb.Span),
	}
	for si := range wb.Stmts {
		if st, ok := b.buildStmt(payload, &wb.Stmts[si]); ok {
			out.Stmts = append(out.Stmts, st)
		}
	}
	return out
}

func (b *builder) buildStmt(payload int, ws *wireStmt) (Stmt, bool) {
	sp := b.span(payload, ws.Span)
	switch ws.Kind {
	case "let":
		value := b.buildExpr(payload, ws.Value)
		ty := types.NoTypeID
		if ws.Type != nil {
			ty = b.resolveType(payload, ws.Type, sp)
		} else if value != nil {
			ty = value.Type
		}
		binding := b.prog.AddBinding(Binding{
			Name:    ws.Name,
			Type:    ty,
			Func:    b.curFunc,
			Kind:    BindLocal,
			Mutable: ws.Mut,
			Span:    sp,
		})
		b.bindings[ws.Binding] = binding
		return Stmt{Kind: StmtLet, Span: sp, Data: &LetData{
			Name:    ws.Name,
			Binding: binding,
			Type:    ty,
			Value:   value,
			Mutable: ws.Mut,
		}}, true
	case "assign":
		target := b.buildExpr(payload, ws.Target)
		value := b.buildExpr(payload, ws.Value)
		if target == nil || value == nil {
			b.errorf(sp, diag.InputBadExpr, "assignment missing target or value")
			return Stmt{}, false
		}
		return Stmt{Kind: StmtAssign, Span: sp, Data: &AssignData{
			Op:     parseAssignOp(ws.Op),
			Target: target,
			Value:  value,
		}}, true
	case "expr":
		e := b.buildExpr(payload, ws.Expr)
		if e == nil {
			b.errorf(sp, diag.InputBadExpr, "expression statement missing expression")
			return Stmt{}, false
		}
		return Stmt{Kind: StmtExpr, Span: sp, Data: &ExprStmtData{Expr: e}}, true
	case "return":
		return Stmt{Kind: StmtReturn, Span: sp, Data: &ReturnData{
			Value: b.buildExpr(payload, ws.Value),
		}}, true
	case "if":
		cond := b.buildExpr(payload, ws.Cond)
		if cond == nil || ws.Then == nil {
			b.errorf(sp, diag.InputBadExpr, "if statement missing condition or then block")
			return Stmt{}, false
		}
		data := &IfData{Cond: cond, Then: b.buildBlock(payload, ws.Then)}
		if ws.Else != nil {
			elseBlock := b.buildBlock(payload, ws.Else)
			data.Else = &elseBlock
		}
		return Stmt{Kind: StmtIf, Span: sp, Data: data}, true
	case "while":
		cond := b.buildExpr(payload, ws.Cond)
		if cond == nil || ws.Body == nil {
			b.errorf(sp, diag.InputBadExpr, "while statement missing condition or body")
			return Stmt{}, false
		}
		return Stmt{Kind: StmtWhile, Span: sp, Data: &WhileData{
			Cond: cond,
			Body: b.buildBlock(payload, ws.Body),
		}}, true
	case "for":
		iter := b.buildExpr(payload, ws.Iter)
		if iter == nil || ws.Body == nil {
			b.errorf(sp, diag.InputBadExpr, "for statement missing iterable or body")
			return Stmt{}, false
		}
		elemType := types.NoTypeID
		if it, ok := b.prog.Types.Lookup(iter.Type); ok && it.Kind == types.KindList {
			elemType = it.Elem
		}
		binding := b.prog.AddBinding(Binding{
			Name: ws.Name,
			Type: elemType,
			Func: b.curFunc,
			Kind: BindLoop,
			Span: sp,
		})
		b.bindings[ws.Binding] = binding
		return Stmt{Kind: StmtFor, Span: sp, Data: &ForData{
			Name:    ws.Name,
			Binding: binding,
			Iter:    iter,
			Body:    b.buildBlock(payload, ws.Body),
		}}, true
	case "match":
		scrutinee := b.buildExpr(payload, ws.Scrutinee)
		if scrutinee == nil {
			b.errorf(sp, diag.InputBadExpr, "match statement missing scrutinee")
			return Stmt{}, false
		}
		data := &MatchData{Scrutinee: scrutinee}
		enumInfo, _ := b.prog.Types.Enum(scrutineeEnum(b.prog.Types, scrutinee.Type))
		for ai := range ws.Arms {
			wa := &ws.Arms[ai]
			asp := b.span(payload, wa.Span)
			arm := MatchArm{Variant: wa.Variant, VariantIdx: -1, Span: asp}
			var payloadTypes []types.TypeID
			if enumInfo != nil {
				if v, idx, ok := enumInfo.VariantByName(wa.Variant); ok {
					arm.VariantIdx = idx
					payloadTypes = v.Payload
				} else {
					b.errorf(asp, diag.InputUnknownVariant, "enum %q has no variant %q", enumInfo.Name, wa.Variant)
				}
			}
			for bi, wab := range wa.Bindings {
				ty := types.NoTypeID
				if bi < len(payloadTypes) {
					ty = payloadTypes[bi]
				}
				binding := b.prog.AddBinding(Binding{
					Name: wab.Name,
					Type: ty,
					Func: b.curFunc,
					Kind: BindMatchArm,
					Span: asp,
				})
				b.bindings[wab.Binding] = binding
				arm.Bindings = append(arm.Bindings, binding)
			}
			arm.Body = b.buildBlock(payload, &wa.Body)
			data.Arms = append(data.Arms, arm)
		}
		return Stmt{Kind: StmtMatch, Span: sp, Data: data}, true
	case "block":
		if ws.Body == nil {
			b.errorf(sp, diag.InputBadExpr, "block statement missing body")
			return Stmt{}, false
		}
		return Stmt{Kind: StmtBlock, Span: sp, Data: &BlockData{
			Body: b.buildBlock(payload, ws.Body),
		}}, true
	}
	b.errorf(sp, diag.InputBadExpr, "unknown statement kind %q", ws.Kind)
	return Stmt{}, false
}

func scrutineeEnum(in *types.Interner, id types.TypeID) types.TypeID {
	for {
		t, ok := in.Lookup(id)
		if !ok {
			return types.NoTypeID
		}
		switch t.Kind {
		case types.KindRef, types.KindRefMut:
			id = t.Elem
		case types.KindEnum:
			return id
		default:
			return types.NoTypeID
		}
	}
}

func parseAssignOp(op string) AssignOp {
	switch op {
	case "+=":
		return AssignAdd
	case "-=":
		return AssignSub
	case "*=":
		return AssignMul
	case "/=":
		return AssignDiv
	default:
		return AssignSet
	}
}

func parseBinOp(op string) (BinOp, bool) {
	switch op {
	case "+":
		return BinAdd, true
	case "-":
		return BinSub, true
	case "*":
		return BinMul, true
	case "/":
		return BinDiv, true
	case "%":
		return BinRem, true
	case "==":
		return BinEq, true
	case "!=":
		return BinNe, true
	case "<":
		return BinLt, true
	case "<=":
		return BinLe, true
	case ">":
		return BinGt, true
	case ">=":
		return BinGe, true
	case "&&":
		return BinAnd, true
	case "||":
		return BinOr, true
	}
	return BinAdd, false
}
