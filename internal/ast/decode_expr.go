package ast

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"keel/internal/diag"
	"keel/internal/source"
	"keel/internal/types"
)

func (b *builder) buildExpr(payload int, we *wireExpr) *Expr {
	if we == nil {
		return nil
	}
	sp := b.span(payload, we.Span)
	var out *Expr
	switch we.Kind {
	case "lit":
		out = b.buildLiteral(we, sp)
	case "var":
		binding, ok := b.bindings[we.Binding]
		if !ok {
			b.errorf(sp, diag.InputUnknownBinding, "variable %q refers to undeclared binding #%d", we.Name, we.Binding)
			return nil
		}
		out = &Expr{
			Kind: ExprVarRef,
			Type: b.prog.Binding(binding).Type,
			Span: sp,
			Data: &VarRefData{Name: we.Name, Binding: binding},
		}
	case "unary":
		operand := b.buildExpr(payload, we.Operand)
		if operand == nil {
			b.errorf(sp, diag.InputBadExpr, "unary expression missing operand")
			return nil
		}
		op := UnaryNeg
		ty := operand.Type
		if we.Op == "!" {
			op = UnaryNot
			ty = b.prog.Types.Builtins().Bool
		}
		out = &Expr{Kind: ExprUnary, Type: ty, Span: sp, Data: &UnaryData{Op: op, Operand: operand}}
	case "binary":
		left := b.buildExpr(payload, we.Left)
		right := b.buildExpr(payload, we.Right)
		if left == nil || right == nil {
			b.errorf(sp, diag.InputBadExpr, "binary expression missing operand")
			return nil
		}
		op, ok := parseBinOp(we.Op)
		if !ok {
			b.errorf(sp, diag.InputBadExpr, "unknown binary operator %q", we.Op)
			return nil
		}
		out = &Expr{
			Kind: ExprBinary,
			Type: b.binaryResult(op, left, right),
			Span: sp.Cover(left.Span).Cover(right.Span),
			Data: &BinaryData{Op: op, Left: left, Right: right},
		}
	case "call":
		args := b.buildExprs(payload, we.Args)
		callee, result := b.resolveCallee(we, sp, types.NoTypeID, len(args))
		out = &Expr{Kind: ExprCall, Type: result, Span: sp, Data: &CallData{Callee: callee, Args: args}}
	case "method":
		recv := b.buildExpr(payload, we.Recv)
		if recv == nil {
			b.errorf(sp, diag.InputBadExpr, "method call %q missing receiver", we.Callee)
			return nil
		}
		args := b.buildExprs(payload, we.Args)
		callee, result := b.resolveCallee(we, sp, recv.Type, len(args))
		out = &Expr{Kind: ExprMethodCall, Type: result, Span: sp, Data: &MethodCallData{
			Recv:   recv,
			Callee: callee,
			Args:   args,
		}}
	case "field":
		object := b.buildExpr(payload, we.Object)
		if object == nil {
			b.errorf(sp, diag.InputBadExpr, "field access missing object")
			return nil
		}
		fieldType, fieldIdx := b.fieldType(object.Type, we.Field, sp)
		out = &Expr{Kind: ExprFieldAccess, Type: fieldType, Span: sp, Data: &FieldAccessData{
			Object:   object,
			Field:    we.Field,
			FieldIdx: fieldIdx,
		}}
	case "index":
		seq := b.buildExpr(payload, we.Seq)
		index := b.buildExpr(payload, we.Index)
		if seq == nil || index == nil {
			b.errorf(sp, diag.InputBadExpr, "index expression missing sequence or index")
			return nil
		}
		out = &Expr{Kind: ExprIndex, Type: b.elementType(seq.Type), Span: sp, Data: &IndexData{
			Seq:   seq,
			Index: index,
		}}
	case "struct":
		out = b.buildStructLit(payload, we, sp)
	case "variant":
		out = b.buildVariantCtor(payload, we, sp)
	case "list":
		elems := b.buildExprs(payload, we.Elems)
		elemType := types.NoTypeID
		if len(elems) > 0 {
			elemType = elems[0].Type
		}
		out = &Expr{
			Kind: ExprListLit,
			Type: b.prog.Types.Intern(types.MakeList(elemType)),
			Span: sp,
			Data: &ListLitData{Elems: elems},
		}
	case "interp":
		parts := make([]InterpPart, 0, len(we.Parts))
		for pi := range we.Parts {
			wp := &we.Parts[pi]
			if wp.Expr != nil {
				if e := b.buildExpr(payload, wp.Expr); e != nil {
					parts = append(parts, InterpPart{Expr: e})
				}
			} else {
				parts = append(parts, InterpPart{Lit: norm.NFC.String(wp.Lit)})
			}
		}
		out = &Expr{
			Kind: ExprInterp,
			Type: b.prog.Types.Builtins().String,
			Span: sp,
			Data: &InterpData{Parts: parts},
		}
	default:
		b.errorf(sp, diag.InputBadExpr, "unknown expression kind %q", we.Kind)
		return nil
	}

	// An explicit wire type always overrides the derived one.
	if out != nil && we.Type != nil {
		out.Type = b.resolveType(payload, we.Type, sp)
	}
	return out
}

func (b *builder) buildExprs(payload int, ws []wireExpr) []*Expr {
	out := make([]*Expr, 0, len(ws))
	for i := range ws {
		if e := b.buildExpr(payload, &ws[i]); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (b *builder) buildLiteral(we *wireExpr, sp source.Span) *Expr {
	bt := b.prog.Types.Builtins()
	data := &LiteralData{}
	ty := bt.Unit
	switch we.Lit {
	case "int":
		data.Lit = LitInt
		data.Int = we.Int
		ty = bt.Int
	case "float":
		data.Lit = LitFloat
		data.Float = we.Float
		ty = bt.Float
	case "bool":
		data.Lit = LitBool
		data.Bool = we.Bool
		ty = bt.Bool
	case "str":
		data.Lit = LitStr
		data.Str = norm.NFC.String(we.Str)
		// A bare string literal is a borrowed fixed view until a
		// conversion makes it owned.
		ty = bt.StrView
	case "char":
		data.Lit = LitChar
		r, _ := utf8.DecodeRuneInString(we.Str)
		data.Char = r
		ty = bt.Char
	case "unit", "":
		data.Lit = LitUnit
	default:
		b.errorf(sp, diag.InputBadExpr, "unknown literal kind %q", we.Lit)
		return nil
	}
	return &Expr{Kind: ExprLiteral, Type: ty, Span: sp, Data: data}
}

func (b *builder) binaryResult(op BinOp, left, right *Expr) types.TypeID {
	bt := b.prog.Types.Builtins()
	if op.IsComparison() || op == BinAnd || op == BinOr {
		return bt.Bool
	}
	// String concatenation produces a fresh owned string.
	if op == BinAdd {
		lt, _ := b.prog.Types.Lookup(left.Type)
		rt, _ := b.prog.Types.Lookup(right.Type)
		if lt.Kind == types.KindString || lt.Kind == types.KindStrView ||
			rt.Kind == types.KindString || rt.Kind == types.KindStrView {
			return bt.String
		}
	}
	return left.Type
}

// resolveCallee maps a wire call target onto a resolved Callee plus the
// call's result type. recvType is NoTypeID for free calls.
func (b *builder) resolveCallee(we *wireExpr, sp source.Span, recvType types.TypeID, argc int) (Callee, types.TypeID) {
	in := b.prog.Types

	if we.Trait != "" {
		traitID, ok := b.prog.TraitByName(we.Trait)
		if !ok {
			b.errorf(sp, diag.InputUnknownTrait, "call through unknown trait %q", we.Trait)
			return Callee{Kind: CalleeUnknown, Name: we.Callee}, in.Builtins().Unit
		}
		trait := b.prog.Trait(traitID)
		idx := trait.MethodIndex(we.Callee)
		if idx < 0 {
			b.errorf(sp, diag.InputUnknownCallee, "trait %q has no method %q", we.Trait, we.Callee)
			return Callee{Kind: CalleeUnknown, Name: we.Callee}, in.Builtins().Unit
		}
		return Callee{
			Kind:   CalleeTraitMethod,
			Name:   we.Callee,
			Trait:  traitID,
			Method: idx,
		}, trait.Methods[idx].Result
	}

	qual := we.Callee
	if recvType != types.NoTypeID {
		base := recvType
		if inner, wasRef := in.Deref(base); wasRef {
			base = inner
		}
		qual = in.TypeString(base) + "::" + we.Callee
	}
	if id, ok := b.prog.FuncByQual(qual); ok {
		f := b.prog.Func(id)
		if argc != f.Arity() {
			b.errorf(sp, diag.InputBadParamCount, "%q takes %d arguments, call passes %d", qual, f.Arity(), argc)
		}
		return Callee{Kind: CalleeFunc, Name: we.Callee, Func: id}, f.Result
	}

	// Unknown callee: a builtin container/option method or a call into
	// external code. Builtins get a derived result type; the rest keep
	// whatever explicit type the payload carries.
	result := in.Builtins().Unit
	if recvType != types.NoTypeID {
		if rt, ok := builtinResultType(in, we.Callee, recvType); ok {
			result = rt
		}
	}
	return Callee{Kind: CalleeUnknown, Name: we.Callee}, result
}

// builtinResultType derives result types for the well-known container
// and option methods of the target runtime.
func builtinResultType(in *types.Interner, name string, recvType types.TypeID) (types.TypeID, bool) {
	base := recvType
	if inner, wasRef := in.Deref(base); wasRef {
		base = inner
	}
	t, ok := in.Lookup(base)
	if !ok {
		return types.NoTypeID, false
	}
	bt := in.Builtins()
	switch name {
	case "unwrap", "expect":
		if t.Kind == types.KindOption {
			return t.Elem, true
		}
	case "clone":
		return base, true
	case "len":
		return bt.Uint, true
	case "is_empty", "is_some", "is_none", "contains", "contains_key":
		return bt.Bool, true
	case "pop":
		if t.Kind == types.KindList {
			return in.Intern(types.MakeOption(t.Elem)), true
		}
	case "push", "insert", "clear":
		return bt.Unit, true
	case "remove":
		if t.Kind == types.KindList {
			return t.Elem, true
		}
		if t.Kind == types.KindMap {
			return in.Intern(types.MakeOption(t.Elem)), true
		}
		return bt.Unit, true
	case "to_string":
		return bt.String, true
	}
	return types.NoTypeID, false
}

func (b *builder) fieldType(objectType types.TypeID, field string, sp source.Span) (types.TypeID, int) {
	in := b.prog.Types
	base := objectType
	for {
		inner, wasRef := in.Deref(base)
		if !wasRef {
			break
		}
		base = inner
	}
	info, ok := in.Struct(base)
	if !ok {
		b.errorf(sp, diag.InputUnknownField, "field access %q on non-struct type %s", field, in.TypeString(objectType))
		return types.NoTypeID, -1
	}
	for i, f := range info.Fields {
		if f.Name == field {
			return f.Type, i
		}
	}
	b.errorf(sp, diag.InputUnknownField, "struct %q has no field %q", info.Name, field)
	return types.NoTypeID, -1
}

func (b *builder) elementType(seqType types.TypeID) types.TypeID {
	in := b.prog.Types
	base := seqType
	if inner, wasRef := in.Deref(base); wasRef {
		base = inner
	}
	t, ok := in.Lookup(base)
	if !ok {
		return types.NoTypeID
	}
	switch t.Kind {
	case types.KindList, types.KindMap:
		return t.Elem
	}
	return types.NoTypeID
}

func (b *builder) buildStructLit(payload int, we *wireExpr, sp source.Span) *Expr {
	id, ok := b.prog.Types.Named(we.Name)
	if !ok {
		b.errorf(sp, diag.InputUnknownType, "struct literal names unknown type %q", we.Name)
		return nil
	}
	info, ok := b.prog.Types.Struct(id)
	if !ok {
		b.errorf(sp, diag.InputUnknownType, "struct literal names non-struct type %q", we.Name)
		return nil
	}
	fields := make([]FieldInit, 0, len(we.Fields))
	for fi := range we.Fields {
		wf := &we.Fields[fi]
		fsp := b.span(payload, wf.Span)
		value := b.buildExpr(payload, &wf.Value)
		if value == nil {
			continue
		}
		idx := -1
		for i, f := range info.Fields {
			if f.Name == wf.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			b.errorf(fsp, diag.InputUnknownField, "struct %q has no field %q", info.Name, wf.Name)
			continue
		}
		fields = append(fields, FieldInit{Name: wf.Name, FieldIdx: idx, Value: value, Span: fsp})
	}
	return &Expr{Kind: ExprStructLit, Type: id, Span: sp, Data: &StructLitData{Type: id, Fields: fields}}
}

func (b *builder) buildVariantCtor(payload int, we *wireExpr, sp source.Span) *Expr {
	id, ok := b.prog.Types.Named(we.Enum)
	if !ok {
		b.errorf(sp, diag.InputUnknownType, "variant constructor names unknown enum %q", we.Enum)
		return nil
	}
	info, ok := b.prog.Types.Enum(id)
	if !ok {
		b.errorf(sp, diag.InputUnknownType, "variant constructor names non-enum type %q", we.Enum)
		return nil
	}
	variant, idx, ok := info.VariantByName(we.Variant)
	if !ok {
		b.errorf(sp, diag.InputUnknownVariant, "enum %q has no variant %q", info.Name, we.Variant)
		return nil
	}
	args := b.buildExprs(payload, we.Args)
	if len(args) != len(variant.Payload) {
		b.errorf(sp, diag.InputBadParamCount,
			"variant %s::%s takes %d values, constructor passes %d",
			info.Name, variant.Name, len(variant.Payload), len(args))
	}
	return &Expr{Kind: ExprVariantCtor, Type: id, Span: sp, Data: &VariantCtorData{
		Enum:       id,
		Variant:    we.Variant,
		VariantIdx: idx,
		Args:       args,
	}}
}
