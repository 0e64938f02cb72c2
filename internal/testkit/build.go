// Package testkit builds small typed programs for tests without going
// through the JSON decoder.
package testkit

import (
	"fmt"

	"keel/internal/ast"
	"keel/internal/source"
	"keel/internal/types"
)

// B wraps a program under construction. Bindings and functions are
// registered immediately, so IDs are valid as soon as the helper
// returns.
type B struct {
	Prog *ast.Program
	T    types.Builtins
}

// New creates an empty program with one virtual file so spans resolve.
func New() *B {
	prog := ast.NewProgram()
	prog.Package = "test"
	prog.Files.AddVirtual("test.input", nil)
	return &B{Prog: prog, T: prog.Types.Builtins()}
}

// List interns List<elem>.
func (b *B) List(elem types.TypeID) types.TypeID {
	return b.Prog.Types.Intern(types.Type{Kind: types.KindList, Elem: elem})
}

// MapOf interns Map<key, elem>.
func (b *B) MapOf(key, elem types.TypeID) types.TypeID {
	return b.Prog.Types.Intern(types.Type{Kind: types.KindMap, Key: key, Elem: elem})
}

// Option interns Option<elem>.
func (b *B) Option(elem types.TypeID) types.TypeID {
	return b.Prog.Types.Intern(types.Type{Kind: types.KindOption, Elem: elem})
}

// Ref interns &elem.
func (b *B) Ref(elem types.TypeID) types.TypeID {
	return b.Prog.Types.Intern(types.Type{Kind: types.KindRef, Elem: elem})
}

// RefMut interns &mut elem.
func (b *B) RefMut(elem types.TypeID) types.TypeID {
	return b.Prog.Types.Intern(types.Type{Kind: types.KindRefMut, Elem: elem})
}

// Struct declares a nominal struct with the given fields.
func (b *B) Struct(name string, fields ...types.Field) types.TypeID {
	id, err := b.Prog.Types.DeclareStruct(name, source.Span{})
	if err != nil {
		panic(err)
	}
	b.Prog.Types.SetStructFields(id, fields)
	return id
}

// Enum declares a nominal enum with the given variants.
func (b *B) Enum(name string, variants ...types.Variant) types.TypeID {
	id, err := b.Prog.Types.DeclareEnum(name, source.Span{})
	if err != nil {
		panic(err)
	}
	b.Prog.Types.SetEnumVariants(id, variants)
	return id
}

// Trait declares a trait with the given method signatures.
func (b *B) Trait(name string, methods ...ast.TraitMethod) ast.TraitID {
	id, err := b.Prog.AddTrait(ast.TraitDef{Name: name, Methods: methods})
	if err != nil {
		panic(err)
	}
	return id
}

// FuncB accumulates one function. Call Body (or Declared) last.
type FuncB struct {
	b  *B
	id ast.FuncID
}

// Func starts a free function.
func (b *B) Func(name string) *FuncB {
	return b.addFunc(ast.Func{Name: name})
}

// Method starts a method on the owner type.
func (b *B) Method(owner types.TypeID, name string) *FuncB {
	return b.addFunc(ast.Func{Name: name, Owner: owner})
}

// Impl starts a method implementing a trait method by index.
func (b *B) Impl(owner types.TypeID, name string, trait ast.TraitID, method int) *FuncB {
	return b.addFunc(ast.Func{
		Name: name, Owner: owner,
		Trait: trait, TraitMethod: method,
		Flags: ast.FuncTraitImpl,
	})
}

func (b *B) addFunc(f ast.Func) *FuncB {
	id, err := b.Prog.AddFunc(f)
	if err != nil {
		panic(err)
	}
	return &FuncB{b: b, id: id}
}

// ID returns the function ID; valid from the start.
func (fb *FuncB) ID() ast.FuncID { return fb.id }

func (fb *FuncB) fn() *ast.Func { return fb.b.Prog.Func(fb.id) }

// Recv declares the receiver and returns its binding.
func (fb *FuncB) Recv(name string, t types.TypeID) ast.BindingID {
	bid := fb.b.Prog.AddBinding(ast.Binding{
		Name: name, Type: t, Func: fb.id,
		Kind: ast.BindReceiver, ParamPos: ast.ReceiverPos,
	})
	fb.fn().Receiver = &ast.Param{Name: name, Binding: bid, Type: t}
	return bid
}

// Param declares the next positional parameter and returns its binding.
func (fb *FuncB) Param(name string, t types.TypeID) ast.BindingID {
	f := fb.fn()
	pos := len(f.Params)
	bid := fb.b.Prog.AddBinding(ast.Binding{
		Name: name, Type: t, Func: fb.id,
		Kind: ast.BindParam, ParamPos: pos,
	})
	f.Params = append(f.Params, ast.Param{Name: name, Binding: bid, Type: t})
	return bid
}

// Local registers a local binding owned by this function.
func (fb *FuncB) Local(name string, t types.TypeID) ast.BindingID {
	return fb.b.Prog.AddBinding(ast.Binding{
		Name: name, Type: t, Func: fb.id, Kind: ast.BindLocal, Mutable: true,
	})
}

// LoopVar registers a loop binding owned by this function.
func (fb *FuncB) LoopVar(name string, t types.TypeID) ast.BindingID {
	return fb.b.Prog.AddBinding(ast.Binding{
		Name: name, Type: t, Func: fb.id, Kind: ast.BindLoop,
	})
}

// Returns sets the result type.
func (fb *FuncB) Returns(t types.TypeID) *FuncB {
	fb.fn().Result = t
	return fb
}

// Body finalizes the function with the given statements.
func (fb *FuncB) Body(stmts ...ast.Stmt) ast.FuncID {
	f := fb.fn()
	f.Body = &ast.Block{Stmts: stmts}
	f.Flags |= ast.FuncHasBody
	return fb.id
}

// Declared finalizes a bodiless declaration.
func (fb *FuncB) Declared() ast.FuncID {
	return fb.id
}

// Expression constructors ----------------------------------------------------

// IntLit builds an integer literal of the builtin int type.
func (b *B) IntLit(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Type: b.T.Int,
		Data: &ast.LiteralData{Lit: ast.LitInt, Int: v}}
}

// StrLit builds a string literal of the borrowed view type.
func (b *B) StrLit(s string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Type: b.T.StrView,
		Data: &ast.LiteralData{Lit: ast.LitStr, Str: s}}
}

// BoolLit builds a boolean literal.
func (b *B) BoolLit(v bool) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Type: b.T.Bool,
		Data: &ast.LiteralData{Lit: ast.LitBool, Bool: v}}
}

// Var builds a reference to a binding, reading the recorded name and
// type from the program.
func (b *B) Var(bid ast.BindingID) *ast.Expr {
	bind := b.Prog.Binding(bid)
	if bind == nil {
		panic(fmt.Sprintf("testkit: unknown binding %d", bid))
	}
	return &ast.Expr{Kind: ast.ExprVarRef, Type: bind.Type,
		Data: &ast.VarRefData{Name: bind.Name, Binding: bid}}
}

// Call builds a call to a known function.
func (b *B) Call(fn ast.FuncID, t types.TypeID, args ...*ast.Expr) *ast.Expr {
	f := b.Prog.Func(fn)
	if f == nil {
		panic(fmt.Sprintf("testkit: unknown func %d", fn))
	}
	return &ast.Expr{Kind: ast.ExprCall, Type: t, Data: &ast.CallData{
		Callee: ast.Callee{Kind: ast.CalleeFunc, Name: f.Name, Func: fn},
		Args:   args,
	}}
}

// MethodCall builds a method call resolved to a known function.
func (b *B) MethodCall(recv *ast.Expr, fn ast.FuncID, t types.TypeID, args ...*ast.Expr) *ast.Expr {
	f := b.Prog.Func(fn)
	if f == nil {
		panic(fmt.Sprintf("testkit: unknown func %d", fn))
	}
	return &ast.Expr{Kind: ast.ExprMethodCall, Type: t, Data: &ast.MethodCallData{
		Recv:   recv,
		Callee: ast.Callee{Kind: ast.CalleeFunc, Name: f.Name, Func: fn},
		Args:   args,
	}}
}

// Builtin builds a method call into runtime-provided code.
func (b *B) Builtin(recv *ast.Expr, name string, t types.TypeID, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprMethodCall, Type: t, Data: &ast.MethodCallData{
		Recv:   recv,
		Callee: ast.Callee{Kind: ast.CalleeUnknown, Name: name},
		Args:   args,
	}}
}

// TraitCall builds a call dispatched through a trait identity.
func (b *B) TraitCall(recv *ast.Expr, trait ast.TraitID, method int, t types.TypeID, args ...*ast.Expr) *ast.Expr {
	td := b.Prog.Trait(trait)
	if td == nil || method < 0 || method >= len(td.Methods) {
		panic("testkit: unknown trait method")
	}
	return &ast.Expr{Kind: ast.ExprMethodCall, Type: t, Data: &ast.MethodCallData{
		Recv: recv,
		Callee: ast.Callee{
			Kind: ast.CalleeTraitMethod, Name: td.Methods[method].Name,
			Trait: trait, Method: method,
		},
		Args: args,
	}}
}

// FieldOf builds a field access, resolving the field index and type
// from the struct side table.
func (b *B) FieldOf(obj *ast.Expr, name string) *ast.Expr {
	base := obj.Type
	if inner, ok := b.Prog.Types.Deref(base); ok {
		base = inner
	}
	info, ok := b.Prog.Types.Struct(base)
	if !ok {
		panic("testkit: field access on non-struct")
	}
	for i, f := range info.Fields {
		if f.Name == name {
			return &ast.Expr{Kind: ast.ExprFieldAccess, Type: f.Type,
				Data: &ast.FieldAccessData{Object: obj, Field: name, FieldIdx: i}}
		}
	}
	panic(fmt.Sprintf("testkit: struct %s has no field %q", info.Name, name))
}

// IndexOf builds an index access into a list or map.
func (b *B) IndexOf(seq, index *ast.Expr) *ast.Expr {
	t, ok := b.Prog.Types.Lookup(seq.Type)
	if !ok || (t.Kind != types.KindList && t.Kind != types.KindMap) {
		panic("testkit: index on non-collection")
	}
	return &ast.Expr{Kind: ast.ExprIndex, Type: t.Elem,
		Data: &ast.IndexData{Seq: seq, Index: index}}
}

// Un builds a unary expression.
func (b *B) Un(op ast.UnaryOp, t types.TypeID, operand *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprUnary, Type: t,
		Data: &ast.UnaryData{Op: op, Operand: operand}}
}

// Bin builds a binary expression.
func (b *B) Bin(op ast.BinOp, t types.TypeID, left, right *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprBinary, Type: t,
		Data: &ast.BinaryData{Op: op, Left: left, Right: right}}
}

// Eq builds an equality comparison.
func (b *B) Eq(left, right *ast.Expr) *ast.Expr {
	return b.Bin(ast.BinEq, b.T.Bool, left, right)
}

// StructLit builds a struct literal; initializers pair field names with
// values and are resolved against the side table.
func (b *B) StructLit(t types.TypeID, inits ...ast.FieldInit) *ast.Expr {
	info, ok := b.Prog.Types.Struct(t)
	if !ok {
		panic("testkit: struct literal of non-struct")
	}
	for i := range inits {
		found := false
		for fi, f := range info.Fields {
			if f.Name == inits[i].Name {
				inits[i].FieldIdx = fi
				found = true
				break
			}
		}
		if !found {
			panic(fmt.Sprintf("testkit: struct %s has no field %q", info.Name, inits[i].Name))
		}
	}
	return &ast.Expr{Kind: ast.ExprStructLit, Type: t,
		Data: &ast.StructLitData{Type: t, Fields: inits}}
}

// Init pairs a field name with its initializer.
func Init(name string, value *ast.Expr) ast.FieldInit {
	return ast.FieldInit{Name: name, Value: value}
}

// Ctor builds an enum variant constructor.
func (b *B) Ctor(t types.TypeID, variant string, args ...*ast.Expr) *ast.Expr {
	info, ok := b.Prog.Types.Enum(t)
	if !ok {
		panic("testkit: variant ctor of non-enum")
	}
	_, idx, ok := info.VariantByName(variant)
	if !ok {
		panic(fmt.Sprintf("testkit: enum %s has no variant %q", info.Name, variant))
	}
	return &ast.Expr{Kind: ast.ExprVariantCtor, Type: t, Data: &ast.VariantCtorData{
		Enum: t, Variant: variant, VariantIdx: idx, Args: args,
	}}
}

// ListOf builds a list literal of the given element type.
func (b *B) ListOf(elem types.TypeID, elems ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprListLit, Type: b.List(elem),
		Data: &ast.ListLitData{Elems: elems}}
}

// Interp builds a string interpolation; string parts are literal
// chunks, expressions are embedded.
func (b *B) Interp(parts ...any) *ast.Expr {
	d := &ast.InterpData{}
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			d.Parts = append(d.Parts, ast.InterpPart{Lit: v})
		case *ast.Expr:
			d.Parts = append(d.Parts, ast.InterpPart{Expr: v})
		default:
			panic(fmt.Sprintf("testkit: bad interpolation part %T", p))
		}
	}
	return &ast.Expr{Kind: ast.ExprInterp, Type: b.T.String, Data: d}
}

// Statement constructors -----------------------------------------------------

// Let binds a value to a local.
func (b *B) Let(bid ast.BindingID, value *ast.Expr) ast.Stmt {
	bind := b.Prog.Binding(bid)
	if bind == nil {
		panic(fmt.Sprintf("testkit: unknown binding %d", bid))
	}
	return ast.Stmt{Kind: ast.StmtLet, Data: &ast.LetData{
		Name: bind.Name, Binding: bid, Type: bind.Type,
		Value: value, Mutable: bind.Mutable,
	}}
}

// Assign stores a value into a place.
func (b *B) Assign(target, value *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtAssign,
		Data: &ast.AssignData{Op: ast.AssignSet, Target: target, Value: value}}
}

// ExprStmt evaluates an expression for effect.
func (b *B) ExprStmt(e *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtExpr, Data: &ast.ExprStmtData{Expr: e}}
}

// Ret returns a value; pass nil for a bare return.
func (b *B) Ret(e *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtReturn, Data: &ast.ReturnData{Value: e}}
}

// If builds a conditional without an else branch.
func (b *B) If(cond *ast.Expr, then ...ast.Stmt) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtIf,
		Data: &ast.IfData{Cond: cond, Then: ast.Block{Stmts: then}}}
}

// While builds a while loop.
func (b *B) While(cond *ast.Expr, body ...ast.Stmt) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtWhile,
		Data: &ast.WhileData{Cond: cond, Body: ast.Block{Stmts: body}}}
}

// For builds a for loop over a sequence.
func (b *B) For(loopVar ast.BindingID, iter *ast.Expr, body ...ast.Stmt) ast.Stmt {
	bind := b.Prog.Binding(loopVar)
	if bind == nil {
		panic(fmt.Sprintf("testkit: unknown binding %d", loopVar))
	}
	return ast.Stmt{Kind: ast.StmtFor, Data: &ast.ForData{
		Name: bind.Name, Binding: loopVar, Iter: iter, Body: ast.Block{Stmts: body},
	}}
}
