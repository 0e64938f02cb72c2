// Package emit renders the ownership-corrective fragments of the
// target syntax. Only corrections live here: borrow operators, clones,
// dereferences, owned-string conversions and hoisted bindings. The
// surrounding surface syntax is owned by the external text emitter,
// which queries the plan through the same three functions.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"keel/internal/ast"
	"keel/internal/plan"
	"keel/internal/types"
)

// Renderer turns planned expressions into target text.
type Renderer struct {
	prog *ast.Program
	plan *plan.Plan
}

// NewRenderer binds a renderer to a built plan.
func NewRenderer(prog *ast.Program, p *plan.Plan) *Renderer {
	return &Renderer{prog: prog, plan: p}
}

// Expr renders one expression with its planned correction applied.
func (r *Renderer) Expr(e *ast.Expr) string {
	var sb strings.Builder
	r.expr(&sb, e)
	return sb.String()
}

// Value renders the expression without its planned correction. Hoist
// listings use it for the right-hand side of the fresh binding.
func (r *Renderer) Value(e *ast.Expr) string {
	var sb strings.Builder
	r.bare(&sb, e)
	return sb.String()
}

// Stmt renders one statement, hoisted bindings first. Indent prefixes
// every emitted line.
func (r *Renderer) Stmt(st *ast.Stmt, indent string) string {
	var sb strings.Builder
	for _, h := range r.plan.Hoists(st) {
		sb.WriteString(indent)
		sb.WriteString("let ")
		sb.WriteString(r.plan.HoistName(h.Value))
		sb.WriteString(" = ")
		r.bare(&sb, h.Value)
		sb.WriteString(";\n")
	}
	sb.WriteString(indent)
	r.stmt(&sb, st)
	return sb.String()
}

func (r *Renderer) stmt(sb *strings.Builder, st *ast.Stmt) {
	switch d := st.Data.(type) {
	case *ast.LetData:
		sb.WriteString("let ")
		if d.Mutable {
			sb.WriteString("mut ")
		}
		sb.WriteString(d.Name)
		sb.WriteString(" = ")
		r.expr(sb, d.Value)
		sb.WriteString(";")
	case *ast.AssignData:
		r.expr(sb, d.Target)
		sb.WriteString(" ")
		sb.WriteString(d.Op.String())
		sb.WriteString(" ")
		r.expr(sb, d.Value)
		sb.WriteString(";")
	case *ast.ExprStmtData:
		r.expr(sb, d.Expr)
		sb.WriteString(";")
	case *ast.ReturnData:
		sb.WriteString("return")
		if d.Value != nil {
			sb.WriteString(" ")
			r.expr(sb, d.Value)
		}
		sb.WriteString(";")
	default:
		fmt.Fprintf(sb, "/* %s */", st.Kind)
	}
}

// expr applies the planned transform around the bare rendering.
func (r *Renderer) expr(sb *strings.Builder, e *ast.Expr) {
	if e == nil {
		return
	}
	switch r.plan.TransformFor(e) {
	case plan.SharedBorrow:
		sb.WriteString("&")
		r.grouped(sb, e)
	case plan.ExclusiveBorrow:
		sb.WriteString("&mut ")
		r.grouped(sb, e)
	case plan.Duplicate:
		r.grouped(sb, e)
		sb.WriteString(".clone()")
	case plan.Dereference:
		sb.WriteString("*")
		r.grouped(sb, e)
	case plan.HoistBorrow:
		sb.WriteString("&")
		sb.WriteString(r.plan.HoistName(e))
	case plan.OwnedConv:
		sb.WriteString("&String::from(")
		r.bare(sb, e)
		sb.WriteString(")")
	default:
		r.bare(sb, e)
	}
}

// grouped renders the bare expression, parenthesized when a prefix or
// postfix correction would otherwise capture only one operand.
func (r *Renderer) grouped(sb *strings.Builder, e *ast.Expr) {
	switch e.Data.(type) {
	case *ast.BinaryData, *ast.UnaryData:
		sb.WriteString("(")
		r.bare(sb, e)
		sb.WriteString(")")
	default:
		r.bare(sb, e)
	}
}

// bare renders the expression itself, corrections applied only to
// sub-expressions.
func (r *Renderer) bare(sb *strings.Builder, e *ast.Expr) {
	switch d := e.Data.(type) {
	case *ast.LiteralData:
		r.literal(sb, d)
	case *ast.VarRefData:
		sb.WriteString(d.Name)
	case *ast.UnaryData:
		sb.WriteString(d.Op.String())
		r.expr(sb, d.Operand)
	case *ast.BinaryData:
		r.expr(sb, d.Left)
		sb.WriteString(" ")
		sb.WriteString(d.Op.String())
		sb.WriteString(" ")
		r.expr(sb, d.Right)
	case *ast.CallData:
		sb.WriteString(r.calleeName(d.Callee))
		sb.WriteString("(")
		for i, arg := range d.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			r.expr(sb, arg)
		}
		sb.WriteString(")")
	case *ast.MethodCallData:
		r.expr(sb, d.Recv)
		sb.WriteString(".")
		sb.WriteString(d.Callee.Name)
		sb.WriteString("(")
		for i, arg := range d.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			r.expr(sb, arg)
		}
		sb.WriteString(")")
	case *ast.FieldAccessData:
		r.expr(sb, d.Object)
		sb.WriteString(".")
		sb.WriteString(d.Field)
	case *ast.IndexData:
		r.expr(sb, d.Seq)
		sb.WriteString("[")
		r.expr(sb, d.Index)
		sb.WriteString("]")
	case *ast.StructLitData:
		sb.WriteString(r.prog.Types.TypeString(d.Type))
		sb.WriteString(" { ")
		for i := range d.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.Fields[i].Name)
			sb.WriteString(": ")
			r.expr(sb, d.Fields[i].Value)
		}
		sb.WriteString(" }")
	case *ast.VariantCtorData:
		sb.WriteString(r.prog.Types.TypeString(d.Enum))
		sb.WriteString("::")
		sb.WriteString(d.Variant)
		if len(d.Args) > 0 {
			sb.WriteString("(")
			for i, arg := range d.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				r.expr(sb, arg)
			}
			sb.WriteString(")")
		}
	case *ast.ListLitData:
		sb.WriteString("vec![")
		for i, el := range d.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			r.expr(sb, el)
		}
		sb.WriteString("]")
	case *ast.InterpData:
		r.interp(sb, d)
	}
}

func (r *Renderer) literal(sb *strings.Builder, d *ast.LiteralData) {
	switch d.Lit {
	case ast.LitUnit:
		sb.WriteString("()")
	case ast.LitBool:
		sb.WriteString(strconv.FormatBool(d.Bool))
	case ast.LitInt:
		sb.WriteString(strconv.FormatInt(d.Int, 10))
	case ast.LitFloat:
		sb.WriteString(strconv.FormatFloat(d.Float, 'g', -1, 64))
	case ast.LitStr:
		sb.WriteString(strconv.Quote(d.Str))
	case ast.LitChar:
		sb.WriteString("'" + string(d.Char) + "'")
	}
}

// interp renders interpolation as the format macro: literal chunks
// become the template, embedded expressions become arguments.
func (r *Renderer) interp(sb *strings.Builder, d *ast.InterpData) {
	var tmpl strings.Builder
	args := make([]string, 0, len(d.Parts))
	for i := range d.Parts {
		p := &d.Parts[i]
		if p.Expr == nil {
			tmpl.WriteString(escapeBraces(p.Lit))
			continue
		}
		tmpl.WriteString("{}")
		var arg strings.Builder
		r.expr(&arg, p.Expr)
		args = append(args, arg.String())
	}
	sb.WriteString("format!(")
	sb.WriteString(strconv.Quote(tmpl.String()))
	for _, a := range args {
		sb.WriteString(", ")
		sb.WriteString(a)
	}
	sb.WriteString(")")
}

func escapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}

func (r *Renderer) calleeName(c ast.Callee) string {
	if c.Kind == ast.CalleeFunc {
		if f := r.prog.Func(c.Func); f != nil && f.Owner != types.NoTypeID {
			return r.prog.Types.TypeString(f.Owner) + "::" + f.Name
		}
	}
	return c.Name
}
