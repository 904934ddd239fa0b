package interview

import (
	"github.com/open-event-systems/interview/pkg/logic"
)

type valueKind int

const (
	valueLiteral valueKind = iota
	valueTemplate
	valueExpr
)

// Value is what a Set step writes: a literal, a template rendered to a
// string, or an expression evaluated to a typed value.
type Value struct {
	kind valueKind
	lit  any
	tmpl logic.Template
	expr logic.Expression
}

// LiteralValue wraps a constant.
func LiteralValue(v any) Value { return Value{kind: valueLiteral, lit: v} }

// TemplateValue wraps a template; the written value is the rendered string.
func TemplateValue(t logic.Template) Value { return Value{kind: valueTemplate, tmpl: t} }

// ExpressionValue wraps an expression; the written value keeps its type.
func ExpressionValue(x logic.Expression) Value { return Value{kind: valueExpr, expr: x} }

// Evaluate produces the value to write for the given context.
func (v Value) Evaluate(ctx logic.Context, ev *logic.Evaluator) (any, error) {
	switch v.kind {
	case valueTemplate:
		return ev.Render(v.tmpl, ctx)
	case valueExpr:
		return ev.Evaluate(v.expr, ctx)
	default:
		return v.lit, nil
	}
}
