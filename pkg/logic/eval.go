package logic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the shared compiled-program caches.
const DefaultCacheSize = 1024

// Expression is a single expression evaluated to an arbitrary typed value.
// The compiled form lives in the Evaluator's cache, keyed by source text,
// so Expression values stay cheap to copy and serialize.
type Expression struct {
	Source string
}

// Template is a string with embedded "{{ expr }}" expressions. Rendering
// produces a string.
type Template struct {
	Source string
}

// IsZero reports whether the template is unset.
func (t Template) IsZero() bool { return t.Source == "" }

type templatePart struct {
	literal string
	expr    string // non-empty for expression parts
}

// Evaluator compiles and evaluates expressions, templates and conditions
// against a Context. Compiled programs are memoized in bounded LRU caches;
// entries are never mutated after insertion, so concurrent use at worst
// recompiles redundantly.
type Evaluator struct {
	progs *lru.Cache[string, *goja.Program]
	tmpls *lru.Cache[string, []templatePart]
}

// NewEvaluator creates an Evaluator with caches bounded at cacheSize
// entries (DefaultCacheSize if cacheSize <= 0).
func NewEvaluator(cacheSize int) *Evaluator {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	progs, _ := lru.New[string, *goja.Program](cacheSize)
	tmpls, _ := lru.New[string, []templatePart](cacheSize)
	return &Evaluator{progs: progs, tmpls: tmpls}
}

// CompileExpression validates and caches an expression, returning its
// handle. Compilation failures are EvalErrors.
func (e *Evaluator) CompileExpression(src string) (Expression, error) {
	if _, err := e.program(src); err != nil {
		return Expression{}, err
	}
	return Expression{Source: src}, nil
}

// CompileTemplate validates and caches a template.
func (e *Evaluator) CompileTemplate(src string) (Template, error) {
	parts, err := parseTemplate(src)
	if err != nil {
		return Template{}, err
	}
	for _, p := range parts {
		if p.expr != "" {
			if _, err := e.program(p.expr); err != nil {
				return Template{}, err
			}
		}
	}
	e.tmpls.Add(src, parts)
	return Template{Source: src}, nil
}

// Evaluate runs an expression against ctx. A reference to an undefined
// top-level name yields nil; an undefined operation (dereferencing null,
// calling a non-function) yields an EvalError.
func (e *Evaluator) Evaluate(x Expression, ctx Context) (any, error) {
	prog, err := e.program(x.Source)
	if err != nil {
		return nil, err
	}
	return runProgram(x.Source, prog, ctx)
}

// Render interpolates a template against ctx. Absent values render as the
// empty string.
func (e *Evaluator) Render(t Template, ctx Context) (string, error) {
	parts, ok := e.tmpls.Get(t.Source)
	if !ok {
		var err error
		parts, err = parseTemplate(t.Source)
		if err != nil {
			return "", err
		}
		e.tmpls.Add(t.Source, parts)
	}
	var b strings.Builder
	for _, p := range parts {
		if p.expr == "" {
			b.WriteString(p.literal)
			continue
		}
		prog, err := e.program(p.expr)
		if err != nil {
			return "", err
		}
		v, err := runProgram(p.expr, prog, ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(valueString(v))
	}
	return b.String(), nil
}

func (e *Evaluator) program(src string) (*goja.Program, error) {
	if prog, ok := e.progs.Get(src); ok {
		return prog, nil
	}
	// Parenthesized so object literals parse as expressions.
	prog, err := goja.Compile("", "("+src+"\n)", true)
	if err != nil {
		return nil, &EvalError{Source: src, Msg: err.Error()}
	}
	e.progs.Add(src, prog)
	return prog, nil
}

func runProgram(src string, prog *goja.Program, ctx Context) (any, error) {
	vm := goja.New()
	for k, v := range ctx {
		if err := vm.Set(k, v); err != nil {
			return nil, &EvalError{Source: src, Msg: err.Error()}
		}
	}
	v, err := vm.RunProgram(prog)
	if err != nil {
		if ex, ok := err.(*goja.Exception); ok && isReferenceError(ex) {
			return nil, nil
		}
		return nil, &EvalError{Source: src, Msg: err.Error()}
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}

func isReferenceError(ex *goja.Exception) bool {
	obj, ok := ex.Value().(*goja.Object)
	if !ok {
		return false
	}
	name := obj.Get("name")
	return name != nil && name.String() == "ReferenceError"
}

// Truthy applies boolean coercion to an evaluated value: nil, false,
// zero, NaN and the empty string are false; everything else is true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func parseTemplate(src string) ([]templatePart, error) {
	var parts []templatePart
	rest := src
	pos := 0
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			if rest != "" {
				parts = append(parts, templatePart{literal: rest})
			}
			return parts, nil
		}
		if open > 0 {
			parts = append(parts, templatePart{literal: rest[:open]})
		}
		close := strings.Index(rest[open:], "}}")
		if close < 0 {
			return nil, &SyntaxError{Src: src, Pos: pos + open, Msg: "unterminated '{{'"}
		}
		expr := strings.TrimSpace(rest[open+2 : open+close])
		if expr == "" {
			return nil, &SyntaxError{Src: src, Pos: pos + open, Msg: "empty expression"}
		}
		parts = append(parts, templatePart{expr: expr})
		pos += open + close + 2
		rest = rest[open+close+2:]
	}
}
