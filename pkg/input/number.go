package input

import (
	"fmt"
	"math"

	"github.com/open-event-systems/interview/pkg/logic"
)

// NumberField collects a numeric answer, optionally constrained to
// integers and a closed range.
type NumberField struct {
	Label    logic.Template
	Optional bool
	Integer  bool
	Minimum  *float64
	Maximum  *float64
}

func (f *NumberField) FieldType() string { return "number" }

func (f *NumberField) IsOptional() bool { return f.Optional }

func (f *NumberField) Schema(ctx logic.Context, ev *logic.Evaluator) (map[string]any, error) {
	title, err := renderLabel(f.Label, ctx, ev)
	if err != nil {
		return nil, err
	}
	base := "number"
	if f.Integer {
		base = "integer"
	}
	schema := map[string]any{
		"type":   schemaType(base, f.Optional),
		"x-type": "number",
	}
	if title != "" {
		schema["title"] = title
	}
	if f.Minimum != nil {
		schema["minimum"] = *f.Minimum
	}
	if f.Maximum != nil {
		schema["maximum"] = *f.Maximum
	}
	return schema, nil
}

func (f *NumberField) Validators(logic.Context, *logic.Evaluator) []Validator {
	return []Validator{f.validate}
}

func (f *NumberField) validate(value any) (any, error) {
	if value == nil {
		if f.Optional {
			return nil, nil
		}
		return nil, fmt.Errorf("a value is required")
	}
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	default:
		return nil, fmt.Errorf("expected a number")
	}
	if f.Integer && n != math.Trunc(n) {
		return nil, fmt.Errorf("expected a whole number")
	}
	if f.Minimum != nil && n < *f.Minimum {
		return nil, fmt.Errorf("enter at least %v", *f.Minimum)
	}
	if f.Maximum != nil && n > *f.Maximum {
		return nil, fmt.Errorf("enter at most %v", *f.Maximum)
	}
	if f.Integer {
		return int64(n), nil
	}
	return n, nil
}
