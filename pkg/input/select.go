package input

import (
	"fmt"

	"github.com/open-event-systems/interview/pkg/logic"
)

// SelectOption is one choice of a select field. The wire value is the
// option ID; Value is the semantic value written into the interview data
// when the option is chosen.
type SelectOption struct {
	ID    string
	Label logic.Template
	Value any

	// Default marks the option preselected. DefaultWhen, if set, takes
	// precedence and is evaluated against the template context.
	Default     bool
	DefaultWhen *logic.Expression
}

// SelectField collects one or more choices from a fixed option set.
// Min and Max bound the number of choices: the field accepts multiple
// choices when Max > 1 and is optional when Min == 0.
type SelectField struct {
	Label        logic.Template
	Component    string
	Options      []SelectOption
	Min          int
	Max          int
	Autocomplete string
}

// NewSelectField returns a single-choice required dropdown over options.
// Options without an ID are assigned "1", "2", ... in declaration order.
func NewSelectField(label logic.Template, options []SelectOption) *SelectField {
	f := &SelectField{
		Label:     label,
		Component: "dropdown",
		Options:   options,
		Min:       1,
		Max:       1,
	}
	f.assignOptionIDs()
	return f
}

func (f *SelectField) assignOptionIDs() {
	for i := range f.Options {
		if f.Options[i].ID == "" {
			f.Options[i].ID = fmt.Sprintf("%d", i+1)
		}
	}
}

// Multi reports whether more than one choice may be submitted.
func (f *SelectField) Multi() bool { return f.Max > 1 }

func (f *SelectField) FieldType() string { return "select" }

func (f *SelectField) IsOptional() bool { return f.Min == 0 }

func (f *SelectField) Schema(ctx logic.Context, ev *logic.Evaluator) (map[string]any, error) {
	title, err := renderLabel(f.Label, ctx, ev)
	if err != nil {
		return nil, err
	}

	choices := make([]any, 0, len(f.Options))
	for _, opt := range f.Options {
		label, err := renderLabel(opt.Label, ctx, ev)
		if err != nil {
			return nil, err
		}
		choice := map[string]any{"const": opt.ID}
		if label != "" {
			choice["title"] = label
		}
		choices = append(choices, choice)
	}

	defaults, err := f.defaults(ctx, ev)
	if err != nil {
		return nil, err
	}

	item := map[string]any{"oneOf": choices}

	var schema map[string]any
	if f.Multi() {
		schema = map[string]any{
			"type":        "array",
			"items":       item,
			"minItems":    f.Min,
			"maxItems":    f.Max,
			"uniqueItems": true,
		}
		if len(defaults) > 0 {
			schema["default"] = defaults
		}
	} else {
		schema = map[string]any{
			"type":  schemaType("string", f.IsOptional()),
			"oneOf": choices,
		}
		if len(defaults) > 0 {
			schema["default"] = defaults[0]
		}
	}

	schema["x-type"] = "select"
	component := f.Component
	if component == "" {
		component = "dropdown"
	}
	schema["x-component"] = component
	if title != "" {
		schema["title"] = title
	}
	if f.Autocomplete != "" {
		schema["x-autoComplete"] = f.Autocomplete
	}
	return schema, nil
}

// defaults collects the IDs of defaulted options in encounter order.
func (f *SelectField) defaults(ctx logic.Context, ev *logic.Evaluator) ([]any, error) {
	var ids []any
	for _, opt := range f.Options {
		on := opt.Default
		if opt.DefaultWhen != nil {
			v, err := ev.Evaluate(*opt.DefaultWhen, ctx)
			if err != nil {
				return nil, err
			}
			on = logic.Truthy(v)
		}
		if on {
			ids = append(ids, opt.ID)
		}
	}
	return ids, nil
}

func (f *SelectField) Validators(logic.Context, *logic.Evaluator) []Validator {
	return []Validator{f.validate}
}

func (f *SelectField) validate(value any) (any, error) {
	if f.Multi() {
		return f.validateMulti(value)
	}
	return f.validateSingle(value)
}

func (f *SelectField) validateSingle(value any) (any, error) {
	if value == nil {
		if f.Min == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("choose at least %d", f.Min)
	}
	id, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected a choice")
	}
	opt := f.option(id)
	if opt == nil {
		return nil, fmt.Errorf("invalid choice")
	}
	return opt.value(), nil
}

func (f *SelectField) validateMulti(value any) (any, error) {
	var ids []any
	switch v := value.(type) {
	case nil:
		ids = nil
	case []any:
		ids = v
	default:
		return nil, fmt.Errorf("expected a list of choices")
	}
	if len(ids) < f.Min {
		return nil, fmt.Errorf("choose at least %d", f.Min)
	}
	if len(ids) > f.Max {
		return nil, fmt.Errorf("choose at most %d", f.Max)
	}
	values := make([]any, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, raw := range ids {
		id, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected a choice")
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate choice")
		}
		seen[id] = true
		opt := f.option(id)
		if opt == nil {
			return nil, fmt.Errorf("invalid choice")
		}
		values = append(values, opt.value())
	}
	return values, nil
}

func (f *SelectField) option(id string) *SelectOption {
	for i := range f.Options {
		if f.Options[i].ID == id {
			return &f.Options[i]
		}
	}
	return nil
}

// value returns the semantic value written into data: the declared Value
// if any, otherwise the option ID itself.
func (o *SelectOption) value() any {
	if o.Value != nil {
		return o.Value
	}
	return o.ID
}
