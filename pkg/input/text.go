package input

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/open-event-systems/interview/pkg/logic"
)

// Default length bounds for text fields.
const (
	DefaultTextMinLength = 1
	DefaultTextMaxLength = 300
)

// TextField collects a free-form string answer.
type TextField struct {
	Label        logic.Template
	Optional     bool
	MinLength    int
	MaxLength    int
	Pattern      *regexp.Regexp
	Autocomplete string
	Multiline    bool
}

// NewTextField returns a text field with the default length bounds.
func NewTextField(label logic.Template) *TextField {
	return &TextField{
		Label:     label,
		MinLength: DefaultTextMinLength,
		MaxLength: DefaultTextMaxLength,
	}
}

func (f *TextField) FieldType() string { return "text" }

func (f *TextField) IsOptional() bool { return f.Optional }

func (f *TextField) Schema(ctx logic.Context, ev *logic.Evaluator) (map[string]any, error) {
	title, err := renderLabel(f.Label, ctx, ev)
	if err != nil {
		return nil, err
	}
	schema := map[string]any{
		"type":      schemaType("string", f.Optional),
		"x-type":    "text",
		"minLength": f.MinLength,
		"maxLength": f.MaxLength,
	}
	if title != "" {
		schema["title"] = title
	}
	if f.Pattern != nil {
		schema["pattern"] = f.Pattern.String()
	}
	if f.Autocomplete != "" {
		schema["x-autoComplete"] = f.Autocomplete
	}
	if f.Multiline {
		schema["x-multiline"] = true
	}
	return schema, nil
}

func (f *TextField) Validators(logic.Context, *logic.Evaluator) []Validator {
	return []Validator{f.validate}
}

func (f *TextField) validate(value any) (any, error) {
	if value == nil {
		if f.Optional {
			return nil, nil
		}
		return nil, fmt.Errorf("a value is required")
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		if f.Optional {
			return nil, nil
		}
		return nil, fmt.Errorf("a value is required")
	}
	n := utf8.RuneCountInString(s)
	if n < f.MinLength {
		return nil, fmt.Errorf("enter at least %d characters", f.MinLength)
	}
	if f.MaxLength > 0 && n > f.MaxLength {
		return nil, fmt.Errorf("enter at most %d characters", f.MaxLength)
	}
	if f.Pattern != nil && !f.Pattern.MatchString(s) {
		return nil, fmt.Errorf("invalid value")
	}
	return s, nil
}
