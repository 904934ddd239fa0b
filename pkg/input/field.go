package input

import (
	"fmt"

	"github.com/open-event-systems/interview/pkg/logic"
)

// Validator checks and optionally transforms a decoded answer value before
// it is written into the interview data.
type Validator func(value any) (any, error)

// FieldTemplate is one user input within a question. The set of variants
// is closed: text, select and number.
type FieldTemplate interface {
	// FieldType returns the variant discriminant used on the wire.
	FieldType() string

	// IsOptional reports whether null is an accepted answer.
	IsOptional() bool

	// Schema renders the JSON-Schema fragment describing the accepted
	// answer shape, including any computed defaults.
	Schema(ctx logic.Context, ev *logic.Evaluator) (map[string]any, error)

	// Validators returns the ordered checks applied to a decoded answer.
	Validators(ctx logic.Context, ev *logic.Evaluator) []Validator
}

// ValidationError reports a user-correctable problem with a submitted
// response. It is the only recoverable error kind in the engine.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func schemaType(base string, optional bool) any {
	if optional {
		return []any{base, "null"}
	}
	return base
}

func renderLabel(label logic.Template, ctx logic.Context, ev *logic.Evaluator) (string, error) {
	if label.IsZero() {
		return "", nil
	}
	return ev.Render(label, ctx)
}
