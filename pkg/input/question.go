package input

import (
	"fmt"

	"github.com/open-event-systems/interview/pkg/logic"
)

// Field pairs a field template with the pointer its validated answer is
// written to. The pointer may be indirect.
type Field struct {
	Set      logic.Pointer
	Template FieldTemplate
}

// QuestionTemplate renders into a concrete Question for a given context.
// Field order is significant: it determines the synthetic property names
// (field_0, field_1, ...) used on the wire.
type QuestionTemplate struct {
	Title       logic.Template
	Description logic.Template
	Fields      []Field
}

// Question is a rendered, user-facing prompt.
type Question struct {
	Title       string
	Description string
	Schema      map[string]any
}

// Answer is one validated response value paired with its destination.
type Answer struct {
	Target logic.Pointer
	Value  any
}

// PropertyName returns the synthetic schema property name of the field at
// index i.
func PropertyName(i int) string {
	return fmt.Sprintf("field_%d", i)
}

// Render evaluates the title and description templates and assembles the
// question's JSON-Schema object over the synthetic field names.
func (qt *QuestionTemplate) Render(ctx logic.Context, ev *logic.Evaluator) (*Question, error) {
	title, err := renderLabel(qt.Title, ctx, ev)
	if err != nil {
		return nil, err
	}
	description, err := renderLabel(qt.Description, ctx, ev)
	if err != nil {
		return nil, err
	}

	properties := make(map[string]any, len(qt.Fields))
	required := make([]any, 0, len(qt.Fields))
	for i, f := range qt.Fields {
		fieldSchema, err := f.Template.Schema(ctx, ev)
		if err != nil {
			return nil, err
		}
		name := PropertyName(i)
		properties[name] = fieldSchema
		if !f.Template.IsOptional() {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if title != "" {
		schema["title"] = title
	}
	if description != "" {
		schema["description"] = description
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return &Question{Title: title, Description: description, Schema: schema}, nil
}

// ValidateResponses decodes a response payload keyed by synthetic field
// name, runs each field's validators in order, and returns the answers in
// field declaration order. Unknown keys are ignored; the first failing
// field aborts with a ValidationError.
func (qt *QuestionTemplate) ValidateResponses(ctx logic.Context, ev *logic.Evaluator, responses map[string]any) ([]Answer, error) {
	answers := make([]Answer, 0, len(qt.Fields))
	for i, f := range qt.Fields {
		name := PropertyName(i)
		value, present := responses[name]
		if !present && !f.Template.IsOptional() {
			return nil, &ValidationError{Field: name, Msg: "a value is required"}
		}
		for _, validate := range f.Template.Validators(ctx, ev) {
			var err error
			value, err = validate(value)
			if err != nil {
				return nil, &ValidationError{Field: name, Msg: err.Error()}
			}
		}
		answers = append(answers, Answer{Target: f.Set, Value: value})
	}
	return answers, nil
}

// Provides returns the canonical form of every direct field pointer.
// Indirect pointers are excluded: which paths they provide depends on the
// evaluation context.
func (qt *QuestionTemplate) Provides() []string {
	provides := make([]string, 0, len(qt.Fields))
	for _, f := range qt.Fields {
		if f.Set.Direct() {
			provides = append(provides, f.Set.String())
		}
	}
	return provides
}
