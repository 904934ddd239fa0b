package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/open-event-systems/interview/pkg/input"
	"github.com/open-event-systems/interview/pkg/interview"
	"github.com/open-event-systems/interview/pkg/logic"
)

// Interviews is a compiled script set, loaded once at startup and shared
// read-only across requests.
type Interviews struct {
	byID map[string]*interview.Interview
	eval *logic.Evaluator
}

// Get returns the interview with the given ID, or nil.
func (s *Interviews) Get(id string) *interview.Interview {
	return s.byID[id]
}

// IDs returns the loaded interview IDs, sorted.
func (s *Interviews) IDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Evaluator returns the evaluator whose caches hold the compiled
// expressions of every loaded script.
func (s *Interviews) Evaluator() *logic.Evaluator {
	return s.eval
}

type scriptFile struct {
	Interviews map[string]rawInterview `yaml:"interviews"`
}

type rawInterview struct {
	Questions map[string]rawQuestion `yaml:"questions"`
	Steps     []map[string]any       `yaml:"steps"`
}

type rawQuestion struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Fields      []map[string]any `yaml:"fields"`
}

// LoadInterviews reads and compiles an interview script file. Every
// expression and template is compiled eagerly so syntax errors surface at
// startup rather than mid-interview.
func LoadInterviews(path string, ev *logic.Evaluator) (*Interviews, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interviews file: %w", err)
	}
	return ParseInterviews(raw, ev)
}

// ParseInterviews compiles an interview script from raw YAML.
func ParseInterviews(raw []byte, ev *logic.Evaluator) (*Interviews, error) {
	var sf scriptFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse interviews file: %w", err)
	}

	set := &Interviews{byID: make(map[string]*interview.Interview, len(sf.Interviews)), eval: ev}
	for id, ri := range sf.Interviews {
		iv, err := compileInterview(id, ri, ev)
		if err != nil {
			return nil, fmt.Errorf("interview %q: %w", id, err)
		}
		set.byID[id] = iv
	}
	return set, nil
}

func compileInterview(id string, ri rawInterview, ev *logic.Evaluator) (*interview.Interview, error) {
	iv := &interview.Interview{
		ID:        id,
		Questions: make(map[string]*input.QuestionTemplate, len(ri.Questions)),
	}

	for qid, rq := range ri.Questions {
		qt, err := compileQuestion(rq, ev)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", qid, err)
		}
		iv.Questions[qid] = qt
	}

	iv.Steps = make([]interview.Step, 0, len(ri.Steps))
	for i, rs := range ri.Steps {
		step, err := compileStep(rs, ev)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if ask, ok := step.(interview.AskStep); ok {
			if _, exists := iv.Questions[ask.Ask]; !exists {
				return nil, fmt.Errorf("step %d: no question with ID %q", i, ask.Ask)
			}
		}
		iv.Steps = append(iv.Steps, step)
	}

	return iv, nil
}

func compileQuestion(rq rawQuestion, ev *logic.Evaluator) (*input.QuestionTemplate, error) {
	title, err := ev.CompileTemplate(rq.Title)
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	description, err := ev.CompileTemplate(rq.Description)
	if err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}

	qt := &input.QuestionTemplate{
		Title:       title,
		Description: description,
		Fields:      make([]input.Field, 0, len(rq.Fields)),
	}
	for i, rf := range rq.Fields {
		field, err := compileField(rf, ev)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		qt.Fields = append(qt.Fields, field)
	}
	return qt, nil
}

type rawField struct {
	Set  string `mapstructure:"set"`
	Type string `mapstructure:"type"`
}

type rawTextField struct {
	Label        string `mapstructure:"label"`
	Optional     bool   `mapstructure:"optional"`
	MinLength    *int   `mapstructure:"min_length"`
	MaxLength    *int   `mapstructure:"max_length"`
	Pattern      string `mapstructure:"pattern"`
	Autocomplete string `mapstructure:"autocomplete"`
	Multiline    bool   `mapstructure:"multiline"`
}

type rawSelectField struct {
	Label        string            `mapstructure:"label"`
	Component    string            `mapstructure:"component"`
	Min          *int              `mapstructure:"min"`
	Max          *int              `mapstructure:"max"`
	Autocomplete string            `mapstructure:"autocomplete"`
	Options      []rawSelectOption `mapstructure:"options"`
}

type rawSelectOption struct {
	ID          string `mapstructure:"id"`
	Label       string `mapstructure:"label"`
	Value       any    `mapstructure:"value"`
	Default     bool   `mapstructure:"default"`
	DefaultWhen string `mapstructure:"default_when"`
}

type rawNumberField struct {
	Label    string   `mapstructure:"label"`
	Optional bool     `mapstructure:"optional"`
	Integer  bool     `mapstructure:"integer"`
	Minimum  *float64 `mapstructure:"minimum"`
	Maximum  *float64 `mapstructure:"maximum"`
}

func compileField(rf map[string]any, ev *logic.Evaluator) (input.Field, error) {
	var head rawField
	if err := mapstructure.Decode(rf, &head); err != nil {
		return input.Field{}, fmt.Errorf("failed to decode field: %w", err)
	}
	if head.Set == "" {
		return input.Field{}, fmt.Errorf("field missing 'set' pointer")
	}
	target, err := logic.ParsePointer(head.Set)
	if err != nil {
		return input.Field{}, err
	}

	kind := head.Type
	if kind == "" {
		kind = "text"
	}

	var tmpl input.FieldTemplate
	switch kind {
	case "text":
		tmpl, err = compileTextField(rf, ev)
	case "select":
		tmpl, err = compileSelectField(rf, ev)
	case "number":
		tmpl, err = compileNumberField(rf, ev)
	default:
		return input.Field{}, fmt.Errorf("unknown field type %q", kind)
	}
	if err != nil {
		return input.Field{}, err
	}
	return input.Field{Set: target, Template: tmpl}, nil
}

func compileTextField(rf map[string]any, ev *logic.Evaluator) (*input.TextField, error) {
	var rt rawTextField
	if err := mapstructure.Decode(rf, &rt); err != nil {
		return nil, fmt.Errorf("failed to decode text field: %w", err)
	}
	label, err := ev.CompileTemplate(rt.Label)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}

	f := input.NewTextField(label)
	f.Optional = rt.Optional
	f.Autocomplete = rt.Autocomplete
	f.Multiline = rt.Multiline
	if rt.MinLength != nil {
		f.MinLength = *rt.MinLength
	}
	if rt.MaxLength != nil {
		f.MaxLength = *rt.MaxLength
	}
	if rt.Pattern != "" {
		pat, err := regexp.Compile(rt.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern: %w", err)
		}
		f.Pattern = pat
	}
	return f, nil
}

func compileSelectField(rf map[string]any, ev *logic.Evaluator) (*input.SelectField, error) {
	var rs rawSelectField
	if err := mapstructure.Decode(rf, &rs); err != nil {
		return nil, fmt.Errorf("failed to decode select field: %w", err)
	}
	label, err := ev.CompileTemplate(rs.Label)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}

	options := make([]input.SelectOption, 0, len(rs.Options))
	for i, ro := range rs.Options {
		optLabel, err := ev.CompileTemplate(ro.Label)
		if err != nil {
			return nil, fmt.Errorf("option %d: label: %w", i, err)
		}
		opt := input.SelectOption{
			ID:      ro.ID,
			Label:   optLabel,
			Value:   ro.Value,
			Default: ro.Default,
		}
		if ro.DefaultWhen != "" {
			expr, err := ev.CompileExpression(ro.DefaultWhen)
			if err != nil {
				return nil, fmt.Errorf("option %d: default_when: %w", i, err)
			}
			opt.DefaultWhen = &expr
		}
		options = append(options, opt)
	}

	f := input.NewSelectField(label, options)
	f.Autocomplete = rs.Autocomplete
	if rs.Component != "" {
		f.Component = rs.Component
	}
	// An omitted min means optional.
	f.Min = 0
	if rs.Min != nil {
		f.Min = *rs.Min
	}
	if rs.Max != nil {
		f.Max = *rs.Max
	}
	if f.Max < 1 || f.Min < 0 || f.Min > f.Max {
		return nil, fmt.Errorf("invalid min/max bounds %d/%d", f.Min, f.Max)
	}
	return f, nil
}

func compileNumberField(rf map[string]any, ev *logic.Evaluator) (*input.NumberField, error) {
	var rn rawNumberField
	if err := mapstructure.Decode(rf, &rn); err != nil {
		return nil, fmt.Errorf("failed to decode number field: %w", err)
	}
	label, err := ev.CompileTemplate(rn.Label)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}
	return &input.NumberField{
		Label:    label,
		Optional: rn.Optional,
		Integer:  rn.Integer,
		Minimum:  rn.Minimum,
		Maximum:  rn.Maximum,
	}, nil
}

type rawAskStep struct {
	Ask  string `mapstructure:"ask"`
	When any    `mapstructure:"when"`
}

type rawSetStep struct {
	Set   string `mapstructure:"set"`
	Value any    `mapstructure:"value"`
	When  any    `mapstructure:"when"`
}

type rawExitStep struct {
	Exit        string `mapstructure:"exit"`
	Description string `mapstructure:"description"`
	When        any    `mapstructure:"when"`
}

// compileStep decodes one step map, discriminated by which of the "ask",
// "set" and "exit" keys is present.
func compileStep(rs map[string]any, ev *logic.Evaluator) (interview.Step, error) {
	_, hasAsk := rs["ask"]
	_, hasSet := rs["set"]
	_, hasExit := rs["exit"]
	switch {
	case hasAsk && !hasSet && !hasExit:
		return compileAskStep(rs, ev)
	case hasSet && !hasAsk && !hasExit:
		return compileSetStep(rs, ev)
	case hasExit && !hasAsk && !hasSet:
		return compileExitStep(rs, ev)
	default:
		return nil, fmt.Errorf("step must have exactly one of 'ask', 'set' or 'exit'")
	}
}

func compileAskStep(rs map[string]any, ev *logic.Evaluator) (interview.Step, error) {
	var ra rawAskStep
	if err := mapstructure.Decode(rs, &ra); err != nil {
		return nil, fmt.Errorf("failed to decode ask step: %w", err)
	}
	if ra.Ask == "" {
		return nil, fmt.Errorf("ask step missing question ID")
	}
	cond, err := compileWhen(ra.When, ev)
	if err != nil {
		return nil, fmt.Errorf("when: %w", err)
	}
	return interview.AskStep{Ask: ra.Ask, Cond: cond}, nil
}

func compileSetStep(rs map[string]any, ev *logic.Evaluator) (interview.Step, error) {
	var rset rawSetStep
	if err := mapstructure.Decode(rs, &rset); err != nil {
		return nil, fmt.Errorf("failed to decode set step: %w", err)
	}
	target, err := logic.ParsePointer(rset.Set)
	if err != nil {
		return nil, err
	}
	value, err := compileValue(rset.Value, ev)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	cond, err := compileWhen(rset.When, ev)
	if err != nil {
		return nil, fmt.Errorf("when: %w", err)
	}
	return interview.SetStep{Target: target, Value: value, Cond: cond}, nil
}

func compileExitStep(rs map[string]any, ev *logic.Evaluator) (interview.Step, error) {
	var re rawExitStep
	if err := mapstructure.Decode(rs, &re); err != nil {
		return nil, fmt.Errorf("failed to decode exit step: %w", err)
	}
	if re.Exit == "" {
		return nil, fmt.Errorf("exit step missing message")
	}
	msg, err := ev.CompileTemplate(re.Exit)
	if err != nil {
		return nil, fmt.Errorf("exit: %w", err)
	}
	desc, err := ev.CompileTemplate(re.Description)
	if err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	cond, err := compileWhen(re.When, ev)
	if err != nil {
		return nil, fmt.Errorf("when: %w", err)
	}
	return interview.ExitStep{Exit: msg, Description: desc, Cond: cond}, nil
}

// compileValue decodes a set step's value. A non-string is a literal. A
// string that is a single "{{ expr }}" becomes an expression, keeping the
// evaluated type; any other string is a template rendered to a string.
func compileValue(v any, ev *logic.Evaluator) (interview.Value, error) {
	s, ok := v.(string)
	if !ok {
		return interview.LiteralValue(v), nil
	}
	if src, isExpr := singleExpression(s); isExpr {
		expr, err := ev.CompileExpression(src)
		if err != nil {
			return interview.Value{}, err
		}
		return interview.ExpressionValue(expr), nil
	}
	tmpl, err := ev.CompileTemplate(s)
	if err != nil {
		return interview.Value{}, err
	}
	return interview.TemplateValue(tmpl), nil
}

var (
	singleExprPattern = regexp.MustCompile(`^\s*\{\{(.*)\}\}\s*$`)
	exprDelimPattern  = regexp.MustCompile(`\{\{|\}\}`)
)

// singleExpression reports whether the string is exactly one interpolation
// with no surrounding literal text, returning the inner expression source.
func singleExpression(s string) (string, bool) {
	m := singleExprPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	inner := m[1]
	// A second opener means multiple interpolations, not one.
	if exprDelimPattern.MatchString(inner) {
		return "", false
	}
	return inner, true
}

// compileWhen decodes a step condition. Absent means always; a bool is the
// constant condition; a string is an expression coerced to boolean; a list
// is the AND of its elements; a map may combine "and" and "or" lists.
func compileWhen(v any, ev *logic.Evaluator) (logic.When, error) {
	switch t := v.(type) {
	case nil:
		return logic.Always(), nil
	case bool:
		if t {
			return logic.Always(), nil
		}
		return logic.Never(), nil
	case string:
		expr, err := ev.CompileExpression(t)
		if err != nil {
			return logic.When{}, err
		}
		return logic.WhenExpr(expr), nil
	case []any:
		subs := make([]logic.When, 0, len(t))
		for _, sub := range t {
			w, err := compileWhen(sub, ev)
			if err != nil {
				return logic.When{}, err
			}
			subs = append(subs, w)
		}
		return logic.All(subs...), nil
	case map[string]any:
		return compileWhenMap(t, ev)
	default:
		return logic.When{}, fmt.Errorf("invalid condition type %T", v)
	}
}

func compileWhenMap(m map[string]any, ev *logic.Evaluator) (logic.When, error) {
	var subs []logic.When
	for key, raw := range m {
		list, ok := raw.([]any)
		if !ok {
			list = []any{raw}
		}
		inner := make([]logic.When, 0, len(list))
		for _, sub := range list {
			w, err := compileWhen(sub, ev)
			if err != nil {
				return logic.When{}, err
			}
			inner = append(inner, w)
		}
		switch key {
		case "and":
			subs = append(subs, logic.All(inner...))
		case "or":
			subs = append(subs, logic.Any(inner...))
		default:
			return logic.When{}, fmt.Errorf("unknown condition key %q", key)
		}
	}
	return logic.All(subs...), nil
}
