package interview

import (
	"github.com/open-event-systems/interview/pkg/logic"
)

// Step is one unit of script logic. The variant set is closed: Ask, Set
// and Exit. Each variant is a pure transition over a Context; a non-nil
// Content halts the run.
type Step interface {
	// When returns the step's guard condition (the zero When is always
	// true).
	When() logic.When

	run(ic Context) (Context, Content, error)
}

// Content is the payload a halting step emits: a question or an exit.
type Content interface {
	isContent()
}

// AskContent carries a rendered question awaiting a response.
type AskContent struct {
	Type   string         `json:"type"` // always "question"
	Schema map[string]any `json:"schema"`
}

func (*AskContent) isContent() {}

// ExitContent carries a terminal exit reason. Exiting is not completion:
// the interview ends without reaching its target.
type ExitContent struct {
	Type        string `json:"type"` // always "exit"
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

func (*ExitContent) isContent() {}

// AskStep halts the run with a rendered question, unless that question
// was already answered — then it is a no-op regardless of its condition.
type AskStep struct {
	Ask  string
	Cond logic.When
}

func (s AskStep) When() logic.When { return s.Cond }

func (s AskStep) run(ic Context) (Context, Content, error) {
	if ic.State.Answered(s.Ask) {
		return ic, nil, nil
	}
	qt := ic.Interview.Questions[s.Ask]
	if qt == nil {
		return ic, nil, configErrorf("no question with ID %q", s.Ask)
	}
	q, err := qt.Render(ic.TemplateContext(), ic.eval)
	if err != nil {
		return ic, nil, err
	}
	ic = ic.withState(ic.State.withCurrentQuestion(s.Ask))
	return ic, &AskContent{Type: "question", Schema: q.Schema}, nil
}

// SetStep writes an evaluated value at a pointer path in the answer data
// and always continues the run.
type SetStep struct {
	Target logic.Pointer
	Value  Value
	Cond   logic.When
}

func (s SetStep) When() logic.When { return s.Cond }

func (s SetStep) run(ic Context) (Context, Content, error) {
	ctx := ic.TemplateContext()
	v, err := s.Value.Evaluate(ctx, ic.eval)
	if err != nil {
		return ic, nil, err
	}
	data, err := s.Target.Set(ic.State.Data, ctx, v)
	if err != nil {
		return ic, nil, err
	}
	return ic.withState(ic.State.withData(data)), nil, nil
}

// ExitStep halts the run as terminal without completing the interview.
type ExitStep struct {
	Exit        logic.Template
	Description logic.Template
	Cond        logic.When
}

func (s ExitStep) When() logic.When { return s.Cond }

func (s ExitStep) run(ic Context) (Context, Content, error) {
	ctx := ic.TemplateContext()
	msg, err := ic.eval.Render(s.Exit, ctx)
	if err != nil {
		return ic, nil, err
	}
	content := &ExitContent{Type: "exit", Message: msg}
	if !s.Description.IsZero() {
		desc, err := ic.eval.Render(s.Description, ctx)
		if err != nil {
			return ic, nil, err
		}
		content.Description = desc
	}
	return ic, content, nil
}
