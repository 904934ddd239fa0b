package interview

import (
	"github.com/open-event-systems/interview/pkg/input"
	"github.com/open-event-systems/interview/pkg/logic"
)

// Interview is a static script: the ordered step list and the question
// templates it can ask. It is loaded once from configuration and shared
// read-only across concurrent runs.
type Interview struct {
	ID        string
	Questions map[string]*input.QuestionTemplate
	Steps     []Step
}

// Context pairs an interview state with its script and the evaluator used
// for every condition and expression during a run. It is transient:
// rebuilt per update call, never persisted itself.
type Context struct {
	Interview *Interview
	State     State

	eval *logic.Evaluator
}

// NewContext builds a run context for state against the script.
func NewContext(iv *Interview, state State, ev *logic.Evaluator) Context {
	return Context{Interview: iv, State: state, eval: ev}
}

// Evaluator returns the evaluator for this run.
func (c Context) Evaluator() *logic.Evaluator { return c.eval }

// TemplateContext merges the start context and the accumulated answer
// data (data wins) into the mapping visible to all expression evaluation.
// It is rebuilt on every call so Set steps are immediately observable.
func (c Context) TemplateContext() logic.Context {
	merged := make(logic.Context, len(c.State.Context)+len(c.State.Data))
	for k, v := range c.State.Context {
		merged[k] = v
	}
	for k, v := range c.State.Data {
		merged[k] = v
	}
	return merged
}

func (c Context) withState(state State) Context {
	c.State = state
	return c
}
