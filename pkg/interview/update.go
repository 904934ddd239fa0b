package interview

import (
	"github.com/open-event-systems/interview/pkg/input"
)

// Update runs the interview state machine once: it applies any responses
// to the pending question, then replays the step sequence from the top
// until a step halts with content or the sequence is exhausted (which
// marks the state completed).
//
// Replaying from the top keeps the transition idempotent: position is
// re-derived purely from the answered-question set and the data, so no
// execution cursor is persisted and script edits between calls are picked
// up safely.
//
// Errors: ValidationError for user-correctable response problems,
// ConfigError / PointerError / EvalError for script defects. On error the
// input context is returned unchanged; nothing partial is produced.
func Update(ic Context, responses map[string]any) (Context, Content, error) {
	run, err := applyResponses(ic, responses)
	if err != nil {
		return ic, nil, err
	}

	for _, step := range run.Interview.Steps {
		ok, err := run.eval.EvalWhen(step.When(), run.TemplateContext())
		if err != nil {
			return ic, nil, err
		}
		if !ok {
			continue
		}
		stepped, content, err := step.run(run)
		if err != nil {
			return ic, nil, err
		}
		run = stepped
		if content != nil {
			return run, content, nil
		}
	}

	return run.withState(run.State.withCompleted()), nil, nil
}

// applyResponses validates responses against the pending question and
// writes the answers into the data tree. A pending question must be
// answered exactly once: responses without a pending question, or a
// pending question without responses, are validation errors. A nil map
// means no submission; a non-nil empty map is a submission and answers a
// question whose fields are all optional.
func applyResponses(ic Context, responses map[string]any) (Context, error) {
	pending := ic.State.CurrentQuestionID
	if pending == "" {
		if len(responses) > 0 {
			return ic, &input.ValidationError{Msg: "no question is awaiting a response"}
		}
		return ic, nil
	}
	if responses == nil {
		return ic, &input.ValidationError{Msg: "a question is awaiting a response"}
	}

	qt := ic.Interview.Questions[pending]
	if qt == nil {
		return ic, configErrorf("no question with ID %q", pending)
	}

	ctx := ic.TemplateContext()
	answers, err := qt.ValidateResponses(ctx, ic.eval, responses)
	if err != nil {
		return ic, err
	}

	data := ic.State.Data
	for _, a := range answers {
		data, err = a.Target.Set(data, ctx, a.Value)
		if err != nil {
			return ic, err
		}
	}

	return ic.withState(ic.State.withData(data).answeredCurrent()), nil
}
