package interview

import (
	"slices"
)

// State is the persistent snapshot of one interview. It is a value:
// transitions produce a new State and never mutate the old one, so a
// caller can safely keep the previous snapshot until the new one is
// persisted.
type State struct {
	// Data is the answer set accumulated so far.
	Data map[string]any `json:"data"`

	// Context is the read-only input supplied at interview start. Steps
	// never write to it.
	Context map[string]any `json:"context"`

	// AnsweredQuestionIDs records every question already presented and
	// answered, in sorted order. It only grows.
	AnsweredQuestionIDs []string `json:"answered_question_ids"`

	// CurrentQuestionID identifies the question awaiting a response, or
	// is empty. It never names an already-answered question.
	CurrentQuestionID string `json:"current_question_id,omitempty"`

	// Target is an opaque caller-supplied destination tag, preserved
	// unchanged for the interview's lifetime.
	Target string `json:"target,omitempty"`

	// Completed is true once the step sequence ran to the end with no
	// pending question.
	Completed bool `json:"completed"`
}

// NewState creates the initial state for an interview run. The data map
// seeds the answer set; both maps may be nil.
func NewState(target string, context, data map[string]any) State {
	if context == nil {
		context = map[string]any{}
	}
	if data == nil {
		data = map[string]any{}
	}
	return State{
		Data:    data,
		Context: context,
		Target:  target,
	}
}

// Answered reports whether the question was already asked and answered.
func (s State) Answered(id string) bool {
	_, found := slices.BinarySearch(s.AnsweredQuestionIDs, id)
	return found
}

func (s State) withData(data map[string]any) State {
	s.Data = data
	return s
}

func (s State) withCurrentQuestion(id string) State {
	s.CurrentQuestionID = id
	return s
}

// answeredCurrent clears the pending question and records it answered.
func (s State) answeredCurrent() State {
	id := s.CurrentQuestionID
	s.CurrentQuestionID = ""
	i, found := slices.BinarySearch(s.AnsweredQuestionIDs, id)
	if found {
		return s
	}
	ids := make([]string, 0, len(s.AnsweredQuestionIDs)+1)
	ids = append(ids, s.AnsweredQuestionIDs[:i]...)
	ids = append(ids, id)
	ids = append(ids, s.AnsweredQuestionIDs[i:]...)
	s.AnsweredQuestionIDs = ids
	return s
}

func (s State) withCompleted() State {
	s.Completed = true
	return s
}
