/*
Package interview is a rules-driven engine for multi-step question flows.

It separates the static script (questions, conditions, set rules) from the
per-run state (answers collected so far), so a single loaded script serves
any number of concurrent runs. Scripts are declarative YAML; conditions
and templates are small expressions evaluated against the accumulated
answers.

# Concept

An interview is an ordered list of steps. On every update the engine
replays the list from the top: steps whose conditions hold either write
derived values, ask a question, or exit. Because the position is
re-derived from the answered-question set on each pass, the transition is
idempotent and no execution cursor is ever persisted.

# Layout

  - pkg/logic: pointers, expressions, templates and conditions
  - pkg/input: field templates, question schemas and response validation
  - pkg/interview: the state machine itself
  - pkg/storage: pluggable state persistence (memory, Redis)
  - cmd/interviewd: the HTTP server and terminal runner

# Usage

Load a script and advance a run:

	ev := logic.NewEvaluator(0)
	interviews, err := config.LoadInterviews("interviews.yaml", ev)
	if err != nil {
		log.Fatal(err)
	}

	iv := interviews.Get("registration")
	state := interview.NewState("cart-1", nil, nil)
	ic := interview.NewContext(iv, state, ev)

	ic, content, err := interview.Update(ic, nil)
	// content is a question to present, an exit, or nil when complete.
*/
package interview

// Version is the release version, set at build time via -ldflags.
var Version = "dev"
