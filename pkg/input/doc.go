// Package input models the user-facing half of an interview: field
// templates that validate answers and emit JSON-Schema fragments, and
// question templates that assemble them into rendered questions.
package input
