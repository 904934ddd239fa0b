package logic

import "fmt"

// SyntaxError reports a malformed pointer or template source.
type SyntaxError struct {
	Src string
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %q at offset %d: %s", e.Src, e.Pos, e.Msg)
}

// PointerError reports a write that cannot be applied to the data tree,
// such as an index past the end of an existing sequence or an indirect
// segment that does not resolve. It is a configuration defect, never a
// user input error.
type PointerError struct {
	Pointer string
	Msg     string
}

func (e *PointerError) Error() string {
	return fmt.Sprintf("pointer %q: %s", e.Pointer, e.Msg)
}

// EvalError reports an expression that failed to compile or hit an
// undefined operation at evaluation time (e.g. dereferencing null).
// A missing top-level name is not an EvalError; it evaluates to nil.
type EvalError struct {
	Source string
	Msg    string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating %q: %s", e.Source, e.Msg)
}
