package logic

type whenKind int

const (
	whenAlways whenKind = iota
	whenNever
	whenExpr
	whenAll
	whenAny
)

// When is a boolean condition: always true, always false, a single
// expression coerced to boolean, or a logical combination of
// sub-conditions. The zero value is always true, matching the default for
// steps that declare no condition.
type When struct {
	kind whenKind
	expr Expression
	subs []When
}

// Always returns the condition that always holds.
func Always() When { return When{kind: whenAlways} }

// Never returns the condition that never holds.
func Never() When { return When{kind: whenNever} }

// WhenExpr wraps an expression whose result is coerced to boolean.
func WhenExpr(x Expression) When { return When{kind: whenExpr, expr: x} }

// All combines sub-conditions with logical AND. An empty All is true.
func All(subs ...When) When { return When{kind: whenAll, subs: subs} }

// Any combines sub-conditions with logical OR. An empty Any is false.
func Any(subs ...When) When { return When{kind: whenAny, subs: subs} }

// EvalWhen evaluates a condition against ctx. AND/OR short-circuit left
// to right.
func (e *Evaluator) EvalWhen(w When, ctx Context) (bool, error) {
	switch w.kind {
	case whenAlways:
		return true, nil
	case whenNever:
		return false, nil
	case whenExpr:
		v, err := e.Evaluate(w.expr, ctx)
		if err != nil {
			return false, err
		}
		return Truthy(v), nil
	case whenAll:
		for _, sub := range w.subs {
			ok, err := e.EvalWhen(sub, ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case whenAny:
		for _, sub := range w.subs {
			ok, err := e.EvalWhen(sub, ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}
