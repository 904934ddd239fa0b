package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateExpression(t *testing.T) {
	ev := NewEvaluator(0)
	ctx := Context{
		"age":  int64(21),
		"name": "alice",
		"user": map[string]any{"email": "a@example.com"},
	}

	tests := []struct {
		src  string
		want any
	}{
		{"age >= 18", true},
		{"age < 18", false},
		{"name", "alice"},
		{"user.email", "a@example.com"},
		{"age + 1", int64(22)},
		{"name == 'alice' && age >= 18", true},
		{"1 + 2", int64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			x, err := ev.CompileExpression(tt.src)
			require.NoError(t, err)
			got, err := ev.Evaluate(x, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateUndefinedName(t *testing.T) {
	ev := NewEvaluator(0)

	// An undefined top-level name is absent, not an error.
	x, err := ev.CompileExpression("missing")
	require.NoError(t, err)
	got, err := ev.Evaluate(x, Context{})
	require.NoError(t, err)
	assert.Nil(t, got)

	// Comparisons against an absent name are absent too.
	x, err = ev.CompileExpression("age >= 18")
	require.NoError(t, err)
	got, err = ev.Evaluate(x, Context{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEvaluateUndefinedDereference(t *testing.T) {
	ev := NewEvaluator(0)

	// Dereferencing a null value is a fatal evaluation error.
	x, err := ev.CompileExpression("user.email")
	require.NoError(t, err)
	_, err = ev.Evaluate(x, Context{"user": nil})
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
}

func TestCompileExpressionSyntaxError(t *testing.T) {
	ev := NewEvaluator(0)
	_, err := ev.CompileExpression("age >=")
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
}

func TestRenderTemplate(t *testing.T) {
	ev := NewEvaluator(0)
	ctx := Context{"title": "Test", "n": int64(3), "user": map[string]any{"name": "alice"}}

	tests := []struct {
		src  string
		want string
	}{
		{"plain text", "plain text"},
		{"{{ title }}", "Test"},
		{"Hello {{ user.name }}!", "Hello alice!"},
		{"{{ n }} items", "3 items"},
		{"{{ missing }}", ""},
		{"{{ n > 1 }}", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tmpl, err := ev.CompileTemplate(tt.src)
			require.NoError(t, err)
			got, err := ev.Render(tmpl, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ev.CompileTemplate("broken {{ title")
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
}

func TestEvalWhen(t *testing.T) {
	ev := NewEvaluator(0)
	ctx := Context{"age": int64(21), "vip": true}

	expr := func(src string) When {
		x, err := ev.CompileExpression(src)
		require.NoError(t, err)
		return WhenExpr(x)
	}

	tests := []struct {
		name string
		w    When
		want bool
	}{
		{"zero value is always", When{}, true},
		{"always", Always(), true},
		{"never", Never(), false},
		{"expr true", expr("age >= 18"), true},
		{"expr false", expr("age >= 99"), false},
		{"expr absent is false", expr("unknown"), false},
		{"empty all", All(), true},
		{"empty any", Any(), false},
		{"all true", All(expr("vip"), expr("age >= 18")), true},
		{"all mixed", All(expr("vip"), Never()), false},
		{"any mixed", Any(Never(), expr("vip")), true},
		{"any false", Any(Never(), expr("age < 10")), false},
		{"nested", All(Any(Never(), Always()), expr("vip")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.EvalWhen(tt.w, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalWhenShortCircuit(t *testing.T) {
	ev := NewEvaluator(0)

	// The second operand would be a fatal error if evaluated.
	bad, err := ev.CompileExpression("user.email")
	require.NoError(t, err)
	ctx := Context{"user": nil}

	ok, err := ev.EvalWhen(All(Never(), WhenExpr(bad)), ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ev.EvalWhen(Any(Always(), WhenExpr(bad)), ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProgramCacheReuse(t *testing.T) {
	ev := NewEvaluator(2)
	x, err := ev.CompileExpression("1 + 1")
	require.NoError(t, err)

	p1, ok := ev.progs.Get(x.Source)
	require.True(t, ok)

	for range 3 {
		_, err := ev.Evaluate(x, nil)
		require.NoError(t, err)
	}
	p2, ok := ev.progs.Get(x.Source)
	require.True(t, ok)
	assert.Same(t, p1, p2)
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(int64(0)))
	assert.False(t, Truthy(0.0))
	assert.True(t, Truthy(true))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(int64(5)))
	assert.True(t, Truthy([]any{}))
	assert.True(t, Truthy(map[string]any{}))
}
