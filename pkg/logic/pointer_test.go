package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	valid := []string{
		"user",
		"user.name",
		"item[0]",
		"item[12].name",
		"item[n][0]",
		"item[n][a.b]",
		"a.b.c[1][x][2]",
	}
	for _, src := range valid {
		t.Run(src, func(t *testing.T) {
			p, err := ParsePointer(src)
			require.NoError(t, err)
			assert.Equal(t, src, p.String())
		})
	}

	invalid := []string{
		"",
		"   ",
		".name",
		"user.",
		"user..name",
		"[0]",
		"item[",
		"item[]",
		"item[0",
		"item]0[",
		"0item",
		"user name",
	}
	for _, src := range invalid {
		t.Run("invalid "+src, func(t *testing.T) {
			_, err := ParsePointer(src)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestPointerGet(t *testing.T) {
	data := map[string]any{
		"user": map[string]any{"name": "alice"},
		"items": []any{
			"first",
			map[string]any{"id": 2},
		},
	}

	tests := []struct {
		ptr  string
		want any
		ok   bool
	}{
		{"user.name", "alice", true},
		{"items[0]", "first", true},
		{"items[1].id", 2, true},
		{"user.missing", nil, false},
		{"missing.deeply.nested", nil, false},
		{"items[5]", nil, false},
		{"user[0]", nil, false},
		{"user.name.x", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.ptr, func(t *testing.T) {
			p := MustParsePointer(tt.ptr)
			got, ok := p.Get(data, nil)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPointerSetRoundTrip(t *testing.T) {
	tests := []struct {
		ptr   string
		value any
	}{
		{"name", "alice"},
		{"user.name", "alice"},
		{"user.pets[0]", "cat"},
		{"a.b.c.d", 42},
	}
	for _, tt := range tests {
		t.Run(tt.ptr, func(t *testing.T) {
			p := MustParsePointer(tt.ptr)
			data, err := p.Set(map[string]any{}, nil, tt.value)
			require.NoError(t, err)
			got, ok := p.Get(data, nil)
			require.True(t, ok)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestPointerSetSharesUnchangedSubstructure(t *testing.T) {
	orig := map[string]any{
		"user":  map[string]any{"name": "alice"},
		"other": map[string]any{"kept": true},
	}
	p := MustParsePointer("user.name")
	updated, err := p.Set(orig, nil, "bob")
	require.NoError(t, err)

	// Original is untouched, unrelated branches are shared.
	assert.Equal(t, "alice", orig["user"].(map[string]any)["name"])
	assert.Equal(t, "bob", updated["user"].(map[string]any)["name"])
	if &orig == &updated {
		t.Fatal("expected a new root")
	}
	assert.Equal(t, orig["other"], updated["other"])
}

func TestPointerSetSequenceBounds(t *testing.T) {
	base := map[string]any{"items": []any{"a", "b"}}

	// Replacing an existing element and appending at len are fine.
	p := MustParsePointer("items[1]")
	data, err := p.Set(base, nil, "B")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "B"}, data["items"])

	p = MustParsePointer("items[2]")
	data, err = p.Set(base, nil, "c")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, data["items"])

	// Writing past the end of an existing sequence is an error.
	p = MustParsePointer("items[4]")
	_, err = p.Set(base, nil, "x")
	var ptrErr *PointerError
	require.ErrorAs(t, err, &ptrErr)
}

func TestPointerIndirect(t *testing.T) {
	ctx := Context{"n": 2}

	// Scenario: item[n][0] with n=2 writes into the third element of
	// item, creating intermediate elements as needed.
	p := MustParsePointer("item[n][0]")
	data, err := p.Set(map[string]any{}, ctx, "value")
	require.NoError(t, err)

	items, ok := data["item"].([]any)
	require.True(t, ok)
	require.Len(t, items, 3)
	assert.Nil(t, items[0])
	assert.Nil(t, items[1])

	got, ok := p.Get(data, ctx)
	require.True(t, ok)
	assert.Equal(t, "value", got)

	// Indirect string segments address map keys.
	ctx = Context{"k": "name"}
	p = MustParsePointer("user[k]")
	data, err = p.Set(map[string]any{}, ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", data["user"].(map[string]any)["name"])

	// An unresolvable indirect segment is a write error.
	p = MustParsePointer("item[missing]")
	_, err = p.Set(map[string]any{}, Context{}, "x")
	var ptrErr *PointerError
	require.ErrorAs(t, err, &ptrErr)
}

func TestPointerDirect(t *testing.T) {
	assert.True(t, MustParsePointer("user.name[0]").Direct())
	assert.False(t, MustParsePointer("item[n]").Direct())

	assert.Equal(t, []any{"user", "name", 0}, MustParsePointer("user.name[0]").Path())
	assert.Nil(t, MustParsePointer("item[n]").Path())
}
