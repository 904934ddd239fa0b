package memory

import (
	"context"
	"testing"

	"github.com/open-event-systems/interview/pkg/interview"
	"github.com/open-event-systems/interview/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	rec := storage.Record{
		Interview: "registration",
		State: interview.NewState("cart-1",
			map[string]any{"event": "GopherCon"},
			map[string]any{"age": float64(30)},
		),
	}

	key, err := store.Put(ctx, rec)
	require.NoError(t, err)
	require.NotEmpty(t, key)

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "registration", got.Interview)
	assert.Equal(t, "cart-1", got.State.Target)
	assert.Equal(t, float64(30), got.State.Data["age"])

	// Every Put yields a distinct key.
	key2, err := store.Put(ctx, rec)
	require.NoError(t, err)
	assert.NotEqual(t, key, key2)
	assert.Equal(t, 2, store.Len())

	// Stored records are isolated from caller mutations.
	rec.State.Data["age"] = float64(99)
	got, err = store.Get(ctx, key2)
	require.NoError(t, err)
	assert.Equal(t, float64(30), got.State.Data["age"])
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := New()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
