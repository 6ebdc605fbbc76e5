package teamup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectOne(t *testing.T) {
	t.Parallel()

	t.Run("unwraps singular envelope", func(t *testing.T) {
		t.Parallel()

		body := Fields{"event": map[string]any{"id": "42", "title": "Standup"}}
		item, err := ProjectOne(body, "event", 3)
		require.NoError(t, err)

		assert.Equal(t, 3, item.SourceIndex)
		assert.Equal(t, "42", item.Payload["id"])
	})

	t.Run("missing envelope", func(t *testing.T) {
		t.Parallel()

		for name, body := range map[string]Fields{
			"empty body":  {},
			"null value":  {"event": nil},
			"wrong shape": {"event": "not an object"},
			"other key":   {"events": map[string]any{}},
		} {
			_, err := ProjectOne(body, "event", 0)

			var missing *MissingEnvelopeError
			require.ErrorAs(t, err, &missing, name)
			assert.Equal(t, "event", missing.Key, name)
		}
	})
}

func TestProjectMany(t *testing.T) {
	t.Parallel()

	t.Run("empty array is zero items, not an error", func(t *testing.T) {
		t.Parallel()

		items, err := ProjectMany(Fields{"events": []any{}}, "events", 0, 1)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("missing envelope", func(t *testing.T) {
		t.Parallel()

		_, err := ProjectMany(Fields{}, "events", 0, 0)
		assert.ErrorAs(t, err, new(*MissingEnvelopeError))
	})

	t.Run("preserves order and source index", func(t *testing.T) {
		t.Parallel()

		body := Fields{"events": []any{
			map[string]any{"id": "a"},
			map[string]any{"id": "b"},
			map[string]any{"id": "c"},
		}}
		items, err := ProjectMany(body, "events", 0, 7)
		require.NoError(t, err)
		require.Len(t, items, 3)

		for i, want := range []string{"a", "b", "c"} {
			assert.Equal(t, want, items[i].Payload["id"])
			assert.Equal(t, 7, items[i].SourceIndex)
		}
	})

	t.Run("client-side cap truncates in server order", func(t *testing.T) {
		t.Parallel()

		elems := make([]any, 120)
		for i := range elems {
			elems[i] = map[string]any{"id": fmt.Sprintf("evt-%03d", i)}
		}
		items, err := ProjectMany(Fields{"events": elems}, "events", 50, 0)
		require.NoError(t, err)
		require.Len(t, items, 50)

		assert.Equal(t, "evt-000", items[0].Payload["id"])
		assert.Equal(t, "evt-049", items[49].Payload["id"])
	})

	t.Run("non-object elements are dropped", func(t *testing.T) {
		t.Parallel()

		body := Fields{"events": []any{
			map[string]any{"id": "a"},
			"garbage",
			nil,
			map[string]any{"id": "b"},
		}}
		items, err := ProjectMany(body, "events", 0, 0)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].Payload["id"])
		assert.Equal(t, "b", items[1].Payload["id"])
	})

	t.Run("cap counts raw elements before the drop", func(t *testing.T) {
		t.Parallel()

		body := Fields{"events": []any{
			map[string]any{"id": "a"},
			"garbage",
			map[string]any{"id": "b"},
		}}
		items, err := ProjectMany(body, "events", 2, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "a", items[0].Payload["id"])
	})

	t.Run("zero limit means no cap", func(t *testing.T) {
		t.Parallel()

		elems := []any{map[string]any{"id": "a"}, map[string]any{"id": "b"}}
		items, err := ProjectMany(Fields{"events": elems}, "events", 0, 0)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}

func TestProjectUndo(t *testing.T) {
	t.Parallel()

	t.Run("empty body synthesizes a success record", func(t *testing.T) {
		t.Parallel()

		item := ProjectUndo(Fields{}, "42", 5)
		assert.Equal(t, 5, item.SourceIndex)
		assert.Equal(t, Fields{"success": true, "undoId": "42", "status": "Undone"}, item.Payload)
	})

	t.Run("non-empty body passes through", func(t *testing.T) {
		t.Parallel()

		body := Fields{"event": map[string]any{"id": "42"}}
		item := ProjectUndo(body, "42", 0)
		assert.Equal(t, body, item.Payload)
	})
}
