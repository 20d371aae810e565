package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apply plays a change set back onto a snapshot so tests can assert on the
// resulting order assignment.
func apply(items []Elem, changes []Change) []Elem {
	out := make([]Elem, len(items))
	copy(out, items)
	for _, ch := range changes {
		for i := range out {
			if out[i].ID == ch.ID {
				out[i].Order = ch.Order
			}
		}
	}
	return out
}

func orders(items []Elem) map[string]int {
	m := make(map[string]int, len(items))
	for _, it := range items {
		m[it.ID] = it.Order
	}
	return m
}

// assertDense verifies the core invariant: orders are exactly {1..N}.
func assertDense(t *testing.T, items []Elem) {
	t.Helper()
	seen := make(map[int]bool, len(items))
	for _, it := range items {
		assert.False(t, seen[it.Order], "duplicate order %d", it.Order)
		seen[it.Order] = true
		assert.GreaterOrEqual(t, it.Order, 1)
		assert.LessOrEqual(t, it.Order, len(items))
	}
}

func TestNextOrder(t *testing.T) {
	tests := []struct {
		name  string
		items []Elem
		want  int
	}{
		{name: "empty scope appends at 1", items: nil, want: 1},
		{
			name:  "dense scope appends at max+1",
			items: []Elem{{ID: "a", Order: 1}, {ID: "b", Order: 2}, {ID: "c", Order: 3}},
			want:  4,
		},
		{
			name:  "gapped scope still appends past max",
			items: []Elem{{ID: "a", Order: 1}, {ID: "b", Order: 2}, {ID: "c", Order: 5}},
			want:  6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextOrder(tt.items))
		})
	}
}

func TestMoveItem(t *testing.T) {
	scope := []Elem{{ID: "a", Order: 1}, {ID: "b", Order: 2}, {ID: "c", Order: 3}}

	t.Run("middle item moves up", func(t *testing.T) {
		changes, err := MoveItem(scope, "b", DirectionUp)
		require.NoError(t, err)
		require.Len(t, changes, 2)
		// Non-moving neighbour is written first.
		assert.Equal(t, Change{ID: "a", Order: 2}, changes[0])
		assert.Equal(t, Change{ID: "b", Order: 1}, changes[1])

		after := apply(scope, changes)
		assertDense(t, after)
		assert.Equal(t, map[string]int{"a": 2, "b": 1, "c": 3}, orders(after))
	})

	t.Run("first item up is a no-op, not an error", func(t *testing.T) {
		changes, err := MoveItem(scope, "a", DirectionUp)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("last item down is a no-op, not an error", func(t *testing.T) {
		changes, err := MoveItem(scope, "c", DirectionDown)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := MoveItem(scope, "nope", DirectionDown)
		assert.ErrorIs(t, err, ErrUnknownItem)
	})

	t.Run("up then down restores the original sequence", func(t *testing.T) {
		changes, err := MoveItem(scope, "b", DirectionUp)
		require.NoError(t, err)
		mid := apply(scope, changes)

		changes, err = MoveItem(mid, "b", DirectionDown)
		require.NoError(t, err)
		after := apply(mid, changes)

		assert.Equal(t, orders(scope), orders(after))
	})

	t.Run("gapped orders swap values, not positions", func(t *testing.T) {
		gapped := []Elem{{ID: "a", Order: 1}, {ID: "b", Order: 2}, {ID: "c", Order: 5}}
		changes, err := MoveItem(gapped, "c", DirectionUp)
		require.NoError(t, err)
		after := apply(gapped, changes)
		assert.Equal(t, map[string]int{"a": 1, "b": 5, "c": 2}, orders(after))
	})

	t.Run("duplicate orders pick the lowest id deterministically", func(t *testing.T) {
		// Recovery path: two items share order 2 after a prior inconsistency.
		dup := []Elem{{ID: "a", Order: 1}, {ID: "x", Order: 2}, {ID: "y", Order: 2}, {ID: "d", Order: 3}}
		changes, err := MoveItem(dup, "d", DirectionUp)
		require.NoError(t, err)
		require.Len(t, changes, 2)
		assert.Equal(t, "x", changes[0].ID)
	})
}

func TestCommitOrder(t *testing.T) {
	scope := []Elem{{ID: "a", Order: 1}, {ID: "b", Order: 2}, {ID: "c", Order: 3}}

	t.Run("assigns 1..N in list position", func(t *testing.T) {
		changes, err := CommitOrder(scope, []string{"c", "a", "b"})
		require.NoError(t, err)
		after := apply(scope, changes)
		assertDense(t, after)
		assert.Equal(t, map[string]int{"c": 1, "a": 2, "b": 3}, orders(after))
	})

	t.Run("is idempotent", func(t *testing.T) {
		ids := []string{"b", "c", "a"}
		first, err := CommitOrder(scope, ids)
		require.NoError(t, err)
		once := apply(scope, first)

		second, err := CommitOrder(once, ids)
		require.NoError(t, err)
		twice := apply(once, second)

		assert.Equal(t, orders(once), orders(twice))
	})

	t.Run("omitted id is an error", func(t *testing.T) {
		_, err := CommitOrder(scope, []string{"a", "b"})
		assert.ErrorIs(t, err, ErrIncompleteOrder)
	})

	t.Run("unknown id is an error", func(t *testing.T) {
		_, err := CommitOrder(scope, []string{"a", "b", "z"})
		assert.ErrorIs(t, err, ErrIncompleteOrder)
	})

	t.Run("duplicated id is an error", func(t *testing.T) {
		_, err := CommitOrder(scope, []string{"a", "b", "b"})
		assert.ErrorIs(t, err, ErrIncompleteOrder)
	})
}

func TestRenumber(t *testing.T) {
	tests := []struct {
		name  string
		items []Elem
		want  map[string]int
	}{
		{
			name:  "already dense yields no changes",
			items: []Elem{{ID: "a", Order: 1}, {ID: "b", Order: 2}},
			want:  map[string]int{"a": 1, "b": 2},
		},
		{
			name:  "gap after delete is compacted",
			items: []Elem{{ID: "a", Order: 1}, {ID: "c", Order: 3}, {ID: "d", Order: 4}},
			want:  map[string]int{"a": 1, "c": 2, "d": 3},
		},
		{
			name:  "duplicate orders break ties by id",
			items: []Elem{{ID: "b", Order: 2}, {ID: "a", Order: 2}, {ID: "c", Order: 5}},
			want:  map[string]int{"a": 1, "b": 2, "c": 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := apply(tt.items, Renumber(tt.items))
			assertDense(t, after)
			assert.Equal(t, tt.want, orders(after))
		})
	}
}
