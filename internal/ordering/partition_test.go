package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	items := []Elem{
		{ID: "d", Order: 4, GroupKey: "Cardio"},
		{ID: "b", Order: 2, GroupKey: "Strength"},
		{ID: "a", Order: 1, GroupKey: "Cardio"},
		{ID: "c", Order: 3, GroupKey: "Strength"},
		{ID: "e", Order: 5},
	}

	groups := Partition(items)
	require.Len(t, groups, 3)

	// Buckets ordered by min member order, not alphabetically.
	assert.Equal(t, "Cardio", groups[0].Key)
	assert.Equal(t, "Strength", groups[1].Key)
	assert.Equal(t, DefaultGroupKey, groups[2].Key)

	// Members sorted by order inside each bucket.
	assert.Equal(t, []string{"a", "d"}, []string{groups[0].Items[0].ID, groups[0].Items[1].ID})
	assert.Equal(t, []string{"b", "c"}, []string{groups[1].Items[0].ID, groups[1].Items[1].ID})
}

func TestMoveGroup(t *testing.T) {
	// The scenario from the drag-handle UI: Cardio at 1, Strength at 2-3.
	scope := []Elem{
		{ID: "a", Order: 1, GroupKey: "Cardio"},
		{ID: "b", Order: 2, GroupKey: "Strength"},
		{ID: "c", Order: 3, GroupKey: "Strength"},
	}

	t.Run("strength block moves ahead of cardio", func(t *testing.T) {
		changes, err := MoveGroup(scope, "Strength", DirectionUp)
		require.NoError(t, err)
		after := apply(scope, changes)
		assertDense(t, after)
		assert.Equal(t, map[string]int{"b": 1, "c": 2, "a": 3}, orders(after))
	})

	t.Run("intra-group relative order is preserved", func(t *testing.T) {
		changes, err := MoveGroup(scope, "Strength", DirectionUp)
		require.NoError(t, err)
		after := orders(apply(scope, changes))
		assert.Less(t, after["b"], after["c"])
	})

	t.Run("first group up is a no-op", func(t *testing.T) {
		changes, err := MoveGroup(scope, "Cardio", DirectionUp)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("last group down is a no-op", func(t *testing.T) {
		changes, err := MoveGroup(scope, "Strength", DirectionDown)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("single group has no neighbour in either direction", func(t *testing.T) {
		solo := []Elem{
			{ID: "a", Order: 1, GroupKey: "Cardio"},
			{ID: "b", Order: 2, GroupKey: "Cardio"},
		}
		for _, dir := range []Direction{DirectionUp, DirectionDown} {
			changes, err := MoveGroup(solo, "Cardio", dir)
			require.NoError(t, err)
			assert.Empty(t, changes)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := MoveGroup(scope, "Yoga", DirectionUp)
		assert.ErrorIs(t, err, ErrUnknownGroup)
	})

	t.Run("block renumbering starts at the combined minimum", func(t *testing.T) {
		// Three groups; moving the third past the second must not disturb the first.
		wide := []Elem{
			{ID: "a", Order: 1, GroupKey: "Warmup"},
			{ID: "b", Order: 2, GroupKey: "Strength"},
			{ID: "c", Order: 3, GroupKey: "Strength"},
			{ID: "d", Order: 4, GroupKey: "Cooldown"},
		}
		changes, err := MoveGroup(wide, "Cooldown", DirectionUp)
		require.NoError(t, err)
		after := apply(wide, changes)
		assertDense(t, after)
		assert.Equal(t, map[string]int{"a": 1, "d": 2, "b": 3, "c": 4}, orders(after))
	})

	t.Run("down move mirrors up", func(t *testing.T) {
		changes, err := MoveGroup(scope, "Cardio", DirectionDown)
		require.NoError(t, err)
		after := apply(scope, changes)
		assertDense(t, after)
		assert.Equal(t, map[string]int{"b": 1, "c": 2, "a": 3}, orders(after))
	})
}
