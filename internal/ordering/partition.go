package ordering

import "sort"

// DefaultGroupKey is used when the secondary-classification lookup misses for
// an item, so ungrouped items still land in a movable bucket.
const DefaultGroupKey = "Other"

// Group is one bucket of items sharing a group key, sorted by order ascending.
type Group struct {
	Key   string
	Items []Elem
}

// Partition buckets items by their GroupKey (empty keys fall back to
// DefaultGroupKey). Items within a bucket are sorted by order ascending;
// buckets are sorted by the minimum member order ascending. That bucket
// ordering, not alphabetical order, is what MoveGroup steps over.
func Partition(items []Elem) []Group {
	byKey := make(map[string][]Elem)
	for _, it := range items {
		key := it.GroupKey
		if key == "" {
			key = DefaultGroupKey
		}
		byKey[key] = append(byKey[key], it)
	}

	groups := make([]Group, 0, len(byKey))
	for key, members := range byKey {
		groups = append(groups, Group{Key: key, Items: sortByOrder(members)})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Items[0].Order < groups[j].Items[0].Order
	})
	return groups
}

// MoveGroup computes the changes for shifting a whole group one position up or
// down past its neighbouring group. Both blocks are renumbered sequentially
// from the smaller of the two blocks' minimum orders, so intra-group relative
// order is preserved on both sides. Moving the first group up or the last
// group down is a successful no-op, as is any move when only one group exists.
func MoveGroup(items []Elem, key string, dir Direction) ([]Change, error) {
	groups := Partition(items)

	pos := -1
	for i, g := range groups {
		if g.Key == key {
			pos = i
			break
		}
	}
	if pos == -1 {
		return nil, ErrUnknownGroup
	}

	var adjPos int
	switch dir {
	case DirectionUp:
		adjPos = pos - 1
	case DirectionDown:
		adjPos = pos + 1
	default:
		return nil, ErrInvalidDirection
	}
	if adjPos < 0 || adjPos >= len(groups) {
		return nil, nil // already at the boundary, or single group
	}

	moving := groups[pos].Items
	neighbour := groups[adjPos].Items

	// Moving block goes first for an upward move, second for a downward one.
	combined := make([]Elem, 0, len(moving)+len(neighbour))
	if dir == DirectionUp {
		combined = append(combined, moving...)
		combined = append(combined, neighbour...)
	} else {
		combined = append(combined, neighbour...)
		combined = append(combined, moving...)
	}

	start := combined[0].Order
	for _, it := range combined {
		if it.Order < start {
			start = it.Order
		}
	}

	var changes []Change
	for i, it := range combined {
		if want := start + i; it.Order != want {
			changes = append(changes, Change{ID: it.ID, Order: want})
		}
	}
	return changes, nil
}
