// Package ordering implements the order math for coach-owned ordered
// collections: workout template items, nutrition program meals and meal items.
//
// Every entry point is a pure computation over a snapshot of the items in one
// parent scope. It returns the set of order changes to persist; callers apply
// them with sequential single-record updates and report partial failures via
// PartialWriteError. Nothing here touches storage.
package ordering

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Direction of a single-item or whole-group move.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection validates a direction argument from form input.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case DirectionUp:
		return DirectionUp, nil
	case DirectionDown:
		return DirectionDown, nil
	default:
		return "", fmt.Errorf("%w: direction must be %q or %q", ErrInvalidDirection, DirectionUp, DirectionDown)
	}
}

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrUnknownItem      = errors.New("item not found in scope")
	ErrUnknownGroup     = errors.New("group not found in scope")
	ErrIncompleteOrder  = errors.New("submitted order does not cover the scope")
)

// Elem is the engine's view of one item: identity, current order and the
// derived group key (empty when grouping is not in play).
type Elem struct {
	ID       string
	Order    int
	GroupKey string
}

// Change is one order assignment to persist.
type Change struct {
	ID    string
	Order int
}

// PartialWriteError reports a multi-record operation that failed partway.
// Applied lists the changes that were persisted before (and after, writes are
// best-effort sequential) the failure; Failed lists the ones that were not.
// Callers must not retry: re-applying a half-done swap can double-swap.
type PartialWriteError struct {
	Applied []Change
	Failed  []FailedChange
}

// FailedChange pairs a change with the store error that rejected it.
type FailedChange struct {
	Change Change
	Err    error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %d of %d order updates failed",
		len(e.Failed), len(e.Applied)+len(e.Failed))
}

// NextOrder returns the append position for a scope: max existing order plus
// one, or 1 for an empty scope. Historical gaps are tolerated; the result
// never collides with an existing value.
func NextOrder(items []Elem) int {
	max := 0
	for _, it := range items {
		if it.Order > max {
			max = it.Order
		}
	}
	return max + 1
}

// sortByOrder orders elems by order ascending, breaking duplicate-order ties
// by lowest ID so recovery from a prior inconsistency is deterministic.
func sortByOrder(items []Elem) []Elem {
	out := make([]Elem, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MoveItem computes the swap for moving one item a single step up or down.
// A move at the boundary (first item up, last item down) is a successful
// no-op and returns no changes. The non-moving neighbour's change is listed
// first, matching the write sequence callers are expected to use.
func MoveItem(items []Elem, id string, dir Direction) ([]Change, error) {
	var cur *Elem
	for i := range items {
		if items[i].ID == id {
			cur = &items[i]
			break
		}
	}
	if cur == nil {
		return nil, ErrUnknownItem
	}

	adj := adjacent(items, *cur, dir)
	if adj == nil {
		return nil, nil // already at the boundary
	}

	return []Change{
		{ID: adj.ID, Order: cur.Order},
		{ID: cur.ID, Order: adj.Order},
	}, nil
}

// adjacent finds the neighbour of cur in the given direction: the greatest
// order below it for up, the least order above it for down. Ties on order
// (possible after a historical inconsistency) resolve to the lowest ID.
func adjacent(items []Elem, cur Elem, dir Direction) *Elem {
	var best *Elem
	for i := range items {
		it := &items[i]
		if it.ID == cur.ID {
			continue
		}
		switch dir {
		case DirectionUp:
			if it.Order >= cur.Order {
				continue
			}
			if best == nil || it.Order > best.Order || (it.Order == best.Order && it.ID < best.ID) {
				best = it
			}
		case DirectionDown:
			if it.Order <= cur.Order {
				continue
			}
			if best == nil || it.Order < best.Order || (it.Order == best.Order && it.ID < best.ID) {
				best = it
			}
		}
	}
	return best
}

// CommitOrder applies an explicit full ordering (drag-drop commit). Every item
// in the scope must appear exactly once in orderedIDs; omissions, duplicates
// and unknown ids are rejected, never auto-healed. Orders are assigned 1..N in
// list position, so committing the same list twice is idempotent.
func CommitOrder(items []Elem, orderedIDs []string) ([]Change, error) {
	if len(orderedIDs) != len(items) {
		return nil, fmt.Errorf("%w: got %d ids for %d items", ErrIncompleteOrder, len(orderedIDs), len(items))
	}
	inScope := make(map[string]bool, len(items))
	for _, it := range items {
		inScope[it.ID] = true
	}
	seen := make(map[string]bool, len(orderedIDs))
	changes := make([]Change, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		if !inScope[id] {
			return nil, fmt.Errorf("%w: id %s is not in scope", ErrIncompleteOrder, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: id %s listed twice", ErrIncompleteOrder, id)
		}
		seen[id] = true
		changes = append(changes, Change{ID: id, Order: i + 1})
	}
	return changes, nil
}

// Renumber compacts a scope to dense orders 1..N, preserving the current
// sequence (ties by lowest ID). Used after deletes; returns only the changes
// for items whose order actually moves.
func Renumber(items []Elem) []Change {
	sorted := sortByOrder(items)
	var changes []Change
	for i, it := range sorted {
		if want := i + 1; it.Order != want {
			changes = append(changes, Change{ID: it.ID, Order: want})
		}
	}
	return changes
}
