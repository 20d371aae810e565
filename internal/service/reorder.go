package service

import (
	"context"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/ordering"
)

// ReorderResult is the uniform outcome of every reorder entry point. Boundary
// moves (already first/last) come back with Changed=false and an informational
// message; request handlers surface both as success.
type ReorderResult struct {
	Changed bool
	Message string
}

var (
	resultAtTop      = ReorderResult{Changed: false, Message: "already at the top"}
	resultAtBottom   = ReorderResult{Changed: false, Message: "already at the bottom"}
	resultReordered  = ReorderResult{Changed: true, Message: "order updated"}
	resultNoChanges  = ReorderResult{Changed: false, Message: "order unchanged"}
)

func boundaryResult(dir ordering.Direction) ReorderResult {
	if dir == ordering.DirectionUp {
		return resultAtTop
	}
	return resultAtBottom
}

// applyOrderChanges persists a change set with sequential single-record
// writes. There is no multi-row transaction to lean on: when some writes fail
// the collection is left in an intermediate state, and the returned
// PartialWriteError says exactly which records were applied and which were
// not. Writes are never retried here; a retry on a half-applied swap could
// double-swap.
func applyOrderChanges(ctx context.Context, changes []ordering.Change, setOrder func(ctx context.Context, id string, order int) error) error {
	var applied []ordering.Change
	var failed []ordering.FailedChange

	for _, ch := range changes {
		if err := setOrder(ctx, ch.ID, ch.Order); err != nil {
			failed = append(failed, ordering.FailedChange{Change: ch, Err: err})
			continue
		}
		applied = append(applied, ch)
	}

	if len(failed) > 0 {
		return &ordering.PartialWriteError{Applied: applied, Failed: failed}
	}
	return nil
}
