// Package queue implements the thread-safe queue which feeds planned moves to
// the executor and exposes its progress to observers such as the TUI.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DecisionSuccess is returned by a processFunc when an item was processed.
	DecisionSuccess = 1

	// DecisionSkipped is returned by a processFunc when an item was skipped.
	DecisionSkipped = 0

	// DecisionRequeue is returned by a processFunc when an item needs
	// requeueing.
	DecisionRequeue = -1

	// DecisionAbort is returned by a processFunc when an item failed and no
	// further items may be processed.
	DecisionAbort = -2
)

// GenericQueue is a generic queue that can hold any comparable type of items.
type GenericQueue[T comparable] struct {
	sync.RWMutex
	hasStarted  bool
	hasFinished bool
	startTime   time.Time
	finishTime  time.Time
	head        int
	items       []T
	success     []T
	skipped     []T
	failed      []T
	inProgress  map[T]struct{}
}

// NewGenericQueue returns a pointer to a new [GenericQueue].
func NewGenericQueue[T comparable]() *GenericQueue[T] {
	return &GenericQueue[T]{
		inProgress: make(map[T]struct{}),
	}
}

// HasRemainingItems returns whether a queue has remaining items to process.
func (q *GenericQueue[T]) HasRemainingItems() bool {
	q.RLock()
	defer q.RUnlock()

	return q.head < len(q.items)
}

// GetSuccessful returns a copy of the internal slice holding all successful
// items.
func (q *GenericQueue[T]) GetSuccessful() []T {
	q.RLock()
	defer q.RUnlock()

	result := make([]T, len(q.success))
	copy(result, q.success)

	return result
}

// GetRemaining returns a copy of the items which were not dequeued yet.
func (q *GenericQueue[T]) GetRemaining() []T {
	q.RLock()
	defer q.RUnlock()

	result := make([]T, len(q.items)-q.head)
	copy(result, q.items[q.head:])

	return result
}

// Enqueue adds items to the queue.
func (q *GenericQueue[T]) Enqueue(items ...T) {
	q.Lock()
	defer q.Unlock()

	if q.hasFinished {
		q.finishTime = time.Time{}
		q.hasFinished = false
	}

	for _, item := range items {
		delete(q.inProgress, item)
		q.items = append(q.items, item)
	}
}

// Dequeue returns an item from the queue and advances the queue head.
func (q *GenericQueue[T]) Dequeue() (T, bool) { //nolint:ireturn
	q.Lock()
	defer q.Unlock()

	if q.head >= len(q.items) {
		var zeroVal T

		return zeroVal, false
	}

	if !q.hasStarted {
		q.startTime = time.Now()
		q.hasStarted = true
	}

	item := q.items[q.head]
	q.head++

	return item, true
}

// SetSuccess sets given in-progress queue items as successfully processed.
func (q *GenericQueue[T]) SetSuccess(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.success = append(q.success, item)
	}
	q.checkFinished()
}

// SetSkipped sets given in-progress queue items as skipped.
func (q *GenericQueue[T]) SetSkipped(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.skipped = append(q.skipped, item)
	}
	q.checkFinished()
}

// SetFailed sets given in-progress queue items as failed.
func (q *GenericQueue[T]) SetFailed(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.failed = append(q.failed, item)
	}
	q.checkFinished()
}

// SetProcessing sets given items as in progress (processing).
func (q *GenericQueue[T]) SetProcessing(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		q.inProgress[item] = struct{}{}
	}
}

// checkFinished records the finish time once nothing is left to process. The
// caller must hold the write lock.
func (q *GenericQueue[T]) checkFinished() {
	if q.hasFinished || q.head < len(q.items) || len(q.inProgress) > 0 {
		return
	}

	q.finishTime = time.Now()
	q.hasFinished = true
}

// DequeueAndProcess sequentially dequeues and processes items using the given
// processFunc, which returns its decision for every item: [DecisionSuccess],
// [DecisionSkipped], [DecisionRequeue] or [DecisionAbort].
//
// The context is checked before every item. An error is returned when the
// context was cancelled, or wrapping [ErrProcessingAborted] when processFunc
// aborted. Items not yet dequeued stay in the queue in both cases.
func (q *GenericQueue[T]) DequeueAndProcess(ctx context.Context, processFunc func(T) int) error {
	for {
		if ctx.Err() != nil {
			return fmt.Errorf("(queue-proc) %w", ctx.Err())
		}

		item, ok := q.Dequeue()
		if !ok {
			return nil
		}

		q.SetProcessing(item)

		switch processFunc(item) {
		case DecisionRequeue:
			q.Enqueue(item)

		case DecisionSkipped:
			q.SetSkipped(item)

		case DecisionSuccess:
			q.SetSuccess(item)

		case DecisionAbort:
			q.SetFailed(item)

			return fmt.Errorf("(queue-proc) %w", ErrProcessingAborted)
		}
	}
}
