// Package batch queues conversion inputs and runs them with bounded
// concurrency. Each input is converted on its own; one failure does not
// stop the others.
package batch

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// Queue is a FIFO of inputs with deduplication.
type Queue struct {
	items []string
	seen  map[string]bool
	key   func(string) string
}

// NewQueue creates an empty Queue. key maps an input to the identity used
// for deduplication; nil means the input itself.
func NewQueue(key func(string) string) *Queue {
	if key == nil {
		key = func(s string) string { return s }
	}
	return &Queue{seen: make(map[string]bool), key: key}
}

// Add enqueues item unless an input with the same key was added before.
func (q *Queue) Add(item string) bool {
	k := q.key(item)
	if q.seen[k] {
		return false
	}
	q.seen[k] = true
	q.items = append(q.items, item)
	return true
}

// Len returns the number of queued inputs.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns the queued inputs in insertion order.
func (q *Queue) All() []string {
	return q.items
}

// Outcome is the result of processing one input.
type Outcome[T any] struct {
	Item  string
	Value T
	Err   error
}

// Run calls fn for every queued input with at most workers calls in flight
// and returns the outcomes in queue order. Inputs not yet started when ctx
// is done get ctx.Err().
func Run[T any](ctx context.Context, q *Queue, workers int, fn func(context.Context, string) (T, error)) []Outcome[T] {
	out := make([]Outcome[T], len(q.items))
	p := pool.New().WithMaxGoroutines(max(workers, 1))
	for i, item := range q.items {
		p.Go(func() {
			out[i].Item = item
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return
			}
			out[i].Value, out[i].Err = fn(ctx, item)
		})
	}
	p.Wait()
	return out
}
