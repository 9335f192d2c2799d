// Package batch provides an order-preserving parallel map over a lazy source.
// A fixed-size worker pool (errgroup with a limit) pulls items one at a time,
// runs a per-item function, recovers panics into per-item failures and
// returns results sorted by input position.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/garnet-screening/pkg/errors"
)

// ItemStatus is the outcome of one item.
type ItemStatus int

const (
	ItemStatusSuccess   ItemStatus = iota // completed
	ItemStatusFailed                      // returned an error or panicked
	ItemStatusTimeout                     // exceeded ItemTimeout
	ItemStatusCancelled                   // parent context cancelled mid-item
)

// String returns the human-readable representation of an ItemStatus.
func (s ItemStatus) String() string {
	switch s {
	case ItemStatusSuccess:
		return "SUCCESS"
	case ItemStatusFailed:
		return "FAILED"
	case ItemStatusTimeout:
		return "TIMEOUT"
	case ItemStatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Source yields items until ok is false.  It is only ever called from the
// dispatching goroutine.
type Source[T any] func() (item T, ok bool)

// FromSlice adapts a slice to a Source.
func FromSlice[T any](items []T) Source[T] {
	i := 0
	return func() (T, bool) {
		if i >= len(items) {
			var zero T
			return zero, false
		}
		item := items[i]
		i++
		return item, true
	}
}

// ProcessFunc handles one item.  index is the item's position in the source.
type ProcessFunc[T, R any] func(ctx context.Context, index int, item T) (R, error)

// ItemResult holds the outcome of a single item.
type ItemResult[R any] struct {
	Index    int           `json:"index"`
	Result   R             `json:"result"`
	Error    error         `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	Status   ItemStatus    `json:"status"`
}

// Result aggregates a whole run.
type Result[R any] struct {
	Items        []*ItemResult[R] `json:"items"`
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	Duration     time.Duration    `json:"duration"`
}

// Observer receives worker lifecycle callbacks, e.g. to drive gauges.
// Implementations must be safe for concurrent use.
type Observer interface {
	ItemStarted()
	ItemFinished(status ItemStatus, elapsed time.Duration)
}

// Options configures Map.
type Options struct {
	// Workers bounds concurrency; <= 0 means runtime.NumCPU().
	Workers int
	// ItemTimeout bounds each item; zero disables it.
	ItemTimeout time.Duration
	Observer    Observer
}

// Map runs fn over every item of src with at most opts.Workers concurrent
// calls.  Results are sorted by source index regardless of completion order.
// Cancellation is checked before each item is dispatched: when ctx is done no
// further items are pulled, in-flight items finish, and Map returns the
// partial result together with an ErrCodeCancelled error.
func Map[T, R any](ctx context.Context, src Source[T], fn ProcessFunc[T, R], opts Options) (*Result[R], error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu      sync.Mutex
		results []*ItemResult[R]
		stopErr error
	)

	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}
		item, ok := src()
		if !ok {
			break
		}
		index := index
		g.Go(func() error {
			r := runOne(gctx, index, item, fn, opts)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	out := &Result[R]{Items: results, Duration: time.Since(start)}
	for _, r := range results {
		if r.Status == ItemStatusSuccess {
			out.SuccessCount++
		} else {
			out.FailureCount++
		}
	}
	if stopErr == nil {
		stopErr = ctx.Err()
	}
	if stopErr != nil {
		return out, errors.Cancelled(stopErr)
	}
	return out, nil
}

// MapSlice is Map over a slice.
func MapSlice[T, R any](ctx context.Context, items []T, fn ProcessFunc[T, R], opts Options) (*Result[R], error) {
	return Map(ctx, FromSlice(items), fn, opts)
}

func runOne[T, R any](ctx context.Context, index int, item T, fn ProcessFunc[T, R], opts Options) (res *ItemResult[R]) {
	if opts.Observer != nil {
		opts.Observer.ItemStarted()
	}
	start := time.Now()
	res = &ItemResult[R]{Index: index}

	itemCtx := ctx
	if opts.ItemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, opts.ItemTimeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			res.Error = errors.Newf(errors.ErrCodeCandidateFailed, "panic in item %d: %v", index, p)
			res.Status = ItemStatusFailed
		}
		res.Duration = time.Since(start)
		if opts.Observer != nil {
			opts.Observer.ItemFinished(res.Status, res.Duration)
		}
	}()

	r, err := fn(itemCtx, index, item)
	res.Result = r
	res.Error = err
	switch {
	case err == nil:
		res.Status = ItemStatusSuccess
	case errors.Is(err, context.DeadlineExceeded) && itemCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
		res.Status = ItemStatusTimeout
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		res.Status = ItemStatusCancelled
	default:
		res.Status = ItemStatusFailed
	}
	return res
}

//Personal.AI order the ending
