package batch

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/garnet-screening/pkg/errors"
)

func square(_ context.Context, _ int, n int) (int, error) { return n * n, nil }

func values[R any](res *Result[R]) []R {
	out := make([]R, len(res.Items))
	for i, it := range res.Items {
		out[i] = it.Result
	}
	return out
}

func TestMap_OrderPreserved(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}
	jitter := func(ctx context.Context, i int, n int) (int, error) {
		time.Sleep(time.Duration((200-i)%7) * 100 * time.Microsecond)
		return square(ctx, i, n)
	}

	for _, workers := range []int{1, 3, 16} {
		res, err := MapSlice(context.Background(), items, jitter, Options{Workers: workers})
		require.NoError(t, err)
		require.Len(t, res.Items, len(items))
		for i, it := range res.Items {
			assert.Equal(t, i, it.Index)
			assert.Equal(t, i*i, it.Result)
		}
		assert.Equal(t, len(items), res.SuccessCount)
	}
}

func TestMap_WorkerCountInvariance(t *testing.T) {
	items := []int{5, 3, 9, 1, 7, 2}
	one, err := MapSlice(context.Background(), items, square, Options{Workers: 1})
	require.NoError(t, err)
	many, err := MapSlice(context.Background(), items, square, Options{Workers: 8})
	require.NoError(t, err)
	if diff := cmp.Diff(values(one), values(many)); diff != "" {
		t.Errorf("worker count changed results (-1 +8):\n%s", diff)
	}
}

func TestMap_ConcurrencyLimit(t *testing.T) {
	var active, peak int32
	fn := func(_ context.Context, _ int, _ int) (int, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return 0, nil
	}
	_, err := MapSlice(context.Background(), make([]int, 40), fn, Options{Workers: 3})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestMap_FailuresAreIsolated(t *testing.T) {
	fn := func(_ context.Context, i int, n int) (int, error) {
		switch n {
		case 2:
			return 0, stderrors.New("bad item")
		case 4:
			panic("boom")
		}
		return n, nil
	}
	res, err := MapSlice(context.Background(), []int{1, 2, 3, 4, 5}, fn, Options{Workers: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 5)

	assert.Equal(t, 3, res.SuccessCount)
	assert.Equal(t, 2, res.FailureCount)
	assert.Equal(t, ItemStatusFailed, res.Items[1].Status)
	assert.EqualError(t, res.Items[1].Error, "bad item")
	assert.Equal(t, ItemStatusFailed, res.Items[3].Status)
	assert.True(t, errors.IsCode(res.Items[3].Error, errors.ErrCodeCandidateFailed))
	assert.Contains(t, res.Items[3].Error.Error(), "boom")
	assert.Equal(t, 5, res.Items[4].Result)
}

func TestMap_CancellationStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	src := func() Source[int] {
		i := 0
		return func() (int, bool) {
			i++
			if i == 5 {
				cancel()
			}
			return i, i <= 1000
		}
	}()
	fn := func(_ context.Context, _ int, n int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return n, nil
	}

	res, err := Map(ctx, src, fn, Options{Workers: 1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCancelled))
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.Len(t, res.Items, int(atomic.LoadInt32(&calls)))
}

func TestMap_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := MapSlice(ctx, []int{1, 2, 3}, square, Options{Workers: 2})
	require.Error(t, err)
	assert.Empty(t, res.Items)
}

func TestMap_ItemTimeout(t *testing.T) {
	fn := func(ctx context.Context, _ int, n int) (int, error) {
		if n == 1 {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return n, nil
	}
	res, err := MapSlice(context.Background(), []int{0, 1, 2}, fn, Options{Workers: 3, ItemTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, ItemStatusTimeout, res.Items[1].Status)
	assert.Equal(t, ItemStatusSuccess, res.Items[2].Status)
}

func TestMap_EmptySource(t *testing.T) {
	res, err := MapSlice(context.Background(), []int{}, square, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

type countingObserver struct {
	mu       sync.Mutex
	started  int
	finished map[ItemStatus]int
}

func (o *countingObserver) ItemStarted() {
	o.mu.Lock()
	o.started++
	o.mu.Unlock()
}

func (o *countingObserver) ItemFinished(s ItemStatus, _ time.Duration) {
	o.mu.Lock()
	o.finished[s]++
	o.mu.Unlock()
}

func TestMap_Observer(t *testing.T) {
	obs := &countingObserver{finished: map[ItemStatus]int{}}
	fn := func(_ context.Context, _ int, n int) (int, error) {
		if n < 0 {
			panic("negative")
		}
		return n, nil
	}
	_, err := MapSlice(context.Background(), []int{1, -1, 2}, fn, Options{Workers: 2, Observer: obs})
	require.NoError(t, err)
	assert.Equal(t, 3, obs.started)
	assert.Equal(t, 2, obs.finished[ItemStatusSuccess])
	assert.Equal(t, 1, obs.finished[ItemStatusFailed])
}

func TestItemStatus_String(t *testing.T) {
	assert.Equal(t, "SUCCESS", ItemStatusSuccess.String())
	assert.Equal(t, "CANCELLED", ItemStatusCancelled.String())
	assert.Equal(t, "UNKNOWN(9)", ItemStatus(9).String())
}
