package parallel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/blockscale/pkg/errors"
	"github.com/YuminosukeSato/blockscale/pkg/log"
)

func TestSubmitReturnsValue(t *testing.T) {
	s := NewLocalScheduler(WithWorkers(2))
	f := Submit(context.Background(), s, "square", func(context.Context) (int, error) {
		return 7 * 7, nil
	})

	v, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 49, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done should be closed after Get returned")
	}
}

func TestWaitAllKeepsOrder(t *testing.T) {
	s := NewLocalScheduler(WithWorkers(3))
	ctx := context.Background()

	futures := make([]*Future[int], 10)
	for i := range futures {
		futures[i] = Submit(ctx, s, "index", func(context.Context) (int, error) {
			// 後ろのタスクほど早く終わる
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return i, nil
		})
	}

	got, err := WaitAll(ctx, futures)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestWaitAllPropagatesFirstFailure(t *testing.T) {
	s := NewLocalScheduler(WithWorkers(4))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("band 2 exploded")
	futures := make([]*Future[int], 4)
	for i := range futures {
		futures[i] = Submit(ctx, s, "band", func(ctx context.Context) (int, error) {
			if i == 2 {
				return 0, boom
			}
			<-ctx.Done()
			return 0, ctx.Err()
		})
	}

	_, err := WaitAll(ctx, futures)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestSubmitRecoversPanic(t *testing.T) {
	s := NewLocalScheduler()
	f := Submit(context.Background(), s, "panicky", func(context.Context) (struct{}, error) {
		panic("index out of range")
	})

	_, err := f.Get(context.Background())
	require.Error(t, err)

	var pe *errors.PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "panicky", pe.Operation)
	assert.Equal(t, "index out of range", pe.PanicValue)
}

func TestSubmitOnCancelledContext(t *testing.T) {
	s := NewLocalScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	f := Submit(ctx, s, "never", func(context.Context) (int, error) {
		ran.Store(true)
		return 1, nil
	})

	_, err := f.Get(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())
}

func TestWorkersBoundConcurrency(t *testing.T) {
	s := NewLocalScheduler(WithWorkers(2))
	ctx := context.Background()

	var running, peak atomic.Int32
	futures := make([]*Future[struct{}], 8)
	for i := range futures {
		futures[i] = Submit(ctx, s, "bounded", func(context.Context) (struct{}, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		})
	}

	_, err := WaitAll(ctx, futures)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 2, s.Workers())
}

func TestSchedulerMetrics(t *testing.T) {
	s := NewLocalScheduler(WithWorkers(2), WithMetrics(prometheus.NewRegistry()))
	m := s.Metrics()
	require.NotNil(t, m)
	ctx := context.Background()

	ok := []*Future[int]{
		Submit(ctx, s, "mean", func(context.Context) (int, error) { return 1, nil }),
		Submit(ctx, s, "mean", func(context.Context) (int, error) { return 2, nil }),
	}
	_, err := WaitAll(ctx, ok)
	require.NoError(t, err)

	bad := Submit(ctx, s, "variance", func(context.Context) (int, error) {
		return 0, errors.New("bad block")
	})
	_, err = bad.Get(ctx)
	require.Error(t, err)

	// 失敗の記録は Future の完了後に行われる
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.TasksFailed.WithLabelValues("variance")) == 1
	}, time.Second, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.TasksSubmitted.WithLabelValues("mean")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TasksSubmitted.WithLabelValues("variance")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.TasksFailed.WithLabelValues("mean")))
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.TasksInFlight) == 0
	}, time.Second, time.Millisecond)
}

func TestSchedulerLogsTasks(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	s := NewLocalScheduler(WithSchedulerLogger(logger))

	f := Submit(context.Background(), s, "mean", func(context.Context) (int, error) { return 0, nil })
	_, err := f.Get(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return logger.ContainsMessage("task finished")
	}, time.Second, time.Millisecond)
	assert.True(t, logger.ContainsField(log.TaskNameKey, "mean"))
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.GreaterOrEqual(t, Default().Workers(), 1)
}

func TestParallelizeCoversRange(t *testing.T) {
	for _, items := range []int{0, 1, 3, 17, 1000} {
		seen := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, n := range seen {
			assert.Equal(t, int32(1), n, "items=%d index=%d", items, i)
		}
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(5, 10, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 5, end)
	})
	assert.Equal(t, 1, calls)
}
