package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

// Future is the pending result of a submitted task.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(v T, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Done is closed once the task has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the task finishes or ctx is done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit schedules fn on s and returns its Future. A panic inside fn becomes
// a *errors.PanicError on the Future; it never escapes the worker goroutine.
// If ctx is already done when the task gets a worker, fn is not run.
func Submit[T any](ctx context.Context, s Scheduler, name string, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	if err := ctx.Err(); err != nil {
		var zero T
		f.complete(zero, err)
		return f
	}
	s.Schedule(ctx, name, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			var zero T
			f.complete(zero, err)
			return err
		}
		v, err := errors.SafeCall(name, func() (T, error) {
			return fn(ctx)
		})
		f.complete(v, err)
		return err
	})
	return f
}

// WaitAll waits for every future and returns their values in order. The first
// failure is returned as soon as it is observed; the remaining futures are
// not awaited.
func WaitAll[T any](ctx context.Context, futures []*Future[T]) ([]T, error) {
	out := make([]T, len(futures))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			v, err := f.Get(gctx)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
