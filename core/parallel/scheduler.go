package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"

	"github.com/YuminosukeSato/blockscale/pkg/log"
)

// Task is one unit of work handed to a Scheduler.
type Task func(ctx context.Context) error

// Scheduler runs tasks asynchronously. Implementations decide where and how
// many tasks run at once; callers observe results through Submit's Future.
type Scheduler interface {
	// Schedule starts task at some point in the future. It must not block
	// on the task itself, and it must eventually invoke task exactly once,
	// passing a context that is done if ctx is.
	Schedule(ctx context.Context, name string, task Task)

	// Workers reports the maximum number of tasks run concurrently.
	Workers() int
}

// LocalScheduler runs tasks on goroutines of the current process, bounded by
// a weighted semaphore.
type LocalScheduler struct {
	workers int
	sem     *semaphore.Weighted
	metrics *Metrics
	logger  log.Logger
}

// Option configures a LocalScheduler.
type Option func(*LocalScheduler)

// WithWorkers bounds the number of concurrently running tasks. Values below
// one are ignored.
func WithWorkers(n int) Option {
	return func(s *LocalScheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMetrics enables Prometheus metrics, registering them with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *LocalScheduler) {
		s.metrics = NewMetrics(reg)
	}
}

// WithSchedulerLogger sets the logger used for per-task debug records.
func WithSchedulerLogger(l log.Logger) Option {
	return func(s *LocalScheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewLocalScheduler returns a scheduler with GOMAXPROCS workers unless
// overridden.
func NewLocalScheduler(opts ...Option) *LocalScheduler {
	s := &LocalScheduler{
		workers: runtime.GOMAXPROCS(0),
		logger:  log.GetLoggerWithName("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sem = semaphore.NewWeighted(int64(s.workers))
	return s
}

var (
	defaultOnce      sync.Once
	defaultScheduler *LocalScheduler
)

// Default returns the process-wide scheduler used when a caller does not
// supply one.
func Default() Scheduler {
	defaultOnce.Do(func() {
		defaultScheduler = NewLocalScheduler()
	})
	return defaultScheduler
}

// Metrics returns the scheduler's metrics, or nil when disabled.
func (s *LocalScheduler) Metrics() *Metrics {
	return s.metrics
}

// Workers implements Scheduler.
func (s *LocalScheduler) Workers() int {
	return s.workers
}

// Schedule implements Scheduler.
func (s *LocalScheduler) Schedule(ctx context.Context, name string, task Task) {
	id := uuid.NewString()
	if s.metrics != nil {
		s.metrics.TasksSubmitted.WithLabelValues(name).Inc()
	}

	go func() {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			// ctx が終了済み: task は ctx を見て即座に完了する
			s.record(name, id, 0, task(ctx))
			return
		}
		defer s.sem.Release(1)

		if s.metrics != nil {
			s.metrics.TasksInFlight.Inc()
			defer s.metrics.TasksInFlight.Dec()
		}

		start := time.Now()
		err := task(ctx)
		s.record(name, id, time.Since(start), err)
	}()
}

func (s *LocalScheduler) record(name, id string, elapsed time.Duration, err error) {
	if s.metrics != nil {
		if elapsed > 0 {
			s.metrics.TaskDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		}
		if err != nil {
			s.metrics.TasksFailed.WithLabelValues(name).Inc()
		}
	}
	if err != nil {
		s.logger.Debug("task failed",
			err,
			log.TaskNameKey, name,
			log.TaskIDKey, id,
		)
		return
	}
	s.logger.Debug("task finished",
		log.TaskNameKey, name,
		log.TaskIDKey, id,
		log.DurationMsKey, elapsed.Milliseconds(),
	)
}
