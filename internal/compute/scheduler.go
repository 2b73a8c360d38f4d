// Package compute offloads scene computation to a background worker so
// large event collections never block the interactive thread. Delivery
// is last-write-wins: when requests pile up faster than they compute,
// only the newest view state is honored and the rest are discarded.
package compute

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"

	"github.com/lifeweave/lifeweave/internal/channel"
	"github.com/lifeweave/lifeweave/internal/memo"
	"github.com/lifeweave/lifeweave/internal/queue"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// Logger is the minimal logging surface the scheduler needs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures a Scheduler.
type Option func(*config)

type config struct {
	resultBuffer int
	cache        *memo.Cache
	logger       Logger
}

// Buffered sets the result channel's buffer size.
func Buffered(size int) Option {
	return func(c *config) {
		c.resultBuffer = size
	}
}

// Memoized attaches a scene cache consulted before computing.
func Memoized(cache *memo.Cache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// Logged attaches a logger for per-request debug output.
func Logged(l Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Scheduler runs scene computation on one background goroutine.
type Scheduler struct {
	queue   *queue.Queue[Request]
	results channel.Channel[core.Scene]
	notify  chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup

	latest atomic.Uint64 // newest submitted revision

	cache  *memo.Cache
	logger Logger

	// OTel metrics.
	queueDepth metric.Int64ObservableGauge
	computed   metric.Int64Counter
	discarded  metric.Int64Counter
}

// NewScheduler creates and starts a scheduler. Uses the global OTel
// meter for metrics (no-op when not configured).
func NewScheduler(opts ...Option) (*Scheduler, error) {
	cfg := &config{resultBuffer: 4}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Scheduler{
		queue:   queue.New[Request](),
		results: channel.New[core.Scene](cfg.resultBuffer),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		cache:   cfg.cache,
		logger:  cfg.logger,
	}

	m := meter()
	var err error

	s.queueDepth, err = m.Int64ObservableGauge(
		"compute.queue.depth",
		metric.WithDescription("Pending scene requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue depth gauge: %w", err)
	}
	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(s.queueDepth, int64(s.queue.Len()))
			return nil
		},
		s.queueDepth,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue depth callback: %w", err)
	}

	s.computed, err = m.Int64Counter(
		"compute.scenes.computed",
		metric.WithDescription("Total scenes computed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating computed counter: %w", err)
	}

	s.discarded, err = m.Int64Counter(
		"compute.requests.discarded",
		metric.WithDescription("Requests superseded before computing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating discarded counter: %w", err)
	}

	s.wg.Add(1)
	go s.run()
	return s, nil
}

// Submit enqueues a view-state snapshot. Returns false after Stop.
func (s *Scheduler) Submit(req Request) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	// Track the newest revision so the worker can drop results that
	// were superseded while computing.
	for {
		cur := s.latest.Load()
		if req.Revision <= cur {
			break
		}
		if s.latest.CompareAndSwap(cur, req.Revision) {
			break
		}
	}

	s.queue.Push(req)
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return true
}

// QueueDepth returns the number of pending requests.
func (s *Scheduler) QueueDepth() int {
	return s.queue.Len()
}

// Results delivers computed scenes, newest-wins. The channel closes
// after Stop.
func (s *Scheduler) Results() <-chan core.Scene {
	return s.results.Receive()
}

// Stop shuts the worker down and closes the results channel. Pending
// requests are dropped.
func (s *Scheduler) Stop() {
	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}
	s.wg.Wait()
	s.results.Close()
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
		}

		pending := s.queue.GetAndEmpty()
		if len(pending) == 0 {
			continue
		}

		// Last write wins: compute only the newest snapshot.
		req := pending[len(pending)-1]
		if n := len(pending) - 1; n > 0 {
			s.discarded.Add(ctx, int64(n))
			if s.logger != nil {
				s.logger.Debug("superseded requests discarded", "count", n, "revision", req.Revision)
			}
		}

		scene, err := s.compute(req)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("scene computation failed", "revision", req.Revision, "error", err)
			}
			continue
		}

		// A newer submission may have arrived mid-computation; the
		// stale result is discarded, the newer request recomputes.
		if s.latest.Load() > req.Revision {
			s.discarded.Add(ctx, 1)
			continue
		}

		if !s.results.TrySend(scene) {
			// Consumer is behind; it will get a newer scene anyway.
			s.discarded.Add(ctx, 1)
			if s.logger != nil {
				s.logger.Debug("result channel full, scene dropped", "revision", req.Revision)
			}
		}
	}
}

func (s *Scheduler) compute(req Request) (core.Scene, error) {
	if s.cache != nil {
		if scene, ok := s.cache.Get(req.MemoKey()); ok {
			scene.Revision = req.Revision
			return scene, nil
		}
	}

	scene, err := BuildScene(req)
	if err != nil {
		return core.Scene{}, err
	}
	s.computed.Add(context.Background(), 1)

	if s.cache != nil {
		s.cache.Put(req.MemoKey(), scene)
	}
	return scene, nil
}
