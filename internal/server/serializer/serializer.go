// Package serializer runs store mutations one at a time, in arrival order,
// against a single in-memory committed snapshot, and persists each changed
// snapshot through a storage.Codec before publishing it.
package serializer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/logging"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/dmitrijs2005/fishtank/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrClosed is returned by Perform after Close was called.
var ErrClosed = fmt.Errorf("%w: serializer closed", common.ErrorStorageUnavailable)

// Operation transforms the current snapshot. It must not modify cur. It
// returns cur itself (or nil) when nothing changed, in which case nothing is
// committed.
type Operation func(cur *models.Snapshot) (next *models.Snapshot, result any, err error)

type outcome struct {
	value any
	err   error
}

type request struct {
	ctx    context.Context
	name   string
	op     Operation
	result chan outcome
}

// Serializer owns the committed snapshot. Only its worker goroutine advances
// it.
type Serializer struct {
	store   storage.Codec
	log     logging.Logger
	metrics *metrics
	now     func() time.Time

	current atomic.Pointer[models.Snapshot]

	mu       sync.Mutex
	queue    []*request
	closed   bool
	maxDepth int

	wake chan struct{}
	done chan struct{}
}

type Option func(*Serializer)

// WithMaxQueueDepth makes Perform fail with common.ErrorOverloaded while n
// operations are already waiting. Zero means unbounded.
func WithMaxQueueDepth(n int) Option {
	return func(s *Serializer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithMetrics registers the serializer collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Serializer) {
		s.metrics = newMetrics(reg)
	}
}

// New loads the committed snapshot from store and starts the worker.
func New(ctx context.Context, store storage.Codec, log logging.Logger, opts ...Option) (*Serializer, error) {
	if log == nil {
		log = logging.Nop()
	}
	s := &Serializer{
		store: store,
		log:   log.With("module", "serializer"),
		now:   time.Now,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(nil)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.current.Store(snap)

	s.log.Info(ctx, "snapshot loaded",
		"fish", len(snap.Fish), "users", len(snap.Users),
		"reports", len(snap.Reports), "reset_tokens", len(snap.ResetTokens))

	go s.run()
	return s, nil
}

// Committed returns the last committed snapshot. Callers must treat it as
// read-only.
func (s *Serializer) Committed() *models.Snapshot {
	return s.current.Load()
}

// Perform queues op and waits for its outcome. An operation whose ctx is
// already done when its turn comes is skipped; once started it runs to
// completion and its commit is not cancelled.
func (s *Serializer) Perform(ctx context.Context, name string, op Operation) (any, error) {
	req := &request{ctx: ctx, name: name, op: op, result: make(chan outcome, 1)}
	if err := s.enqueue(req); err != nil {
		s.metrics.observe(name, outcomeRejected)
		return nil, err
	}
	out := <-req.result
	return out.value, out.err
}

func (s *Serializer) enqueue(req *request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.maxDepth > 0 && len(s.queue) >= s.maxDepth {
		return fmt.Errorf("%w: %d operations queued", common.ErrorOverloaded, len(s.queue))
	}
	s.queue = append(s.queue, req)
	s.metrics.depth.Set(float64(len(s.queue)))

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

func (s *Serializer) next() (*request, bool) {
	s.mu.Lock()
	for len(s.queue) == 0 {
		if s.closed {
			s.mu.Unlock()
			return nil, false
		}
		s.mu.Unlock()
		<-s.wake
		s.mu.Lock()
	}
	req := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	s.metrics.depth.Set(float64(len(s.queue)))
	s.mu.Unlock()
	return req, true
}

func (s *Serializer) run() {
	defer close(s.done)
	for {
		req, ok := s.next()
		if !ok {
			return
		}
		req.result <- s.apply(req)
	}
}

func (s *Serializer) apply(req *request) (out outcome) {
	if err := req.ctx.Err(); err != nil {
		s.metrics.observe(req.name, outcomeCanceled)
		return outcome{err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			s.log.Error(req.ctx, "operation panicked", "operation", req.name, "panic", p)
			s.metrics.observe(req.name, outcomeError)
			out = outcome{err: fmt.Errorf("%w: operation %s panicked: %v", common.ErrorInternal, req.name, p)}
		}
	}()

	cur := s.current.Load()
	next, value, err := req.op(cur)
	if err != nil {
		s.log.Debug(req.ctx, "operation failed", "operation", req.name, "error", err)
		s.metrics.observe(req.name, outcomeError)
		return outcome{err: err}
	}
	if next == nil || next == cur {
		s.metrics.observe(req.name, outcomeNoop)
		return outcome{value: value}
	}

	start := s.now()
	if err := s.store.Commit(context.WithoutCancel(req.ctx), next); err != nil {
		s.log.Error(req.ctx, "commit failed", "operation", req.name, "error", err)
		s.metrics.observe(req.name, outcomeCommitError)
		if !errors.Is(err, common.ErrorStorageUnavailable) {
			err = fmt.Errorf("%w: %v", common.ErrorStorageUnavailable, err)
		}
		return outcome{err: err}
	}
	s.metrics.commitSeconds.Observe(s.now().Sub(start).Seconds())

	s.current.Store(next)
	s.metrics.observe(req.name, outcomeCommitted)
	s.log.Debug(req.ctx, "snapshot committed", "operation", req.name)
	return outcome{value: value}
}

// Close stops accepting operations, waits for queued ones to finish, and
// returns. It does not close the codec.
func (s *Serializer) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Mutate is Perform with a typed result.
func Mutate[T any](ctx context.Context, s *Serializer, name string, op func(cur *models.Snapshot) (*models.Snapshot, T, error)) (T, error) {
	v, err := s.Perform(ctx, name, func(cur *models.Snapshot) (*models.Snapshot, any, error) {
		return op(cur)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}

// Read runs read against the committed snapshot without joining the queue.
func Read[T any](s *Serializer, read func(cur *models.Snapshot) (T, error)) (T, error) {
	return read(s.Committed())
}
