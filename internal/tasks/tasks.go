// Package tasks runs named units of work on a bounded worker pool.
// Submission applies backpressure instead of spawning unbounded
// goroutines, and every failure stays visible at the join points.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultWorkers    = 8
	DefaultQueueDepth = 64
)

var (
	ErrNotStarted     = errors.New("pool not started")
	ErrAlreadyStarted = errors.New("pool already started")
	ErrPoolClosed     = errors.New("pool closed")
)

// Func is one unit of work. It must honor ctx.
type Func func(ctx context.Context) error

// Task is the handle for one submitted unit.
type Task struct {
	id        string
	name      string
	createdAt time.Time
	done      chan struct{}
	err       error
}

func newTask(name string) *Task {
	return &Task{
		id:        uuid.NewString(),
		name:      name,
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}
}

func (t *Task) ID() string   { return t.id }
func (t *Task) Name() string { return t.name }

// Done is closed when the task has finished, whatever the outcome.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is canceled.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Go runs fn in its own goroutine, outside any pool, and returns its
// handle. Used for long-lived units that themselves submit pool work,
// so they can never starve the pool they feed.
func Go(ctx context.Context, name string, fn Func) *Task {
	t := newTask(name)
	go func() {
		t.finish(safeRun(ctx, fn))
	}()
	return t
}

type item struct {
	task *Task
	fn   Func
}

type Options struct {
	Workers    int
	QueueDepth int
}

func (o Options) normalized() Options {
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	if o.QueueDepth < 1 {
		o.QueueDepth = DefaultQueueDepth
	}
	return o
}

// Pool is a fixed set of workers fed from a bounded queue.
type Pool struct {
	opts  Options
	queue chan item

	ctx     context.Context
	started atomic.Bool
	closed  atomic.Bool

	workers sync.WaitGroup // worker goroutines
	pending sync.WaitGroup // submitted but unfinished tasks

	mu sync.RWMutex // guards queue close against in-flight submits

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64

	errOnce  sync.Once
	firstErr error
}

func NewPool(opts Options) *Pool {
	opts = opts.normalized()
	return &Pool{
		opts:  opts,
		queue: make(chan item, opts.QueueDepth),
	}
}

// Start launches the workers. The pool runs until Stop; ctx cancels
// all queued and in-flight work.
func (p *Pool) Start(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	p.ctx = ctx

	for i := 0; i < p.opts.Workers; i++ {
		p.workers.Add(1)
		go p.worker()
	}
	return nil
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for it := range p.queue {
		// Queued work is abandoned, not run, once the pool context dies.
		if err := p.ctx.Err(); err != nil {
			p.settle(it.task, err)
			continue
		}
		p.settle(it.task, safeRun(p.ctx, it.fn))
	}
}

func (p *Pool) settle(t *Task, err error) {
	p.completed.Add(1)
	if err != nil {
		p.failed.Add(1)
		p.errOnce.Do(func() { p.firstErr = err })
	}
	t.finish(err)
	p.pending.Done()
}

// Submit queues fn and returns its handle. It blocks while the queue
// is full; that backpressure is the point of the bounded pool.
func (p *Pool) Submit(name string, fn Func) (*Task, error) {
	if !p.started.Load() {
		return nil, ErrNotStarted
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	t := newTask(name)
	p.pending.Add(1)
	select {
	case p.queue <- item{task: t, fn: fn}:
		p.submitted.Add(1)
		return t, nil
	case <-p.ctx.Done():
		p.pending.Done()
		return nil, p.ctx.Err()
	}
}

// Summary is the outcome of everything submitted so far.
type Summary struct {
	Submitted  uint64
	Completed  uint64
	Failed     uint64
	FirstError error
}

// Drain waits until every task submitted so far has finished and
// reports the aggregate. It does not close the pool; more work may be
// submitted afterwards. The error return is only the wait itself
// being canceled; task failures live in the Summary.
func (p *Pool) Drain(ctx context.Context) (*Summary, error) {
	if !p.started.Load() {
		return nil, ErrNotStarted
	}

	waited := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Summary{
		Submitted:  p.submitted.Load(),
		Completed:  p.completed.Load(),
		Failed:     p.failed.Load(),
		FirstError: p.firstErr,
	}, nil
}

// Stop closes the queue and waits for the workers to exit. Queued
// tasks still run (or settle as canceled when the context is dead).
func (p *Pool) Stop() error {
	if !p.started.Load() {
		return ErrNotStarted
	}
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.mu.Lock()
	close(p.queue)
	p.mu.Unlock()

	p.workers.Wait()
	return nil
}

func safeRun(ctx context.Context, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return fn(ctx)
}
