// Package queue implements the outbound delivery queue: a strict-FIFO,
// throttled pipeline drained by exactly one long-lived worker goroutine.
package queue

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VidaNova/AcolheBot/internal/models"
)

const (
	// DefaultSendDelay is the pause between consecutive sends, protecting
	// against provider rate limits.
	DefaultSendDelay = 2 * time.Second
	// DefaultBufferSize is the default capacity of the job buffer.
	DefaultBufferSize = 1024
)

// Sender delivers one message through a provider. Implemented by the Twilio
// and whatsmeow clients and by test mocks.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}

// Opts holds configuration options for the delivery queue.
type Opts struct {
	SendDelay  time.Duration
	BufferSize int
}

// Option defines a configuration option for the delivery queue.
type Option func(*Opts)

// WithSendDelay sets the pause between consecutive sends.
func WithSendDelay(d time.Duration) Option {
	return func(o *Opts) { o.SendDelay = d }
}

// WithBufferSize sets the capacity of the job buffer.
func WithBufferSize(n int) Option {
	return func(o *Opts) { o.BufferSize = n }
}

// DeliveryQueue serializes outbound sends. Jobs are delivered in enqueue
// order by a single worker; a failed send is logged and skipped, never
// retried. Undelivered jobs are lost on process crash.
type DeliveryQueue struct {
	jobs      chan models.OutboundJob
	sender    Sender
	delay     time.Duration
	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	quit      chan struct{}
	done      chan struct{}
}

// NewDeliveryQueue creates a delivery queue draining into the given sender.
func NewDeliveryQueue(sender Sender, opts ...Option) *DeliveryQueue {
	cfg := Opts{SendDelay: DefaultSendDelay, BufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.SendDelay < 0 {
		cfg.SendDelay = DefaultSendDelay
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &DeliveryQueue{
		jobs:   make(chan models.OutboundJob, cfg.BufferSize),
		sender: sender,
		delay:  cfg.SendDelay,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the worker goroutine. Subsequent calls are no-ops, so at
// most one drain loop ever runs per queue instance.
func (q *DeliveryQueue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		slog.Info("DeliveryQueue starting worker", "delay", q.delay, "buffer", cap(q.jobs))
		q.started.Store(true)
		go q.run(ctx)
	})
}

// Enqueue appends a job without blocking the caller. When the buffer is
// full the job is dropped with a warning and ErrQueueFull is returned.
func (q *DeliveryQueue) Enqueue(phone, body string) error {
	select {
	case <-q.quit:
		slog.Warn("DeliveryQueue rejecting job, queue stopped", "phone", phone)
		return models.ErrQueueStopped
	default:
	}

	select {
	case q.jobs <- models.OutboundJob{Phone: phone, Body: body}:
		slog.Debug("DeliveryQueue job enqueued", "phone", phone, "body_length", len(body))
		return nil
	default:
		slog.Warn("DeliveryQueue buffer full, dropping job", "phone", phone)
		return models.ErrQueueFull
	}
}

// Stop signals the worker to drain any buffered jobs and exit, then waits
// for it to finish. Safe to call more than once.
func (q *DeliveryQueue) Stop() {
	q.stopOnce.Do(func() { close(q.quit) })
	if q.started.Load() {
		<-q.done
	}
}

func (q *DeliveryQueue) run(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			slog.Info("DeliveryQueue worker stopping, context cancelled")
			return
		case <-q.quit:
			q.drain(ctx)
			slog.Info("DeliveryQueue worker stopped after drain")
			return
		case job := <-q.jobs:
			q.deliver(ctx, job)
			q.pause(ctx)
		}
	}
}

// drain delivers whatever is already buffered, then returns.
func (q *DeliveryQueue) drain(ctx context.Context) {
	for {
		select {
		case job := <-q.jobs:
			q.deliver(ctx, job)
			q.pause(ctx)
		default:
			return
		}
	}
}

// deliver sends one job. Failures are logged and do not stop the loop.
func (q *DeliveryQueue) deliver(ctx context.Context, job models.OutboundJob) {
	if err := q.sender.Send(ctx, job.Phone, job.Body); err != nil {
		slog.Error("DeliveryQueue send failed", "error", err, "phone", job.Phone)
		return
	}
	slog.Debug("DeliveryQueue job delivered", "phone", job.Phone)
}

func (q *DeliveryQueue) pause(ctx context.Context) {
	if q.delay == 0 {
		return
	}
	timer := time.NewTimer(q.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Len reports how many jobs are currently buffered.
func (q *DeliveryQueue) Len() int {
	return len(q.jobs)
}
