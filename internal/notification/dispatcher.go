package notification

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/infrastructure/metrics"
)

// Sink delivers a single event to the customer.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// Dispatcher hands events to a Sink from a single background worker.
// Publish never blocks the caller; a full queue drops the event.
type Dispatcher struct {
	sink    Sink
	queue   chan Event
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	closed    bool
	started   bool
	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

func NewDispatcher(sink Sink, queueSize int, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		sink:    sink,
		queue:   make(chan Event, queueSize),
		timeout: timeout,
		logger:  logger.With(zap.String("component", "notification")),
		metrics: m,
		done:    make(chan struct{}),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		d.mu.Lock()
		d.started = true
		d.mu.Unlock()

		base := context.WithoutCancel(ctx)
		go func() {
			defer close(d.done)
			for e := range d.queue {
				d.deliver(base, e)
			}
		}()
		d.logger.Info("notification dispatcher started")
	})
}

// Stop closes the queue and waits until queued events are delivered or ctx
// expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	d.mu.RLock()
	started := d.started
	d.mu.RUnlock()
	if !started {
		return nil
	}

	select {
	case <-d.done:
		d.logger.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("notification dispatcher stopped before queue drained", zap.Int("pending", len(d.queue)))
		return ctx.Err()
	}
}

func (d *Dispatcher) Publish(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(e, "dispatcher stopped")
		return
	}

	select {
	case d.queue <- e:
	default:
		d.drop(e, "queue full")
	}
}

func (d *Dispatcher) drop(e Event, reason string) {
	d.logger.Warn("notification dropped",
		zap.String("eventId", e.ID),
		zap.String("event", e.Type),
		zap.String("reason", reason),
	)
	d.metrics.Notification(e.Type, metrics.OutcomeDropped)
}

func (d *Dispatcher) deliver(base context.Context, e Event) {
	logger := d.logger.With(zap.String("eventId", e.ID), zap.String("event", e.Type))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("notification sink panic",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
			d.metrics.Notification(e.Type, metrics.OutcomeError)
		}
	}()

	ctx, cancel := context.WithTimeout(base, d.timeout)
	defer cancel()

	if err := d.sink.Deliver(ctx, e); err != nil {
		logger.Warn("notification delivery failed", zap.Error(err))
		d.metrics.Notification(e.Type, metrics.OutcomeError)
		return
	}

	logger.Debug("notification delivered", zap.Int64("userId", e.UserID))
	d.metrics.Notification(e.Type, metrics.OutcomeSuccess)
}
