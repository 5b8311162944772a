package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bikeshop/internal/metrics"
)

const (
	defaultQueueSize   = 64
	defaultSendTimeout = 5 * time.Second
)

// Dispatcher delivers notifications off the request path. Enqueue never
// blocks and never fails: when the queue is full, or the dispatcher has
// been closed, the message is dropped and logged. Each message gets one
// attempt with a bounded timeout and is abandoned on failure; there is no
// retry queue.
type Dispatcher struct {
	mailer  Mailer
	log     zerolog.Logger
	timeout time.Duration

	queue chan Notification
	done  chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(mailer Mailer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:  mailer,
		log:     log,
		timeout: defaultSendTimeout,
		queue:   make(chan Notification, defaultQueueSize),
		done:    make(chan struct{}),
	}
}

// Start launches the delivery goroutine.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case n := <-d.queue:
				d.deliver(n)
			case <-d.done:
				// Drain whatever made it into the queue before Close.
				for {
					select {
					case n := <-d.queue:
						d.deliver(n)
					default:
						return
					}
				}
			}
		}
	}()
}

// Enqueue schedules a notification for delivery. Failure to enqueue or
// deliver is never surfaced to the caller. Safe to call after Close: the
// message is dropped, not panicked on.
func (d *Dispatcher) Enqueue(n Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		metrics.IncNotification(metrics.OutcomeDropped)
		d.log.Error().Str("to", n.To).Msg("dispatcher closed, dropping notification")
		return
	}
	select {
	case d.queue <- n:
	default:
		metrics.IncNotification(metrics.OutcomeDropped)
		d.log.Error().Str("to", n.To).Msg("notification queue full, dropping")
	}
}

// Close stops accepting work and drains the queue. Idempotent. The queue
// channel itself is never closed, so a straggler request that races
// shutdown drops its notification instead of panicking.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.mailer.Send(ctx, n); err != nil {
		metrics.IncNotification(metrics.OutcomeFailed)
		d.log.Error().Err(err).Str("to", n.To).Str("subject", n.Subject).Msg("notification send failed")
		return
	}
	metrics.IncNotification(metrics.OutcomeSent)
	d.log.Info().Str("to", n.To).Str("subject", n.Subject).Msg("notification sent")
}
