package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (m *recordingMailer) Send(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestDispatcher_DeliversEnqueued(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, zerolog.Nop())
	d.Start()

	d.Enqueue(Notification{To: "a@x.com", Subject: "s", Body: "b"})
	d.Enqueue(Notification{To: "b@x.com", Subject: "s", Body: "b"})
	d.Close()

	if mailer.count() != 2 {
		t.Fatalf("delivered %d, want 2", mailer.count())
	}
}

func TestDispatcher_SendFailureIsSwallowed(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("boom")}
	d := NewDispatcher(mailer, zerolog.Nop())
	d.Start()

	// Must not panic, block, or surface anywhere.
	d.Enqueue(Notification{To: "a@x.com", Subject: "s", Body: "b"})
	d.Close()

	if mailer.count() != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry)", mailer.count())
	}
}

// A request that races shutdown may still try to enqueue after Close;
// the message must be dropped, never a send on a closed channel.
func TestDispatcher_EnqueueAfterCloseDropsQuietly(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, zerolog.Nop())
	d.Start()
	d.Close()

	d.Enqueue(Notification{To: "a@x.com", Subject: "s", Body: "b"})

	if mailer.count() != 0 {
		t.Fatalf("delivered %d after close, want 0", mailer.count())
	}

	// Close must also be idempotent.
	d.Close()
}

func TestDispatcher_CloseDrainsPendingQueue(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, zerolog.Nop())

	// Enqueue before the worker starts so the messages sit in the queue,
	// then make sure Close still delivers them.
	d.Enqueue(Notification{To: "a@x.com"})
	d.Enqueue(Notification{To: "b@x.com"})
	d.Start()
	d.Close()

	if mailer.count() != 2 {
		t.Fatalf("drained %d, want 2", mailer.count())
	}
}

func TestDispatcher_EnqueueNeverBlocksWhenStopped(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, zerolog.Nop())
	// Worker intentionally not started; the queue will fill.

	for i := 0; i < defaultQueueSize+10; i++ {
		d.Enqueue(Notification{To: "a@x.com"})
	}
	// Reaching here without blocking is the assertion.
}
