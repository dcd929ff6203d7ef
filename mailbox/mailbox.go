// Package mailbox bridges the synchronous HTTP handlers to the broker's
// in-process dispatch: listener callbacks deliver replies into bounded
// per-sender FIFO queues, and the HTTP layer drains them when it needs a
// response. The HTTP layer owns draining; the broker side only pushes.
package mailbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/courier/messaging"
	"github.com/fogfish/opts"
)

// DefaultCapacity bounds each sender's queue unless WithCapacity overrides it.
const DefaultCapacity = 64

// Options configures a mailbox.
type Options struct {
	Capacity int
}

// WithCapacity sets the per-sender queue bound.
var WithCapacity = opts.ForName[Options, int]("Capacity")

// FullError reports a push against a sender queue that is at capacity.
type FullError struct {
	Sender   string
	Capacity int
}

func (e *FullError) Error() string {
	return fmt.Sprintf("mailbox for %q is full (capacity %d)", e.Sender, e.Capacity)
}

// Mailbox holds one bounded FIFO queue per sender name.
type Mailbox struct {
	capacity int
	queues   *haxmap.Map[string, *queue]
}

type queue struct {
	mu    sync.Mutex
	items []messaging.Message
}

// New creates a mailbox with the default per-sender capacity, adjustable via
// options.
func New(options ...opts.Option[Options]) (*Mailbox, error) {
	mo := Options{Capacity: DefaultCapacity}
	if err := opts.Apply(&mo, options); err != nil {
		return nil, err
	}
	if mo.Capacity <= 0 {
		return nil, fmt.Errorf("mailbox capacity must be positive, got %d", mo.Capacity)
	}
	return &Mailbox{
		capacity: mo.Capacity,
		queues:   haxmap.New[string, *queue](),
	}, nil
}

func (m *Mailbox) queueFor(sender string) *queue {
	q, _ := m.queues.GetOrCompute(sender, func() *queue { return &queue{} })
	return q
}

// Push appends a message to the sender's queue, failing with a FullError
// when the queue is at capacity.
func (m *Mailbox) Push(sender string, msg messaging.Message) error {
	q := m.queueFor(sender)
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= m.capacity {
		return &FullError{Sender: sender, Capacity: m.capacity}
	}
	q.items = append(q.items, msg)
	return nil
}

// Pop removes and returns the oldest message in the sender's queue.
func (m *Mailbox) Pop(sender string) (messaging.Message, bool) {
	q := m.queueFor(sender)
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return messaging.Message{}, false
	}
	msg := q.items[0]
	q.items = q.items[1:]
	return msg, true
}

// Drain removes and returns every queued message for the sender, oldest
// first, leaving the queue empty.
func (m *Mailbox) Drain(sender string) []messaging.Message {
	q := m.queueFor(sender)
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.items
	q.items = nil
	return drained
}

// Len reports how many messages are queued for the sender.
func (m *Mailbox) Len(sender string) int {
	q := m.queueFor(sender)
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Deliver is a broker listener that files the message under its sender's
// name. Register it with a server-message filter to capture agent and
// factory replies for the HTTP layer.
func (m *Mailbox) Deliver(_ context.Context, msg messaging.Message) error {
	return m.Push(msg.Metadata().Sender().Name, msg)
}
