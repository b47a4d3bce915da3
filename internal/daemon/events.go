package daemon

import (
	"sync"

	"convertsave/internal/provision"
)

// eventBufferCap bounds memory for clients that poll slowly. Oldest events
// are dropped first; sequence numbers stay monotonic so a client can detect
// the gap.
const eventBufferCap = 256

// SeqEvent is a progress event with its position in the delivery order.
type SeqEvent struct {
	Seq     int64  `json:"seq"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// EventBuffer collects provisioner progress events for polling IPC clients.
// Events for a single install are delivered in strict enqueue order.
type EventBuffer struct {
	mu     sync.Mutex
	next   int64
	events []SeqEvent
}

// NewEventBuffer constructs an empty buffer.
func NewEventBuffer() *EventBuffer {
	return &EventBuffer{next: 1}
}

// Progress implements provision.Events.
func (b *EventBuffer) Progress(ev provision.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, SeqEvent{
		Seq:     b.next,
		Status:  string(ev.Status),
		Message: ev.Message,
	})
	b.next++
	if len(b.events) > eventBufferCap {
		b.events = b.events[len(b.events)-eventBufferCap:]
	}
}

// Since returns events with sequence numbers greater than after, plus the
// cursor to use on the next poll.
func (b *EventBuffer) Since(after int64) ([]SeqEvent, int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []SeqEvent
	for _, ev := range b.events {
		if ev.Seq > after {
			out = append(out, ev)
		}
	}
	return out, b.next - 1
}
