package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrClosed is returned by Next once the bus is closed and drained.
var ErrClosed = errors.New("event bus closed")

// Envelope wraps a published event.
type Envelope struct {
	ID    string
	At    time.Time
	Event Event
}

// Bus is an unbounded FIFO of events. Publish never blocks, so state
// transitions cannot stall on a slow reader.
type Bus struct {
	mu     sync.Mutex
	queue  []Envelope
	notify chan struct{}
	closed bool
	now    func() time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		notify: make(chan struct{}, 1),
		now:    time.Now,
	}
}

// Publish appends ev to the queue. Events published after Close are dropped.
func (b *Bus) Publish(ev Event) Envelope {
	env := Envelope{ID: uuid.NewString(), At: b.now(), Event: ev}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return env
	}
	b.queue = append(b.queue, env)
	b.mu.Unlock()
	b.wake()
	return env
}

// Next blocks until an event is queued, the bus is closed or ctx is done.
func (b *Bus) Next(ctx context.Context) (Envelope, error) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			env := b.queue[0]
			b.queue[0] = Envelope{}
			b.queue = b.queue[1:]
			b.mu.Unlock()
			return env, nil
		}
		closed := b.closed
		b.mu.Unlock()
		if closed {
			return Envelope{}, ErrClosed
		}
		select {
		case <-ctx.Done():
			return Envelope{}, ctx.Err()
		case <-b.notify:
		}
	}
}

// Drain removes and returns every queued event.
func (b *Bus) Drain() []Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}

// Len is the number of queued events.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Close stops accepting events. Readers still receive what was queued.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wake()
}

func (b *Bus) wake() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}
