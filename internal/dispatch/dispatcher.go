package dispatch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/itemgate/catalog-validator/internal/session"
)

// Event type values
const (
	TypeError     = "error"
	TypeWarning   = "warning"
	TypeCompleted = "completed"
)

// Event is the wire shape delivered to an observer channel
type Event struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Error string `json:"error,omitempty"`
}

// Channel is the outbound delivery contract supplied by the transport layer.
// Send and Close are only ever invoked from the dispatcher's drain goroutine.
type Channel interface {
	Send(ctx context.Context, ev Event) error
	Close() error
}

// Dispatcher adapts the subscriber callbacks of one session onto a single
// delivery channel. Callbacks enqueue events on a bounded queue and one
// drain goroutine performs every channel send, so engine workers never
// write to the transport concurrently.
//
// The first failed send marks the dispatcher broken: remaining events are
// drained and dropped, the engine keeps running, and no further delivery is
// attempted for this session.
type Dispatcher struct {
	ch        Channel
	registry  *session.Registry
	sessionID string

	q         chan Event
	done      chan struct{}
	broken    atomic.Bool
	closeOnce sync.Once
}

// New creates a dispatcher bound to one delivery channel.
// queueSize bounds the number of findings buffered ahead of the transport
// (must be > 0; values < 1 are bumped to 1).
func New(ch Channel, registry *session.Registry, sessionID string, queueSize int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		ch:        ch,
		registry:  registry,
		sessionID: sessionID,
		q:         make(chan Event, queueSize),
		done:      make(chan struct{}),
	}
}

// Start launches the drain goroutine. ctx bounds individual sends; a
// cancelled ctx breaks the channel the same way a failed send does.
func (d *Dispatcher) Start(ctx context.Context) {
	go d.drain(ctx)
}

// OnError enqueues an error finding for delivery
func (d *Dispatcher) OnError(field, message string) {
	d.enqueue(Event{Type: TypeError, Field: field, Error: message})
}

// OnWarning enqueues a warning finding for delivery
func (d *Dispatcher) OnWarning(field, message string) {
	d.enqueue(Event{Type: TypeWarning, Field: field, Error: message})
}

// OnCompleted ends the stream. Queued events still drain in order, a
// completion event is sent if the channel is still usable, then the channel
// is closed and the session is removed from the registry. Safe to call more
// than once; only the first call has effect.
func (d *Dispatcher) OnCompleted() {
	d.closeOnce.Do(func() {
		close(d.q)
	})
}

// Broken reports whether delivery has failed for this session. Once broken,
// the dispatcher drops all further events.
func (d *Dispatcher) Broken() bool {
	return d.broken.Load()
}

// Done is closed after the stream has been torn down: queue drained, channel
// closed, session removed.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) enqueue(ev Event) {
	if d.broken.Load() {
		return
	}
	d.q <- ev
}

func (d *Dispatcher) drain(ctx context.Context) {
	defer close(d.done)

	for ev := range d.q {
		if d.broken.Load() {
			continue
		}
		if err := d.ch.Send(ctx, ev); err != nil {
			d.broken.Store(true)
		}
	}

	if !d.broken.Load() {
		if err := d.ch.Send(ctx, Event{Type: TypeCompleted}); err != nil {
			d.broken.Store(true)
		}
	}
	d.ch.Close()

	if d.registry != nil {
		d.registry.Remove(d.sessionID)
	}
}
