package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/itemgate/catalog-validator/internal/catalog"
	"github.com/itemgate/catalog-validator/internal/session"
)

// fakeChannel records sends and can be told to start failing.
type fakeChannel struct {
	mu        sync.Mutex
	events    []Event
	closed    bool
	failAfter int // fail every send once this many have succeeded; -1 never
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{failAfter: -1}
}

func (c *fakeChannel) Send(ctx context.Context, ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAfter >= 0 && len(c.events) >= c.failAfter {
		return errors.New("channel broken")
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) snapshot() ([]Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...), c.closed
}

func waitDone(t *testing.T, d *Dispatcher) {
	t.Helper()
	select {
	case <-d.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not tear down in time")
	}
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	reg := session.NewRegistry()
	id := reg.Create([]catalog.Item{{Name: "x"}})

	ch := newFakeChannel()
	d := New(ch, reg, id, 16)
	d.Start(context.Background())

	d.OnWarning("discount", "high discount")
	d.OnError("barcode", "invalid barcode")
	d.OnCompleted()
	waitDone(t, d)

	events, closed := ch.snapshot()
	want := []Event{
		{Type: TypeWarning, Field: "discount", Error: "high discount"},
		{Type: TypeError, Field: "barcode", Error: "invalid barcode"},
		{Type: TypeCompleted},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(events), len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}

	if !closed {
		t.Error("channel should be closed after completion")
	}
	if d.Broken() {
		t.Error("dispatcher should not be broken")
	}
	if _, err := reg.Get(id); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("session should be removed after completion, Get() error = %v", err)
	}
}

func TestDispatcherFailClosedOnDeliveryFailure(t *testing.T) {
	reg := session.NewRegistry()
	id := reg.Create(nil)

	ch := newFakeChannel()
	ch.failAfter = 1 // first send succeeds, everything after fails
	d := New(ch, reg, id, 16)
	d.Start(context.Background())

	d.OnError("price", "price too low")
	d.OnError("article", "invalid article")
	d.OnWarning("discount", "high discount")
	d.OnCompleted()
	waitDone(t, d)

	events, closed := ch.snapshot()
	if len(events) != 1 {
		t.Fatalf("got %d delivered events, want only the one before the failure: %v", len(events), events)
	}
	if events[0].Field != "price" {
		t.Errorf("delivered event = %+v, want the price finding", events[0])
	}

	if !d.Broken() {
		t.Error("Broken() = false, want true after a failed send")
	}
	if !closed {
		t.Error("channel should still be closed on teardown")
	}
	if _, err := reg.Get(id); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("session should be removed even when broken, Get() error = %v", err)
	}
}

func TestDispatcherDropsEventsOnceBroken(t *testing.T) {
	reg := session.NewRegistry()
	id := reg.Create(nil)

	ch := newFakeChannel()
	ch.failAfter = 0 // every send fails
	d := New(ch, reg, id, 1)
	d.Start(context.Background())

	// Far more events than the queue holds; a broken dispatcher must keep
	// draining so callers are never blocked.
	for i := 0; i < 100; i++ {
		d.OnError("barcode", "invalid barcode")
	}
	d.OnCompleted()
	waitDone(t, d)

	events, _ := ch.snapshot()
	if len(events) != 0 {
		t.Errorf("got %d delivered events, want 0 on a dead channel", len(events))
	}
	if !d.Broken() {
		t.Error("Broken() = false, want true")
	}
}

func TestDispatcherCompletedIdempotent(t *testing.T) {
	ch := newFakeChannel()
	d := New(ch, nil, "", 4)
	d.Start(context.Background())

	d.OnCompleted()
	d.OnCompleted() // second call must not panic
	waitDone(t, d)

	events, closed := ch.snapshot()
	if len(events) != 1 || events[0].Type != TypeCompleted {
		t.Errorf("got %v, want a single completion event", events)
	}
	if !closed {
		t.Error("channel should be closed")
	}
}

func TestDispatcherCancelledContextBreaksChannel(t *testing.T) {
	reg := session.NewRegistry()
	id := reg.Create(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := &ctxChannel{}
	d := New(ch, reg, id, 4)
	d.Start(ctx)

	d.OnError("price", "price too low")
	d.OnCompleted()
	waitDone(t, d)

	if !d.Broken() {
		t.Error("Broken() = false, want true when sends fail on a dead context")
	}
}

// ctxChannel honors context cancellation like a real transport would.
type ctxChannel struct{}

func (c *ctxChannel) Send(ctx context.Context, ev Event) error {
	return ctx.Err()
}

func (c *ctxChannel) Close() error { return nil }
