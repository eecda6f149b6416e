package event

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Handler processes routed events
type Handler interface {
	// HandleEvent processes a single event on the dispatching goroutine
	HandleEvent(ev GameEvent)

	// EventTypes returns the event types this handler processes
	EventTypes() []EventType
}

// HandlerFunc adapts a function to a single-type subscription
type HandlerFunc func(ev GameEvent)

// Bus is the explicit event channel shared by the simulation and its collaborators
//
// Architecture:
//   - Publish is safe from any goroutine; events wait in the queue until Dispatch
//   - Dispatch and Emit run on the tick owner only
//   - Handlers are invoked in registration order
//   - A panicking handler is logged and skipped, never unwinds the tick
type Bus struct {
	queue *Queue
	log   *zap.SugaredLogger

	mu       sync.RWMutex
	handlers map[EventType][]HandlerFunc
}

// NewBus creates a bus with its own queue; log may be nil
func NewBus(log *zap.SugaredLogger) *Bus {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	InitRegistry()
	return &Bus{
		queue:    NewQueue(),
		log:      log,
		handlers: make(map[EventType][]HandlerFunc),
	}
}

// Subscribe adds fn for one event type
func (b *Bus) Subscribe(t EventType, fn HandlerFunc) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.handlers[t] = append(b.handlers[t], fn)
	b.mu.Unlock()
}

// Register adds a handler for its declared event types
func (b *Bus) Register(h Handler) {
	for _, t := range h.EventTypes() {
		b.Subscribe(t, h.HandleEvent)
	}
}

// Publish queues ev for the next Dispatch; returns false when the queue is full
func (b *Bus) Publish(ev GameEvent) bool {
	if b.queue.Push(ev) {
		return true
	}
	b.log.Warnw("event queue full, event dropped", "event", ev.Type.String(), "dropped", b.queue.Dropped())
	return false
}

// Dispatch consumes all pending events in FIFO order and routes them
// Returns the number of events consumed
func (b *Bus) Dispatch() int {
	events := b.queue.Drain()
	for _, ev := range events {
		b.deliver(ev)
	}
	return len(events)
}

// Emit delivers ev synchronously, bypassing the queue
func (b *Bus) Emit(ev GameEvent) {
	b.deliver(ev)
}

// Pending returns the approximate queued event count
func (b *Bus) Pending() int {
	return b.queue.Len()
}

// HandlerCount returns the number of handlers registered for the given type
func (b *Bus) HandlerCount(t EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[t])
}

func (b *Bus) deliver(ev GameEvent) {
	b.mu.RLock()
	handlers := b.handlers[ev.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(h, ev)
	}
}

func (b *Bus) invoke(h HandlerFunc, ev GameEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw("event handler panic", "event", ev.Type.String(), "panic", fmt.Sprint(r))
		}
	}()
	h(ev)
}
