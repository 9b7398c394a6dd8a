// Package signalbus is the in-process signal/slot graph C2 fires change
// notifications on and C6 subscribes to. Signals fire synchronously on the
// mutating goroutine, after the firing object's monitor has been released,
// per the concurrency model: subscribers must assume they run on an
// arbitrary goroutine and must not block.
//
// Echo prevention is carried entirely by the Origin field threaded through
// every Event, never by goroutine-local state, so a signal fired while
// applying an inbound mutation still reaches every subscriber — it is each
// subscriber's job (C6's relay handlers) to look at Origin and suppress
// re-relay when appropriate per its own call convention, not the bus's.
package signalbus

import "sync"

// Kind identifies the change that occurred, e.g. "CheckResult",
// "SetNextCheck", "SetVars", "AddComment".
type Kind string

// Event is the payload delivered to subscribers of a Kind.
type Event struct {
	Kind   Kind
	Object any // the configurable object that changed
	Origin any // *transport.MessageOrigin, or nil if locally originated
	Data   map[string]any
}

// Handler processes a single Event. It must not block for long; it runs
// synchronously on the firing goroutine.
type Handler func(Event)

// Bus is a process-wide signal bus keyed by change Kind.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers h to run whenever an Event of kind k is published.
// Subscriptions are additive and never removed; all of zonecore's
// subscribers (C6's relay, internal/eventstream's tap) are wired once at
// startup.
func (b *Bus) Subscribe(k Kind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[k] = append(b.handlers[k], h)
}

// Publish synchronously invokes every handler subscribed to ev.Kind, in
// subscription order.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	hs := b.handlers[ev.Kind]
	b.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}
