package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// DefaultMaxCascade bounds how many events one outer Emit may deliver,
// counting the events handlers emit while it drains.
const DefaultMaxCascade = 10000

// Handler receives a delivered event.
type Handler func(Event)

// Subscription identifies a registered handler for Off.
type Subscription struct {
	kind Kind
	id   uint64
}

type subscriber struct {
	id   uint64
	kind Kind
	all  bool
	fn   Handler
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report dropped cascades.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bus) {
		b.log = log
	}
}

// WithMaxCascade overrides DefaultMaxCascade. Values below one are ignored.
func WithMaxCascade(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxCascade = n
		}
	}
}

// Bus delivers events synchronously to handlers in subscription order.
//
// An event emitted while another is being delivered (typically by a handler
// reacting to a store change) is queued and delivered after the current one
// finishes, so handlers never see events out of order and never recurse.
type Bus struct {
	mu          sync.Mutex
	log         zerolog.Logger
	maxCascade  int
	nextID      uint64
	subs        []subscriber
	queue       []Event
	dispatching bool
}

// NewBus creates a bus with no subscribers.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		log:        zerolog.Nop(),
		maxCascade: DefaultMaxCascade,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers fn for events of the given kind.
func (b *Bus) On(kind Kind, fn Handler) Subscription {
	return b.subscribe(kind, false, fn)
}

// OnAll registers fn for every event.
func (b *Bus) OnAll(fn Handler) Subscription {
	return b.subscribe("", true, fn)
}

func (b *Bus) subscribe(kind Kind, all bool, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, kind: kind, all: all, fn: fn})
	return Subscription{kind: kind, id: b.nextID}
}

// Off removes a handler. An event already being delivered still reaches it.
func (b *Bus) Off(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers e to its handlers before returning, unless a delivery is
// already in progress, in which case e is queued behind it. A queued event
// is delivered by the goroutine that is already dispatching, before that
// goroutine's Emit returns.
func (b *Bus) Emit(e Event) {
	if e == nil {
		return
	}

	b.mu.Lock()
	b.queue = append(b.queue, e)
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true
	b.mu.Unlock()

	// A panicking handler leaves the loop early; clear the state so the
	// bus is not stuck dispatching.
	finished := false
	defer func() {
		if finished {
			return
		}
		b.mu.Lock()
		b.dispatching = false
		b.queue = nil
		b.mu.Unlock()
	}()

	delivered := 0
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.dispatching = false
			b.mu.Unlock()
			finished = true
			return
		}
		if delivered >= b.maxCascade {
			dropped := len(b.queue)
			next := b.queue[0].Kind()
			b.queue = nil
			b.dispatching = false
			b.mu.Unlock()
			finished = true
			b.log.Error().
				Int("dropped", dropped).
				Int("limit", b.maxCascade).
				Str("next", string(next)).
				Msg("event cascade limit reached")
			return
		}
		next := b.queue[0]
		b.queue[0] = nil
		b.queue = b.queue[1:]
		handlers := b.handlersLocked(next.Kind())
		b.mu.Unlock()

		for _, fn := range handlers {
			fn(next)
		}
		delivered++
	}
}

func (b *Bus) handlersLocked(kind Kind) []Handler {
	var out []Handler
	for _, s := range b.subs {
		if s.all || s.kind == kind {
			out = append(out, s.fn)
		}
	}
	return out
}
