package webui

import (
	"sync"

	"festive/internal/mediajob"
)

const subscriberBuffer = 32

// broadcaster fans controller events out to stream subscribers. Slow
// subscribers miss events rather than blocking the controller.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[chan mediajob.Event]struct{}
	closed bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan mediajob.Event]struct{})}
}

func (b *broadcaster) subscribe() (<-chan mediajob.Event, func()) {
	ch := make(chan mediajob.Event, subscriberBuffer)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
}

func (b *broadcaster) publish(event mediajob.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
