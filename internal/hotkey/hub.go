package hotkey

import "sync"

// Hub is a Listener fed by a platform key source. A consumer may claim
// events so the source can swallow them where the platform allows.
type Hub struct {
	mu       sync.RWMutex
	subs     map[int]func(KeyEvent)
	next     int
	consumer func(KeyEvent) bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(KeyEvent))}
}

// Subscribe registers fn for every event.
func (h *Hub) Subscribe(fn func(KeyEvent)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// SetConsumer installs the function deciding whether an event is claimed.
func (h *Hub) SetConsumer(fn func(KeyEvent) bool) {
	h.mu.Lock()
	h.consumer = fn
	h.mu.Unlock()
}

// Publish delivers ev and reports whether the consumer claimed it.
func (h *Hub) Publish(ev KeyEvent) bool {
	h.mu.RLock()
	subs := make([]func(KeyEvent), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	consumer := h.consumer
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
	if consumer == nil {
		return false
	}
	return consumer(ev)
}
