// Package notify fans change events out to in-process subscribers. The store
// publishes after every committed write; consumers treat events as a signal
// to re-fetch, so dropping one under load only delays a refresh.
package notify

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lista-app/lista"
)

// DefaultBufferSize is the per-subscriber send queue size.
const DefaultBufferSize = 10

// Hub broadcasts events to every subscriber. Publish never blocks: when a
// subscriber's queue is full the event is dropped for that subscriber and
// counted in the metrics.
type Hub struct {
	mu         sync.RWMutex
	subs       map[*subscriber]bool
	closed     bool
	bufferSize int
	sequence   atomic.Int64
	metrics    *Metrics
}

type subscriber struct {
	ch        chan lista.Event
	closeOnce sync.Once // Ensures the channel is closed only once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Compile-time verification that *Hub implements lista.Publisher
var _ lista.Publisher = (*Hub)(nil)

// NewHub creates a hub. bufferSize is the per-subscriber queue size;
// values <= 0 use DefaultBufferSize.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subs:       make(map[*subscriber]bool),
		bufferSize: bufferSize,
		metrics:    NewMetrics(),
	}
}

// Publish stamps the event with the next sequence number and the current
// time, then delivers it to every subscriber without blocking. Publishing
// on a closed hub is a no-op.
func (h *Hub) Publish(ev lista.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	ev.SequenceID = h.sequence.Add(1)
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	h.metrics.IncPublished()

	for sub := range h.subs {
		// Non-blocking send - if the subscriber is slow, skip
		select {
		case sub.ch <- ev:
		default:
			h.metrics.IncDropped()
		}
	}
}

// Subscribe registers a subscriber and returns its event channel along with
// a cancel function. The channel is closed when cancelled and when the hub
// closes. Subscribing to a closed hub returns an already-closed channel.
func (h *Hub) Subscribe() (<-chan lista.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan lista.Event, h.bufferSize)}
	if h.closed {
		sub.close()
		return sub.ch, func() {}
	}

	h.subs[sub] = true
	h.metrics.SetSubscribers(int32(len(h.subs)))

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.subs[sub] {
			delete(h.subs, sub)
			h.metrics.SetSubscribers(int32(len(h.subs)))
			sub.close()
		}
	}
	return sub.ch, cancel
}

// Close drops every subscriber and closes their channels. Safe to call more
// than once.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for sub := range h.subs {
		sub.close()
		delete(h.subs, sub)
	}
	h.metrics.SetSubscribers(0)
	return nil
}

// Metrics exposes the hub's counters.
func (h *Hub) Metrics() *Metrics {
	return h.metrics
}
