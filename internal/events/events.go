// Package events carries lifecycle notifications to live screens.
//
// Screens may keep polling; events only shorten the delay before they refresh.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Kind names a lifecycle notification.
type Kind string

const (
	DonationSubmitted Kind = "donation.submitted"
	DonationConfirmed Kind = "donation.confirmed"
	DonationSkipped   Kind = "donation.skipped"
	EventReset        Kind = "event.reset"
)

// Event is the payload published to subscribers.
type Event struct {
	Kind       Kind      `json:"kind"`
	DonationID int64     `json:"donation_id,omitempty"`
	At         time.Time `json:"at"`
}

// Encode renders the event as JSON.
func (e Event) Encode() []byte {
	raw, _ := json.Marshal(e)
	return raw
}

// Decode parses an encoded event.
func Decode(raw []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(raw, &e)
	return e, err
}

// Publisher fans lifecycle events out.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Hub is an in-process broadcaster feeding SSE clients.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	buffer int
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[chan Event]struct{}), buffer: buffer}
}

// Publish delivers e to every subscriber. Slow subscribers miss events rather
// than block the caller; they catch up on their next poll.
func (h *Hub) Publish(_ context.Context, e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

// Subscribe registers a listener. The returned cancel func must be called.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers reports the number of attached listeners.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Multi publishes to several publishers and returns the first error.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
