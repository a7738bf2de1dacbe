// Package session tracks which backend session each browser holds and fans
// session changes out to subscribed views.
package session

import (
	"context"
	"sync"

	"mealtap/internal/model"
)

// Event reports a session change for one browser. It never carries tokens.
type Event struct {
	SID    string           `json:"sid"`
	Status model.AuthStatus `json:"status"`
	UserID string           `json:"user_id,omitempty"`
	Email  string           `json:"email,omitempty"`
}

// EventFor builds the event describing sess (nil for signed out).
func EventFor(sid string, sess *model.Session) Event {
	ev := Event{SID: sid, Status: model.StatusOf(sess)}
	if sess != nil {
		ev.UserID = sess.User.ID
		ev.Email = sess.User.Email
	}
	return ev
}

// Publisher announces session changes.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Hub delivers events to in-process subscribers keyed by browser id.
type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[string]map[uint64]func(Event)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]func(Event))}
}

// Subscribe registers fn for events of sid. The returned function removes the
// subscription; calling it more than once is a no-op.
func (h *Hub) Subscribe(sid string, fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	h.next++
	id := h.next
	if h.subs[sid] == nil {
		h.subs[sid] = make(map[uint64]func(Event))
	}
	h.subs[sid][id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			if set := h.subs[sid]; set != nil {
				delete(set, id)
				if len(set) == 0 {
					delete(h.subs, sid)
				}
			}
			h.mu.Unlock()
		})
	}
}

// Publish delivers ev to local subscribers of ev.SID.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.subs[ev.SID]))
	for _, fn := range h.subs[ev.SID] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
	return nil
}

// Subscribers returns the number of live subscriptions for sid.
func (h *Hub) Subscribers(sid string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sid])
}
