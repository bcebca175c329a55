// hub.go fans pane events out to connected WebSocket observers.
package server

import (
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/hearsay-dev/hearsay/internal/panes"
)

// event is one message pushed to observers.
type event struct {
	Type string      `json:"type"`
	Pane *panes.View `json:"pane,omitempty"`
	ID   string      `json:"id,omitempty"`
}

const (
	eventPaneUpdated = "pane_updated"
	eventPaneRemoved = "pane_removed"
)

// subscriber is one connected observer. Events are dropped rather than
// queued without bound when the client cannot keep up.
type subscriber struct {
	ch chan event
}

// hub tracks subscribers and broadcasts events to them.
type hub struct {
	mu   sync.Mutex
	subs map[*subscriber]bool
}

func newHub() *hub {
	return &hub{subs: make(map[*subscriber]bool)}
}

// broadcast queues an event on every subscriber. Must return quickly; it is
// called from the engine's critical path.
func (h *hub) broadcast(ev event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			// Slow observer; drop the event. The next update supersedes it.
		}
	}
}

func (h *hub) add() *subscriber {
	sub := &subscriber{ch: make(chan event, 64)}
	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()
	return sub
}

func (h *hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// serveConn streams events to one WebSocket connection until it closes.
// A read loop runs alongside the writer so close frames are noticed.
func (h *hub) serveConn(c *websocket.Conn, snapshot []panes.View) {
	defer c.Close()

	sub := h.add()
	defer h.remove(sub)

	// Send the current pane set first so late joiners see full state.
	for i := range snapshot {
		if err := c.WriteJSON(event{Type: eventPaneUpdated, Pane: &snapshot[i]}); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-sub.ch:
			if err := c.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
