package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/etnz/moneyhero"
	"github.com/gorilla/websocket"
)

// feed forwards engine events to websocket clients as JSON text messages.
// Slow clients miss events rather than block the engine.
type feed struct {
	logger   *log.Logger
	upgrader websocket.Upgrader
	cancel   func()

	mu      sync.Mutex
	closed  bool
	clients map[chan moneyhero.Event]struct{}
}

func newFeed(logger *log.Logger) *feed {
	return &feed{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[chan moneyhero.Event]struct{}),
	}
}

func (f *feed) broadcast(ev moneyhero.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for out := range f.clients {
		select {
		case out <- ev:
		default:
			f.logger.Printf("[api] event %s dropped for a slow client", ev.Type)
		}
	}
}

// join registers a new client. It returns nil once the feed is closed.
func (f *feed) join() chan moneyhero.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	out := make(chan moneyhero.Event, 64)
	f.clients[out] = struct{}{}
	return out
}

func (f *feed) leave(out chan moneyhero.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, out)
}

func (f *feed) close() {
	if f.cancel != nil {
		f.cancel()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for out := range f.clients {
		delete(f.clients, out)
		close(out)
	}
}

func (f *feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Joined before the upgrade so that no event is missed once the client
	// sees the handshake response.
	out := f.join()
	if out == nil {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer f.leave(out)

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Printf("[api] websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// The reader only detects the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev, ok := <-out:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
