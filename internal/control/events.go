package control

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"openwhisper/internal/record"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is one message pushed to /events clients.
type Event struct {
	Type    string `json:"type"`
	State   string `json:"state,omitempty"`
	Text    string `json:"text,omitempty"`
	Verdict string `json:"verdict,omitempty"`
	Error   string `json:"error,omitempty"`
	Time    string `json:"time"`
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Events broadcasts session events to websocket clients. It implements
// record.EventSink; slow clients drop events rather than block the session.
type Events struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	logger  *zap.SugaredLogger
}

// NewEvents returns an empty hub.
func NewEvents(logger *zap.SugaredLogger) *Events {
	return &Events{clients: make(map[*client]struct{}), logger: logger}
}

// StateChanged implements record.EventSink.
func (e *Events) StateChanged(st record.State) {
	e.Broadcast(Event{Type: "state", State: st.String()})
}

// Processed implements record.EventSink.
func (e *Events) Processed(r record.Result) {
	ev := Event{Type: "result", Text: r.Text, Verdict: r.Verdict.String()}
	if r.Err != nil {
		ev.Error = r.Err.Error()
	}
	e.Broadcast(ev)
}

// Broadcast queues ev for every client.
func (e *Events) Broadcast(ev Event) {
	ev.Time = time.Now().UTC().Format(time.RFC3339Nano)
	e.mu.Lock()
	defer e.mu.Unlock()
	for c := range e.clients {
		select {
		case c.send <- ev:
		default:
			e.logger.Debugw("event client too slow, dropping event", "type", ev.Type)
		}
	}
}

// Serve upgrades the request and streams events until the client leaves.
func (e *Events) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		e.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	cl := &client{conn: conn, send: make(chan Event, 16)}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		_ = conn.Close()
		return
	}
	e.clients[cl] = struct{}{}
	e.mu.Unlock()

	go e.readLoop(cl)
	e.writeLoop(cl)
}

// readLoop discards client messages and notices disconnects.
func (e *Events) readLoop(cl *client) {
	defer e.remove(cl)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (e *Events) writeLoop(cl *client) {
	defer cl.conn.Close()
	for ev := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := cl.conn.WriteJSON(ev); err != nil {
			e.remove(cl)
			return
		}
	}
	_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (e *Events) remove(cl *client) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.clients[cl]; ok {
		delete(e.clients, cl)
		close(cl.send)
	}
}

// Close disconnects every client.
func (e *Events) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for cl := range e.clients {
		delete(e.clients, cl)
		close(cl.send)
	}
}

// Clients returns the number of connected clients.
func (e *Events) Clients() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.clients)
}
