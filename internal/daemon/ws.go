package daemon

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridplan/gridplan/internal/game"
	"github.com/gridplan/gridplan/internal/ledger"
)

const (
	wsWriteWait = 10 * time.Second
	wsMaxFrame  = 4096
	opTimer     = "timer"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsRequest is one inbound frame: a ledger command, or a timer action
// when Op is "timer".
type wsRequest struct {
	ledger.Command
	Action string `json:"action,omitempty"`
}

// wsClient is one browser connection. Events arrive from the service's
// subscriber fan-out; replies carry per-client errors.
type wsClient struct {
	conn    *websocket.Conn
	events  chan Event
	replies chan Event
	done    chan struct{}
}

func (s *Service) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("gridplan serve: websocket upgrade: %v", err)
		return
	}

	c := &wsClient{
		conn:    conn,
		events:  make(chan Event, 16),
		replies: make(chan Event, 4),
		done:    make(chan struct{}),
	}
	id := s.addSubscriber(c.events)

	current := s.currentState()
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(Event{Type: EventState, Timestamp: s.cfg.Clock.Now(), State: &current}); err != nil {
		s.removeSubscriber(id)
		_ = conn.Close()
		return
	}

	go c.writePump()
	c.readPump(s)

	s.removeSubscriber(id)
	close(c.done)
}

// readPump applies inbound commands until the connection closes.
func (c *wsClient) readPump(s *Service) {
	c.conn.SetReadLimit(wsMaxFrame)
	for {
		var req wsRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("gridplan serve: websocket read: %v", err)
			}
			return
		}

		var err error
		if req.Op == opTimer {
			_, err = s.mutate(EventTimer, func(g *game.Game) error { return g.Control(req.Action) })
		} else {
			eventType := EventUnits
			if req.Op == ledger.OpInvest {
				eventType = EventInvest
			}
			_, err = s.mutate(eventType, func(g *game.Game) error {
				_, err := g.Apply(req.Command)
				return err
			})
		}
		if err != nil {
			select {
			case c.replies <- Event{Type: EventError, Timestamp: s.cfg.Clock.Now(), Error: err.Error()}:
			default:
			}
		}
	}
}

// writePump is the connection's only writer.
func (c *wsClient) writePump() {
	defer func() { _ = c.conn.Close() }()
	for {
		var ev Event
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		case ev = <-c.replies:
		case ev = <-c.events:
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
