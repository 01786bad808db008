package wsgateway

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncboard/syncboard/internal/core/domain"
	"github.com/syncboard/syncboard/internal/protocol"
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent. Pongs and
	// data frames both reset the clock.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait so the peer always has
	// a ping to answer before the deadline lands.
	pingPeriod = (pongWait * 9) / 10
)

// clientConn is one live WebSocket connection. Exactly one goroutine
// reads and exactly one writes; everyone else talks to the connection
// through the send queue.
type clientConn struct {
	id string
	ws *websocket.Conn
	gw *Gateway

	mu     sync.Mutex
	send   chan []byte
	closed bool

	once sync.Once
}

func newClientConn(id string, ws *websocket.Conn, gw *Gateway) *clientConn {
	return &clientConn{
		id:   id,
		ws:   ws,
		gw:   gw,
		send: make(chan []byte, gw.cfg.SendQueueSize),
	}
}

// enqueue places a frame on the outbound queue without blocking. A
// full queue means the client cannot keep up with the board and is
// reported as undeliverable.
func (c *clientConn) enqueue(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSendFailed.WithDetails("connection closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return domain.ErrSendFailed.WithDetails("send queue full")
	}
}

// teardown closes the connection once and detaches it from the
// gateway and the hub. Safe to call from any goroutine.
func (c *clientConn) teardown() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		c.ws.Close()
		c.gw.detach(c.id)
	})
}

// readPump consumes client frames until the connection drops. It runs
// on the HTTP handler goroutine.
func (c *clientConn) readPump(ctx context.Context) {
	defer c.teardown()

	c.ws.SetReadLimit(c.gw.cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		c.gw.hub.Board().Clients.Touch(c.id)
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gw.log.Warn("websocket read failed", "client_id", c.id, "error", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		c.gw.hub.Board().Clients.Touch(c.id)
		c.dispatch(data)
	}
}

// dispatch routes one inbound frame to the hub. Malformed frames get a
// private error event; the connection stays up.
func (c *clientConn) dispatch(data []byte) {
	intent, err := protocol.ParseIntent(data)
	if err != nil {
		if ev, encErr := protocol.NewError(err).Encode(); encErr == nil {
			c.enqueue(ev)
		}
		return
	}
	switch intent.Type {
	case protocol.IntentText:
		// Rejections are delivered by the hub as events; the error
		// return is only for transports that need a status code.
		c.gw.hub.OnTextSubmit(c.id, intent.Content, intent.Version)
	case protocol.IntentFileMetaRequest:
		c.gw.hub.OnBoardSyncRequest(c.id)
	}
}

// writePump drains the send queue onto the wire and keeps the
// connection alive with pings.
func (c *clientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.teardown()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
