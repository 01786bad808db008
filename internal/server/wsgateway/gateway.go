package wsgateway

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/syncboard/syncboard/internal/core/domain"
	"github.com/syncboard/syncboard/internal/core/service"
	"github.com/syncboard/syncboard/internal/protocol"
	"github.com/syncboard/syncboard/internal/telemetry/logger"
	"github.com/syncboard/syncboard/pkg/cmap"
)

const (
	// defaultSendQueueSize is the per-client outbound buffer. A client
	// that falls this far behind the broadcast stream is disconnected
	// rather than allowed to stall everyone else.
	defaultSendQueueSize = 64

	// readLimitSlack covers the JSON envelope around the largest
	// allowed text payload.
	readLimitSlack = 16 << 10
)

// Config tunes gateway behavior.
type Config struct {
	// MaxMessageSize caps inbound frames. Should be at least the
	// board's text limit plus envelope overhead.
	MaxMessageSize int64

	// SendQueueSize is the per-client outbound buffer length.
	SendQueueSize int
}

// Gateway owns all live WebSocket connections.
type Gateway struct {
	hub *service.Hub
	log logger.Logger
	cfg Config

	upgrader websocket.Upgrader
	conns    *cmap.Map[*clientConn]
}

// New creates a gateway bound to hub. The caller must also call
// hub.SetSender with the returned gateway.
func New(hub *service.Hub, log logger.Logger, cfg Config) *Gateway {
	if log == nil {
		log = logger.Default()
	}
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = defaultSendQueueSize
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = domain.DefaultMaxTextSize + readLimitSlack
	}
	return &Gateway{
		hub: hub,
		log: log,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Peers connect by LAN IP, so the Origin header never
			// matches the Host the server knows itself by.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: cmap.New[*clientConn](),
	}
}

// HandleWS upgrades an HTTP request and runs the connection until it
// drops. Registered on GET /ws.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		g.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	clientID, err := domain.GenerateClientID()
	if err != nil {
		g.log.Error("client id generation failed", "remote", r.RemoteAddr, "error", err)
		ws.Close()
		return
	}
	conn := newClientConn(clientID, ws, g)
	g.conns.Set(clientID, conn)

	if err := g.hub.OnClientConnected(clientID); err != nil {
		g.log.Error("client registration failed", "client_id", clientID, "error", err)
		g.conns.Delete(clientID)
		ws.Close()
		return
	}

	go conn.writePump()
	conn.readPump(r.Context())
}

// SendTo queues an event for one client. Implements service.Sender.
func (g *Gateway) SendTo(clientID string, event *protocol.Event) error {
	conn, ok := g.conns.Get(clientID)
	if !ok {
		return domain.ErrClientNotFound.WithDetails(clientID)
	}
	data, err := event.Encode()
	if err != nil {
		return domain.ErrInternalServer.WithCause(err)
	}
	return conn.enqueue(data)
}

// Disconnect tears down one client connection. Implements
// service.Sender; teardown reports back through OnClientDisconnected.
func (g *Gateway) Disconnect(clientID string) {
	if conn, ok := g.conns.Get(clientID); ok {
		conn.teardown()
	}
}

// Count returns the number of live connections.
func (g *Gateway) Count() int {
	return g.conns.Count()
}

// Close tears down every connection, for server shutdown.
//
// Teardown removes the connection from the table, which takes the
// shard write lock, so it must run outside Range's read lock.
func (g *Gateway) Close() {
	conns := make([]*clientConn, 0, g.conns.Count())
	g.conns.Range(func(_ string, conn *clientConn) bool {
		conns = append(conns, conn)
		return true
	})
	for _, conn := range conns {
		conn.teardown()
	}
}

// detach removes a closing connection from the table and notifies the
// hub exactly once per connection.
func (g *Gateway) detach(clientID string) {
	g.conns.Delete(clientID)
	g.hub.OnClientDisconnected(clientID)
}
