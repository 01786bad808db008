package connection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncboard/syncboard/internal/protocol"
)

// WSClient is a WebSocket session with the board.
type WSClient struct {
	conn *websocket.Conn
}

// DialWS connects to the board's WebSocket endpoint. The server
// address may be host:port or a full http(s):// URL.
func DialWS(ctx context.Context, server string) (*WSClient, error) {
	url := wsURL(server)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	conn.SetPingHandler(nil) // default handler replies with pongs

	return &WSClient{conn: conn}, nil
}

// wsURL converts a server address into a ws:// or wss:// endpoint URL.
func wsURL(server string) string {
	switch {
	case strings.HasPrefix(server, "https://"):
		server = "wss://" + strings.TrimPrefix(server, "https://")
	case strings.HasPrefix(server, "http://"):
		server = "ws://" + strings.TrimPrefix(server, "http://")
	case !strings.HasPrefix(server, "ws://") && !strings.HasPrefix(server, "wss://"):
		server = "ws://" + server
	}
	return strings.TrimRight(server, "/") + "/ws"
}

// ReadEvent blocks until the next server event arrives.
func (c *WSClient) ReadEvent() (*protocol.Event, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return protocol.ParseEvent(data)
}

// SendIntent writes a client intent frame.
func (c *WSClient) SendIntent(in *protocol.Intent) error {
	return c.conn.WriteJSON(in)
}

// SetReadDeadline bounds the next ReadEvent call.
func (c *WSClient) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Close sends a close frame and tears down the connection.
func (c *WSClient) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}
