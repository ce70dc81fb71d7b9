package ws

import (
	"context"
	"net"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

// Conn pairs a websocket with its session's outbound channel.
type Conn struct {
	ws   *websocket.Conn
	sess *Session
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// NewConn wraps a WS connection for one session.
func NewConn(ws *websocket.Conn, sess *Session) *Conn {
	return &Conn{ws: ws, sess: sess}
}

// Read blocks until it receives a text/binary message.
// Returns false if the connection is closed.
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop drains the session's outbound channel, sends periodic pings,
// and closes the socket when a forced disconnect is signalled.
func (c *Conn) WriteLoop(ctx context.Context) {
	p := 20 * time.Second
	t := time.NewTicker(p)
	defer t.Stop()

	for {
		select {
		case b := <-c.sess.Out():
			_ = c.ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-c.sess.Closing():
			// Flush queued frames (the ban notice) before closing.
			for {
				select {
				case b := <-c.sess.Out():
					_ = c.ws.Write(ctx, websocket.MessageText, b)
				default:
					_ = c.ws.Close(websocket.StatusPolicyViolation, "banned")
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close closes the WS connection normally
func (c *Conn) Close() error { return c.ws.Close(websocket.StatusNormalClosure, "bye") }

// clientAddr extracts the origin address of the request.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
