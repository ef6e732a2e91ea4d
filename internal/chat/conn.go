package chat

import (
	"errors"
	"sync"
	"time"

	"rates_go/internal/domain"

	"github.com/gorilla/websocket"
)

// InboundKind tags the outcome of one receive step.
type InboundKind int

const (
	InboundMessage InboundKind = iota // a text message arrived
	InboundClosed                     // the peer closed the connection cleanly
	InboundFailed                     // any other read error
)

func (k InboundKind) String() string {
	switch k {
	case InboundMessage:
		return "message"
	case InboundClosed:
		return "closed"
	default:
		return "failed"
	}
}

// Inbound is the result of Conn.Receive.
type Inbound struct {
	Kind InboundKind
	Text string
	Err  error
}

// Conn is one full-duplex, text-message connection to a peer.
// Send may be called concurrently with Receive; Close must be idempotent.
type Conn interface {
	Receive() Inbound
	Send(text string) error
	Close() error
	RemoteAddr() string
}

const closeGracePeriod = time.Second

// wsConn adapts a gorilla websocket to Conn.
type wsConn struct {
	conn         *websocket.Conn
	writeMu      sync.Mutex // gorilla allows one concurrent writer
	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

func newWSConn(conn *websocket.Conn, readLimit int64, writeTimeout time.Duration) *wsConn {
	if readLimit > 0 {
		conn.SetReadLimit(readLimit)
	}
	return &wsConn{conn: conn, writeTimeout: writeTimeout}
}

func (c *wsConn) Receive() Inbound {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
			return Inbound{Kind: InboundClosed}
		}
		return Inbound{Kind: InboundFailed, Err: err}
	}
	return Inbound{Kind: InboundMessage, Text: string(data)}
}

func (c *wsConn) Send(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return domain.ErrPeerClosed
		}
		return domain.NewFatalNetworkError("write", err)
	}
	return nil
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		// WriteControl may run concurrently with Send; best effort, the peer may be gone
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *wsConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
