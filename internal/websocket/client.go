package websocket

import (
	"errors"
	"sync"
	"time"

	"riff-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var (
	ErrClientClosed = errors.New("client closed")
	ErrBufferFull   = errors.New("client send buffer full")
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	conn      *websocket.Conn
	sessionID string

	// Buffered channel of outbound messages.
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
	logger    logger.ILogger
}

func NewClient(conn *websocket.Conn, sessionID string, bufferSize int, log logger.ILogger) *Client {
	return &Client{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, bufferSize),
		done:      make(chan struct{}),
		logger:    log,
	}
}

func (c *Client) Ready() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Send queues data without blocking. A client that cannot keep up is closed.
func (c *Client) Send(data []byte) error {
	if !c.Ready() {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("Client", "Send buffer full, closing connection", map[string]interface{}{"session_id": c.sessionID})
		c.Close()
		return ErrBufferFull
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump hands every inbound message to handle until the connection fails.
func (c *Client) readPump(maxMessageSize int64, handle func([]byte)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("Client", "Unexpected close", map[string]interface{}{"session_id": c.sessionID, "error": err.Error()})
			}
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		handle(message)
	}
}

// writePump writes queued messages, one frame each, and keeps the peer alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("Client", "Write failed", map[string]interface{}{"session_id": c.sessionID, "error": err.Error()})
				c.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
