// network/connection.go
package network

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Connection interface {
	Send(msgType string, payload interface{}) error
	SendRaw(data []byte) error
	Close() error
	ClosePolicy(reason string) error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadFrame() ([]byte, error)
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn, maxFrameBytes int64) *WSConnection {
	if maxFrameBytes > 0 {
		conn.SetReadLimit(maxFrameBytes)
	}
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(msgType string, payload interface{}) error {
	data, err := EncodeEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return c.SendRaw(data)
}

// SendRaw 发送已经序列化好的封包，广播路径共用同一份字节
func (c *WSConnection) SendRaw(data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WSConnection) ReadFrame() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ClosePolicy sends a policy-violation close frame (1008) before dropping the
// connection. Used for rate-limit and connection-cap breaches.
func (c *WSConnection) ClosePolicy(reason string) error {
	c.sendMutex.Lock()
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.sendMutex.Unlock()
	return c.conn.Close()
}

func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
