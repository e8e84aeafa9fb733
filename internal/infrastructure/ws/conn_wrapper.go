package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// safeConn serializes writes to one websocket connection. Gorilla permits a
// single concurrent writer, and both the write pump and the hub's join-failed
// path may touch the same socket.
type safeConn struct {
	sock *websocket.Conn
	mu   sync.Mutex
}

func newSafeConn(sock *websocket.Conn) *safeConn {
	return &safeConn{sock: sock}
}

func (c *safeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.WriteJSON(v)
}

func (c *safeConn) ReadMessage() (int, []byte, error) {
	return c.sock.ReadMessage()
}

func (c *safeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.Close()
}
