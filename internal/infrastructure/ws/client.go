package ws

import (
	"log"

	"github.com/gorilla/websocket"
)

type Client struct {
	conn   *safeConn
	Send   chan *Event
	ID     string
	RoomID string
	Email  string
}

func NewClient(conn *websocket.Conn, id, roomID, email string) *Client {
	return &Client{
		conn:   newSafeConn(conn),
		Send:   make(chan *Event, 16), // buffered to avoid dead-locks on slow clients
		ID:     id,
		RoomID: roomID,
		Email:  email,
	}
}

// ReadPump drains the connection until the peer goes away. Presence sockets
// carry no inbound payload; the read loop only exists to notice the close.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.Unregister() <- c
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.ID, err)
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for ev := range c.Send {
		if err := c.conn.WriteJSON(ev); err != nil {
			log.Printf("ws write error (client %s): %v", c.ID, err)
			break
		}
	}
}
