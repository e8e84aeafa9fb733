package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks which admitted members are currently present in which room and
// fans presence events out to everyone in that room. Admission decisions are
// made before a client ever reaches the hub.
type Hub struct {
	rooms      map[string]map[string]*Client // roomID -> clientID -> Client
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	upgrader   websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return h.upgrader.Upgrade(w, r, nil)
}

func (h *Hub) Register() chan<- *Client {
	return h.register
}

func (h *Hub) Unregister() chan<- *Client {
	return h.unregister
}

func (h *Hub) Run() {
	for {
		select {
		case cl := <-h.register:
			h.add(cl)
		case cl := <-h.unregister:
			h.remove(cl)
		}
	}
}

func (h *Hub) add(cl *Client) {
	h.mu.Lock()
	room, ok := h.rooms[cl.RoomID]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[cl.RoomID] = room
	}
	room[cl.ID] = cl
	members := membersLocked(room)
	h.mu.Unlock()

	h.broadcast(cl.RoomID, NewMemberJoined(cl.RoomID, MemberPayload{ID: cl.ID, Email: cl.Email}))

	select {
	case cl.Send <- NewMemberList(cl.RoomID, members):
	default:
	}
}

func (h *Hub) remove(cl *Client) {
	h.mu.Lock()
	room, ok := h.rooms[cl.RoomID]
	if ok {
		if _, exists := room[cl.ID]; exists {
			delete(room, cl.ID)
			close(cl.Send)
			if len(room) == 0 {
				delete(h.rooms, cl.RoomID)
			}
		} else {
			ok = false
		}
	}
	h.mu.Unlock()

	if ok {
		h.broadcast(cl.RoomID, NewMemberLeft(cl.RoomID, MemberPayload{ID: cl.ID, Email: cl.Email}))
	}
}

func (h *Hub) broadcast(roomID string, ev *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, cl := range h.rooms[roomID] {
		select {
		case cl.Send <- ev:
		default:
			// Client is too slow - drop the event
			log.Printf("client %s buffer full, dropping event", cl.ID)
		}
	}
}

// Members reports who is currently connected to a room.
func (h *Hub) Members(roomID string) []MemberPayload {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return membersLocked(h.rooms[roomID])
}

func membersLocked(room map[string]*Client) []MemberPayload {
	members := make([]MemberPayload, 0, len(room))
	for _, cl := range room {
		members = append(members, MemberPayload{ID: cl.ID, Email: cl.Email})
	}
	return members
}
