package repository

import (
	"context"
	"sync"
	"time"

	"github.com/arvidfm/codeshare/internal/domain"
)

type roomRepository struct {
	rooms    map[string]*domain.Room // ID -> Room
	capacity uint
	ttl      time.Duration
	mu       *sync.RWMutex
}

// NewRoomRepository builds the in-memory room store. Rooms live for ttl
// after creation and are purged lazily; nothing inside a room outlives it.
func NewRoomRepository(capacity uint, ttl time.Duration) domain.RoomRepository {
	if capacity == 0 {
		capacity = 100
	}
	if ttl == 0 {
		ttl = domain.DefaultRoomExpiry
	}

	return &roomRepository{
		rooms:    make(map[string]*domain.Room),
		capacity: capacity,
		ttl:      ttl,
		mu:       &sync.RWMutex{},
	}
}

// evictExpired must run under the write lock.
func (r *roomRepository) evictExpired() {
	now := time.Now()
	for id, room := range r.rooms {
		if room.Expired(now) {
			delete(r.rooms, id)
		}
	}
}

// enforceCapacity drops oldest-created rooms once over capacity. Must run
// under the write lock.
func (r *roomRepository) enforceCapacity() {
	for uint(len(r.rooms)) > r.capacity {
		var oldestID string
		var oldest time.Time
		for id, room := range r.rooms {
			if oldestID == "" || room.CreatedAt.Before(oldest) {
				oldestID = id
				oldest = room.CreatedAt
			}
		}
		delete(r.rooms, oldestID)
	}
}

// live returns the room if present and not expired, deleting it otherwise.
// Must run under the write lock.
func (r *roomRepository) live(id string) (*domain.Room, bool) {
	room, exists := r.rooms[id]
	if !exists {
		return nil, false
	}
	if room.Expired(time.Now()) {
		delete(r.rooms, id)
		return nil, false
	}
	return room, true
}

// Create adds a room if its caller-supplied ID is unused. A duplicate ID is
// rejected, never overwritten.
func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	if room == nil || room.ID == "" || room.OwnerEmail == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictExpired()

	if _, exists := r.rooms[room.ID]; exists {
		return domain.ErrRoomAlreadyExists
	}

	if room.Expiry <= 0 {
		room.Expiry = r.ttl
	}

	r.rooms[room.ID] = room
	r.enforceCapacity()

	return nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.live(id)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return room, nil
}

// AddParticipant is the single read-modify-write behind access requests:
// the existence check and the insert happen under one lock acquisition, so
// two near-simultaneous requests for the same identity end up with one
// entry.
func (r *roomRepository) AddParticipant(ctx context.Context, roomID, email string) (domain.Status, error) {
	if roomID == "" || email == "" {
		return "", domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.live(roomID)
	if !ok {
		return "", domain.ErrRoomNotFound
	}

	if p, exists := room.Participants[email]; exists {
		return p.Status, nil
	}

	room.Participants[email] = &domain.Participant{
		Email:       email,
		Status:      domain.StatusPending,
		RequestedAt: time.Now(),
	}

	return domain.StatusPending, nil
}

func (r *roomRepository) SetParticipantStatus(ctx context.Context, roomID, email string, status domain.Status) error {
	if roomID == "" || email == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.live(roomID)
	if !ok {
		return domain.ErrRoomNotFound
	}

	p, exists := room.Participants[email]
	if !exists {
		return domain.ErrParticipantNotFound
	}

	p.Status = status

	return nil
}

func (r *roomRepository) ParticipantStatus(ctx context.Context, roomID, email string) (domain.Status, error) {
	if roomID == "" || email == "" {
		return "", domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.live(roomID)
	if !ok {
		return domain.StatusNotFound, nil
	}

	p, exists := room.Participants[email]
	if !exists {
		return domain.StatusNotFound, nil
	}

	return p.Status, nil
}
