package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

const DefaultRoomExpiry = time.Hour

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomAlreadyExists   = errors.New("room already exists")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrRequestDenied       = errors.New("request already sent")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrDeliveryFailure     = errors.New("notification delivery failed")
)

// Status is the admission state of a participant within one room.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"

	// StatusNotFound is reported when the room or the participant entry is
	// absent. It is a legal poll result, not an error.
	StatusNotFound Status = "not found"
)

// Role is what a caller is allowed to do in a room. Note that a denied
// participant reports RolePending here; only CheckStatus distinguishes the
// two.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleApproved Role = "approved"
	RolePending  Role = "pending"
)

type Participant struct {
	Email       string    `json:"email"`
	Status      Status    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Room is a time-limited collaboration session. The owner is implicitly
// admitted and never holds a Participants entry. All admission state dies
// with the room when it expires.
type Room struct {
	ID           string                  `json:"roomId"`
	OwnerEmail   string                  `json:"ownerEmail"`
	Participants map[string]*Participant `json:"participants"`
	CreatedAt    time.Time               `json:"createdAt"`
	Expiry       time.Duration           `json:"-"`
}

type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)

	// AddParticipant inserts a pending entry for email if none exists and
	// returns the entry's status afterwards. The insert-if-absent check and
	// the insert are one atomic step: concurrent calls for the same identity
	// leave exactly one entry.
	AddParticipant(ctx context.Context, roomID, email string) (Status, error)

	// SetParticipantStatus overwrites the stored status. Re-deciding is
	// allowed; no history is kept.
	SetParticipantStatus(ctx context.Context, roomID, email string, status Status) error

	// ParticipantStatus reports StatusNotFound (with a nil error) when the
	// room or the entry is absent, so pollers can tell it apart from pending.
	ParticipantStatus(ctx context.Context, roomID, email string) (Status, error)
}

// NewRoom builds a room around a caller-supplied id. Ids are not generated
// server-side, so collisions are the repository's problem to reject.
func NewRoom(id, ownerEmail string, expiry time.Duration) (*Room, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(ownerEmail) == "" {
		return nil, ErrInvalidInput
	}
	if expiry <= 0 {
		expiry = DefaultRoomExpiry
	}

	return &Room{
		ID:           id,
		OwnerEmail:   ownerEmail,
		Participants: make(map[string]*Participant),
		CreatedAt:    time.Now(),
		Expiry:       expiry,
	}, nil
}

func (r *Room) IsOwner(email string) bool {
	return r.OwnerEmail != "" && r.OwnerEmail == email
}

func (r *Room) ExpiresAt() time.Time {
	return r.CreatedAt.Add(r.Expiry)
}

func (r *Room) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt())
}

// Participant looks up an entry without locking; callers that race against
// mutations should go through the repository instead.
func (r *Room) Participant(email string) (*Participant, bool) {
	p, ok := r.Participants[email]
	return p, ok
}
