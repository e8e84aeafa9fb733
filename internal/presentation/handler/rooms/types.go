package rooms

import (
	"time"

	"github.com/arvidfm/codeshare/internal/domain"
)

type createRoomRequest struct {
	RoomID string `json:"roomId"`
}

type roomResponse struct {
	RoomID     string    `json:"roomId"`
	OwnerEmail string    `json:"ownerEmail"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func newRoomResponse(room *domain.Room) roomResponse {
	return roomResponse{
		RoomID:     room.ID,
		OwnerEmail: room.OwnerEmail,
		CreatedAt:  room.CreatedAt,
		ExpiresAt:  room.ExpiresAt(),
	}
}

type createRoomResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Room    roomResponse `json:"room"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type decisionRequest struct {
	Email      string `json:"email"`
	IsApproved bool   `json:"isApproved"`
	Token      string `json:"token"`
}

type statusResponse struct {
	Status domain.Status `json:"status"`
}

type roleResponse struct {
	Role domain.Role `json:"role"`
}
