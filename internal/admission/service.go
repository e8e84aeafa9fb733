package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arvidfm/codeshare/internal/domain"
	"github.com/arvidfm/codeshare/internal/infrastructure/sign"
	"go.uber.org/zap"
)

// Notifier alerts a room owner that someone wants in. Implementations must
// treat delivery as fire-and-forget with respect to admission state: a
// failed send never rolls back the pending entry that triggered it.
type Notifier interface {
	NotifyAccessRequest(roomID, requesterEmail, ownerEmail string) error
}

// Service owns the admission state machine. Caller identity is always an
// explicit parameter; nothing here reads ambient request state.
type Service struct {
	rooms    domain.RoomRepository
	notifier Notifier
	signer   *sign.Signer
	roomTTL  time.Duration
	logger   *zap.SugaredLogger
}

func NewService(
	rooms domain.RoomRepository,
	notifier Notifier,
	signer *sign.Signer,
	roomTTL time.Duration,
	logger *zap.SugaredLogger,
) *Service {
	return &Service{
		rooms:    rooms,
		notifier: notifier,
		signer:   signer,
		roomTTL:  roomTTL,
		logger:   logger,
	}
}

// CreateRoom registers a caller-supplied room id. A colliding id is a
// conflict, never an overwrite.
func (s *Service) CreateRoom(ctx context.Context, roomID, ownerEmail string) (*domain.Room, error) {
	room, err := domain.NewRoom(roomID, ownerEmail, s.roomTTL)
	if err != nil {
		return nil, err
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Infow("room created", "roomId", room.ID, "owner", ownerEmail)

	return room, nil
}

// RequestAccess inserts a pending entry (idempotently) and alerts the owner.
// A prior denial is sticky: the requester gets a conflict and no new entry
// is written. Notification failure is logged and surfaced, but the pending
// entry stays put either way.
func (s *Service) RequestAccess(ctx context.Context, roomID, email string) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}

	status, err := s.rooms.AddParticipant(ctx, roomID, email)
	if err != nil {
		return err
	}

	if status == domain.StatusDenied {
		return domain.ErrRequestDenied
	}

	if err := s.notifier.NotifyAccessRequest(roomID, email, room.OwnerEmail); err != nil {
		s.logger.Errorw("owner notification failed",
			"roomId", roomID, "requester", email, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailure, err)
	}

	s.logger.Infow("access requested", "roomId", roomID, "requester", email)

	return nil
}

// Decide applies an owner's verdict. Authorization is the signed link
// itself: the token must match this exact room+email+decision tuple and be
// unexpired. Re-deciding overwrites; an owner may later flip a denial to an
// approval.
func (s *Service) Decide(ctx context.Context, roomID, email string, approve bool, token string) error {
	if err := s.signer.Verify(sign.DecisionPayload(roomID, email, approve), token); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	status := domain.StatusDenied
	if approve {
		status = domain.StatusApproved
	}

	if err := s.rooms.SetParticipantStatus(ctx, roomID, email, status); err != nil {
		return err
	}

	s.logger.Infow("access decided", "roomId", roomID, "participant", email, "status", status)

	return nil
}

// CheckStatus reports the stored admission state. "not found" covers both a
// missing room and a missing entry and is a legal poll result, distinct from
// pending.
func (s *Service) CheckStatus(ctx context.Context, roomID, email string) (domain.Status, error) {
	status, err := s.rooms.ParticipantStatus(ctx, roomID, email)
	if err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
		return "", err
	}
	if err != nil {
		return domain.StatusNotFound, nil
	}
	return status, nil
}

// CheckRole reports owner before consulting the participant list, so the
// owner never needs an entry. Anything short of approved — including denied
// — reads as pending here; CheckStatus is the query that tells those apart.
func (s *Service) CheckRole(ctx context.Context, roomID, email string) (domain.Role, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return "", err
	}

	if room.IsOwner(email) {
		return domain.RoleOwner, nil
	}

	status, err := s.rooms.ParticipantStatus(ctx, roomID, email)
	if err != nil {
		return "", err
	}
	if status == domain.StatusApproved {
		return domain.RoleApproved, nil
	}

	return domain.RolePending, nil
}
