package rooms

import (
	"errors"
	"net/http"

	"github.com/arvidfm/codeshare/internal/admission"
	"github.com/arvidfm/codeshare/internal/domain"
	"github.com/arvidfm/codeshare/internal/infrastructure/json"
	"github.com/arvidfm/codeshare/internal/infrastructure/ws"
	"github.com/arvidfm/codeshare/internal/presentation/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service *admission.Service
	hub     *ws.Hub
	logger  *zap.SugaredLogger
}

func NewHandler(service *admission.Service, hub *ws.Hub, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ownerEmail := utils.CallerEmail(r)
	if ownerEmail == "" {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	room, err := h.service.CreateRoom(r.Context(), req.RoomID, ownerEmail)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			json.WriteValidationError(w, err)
		case errors.Is(err, domain.ErrRoomAlreadyExists):
			json.WriteConflictError(w, "Room ID already exists")
		default:
			h.logger.Errorw("create room failed", "roomId", req.RoomID, "error", err)
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusCreated, createRoomResponse{
		Success: true,
		Message: "Room created",
		Room:    newRoomResponse(room),
	})
}

func (h *Handler) RequestAccessHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	email := utils.CallerEmail(r)
	if email == "" {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	if err := h.service.RequestAccess(r.Context(), roomID, email); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteNotFoundError(w, "Room not found")
		case errors.Is(err, domain.ErrRequestDenied):
			json.WriteConflictError(w, "Request already sent")
		case errors.Is(err, domain.ErrDeliveryFailure):
			// The pending entry is already in place; only the owner's email
			// went missing.
			json.WriteError(w, http.StatusBadGateway, "Failed to notify room owner")
		default:
			h.logger.Errorw("request access failed", "roomId", roomID, "error", err)
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Request sent to room owner",
	})
}

// DecisionHandler is the landing target of the emailed links (GET with query
// parameters) and doubles as a JSON endpoint (POST). The signed token is the
// only authorization; no session is required.
func (h *Handler) DecisionHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	var email, token string
	var approve bool

	if r.Method == http.MethodGet {
		q := r.URL.Query()
		email = q.Get("email")
		token = q.Get("token")
		approve = q.Get("approve") == "true"
	} else {
		var req decisionRequest
		if err := json.Read(r, &req); err != nil {
			json.WriteValidationError(w, err)
			return
		}
		email = req.Email
		token = req.Token
		approve = req.IsApproved
	}

	if email == "" || token == "" {
		json.WriteValidationError(w, errors.New("email and token are required"))
		return
	}

	if err := h.service.Decide(r.Context(), roomID, email, approve, token); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			json.WriteUnauthorizedError(w, "Invalid or expired decision link")
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteNotFoundError(w, "Room not found")
		case errors.Is(err, domain.ErrParticipantNotFound):
			json.WriteNotFoundError(w, "User not found in requests")
		default:
			h.logger.Errorw("decision failed", "roomId", roomID, "error", err)
			json.WriteInternalError(w, err)
		}
		return
	}

	verdict := "denied"
	if approve {
		verdict = "approved"
	}
	json.Write(w, http.StatusOK, successResponse{
		Success: true,
		Message: "User " + verdict + " access",
	})
}

func (h *Handler) CheckAccessHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	email := utils.CallerEmail(r)
	if email == "" {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	status, err := h.service.CheckStatus(r.Context(), roomID, email)
	if err != nil {
		h.logger.Errorw("check access failed", "roomId", roomID, "error", err)
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, statusResponse{Status: status})
}

func (h *Handler) CheckRoleHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	email := utils.CallerEmail(r)
	if email == "" {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	role, err := h.service.CheckRole(r.Context(), roomID, email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteNotFoundError(w, "Room not found")
		default:
			h.logger.Errorw("check role failed", "roomId", roomID, "error", err)
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, roleResponse{Role: role})
}

// PresenceHandler upgrades an admitted caller into the room's presence feed.
func (h *Handler) PresenceHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	email := utils.CallerEmail(r)
	if email == "" {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	conn, err := h.hub.Upgrade(w, r)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "roomId", roomID, "error", err)
		return
	}

	role, err := h.service.CheckRole(r.Context(), roomID, email)
	if err != nil {
		msg := "Failed to load room"
		if errors.Is(err, domain.ErrRoomNotFound) {
			msg = "Room not found"
		}
		_ = conn.WriteJSON(ws.NewJoinFailed(roomID, "JOIN_FAILED", msg))
		_ = conn.Close()
		return
	}

	if role != domain.RoleOwner && role != domain.RoleApproved {
		_ = conn.WriteJSON(ws.NewJoinFailed(roomID, "NOT_ADMITTED", "Access not granted"))
		_ = conn.Close()
		return
	}

	client := ws.NewClient(conn, uuid.NewString(), roomID, email)
	h.hub.Register() <- client

	go client.WritePump()
	go client.ReadPump(h.hub)

	h.logger.Infow("member present", "roomId", roomID, "email", email)
}
