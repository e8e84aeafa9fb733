package ws

const (
	MemberJoinedEvent = "member.joined"
	MemberLeftEvent   = "member.left"
	MemberListEvent   = "member.list"
	JoinFailedEvent   = "room.join_failed"
)

type Event struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Data   any    `json:"data,omitempty"`
}

type MemberPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type MemberListPayload struct {
	Members []MemberPayload `json:"members"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func NewMemberJoined(roomID string, member MemberPayload) *Event {
	return &Event{
		Type:   MemberJoinedEvent,
		RoomID: roomID,
		Data:   member,
	}
}

func NewMemberLeft(roomID string, member MemberPayload) *Event {
	return &Event{
		Type:   MemberLeftEvent,
		RoomID: roomID,
		Data:   member,
	}
}

func NewMemberList(roomID string, members []MemberPayload) *Event {
	return &Event{
		Type:   MemberListEvent,
		RoomID: roomID,
		Data:   MemberListPayload{Members: members},
	}
}

func NewJoinFailed(roomID, code, message string) *Event {
	return &Event{
		Type:   JoinFailedEvent,
		RoomID: roomID,
		Data: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
