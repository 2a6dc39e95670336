package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Socket event names, inbound and outbound. Wire format is a small
// envelope: {"event": "...", "data": {...}}.
const (
	EventRegisterUser = "registerUser"
	EventJoinChat     = "joinChat"
	EventSendMessage  = "sendMessage"

	EventReceiveMessage   = "receiveMessage"
	EventUserJoined       = "userJoined"
	EventUserDisconnected = "userDisconnected"
	EventError            = "error"
	EventForceLogout      = "forceLogout"
	EventChatActivity     = "chatActivity"
)

type SocketEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type RegisterUserPayload struct {
	UserId uuid.UUID `json:"userId"`
}

type JoinChatPayload struct {
	ChatId string    `json:"chatId"`
	UserId uuid.UUID `json:"userId"`
}

type SendMessagePayload struct {
	ChatId   string    `json:"chatId"`
	SenderId uuid.UUID `json:"senderId"`
	Content  string    `json:"content"`
}

type ReceiveMessagePayload struct {
	ChatId    uuid.UUID   `json:"chatId"`
	Sender    UserSummary `json:"sender"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

type PresencePayload struct {
	ChatId uuid.UUID `json:"chatId"`
	UserId uuid.UUID `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// ChatActivityPayload nudges online participants who are not joined to the
// room that the chat's last message changed.
type ChatActivityPayload struct {
	ChatId     uuid.UUID `json:"chatId"`
	SenderName string    `json:"senderName"`
	Preview    string    `json:"preview"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BroadcastMessage travels on the in-process pipeline from the message
// pipeline to the hub fan-out consumer. Published only after the message
// row and last-message pointer are committed.
type BroadcastMessage struct {
	MessageId uuid.UUID   `json:"message_id"`
	ChatId    uuid.UUID   `json:"chat_id"`
	Sender    UserSummary `json:"sender"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}
