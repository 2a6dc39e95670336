package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeUserRegistered = "USER_REGISTERED"
	TypeChatCreated    = "CHAT_CREATED"
	TypeMessageSent    = "MESSAGE_SENT"
)

func NewUserRegistered(userId uuid.UUID, email string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id": userId.String(),
			"email":   email,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatCreated(chatId uuid.UUID, creatorId uuid.UUID, isGroup bool) Event {
	return BaseEvent{
		Type: TypeChatCreated,
		Data: map[string]interface{}{
			"chat_id":    chatId.String(),
			"creator_id": creatorId.String(),
			"is_group":   isGroup,
		},
		OccurredAt: time.Now(),
	}
}

// NewMessageSent is published after the message row and the chat's
// last-message pointer are committed.
func NewMessageSent(messageId, chatId, senderId uuid.UUID, senderName, preview string) Event {
	return BaseEvent{
		Type: TypeMessageSent,
		Data: map[string]interface{}{
			"message_id":  messageId.String(),
			"chat_id":     chatId.String(),
			"sender_id":   senderId.String(),
			"sender_name": senderName,
			"preview":     preview,
		},
		OccurredAt: time.Now(),
	}
}
