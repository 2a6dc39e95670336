package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChatRequest struct {
	Participants []uuid.UUID `json:"participants" validate:"required,min=1"`
}

type CreateGroupChatRequest struct {
	GroupName string                 `json:"group_name" validate:"required,min=3,max=100"`
	Users     []uuid.UUID            `json:"users" validate:"required,min=2"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type AddToGroupRequest struct {
	UserId uuid.UUID `json:"user_id" validate:"required"`
}

type ChatResponse struct {
	Id           uuid.UUID        `json:"id"`
	IsGroupChat  bool             `json:"is_group_chat"`
	GroupName    *string          `json:"group_name,omitempty"`
	Participants []UserSummary    `json:"participants"`
	Admins       []uuid.UUID      `json:"admins,omitempty"`
	LastMessage  *MessageResponse `json:"last_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

type SendMessageRequest struct {
	ChatId  uuid.UUID `json:"chat_id" validate:"required"`
	Content string    `json:"content" validate:"required"`
}

type MessageResponse struct {
	Id        uuid.UUID   `json:"id"`
	ChatId    uuid.UUID   `json:"chat_id"`
	Sender    UserSummary `json:"sender"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

type MessagePageResponse struct {
	Messages []MessageResponse `json:"messages"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Total    int64             `json:"total"`
}
