package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is immutable after creation. Content is non-empty after trimming.
type Message struct {
	Id        uuid.UUID
	ChatId    uuid.UUID
	SenderId  uuid.UUID
	Content   string
	CreatedAt time.Time
}
