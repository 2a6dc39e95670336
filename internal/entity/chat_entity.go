package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chat is a conversation between two users, or a named group of three or
// more. Participants are unique; a non-group chat has exactly two.
type Chat struct {
	Id            uuid.UUID
	Participants  []uuid.UUID
	IsGroupChat   bool
	GroupName     *string
	Admins        []uuid.UUID
	LastMessageId *uuid.UUID
	Metadata      map[string]interface{}
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasParticipant reports whether userId is a member of the chat.
func (c *Chat) HasParticipant(userId uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userId {
			return true
		}
	}
	return false
}

// HasAdmin reports whether userId administers the chat.
func (c *Chat) HasAdmin(userId uuid.UUID) bool {
	for _, a := range c.Admins {
		if a == userId {
			return true
		}
	}
	return false
}
