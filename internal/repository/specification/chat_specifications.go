package specification

import (
	"gorm.io/gorm"

	"github.com/google/uuid"
)

// ParticipatedBy narrows chats to those the user is a member of.
type ParticipatedBy struct {
	UserID uuid.UUID
}

func (s ParticipatedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN chat_participants cp ON cp.chat_id = chats.id").
		Where("cp.user_id = ?", s.UserID)
}

type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

type GroupChatsOnly struct{}

func (s GroupChatsOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_group_chat = ?", true)
}
