package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Chat struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IsGroupChat   bool       `gorm:"default:false"`
	GroupName     *string    `gorm:"type:varchar(100)"`
	LastMessageId *uuid.UUID `gorm:"type:uuid"`
	// Optional group settings (description, avatar). Null for 1:1 chats.
	Metadata     datatypes.JSON
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
	Participants []ChatParticipant `gorm:"foreignKey:ChatId"`
}

func (Chat) TableName() string {
	return "chats"
}

// ChatParticipant links users to chats. IsAdmin marks group admins; the
// composite unique index enforces participant uniqueness per chat.
type ChatParticipant struct {
	ChatId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	IsAdmin   bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatParticipant) TableName() string {
	return "chat_participants"
}
