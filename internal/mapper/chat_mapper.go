package mapper

import (
	"encoding/json"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	chat := &entity.Chat{
		Id:            c.Id,
		IsGroupChat:   c.IsGroupChat,
		GroupName:     c.GroupName,
		LastMessageId: c.LastMessageId,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}

	for _, p := range c.Participants {
		chat.Participants = append(chat.Participants, p.UserId)
		if p.IsAdmin {
			chat.Admins = append(chat.Admins, p.UserId)
		}
	}

	if len(c.Metadata) > 0 {
		var meta map[string]interface{}
		if err := json.Unmarshal(c.Metadata, &meta); err == nil {
			chat.Metadata = meta
		}
	}

	return chat
}

func (m *ChatMapper) ToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}

	chat := &model.Chat{
		Id:            c.Id,
		IsGroupChat:   c.IsGroupChat,
		GroupName:     c.GroupName,
		LastMessageId: c.LastMessageId,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}

	for _, userId := range c.Participants {
		chat.Participants = append(chat.Participants, model.ChatParticipant{
			ChatId:  c.Id,
			UserId:  userId,
			IsAdmin: c.HasAdmin(userId),
		})
	}

	if c.Metadata != nil {
		if raw, err := json.Marshal(c.Metadata); err == nil {
			chat.Metadata = datatypes.JSON(raw)
		}
	}

	return chat
}

func (m *ChatMapper) ToEntities(models []*model.Chat) []*entity.Chat {
	entities := make([]*entity.Chat, 0, len(models))
	for _, mc := range models {
		entities = append(entities, m.ToEntity(mc))
	}
	return entities
}
