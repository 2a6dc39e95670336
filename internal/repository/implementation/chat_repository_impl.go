package implementation

import (
	"context"
	"errors"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/mapper"
	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRepository(db *gorm.DB) contract.ChatRepository {
	return &ChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatRepositoryImpl) Create(ctx context.Context, chat *entity.Chat) error {
	modelChat := r.mapper.ToModel(chat)
	if err := r.db.WithContext(ctx).Create(modelChat).Error; err != nil {
		return err
	}
	*chat = *r.mapper.ToEntity(modelChat)
	return nil
}

func (r *ChatRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	var modelChat model.Chat
	query := r.applySpecifications(r.db.WithContext(ctx).Preload("Participants"), specs...)

	if err := query.First(&modelChat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelChat), nil
}

func (r *ChatRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error) {
	var modelChats []*model.Chat
	query := r.applySpecifications(r.db.WithContext(ctx).Preload("Participants"), specs...)

	if err := query.Find(&modelChats).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(modelChats), nil
}

func (r *ChatRepositoryImpl) FindByExactParticipants(ctx context.Context, participants []uuid.UUID) (*entity.Chat, error) {
	// A chat matches when it contains every given participant and nobody
	// else. Group chats are excluded; pairs are unique by participant set.
	var chatIds []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.ChatParticipant{}).
		Select("chat_id").
		Where("user_id IN ?", participants).
		Group("chat_id").
		Having("COUNT(DISTINCT user_id) = ?", len(participants)).
		Find(&chatIds).Error
	if err != nil {
		return nil, err
	}

	for _, chatId := range chatIds {
		chat, err := r.FindOne(ctx, specification.ByID{ID: chatId})
		if err != nil {
			return nil, err
		}
		if chat != nil && !chat.IsGroupChat && len(chat.Participants) == len(participants) {
			return chat, nil
		}
	}
	return nil, nil
}

func (r *ChatRepositoryImpl) AddParticipant(ctx context.Context, chatId, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&model.ChatParticipant{
		ChatId: chatId,
		UserId: userId,
	}).Error
}

func (r *ChatRepositoryImpl) UpdateLastMessage(ctx context.Context, chatId, messageId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Chat{}).
		Where("id = ?", chatId).
		Update("last_message_id", messageId).Error
}
