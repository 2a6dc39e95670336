package contract

import (
	"context"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)

	// FindByChat pages newest-first.
	FindByChat(ctx context.Context, chatId uuid.UUID, limit, offset int) ([]*entity.Message, error)
	CountByChat(ctx context.Context, chatId uuid.UUID) (int64, error)
}
