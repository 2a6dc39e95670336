package contract

import (
	"context"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error)

	// FindByExactParticipants returns the non-group chat whose participant
	// set equals the given one, or nil.
	FindByExactParticipants(ctx context.Context, participants []uuid.UUID) (*entity.Chat, error)

	AddParticipant(ctx context.Context, chatId, userId uuid.UUID) error
	UpdateLastMessage(ctx context.Context, chatId, messageId uuid.UUID) error
}
