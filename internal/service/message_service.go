package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/apperror"
	"realtime-chat-be/internal/repository/cache"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/pkg/events"
	pktNats "realtime-chat-be/pkg/nats"

	"github.com/google/uuid"
)

const previewLength = 80

// IMessageService is the send pipeline: validate, authorize against the
// participant set, persist message and last-message pointer in one
// transaction, then publish for fan-out. Nothing is published for a
// message that was not committed.
type IMessageService interface {
	Send(ctx context.Context, chatId string, senderId uuid.UUID, content string) (*dto.BroadcastMessage, error)
}

type messageService struct {
	uowFactory       unitofwork.RepositoryFactory
	profileCache     cache.ProfileCache
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	profileCache cache.ProfileCache,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IMessageService {
	return &messageService{
		uowFactory:       uowFactory,
		profileCache:     profileCache,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func (s *messageService) Send(ctx context.Context, chatId string, senderId uuid.UUID, content string) (*dto.BroadcastMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.InvalidArgument("message content must not be empty")
	}
	if senderId == uuid.Nil {
		return nil, apperror.InvalidArgument("sender ID is required")
	}
	id, err := uuid.Parse(chatId)
	if err != nil {
		return nil, apperror.InvalidArgument("invalid chat ID format")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Internal("failed to load chat", err)
	}
	if chat == nil {
		return nil, apperror.NotFound("chat not found")
	}
	if !chat.HasParticipant(senderId) {
		return nil, apperror.Forbidden("you are not a participant in this chat")
	}
	s.profileCache.SetParticipants(ctx, chat.Id, chat.Participants)

	msg := &entity.Message{
		Id:        uuid.New(),
		ChatId:    chat.Id,
		SenderId:  senderId,
		Content:   content,
		CreatedAt: time.Now(),
	}

	// Message row and last-message pointer move together.
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal("failed to begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().Create(ctx, msg); err != nil {
		return nil, apperror.Internal("failed to persist message", err)
	}
	if err := uow.ChatRepository().UpdateLastMessage(ctx, chat.Id, msg.Id); err != nil {
		return nil, apperror.Internal("failed to update last message", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal("failed to commit message", err)
	}

	sender := s.resolveSender(ctx, uow, senderId)

	broadcast := &dto.BroadcastMessage{
		MessageId: msg.Id,
		ChatId:    chat.Id,
		Sender:    sender,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}

	payload, err := json.Marshal(broadcast)
	if err != nil {
		return nil, apperror.Internal("failed to marshal broadcast", err)
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, apperror.Internal("failed to publish broadcast", err)
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewMessageSent(msg.Id, chat.Id, senderId, sender.Name, preview(msg.Content)))
	}

	return broadcast, nil
}

func (s *messageService) resolveSender(ctx context.Context, uow unitofwork.UnitOfWork, senderId uuid.UUID) dto.UserSummary {
	if summary, ok := s.profileCache.GetUserSummary(ctx, senderId); ok {
		return summary
	}

	summary := dto.UserSummary{Id: senderId}
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: senderId})
	if err == nil && user != nil {
		summary.Name = user.Name
		s.profileCache.SetUserSummary(ctx, summary)
	}
	return summary
}

func preview(content string) string {
	if len(content) <= previewLength {
		return content
	}
	// Truncate on a rune boundary so the preview stays valid UTF-8.
	cut := previewLength
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
