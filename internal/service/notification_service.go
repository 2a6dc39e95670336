package service

import (
	"context"
	"strings"
	"time"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/cache"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/pkg/events"
	pktNats "realtime-chat-be/pkg/nats"

	"github.com/google/uuid"
)

// ActivityDelivery pushes an activity nudge to whichever participants are
// online. The hub skips the sender and anyone already joined to the room.
type ActivityDelivery interface {
	NotifyChatActivity(participants []uuid.UUID, senderId uuid.UUID, payload dto.ChatActivityPayload)
}

type NotificationService struct {
	uowFactory   unitofwork.RepositoryFactory
	profileCache cache.ProfileCache
	subscriber   *pktNats.Subscriber
	delivery     ActivityDelivery
	logger       logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	profileCache cache.ProfileCache,
	sub *pktNats.Subscriber,
	delivery ActivityDelivery,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		uowFactory:   uowFactory,
		profileCache: profileCache,
		subscriber:   sub,
		delivery:     delivery,
		logger:       log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events."+events.TypeMessageSent, "chat-activity-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.MESSAGE_SENT", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// NATS subjects carry the "events." prefix.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	if typeCode != events.TypeMessageSent {
		return nil
	}

	payload := event.Payload()
	chatIdStr, _ := payload["chat_id"].(string)
	senderIdStr, _ := payload["sender_id"].(string)
	senderName, _ := payload["sender_name"].(string)
	preview, _ := payload["preview"].(string)

	chatId, err := uuid.Parse(chatIdStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event carries malformed chat_id", map[string]interface{}{"chat_id": chatIdStr})
		return nil
	}
	senderId, err := uuid.Parse(senderIdStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event carries malformed sender_id", map[string]interface{}{"sender_id": senderIdStr})
		return nil
	}

	participants, ok := s.profileCache.GetParticipants(ctx, chatId)
	if !ok {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		chat, err := uow.ChatRepository().FindOne(ctx, specification.ByID{ID: chatId})
		if err != nil {
			return err // retriable
		}
		if chat == nil {
			s.logger.Warn("NotificationService", "Chat gone before activity delivery", map[string]interface{}{"chat_id": chatId.String()})
			return nil
		}
		participants = chat.Participants
		s.profileCache.SetParticipants(ctx, chatId, participants)
	}

	s.delivery.NotifyChatActivity(participants, senderId, dto.ChatActivityPayload{
		ChatId:     chatId,
		SenderName: senderName,
		Preview:    preview,
		OccurredAt: time.Now(),
	})

	return nil
}
