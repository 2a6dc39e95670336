package service

import (
	"context"
	"encoding/json"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// RoomBroadcaster is the hub surface the consumer fans out to.
type RoomBroadcaster interface {
	BroadcastToRoom(chatId uuid.UUID, event string, payload interface{})
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       RoomBroadcaster
	log       logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, hub RoomBroadcaster, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.BroadcastMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal broadcast message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, do not retry
		return
	}

	cs.hub.BroadcastToRoom(payload.ChatId, dto.EventReceiveMessage, dto.ReceiveMessagePayload{
		ChatId:    payload.ChatId,
		Sender:    payload.Sender,
		Content:   payload.Content,
		CreatedAt: payload.CreatedAt,
	})

	msg.Ack()
}
