package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/apperror"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/service"

	"github.com/google/uuid"
)

// Hub owns the connection registry and the room index. Register and
// unregister flow through channels so connection lifecycle is serialized;
// room membership and fan-out take the lock directly.
type Hub struct {
	registry *Registry

	// rooms indexes joined clients by chat id.
	rooms map[uuid.UUID]map[*Client]struct{}
	mu    sync.RWMutex

	register   chan *Client
	unregister chan *Client

	chatService    service.IChatService
	messageService service.IMessageService
	logger         logger.ILogger
}

func NewHub(registry *Registry, chatService service.IChatService, messageService service.IMessageService, log logger.ILogger) *Hub {
	return &Hub{
		registry:       registry,
		rooms:          make(map[uuid.UUID]map[*Client]struct{}),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		chatService:    chatService,
		messageService: messageService,
		logger:         log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	displaced := h.registry.Register(client)
	if displaced != nil {
		// The user opened a second connection; the first one is told to
		// log out and dropped.
		h.detachFromRoom(displaced, false)
		h.trySend(displaced, dto.EventForceLogout, dto.ErrorPayload{Message: "logged in from another connection"})
		displaced.close()
	}
	h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})
}

func (h *Hub) handleUnregister(client *Client) {
	// A connection the registry does not know (already displaced, or never
	// registered) disconnects without side effects.
	if !h.registry.Remove(client) {
		// It may still hold a room slot from a join that raced the
		// displacement; the replacement connection owns the presence.
		h.detachFromRoom(client, false)
		return
	}

	h.detachFromRoom(client, true)
	client.close()
	h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
}

// detachFromRoom removes the client from its current room. When notify is
// set, the remaining members are told the user disconnected.
func (h *Hub) detachFromRoom(client *Client, notify bool) {
	h.mu.Lock()
	roomId := client.room
	if roomId != uuid.Nil {
		client.room = uuid.Nil
		if members, ok := h.rooms[roomId]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, roomId)
			}
		}
	}
	h.mu.Unlock()

	if notify && roomId != uuid.Nil {
		h.BroadcastToRoom(roomId, dto.EventUserDisconnected, dto.PresencePayload{
			ChatId: roomId,
			UserId: client.UserID,
		})
	}
}

// Dispatch routes an inbound envelope. Called from the client's read
// goroutine; failures go back to the origin connection only.
func (h *Hub) Dispatch(client *Client, envelope dto.SocketEnvelope) {
	switch envelope.Event {
	case dto.EventRegisterUser:
		h.handleRegisterUser(client, envelope.Data)
	case dto.EventJoinChat:
		h.handleJoinChat(client, envelope.Data)
	case dto.EventSendMessage:
		h.handleSendMessage(client, envelope.Data)
	default:
		client.SendEvent(dto.EventError, dto.ErrorPayload{Message: "unknown event: " + envelope.Event})
	}
}

func (h *Hub) handleRegisterUser(client *Client, data json.RawMessage) {
	var payload dto.RegisterUserPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.SendEvent(dto.EventError, dto.ErrorPayload{Message: "malformed registerUser payload"})
		return
	}
	if payload.UserId != uuid.Nil && payload.UserId != client.UserID {
		client.SendEvent(dto.EventError, dto.ErrorPayload{Message: "user ID does not match authenticated connection"})
		return
	}
	// The connection was registered at handshake; re-registering the same
	// connection is a no-op.
	h.register <- client
}

func (h *Hub) handleJoinChat(client *Client, data json.RawMessage) {
	var payload dto.JoinChatPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.SendEvent(dto.EventError, dto.ErrorPayload{Message: "malformed joinChat payload"})
		return
	}

	chatId, err := h.chatService.AuthorizeJoin(context.Background(), payload.ChatId, client.UserID)
	if err != nil {
		client.SendEvent(dto.EventError, dto.ErrorPayload{Message: errorMessage(err)})
		return
	}

	// One room at a time: joining a chat leaves the previous one.
	h.detachFromRoom(client, true)

	h.mu.Lock()
	// A connection displaced while the join was in flight must not
	// re-enter the room index.
	if !h.registry.Registered(client) {
		h.mu.Unlock()
		return
	}
	if h.rooms[chatId] == nil {
		h.rooms[chatId] = make(map[*Client]struct{})
	}
	h.rooms[chatId][client] = struct{}{}
	client.room = chatId
	h.mu.Unlock()

	h.BroadcastToRoom(chatId, dto.EventUserJoined, dto.PresencePayload{
		ChatId: chatId,
		UserId: client.UserID,
	})
}

func (h *Hub) handleSendMessage(client *Client, data json.RawMessage) {
	var payload dto.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.SendEvent(dto.EventError, dto.ErrorPayload{Message: "malformed sendMessage payload"})
		return
	}

	// Delivery to the room happens through the broadcast pipeline once the
	// message is committed; only failures surface here.
	if _, err := h.messageService.Send(context.Background(), payload.ChatId, client.UserID, payload.Content); err != nil {
		client.SendEvent(dto.EventError, dto.ErrorPayload{Message: errorMessage(err)})
	}
}

// BroadcastToRoom fans an event out to every client joined to the chat.
func (h *Hub) BroadcastToRoom(chatId uuid.UUID, event string, payload interface{}) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[chatId]))
	for client := range h.rooms[chatId] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		client.SendEvent(event, payload)
	}
}

// NotifyChatActivity nudges online participants who are neither the sender
// nor currently joined to the chat's room.
func (h *Hub) NotifyChatActivity(participants []uuid.UUID, senderId uuid.UUID, payload dto.ChatActivityPayload) {
	for _, userId := range participants {
		if userId == senderId {
			continue
		}
		client, ok := h.registry.Lookup(userId)
		if !ok {
			continue
		}

		h.mu.RLock()
		inRoom := client.room == payload.ChatId
		h.mu.RUnlock()
		if inRoom {
			continue
		}

		client.SendEvent(dto.EventChatActivity, payload)
	}
}

// trySend delivers without the unregister fallback; used from the run loop
// for connections that are being dropped anyway.
func (h *Hub) trySend(client *Client, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	frame, err := json.Marshal(dto.SocketEnvelope{Event: event, Data: data})
	if err != nil {
		return
	}
	client.enqueue(frame)
}

func errorMessage(err error) string {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
		return appErr.Message
	}
	return "internal error"
}
