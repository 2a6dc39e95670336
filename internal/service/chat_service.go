package service

import (
	"context"

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

const minGroupParticipants = 3

type IChatService interface {
	CreateChat(ctx context.Context, creatorId uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error)
	CreateGroupChat(ctx context.Context, creatorId uuid.UUID, req *dto.CreateGroupChatRequest) (*dto.ChatResponse, error)
	AddUserToGroup(ctx context.Context, adminId, groupId, userId uuid.UUID) (*dto.ChatResponse, error)
	ListChats(ctx context.Context, userId uuid.UUID) ([]dto.ChatResponse, error)
	GetChat(ctx context.Context, userId uuid.UUID, chatId string) (*dto.ChatResponse, error)
	GetMessages(ctx context.Context, userId uuid.UUID, chatId string, page, limit int) (*dto.MessagePageResponse, error)

	// AuthorizeJoin validates a room-join attempt: well-formed id, chat
	// exists, user is a participant. Joining never creates a chat.
	AuthorizeJoin(ctx context.Context, chatId string, userId uuid.UUID) (uuid.UUID, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	profileCache   cache.ProfileCache
	eventPublisher *pktNats.Publisher
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, profileCache cache.ProfileCache, eventPublisher *pktNats.Publisher) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		profileCache:   profileCache,
		eventPublisher: eventPublisher,
	}
}

// dedupe keeps the first occurrence of each id, preserving order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *chatService) CreateChat(ctx context.Context, creatorId uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	participants := dedupe(append(req.Participants, creatorId))
	if len(participants) < 2 {
		return nil, apperror.InvalidArgument("at least two participants required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Create-or-fetch: a pair of users shares at most one direct chat.
	existing, err := uow.ChatRepository().FindByExactParticipants(ctx, participants)
	if err != nil {
		return nil, apperror.Internal("failed to look up chat", err)
	}
	if existing != nil {
		return s.toChatResponse(ctx, existing)
	}

	chat := &entity.Chat{
		Id:           uuid.New(),
		Participants: participants,
	}
	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		return nil, apperror.Internal("failed to create chat", err)
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewChatCreated(chat.Id, creatorId, false))
	}

	return s.toChatResponse(ctx, chat)
}

func (s *chatService) CreateGroupChat(ctx context.Context, creatorId uuid.UUID, req *dto.CreateGroupChatRequest) (*dto.ChatResponse, error) {
	participants := dedupe(append(req.Users, creatorId))
	if len(participants) < minGroupParticipants {
		return nil, apperror.InvalidArgument("a group must have at least 3 participants")
	}

	groupName := req.GroupName
	chat := &entity.Chat{
		Id:           uuid.New(),
		Participants: participants,
		IsGroupChat:  true,
		GroupName:    &groupName,
		Admins:       []uuid.UUID{creatorId},
		Metadata:     req.Metadata,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		return nil, apperror.Internal("failed to create group chat", err)
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewChatCreated(chat.Id, creatorId, true))
	}

	return s.toChatResponse(ctx, chat)
}

func (s *chatService) AddUserToGroup(ctx context.Context, adminId, groupId, userId uuid.UUID) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByID{ID: groupId})
	if err != nil {
		return nil, apperror.Internal("failed to load chat", err)
	}
	if chat == nil {
		return nil, apperror.NotFound("chat not found")
	}
	if !chat.IsGroupChat || !chat.HasAdmin(adminId) {
		return nil, apperror.Forbidden("only a group admin can add participants")
	}

	if !chat.HasParticipant(userId) {
		if err := uow.ChatRepository().AddParticipant(ctx, chat.Id, userId); err != nil {
			return nil, apperror.Internal("failed to add participant", err)
		}
		chat.Participants = append(chat.Participants, userId)
		s.profileCache.InvalidateParticipants(ctx, chat.Id)
	}

	return s.toChatResponse(ctx, chat)
}

func (s *chatService) ListChats(ctx context.Context, userId uuid.UUID) ([]dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.ChatRepository().FindAll(ctx, specification.ParticipatedBy{UserID: userId})
	if err != nil {
		return nil, apperror.Internal("failed to list chats", err)
	}

	responses := make([]dto.ChatResponse, 0, len(chats))
	for _, chat := range chats {
		resp, err := s.toChatResponse(ctx, chat)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *chatService) GetChat(ctx context.Context, userId uuid.UUID, chatId string) (*dto.ChatResponse, error) {
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
	if !chat.HasParticipant(userId) {
		return nil, apperror.Forbidden("you are not a participant in this chat")
	}

	return s.toChatResponse(ctx, chat)
}

func (s *chatService) GetMessages(ctx context.Context, userId uuid.UUID, chatId string, page, limit int) (*dto.MessagePageResponse, error) {
	id, err := uuid.Parse(chatId)
	if err != nil {
		return nil, apperror.InvalidArgument("invalid chat ID format")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Internal("failed to load chat", err)
	}
	if chat == nil {
		return nil, apperror.NotFound("chat not found")
	}
	if !chat.HasParticipant(userId) {
		return nil, apperror.Forbidden("you are not a participant in this chat")
	}

	messages, err := uow.MessageRepository().FindByChat(ctx, id, limit, (page-1)*limit)
	if err != nil {
		return nil, apperror.Internal("failed to load messages", err)
	}
	total, err := uow.MessageRepository().CountByChat(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to count messages", err)
	}

	responses := make([]dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		sender := s.resolveSummary(ctx, uow, msg.SenderId)
		responses = append(responses, dto.MessageResponse{
			Id:        msg.Id,
			ChatId:    msg.ChatId,
			Sender:    sender,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return &dto.MessagePageResponse{
		Messages: responses,
		Page:     page,
		Limit:    limit,
		Total:    total,
	}, nil
}

func (s *chatService) AuthorizeJoin(ctx context.Context, chatId string, userId uuid.UUID) (uuid.UUID, error) {
	id, err := uuid.Parse(chatId)
	if err != nil {
		return uuid.Nil, apperror.InvalidArgument("invalid chat ID format")
	}

	// Membership is checked against the cached participant set when warm.
	if participants, ok := s.profileCache.GetParticipants(ctx, id); ok {
		for _, p := range participants {
			if p == userId {
				return id, nil
			}
		}
		return uuid.Nil, apperror.Forbidden("you are not a participant in this chat")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return uuid.Nil, apperror.Internal("failed to load chat", err)
	}
	if chat == nil {
		return uuid.Nil, apperror.NotFound("chat not found")
	}

	s.profileCache.SetParticipants(ctx, id, chat.Participants)

	if !chat.HasParticipant(userId) {
		return uuid.Nil, apperror.Forbidden("you are not a participant in this chat")
	}
	return id, nil
}

func (s *chatService) resolveSummary(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) dto.UserSummary {
	if summary, ok := s.profileCache.GetUserSummary(ctx, userId); ok {
		return summary
	}

	summary := dto.UserSummary{Id: userId}
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err == nil && user != nil {
		summary.Name = user.Name
		s.profileCache.SetUserSummary(ctx, summary)
	}
	return summary
}

func (s *chatService) toChatResponse(ctx context.Context, chat *entity.Chat) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	participants := make([]dto.UserSummary, 0, len(chat.Participants))
	for _, p := range chat.Participants {
		participants = append(participants, s.resolveSummary(ctx, uow, p))
	}

	resp := &dto.ChatResponse{
		Id:           chat.Id,
		IsGroupChat:  chat.IsGroupChat,
		GroupName:    chat.GroupName,
		Participants: participants,
		Admins:       chat.Admins,
		CreatedAt:    chat.CreatedAt,
	}

	if chat.LastMessageId != nil {
		msg, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: *chat.LastMessageId})
		if err == nil && msg != nil {
			resp.LastMessage = &dto.MessageResponse{
				Id:        msg.Id,
				ChatId:    msg.ChatId,
				Sender:    s.resolveSummary(ctx, uow, msg.SenderId),
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
			}
		}
	}

	return resp, nil
}
