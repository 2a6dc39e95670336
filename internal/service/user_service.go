package service

import (
	"context"
	"strings"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/apperror"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	SearchByName(ctx context.Context, query string) ([]dto.UserSummary, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	return &dto.UserProfileResponse{
		Id:        user.Id,
		Email:     user.Email,
		Name:      user.Name,
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *userService) SearchByName(ctx context.Context, query string) ([]dto.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.UserSummary{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	users, err := uow.UserRepository().SearchByName(ctx, query, 25)
	if err != nil {
		return nil, apperror.Internal("failed to search users", err)
	}

	results := make([]dto.UserSummary, 0, len(users))
	for _, u := range users {
		results = append(results, dto.UserSummary{Id: u.Id, Name: u.Name})
	}
	return results, nil
}
