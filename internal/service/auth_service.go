package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"time"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/apperror"
	"realtime-chat-be/internal/pkg/mailer"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/pkg/events"
	pktNats "realtime-chat-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const otpValidity = time.Hour

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService, eventPublisher *pktNats.Publisher) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
	}
}

// generateOTP returns a 4-digit code in [1000, 9999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Internal("failed to check existing user", err)
	}
	if existing != nil {
		return nil, apperror.InvalidArgument("user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Verified:     false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	otpCode, err := generateOTP()
	if err != nil {
		return nil, apperror.Internal("failed to generate otp", err)
	}

	// User and OTP record are created atomically.
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal("failed to begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, apperror.Internal("failed to create user", err)
	}

	token := &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Otp:       otpCode,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(otpValidity),
	}

	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, token); err != nil {
		return nil, apperror.Internal("failed to create verification token", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal("failed to commit registration", err)
	}

	go func() {
		if emailErr := s.emailService.SendOTP(user.Email, otpCode); emailErr != nil {
			fmt.Printf("Error sending registration email: %v\n", emailErr)
		}
	}()

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewUserRegistered(user.Id, user.Email))
	}

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.UserId})
	if err != nil {
		return apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return apperror.NotFound("user not found")
	}

	if user.Verified {
		return nil
	}

	// Several OTP records may exist for the user; the most recent matching
	// one wins. Stale records are left in place.
	token, err := uow.UserRepository().FindLatestVerificationToken(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByOtp{Otp: req.Otp},
	)
	if err != nil {
		return apperror.Internal("failed to load verification token", err)
	}
	if token == nil {
		return apperror.InvalidArgument("invalid otp")
	}

	if time.Now().After(token.ExpiresAt) {
		return apperror.InvalidArgument("otp has expired")
	}

	if err := uow.UserRepository().MarkVerified(ctx, user.Id); err != nil {
		return apperror.Internal("failed to mark user verified", err)
	}

	return nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if !user.Verified {
		return nil, apperror.Unauthorized("please verify your email first")
	}

	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, apperror.Internal("failed to sign token", err)
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		UserId:      user.Id,
		Name:        user.Name,
	}, nil
}
