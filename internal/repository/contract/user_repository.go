package contract

import (
	"context"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// OTP records. FindLatestVerificationToken returns the most recent
	// matching record; stale records are never deleted.
	CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error
	FindLatestVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error)

	MarkVerified(ctx context.Context, userId uuid.UUID) error
	SearchByName(ctx context.Context, query string, limit int) ([]*entity.User, error)
}
