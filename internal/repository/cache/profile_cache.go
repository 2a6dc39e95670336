package cache

import (
	"context"
	"time"

	"realtime-chat-be/internal/dto"

	"github.com/google/uuid"
)

const (
	// Hot-path entries are short lived; membership changes invalidate
	// explicitly, names simply age out.
	DefaultTTL = 5 * time.Minute
)

// ProfileCache fronts the user/chat lookups on the send and join hot path:
// sender display names and chat participant sets. A miss returns ok=false,
// never an error; callers fall through to the repositories.
type ProfileCache interface {
	GetUserSummary(ctx context.Context, userId uuid.UUID) (dto.UserSummary, bool)
	SetUserSummary(ctx context.Context, summary dto.UserSummary)

	GetParticipants(ctx context.Context, chatId uuid.UUID) ([]uuid.UUID, bool)
	SetParticipants(ctx context.Context, chatId uuid.UUID, participants []uuid.UUID)
	InvalidateParticipants(ctx context.Context, chatId uuid.UUID)
}
