package cache

import (
	"context"

	"realtime-chat-be/internal/dto"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryProfileCache is the in-process fallback used when no Redis URL is
// configured. Suitable for a single instance.
type MemoryProfileCache struct {
	cache *gocache.Cache
}

func NewMemoryProfileCache() *MemoryProfileCache {
	return &MemoryProfileCache{
		cache: gocache.New(DefaultTTL, 10*DefaultTTL),
	}
}

func (c *MemoryProfileCache) GetUserSummary(_ context.Context, userId uuid.UUID) (dto.UserSummary, bool) {
	if x, found := c.cache.Get(userKey(userId)); found {
		return x.(dto.UserSummary), true
	}
	return dto.UserSummary{}, false
}

func (c *MemoryProfileCache) SetUserSummary(_ context.Context, summary dto.UserSummary) {
	c.cache.Set(userKey(summary.Id), summary, gocache.DefaultExpiration)
}

func (c *MemoryProfileCache) GetParticipants(_ context.Context, chatId uuid.UUID) ([]uuid.UUID, bool) {
	if x, found := c.cache.Get(participantsKey(chatId)); found {
		return x.([]uuid.UUID), true
	}
	return nil, false
}

func (c *MemoryProfileCache) SetParticipants(_ context.Context, chatId uuid.UUID, participants []uuid.UUID) {
	c.cache.Set(participantsKey(chatId), participants, gocache.DefaultExpiration)
}

func (c *MemoryProfileCache) InvalidateParticipants(_ context.Context, chatId uuid.UUID) {
	c.cache.Delete(participantsKey(chatId))
}

func userKey(userId uuid.UUID) string {
	return "user:" + userId.String()
}

func participantsKey(chatId uuid.UUID) string {
	return "chat_participants:" + chatId.String()
}
