package cache

import (
	"context"
	"encoding/json"

	"realtime-chat-be/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisProfileCache shares the hot-path cache between instances. Errors are
// treated as misses; Redis being down must never fail a send.
type RedisProfileCache struct {
	rdb *redis.Client
}

func NewRedisProfileCache(rdb *redis.Client) *RedisProfileCache {
	return &RedisProfileCache{rdb: rdb}
}

func (c *RedisProfileCache) GetUserSummary(ctx context.Context, userId uuid.UUID) (dto.UserSummary, bool) {
	raw, err := c.rdb.Get(ctx, userKey(userId)).Bytes()
	if err != nil {
		return dto.UserSummary{}, false
	}
	var summary dto.UserSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return dto.UserSummary{}, false
	}
	return summary, true
}

func (c *RedisProfileCache) SetUserSummary(ctx context.Context, summary dto.UserSummary) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, userKey(summary.Id), raw, DefaultTTL)
}

func (c *RedisProfileCache) GetParticipants(ctx context.Context, chatId uuid.UUID) ([]uuid.UUID, bool) {
	raw, err := c.rdb.Get(ctx, participantsKey(chatId)).Bytes()
	if err != nil {
		return nil, false
	}
	var participants []uuid.UUID
	if err := json.Unmarshal(raw, &participants); err != nil {
		return nil, false
	}
	return participants, true
}

func (c *RedisProfileCache) SetParticipants(ctx context.Context, chatId uuid.UUID, participants []uuid.UUID) {
	raw, err := json.Marshal(participants)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, participantsKey(chatId), raw, DefaultTTL)
}

func (c *RedisProfileCache) InvalidateParticipants(ctx context.Context, chatId uuid.UUID) {
	c.rdb.Del(ctx, participantsKey(chatId))
}
