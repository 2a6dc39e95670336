package service

import (
	"context"
	"strings"
	"sync"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory doubles for the repository contracts. They interpret the
// specification values the services actually pass instead of translating
// them to SQL.

type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*entity.User
	tokens   []*entity.EmailVerificationToken
	chats    map[uuid.UUID]*entity.Chat
	messages []*entity.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[uuid.UUID]*entity.User),
		chats: make(map[uuid.UUID]*entity.Chat),
	}
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{store: f.store}
}

type fakeUoW struct {
	store *fakeStore
}

func (u *fakeUoW) Begin(ctx context.Context) error { return nil }
func (u *fakeUoW) Commit() error                   { return nil }
func (u *fakeUoW) Rollback() error                 { return nil }

func (u *fakeUoW) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUoW) ChatRepository() contract.ChatRepository {
	return &fakeChatRepo{store: u.store}
}

func (u *fakeUoW) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if userMatches(user, specs) {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.User
	for _, user := range r.store.users {
		if userMatches(user, specs) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeUserRepo) CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.tokens = append(r.store.tokens, token)
	return nil
}

func (r *fakeUserRepo) FindLatestVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var latest *entity.EmailVerificationToken
	for _, token := range r.store.tokens {
		if !tokenMatches(token, specs) {
			continue
		}
		if latest == nil || token.CreatedAt.After(latest.CreatedAt) {
			latest = token
		}
	}
	return latest, nil
}

func (r *fakeUserRepo) MarkVerified(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if user, ok := r.store.users[userId]; ok {
		user.Verified = true
	}
	return nil
}

func (r *fakeUserRepo) SearchByName(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.User
	for _, user := range r.store.users {
		if strings.Contains(strings.ToLower(user.Name), strings.ToLower(query)) {
			out = append(out, user)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func userMatches(user *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if user.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if user.Email != s.Email {
				return false
			}
		}
	}
	return true
}

func tokenMatches(token *entity.EmailVerificationToken, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.UserOwnedBy:
			if token.UserId != s.UserID {
				return false
			}
		case specification.ByOtp:
			if token.Otp != s.Otp {
				return false
			}
		}
	}
	return true
}

type fakeChatRepo struct {
	store *fakeStore
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.chats[chat.Id] = chat
	return nil
}

func (r *fakeChatRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, chat := range r.store.chats {
		if chatMatches(chat, specs) {
			return detachedChat(chat), nil
		}
	}
	return nil, nil
}

// detachedChat copies a stored chat so callers cannot alias the store,
// mirroring the real repository, which maps every read into a fresh entity.
func detachedChat(chat *entity.Chat) *entity.Chat {
	out := *chat
	out.Participants = append([]uuid.UUID(nil), chat.Participants...)
	out.Admins = append([]uuid.UUID(nil), chat.Admins...)
	return &out
}

func (r *fakeChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Chat
	for _, chat := range r.store.chats {
		if chatMatches(chat, specs) {
			out = append(out, chat)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) FindByExactParticipants(ctx context.Context, participants []uuid.UUID) (*entity.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	want := make(map[uuid.UUID]struct{}, len(participants))
	for _, p := range participants {
		want[p] = struct{}{}
	}
	for _, chat := range r.store.chats {
		if chat.IsGroupChat || len(chat.Participants) != len(want) {
			continue
		}
		all := true
		for _, p := range chat.Participants {
			if _, ok := want[p]; !ok {
				all = false
				break
			}
		}
		if all {
			return chat, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRepo) AddParticipant(ctx context.Context, chatId, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if chat, ok := r.store.chats[chatId]; ok {
		chat.Participants = append(chat.Participants, userId)
	}
	return nil
}

func (r *fakeChatRepo) UpdateLastMessage(ctx context.Context, chatId, messageId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if chat, ok := r.store.chats[chatId]; ok {
		id := messageId
		chat.LastMessageId = &id
	}
	return nil
}

func chatMatches(chat *entity.Chat, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if chat.Id != s.ID {
				return false
			}
		case specification.ParticipatedBy:
			if !chat.HasParticipant(s.UserID) {
				return false
			}
		case specification.GroupChatsOnly:
			if !chat.IsGroupChat {
				return false
			}
		}
	}
	return true
}

type fakeMessageRepo struct {
	store *fakeStore
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.messages = append(r.store.messages, message)
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, msg := range r.store.messages {
		match := true
		for _, spec := range specs {
			if s, ok := spec.(specification.ByID); ok && msg.Id != s.ID {
				match = false
			}
		}
		if match {
			return msg, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) FindByChat(ctx context.Context, chatId uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matching []*entity.Message
	for i := len(r.store.messages) - 1; i >= 0; i-- { // newest first
		if r.store.messages[i].ChatId == chatId {
			matching = append(matching, r.store.messages[i])
		}
	}
	if offset >= len(matching) {
		return nil, nil
	}
	matching = matching[offset:]
	if len(matching) > limit {
		matching = matching[:limit]
	}
	return matching, nil
}

func (r *fakeMessageRepo) CountByChat(ctx context.Context, chatId uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, msg := range r.store.messages {
		if msg.ChatId == chatId {
			n++
		}
	}
	return n, nil
}

// fakeProfileCache is a plain map-backed ProfileCache.
type fakeProfileCache struct {
	mu           sync.Mutex
	summaries    map[uuid.UUID]dto.UserSummary
	participants map[uuid.UUID][]uuid.UUID
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{
		summaries:    make(map[uuid.UUID]dto.UserSummary),
		participants: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (c *fakeProfileCache) GetUserSummary(ctx context.Context, userId uuid.UUID) (dto.UserSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.summaries[userId]
	return s, ok
}

func (c *fakeProfileCache) SetUserSummary(ctx context.Context, summary dto.UserSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries[summary.Id] = summary
}

func (c *fakeProfileCache) GetParticipants(ctx context.Context, chatId uuid.UUID) ([]uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.participants[chatId]
	return p, ok
}

func (c *fakeProfileCache) SetParticipants(ctx context.Context, chatId uuid.UUID, participants []uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.participants[chatId] = participants
}

func (c *fakeProfileCache) InvalidateParticipants(ctx context.Context, chatId uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.participants, chatId)
}

// fakePublisher records broadcast payloads instead of publishing them.
type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.payloads...)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeMailer records OTPs handed to it.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendOTP(to, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, otp)
	return nil
}
