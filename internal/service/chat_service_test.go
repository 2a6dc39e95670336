package service

import (
	"context"
	"testing"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture() (*fakeStore, *fakeProfileCache, IChatService) {
	store := newFakeStore()
	cache := newFakeProfileCache()
	svc := NewChatService(&fakeFactory{store: store}, cache, nil)
	return store, cache, svc
}

func seedUser(store *fakeStore, name string) uuid.UUID {
	id := uuid.New()
	store.users[id] = &entity.User{Id: id, Name: name, Email: name + "@example.com", Verified: true}
	return id
}

func TestCreateChatIsIdempotentPerPair(t *testing.T) {
	store, _, svc := newChatFixture()
	alice := seedUser(store, "alice")
	bob := seedUser(store, "bob")

	first, err := svc.CreateChat(context.Background(), alice, &dto.CreateChatRequest{Participants: []uuid.UUID{bob}})
	require.NoError(t, err)

	second, err := svc.CreateChat(context.Background(), alice, &dto.CreateChatRequest{Participants: []uuid.UUID{bob}})
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Len(t, store.chats, 1)
	assert.Len(t, first.Participants, 2)
}

func TestCreateChatRejectsSelfOnly(t *testing.T) {
	store, _, svc := newChatFixture()
	alice := seedUser(store, "alice")

	_, err := svc.CreateChat(context.Background(), alice, &dto.CreateChatRequest{Participants: []uuid.UUID{alice}})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
}

func TestCreateGroupChat(t *testing.T) {
	store, _, svc := newChatFixture()
	alice := seedUser(store, "alice")
	bob := seedUser(store, "bob")
	carol := seedUser(store, "carol")

	t.Run("two members is not a group", func(t *testing.T) {
		_, err := svc.CreateGroupChat(context.Background(), alice, &dto.CreateGroupChatRequest{
			GroupName: "Pair",
			Users:     []uuid.UUID{bob},
		})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	})

	t.Run("creator becomes admin", func(t *testing.T) {
		res, err := svc.CreateGroupChat(context.Background(), alice, &dto.CreateGroupChatRequest{
			GroupName: "Team",
			Users:     []uuid.UUID{bob, carol},
		})
		require.NoError(t, err)
		assert.True(t, res.IsGroupChat)
		require.NotNil(t, res.GroupName)
		assert.Equal(t, "Team", *res.GroupName)
		assert.Equal(t, []uuid.UUID{alice}, res.Admins)
		assert.Len(t, res.Participants, 3)
	})
}

func TestAddUserToGroup(t *testing.T) {
	store, cache, svc := newChatFixture()
	alice := seedUser(store, "alice")
	bob := seedUser(store, "bob")
	carol := seedUser(store, "carol")
	dave := seedUser(store, "dave")

	group, err := svc.CreateGroupChat(context.Background(), alice, &dto.CreateGroupChatRequest{
		GroupName: "Team",
		Users:     []uuid.UUID{bob, carol},
	})
	require.NoError(t, err)

	t.Run("non-admin refused", func(t *testing.T) {
		_, err := svc.AddUserToGroup(context.Background(), bob, group.Id, dave)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("admin adds and cache invalidated", func(t *testing.T) {
		cache.SetParticipants(context.Background(), group.Id, []uuid.UUID{alice, bob, carol})

		res, err := svc.AddUserToGroup(context.Background(), alice, group.Id, dave)
		require.NoError(t, err)
		assert.Len(t, res.Participants, 4)

		_, ok := cache.GetParticipants(context.Background(), group.Id)
		assert.False(t, ok, "participant cache should be invalidated")
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := svc.AddUserToGroup(context.Background(), alice, uuid.New(), dave)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestGetChatAccessControl(t *testing.T) {
	store, _, svc := newChatFixture()
	alice := seedUser(store, "alice")
	bob := seedUser(store, "bob")
	eve := seedUser(store, "eve")

	chat, err := svc.CreateChat(context.Background(), alice, &dto.CreateChatRequest{Participants: []uuid.UUID{bob}})
	require.NoError(t, err)

	t.Run("participant sees chat", func(t *testing.T) {
		res, err := svc.GetChat(context.Background(), bob, chat.Id.String())
		require.NoError(t, err)
		assert.Equal(t, chat.Id, res.Id)
	})

	t.Run("outsider forbidden", func(t *testing.T) {
		_, err := svc.GetChat(context.Background(), eve, chat.Id.String())
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.GetChat(context.Background(), alice, "not-a-uuid")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetChat(context.Background(), alice, uuid.NewString())
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestListChatsOnlyMine(t *testing.T) {
	store, _, svc := newChatFixture()
	alice := seedUser(store, "alice")
	bob := seedUser(store, "bob")
	carol := seedUser(store, "carol")

	_, err := svc.CreateChat(context.Background(), alice, &dto.CreateChatRequest{Participants: []uuid.UUID{bob}})
	require.NoError(t, err)
	_, err = svc.CreateChat(context.Background(), bob, &dto.CreateChatRequest{Participants: []uuid.UUID{carol}})
	require.NoError(t, err)

	mine, err := svc.ListChats(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListChats(context.Background(), bob)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAuthorizeJoin(t *testing.T) {
	store, cache, svc := newChatFixture()
	alice := seedUser(store, "alice")
	bob := seedUser(store, "bob")
	eve := seedUser(store, "eve")

	chat, err := svc.CreateChat(context.Background(), alice, &dto.CreateChatRequest{Participants: []uuid.UUID{bob}})
	require.NoError(t, err)

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.AuthorizeJoin(context.Background(), "garbage", alice)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	})

	t.Run("unknown chat", func(t *testing.T) {
		_, err := svc.AuthorizeJoin(context.Background(), uuid.NewString(), alice)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("non-participant", func(t *testing.T) {
		_, err := svc.AuthorizeJoin(context.Background(), chat.Id.String(), eve)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("participant admitted and cache warmed", func(t *testing.T) {
		id, err := svc.AuthorizeJoin(context.Background(), chat.Id.String(), alice)
		require.NoError(t, err)
		assert.Equal(t, chat.Id, id)

		cached, ok := cache.GetParticipants(context.Background(), chat.Id)
		assert.True(t, ok)
		assert.Len(t, cached, 2)
	})

	t.Run("warm cache still refuses outsiders", func(t *testing.T) {
		_, err := svc.AuthorizeJoin(context.Background(), chat.Id.String(), eve)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})
}

func TestGetMessagesPagination(t *testing.T) {
	store, cache, svc := newChatFixture()
	alice := seedUser(store, "alice")
	bob := seedUser(store, "bob")

	chat, err := svc.CreateChat(context.Background(), alice, &dto.CreateChatRequest{Participants: []uuid.UUID{bob}})
	require.NoError(t, err)

	pub := &fakePublisher{}
	msgSvc := NewMessageService(&fakeFactory{store: store}, cache, pub, nil)
	for i := 0; i < 5; i++ {
		_, err := msgSvc.Send(context.Background(), chat.Id.String(), alice, "hello")
		require.NoError(t, err)
	}

	page, err := svc.GetMessages(context.Background(), alice, chat.Id.String(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Messages, 2)
	assert.EqualValues(t, 5, page.Total)

	last, err := svc.GetMessages(context.Background(), alice, chat.Id.String(), 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Messages, 1)

	_, err = svc.GetMessages(context.Background(), bob, chat.Id.String(), 1, 2)
	assert.NoError(t, err)
}
