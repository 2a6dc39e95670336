package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	mu      sync.Mutex
	members map[uuid.UUID][]uuid.UUID // chatId -> participants
}

func newStubChatService() *stubChatService {
	return &stubChatService{members: make(map[uuid.UUID][]uuid.UUID)}
}

func (s *stubChatService) addChat(chatId uuid.UUID, participants ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[chatId] = participants
}

func (s *stubChatService) AuthorizeJoin(ctx context.Context, chatId string, userId uuid.UUID) (uuid.UUID, error) {
	id, err := uuid.Parse(chatId)
	if err != nil {
		return uuid.Nil, apperror.InvalidArgument("invalid chat ID format")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	participants, ok := s.members[id]
	if !ok {
		return uuid.Nil, apperror.NotFound("chat not found")
	}
	for _, p := range participants {
		if p == userId {
			return id, nil
		}
	}
	return uuid.Nil, apperror.Forbidden("you are not a participant in this chat")
}

func (s *stubChatService) CreateChat(ctx context.Context, creatorId uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	return nil, nil
}

func (s *stubChatService) CreateGroupChat(ctx context.Context, creatorId uuid.UUID, req *dto.CreateGroupChatRequest) (*dto.ChatResponse, error) {
	return nil, nil
}

func (s *stubChatService) AddUserToGroup(ctx context.Context, adminId, groupId, userId uuid.UUID) (*dto.ChatResponse, error) {
	return nil, nil
}

func (s *stubChatService) ListChats(ctx context.Context, userId uuid.UUID) ([]dto.ChatResponse, error) {
	return nil, nil
}

func (s *stubChatService) GetChat(ctx context.Context, userId uuid.UUID, chatId string) (*dto.ChatResponse, error) {
	return nil, nil
}

func (s *stubChatService) GetMessages(ctx context.Context, userId uuid.UUID, chatId string, page, limit int) (*dto.MessagePageResponse, error) {
	return nil, nil
}

type stubMessageService struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *stubMessageService) Send(ctx context.Context, chatId string, senderId uuid.UUID, content string) (*dto.BroadcastMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, content)
	return &dto.BroadcastMessage{ChatId: uuid.MustParse(chatId), Content: content}, nil
}

type testLogger struct{}

func (testLogger) Debug(module, message string, details map[string]interface{}) {}
func (testLogger) Info(module, message string, details map[string]interface{})  {}
func (testLogger) Warn(module, message string, details map[string]interface{})  {}
func (testLogger) Error(module, message string, details map[string]interface{}) {}
func (testLogger) Sync() error                                                  { return nil }

func newTestHub(chats *stubChatService, messages *stubMessageService) *Hub {
	hub := NewHub(NewRegistry(), chats, messages, testLogger{})
	go hub.Run()
	return hub
}

func connect(t *testing.T, hub *Hub, userId uuid.UUID) *Client {
	t.Helper()
	client := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 16)}
	hub.register <- client
	require.Eventually(t, func() bool { return hub.registry.Registered(client) },
		time.Second, 5*time.Millisecond)
	return client
}

// readEvent pops the next frame off the client's buffer.
func readEvent(t *testing.T, client *Client) dto.SocketEnvelope {
	t.Helper()
	select {
	case frame, ok := <-client.Send:
		require.True(t, ok, "send channel closed")
		var envelope dto.SocketEnvelope
		require.NoError(t, json.Unmarshal(frame, &envelope))
		return envelope
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return dto.SocketEnvelope{}
	}
}

func assertNoEvent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case frame := <-client.Send:
		t.Fatalf("unexpected event: %s", frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func join(t *testing.T, hub *Hub, client *Client, chatId uuid.UUID) {
	t.Helper()
	data, _ := json.Marshal(dto.JoinChatPayload{ChatId: chatId.String(), UserId: client.UserID})
	hub.Dispatch(client, dto.SocketEnvelope{Event: dto.EventJoinChat, Data: data})
}

func TestJoinChatBroadcastsPresence(t *testing.T) {
	chats := newStubChatService()
	hub := newTestHub(chats, &stubMessageService{})

	alice, bob := uuid.New(), uuid.New()
	chatId := uuid.New()
	chats.addChat(chatId, alice, bob)

	aliceConn := connect(t, hub, alice)
	bobConn := connect(t, hub, bob)

	join(t, hub, aliceConn, chatId)
	evt := readEvent(t, aliceConn)
	assert.Equal(t, dto.EventUserJoined, evt.Event)

	join(t, hub, bobConn, chatId)

	// Both room members see bob arrive.
	var presence dto.PresencePayload
	evt = readEvent(t, aliceConn)
	require.Equal(t, dto.EventUserJoined, evt.Event)
	require.NoError(t, json.Unmarshal(evt.Data, &presence))
	assert.Equal(t, bob, presence.UserId)
	assert.Equal(t, chatId, presence.ChatId)

	evt = readEvent(t, bobConn)
	assert.Equal(t, dto.EventUserJoined, evt.Event)
}

func TestJoinChatFailuresGoToOriginOnly(t *testing.T) {
	chats := newStubChatService()
	hub := newTestHub(chats, &stubMessageService{})

	alice, bob, eve := uuid.New(), uuid.New(), uuid.New()
	chatId := uuid.New()
	chats.addChat(chatId, alice, bob)

	aliceConn := connect(t, hub, alice)
	eveConn := connect(t, hub, eve)

	join(t, hub, aliceConn, chatId)
	readEvent(t, aliceConn) // own userJoined

	cases := []struct {
		name   string
		chatId string
	}{
		{"malformed id", "not-a-uuid"},
		{"unknown chat", uuid.NewString()},
		{"not a participant", chatId.String()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, _ := json.Marshal(dto.JoinChatPayload{ChatId: tc.chatId, UserId: eve})
			hub.Dispatch(eveConn, dto.SocketEnvelope{Event: dto.EventJoinChat, Data: data})

			evt := readEvent(t, eveConn)
			assert.Equal(t, dto.EventError, evt.Event)
			assertNoEvent(t, aliceConn)
		})
	}
}

func TestJoinSecondChatLeavesFirst(t *testing.T) {
	chats := newStubChatService()
	hub := newTestHub(chats, &stubMessageService{})

	alice, bob := uuid.New(), uuid.New()
	first, second := uuid.New(), uuid.New()
	chats.addChat(first, alice, bob)
	chats.addChat(second, alice, bob)

	aliceConn := connect(t, hub, alice)
	bobConn := connect(t, hub, bob)

	join(t, hub, aliceConn, first)
	readEvent(t, aliceConn)
	join(t, hub, bobConn, first)
	readEvent(t, aliceConn)
	readEvent(t, bobConn)

	join(t, hub, bobConn, second)

	// Alice sees bob leave the first room.
	evt := readEvent(t, aliceConn)
	assert.Equal(t, dto.EventUserDisconnected, evt.Event)

	// Bob only hears his own arrival in the second room.
	evt = readEvent(t, bobConn)
	assert.Equal(t, dto.EventUserJoined, evt.Event)

	// A broadcast to the first room no longer reaches bob.
	hub.BroadcastToRoom(first, dto.EventReceiveMessage, dto.ReceiveMessagePayload{ChatId: first})
	readEvent(t, aliceConn)
	assertNoEvent(t, bobConn)
}

func TestSendMessageErrorsGoToOrigin(t *testing.T) {
	chats := newStubChatService()
	messages := &stubMessageService{err: apperror.Forbidden("you are not a participant in this chat")}
	hub := newTestHub(chats, messages)

	eveConn := connect(t, hub, uuid.New())

	data, _ := json.Marshal(dto.SendMessagePayload{ChatId: uuid.NewString(), Content: "hi"})
	hub.Dispatch(eveConn, dto.SocketEnvelope{Event: dto.EventSendMessage, Data: data})

	evt := readEvent(t, eveConn)
	require.Equal(t, dto.EventError, evt.Event)
	var payload dto.ErrorPayload
	require.NoError(t, json.Unmarshal(evt.Data, &payload))
	assert.Equal(t, "you are not a participant in this chat", payload.Message)
}

func TestSendMessageDelegatesToPipeline(t *testing.T) {
	chats := newStubChatService()
	messages := &stubMessageService{}
	hub := newTestHub(chats, messages)

	aliceConn := connect(t, hub, uuid.New())

	data, _ := json.Marshal(dto.SendMessagePayload{ChatId: uuid.NewString(), Content: "hello"})
	hub.Dispatch(aliceConn, dto.SocketEnvelope{Event: dto.EventSendMessage, Data: data})

	messages.mu.Lock()
	defer messages.mu.Unlock()
	require.Len(t, messages.sent, 1)
	assert.Equal(t, "hello", messages.sent[0])
	// Nothing echoes back to the sender directly.
	assertNoEvent(t, aliceConn)
}

func TestSecondConnectionForcesLogout(t *testing.T) {
	chats := newStubChatService()
	hub := newTestHub(chats, &stubMessageService{})

	alice := uuid.New()
	first := connect(t, hub, alice)
	second := connect(t, hub, alice)

	evt := readEvent(t, first)
	assert.Equal(t, dto.EventForceLogout, evt.Event)

	// Channel closes after the notice.
	select {
	case _, ok := <-first.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected send channel to close")
	}

	got, ok := hub.registry.Lookup(alice)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestDisplacedConnectionDisconnectIsNoop(t *testing.T) {
	chats := newStubChatService()
	hub := newTestHub(chats, &stubMessageService{})

	alice := uuid.New()
	first := connect(t, hub, alice)
	second := connect(t, hub, alice)
	readEvent(t, first) // forceLogout

	// The stale connection's disconnect must not evict the live one.
	hub.unregister <- first
	require.Never(t, func() bool { return !hub.registry.Registered(second) },
		200*time.Millisecond, 20*time.Millisecond)
}

func TestDisplacedConnectionCannotRejoinRoom(t *testing.T) {
	chats := newStubChatService()
	hub := newTestHub(chats, &stubMessageService{})

	alice, bob := uuid.New(), uuid.New()
	chatId := uuid.New()
	chats.addChat(chatId, alice, bob)

	first := connect(t, hub, alice)
	second := connect(t, hub, alice)
	readEvent(t, first) // forceLogout

	// A joinChat still in flight on the stale connection must not put it
	// back into the room index.
	join(t, hub, first, chatId)
	assert.False(t, roomContains(hub, chatId, first))

	hub.unregister <- first
	require.Never(t, func() bool { return roomContains(hub, chatId, first) },
		200*time.Millisecond, 20*time.Millisecond)

	// The live connection still joins normally.
	join(t, hub, second, chatId)
	evt := readEvent(t, second)
	assert.Equal(t, dto.EventUserJoined, evt.Event)
	assert.True(t, roomContains(hub, chatId, second))
}

func roomContains(hub *Hub, chatId uuid.UUID, client *Client) bool {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	_, ok := hub.rooms[chatId][client]
	return ok
}

func TestUnregisterNotifiesRoom(t *testing.T) {
	chats := newStubChatService()
	hub := newTestHub(chats, &stubMessageService{})

	alice, bob := uuid.New(), uuid.New()
	chatId := uuid.New()
	chats.addChat(chatId, alice, bob)

	aliceConn := connect(t, hub, alice)
	bobConn := connect(t, hub, bob)
	join(t, hub, aliceConn, chatId)
	readEvent(t, aliceConn)
	join(t, hub, bobConn, chatId)
	readEvent(t, aliceConn)
	readEvent(t, bobConn)

	hub.unregister <- bobConn

	var presence dto.PresencePayload
	evt := readEvent(t, aliceConn)
	require.Equal(t, dto.EventUserDisconnected, evt.Event)
	require.NoError(t, json.Unmarshal(evt.Data, &presence))
	assert.Equal(t, bob, presence.UserId)
}

func TestUnknownEventReturnsError(t *testing.T) {
	hub := newTestHub(newStubChatService(), &stubMessageService{})
	conn := connect(t, hub, uuid.New())

	hub.Dispatch(conn, dto.SocketEnvelope{Event: "selfDestruct"})
	evt := readEvent(t, conn)
	assert.Equal(t, dto.EventError, evt.Event)
}

func TestNotifyChatActivityTargeting(t *testing.T) {
	chats := newStubChatService()
	hub := newTestHub(chats, &stubMessageService{})

	alice, bob, carol, dave := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	chatId := uuid.New()
	chats.addChat(chatId, alice, bob, carol, dave)

	aliceConn := connect(t, hub, alice) // sender
	bobConn := connect(t, hub, bob)     // in the room
	carolConn := connect(t, hub, carol) // online, elsewhere
	// dave is offline

	join(t, hub, bobConn, chatId)
	readEvent(t, bobConn)

	hub.NotifyChatActivity([]uuid.UUID{alice, bob, carol, dave}, alice, dto.ChatActivityPayload{
		ChatId:     chatId,
		SenderName: "alice",
		Preview:    "hello",
	})

	evt := readEvent(t, carolConn)
	assert.Equal(t, dto.EventChatActivity, evt.Event)

	assertNoEvent(t, aliceConn)
	assertNoEvent(t, bobConn)
}
