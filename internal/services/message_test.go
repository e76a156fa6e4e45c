package services_test

import (
	"context"
	"testing"

	"github.com/relaychat/apiserver/internal/services"
	"github.com/relaychat/apiserver/internal/store"
	"github.com/relaychat/apiserver/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageFixture(t *testing.T) (*services.MessageService, *services.ChatService, *testutil.FakePublisher) {
	t.Helper()
	fake := testutil.NewFakeStore()
	publisher := testutil.NewFakePublisher()
	chats := services.NewChatService(fake.Chats(), nil)
	messages := services.NewMessageService(fake.Messages(), fake.Chats(), publisher)
	return messages, chats, publisher
}

func TestSendMessage(t *testing.T) {
	messages, chats, publisher := newMessageFixture(t)
	ctx := context.Background()
	sender := services.Identity{UserID: 1, WsID: 1}

	chat, err := chats.Create(ctx, 1, services.CreateChat{Members: []int64{1, 2}})
	require.NoError(t, err)

	msg, err := messages.Send(ctx, chat.ID, sender, services.CreateMessage{Content: "hello"})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, int64(1), msg.SenderID)
	assert.Equal(t, "hello", msg.Content)

	events := publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, services.EventMessageCreated, events[0].Attrs["event"])
}

func TestSendMessageValidation(t *testing.T) {
	messages, chats, _ := newMessageFixture(t)
	ctx := context.Background()
	sender := services.Identity{UserID: 1, WsID: 1}

	chat, err := chats.Create(ctx, 1, services.CreateChat{Members: []int64{1, 2}})
	require.NoError(t, err)

	_, err = messages.Send(ctx, chat.ID, sender, services.CreateMessage{Content: "   "})
	assert.ErrorIs(t, err, services.ErrInvalidMessage)

	// A file-only message is valid.
	_, err = messages.Send(ctx, chat.ID, sender, services.CreateMessage{Files: []string{"/files/1/abc.png"}})
	assert.NoError(t, err)
}

func TestSendMessageAccessChecks(t *testing.T) {
	messages, chats, _ := newMessageFixture(t)
	ctx := context.Background()

	private, err := chats.Create(ctx, 1, services.CreateChat{Name: "secret", Members: []int64{1, 2}})
	require.NoError(t, err)
	public, err := chats.Create(ctx, 1, services.CreateChat{Name: "town-square", Members: []int64{1, 2}, Public: true})
	require.NoError(t, err)

	// Wrong workspace.
	_, err = messages.Send(ctx, private.ID, services.Identity{UserID: 1, WsID: 2}, services.CreateMessage{Content: "hi"})
	assert.ErrorIs(t, err, services.ErrChatAccess)

	// Non-member of a private chat.
	_, err = messages.Send(ctx, private.ID, services.Identity{UserID: 3, WsID: 1}, services.CreateMessage{Content: "hi"})
	assert.ErrorIs(t, err, services.ErrChatAccess)

	// Non-member may post to a public channel in the same workspace.
	_, err = messages.Send(ctx, public.ID, services.Identity{UserID: 3, WsID: 1}, services.CreateMessage{Content: "hi"})
	assert.NoError(t, err)

	// Unknown chat.
	_, err = messages.Send(ctx, 999, services.Identity{UserID: 1, WsID: 1}, services.CreateMessage{Content: "hi"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListMessagesPagination(t *testing.T) {
	messages, chats, _ := newMessageFixture(t)
	ctx := context.Background()
	sender := services.Identity{UserID: 1, WsID: 1}

	chat, err := chats.Create(ctx, 1, services.CreateChat{Members: []int64{1, 2}})
	require.NoError(t, err)

	var ids []int64
	for i := 0; i < 5; i++ {
		msg, err := messages.Send(ctx, chat.ID, sender, services.CreateMessage{Content: "msg"})
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	// First page: newest two.
	page, err := messages.List(ctx, chat.ID, sender, services.ListMessages{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	// Second page resumes below the last seen id.
	page, err = messages.List(ctx, chat.ID, sender, services.ListMessages{LastID: page[1].ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	// Cross-workspace listing is rejected.
	_, err = messages.List(ctx, chat.ID, services.Identity{UserID: 9, WsID: 2}, services.ListMessages{})
	assert.ErrorIs(t, err, services.ErrChatAccess)
}
