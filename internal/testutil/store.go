// Package testutil provides in-memory repository fakes for unit tests
// that exercise services and handlers without a database.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/relaychat/apiserver/internal/store"
	"github.com/relaychat/apiserver/types"
)

// FakeStore holds shared in-memory state behind per-entity repository
// views. The views mirror the SQL store's error contract, including
// unique-constraint sentinels and the conditional owner update.
type FakeStore struct {
	mu sync.Mutex

	users      map[int64]types.User
	workspaces map[int64]types.Workspace
	chats      map[int64]types.Chat
	messages   map[int64]types.Message

	nextUserID      int64
	nextWorkspaceID int64
	nextChatID      int64
	nextMessageID   int64
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		users:      make(map[int64]types.User),
		workspaces: make(map[int64]types.Workspace),
		chats:      make(map[int64]types.Chat),
		messages:   make(map[int64]types.Message),
	}
}

// Users returns the user repository view.
func (f *FakeStore) Users() *FakeUserRepo { return &FakeUserRepo{store: f} }

// Workspaces returns the workspace repository view.
func (f *FakeStore) Workspaces() *FakeWorkspaceRepo { return &FakeWorkspaceRepo{store: f} }

// Chats returns the chat repository view.
func (f *FakeStore) Chats() *FakeChatRepo { return &FakeChatRepo{store: f} }

// Messages returns the message repository view.
func (f *FakeStore) Messages() *FakeMessageRepo { return &FakeMessageRepo{store: f} }

type FakeUserRepo struct {
	store *FakeStore
}

func (r *FakeUserRepo) GetByID(ctx context.Context, id int64) (types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

func (r *FakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, err := r.GetByEmailWithPassword(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (r *FakeUserRepo) GetByEmailWithPassword(ctx context.Context, email string) (types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *FakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	r.store.nextUserID++
	user.ID = r.store.nextUserID
	user.CreatedAt = time.Now()
	r.store.users[user.ID] = user
	return user, nil
}

type FakeWorkspaceRepo struct {
	store *FakeStore
}

func (r *FakeWorkspaceRepo) GetByID(ctx context.Context, id int64) (types.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ws, ok := r.store.workspaces[id]
	if !ok {
		return types.Workspace{}, store.ErrNotFound
	}
	return ws, nil
}

func (r *FakeWorkspaceRepo) GetByName(ctx context.Context, name string) (types.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, ws := range r.store.workspaces {
		if ws.Name == name {
			return ws, nil
		}
	}
	return types.Workspace{}, store.ErrNotFound
}

func (r *FakeWorkspaceRepo) Create(ctx context.Context, name string, ownerID int64) (types.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, ws := range r.store.workspaces {
		if ws.Name == name {
			return types.Workspace{}, store.ErrDuplicateWorkspace
		}
	}
	r.store.nextWorkspaceID++
	ws := types.Workspace{
		ID:        r.store.nextWorkspaceID,
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}
	r.store.workspaces[ws.ID] = ws
	return ws, nil
}

// UpdateOwner mimics the conditional SQL update: it only matches when
// the workspace is still unowned and the promoted user belongs to it.
func (r *FakeWorkspaceRepo) UpdateOwner(ctx context.Context, wsID, userID int64) (types.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ws, ok := r.store.workspaces[wsID]
	if !ok || ws.OwnerID != 0 {
		return types.Workspace{}, store.ErrNotFound
	}
	user, ok := r.store.users[userID]
	if !ok || user.WsID != wsID {
		return types.Workspace{}, store.ErrNotFound
	}
	ws.OwnerID = userID
	r.store.workspaces[wsID] = ws
	return ws, nil
}

func (r *FakeWorkspaceRepo) ListChatUsers(ctx context.Context, wsID int64) ([]types.ChatUser, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	users := make([]types.ChatUser, 0)
	for _, user := range r.store.users {
		if user.WsID == wsID {
			users = append(users, types.ChatUser{
				ID:       user.ID,
				Fullname: user.Fullname,
				Email:    user.Email,
			})
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type FakeChatRepo struct {
	store *FakeStore
}

func (r *FakeChatRepo) ListByWorkspace(ctx context.Context, wsID int64) ([]types.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	chats := make([]types.Chat, 0)
	for _, chat := range r.store.chats {
		if chat.WsID == wsID {
			chats = append(chats, chat)
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].ID < chats[j].ID })
	return chats, nil
}

func (r *FakeChatRepo) GetByID(ctx context.Context, id int64) (types.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	chat, ok := r.store.chats[id]
	if !ok {
		return types.Chat{}, store.ErrNotFound
	}
	return chat, nil
}

func (r *FakeChatRepo) Create(ctx context.Context, chat types.Chat) (types.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextChatID++
	chat.ID = r.store.nextChatID
	chat.CreatedAt = time.Now()
	r.store.chats[chat.ID] = chat
	return chat, nil
}

func (r *FakeChatRepo) Update(ctx context.Context, chat types.Chat) (types.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.chats[chat.ID]
	if !ok || existing.WsID != chat.WsID {
		return types.Chat{}, store.ErrNotFound
	}
	chat.CreatedAt = existing.CreatedAt
	r.store.chats[chat.ID] = chat
	return chat, nil
}

func (r *FakeChatRepo) Delete(ctx context.Context, id, wsID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	chat, ok := r.store.chats[id]
	if !ok || chat.WsID != wsID {
		return store.ErrNotFound
	}
	delete(r.store.chats, id)
	return nil
}

type FakeMessageRepo struct {
	store *FakeStore
}

func (r *FakeMessageRepo) Create(ctx context.Context, msg types.Message) (types.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextMessageID++
	msg.ID = r.store.nextMessageID
	msg.CreatedAt = time.Now()
	r.store.messages[msg.ID] = msg
	return msg, nil
}

func (r *FakeMessageRepo) ListByChat(ctx context.Context, chatID, lastID int64, limit int) ([]types.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if limit < 1 {
		limit = 20
	}
	messages := make([]types.Message, 0)
	for _, msg := range r.store.messages {
		if msg.ChatID != chatID {
			continue
		}
		if lastID > 0 && msg.ID >= lastID {
			continue
		}
		messages = append(messages, msg)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID > messages[j].ID })
	if len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

// FakePublisher records published events for assertions.
type FakePublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// PublishedEvent is a single captured publish call.
type PublishedEvent struct {
	Channel string
	Data    []byte
	Attrs   map[string]string
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (p *FakePublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Channel: channel, Data: data, Attrs: attrs})
	return "", nil
}

func (p *FakePublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}
