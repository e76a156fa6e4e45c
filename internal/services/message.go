package services

import (
	"context"
	"errors"
	"strings"

	"github.com/relaychat/apiserver/types"
)

// ErrChatAccess is returned when the caller's workspace or membership
// does not grant access to the chat.
var ErrChatAccess = errors.New("chat access denied")

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, msg types.Message) (types.Message, error)
	ListByChat(ctx context.Context, chatID, lastID int64, limit int) ([]types.Message, error)
}

// CreateMessage is the input for posting a message.
type CreateMessage struct {
	Content string   `json:"content"`
	Files   []string `json:"files,omitempty"`
}

// ListMessages is the cursor input for paging a chat's messages,
// newest first. LastID zero starts from the latest message.
type ListMessages struct {
	LastID int64 `json:"last_id"`
	Limit  int   `json:"limit"`
}

// MessageService encapsulates message use-cases.
type MessageService struct {
	repo      MessageRepository
	chats     ChatRepository
	publisher EventPublisher
}

func NewMessageService(repo MessageRepository, chats ChatRepository, publisher EventPublisher) *MessageService {
	return &MessageService{repo: repo, chats: chats, publisher: publisher}
}

// Send posts a message to a chat on behalf of a sender. The sender
// must belong to the chat's workspace and be a chat member.
func (s *MessageService) Send(ctx context.Context, chatID int64, sender Identity, input CreateMessage) (types.Message, error) {
	if strings.TrimSpace(input.Content) == "" && len(input.Files) == 0 {
		return types.Message{}, ErrInvalidMessage
	}

	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return types.Message{}, err
	}
	if chat.WsID != sender.WsID {
		return types.Message{}, ErrChatAccess
	}
	if chat.Type != types.ChatTypePublicChannel && !isMember(chat.Members, sender.UserID) {
		return types.Message{}, ErrChatAccess
	}

	msg, err := s.repo.Create(ctx, types.Message{
		ChatID:   chatID,
		SenderID: sender.UserID,
		Content:  input.Content,
		Files:    input.Files,
	})
	if err != nil {
		return types.Message{}, err
	}

	publishEvent(ctx, s.publisher, EventMessageCreated, msg)
	return msg, nil
}

// List pages through a chat's messages for a caller in the chat's
// workspace.
func (s *MessageService) List(ctx context.Context, chatID int64, caller Identity, input ListMessages) ([]types.Message, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.WsID != caller.WsID {
		return nil, ErrChatAccess
	}

	return s.repo.ListByChat(ctx, chatID, input.LastID, input.Limit)
}

// Identity names the authenticated caller for service-level access
// checks.
type Identity struct {
	UserID int64
	WsID   int64
}

func isMember(members []int64, userID int64) bool {
	for _, id := range members {
		if id == userID {
			return true
		}
	}
	return false
}
