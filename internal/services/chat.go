package services

import (
	"context"
	"strings"

	"github.com/relaychat/apiserver/types"
)

// ChatRepository defines persistence operations for chats.
type ChatRepository interface {
	ListByWorkspace(ctx context.Context, wsID int64) ([]types.Chat, error)
	GetByID(ctx context.Context, id int64) (types.Chat, error)
	Create(ctx context.Context, chat types.Chat) (types.Chat, error)
	Update(ctx context.Context, chat types.Chat) (types.Chat, error)
	Delete(ctx context.Context, id, wsID int64) error
}

// CreateChat is the input for creating or reshaping a chat.
type CreateChat struct {
	Name    string  `json:"name"`
	Members []int64 `json:"members"`
	Public  bool    `json:"public"`
}

// ChatService encapsulates chat use-cases.
type ChatService struct {
	repo      ChatRepository
	publisher EventPublisher
}

func NewChatService(repo ChatRepository, publisher EventPublisher) *ChatService {
	return &ChatService{repo: repo, publisher: publisher}
}

func (s *ChatService) List(ctx context.Context, wsID int64) ([]types.Chat, error) {
	return s.repo.ListByWorkspace(ctx, wsID)
}

func (s *ChatService) Get(ctx context.Context, id int64) (types.Chat, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ChatService) Create(ctx context.Context, wsID int64, input CreateChat) (types.Chat, error) {
	chatType, err := deriveChatType(input)
	if err != nil {
		return types.Chat{}, err
	}

	chat, err := s.repo.Create(ctx, types.Chat{
		WsID:    wsID,
		Name:    strings.TrimSpace(input.Name),
		Type:    chatType,
		Members: input.Members,
	})
	if err != nil {
		return types.Chat{}, err
	}

	publishEvent(ctx, s.publisher, EventChatCreated, chat)
	return chat, nil
}

func (s *ChatService) Update(ctx context.Context, wsID, chatID int64, input CreateChat) (types.Chat, error) {
	chatType, err := deriveChatType(input)
	if err != nil {
		return types.Chat{}, err
	}

	chat, err := s.repo.Update(ctx, types.Chat{
		ID:      chatID,
		WsID:    wsID,
		Name:    strings.TrimSpace(input.Name),
		Type:    chatType,
		Members: input.Members,
	})
	if err != nil {
		return types.Chat{}, err
	}

	publishEvent(ctx, s.publisher, EventChatUpdated, chat)
	return chat, nil
}

func (s *ChatService) Delete(ctx context.Context, chatID, wsID int64) error {
	if err := s.repo.Delete(ctx, chatID, wsID); err != nil {
		return err
	}
	publishEvent(ctx, s.publisher, EventChatDeleted, types.Chat{ID: chatID, WsID: wsID})
	return nil
}

// deriveChatType classifies a chat the way the membership shape
// implies: two unnamed members form a single chat, more form a group,
// and named chats are channels whose visibility follows the public
// flag.
func deriveChatType(input CreateChat) (types.ChatType, error) {
	if len(input.Members) < 2 {
		return "", ErrInvalidChat
	}

	if strings.TrimSpace(input.Name) == "" {
		if input.Public {
			return "", ErrInvalidChat
		}
		if len(input.Members) == 2 {
			return types.ChatTypeSingle, nil
		}
		return types.ChatTypeGroup, nil
	}

	if input.Public {
		return types.ChatTypePublicChannel, nil
	}
	return types.ChatTypePrivateChannel, nil
}
