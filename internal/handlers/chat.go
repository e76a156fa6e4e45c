package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/relaychat/apiserver/internal/services"
	"github.com/relaychat/apiserver/internal/store"
)

// ChatHandler provides HTTP handlers for chats and their messages.
type ChatHandler struct {
	chatService    *services.ChatService
	messageService *services.MessageService
}

// NewChatHandler constructs a handler with the provided services.
func NewChatHandler(chatService *services.ChatService, messageService *services.MessageService) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		messageService: messageService,
	}
}

// ChatRouter registers chat routes on the given router. Callers must
// already be authenticated.
func ChatRouter(r chi.Router, chatService *services.ChatService, messageService *services.MessageService) {
	handler := NewChatHandler(chatService, messageService)

	r.Get("/", handler.ListChats)
	r.Post("/", handler.CreateChat)
	r.Route("/{chatID}", func(r chi.Router) {
		r.Patch("/", handler.UpdateChat)
		r.Delete("/", handler.DeleteChat)
		r.Post("/", handler.SendMessage)
		r.Get("/messages", handler.ListMessages)
	})
}

func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chats, err := h.chatService.List(r.Context(), identity.WsID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req services.CreateChat
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	chat, err := h.chatService.Create(r.Context(), identity.WsID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidChat) {
			writeError(w, http.StatusBadRequest, "invalid chat")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

func (h *ChatHandler) UpdateChat(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chatID, err := parseChatID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.CreateChat
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	chat, err := h.chatService.Update(r.Context(), identity.WsID, chatID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidChat):
			writeError(w, http.StatusBadRequest, "invalid chat")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "chat not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update chat")
		}
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chatID, err := parseChatID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.chatService.Delete(r.Context(), chatID, identity.WsID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chatID, err := parseChatID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.CreateMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	sender := services.Identity{UserID: identity.UserID, WsID: identity.WsID}
	msg, err := h.messageService.Send(r.Context(), chatID, sender, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMessage):
			writeError(w, http.StatusBadRequest, "invalid message")
		case errors.Is(err, services.ErrChatAccess):
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "chat not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chatID, err := parseChatID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input, err := parseListMessages(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := services.Identity{UserID: identity.UserID, WsID: identity.WsID}
	messages, err := h.messageService.List(r.Context(), chatID, caller, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChatAccess):
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "chat not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to list messages")
		}
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func parseChatID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "chatID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid chat id")
	}
	return id, nil
}

func parseListMessages(r *http.Request) (services.ListMessages, error) {
	input := services.ListMessages{Limit: 20}

	if raw := r.URL.Query().Get("last_id"); raw != "" {
		lastID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || lastID < 0 {
			return services.ListMessages{}, errors.New("invalid last_id")
		}
		input.LastID = lastID
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			return services.ListMessages{}, errors.New("invalid limit")
		}
		input.Limit = limit
	}
	return input, nil
}
