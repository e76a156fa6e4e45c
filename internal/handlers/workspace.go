package handlers

import (
	"net/http"

	"github.com/relaychat/apiserver/internal/services"
)

// WorkspaceHandler provides HTTP handlers for workspace membership.
type WorkspaceHandler struct {
	userService *services.UserService
}

func NewWorkspaceHandler(userService *services.UserService) *WorkspaceHandler {
	return &WorkspaceHandler{userService: userService}
}

// ListChatUsers returns the caller's workspace members in insertion
// order, without password material.
func (h *WorkspaceHandler) ListChatUsers(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.userService.ListWorkspaceUsers(r.Context(), identity.WsID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}
