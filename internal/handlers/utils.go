package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/relaychat/apiserver/internal/auth"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// ErrorResponse is the uniform error body returned by every handler.
type ErrorResponse struct {
	Error string `json:"error"`
}

func identityFromContext(ctx context.Context) (auth.Claims, error) {
	claims, ok := ctx.Value(contextIdentityKey).(auth.Claims)
	if !ok || claims.UserID < 1 {
		return auth.Claims{}, errors.New("missing identity")
	}
	return claims, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
