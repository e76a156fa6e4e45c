package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/relaychat/apiserver/internal/auth"
	"github.com/relaychat/apiserver/internal/services"
)

// AuthHandler provides signup and signin endpoints.
type AuthHandler struct {
	userService *services.UserService
	ek          *auth.EncodingKey
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, ek *auth.EncodingKey) *AuthHandler {
	return &AuthHandler{userService: userService, ek: ek}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, ek *auth.EncodingKey) {
	handler := NewAuthHandler(userService, ek)

	r.Post("/signup", handler.Signup)
	r.Post("/signin", handler.Signin)
}

// RequireAuth enforces bearer-token authentication and injects the
// caller's identity into the request context. Malformed, forged and
// expired tokens all receive the same generic response.
func RequireAuth(dk *auth.DecodingKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := dk.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextIdentityKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Signup provisions a user and returns a bearer token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUser
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Fullname = strings.TrimSpace(req.Fullname)
	req.Email = strings.TrimSpace(req.Email)
	req.Workspace = strings.TrimSpace(req.Workspace)
	if req.Fullname == "" || req.Email == "" || req.Workspace == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := h.userService.Create(r.Context(), req)
	if err != nil {
		var exists *services.EmailExistsError
		switch {
		case errors.As(err, &exists):
			writeError(w, http.StatusConflict, exists.Error())
		case errors.Is(err, services.ErrWorkspaceConflict):
			writeError(w, http.StatusConflict, "workspace already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	token, err := h.ek.Issue(user.ID, user.WsID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token})
}

// Signin verifies credentials and returns a bearer token. Every
// credential failure yields the same response shape.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusForbidden, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := h.ek.Issue(user.ID, user.WsID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token})
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
