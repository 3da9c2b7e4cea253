package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

var errInvalidCredentials = errors.New("invalid credentials")

// AuthHandler handles sessions: sign-in, sign-out and password changes.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// session is returned whenever a token is issued.
type session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// authenticate returns the active user with the given credentials, or
// errInvalidCredentials.
func (h *AuthHandler) authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := store.GetUserByUsername(ctx, h.DB, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return user, nil
}

func (h *AuthHandler) issue(user *model.User) (*session, error) {
	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &session{
		Token:     token,
		ExpiresAt: time.Now().Add(auth.TokenExpiry).UTC(),
		User:      user,
	}, nil
}

// revoke ends the session of claims.
func (h *AuthHandler) revoke(ctx context.Context, claims *auth.Claims) error {
	expires := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return store.RevokeToken(ctx, h.DB, claims.ID, claims.UserID, expires)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := h.authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, errInvalidCredentials) {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		slog.Error("failed to authenticate", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s, err := h.issue(user)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusOK, s)
}

// Logout handles POST /api/auth/logout. The presented token stops working.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.revoke(r.Context(), claims); err != nil {
		slog.Error("failed to revoke token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	slog.Info("user logged out", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// ChangePassword handles PUT /api/auth/password. The token used for the
// change is revoked and a new session is returned.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if req.NewPassword == req.CurrentPassword {
		jsonError(w, http.StatusBadRequest, "new password must differ from the current one")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authenticate(r.Context(), claims.Username, req.CurrentPassword)
	if errors.Is(err, errInvalidCredentials) {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if err != nil {
		slog.Error("failed to authenticate", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, string(hash)); err != nil {
		slog.Error("failed to update password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}
	if err := h.revoke(r.Context(), claims); err != nil {
		slog.Error("failed to revoke token after password change", "user", user.Username, "error", err)
	}

	s, err := h.issue(user)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user changed own password", "user", user.Username)
	jsonResponse(w, http.StatusOK, s)
}
