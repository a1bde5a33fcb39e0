package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/zbirka/internal/auth"
	"github.com/erazemk/zbirka/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

// TokenRequest exchanges the access key for a bearer token.
type TokenRequest struct {
	Client string `json:"client"`
	Key    string `json:"key"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Token handles POST /api/auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Client = strings.TrimSpace(req.Client)
	if req.Client == "" || req.Key == "" {
		jsonError(w, http.StatusBadRequest, "client and key required")
		return
	}

	hash, err := store.GetAccessKeyHash(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to load access key", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := auth.CheckAccessKey(hash, req.Key); err != nil {
		if !errors.Is(err, auth.ErrInvalidKey) {
			slog.Error("failed to check access key", "error", err)
		}
		slog.Warn("token request rejected", "client", req.Client, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid access key")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, req.Client)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("token issued", "client", req.Client)
	jsonResponse(w, http.StatusOK, TokenResponse{Token: token})
}

// Logout handles POST /api/auth/logout. The presented token is revoked
// until it would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		slog.Error("failed to revoke token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to revoke token")
		return
	}

	slog.Info("token revoked", "client", claims.Client)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
