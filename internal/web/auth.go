package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/zbirka/internal/auth"
	"github.com/erazemk/zbirka/internal/ratelimit"
	"github.com/erazemk/zbirka/internal/store"
)

const webClient = "web"

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "login.html", &PageData{Title: "Sign in"})
}

// LoginSubmit handles POST /login. Attempts are throttled per client address.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if s.Limiter != nil && !s.Limiter.Allow(ratelimit.ClientKey(r)) {
		s.Metrics.RecordRateLimited("login")
		w.Header().Set("Retry-After", strconv.Itoa(s.Limiter.RetryAfter()))
		s.Templates.Render(w, http.StatusTooManyRequests, "login.html", &PageData{
			Title: "Sign in",
			Error: "Too many attempts. Try again in a minute.",
		})
		return
	}

	key := r.FormValue("key")
	if key == "" {
		s.Templates.Render(w, http.StatusBadRequest, "login.html", &PageData{
			Title: "Sign in",
			Error: "Enter the access key.",
		})
		return
	}

	hash, err := store.GetAccessKeyHash(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to load access key", "error", err)
		s.Templates.Render(w, http.StatusInternalServerError, "login.html", &PageData{
			Title: "Sign in",
			Error: "Sign in failed.",
		})
		return
	}

	if err := auth.CheckAccessKey(hash, key); err != nil {
		if !errors.Is(err, auth.ErrInvalidKey) {
			slog.Error("failed to check access key", "error", err)
		}
		slog.Warn("web login rejected", "remote", r.RemoteAddr)
		s.Templates.Render(w, http.StatusUnauthorized, "login.html", &PageData{
			Title: "Sign in",
			Error: "Wrong access key.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, webClient)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		s.Templates.Render(w, http.StatusInternalServerError, "login.html", &PageData{
			Title: "Sign in",
			Error: "Sign in failed.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})

	slog.Info("web login", "remote", r.RemoteAddr)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout. A valid cookie token is revoked so a copy of
// it stops working too.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Error("failed to revoke token", "error", err)
			}
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
