package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/zbirka/internal/metrics"
	"github.com/erazemk/zbirka/internal/ratelimit"
)

// Deps are the collaborators of the API handlers. Metrics and Limiter are
// optional.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	Metrics   *metrics.Collector
	Limiter   *ratelimit.Limiter
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: deps.DB, JWTSecret: deps.JWTSecret}
	itemsHandler := &ItemsHandler{DB: deps.DB, Metrics: deps.Metrics}

	authMW := AuthMiddleware(deps.JWTSecret, deps.DB)

	// Public: token exchange, throttled per client address.
	var token http.Handler = http.HandlerFunc(authHandler.Token)
	if deps.Limiter != nil {
		token = deps.Limiter.Middleware(func(*http.Request) {
			deps.Metrics.RecordRateLimited("token")
		})(token)
	}
	mux.Handle("POST /api/auth/token", token)

	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/filter", authMW(http.HandlerFunc(itemsHandler.Filter)))
	mux.Handle("GET /api/items/export", authMW(http.HandlerFunc(itemsHandler.Export)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PATCH /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(itemsHandler.Stats)))

	return mux
}
