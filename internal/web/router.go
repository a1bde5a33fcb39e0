package web

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/zbirka/internal/backend"
	"github.com/erazemk/zbirka/internal/lifecycle"
	"github.com/erazemk/zbirka/internal/metrics"
	"github.com/erazemk/zbirka/internal/ratelimit"
	"github.com/erazemk/zbirka/internal/store"
	webembed "github.com/erazemk/zbirka/web"
)

// Deps are the collaborators of the page handlers. Metrics and Limiter are
// optional.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	Metrics   *metrics.Collector
	Limiter   *ratelimit.Limiter
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(deps Deps) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	static, err := webembed.StaticFS()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        deps.DB,
		Backend:   backend.NewLocal(deps.DB),
		Templates: templates,
		JWTSecret: deps.JWTSecret,
		Metrics:   deps.Metrics,
		Limiter:   deps.Limiter,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(deps.JWTSecret, deps.DB)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Dashboard)))

	mux.Handle("GET /items", cookieAuth(http.HandlerFunc(s.ItemsPage)))
	mux.Handle("POST /items", cookieAuth(http.HandlerFunc(s.ItemCreateSubmit)))
	mux.Handle("GET /items/new", cookieAuth(http.HandlerFunc(s.ItemNewPage)))
	mux.Handle("GET /items/export", cookieAuth(http.HandlerFunc(s.ItemsExport)))
	mux.Handle("GET /items/{id}", cookieAuth(http.HandlerFunc(s.ItemDetailPage)))
	mux.Handle("GET /items/{id}/edit", cookieAuth(http.HandlerFunc(s.ItemEditPage)))
	mux.Handle("POST /items/{id}/edit", cookieAuth(http.HandlerFunc(s.ItemEditSubmit)))
	mux.Handle("GET /items/{id}/delete", cookieAuth(http.HandlerFunc(s.ItemDeletePage)))
	mux.Handle("POST /items/{id}/delete", cookieAuth(http.HandlerFunc(s.ItemDeleteSubmit)))
	mux.Handle("POST /items/{id}/restore", cookieAuth(http.HandlerFunc(s.ItemRestoreSubmit)))
	mux.Handle("POST /items/{id}/image", cookieAuth(http.HandlerFunc(s.ItemImageSubmit)))
	mux.Handle("GET /items/{id}/image", cookieAuth(http.HandlerFunc(s.ItemImageGet)))

	return mux, nil
}

// ItemImageGet handles GET /items/{id}/image (web route, cookie-authenticated).
func (s *Server) ItemImageGet(w http.ResponseWriter, r *http.Request) {
	id, err := lifecycle.ParseID(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get image", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
