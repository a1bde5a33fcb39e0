package web

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/zbirka/internal/backend"
	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/metrics"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/ratelimit"
	webembed "github.com/erazemk/zbirka/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"categoryLabel": model.CategoryLabel,
		"categories":    func() []model.Category { return model.Categories },
		"workingLabel":  func(t model.TriState) string { return t.Label() },
		"optInt": func(n *int64) string {
			if n == nil {
				return ""
			}
			return filter.Integer(*n).String()
		},
		"money": func(x *float64) string {
			if x == nil {
				return ""
			}
			return fmt.Sprintf("%.2f", *x)
		},
		"fieldLabel": fieldLabel,
	}
}

// fieldLabel turns a schema name like "age_years" into "Age years".
func fieldLabel(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// LoadTemplates parses all page templates with the layout and the shared
// item form.
func LoadTemplates() (*Templates, error) {
	tfs, err := webembed.TemplatesFS()
	if err != nil {
		return nil, err
	}

	var shared []string
	for _, name := range []string{"layout.html", "item_form.html"} {
		b, err := fs.ReadFile(tfs, name)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", name, err)
		}
		shared = append(shared, string(b))
	}

	pages := []string{
		"login.html",
		"dashboard.html",
		"items.html",
		"item_new.html",
		"item_detail.html",
		"item_edit.html",
		"item_delete.html",
		"error.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		for _, src := range shared {
			if tmpl, err = tmpl.Parse(src); err != nil {
				return nil, fmt.Errorf("parsing shared templates for %s: %w", page, err)
			}
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given status. The page is rendered
// into a buffer first so a template failure still yields a clean 500.
func (ts *Templates) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Client  string
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Backend   backend.Backend
	Templates *Templates
	JWTSecret string
	Metrics   *metrics.Collector
	Limiter   *ratelimit.Limiter
}

// page builds the base page data for an authenticated request.
func (s *Server) page(r *http.Request, title string) PageData {
	pd := PageData{Title: title}
	if claims := GetWebClaims(r.Context()); claims != nil {
		pd.Client = claims.Client
	}
	return pd
}

// renderError shows the error page with the given status.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	pd := s.page(r, http.StatusText(status))
	pd.Error = message
	s.Templates.Render(w, status, "error.html", &pd)
}
