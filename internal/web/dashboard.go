package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to load stats for dashboard", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Could not load the catalogue summary.")
		return
	}

	// Categories with no items are left out.
	type categoryCount struct {
		Category model.Category
		Count    int
	}
	var byCategory []categoryCount
	for _, c := range model.Categories {
		if n := stats.ByCategory[string(c)]; n > 0 {
			byCategory = append(byCategory, categoryCount{Category: c, Count: n})
		}
	}

	s.Templates.Render(w, http.StatusOK, "dashboard.html", &struct {
		PageData
		Stats      *store.Stats
		ByCategory []categoryCount
	}{
		PageData:   s.page(r, "Dashboard"),
		Stats:      stats,
		ByCategory: byCategory,
	})
}
