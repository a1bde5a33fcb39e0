package api

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/zbirka/internal/backend"
	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/metrics"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB      *sql.DB
	Metrics *metrics.Collector
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		writeItemError(w, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Filter handles GET /api/items/filter.
func (h *ItemsHandler) Filter(w http.ResponseWriter, r *http.Request) {
	f, err := filter.Parse(r.URL.RawQuery)
	if err != nil {
		writeItemError(w, err, "invalid filter")
		return
	}

	items, err := store.FilterItems(r.Context(), h.DB, f)
	if err != nil {
		writeItemError(w, err, "failed to filter items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item model.Item
	if err := decodeJSON(r, &item); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := store.CreateItem(r.Context(), h.DB, &item)
	if err != nil {
		writeItemError(w, err, "failed to create item")
		return
	}

	h.Metrics.RecordMutation("create")
	slog.Info("item created", "id", created.ID, "request_id", RequestID(r.Context()))
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeItemError(w, err, "failed to get item")
		return
	}
	if item == nil {
		jsonResponse(w, http.StatusNotFound, ErrorBody{Error: "item not found", Kind: KindNotFound})
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PATCH /api/items/{id}. The body is a flat JSON object of
// canonical string values, rebuilt with the same coercion rules as filters.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var fields map[string]string
	if err := decodeJSON(r, &fields); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := filter.UpdateFromStrings(fields)
	if err != nil {
		writeItemError(w, err, "invalid update")
		return
	}
	if u.Empty() {
		writeItemError(w, &model.ValidationError{Problems: []string{"no fields to update"}}, "invalid update")
		return
	}

	item, err := store.UpdateItemFields(r.Context(), h.DB, id, u)
	if err != nil {
		writeItemError(w, err, "failed to update item")
		return
	}

	h.Metrics.RecordMutation(mutationOp(u))
	slog.Info("item updated", "id", id, "fields", u.Keys(), "request_id", RequestID(r.Context()))
	jsonResponse(w, http.StatusOK, item)
}

// mutationOp names an update for metrics: deleting and restoring travel as
// updates of the deleted flag.
func mutationOp(u filter.Update) string {
	if v, ok := u["deleted"]; ok && len(u) == 1 {
		if v.TriState() == model.True {
			return "delete"
		}
		return "restore"
	}
	return "update"
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.SoftDeleteItem(r.Context(), h.DB, id); err != nil {
		writeItemError(w, err, "failed to delete item")
		return
	}

	h.Metrics.RecordMutation("delete")
	slog.Info("item deleted", "id", id, "request_id", RequestID(r.Context()))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Export handles GET /api/items/export. The CSV is built in memory so a
// failure can still be reported with a proper status.
func (h *ItemsHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := filter.Parse(r.URL.RawQuery)
	if err != nil {
		writeItemError(w, err, "invalid filter")
		return
	}

	var buf bytes.Buffer
	if err := backend.NewLocal(h.DB).ExportCSV(r.Context(), f, &buf); err != nil {
		writeItemError(w, err, "failed to export items")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="zbirka-%s.csv"`, model.Today()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

// UploadImage handles PUT /api/items/{id}/image with a multipart "image" field.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	// Room for the multipart envelope on top of the photo itself.
	limit := imaging.DefaultOptions.MaxBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	if err := backend.NewLocal(h.DB).SetItemImage(r.Context(), id, file); err != nil {
		writeItemError(w, err, "failed to save image")
		return
	}

	h.Metrics.RecordMutation("photo")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		writeItemError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// Stats handles GET /api/stats.
func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		writeItemError(w, err, "failed to get stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
