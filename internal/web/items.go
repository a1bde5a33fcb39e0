package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/lifecycle"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// ItemsPage handles GET /items. The query string is the filter; a value
// that does not parse is reported above the form instead of failing the page.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(r, "Items")
	status := http.StatusOK

	var items []model.Item
	f, err := filter.Parse(r.URL.RawQuery)
	if err == nil {
		items, err = s.Backend.FilterItems(r.Context(), f)
	}
	if err != nil {
		status, pd.Error = itemErrorStatus(err)
	}

	s.Templates.Render(w, status, "items.html", &struct {
		PageData
		Items       []model.Item
		Query       url.Values
		ExportQuery string
	}{
		PageData:    pd,
		Items:       items,
		Query:       r.URL.Query(),
		ExportQuery: f.Encode(),
	})
}

// ItemsExport handles GET /items/export with the same query as the list.
func (s *Server) ItemsExport(w http.ResponseWriter, r *http.Request) {
	f, err := filter.Parse(r.URL.RawQuery)
	if err != nil {
		status, msg := itemErrorStatus(err)
		s.renderError(w, r, status, msg)
		return
	}

	var buf bytes.Buffer
	if err := s.Backend.ExportCSV(r.Context(), f, &buf); err != nil {
		status, msg := itemErrorStatus(err)
		s.renderError(w, r, status, msg)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="zbirka-%s.csv"`, model.Today()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

type itemFormData struct {
	PageData
	Item *model.Item
	Form filter.Fields
}

// ItemNewPage handles GET /items/new.
func (s *Server) ItemNewPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "item_new.html", &itemFormData{
		PageData: s.page(r, "New item"),
		Form:     filter.Fields{"category": string(model.CategoryOther), "action": string(model.ActionKeep)},
	})
}

// ItemCreateSubmit handles POST /items.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}

	created, err := s.createFromForm(r)
	if err != nil {
		pd := s.page(r, "New item")
		var status int
		status, pd.Error = itemErrorStatus(err)
		s.Templates.Render(w, status, "item_new.html", &itemFormData{
			PageData: pd,
			Form:     editableFields(r.PostForm),
		})
		return
	}

	s.Metrics.RecordMutation("create")
	slog.Info("item created", "id", created.ID, "name", created.Name)
	http.Redirect(w, r, itemURL(created.ID), http.StatusSeeOther)
}

func (s *Server) createFromForm(r *http.Request) (*model.Item, error) {
	u, err := filter.BuildUpdate(r.PostForm)
	if err != nil {
		return nil, err
	}
	item := &model.Item{}
	if err := u.ApplyTo(item); err != nil {
		return nil, err
	}
	return s.Backend.CreateItem(r.Context(), item)
}

// load runs a lifecycle controller up to viewing the item named by the
// path. On failure the error page has already been written.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*lifecycle.Controller, bool) {
	c := lifecycle.New(s.Backend)
	if err := c.Load(r.Context(), r.PathValue("id")); err != nil {
		status, msg := itemErrorStatus(err)
		s.renderError(w, r, status, msg)
		return nil, false
	}
	return c, true
}

// ItemDetailPage handles GET /items/{id}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.load(w, r)
	if !ok {
		return
	}

	pd := s.page(r, c.Item().Name)
	if c.Deleted() {
		pd.Error = "This item is deleted. Restore it to make changes."
	}
	s.Templates.Render(w, http.StatusOK, "item_detail.html", &struct {
		PageData
		Item       *model.Item
		CanEdit    bool
		CanDelete  bool
		CanRestore bool
	}{
		PageData:   pd,
		Item:       c.Item(),
		CanEdit:    c.CanEdit(),
		CanDelete:  c.CanDelete(),
		CanRestore: c.CanRestore(),
	})
}

// ItemEditPage handles GET /items/{id}/edit.
func (s *Server) ItemEditPage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.load(w, r)
	if !ok {
		return
	}

	buf, err := c.BeginEdit()
	if err != nil {
		http.Redirect(w, r, itemURL(c.Item().ID), http.StatusSeeOther)
		return
	}

	s.Templates.Render(w, http.StatusOK, "item_edit.html", &itemFormData{
		PageData: s.page(r, "Edit "+c.Item().Name),
		Item:     c.Item(),
		Form:     buf,
	})
}

// ItemEditSubmit handles POST /items/{id}/edit. On failure the submitted
// values are rendered back with the error.
func (s *Server) ItemEditSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.load(w, r)
	if !ok {
		return
	}
	if _, err := c.BeginEdit(); err != nil {
		status, msg := itemErrorStatus(err)
		s.renderError(w, r, status, msg)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}

	if err := c.SubmitEdit(r.Context(), r.PostForm); err != nil {
		pd := s.page(r, "Edit "+c.Item().Name)
		var status int
		status, pd.Error = itemErrorStatus(err)
		s.Templates.Render(w, status, "item_edit.html", &itemFormData{
			PageData: pd,
			Item:     c.Item(),
			Form:     c.Buffer(),
		})
		return
	}

	s.Metrics.RecordMutation("update")
	slog.Info("item updated", "id", c.Item().ID)
	http.Redirect(w, r, itemURL(c.Item().ID), http.StatusSeeOther)
}

// ItemDeletePage handles GET /items/{id}/delete, the confirmation step.
func (s *Server) ItemDeletePage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.load(w, r)
	if !ok {
		return
	}
	if !c.CanDelete() {
		http.Redirect(w, r, itemURL(c.Item().ID), http.StatusSeeOther)
		return
	}

	s.Templates.Render(w, http.StatusOK, "item_delete.html", &struct {
		PageData
		Item *model.Item
	}{
		PageData: s.page(r, "Delete "+c.Item().Name),
		Item:     c.Item(),
	})
}

// ItemDeleteSubmit handles POST /items/{id}/delete. The item is deleted
// only when the confirmation page's "confirm=yes" is submitted.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.load(w, r)
	if !ok {
		return
	}

	confirmed := r.PostFormValue("confirm") == "yes"
	deleted, err := c.RequestDelete(r.Context(), func(model.Item) bool { return confirmed })
	if err != nil {
		status, msg := itemErrorStatus(err)
		s.renderError(w, r, status, msg)
		return
	}

	if deleted {
		s.Metrics.RecordMutation("delete")
		slog.Info("item deleted", "id", c.Item().ID)
	}
	http.Redirect(w, r, itemURL(c.Item().ID), http.StatusSeeOther)
}

// ItemRestoreSubmit handles POST /items/{id}/restore.
func (s *Server) ItemRestoreSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.load(w, r)
	if !ok {
		return
	}

	if err := c.Restore(r.Context()); err != nil {
		status, msg := itemErrorStatus(err)
		s.renderError(w, r, status, msg)
		return
	}

	s.Metrics.RecordMutation("restore")
	slog.Info("item restored", "id", c.Item().ID)
	http.Redirect(w, r, itemURL(c.Item().ID), http.StatusSeeOther)
}

// ItemImageSubmit handles POST /items/{id}/image.
func (s *Server) ItemImageSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := lifecycle.ParseID(r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid item id.")
		return
	}

	limit := imaging.DefaultOptions.MaxBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "The photo is too large.")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Choose a photo to upload.")
		return
	}
	defer file.Close()

	if err := s.Backend.SetItemImage(r.Context(), id, file); err != nil {
		status, msg := itemErrorStatus(err)
		s.renderError(w, r, status, msg)
		return
	}

	s.Metrics.RecordMutation("photo")
	slog.Info("item image uploaded", "id", id)
	http.Redirect(w, r, itemURL(id), http.StatusSeeOther)
}

// itemErrorStatus maps an error to a status and a message fit for a page.
func itemErrorStatus(err error) (int, string) {
	var (
		perr *filter.ParseError
		verr *model.ValidationError
		berr *lifecycle.BackendError
	)
	switch {
	case errors.As(err, &perr), errors.As(err, &verr):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, lifecycle.ErrInvalidID), errors.Is(err, lifecycle.ErrValidation),
		errors.Is(err, filter.ErrUnknownField), errors.Is(err, filter.ErrReadOnlyField),
		errors.Is(err, filter.ErrInvalidQuery), errors.Is(err, store.ErrInvalidFilter),
		errors.Is(err, imaging.ErrUnsupportedFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, imaging.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, lifecycle.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Item not found."
	case errors.As(err, &berr):
		slog.Error("backend failure", "op", berr.Op, "error", berr.Err)
		return http.StatusInternalServerError, "Something went wrong while " + berr.Op + "."
	default:
		slog.Error("request failed", "error", err)
		return http.StatusInternalServerError, "Something went wrong."
	}
}

// editableFields keeps the editable schema fields of a submitted form.
func editableFields(values url.Values) filter.Fields {
	out := filter.Fields{}
	for _, f := range filter.Schema {
		if f.Editable {
			out[f.Name] = values.Get(f.Name)
		}
	}
	return out
}

func itemURL(id int64) string {
	return fmt.Sprintf("/items/%d", id)
}
