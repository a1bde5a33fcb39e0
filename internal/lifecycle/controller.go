// Package lifecycle drives a single item through loading, viewing, editing,
// soft deletion and restoration.
package lifecycle

import (
	"context"
	"fmt"
	"strconv"

	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/model"
)

// State is the controller's position in the item lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateViewing
	StateEditing
	StateNotFound
	StateLoadError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateViewing:
		return "viewing"
	case StateEditing:
		return "editing"
	case StateNotFound:
		return "not found"
	case StateLoadError:
		return "load error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Backend is the part of the catalogue the controller talks to. GetItem
// returns nil, nil when the item does not exist.
type Backend interface {
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, u filter.Update) error
}

// Confirm decides whether a pending deletion goes ahead.
type Confirm func(item model.Item) bool

// Controller owns one loaded item for the duration of a detail view. It is
// not safe for concurrent use.
type Controller struct {
	backend Backend
	state   State
	item    *model.Item
	buffer  filter.Fields
}

// New returns an idle controller.
func New(backend Backend) *Controller {
	return &Controller{backend: backend}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Item returns a copy of the loaded item, or nil.
func (c *Controller) Item() *model.Item {
	if c.item == nil {
		return nil
	}
	item := *c.item
	return &item
}

// Deleted reports whether the controller is in the deleted sub-state of viewing.
func (c *Controller) Deleted() bool {
	return c.state == StateViewing && c.item != nil && c.item.Deleted
}

// Buffer returns a copy of the edit buffer; nil outside editing.
func (c *Controller) Buffer() filter.Fields {
	if c.state != StateEditing {
		return nil
	}
	buf := make(filter.Fields, len(c.buffer))
	for k, v := range c.buffer {
		buf[k] = v
	}
	return buf
}

// CanEdit reports whether BeginEdit is allowed.
func (c *Controller) CanEdit() bool { return c.state == StateViewing && !c.item.Deleted }

// CanDelete reports whether RequestDelete is allowed.
func (c *Controller) CanDelete() bool { return c.CanEdit() }

// CanRestore reports whether Restore is allowed.
func (c *Controller) CanRestore() bool { return c.Deleted() }

// ParseID validates a raw item id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// Load fetches the item with the given id. An invalid id fails before the
// backend is contacted and leaves the state unchanged.
func (c *Controller) Load(ctx context.Context, rawID string) error {
	if c.state == StateEditing {
		return transitionError("load", c.state.String())
	}
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}

	c.state = StateLoading
	c.item = nil
	c.buffer = nil

	item, err := c.backend.GetItem(ctx, id)
	if err != nil {
		c.state = StateLoadError
		return &BackendError{Op: "loading item", Err: err}
	}
	if item == nil {
		c.state = StateNotFound
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	c.item = item
	c.state = StateViewing
	return nil
}

// BeginEdit enters editing with a buffer prefilled from the item.
func (c *Controller) BeginEdit() (filter.Fields, error) {
	if !c.CanEdit() {
		return nil, transitionError("edit", c.describe())
	}
	c.buffer = filter.EditBuffer(c.item)
	c.state = StateEditing
	return c.Buffer(), nil
}

// CancelEdit discards the buffer and returns to viewing.
func (c *Controller) CancelEdit() error {
	if c.state != StateEditing {
		return transitionError("cancel edit", c.state.String())
	}
	c.buffer = nil
	c.state = StateViewing
	return nil
}

// SubmitEdit sends the non-blank editable fields of form as a partial update
// and re-fetches the item. On any failure the controller stays in editing
// with the submitted values kept in the buffer.
func (c *Controller) SubmitEdit(ctx context.Context, form filter.Form) error {
	if c.state != StateEditing {
		return transitionError("submit edit", c.state.String())
	}

	for _, f := range filter.Schema {
		if f.Editable {
			c.buffer[f.Name] = form.Get(f.Name)
		}
	}

	u, err := filter.BuildUpdate(c.buffer)
	if err != nil {
		return err
	}
	if u.Empty() {
		return fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	if err := c.backend.UpdateItem(ctx, c.item.ID, u); err != nil {
		return &BackendError{Op: "updating item", Err: err}
	}

	item, err := c.refetch(ctx)
	if err != nil {
		return err
	}

	c.item = item
	c.buffer = nil
	c.state = StateViewing
	return nil
}

// RequestDelete asks confirm and, when it agrees, soft-deletes the item.
// It reports whether the item was deleted; a declined or nil confirm
// changes nothing.
func (c *Controller) RequestDelete(ctx context.Context, confirm Confirm) (bool, error) {
	if !c.CanDelete() {
		return false, transitionError("delete", c.describe())
	}
	if confirm == nil || !confirm(*c.item) {
		return false, nil
	}

	if err := c.backend.UpdateItem(ctx, c.item.ID, filter.SetDeleted(true)); err != nil {
		return false, &BackendError{Op: "deleting item", Err: err}
	}

	c.item.Deleted = true
	return true, nil
}

// Restore clears the deleted flag and re-fetches the item.
func (c *Controller) Restore(ctx context.Context) error {
	if !c.CanRestore() {
		return transitionError("restore", c.describe())
	}

	if err := c.backend.UpdateItem(ctx, c.item.ID, filter.SetDeleted(false)); err != nil {
		return &BackendError{Op: "restoring item", Err: err}
	}

	item, err := c.refetch(ctx)
	if err != nil {
		return err
	}
	c.item = item
	return nil
}

func (c *Controller) refetch(ctx context.Context) (*model.Item, error) {
	item, err := c.backend.GetItem(ctx, c.item.ID)
	if err != nil {
		return nil, &BackendError{Op: "reloading item", Err: err}
	}
	if item == nil {
		return nil, &BackendError{Op: "reloading item", Err: fmt.Errorf("%w: %d", ErrNotFound, c.item.ID)}
	}
	return item, nil
}

// describe names the state for error messages, distinguishing the deleted
// sub-state.
func (c *Controller) describe() string {
	if c.Deleted() {
		return "viewing a deleted item"
	}
	return c.state.String()
}
