package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/model"
)

// fakeBackend keeps items in memory and records every call.
type fakeBackend struct {
	items     map[int64]model.Item
	gets      int
	updates   []filter.Update
	getErr    error
	updateErr error
}

func newFakeBackend(items ...model.Item) *fakeBackend {
	b := &fakeBackend{items: map[int64]model.Item{}}
	for _, it := range items {
		b.items[it.ID] = it
	}
	return b
}

func (b *fakeBackend) GetItem(_ context.Context, id int64) (*model.Item, error) {
	b.gets++
	if b.getErr != nil {
		return nil, b.getErr
	}
	it, ok := b.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (b *fakeBackend) UpdateItem(_ context.Context, id int64, u filter.Update) error {
	b.updates = append(b.updates, u)
	if b.updateErr != nil {
		return b.updateErr
	}
	it := b.items[id]
	if err := u.ApplyTo(&it); err != nil {
		return err
	}
	it.LastUpdated = "2025-02-02"
	b.items[id] = it
	return nil
}

func (b *fakeBackend) calls() int { return b.gets + len(b.updates) }

func lamp() model.Item {
	return model.Item{
		ID:          7,
		Name:        "Lamp",
		Description: "Art deco table lamp",
		Category:    model.CategoryDecor,
		Action:      model.ActionKeep,
		LastUpdated: "2025-01-01",
	}
}

func viewing(t *testing.T, items ...model.Item) (*Controller, *fakeBackend) {
	t.Helper()
	b := newFakeBackend(items...)
	c := New(b)
	require.NoError(t, c.Load(context.Background(), "7"))
	return c, b
}

func TestLoadInvalidIDNeverCallsBackend(t *testing.T) {
	for _, raw := range []string{"0", "-5", "abc", "", "7.5", " 7"} {
		t.Run(raw, func(t *testing.T) {
			b := newFakeBackend(lamp())
			c := New(b)

			err := c.Load(context.Background(), raw)
			assert.ErrorIs(t, err, ErrInvalidID)
			assert.Equal(t, 0, b.calls())
			assert.Equal(t, StateIdle, c.State())
		})
	}
}

func TestLoadFound(t *testing.T) {
	c, _ := viewing(t, lamp())

	assert.Equal(t, StateViewing, c.State())
	assert.False(t, c.Deleted())
	assert.Equal(t, "Lamp", c.Item().Name)
	assert.True(t, c.CanEdit())
	assert.True(t, c.CanDelete())
	assert.False(t, c.CanRestore())
}

func TestLoadNotFound(t *testing.T) {
	c := New(newFakeBackend())

	err := c.Load(context.Background(), "7")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, StateNotFound, c.State())
	assert.Nil(t, c.Item())

	_, err = c.BeginEdit()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLoadBackendFailure(t *testing.T) {
	b := newFakeBackend(lamp())
	b.getErr = errors.New("connection refused")
	c := New(b)

	err := c.Load(context.Background(), "7")
	var berr *BackendError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, StateLoadError, c.State())

	// A fresh fetch recovers.
	b.getErr = nil
	require.NoError(t, c.Load(context.Background(), "7"))
	assert.Equal(t, StateViewing, c.State())
}

func TestLoadDeletedItemEntersDeletedSubState(t *testing.T) {
	item := lamp()
	item.Deleted = true
	c, b := viewing(t, item)

	assert.Equal(t, StateViewing, c.State())
	assert.True(t, c.Deleted())
	assert.False(t, c.CanEdit())
	assert.False(t, c.CanDelete())
	assert.True(t, c.CanRestore())

	_, err := c.RequestDelete(context.Background(), func(model.Item) bool { return true })
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = c.BeginEdit()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, b.updates)
}

func TestBeginEditPrefillsBuffer(t *testing.T) {
	item := lamp()
	item.Working = model.True
	c, b := viewing(t, item)
	calls := b.calls()

	buf, err := c.BeginEdit()
	require.NoError(t, err)
	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, "Lamp", buf.Get("name"))
	assert.Equal(t, "true", buf.Get("working"))
	assert.Equal(t, "", buf.Get("age_years"))
	assert.Equal(t, calls, b.calls(), "BeginEdit must not call the backend")
}

func TestCancelEdit(t *testing.T) {
	c, _ := viewing(t, lamp())
	_, err := c.BeginEdit()
	require.NoError(t, err)

	require.NoError(t, c.CancelEdit())
	assert.Equal(t, StateViewing, c.State())
	assert.Nil(t, c.Buffer())
	assert.ErrorIs(t, c.CancelEdit(), ErrInvalidTransition)
}

func TestSubmitEditEmptyPayload(t *testing.T) {
	c, b := viewing(t, lamp())
	_, err := c.BeginEdit()
	require.NoError(t, err)
	calls := b.calls()

	err = c.SubmitEdit(context.Background(), filter.Fields{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, calls, b.calls())
}

func TestSubmitEditOnlyUnknownTriState(t *testing.T) {
	c, b := viewing(t, lamp())
	_, err := c.BeginEdit()
	require.NoError(t, err)
	calls := b.calls()

	err = c.SubmitEdit(context.Background(), filter.Fields{"working": "maybe"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, calls, b.calls())
	assert.Equal(t, "maybe", c.Buffer().Get("working"))

	// Alongside a real change the unknown value is still sent.
	require.NoError(t, c.SubmitEdit(context.Background(), filter.Fields{"working": "maybe", "creator": "Tiffany"}))
	require.Len(t, b.updates, 1)
	assert.Equal(t, filter.Update{
		"working": filter.Bool(model.Unknown),
		"creator": filter.String("Tiffany"),
	}, b.updates[0])
}

func TestSubmitEditParseError(t *testing.T) {
	c, b := viewing(t, lamp())
	_, err := c.BeginEdit()
	require.NoError(t, err)

	err = c.SubmitEdit(context.Background(), filter.Fields{"name": "Lamp", "age_years": "old"})
	var perr *filter.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StateEditing, c.State())
	assert.Empty(t, b.updates)
	assert.Equal(t, "old", c.Buffer().Get("age_years"), "submitted values are kept")
}

func TestSubmitEditSuccess(t *testing.T) {
	c, b := viewing(t, lamp())
	_, err := c.BeginEdit()
	require.NoError(t, err)

	err = c.SubmitEdit(context.Background(), filter.Fields{
		"name":           "Brass lamp",
		"description":    "",
		"purchase_price": "40",
	})
	require.NoError(t, err)

	require.Len(t, b.updates, 1)
	assert.Equal(t, filter.Update{
		"name":           filter.String("Brass lamp"),
		"purchase_price": filter.Float(40),
	}, b.updates[0])

	assert.Equal(t, StateViewing, c.State())
	assert.Equal(t, "Brass lamp", c.Item().Name)
	assert.Equal(t, "Art deco table lamp", c.Item().Description, "blank fields are left alone")
	assert.Equal(t, "2025-02-02", c.Item().LastUpdated, "item is re-fetched")
}

func TestSubmitEditBackendFailureKeepsBuffer(t *testing.T) {
	c, b := viewing(t, lamp())
	_, err := c.BeginEdit()
	require.NoError(t, err)
	b.updateErr = errors.New("disk full")

	err = c.SubmitEdit(context.Background(), filter.Fields{"name": "Renamed"})
	var berr *BackendError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, "Renamed", c.Buffer().Get("name"))
	assert.Equal(t, "Lamp", c.Item().Name)

	// Load is refused while an edit is in progress.
	assert.ErrorIs(t, c.Load(context.Background(), "7"), ErrInvalidTransition)

	// Retrying after the failure clears succeeds.
	b.updateErr = nil
	require.NoError(t, c.SubmitEdit(context.Background(), c.Buffer()))
	assert.Equal(t, "Renamed", c.Item().Name)
}

func TestSubmitEditOutsideEditing(t *testing.T) {
	c, _ := viewing(t, lamp())
	err := c.SubmitEdit(context.Background(), filter.Fields{"name": "x"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRequestDeleteDeclined(t *testing.T) {
	for name, confirm := range map[string]Confirm{
		"declined": func(model.Item) bool { return false },
		"nil":      nil,
	} {
		t.Run(name, func(t *testing.T) {
			c, b := viewing(t, lamp())
			calls := b.calls()

			deleted, err := c.RequestDelete(context.Background(), confirm)
			require.NoError(t, err)
			assert.False(t, deleted)
			assert.Equal(t, calls, b.calls())
			assert.False(t, c.Deleted())
		})
	}
}

func TestRequestDeleteConfirmed(t *testing.T) {
	c, b := viewing(t, lamp())

	var asked model.Item
	deleted, err := c.RequestDelete(context.Background(), func(item model.Item) bool {
		asked = item
		return true
	})
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, "Lamp", asked.Name)

	require.Len(t, b.updates, 1)
	assert.Equal(t, filter.SetDeleted(true), b.updates[0])
	assert.True(t, c.Deleted())
	assert.True(t, c.CanRestore())
	assert.True(t, b.items[7].Deleted)
}

func TestRequestDeleteBackendFailure(t *testing.T) {
	c, b := viewing(t, lamp())
	b.updateErr = errors.New("timeout")

	deleted, err := c.RequestDelete(context.Background(), func(model.Item) bool { return true })
	var berr *BackendError
	require.True(t, errors.As(err, &berr))
	assert.False(t, deleted)
	assert.False(t, c.Deleted())
	assert.Equal(t, StateViewing, c.State())
}

func TestRestore(t *testing.T) {
	item := lamp()
	item.Deleted = true
	c, b := viewing(t, item)

	require.NoError(t, c.Restore(context.Background()))

	require.Len(t, b.updates, 1)
	assert.Equal(t, filter.SetDeleted(false), b.updates[0])
	assert.Equal(t, StateViewing, c.State())
	assert.False(t, c.Deleted())
	assert.False(t, c.Item().Deleted)
	assert.True(t, c.CanEdit())

	assert.ErrorIs(t, c.Restore(context.Background()), ErrInvalidTransition)
}

func TestRestoreBackendFailure(t *testing.T) {
	item := lamp()
	item.Deleted = true
	c, b := viewing(t, item)
	b.updateErr = errors.New("unavailable")

	err := c.Restore(context.Background())
	var berr *BackendError
	require.True(t, errors.As(err, &berr))
	assert.True(t, c.Deleted())
}

func TestDeleteThenRestoreRoundTrip(t *testing.T) {
	c, _ := viewing(t, lamp())

	_, err := c.RequestDelete(context.Background(), func(model.Item) bool { return true })
	require.NoError(t, err)
	require.NoError(t, c.Restore(context.Background()))

	assert.False(t, c.Deleted())
	assert.Equal(t, StateViewing, c.State())
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseID("-1")
	assert.ErrorIs(t, err, ErrInvalidID)
}
