package backend

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/erazemk/zbirka/internal/csvexport"
	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// Local is a Backend over a SQLite database.
type Local struct {
	DB *sql.DB
}

// NewLocal returns a Backend over db. The schema must already be migrated.
func NewLocal(db *sql.DB) *Local {
	return &Local{DB: db}
}

var _ Backend = (*Local)(nil)

func (l *Local) CreateItem(ctx context.Context, item *model.Item) (*model.Item, error) {
	return store.CreateItem(ctx, l.DB, item)
}

func (l *Local) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return store.GetItem(ctx, l.DB, id)
}

func (l *Local) ListItems(ctx context.Context) ([]model.Item, error) {
	return store.ListItems(ctx, l.DB)
}

func (l *Local) FilterItems(ctx context.Context, f filter.Filter) ([]model.Item, error) {
	return store.FilterItems(ctx, l.DB, f)
}

func (l *Local) UpdateItem(ctx context.Context, id int64, u filter.Update) error {
	_, err := store.UpdateItemFields(ctx, l.DB, id, u)
	return err
}

func (l *Local) DeleteItem(ctx context.Context, id int64) error {
	return store.SoftDeleteItem(ctx, l.DB, id)
}

// ExportCSV writes the items matching f. An empty filter has no
// constraints, so deleted items are exported too.
func (l *Local) ExportCSV(ctx context.Context, f filter.Filter, w io.Writer) error {
	items, err := store.FilterItems(ctx, l.DB, f)
	if err != nil {
		return err
	}
	return csvexport.Write(w, items)
}

func (l *Local) SetItemImage(ctx context.Context, id int64, r io.Reader) error {
	photo, err := imaging.Process(r, imaging.DefaultOptions)
	if err != nil {
		return fmt.Errorf("processing photo: %w", err)
	}
	return store.SetItemImage(ctx, l.DB, id, photo.Data, photo.MIME)
}
