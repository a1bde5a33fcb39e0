// Package backend defines the catalogue operations shared by the local
// SQLite store and the remote HTTP client.
package backend

import (
	"context"
	"io"

	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/model"
)

// Backend is a catalogue of items. GetItem returns nil, nil when the item
// does not exist; mutations of a missing item fail. ListItems leaves out
// deleted items, while an empty filter matches every item.
type Backend interface {
	CreateItem(ctx context.Context, item *model.Item) (*model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	FilterItems(ctx context.Context, f filter.Filter) ([]model.Item, error)
	UpdateItem(ctx context.Context, id int64, u filter.Update) error
	DeleteItem(ctx context.Context, id int64) error
	ExportCSV(ctx context.Context, f filter.Filter, w io.Writer) error
	SetItemImage(ctx context.Context, id int64, r io.Reader) error
}
