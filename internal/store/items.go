package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/model"
)

var (
	// ErrNotFound is returned by mutations addressed to a missing item.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidFilter is returned when a filter value disagrees with the schema.
	ErrInvalidFilter = errors.New("invalid filter")
)

const itemColumns = `id, name, description, category, action, date_added, last_updated, deleted,
	age_years, date_acquired, purchase_price, estimated_value, creator, working, provenance, image_mime`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var (
		item                     model.Item
		category, action         string
		age                      sql.NullInt64
		acquired, creator        sql.NullString
		provenance, imageMime    sql.NullString
		purchasePrice, estimated sql.NullFloat64
		working                  sql.NullBool
	)
	err := row.Scan(&item.ID, &item.Name, &item.Description, &category, &action,
		&item.DateAdded, &item.LastUpdated, &item.Deleted,
		&age, &acquired, &purchasePrice, &estimated, &creator, &working, &provenance, &imageMime)
	if err != nil {
		return nil, err
	}

	item.Category = model.Category(category)
	item.Action = model.Action(action)
	if age.Valid {
		item.AgeYears = &age.Int64
	}
	if purchasePrice.Valid {
		item.PurchasePrice = &purchasePrice.Float64
	}
	if estimated.Valid {
		item.EstimatedValue = &estimated.Float64
	}
	if working.Valid {
		item.Working = model.TriStateOf(working.Bool)
	}
	item.DateAcquired = acquired.String
	item.Creator = creator.String
	item.Provenance = provenance.String
	item.ImageMime = imageMime.String
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// itemArgs returns the writable columns of item in the order used by
// insert and update statements.
func itemArgs(item *model.Item) []any {
	return []any{
		item.Name, item.Description, string(item.Category), string(item.Action),
		item.LastUpdated, item.Deleted,
		nullInt(item.AgeYears), nullString(item.DateAcquired),
		nullFloat(item.PurchasePrice), nullFloat(item.EstimatedValue),
		nullString(item.Creator), nullBool(item.Working), nullString(item.Provenance),
	}
}

// CreateItem validates and inserts a new item. The id and dates are assigned
// here; any values set on item for them are ignored.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	item.ApplyDefaults()
	if err := item.Validate(); err != nil {
		return nil, err
	}

	today := model.Today()
	item.DateAdded = today
	item.LastUpdated = today
	item.Deleted = false

	args := append(itemArgs(item), item.DateAdded)
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, description, category, action, last_updated, deleted,
		     age_years, date_acquired, purchase_price, estimated_value, creator, working, provenance,
		     date_added)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, deleted or not. It returns nil, nil when
// no such item exists.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all non-deleted items ordered by id.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE deleted = 0 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return scanItems(rows)
}

// FilterItems returns the items matching every constraint in f, ordered by
// id. Deleted items are included unless f constrains deleted. Keys the
// schema does not know are ignored.
func FilterItems(ctx context.Context, db *sql.DB, f filter.Filter) ([]model.Item, error) {
	where, args, err := whereClause(f)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtering items: %w", err)
	}
	return scanItems(rows)
}

// whereClause translates f into SQL. Column names come from the schema
// table, never from the caller, so they are safe to interpolate.
func whereClause(f filter.Filter) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	for _, key := range f.Keys() {
		v := f[key]
		field, op, ok := filter.Lookup(key)
		if !ok {
			continue
		}

		want := field.Kind
		if op == filter.OpContains {
			want = filter.KindString
		}
		if v.Kind() != want {
			return "", nil, fmt.Errorf("%w: %s is %s, want %s", ErrInvalidFilter, key, v.Kind(), want)
		}

		if field.Kind == filter.KindBoolean {
			if !v.TriState().Known() {
				continue
			}
			conds = append(conds, field.Name+" = ?")
			args = append(args, v.SQLArg())
			continue
		}

		switch op {
		case filter.OpEq:
			conds = append(conds, field.Name+" = ?")
			args = append(args, v.SQLArg())
		case filter.OpMin:
			conds = append(conds, field.Name+" >= ?")
			args = append(args, v.SQLArg())
		case filter.OpMax:
			conds = append(conds, field.Name+" <= ?")
			args = append(args, v.SQLArg())
		case filter.OpContains:
			conds = append(conds, field.Name+" LIKE ? ESCAPE '\\'")
			args = append(args, "%"+escapeLike(v.Text())+"%")
		}
	}
	return strings.Join(conds, " AND "), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// UpdateItemFields applies a partial update to an item in one transaction:
// the stored item is loaded, the update applied and the result validated
// before anything is written. last_updated is stamped with today's date.
func UpdateItemFields(ctx context.Context, db *sql.DB, id int64, u filter.Update) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := scanItem(tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading item: %w", err)
	}

	if err := u.ApplyTo(item); err != nil {
		return nil, err
	}
	// Deleting or restoring must work on rows that predate validation.
	if !onlyDeleted(u) {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}
	item.LastUpdated = model.Today()

	args := append(itemArgs(item), id)
	_, err = tx.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, category = ?, action = ?, last_updated = ?,
		     deleted = ?, age_years = ?, date_acquired = ?, purchase_price = ?, estimated_value = ?,
		     creator = ?, working = ?, provenance = ?
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return item, nil
}

func onlyDeleted(u filter.Update) bool {
	_, ok := u["deleted"]
	return ok && len(u) == 1
}

// SetItemDeleted soft-deletes or restores an item.
func SetItemDeleted(ctx context.Context, db *sql.DB, id int64, deleted bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET deleted = ?, last_updated = ? WHERE id = ?`,
		deleted, model.Today(), id,
	)
	if err != nil {
		return fmt.Errorf("setting item deleted: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// SoftDeleteItem marks an item deleted.
func SoftDeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	return SetItemDeleted(ctx, db, id, true)
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, last_updated = ? WHERE id = ?`,
		image, mime, model.Today(), id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type. Both are empty
// when the item or its image is missing.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// Stats summarizes the catalogue.
type Stats struct {
	Total          int            `json:"total" yaml:"total"`
	Deleted        int            `json:"deleted" yaml:"deleted"`
	ForSale        int            `json:"for_sale" yaml:"for_sale"`
	EstimatedValue float64        `json:"estimated_value" yaml:"estimated_value"`
	ByCategory     map[string]int `json:"by_category" yaml:"by_category"`
}

// GetStats returns counts over non-deleted items, plus the deleted count.
func GetStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	stats := &Stats{ByCategory: map[string]int{}}

	err := db.QueryRowContext(ctx,
		`SELECT
		     COALESCE(SUM(CASE WHEN deleted = 0 THEN 1 ELSE 0 END), 0),
		     COALESCE(SUM(deleted), 0),
		     COALESCE(SUM(CASE WHEN deleted = 0 AND action = 'Sell' THEN 1 ELSE 0 END), 0),
		     COALESCE(SUM(CASE WHEN deleted = 0 THEN estimated_value END), 0)
		 FROM items`,
	).Scan(&stats.Total, &stats.Deleted, &stats.ForSale, &stats.EstimatedValue)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM items WHERE deleted = 0 GROUP BY category`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		stats.ByCategory[category] = n
	}
	return stats, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func nullFloat(x *float64) sql.NullFloat64 {
	if x == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *x, Valid: true}
}

func nullBool(t model.TriState) sql.NullBool {
	if !t.Known() {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: t == model.True, Valid: true}
}
