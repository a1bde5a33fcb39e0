// Package csvexport writes items as CSV, one row per item.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/erazemk/zbirka/internal/model"
)

// Header is the first row of every export.
var Header = []string{
	"id", "name", "description", "category", "action", "date_added", "last_updated", "deleted",
	"age_years", "date_acquired", "purchase_price", "estimated_value", "creator", "working",
	"provenance",
}

// Write writes the header and one row per item to w. Missing optional
// values and an unknown working state are empty cells.
func Write(w io.Writer, items []model.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i := range items {
		if err := cw.Write(Row(&items[i])); err != nil {
			return fmt.Errorf("writing csv row for item %d: %w", items[i].ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// Row returns the cells for one item, in Header order.
func Row(item *model.Item) []string {
	working := ""
	if item.Working.Known() {
		working = item.Working.String()
	}
	return []string{
		strconv.FormatInt(item.ID, 10),
		item.Name,
		item.Description,
		string(item.Category),
		string(item.Action),
		item.DateAdded,
		item.LastUpdated,
		strconv.FormatBool(item.Deleted),
		optInt(item.AgeYears),
		item.DateAcquired,
		optFloat(item.PurchasePrice),
		optFloat(item.EstimatedValue),
		item.Creator,
		working,
		item.Provenance,
	}
}

func optInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func optFloat(x *float64) string {
	if x == nil {
		return ""
	}
	return strconv.FormatFloat(*x, 'f', -1, 64)
}
