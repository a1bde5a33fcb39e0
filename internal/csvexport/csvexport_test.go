package csvexport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zbirka/internal/model"
)

func TestWrite(t *testing.T) {
	age := int64(120)
	value := 1500.5
	items := []model.Item{
		{
			ID: 1, Name: "Chair, oak", Description: `Carved "Biedermeier" chair`,
			Category: model.CategoryFurniture, Action: model.ActionSell,
			DateAdded: "2024-03-01", LastUpdated: "2024-04-01",
			AgeYears: &age, EstimatedValue: &value, Working: model.Unknown,
		},
		{
			ID: 2, Name: "Drill", Description: "Hand drill",
			Category: model.CategoryTool, Action: model.ActionKeep,
			DateAdded: "2024-03-02", LastUpdated: "2024-03-02",
			Deleted: true, Working: model.True, Creator: "Stanley",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, items))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{
		"1", "Chair, oak", `Carved "Biedermeier" chair`, "Furniture", "Sell", "2024-03-01", "2024-04-01",
		"false", "120", "", "", "1500.5", "", "", "",
	}, records[1])
	assert.Equal(t, "true", records[2][7])
	assert.Equal(t, "true", records[2][13])
	assert.Equal(t, "Stanley", records[2][12])
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Equal(t, "id,name,description,category,action,date_added,last_updated,deleted,"+
		"age_years,date_acquired,purchase_price,estimated_value,creator,working,provenance\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritePropagatesErrors(t *testing.T) {
	err := Write(failingWriter{}, []model.Item{{ID: 1, Name: "x"}})
	assert.Error(t, err)
}
