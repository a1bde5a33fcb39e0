package model

// Category is the code of an item's category.
type Category string

// Category codes.
const (
	CategoryAntique          Category = "Antique"
	CategoryBook             Category = "Book"
	CategoryDecor            Category = "Decor"
	CategoryElectronicDevice Category = "ElectronicDevice"
	CategoryFurniture        Category = "Furniture"
	CategoryHouseholdItem    Category = "HouseholdItem"
	CategoryKitchenware      Category = "Kitchenware"
	CategoryMineralSpecimen  Category = "MineralSpecimen"
	CategoryTool             Category = "Tool"
	CategoryWood             Category = "Wood"
	CategoryOther            Category = "Other"
)

// Categories lists every category code in display order.
var Categories = []Category{
	CategoryAntique,
	CategoryBook,
	CategoryDecor,
	CategoryElectronicDevice,
	CategoryFurniture,
	CategoryHouseholdItem,
	CategoryKitchenware,
	CategoryMineralSpecimen,
	CategoryTool,
	CategoryWood,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryElectronicDevice: "Electronic device",
	CategoryHouseholdItem:    "Household item",
	CategoryMineralSpecimen:  "Mineral specimen",
}

// Valid reports whether c is one of the known codes.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the display label. Codes without a label display as themselves.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// CategoryLabel is Label for a raw code string.
func CategoryLabel(code string) string {
	return Category(code).Label()
}
