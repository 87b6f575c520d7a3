package spreadsheet

import "strings"

const (
	productTypeParent  = "V"
	productTypeVariant = "S"
)

// groupingColumns locates the product roles inside a header.
type groupingColumns struct {
	productType int
	parentCode  int
	sku         int
}

// locateGroupingColumns looks the roles up by name. ok is false when any of
// them is missing, in which case splitting falls back to plain row counts.
func locateGroupingColumns(header Row) (cols groupingColumns, ok bool) {
	cols = groupingColumns{productType: -1, parentCode: -1, sku: -1}
	for i, name := range header {
		switch strings.TrimSpace(name.Value) {
		case ColumnProductType:
			cols.productType = i
		case ColumnParentCode:
			cols.parentCode = i
		case ColumnSKU:
			cols.sku = i
		}
	}
	ok = cols.productType >= 0 && cols.parentCode >= 0 && cols.sku >= 0
	return cols, ok
}

func (g groupingColumns) typeOf(r Row) string {
	return strings.ToUpper(strings.TrimSpace(cell(r, g.productType)))
}

func (g groupingColumns) parentOf(r Row) string {
	return strings.TrimSpace(cell(r, g.parentCode))
}

func (g groupingColumns) skuOf(r Row) string {
	return strings.TrimSpace(cell(r, g.sku))
}
