package spreadsheet

import (
	"path/filepath"
	"strings"
)

// Format is the on-disk encoding of an uploaded spreadsheet.
type Format int

const (
	FormatXLSX Format = iota
	FormatXLS
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatXLS:
		return "xls"
	case FormatCSV:
		return "csv"
	default:
		return "xlsx"
	}
}

// FormatFromFilename picks the decoder by extension. Unknown extensions are
// treated as xlsx, which is what the ERP exports.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".xls":
		return FormatXLS
	default:
		return FormatXLSX
	}
}

// CellKind is how a value was stored in the source workbook.
type CellKind uint8

const (
	CellText CellKind = iota
	CellNumber
	CellBool
)

// NumFormat is a source number format. Code, when set, is a custom format
// code and wins over the builtin ID. Dates are numbers with a date format.
type NumFormat struct {
	ID   int
	Code string
}

// Cell is one value as read from the source. Value holds the raw text: the
// shared string, the unformatted number or "1"/"0" for booleans.
type Cell struct {
	Value  string
	Kind   CellKind
	Format NumFormat
}

// Text builds a text cell.
func Text(v string) Cell {
	return Cell{Value: v}
}

// Row is one line of cells, positionally aligned to the header.
type Row []Cell

// TextRow builds a row of text cells.
func TextRow(values ...string) Row {
	r := make(Row, len(values))
	for i, v := range values {
		r[i] = Text(v)
	}
	return r
}

// Values returns the raw text of every cell.
func (r Row) Values() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Value
	}
	return out
}

// Sheet is the first sheet of a decoded workbook.
type Sheet struct {
	Name   string
	Header Row
	Rows   []Row
}

// Chunk is one output workbook: the shared header plus a run of data rows.
type Chunk struct {
	Index  int
	Header Row
	Rows   []Row
}

const defaultSheetName = "Planilha1"

func cell(r Row, idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return r[idx].Value
}

func isBlank(r Row) bool {
	for _, c := range r {
		if strings.TrimSpace(c.Value) != "" {
			return false
		}
	}
	return true
}

func trimTrailingEmpty(r Row) Row {
	end := len(r)
	for end > 0 && r[end-1].Value == "" {
		end--
	}
	return r[:end]
}
