package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/record"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode reads the first sheet of the file at path. The first row is the
// header; a sheet without at least one data row is rejected.
func Decode(path string, format Format) (*Sheet, error) {
	name, rows, err := readRows(path, format, 0)
	if err != nil {
		return nil, err
	}

	rows = dropTrailingBlank(rows)
	if len(rows) < 2 {
		return nil, NewEmptyInputError()
	}

	sheet := &Sheet{
		Name:   name,
		Header: trimTrailingEmpty(rows[0]),
		Rows:   rows[1:],
	}
	return sheet, nil
}

// DecodeHeader reads only the first row of the first sheet.
func DecodeHeader(path string, format Format) (Row, error) {
	_, rows, err := readRows(path, format, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, NewEmptyInputError()
	}
	return trimTrailingEmpty(rows[0]), nil
}

// readRows returns the sheet name and up to limit rows (0 = all).
func readRows(path string, format Format, limit int) (string, []Row, error) {
	switch format {
	case FormatCSV:
		return readCSV(path, limit)
	case FormatXLS:
		return readXLS(path, limit)
	default:
		return readXLSX(path, limit)
	}
}

func readXLSX(path string, limit int) (string, []Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, NewDecodeError(err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return "", nil, NewEmptyInputError()
	}

	iter, err := f.Rows(name)
	if err != nil {
		return "", nil, NewDecodeError(err)
	}
	defer iter.Close()

	typer := newXLSXTyper(f, name)
	var rows []Row
	for iter.Next() {
		cols, err := iter.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return "", nil, NewDecodeError(err)
		}

		rowNum := len(rows) + 1
		row := make(Row, len(cols))
		for i, raw := range cols {
			if row[i], err = typer.cell(i+1, rowNum, raw); err != nil {
				return "", nil, NewDecodeError(err)
			}
		}
		rows = append(rows, row)
		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return "", nil, NewDecodeError(err)
	}

	return name, rows, nil
}

// xlsxTyper recovers the stored type and number format of a cell, which the
// row iterator drops.
type xlsxTyper struct {
	f       *excelize.File
	sheet   string
	formats map[int]NumFormat
}

func newXLSXTyper(f *excelize.File, sheet string) *xlsxTyper {
	return &xlsxTyper{f: f, sheet: sheet, formats: make(map[int]NumFormat)}
}

func (t *xlsxTyper) cell(col, row int, raw string) (Cell, error) {
	if raw == "" {
		return Cell{}, nil
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, err
	}
	typ, err := t.f.GetCellType(t.sheet, ref)
	if err != nil {
		return Cell{}, fmt.Errorf("cell %s type: %w", ref, err)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return Text(raw), nil
		}
		format, err := t.format(ref)
		if err != nil {
			return Cell{}, err
		}
		return Cell{Value: raw, Kind: CellNumber, Format: format}, nil
	case excelize.CellTypeBool:
		return Cell{Value: raw, Kind: CellBool}, nil
	default:
		return Text(raw), nil
	}
}

func (t *xlsxTyper) format(ref string) (NumFormat, error) {
	idx, err := t.f.GetCellStyle(t.sheet, ref)
	if err != nil {
		return NumFormat{}, fmt.Errorf("cell %s style: %w", ref, err)
	}
	if idx == 0 {
		return NumFormat{}, nil
	}
	if format, ok := t.formats[idx]; ok {
		return format, nil
	}

	style, err := t.f.GetStyle(idx)
	if err != nil {
		return NumFormat{}, fmt.Errorf("style %d: %w", idx, err)
	}
	format := NumFormat{ID: style.NumFmt}
	if style.CustomNumFmt != nil {
		format.Code = *style.CustomNumFmt
	}
	t.formats[idx] = format
	return format, nil
}

func readXLS(path string, limit int) (string, []Row, error) {
	wb, err := xls.OpenFile(path)
	if err != nil {
		return "", nil, NewDecodeError(err)
	}
	if wb.GetNumberSheets() == 0 {
		return "", nil, NewEmptyInputError()
	}

	sheet, err := wb.GetSheet(0)
	if err != nil {
		return "", nil, NewDecodeError(err)
	}

	var rows []Row
	n := sheet.GetNumberRows()
	for i := 0; i < n; i++ {
		row, _ := sheet.GetRow(i)
		cols := row.GetCols()
		values := make(Row, len(cols))
		for j, col := range cols {
			values[j] = xlsCell(&wb, col)
		}
		rows = append(rows, values)
		if limit > 0 && len(rows) >= limit {
			break
		}
	}

	name := sheet.GetName()
	if name == "" {
		name = defaultSheetName
	}
	return name, rows, nil
}

// firstCustomNumFmt is where workbook-defined number formats start; lower
// ids are builtins shared by xls and xlsx.
const firstCustomNumFmt = 164

func xlsCell(wb *xls.Workbook, col structure.CellData) Cell {
	switch col.(type) {
	case *record.Number, *record.Rk:
		c := Cell{
			Value: strconv.FormatFloat(col.GetFloat64(), 'f', -1, 64),
			Kind:  CellNumber,
		}
		xf := wb.GetXFbyIndex(col.GetXFIndex())
		c.Format.ID = xf.GetFormatIndex()
		if c.Format.ID >= firstCustomNumFmt {
			format := wb.GetFormatByIndex(c.Format.ID)
			c.Format = NumFormat{Code: format.String()}
		}
		return c
	case *record.BoolErr:
		v := col.GetString()
		if v == "TRUE" || v == "FALSE" {
			return Cell{Value: v, Kind: CellBool}
		}
		return Text(v)
	default:
		return Text(col.GetString())
	}
}

func readCSV(path string, limit int) (string, []Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, NewDecodeError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	if err != nil {
		return "", nil, NewDecodeError(fmt.Errorf("utf-8 decode: %w", err))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, NewDecodeError(err)
		}
		rows = append(rows, TextRow(record...))
		if limit > 0 && len(rows) >= limit {
			break
		}
	}

	return defaultSheetName, rows, nil
}

// detectDelimiter looks at the first line only: spreadsheets exported with
// a pt-BR locale use ';' because ',' is the decimal separator.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func dropTrailingBlank(rows []Row) []Row {
	end := len(rows)
	for end > 0 && isBlank(rows[end-1]) {
		end--
	}
	return rows[:end]
}
