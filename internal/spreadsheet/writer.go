package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook serializes header and rows as a one-sheet xlsx document.
// Every cell keeps its source kind and number format: text stays text, so
// codes keep their leading zeros, and dates stay dated numbers.
func WriteWorkbook(w io.Writer, sheetName string, header Row, rows []Row) (int64, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := f.GetSheetName(0)
	if sheetName != "" && sheetName != name {
		if err := f.SetSheetName(name, sheetName); err != nil {
			return 0, fmt.Errorf("rename sheet: %w", err)
		}
		name = sheetName
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return 0, fmt.Errorf("stream writer: %w", err)
	}

	cw := &cellWriter{f: f, styles: make(map[NumFormat]int)}
	if err := cw.writeRow(sw, 1, header); err != nil {
		return 0, err
	}
	for i, r := range rows {
		if err := cw.writeRow(sw, i+2, r); err != nil {
			return 0, err
		}
	}

	if err := sw.Flush(); err != nil {
		return 0, fmt.Errorf("flush rows: %w", err)
	}

	n, err := f.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}

// cellWriter turns cells into stream values, creating one style per
// distinct number format.
type cellWriter struct {
	f      *excelize.File
	styles map[NumFormat]int
}

func (cw *cellWriter) writeRow(sw *excelize.StreamWriter, rowNum int, r Row) error {
	if len(r) == 0 {
		return nil
	}

	cellRef, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}

	values := make([]interface{}, len(r))
	for i, c := range r {
		if values[i], err = cw.value(c); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
	}

	if err := sw.SetRow(cellRef, values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func (cw *cellWriter) value(c Cell) (interface{}, error) {
	if c.Value == "" {
		return nil, nil
	}

	switch c.Kind {
	case CellNumber:
		n, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return c.Value, nil
		}
		if c.Format == (NumFormat{}) {
			return n, nil
		}
		styleID, err := cw.style(c.Format)
		if err != nil {
			return nil, err
		}
		return excelize.Cell{StyleID: styleID, Value: n}, nil
	case CellBool:
		return c.Value == "1" || strings.EqualFold(c.Value, "true"), nil
	default:
		return c.Value, nil
	}
}

func (cw *cellWriter) style(format NumFormat) (int, error) {
	if id, ok := cw.styles[format]; ok {
		return id, nil
	}

	style := &excelize.Style{NumFmt: format.ID}
	if format.Code != "" {
		code := format.Code
		style.CustomNumFmt = &code
	}
	id, err := cw.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("number format %+v: %w", format, err)
	}
	cw.styles[format] = id
	return id, nil
}
