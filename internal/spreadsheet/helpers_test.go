package spreadsheet

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeEstimator reports a fixed number of bytes per data row and counts calls.
type fakeEstimator struct {
	bytesPerRow int64
	calls       int
	sizes       []int
	err         error
}

func (f *fakeEstimator) Estimate(sheetName string, header Row, rows []Row) (int64, error) {
	f.calls++
	f.sizes = append(f.sizes, len(rows))
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(rows)) * f.bytesPerRow, nil
}

func standaloneRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = TextRow(fmt.Sprintf("%d", i+1), fmt.Sprintf("Item %d", i+1))
	}
	return rows
}

// productHeader is a reduced product header carrying the grouping columns.
var productHeader = TextRow("ID", ColumnSKU, "Descrição", ColumnProductType, ColumnParentCode)

func parent(sku string) Row {
	return TextRow("", sku, "Produto "+sku, "V", "")
}

func variant(sku, parentSKU string) Row {
	return TextRow("", sku, "Variação "+sku, "S", parentSKU)
}

func simple(sku string) Row {
	return TextRow("", sku, "Produto "+sku, "P", "")
}

func flatten(chunks []Chunk) []Row {
	var out []Row
	for _, c := range chunks {
		out = append(out, c.Rows...)
	}
	return out
}

func chunkSizes(chunks []Chunk) []int {
	sizes := make([]int, len(chunks))
	for i, c := range chunks {
		sizes[i] = len(c.Rows)
	}
	return sizes
}

func writeXLSX(t *testing.T, header Row, rows []Row) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planilha.xlsx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = WriteWorkbook(f, "Produtos", header, rows)
	require.NoError(t, err)
	return path
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}
