package spreadsheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPacker(est SizeEstimator) *Packer {
	return NewPacker(est, PackerConfig{
		Budget: SizeBudget{MaxInputBytes: DefaultMaxInputBytes},
	})
}

func TestPack_StandaloneRowsSplitIntoFixedChunks(t *testing.T) {
	est := &fakeEstimator{bytesPerRow: 10}
	sheet := &Sheet{Name: "Planilha1", Header: TextRow("ID", "Nome"), Rows: standaloneRows(1200)}

	plan, err := newTestPacker(est).Pack(sheet, LayoutCustomers)
	require.NoError(t, err)

	assert.Equal(t, 500, plan.RowsPerChunk)
	assert.False(t, plan.Grouped)
	assert.Equal(t, []int{500, 500, 200}, chunkSizes(plan.Chunks))
	assert.Equal(t, 1, est.calls, "a sample under budget needs a single estimate")

	for i, c := range plan.Chunks {
		assert.Equal(t, i+1, c.Index)
		assert.Equal(t, sheet.Header, c.Header)
	}
}

func TestPack_PartitionKeepsEveryRowInOrder(t *testing.T) {
	sheet := &Sheet{Header: TextRow("ID", "Nome"), Rows: standaloneRows(1234)}

	plan, err := newTestPacker(&fakeEstimator{bytesPerRow: 1}).Pack(sheet, "qualquer")
	require.NoError(t, err)

	assert.Equal(t, sheet.Rows, flatten(plan.Chunks))
}

func TestRowsPerChunk_HalvesUntilUnderTarget(t *testing.T) {
	target := SizeBudget{MaxInputBytes: DefaultMaxInputBytes}.ChunkTarget()
	// 100 rows fit the target exactly, so 500 -> 250 -> 125 -> 62
	est := &fakeEstimator{bytesPerRow: target / 100}
	sheet := &Sheet{Header: TextRow("ID"), Rows: standaloneRows(1000)}

	perChunk, estimates, err := newTestPacker(est).RowsPerChunk(sheet)
	require.NoError(t, err)

	assert.Equal(t, 62, perChunk)
	assert.Equal(t, 4, estimates)
	assert.Equal(t, []int{500, 250, 125, 62}, est.sizes)
}

func TestRowsPerChunk_SampleNeverExceedsRowCount(t *testing.T) {
	est := &fakeEstimator{bytesPerRow: 1}
	sheet := &Sheet{Header: TextRow("ID"), Rows: standaloneRows(42)}

	perChunk, _, err := newTestPacker(est).RowsPerChunk(sheet)
	require.NoError(t, err)

	assert.Equal(t, 500, perChunk)
	assert.Equal(t, []int{42}, est.sizes)
}

func TestRowsPerChunk_StopsAtMinimum(t *testing.T) {
	// every row alone is over budget
	est := &fakeEstimator{bytesPerRow: DefaultMaxInputBytes}
	sheet := &Sheet{Header: TextRow("ID"), Rows: standaloneRows(1000)}

	perChunk, estimates, err := newTestPacker(est).RowsPerChunk(sheet)
	require.NoError(t, err)

	// 500 250 125 62 31 15 7: halving stops once the candidate is 10 or less
	assert.Equal(t, 7, perChunk)
	assert.Equal(t, 7, estimates)
}

func TestRowsPerChunk_EstimatorError(t *testing.T) {
	est := &fakeEstimator{err: errors.New("disco cheio")}
	sheet := &Sheet{Header: TextRow("ID"), Rows: standaloneRows(10)}

	_, err := newTestPacker(est).Pack(sheet, LayoutCustomers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disco cheio")
}

func TestPack_GroupKeptWholeAcrossBoundary(t *testing.T) {
	sheet := &Sheet{
		Header: productHeader,
		Rows: []Row{
			parent("SKU1"),
			variant("SKU1-A", "SKU1"),
			variant("SKU1-B", "SKU1"),
			parent("SKU2"),
		},
	}
	packer := NewPacker(&fakeEstimator{bytesPerRow: 1}, PackerConfig{
		Budget:              SizeBudget{MaxInputBytes: DefaultMaxInputBytes},
		InitialRowsPerChunk: 2,
	})

	plan, err := packer.Pack(sheet, LayoutProducts)
	require.NoError(t, err)

	require.True(t, plan.Grouped)
	require.Len(t, plan.Chunks, 2)
	assert.Equal(t, sheet.Rows[:3], plan.Chunks[0].Rows)
	assert.Equal(t, sheet.Rows[3:], plan.Chunks[1].Rows)
}

func TestPack_GroupedVariantsNeverSplit(t *testing.T) {
	var rows []Row
	for _, sku := range []string{"A", "B", "C", "D", "E", "F"} {
		rows = append(rows, parent(sku))
		for _, suffix := range []string{"-1", "-2", "-3"} {
			rows = append(rows, variant(sku+suffix, sku))
		}
		rows = append(rows, simple("X"+sku))
	}
	sheet := &Sheet{Header: productHeader, Rows: rows}
	packer := NewPacker(&fakeEstimator{bytesPerRow: 1}, PackerConfig{InitialRowsPerChunk: 3})

	plan, err := packer.Pack(sheet, LayoutProducts)
	require.NoError(t, err)
	require.True(t, plan.Grouped)

	assert.Equal(t, rows, flatten(plan.Chunks))

	chunkOf := make(map[string]int)
	for _, c := range plan.Chunks {
		for _, r := range c.Rows {
			chunkOf[r[1].Value] = c.Index
		}
	}
	for _, sku := range []string{"A", "B", "C", "D", "E", "F"} {
		for _, suffix := range []string{"-1", "-2", "-3"} {
			assert.Equal(t, chunkOf[sku], chunkOf[sku+suffix], "variant %s%s split from parent", sku, suffix)
		}
	}
}

func TestPack_GroupLargerThanCandidateStaysInOneChunk(t *testing.T) {
	rows := []Row{parent("P")}
	for i := 0; i < 25; i++ {
		rows = append(rows, variant("P-"+string(rune('a'+i)), "P"))
	}
	rows = append(rows, simple("Z"))
	sheet := &Sheet{Header: productHeader, Rows: rows}
	packer := NewPacker(&fakeEstimator{bytesPerRow: 1}, PackerConfig{InitialRowsPerChunk: 10})

	plan, err := packer.Pack(sheet, LayoutProducts)
	require.NoError(t, err)

	assert.Equal(t, []int{26, 1}, chunkSizes(plan.Chunks))
}

func TestPack_OrphanVariantIsStandalone(t *testing.T) {
	sheet := &Sheet{
		Header: productHeader,
		Rows: []Row{
			parent("P1"),
			variant("P1-a", "P1"),
			variant("P9-a", "P9"),
			variant("P1-b", "P1"),
		},
	}
	packer := NewPacker(&fakeEstimator{bytesPerRow: 1}, PackerConfig{InitialRowsPerChunk: 1})

	plan, err := packer.Pack(sheet, LayoutProducts)
	require.NoError(t, err)

	// the orphan closes P1's group, so P1-b no longer belongs to it
	assert.Equal(t, []int{2, 1, 1}, chunkSizes(plan.Chunks))
	assert.Equal(t, sheet.Rows, flatten(plan.Chunks))
}

func TestPack_GroupingRequiresProductLayout(t *testing.T) {
	sheet := &Sheet{
		Header: productHeader,
		Rows:   []Row{parent("P1"), variant("P1-a", "P1"), variant("P1-b", "P1")},
	}
	packer := NewPacker(&fakeEstimator{bytesPerRow: 1}, PackerConfig{InitialRowsPerChunk: 2})

	plan, err := packer.Pack(sheet, LayoutInventory)
	require.NoError(t, err)

	assert.False(t, plan.Grouped)
	assert.Equal(t, []int{2, 1}, chunkSizes(plan.Chunks))
}

func TestPack_MissingGroupingColumnFallsBackToPlainSplit(t *testing.T) {
	header := TextRow("ID", ColumnSKU, ColumnProductType)
	sheet := &Sheet{
		Header: header,
		Rows:   []Row{TextRow("1", "P1", "V"), TextRow("2", "P1-a", "S"), TextRow("3", "P1-b", "S")},
	}
	packer := NewPacker(&fakeEstimator{bytesPerRow: 1}, PackerConfig{InitialRowsPerChunk: 2})

	plan, err := packer.Pack(sheet, LayoutProducts)
	require.NoError(t, err)

	assert.False(t, plan.Grouped)
	assert.Equal(t, []int{2, 1}, chunkSizes(plan.Chunks))
}

func TestPack_IsDeterministic(t *testing.T) {
	var rows []Row
	for i := 0; i < 40; i++ {
		rows = append(rows, parent(string(rune('A'+i%26))+"x"), variant("v", string(rune('A'+i%26))+"x"))
	}
	sheet := &Sheet{Header: productHeader, Rows: rows}
	packer := NewPacker(&fakeEstimator{bytesPerRow: 1}, PackerConfig{InitialRowsPerChunk: 7})

	first, err := packer.Pack(sheet, LayoutProducts)
	require.NoError(t, err)
	second, err := packer.Pack(sheet, LayoutProducts)
	require.NoError(t, err)

	assert.Equal(t, first.Chunks, second.Chunks)
}

func TestPack_NoRows(t *testing.T) {
	_, err := newTestPacker(&fakeEstimator{}).Pack(&Sheet{Header: TextRow("ID")}, LayoutCustomers)
	assert.Equal(t, KindEmptyInput, KindOf(err))
}

func TestLocateGroupingColumns(t *testing.T) {
	cols, ok := locateGroupingColumns(productHeader)
	require.True(t, ok)
	assert.Equal(t, groupingColumns{productType: 3, parentCode: 4, sku: 1}, cols)

	_, ok = locateGroupingColumns(TextRow("ID", ColumnSKU))
	assert.False(t, ok)

	layout, _ := ExpectedLayout(LayoutProducts)
	_, ok = locateGroupingColumns(TextRow(layout...))
	assert.True(t, ok, "the product layout must carry every grouping column")
}
