package spreadsheet

import "fmt"

const (
	DefaultMaxInputBytes       int64 = 5 * 1024 * 1024
	DefaultInitialRowsPerChunk       = 500
	DefaultMinRowsPerChunk           = 10
)

// SizeBudget bounds the accepted upload and, at half of it, each chunk.
type SizeBudget struct {
	MaxInputBytes int64
}

func (b SizeBudget) ChunkTarget() int64 {
	return b.MaxInputBytes / 2
}

type PackerConfig struct {
	Budget              SizeBudget
	InitialRowsPerChunk int
	MinRowsPerChunk     int
}

// Plan is the outcome of packing one sheet.
type Plan struct {
	RowsPerChunk int
	Grouped      bool
	Estimates    int
	Chunks       []Chunk
}

type Packer struct {
	estimator SizeEstimator
	cfg       PackerConfig
}

func NewPacker(estimator SizeEstimator, cfg PackerConfig) *Packer {
	if cfg.Budget.MaxInputBytes <= 0 {
		cfg.Budget.MaxInputBytes = DefaultMaxInputBytes
	}
	if cfg.InitialRowsPerChunk <= 0 {
		cfg.InitialRowsPerChunk = DefaultInitialRowsPerChunk
	}
	if cfg.MinRowsPerChunk <= 0 {
		cfg.MinRowsPerChunk = DefaultMinRowsPerChunk
	}
	return &Packer{estimator: estimator, cfg: cfg}
}

// Pack calibrates rows-per-chunk against the size budget and partitions the
// sheet. Product variations are never split when the layout supports it.
func (p *Packer) Pack(sheet *Sheet, layout string) (*Plan, error) {
	if len(sheet.Rows) == 0 {
		return nil, NewEmptyInputError()
	}

	perChunk, estimates, err := p.RowsPerChunk(sheet)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		RowsPerChunk: perChunk,
		Estimates:    estimates,
	}

	if cols, ok := locateGroupingColumns(sheet.Header); ok && layout == LayoutProducts {
		plan.Grouped = true
		plan.Chunks = packGrouped(sheet.Header, sheet.Rows, perChunk, cols)
	} else {
		plan.Chunks = packRows(sheet.Header, sheet.Rows, perChunk)
	}

	return plan, nil
}

// RowsPerChunk halves the candidate while a sample chunk is above the
// target, returning the candidate and how many estimates it took.
func (p *Packer) RowsPerChunk(sheet *Sheet) (int, int, error) {
	target := p.cfg.Budget.ChunkTarget()
	candidate := p.cfg.InitialRowsPerChunk
	estimates := 0

	for {
		sample := sheet.Rows[:min(candidate, len(sheet.Rows))]
		size, err := p.estimator.Estimate(sheet.Name, sheet.Header, sample)
		estimates++
		if err != nil {
			return 0, estimates, fmt.Errorf("estimate chunk size: %w", err)
		}

		if size <= target || candidate <= p.cfg.MinRowsPerChunk {
			return candidate, estimates, nil
		}
		candidate /= 2
	}
}

func packRows(header Row, rows []Row, perChunk int) []Chunk {
	var (
		chunks  []Chunk
		current []Row
	)
	for _, r := range rows {
		current = append(current, r)
		if len(current) >= perChunk {
			chunks = appendChunk(chunks, header, current)
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = appendChunk(chunks, header, current)
	}
	return chunks
}

// packGrouped only closes a chunk at a group or standalone boundary, so a
// chunk may exceed perChunk when a parent carries many variations.
func packGrouped(header Row, rows []Row, perChunk int, cols groupingColumns) []Chunk {
	var (
		chunks   []Chunk
		buffer   []Row
		group    []Row
		groupSKU string
		open     bool
	)

	emitIfFull := func() {
		if len(buffer) >= perChunk {
			chunks = appendChunk(chunks, header, buffer)
			buffer = nil
		}
	}
	closeGroup := func() {
		if !open {
			return
		}
		buffer = append(buffer, group...)
		group = nil
		open = false
		emitIfFull()
	}

	for _, r := range rows {
		switch productType := cols.typeOf(r); {
		case productType == productTypeParent:
			closeGroup()
			group = []Row{r}
			groupSKU = cols.skuOf(r)
			open = true
		case open && productType == productTypeVariant && cols.parentOf(r) == groupSKU:
			group = append(group, r)
		default:
			closeGroup()
			buffer = append(buffer, r)
			emitIfFull()
		}
	}

	closeGroup()
	if len(buffer) > 0 {
		chunks = appendChunk(chunks, header, buffer)
	}
	return chunks
}

func appendChunk(chunks []Chunk, header Row, rows []Row) []Chunk {
	return append(chunks, Chunk{
		Index:  len(chunks) + 1,
		Header: header,
		Rows:   rows,
	})
}
