package spreadsheet

import "io"

// SizeEstimator reports the serialized size of a candidate chunk. It is the
// expensive step of packing, so callers keep invocations to a minimum.
type SizeEstimator interface {
	Estimate(sheetName string, header Row, rows []Row) (int64, error)
}

// WorkbookEstimator measures the real xlsx output, discarding the bytes.
type WorkbookEstimator struct{}

func (WorkbookEstimator) Estimate(sheetName string, header Row, rows []Row) (int64, error) {
	return WriteWorkbook(io.Discard, sheetName, header, rows)
}
