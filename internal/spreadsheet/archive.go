package spreadsheet

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultArchiveWorkers = 4

// ArchiveBuilder renders chunks to workbooks and zips them in chunk order.
type ArchiveBuilder struct {
	workers int
	now     func() time.Time
}

func NewArchiveBuilder(workers int) *ArchiveBuilder {
	if workers <= 0 {
		workers = defaultArchiveWorkers
	}
	return &ArchiveBuilder{workers: workers, now: time.Now}
}

// EntryName is the file name of chunk index inside the archive.
func EntryName(layout string, index int) string {
	return fmt.Sprintf("Planilha_%s_parte_%d.xlsx", safeName(layout), index)
}

// Build serializes every chunk concurrently, then writes the entries
// sequentially so chunk i always precedes chunk i+1.
func (b *ArchiveBuilder) Build(ctx context.Context, sheetName, layout string, chunks []Chunk) ([]byte, error) {
	workbooks := make([][]byte, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if _, err := WriteWorkbook(&buf, sheetName, chunks[i].Header, chunks[i].Rows); err != nil {
				return fmt.Errorf("chunk %d: %w", chunks[i].Index, err)
			}
			workbooks[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, NewArchiveError(err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	modified := b.now()
	for i, data := range workbooks {
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     EntryName(layout, chunks[i].Index),
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, NewArchiveError(err)
		}
		if _, err := entry.Write(data); err != nil {
			return nil, NewArchiveError(err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, NewArchiveError(err)
	}
	return out.Bytes(), nil
}

// safeName keeps layout names usable in file names and headers.
func safeName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "planilha"
	}
	return string(out)
}

// ArchiveName is the attachment name returned to the browser.
func ArchiveName(layout string) string {
	return fmt.Sprintf("Planilha_%s_dividida.zip", safeName(layout))
}
