package spreadsheet

import (
	"context"
	"time"

	"github.com/freitasmatheusrn/olist-helper/internal/history"
	"github.com/freitasmatheusrn/olist-helper/pkg/parser"
	"go.uber.org/zap"
)

type Service interface {
	ValidateLayout(ctx context.Context, input ValidateInput) error
	Split(ctx context.Context, input SplitInput) (*SplitResult, error)
	Layouts() []LayoutOutput
}

type svc struct {
	packer   *Packer
	archive  *ArchiveBuilder
	recorder history.Recorder
	logger   *zap.Logger
}

func NewService(packer *Packer, archive *ArchiveBuilder, recorder history.Recorder, logger *zap.Logger) *svc {
	if recorder == nil {
		recorder = history.NopRecorder{}
	}
	return &svc{
		packer:   packer,
		archive:  archive,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *svc) ValidateLayout(ctx context.Context, input ValidateInput) error {
	if _, ok := ExpectedLayout(input.Layout); !ok {
		return NewUnknownLayoutError(input.Layout)
	}

	header, err := DecodeHeader(input.Path, FormatFromFilename(input.FileName))
	if err != nil {
		return err
	}

	if err := ValidateLayout(header, input.Layout); err != nil {
		s.logger.Info("layout mismatch",
			zap.String("layout", input.Layout),
			zap.String("file", input.FileName),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Split runs decode, pack and archive in sequence; each step needs the
// previous one's output.
func (s *svc) Split(ctx context.Context, input SplitInput) (*SplitResult, error) {
	startTime := time.Now()

	sheet, err := Decode(input.Path, FormatFromFilename(input.FileName))
	if err != nil {
		return nil, err
	}

	plan, err := s.packer.Pack(sheet, input.Layout)
	if err != nil {
		return nil, err
	}

	data, err := s.archive.Build(ctx, sheet.Name, input.Layout, plan.Chunks)
	if err != nil {
		s.logger.Error("failed to build archive",
			zap.String("layout", input.Layout),
			zap.Int("chunks", len(plan.Chunks)),
			zap.Error(err),
		)
		return nil, err
	}

	result := &SplitResult{
		Archive:      data,
		FileName:     ArchiveName(input.Layout),
		TotalRows:    len(sheet.Rows),
		Chunks:       len(plan.Chunks),
		RowsPerChunk: plan.RowsPerChunk,
		Grouped:      plan.Grouped,
	}

	s.logger.Info("spreadsheet split",
		zap.String("layout", input.Layout),
		zap.String("file", input.FileName),
		zap.Int("rows", result.TotalRows),
		zap.Int("chunks", result.Chunks),
		zap.Int("rows_per_chunk", result.RowsPerChunk),
		zap.Bool("grouped", result.Grouped),
		zap.Int("size_estimates", plan.Estimates),
		zap.Int("archive_bytes", len(data)),
		zap.Duration("duration", time.Since(startTime)),
	)

	s.record(ctx, input, result)
	return result, nil
}

// record never fails the request: the archive is already built.
func (s *svc) record(ctx context.Context, input SplitInput, result *SplitResult) {
	job := &history.SplitJob{
		Layout:       input.Layout,
		FileName:     input.FileName,
		TotalRows:    int32(result.TotalRows),
		Chunks:       int32(result.Chunks),
		RowsPerChunk: int32(result.RowsPerChunk),
		Grouped:      result.Grouped,
		UserEmail:    parser.PgText(input.UserEmail),
	}
	if err := s.recorder.Record(ctx, job); err != nil {
		s.logger.Warn("failed to record split job",
			zap.String("layout", input.Layout),
			zap.Error(err),
		)
	}
}

func (s *svc) Layouts() []LayoutOutput {
	names := LayoutNames()
	out := make([]LayoutOutput, 0, len(names))
	for _, name := range names {
		cols, _ := ExpectedLayout(name)
		_, grouping := locateGroupingColumns(TextRow(cols...))
		out = append(out, LayoutOutput{
			Name:     name,
			Columns:  cols,
			Grouping: grouping && name == LayoutProducts,
		})
	}
	return out
}
