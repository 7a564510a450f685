package excel

import (
	"context"
	"io"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/pkg/errors"
)

type ParsingStrategy interface {
	Read(ctx context.Context, data io.Reader) (*Sheet, error)
	Columns(headers []string) ColumnMap
	ParseRow(row Row, cols ColumnMap) (*model.WeldRecord, bool)
	Validate(rec *model.WeldRecord) []errors.ValidationError
	Clamp(rec *model.WeldRecord)
}

type Options struct {
	Sheet      string
	DefaultWPS string
}

type ExcelStrategy struct {
	reader    *Reader
	parser    *Parser
	validator *Validator
}

func NewExcelStrategy(opts Options) ParsingStrategy {
	return &ExcelStrategy{
		reader:    NewReader(opts.Sheet),
		parser:    NewParser(opts.DefaultWPS),
		validator: NewValidator(),
	}
}

func (s *ExcelStrategy) Read(ctx context.Context, data io.Reader) (*Sheet, error) {
	return s.reader.Read(ctx, data)
}

func (s *ExcelStrategy) Columns(headers []string) ColumnMap {
	return NewColumnMap(headers)
}

func (s *ExcelStrategy) ParseRow(row Row, cols ColumnMap) (*model.WeldRecord, bool) {
	return s.parser.ParseRow(row, cols)
}

func (s *ExcelStrategy) Validate(rec *model.WeldRecord) []errors.ValidationError {
	return s.validator.Validate(rec)
}

func (s *ExcelStrategy) Clamp(rec *model.WeldRecord) {
	s.validator.Clamp(rec)
}
