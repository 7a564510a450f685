package excel

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// Sheet is a fully loaded worksheet: the header row and every data row after it.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Row maps header name to cell value. Number is the 1-based spreadsheet row.
type Row struct {
	Number int
	Cells  map[string]model.Cell
}

// Get returns the cell under header, or an empty cell if the header is
// unknown or the row has nothing there.
func (r Row) Get(header string) model.Cell {
	if header == "" {
		return model.EmptyCell()
	}
	c, ok := r.Cells[header]
	if !ok {
		return model.EmptyCell()
	}
	return c
}

type Reader struct {
	sheet string
}

// NewReader reads the named sheet, or the first sheet when sheet is empty.
func NewReader(sheet string) *Reader {
	return &Reader{sheet: sheet}
}

func (r *Reader) Read(ctx context.Context, data io.Reader) (*Sheet, error) {
	file, err := excelize.OpenReader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", errors.ErrInvalidFileFormat, err)
	}
	defer file.Close()

	sheetName, err := r.sheetName(file)
	if err != nil {
		return nil, err
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get rows: %v", errors.ErrInvalidFileFormat, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", errors.ErrInvalidFileFormat, sheetName)
	}

	header := rows[0]
	// First occurrence of a header wins; blank headers are ignored.
	columns := make(map[int]string, len(header))
	seen := make(map[string]bool, len(header))
	headers := make([]string, 0, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns[i] = name
		headers = append(headers, name)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", errors.ErrInvalidFileFormat, sheetName)
	}

	cls := newClassifier(file, sheetName)

	sheet := &Sheet{Name: sheetName, Headers: headers}
	for i, raw := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rowNum := i + 2
		cells := make(map[string]model.Cell, len(columns))
		for col, name := range columns {
			if col >= len(raw) || raw[col] == "" {
				cells[name] = model.EmptyCell()
				continue
			}
			cells[name] = cls.classify(col+1, rowNum, raw[col])
		}
		sheet.Rows = append(sheet.Rows, Row{Number: rowNum, Cells: cells})
	}

	return sheet, nil
}

func (r *Reader) sheetName(file *excelize.File) (string, error) {
	if r.sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return "", fmt.Errorf("%w: workbook has no sheets", errors.ErrInvalidFileFormat)
		}
		return sheets[0], nil
	}

	idx, err := file.GetSheetIndex(r.sheet)
	if err != nil || idx == -1 {
		return "", fmt.Errorf("%w: sheet %q not found", errors.ErrInvalidFileFormat, r.sheet)
	}
	return r.sheet, nil
}

// classifier turns raw cell text into a typed Cell using the cell's stored
// type and number format.
type classifier struct {
	file      *excelize.File
	sheet     string
	date1904  bool
	dateStyle map[int]bool
}

func newClassifier(file *excelize.File, sheet string) *classifier {
	c := &classifier{
		file:      file,
		sheet:     sheet,
		dateStyle: make(map[int]bool),
	}
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		c.date1904 = *props.Date1904
	}
	return c
}

func (c *classifier) classify(col, row int, raw string) model.Cell {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return model.TextCell(raw)
	}

	cellType, err := c.file.GetCellType(c.sheet, axis)
	if err != nil {
		return model.TextCell(raw)
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return model.TextCell(raw)
	case excelize.CellTypeBool:
		if raw == "1" {
			return model.TextCell("TRUE")
		}
		return model.TextCell("FALSE")
	case excelize.CellTypeError:
		return model.EmptyCell()
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return model.DateCell(t)
			}
		}
		return model.TextCell(raw)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.TextCell(raw)
	}
	if c.isDateFormatted(axis) {
		if t, err := excelize.ExcelDateToTime(v, c.date1904); err == nil {
			return model.DateCell(t)
		}
	}
	return model.NumberCell(v)
}

func (c *classifier) isDateFormatted(axis string) bool {
	styleID, err := c.file.GetCellStyle(c.sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := c.dateStyle[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := c.file.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = builtInDateFormats[style.NumFmt]
		}
	}
	c.dateStyle[styleID] = isDate
	return isDate
}

// Built-in number format ids that render a calendar date. Time-only
// formats (18-21, 45-47) are left as numbers.
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// isDateFormatCode reports whether a custom number format shows a day or year.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	plain := strings.ToLower(b.String())
	return strings.ContainsAny(plain, "yd")
}
