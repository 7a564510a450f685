package model

import "time"

// CellKind tags the variant held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellDate
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellNumber:
		return "number"
	case CellText:
		return "text"
	case CellDate:
		return "date"
	default:
		return "unknown"
	}
}

// Cell is one spreadsheet value. Only the field matching Kind is meaningful.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
	Time   time.Time
}

func EmptyCell() Cell { return Cell{Kind: CellEmpty} }

func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Time: t} }
