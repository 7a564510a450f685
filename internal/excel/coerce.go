package excel

import (
	"math"
	"strconv"
	"strings"
	"time"

	"weld-inspection-db/internal/model"
)

// The coercions below never fail: a cell that does not fit degrades to the
// field's default.

// IntOrDefault truncates a numeric cell (or numeric text) to an integer.
// Integer fields such as Report often arrive as 7.0.
func IntOrDefault(c model.Cell, def int) int {
	var v float64
	switch c.Kind {
	case model.CellNumber:
		v = c.Number
	case model.CellText:
		f, ok := parseNumber(c.Text)
		if !ok {
			return def
		}
		v = f
	case model.CellEmpty, model.CellDate:
		return def
	default:
		return def
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v > math.MaxInt32 || v < math.MinInt32 {
		return def
	}
	return int(v)
}

// OptionalFloat returns nil for a blank or non-numeric cell. A zero cell
// yields a pointer to 0, which is not the same as unmeasured.
func OptionalFloat(c model.Cell) *float64 {
	var v float64
	switch c.Kind {
	case model.CellNumber:
		v = c.Number
	case model.CellText:
		f, ok := parseNumber(c.Text)
		if !ok {
			return nil
		}
		v = f
	case model.CellEmpty, model.CellDate:
		return nil
	default:
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// String renders any cell as trimmed text; blank cells give "".
func String(c model.Cell) string {
	switch c.Kind {
	case model.CellEmpty:
		return ""
	case model.CellText:
		return strings.TrimSpace(c.Text)
	case model.CellNumber:
		if math.IsNaN(c.Number) {
			return ""
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case model.CellDate:
		if hasClock(c.Time) {
			return c.Time.Format("2006-01-02 15:04:05")
		}
		return c.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// Text date layouts, in priority order: MM/DD/YYYY then YYYY-MM-DD.
var dateLayouts = []string{"1/2/2006", "2006-1-2"}

// OptionalDate returns the calendar date held by c, or nil.
func OptionalDate(c model.Cell) *time.Time {
	switch c.Kind {
	case model.CellDate:
		d := dateOnlyUTC(c.Time)
		return &d
	case model.CellText:
		s := strings.TrimSpace(c.Text)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				d := dateOnlyUTC(t)
				return &d
			}
		}
		return nil
	case model.CellEmpty, model.CellNumber:
		return nil
	default:
		return nil
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func dateOnlyUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hasClock(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0
}
